package inventory

import (
	"strconv"
	"strings"
)

// CountValue is a user-entered count: either a non-negative whole quantity or unset.
type CountValue struct {
	quantity int64
	set      bool
}

// Counted returns a set CountValue. Negative quantities are rejected.
func Counted(quantity int64) (CountValue, error) {
	if quantity < 0 {
		return CountValue{}, ErrInvalidCount
	}
	return CountValue{quantity: quantity, set: true}, nil
}

// Unset returns the explicit "not counted" value
func Unset() CountValue {
	return CountValue{}
}

// ParseCountValue parses raw count text. Blank input and "null" mean unset;
// anything that is not a non-negative base-10 integer is ErrInvalidCount.
func ParseCountValue(raw string) (CountValue, error) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "null" {
		return Unset(), nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return CountValue{}, ErrInvalidCount
	}
	return Counted(n)
}

// Quantity returns the counted quantity and whether it is set
func (v CountValue) Quantity() (int64, bool) {
	return v.quantity, v.set
}

// IsSet reports whether a quantity was entered
func (v CountValue) IsSet() bool {
	return v.set
}
