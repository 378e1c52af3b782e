package inventory

import (
	"cmp"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VarianceLine is a counted line whose count differs from the snapshot.
// Positive variance is surplus, negative is shortage.
type VarianceLine struct {
	ProductID        uuid.UUID
	ProductCode      string
	ProductName      string
	Unit             string
	ExpectedQuantity int64
	CountedQuantity  int64
	Variance         int64
	UnitCost         decimal.Decimal
	VarianceValue    decimal.Decimal
}

// IsSurplus reports whether more stock was found than expected
func (v VarianceLine) IsSurplus() bool {
	return v.Variance > 0
}

// CalculateVariances returns every counted line with a nonzero variance,
// ordered by product code then product id. Uncounted lines are skipped.
func CalculateVariances(lines []CountedLine) []VarianceLine {
	out := make([]VarianceLine, 0, len(lines))
	for i := range lines {
		l := &lines[i]
		v, ok := l.Variance()
		if !ok || v == 0 {
			continue
		}
		out = append(out, VarianceLine{
			ProductID:        l.ProductID,
			ProductCode:      l.ProductCode,
			ProductName:      l.ProductName,
			Unit:             l.Unit,
			ExpectedQuantity: l.ExpectedQuantity,
			CountedQuantity:  *l.CountedQuantity,
			Variance:         v,
			UnitCost:         l.UnitCost,
			VarianceValue:    l.VarianceValue(),
		})
	}
	slices.SortStableFunc(out, func(a, b VarianceLine) int {
		return cmp.Or(
			strings.Compare(a.ProductCode, b.ProductCode),
			strings.Compare(a.ProductID.String(), b.ProductID.String()),
		)
	})
	return out
}

// VarianceReview summarizes a session for the review step before finalize.
type VarianceReview struct {
	SessionID      uuid.UUID
	Status         SessionStatus
	Lines          []VarianceLine
	TotalLines     int
	CountedLines   int
	UncountedLines int
	ConfirmedLines int
	SurplusUnits   int64
	ShortageUnits  int64
	NetValue       decimal.Decimal
}

// CanFinalize reports whether finalize has anything to apply
func (r VarianceReview) CanFinalize() bool {
	return r.Status == SessionStatusInProgress && len(r.Lines) > 0
}

// BuildVarianceReview derives the review of a session. It has no side effects.
func BuildVarianceReview(s *StockTakeSession) VarianceReview {
	lines := CalculateVariances(s.Lines)
	counted, total := s.Progress()
	review := VarianceReview{
		SessionID:      s.ID,
		Status:         s.Status,
		Lines:          lines,
		TotalLines:     total,
		CountedLines:   counted,
		UncountedLines: total - counted,
		ConfirmedLines: counted - len(lines),
		NetValue:       decimal.Zero,
	}
	for _, l := range lines {
		if l.Variance > 0 {
			review.SurplusUnits += l.Variance
		} else {
			review.ShortageUnits -= l.Variance
		}
		review.NetValue = review.NetValue.Add(l.VarianceValue)
	}
	return review
}
