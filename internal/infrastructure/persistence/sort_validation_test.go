package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns DESC", "", "DESC"},
		{"asc lowercase returns ASC", "asc", "ASC"},
		{"whitespace around ASC returns ASC", "  asc  ", "ASC"},
		{"invalid value returns DESC", "sideways", "DESC"},
		{"injection attempt returns DESC", "ASC; DROP TABLE stock_take_sessions;--", "DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns default", "", "created_at"},
		{"whitelisted field", "session_number", "session_number"},
		{"whitespace trimmed", "  status ", "status"},
		{"unknown field returns default", "expected_quantity", "created_at"},
		{"case sensitive", "STATUS", "created_at"},
		{"injection attempt returns default", "status; DELETE FROM stock_take_lines", "created_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, StockTakeSessionSortFields, "created_at"))
		})
	}
}
