package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// StockTakeSessionSortFields contains allowed sort fields for stock take sessions
var StockTakeSessionSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"session_number": true,
	"status":         true,
	"location_id":    true,
	"location_name":  true,
	"completed_at":   true,
	"cancelled_at":   true,
}
