package persistence

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// tenantScope restricts a query to one tenant's rows
func tenantScope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// pageScope applies ordering and pagination from a shared.Filter.
// Sort fields outside allowed fall back to defaultField.
func pageScope(filter shared.Filter, allowed map[string]bool, defaultField string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		field := ValidateSortField(filter.OrderBy, allowed, defaultField)
		dir := ValidateSortOrder(filter.OrderDir)
		db = db.Order(fmt.Sprintf("%s %s", field, dir))
		if filter.PageSize > 0 {
			db = db.Offset(filter.Offset()).Limit(filter.PageSize)
		}
		return db
	}
}

// translateNotFound maps gorm.ErrRecordNotFound to shared.ErrNotFound
func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}
