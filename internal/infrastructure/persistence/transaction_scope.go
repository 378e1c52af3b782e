package persistence

import (
	"context"

	appinv "github.com/pos/backend/internal/application/inventory"
	"github.com/pos/backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn in one database transaction, committing only if fn returns nil.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories hands out repositories bound to one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) SessionRepo() inventory.StockTakeSessionRepository {
	return NewGormStockTakeSessionRepository(r.tx)
}

func (r *gormTransactionalRepositories) InventoryStore() inventory.InventoryStore {
	return NewGormInventoryStore(r.tx)
}

func (r *gormTransactionalRepositories) AdjustmentRepo() inventory.StockAdjustmentRepository {
	return NewGormStockAdjustmentRepository(r.tx)
}

var (
	_ appinv.TransactionScope          = (*GormTransactionScope)(nil)
	_ appinv.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
