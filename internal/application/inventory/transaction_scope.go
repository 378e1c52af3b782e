package inventory

import (
	"context"

	"github.com/pos/backend/internal/domain/inventory"
)

// TransactionScope runs stock take work inside one database transaction.
// If fn returns an error every write made through repos is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to repositories bound to the current transaction.
type TransactionalRepositories interface {
	SessionRepo() inventory.StockTakeSessionRepository
	InventoryStore() inventory.InventoryStore
	AdjustmentRepo() inventory.StockAdjustmentRepository
}

// NoOpTransactionScope runs fn directly against the given repositories.
// It provides no rollback and is meant for tests and single-statement stores.
type NoOpTransactionScope struct {
	sessionRepo    inventory.StockTakeSessionRepository
	store          inventory.InventoryStore
	adjustmentRepo inventory.StockAdjustmentRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	sessionRepo inventory.StockTakeSessionRepository,
	store inventory.InventoryStore,
	adjustmentRepo inventory.StockAdjustmentRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		sessionRepo:    sessionRepo,
		store:          store,
		adjustmentRepo: adjustmentRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) SessionRepo() inventory.StockTakeSessionRepository {
	return s.sessionRepo
}
func (s *NoOpTransactionScope) InventoryStore() inventory.InventoryStore { return s.store }
func (s *NoOpTransactionScope) AdjustmentRepo() inventory.StockAdjustmentRepository {
	return s.adjustmentRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
