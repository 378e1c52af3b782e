package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
)

// SessionFilter narrows session listings
type SessionFilter struct {
	shared.Filter
	LocationID *uuid.UUID
	Status     *SessionStatus
}

// StockTakeSessionRepository persists sessions together with their lines
type StockTakeSessionRepository interface {
	// FindByIDForTenant returns shared.ErrNotFound when the session does not exist
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*StockTakeSession, error)

	// FindActiveByLocation returns the in-progress session of a location or shared.ErrNotFound
	FindActiveByLocation(ctx context.Context, tenantID, locationID uuid.UUID) (*StockTakeSession, error)

	// FindAllForTenant returns one page of sessions (without lines) and the total count
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter SessionFilter) ([]StockTakeSession, int64, error)

	// Create inserts a new session and its lines
	Create(ctx context.Context, session *StockTakeSession) error

	// Save updates a session and its lines if the stored version still matches,
	// then increments session.Version. A stale version yields shared.ErrConcurrencyConflict.
	Save(ctx context.Context, session *StockTakeSession) error

	// GenerateSessionNumber returns the next ST-YYYYMMDD-NNNN number of the tenant
	GenerateSessionNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// LocationRepository reads and stores locations
type LocationRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Location, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]Location, error)
	Save(ctx context.Context, location *Location) error
}

// InventoryStore is the authoritative stock collaborator of the stock take workflow.
type InventoryStore interface {
	// ReadLocationStock returns every product quantity at a location.
	// An unknown location yields an empty result, not an error.
	ReadLocationStock(ctx context.Context, tenantID, locationID uuid.UUID) ([]StockLevel, error)

	// WriteLocationStock sets the absolute quantity of a product at a location
	WriteLocationStock(ctx context.Context, tenantID, productID, locationID uuid.UUID, quantity int64) error

	// AdjustAggregateStock adds delta to a product's total across all locations
	AdjustAggregateStock(ctx context.Context, tenantID, productID uuid.UUID, delta int64) error
}

// ProductStockRepository stores product stock records
type ProductStockRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ProductStock, error)
	Save(ctx context.Context, product *ProductStock) error
}

// StockAdjustmentRepository stores the ledger of finalized stock take lines
type StockAdjustmentRepository interface {
	SaveBatch(ctx context.Context, adjustments []StockAdjustment) error
	FindBySession(ctx context.Context, tenantID, sessionID uuid.UUID) ([]StockAdjustment, error)
}
