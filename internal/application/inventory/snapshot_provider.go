package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/inventory"
)

// SnapshotProvider reads the expected stock of a location at the instant of the call.
type SnapshotProvider struct {
	store inventory.InventoryStore
	now   func() time.Time
}

// NewSnapshotProvider creates a SnapshotProvider over the inventory store
func NewSnapshotProvider(store inventory.InventoryStore) *SnapshotProvider {
	return &SnapshotProvider{store: store, now: time.Now}
}

// Snapshot returns every product quantity at locationID. A location the store
// knows nothing about produces an empty snapshot.
func (p *SnapshotProvider) Snapshot(ctx context.Context, tenantID, locationID uuid.UUID) (*inventory.Snapshot, error) {
	levels, err := p.store.ReadLocationStock(ctx, tenantID, locationID)
	if err != nil {
		return nil, err
	}
	if levels == nil {
		levels = []inventory.StockLevel{}
	}
	return &inventory.Snapshot{
		LocationID: locationID,
		TakenAt:    p.now(),
		Levels:     levels,
	}, nil
}
