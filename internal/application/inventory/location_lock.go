package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ReleaseFunc releases a lock obtained from a LocationLocker
type ReleaseFunc func(ctx context.Context) error

// LocationLocker serializes work that rewrites stock of one location.
// Acquire returns inventory.ErrFinalizeInProgress when the lock is held elsewhere.
type LocationLocker interface {
	Acquire(ctx context.Context, tenantID, locationID uuid.UUID, ttl time.Duration) (ReleaseFunc, error)
}
