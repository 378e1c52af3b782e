package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormInventoryStore_ReadLocationStock(t *testing.T) {
	db := newSQLiteDB(t)
	fx := seedStock(t, db, 10, 0)
	store := NewGormInventoryStore(db)
	ctx := context.Background()

	levels, err := store.ReadLocationStock(ctx, fx.tenantID, fx.location.ID)
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Equal(t, fx.products[0].ID, levels[0].ProductID)
	assert.Equal(t, "P-001", levels[0].ProductCode)
	assert.Equal(t, int64(10), levels[0].Quantity)
	assert.True(t, levels[1].UnitCost.Equal(fx.products[1].UnitCost))

	unknown, err := store.ReadLocationStock(ctx, fx.tenantID, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, unknown)

	otherTenant, err := store.ReadLocationStock(ctx, uuid.New(), fx.location.ID)
	require.NoError(t, err)
	assert.Empty(t, otherTenant)
}

func TestGormInventoryStore_WriteLocationStockUpserts(t *testing.T) {
	db := newSQLiteDB(t)
	fx := seedStock(t, db, 10)
	store := NewGormInventoryStore(db)
	ctx := context.Background()

	require.NoError(t, store.WriteLocationStock(ctx, fx.tenantID, fx.products[0].ID, fx.location.ID, 7))
	levels, err := store.ReadLocationStock(ctx, fx.tenantID, fx.location.ID)
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, int64(7), levels[0].Quantity)

	assert.Error(t, store.WriteLocationStock(ctx, fx.tenantID, fx.products[0].ID, fx.location.ID, -1))
}

func TestGormInventoryStore_AdjustAggregateStock(t *testing.T) {
	db := newSQLiteDB(t)
	fx := seedStock(t, db, 10)
	store := NewGormInventoryStore(db)
	products := NewGormProductStockRepository(db)
	ctx := context.Background()
	id := fx.products[0].ID

	require.NoError(t, store.AdjustAggregateStock(ctx, fx.tenantID, id, -4))
	p, err := products.FindByIDForTenant(ctx, fx.tenantID, id)
	require.NoError(t, err)
	assert.Equal(t, int64(6), p.TotalQuantity)

	require.NoError(t, store.AdjustAggregateStock(ctx, fx.tenantID, id, 5))
	err = store.AdjustAggregateStock(ctx, fx.tenantID, id, -12)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	p, err = products.FindByIDForTenant(ctx, fx.tenantID, id)
	require.NoError(t, err)
	assert.Equal(t, int64(11), p.TotalQuantity)

	err = store.AdjustAggregateStock(ctx, fx.tenantID, uuid.New(), 1)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
