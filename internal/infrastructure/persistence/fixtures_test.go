package persistence

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/inventory"
	"github.com/pos/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newSQLiteDB opens a private in-memory database with every table migrated
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

// stockFixture is one location holding products with known quantities
type stockFixture struct {
	tenantID uuid.UUID
	location *inventory.Location
	products []*inventory.ProductStock
}

// seedStock stores a location and, per entry in quantities, a product held
// there. Product totals equal the location quantity.
func seedStock(t *testing.T, db *gorm.DB, quantities ...int64) *stockFixture {
	t.Helper()
	ctx := context.Background()
	tenantID := uuid.New()

	loc, err := inventory.NewLocation(tenantID, "FLOOR", "Shop floor")
	require.NoError(t, err)
	require.NoError(t, NewGormLocationRepository(db).Save(ctx, loc))

	fx := &stockFixture{tenantID: tenantID, location: loc}
	store := NewGormInventoryStore(db)
	products := NewGormProductStockRepository(db)
	for i, q := range quantities {
		p, err := inventory.NewProductStock(tenantID, fmt.Sprintf("P-%03d", i+1), "Product", "pcs", decimal.NewFromInt(int64(i+1)))
		require.NoError(t, err)
		p.TotalQuantity = q
		require.NoError(t, products.Save(ctx, p))
		require.NoError(t, store.WriteLocationStock(ctx, tenantID, p.ID, loc.ID, q))
		fx.products = append(fx.products, p)
	}
	return fx
}

// openSession starts a session from the location's current stock
func (fx *stockFixture) openSession(t *testing.T, db *gorm.DB, number string) *inventory.StockTakeSession {
	t.Helper()
	ctx := context.Background()
	levels, err := NewGormInventoryStore(db).ReadLocationStock(ctx, fx.tenantID, fx.location.ID)
	require.NoError(t, err)

	s, err := inventory.NewStockTakeSession(fx.location, number, uuid.New(), "Counter",
		&inventory.Snapshot{LocationID: fx.location.ID, Levels: levels})
	require.NoError(t, err)
	require.NoError(t, NewGormStockTakeSessionRepository(db).Create(ctx, s))
	return s
}

func counted(t *testing.T, q int64) inventory.CountValue {
	t.Helper()
	v, err := inventory.Counted(q)
	require.NoError(t, err)
	return v
}
