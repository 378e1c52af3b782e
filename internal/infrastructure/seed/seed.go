// Package seed fills a database with demo locations, products and stock.
package seed

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/inventory"
	"github.com/pos/backend/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options controls the size and shape of the demo data
type Options struct {
	TenantID  uuid.UUID
	Locations int
	Products  int
	// MaxQuantity bounds the random on-hand quantity per product and location
	MaxQuantity int
	// Seed makes runs reproducible; zero picks a random seed
	Seed uint64
}

// Result summarizes what was written
type Result struct {
	Locations   []inventory.Location
	Products    []inventory.ProductStock
	StockLevels int
}

var units = []string{"pcs", "box", "bottle", "pack", "kg"}

// Run writes the demo data in one transaction
func Run(ctx context.Context, db *gorm.DB, opts Options, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.TenantID == uuid.Nil {
		return nil, fmt.Errorf("seed: tenant ID is required")
	}
	if opts.Locations <= 0 || opts.Products <= 0 {
		return nil, fmt.Errorf("seed: locations and products must be positive")
	}
	if opts.MaxQuantity <= 0 {
		opts.MaxQuantity = 50
	}

	faker := gofakeit.New(opts.Seed)
	result := &Result{}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locationRepo := persistence.NewGormLocationRepository(tx)
		productRepo := persistence.NewGormProductStockRepository(tx)
		store := persistence.NewGormInventoryStore(tx)

		for i := range opts.Locations {
			loc, err := inventory.NewLocation(opts.TenantID,
				fmt.Sprintf("LOC-%03d", i+1),
				faker.City()+" "+faker.RandomString([]string{"Store", "Backroom", "Warehouse", "Kiosk"}),
			)
			if err != nil {
				return err
			}
			if err := locationRepo.Save(ctx, loc); err != nil {
				return fmt.Errorf("save location %s: %w", loc.Code, err)
			}
			result.Locations = append(result.Locations, *loc)
		}

		for i := range opts.Products {
			product, err := inventory.NewProductStock(opts.TenantID,
				fmt.Sprintf("SKU-%05d", i+1),
				faker.ProductName(),
				faker.RandomString(units),
				decimal.NewFromFloat(faker.Price(0.5, 200)).Round(2),
			)
			if err != nil {
				return err
			}

			quantities := make(map[uuid.UUID]int64, len(result.Locations))
			for _, loc := range result.Locations {
				// Leave some products absent from some locations.
				if faker.Number(1, 10) == 1 {
					continue
				}
				qty := int64(faker.Number(0, opts.MaxQuantity))
				quantities[loc.ID] = qty
				product.TotalQuantity += qty
			}

			if err := productRepo.Save(ctx, product); err != nil {
				return fmt.Errorf("save product %s: %w", product.Code, err)
			}
			for locationID, qty := range quantities {
				if err := store.WriteLocationStock(ctx, opts.TenantID, product.ID, locationID, qty); err != nil {
					return fmt.Errorf("write stock for %s: %w", product.Code, err)
				}
				result.StockLevels++
			}
			result.Products = append(result.Products, *product)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("Seeded demo data",
		zap.String("tenant_id", opts.TenantID.String()),
		zap.Int("locations", len(result.Locations)),
		zap.Int("products", len(result.Products)),
		zap.Int("stock_levels", result.StockLevels),
	)
	return result, nil
}
