package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/inventory"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInventoryStore implements InventoryStore over the location_stocks and
// products tables.
type GormInventoryStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormInventoryStore creates a new GormInventoryStore
func NewGormInventoryStore(db *gorm.DB) *GormInventoryStore {
	return &GormInventoryStore{db: db, now: time.Now}
}

type stockLevelRow struct {
	ProductID uuid.UUID
	Code      string
	Name      string
	Unit      string
	UnitCost  decimal.Decimal
	Quantity  int64
}

// ReadLocationStock returns each product held at the location, ordered by product code
func (s *GormInventoryStore) ReadLocationStock(ctx context.Context, tenantID, locationID uuid.UUID) ([]inventory.StockLevel, error) {
	var rows []stockLevelRow
	err := s.db.WithContext(ctx).
		Table("location_stocks AS ls").
		Select("ls.product_id, p.code, p.name, p.unit, p.unit_cost, ls.quantity").
		Joins("JOIN products AS p ON p.id = ls.product_id AND p.tenant_id = ls.tenant_id").
		Where("ls.tenant_id = ? AND ls.location_id = ?", tenantID, locationID).
		Order("p.code ASC, ls.product_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	levels := make([]inventory.StockLevel, len(rows))
	for i, row := range rows {
		levels[i] = inventory.StockLevel{
			ProductID:   row.ProductID,
			ProductCode: row.Code,
			ProductName: row.Name,
			Unit:        row.Unit,
			UnitCost:    row.UnitCost,
			Quantity:    row.Quantity,
		}
	}
	return levels, nil
}

// WriteLocationStock upserts the absolute quantity of a product at a location
func (s *GormInventoryStore) WriteLocationStock(ctx context.Context, tenantID, productID, locationID uuid.UUID, quantity int64) error {
	stock, err := inventory.NewLocationStock(tenantID, locationID, productID, quantity)
	if err != nil {
		return err
	}
	stock.UpdatedAt = s.now()
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "location_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
		}).
		Create(models.LocationStockModelFromDomain(stock)).Error
}

// AdjustAggregateStock adds delta to the product total in a single guarded update.
// A result below zero leaves the row untouched and yields shared.ErrInsufficientStock.
func (s *GormInventoryStore) AdjustAggregateStock(ctx context.Context, tenantID, productID uuid.UUID, delta int64) error {
	db := s.db.WithContext(ctx)
	result := db.Model(&models.ProductStockModel{}).
		Where("tenant_id = ? AND id = ? AND total_quantity + ? >= 0", tenantID, productID, delta).
		Updates(map[string]any{
			"total_quantity": gorm.Expr("total_quantity + ?", delta),
			"updated_at":     s.now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(&models.ProductStockModel{}).
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.ErrNotFound
	}
	return shared.ErrInsufficientStock
}

var _ inventory.InventoryStore = (*GormInventoryStore)(nil)
