package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/inventory"
	"github.com/pos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStockAdjustmentRepository implements StockAdjustmentRepository using GORM
type GormStockAdjustmentRepository struct {
	db *gorm.DB
}

// NewGormStockAdjustmentRepository creates a new GormStockAdjustmentRepository
func NewGormStockAdjustmentRepository(db *gorm.DB) *GormStockAdjustmentRepository {
	return &GormStockAdjustmentRepository{db: db}
}

// SaveBatch inserts ledger rows
func (r *GormStockAdjustmentRepository) SaveBatch(ctx context.Context, adjustments []inventory.StockAdjustment) error {
	if len(adjustments) == 0 {
		return nil
	}
	rows := make([]*models.StockAdjustmentModel, len(adjustments))
	for i := range adjustments {
		rows[i] = models.StockAdjustmentModelFromDomain(&adjustments[i])
	}
	return r.db.WithContext(ctx).CreateInBatches(rows, 200).Error
}

// FindBySession returns the ledger rows of a session ordered by product code
func (r *GormStockAdjustmentRepository) FindBySession(ctx context.Context, tenantID, sessionID uuid.UUID) ([]inventory.StockAdjustment, error) {
	var rows []models.StockAdjustmentModel
	if err := r.db.WithContext(ctx).
		Table("stock_adjustments").
		Select("stock_adjustments.*").
		Joins("LEFT JOIN products ON products.id = stock_adjustments.product_id").
		Where("stock_adjustments.tenant_id = ? AND stock_adjustments.session_id = ?", tenantID, sessionID).
		Order("products.code ASC, stock_adjustments.product_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	adjustments := make([]inventory.StockAdjustment, len(rows))
	for i := range rows {
		adjustments[i] = rows[i].ToDomain()
	}
	return adjustments, nil
}

var _ inventory.StockAdjustmentRepository = (*GormStockAdjustmentRepository)(nil)
