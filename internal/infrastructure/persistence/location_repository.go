package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/inventory"
	"github.com/pos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLocationRepository implements LocationRepository using GORM
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GormLocationRepository
func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

// FindByIDForTenant finds a location by ID within a tenant
func (r *GormLocationRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Location, error) {
	var model models.LocationModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists every location of a tenant ordered by code
func (r *GormLocationRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]inventory.Location, error) {
	var locationModels []models.LocationModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantID)).
		Order("code ASC").
		Find(&locationModels).Error; err != nil {
		return nil, err
	}
	locations := make([]inventory.Location, len(locationModels))
	for i := range locationModels {
		locations[i] = *locationModels[i].ToDomain()
	}
	return locations, nil
}

// Save creates or updates a location
func (r *GormLocationRepository) Save(ctx context.Context, location *inventory.Location) error {
	return r.db.WithContext(ctx).Save(models.LocationModelFromDomain(location)).Error
}

// GormProductStockRepository implements ProductStockRepository using GORM
type GormProductStockRepository struct {
	db *gorm.DB
}

// NewGormProductStockRepository creates a new GormProductStockRepository
func NewGormProductStockRepository(db *gorm.DB) *GormProductStockRepository {
	return &GormProductStockRepository{db: db}
}

// FindByIDForTenant finds a product stock record by ID within a tenant
func (r *GormProductStockRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.ProductStock, error) {
	var model models.ProductStockModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// Save creates or updates a product stock record
func (r *GormProductStockRepository) Save(ctx context.Context, product *inventory.ProductStock) error {
	return r.db.WithContext(ctx).Save(models.ProductStockModelFromDomain(product)).Error
}

var (
	_ inventory.LocationRepository     = (*GormLocationRepository)(nil)
	_ inventory.ProductStockRepository = (*GormProductStockRepository)(nil)
)
