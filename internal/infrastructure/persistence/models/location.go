package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// LocationModel is the persistence model for a stock-keeping location.
type LocationModel struct {
	BaseModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_location_tenant_code,priority:1"`
	Code     string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_location_tenant_code,priority:2"`
	Name     string    `gorm:"type:varchar(100);not null"`
	IsActive bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (LocationModel) TableName() string {
	return "locations"
}

// ToDomain converts the persistence model to a domain Location
func (m *LocationModel) ToDomain() *inventory.Location {
	return &inventory.Location{
		BaseEntity: m.BaseModel.ToDomain(),
		TenantID:   m.TenantID,
		Code:       m.Code,
		Name:       m.Name,
		IsActive:   m.IsActive,
	}
}

// LocationModelFromDomain creates a persistence model from a domain Location
func LocationModelFromDomain(l *inventory.Location) *LocationModel {
	m := &LocationModel{
		TenantID: l.TenantID,
		Code:     l.Code,
		Name:     l.Name,
		IsActive: l.IsActive,
	}
	m.FromDomainBaseEntity(l.BaseEntity)
	return m
}

// ProductStockModel holds a product and its aggregate quantity across all locations.
type ProductStockModel struct {
	BaseModel
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_product_tenant_code,priority:1"`
	Code          string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_tenant_code,priority:2"`
	Name          string          `gorm:"type:varchar(200);not null"`
	Unit          string          `gorm:"type:varchar(20);not null;default:''"`
	UnitCost      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalQuantity int64           `gorm:"not null;default:0;check:chk_products_total_quantity,total_quantity >= 0"`
}

// TableName returns the table name for GORM
func (ProductStockModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain ProductStock
func (m *ProductStockModel) ToDomain() *inventory.ProductStock {
	return &inventory.ProductStock{
		BaseEntity:    m.BaseModel.ToDomain(),
		TenantID:      m.TenantID,
		Code:          m.Code,
		Name:          m.Name,
		Unit:          m.Unit,
		UnitCost:      m.UnitCost,
		TotalQuantity: m.TotalQuantity,
	}
}

// ProductStockModelFromDomain creates a persistence model from a domain ProductStock
func ProductStockModelFromDomain(p *inventory.ProductStock) *ProductStockModel {
	m := &ProductStockModel{
		TenantID:      p.TenantID,
		Code:          p.Code,
		Name:          p.Name,
		Unit:          p.Unit,
		UnitCost:      p.UnitCost,
		TotalQuantity: p.TotalQuantity,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// LocationStockModel is the quantity of one product at one location.
type LocationStockModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index"`
	LocationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_location_stock_location_product,priority:1"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_location_stock_location_product,priority:2"`
	Quantity   int64     `gorm:"not null;default:0"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LocationStockModel) TableName() string {
	return "location_stocks"
}

// ToDomain converts the persistence model to a domain LocationStock
func (m *LocationStockModel) ToDomain() *inventory.LocationStock {
	return &inventory.LocationStock{
		ID:         m.ID,
		TenantID:   m.TenantID,
		LocationID: m.LocationID,
		ProductID:  m.ProductID,
		Quantity:   m.Quantity,
		UpdatedAt:  m.UpdatedAt,
	}
}

// LocationStockModelFromDomain creates a persistence model from a domain LocationStock
func LocationStockModelFromDomain(s *inventory.LocationStock) *LocationStockModel {
	return &LocationStockModel{
		ID:         s.ID,
		TenantID:   s.TenantID,
		LocationID: s.LocationID,
		ProductID:  s.ProductID,
		Quantity:   s.Quantity,
		UpdatedAt:  s.UpdatedAt,
	}
}
