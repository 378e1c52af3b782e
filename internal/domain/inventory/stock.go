package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductStock is the aggregate (all-location) stock record of a product.
type ProductStock struct {
	shared.BaseEntity
	TenantID      uuid.UUID
	Code          string
	Name          string
	Unit          string
	UnitCost      decimal.Decimal
	TotalQuantity int64
}

// NewProductStock creates a product stock record with zero total
func NewProductStock(tenantID uuid.UUID, code, name, unit string, unitCost decimal.Decimal) (*ProductStock, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_CODE", "Product code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_UNIT_COST", "Unit cost cannot be negative")
	}
	return &ProductStock{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		Code:       code,
		Name:       name,
		Unit:       unit,
		UnitCost:   unitCost,
	}, nil
}

// Adjust applies delta to the total. The total never goes below zero.
func (p *ProductStock) Adjust(delta int64) error {
	if p.TotalQuantity+delta < 0 {
		return shared.ErrInsufficientStock
	}
	p.TotalQuantity += delta
	p.Touch()
	return nil
}

// LocationStock is the quantity of one product held at one location.
type LocationStock struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	LocationID uuid.UUID
	ProductID  uuid.UUID
	Quantity   int64
	UpdatedAt  time.Time
}

// NewLocationStock creates a location stock row
func NewLocationStock(tenantID, locationID, productID uuid.UUID, quantity int64) (*LocationStock, error) {
	if quantity < 0 {
		return nil, ErrInvalidCount
	}
	return &LocationStock{
		ID:         uuid.New(),
		TenantID:   tenantID,
		LocationID: locationID,
		ProductID:  productID,
		Quantity:   quantity,
		UpdatedAt:  time.Now(),
	}, nil
}

// StockLevel is one product's on-hand quantity at a location, enriched with
// the product data a counting sheet needs.
type StockLevel struct {
	ProductID   uuid.UUID
	ProductCode string
	ProductName string
	Unit        string
	UnitCost    decimal.Decimal
	Quantity    int64
}

// Snapshot is the expected stock of a location at one instant.
// An unknown location yields an empty snapshot.
type Snapshot struct {
	LocationID uuid.UUID
	TakenAt    time.Time
	Levels     []StockLevel
}

// IsEmpty reports whether nothing is expected at the location
func (s *Snapshot) IsEmpty() bool {
	return len(s.Levels) == 0
}

// StockAdjustment records one line applied to inventory by a finalized stock take.
type StockAdjustment struct {
	ID               uuid.UUID
	TenantID         uuid.UUID
	SessionID        uuid.UUID
	LocationID       uuid.UUID
	ProductID        uuid.UUID
	ExpectedQuantity int64
	CountedQuantity  int64
	Variance         int64
	// PreviousQuantity is the live location quantity overwritten by the count.
	PreviousQuantity int64
	UnitCost         decimal.Decimal
	VarianceValue    decimal.Decimal
	CreatedAt        time.Time
}

// Drift is the movement at the location between snapshot and finalize
func (a StockAdjustment) Drift() int64 {
	return a.PreviousQuantity - a.ExpectedQuantity
}

// NewStockAdjustment builds the ledger entry for an applied variance line
func NewStockAdjustment(session *StockTakeSession, line VarianceLine, previousQty int64, at time.Time) StockAdjustment {
	return StockAdjustment{
		ID:               uuid.New(),
		TenantID:         session.TenantID,
		SessionID:        session.ID,
		LocationID:       session.LocationID,
		ProductID:        line.ProductID,
		ExpectedQuantity: line.ExpectedQuantity,
		CountedQuantity:  line.CountedQuantity,
		Variance:         line.Variance,
		PreviousQuantity: previousQty,
		UnitCost:         line.UnitCost,
		VarianceValue:    line.VarianceValue,
		CreatedAt:        at,
	}
}
