package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// StockTakeSessionModel is the persistence model for the StockTakeSession aggregate root.
type StockTakeSessionModel struct {
	TenantAggregateModel
	SessionNumber string                  `gorm:"type:varchar(50);not null;index"`
	LocationID    uuid.UUID               `gorm:"type:uuid;not null;index:idx_stock_take_location_status,priority:1"`
	LocationName  string                  `gorm:"type:varchar(100);not null"`
	Status        inventory.SessionStatus `gorm:"type:varchar(20);not null;default:'IN_PROGRESS';index:idx_stock_take_location_status,priority:2"`
	CreatedByID   uuid.UUID               `gorm:"type:uuid;not null"`
	CreatedByName string                  `gorm:"type:varchar(100);not null;default:''"`
	CompletedAt   *time.Time
	CancelledAt   *time.Time
	CancelReason  string               `gorm:"type:varchar(500)"`
	Remark        string               `gorm:"type:text"`
	Lines         []StockTakeLineModel `gorm:"foreignKey:SessionID;references:ID"`
}

// TableName returns the table name for GORM
func (StockTakeSessionModel) TableName() string {
	return "stock_take_sessions"
}

// ToDomain converts the persistence model to a domain StockTakeSession.
// Lines are only present when they were preloaded.
func (m *StockTakeSessionModel) ToDomain() *inventory.StockTakeSession {
	s := &inventory.StockTakeSession{
		SessionNumber: m.SessionNumber,
		LocationID:    m.LocationID,
		LocationName:  m.LocationName,
		Status:        m.Status,
		CreatedByID:   m.CreatedByID,
		CreatedByName: m.CreatedByName,
		CompletedAt:   m.CompletedAt,
		CancelledAt:   m.CancelledAt,
		CancelReason:  m.CancelReason,
		Remark:        m.Remark,
		Lines:         make([]inventory.CountedLine, len(m.Lines)),
	}
	m.PopulateTenantAggregateRoot(&s.TenantAggregateRoot)
	for i := range m.Lines {
		s.Lines[i] = m.Lines[i].ToDomain()
	}
	return s
}

// FromDomain populates the model (without lines) from a domain StockTakeSession
func (m *StockTakeSessionModel) FromDomain(s *inventory.StockTakeSession) {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.SessionNumber = s.SessionNumber
	m.LocationID = s.LocationID
	m.LocationName = s.LocationName
	m.Status = s.Status
	m.CreatedByID = s.CreatedByID
	m.CreatedByName = s.CreatedByName
	m.CompletedAt = s.CompletedAt
	m.CancelledAt = s.CancelledAt
	m.CancelReason = s.CancelReason
	m.Remark = s.Remark
}

// StockTakeSessionModelFromDomain creates a persistence model, lines included
func StockTakeSessionModelFromDomain(s *inventory.StockTakeSession) *StockTakeSessionModel {
	m := &StockTakeSessionModel{}
	m.FromDomain(s)
	m.Lines = make([]StockTakeLineModel, len(s.Lines))
	for i := range s.Lines {
		m.Lines[i] = *StockTakeLineModelFromDomain(s.ID, &s.Lines[i])
	}
	return m
}

// StockTakeLineModel is one product's expected and counted quantity within a session.
type StockTakeLineModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	SessionID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_take_line_session_product,priority:1"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_take_line_session_product,priority:2"`
	ProductCode      string          `gorm:"type:varchar(50);not null"`
	ProductName      string          `gorm:"type:varchar(200);not null"`
	Unit             string          `gorm:"type:varchar(20);not null;default:''"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ExpectedQuantity int64           `gorm:"not null"`
	CountedQuantity  *int64
	CountedAt        *time.Time
}

// TableName returns the table name for GORM
func (StockTakeLineModel) TableName() string {
	return "stock_take_lines"
}

// ToDomain converts the persistence model to a domain CountedLine
func (m *StockTakeLineModel) ToDomain() inventory.CountedLine {
	return inventory.CountedLine{
		ID:               m.ID,
		SessionID:        m.SessionID,
		ProductID:        m.ProductID,
		ProductCode:      m.ProductCode,
		ProductName:      m.ProductName,
		Unit:             m.Unit,
		UnitCost:         m.UnitCost,
		ExpectedQuantity: m.ExpectedQuantity,
		CountedQuantity:  m.CountedQuantity,
		CountedAt:        m.CountedAt,
	}
}

// StockTakeLineModelFromDomain creates a persistence model from a domain CountedLine
func StockTakeLineModelFromDomain(sessionID uuid.UUID, l *inventory.CountedLine) *StockTakeLineModel {
	return &StockTakeLineModel{
		ID:               l.ID,
		SessionID:        sessionID,
		ProductID:        l.ProductID,
		ProductCode:      l.ProductCode,
		ProductName:      l.ProductName,
		Unit:             l.Unit,
		UnitCost:         l.UnitCost,
		ExpectedQuantity: l.ExpectedQuantity,
		CountedQuantity:  l.CountedQuantity,
		CountedAt:        l.CountedAt,
	}
}

// StockAdjustmentModel is one ledger row written when a stock take is finalized.
type StockAdjustmentModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	SessionID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	LocationID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ExpectedQuantity int64           `gorm:"not null"`
	CountedQuantity  int64           `gorm:"not null"`
	Variance         int64           `gorm:"not null"`
	PreviousQuantity int64           `gorm:"not null"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	VarianceValue    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockAdjustmentModel) TableName() string {
	return "stock_adjustments"
}

// ToDomain converts the persistence model to a domain StockAdjustment
func (m *StockAdjustmentModel) ToDomain() inventory.StockAdjustment {
	return inventory.StockAdjustment{
		ID:               m.ID,
		TenantID:         m.TenantID,
		SessionID:        m.SessionID,
		LocationID:       m.LocationID,
		ProductID:        m.ProductID,
		ExpectedQuantity: m.ExpectedQuantity,
		CountedQuantity:  m.CountedQuantity,
		Variance:         m.Variance,
		PreviousQuantity: m.PreviousQuantity,
		UnitCost:         m.UnitCost,
		VarianceValue:    m.VarianceValue,
		CreatedAt:        m.CreatedAt,
	}
}

// StockAdjustmentModelFromDomain creates a persistence model from a domain StockAdjustment
func StockAdjustmentModelFromDomain(a *inventory.StockAdjustment) *StockAdjustmentModel {
	return &StockAdjustmentModel{
		ID:               a.ID,
		TenantID:         a.TenantID,
		SessionID:        a.SessionID,
		LocationID:       a.LocationID,
		ProductID:        a.ProductID,
		ExpectedQuantity: a.ExpectedQuantity,
		CountedQuantity:  a.CountedQuantity,
		Variance:         a.Variance,
		PreviousQuantity: a.PreviousQuantity,
		UnitCost:         a.UnitCost,
		VarianceValue:    a.VarianceValue,
		CreatedAt:        a.CreatedAt,
	}
}

// AllModels lists every model in dependency order for AutoMigrate
func AllModels() []any {
	return []any{
		&LocationModel{},
		&ProductStockModel{},
		&LocationStockModel{},
		&StockTakeSessionModel{},
		&StockTakeLineModel{},
		&StockAdjustmentModel{},
	}
}
