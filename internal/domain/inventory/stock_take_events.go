package inventory

import (
	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeStockTakeSession is the aggregate type of session events
const AggregateTypeStockTakeSession = "StockTakeSession"

// Stock take event types
const (
	EventTypeStockTakeStarted   = "StockTakeStarted"
	EventTypeStockTakeFinalized = "StockTakeFinalized"
	EventTypeStockTakeCancelled = "StockTakeCancelled"
)

// StockTakeStartedEvent is raised when a session opens
type StockTakeStartedEvent struct {
	shared.BaseDomainEvent
	SessionNumber string    `json:"session_number"`
	LocationID    uuid.UUID `json:"location_id"`
	LocationName  string    `json:"location_name"`
	TotalLines    int       `json:"total_lines"`
	CreatedByID   uuid.UUID `json:"created_by_id"`
}

// NewStockTakeStartedEvent creates a StockTakeStartedEvent
func NewStockTakeStartedEvent(s *StockTakeSession) *StockTakeStartedEvent {
	return &StockTakeStartedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockTakeStarted, AggregateTypeStockTakeSession, s.ID, s.TenantID),
		SessionNumber:   s.SessionNumber,
		LocationID:      s.LocationID,
		LocationName:    s.LocationName,
		TotalLines:      len(s.Lines),
		CreatedByID:     s.CreatedByID,
	}
}

// StockTakeFinalizedEvent is raised once counted quantities are applied to inventory
type StockTakeFinalizedEvent struct {
	shared.BaseDomainEvent
	SessionNumber string          `json:"session_number"`
	LocationID    uuid.UUID       `json:"location_id"`
	Lines         []VarianceLine  `json:"lines"`
	NetUnits      int64           `json:"net_units"`
	NetValue      decimal.Decimal `json:"net_value"`
}

// NewStockTakeFinalizedEvent creates a StockTakeFinalizedEvent
func NewStockTakeFinalizedEvent(s *StockTakeSession, applied []VarianceLine) *StockTakeFinalizedEvent {
	e := &StockTakeFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockTakeFinalized, AggregateTypeStockTakeSession, s.ID, s.TenantID),
		SessionNumber:   s.SessionNumber,
		LocationID:      s.LocationID,
		Lines:           applied,
		NetValue:        decimal.Zero,
	}
	for _, l := range applied {
		e.NetUnits += l.Variance
		e.NetValue = e.NetValue.Add(l.VarianceValue)
	}
	return e
}

// StockTakeCancelledEvent is raised when a session is abandoned
type StockTakeCancelledEvent struct {
	shared.BaseDomainEvent
	SessionNumber   string    `json:"session_number"`
	LocationID      uuid.UUID `json:"location_id"`
	DiscardedCounts int       `json:"discarded_counts"`
	CancelReason    string    `json:"cancel_reason"`
}

// NewStockTakeCancelledEvent creates a StockTakeCancelledEvent
func NewStockTakeCancelledEvent(s *StockTakeSession, discarded int) *StockTakeCancelledEvent {
	return &StockTakeCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockTakeCancelled, AggregateTypeStockTakeSession, s.ID, s.TenantID),
		SessionNumber:   s.SessionNumber,
		LocationID:      s.LocationID,
		DiscardedCounts: discarded,
		CancelReason:    s.CancelReason,
	}
}
