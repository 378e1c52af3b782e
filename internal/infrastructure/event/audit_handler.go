package event

import (
	"context"

	"github.com/pos/backend/internal/domain/inventory"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AuditLogHandler writes one structured log line per stock take lifecycle event.
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates a new AuditLogHandler
func NewAuditLogHandler(log *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: log.Named("audit")}
}

// EventTypes returns the stock take lifecycle events
func (h *AuditLogHandler) EventTypes() []string {
	return []string{
		inventory.EventTypeStockTakeStarted,
		inventory.EventTypeStockTakeFinalized,
		inventory.EventTypeStockTakeCancelled,
	}
}

// Handle logs the event
func (h *AuditLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := append(logger.Fields(ctx),
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("session_id", event.AggregateID().String()),
		zap.String("tenant_id", event.TenantID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	)

	switch e := event.(type) {
	case *inventory.StockTakeStartedEvent:
		fields = append(fields,
			zap.String("session_number", e.SessionNumber),
			zap.String("location_id", e.LocationID.String()),
			zap.Int("lines", e.TotalLines),
		)
	case *inventory.StockTakeFinalizedEvent:
		fields = append(fields,
			zap.String("session_number", e.SessionNumber),
			zap.Int("adjusted_lines", len(e.Lines)),
			zap.Int64("net_units", e.NetUnits),
			zap.String("net_value", e.NetValue.String()),
		)
	case *inventory.StockTakeCancelledEvent:
		fields = append(fields,
			zap.String("session_number", e.SessionNumber),
			zap.Int("discarded_counts", e.DiscardedCounts),
			zap.String("reason", e.CancelReason),
		)
	}

	h.logger.Info("Stock take event", fields...)
	return nil
}

var _ shared.EventHandler = (*AuditLogHandler)(nil)
