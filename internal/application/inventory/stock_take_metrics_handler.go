package inventory

import (
	"context"

	"github.com/pos/backend/internal/domain/inventory"
	"github.com/pos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StockTakeRecorder receives stock take business measurements
type StockTakeRecorder interface {
	RecordSessionStarted(ctx context.Context, tenantID string, lines int)
	RecordSessionFinalized(ctx context.Context, tenantID string, variances []int64)
	RecordSessionCancelled(ctx context.Context, tenantID string, discardedCounts int)
}

// StockTakeMetricsHandler turns stock take events into business metrics
type StockTakeMetricsHandler struct {
	recorder StockTakeRecorder
	logger   *zap.Logger
}

// NewStockTakeMetricsHandler creates a new StockTakeMetricsHandler
func NewStockTakeMetricsHandler(recorder StockTakeRecorder, logger *zap.Logger) *StockTakeMetricsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockTakeMetricsHandler{recorder: recorder, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *StockTakeMetricsHandler) EventTypes() []string {
	return []string{
		inventory.EventTypeStockTakeStarted,
		inventory.EventTypeStockTakeFinalized,
		inventory.EventTypeStockTakeCancelled,
	}
}

// Handle records the metric matching the event
func (h *StockTakeMetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	tenantID := event.TenantID().String()
	switch e := event.(type) {
	case *inventory.StockTakeStartedEvent:
		h.recorder.RecordSessionStarted(ctx, tenantID, e.TotalLines)
	case *inventory.StockTakeFinalizedEvent:
		variances := make([]int64, len(e.Lines))
		for i, l := range e.Lines {
			variances[i] = l.Variance
		}
		h.recorder.RecordSessionFinalized(ctx, tenantID, variances)
	case *inventory.StockTakeCancelledEvent:
		h.recorder.RecordSessionCancelled(ctx, tenantID, e.DiscardedCounts)
	default:
		h.logger.Debug("Ignoring unexpected event", zap.String("event_type", event.EventType()))
	}
	return nil
}

var _ shared.EventHandler = (*StockTakeMetricsHandler)(nil)
