package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics set is built without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// StockTakeMetrics records the stock take business metrics.
type StockTakeMetrics struct {
	started   *Counter
	finalized *Counter
	cancelled *Counter
	variance  *Histogram
}

// NewStockTakeMetrics registers the stock take instruments on meter.
func NewStockTakeMetrics(meter metric.Meter) (*StockTakeMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	started, err := NewCounter(meter, "stocktake_sessions_started_total",
		"Total number of stock take sessions started", "{session}")
	if err != nil {
		return nil, err
	}
	finalized, err := NewCounter(meter, "stocktake_sessions_finalized_total",
		"Total number of stock take sessions finalized", "{session}")
	if err != nil {
		return nil, err
	}
	cancelled, err := NewCounter(meter, "stocktake_sessions_cancelled_total",
		"Total number of stock take sessions cancelled", "{session}")
	if err != nil {
		return nil, err
	}
	variance, err := NewHistogram(meter, HistogramOpts{
		Name:        "stocktake_variance_units",
		Description: "Absolute unit variance of each applied stock take line",
		Unit:        "{unit}",
		Boundaries:  VarianceUnitBuckets,
	})
	if err != nil {
		return nil, err
	}

	return &StockTakeMetrics{
		started:   started,
		finalized: finalized,
		cancelled: cancelled,
		variance:  variance,
	}, nil
}

// RecordSessionStarted counts a started session.
func (m *StockTakeMetrics) RecordSessionStarted(ctx context.Context, tenantID string, _ int) {
	m.started.Inc(ctx, AttrTenantID.String(tenantID))
}

// RecordSessionFinalized counts a finalized session and records each applied variance.
func (m *StockTakeMetrics) RecordSessionFinalized(ctx context.Context, tenantID string, variances []int64) {
	m.finalized.Inc(ctx, AttrTenantID.String(tenantID))
	for _, v := range variances {
		direction := "surplus"
		if v < 0 {
			direction = "shortage"
			v = -v
		}
		m.variance.Record(ctx, float64(v), AttrTenantID.String(tenantID), AttrDirection.String(direction))
	}
}

// RecordSessionCancelled counts a cancelled session.
func (m *StockTakeMetrics) RecordSessionCancelled(ctx context.Context, tenantID string, _ int) {
	m.cancelled.Inc(ctx, AttrTenantID.String(tenantID))
}
