package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type countRow struct {
	ID       uint `gorm:"primaryKey"`
	Code     string
	Quantity int64
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&countRow{}))
	return db
}

func setupRecorder(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, sr
}

func spanAttrs(s sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	m := map[attribute.Key]attribute.Value{}
	for _, a := range s.Attributes() {
		m[a.Key] = a.Value
	}
	return m
}

func TestNewDBTracingPlugin_Defaults(t *testing.T) {
	p := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, nil)
	assert.Equal(t, 200*time.Millisecond, p.config.SlowQueryThresh)
	assert.Equal(t, "postgresql", p.config.DBSystem)

	def := DefaultDBTracingConfig()
	assert.False(t, def.Enabled)
	assert.False(t, def.LogFullSQL)
}

func TestDBTracingPlugin_Register(t *testing.T) {
	t.Run("disabled is a no-op", func(t *testing.T) {
		db := setupTestDB(t)
		require.NoError(t, NewDBTracingPlugin(DBTracingConfig{}, zap.NewNop()).Register(db))
		_, ok := db.Plugins["otelgorm"]
		assert.False(t, ok)
	})

	t.Run("enabled emits db spans", func(t *testing.T) {
		tp, sr := setupRecorder(t)
		original := otel.GetTracerProvider()
		otel.SetTracerProvider(tp)
		t.Cleanup(func() { otel.SetTracerProvider(original) })

		core, logs := observer.New(zap.InfoLevel)
		db := setupTestDB(t)
		p := NewDBTracingPlugin(DBTracingConfig{Enabled: true, DBSystem: "sqlite"}, zap.New(core))
		require.NoError(t, p.Register(db))
		assert.Equal(t, 1, logs.FilterMessage("Database tracing enabled").Len())

		ctx, parent := tp.Tracer("test").Start(context.Background(), "stock_take.finalize")
		require.NoError(t, db.WithContext(ctx).Create(&countRow{Code: "P-001", Quantity: 5}).Error)
		parent.End()

		assert.GreaterOrEqual(t, len(sr.Ended()), 2)
	})

	t.Run("second registration fails", func(t *testing.T) {
		db := setupTestDB(t)
		p := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zap.NewNop())
		require.NoError(t, p.Register(db))
		assert.Error(t, p.Register(db))
	})
}

func TestAfterQuery(t *testing.T) {
	t.Run("annotates rows, table and slow query", func(t *testing.T) {
		db := setupTestDB(t)
		tp, sr := setupRecorder(t)
		p := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Millisecond}, zap.NewNop())

		ctx, span := tp.Tracer("test").Start(context.Background(), "query")
		ctx = context.WithValue(ctx, queryStartTimeKey, time.Now().Add(-time.Second))
		result := db.WithContext(ctx).Create(&countRow{Code: "P-001", Quantity: 3})
		require.NoError(t, result.Error)

		p.afterQuery(result)
		span.End()

		got := sr.Ended()[0]
		attrs := spanAttrs(got)
		assert.Equal(t, int64(1), attrs["db.rows_affected"].AsInt64())
		assert.Equal(t, "count_rows", attrs["db.sql.table"].AsString())
		assert.True(t, attrs["db.slow_query"].AsBool())
		require.Len(t, got.Events(), 1)
		assert.Equal(t, "slow_query_warning", got.Events()[0].Name)
	})

	t.Run("marks errors but not record not found", func(t *testing.T) {
		db := setupTestDB(t)
		tp, sr := setupRecorder(t)
		p := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zap.NewNop())

		ctx, span := tp.Tracer("test").Start(context.Background(), "missing")
		var row countRow
		result := db.WithContext(ctx).First(&row, "code = ?", "nope")
		require.ErrorIs(t, result.Error, gorm.ErrRecordNotFound)
		p.afterQuery(result)
		span.End()
		assert.Equal(t, codes.Unset, sr.Ended()[0].Status().Code)

		ctx, span = tp.Tracer("test").Start(context.Background(), "broken")
		result = db.WithContext(ctx).Table("no_such_table").Find(&[]countRow{})
		require.Error(t, result.Error)
		p.afterQuery(result)
		span.End()
		assert.Equal(t, codes.Error, sr.Ended()[1].Status().Code)
	})

	t.Run("ignores non recording spans", func(t *testing.T) {
		db := setupTestDB(t)
		p := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zap.NewNop())
		result := db.WithContext(context.Background()).Find(&[]countRow{})
		assert.NotPanics(t, func() { p.afterQuery(result) })
	})
}
