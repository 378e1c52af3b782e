package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	appinv "github.com/pos/backend/internal/application/inventory"
	"github.com/pos/backend/internal/infrastructure/auth"
	"github.com/pos/backend/internal/infrastructure/cache"
	"github.com/pos/backend/internal/infrastructure/config"
	"github.com/pos/backend/internal/infrastructure/event"
	"github.com/pos/backend/internal/infrastructure/logger"
	"github.com/pos/backend/internal/infrastructure/persistence"
	"github.com/pos/backend/internal/infrastructure/telemetry"
	"github.com/pos/backend/internal/interfaces/http/handler"
	"github.com/pos/backend/internal/interfaces/http/middleware"
	"github.com/pos/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// The OTLP log bridge needs its own bootstrap logger since the main one tees into it.
	logLevel, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		logLevel = zapcore.InfoLevel
	}
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, nil)
	if err != nil {
		panic("Failed to initialize log exporter: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, logProvider.Core(logLevel))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting POS Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), 200*time.Millisecond)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	dbTracingCfg := telemetry.DefaultDBTracingConfig()
	dbTracingCfg.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracingCfg.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	if cfg.Database.Driver == "sqlite" {
		dbTracingCfg.DBSystem = "sqlite"
	}
	if err := telemetry.NewDBTracingPlugin(dbTracingCfg, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// PostgreSQL schemas come from cmd/migrate; sqlite has no migration files.
	if cfg.Database.AutoMigrate || cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate schema", zap.Error(err))
		}
		log.Info("Schema auto-migrated")
	}

	// Location locks
	locker, closeLocker, err := cache.NewLockerFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).Create(ctx)
	if err != nil {
		log.Fatal("Failed to create location locker", zap.Error(err))
	}
	defer func() {
		if err := closeLocker(); err != nil {
			log.Error("Error closing Redis client", zap.Error(err))
		}
	}()

	// Events
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewAuditLogHandler(log))
	stockTakeMetrics, err := telemetry.NewStockTakeMetrics(meterProvider.Meter(telemetry.TracerName))
	if err != nil {
		log.Fatal("Failed to register stock take metrics", zap.Error(err))
	}
	eventBus.Subscribe(appinv.NewStockTakeMetricsHandler(stockTakeMetrics, log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	stockTakeService := appinv.NewStockTakeService(
		persistence.NewGormStockTakeSessionRepository(db.DB),
		persistence.NewGormLocationRepository(db.DB),
		persistence.NewGormStockAdjustmentRepository(db.DB),
		appinv.NewSnapshotProvider(persistence.NewGormInventoryStore(db.DB)),
		persistence.NewGormTransactionScope(db.DB),
		locker,
		eventBus,
		log,
		appinv.StockTakeServiceConfig{FinalizeLockTTL: cfg.StockTake.FinalizeLockTTL},
	)

	// HTTP
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSOrigins

	engineCfg := router.EngineConfig{
		Logger:               log,
		ServiceName:          cfg.Telemetry.ServiceName,
		TracingEnabled:       cfg.Telemetry.Enabled,
		CORS:                 corsCfg,
		MaxBodySize:          cfg.HTTP.MaxBodySize,
		TrustedProxies:       cfg.HTTP.TrustedProxies,
		AllowIdentityHeaders: !cfg.JWT.Enabled,
	}
	if cfg.JWT.Enabled {
		engineCfg.Validator = auth.NewJWTService(cfg.JWT)
	}

	engine, err := router.NewEngine(engineCfg, router.Handlers{
		Health:    handler.NewHealthHandler(cfg.App.Name, version, map[string]handler.Pinger{"database": db}),
		StockTake: handler.NewStockTakeHandler(stockTakeService),
		Location:  handler.NewLocationHandler(stockTakeService),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down metrics", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracing", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down log exporter", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
