package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pos/backend/internal/infrastructure/logger"
	"github.com/pos/backend/internal/interfaces/http/dto"
	"github.com/pos/backend/internal/interfaces/http/handler"
	"github.com/pos/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// EngineConfig configures the HTTP engine
type EngineConfig struct {
	Logger         *zap.Logger
	ServiceName    string
	TracingEnabled bool
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	TrustedProxies []string

	// Validator enables bearer authentication when set
	Validator middleware.TokenValidator
	// AllowIdentityHeaders accepts X-Tenant-ID / X-User-ID without a token
	AllowIdentityHeaders bool
}

// Handlers groups the endpoint handlers mounted by NewEngine
type Handlers struct {
	Health    *handler.HealthHandler
	StockTake *handler.StockTakeHandler
	Location  *handler.LocationHandler
}

// NewEngine builds the gin engine with the global middleware chain,
// /health at the root and the authenticated API under /api/v1.
func NewEngine(cfg EngineConfig, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	middleware.SetupValidator()

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.Tracing(cfg.ServiceName, cfg.TracingEnabled),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORSWithConfig(cfg.CORS),
	)
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Route not found", middleware.GetRequestID(c)))
	})

	if h.Health != nil {
		engine.GET("/health", h.Health.Health)
	}

	var apiChain []gin.HandlerFunc
	if cfg.Validator != nil {
		apiChain = append(apiChain, middleware.JWTAuthMiddleware(middleware.JWTMiddlewareConfig{
			Validator: cfg.Validator,
			Logger:    log,
		}))
	}
	apiChain = append(apiChain,
		middleware.TenantMiddleware(middleware.TenantMiddlewareConfig{
			AllowHeaders: cfg.AllowIdentityHeaders,
			Logger:       log,
		}),
		middleware.SpanEnricher(),
	)

	r := NewRouter(engine, WithAPIVersion("v1"), WithMiddleware(apiChain...))
	if h.Location != nil {
		r.Register(LocationRoutes(h.Location))
	}
	if h.StockTake != nil {
		r.Register(StockTakeRoutes(h.StockTake))
	}
	r.Setup()

	return engine, nil
}
