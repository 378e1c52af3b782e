package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pos/backend/internal/infrastructure/logger"
	"github.com/pos/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Identity keys and headers
const (
	TenantIDKey       = "tenant_id"
	UserIDKey         = "user_id"
	UserNameKey       = "user_name"
	TenantHeaderKey   = "X-Tenant-ID"
	UserHeaderKey     = "X-User-ID"
	UserNameHeaderKey = "X-User-Name"
)

// TenantMiddlewareConfig holds configuration for tenant middleware
type TenantMiddlewareConfig struct {
	// AllowHeaders lets X-Tenant-ID / X-User-ID stand in for missing JWT claims
	AllowHeaders bool
	SkipPaths    []string
	Logger       *zap.Logger
}

// TenantMiddleware resolves the tenant and operator of each request.
// Order: JWT claims, then headers when allowed. A tenant is mandatory; the
// operator is optional here and enforced by commands that record one.
func TenantMiddleware(cfg TenantMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		if slices.Contains(cfg.SkipPaths, c.Request.URL.Path) {
			c.Next()
			return
		}

		rawTenant := GetJWTTenantID(c)
		if rawTenant == "" && cfg.AllowHeaders {
			rawTenant = c.GetHeader(TenantHeaderKey)
		}
		if rawTenant == "" {
			abortTenant(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Tenant context is required")
			return
		}
		tenantID, err := uuid.Parse(rawTenant)
		if err != nil {
			log.Warn("Invalid tenant ID", zap.String("tenant_id", rawTenant))
			abortTenant(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid tenant ID format")
			return
		}

		rawUser := GetJWTUserID(c)
		userName := GetJWTUsername(c)
		if rawUser == "" && cfg.AllowHeaders {
			rawUser = c.GetHeader(UserHeaderKey)
			userName = c.GetHeader(UserNameHeaderKey)
		}
		var userID uuid.UUID
		if rawUser != "" {
			if userID, err = uuid.Parse(rawUser); err != nil {
				abortTenant(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid user ID format")
				return
			}
		}

		c.Set(TenantIDKey, tenantID)
		ctx := logger.WithTenantID(c.Request.Context(), tenantID.String())
		if userID != uuid.Nil {
			c.Set(UserIDKey, userID)
			c.Set(UserNameKey, userName)
			ctx = logger.WithUserID(ctx, userID.String())
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func abortTenant(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetTenantID returns the tenant resolved by TenantMiddleware
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(TenantIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetUser returns the operator resolved by TenantMiddleware
func GetUser(c *gin.Context) (uuid.UUID, string, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return uuid.Nil, "", false
	}
	id, ok := v.(uuid.UUID)
	return id, c.GetString(UserNameKey), ok
}
