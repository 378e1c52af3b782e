package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestGinMiddleware_LevelsByStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("request_id", "req-9"); c.Next() })
	r.Use(GinMiddleware(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) {
		FromContext(c.Request.Context()).Info("inside")
		c.Status(http.StatusOK)
	})
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) })

	for _, path := range []string{"/ok?page=2", "/bad", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 1, logs.FilterMessage("inside").Len())
	requests := logs.FilterMessage("HTTP Request").All()
	if assert.Len(t, requests, 3) {
		assert.Equal(t, zapcore.InfoLevel, requests[0].Level)
		assert.Equal(t, "page=2", requests[0].ContextMap()["query"])
		assert.Equal(t, "req-9", requests[0].ContextMap()["request_id"])
		assert.Equal(t, zapcore.WarnLevel, requests[1].Level)
		assert.Equal(t, zapcore.ErrorLevel, requests[2].Level)
	}
}

func TestRecovery_ReturnsEnvelope(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":{"code":"ERR_INTERNAL","message":"Internal server error"}}`, w.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}
