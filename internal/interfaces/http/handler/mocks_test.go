package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appinv "github.com/pos/backend/internal/application/inventory"
	"github.com/pos/backend/internal/domain/inventory"
	"github.com/pos/backend/internal/interfaces/http/dto"
	"github.com/pos/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// MockStockTakeService implements StockTakeService and LocationService for testing
type MockStockTakeService struct {
	mock.Mock
}

func (m *MockStockTakeService) GetSession(ctx context.Context, tenantID, sessionID uuid.UUID) (*appinv.SessionResponse, error) {
	args := m.Called(ctx, tenantID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinv.SessionResponse), args.Error(1)
}

func (m *MockStockTakeService) ListSessions(ctx context.Context, tenantID uuid.UUID, filter appinv.SessionListFilter) ([]appinv.SessionListResponse, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]appinv.SessionListResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockStockTakeService) GetCount(ctx context.Context, tenantID, sessionID, productID uuid.UUID) (*appinv.CountResponse, error) {
	args := m.Called(ctx, tenantID, sessionID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinv.CountResponse), args.Error(1)
}

func (m *MockStockTakeService) GetProgress(ctx context.Context, tenantID, sessionID uuid.UUID) (*appinv.ProgressResponse, error) {
	args := m.Called(ctx, tenantID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinv.ProgressResponse), args.Error(1)
}

func (m *MockStockTakeService) GetVarianceReview(ctx context.Context, tenantID, sessionID uuid.UUID) (*appinv.VarianceReviewResponse, error) {
	args := m.Called(ctx, tenantID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinv.VarianceReviewResponse), args.Error(1)
}

func (m *MockStockTakeService) GetAdjustments(ctx context.Context, tenantID, sessionID uuid.UUID) ([]appinv.AdjustmentResponse, error) {
	args := m.Called(ctx, tenantID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appinv.AdjustmentResponse), args.Error(1)
}

func (m *MockStockTakeService) StartSession(ctx context.Context, tenantID uuid.UUID, req appinv.StartSessionRequest) (*appinv.SessionResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinv.SessionResponse), args.Error(1)
}

func (m *MockStockTakeService) SetCount(ctx context.Context, tenantID, sessionID, productID uuid.UUID, value inventory.CountValue) (*appinv.CountResponse, error) {
	args := m.Called(ctx, tenantID, sessionID, productID, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinv.CountResponse), args.Error(1)
}

func (m *MockStockTakeService) ClearCount(ctx context.Context, tenantID, sessionID, productID uuid.UUID) (*appinv.CountResponse, error) {
	args := m.Called(ctx, tenantID, sessionID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinv.CountResponse), args.Error(1)
}

func (m *MockStockTakeService) SetCounts(ctx context.Context, tenantID, sessionID uuid.UUID, entries []inventory.CountEntry) (*appinv.SessionResponse, error) {
	args := m.Called(ctx, tenantID, sessionID, entries)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinv.SessionResponse), args.Error(1)
}

func (m *MockStockTakeService) Finalize(ctx context.Context, tenantID, sessionID uuid.UUID) (*appinv.FinalizeResponse, error) {
	args := m.Called(ctx, tenantID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinv.FinalizeResponse), args.Error(1)
}

func (m *MockStockTakeService) Cancel(ctx context.Context, tenantID, sessionID uuid.UUID, req appinv.CancelSessionRequest) (*appinv.SessionResponse, error) {
	args := m.Called(ctx, tenantID, sessionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinv.SessionResponse), args.Error(1)
}

func (m *MockStockTakeService) ListLocations(ctx context.Context, tenantID uuid.UUID) ([]appinv.LocationResponse, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appinv.LocationResponse), args.Error(1)
}

func (m *MockStockTakeService) GetLocationStock(ctx context.Context, tenantID, locationID uuid.UUID) (*appinv.LocationStockResponse, error) {
	args := m.Called(ctx, tenantID, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinv.LocationStockResponse), args.Error(1)
}

// testIdentity is the tenant and operator sent with every test request
type testIdentity struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	UserName string
}

func newTestIdentity() testIdentity {
	return testIdentity{TenantID: uuid.New(), UserID: uuid.New(), UserName: "Dana"}
}

func newTestEngine() *gin.Engine {
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.TenantMiddleware(middleware.TenantMiddlewareConfig{AllowHeaders: true}),
	)
	return engine
}

func doRequest(t *testing.T, engine *gin.Engine, id *testIdentity, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id != nil {
		req.Header.Set(middleware.TenantHeaderKey, id.TenantID.String())
		if id.UserID != uuid.Nil {
			req.Header.Set(middleware.UserHeaderKey, id.UserID.String())
			req.Header.Set(middleware.UserNameHeaderKey, id.UserName)
		}
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) (dto.Response, json.RawMessage) {
	t.Helper()
	var envelope struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Response, envelope.Data
}
