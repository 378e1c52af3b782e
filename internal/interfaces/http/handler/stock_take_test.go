package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appinv "github.com/pos/backend/internal/application/inventory"
	"github.com/pos/backend/internal/domain/inventory"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupStockTakeRouter(svc *MockStockTakeService) *gin.Engine {
	h := NewStockTakeHandler(svc)
	engine := newTestEngine()
	g := engine.Group("/stock-takes")
	g.POST("", h.Start)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.GET("/:id/progress", h.Progress)
	g.GET("/:id/review", h.Review)
	g.GET("/:id/adjustments", h.Adjustments)
	g.POST("/:id/counts", h.BulkCounts)
	g.GET("/:id/counts/:product_id", h.GetCount)
	g.PUT("/:id/counts/:product_id", h.SetCount)
	g.DELETE("/:id/counts/:product_id", h.ClearCount)
	g.POST("/:id/finalize", h.Finalize)
	g.POST("/:id/cancel", h.Cancel)
	return engine
}

func counted(t *testing.T, n int64) inventory.CountValue {
	t.Helper()
	v, err := inventory.Counted(n)
	require.NoError(t, err)
	return v
}

func TestStockTakeHandler_Start(t *testing.T) {
	id := newTestIdentity()
	locationID := uuid.New()

	t.Run("stamps operator from request identity", func(t *testing.T) {
		svc := new(MockStockTakeService)
		expected := appinv.StartSessionRequest{
			LocationID:    locationID,
			Remark:        "monthly",
			CreatedByID:   id.UserID,
			CreatedByName: id.UserName,
		}
		svc.On("StartSession", mock.Anything, id.TenantID, expected).
			Return(&appinv.SessionResponse{ID: uuid.New(), SessionNumber: "ST-20261018-000001"}, nil)

		rec := doRequest(t, setupStockTakeRouter(svc), &id, http.MethodPost, "/stock-takes",
			map[string]any{"location_id": locationID, "remark": "monthly", "created_by_id": uuid.New()})

		assert.Equal(t, http.StatusCreated, rec.Code)
		resp, data := decodeResponse(t, rec)
		assert.True(t, resp.Success)
		var session appinv.SessionResponse
		require.NoError(t, json.Unmarshal(data, &session))
		assert.Equal(t, "ST-20261018-000001", session.SessionNumber)
		svc.AssertExpectations(t)
	})

	t.Run("requires an operator", func(t *testing.T) {
		svc := new(MockStockTakeService)
		anon := testIdentity{TenantID: id.TenantID}

		rec := doRequest(t, setupStockTakeRouter(svc), &anon, http.MethodPost, "/stock-takes",
			map[string]any{"location_id": locationID})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		svc.AssertNotCalled(t, "StartSession")
	})

	t.Run("rejects missing location", func(t *testing.T) {
		svc := new(MockStockTakeService)

		rec := doRequest(t, setupStockTakeRouter(svc), &id, http.MethodPost, "/stock-takes", map[string]any{})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp, _ := decodeResponse(t, rec)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	})

	t.Run("active session conflict", func(t *testing.T) {
		svc := new(MockStockTakeService)
		svc.On("StartSession", mock.Anything, id.TenantID, mock.Anything).Return(nil, inventory.ErrSessionAlreadyActive)

		rec := doRequest(t, setupStockTakeRouter(svc), &id, http.MethodPost, "/stock-takes",
			map[string]any{"location_id": locationID})

		assert.Equal(t, http.StatusConflict, rec.Code)
		resp, _ := decodeResponse(t, rec)
		assert.Equal(t, dto.ErrCodeSessionAlreadyActive, resp.Error.Code)
	})
}

func TestStockTakeHandler_List(t *testing.T) {
	id := newTestIdentity()
	locationID := uuid.New()

	svc := new(MockStockTakeService)
	svc.On("ListSessions", mock.Anything, id.TenantID, appinv.SessionListFilter{
		LocationID: &locationID,
		Status:     "IN_PROGRESS",
		Page:       2,
		PageSize:   20,
	}).Return([]appinv.SessionListResponse{{ID: uuid.New()}}, int64(21), nil)

	rec := doRequest(t, setupStockTakeRouter(svc), &id, http.MethodGet,
		fmt.Sprintf("/stock-takes?location_id=%s&status=IN_PROGRESS&page=2", locationID), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp, _ := decodeResponse(t, rec)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(21), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.TotalPages)
	svc.AssertExpectations(t)
}

func TestStockTakeHandler_List_InvalidQuery(t *testing.T) {
	id := newTestIdentity()
	svc := new(MockStockTakeService)
	engine := setupStockTakeRouter(svc)

	for _, query := range []string{"status=OPEN", "location_id=front", "page_size=500"} {
		rec := doRequest(t, engine, &id, http.MethodGet, "/stock-takes?"+query, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
	svc.AssertNotCalled(t, "ListSessions")
}

func TestStockTakeHandler_SetCount(t *testing.T) {
	id := newTestIdentity()
	sessionID := uuid.New()
	productID := uuid.New()
	path := fmt.Sprintf("/stock-takes/%s/counts/%s", sessionID, productID)

	accepted := []struct {
		name  string
		body  string
		value inventory.CountValue
	}{
		{"numeric string", `{"value":"15"}`, counted(t, 15)},
		{"padded string", `{"value":" 7 "}`, counted(t, 7)},
		{"json number", `{"value":12}`, counted(t, 12)},
		{"zero", `{"value":0}`, counted(t, 0)},
		{"null clears", `{"value":null}`, inventory.Unset()},
		{"empty string clears", `{"value":""}`, inventory.Unset()},
	}
	for _, tt := range accepted {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockStockTakeService)
			svc.On("SetCount", mock.Anything, id.TenantID, sessionID, productID, tt.value).
				Return(&appinv.CountResponse{SessionID: sessionID, ProductID: productID}, nil)

			rec := doRequest(t, setupStockTakeRouter(svc), &id, http.MethodPut, path, tt.body)

			assert.Equal(t, http.StatusOK, rec.Code)
			svc.AssertExpectations(t)
		})
	}

	rejected := []struct {
		name string
		body string
		code string
	}{
		{"negative", `{"value":-1}`, dto.ErrCodeInvalidInput},
		{"fraction", `{"value":1.5}`, dto.ErrCodeInvalidInput},
		{"exponent", `{"value":1e3}`, dto.ErrCodeInvalidInput},
		{"letters", `{"value":"ten"}`, dto.ErrCodeInvalidInput},
		{"boolean", `{"value":true}`, dto.ErrCodeInvalidInput},
		{"missing value", `{}`, dto.ErrCodeBadRequest},
		{"malformed json", `{"value":`, dto.ErrCodeBadRequest},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockStockTakeService)

			rec := doRequest(t, setupStockTakeRouter(svc), &id, http.MethodPut, path, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp, _ := decodeResponse(t, rec)
			assert.Equal(t, tt.code, resp.Error.Code)
			svc.AssertNotCalled(t, "SetCount")
		})
	}
}

func TestStockTakeHandler_CountPaths(t *testing.T) {
	id := newTestIdentity()
	sessionID := uuid.New()
	productID := uuid.New()
	path := fmt.Sprintf("/stock-takes/%s/counts/%s", sessionID, productID)

	svc := new(MockStockTakeService)
	svc.On("GetCount", mock.Anything, id.TenantID, sessionID, productID).
		Return(&appinv.CountResponse{ExpectedQuantity: 4}, nil)
	svc.On("ClearCount", mock.Anything, id.TenantID, sessionID, productID).
		Return(nil, inventory.ErrSessionClosed)
	engine := setupStockTakeRouter(svc)

	rec := doRequest(t, engine, &id, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, engine, &id, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp, _ := decodeResponse(t, rec)
	assert.Equal(t, dto.ErrCodeSessionClosed, resp.Error.Code)

	rec = doRequest(t, engine, &id, http.MethodGet, fmt.Sprintf("/stock-takes/%s/counts/not-a-uuid", sessionID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStockTakeHandler_BulkCounts(t *testing.T) {
	id := newTestIdentity()
	sessionID := uuid.New()
	a, b := uuid.New(), uuid.New()
	path := fmt.Sprintf("/stock-takes/%s/counts", sessionID)

	t.Run("parses every entry", func(t *testing.T) {
		svc := new(MockStockTakeService)
		svc.On("SetCounts", mock.Anything, id.TenantID, sessionID, []inventory.CountEntry{
			{ProductID: a, Value: counted(t, 3)},
			{ProductID: b, Value: inventory.Unset()},
		}).Return(&appinv.SessionResponse{ID: sessionID}, nil)

		body := fmt.Sprintf(`{"counts":[{"product_id":%q,"value":"3"},{"product_id":%q,"value":null}]}`, a, b)
		rec := doRequest(t, setupStockTakeRouter(svc), &id, http.MethodPost, path, body)

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("one bad value rejects the batch", func(t *testing.T) {
		svc := new(MockStockTakeService)

		body := fmt.Sprintf(`{"counts":[{"product_id":%q,"value":"3"},{"product_id":%q,"value":"-2"}]}`, a, b)
		rec := doRequest(t, setupStockTakeRouter(svc), &id, http.MethodPost, path, body)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "SetCounts")
	})

	t.Run("empty batch", func(t *testing.T) {
		svc := new(MockStockTakeService)

		rec := doRequest(t, setupStockTakeRouter(svc), &id, http.MethodPost, path, `{"counts":[]}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestStockTakeHandler_Finalize(t *testing.T) {
	id := newTestIdentity()
	sessionID := uuid.New()
	path := fmt.Sprintf("/stock-takes/%s/finalize", sessionID)

	t.Run("success", func(t *testing.T) {
		svc := new(MockStockTakeService)
		svc.On("Finalize", mock.Anything, id.TenantID, sessionID).Return(&appinv.FinalizeResponse{
			Session:  appinv.SessionResponse{ID: sessionID, Status: "COMPLETED"},
			NetUnits: -3,
			NetValue: decimal.NewFromInt(-30),
		}, nil)

		rec := doRequest(t, setupStockTakeRouter(svc), &id, http.MethodPost, path, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		_, data := decodeResponse(t, rec)
		var result appinv.FinalizeResponse
		require.NoError(t, json.Unmarshal(data, &result))
		assert.Equal(t, int64(-3), result.NetUnits)
		assert.Equal(t, "COMPLETED", result.Session.Status)
	})

	errorCases := []struct {
		err    error
		status int
		code   string
	}{
		{inventory.ErrNothingToFinalize, http.StatusUnprocessableEntity, dto.ErrCodeNothingToFinalize},
		{inventory.ErrSessionClosed, http.StatusUnprocessableEntity, dto.ErrCodeSessionClosed},
		{inventory.ErrFinalizeInProgress, http.StatusConflict, dto.ErrCodeFinalizeInProgress},
		{shared.ErrConcurrencyConflict, http.StatusConflict, dto.ErrCodeConcurrencyConflict},
		{shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{shared.WrapDomainError("PERSISTENCE_FAILURE", "Failed to persist changes", errors.New("disk full")), http.StatusServiceUnavailable, dto.ErrCodePersistenceFailure},
		{shared.WrapDomainError("INSUFFICIENT_STOCK", "Total stock of P-001 cannot absorb a variance of -20", shared.ErrInsufficientStock), http.StatusUnprocessableEntity, dto.ErrCodeInsufficientStock},
		{errors.New("boom"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}
	for _, tt := range errorCases {
		t.Run(tt.code, func(t *testing.T) {
			svc := new(MockStockTakeService)
			svc.On("Finalize", mock.Anything, id.TenantID, sessionID).Return(nil, tt.err)

			rec := doRequest(t, setupStockTakeRouter(svc), &id, http.MethodPost, path, nil)

			assert.Equal(t, tt.status, rec.Code)
			resp, _ := decodeResponse(t, rec)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.RequestID)
		})
	}
}

func TestStockTakeHandler_Cancel(t *testing.T) {
	id := newTestIdentity()
	sessionID := uuid.New()
	path := fmt.Sprintf("/stock-takes/%s/cancel", sessionID)

	t.Run("confirmed", func(t *testing.T) {
		svc := new(MockStockTakeService)
		req := appinv.CancelSessionRequest{Confirm: true, Reason: "wrong shelf"}
		svc.On("Cancel", mock.Anything, id.TenantID, sessionID, req).
			Return(&appinv.SessionResponse{ID: sessionID, Status: "CANCELLED"}, nil)

		rec := doRequest(t, setupStockTakeRouter(svc), &id, http.MethodPost, path, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("empty body reaches service unconfirmed", func(t *testing.T) {
		svc := new(MockStockTakeService)
		svc.On("Cancel", mock.Anything, id.TenantID, sessionID, appinv.CancelSessionRequest{}).
			Return(nil, inventory.ErrConfirmationRequired)

		rec := doRequest(t, setupStockTakeRouter(svc), &id, http.MethodPost, path, nil)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		resp, _ := decodeResponse(t, rec)
		assert.Equal(t, dto.ErrCodeConfirmationRequired, resp.Error.Code)
	})
}

func TestStockTakeHandler_Reads(t *testing.T) {
	id := newTestIdentity()
	sessionID := uuid.New()

	svc := new(MockStockTakeService)
	svc.On("GetSession", mock.Anything, id.TenantID, sessionID).Return(&appinv.SessionResponse{ID: sessionID}, nil)
	svc.On("GetProgress", mock.Anything, id.TenantID, sessionID).Return(&appinv.ProgressResponse{TotalLines: 4, CountedLines: 1}, nil)
	svc.On("GetVarianceReview", mock.Anything, id.TenantID, sessionID).Return(&appinv.VarianceReviewResponse{CanFinalize: true}, nil)
	svc.On("GetAdjustments", mock.Anything, id.TenantID, sessionID).Return([]appinv.AdjustmentResponse{}, nil)
	engine := setupStockTakeRouter(svc)

	for _, suffix := range []string{"", "/progress", "/review", "/adjustments"} {
		rec := doRequest(t, engine, &id, http.MethodGet, fmt.Sprintf("/stock-takes/%s%s", sessionID, suffix), nil)
		assert.Equal(t, http.StatusOK, rec.Code, suffix)
	}
	svc.AssertExpectations(t)

	rec := doRequest(t, engine, &id, http.MethodGet, "/stock-takes/nope", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, engine, nil, http.MethodGet, fmt.Sprintf("/stock-takes/%s", sessionID), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
