package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appinv "github.com/pos/backend/internal/application/inventory"
	"github.com/pos/backend/internal/domain/inventory"
	"github.com/pos/backend/internal/interfaces/http/middleware"
)

// StockTakeService is the application surface the stock take endpoints drive
type StockTakeService interface {
	GetSession(ctx context.Context, tenantID, sessionID uuid.UUID) (*appinv.SessionResponse, error)
	ListSessions(ctx context.Context, tenantID uuid.UUID, filter appinv.SessionListFilter) ([]appinv.SessionListResponse, int64, error)
	GetCount(ctx context.Context, tenantID, sessionID, productID uuid.UUID) (*appinv.CountResponse, error)
	GetProgress(ctx context.Context, tenantID, sessionID uuid.UUID) (*appinv.ProgressResponse, error)
	GetVarianceReview(ctx context.Context, tenantID, sessionID uuid.UUID) (*appinv.VarianceReviewResponse, error)
	GetAdjustments(ctx context.Context, tenantID, sessionID uuid.UUID) ([]appinv.AdjustmentResponse, error)
	StartSession(ctx context.Context, tenantID uuid.UUID, req appinv.StartSessionRequest) (*appinv.SessionResponse, error)
	SetCount(ctx context.Context, tenantID, sessionID, productID uuid.UUID, value inventory.CountValue) (*appinv.CountResponse, error)
	ClearCount(ctx context.Context, tenantID, sessionID, productID uuid.UUID) (*appinv.CountResponse, error)
	SetCounts(ctx context.Context, tenantID, sessionID uuid.UUID, entries []inventory.CountEntry) (*appinv.SessionResponse, error)
	Finalize(ctx context.Context, tenantID, sessionID uuid.UUID) (*appinv.FinalizeResponse, error)
	Cancel(ctx context.Context, tenantID, sessionID uuid.UUID, req appinv.CancelSessionRequest) (*appinv.SessionResponse, error)
}

// StockTakeHandler handles stock take API endpoints
type StockTakeHandler struct {
	BaseHandler
	service StockTakeService
}

// NewStockTakeHandler creates a new StockTakeHandler
func NewStockTakeHandler(service StockTakeService) *StockTakeHandler {
	return &StockTakeHandler{service: service}
}

// ===================== Request Types =====================

// SetCountRequest carries one count entry. Value may be a JSON number, a
// string of digits, an empty string or null; the last two clear the count.
type SetCountRequest struct {
	Value json.RawMessage `json:"value"`
}

// BulkCountEntry is one product in a bulk count request
type BulkCountEntry struct {
	ProductID string          `json:"product_id" binding:"required,uuid"`
	Value     json.RawMessage `json:"value"`
}

// BulkCountRequest records many counts at once
type BulkCountRequest struct {
	Counts []BulkCountEntry `json:"counts" binding:"required,min=1,max=1000,dive"`
}

type sessionListQuery struct {
	Search     string `form:"search" binding:"max=100"`
	LocationID string `form:"location_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=IN_PROGRESS COMPLETED CANCELLED"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// parseCountJSON turns the raw "value" field into a CountValue
func parseCountJSON(raw json.RawMessage) (inventory.CountValue, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return inventory.Unset(), nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return inventory.CountValue{}, inventory.ErrInvalidCount
		}
		return inventory.ParseCountValue(s)
	}
	// Numbers are parsed from their literal text so 1.5 and 1e3 are rejected.
	return inventory.ParseCountValue(string(raw))
}

// ===================== Handlers =====================

// Start opens a stock take for a location
//
//	POST /stock-takes
func (h *StockTakeHandler) Start(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	userID, userName, ok := h.operator(c)
	if !ok {
		return
	}

	var req appinv.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	req.CreatedByID = userID
	req.CreatedByName = userName

	session, err := h.service.StartSession(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, session)
}

// List lists sessions of the tenant
//
//	GET /stock-takes
func (h *StockTakeHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var q sessionListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	filter := appinv.SessionListFilter{
		Search:   q.Search,
		Status:   q.Status,
		Page:     q.Page,
		PageSize: q.PageSize,
		OrderBy:  q.OrderBy,
		OrderDir: q.OrderDir,
	}
	if q.LocationID != "" {
		locationID := uuid.MustParse(q.LocationID)
		filter.LocationID = &locationID
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 20
	}

	sessions, total, err := h.service.ListSessions(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, sessions, total, filter.Page, filter.PageSize)
}

// Get returns a session with all its lines
//
//	GET /stock-takes/:id
func (h *StockTakeHandler) Get(c *gin.Context) {
	tenantID, sessionID, ok := h.sessionScope(c)
	if !ok {
		return
	}
	session, err := h.service.GetSession(c.Request.Context(), tenantID, sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// Progress returns how much of a session has been counted
//
//	GET /stock-takes/:id/progress
func (h *StockTakeHandler) Progress(c *gin.Context) {
	tenantID, sessionID, ok := h.sessionScope(c)
	if !ok {
		return
	}
	progress, err := h.service.GetProgress(c.Request.Context(), tenantID, sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, progress)
}

// GetCount returns the current count of one product
//
//	GET /stock-takes/:id/counts/:product_id
func (h *StockTakeHandler) GetCount(c *gin.Context) {
	tenantID, sessionID, productID, ok := h.countScope(c)
	if !ok {
		return
	}
	count, err := h.service.GetCount(c.Request.Context(), tenantID, sessionID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, count)
}

// SetCount records or clears the count of one product
//
//	PUT /stock-takes/:id/counts/:product_id
func (h *StockTakeHandler) SetCount(c *gin.Context) {
	tenantID, sessionID, productID, ok := h.countScope(c)
	if !ok {
		return
	}

	var req SetCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	if req.Value == nil {
		h.BadRequest(c, "value is required")
		return
	}
	value, err := parseCountJSON(req.Value)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	count, err := h.service.SetCount(c.Request.Context(), tenantID, sessionID, productID, value)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, count)
}

// ClearCount marks one product as not yet counted
//
//	DELETE /stock-takes/:id/counts/:product_id
func (h *StockTakeHandler) ClearCount(c *gin.Context) {
	tenantID, sessionID, productID, ok := h.countScope(c)
	if !ok {
		return
	}
	count, err := h.service.ClearCount(c.Request.Context(), tenantID, sessionID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, count)
}

// BulkCounts records many counts in one all-or-nothing request
//
//	POST /stock-takes/:id/counts
func (h *StockTakeHandler) BulkCounts(c *gin.Context) {
	tenantID, sessionID, ok := h.sessionScope(c)
	if !ok {
		return
	}

	var req BulkCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	entries := make([]inventory.CountEntry, 0, len(req.Counts))
	for _, e := range req.Counts {
		value, err := parseCountJSON(e.Value)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		entries = append(entries, inventory.CountEntry{
			ProductID: uuid.MustParse(e.ProductID),
			Value:     value,
		})
	}

	session, err := h.service.SetCounts(c.Request.Context(), tenantID, sessionID, entries)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// Review returns the variance review shown before finalize
//
//	GET /stock-takes/:id/review
func (h *StockTakeHandler) Review(c *gin.Context) {
	tenantID, sessionID, ok := h.sessionScope(c)
	if !ok {
		return
	}
	review, err := h.service.GetVarianceReview(c.Request.Context(), tenantID, sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, review)
}

// Adjustments lists the ledger entries a finalized session applied
//
//	GET /stock-takes/:id/adjustments
func (h *StockTakeHandler) Adjustments(c *gin.Context) {
	tenantID, sessionID, ok := h.sessionScope(c)
	if !ok {
		return
	}
	adjustments, err := h.service.GetAdjustments(c.Request.Context(), tenantID, sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, adjustments)
}

// Finalize applies the counted variances and completes the session
//
//	POST /stock-takes/:id/finalize
func (h *StockTakeHandler) Finalize(c *gin.Context) {
	tenantID, sessionID, ok := h.sessionScope(c)
	if !ok {
		return
	}
	result, err := h.service.Finalize(c.Request.Context(), tenantID, sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Cancel abandons the session without touching stock
//
//	POST /stock-takes/:id/cancel
func (h *StockTakeHandler) Cancel(c *gin.Context) {
	tenantID, sessionID, ok := h.sessionScope(c)
	if !ok {
		return
	}

	// An empty body is an unconfirmed cancel, which the service rejects.
	var req appinv.CancelSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		middleware.HandleValidationError(c, err)
		return
	}

	session, err := h.service.Cancel(c.Request.Context(), tenantID, sessionID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

func (h *StockTakeHandler) sessionScope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	sessionID, ok := h.uuidParam(c, "id")
	return tenantID, sessionID, ok
}

func (h *StockTakeHandler) countScope(c *gin.Context) (uuid.UUID, uuid.UUID, uuid.UUID, bool) {
	tenantID, sessionID, ok := h.sessionScope(c)
	if !ok {
		return uuid.Nil, uuid.Nil, uuid.Nil, false
	}
	productID, ok := h.uuidParam(c, "product_id")
	return tenantID, sessionID, productID, ok
}
