package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appinv "github.com/pos/backend/internal/application/inventory"
)

// LocationService lists locations and their live stock
type LocationService interface {
	ListLocations(ctx context.Context, tenantID uuid.UUID) ([]appinv.LocationResponse, error)
	GetLocationStock(ctx context.Context, tenantID, locationID uuid.UUID) (*appinv.LocationStockResponse, error)
}

// LocationHandler handles location API endpoints
type LocationHandler struct {
	BaseHandler
	service LocationService
}

// NewLocationHandler creates a new LocationHandler
func NewLocationHandler(service LocationService) *LocationHandler {
	return &LocationHandler{service: service}
}

// List returns the tenant's locations
//
//	GET /locations
func (h *LocationHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	locations, err := h.service.ListLocations(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, locations)
}

// Stock returns the current stock of a location
//
//	GET /locations/:id/stock
func (h *LocationHandler) Stock(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	locationID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	stock, err := h.service.GetLocationStock(c.Request.Context(), tenantID, locationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}
