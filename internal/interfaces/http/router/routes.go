package router

import (
	"github.com/pos/backend/internal/interfaces/http/handler"
)

// StockTakeRoutes registers the stock take endpoints
func StockTakeRoutes(h *handler.StockTakeHandler) *DomainGroup {
	g := NewDomainGroup("stock-takes", "/stock-takes")
	g.POST("", h.Start)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.GET("/:id/progress", h.Progress)
	g.GET("/:id/review", h.Review)
	g.GET("/:id/adjustments", h.Adjustments)
	g.POST("/:id/finalize", h.Finalize)
	g.POST("/:id/cancel", h.Cancel)

	counts := g.Group("counts", "/:id/counts")
	counts.POST("", h.BulkCounts)
	counts.GET("/:product_id", h.GetCount)
	counts.PUT("/:product_id", h.SetCount)
	counts.DELETE("/:product_id", h.ClearCount)
	return g
}

// LocationRoutes registers the location endpoints
func LocationRoutes(h *handler.LocationHandler) *DomainGroup {
	g := NewDomainGroup("locations", "/locations")
	g.GET("", h.List)
	g.GET("/:id/stock", h.Stock)
	return g
}
