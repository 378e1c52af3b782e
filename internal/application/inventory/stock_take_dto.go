package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// ===================== Request DTOs =====================

// StartSessionRequest opens a stock take for a location
type StartSessionRequest struct {
	LocationID    uuid.UUID `json:"location_id" binding:"required"`
	Remark        string    `json:"remark" binding:"max=500"`
	CreatedByID   uuid.UUID `json:"-"`
	CreatedByName string    `json:"-"`
}

// CancelSessionRequest abandons a stock take. Confirm must be true.
type CancelSessionRequest struct {
	Confirm bool   `json:"confirm"`
	Reason  string `json:"reason" binding:"max=500"`
}

// SessionListFilter represents filter options for session listings
type SessionListFilter struct {
	Search     string     `form:"search"`
	LocationID *uuid.UUID `form:"location_id"`
	Status     string     `form:"status" binding:"omitempty,oneof=IN_PROGRESS COMPLETED CANCELLED"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// ===================== Response DTOs =====================

// CountedLineResponse is one product line of a session
type CountedLineResponse struct {
	ProductID        uuid.UUID       `json:"product_id"`
	ProductCode      string          `json:"product_code"`
	ProductName      string          `json:"product_name"`
	Unit             string          `json:"unit"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	ExpectedQuantity int64           `json:"expected_quantity"`
	CountedQuantity  *int64          `json:"counted_quantity"`
	Variance         *int64          `json:"variance"`
	CountedAt        *time.Time      `json:"counted_at,omitempty"`
}

// SessionResponse is the full view of a session
type SessionResponse struct {
	ID            uuid.UUID             `json:"id"`
	SessionNumber string                `json:"session_number"`
	LocationID    uuid.UUID             `json:"location_id"`
	LocationName  string                `json:"location_name"`
	Status        string                `json:"status"`
	CreatedByID   uuid.UUID             `json:"created_by_id"`
	CreatedByName string                `json:"created_by_name"`
	Remark        string                `json:"remark,omitempty"`
	CancelReason  string                `json:"cancel_reason,omitempty"`
	TotalLines    int                   `json:"total_lines"`
	CountedLines  int                   `json:"counted_lines"`
	Lines         []CountedLineResponse `json:"lines"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	CompletedAt   *time.Time            `json:"completed_at,omitempty"`
	CancelledAt   *time.Time            `json:"cancelled_at,omitempty"`
	Version       int                   `json:"version"`
}

// SessionListResponse is the list view of a session
type SessionListResponse struct {
	ID            uuid.UUID  `json:"id"`
	SessionNumber string     `json:"session_number"`
	LocationID    uuid.UUID  `json:"location_id"`
	LocationName  string     `json:"location_name"`
	Status        string     `json:"status"`
	CreatedByName string     `json:"created_by_name"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
}

// CountResponse is the current count of one product
type CountResponse struct {
	SessionID        uuid.UUID `json:"session_id"`
	ProductID        uuid.UUID `json:"product_id"`
	ExpectedQuantity int64     `json:"expected_quantity"`
	CountedQuantity  *int64    `json:"counted_quantity"`
	IsCounted        bool      `json:"is_counted"`
	Variance         *int64    `json:"variance"`
}

// ProgressResponse reports how much of a session has been counted
type ProgressResponse struct {
	SessionID    uuid.UUID       `json:"session_id"`
	Status       string          `json:"status"`
	TotalLines   int             `json:"total_lines"`
	CountedLines int             `json:"counted_lines"`
	Percent      decimal.Decimal `json:"percent"`
}

// VarianceLineResponse is one line eligible for finalize
type VarianceLineResponse struct {
	ProductID        uuid.UUID       `json:"product_id"`
	ProductCode      string          `json:"product_code"`
	ProductName      string          `json:"product_name"`
	Unit             string          `json:"unit"`
	ExpectedQuantity int64           `json:"expected_quantity"`
	CountedQuantity  int64           `json:"counted_quantity"`
	Variance         int64           `json:"variance"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	VarianceValue    decimal.Decimal `json:"variance_value"`
}

// VarianceReviewResponse is the review shown before finalize
type VarianceReviewResponse struct {
	SessionID      uuid.UUID              `json:"session_id"`
	Status         string                 `json:"status"`
	Lines          []VarianceLineResponse `json:"lines"`
	TotalLines     int                    `json:"total_lines"`
	CountedLines   int                    `json:"counted_lines"`
	UncountedLines int                    `json:"uncounted_lines"`
	ConfirmedLines int                    `json:"confirmed_lines"`
	SurplusUnits   int64                  `json:"surplus_units"`
	ShortageUnits  int64                  `json:"shortage_units"`
	NetValue       decimal.Decimal        `json:"net_value"`
	CanFinalize    bool                   `json:"can_finalize"`
}

// AdjustmentResponse is one applied ledger entry
type AdjustmentResponse struct {
	ProductID        uuid.UUID       `json:"product_id"`
	ExpectedQuantity int64           `json:"expected_quantity"`
	CountedQuantity  int64           `json:"counted_quantity"`
	Variance         int64           `json:"variance"`
	PreviousQuantity int64           `json:"previous_quantity"`
	Drift            int64           `json:"drift"`
	VarianceValue    decimal.Decimal `json:"variance_value"`
	CreatedAt        time.Time       `json:"created_at"`
}

// FinalizeResponse is the completion record of a finalized session
type FinalizeResponse struct {
	Session     SessionResponse      `json:"session"`
	Adjustments []AdjustmentResponse `json:"adjustments"`
	NetUnits    int64                `json:"net_units"`
	NetValue    decimal.Decimal      `json:"net_value"`
}

// LocationResponse is a stock-keeping location
type LocationResponse struct {
	ID       uuid.UUID `json:"id"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	IsActive bool      `json:"is_active"`
}

// StockLevelResponse is one product's quantity at a location
type StockLevelResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Unit        string          `json:"unit"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Quantity    int64           `json:"quantity"`
}

// LocationStockResponse is the live stock of a location
type LocationStockResponse struct {
	LocationID uuid.UUID            `json:"location_id"`
	TakenAt    time.Time            `json:"taken_at"`
	Levels     []StockLevelResponse `json:"levels"`
}

// ===================== Mapping =====================

// ToSessionResponse converts a domain session to its response DTO
func ToSessionResponse(s *inventory.StockTakeSession) SessionResponse {
	counted, total := s.Progress()
	lines := make([]CountedLineResponse, len(s.Lines))
	for i := range s.Lines {
		l := &s.Lines[i]
		resp := CountedLineResponse{
			ProductID:        l.ProductID,
			ProductCode:      l.ProductCode,
			ProductName:      l.ProductName,
			Unit:             l.Unit,
			UnitCost:         l.UnitCost,
			ExpectedQuantity: l.ExpectedQuantity,
			CountedQuantity:  l.CountedQuantity,
			CountedAt:        l.CountedAt,
		}
		if v, ok := l.Variance(); ok {
			resp.Variance = &v
		}
		lines[i] = resp
	}
	return SessionResponse{
		ID:            s.ID,
		SessionNumber: s.SessionNumber,
		LocationID:    s.LocationID,
		LocationName:  s.LocationName,
		Status:        s.Status.String(),
		CreatedByID:   s.CreatedByID,
		CreatedByName: s.CreatedByName,
		Remark:        s.Remark,
		CancelReason:  s.CancelReason,
		TotalLines:    total,
		CountedLines:  counted,
		Lines:         lines,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
		CompletedAt:   s.CompletedAt,
		CancelledAt:   s.CancelledAt,
		Version:       s.Version,
	}
}

// ToSessionListResponses converts sessions to list DTOs
func ToSessionListResponses(sessions []inventory.StockTakeSession) []SessionListResponse {
	out := make([]SessionListResponse, len(sessions))
	for i := range sessions {
		s := &sessions[i]
		out[i] = SessionListResponse{
			ID:            s.ID,
			SessionNumber: s.SessionNumber,
			LocationID:    s.LocationID,
			LocationName:  s.LocationName,
			Status:        s.Status.String(),
			CreatedByName: s.CreatedByName,
			CreatedAt:     s.CreatedAt,
			CompletedAt:   s.CompletedAt,
			CancelledAt:   s.CancelledAt,
		}
	}
	return out
}

// ToCountResponse converts a line to its count DTO
func ToCountResponse(sessionID uuid.UUID, l *inventory.CountedLine) CountResponse {
	resp := CountResponse{
		SessionID:        sessionID,
		ProductID:        l.ProductID,
		ExpectedQuantity: l.ExpectedQuantity,
		CountedQuantity:  l.CountedQuantity,
		IsCounted:        l.IsCounted(),
	}
	if v, ok := l.Variance(); ok {
		resp.Variance = &v
	}
	return resp
}

// ToVarianceReviewResponse converts a variance review to its DTO
func ToVarianceReviewResponse(r inventory.VarianceReview) VarianceReviewResponse {
	return VarianceReviewResponse{
		SessionID:      r.SessionID,
		Status:         r.Status.String(),
		Lines:          toVarianceLineResponses(r.Lines),
		TotalLines:     r.TotalLines,
		CountedLines:   r.CountedLines,
		UncountedLines: r.UncountedLines,
		ConfirmedLines: r.ConfirmedLines,
		SurplusUnits:   r.SurplusUnits,
		ShortageUnits:  r.ShortageUnits,
		NetValue:       r.NetValue,
		CanFinalize:    r.CanFinalize(),
	}
}

func toVarianceLineResponses(lines []inventory.VarianceLine) []VarianceLineResponse {
	out := make([]VarianceLineResponse, len(lines))
	for i, l := range lines {
		out[i] = VarianceLineResponse{
			ProductID:        l.ProductID,
			ProductCode:      l.ProductCode,
			ProductName:      l.ProductName,
			Unit:             l.Unit,
			ExpectedQuantity: l.ExpectedQuantity,
			CountedQuantity:  l.CountedQuantity,
			Variance:         l.Variance,
			UnitCost:         l.UnitCost,
			VarianceValue:    l.VarianceValue,
		}
	}
	return out
}

// ToAdjustmentResponses converts ledger entries to DTOs
func ToAdjustmentResponses(adjs []inventory.StockAdjustment) []AdjustmentResponse {
	out := make([]AdjustmentResponse, len(adjs))
	for i, a := range adjs {
		out[i] = AdjustmentResponse{
			ProductID:        a.ProductID,
			ExpectedQuantity: a.ExpectedQuantity,
			CountedQuantity:  a.CountedQuantity,
			Variance:         a.Variance,
			PreviousQuantity: a.PreviousQuantity,
			Drift:            a.Drift(),
			VarianceValue:    a.VarianceValue,
			CreatedAt:        a.CreatedAt,
		}
	}
	return out
}

// ToLocationResponses converts locations to DTOs
func ToLocationResponses(locs []inventory.Location) []LocationResponse {
	out := make([]LocationResponse, len(locs))
	for i, l := range locs {
		out[i] = LocationResponse{ID: l.ID, Code: l.Code, Name: l.Name, IsActive: l.IsActive}
	}
	return out
}

// ToLocationStockResponse converts a snapshot to its DTO
func ToLocationStockResponse(s *inventory.Snapshot) LocationStockResponse {
	levels := make([]StockLevelResponse, len(s.Levels))
	for i, l := range s.Levels {
		levels[i] = StockLevelResponse{
			ProductID:   l.ProductID,
			ProductCode: l.ProductCode,
			ProductName: l.ProductName,
			Unit:        l.Unit,
			UnitCost:    l.UnitCost,
			Quantity:    l.Quantity,
		}
	}
	return LocationStockResponse{LocationID: s.LocationID, TakenAt: s.TakenAt, Levels: levels}
}
