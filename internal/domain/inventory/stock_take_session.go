package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SessionStatus represents the lifecycle state of a stock take session
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusCompleted  SessionStatus = "COMPLETED"
	SessionStatusCancelled  SessionStatus = "CANCELLED"
)

// IsValid checks if the status is a valid SessionStatus
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionStatusInProgress, SessionStatusCompleted, SessionStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusCancelled
}

// String returns the string representation of SessionStatus
func (s SessionStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s SessionStatus) CanTransitionTo(target SessionStatus) bool {
	if s != SessionStatusInProgress {
		return false
	}
	return target == SessionStatusCompleted || target == SessionStatusCancelled
}

// CountedLine is one product's count within a session.
// ExpectedQuantity is the snapshot taken when the session started and never changes.
type CountedLine struct {
	ID               uuid.UUID
	SessionID        uuid.UUID
	ProductID        uuid.UUID
	ProductCode      string
	ProductName      string
	Unit             string
	UnitCost         decimal.Decimal
	ExpectedQuantity int64
	CountedQuantity  *int64
	CountedAt        *time.Time
}

// IsCounted reports whether a quantity has been entered
func (l *CountedLine) IsCounted() bool {
	return l.CountedQuantity != nil
}

// Variance returns counted - expected. ok is false while the line is uncounted.
func (l *CountedLine) Variance() (variance int64, ok bool) {
	if l.CountedQuantity == nil {
		return 0, false
	}
	return *l.CountedQuantity - l.ExpectedQuantity, true
}

// HasVariance reports whether the line is counted and differs from expected
func (l *CountedLine) HasVariance() bool {
	v, ok := l.Variance()
	return ok && v != 0
}

// VarianceValue is the variance priced at unit cost, zero while uncounted
func (l *CountedLine) VarianceValue() decimal.Decimal {
	v, ok := l.Variance()
	if !ok {
		return decimal.Zero
	}
	return decimal.NewFromInt(v).Mul(l.UnitCost)
}

func (l *CountedLine) apply(value CountValue, at time.Time) {
	qty, ok := value.Quantity()
	if !ok {
		l.CountedQuantity = nil
		l.CountedAt = nil
		return
	}
	l.CountedQuantity = &qty
	l.CountedAt = &at
}

// StockTakeSession is the aggregate root of a physical count of one location.
type StockTakeSession struct {
	shared.TenantAggregateRoot
	SessionNumber string
	LocationID    uuid.UUID
	LocationName  string
	Status        SessionStatus
	CreatedByID   uuid.UUID
	CreatedByName string
	CompletedAt   *time.Time
	CancelledAt   *time.Time
	CancelReason  string
	Remark        string
	Lines         []CountedLine
}

// NewStockTakeSession opens a session with one line per product in the snapshot.
func NewStockTakeSession(location *Location, sessionNumber string, createdByID uuid.UUID, createdByName string, snapshot *Snapshot) (*StockTakeSession, error) {
	if location == nil || location.ID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Location cannot be empty")
	}
	if sessionNumber == "" {
		return nil, shared.NewDomainError("INVALID_SESSION_NUMBER", "Session number cannot be empty")
	}
	if createdByID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CREATOR", "Creator ID cannot be empty")
	}
	if snapshot != nil && snapshot.LocationID != uuid.Nil && snapshot.LocationID != location.ID {
		return nil, shared.NewDomainError("SNAPSHOT_MISMATCH", "Snapshot was taken for a different location")
	}

	s := &StockTakeSession{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(location.TenantID),
		SessionNumber:       sessionNumber,
		LocationID:          location.ID,
		LocationName:        location.Name,
		Status:              SessionStatusInProgress,
		CreatedByID:         createdByID,
		CreatedByName:       createdByName,
		Lines:               make([]CountedLine, 0),
	}
	s.SetCreatedBy(createdByID)

	if snapshot != nil {
		seen := make(map[uuid.UUID]struct{}, len(snapshot.Levels))
		for _, level := range snapshot.Levels {
			if _, dup := seen[level.ProductID]; dup {
				continue
			}
			seen[level.ProductID] = struct{}{}
			s.Lines = append(s.Lines, CountedLine{
				ID:               uuid.New(),
				SessionID:        s.ID,
				ProductID:        level.ProductID,
				ProductCode:      level.ProductCode,
				ProductName:      level.ProductName,
				Unit:             level.Unit,
				UnitCost:         level.UnitCost,
				ExpectedQuantity: level.Quantity,
			})
		}
	}

	s.AddDomainEvent(NewStockTakeStartedEvent(s))
	return s, nil
}

// IsOpen reports whether counts may still be changed
func (s *StockTakeSession) IsOpen() bool {
	return s.Status == SessionStatusInProgress
}

func (s *StockTakeSession) ensureOpen() error {
	if !s.IsOpen() {
		return ErrSessionClosed
	}
	return nil
}

// Line returns the line of productID
func (s *StockTakeSession) Line(productID uuid.UUID) (*CountedLine, error) {
	for i := range s.Lines {
		if s.Lines[i].ProductID == productID {
			return &s.Lines[i], nil
		}
	}
	return nil, ErrProductNotInSession
}

// SetCount records (or with Unset, clears) the counted quantity of a product
func (s *StockTakeSession) SetCount(productID uuid.UUID, value CountValue) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	line, err := s.Line(productID)
	if err != nil {
		return err
	}
	line.apply(value, time.Now())
	s.Touch()
	return nil
}

// CountEntry pairs a product with its entered value
type CountEntry struct {
	ProductID uuid.UUID
	Value     CountValue
}

// SetCounts applies every entry or, if any product is unknown, none of them
func (s *StockTakeSession) SetCounts(entries []CountEntry) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := s.Line(e.ProductID); err != nil {
			return err
		}
	}
	now := time.Now()
	for _, e := range entries {
		line, _ := s.Line(e.ProductID)
		line.apply(e.Value, now)
	}
	s.Touch()
	return nil
}

// GetCount returns the counted quantity of a product and whether it is set
func (s *StockTakeSession) GetCount(productID uuid.UUID) (int64, bool, error) {
	line, err := s.Line(productID)
	if err != nil {
		return 0, false, err
	}
	if line.CountedQuantity == nil {
		return 0, false, nil
	}
	return *line.CountedQuantity, true, nil
}

// Progress returns how many lines are counted out of the total
func (s *StockTakeSession) Progress() (counted, total int) {
	for i := range s.Lines {
		if s.Lines[i].IsCounted() {
			counted++
		}
	}
	return counted, len(s.Lines)
}

// FinalizableLines returns the lines finalize would apply. It fails with
// ErrSessionClosed or ErrNothingToFinalize and never changes the session.
func (s *StockTakeSession) FinalizableLines() ([]VarianceLine, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	lines := CalculateVariances(s.Lines)
	if len(lines) == 0 {
		return nil, ErrNothingToFinalize
	}
	return lines, nil
}

// Complete closes the session after applied lines have reached inventory.
func (s *StockTakeSession) Complete(applied []VarianceLine, at time.Time) error {
	if !s.Status.CanTransitionTo(SessionStatusCompleted) {
		return ErrSessionClosed
	}
	if len(applied) == 0 {
		return ErrNothingToFinalize
	}
	s.Status = SessionStatusCompleted
	s.CompletedAt = &at
	s.UpdatedAt = at
	s.AddDomainEvent(NewStockTakeFinalizedEvent(s, applied))
	return nil
}

// Cancel discards every count and closes the session without touching inventory.
func (s *StockTakeSession) Cancel(confirmed bool, reason string, at time.Time) error {
	if !s.Status.CanTransitionTo(SessionStatusCancelled) {
		return ErrSessionClosed
	}
	if !confirmed {
		return ErrConfirmationRequired
	}
	discarded, _ := s.Progress()
	for i := range s.Lines {
		s.Lines[i].CountedQuantity = nil
		s.Lines[i].CountedAt = nil
	}
	s.Status = SessionStatusCancelled
	s.CancelledAt = &at
	s.CancelReason = reason
	s.UpdatedAt = at
	s.AddDomainEvent(NewStockTakeCancelledEvent(s, discarded))
	return nil
}
