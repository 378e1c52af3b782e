package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/inventory"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// sessionNumberAttempts bounds retries when a generated session number is already taken
const sessionNumberAttempts = 3

// DefaultFinalizeLockTTL bounds how long a location stays locked if the holder dies
const DefaultFinalizeLockTTL = 30 * time.Second

// StockTakeServiceConfig tunes StockTakeService
type StockTakeServiceConfig struct {
	FinalizeLockTTL time.Duration
}

// StockTakeService drives the lifecycle of stock take sessions
type StockTakeService struct {
	sessionRepo    inventory.StockTakeSessionRepository
	locationRepo   inventory.LocationRepository
	adjustmentRepo inventory.StockAdjustmentRepository
	snapshots      *SnapshotProvider
	txScope        TransactionScope
	locker         LocationLocker
	eventBus       shared.EventPublisher
	logger         *zap.Logger
	lockTTL        time.Duration
	now            func() time.Time
}

// NewStockTakeService creates a new StockTakeService
func NewStockTakeService(
	sessionRepo inventory.StockTakeSessionRepository,
	locationRepo inventory.LocationRepository,
	adjustmentRepo inventory.StockAdjustmentRepository,
	snapshots *SnapshotProvider,
	txScope TransactionScope,
	locker LocationLocker,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
	cfg StockTakeServiceConfig,
) *StockTakeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.FinalizeLockTTL
	if ttl <= 0 {
		ttl = DefaultFinalizeLockTTL
	}
	return &StockTakeService{
		sessionRepo:    sessionRepo,
		locationRepo:   locationRepo,
		adjustmentRepo: adjustmentRepo,
		snapshots:      snapshots,
		txScope:        txScope,
		locker:         locker,
		eventBus:       eventBus,
		logger:         logger,
		lockTTL:        ttl,
		now:            time.Now,
	}
}

// ===================== Query Methods =====================

// GetSession retrieves a session with all its lines
func (s *StockTakeService) GetSession(ctx context.Context, tenantID, sessionID uuid.UUID) (*SessionResponse, error) {
	session, err := s.sessionRepo.FindByIDForTenant(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	resp := ToSessionResponse(session)
	return &resp, nil
}

// ListSessions retrieves a page of sessions
func (s *StockTakeService) ListSessions(ctx context.Context, tenantID uuid.UUID, filter SessionListFilter) ([]SessionListResponse, int64, error) {
	domainFilter := inventory.SessionFilter{
		Filter: shared.Filter{
			Search:   filter.Search,
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		},
		LocationID: filter.LocationID,
	}
	if domainFilter.Page <= 0 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize <= 0 {
		domainFilter.PageSize = 20
	}
	if filter.Status != "" {
		status := inventory.SessionStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_INPUT", "Unknown session status")
		}
		domainFilter.Status = &status
	}

	sessions, total, err := s.sessionRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToSessionListResponses(sessions), total, nil
}

// GetCount returns the current count of one product
func (s *StockTakeService) GetCount(ctx context.Context, tenantID, sessionID, productID uuid.UUID) (*CountResponse, error) {
	session, err := s.sessionRepo.FindByIDForTenant(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	line, err := session.Line(productID)
	if err != nil {
		return nil, err
	}
	resp := ToCountResponse(session.ID, line)
	return &resp, nil
}

// GetProgress reports how many lines are counted
func (s *StockTakeService) GetProgress(ctx context.Context, tenantID, sessionID uuid.UUID) (*ProgressResponse, error) {
	session, err := s.sessionRepo.FindByIDForTenant(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	counted, total := session.Progress()
	percent := decimal.Zero
	if total > 0 {
		percent = decimal.NewFromInt(int64(counted)).Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(total))).Round(2)
	}
	return &ProgressResponse{
		SessionID:    session.ID,
		Status:       session.Status.String(),
		TotalLines:   total,
		CountedLines: counted,
		Percent:      percent,
	}, nil
}

// GetVarianceReview returns the lines finalize would apply. It never mutates the session.
func (s *StockTakeService) GetVarianceReview(ctx context.Context, tenantID, sessionID uuid.UUID) (*VarianceReviewResponse, error) {
	session, err := s.sessionRepo.FindByIDForTenant(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	resp := ToVarianceReviewResponse(inventory.BuildVarianceReview(session))
	return &resp, nil
}

// GetAdjustments returns the ledger written when a session was finalized
func (s *StockTakeService) GetAdjustments(ctx context.Context, tenantID, sessionID uuid.UUID) ([]AdjustmentResponse, error) {
	if _, err := s.sessionRepo.FindByIDForTenant(ctx, tenantID, sessionID); err != nil {
		return nil, err
	}
	adjs, err := s.adjustmentRepo.FindBySession(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	return ToAdjustmentResponses(adjs), nil
}

// ListLocations returns every location of the tenant
func (s *StockTakeService) ListLocations(ctx context.Context, tenantID uuid.UUID) ([]LocationResponse, error) {
	locs, err := s.locationRepo.FindAllForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return ToLocationResponses(locs), nil
}

// GetLocationStock returns the live stock of a location
func (s *StockTakeService) GetLocationStock(ctx context.Context, tenantID, locationID uuid.UUID) (*LocationStockResponse, error) {
	snapshot, err := s.snapshots.Snapshot(ctx, tenantID, locationID)
	if err != nil {
		return nil, err
	}
	resp := ToLocationStockResponse(snapshot)
	return &resp, nil
}

// ===================== Command Methods =====================

// StartSession opens a stock take with a snapshot of the location's current stock
func (s *StockTakeService) StartSession(ctx context.Context, tenantID uuid.UUID, req StartSessionRequest) (*SessionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock_take", "start")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrLocationID, req.LocationID.String(),
	)

	resp, err := s.startSession(ctx, tenantID, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrSessionID, resp.ID.String(),
		telemetry.SpanAttrSessionNumber, resp.SessionNumber,
		telemetry.SpanAttrLineCount, len(resp.Lines),
	)
	return resp, nil
}

func (s *StockTakeService) startSession(ctx context.Context, tenantID uuid.UUID, req StartSessionRequest) (*SessionResponse, error) {
	location, err := s.locationRepo.FindByIDForTenant(ctx, tenantID, req.LocationID)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, tenantID, location.ID, s.lockTTL)
	if err != nil {
		return nil, err
	}
	defer s.release(ctx, release, location.ID)

	active, err := s.sessionRepo.FindActiveByLocation(ctx, tenantID, location.ID)
	if err == nil && active != nil {
		return nil, inventory.ErrSessionAlreadyActive
	}
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	snapshot, err := s.snapshots.Snapshot(ctx, tenantID, location.ID)
	if err != nil {
		return nil, err
	}

	// Numbers are per tenant and day while the lock is per location, so a
	// start at another location can take the same number first.
	var session *inventory.StockTakeSession
	for attempt := 1; ; attempt++ {
		number, err := s.sessionRepo.GenerateSessionNumber(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		session, err = inventory.NewStockTakeSession(location, number, req.CreatedByID, req.CreatedByName, snapshot)
		if err != nil {
			return nil, err
		}
		session.Remark = req.Remark

		err = s.sessionRepo.Create(ctx, session)
		if err == nil {
			break
		}
		if !errors.Is(err, shared.ErrAlreadyExists) || attempt == sessionNumberAttempts {
			return nil, err
		}
		s.logger.Debug("Session number taken, retrying",
			zap.String("session_number", number),
			zap.Int("attempt", attempt),
		)
	}

	s.logger.Info("Stock take started",
		zap.String("session_id", session.ID.String()),
		zap.String("session_number", session.SessionNumber),
		zap.String("location_id", location.ID.String()),
		zap.Int("lines", len(session.Lines)),
	)
	s.publishEvents(ctx, session)

	resp := ToSessionResponse(session)
	return &resp, nil
}

// SetCount records or clears the counted quantity of a product
func (s *StockTakeService) SetCount(ctx context.Context, tenantID, sessionID, productID uuid.UUID, value inventory.CountValue) (*CountResponse, error) {
	session, err := s.sessionRepo.FindByIDForTenant(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.SetCount(productID, value); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}

	line, _ := session.Line(productID)
	resp := ToCountResponse(session.ID, line)
	return &resp, nil
}

// ClearCount resets a product to uncounted
func (s *StockTakeService) ClearCount(ctx context.Context, tenantID, sessionID, productID uuid.UUID) (*CountResponse, error) {
	return s.SetCount(ctx, tenantID, sessionID, productID, inventory.Unset())
}

// SetCounts applies several counts at once, all or none
func (s *StockTakeService) SetCounts(ctx context.Context, tenantID, sessionID uuid.UUID, entries []inventory.CountEntry) (*SessionResponse, error) {
	session, err := s.sessionRepo.FindByIDForTenant(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.SetCounts(entries); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}
	resp := ToSessionResponse(session)
	return &resp, nil
}

// Finalize applies every nonzero variance line to inventory and completes the session.
// Location stock is set to the counted quantity and aggregate stock moves by the variance.
// All writes share one transaction; on any store failure nothing is applied and the
// session stays in progress.
func (s *StockTakeService) Finalize(ctx context.Context, tenantID, sessionID uuid.UUID) (*FinalizeResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock_take", "finalize")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrSessionID, sessionID.String(),
	)

	resp, err := s.finalize(ctx, tenantID, sessionID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrAdjustedLines, len(resp.Adjustments),
		telemetry.SpanAttrNetUnits, resp.NetUnits,
	)
	return resp, nil
}

func (s *StockTakeService) finalize(ctx context.Context, tenantID, sessionID uuid.UUID) (*FinalizeResponse, error) {
	session, err := s.sessionRepo.FindByIDForTenant(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := session.FinalizableLines(); err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, tenantID, session.LocationID, s.lockTTL)
	if err != nil {
		return nil, err
	}
	defer s.release(ctx, release, session.LocationID)

	var (
		finalized   *inventory.StockTakeSession
		adjustments []inventory.StockAdjustment
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		current, err := repos.SessionRepo().FindByIDForTenant(ctx, tenantID, sessionID)
		if err != nil {
			return err
		}
		lines, err := current.FinalizableLines()
		if err != nil {
			return err
		}

		store := repos.InventoryStore()
		levels, err := store.ReadLocationStock(ctx, tenantID, current.LocationID)
		if err != nil {
			return persistenceFailure("Failed to read location stock", err)
		}
		live := make(map[uuid.UUID]int64, len(levels))
		for _, l := range levels {
			live[l.ProductID] = l.Quantity
		}

		at := s.now()
		adjustments = make([]inventory.StockAdjustment, 0, len(lines))
		for _, line := range lines {
			if err := store.WriteLocationStock(ctx, tenantID, line.ProductID, current.LocationID, line.CountedQuantity); err != nil {
				return persistenceFailure(fmt.Sprintf("Failed to write stock of %s", line.ProductCode), err)
			}
			if err := store.AdjustAggregateStock(ctx, tenantID, line.ProductID, line.Variance); err != nil {
				if errors.Is(err, shared.ErrInsufficientStock) {
					// Retrying cannot help; the operator has to recount or cancel.
					return shared.WrapDomainError(shared.ErrInsufficientStock.Code, fmt.Sprintf(
						"Total stock of %s cannot absorb a variance of %d (counted %d, expected %d, now %d at this location)",
						line.ProductCode, line.Variance, line.CountedQuantity, line.ExpectedQuantity, live[line.ProductID]), err)
				}
				return persistenceFailure(fmt.Sprintf("Failed to adjust total stock of %s", line.ProductCode), err)
			}
			adj := inventory.NewStockAdjustment(current, line, live[line.ProductID], at)
			if adj.Drift() != 0 {
				s.logger.Warn("Location stock moved since the stock take started",
					zap.String("session_id", current.ID.String()),
					zap.String("product_id", line.ProductID.String()),
					zap.Int64("expected", adj.ExpectedQuantity),
					zap.Int64("live", adj.PreviousQuantity),
					zap.Int64("counted", adj.CountedQuantity),
				)
			}
			adjustments = append(adjustments, adj)
		}

		if err := repos.AdjustmentRepo().SaveBatch(ctx, adjustments); err != nil {
			return persistenceFailure("Failed to record stock adjustments", err)
		}
		if err := current.Complete(lines, at); err != nil {
			return err
		}
		if err := repos.SessionRepo().Save(ctx, current); err != nil {
			if isDomainError(err) {
				return err
			}
			return persistenceFailure("Failed to save stock take", err)
		}
		finalized = current
		return nil
	})
	if err != nil {
		if !isDomainError(err) {
			err = persistenceFailure("Failed to commit stock take", err)
		}
		s.logger.Error("Stock take finalize failed",
			zap.String("session_id", sessionID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("Stock take finalized",
		zap.String("session_id", finalized.ID.String()),
		zap.String("location_id", finalized.LocationID.String()),
		zap.Int("adjusted_lines", len(adjustments)),
	)
	s.publishEvents(ctx, finalized)

	resp := &FinalizeResponse{
		Session:     ToSessionResponse(finalized),
		Adjustments: ToAdjustmentResponses(adjustments),
		NetValue:    decimal.Zero,
	}
	for _, a := range adjustments {
		resp.NetUnits += a.Variance
		resp.NetValue = resp.NetValue.Add(a.VarianceValue)
	}
	return resp, nil
}

// Cancel abandons a session after explicit confirmation. Inventory is never touched.
func (s *StockTakeService) Cancel(ctx context.Context, tenantID, sessionID uuid.UUID, req CancelSessionRequest) (*SessionResponse, error) {
	session, err := s.sessionRepo.FindByIDForTenant(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.Cancel(req.Confirm, req.Reason, s.now()); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("Stock take cancelled",
		zap.String("session_id", session.ID.String()),
		zap.String("reason", req.Reason),
	)
	s.publishEvents(ctx, session)

	resp := ToSessionResponse(session)
	return &resp, nil
}

func (s *StockTakeService) release(ctx context.Context, release ReleaseFunc, locationID uuid.UUID) {
	if err := release(context.WithoutCancel(ctx)); err != nil {
		s.logger.Warn("Failed to release location lock",
			zap.String("location_id", locationID.String()),
			zap.Error(err),
		)
	}
}

// publishEvents publishes domain events from the aggregate
func (s *StockTakeService) publishEvents(ctx context.Context, session *inventory.StockTakeSession) {
	if s.eventBus == nil {
		return
	}
	for _, event := range session.GetDomainEvents() {
		if err := s.eventBus.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish event",
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
	session.ClearDomainEvents()
}

func persistenceFailure(message string, err error) error {
	return shared.WrapDomainError(shared.ErrPersistenceFailure.Code, message, err)
}

func isDomainError(err error) bool {
	var de *shared.DomainError
	return errors.As(err, &de)
}
