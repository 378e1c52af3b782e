package inventory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/inventory"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{events: make([]shared.DomainEvent, 0)}
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

// MockLocationRepository is a mock implementation of LocationRepository
type MockLocationRepository struct {
	mock.Mock
}

func (m *MockLocationRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Location, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Location), args.Error(1)
}

func (m *MockLocationRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]inventory.Location, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]inventory.Location), args.Error(1)
}

func (m *MockLocationRepository) Save(ctx context.Context, location *inventory.Location) error {
	args := m.Called(ctx, location)
	return args.Error(0)
}

// memSessionRepo keeps sessions in memory with optimistic versioning
type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]inventory.StockTakeSession
	seq      int
	saveErr  error
	// numberTaken makes the next n creates fail as a duplicate session number
	numberTaken int
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[uuid.UUID]inventory.StockTakeSession)}
}

func cloneSession(s *inventory.StockTakeSession) inventory.StockTakeSession {
	c := *s
	c.ClearDomainEvents()
	c.Lines = make([]inventory.CountedLine, len(s.Lines))
	for i, l := range s.Lines {
		if l.CountedQuantity != nil {
			q := *l.CountedQuantity
			l.CountedQuantity = &q
		}
		c.Lines[i] = l
	}
	return c
}

func (r *memSessionRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*inventory.StockTakeSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	c := cloneSession(&s)
	return &c, nil
}

func (r *memSessionRepo) FindActiveByLocation(_ context.Context, tenantID, locationID uuid.UUID) (*inventory.StockTakeSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.TenantID == tenantID && s.LocationID == locationID && s.Status == inventory.SessionStatusInProgress {
			c := cloneSession(&s)
			return &c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memSessionRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, filter inventory.SessionFilter) ([]inventory.StockTakeSession, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]inventory.StockTakeSession, 0)
	for _, s := range r.sessions {
		if s.TenantID != tenantID {
			continue
		}
		if filter.LocationID != nil && s.LocationID != *filter.LocationID {
			continue
		}
		if filter.Status != nil && s.Status != *filter.Status {
			continue
		}
		out = append(out, cloneSession(&s))
	}
	slices.SortFunc(out, func(a, b inventory.StockTakeSession) int {
		return strings.Compare(a.SessionNumber, b.SessionNumber)
	})
	return out, int64(len(out)), nil
}

func (r *memSessionRepo) Create(_ context.Context, session *inventory.StockTakeSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.numberTaken > 0 {
		r.numberTaken--
		return shared.WrapDomainError(shared.ErrAlreadyExists.Code, "Stock take number already used", errors.New("duplicate key"))
	}
	r.sessions[session.ID] = cloneSession(session)
	return nil
}

func (r *memSessionRepo) Save(_ context.Context, session *inventory.StockTakeSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	stored, ok := r.sessions[session.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != session.Version {
		return shared.ErrConcurrencyConflict
	}
	session.IncrementVersion()
	r.sessions[session.ID] = cloneSession(session)
	return nil
}

func (r *memSessionRepo) GenerateSessionNumber(_ context.Context, _ uuid.UUID) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return fmt.Sprintf("ST-TEST-%04d", r.seq), nil
}

type stockKey struct {
	location uuid.UUID
	product  uuid.UUID
}

// memStore is an in-memory InventoryStore with failure injection
type memStore struct {
	mu          sync.Mutex
	products    map[uuid.UUID]inventory.ProductStock
	levels      map[stockKey]int64
	failWrite   map[uuid.UUID]error
	failAdjust  map[uuid.UUID]error
	writeCalls  int
	adjustCalls int
}

func newMemStore() *memStore {
	return &memStore{
		products:   make(map[uuid.UUID]inventory.ProductStock),
		levels:     make(map[stockKey]int64),
		failWrite:  make(map[uuid.UUID]error),
		failAdjust: make(map[uuid.UUID]error),
	}
}

func (s *memStore) put(tenantID, locationID uuid.UUID, code string, qty int64) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := inventory.ProductStock{
		BaseEntity:    shared.NewBaseEntity(),
		TenantID:      tenantID,
		Code:          code,
		Name:          "Product " + code,
		Unit:          "pcs",
		TotalQuantity: qty,
	}
	s.products[p.ID] = p
	s.levels[stockKey{locationID, p.ID}] = qty
	return p.ID
}

// sell removes qty from both the location and the product total
func (s *memStore) sell(locationID, productID uuid.UUID, qty int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels[stockKey{locationID, productID}] -= qty
	p := s.products[productID]
	p.TotalQuantity -= qty
	s.products[productID] = p
}

func (s *memStore) level(locationID, productID uuid.UUID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.levels[stockKey{locationID, productID}]
}

func (s *memStore) total(productID uuid.UUID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[productID].TotalQuantity
}

func (s *memStore) ReadLocationStock(_ context.Context, tenantID, locationID uuid.UUID) ([]inventory.StockLevel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]inventory.StockLevel, 0)
	for k, qty := range s.levels {
		p := s.products[k.product]
		if k.location != locationID || p.TenantID != tenantID {
			continue
		}
		out = append(out, inventory.StockLevel{
			ProductID:   p.ID,
			ProductCode: p.Code,
			ProductName: p.Name,
			Unit:        p.Unit,
			UnitCost:    p.UnitCost,
			Quantity:    qty,
		})
	}
	slices.SortFunc(out, func(a, b inventory.StockLevel) int { return cmp.Compare(a.ProductCode, b.ProductCode) })
	return out, nil
}

func (s *memStore) WriteLocationStock(_ context.Context, _, productID, locationID uuid.UUID, quantity int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeCalls++
	if err := s.failWrite[productID]; err != nil {
		return err
	}
	s.levels[stockKey{locationID, productID}] = quantity
	return nil
}

func (s *memStore) AdjustAggregateStock(_ context.Context, _, productID uuid.UUID, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adjustCalls++
	if err := s.failAdjust[productID]; err != nil {
		return err
	}
	p := s.products[productID]
	if err := p.Adjust(delta); err != nil {
		return err
	}
	s.products[productID] = p
	return nil
}

type memAdjustmentRepo struct {
	mu   sync.Mutex
	rows []inventory.StockAdjustment
}

func (r *memAdjustmentRepo) SaveBatch(_ context.Context, adjustments []inventory.StockAdjustment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, adjustments...)
	return nil
}

func (r *memAdjustmentRepo) FindBySession(_ context.Context, tenantID, sessionID uuid.UUID) ([]inventory.StockAdjustment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]inventory.StockAdjustment, 0)
	for _, a := range r.rows {
		if a.TenantID == tenantID && a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	return out, nil
}

// memTxScope restores every in-memory collection when fn fails
type memTxScope struct {
	mu       sync.Mutex
	sessions *memSessionRepo
	store    *memStore
	adjs     *memAdjustmentRepo
}

func (t *memTxScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sessions.mu.Lock()
	sessions := maps.Clone(t.sessions.sessions)
	t.sessions.mu.Unlock()
	t.store.mu.Lock()
	products := maps.Clone(t.store.products)
	levels := maps.Clone(t.store.levels)
	t.store.mu.Unlock()
	t.adjs.mu.Lock()
	rows := slices.Clone(t.adjs.rows)
	t.adjs.mu.Unlock()

	err := fn(t)
	if err != nil {
		t.sessions.mu.Lock()
		t.sessions.sessions = sessions
		t.sessions.mu.Unlock()
		t.store.mu.Lock()
		t.store.products = products
		t.store.levels = levels
		t.store.mu.Unlock()
		t.adjs.mu.Lock()
		t.adjs.rows = rows
		t.adjs.mu.Unlock()
	}
	return err
}

func (t *memTxScope) SessionRepo() inventory.StockTakeSessionRepository   { return t.sessions }
func (t *memTxScope) InventoryStore() inventory.InventoryStore            { return t.store }
func (t *memTxScope) AdjustmentRepo() inventory.StockAdjustmentRepository { return t.adjs }

// memLocker is a process-local LocationLocker
type memLocker struct {
	mu   sync.Mutex
	held map[uuid.UUID]bool
}

func newMemLocker() *memLocker {
	return &memLocker{held: make(map[uuid.UUID]bool)}
}

func (l *memLocker) Acquire(_ context.Context, _, locationID uuid.UUID, _ time.Duration) (ReleaseFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[locationID] {
		return nil, inventory.ErrFinalizeInProgress
	}
	l.held[locationID] = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, locationID)
		return nil
	}, nil
}
