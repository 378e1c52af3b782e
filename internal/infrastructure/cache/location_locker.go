package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	appinv "github.com/pos/backend/internal/application/inventory"
	"github.com/pos/backend/internal/domain/inventory"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const defaultLockPrefix = "pos:stocktake:lock:"

// releaseScript deletes the lock only if it still carries the caller's token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func lockKey(prefix string, tenantID, locationID uuid.UUID) string {
	return prefix + tenantID.String() + ":" + locationID.String()
}

// RedisLocationLocker implements LocationLocker with SET NX PX so every
// instance of the service shares one lock per location.
type RedisLocationLocker struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisLocationLocker creates a locker on an existing Redis client
func NewRedisLocationLocker(client redis.UniversalClient, keyPrefix string) *RedisLocationLocker {
	if keyPrefix == "" {
		keyPrefix = defaultLockPrefix
	}
	return &RedisLocationLocker{client: client, keyPrefix: keyPrefix}
}

// Acquire takes the location lock for at most ttl
func (l *RedisLocationLocker) Acquire(ctx context.Context, tenantID, locationID uuid.UUID, ttl time.Duration) (appinv.ReleaseFunc, error) {
	key := lockKey(l.keyPrefix, tenantID, locationID)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, shared.WrapDomainError(shared.ErrPersistenceFailure.Code, "Location lock unavailable", err)
	}
	if !ok {
		return nil, inventory.ErrFinalizeInProgress
	}

	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("release lock %s: %w", key, err)
		}
		return nil
	}, nil
}

// InMemoryLocationLocker implements LocationLocker inside one process.
// It is meant for single-instance deployments and tests.
type InMemoryLocationLocker struct {
	mu    sync.Mutex
	held  map[string]heldLock
	nowFn func() time.Time
}

type heldLock struct {
	token   string
	expires time.Time
}

// NewInMemoryLocationLocker creates an in-process locker
func NewInMemoryLocationLocker() *InMemoryLocationLocker {
	return &InMemoryLocationLocker{held: make(map[string]heldLock), nowFn: time.Now}
}

// Acquire takes the location lock for at most ttl
func (l *InMemoryLocationLocker) Acquire(_ context.Context, tenantID, locationID uuid.UUID, ttl time.Duration) (appinv.ReleaseFunc, error) {
	key := lockKey("", tenantID, locationID)
	token := uuid.NewString()

	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.nowFn()
	if h, ok := l.held[key]; ok && now.Before(h.expires) {
		return nil, inventory.ErrFinalizeInProgress
	}
	l.held[key] = heldLock{token: token, expires: now.Add(ttl)}

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if h, ok := l.held[key]; ok && h.token == token {
			delete(l.held, key)
		}
		return nil
	}, nil
}

var (
	_ appinv.LocationLocker = (*RedisLocationLocker)(nil)
	_ appinv.LocationLocker = (*InMemoryLocationLocker)(nil)
)
