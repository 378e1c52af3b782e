package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/inventory"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryLocationLocker_ExclusivePerLocation(t *testing.T) {
	locker := NewInMemoryLocationLocker()
	ctx := context.Background()
	tenant, loc := uuid.New(), uuid.New()

	release, err := locker.Acquire(ctx, tenant, loc, time.Minute)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, tenant, loc, time.Minute)
	assert.ErrorIs(t, err, inventory.ErrFinalizeInProgress)

	other, err := locker.Acquire(ctx, tenant, uuid.New(), time.Minute)
	require.NoError(t, err)
	require.NoError(t, other(ctx))

	require.NoError(t, release(ctx))
	again, err := locker.Acquire(ctx, tenant, loc, time.Minute)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

func TestInMemoryLocationLocker_ExpiredLockIsReplaced(t *testing.T) {
	locker := NewInMemoryLocationLocker()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	locker.nowFn = func() time.Time { return now }
	ctx := context.Background()
	tenant, loc := uuid.New(), uuid.New()

	stale, err := locker.Acquire(ctx, tenant, loc, time.Second)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	fresh, err := locker.Acquire(ctx, tenant, loc, time.Minute)
	require.NoError(t, err)

	// the expired holder must not release the new holder's lock
	require.NoError(t, stale(ctx))
	_, err = locker.Acquire(ctx, tenant, loc, time.Minute)
	assert.ErrorIs(t, err, inventory.ErrFinalizeInProgress)
	require.NoError(t, fresh(ctx))
}

func TestInMemoryLocationLocker_Concurrent(t *testing.T) {
	locker := NewInMemoryLocationLocker()
	ctx := context.Background()
	tenant, loc := uuid.New(), uuid.New()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := locker.Acquire(ctx, tenant, loc, time.Minute); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestRedisLocationLocker_BackendDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	locker := NewRedisLocationLocker(client, "")

	_, err := locker.Acquire(context.Background(), uuid.New(), uuid.New(), time.Second)
	require.Error(t, err)
	assert.True(t, shared.IsDomainError(err, shared.ErrPersistenceFailure.Code))
}

func TestLockKey(t *testing.T) {
	tenant := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	loc := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	assert.Equal(t,
		"pos:stocktake:lock:11111111-1111-1111-1111-111111111111:22222222-2222-2222-2222-222222222222",
		lockKey(defaultLockPrefix, tenant, loc))
}
