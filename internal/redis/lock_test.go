package redisclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) (Locker, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisKeyedLocker(client, 5*time.Second), mr, client
}

func TestWithLockRunsCriticalSection(t *testing.T) {
	locker, _, _ := newTestLocker(t)

	ran := false
	err := locker.WithLock(context.Background(), "lock:request:2025-06-02:10:00", func(ctx context.Context) error {
		ran = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)
}

func TestWithLockReleasesKey(t *testing.T) {
	locker, mr, _ := newTestLocker(t)
	const key = "lock:assign:doc:2025-06-03:10:30"

	require.NoError(t, locker.WithLock(context.Background(), key, func(ctx context.Context) error {
		assert.True(t, mr.Exists(key), "key must be held during the critical section")
		return nil
	}))

	assert.False(t, mr.Exists(key), "key must be released afterwards")
}

func TestWithLockContention(t *testing.T) {
	locker, _, _ := newTestLocker(t)
	const key = "lock:request:2025-06-02:10:00"

	err := locker.WithLock(context.Background(), key, func(ctx context.Context) error {
		return locker.WithLock(ctx, key, func(ctx context.Context) error {
			t.Fatal("second acquisition must not run")
			return nil
		})
	})

	assert.ErrorIs(t, err, ErrLockNotAcquired)
}

func TestWithLockPropagatesSectionError(t *testing.T) {
	locker, mr, _ := newTestLocker(t)
	const key = "lock:request:2025-06-02:11:00"

	sectionErr := errors.New("duplicate slot")
	err := locker.WithLock(context.Background(), key, func(ctx context.Context) error {
		return sectionErr
	})

	assert.ErrorIs(t, err, sectionErr)
	assert.False(t, mr.Exists(key), "key must be released even on failure")
}

func TestWithLockDoesNotReleaseForeignToken(t *testing.T) {
	locker, mr, client := newTestLocker(t)
	const key = "lock:request:2025-06-02:12:00"

	err := locker.WithLock(context.Background(), key, func(ctx context.Context) error {
		// Simulate TTL expiry followed by another worker taking the key.
		mr.Del(key)
		return client.Set(ctx, key, "someone-else", 0).Err()
	})

	require.NoError(t, err)
	val, err := client.Get(context.Background(), key).Result()
	require.NoError(t, err)
	assert.Equal(t, "someone-else", val, "release must not delete a key it no longer owns")
}
