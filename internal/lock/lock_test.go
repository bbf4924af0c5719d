package lock_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashitanamdeo/janmat-sub001/internal/lock"
)

func newRedisLocker(t *testing.T) (*lock.RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return lock.NewRedisLocker(client, "janmat:lock:"), mr
}

func TestRedisLocker_ExclusiveUntilReleased(t *testing.T) {
	ctx := context.Background()
	locker, mr := newRedisLocker(t)

	release, err := locker.Acquire(ctx, "quick-actions", time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists("janmat:lock:quick-actions"))

	_, err = locker.Acquire(ctx, "quick-actions", time.Minute)
	assert.ErrorIs(t, err, lock.ErrLocked)

	release()
	release()
	assert.False(t, mr.Exists("janmat:lock:quick-actions"))

	again, err := locker.Acquire(ctx, "quick-actions", time.Minute)
	require.NoError(t, err)
	again()
}

func TestRedisLocker_StaleReleaseKeepsNewHolder(t *testing.T) {
	ctx := context.Background()
	locker, mr := newRedisLocker(t)

	stale, err := locker.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	fresh, err := locker.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)

	stale()
	assert.True(t, mr.Exists("janmat:lock:k"), "expired holder must not delete the new lock")
	fresh()
	assert.False(t, mr.Exists("janmat:lock:k"))
}

func TestRedisLocker_UnavailableServer(t *testing.T) {
	locker, mr := newRedisLocker(t)
	mr.Close()

	_, err := locker.Acquire(context.Background(), "k", time.Minute)

	require.Error(t, err)
	assert.NotErrorIs(t, err, lock.ErrLocked)
}

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()
	locker := lock.NewLocalLocker()

	release, err := locker.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	_, err = locker.Acquire(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, lock.ErrLocked)

	release()
	release2, err := locker.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	release2()
}
