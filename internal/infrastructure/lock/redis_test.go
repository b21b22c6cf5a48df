package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weavebooks/internal/core/apperror"
	corelock "weavebooks/internal/core/lock"
)

func newTestLocker(t *testing.T, opts ...Option) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedis(rdb, opts...), mr
}

func TestRedis_ObtainAndRelease(t *testing.T) {
	ctx := context.Background()
	locker, mr := newTestLocker(t)
	key := corelock.Key("acct-1", corelock.KindInvoice, "inv-1")

	l, err := locker.Obtain(ctx, key, time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists(key))

	require.NoError(t, l.Release(ctx))
	assert.False(t, mr.Exists(key))
}

func TestRedis_BusyKeyIsNotObtained(t *testing.T) {
	ctx := context.Background()
	locker, _ := newTestLocker(t, WithWait(20*time.Millisecond), WithBackoff(5*time.Millisecond))

	held, err := locker.Obtain(ctx, "k", time.Minute)
	require.NoError(t, err)
	defer held.Release(ctx)

	_, err = locker.Obtain(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, corelock.ErrNotObtained)
}

func TestRedis_WithLockReportsConflict(t *testing.T) {
	ctx := context.Background()
	locker, _ := newTestLocker(t, WithWait(10*time.Millisecond), WithBackoff(5*time.Millisecond))

	held, err := locker.Obtain(ctx, "k", time.Minute)
	require.NoError(t, err)
	defer held.Release(ctx)

	called := false
	err = corelock.WithLock(ctx, locker, "k", time.Minute, func(context.Context) error {
		called = true
		return nil
	})
	assert.False(t, called)
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))
}

func TestRedis_ReleaseAfterExpiryIsNoop(t *testing.T) {
	ctx := context.Background()
	locker, mr := newTestLocker(t)

	l, err := locker.Obtain(ctx, "k", time.Second)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	assert.NoError(t, l.Release(ctx))
}
