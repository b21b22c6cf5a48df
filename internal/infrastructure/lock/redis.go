// Package lock implements core/lock.Locker on redis for multi-instance deployments.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	corelock "weavebooks/internal/core/lock"
)

// DefaultRetryBackoff is the pause between attempts on a busy key.
const DefaultRetryBackoff = 50 * time.Millisecond

// Redis obtains locks through bsm/redislock.
type Redis struct {
	client  *redislock.Client
	wait    time.Duration
	backoff time.Duration
}

// Option tunes a Redis locker.
type Option func(*Redis)

// WithWait bounds how long Obtain retries a busy key.
func WithWait(d time.Duration) Option {
	return func(r *Redis) { r.wait = d }
}

// WithBackoff sets the pause between retries.
func WithBackoff(d time.Duration) Option {
	return func(r *Redis) { r.backoff = d }
}

// NewRedis creates a locker on rdb.
func NewRedis(rdb redis.UniversalClient, opts ...Option) *Redis {
	r := &Redis{client: redislock.New(rdb), wait: 5 * time.Second, backoff: DefaultRetryBackoff}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Obtain implements corelock.Locker. A key still held after the wait budget
// yields corelock.ErrNotObtained.
func (r *Redis) Obtain(ctx context.Context, key string, ttl time.Duration) (corelock.Lock, error) {
	retries := int(r.wait / r.backoff)
	l, err := r.client.Obtain(ctx, key, ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(r.backoff), retries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, corelock.ErrNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("obtain %s: %w", key, err)
	}
	return &redisLock{l: l}, nil
}

type redisLock struct {
	l *redislock.Lock
}

// Release drops the lock. A lock that already expired is not an error.
func (k *redisLock) Release(ctx context.Context) error {
	err := k.l.Release(ctx)
	if errors.Is(err, redislock.ErrLockNotHeld) {
		return nil
	}
	return err
}

var _ corelock.Locker = (*Redis)(nil)
