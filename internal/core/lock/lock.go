// Package lock serializes read-modify-write cycles on a single document.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"weavebooks/internal/core/apperror"
	"weavebooks/pkg/logger"
)

// ErrNotObtained is returned when the lock is held by someone else for longer than the wait budget.
var ErrNotObtained = errors.New("lock: not obtained")

// Lock is a held lock.
type Lock interface {
	Release(ctx context.Context) error
}

// Locker obtains named locks. Keys include the account id.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

// Document kinds used in lock keys.
const (
	KindInvoice       = "invoice"
	KindPurchaseBill  = "purchase_bill"
	KindPurchaseOrder = "purchase_order"
)

// Key builds a lock key for one document of an account.
func Key(accountID, kind, id string) string {
	return "lock:" + accountID + ":" + kind + ":" + id
}

// Local is an in-process Locker. It is correct only for a single server instance.
type Local struct {
	mu   sync.Mutex
	held map[string]chan struct{}
	wait time.Duration
}

// NewLocal creates an in-process locker that waits up to wait for a busy key.
func NewLocal(wait time.Duration) *Local {
	if wait <= 0 {
		wait = 5 * time.Second
	}
	return &Local{held: make(map[string]chan struct{}), wait: wait}
}

// Obtain implements Locker. ttl is not enforced in-process; the holder releases explicitly.
func (l *Local) Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	for {
		l.mu.Lock()
		ch, busy := l.held[key]
		if !busy {
			l.held[key] = make(chan struct{})
			l.mu.Unlock()
			return &localLock{owner: l, key: key}, nil
		}
		l.mu.Unlock()

		select {
		case <-ch:
		case <-timer.C:
			return nil, ErrNotObtained
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

type localLock struct {
	owner *Local
	key   string
	once  sync.Once
}

func (k *localLock) Release(context.Context) error {
	k.once.Do(func() {
		k.owner.mu.Lock()
		if ch, ok := k.owner.held[k.key]; ok {
			delete(k.owner.held, k.key)
			close(ch)
		}
		k.owner.mu.Unlock()
	})
	return nil
}

// WithLock runs fn while holding key. Contention is reported as CONFLICT.
func WithLock(ctx context.Context, locker Locker, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	l, err := locker.Obtain(ctx, key, ttl)
	if err != nil {
		if errors.Is(err, ErrNotObtained) {
			logger.Warn(ctx, "document is locked", "key", key)
			return apperror.NewConflict("document is being modified by another request, retry later").
				WithDetail("lock", key)
		}
		return apperror.NewInternal(err)
	}
	defer func() {
		if rerr := l.Release(context.WithoutCancel(ctx)); rerr != nil {
			logger.Warn(ctx, "release lock", "key", key, "error", rerr)
		}
	}()
	return fn(ctx)
}

var _ Locker = (*Local)(nil)
