package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weavebooks/internal/core/apperror"
)

func TestLocal_SerializesSameKey(t *testing.T) {
	l := NewLocal(time.Second)
	var inside, maxInside int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := WithLock(context.Background(), l, "k", time.Second, func(context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside)
}

func TestLocal_TimesOutAsConflict(t *testing.T) {
	l := NewLocal(20 * time.Millisecond)
	held, err := l.Obtain(context.Background(), "k", time.Second)
	require.NoError(t, err)
	defer held.Release(context.Background())

	err = WithLock(context.Background(), l, "k", time.Second, func(context.Context) error { return nil })
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))
}

func TestLocal_DifferentKeysDoNotBlock(t *testing.T) {
	l := NewLocal(20 * time.Millisecond)
	a, err := l.Obtain(context.Background(), Key("acc", "invoice", "1"), time.Second)
	require.NoError(t, err)
	defer a.Release(context.Background())

	b, err := l.Obtain(context.Background(), Key("acc", "invoice", "2"), time.Second)
	require.NoError(t, err)
	require.NoError(t, b.Release(context.Background()))
}
