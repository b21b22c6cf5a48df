package numerator

import (
	"context"
	"sync"

	"weavebooks/internal/core/account"
)

// MockCounter is an in-memory Counter for unit tests.
// NextFunc / InitFunc override the default behaviour when set.
type MockCounter struct {
	NextFunc func(ctx context.Context, scope account.Scope, key string) (int64, error)
	InitFunc func(ctx context.Context, scope account.Scope, key string, value int64) error

	mu     sync.Mutex
	values map[string]int64
}

func (m *MockCounter) mapKey(scope account.Scope, key string) string {
	return scope.ID() + "/" + key
}

// Next implements Counter.
func (m *MockCounter) Next(ctx context.Context, scope account.Scope, key string) (int64, error) {
	if m.NextFunc != nil {
		return m.NextFunc(ctx, scope, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[m.mapKey(scope, key)]
	if !ok {
		return 0, ErrNotInitialized
	}
	v++
	m.values[m.mapKey(scope, key)] = v
	return v, nil
}

// Init implements Counter.
func (m *MockCounter) Init(ctx context.Context, scope account.Scope, key string, value int64) error {
	if m.InitFunc != nil {
		return m.InitFunc(ctx, scope, key, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]int64)
	}
	if _, ok := m.values[m.mapKey(scope, key)]; !ok {
		m.values[m.mapKey(scope, key)] = value
	}
	return nil
}

// Ensure compile-time interface compliance.
var _ Counter = (*MockCounter)(nil)
