package numerator

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock objects
type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates sys_counters keyed by account/key.
type mockQuerier struct {
	mu      sync.Mutex
	rows    map[string]int64
	updates int
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{rows: make(map[string]int64)}
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := args[0].(string) + "/" + args[1].(string)
	cur, ok := m.rows[key]
	if !ok {
		return &mockRow{err: pgx.ErrNoRows}
	}

	// strict passes (account, key); cached passes (account, key, increment)
	increment := int64(1)
	if len(args) == 3 {
		increment = args[2].(int64)
	}
	m.updates++
	m.rows[key] = cur + increment
	return &mockRow{val: cur + increment}
}

func (m *mockQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := args[0].(string) + "/" + args[1].(string)
	value := args[2].(int64)
	_, exists := m.rows[key]
	if strings.Contains(sql, "DO NOTHING") && exists {
		return pgconn.NewCommandTag("INSERT 0 0"), nil
	}
	m.rows[key] = value
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestNext_Strict(t *testing.T) {
	q := newMockQuerier()
	svc := New(q, nil)
	ctx := context.Background()

	_, err := svc.Next(ctx, "acc", "invoice")
	require.ErrorIs(t, err, ErrNoCounter)

	require.NoError(t, svc.Init(ctx, "acc", "invoice", 6))

	num, err := svc.Next(ctx, "acc", "invoice")
	require.NoError(t, err)
	assert.Equal(t, int64(7), num)

	num, err = svc.Next(ctx, "acc", "invoice")
	require.NoError(t, err)
	assert.Equal(t, int64(8), num)
}

func TestInit_KeepsExistingCounter(t *testing.T) {
	q := newMockQuerier()
	svc := New(q, nil)
	ctx := context.Background()

	require.NoError(t, svc.Init(ctx, "acc", "po", 3))
	require.NoError(t, svc.Init(ctx, "acc", "po", 0))

	num, err := svc.Next(ctx, "acc", "po")
	require.NoError(t, err)
	assert.Equal(t, int64(4), num)
}

func TestNext_AccountsAreIndependent(t *testing.T) {
	q := newMockQuerier()
	svc := New(q, nil)
	ctx := context.Background()

	require.NoError(t, svc.Init(ctx, "a", "invoice", 0))
	require.NoError(t, svc.Init(ctx, "b", "invoice", 41))

	na, _ := svc.Next(ctx, "a", "invoice")
	nb, _ := svc.Next(ctx, "b", "invoice")
	assert.Equal(t, int64(1), na)
	assert.Equal(t, int64(42), nb)
}

func TestNext_Cached(t *testing.T) {
	q := newMockQuerier()
	svc := New(q, &Options{Strategy: StrategyCached, RangeSize: 10})
	ctx := context.Background()
	require.NoError(t, svc.Init(ctx, "acc", "order", 0))

	// first call reserves 1..10
	num, err := svc.Next(ctx, "acc", "order")
	require.NoError(t, err)
	assert.Equal(t, int64(1), num)
	assert.Equal(t, int64(10), q.rows["acc/order"])

	for i := 0; i < 9; i++ {
		_, err = svc.Next(ctx, "acc", "order")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, q.updates)

	// range exhausted, DB goes to 20
	num, err = svc.Next(ctx, "acc", "order")
	require.NoError(t, err)
	assert.Equal(t, int64(11), num)
	assert.Equal(t, int64(20), q.rows["acc/order"])
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		name    string
		want    Strategy
		wantErr bool
	}{
		{"", StrategyStrict, false},
		{"strict", StrategyStrict, false},
		{"cached", StrategyCached, false},
		{"ranged", StrategyStrict, true},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.name)
		if tt.wantErr {
			assert.Error(t, err, tt.name)
			continue
		}
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestNext_CachedRestartLosesRestOfRange(t *testing.T) {
	q := newMockQuerier()
	ctx := context.Background()
	opts := &Options{Strategy: StrategyCached, RangeSize: 10}

	first := New(q, opts)
	require.NoError(t, first.Init(ctx, "acc", "INV", 0))
	n, err := first.Next(ctx, "acc", "INV")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	restarted := New(q, opts)
	n, err = restarted.Next(ctx, "acc", "INV")
	require.NoError(t, err)
	assert.Equal(t, int64(11), n)
}
