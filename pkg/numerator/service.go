// Package numerator provides the SQL-backed counter behind document numbering.
// Counters live in sys_counters, one row per (account_id, key).
package numerator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNoCounter is returned by Next when the counter row does not exist.
var ErrNoCounter = errors.New("numerator: counter row missing")

// Strategy defines the numbering generation strategy.
type Strategy int

const (
	// StrategyStrict uses UPDATE ... RETURNING for every number.
	// Numbers are consecutive except where the caller abandons one.
	StrategyStrict Strategy = iota

	// StrategyCached allocates ranges of numbers in memory.
	// One round trip per range, but the unused rest of a range is lost on
	// restart, and instances sharing a counter interleave their ranges.
	StrategyCached
)

// Strategy names accepted by ParseStrategy.
const (
	StrategyNameStrict = "strict"
	StrategyNameCached = "cached"
)

// ParseStrategy maps a configured name to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "", StrategyNameStrict:
		return StrategyStrict, nil
	case StrategyNameCached:
		return StrategyCached, nil
	}
	return StrategyStrict, fmt.Errorf("numerator: unknown strategy %q", name)
}

// Options configuration for number generation.
type Options struct {
	// Strategy to use for number generation
	Strategy Strategy
	// RangeSize is the number of values to reserve at once in Cached strategy.
	// Default is 50.
	RangeSize int64
}

// DefaultOptions returns standard options (Strict).
func DefaultOptions() *Options {
	return &Options{
		Strategy: StrategyStrict,
	}
}

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type cachedRange struct {
	current int64
	max     int64
}

// Service hands out counter values.
type Service struct {
	querier func(ctx context.Context) Querier
	opts    *Options

	// cacheMu protects ranges; keys are "account/key"
	cacheMu sync.Mutex
	ranges  map[string]*cachedRange
}

// New creates a numerator service with a static querier.
func New(querier Querier, opts *Options) *Service {
	return NewWithResolver(func(context.Context) Querier { return querier }, opts)
}

// NewWithResolver creates a service that resolves the querier per call,
// e.g. the transaction bound to ctx.
func NewWithResolver(resolve func(ctx context.Context) Querier, opts *Options) *Service {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Service{
		querier: resolve,
		opts:    opts,
		ranges:  make(map[string]*cachedRange),
	}
}

// Next increments the counter and returns the new value.
func (s *Service) Next(ctx context.Context, accountID, key string) (int64, error) {
	if s.opts.Strategy == StrategyCached {
		return s.nextCached(ctx, accountID, key)
	}
	return s.nextStrict(ctx, accountID, key)
}

func (s *Service) nextStrict(ctx context.Context, accountID, key string) (int64, error) {
	var num int64
	err := s.querier(ctx).QueryRow(ctx, `
        UPDATE sys_counters SET current_val = current_val + 1, updated_at = now()
        WHERE account_id = $1 AND key = $2
        RETURNING current_val
	`, accountID, key).Scan(&num)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNoCounter
	}
	if err != nil {
		return 0, fmt.Errorf("strict next: %w", err)
	}
	return num, nil
}

// nextCached serves from a reserved range, reserving a new one from the DB when exhausted.
func (s *Service) nextCached(ctx context.Context, accountID, key string) (int64, error) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	cacheKey := accountID + "/" + key
	rng, exists := s.ranges[cacheKey]
	if !exists {
		rng = &cachedRange{}
		s.ranges[cacheKey] = rng
	}

	if rng.current >= rng.max {
		size := s.opts.RangeSize
		if size <= 0 {
			size = 50
		}

		// current_val tracks the last reserved value, so the new range is
		// (old .. old+size].
		var newMax int64
		err := s.querier(ctx).QueryRow(ctx, `
            UPDATE sys_counters SET current_val = current_val + $3, updated_at = now()
            WHERE account_id = $1 AND key = $2
            RETURNING current_val
		`, accountID, key, size).Scan(&newMax)
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNoCounter
		}
		if err != nil {
			return 0, fmt.Errorf("reserve range: %w", err)
		}

		rng.current = newMax - size
		rng.max = newMax
	}

	rng.current++
	return rng.current, nil
}

// Init inserts the counter row with value as the last issued number.
// An existing row is kept as is.
func (s *Service) Init(ctx context.Context, accountID, key string, value int64) error {
	_, err := s.querier(ctx).Exec(ctx, `
		INSERT INTO sys_counters (account_id, key, current_val)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, key) DO NOTHING
	`, accountID, key, value)
	if err != nil {
		return fmt.Errorf("init counter: %w", err)
	}
	return nil
}
