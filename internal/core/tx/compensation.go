package tx

import (
	"context"
	"fmt"
	"sync"

	"weavebooks/pkg/logger"
)

// Compensation undoes one already-applied write.
type Compensation func(ctx context.Context) error

type compensation struct {
	name string
	fn   Compensation
}

// journal records inverse actions in the order their writes happened.
type journal struct {
	mu      sync.Mutex
	entries []compensation
}

type journalKey struct{}

func journalFrom(ctx context.Context) *journal {
	j, _ := ctx.Value(journalKey{}).(*journal)
	return j
}

// OnRollback registers fn to run if the surrounding unit of work fails.
// Outside a compensating unit of work (e.g. inside a postgres transaction) it is a no-op.
func OnRollback(ctx context.Context, name string, fn Compensation) {
	j := journalFrom(ctx)
	if j == nil {
		return
	}
	j.mu.Lock()
	j.entries = append(j.entries, compensation{name: name, fn: fn})
	j.mu.Unlock()
}

// InCompensatingUnit reports whether ctx carries a compensation journal.
func InCompensatingUnit(ctx context.Context) bool {
	return journalFrom(ctx) != nil
}

// CompensatingManager implements Manager for stores without multi-document
// transactions. Writes register their inverse through OnRollback; when fn
// fails the inverses are replayed newest first.
type CompensatingManager struct{}

// NewCompensatingManager creates a CompensatingManager.
func NewCompensatingManager() *CompensatingManager {
	return &CompensatingManager{}
}

// RunInTransaction implements Manager.
func (m *CompensatingManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if journalFrom(ctx) != nil {
		return fn(ctx)
	}

	j := &journal{}
	unitCtx := context.WithValue(ctx, journalKey{}, j)

	defer func() {
		if p := recover(); p != nil {
			j.replay(ctx)
			panic(p)
		}
	}()

	if err = fn(unitCtx); err != nil {
		j.replay(ctx)
		return err
	}
	return nil
}

// ReadOnly implements ReadOnlyManager. Reads need no journal.
func (m *CompensatingManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// replay runs the compensations newest first. ctx is the caller context
// without the journal, detached from cancellation so inverses still run
// after a timeout.
func (j *journal) replay(ctx context.Context) {
	j.mu.Lock()
	entries := j.entries
	j.entries = nil
	j.mu.Unlock()

	if len(entries) == 0 {
		return
	}

	ctx = context.WithoutCancel(ctx)
	logger.Warn(ctx, "rolling back unit of work", "compensations", len(entries))

	for i := len(entries) - 1; i >= 0; i-- {
		c := entries[i]
		if err := runCompensation(ctx, c); err != nil {
			logger.Error(ctx, "compensation failed", "name", c.name, "error", err)
		}
	}
}

func runCompensation(ctx context.Context, c compensation) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic in compensation: %v", p)
		}
	}()
	return c.fn(ctx)
}

var _ ReadOnlyManager = (*CompensatingManager)(nil)
