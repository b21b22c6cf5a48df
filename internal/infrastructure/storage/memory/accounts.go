package memory

import (
	"context"
	"sort"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/numerator"
	"weavebooks/internal/domain/plan"
)

type accountRow = plan.Account

// AccountRepo implements plan.AccountRepository.
type AccountRepo struct{ s *Store }

// Accounts returns the account repository.
func (s *Store) Accounts() *AccountRepo { return &AccountRepo{s: s} }

func (r *AccountRepo) Create(ctx context.Context, a *plan.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[a.ID]; ok {
		return apperror.NewConflict("account already exists").WithDetail("id", a.ID)
	}
	cp := *a
	r.s.accounts[a.ID] = &cp
	return nil
}

func (r *AccountRepo) Get(ctx context.Context, scope account.Scope) (*plan.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.accounts[scope.ID()]
	if !ok {
		return nil, apperror.NewNotFound("account", scope.ID())
	}
	cp := *a
	return &cp, nil
}

func (r *AccountRepo) ListIDs(ctx context.Context) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := make([]string, 0, len(r.s.accounts))
	for id := range r.s.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *AccountRepo) SetPlan(ctx context.Context, scope account.Scope, key string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[scope.ID()]
	if !ok {
		return apperror.NewNotFound("account", scope.ID())
	}
	a.SubscriptionType = key
	return nil
}

// Counter implements numerator.Counter. Increments are never compensated:
// a number consumed by a failed unit of work is skipped.
type Counter struct{ s *Store }

// Counter returns the document counter.
func (s *Store) Counter() *Counter { return &Counter{s: s} }

func (c *Counter) Next(ctx context.Context, scope account.Scope, key string) (int64, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	k := scope.ID() + "/" + key
	v, ok := c.s.counters[k]
	if !ok {
		return 0, numerator.ErrNotInitialized
	}
	v++
	c.s.counters[k] = v
	return v, nil
}

func (c *Counter) Init(ctx context.Context, scope account.Scope, key string, value int64) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	k := scope.ID() + "/" + key
	if _, ok := c.s.counters[k]; !ok {
		c.s.counters[k] = value
	}
	return nil
}

var (
	_ plan.AccountRepository = (*AccountRepo)(nil)
	_ numerator.Counter      = (*Counter)(nil)
)
