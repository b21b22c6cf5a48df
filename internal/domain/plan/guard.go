package plan

import (
	"context"
	"fmt"
	"sort"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/apperror"
	"weavebooks/pkg/logger"
)

// CountFunc counts the resource units an account currently uses.
type CountFunc func(ctx context.Context, scope account.Scope) (int64, error)

// Guard checks plan limits before limited resources are created.
type Guard struct {
	accounts AccountRepository
	counters map[Resource]CountFunc
}

// NewGuard creates a Guard.
func NewGuard(accounts AccountRepository) *Guard {
	return &Guard{accounts: accounts, counters: make(map[Resource]CountFunc)}
}

// Register sets the usage counter for r. Call during wiring only.
func (g *Guard) Register(r Resource, fn CountFunc) {
	g.counters[r] = fn
}

// PlanOf returns the account's plan.
func (g *Guard) PlanOf(ctx context.Context, scope account.Scope) (Plan, error) {
	acc, err := g.accounts.Get(ctx, scope)
	if err != nil {
		return Plan{}, err
	}
	return Lookup(acc.SubscriptionType), nil
}

// ChangePlan moves the account to the plan named key. Existing records
// above the new plan's limits are kept; only new ones are refused.
func (g *Guard) ChangePlan(ctx context.Context, scope account.Scope, key string) (*Account, error) {
	if !Known(key) {
		return nil, apperror.NewValidation(fmt.Sprintf("unknown plan %q", key)).WithDetail("plan", key)
	}
	acc, err := g.accounts.Get(ctx, scope)
	if err != nil {
		return nil, err
	}
	if acc.SubscriptionType == key {
		return acc, nil
	}
	if err := g.accounts.SetPlan(ctx, scope, key); err != nil {
		return nil, fmt.Errorf("set plan: %w", err)
	}
	logger.Info(ctx, "plan changed", "account_id", acc.ID, "from", acc.SubscriptionType, "to", key)
	acc.SubscriptionType = key
	return acc, nil
}

// Check rejects when prospective (count including the new one) reaches the limit.
func (g *Guard) Check(ctx context.Context, scope account.Scope, r Resource, prospective int64) error {
	p, err := g.PlanOf(ctx, scope)
	if err != nil {
		return err
	}
	limit := p.Limit(r)
	if limit == Unlimited {
		return nil
	}
	if prospective >= limit {
		logger.Info(ctx, "plan limit reached", "resource", r, "plan", p.Key, "limit", limit, "prospective", prospective)
		return apperror.NewQuotaExceeded(string(r), p.Name, limit)
	}
	return nil
}

// CheckNext counts current usage and checks count + 1.
func (g *Guard) CheckNext(ctx context.Context, scope account.Scope, r Resource) error {
	fn, ok := g.counters[r]
	if !ok {
		return apperror.NewInternal(fmt.Errorf("no usage counter for %s", r))
	}
	n, err := fn(ctx, scope)
	if err != nil {
		return fmt.Errorf("count %s: %w", r, err)
	}
	return g.Check(ctx, scope, r, n+1)
}

// RequireFeature rejects with FORBIDDEN when the plan lacks f.
func (g *Guard) RequireFeature(ctx context.Context, scope account.Scope, f Feature) error {
	p, err := g.PlanOf(ctx, scope)
	if err != nil {
		return err
	}
	if !p.Features[f] {
		return apperror.NewForbidden(fmt.Sprintf("%s are not available in your %s plan", f, p.Name)).
			WithDetail("feature", f).WithDetail("plan", p.Key)
	}
	return nil
}

// UsageLine is one resource of a usage report.
type UsageLine struct {
	Resource Resource `json:"resource"`
	Limit    int64    `json:"limit"`
	Used     int64    `json:"used"`
}

// Usage is the plan usage report of an account.
type Usage struct {
	Plan     string           `json:"plan"`
	Lines    []UsageLine      `json:"usage"`
	Features map[Feature]bool `json:"features"`
}

// Usage reports the limits and current counts of every registered resource.
func (g *Guard) Usage(ctx context.Context, scope account.Scope) (*Usage, error) {
	p, err := g.PlanOf(ctx, scope)
	if err != nil {
		return nil, err
	}

	resources := make([]Resource, 0, len(g.counters))
	for r := range g.counters {
		resources = append(resources, r)
	}
	sort.Slice(resources, func(i, j int) bool { return resources[i] < resources[j] })

	u := &Usage{Plan: p.Key, Features: p.Features}
	for _, r := range resources {
		n, err := g.counters[r](ctx, scope)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", r, err)
		}
		u.Lines = append(u.Lines, UsageLine{Resource: r, Limit: p.Limit(r), Used: n})
	}
	return u, nil
}
