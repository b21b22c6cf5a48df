package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/numerator"
	"weavebooks/internal/domain/plan"
	pkgnum "weavebooks/pkg/numerator"
)

// AccountRepo implements plan.AccountRepository.
type AccountRepo struct {
	txm *TxManager
}

// NewAccountRepo creates an account repository.
func NewAccountRepo(txm *TxManager) *AccountRepo {
	return &AccountRepo{txm: txm}
}

func (r *AccountRepo) Create(ctx context.Context, a *plan.Account) error {
	sql, args, err := Builder().Insert("accounts").SetMap(StructToMap(a)).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return table[plan.Account]{entity: "account"}.translate(err, "insert account")
	}
	return nil
}

func (r *AccountRepo) Get(ctx context.Context, scope account.Scope) (*plan.Account, error) {
	sql, args, err := Builder().Select(ExtractDBColumns[plan.Account]()...).
		From("accounts").
		Where(squirrel.Eq{"id": scope.ID()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var a plan.Account
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &a, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("account", scope.ID())
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}

func (r *AccountRepo) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &ids, "SELECT id FROM accounts ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return ids, nil
}

func (r *AccountRepo) SetPlan(ctx context.Context, scope account.Scope, key string) error {
	sql, args, err := Builder().Update("accounts").
		Set("subscription_type", key).
		Where(squirrel.Eq{"id": scope.ID()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("account", scope.ID())
	}
	return nil
}

// Counter implements numerator.Counter on sys_counters.
//
// Next is atomic under concurrent callers. It runs on the pool, outside the
// caller's transaction, so a rolled-back document burns its number: numbers
// stay unique but may have gaps.
type Counter struct {
	svc *pkgnum.Service
}

// NewCounter creates a counter bound to the pool. Nil opts selects the strict strategy.
func NewCounter(pool *Pool, opts *pkgnum.Options) *Counter {
	return &Counter{svc: pkgnum.New(pool.Pool, opts)}
}

func (c *Counter) Next(ctx context.Context, scope account.Scope, key string) (int64, error) {
	v, err := c.svc.Next(ctx, scope.ID(), key)
	if errors.Is(err, pkgnum.ErrNoCounter) {
		return 0, numerator.ErrNotInitialized
	}
	return v, err
}

func (c *Counter) Init(ctx context.Context, scope account.Scope, key string, value int64) error {
	return c.svc.Init(ctx, scope.ID(), key, value)
}

var (
	_ plan.AccountRepository = (*AccountRepo)(nil)
	_ numerator.Counter      = (*Counter)(nil)
)
