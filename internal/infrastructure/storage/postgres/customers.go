package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/catalogs/customer"
	"weavebooks/internal/domain/catalogs/weaver"
)

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	t table[customer.Customer]
}

// NewCustomerRepo creates a customer repository.
func NewCustomerRepo(txm *TxManager) *CustomerRepo {
	return &CustomerRepo{t: newTable[customer.Customer](txm, "customers", "customer")}
}

func (r *CustomerRepo) Create(ctx context.Context, scope account.Scope, c *customer.Customer) error {
	return r.t.insert(ctx, scope, c)
}

func (r *CustomerRepo) Get(ctx context.Context, scope account.Scope, id string) (*customer.Customer, error) {
	return r.t.get(ctx, scope, id)
}

func (r *CustomerRepo) Update(ctx context.Context, scope account.Scope, c *customer.Customer) error {
	return r.t.update(ctx, scope, c.ID, c, "current_balance", "created_at")
}

func (r *CustomerRepo) List(ctx context.Context, scope account.Scope, f customer.ListFilter) ([]*customer.Customer, int64, error) {
	var where conds
	if !f.IncludeInactive {
		where.add(squirrel.NotEq{"status": customer.StatusInactive})
	}
	where.add(search(f.Search, "name", "code", "mobile_number", "contact_number"))
	return r.t.list(ctx, scope, where, []string{"lower(name)", "created_at"}, f.ListFilter)
}

func (r *CustomerRepo) AdjustBalance(ctx context.Context, scope account.Scope, id string, delta types.Money) error {
	return r.t.set(ctx, scope, id, map[string]any{
		"current_balance": squirrel.Expr("current_balance + ?", delta),
	})
}

func (r *CustomerRepo) SetBalance(ctx context.Context, scope account.Scope, id string, value types.Money) error {
	return r.t.set(ctx, scope, id, map[string]any{"current_balance": value})
}

func (r *CustomerRepo) LatestNumber(ctx context.Context, scope account.Scope) (string, error) {
	return r.t.latestNumber(ctx, scope, "code")
}

func (r *CustomerRepo) CountAll(ctx context.Context, scope account.Scope) (int64, error) {
	return r.t.count(ctx, scope)
}

// WeaverRepo implements weaver.Repository.
type WeaverRepo struct {
	t table[weaver.Weaver]
}

// NewWeaverRepo creates a weaver repository.
func NewWeaverRepo(txm *TxManager) *WeaverRepo {
	return &WeaverRepo{t: newTable[weaver.Weaver](txm, "weavers", "weaver")}
}

func (r *WeaverRepo) Create(ctx context.Context, scope account.Scope, w *weaver.Weaver) error {
	return r.t.insert(ctx, scope, w)
}

func (r *WeaverRepo) Get(ctx context.Context, scope account.Scope, id string) (*weaver.Weaver, error) {
	return r.t.get(ctx, scope, id)
}

func (r *WeaverRepo) Update(ctx context.Context, scope account.Scope, w *weaver.Weaver) error {
	return r.t.update(ctx, scope, w.ID, w, "current_balance", "created_at")
}

func (r *WeaverRepo) List(ctx context.Context, scope account.Scope, f weaver.ListFilter) ([]*weaver.Weaver, int64, error) {
	var where conds
	if !f.IncludeInactive {
		where.add(squirrel.NotEq{"status": weaver.StatusInactive})
	}
	where.add(search(f.Search, "name", "code", "contact_number"))

	order := []string{"lower(name)", "created_at"}
	if f.Newest {
		order = []string{"created_at DESC"}
	}
	return r.t.list(ctx, scope, where, order, f.ListFilter)
}

func (r *WeaverRepo) AdjustBalance(ctx context.Context, scope account.Scope, id string, delta types.Money) error {
	return r.t.set(ctx, scope, id, map[string]any{
		"current_balance": squirrel.Expr("current_balance + ?", delta),
	})
}

func (r *WeaverRepo) SetBalance(ctx context.Context, scope account.Scope, id string, value types.Money) error {
	return r.t.set(ctx, scope, id, map[string]any{"current_balance": value})
}

func (r *WeaverRepo) TotalActiveBalance(ctx context.Context, scope account.Scope) (types.Money, error) {
	sql, args, err := Builder().Select("COALESCE(SUM(current_balance), 0)::bigint").
		From(r.t.name).
		Where(r.t.scoped(scope)).
		Where(squirrel.NotEq{"status": weaver.StatusInactive}).
		ToSql()
	if err != nil {
		return 0, err
	}
	var total int64
	if err := r.t.querier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, r.t.translate(err, "sum weaver balances")
	}
	return types.Money(total), nil
}

func (r *WeaverRepo) LatestNumber(ctx context.Context, scope account.Scope) (string, error) {
	return r.t.latestNumber(ctx, scope, "code")
}

func (r *WeaverRepo) CountAll(ctx context.Context, scope account.Scope) (int64, error) {
	return r.t.count(ctx, scope)
}

var (
	_ customer.Repository = (*CustomerRepo)(nil)
	_ weaver.Repository   = (*WeaverRepo)(nil)
)
