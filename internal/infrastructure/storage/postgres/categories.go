package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"

	"weavebooks/internal/core/account"
	"weavebooks/internal/domain/catalogs/category"
)

// CategoryRepo implements category.Repository.
type CategoryRepo struct {
	t table[category.Category]
}

// NewCategoryRepo creates a category repository.
func NewCategoryRepo(txm *TxManager) *CategoryRepo {
	return &CategoryRepo{t: newTable[category.Category](txm, "categories", "category")}
}

func (r *CategoryRepo) Create(ctx context.Context, scope account.Scope, c *category.Category) error {
	return r.t.insert(ctx, scope, c)
}

func (r *CategoryRepo) Get(ctx context.Context, scope account.Scope, id string) (*category.Category, error) {
	return r.t.get(ctx, scope, id)
}

func (r *CategoryRepo) Update(ctx context.Context, scope account.Scope, c *category.Category) error {
	return r.t.update(ctx, scope, c.ID, c, "created_at")
}

func (r *CategoryRepo) Delete(ctx context.Context, scope account.Scope, id string) error {
	return r.t.deleteByID(ctx, scope, id)
}

func (r *CategoryRepo) List(ctx context.Context, scope account.Scope, f category.ListFilter) ([]*category.Category, int64, error) {
	var where conds
	where.eqIf("status", f.Status)
	where.add(search(f.Search, "name", "description"))
	return r.t.list(ctx, scope, where, []string{"lower(name)", "created_at"}, f.ListFilter)
}

func (r *CategoryRepo) ExistsByName(ctx context.Context, scope account.Scope, name, excludeID string) (bool, error) {
	where := []squirrel.Sqlizer{squirrel.Expr("lower(btrim(name)) = lower(btrim(?))", name)}
	if excludeID != "" {
		where = append(where, squirrel.NotEq{"id": excludeID})
	}
	n, err := r.t.count(ctx, scope, where...)
	return n > 0, err
}

var _ category.Repository = (*CategoryRepo)(nil)
