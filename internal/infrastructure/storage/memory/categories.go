package memory

import (
	"context"
	"sort"
	"strings"

	"weavebooks/internal/core/account"
	"weavebooks/internal/domain/catalogs/category"
)

type categoryRow struct{ *category.Category }

func (r categoryRow) key() string { return r.ID }
func (r categoryRow) clone() categoryRow {
	cp := *r.Category
	return categoryRow{&cp}
}

// CategoryRepo implements category.Repository.
type CategoryRepo struct{ s *Store }

// Categories returns the category repository.
func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{s: s} }

func (r *CategoryRepo) Create(ctx context.Context, scope account.Scope, c *category.Category) error {
	return insert(ctx, r.s, r.s.categories, scope, categoryRow{c})
}

func (r *CategoryRepo) Get(ctx context.Context, scope account.Scope, id string) (*category.Category, error) {
	row, err := find(r.s, r.s.categories, scope, id)
	if err != nil {
		return nil, err
	}
	return row.Category, nil
}

func (r *CategoryRepo) Update(ctx context.Context, scope account.Scope, c *category.Category) error {
	return replace(ctx, r.s, r.s.categories, scope, categoryRow{c}, nil)
}

func (r *CategoryRepo) Delete(ctx context.Context, scope account.Scope, id string) error {
	return remove(ctx, r.s, r.s.categories, scope, id)
}

func (r *CategoryRepo) List(ctx context.Context, scope account.Scope, f category.ListFilter) ([]*category.Category, int64, error) {
	rows := selectRows(r.s, r.s.categories, scope, func(c categoryRow) bool {
		if f.Status != "" && c.Status != f.Status {
			return false
		}
		return matches(f.Search, c.Name, c.Description)
	})
	sort.SliceStable(rows, func(i, j int) bool { return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name) })
	rows, total := page(rows, f.ListFilter)
	out := make([]*category.Category, len(rows))
	for i, c := range rows {
		out[i] = c.Category
	}
	return out, total, nil
}

func (r *CategoryRepo) ExistsByName(ctx context.Context, scope account.Scope, name, excludeID string) (bool, error) {
	name = strings.TrimSpace(name)
	rows := selectRows(r.s, r.s.categories, scope, func(c categoryRow) bool {
		return c.ID != excludeID && strings.EqualFold(strings.TrimSpace(c.Name), name)
	})
	return len(rows) > 0, nil
}

var _ category.Repository = (*CategoryRepo)(nil)
