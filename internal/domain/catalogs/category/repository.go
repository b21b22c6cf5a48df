package category

import (
	"context"

	"weavebooks/internal/core/account"
	"weavebooks/internal/domain"
)

// ListFilter for category lists. Search matches name and description;
// an empty Status lists every category.
type ListFilter struct {
	domain.ListFilter
	Status string
}

// Repository defines data access for categories.
type Repository interface {
	Create(ctx context.Context, scope account.Scope, c *Category) error
	Get(ctx context.Context, scope account.Scope, id string) (*Category, error)
	Update(ctx context.Context, scope account.Scope, c *Category) error
	Delete(ctx context.Context, scope account.Scope, id string) error

	// List returns categories sorted by name.
	List(ctx context.Context, scope account.Scope, filter ListFilter) ([]*Category, int64, error)

	// ExistsByName reports whether a category other than excludeID has this name (case-insensitive).
	ExistsByName(ctx context.Context, scope account.Scope, name, excludeID string) (bool, error)
}

// ItemCounter counts the items filed under a category, active or not.
type ItemCounter func(ctx context.Context, scope account.Scope, categoryID string) (int64, error)
