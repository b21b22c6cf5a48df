package item

import (
	"context"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain"
	"weavebooks/internal/domain/registers/stock"
)

// ListFilter for item lists. Sorted by name unless Newest.
type ListFilter struct {
	domain.ListFilter
	Category        string
	LowStockOnly    bool
	IncludeInactive bool
	Newest          bool
}

// Summary aggregates the active items of an account.
type Summary struct {
	ActiveCount   int64
	LowStockCount int64
	StockValue    types.Money
}

// Repository defines data access for items. It is also the stock ledger's item store.
type Repository interface {
	stock.ItemStore

	Create(ctx context.Context, scope account.Scope, i *Item) error
	Get(ctx context.Context, scope account.Scope, id string) (*Item, error)

	// Update writes every field except current_stock.
	Update(ctx context.Context, scope account.Scope, i *Item) error

	List(ctx context.Context, scope account.Scope, filter ListFilter) ([]*Item, int64, error)

	// CountActive counts items whose status is not inactive.
	CountActive(ctx context.Context, scope account.Scope) (int64, error)

	// Summary counts active and low-stock items and values stock at purchase price.
	Summary(ctx context.Context, scope account.Scope) (Summary, error)

	// ExistsByName reports whether an active item other than excludeID has this name (case-insensitive).
	ExistsByName(ctx context.Context, scope account.Scope, name, excludeID string) (bool, error)

	// SetStock overwrites current_stock (reconciliation repair only).
	SetStock(ctx context.Context, scope account.Scope, id string, value types.Quantity) error
}
