package stock

import (
	"context"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/types"
)

// ItemStore is the slice of the item table the ledger needs.
type ItemStore interface {
	// StockLevels returns levels for the given ids. Unknown ids are absent from the map.
	StockLevels(ctx context.Context, scope account.Scope, itemIDs []string) (map[string]Level, error)

	// AdjustStock atomically applies current_stock += delta only if the result stays >= 0.
	// ok is false when the guard failed; the returned level then holds the current stock.
	// On success the level holds the new stock.
	AdjustStock(ctx context.Context, scope account.Scope, itemID string, delta types.Quantity) (lvl Level, ok bool, err error)
}

// Repository stores stock transactions.
type Repository interface {
	Insert(ctx context.Context, scope account.Scope, t *Transaction) error

	// ListByItem returns the item's movements newest first.
	ListByItem(ctx context.Context, scope account.Scope, itemID string, limit int) ([]*Transaction, error)

	// CountByItem counts the item's movements.
	CountByItem(ctx context.Context, scope account.Scope, itemID string) (int64, error)

	// NetByItem returns Σ signed quantity per item over all movements.
	NetByItem(ctx context.Context, scope account.Scope) (map[string]types.Quantity, error)
}
