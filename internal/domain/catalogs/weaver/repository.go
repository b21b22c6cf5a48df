package weaver

import (
	"context"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain"
	"weavebooks/internal/domain/sequence"
)

// ListFilter for weaver lists. Sorted by name unless Newest.
type ListFilter struct {
	domain.ListFilter
	IncludeInactive bool
	Newest          bool
}

// Repository defines data access for weavers.
type Repository interface {
	sequence.History

	Create(ctx context.Context, scope account.Scope, w *Weaver) error
	Get(ctx context.Context, scope account.Scope, id string) (*Weaver, error)

	// Update writes every field except current_balance.
	Update(ctx context.Context, scope account.Scope, w *Weaver) error

	List(ctx context.Context, scope account.Scope, filter ListFilter) ([]*Weaver, int64, error)
	AdjustBalance(ctx context.Context, scope account.Scope, id string, delta types.Money) error
	SetBalance(ctx context.Context, scope account.Scope, id string, value types.Money) error

	// TotalActiveBalance sums current_balance over active weavers (payables).
	TotalActiveBalance(ctx context.Context, scope account.Scope) (types.Money, error)
}
