package customer

import (
	"context"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain"
	"weavebooks/internal/domain/sequence"
)

// ListFilter for customer lists. Inactive customers are excluded unless IncludeInactive.
type ListFilter struct {
	domain.ListFilter
	IncludeInactive bool
}

// Repository defines data access for customers.
type Repository interface {
	sequence.History

	Create(ctx context.Context, scope account.Scope, c *Customer) error
	Get(ctx context.Context, scope account.Scope, id string) (*Customer, error)

	// Update writes every field except current_balance, which only moves through AdjustBalance.
	Update(ctx context.Context, scope account.Scope, c *Customer) error

	List(ctx context.Context, scope account.Scope, filter ListFilter) ([]*Customer, int64, error)

	// AdjustBalance atomically adds delta to current_balance.
	AdjustBalance(ctx context.Context, scope account.Scope, id string, delta types.Money) error

	// SetBalance overwrites current_balance (reconciliation repair only).
	SetBalance(ctx context.Context, scope account.Scope, id string, value types.Money) error
}
