package purchase_bill

import (
	"context"
	"time"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain"
	"weavebooks/internal/domain/balance"
	"weavebooks/internal/domain/sequence"
)

// ListFilter for bill lists. Sorted by creation time, newest first.
type ListFilter struct {
	domain.ListFilter
	WeaverID      string
	PaymentStatus balance.PaymentStatus

	// DueBefore keeps bills with an open balance due before it, earliest due first.
	DueBefore *time.Time
}

// Repository defines data access for purchase bills.
type Repository interface {
	sequence.History

	Create(ctx context.Context, scope account.Scope, b *PurchaseBill) error
	Get(ctx context.Context, scope account.Scope, id string) (*PurchaseBill, error)
	Update(ctx context.Context, scope account.Scope, b *PurchaseBill) error
	Delete(ctx context.Context, scope account.Scope, id string) error
	List(ctx context.Context, scope account.Scope, filter ListFilter) ([]*PurchaseBill, int64, error)

	// SumByWeaver returns Σ total_amount of bills per weaver.
	SumByWeaver(ctx context.Context, scope account.Scope) (map[string]types.Money, error)
}
