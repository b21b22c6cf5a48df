package vendor_payment

import (
	"context"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain"
	"weavebooks/internal/domain/sequence"
)

// ListFilter for vendor payment lists. Sorted by payment date, newest first.
type ListFilter struct {
	domain.ListFilter
	WeaverID string
	BillID   string
}

// Repository defines data access for vendor payments.
type Repository interface {
	sequence.History

	Create(ctx context.Context, scope account.Scope, p *VendorPayment) error
	Get(ctx context.Context, scope account.Scope, id string) (*VendorPayment, error)
	Delete(ctx context.Context, scope account.Scope, id string) error
	List(ctx context.Context, scope account.Scope, filter ListFilter) ([]*VendorPayment, int64, error)

	// SumSettledByWeaver returns Σ amount per weaver, skipping payments whose bill was deleted.
	SumSettledByWeaver(ctx context.Context, scope account.Scope) (map[string]types.Money, error)
}
