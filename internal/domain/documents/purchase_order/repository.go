package purchase_order

import (
	"context"

	"weavebooks/internal/core/account"
	"weavebooks/internal/domain"
	"weavebooks/internal/domain/sequence"
)

// ListFilter for purchase order lists. Sorted by creation time, newest first.
type ListFilter struct {
	domain.ListFilter
	WeaverID string
	Status   Status
}

// Repository defines data access for purchase orders.
type Repository interface {
	sequence.History

	Create(ctx context.Context, scope account.Scope, po *PurchaseOrder) error
	Get(ctx context.Context, scope account.Scope, id string) (*PurchaseOrder, error)
	Update(ctx context.Context, scope account.Scope, po *PurchaseOrder) error
	List(ctx context.Context, scope account.Scope, filter ListFilter) ([]*PurchaseOrder, int64, error)
}
