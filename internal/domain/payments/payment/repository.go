package payment

import (
	"context"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain"
	"weavebooks/internal/domain/sequence"
)

// ListFilter for payment lists. Sorted by payment date, newest first.
type ListFilter struct {
	domain.ListFilter
	PaymentType Type
	PartyID     string
	InvoiceID   string
}

// Repository defines data access for payments.
type Repository interface {
	sequence.History

	Create(ctx context.Context, scope account.Scope, p *Payment) error
	Get(ctx context.Context, scope account.Scope, id string) (*Payment, error)
	Delete(ctx context.Context, scope account.Scope, id string) error
	List(ctx context.Context, scope account.Scope, filter ListFilter) ([]*Payment, int64, error)

	// CancelByInvoice marks every completed payment of the invoice cancelled and returns how many changed.
	CancelByInvoice(ctx context.Context, scope account.Scope, invoiceID string) (int64, error)

	// SumCompletedByParty returns Σ amount of completed payments of type t per party id.
	SumCompletedByParty(ctx context.Context, scope account.Scope, t Type) (map[string]types.Money, error)
}
