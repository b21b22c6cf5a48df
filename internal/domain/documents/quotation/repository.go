package quotation

import (
	"context"

	"weavebooks/internal/core/account"
	"weavebooks/internal/domain"
	"weavebooks/internal/domain/sequence"
)

// ListFilter for quotation lists. Sorted by creation time, newest first.
type ListFilter struct {
	domain.ListFilter
	CustomerID string
	Status     string
}

// Repository defines data access for quotations.
type Repository interface {
	sequence.History

	Create(ctx context.Context, scope account.Scope, q *Quotation) error
	Get(ctx context.Context, scope account.Scope, id string) (*Quotation, error)
	Update(ctx context.Context, scope account.Scope, q *Quotation) error
	Delete(ctx context.Context, scope account.Scope, id string) error
	List(ctx context.Context, scope account.Scope, filter ListFilter) ([]*Quotation, int64, error)

	// CountByStatus counts quotations in any of the statuses.
	CountByStatus(ctx context.Context, scope account.Scope, statuses ...string) (int64, error)
}
