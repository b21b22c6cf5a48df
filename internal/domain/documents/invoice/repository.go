package invoice

import (
	"context"
	"time"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain"
	"weavebooks/internal/domain/balance"
	"weavebooks/internal/domain/sequence"
)

// StatusAll lists invoices in every status. The empty status excludes cancelled ones.
const StatusAll = "all"

// ListFilter for invoice lists. Sorted by creation time, newest first.
type ListFilter struct {
	domain.ListFilter
	CustomerID    string
	Status        string
	PaymentStatus balance.PaymentStatus
	InvoiceDate   domain.DateRange
	DueDate       domain.DateRange
	CreatedAt     domain.DateRange

	// OverdueAsOf keeps invoices with an open balance whose due date is before it.
	OverdueAsOf *time.Time
}

// Summary aggregates the invoices of a filter.
type Summary struct {
	Count      int64       `json:"count"`
	GrandTotal types.Money `json:"grand_total"`
	Balance    types.Money `json:"balance"`
}

// ItemSales is the sales of one item over active invoices.
type ItemSales struct {
	ItemID   string         `json:"item_id" db:"item_id" bson:"_id"`
	ItemName string         `json:"item_name" db:"item_name" bson:"item_name"`
	Quantity types.Quantity `json:"total_quantity" db:"qty" bson:"qty"`
	Revenue  types.Money    `json:"total_revenue" db:"revenue" bson:"revenue"`
}

// Repository defines data access for invoices.
type Repository interface {
	sequence.History

	Create(ctx context.Context, scope account.Scope, inv *Invoice) error
	Get(ctx context.Context, scope account.Scope, id string) (*Invoice, error)
	GetByNumber(ctx context.Context, scope account.Scope, number string) (*Invoice, error)

	// Update overwrites the stored invoice.
	Update(ctx context.Context, scope account.Scope, inv *Invoice) error

	List(ctx context.Context, scope account.Scope, filter ListFilter) ([]*Invoice, int64, error)

	// CountActive counts invoices that are not cancelled.
	CountActive(ctx context.Context, scope account.Scope) (int64, error)

	Summarize(ctx context.Context, scope account.Scope, filter ListFilter) (Summary, error)

	// DailyTotals sums grand_total of active invoices per invoice day (YYYY-MM-DD, UTC) within [from, to).
	DailyTotals(ctx context.Context, scope account.Scope, from, to time.Time) (map[string]types.Money, error)

	// TopItems groups active invoice lines by item, highest revenue first.
	TopItems(ctx context.Context, scope account.Scope, limit int) ([]ItemSales, error)

	// SumActiveByCustomer returns Σ grand_total of active invoices per customer.
	SumActiveByCustomer(ctx context.Context, scope account.Scope) (map[string]types.Money, error)
}
