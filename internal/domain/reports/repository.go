package reports

import (
	"context"
	"time"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/catalogs/category"
	"weavebooks/internal/domain/catalogs/customer"
	"weavebooks/internal/domain/catalogs/item"
	"weavebooks/internal/domain/catalogs/weaver"
	"weavebooks/internal/domain/documents/invoice"
	"weavebooks/internal/domain/documents/purchase_bill"
)

// Invoices is the read side of the invoice store used by the dashboard.
type Invoices interface {
	List(ctx context.Context, scope account.Scope, filter invoice.ListFilter) ([]*invoice.Invoice, int64, error)
	Summarize(ctx context.Context, scope account.Scope, filter invoice.ListFilter) (invoice.Summary, error)
	DailyTotals(ctx context.Context, scope account.Scope, from, to time.Time) (map[string]types.Money, error)
	TopItems(ctx context.Context, scope account.Scope, limit int) ([]invoice.ItemSales, error)
}

// Items is the read side of the item store used by the dashboard.
type Items interface {
	List(ctx context.Context, scope account.Scope, filter item.ListFilter) ([]*item.Item, int64, error)
	Summary(ctx context.Context, scope account.Scope) (item.Summary, error)
}

// Weavers is the read side of the weaver store used by the dashboard.
type Weavers interface {
	List(ctx context.Context, scope account.Scope, filter weaver.ListFilter) ([]*weaver.Weaver, int64, error)
	TotalActiveBalance(ctx context.Context, scope account.Scope) (types.Money, error)
}

// Quotations counts quotations by status.
type Quotations interface {
	CountByStatus(ctx context.Context, scope account.Scope, statuses ...string) (int64, error)
}

// Customers lists customers for the global search.
type Customers interface {
	List(ctx context.Context, scope account.Scope, filter customer.ListFilter) ([]*customer.Customer, int64, error)
}

// Categories lists categories for the global search.
type Categories interface {
	List(ctx context.Context, scope account.Scope, filter category.ListFilter) ([]*category.Category, int64, error)
}

// Bills lists purchase bills for the global search.
type Bills interface {
	List(ctx context.Context, scope account.Scope, filter purchase_bill.ListFilter) ([]*purchase_bill.PurchaseBill, int64, error)
}
