// Package reports builds the dashboard views over invoices, items, weavers and quotations.
package reports

import (
	"time"

	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/balance"
)

// StatsQuery selects the dashboard window.
type StatsQuery struct {
	// Days is the length of the revenue series, ending today. Defaults to 7.
	Days int
	// From and To restrict sales and receivables by invoice date when both are set.
	From *time.Time
	To   *time.Time
}

// DefaultDays is the default revenue series length.
const DefaultDays = 7

// MaxDays caps the revenue series length.
const MaxDays = 366

// Stats is the dashboard headline.
type Stats struct {
	TotalSales     types.Money   `json:"total_sales"`
	Receivables    types.Money   `json:"receivables"`
	Payables       types.Money   `json:"payables"`
	InventoryValue types.Money   `json:"inventory_value"`
	LowStockCount  int64         `json:"low_stock_count"`
	QuotePending   int64         `json:"quote_pending"`
	RecentRevenue  []types.Money `json:"recent_revenue"`
	DaysLabels     []string      `json:"days_labels"`
}

// Due state of a recent invoice.
const (
	DuePaid    = "paid"
	DueOverdue = "overdue"
	DueOpen    = "due"
)

// RecentInvoice is one row of the recent invoices widget.
type RecentInvoice struct {
	InvoiceID     string                `json:"invoice_id"`
	InvoiceNumber string                `json:"invoice_number"`
	CustomerName  string                `json:"customer_name"`
	GrandTotal    types.Money           `json:"grand_total"`
	BalanceAmount types.Money           `json:"balance_amount"`
	PaymentStatus balance.PaymentStatus `json:"payment_status"`
	Status        string                `json:"status"`
	StatusColor   string                `json:"status_color"`
	DueDate       *time.Time            `json:"due_date"`
	InvoiceDate   time.Time             `json:"invoice_date"`
}

// CalendarEvent is an invoice falling due on a calendar day.
type CalendarEvent struct {
	InvoiceID     string                `json:"invoice_id"`
	InvoiceNumber string                `json:"invoice_number"`
	CustomerName  string                `json:"customer_name"`
	Amount        types.Money           `json:"amount"`
	PaymentStatus balance.PaymentStatus `json:"payment_status"`
}

// Notification is a dashboard alert.
type Notification struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Time    string `json:"time"`
}

// Activity kinds.
const (
	ActivityInvoice = "invoice"
	ActivityItem    = "item"
	ActivityWeaver  = "weaver"
)

// Activity is one entry of the recent activity feed.
type Activity struct {
	Type  string    `json:"type"`
	Title string    `json:"title"`
	Desc  string    `json:"desc"`
	Time  time.Time `json:"time"`
	Icon  string    `json:"icon"`
	Color string    `json:"color"`
}
