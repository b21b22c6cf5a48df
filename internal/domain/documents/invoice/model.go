// Package invoice implements the sales invoice lifecycle.
package invoice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/balance"
	"weavebooks/internal/domain/catalogs/customer"
	"weavebooks/internal/domain/registers/stock"
)

// Document status. Cancelled is terminal.
const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
)

// DefaultUnit is applied to lines without a unit.
const DefaultUnit = "PCS"

// Line is one invoice item. Amount, TaxAmount and Total are computed server side.
type Line struct {
	ItemID     string         `json:"item_id" bson:"item_id"`
	ItemName   string         `json:"item_name" bson:"item_name"`
	Quantity   types.Quantity `json:"qty" bson:"qty"`
	Unit       string         `json:"unit" bson:"unit"`
	Rate       types.Money    `json:"rate" bson:"rate"`
	TaxPercent types.Percent  `json:"tax_percent" bson:"tax_percent"`
	Amount     types.Money    `json:"amount" bson:"amount"`
	TaxAmount  types.Money    `json:"tax_amount" bson:"tax_amount"`
	Total      types.Money    `json:"total" bson:"total"`
	HSNCode    string         `json:"hsn_code,omitempty" bson:"hsn_code,omitempty"`
}

// Invoice is a sale to a customer. Customer fields are a snapshot taken when
// the invoice is created or its customer changes.
type Invoice struct {
	ID            string `json:"invoice_id" db:"id" bson:"_id"`
	AccountID     string `json:"account_id" db:"account_id" bson:"account_id"`
	InvoiceNumber string `json:"invoice_number" db:"invoice_number" bson:"invoice_number"`
	CustomerID    string `json:"customer_id" db:"customer_id" bson:"customer_id"`

	customer.Snapshot `bson:",inline"`

	InvoiceDate time.Time  `json:"invoice_date" db:"invoice_date" bson:"invoice_date"`
	DueDate     *time.Time `json:"due_date,omitempty" db:"due_date" bson:"due_date,omitempty"`
	Items       []Line     `json:"items" db:"items" bson:"items"`

	SubTotal        types.Money           `json:"sub_total" db:"sub_total" bson:"sub_total"`
	TotalTax        types.Money           `json:"total_tax" db:"total_tax" bson:"total_tax"`
	DiscountAmount  types.Money           `json:"discount_amount" db:"discount_amount" bson:"discount_amount"`
	ShippingCharges types.Money           `json:"shipping_charges" db:"shipping_charges" bson:"shipping_charges"`
	GrandTotal      types.Money           `json:"grand_total" db:"grand_total" bson:"grand_total"`
	AmountReceived  types.Money           `json:"amount_received" db:"amount_received" bson:"amount_received"`
	BalanceAmount   types.Money           `json:"balance_amount" db:"balance_amount" bson:"balance_amount"`
	PaymentStatus   balance.PaymentStatus `json:"payment_status" db:"payment_status" bson:"payment_status"`
	Status          string                `json:"status" db:"status" bson:"status"`

	QuotationID     string `json:"quotation_id,omitempty" db:"quotation_id" bson:"quotation_id,omitempty"`
	QuotationNumber string `json:"quotation_number,omitempty" db:"quotation_number" bson:"quotation_number,omitempty"`
	Notes           string `json:"notes,omitempty" db:"notes" bson:"notes,omitempty"`
	PaymentTerms    string `json:"payment_terms,omitempty" db:"payment_terms" bson:"payment_terms,omitempty"`

	// StockPending is set on duplicates: stock was validated but not deducted yet.
	StockPending bool `json:"stock_pending" db:"stock_pending" bson:"stock_pending"`

	CreatedAt time.Time `json:"created_at" db:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" bson:"updated_at"`
}

// IsCancelled reports whether the invoice was cancelled.
func (inv *Invoice) IsCancelled() bool { return inv.Status == StatusCancelled }

// Recalculate recomputes every line and the document totals, then balance and payment status.
// Amounts are rounded to 2 places per line.
func (inv *Invoice) Recalculate() {
	var sub, tax types.Money
	for i := range inv.Items {
		l := &inv.Items[i]
		if l.Unit == "" {
			l.Unit = DefaultUnit
		}
		l.Amount = l.Quantity.Times(l.Rate)
		l.TaxAmount = l.Amount.MulPercent(l.TaxPercent)
		l.Total = l.Amount + l.TaxAmount
		sub += l.Amount
		tax += l.TaxAmount
	}
	inv.SubTotal = sub
	inv.TotalTax = tax
	inv.GrandTotal = sub + tax - inv.DiscountAmount + inv.ShippingCharges
	inv.settle()
}

func (inv *Invoice) settle() {
	inv.BalanceAmount, inv.PaymentStatus = balance.ForInvoice(inv.GrandTotal, inv.AmountReceived)
}

// Requirements lists the stock the invoice lines consume.
func (inv *Invoice) Requirements() []stock.Requirement {
	return requirements(inv.Items)
}

func requirements(lines []Line) []stock.Requirement {
	reqs := make([]stock.Requirement, 0, len(lines))
	for _, l := range lines {
		reqs = append(reqs, stock.Requirement{ItemID: l.ItemID, ItemName: l.ItemName, Quantity: l.Quantity})
	}
	return reqs
}

// Ref returns the stock document reference of the invoice.
func (inv *Invoice) Ref() stock.DocumentRef {
	return stock.DocumentRef{Kind: stock.DocInvoice, ID: inv.ID, Number: inv.InvoiceNumber}
}

func validateLines(lines []Line) error {
	if len(lines) == 0 {
		return apperror.NewValidation("invoice must have at least one item").WithDetail("field", "items")
	}
	for i, l := range lines {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(l.ItemID) == "" {
			return apperror.NewValidation("item_id is required").WithDetail("field", field+".item_id")
		}
		if !l.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be greater than 0").WithDetail("field", field+".qty")
		}
		if l.Rate.IsNegative() {
			return apperror.NewValidation("rate cannot be negative").WithDetail("field", field+".rate")
		}
		if l.TaxPercent < 0 {
			return apperror.NewValidation("tax_percent cannot be negative").WithDetail("field", field+".tax_percent")
		}
	}
	return nil
}

func (inv *Invoice) validateTotals() error {
	if inv.DiscountAmount.IsNegative() || inv.ShippingCharges.IsNegative() {
		return apperror.NewValidation("discount and shipping cannot be negative")
	}
	if inv.GrandTotal.IsNegative() {
		return apperror.NewValidation("grand total cannot be negative").WithDetail("field", "discount_amount")
	}
	if inv.AmountReceived > inv.GrandTotal {
		return apperror.NewValidation("amount received cannot exceed grand total").
			WithDetail("field", "amount_received").
			WithDetail("grand_total", inv.GrandTotal).
			WithDetail("amount_received", inv.AmountReceived)
	}
	return nil
}

// Draft is the input of Create.
type Draft struct {
	CustomerID      string
	InvoiceDate     time.Time
	DueDate         *time.Time
	Items           []Line
	DiscountAmount  types.Money
	ShippingCharges types.Money
	Notes           string
	PaymentTerms    string
	QuotationID     string

	// PaymentStatus marks the invoice as settled at creation. Paid takes the
	// computed grand total, partial takes AmountReceived, anything else records nothing.
	PaymentStatus balance.PaymentStatus
	// AmountReceived is the partial amount; a mirrored payment is recorded for it.
	AmountReceived types.Money
	PaymentMode    string
}

// Received resolves the amount paid at creation against the computed grand total.
func (d *Draft) Received(grandTotal types.Money) types.Money {
	switch d.PaymentStatus {
	case balance.StatusPaid:
		return grandTotal
	case balance.StatusPartial:
		return d.AmountReceived
	default:
		return 0
	}
}

// Validate checks the draft before any side effect.
func (d *Draft) Validate(ctx context.Context) error {
	if strings.TrimSpace(d.CustomerID) == "" {
		return apperror.NewValidation("customer_id is required").WithDetail("field", "customer_id")
	}
	switch d.PaymentStatus {
	case "", balance.StatusUnpaid, balance.StatusPartial, balance.StatusPaid:
	default:
		return apperror.NewValidation("payment_status must be unpaid, partial or paid").WithDetail("field", "payment_status")
	}
	if d.AmountReceived.IsNegative() {
		return apperror.NewValidation("amount received cannot be negative").WithDetail("field", "amount_received")
	}
	return validateLines(d.Items)
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	CustomerID      *string
	InvoiceDate     *time.Time
	DueDate         *time.Time
	Items           *[]Line
	DiscountAmount  *types.Money
	ShippingCharges *types.Money
	AmountReceived  *types.Money
	PaymentMode     *string
	Notes           *string
	PaymentTerms    *string
}

func (p Patch) applyFields(inv *Invoice) {
	if p.InvoiceDate != nil {
		inv.InvoiceDate = *p.InvoiceDate
	}
	if p.DueDate != nil {
		d := *p.DueDate
		inv.DueDate = &d
	}
	if p.DiscountAmount != nil {
		inv.DiscountAmount = *p.DiscountAmount
	}
	if p.ShippingCharges != nil {
		inv.ShippingCharges = *p.ShippingCharges
	}
	if p.Notes != nil {
		inv.Notes = *p.Notes
	}
	if p.PaymentTerms != nil {
		inv.PaymentTerms = *p.PaymentTerms
	}
}

// PaymentInput is a payment added to an existing invoice.
type PaymentInput struct {
	Amount          types.Money
	PaymentDate     time.Time
	PaymentMode     string
	ReferenceNumber string
	Notes           string
}

// Stats is the invoice summary shown on the invoices page.
type Stats struct {
	TotalInvoices       int64                           `json:"total_invoices"`
	TodayInvoices       int64                           `json:"today_invoices"`
	TodayTotal          types.Money                     `json:"today_total"`
	MonthInvoices       int64                           `json:"month_invoices"`
	MonthTotal          types.Money                     `json:"month_total"`
	PendingAmount       types.Money                     `json:"pending_amount"`
	PaymentStatusCounts map[balance.PaymentStatus]int64 `json:"payment_status_counts"`
}
