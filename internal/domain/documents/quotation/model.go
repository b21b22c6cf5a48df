// Package quotation implements price quotes that can be converted into invoices.
package quotation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/catalogs/customer"
)

// Status values. Active is used for duplicates and quotations reopened after their invoice was cancelled.
const (
	StatusDraft     = "draft"
	StatusSent      = "sent"
	StatusAccepted  = "accepted"
	StatusDeclined  = "declined"
	StatusConverted = "converted"
	StatusActive    = "active"
)

// PendingStatuses are quotations still awaiting a customer decision.
var PendingStatuses = []string{StatusDraft, StatusSent}

// IsValidStatus reports whether s is a known status.
func IsValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusSent, StatusAccepted, StatusDeclined, StatusConverted, StatusActive:
		return true
	}
	return false
}

// Line is one quoted item.
type Line struct {
	ItemID          string         `json:"item_id" bson:"item_id"`
	ItemName        string         `json:"item_name" bson:"item_name"`
	Quantity        types.Quantity `json:"qty" bson:"qty"`
	Unit            string         `json:"unit" bson:"unit"`
	Rate            types.Money    `json:"rate" bson:"rate"`
	DiscountPercent types.Percent  `json:"discount_percent" bson:"discount_percent"`
	TaxPercent      types.Percent  `json:"tax_percent" bson:"tax_percent"`
	Amount          types.Money    `json:"amount" bson:"amount"`
	DiscountAmount  types.Money    `json:"discount_amount" bson:"discount_amount"`
	TaxAmount       types.Money    `json:"tax_amount" bson:"tax_amount"`
	Total           types.Money    `json:"total" bson:"total"`
	HSNCode         string         `json:"hsn_code,omitempty" bson:"hsn_code,omitempty"`
}

// Quotation is a priced offer to a customer.
type Quotation struct {
	ID              string `json:"quotation_id" db:"id" bson:"_id"`
	AccountID       string `json:"account_id" db:"account_id" bson:"account_id"`
	QuotationNumber string `json:"quotation_number" db:"quotation_number" bson:"quotation_number"`
	CustomerID      string `json:"customer_id" db:"customer_id" bson:"customer_id"`

	customer.Snapshot `bson:",inline"`

	QuoteDate  time.Time  `json:"quote_date" db:"quote_date" bson:"quote_date"`
	ValidUntil *time.Time `json:"valid_until,omitempty" db:"valid_until" bson:"valid_until,omitempty"`
	Items      []Line     `json:"items" db:"items" bson:"items"`

	SubTotal      types.Money `json:"sub_total" db:"sub_total" bson:"sub_total"`
	TotalDiscount types.Money `json:"total_discount" db:"total_discount" bson:"total_discount"`
	TotalTax      types.Money `json:"total_tax" db:"total_tax" bson:"total_tax"`
	GrandTotal    types.Money `json:"grand_total" db:"grand_total" bson:"grand_total"`

	Notes           string `json:"notes,omitempty" db:"notes" bson:"notes,omitempty"`
	TermsConditions string `json:"terms_conditions,omitempty" db:"terms_conditions" bson:"terms_conditions,omitempty"`
	Status          string `json:"status" db:"status" bson:"status"`

	InvoiceID     string `json:"invoice_id,omitempty" db:"invoice_id" bson:"invoice_id,omitempty"`
	InvoiceNumber string `json:"invoice_number,omitempty" db:"invoice_number" bson:"invoice_number,omitempty"`

	CreatedAt time.Time `json:"created_at" db:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" bson:"updated_at"`
}

// Recalculate computes line amounts and totals.
// Discount applies before tax: tax = (amount - discount) * tax%.
func (q *Quotation) Recalculate() {
	var sub, disc, tax types.Money
	for i := range q.Items {
		l := &q.Items[i]
		if l.Unit == "" {
			l.Unit = "PCS"
		}
		l.Amount = l.Quantity.Times(l.Rate)
		l.DiscountAmount = l.Amount.MulPercent(l.DiscountPercent)
		l.TaxAmount = (l.Amount - l.DiscountAmount).MulPercent(l.TaxPercent)
		l.Total = l.Amount - l.DiscountAmount + l.TaxAmount
		sub += l.Amount
		disc += l.DiscountAmount
		tax += l.TaxAmount
	}
	q.SubTotal = sub
	q.TotalDiscount = disc
	q.TotalTax = tax
	q.GrandTotal = sub - disc + tax
}

func validateLines(lines []Line) error {
	if len(lines) == 0 {
		return apperror.NewValidation("quotation must have at least one item").WithDetail("field", "items")
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
		if l.DiscountPercent < 0 || l.DiscountPercent > types.NewPercent(100) {
			return apperror.NewValidation("discount_percent must be between 0 and 100").
				WithDetail("field", field+".discount_percent")
		}
	}
	return nil
}

// Draft is the input of Create.
type Draft struct {
	CustomerID      string
	QuoteDate       time.Time
	ValidUntil      *time.Time
	Items           []Line
	Notes           string
	TermsConditions string
	Status          string
}

// Validate checks the draft.
func (d *Draft) Validate(ctx context.Context) error {
	if strings.TrimSpace(d.CustomerID) == "" {
		return apperror.NewValidation("customer_id is required").WithDetail("field", "customer_id")
	}
	if d.Status != "" && !IsValidStatus(d.Status) {
		return apperror.NewValidation("invalid status").WithDetail("field", "status")
	}
	return validateLines(d.Items)
}

// Patch is a partial update.
type Patch struct {
	CustomerID      *string
	QuoteDate       *time.Time
	ValidUntil      *time.Time
	Items           *[]Line
	Notes           *string
	TermsConditions *string
	Status          *string
}

func (p Patch) validate() error {
	if p.Items != nil {
		if err := validateLines(*p.Items); err != nil {
			return err
		}
	}
	if p.Status != nil {
		if !IsValidStatus(*p.Status) {
			return apperror.NewValidation("invalid status").WithDetail("field", "status")
		}
		if *p.Status == StatusConverted {
			return apperror.NewValidation("quotations are converted by creating an invoice").WithDetail("field", "status")
		}
	}
	return nil
}

func (p Patch) apply(q *Quotation) {
	if p.QuoteDate != nil {
		q.QuoteDate = *p.QuoteDate
	}
	if p.ValidUntil != nil {
		v := *p.ValidUntil
		q.ValidUntil = &v
	}
	if p.Items != nil {
		q.Items = append([]Line(nil), (*p.Items)...)
	}
	if p.Notes != nil {
		q.Notes = *p.Notes
	}
	if p.TermsConditions != nil {
		q.TermsConditions = *p.TermsConditions
	}
	if p.Status != nil {
		q.Status = *p.Status
	}
}
