// Package purchase_bill implements vendor bills: goods received into stock and the amount owed to the weaver.
package purchase_bill

import (
	"context"
	"strings"
	"time"

	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/balance"
	"weavebooks/internal/domain/documents/purchase_order"
	"weavebooks/internal/domain/registers/stock"
)

// Status is the approval state of a bill, independent of payment status.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusPaid      Status = "paid"
)

var progression = map[Status]int{
	StatusDraft:     0,
	StatusSubmitted: 1,
	StatusApproved:  2,
	StatusPaid:      3,
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	_, ok := progression[s]
	return ok
}

// CanTransition reports whether a bill may move from -> to. Status only moves
// forward; keeping the current status is always allowed.
func CanTransition(from, to Status) bool {
	if !to.IsValid() {
		return false
	}
	if from == to {
		return true
	}
	return progression[to] > progression[from]
}

// Line is a billed item.
type Line = purchase_order.Line

// PurchaseBill is a weaver's bill for goods received.
type PurchaseBill struct {
	ID               string    `json:"bill_id" db:"id" bson:"_id"`
	AccountID        string    `json:"account_id" db:"account_id" bson:"account_id"`
	BillNumber       string    `json:"bill_number" db:"bill_number" bson:"bill_number"`
	WeaverID         string    `json:"weaver_id" db:"weaver_id" bson:"weaver_id"`
	WeaverName       string    `json:"weaver_name" db:"weaver_name" bson:"weaver_name"`
	WeaverCode       string    `json:"weaver_code" db:"weaver_code" bson:"weaver_code"`
	POID             string    `json:"po_id,omitempty" db:"po_id" bson:"po_id,omitempty"`
	PONumber         string    `json:"po_number,omitempty" db:"po_number" bson:"po_number,omitempty"`
	BillDate         time.Time `json:"bill_date" db:"bill_date" bson:"bill_date"`
	DueDate          time.Time `json:"due_date" db:"due_date" bson:"due_date"`
	VendorBillNumber string    `json:"vendor_bill_number,omitempty" db:"vendor_bill_number" bson:"vendor_bill_number,omitempty"`
	Items            []Line    `json:"items" db:"items" bson:"items"`

	Subtotal       types.Money           `json:"subtotal" db:"subtotal" bson:"subtotal"`
	TaxAmount      types.Money           `json:"tax_amount" db:"tax_amount" bson:"tax_amount"`
	DiscountAmount types.Money           `json:"discount_amount" db:"discount_amount" bson:"discount_amount"`
	TotalAmount    types.Money           `json:"total_amount" db:"total_amount" bson:"total_amount"`
	PaidAmount     types.Money           `json:"paid_amount" db:"paid_amount" bson:"paid_amount"`
	BalanceAmount  types.Money           `json:"balance_amount" db:"balance_amount" bson:"balance_amount"`
	PaymentStatus  balance.PaymentStatus `json:"payment_status" db:"payment_status" bson:"payment_status"`
	Status         Status                `json:"status" db:"status" bson:"status"`

	Notes       string   `json:"notes,omitempty" db:"notes" bson:"notes,omitempty"`
	Attachments []string `json:"attachments" db:"attachments" bson:"attachments"`

	CreatedAt time.Time `json:"created_at" db:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" bson:"updated_at"`
}

// Recalculate recomputes lines, totals, balance and payment status.
func (b *PurchaseBill) Recalculate() {
	b.Subtotal, b.TaxAmount = purchase_order.Compute(b.Items)
	b.TotalAmount = b.Subtotal + b.TaxAmount - b.DiscountAmount
	b.settle()
}

func (b *PurchaseBill) settle() {
	b.BalanceAmount, b.PaymentStatus = balance.ForBill(b.TotalAmount, b.PaidAmount)
}

// IsOverdue reports whether an open balance is past due at now.
func (b *PurchaseBill) IsOverdue(now time.Time) bool {
	return b.BalanceAmount > 0 && b.DueDate.Before(now)
}

// Requirements lists the stock the bill brought in.
func (b *PurchaseBill) Requirements() []stock.Requirement {
	return purchase_order.Requirements(b.Items)
}

// Ref returns the stock document reference of the bill.
func (b *PurchaseBill) Ref() stock.DocumentRef {
	return stock.DocumentRef{Kind: stock.DocPurchaseBill, ID: b.ID, Number: b.BillNumber}
}

func (b *PurchaseBill) validateTotals() error {
	if b.DiscountAmount.IsNegative() {
		return apperror.NewValidation("discount cannot be negative").WithDetail("field", "discount_amount")
	}
	if b.TotalAmount.IsNegative() {
		return apperror.NewValidation("total amount cannot be negative").WithDetail("field", "discount_amount")
	}
	if b.TotalAmount < b.PaidAmount {
		return apperror.NewValidation("total amount cannot be less than the amount already paid").
			WithDetail("total_amount", b.TotalAmount).
			WithDetail("paid_amount", b.PaidAmount)
	}
	return nil
}

// Draft is the input of Create.
type Draft struct {
	WeaverID         string
	POID             string
	BillDate         time.Time
	DueDate          time.Time
	VendorBillNumber string
	Items            []Line
	DiscountAmount   types.Money
	Status           Status
	Notes            string
	Attachments      []string
}

// Validate checks the draft.
func (d *Draft) Validate(ctx context.Context) error {
	if strings.TrimSpace(d.WeaverID) == "" {
		return apperror.NewValidation("weaver_id is required").WithDetail("field", "weaver_id")
	}
	if d.Status != "" && !d.Status.IsValid() {
		return apperror.NewValidation("invalid status").WithDetail("field", "status")
	}
	return purchase_order.ValidateLines(d.Items)
}

// Patch is a partial update.
type Patch struct {
	WeaverID         *string
	BillDate         *time.Time
	DueDate          *time.Time
	VendorBillNumber *string
	Items            *[]Line
	DiscountAmount   *types.Money
	Status           *Status
	Notes            *string
	Attachments      *[]string
}

func (p Patch) validate() error {
	if p.Items != nil {
		if err := purchase_order.ValidateLines(*p.Items); err != nil {
			return err
		}
	}
	if p.Status != nil && !p.Status.IsValid() {
		return apperror.NewValidation("invalid status").WithDetail("field", "status")
	}
	return nil
}

func (p Patch) apply(b *PurchaseBill) {
	if p.BillDate != nil {
		b.BillDate = *p.BillDate
	}
	if p.DueDate != nil {
		b.DueDate = *p.DueDate
	}
	if p.VendorBillNumber != nil {
		b.VendorBillNumber = *p.VendorBillNumber
	}
	if p.DiscountAmount != nil {
		b.DiscountAmount = *p.DiscountAmount
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.Notes != nil {
		b.Notes = *p.Notes
	}
	if p.Attachments != nil {
		b.Attachments = append([]string(nil), (*p.Attachments)...)
	}
}
