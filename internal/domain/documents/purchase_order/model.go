// Package purchase_order implements orders placed with weavers and their receipt into stock.
package purchase_order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/registers/stock"
)

// Status is the lifecycle state of a purchase order.
type Status string

const (
	StatusDraft             Status = "draft"
	StatusSent              Status = "sent"
	StatusConfirmed         Status = "confirmed"
	StatusPartiallyReceived Status = "partially_received"
	StatusReceived          Status = "received"
	StatusCancelled         Status = "cancelled"
)

// progression is the forward order of non-cancelled states.
var progression = map[Status]int{
	StatusDraft:             0,
	StatusSent:              1,
	StatusConfirmed:         2,
	StatusPartiallyReceived: 3,
	StatusReceived:          4,
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	_, ok := progression[s]
	return ok || s == StatusCancelled
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusReceived || s == StatusCancelled
}

// CanTransition reports whether from -> to is allowed: forward along the
// progression, or to cancelled from any state that is not terminal.
func CanTransition(from, to Status) bool {
	if from.IsTerminal() || !to.IsValid() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	return progression[to] > progression[from]
}

// Line is one ordered or billed item. Amount excludes tax.
type Line struct {
	ItemID      string         `json:"item_id" bson:"item_id"`
	ItemName    string         `json:"item_name" bson:"item_name"`
	ItemCode    string         `json:"item_code,omitempty" bson:"item_code,omitempty"`
	Description string         `json:"description,omitempty" bson:"description,omitempty"`
	Quantity    types.Quantity `json:"qty" bson:"qty"`
	Unit        string         `json:"unit" bson:"unit"`
	Rate        types.Money    `json:"rate" bson:"rate"`
	TaxRate     types.Percent  `json:"tax_rate" bson:"tax_rate"`
	TaxAmount   types.Money    `json:"tax_amount" bson:"tax_amount"`
	Amount      types.Money    `json:"amount" bson:"amount"`
}

// Compute fills line amounts and returns the subtotal and tax of lines.
func Compute(lines []Line) (subtotal, tax types.Money) {
	for i := range lines {
		l := &lines[i]
		if l.Unit == "" {
			l.Unit = "PCS"
		}
		l.Amount = l.Quantity.Times(l.Rate)
		l.TaxAmount = l.Amount.MulPercent(l.TaxRate)
		subtotal += l.Amount
		tax += l.TaxAmount
	}
	return subtotal, tax
}

// TotalQuantity sums the line quantities.
func TotalQuantity(lines []Line) types.Quantity {
	var q types.Quantity
	for _, l := range lines {
		q += l.Quantity
	}
	return q
}

// Requirements converts lines into stock requirements.
func Requirements(lines []Line) []stock.Requirement {
	reqs := make([]stock.Requirement, 0, len(lines))
	for _, l := range lines {
		reqs = append(reqs, stock.Requirement{ItemID: l.ItemID, ItemName: l.ItemName, Quantity: l.Quantity})
	}
	return reqs
}

// ValidateLines checks purchase lines.
func ValidateLines(lines []Line) error {
	if len(lines) == 0 {
		return apperror.NewValidation("at least one item is required").WithDetail("field", "items")
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
	}
	return nil
}

// PurchaseOrder is an order placed with a weaver.
type PurchaseOrder struct {
	ID                   string     `json:"po_id" db:"id" bson:"_id"`
	AccountID            string     `json:"account_id" db:"account_id" bson:"account_id"`
	PONumber             string     `json:"po_number" db:"po_number" bson:"po_number"`
	WeaverID             string     `json:"weaver_id" db:"weaver_id" bson:"weaver_id"`
	WeaverName           string     `json:"weaver_name" db:"weaver_name" bson:"weaver_name"`
	WeaverCode           string     `json:"weaver_code" db:"weaver_code" bson:"weaver_code"`
	PODate               time.Time  `json:"po_date" db:"po_date" bson:"po_date"`
	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date,omitempty" db:"expected_delivery_date" bson:"expected_delivery_date,omitempty"`
	Items                []Line     `json:"items" db:"items" bson:"items"`

	Subtotal    types.Money `json:"subtotal" db:"subtotal" bson:"subtotal"`
	TaxAmount   types.Money `json:"tax_amount" db:"tax_amount" bson:"tax_amount"`
	TotalAmount types.Money `json:"total_amount" db:"total_amount" bson:"total_amount"`

	Status             Status `json:"status" db:"status" bson:"status"`
	ShippingAddress    string `json:"shipping_address,omitempty" db:"shipping_address" bson:"shipping_address,omitempty"`
	BillingAddress     string `json:"billing_address,omitempty" db:"billing_address" bson:"billing_address,omitempty"`
	Notes              string `json:"notes,omitempty" db:"notes" bson:"notes,omitempty"`
	TermsAndConditions string `json:"terms_and_conditions,omitempty" db:"terms_and_conditions" bson:"terms_and_conditions,omitempty"`

	// Receipt is tracked in aggregate over all lines.
	ReceivedQty types.Quantity `json:"received_qty" db:"received_qty" bson:"received_qty"`
	PendingQty  types.Quantity `json:"pending_qty" db:"pending_qty" bson:"pending_qty"`

	CreatedAt time.Time `json:"created_at" db:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" bson:"updated_at"`
}

// Recalculate recomputes line amounts and totals.
func (po *PurchaseOrder) Recalculate() {
	po.Subtotal, po.TaxAmount = Compute(po.Items)
	po.TotalAmount = po.Subtotal + po.TaxAmount
}

// Ref returns the stock document reference of the order.
func (po *PurchaseOrder) Ref() stock.DocumentRef {
	return stock.DocumentRef{Kind: stock.DocPurchaseOrder, ID: po.ID, Number: po.PONumber}
}

// Draft is the input of Create.
type Draft struct {
	WeaverID             string
	PODate               time.Time
	ExpectedDeliveryDate *time.Time
	Items                []Line
	ShippingAddress      string
	BillingAddress       string
	Notes                string
	TermsAndConditions   string
}

// Validate checks the draft.
func (d *Draft) Validate(ctx context.Context) error {
	if strings.TrimSpace(d.WeaverID) == "" {
		return apperror.NewValidation("weaver_id is required").WithDetail("field", "weaver_id")
	}
	return ValidateLines(d.Items)
}

// Patch is a partial update of an open order.
type Patch struct {
	WeaverID             *string
	PODate               *time.Time
	ExpectedDeliveryDate *time.Time
	Items                *[]Line
	ShippingAddress      *string
	BillingAddress       *string
	Notes                *string
	TermsAndConditions   *string
}

func (p Patch) apply(po *PurchaseOrder) {
	if p.PODate != nil {
		po.PODate = *p.PODate
	}
	if p.ExpectedDeliveryDate != nil {
		d := *p.ExpectedDeliveryDate
		po.ExpectedDeliveryDate = &d
	}
	if p.ShippingAddress != nil {
		po.ShippingAddress = *p.ShippingAddress
	}
	if p.BillingAddress != nil {
		po.BillingAddress = *p.BillingAddress
	}
	if p.Notes != nil {
		po.Notes = *p.Notes
	}
	if p.TermsAndConditions != nil {
		po.TermsAndConditions = *p.TermsAndConditions
	}
}
