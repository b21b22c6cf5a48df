// Package vendor_payment records payments made to weavers, optionally against a purchase bill.
package vendor_payment

import (
	"context"
	"strings"
	"time"

	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/types"
)

// DefaultMode is used when a payment does not name one.
const DefaultMode = "bank_transfer"

// VendorPayment is money paid to a weaver.
type VendorPayment struct {
	ID              string      `json:"payment_id" db:"id" bson:"_id"`
	AccountID       string      `json:"account_id" db:"account_id" bson:"account_id"`
	PaymentNumber   string      `json:"payment_number" db:"payment_number" bson:"payment_number"`
	WeaverID        string      `json:"weaver_id" db:"weaver_id" bson:"weaver_id"`
	WeaverName      string      `json:"weaver_name" db:"weaver_name" bson:"weaver_name"`
	BillID          string      `json:"bill_id,omitempty" db:"bill_id" bson:"bill_id,omitempty"`
	BillNumber      string      `json:"bill_number,omitempty" db:"bill_number" bson:"bill_number,omitempty"`
	PaymentDate     time.Time   `json:"payment_date" db:"payment_date" bson:"payment_date"`
	Amount          types.Money `json:"amount" db:"amount" bson:"amount"`
	PaymentMode     string      `json:"payment_mode" db:"payment_mode" bson:"payment_mode"`
	ReferenceNumber string      `json:"reference_number,omitempty" db:"reference_number" bson:"reference_number,omitempty"`
	Notes           string      `json:"notes,omitempty" db:"notes" bson:"notes,omitempty"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at" bson:"created_at"`
}

// Validate checks required fields.
func (p *VendorPayment) Validate(ctx context.Context) error {
	if strings.TrimSpace(p.WeaverID) == "" && p.BillID == "" {
		return apperror.NewValidation("weaver_id is required").WithDetail("field", "weaver_id")
	}
	if !p.Amount.IsPositive() {
		return apperror.NewValidation("Payment amount must be greater than 0").WithDetail("field", "amount")
	}
	return nil
}
