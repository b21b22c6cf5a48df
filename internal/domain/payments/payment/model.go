// Package payment records money received from customers and paid to weavers.
package payment

import (
	"context"
	"strings"
	"time"

	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/types"
)

// Type is the direction of a payment.
type Type string

const (
	// TypeReceive is money received from a customer.
	TypeReceive Type = "receive"
	// TypePay is money paid to a weaver.
	TypePay Type = "pay"
)

// Status values. Payments of a cancelled invoice are marked cancelled, never deleted.
const (
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Payment is a single receipt or disbursement.
type Payment struct {
	ID              string      `json:"payment_id" db:"id" bson:"_id"`
	AccountID       string      `json:"account_id" db:"account_id" bson:"account_id"`
	PaymentNumber   string      `json:"payment_number" db:"payment_number" bson:"payment_number"`
	PaymentType     Type        `json:"payment_type" db:"payment_type" bson:"payment_type"`
	PartyID         string      `json:"party_id" db:"party_id" bson:"party_id"`
	PartyName       string      `json:"party_name" db:"party_name" bson:"party_name"`
	InvoiceID       string      `json:"invoice_id,omitempty" db:"invoice_id" bson:"invoice_id,omitempty"`
	InvoiceNumber   string      `json:"invoice_number,omitempty" db:"invoice_number" bson:"invoice_number,omitempty"`
	Amount          types.Money `json:"amount" db:"amount" bson:"amount"`
	PaymentDate     time.Time   `json:"payment_date" db:"payment_date" bson:"payment_date"`
	PaymentMode     string      `json:"payment_mode" db:"payment_mode" bson:"payment_mode"`
	ReferenceNumber string      `json:"reference_number,omitempty" db:"reference_number" bson:"reference_number,omitempty"`
	Notes           string      `json:"notes,omitempty" db:"notes" bson:"notes,omitempty"`
	Status          string      `json:"status" db:"status" bson:"status"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at" bson:"created_at"`
}

// Validate checks the payment before it is recorded.
func (p *Payment) Validate(ctx context.Context) error {
	if !p.Amount.IsPositive() {
		return apperror.NewValidation("Payment amount must be greater than 0").WithDetail("field", "amount")
	}
	switch p.PaymentType {
	case TypeReceive:
	case TypePay:
		if p.InvoiceID != "" {
			return apperror.NewValidation("only received payments can be linked to an invoice").
				WithDetail("field", "invoice_id")
		}
	default:
		return apperror.NewValidation("payment_type must be receive or pay").WithDetail("field", "payment_type")
	}
	if strings.TrimSpace(p.PartyID) == "" && p.InvoiceID == "" {
		return apperror.NewValidation("party_id is required").WithDetail("field", "party_id")
	}
	return nil
}

// IsCompleted reports whether the payment still counts towards balances.
func (p *Payment) IsCompleted() bool { return p.Status != StatusCancelled }
