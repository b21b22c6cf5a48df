// Package balance computes outstanding amounts and keeps party running balances.
package balance

import (
	"weavebooks/internal/core/types"
)

// PaymentStatus of an invoice or bill.
type PaymentStatus string

const (
	StatusUnpaid  PaymentStatus = "unpaid"
	StatusPartial PaymentStatus = "partial"
	StatusPaid    PaymentStatus = "paid"
	// StatusOverdue is a display status for bills; it is never derived here.
	StatusOverdue PaymentStatus = "overdue"
)

// IsValid reports whether s is one of the known statuses.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case StatusUnpaid, StatusPartial, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// ForInvoice returns balance = max(0, grand - received) and the matching status:
// paid when nothing is outstanding, partial when something was received, unpaid otherwise.
func ForInvoice(grandTotal, received types.Money) (types.Money, PaymentStatus) {
	outstanding := types.MaxMoney(0, grandTotal-received)
	switch {
	case outstanding == 0:
		return 0, StatusPaid
	case received > 0:
		return outstanding, StatusPartial
	default:
		return outstanding, StatusUnpaid
	}
}

// ForBill is the purchase side of ForInvoice (total_amount / paid_amount).
func ForBill(total, paid types.Money) (types.Money, PaymentStatus) {
	return ForInvoice(total, paid)
}
