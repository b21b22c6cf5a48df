package invoice

import (
	"context"
	"fmt"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/clock"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/payments/payment"
)

// Settler applies payments to invoices. It works on the repository directly
// so the payment service can use it without depending on Service.
type Settler struct {
	repo  Repository
	clock clock.Clock
}

// NewSettler creates a Settler.
func NewSettler(repo Repository, clk clock.Clock) *Settler {
	return &Settler{repo: repo, clock: clk}
}

// ApplyPayment implements payment.InvoiceSettler.
func (s *Settler) ApplyPayment(ctx context.Context, scope account.Scope, invoiceID string, delta types.Money) (payment.InvoiceRef, error) {
	inv, err := s.repo.Get(ctx, scope, invoiceID)
	if err != nil {
		return payment.InvoiceRef{}, err
	}
	ref := payment.InvoiceRef{Number: inv.InvoiceNumber, CustomerID: inv.CustomerID, CustomerName: inv.Snapshot.Name}

	if delta > 0 {
		if inv.IsCancelled() {
			return ref, apperror.NewInvalidState("invoice", inv.Status, "record a payment on")
		}
		if delta > inv.BalanceAmount {
			return ref, apperror.NewValidation("Payment amount exceeds balance").
				WithDetail("balance_amount", inv.BalanceAmount).
				WithDetail("amount", delta)
		}
	}

	received := inv.AmountReceived + delta
	if received < 0 {
		return ref, apperror.NewInternal(fmt.Errorf("invoice %s: amount received would become %s", inv.InvoiceNumber, received))
	}
	inv.AmountReceived = received
	if !inv.IsCancelled() {
		inv.settle()
	}
	inv.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, scope, inv); err != nil {
		return ref, fmt.Errorf("update invoice balance: %w", err)
	}
	return ref, nil
}

var _ payment.InvoiceSettler = (*Settler)(nil)
