package purchase_bill

import (
	"context"
	"fmt"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/clock"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/payments/vendor_payment"
)

// Settler applies vendor payments to bills.
type Settler struct {
	repo  Repository
	clock clock.Clock
}

// NewSettler creates a Settler.
func NewSettler(repo Repository, clk clock.Clock) *Settler {
	return &Settler{repo: repo, clock: clk}
}

// ApplyPayment implements vendor_payment.BillSettler.
func (s *Settler) ApplyPayment(ctx context.Context, scope account.Scope, billID string, delta types.Money) (vendor_payment.BillRef, error) {
	b, err := s.repo.Get(ctx, scope, billID)
	if err != nil {
		return vendor_payment.BillRef{}, err
	}
	ref := vendor_payment.BillRef{Number: b.BillNumber, WeaverID: b.WeaverID, WeaverName: b.WeaverName}

	if delta > b.BalanceAmount {
		return ref, apperror.NewValidation("Payment amount exceeds bill balance").
			WithDetail("balance_amount", b.BalanceAmount).
			WithDetail("amount", delta)
	}
	paid := b.PaidAmount + delta
	if paid < 0 {
		return ref, apperror.NewInternal(fmt.Errorf("bill %s: paid amount would become %s", b.BillNumber, paid))
	}

	b.PaidAmount = paid
	b.settle()
	b.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, scope, b); err != nil {
		return ref, fmt.Errorf("update bill balance: %w", err)
	}
	return ref, nil
}

var _ vendor_payment.BillSettler = (*Settler)(nil)
