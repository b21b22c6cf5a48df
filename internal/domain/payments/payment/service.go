package payment

import (
	"context"
	"fmt"
	"time"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/clock"
	"weavebooks/internal/core/id"
	"weavebooks/internal/core/lock"
	"weavebooks/internal/core/tx"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain"
	"weavebooks/internal/domain/balance"
	"weavebooks/internal/domain/sequence"
	"weavebooks/pkg/logger"
)

// DefaultMode is used when a payment does not name one.
const DefaultMode = "cash"

// InvoiceRef identifies the invoice a payment was applied to.
type InvoiceRef struct {
	Number       string
	CustomerID   string
	CustomerName string
}

// InvoiceSettler moves an invoice's amount_received.
type InvoiceSettler interface {
	// ApplyPayment adds delta to amount_received and recomputes balance and payment status.
	// Positive deltas are rejected for cancelled invoices and when they exceed the balance.
	ApplyPayment(ctx context.Context, scope account.Scope, invoiceID string, delta types.Money) (InvoiceRef, error)
}

// Service provides business operations for payments.
type Service struct {
	repo      Repository
	seq       *sequence.Generator
	parties   *balance.PartyLedger
	invoices  InvoiceSettler
	locker    lock.Locker
	lockTTL   time.Duration
	txManager tx.Manager
	clock     clock.Clock
}

// NewService creates a new payment service.
func NewService(
	repo Repository,
	seq *sequence.Generator,
	parties *balance.PartyLedger,
	invoices InvoiceSettler,
	locker lock.Locker,
	lockTTL time.Duration,
	txManager tx.Manager,
	clk clock.Clock,
) *Service {
	return &Service{
		repo:      repo,
		seq:       seq,
		parties:   parties,
		invoices:  invoices,
		locker:    locker,
		lockTTL:   lockTTL,
		txManager: txManager,
		clock:     clk,
	}
}

// Create records a standalone payment. A payment linked to an invoice is
// applied under that invoice's lock.
func (s *Service) Create(ctx context.Context, scope account.Scope, p *Payment) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	record := func(ctx context.Context) error {
		return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			return s.Record(ctx, scope, p)
		})
	}

	var err error
	if p.InvoiceID == "" {
		err = record(ctx)
	} else {
		err = lock.WithLock(ctx, s.locker, lock.Key(scope.ID(), lock.KindInvoice, p.InvoiceID), s.lockTTL, record)
	}
	if err != nil {
		return err
	}

	logger.Info(ctx, "payment created", "id", p.ID, "number", p.PaymentNumber, "amount", p.Amount, "type", p.PaymentType)
	return nil
}

// Record books p within the caller's unit of work: it settles the linked
// invoice, assigns a number, stores the payment and reduces the party balance.
// Callers that link an invoice must already hold its lock.
func (s *Service) Record(ctx context.Context, scope account.Scope, p *Payment) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if p.InvoiceID != "" {
			ref, err := s.invoices.ApplyPayment(ctx, scope, p.InvoiceID, p.Amount)
			if err != nil {
				return err
			}
			if p.PartyID != "" && p.PartyID != ref.CustomerID {
				return apperror.NewValidation("payment party does not match the invoice customer").
					WithDetail("field", "party_id")
			}
			p.PartyID = ref.CustomerID
			p.InvoiceNumber = ref.Number
			if p.PartyName == "" {
				p.PartyName = ref.CustomerName
			}
		}

		number, err := s.seq.Next(ctx, scope, sequence.Payment, s.repo)
		if err != nil {
			return fmt.Errorf("generate payment number: %w", err)
		}

		now := s.clock.Now()
		p.ID = id.New()
		p.AccountID = scope.ID()
		p.PaymentNumber = number
		p.Status = StatusCompleted
		p.CreatedAt = now
		if p.PaymentDate.IsZero() {
			p.PaymentDate = now
		}
		if p.PaymentMode == "" {
			p.PaymentMode = DefaultMode
		}

		if err := s.repo.Create(ctx, scope, p); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		return s.moveParty(ctx, scope, p, p.Amount.Neg(), "payment "+number)
	})
}

// Delete reverses a payment and removes it. A payment already cancelled by
// its invoice's cancellation has no balance effect left to reverse.
func (s *Service) Delete(ctx context.Context, scope account.Scope, paymentID string) error {
	p, err := s.repo.Get(ctx, scope, paymentID)
	if err != nil {
		return err
	}

	remove := func(ctx context.Context) error {
		return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			return s.remove(ctx, scope, paymentID)
		})
	}
	if p.InvoiceID == "" {
		err = remove(ctx)
	} else {
		err = lock.WithLock(ctx, s.locker, lock.Key(scope.ID(), lock.KindInvoice, p.InvoiceID), s.lockTTL, remove)
	}
	if err != nil {
		return err
	}

	logger.Info(ctx, "payment deleted", "id", p.ID, "number", p.PaymentNumber, "amount", p.Amount)
	return nil
}

func (s *Service) remove(ctx context.Context, scope account.Scope, paymentID string) error {
	p, err := s.repo.Get(ctx, scope, paymentID)
	if err != nil {
		return err
	}

	if p.IsCompleted() {
		if p.InvoiceID != "" {
			if _, err := s.invoices.ApplyPayment(ctx, scope, p.InvoiceID, p.Amount.Neg()); err != nil {
				return fmt.Errorf("revert invoice payment: %w", err)
			}
		}
		if err := s.moveParty(ctx, scope, p, p.Amount, "payment deleted "+p.PaymentNumber); err != nil {
			return err
		}
	}

	return s.repo.Delete(ctx, scope, paymentID)
}

// CancelForInvoice marks the invoice's payments cancelled. Balances are
// settled by the invoice cancellation itself.
func (s *Service) CancelForInvoice(ctx context.Context, scope account.Scope, invoiceID string) error {
	n, err := s.repo.CancelByInvoice(ctx, scope, invoiceID)
	if err != nil {
		return fmt.Errorf("cancel invoice payments: %w", err)
	}
	if n > 0 {
		logger.Info(ctx, "invoice payments cancelled", "invoice_id", invoiceID, "count", n)
	}
	return nil
}

// Get returns a payment.
func (s *Service) Get(ctx context.Context, scope account.Scope, paymentID string) (*Payment, error) {
	return s.repo.Get(ctx, scope, paymentID)
}

// List returns payments matching filter, newest payment date first.
func (s *Service) List(ctx context.Context, scope account.Scope, filter ListFilter) (domain.ListResult[*Payment], error) {
	filter.ListFilter = filter.ListFilter.Normalize()
	items, total, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		return domain.ListResult[*Payment]{}, err
	}
	return domain.NewListResult(items, total, filter.ListFilter), nil
}

// ForInvoice returns every payment linked to the invoice, newest first.
func (s *Service) ForInvoice(ctx context.Context, scope account.Scope, invoiceID string) ([]*Payment, error) {
	items, _, err := s.repo.List(ctx, scope, ListFilter{
		ListFilter: domain.ListFilter{Limit: domain.MaxLimit},
		InvoiceID:  invoiceID,
	})
	return items, err
}

func (s *Service) moveParty(ctx context.Context, scope account.Scope, p *Payment, delta types.Money, reason string) error {
	if p.PaymentType == TypePay {
		return s.parties.Payable(ctx, scope, p.PartyID, delta, reason)
	}
	return s.parties.Receivable(ctx, scope, p.PartyID, delta, reason)
}
