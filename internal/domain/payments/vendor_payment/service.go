package vendor_payment

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

// BillRef identifies the bill a payment was applied to.
type BillRef struct {
	Number     string
	WeaverID   string
	WeaverName string
}

// BillSettler moves a purchase bill's paid_amount.
type BillSettler interface {
	// ApplyPayment adds delta to paid_amount and recomputes balance and payment status.
	// Positive deltas larger than the balance are rejected.
	ApplyPayment(ctx context.Context, scope account.Scope, billID string, delta types.Money) (BillRef, error)
}

// Service provides business operations for vendor payments.
type Service struct {
	repo      Repository
	seq       *sequence.Generator
	parties   *balance.PartyLedger
	bills     BillSettler
	locker    lock.Locker
	lockTTL   time.Duration
	txManager tx.Manager
	clock     clock.Clock
}

// NewService creates a new vendor payment service.
func NewService(
	repo Repository,
	seq *sequence.Generator,
	parties *balance.PartyLedger,
	bills BillSettler,
	locker lock.Locker,
	lockTTL time.Duration,
	txManager tx.Manager,
	clk clock.Clock,
) *Service {
	return &Service{
		repo:      repo,
		seq:       seq,
		parties:   parties,
		bills:     bills,
		locker:    locker,
		lockTTL:   lockTTL,
		txManager: txManager,
		clock:     clk,
	}
}

// Create records the payment, reduces the weaver balance and settles the linked bill.
func (s *Service) Create(ctx context.Context, scope account.Scope, p *VendorPayment) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	create := func(ctx context.Context) error {
		return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			return s.create(ctx, scope, p)
		})
	}

	var err error
	if p.BillID == "" {
		err = create(ctx)
	} else {
		err = lock.WithLock(ctx, s.locker, lock.Key(scope.ID(), lock.KindPurchaseBill, p.BillID), s.lockTTL, create)
	}
	if err != nil {
		return err
	}

	logger.Info(ctx, "vendor payment created", "id", p.ID, "number", p.PaymentNumber, "amount", p.Amount)
	return nil
}

func (s *Service) create(ctx context.Context, scope account.Scope, p *VendorPayment) error {
	if p.BillID != "" {
		ref, err := s.bills.ApplyPayment(ctx, scope, p.BillID, p.Amount)
		if err != nil {
			return err
		}
		if p.WeaverID != "" && p.WeaverID != ref.WeaverID {
			return apperror.NewValidation("payment weaver does not match the bill weaver").WithDetail("field", "weaver_id")
		}
		p.WeaverID = ref.WeaverID
		p.BillNumber = ref.Number
		if p.WeaverName == "" {
			p.WeaverName = ref.WeaverName
		}
	}

	number, err := s.seq.Next(ctx, scope, sequence.VendorPayment, s.repo)
	if err != nil {
		return fmt.Errorf("generate payment number: %w", err)
	}

	now := s.clock.Now()
	p.ID = id.New()
	p.AccountID = scope.ID()
	p.PaymentNumber = number
	p.CreatedAt = now
	if p.PaymentDate.IsZero() {
		p.PaymentDate = now
	}
	if p.PaymentMode == "" {
		p.PaymentMode = DefaultMode
	}

	if err := s.repo.Create(ctx, scope, p); err != nil {
		return fmt.Errorf("create vendor payment: %w", err)
	}
	return s.parties.Payable(ctx, scope, p.WeaverID, p.Amount.Neg(), "vendor payment "+number)
}

// Delete reverses the payment and removes it. If the linked bill was
// deleted, its deletion already settled the weaver balance and nothing is reverted.
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
	if p.BillID == "" {
		err = remove(ctx)
	} else {
		err = lock.WithLock(ctx, s.locker, lock.Key(scope.ID(), lock.KindPurchaseBill, p.BillID), s.lockTTL, remove)
	}
	if err != nil {
		return err
	}

	logger.Info(ctx, "vendor payment deleted", "id", p.ID, "number", p.PaymentNumber, "amount", p.Amount)
	return nil
}

func (s *Service) remove(ctx context.Context, scope account.Scope, paymentID string) error {
	p, err := s.repo.Get(ctx, scope, paymentID)
	if err != nil {
		return err
	}

	revertWeaver := true
	if p.BillID != "" {
		_, err := s.bills.ApplyPayment(ctx, scope, p.BillID, p.Amount.Neg())
		switch {
		case apperror.IsNotFound(err):
			revertWeaver = false
			logger.Info(ctx, "bill of vendor payment no longer exists", "payment_id", p.ID, "bill_id", p.BillID)
		case err != nil:
			return fmt.Errorf("revert bill payment: %w", err)
		}
	}
	if revertWeaver {
		if err := s.parties.Payable(ctx, scope, p.WeaverID, p.Amount, "vendor payment deleted "+p.PaymentNumber); err != nil {
			return err
		}
	}

	return s.repo.Delete(ctx, scope, paymentID)
}

// Get returns a vendor payment.
func (s *Service) Get(ctx context.Context, scope account.Scope, paymentID string) (*VendorPayment, error) {
	return s.repo.Get(ctx, scope, paymentID)
}

// List returns vendor payments, optionally of one weaver.
func (s *Service) List(ctx context.Context, scope account.Scope, filter ListFilter) (domain.ListResult[*VendorPayment], error) {
	filter.ListFilter = filter.ListFilter.Normalize()
	items, total, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		return domain.ListResult[*VendorPayment]{}, err
	}
	return domain.NewListResult(items, total, filter.ListFilter), nil
}

// ListByBill returns every payment made against a bill.
func (s *Service) ListByBill(ctx context.Context, scope account.Scope, billID string) ([]*VendorPayment, error) {
	items, _, err := s.repo.List(ctx, scope, ListFilter{
		ListFilter: domain.ListFilter{Limit: domain.MaxLimit},
		BillID:     billID,
	})
	return items, err
}
