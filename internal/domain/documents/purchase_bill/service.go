package purchase_bill

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
	"weavebooks/internal/domain"
	"weavebooks/internal/domain/balance"
	"weavebooks/internal/domain/catalogs/weaver"
	"weavebooks/internal/domain/documents/purchase_order"
	"weavebooks/internal/domain/registers/stock"
	"weavebooks/internal/domain/sequence"
	"weavebooks/pkg/logger"
)

// Weavers resolves bill vendors.
type Weavers interface {
	Get(ctx context.Context, scope account.Scope, id string) (*weaver.Weaver, error)
}

// Orders resolves the purchase order a bill was raised against.
type Orders interface {
	Get(ctx context.Context, scope account.Scope, id string) (*purchase_order.PurchaseOrder, error)
}

// Deps are the collaborators of Service.
type Deps struct {
	Repo      Repository
	Weavers   Weavers
	Orders    Orders
	Ledger    *stock.Ledger
	Parties   *balance.PartyLedger
	Sequence  *sequence.Generator
	Locker    lock.Locker
	LockTTL   time.Duration
	TxManager tx.Manager
	Clock     clock.Clock
}

// Service provides business operations for purchase bills.
type Service struct {
	Deps
}

// NewService creates a new purchase bill service.
func NewService(deps Deps) *Service {
	return &Service{Deps: deps}
}

func (s *Service) withLock(ctx context.Context, scope account.Scope, billID string, fn func(ctx context.Context) error) error {
	return lock.WithLock(ctx, s.Locker, lock.Key(scope.ID(), lock.KindPurchaseBill, billID), s.LockTTL, func(ctx context.Context) error {
		return s.TxManager.RunInTransaction(ctx, fn)
	})
}

// Create books the bill: the weaver is owed total_amount and every line is added to stock.
func (s *Service) Create(ctx context.Context, scope account.Scope, d Draft) (*PurchaseBill, error) {
	if err := d.Validate(ctx); err != nil {
		return nil, err
	}
	w, err := s.Weavers.Get(ctx, scope, d.WeaverID)
	if err != nil {
		return nil, err
	}

	b := &PurchaseBill{
		AccountID:        scope.ID(),
		WeaverID:         w.ID,
		WeaverName:       w.Name,
		WeaverCode:       w.Code,
		BillDate:         d.BillDate,
		DueDate:          d.DueDate,
		VendorBillNumber: d.VendorBillNumber,
		Items:            append([]Line(nil), d.Items...),
		DiscountAmount:   d.DiscountAmount,
		Status:           d.Status,
		Notes:            d.Notes,
		Attachments:      append([]string{}, d.Attachments...),
	}
	if b.Status == "" {
		b.Status = StatusDraft
	}
	if d.POID != "" {
		po, err := s.Orders.Get(ctx, scope, d.POID)
		if err != nil {
			return nil, err
		}
		if po.WeaverID != w.ID {
			return nil, apperror.NewValidation("purchase order belongs to another weaver").WithDetail("field", "po_id")
		}
		b.POID, b.PONumber = po.ID, po.PONumber
	}
	b.Recalculate()
	if err := b.validateTotals(); err != nil {
		return nil, err
	}

	err = s.TxManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.Sequence.Next(ctx, scope, sequence.PurchaseBill, s.Repo)
		if err != nil {
			return fmt.Errorf("generate bill number: %w", err)
		}
		now := s.Clock.Now()
		b.ID = id.New()
		b.BillNumber = number
		b.CreatedAt = now
		b.UpdatedAt = now
		if b.BillDate.IsZero() {
			b.BillDate = now
		}
		if b.DueDate.IsZero() {
			b.DueDate = b.BillDate.AddDate(0, 0, w.CreditPeriodDays)
		}

		if err := s.Repo.Create(ctx, scope, b); err != nil {
			return fmt.Errorf("create bill: %w", err)
		}
		if err := s.Parties.Payable(ctx, scope, b.WeaverID, b.TotalAmount, "bill "+number); err != nil {
			return err
		}
		_, err = s.Ledger.Apply(ctx, scope, b.Ref(), stock.Inbound(b.Requirements(), "Purchased via bill "+number))
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase bill created", "id", b.ID, "number", b.BillNumber, "total", b.TotalAmount)
	return b, nil
}

// Get returns a bill.
func (s *Service) Get(ctx context.Context, scope account.Scope, billID string) (*PurchaseBill, error) {
	return s.Repo.Get(ctx, scope, billID)
}

// List returns bills matching filter.
func (s *Service) List(ctx context.Context, scope account.Scope, filter ListFilter) (domain.ListResult[*PurchaseBill], error) {
	filter.ListFilter = filter.ListFilter.Normalize()
	items, total, err := s.Repo.List(ctx, scope, filter)
	if err != nil {
		return domain.ListResult[*PurchaseBill]{}, err
	}
	return domain.NewListResult(items, total, filter.ListFilter), nil
}

// ListOverdue returns unpaid and partially paid bills past their due date, earliest due first.
func (s *Service) ListOverdue(ctx context.Context, scope account.Scope, filter ListFilter) (domain.ListResult[*PurchaseBill], error) {
	now := s.Clock.Now()
	filter.DueBefore = &now
	return s.List(ctx, scope, filter)
}

// Update merges patch. Replaced items take the old quantities back out of
// stock before adding the new ones; the weaver balance follows total_amount.
func (s *Service) Update(ctx context.Context, scope account.Scope, billID string, patch Patch) (*PurchaseBill, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}

	var out *PurchaseBill
	err := s.withLock(ctx, scope, billID, func(ctx context.Context) error {
		b, err := s.Repo.Get(ctx, scope, billID)
		if err != nil {
			return err
		}
		oldWeaver := b.WeaverID
		oldTotal := b.TotalAmount

		if patch.Status != nil && !CanTransition(b.Status, *patch.Status) {
			return apperror.NewInvalidState("purchase bill", string(b.Status), "move to "+string(*patch.Status)).
				WithDetail("to", *patch.Status)
		}

		if patch.WeaverID != nil && *patch.WeaverID != b.WeaverID {
			if b.PaidAmount > 0 {
				return apperror.NewValidation("weaver cannot be changed after a payment was made").
					WithDetail("field", "weaver_id")
			}
			w, err := s.Weavers.Get(ctx, scope, *patch.WeaverID)
			if err != nil {
				return err
			}
			b.WeaverID, b.WeaverName, b.WeaverCode = w.ID, w.Name, w.Code
		}

		if patch.Items != nil {
			reverted := stock.Outbound(b.Requirements(), "Stock reverted for bill update: "+b.BillNumber)
			if _, err := s.Ledger.Apply(ctx, scope, b.Ref(), reverted); err != nil {
				return fmt.Errorf("revert bill stock: %w", err)
			}
			b.Items = append([]Line(nil), (*patch.Items)...)
			added := stock.Inbound(purchase_order.Requirements(b.Items), "Stock added for bill update: "+b.BillNumber)
			if _, err := s.Ledger.Apply(ctx, scope, b.Ref(), added); err != nil {
				return err
			}
		}

		patch.apply(b)
		b.Recalculate()
		if err := b.validateTotals(); err != nil {
			return err
		}
		b.UpdatedAt = s.Clock.Now()
		if err := s.Repo.Update(ctx, scope, b); err != nil {
			return fmt.Errorf("update bill: %w", err)
		}

		reason := "bill updated " + b.BillNumber
		if b.WeaverID != oldWeaver {
			if err := s.Parties.Payable(ctx, scope, oldWeaver, oldTotal.Neg(), reason); err != nil {
				return err
			}
			if err := s.Parties.Payable(ctx, scope, b.WeaverID, b.TotalAmount, reason); err != nil {
				return err
			}
		} else if err := s.Parties.Payable(ctx, scope, b.WeaverID, b.TotalAmount-oldTotal, reason); err != nil {
			return err
		}

		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase bill updated", "id", out.ID, "number", out.BillNumber, "total", out.TotalAmount)
	return out, nil
}

// Delete removes the bill. The weaver is relieved of the remaining balance
// only; the billed goods are taken back out of stock.
func (s *Service) Delete(ctx context.Context, scope account.Scope, billID string) error {
	var number string
	err := s.withLock(ctx, scope, billID, func(ctx context.Context) error {
		b, err := s.Repo.Get(ctx, scope, billID)
		if err != nil {
			return err
		}
		number = b.BillNumber

		moves := stock.Outbound(b.Requirements(), "Stock reverted due to bill deletion: "+b.BillNumber)
		if _, err := s.Ledger.Apply(ctx, scope, b.Ref(), moves); err != nil {
			return fmt.Errorf("revert bill stock: %w", err)
		}
		if err := s.Parties.Payable(ctx, scope, b.WeaverID, b.BalanceAmount.Neg(), "bill deleted "+b.BillNumber); err != nil {
			return err
		}
		return s.Repo.Delete(ctx, scope, billID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "purchase bill deleted", "id", billID, "number", number)
	return nil
}
