package purchase_order

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
	"weavebooks/internal/domain/catalogs/weaver"
	"weavebooks/internal/domain/registers/stock"
	"weavebooks/internal/domain/sequence"
	"weavebooks/pkg/logger"
)

// Weavers resolves order vendors.
type Weavers interface {
	Get(ctx context.Context, scope account.Scope, id string) (*weaver.Weaver, error)
}

// Service provides business operations for purchase orders.
type Service struct {
	repo      Repository
	weavers   Weavers
	ledger    *stock.Ledger
	seq       *sequence.Generator
	locker    lock.Locker
	lockTTL   time.Duration
	txManager tx.Manager
	clock     clock.Clock
}

// NewService creates a new purchase order service.
func NewService(
	repo Repository,
	weavers Weavers,
	ledger *stock.Ledger,
	seq *sequence.Generator,
	locker lock.Locker,
	lockTTL time.Duration,
	txManager tx.Manager,
	clk clock.Clock,
) *Service {
	return &Service{
		repo:      repo,
		weavers:   weavers,
		ledger:    ledger,
		seq:       seq,
		locker:    locker,
		lockTTL:   lockTTL,
		txManager: txManager,
		clock:     clk,
	}
}

func (s *Service) withLock(ctx context.Context, scope account.Scope, poID string, fn func(ctx context.Context) error) error {
	return lock.WithLock(ctx, s.locker, lock.Key(scope.ID(), lock.KindPurchaseOrder, poID), s.lockTTL, func(ctx context.Context) error {
		return s.txManager.RunInTransaction(ctx, fn)
	})
}

// Create opens a draft order with everything pending.
func (s *Service) Create(ctx context.Context, scope account.Scope, d Draft) (*PurchaseOrder, error) {
	if err := d.Validate(ctx); err != nil {
		return nil, err
	}
	w, err := s.weavers.Get(ctx, scope, d.WeaverID)
	if err != nil {
		return nil, err
	}

	po := &PurchaseOrder{
		AccountID:            scope.ID(),
		WeaverID:             w.ID,
		WeaverName:           w.Name,
		WeaverCode:           w.Code,
		PODate:               d.PODate,
		ExpectedDeliveryDate: d.ExpectedDeliveryDate,
		Items:                append([]Line(nil), d.Items...),
		Status:               StatusDraft,
		ShippingAddress:      d.ShippingAddress,
		BillingAddress:       d.BillingAddress,
		Notes:                d.Notes,
		TermsAndConditions:   d.TermsAndConditions,
	}
	po.Recalculate()
	po.PendingQty = TotalQuantity(po.Items)

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.seq.Next(ctx, scope, sequence.PurchaseOrder, s.repo)
		if err != nil {
			return fmt.Errorf("generate po number: %w", err)
		}
		now := s.clock.Now()
		po.ID = id.New()
		po.PONumber = number
		po.CreatedAt = now
		po.UpdatedAt = now
		if po.PODate.IsZero() {
			po.PODate = now
		}
		return s.repo.Create(ctx, scope, po)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase order created", "id", po.ID, "number", po.PONumber, "total", po.TotalAmount)
	return po, nil
}

// Get returns a purchase order.
func (s *Service) Get(ctx context.Context, scope account.Scope, poID string) (*PurchaseOrder, error) {
	return s.repo.Get(ctx, scope, poID)
}

// List returns purchase orders matching filter.
func (s *Service) List(ctx context.Context, scope account.Scope, filter ListFilter) (domain.ListResult[*PurchaseOrder], error) {
	filter.ListFilter = filter.ListFilter.Normalize()
	items, total, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		return domain.ListResult[*PurchaseOrder]{}, err
	}
	return domain.NewListResult(items, total, filter.ListFilter), nil
}

// Update merges patch into an open order. New items reset pending to
// Σ qty - received, never below zero.
func (s *Service) Update(ctx context.Context, scope account.Scope, poID string, patch Patch) (*PurchaseOrder, error) {
	if patch.Items != nil {
		if err := ValidateLines(*patch.Items); err != nil {
			return nil, err
		}
	}

	var out *PurchaseOrder
	err := s.withLock(ctx, scope, poID, func(ctx context.Context) error {
		po, err := s.repo.Get(ctx, scope, poID)
		if err != nil {
			return err
		}
		if po.Status.IsTerminal() {
			return apperror.NewInvalidState("purchase order", string(po.Status), "update")
		}

		if patch.WeaverID != nil && *patch.WeaverID != po.WeaverID {
			w, err := s.weavers.Get(ctx, scope, *patch.WeaverID)
			if err != nil {
				return err
			}
			po.WeaverID, po.WeaverName, po.WeaverCode = w.ID, w.Name, w.Code
		}
		patch.apply(po)
		if patch.Items != nil {
			po.Items = append([]Line(nil), (*patch.Items)...)
			pending := TotalQuantity(po.Items) - po.ReceivedQty
			if pending < 0 {
				pending = 0
			}
			po.PendingQty = pending
		}
		po.Recalculate()
		po.UpdatedAt = s.clock.Now()

		if err := s.repo.Update(ctx, scope, po); err != nil {
			return fmt.Errorf("update purchase order: %w", err)
		}
		out = po
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase order updated", "id", out.ID, "number", out.PONumber)
	return out, nil
}

// SetStatus moves the order along its lifecycle. Reaching received adds
// every line to stock and moves the pending quantity to received.
func (s *Service) SetStatus(ctx context.Context, scope account.Scope, poID string, status Status) (*PurchaseOrder, error) {
	if !status.IsValid() {
		return nil, apperror.NewValidation("invalid status").WithDetail("field", "status").WithDetail("status", status)
	}

	var out *PurchaseOrder
	err := s.withLock(ctx, scope, poID, func(ctx context.Context) error {
		po, err := s.repo.Get(ctx, scope, poID)
		if err != nil {
			return err
		}
		if !CanTransition(po.Status, status) {
			return apperror.NewInvalidState("purchase order", string(po.Status), "move to "+string(status)).
				WithDetail("to", status)
		}

		if status == StatusReceived {
			moves := stock.Inbound(Requirements(po.Items), "Received via PO "+po.PONumber)
			if _, err := s.ledger.Apply(ctx, scope, po.Ref(), moves); err != nil {
				return fmt.Errorf("receive stock: %w", err)
			}
			po.ReceivedQty += po.PendingQty
			po.PendingQty = 0
		}

		from := po.Status
		po.Status = status
		po.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, scope, po); err != nil {
			return fmt.Errorf("update purchase order status: %w", err)
		}
		logger.Info(ctx, "purchase order status changed", "id", po.ID, "number", po.PONumber, "from", from, "to", status)
		out = po
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Cancel soft-deletes the order.
func (s *Service) Cancel(ctx context.Context, scope account.Scope, poID string) (*PurchaseOrder, error) {
	return s.SetStatus(ctx, scope, poID, StatusCancelled)
}
