package quotation

import (
	"context"
	"fmt"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/clock"
	"weavebooks/internal/core/id"
	"weavebooks/internal/core/tx"
	"weavebooks/internal/domain"
	"weavebooks/internal/domain/catalogs/customer"
	"weavebooks/internal/domain/plan"
	"weavebooks/internal/domain/sequence"
	"weavebooks/pkg/logger"
)

// Customers resolves quotation customers.
type Customers interface {
	Get(ctx context.Context, scope account.Scope, id string) (*customer.Customer, error)
}

// Service provides business operations for quotations.
type Service struct {
	repo      Repository
	customers Customers
	guard     *plan.Guard
	seq       *sequence.Generator
	txManager tx.Manager
	clock     clock.Clock
}

// NewService creates a new quotation service.
func NewService(
	repo Repository,
	customers Customers,
	guard *plan.Guard,
	seq *sequence.Generator,
	txManager tx.Manager,
	clk clock.Clock,
) *Service {
	return &Service{
		repo:      repo,
		customers: customers,
		guard:     guard,
		seq:       seq,
		txManager: txManager,
		clock:     clk,
	}
}

// Create snapshots the customer, computes totals and assigns a QTN number.
func (s *Service) Create(ctx context.Context, scope account.Scope, d Draft) (*Quotation, error) {
	if err := d.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.guard.CheckNext(ctx, scope, plan.ResourceQuotations); err != nil {
		return nil, err
	}
	cust, err := s.customers.Get(ctx, scope, d.CustomerID)
	if err != nil {
		return nil, err
	}

	q := &Quotation{
		AccountID:       scope.ID(),
		CustomerID:      cust.ID,
		Snapshot:        cust.Snapshot(),
		QuoteDate:       d.QuoteDate,
		ValidUntil:      d.ValidUntil,
		Items:           append([]Line(nil), d.Items...),
		Notes:           d.Notes,
		TermsConditions: d.TermsConditions,
		Status:          d.Status,
	}
	if q.Status == "" {
		q.Status = StatusDraft
	}
	q.Recalculate()

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.seq.Next(ctx, scope, sequence.Quotation, s.repo)
		if err != nil {
			return fmt.Errorf("generate quotation number: %w", err)
		}
		now := s.clock.Now()
		q.ID = id.New()
		q.QuotationNumber = number
		q.CreatedAt = now
		q.UpdatedAt = now
		if q.QuoteDate.IsZero() {
			q.QuoteDate = now
		}
		return s.repo.Create(ctx, scope, q)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "quotation created", "id", q.ID, "number", q.QuotationNumber, "grand_total", q.GrandTotal)
	return q, nil
}

// Get returns a quotation.
func (s *Service) Get(ctx context.Context, scope account.Scope, quotationID string) (*Quotation, error) {
	return s.repo.Get(ctx, scope, quotationID)
}

// List returns quotations matching filter.
func (s *Service) List(ctx context.Context, scope account.Scope, filter ListFilter) (domain.ListResult[*Quotation], error) {
	filter.ListFilter = filter.ListFilter.Normalize()
	items, total, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		return domain.ListResult[*Quotation]{}, err
	}
	return domain.NewListResult(items, total, filter.ListFilter), nil
}

// Update merges patch. Converted quotations are read-only.
func (s *Service) Update(ctx context.Context, scope account.Scope, quotationID string, patch Patch) (*Quotation, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}

	var out *Quotation
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		q, err := s.repo.Get(ctx, scope, quotationID)
		if err != nil {
			return err
		}
		if q.Status == StatusConverted {
			return apperror.NewInvalidState("quotation", q.Status, "update")
		}

		if patch.CustomerID != nil && *patch.CustomerID != q.CustomerID {
			cust, err := s.customers.Get(ctx, scope, *patch.CustomerID)
			if err != nil {
				return err
			}
			q.CustomerID = cust.ID
			q.Snapshot = cust.Snapshot()
		}
		patch.apply(q)
		q.Recalculate()
		q.UpdatedAt = s.clock.Now()

		if err := s.repo.Update(ctx, scope, q); err != nil {
			return fmt.Errorf("update quotation: %w", err)
		}
		out = q
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "quotation updated", "id", out.ID, "number", out.QuotationNumber)
	return out, nil
}

// Delete removes the quotation.
func (s *Service) Delete(ctx context.Context, scope account.Scope, quotationID string) error {
	if _, err := s.repo.Get(ctx, scope, quotationID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, scope, quotationID); err != nil {
		return err
	}
	logger.Info(ctx, "quotation deleted", "id", quotationID)
	return nil
}

// Duplicate copies the quotation under a new number dated today, status active.
func (s *Service) Duplicate(ctx context.Context, scope account.Scope, quotationID string) (*Quotation, error) {
	if err := s.guard.CheckNext(ctx, scope, plan.ResourceQuotations); err != nil {
		return nil, err
	}
	src, err := s.repo.Get(ctx, scope, quotationID)
	if err != nil {
		return nil, err
	}

	dup := *src
	dup.Items = append([]Line(nil), src.Items...)
	dup.Status = StatusActive
	dup.InvoiceID = ""
	dup.InvoiceNumber = ""

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.seq.Next(ctx, scope, sequence.Quotation, s.repo)
		if err != nil {
			return fmt.Errorf("generate quotation number: %w", err)
		}
		now := s.clock.Now()
		dup.ID = id.New()
		dup.QuotationNumber = number
		dup.QuoteDate = clock.StartOfDay(now)
		dup.CreatedAt = now
		dup.UpdatedAt = now
		return s.repo.Create(ctx, scope, &dup)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "quotation duplicated", "id", dup.ID, "number", dup.QuotationNumber, "source", src.QuotationNumber)
	return &dup, nil
}

// MarkConverted links the quotation to the invoice created from it.
func (s *Service) MarkConverted(ctx context.Context, scope account.Scope, quotationID, invoiceID, invoiceNumber string) (string, error) {
	q, err := s.repo.Get(ctx, scope, quotationID)
	if err != nil {
		return "", err
	}
	if q.Status == StatusConverted {
		return "", apperror.NewConflict("Quotation is already converted").
			WithDetail("quotation_number", q.QuotationNumber).
			WithDetail("invoice_number", q.InvoiceNumber)
	}

	q.Status = StatusConverted
	q.InvoiceID = invoiceID
	q.InvoiceNumber = invoiceNumber
	q.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, scope, q); err != nil {
		return "", fmt.Errorf("convert quotation: %w", err)
	}

	logger.Info(ctx, "quotation converted", "id", q.ID, "number", q.QuotationNumber, "invoice_number", invoiceNumber)
	return q.QuotationNumber, nil
}

// Restore reopens a converted quotation after its invoice was cancelled.
func (s *Service) Restore(ctx context.Context, scope account.Scope, quotationID string) error {
	q, err := s.repo.Get(ctx, scope, quotationID)
	if err != nil {
		return err
	}
	if q.Status != StatusConverted {
		return nil
	}

	q.Status = StatusActive
	q.InvoiceID = ""
	q.InvoiceNumber = ""
	q.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, scope, q); err != nil {
		return fmt.Errorf("restore quotation: %w", err)
	}

	logger.Info(ctx, "quotation restored", "id", q.ID, "number", q.QuotationNumber)
	return nil
}

// CountPending counts draft and sent quotations.
func (s *Service) CountPending(ctx context.Context, scope account.Scope) (int64, error) {
	return s.repo.CountByStatus(ctx, scope, PendingStatuses...)
}
