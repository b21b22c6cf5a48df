package invoice

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
	"weavebooks/internal/domain/catalogs/customer"
	"weavebooks/internal/domain/payments/payment"
	"weavebooks/internal/domain/plan"
	"weavebooks/internal/domain/registers/stock"
	"weavebooks/internal/domain/sequence"
	"weavebooks/pkg/logger"
)

// Customers resolves the customer of an invoice.
type Customers interface {
	Get(ctx context.Context, scope account.Scope, id string) (*customer.Customer, error)
}

// Quotations is the part of the quotation lifecycle an invoice drives.
type Quotations interface {
	// MarkConverted flips the quotation to converted and returns its number.
	MarkConverted(ctx context.Context, scope account.Scope, quotationID, invoiceID, invoiceNumber string) (string, error)
	// Restore reopens a quotation whose invoice was cancelled.
	Restore(ctx context.Context, scope account.Scope, quotationID string) error
}

// Deps are the collaborators of Service.
type Deps struct {
	Repo       Repository
	Customers  Customers
	Ledger     *stock.Ledger
	Parties    *balance.PartyLedger
	Payments   *payment.Service
	Quotations Quotations // optional
	Guard      *plan.Guard
	Sequence   *sequence.Generator
	Locker     lock.Locker
	LockTTL    time.Duration
	TxManager  tx.Manager
	Clock      clock.Clock
}

// Service provides business operations for invoices.
type Service struct {
	Deps
}

// NewService creates a new invoice service.
func NewService(deps Deps) *Service {
	return &Service{Deps: deps}
}

// Detail is an invoice with its payment history.
type Detail struct {
	*Invoice
	Payments []*payment.Payment `json:"payments"`
}

func (s *Service) withLock(ctx context.Context, scope account.Scope, invoiceID string, fn func(ctx context.Context) error) error {
	return lock.WithLock(ctx, s.Locker, lock.Key(scope.ID(), lock.KindInvoice, invoiceID), s.LockTTL, func(ctx context.Context) error {
		return s.TxManager.RunInTransaction(ctx, fn)
	})
}

// Create validates the draft, deducts stock, books the customer obligation
// and records the payment received at creation.
func (s *Service) Create(ctx context.Context, scope account.Scope, d Draft) (*Invoice, error) {
	if err := d.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.Guard.CheckNext(ctx, scope, plan.ResourceInvoices); err != nil {
		return nil, err
	}

	cust, err := s.Customers.Get(ctx, scope, d.CustomerID)
	if err != nil {
		return nil, err
	}

	inv := &Invoice{
		AccountID:       scope.ID(),
		CustomerID:      cust.ID,
		Snapshot:        cust.Snapshot(),
		InvoiceDate:     d.InvoiceDate,
		DueDate:         d.DueDate,
		Items:           append([]Line(nil), d.Items...),
		DiscountAmount:  d.DiscountAmount,
		ShippingCharges: d.ShippingCharges,
		Status:          StatusActive,
		Notes:           d.Notes,
		PaymentTerms:    d.PaymentTerms,
	}
	inv.Recalculate()
	received := d.Received(inv.GrandTotal)
	inv.AmountReceived = received
	if err := inv.validateTotals(); err != nil {
		return nil, err
	}
	inv.AmountReceived = 0

	if err := s.Ledger.Check(ctx, scope, inv.Requirements()); err != nil {
		return nil, err
	}

	err = s.TxManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.Sequence.Next(ctx, scope, sequence.Invoice, s.Repo)
		if err != nil {
			return fmt.Errorf("generate invoice number: %w", err)
		}

		now := s.Clock.Now()
		inv.ID = id.New()
		inv.InvoiceNumber = number
		inv.CreatedAt = now
		inv.UpdatedAt = now
		if inv.InvoiceDate.IsZero() {
			inv.InvoiceDate = now
		}

		if d.QuotationID != "" && s.Quotations != nil {
			qn, err := s.Quotations.MarkConverted(ctx, scope, d.QuotationID, inv.ID, number)
			if err != nil {
				return fmt.Errorf("convert quotation: %w", err)
			}
			inv.QuotationID = d.QuotationID
			inv.QuotationNumber = qn
		}

		if err := s.Repo.Create(ctx, scope, inv); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		if _, err := s.Ledger.Apply(ctx, scope, inv.Ref(), stock.Outbound(inv.Requirements(), "Sold via invoice "+number)); err != nil {
			return err
		}
		if err := s.Parties.Receivable(ctx, scope, inv.CustomerID, inv.GrandTotal, "invoice "+number); err != nil {
			return err
		}

		if received > 0 {
			if err := s.recordPayment(ctx, scope, inv, PaymentInput{
				Amount:      received,
				PaymentDate: inv.InvoiceDate,
				PaymentMode: d.PaymentMode,
				Notes:       "Payment received with invoice " + number,
			}); err != nil {
				return fmt.Errorf("record initial payment: %w", err)
			}
		}

		fresh, err := s.Repo.Get(ctx, scope, inv.ID)
		if err != nil {
			return err
		}
		inv = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice created",
		"id", inv.ID, "number", inv.InvoiceNumber, "grand_total", inv.GrandTotal, "payment_status", inv.PaymentStatus)
	return inv, nil
}

func (s *Service) recordPayment(ctx context.Context, scope account.Scope, inv *Invoice, in PaymentInput) error {
	return s.Payments.Record(ctx, scope, &payment.Payment{
		PaymentType:     payment.TypeReceive,
		PartyID:         inv.CustomerID,
		PartyName:       inv.Snapshot.Name,
		InvoiceID:       inv.ID,
		Amount:          in.Amount,
		PaymentDate:     in.PaymentDate,
		PaymentMode:     in.PaymentMode,
		ReferenceNumber: in.ReferenceNumber,
		Notes:           in.Notes,
	})
}

// Get returns an invoice with its payments.
func (s *Service) Get(ctx context.Context, scope account.Scope, invoiceID string) (*Detail, error) {
	inv, err := s.Repo.Get(ctx, scope, invoiceID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, scope, inv)
}

// GetByNumber returns an invoice by its number.
func (s *Service) GetByNumber(ctx context.Context, scope account.Scope, number string) (*Detail, error) {
	inv, err := s.Repo.GetByNumber(ctx, scope, number)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, scope, inv)
}

func (s *Service) detail(ctx context.Context, scope account.Scope, inv *Invoice) (*Detail, error) {
	payments, err := s.Payments.ForInvoice(ctx, scope, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}
	if payments == nil {
		payments = []*payment.Payment{}
	}
	return &Detail{Invoice: inv, Payments: payments}, nil
}

// List returns invoices matching filter. Cancelled invoices are excluded unless asked for.
func (s *Service) List(ctx context.Context, scope account.Scope, filter ListFilter) (domain.ListResult[*Invoice], error) {
	filter.ListFilter = filter.ListFilter.Normalize()
	items, total, err := s.Repo.List(ctx, scope, filter)
	if err != nil {
		return domain.ListResult[*Invoice]{}, err
	}
	return domain.NewListResult(items, total, filter.ListFilter), nil
}

// Update merges patch into the invoice.
//
// Replaced items first return the old quantities to stock, then the new
// lines are validated and deducted. Customer balance follows the change in
// grand_total; a customer change moves the whole obligation. An increase of
// amount_received is recorded as a payment.
func (s *Service) Update(ctx context.Context, scope account.Scope, invoiceID string, patch Patch) (*Invoice, error) {
	if patch.Items != nil {
		if err := validateLines(*patch.Items); err != nil {
			return nil, err
		}
	}

	var out *Invoice
	err := s.withLock(ctx, scope, invoiceID, func(ctx context.Context) error {
		inv, err := s.Repo.Get(ctx, scope, invoiceID)
		if err != nil {
			return err
		}
		if inv.IsCancelled() {
			return apperror.NewInvalidState("invoice", inv.Status, "update")
		}

		oldCustomer := inv.CustomerID
		oldGrand := inv.GrandTotal

		if patch.CustomerID != nil && *patch.CustomerID != inv.CustomerID {
			if inv.AmountReceived > 0 {
				return apperror.NewValidation("customer cannot be changed after a payment was received").
					WithDetail("field", "customer_id")
			}
			cust, err := s.Customers.Get(ctx, scope, *patch.CustomerID)
			if err != nil {
				return err
			}
			inv.CustomerID = cust.ID
			inv.Snapshot = cust.Snapshot()
		}

		if patch.Items != nil {
			if err := s.replaceLines(ctx, scope, inv, *patch.Items); err != nil {
				return err
			}
		}

		patch.applyFields(inv)
		inv.Recalculate()

		var extra types.Money
		if patch.AmountReceived != nil {
			want := *patch.AmountReceived
			if want < inv.AmountReceived {
				return apperror.NewValidation("amount received cannot be reduced; delete the payment instead").
					WithDetail("field", "amount_received").
					WithDetail("amount_received", inv.AmountReceived)
			}
			extra = want - inv.AmountReceived
		}
		if inv.GrandTotal < inv.AmountReceived+extra {
			return apperror.NewValidation("grand total cannot be less than amount received").
				WithDetail("grand_total", inv.GrandTotal).
				WithDetail("amount_received", inv.AmountReceived+extra)
		}
		if err := inv.validateTotals(); err != nil {
			return err
		}

		inv.UpdatedAt = s.Clock.Now()
		if err := s.Repo.Update(ctx, scope, inv); err != nil {
			return fmt.Errorf("update invoice: %w", err)
		}

		reason := "invoice updated " + inv.InvoiceNumber
		if inv.CustomerID != oldCustomer {
			if err := s.Parties.Receivable(ctx, scope, oldCustomer, oldGrand.Neg(), reason); err != nil {
				return err
			}
			if err := s.Parties.Receivable(ctx, scope, inv.CustomerID, inv.GrandTotal, reason); err != nil {
				return err
			}
		} else if err := s.Parties.Receivable(ctx, scope, inv.CustomerID, inv.GrandTotal-oldGrand, reason); err != nil {
			return err
		}

		if extra > 0 {
			mode := ""
			if patch.PaymentMode != nil {
				mode = *patch.PaymentMode
			}
			if err := s.recordPayment(ctx, scope, inv, PaymentInput{
				Amount:      extra,
				PaymentMode: mode,
				Notes:       "Payment recorded on invoice update " + inv.InvoiceNumber,
			}); err != nil {
				return err
			}
		}

		out, err = s.Repo.Get(ctx, scope, invoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice updated", "id", out.ID, "number", out.InvoiceNumber, "grand_total", out.GrandTotal)
	return out, nil
}

// replaceLines returns the old lines to stock, then validates and deducts the new ones.
// A duplicate whose stock is still pending has nothing to return.
func (s *Service) replaceLines(ctx context.Context, scope account.Scope, inv *Invoice, lines []Line) error {
	if !inv.StockPending {
		reverted := stock.Inbound(inv.Requirements(), "Stock reverted for invoice update: "+inv.InvoiceNumber)
		if _, err := s.Ledger.Apply(ctx, scope, inv.Ref(), reverted); err != nil {
			return fmt.Errorf("revert invoice stock: %w", err)
		}
	}

	next := requirements(lines)
	if err := s.Ledger.Check(ctx, scope, next); err != nil {
		return err
	}
	if _, err := s.Ledger.Apply(ctx, scope, inv.Ref(), stock.Outbound(next, "Stock deducted for invoice update: "+inv.InvoiceNumber)); err != nil {
		return err
	}

	inv.Items = append([]Line(nil), lines...)
	inv.StockPending = false
	return nil
}

// Cancel soft-deletes the invoice: stock is returned, the outstanding
// balance is removed from the customer, payments are marked cancelled and
// the source quotation is reopened.
func (s *Service) Cancel(ctx context.Context, scope account.Scope, invoiceID string) (*Invoice, error) {
	var out *Invoice
	err := s.withLock(ctx, scope, invoiceID, func(ctx context.Context) error {
		inv, err := s.Repo.Get(ctx, scope, invoiceID)
		if err != nil {
			return err
		}
		if inv.IsCancelled() {
			return apperror.NewConflict("Invoice is already cancelled").WithDetail("invoice_number", inv.InvoiceNumber)
		}

		if !inv.StockPending {
			moves := stock.Inbound(inv.Requirements(), "Stock reverted due to invoice cancellation: "+inv.InvoiceNumber)
			if _, err := s.Ledger.Apply(ctx, scope, inv.Ref(), moves); err != nil {
				return fmt.Errorf("revert invoice stock: %w", err)
			}
		}

		if err := s.Parties.Receivable(ctx, scope, inv.CustomerID, inv.BalanceAmount.Neg(), "invoice cancelled "+inv.InvoiceNumber); err != nil {
			return err
		}

		inv.Status = StatusCancelled
		inv.BalanceAmount = 0
		inv.UpdatedAt = s.Clock.Now()
		if err := s.Repo.Update(ctx, scope, inv); err != nil {
			return fmt.Errorf("cancel invoice: %w", err)
		}

		if err := s.Payments.CancelForInvoice(ctx, scope, inv.ID); err != nil {
			return err
		}
		if inv.QuotationID != "" && s.Quotations != nil {
			if err := s.Quotations.Restore(ctx, scope, inv.QuotationID); err != nil && !apperror.IsNotFound(err) {
				return fmt.Errorf("restore quotation: %w", err)
			}
		}

		out = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice cancelled", "id", out.ID, "number", out.InvoiceNumber)
	return out, nil
}

// AddPayment records a payment against the invoice's outstanding balance.
func (s *Service) AddPayment(ctx context.Context, scope account.Scope, invoiceID string, in PaymentInput) (*Invoice, error) {
	if !in.Amount.IsPositive() {
		return nil, apperror.NewValidation("Payment amount must be greater than 0").WithDetail("field", "amount")
	}

	var out *Invoice
	err := s.withLock(ctx, scope, invoiceID, func(ctx context.Context) error {
		inv, err := s.Repo.Get(ctx, scope, invoiceID)
		if err != nil {
			return err
		}
		if inv.IsCancelled() {
			return apperror.NewInvalidState("invoice", inv.Status, "add a payment to")
		}
		if in.Amount > inv.BalanceAmount {
			return apperror.NewValidation(fmt.Sprintf("Payment amount exceeds balance. Balance: %s", inv.BalanceAmount)).
				WithDetail("balance_amount", inv.BalanceAmount).
				WithDetail("amount", in.Amount)
		}

		if in.PaymentDate.IsZero() {
			in.PaymentDate = s.Clock.Now()
		}
		if err := s.recordPayment(ctx, scope, inv, in); err != nil {
			return err
		}

		out, err = s.Repo.Get(ctx, scope, invoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice payment added",
		"id", out.ID, "number", out.InvoiceNumber, "amount", in.Amount, "payment_status", out.PaymentStatus)
	return out, nil
}

// Duplicate copies an invoice under a new number dated today. Stock is
// validated but not deducted; Finalize deducts it.
func (s *Service) Duplicate(ctx context.Context, scope account.Scope, invoiceID string) (*Invoice, error) {
	if err := s.Guard.CheckNext(ctx, scope, plan.ResourceInvoices); err != nil {
		return nil, err
	}

	src, err := s.Repo.Get(ctx, scope, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := s.Ledger.Check(ctx, scope, src.Requirements()); err != nil {
		return nil, err
	}

	dup := *src
	dup.Items = append([]Line(nil), src.Items...)
	dup.QuotationID = ""
	dup.QuotationNumber = ""
	dup.Status = StatusActive
	dup.AmountReceived = 0
	dup.StockPending = true
	dup.Recalculate()

	err = s.TxManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.Sequence.Next(ctx, scope, sequence.Invoice, s.Repo)
		if err != nil {
			return fmt.Errorf("generate invoice number: %w", err)
		}
		now := s.Clock.Now()
		dup.ID = id.New()
		dup.InvoiceNumber = number
		dup.InvoiceDate = clock.StartOfDay(now)
		dup.CreatedAt = now
		dup.UpdatedAt = now

		if err := s.Repo.Create(ctx, scope, &dup); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		return s.Parties.Receivable(ctx, scope, dup.CustomerID, dup.GrandTotal, "invoice "+number)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice duplicated", "id", dup.ID, "number", dup.InvoiceNumber, "source", src.InvoiceNumber)
	return &dup, nil
}

// Finalize deducts the stock of a duplicated invoice.
func (s *Service) Finalize(ctx context.Context, scope account.Scope, invoiceID string) (*Invoice, error) {
	var out *Invoice
	err := s.withLock(ctx, scope, invoiceID, func(ctx context.Context) error {
		inv, err := s.Repo.Get(ctx, scope, invoiceID)
		if err != nil {
			return err
		}
		if inv.IsCancelled() {
			return apperror.NewInvalidState("invoice", inv.Status, "finalize")
		}
		if !inv.StockPending {
			return apperror.NewConflict("invoice stock is already deducted").WithDetail("invoice_number", inv.InvoiceNumber)
		}

		if err := s.Ledger.Check(ctx, scope, inv.Requirements()); err != nil {
			return err
		}
		if _, err := s.Ledger.Apply(ctx, scope, inv.Ref(), stock.Outbound(inv.Requirements(), "Sold via invoice "+inv.InvoiceNumber)); err != nil {
			return err
		}

		inv.StockPending = false
		inv.UpdatedAt = s.Clock.Now()
		if err := s.Repo.Update(ctx, scope, inv); err != nil {
			return fmt.Errorf("finalize invoice: %w", err)
		}
		out = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice finalized", "id", out.ID, "number", out.InvoiceNumber)
	return out, nil
}

// Stats summarizes active invoices: overall, created today and this month, and by payment status.
func (s *Service) Stats(ctx context.Context, scope account.Scope) (*Stats, error) {
	now := s.Clock.Now()
	today := clock.StartOfDay(now)
	month := clock.StartOfMonth(now)

	all, err := s.Repo.Summarize(ctx, scope, ListFilter{})
	if err != nil {
		return nil, err
	}
	day, err := s.Repo.Summarize(ctx, scope, ListFilter{CreatedAt: domain.DateRange{From: &today, To: &now}})
	if err != nil {
		return nil, err
	}
	mon, err := s.Repo.Summarize(ctx, scope, ListFilter{CreatedAt: domain.DateRange{From: &month}})
	if err != nil {
		return nil, err
	}

	st := &Stats{
		TotalInvoices:       all.Count,
		TodayInvoices:       day.Count,
		TodayTotal:          day.GrandTotal,
		MonthInvoices:       mon.Count,
		MonthTotal:          mon.GrandTotal,
		PendingAmount:       all.Balance,
		PaymentStatusCounts: make(map[balance.PaymentStatus]int64, 3),
	}
	for _, ps := range []balance.PaymentStatus{balance.StatusUnpaid, balance.StatusPartial, balance.StatusPaid} {
		sum, err := s.Repo.Summarize(ctx, scope, ListFilter{PaymentStatus: ps})
		if err != nil {
			return nil, err
		}
		st.PaymentStatusCounts[ps] = sum.Count
	}
	return st, nil
}
