// Package app wires repositories into the domain services. It is the
// composition root shared by the server, the worker and integration tests.
package app

import (
	"context"
	"time"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/clock"
	"weavebooks/internal/core/lock"
	"weavebooks/internal/core/numerator"
	"weavebooks/internal/core/tx"
	"weavebooks/internal/domain"
	"weavebooks/internal/domain/balance"
	"weavebooks/internal/domain/catalogs/category"
	"weavebooks/internal/domain/catalogs/customer"
	"weavebooks/internal/domain/catalogs/item"
	"weavebooks/internal/domain/catalogs/weaver"
	"weavebooks/internal/domain/documents/invoice"
	"weavebooks/internal/domain/documents/purchase_bill"
	"weavebooks/internal/domain/documents/purchase_order"
	"weavebooks/internal/domain/documents/quotation"
	"weavebooks/internal/domain/payments/payment"
	"weavebooks/internal/domain/payments/vendor_payment"
	"weavebooks/internal/domain/plan"
	"weavebooks/internal/domain/reconcile"
	"weavebooks/internal/domain/registers/stock"
	"weavebooks/internal/domain/reports"
	"weavebooks/internal/domain/sequence"
)

// DefaultLockTTL bounds how long a document lock may be held.
const DefaultLockTTL = 30 * time.Second

// Repositories is one storage backend.
type Repositories struct {
	TxManager      tx.Manager
	Accounts       plan.AccountRepository
	Counter        numerator.Counter
	Customers      customer.Repository
	Categories     category.Repository
	Weavers        weaver.Repository
	Items          item.Repository
	Stock          stock.Repository
	Invoices       invoice.Repository
	Quotations     quotation.Repository
	PurchaseOrders purchase_order.Repository
	PurchaseBills  purchase_bill.Repository
	Payments       payment.Repository
	VendorPayments vendor_payment.Repository
}

// Options tune the wiring. Zero values get defaults.
type Options struct {
	Locker  lock.Locker
	LockTTL time.Duration
	Clock   clock.Clock
}

// Services are the domain services of one process.
type Services struct {
	Repos Repositories
	Clock clock.Clock

	Guard          *plan.Guard
	Sequence       *sequence.Generator
	Stock          *stock.Ledger
	Parties        *balance.PartyLedger
	Customers      *customer.Service
	Categories     *category.Service
	Weavers        *weaver.Service
	Items          *item.Service
	Quotations     *quotation.Service
	Invoices       *invoice.Service
	Payments       *payment.Service
	VendorPayments *vendor_payment.Service
	PurchaseOrders *purchase_order.Service
	PurchaseBills  *purchase_bill.Service
	Reports        *reports.Service
	Auditor        *reconcile.Auditor
}

// New builds every service over r.
func New(r Repositories, opts Options) *Services {
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Locker == nil {
		opts.Locker = lock.NewLocal(0)
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = DefaultLockTTL
	}
	clk := opts.Clock

	guard := plan.NewGuard(r.Accounts)
	guard.Register(plan.ResourceInvoices, r.Invoices.CountActive)
	guard.Register(plan.ResourceItems, r.Items.CountActive)
	guard.Register(plan.ResourceQuotations, r.Quotations.CountAll)

	seq := sequence.NewGenerator(r.Counter)
	ledger := stock.NewLedger(r.Items, r.Stock, clk)
	parties := balance.NewPartyLedger(r.Customers, r.Weavers)

	s := &Services{Repos: r, Clock: clk, Guard: guard, Sequence: seq, Stock: ledger, Parties: parties}

	s.Customers = customer.NewService(r.Customers, seq, r.TxManager, clk)
	s.Weavers = weaver.NewService(r.Weavers, seq, r.TxManager, clk)
	s.Items = item.NewService(r.Items, ledger, guard, r.TxManager, clk)
	s.Categories = category.NewService(r.Categories, itemsInCategory(r.Items), r.TxManager, clk)
	s.Quotations = quotation.NewService(r.Quotations, r.Customers, guard, seq, r.TxManager, clk)

	s.Payments = payment.NewService(r.Payments, seq, parties,
		invoice.NewSettler(r.Invoices, clk), opts.Locker, opts.LockTTL, r.TxManager, clk)
	s.VendorPayments = vendor_payment.NewService(r.VendorPayments, seq, parties,
		purchase_bill.NewSettler(r.PurchaseBills, clk), opts.Locker, opts.LockTTL, r.TxManager, clk)

	s.Invoices = invoice.NewService(invoice.Deps{
		Repo:       r.Invoices,
		Customers:  r.Customers,
		Ledger:     ledger,
		Parties:    parties,
		Payments:   s.Payments,
		Quotations: s.Quotations,
		Guard:      guard,
		Sequence:   seq,
		Locker:     opts.Locker,
		LockTTL:    opts.LockTTL,
		TxManager:  r.TxManager,
		Clock:      clk,
	})
	s.PurchaseOrders = purchase_order.NewService(r.PurchaseOrders, r.Weavers, ledger, seq,
		opts.Locker, opts.LockTTL, r.TxManager, clk)
	s.PurchaseBills = purchase_bill.NewService(purchase_bill.Deps{
		Repo:      r.PurchaseBills,
		Weavers:   r.Weavers,
		Orders:    r.PurchaseOrders,
		Ledger:    ledger,
		Parties:   parties,
		Sequence:  seq,
		Locker:    opts.Locker,
		LockTTL:   opts.LockTTL,
		TxManager: r.TxManager,
		Clock:     clk,
	})

	s.Reports = reports.NewService(reports.Deps{
		Invoices:   r.Invoices,
		Items:      r.Items,
		Weavers:    r.Weavers,
		Quotations: r.Quotations,
		Customers:  r.Customers,
		Categories: r.Categories,
		Bills:      r.PurchaseBills,
		Guard:      guard,
		Clock:      clk,
	})
	s.Auditor = reconcile.NewAuditor(r.Customers, r.Weavers, r.Items, reconcile.Sources{
		Invoices:       r.Invoices,
		Payments:       r.Payments,
		Bills:          r.PurchaseBills,
		VendorPayments: r.VendorPayments,
		Movements:      r.Stock,
		Tx:             r.TxManager,
	}, clk)
	return s
}

// itemsInCategory counts items of any status filed under a category.
func itemsInCategory(items item.Repository) category.ItemCounter {
	return func(ctx context.Context, scope account.Scope, categoryID string) (int64, error) {
		_, total, err := items.List(ctx, scope, item.ListFilter{
			ListFilter:      domain.ListFilter{Limit: 1},
			Category:        categoryID,
			IncludeInactive: true,
		})
		return total, err
	}
}
