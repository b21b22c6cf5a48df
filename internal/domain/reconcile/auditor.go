// Package reconcile recomputes cached balances and stock from source records
// and reports where the cached values drifted.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/clock"
	"weavebooks/internal/core/tx"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain"
	"weavebooks/internal/domain/catalogs/customer"
	"weavebooks/internal/domain/catalogs/item"
	"weavebooks/internal/domain/catalogs/weaver"
	"weavebooks/internal/domain/payments/payment"
	"weavebooks/pkg/logger"
)

// Customers is the customer store as seen by the auditor.
type Customers interface {
	List(ctx context.Context, scope account.Scope, filter customer.ListFilter) ([]*customer.Customer, int64, error)
	SetBalance(ctx context.Context, scope account.Scope, id string, value types.Money) error
}

// Weavers is the weaver store as seen by the auditor.
type Weavers interface {
	List(ctx context.Context, scope account.Scope, filter weaver.ListFilter) ([]*weaver.Weaver, int64, error)
	SetBalance(ctx context.Context, scope account.Scope, id string, value types.Money) error
}

// Items is the item store as seen by the auditor.
type Items interface {
	List(ctx context.Context, scope account.Scope, filter item.ListFilter) ([]*item.Item, int64, error)
	SetStock(ctx context.Context, scope account.Scope, id string, value types.Quantity) error
}

// Sources are the aggregates the projections are recomputed from.
type Sources struct {
	Invoices interface {
		SumActiveByCustomer(ctx context.Context, scope account.Scope) (map[string]types.Money, error)
	}
	Payments interface {
		SumCompletedByParty(ctx context.Context, scope account.Scope, t payment.Type) (map[string]types.Money, error)
	}
	Bills interface {
		SumByWeaver(ctx context.Context, scope account.Scope) (map[string]types.Money, error)
	}
	VendorPayments interface {
		SumSettledByWeaver(ctx context.Context, scope account.Scope) (map[string]types.Money, error)
	}
	Movements interface {
		NetByItem(ctx context.Context, scope account.Scope) (map[string]types.Quantity, error)
	}
	// Tx, when set, runs a report-only audit in one read-only transaction
	// (a consistent snapshot) and a repairing audit in a writable one.
	Tx tx.Manager
}

// Kinds of drifting records.
const (
	KindCustomer = "customer"
	KindWeaver   = "weaver"
	KindItem     = "item"
)

// Drift is one cached value that disagrees with its recomputation.
type Drift struct {
	Kind     string          `json:"kind"`
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Cached   decimal.Decimal `json:"cached"`
	Expected decimal.Decimal `json:"expected"`
	Repaired bool            `json:"repaired"`
}

// Report is the outcome of one run.
type Report struct {
	AccountID string    `json:"account_id"`
	CheckedAt time.Time `json:"checked_at"`
	Customers int       `json:"customers_checked"`
	Weavers   int       `json:"weavers_checked"`
	Items     int       `json:"items_checked"`
	Drifts    []Drift   `json:"drifts"`
}

// Clean reports whether nothing drifted.
func (r *Report) Clean() bool { return len(r.Drifts) == 0 }

// Count returns the number of drifts of kind.
func (r *Report) Count(kind string) int {
	n := 0
	for _, d := range r.Drifts {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Options control a run.
type Options struct {
	// Repair overwrites drifted cached values with the recomputed ones.
	Repair bool
}

// Auditor recomputes party balances and item stock.
type Auditor struct {
	customers Customers
	weavers   Weavers
	items     Items
	src       Sources
	clock     clock.Clock
}

// NewAuditor creates an Auditor.
func NewAuditor(customers Customers, weavers Weavers, items Items, src Sources, clk clock.Clock) *Auditor {
	return &Auditor{customers: customers, weavers: weavers, items: items, src: src, clock: clk}
}

// Run checks every customer, weaver and item of the account.
func (a *Auditor) Run(ctx context.Context, scope account.Scope, opts Options) (*Report, error) {
	rep := &Report{AccountID: scope.ID(), CheckedAt: a.clock.Now(), Drifts: []Drift{}}

	check := func(ctx context.Context) error {
		if err := a.checkCustomers(ctx, scope, opts, rep); err != nil {
			return fmt.Errorf("reconcile customers: %w", err)
		}
		if err := a.checkWeavers(ctx, scope, opts, rep); err != nil {
			return fmt.Errorf("reconcile weavers: %w", err)
		}
		if err := a.checkItems(ctx, scope, opts, rep); err != nil {
			return fmt.Errorf("reconcile items: %w", err)
		}
		return nil
	}
	if err := a.inTx(ctx, opts.Repair, check); err != nil {
		return nil, err
	}

	if rep.Clean() {
		logger.Info(ctx, "reconciliation clean",
			"customers", rep.Customers, "weavers", rep.Weavers, "items", rep.Items)
	} else {
		logger.Warn(ctx, "reconciliation found drift", "drifts", len(rep.Drifts), "repair", opts.Repair)
	}
	return rep, nil
}

func (a *Auditor) inTx(ctx context.Context, write bool, fn func(ctx context.Context) error) error {
	if a.src.Tx == nil {
		return fn(ctx)
	}
	if write {
		return a.src.Tx.RunInTransaction(ctx, fn)
	}
	if ro, ok := a.src.Tx.(tx.ReadOnlyManager); ok {
		return ro.ReadOnly(ctx, fn)
	}
	return fn(ctx)
}

func (a *Auditor) checkCustomers(ctx context.Context, scope account.Scope, opts Options, rep *Report) error {
	invoiced, err := a.src.Invoices.SumActiveByCustomer(ctx, scope)
	if err != nil {
		return err
	}
	received, err := a.src.Payments.SumCompletedByParty(ctx, scope, payment.TypeReceive)
	if err != nil {
		return err
	}

	return eachPage(func(page domain.ListFilter) (int, error) {
		list, _, err := a.customers.List(ctx, scope, customer.ListFilter{ListFilter: page, IncludeInactive: true})
		if err != nil {
			return 0, err
		}
		for _, c := range list {
			rep.Customers++
			want := c.OpeningBalance + invoiced[c.ID] - received[c.ID]
			if want == c.CurrentBalance {
				continue
			}
			d := Drift{Kind: KindCustomer, ID: c.ID, Name: c.Name, Cached: c.CurrentBalance.Decimal(), Expected: want.Decimal()}
			if opts.Repair {
				if err := a.customers.SetBalance(ctx, scope, c.ID, want); err != nil {
					return 0, err
				}
				d.Repaired = true
				logger.Warn(ctx, "customer balance repaired", "id", c.ID, "cached", c.CurrentBalance, "expected", want)
			}
			rep.Drifts = append(rep.Drifts, d)
		}
		return len(list), nil
	})
}

func (a *Auditor) checkWeavers(ctx context.Context, scope account.Scope, opts Options, rep *Report) error {
	billed, err := a.src.Bills.SumByWeaver(ctx, scope)
	if err != nil {
		return err
	}
	settled, err := a.src.VendorPayments.SumSettledByWeaver(ctx, scope)
	if err != nil {
		return err
	}
	paid, err := a.src.Payments.SumCompletedByParty(ctx, scope, payment.TypePay)
	if err != nil {
		return err
	}

	return eachPage(func(page domain.ListFilter) (int, error) {
		list, _, err := a.weavers.List(ctx, scope, weaver.ListFilter{ListFilter: page, IncludeInactive: true})
		if err != nil {
			return 0, err
		}
		for _, w := range list {
			rep.Weavers++
			want := w.OpeningBalance + billed[w.ID] - settled[w.ID] - paid[w.ID]
			if want == w.CurrentBalance {
				continue
			}
			d := Drift{Kind: KindWeaver, ID: w.ID, Name: w.Name, Cached: w.CurrentBalance.Decimal(), Expected: want.Decimal()}
			if opts.Repair {
				if err := a.weavers.SetBalance(ctx, scope, w.ID, want); err != nil {
					return 0, err
				}
				d.Repaired = true
				logger.Warn(ctx, "weaver balance repaired", "id", w.ID, "cached", w.CurrentBalance, "expected", want)
			}
			rep.Drifts = append(rep.Drifts, d)
		}
		return len(list), nil
	})
}

func (a *Auditor) checkItems(ctx context.Context, scope account.Scope, opts Options, rep *Report) error {
	net, err := a.src.Movements.NetByItem(ctx, scope)
	if err != nil {
		return err
	}

	return eachPage(func(page domain.ListFilter) (int, error) {
		list, _, err := a.items.List(ctx, scope, item.ListFilter{ListFilter: page, IncludeInactive: true})
		if err != nil {
			return 0, err
		}
		for _, it := range list {
			rep.Items++
			want := it.OpeningStock + net[it.ID]
			if want == it.CurrentStock {
				continue
			}
			d := Drift{Kind: KindItem, ID: it.ID, Name: it.Name, Cached: it.CurrentStock.Decimal(), Expected: want.Decimal()}
			if opts.Repair {
				if err := a.items.SetStock(ctx, scope, it.ID, want); err != nil {
					return 0, err
				}
				d.Repaired = true
				logger.Warn(ctx, "item stock repaired", "id", it.ID, "cached", it.CurrentStock, "expected", want)
			}
			rep.Drifts = append(rep.Drifts, d)
		}
		return len(list), nil
	})
}

// eachPage calls fn with consecutive pages until one comes back short.
func eachPage(fn func(page domain.ListFilter) (int, error)) error {
	page := domain.ListFilter{Limit: domain.MaxLimit}
	for {
		n, err := fn(page)
		if err != nil {
			return err
		}
		if n < page.Limit {
			return nil
		}
		page.Offset += n
	}
}
