package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/clock"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain"
	"weavebooks/internal/domain/balance"
	"weavebooks/internal/domain/catalogs/item"
	"weavebooks/internal/domain/catalogs/weaver"
	"weavebooks/internal/domain/documents/invoice"
	"weavebooks/internal/domain/documents/quotation"
	"weavebooks/internal/domain/plan"
)

const (
	defaultTopItems      = 5
	defaultRecentInvoice = 10
	activityPerSource    = 5
	activityLimit        = 6
	dayKeyLayout         = "2006-01-02"
)

// Service builds dashboard views.
type Service struct {
	invoices   Invoices
	items      Items
	weavers    Weavers
	quotations Quotations
	customers  Customers
	categories Categories
	bills      Bills
	guard      *plan.Guard
	clock      clock.Clock
}

// Deps are the stores the dashboard reads.
type Deps struct {
	Invoices   Invoices
	Items      Items
	Weavers    Weavers
	Quotations Quotations
	Customers  Customers
	Categories Categories
	Bills      Bills
	Guard      *plan.Guard
	Clock      clock.Clock
}

// NewService creates a reports service.
func NewService(d Deps) *Service {
	return &Service{
		invoices:   d.Invoices,
		items:      d.Items,
		weavers:    d.Weavers,
		quotations: d.Quotations,
		customers:  d.Customers,
		categories: d.Categories,
		bills:      d.Bills,
		guard:      d.Guard,
		clock:      d.Clock,
	}
}

// Stats returns the dashboard headline. The revenue series is included only
// for plans with the reports feature.
func (s *Service) Stats(ctx context.Context, scope account.Scope, q StatsQuery) (*Stats, error) {
	days := q.Days
	if days <= 0 {
		days = DefaultDays
	}
	if days > MaxDays {
		days = MaxDays
	}

	p, err := s.guard.PlanOf(ctx, scope)
	if err != nil {
		return nil, err
	}

	out := &Stats{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		filter := invoice.ListFilter{}
		if q.From != nil && q.To != nil {
			filter.InvoiceDate = domain.DateRange{From: q.From, To: q.To}
		}
		sum, err := s.invoices.Summarize(gctx, scope, filter)
		if err != nil {
			return fmt.Errorf("summarize invoices: %w", err)
		}
		out.TotalSales, out.Receivables = sum.GrandTotal, sum.Balance
		return nil
	})
	g.Go(func() error {
		v, err := s.weavers.TotalActiveBalance(gctx, scope)
		if err != nil {
			return fmt.Errorf("sum payables: %w", err)
		}
		out.Payables = v
		return nil
	})
	g.Go(func() error {
		sum, err := s.items.Summary(gctx, scope)
		if err != nil {
			return fmt.Errorf("summarize items: %w", err)
		}
		out.InventoryValue, out.LowStockCount = sum.StockValue, sum.LowStockCount
		return nil
	})
	g.Go(func() error {
		n, err := s.quotations.CountByStatus(gctx, scope, quotation.PendingStatuses...)
		if err != nil {
			return fmt.Errorf("count pending quotations: %w", err)
		}
		out.QuotePending = n
		return nil
	})
	if p.Features[plan.FeatureReports] {
		g.Go(func() error {
			revenue, labels, err := s.revenueSeries(gctx, scope, days)
			if err != nil {
				return err
			}
			out.RecentRevenue, out.DaysLabels = revenue, labels
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// revenueSeries returns one total per day ending today, zero for days without sales.
func (s *Service) revenueSeries(ctx context.Context, scope account.Scope, days int) ([]types.Money, []string, error) {
	today := clock.StartOfDay(s.clock.Now())
	from := today.AddDate(0, 0, -(days - 1))
	totals, err := s.invoices.DailyTotals(ctx, scope, from, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, nil, fmt.Errorf("daily totals: %w", err)
	}

	revenue := make([]types.Money, 0, days)
	labels := make([]string, 0, days)
	for i := 0; i < days; i++ {
		day := from.AddDate(0, 0, i)
		revenue = append(revenue, totals[day.Format(dayKeyLayout)])
		if days > DefaultDays {
			labels = append(labels, day.Format("02 Jan"))
		} else {
			labels = append(labels, day.Format("Mon"))
		}
	}
	return revenue, labels, nil
}

// TopSellingItems ranks items by invoiced revenue.
func (s *Service) TopSellingItems(ctx context.Context, scope account.Scope, limit int) ([]invoice.ItemSales, error) {
	if err := s.guard.RequireFeature(ctx, scope, plan.FeatureReports); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultTopItems
	}
	rows, err := s.invoices.TopItems(ctx, scope, limit)
	if err != nil {
		return nil, fmt.Errorf("top items: %w", err)
	}
	if rows == nil {
		rows = []invoice.ItemSales{}
	}
	return rows, nil
}

// RecentInvoices lists the latest active invoices with their due state.
func (s *Service) RecentInvoices(ctx context.Context, scope account.Scope, limit int) ([]RecentInvoice, error) {
	if limit <= 0 {
		limit = defaultRecentInvoice
	}
	invs, _, err := s.invoices.List(ctx, scope, invoice.ListFilter{
		ListFilter: domain.ListFilter{Limit: limit},
	})
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	now := s.clock.Now()
	out := make([]RecentInvoice, 0, len(invs))
	for _, inv := range invs {
		row := RecentInvoice{
			InvoiceID:     inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			CustomerName:  inv.Name,
			GrandTotal:    inv.GrandTotal,
			BalanceAmount: inv.BalanceAmount,
			PaymentStatus: inv.PaymentStatus,
			DueDate:       inv.DueDate,
			InvoiceDate:   inv.InvoiceDate,
		}
		switch {
		case inv.PaymentStatus == balance.StatusPaid:
			row.Status, row.StatusColor = DuePaid, "success"
		case inv.DueDate != nil && inv.DueDate.Before(now):
			row.Status, row.StatusColor = DueOverdue, "danger"
		default:
			row.Status, row.StatusColor = DueOpen, "warning"
		}
		out = append(out, row)
	}
	return out, nil
}

// CalendarEvents groups active invoices falling due in the month by day (YYYY-MM-DD).
// Zero month or year means the current one.
func (s *Service) CalendarEvents(ctx context.Context, scope account.Scope, month, year int) (map[string][]CalendarEvent, error) {
	now := s.clock.Now()
	if month < 1 || month > 12 {
		month = int(now.Month())
	}
	if year <= 0 {
		year = now.Year()
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second)

	invs, _, err := s.invoices.List(ctx, scope, invoice.ListFilter{
		ListFilter: domain.ListFilter{Limit: domain.MaxLimit},
		DueDate:    domain.DateRange{From: &start, To: &end},
	})
	if err != nil {
		return nil, fmt.Errorf("list invoices due: %w", err)
	}

	events := make(map[string][]CalendarEvent)
	for _, inv := range invs {
		if inv.DueDate == nil {
			continue
		}
		key := inv.DueDate.UTC().Format(dayKeyLayout)
		events[key] = append(events[key], CalendarEvent{
			InvoiceID:     inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			CustomerName:  inv.Name,
			Amount:        inv.GrandTotal,
			PaymentStatus: inv.PaymentStatus,
		})
	}
	return events, nil
}

// Notifications returns the low stock and overdue invoice alerts that currently apply.
func (s *Service) Notifications(ctx context.Context, scope account.Scope) ([]Notification, error) {
	var (
		items   item.Summary
		overdue invoice.Summary
	)
	now := s.clock.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.items.Summary(gctx, scope)
		return err
	})
	g.Go(func() error {
		var err error
		overdue, err = s.invoices.Summarize(gctx, scope, invoice.ListFilter{OverdueAsOf: &now})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load notifications: %w", err)
	}

	out := []Notification{}
	if items.LowStockCount > 0 {
		out = append(out, Notification{
			ID:      "low_stock",
			Title:   "Low Stock Alert",
			Message: fmt.Sprintf("%d items are below reorder levels.", items.LowStockCount),
			Type:    "warning",
			Time:    "Just now",
		})
	}
	if overdue.Count > 0 {
		out = append(out, Notification{
			ID:      "overdue",
			Title:   "Overdue Invoices",
			Message: fmt.Sprintf("You have %d overdue invoices pending payment.", overdue.Count),
			Type:    "danger",
			Time:    "Today",
		})
	}
	return out, nil
}

// Activity merges the latest invoices, items and weavers, newest first.
func (s *Service) Activity(ctx context.Context, scope account.Scope) ([]Activity, error) {
	var invs []*invoice.Invoice
	var items []*item.Item
	var weavers []*weaver.Weaver
	page := domain.ListFilter{Limit: activityPerSource}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		invs, _, err = s.invoices.List(gctx, scope, invoice.ListFilter{ListFilter: page, Status: invoice.StatusAll})
		return err
	})
	g.Go(func() error {
		var err error
		items, _, err = s.items.List(gctx, scope, item.ListFilter{ListFilter: page, IncludeInactive: true, Newest: true})
		return err
	})
	g.Go(func() error {
		var err error
		weavers, _, err = s.weavers.List(gctx, scope, weaver.ListFilter{ListFilter: page, IncludeInactive: true, Newest: true})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load activity: %w", err)
	}

	out := make([]Activity, 0, len(invs)+len(items)+len(weavers))
	for _, inv := range invs {
		out = append(out, Activity{
			Type:  ActivityInvoice,
			Title: "Invoice " + inv.InvoiceNumber,
			Desc:  fmt.Sprintf("INR %s for %s", inv.GrandTotal, inv.Name),
			Time:  inv.CreatedAt,
			Icon:  "bi-receipt",
			Color: "success",
		})
	}
	for _, it := range items {
		out = append(out, Activity{
			Type:  ActivityItem,
			Title: "New Item Added",
			Desc:  it.Name + " added to inventory",
			Time:  it.CreatedAt,
			Icon:  "bi-box-seam",
			Color: "primary",
		})
	}
	for _, w := range weavers {
		out = append(out, Activity{
			Type:  ActivityWeaver,
			Title: "New Weaver Registered",
			Desc:  w.Name + " added to masters",
			Time:  w.CreatedAt,
			Icon:  "bi-person-plus",
			Color: "info",
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.After(out[j].Time) })
	if len(out) > activityLimit {
		out = out[:activityLimit]
	}
	return out, nil
}
