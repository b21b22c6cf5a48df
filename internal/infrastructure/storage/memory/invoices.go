package memory

import (
	"context"
	"sort"
	"time"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/documents/invoice"
)

type invoiceRow struct{ *invoice.Invoice }

func (r invoiceRow) key() string { return r.ID }
func (r invoiceRow) clone() invoiceRow {
	cp := *r.Invoice
	cp.Items = append([]invoice.Line(nil), r.Items...)
	cp.DueDate = cloneTime(r.DueDate)
	return invoiceRow{&cp}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// InvoiceRepo implements invoice.Repository.
type InvoiceRepo struct{ s *Store }

// Invoices returns the invoice repository.
func (s *Store) Invoices() *InvoiceRepo { return &InvoiceRepo{s: s} }

func (r *InvoiceRepo) Create(ctx context.Context, scope account.Scope, inv *invoice.Invoice) error {
	return insert(ctx, r.s, r.s.invoices, scope, invoiceRow{inv})
}

func (r *InvoiceRepo) Get(ctx context.Context, scope account.Scope, id string) (*invoice.Invoice, error) {
	row, err := find(r.s, r.s.invoices, scope, id)
	if err != nil {
		return nil, err
	}
	return row.Invoice, nil
}

func (r *InvoiceRepo) GetByNumber(ctx context.Context, scope account.Scope, number string) (*invoice.Invoice, error) {
	rows := selectRows(r.s, r.s.invoices, scope, func(i invoiceRow) bool { return i.InvoiceNumber == number })
	if len(rows) == 0 {
		return nil, r.s.invoices.notFound(number)
	}
	return rows[0].Invoice, nil
}

func (r *InvoiceRepo) Update(ctx context.Context, scope account.Scope, inv *invoice.Invoice) error {
	return replace(ctx, r.s, r.s.invoices, scope, invoiceRow{inv}, nil)
}

func (r *InvoiceRepo) filter(scope account.Scope, f invoice.ListFilter) []invoiceRow {
	return selectRows(r.s, r.s.invoices, scope, func(i invoiceRow) bool {
		switch f.Status {
		case "":
			if i.IsCancelled() {
				return false
			}
		case invoice.StatusAll:
		default:
			if i.Status != f.Status {
				return false
			}
		}
		if f.CustomerID != "" && i.CustomerID != f.CustomerID {
			return false
		}
		if f.PaymentStatus != "" && i.PaymentStatus != f.PaymentStatus {
			return false
		}
		if !f.InvoiceDate.Contains(i.InvoiceDate) || !f.CreatedAt.Contains(i.CreatedAt) {
			return false
		}
		if !f.DueDate.IsEmpty() && (i.DueDate == nil || !f.DueDate.Contains(*i.DueDate)) {
			return false
		}
		if f.OverdueAsOf != nil && (i.BalanceAmount <= 0 || i.DueDate == nil || !i.DueDate.Before(*f.OverdueAsOf)) {
			return false
		}
		return matches(f.Search, i.InvoiceNumber, i.Name, i.Code)
	})
}

func (r *InvoiceRepo) List(ctx context.Context, scope account.Scope, f invoice.ListFilter) ([]*invoice.Invoice, int64, error) {
	rows := r.filter(scope, f)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	rows, total := page(rows, f.ListFilter)
	out := make([]*invoice.Invoice, len(rows))
	for i, inv := range rows {
		out[i] = inv.Invoice
	}
	return out, total, nil
}

func (r *InvoiceRepo) CountActive(ctx context.Context, scope account.Scope) (int64, error) {
	return int64(len(r.filter(scope, invoice.ListFilter{}))), nil
}

func (r *InvoiceRepo) Summarize(ctx context.Context, scope account.Scope, f invoice.ListFilter) (invoice.Summary, error) {
	var sum invoice.Summary
	for _, inv := range r.filter(scope, f) {
		sum.Count++
		sum.GrandTotal += inv.GrandTotal
		sum.Balance += inv.BalanceAmount
	}
	return sum, nil
}

func (r *InvoiceRepo) DailyTotals(ctx context.Context, scope account.Scope, from, to time.Time) (map[string]types.Money, error) {
	out := make(map[string]types.Money)
	for _, inv := range r.filter(scope, invoice.ListFilter{}) {
		if inv.InvoiceDate.Before(from) || !inv.InvoiceDate.Before(to) {
			continue
		}
		out[inv.InvoiceDate.UTC().Format("2006-01-02")] += inv.GrandTotal
	}
	return out, nil
}

func (r *InvoiceRepo) TopItems(ctx context.Context, scope account.Scope, limit int) ([]invoice.ItemSales, error) {
	byItem := make(map[string]*invoice.ItemSales)
	var order []string
	for _, inv := range r.filter(scope, invoice.ListFilter{}) {
		for _, l := range inv.Items {
			s, ok := byItem[l.ItemID]
			if !ok {
				s = &invoice.ItemSales{ItemID: l.ItemID, ItemName: l.ItemName}
				byItem[l.ItemID] = s
				order = append(order, l.ItemID)
			}
			s.Quantity += l.Quantity
			s.Revenue += l.Total
		}
	}
	out := make([]invoice.ItemSales, 0, len(order))
	for _, id := range order {
		out = append(out, *byItem[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Revenue > out[j].Revenue })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *InvoiceRepo) SumActiveByCustomer(ctx context.Context, scope account.Scope) (map[string]types.Money, error) {
	out := make(map[string]types.Money)
	for _, inv := range r.filter(scope, invoice.ListFilter{}) {
		out[inv.CustomerID] += inv.GrandTotal
	}
	return out, nil
}

func (r *InvoiceRepo) LatestNumber(ctx context.Context, scope account.Scope) (string, error) {
	return latest(r.s, r.s.invoices, scope, func(i invoiceRow) (string, time.Time) { return i.InvoiceNumber, i.CreatedAt }), nil
}

func (r *InvoiceRepo) CountAll(ctx context.Context, scope account.Scope) (int64, error) {
	return int64(len(selectRows(r.s, r.s.invoices, scope, nil))), nil
}

var _ invoice.Repository = (*InvoiceRepo)(nil)

