package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/documents/invoice"
)

// InvoiceRepo implements invoice.Repository. Lines are stored as a JSONB array.
type InvoiceRepo struct {
	t table[invoice.Invoice]
}

// NewInvoiceRepo creates an invoice repository.
func NewInvoiceRepo(txm *TxManager) *InvoiceRepo {
	return &InvoiceRepo{t: newTable[invoice.Invoice](txm, "invoices", "invoice")}
}

var activeInvoice = squirrel.NotEq{"status": invoice.StatusCancelled}

func (r *InvoiceRepo) Create(ctx context.Context, scope account.Scope, inv *invoice.Invoice) error {
	return r.t.insert(ctx, scope, inv)
}

func (r *InvoiceRepo) Get(ctx context.Context, scope account.Scope, id string) (*invoice.Invoice, error) {
	return r.t.get(ctx, scope, id)
}

func (r *InvoiceRepo) GetByNumber(ctx context.Context, scope account.Scope, number string) (*invoice.Invoice, error) {
	return r.t.getWhere(ctx, scope, squirrel.Eq{"invoice_number": number}, number)
}

func (r *InvoiceRepo) Update(ctx context.Context, scope account.Scope, inv *invoice.Invoice) error {
	return r.t.update(ctx, scope, inv.ID, inv, "created_at")
}

func (r *InvoiceRepo) filter(f invoice.ListFilter) conds {
	var where conds
	switch f.Status {
	case "":
		where.add(activeInvoice)
	case invoice.StatusAll:
	default:
		where.add(squirrel.Eq{"status": f.Status})
	}
	where.eqIf("customer_id", f.CustomerID)
	where.eqIf("payment_status", string(f.PaymentStatus))
	where.rangeOf("invoice_date", f.InvoiceDate)
	where.rangeOf("created_at", f.CreatedAt)
	if !f.DueDate.IsEmpty() {
		where.add(squirrel.NotEq{"due_date": nil})
		where.rangeOf("due_date", f.DueDate)
	}
	if f.OverdueAsOf != nil {
		where.add(squirrel.Gt{"balance_amount": 0})
		where.add(squirrel.Lt{"due_date": *f.OverdueAsOf})
	}
	where.add(search(f.Search, "invoice_number", "customer_name", "customer_code"))
	return where
}

func (r *InvoiceRepo) List(ctx context.Context, scope account.Scope, f invoice.ListFilter) ([]*invoice.Invoice, int64, error) {
	return r.t.list(ctx, scope, r.filter(f), []string{"created_at DESC", "id DESC"}, f.ListFilter)
}

func (r *InvoiceRepo) CountActive(ctx context.Context, scope account.Scope) (int64, error) {
	return r.t.count(ctx, scope, activeInvoice)
}

func (r *InvoiceRepo) Summarize(ctx context.Context, scope account.Scope, f invoice.ListFilter) (invoice.Summary, error) {
	q := Builder().
		Select("COUNT(*)", "COALESCE(SUM(grand_total), 0)::bigint", "COALESCE(SUM(balance_amount), 0)::bigint").
		From(r.t.name).
		Where(r.t.scoped(scope))
	for _, c := range r.filter(f) {
		q = q.Where(c)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return invoice.Summary{}, fmt.Errorf("build summary: %w", err)
	}

	var (
		sum          invoice.Summary
		total, owing int64
	)
	if err := r.t.querier(ctx).QueryRow(ctx, sql, args...).Scan(&sum.Count, &total, &owing); err != nil {
		return invoice.Summary{}, fmt.Errorf("summarize invoices: %w", err)
	}
	sum.GrandTotal, sum.Balance = types.Money(total), types.Money(owing)
	return sum, nil
}

func (r *InvoiceRepo) DailyTotals(ctx context.Context, scope account.Scope, from, to time.Time) (map[string]types.Money, error) {
	return r.t.sumBy(ctx, Builder().
		Select(
			"to_char(invoice_date AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS key",
			"SUM(grand_total)::bigint AS total",
		).
		From(r.t.name).
		Where(r.t.scoped(scope)).
		Where(activeInvoice).
		Where(squirrel.GtOrEq{"invoice_date": from}).
		Where(squirrel.Lt{"invoice_date": to}).
		GroupBy("1"))
}

// TopItems unnests the line array. Scaled integers are rebuilt from the
// decimal JSON encoding of Quantity and Money.
func (r *InvoiceRepo) TopItems(ctx context.Context, scope account.Scope, limit int) ([]invoice.ItemSales, error) {
	q := Builder().
		Select(
			"l->>'item_id' AS item_id",
			"(array_agg(l->>'item_name' ORDER BY i.created_at))[1] AS item_name",
			"SUM(round((l->>'qty')::numeric * 10000))::bigint AS qty",
			"SUM(round((l->>'total')::numeric * 100))::bigint AS revenue",
		).
		From(r.t.name + " i, jsonb_array_elements(i.items) AS l").
		Where(squirrel.Eq{"i.account_id": scope.ID()}).
		Where(squirrel.NotEq{"i.status": invoice.StatusCancelled}).
		GroupBy("l->>'item_id'").
		OrderBy("revenue DESC", "MIN(i.created_at)")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var rows []invoice.ItemSales
	if err := pgxscan.Select(ctx, r.t.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("top items: %w", err)
	}
	return rows, nil
}

func (r *InvoiceRepo) SumActiveByCustomer(ctx context.Context, scope account.Scope) (map[string]types.Money, error) {
	return r.t.sumBy(ctx, Builder().
		Select("customer_id AS key", "SUM(grand_total)::bigint AS total").
		From(r.t.name).
		Where(r.t.scoped(scope)).
		Where(activeInvoice).
		GroupBy("customer_id"))
}

func (r *InvoiceRepo) LatestNumber(ctx context.Context, scope account.Scope) (string, error) {
	return r.t.latestNumber(ctx, scope, "invoice_number")
}

func (r *InvoiceRepo) CountAll(ctx context.Context, scope account.Scope) (int64, error) {
	return r.t.count(ctx, scope)
}

var _ invoice.Repository = (*InvoiceRepo)(nil)
