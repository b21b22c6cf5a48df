package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/balance"
	"weavebooks/internal/domain/documents/purchase_bill"
	"weavebooks/internal/domain/documents/purchase_order"
	"weavebooks/internal/domain/documents/quotation"
)

var newestFirst = []string{"created_at DESC", "id DESC"}

// QuotationRepo implements quotation.Repository.
type QuotationRepo struct {
	t table[quotation.Quotation]
}

// NewQuotationRepo creates a quotation repository.
func NewQuotationRepo(txm *TxManager) *QuotationRepo {
	return &QuotationRepo{t: newTable[quotation.Quotation](txm, "quotations", "quotation")}
}

func (r *QuotationRepo) Create(ctx context.Context, scope account.Scope, q *quotation.Quotation) error {
	return r.t.insert(ctx, scope, q)
}

func (r *QuotationRepo) Get(ctx context.Context, scope account.Scope, id string) (*quotation.Quotation, error) {
	return r.t.get(ctx, scope, id)
}

func (r *QuotationRepo) Update(ctx context.Context, scope account.Scope, q *quotation.Quotation) error {
	return r.t.update(ctx, scope, q.ID, q, "created_at")
}

func (r *QuotationRepo) Delete(ctx context.Context, scope account.Scope, id string) error {
	return r.t.deleteByID(ctx, scope, id)
}

func (r *QuotationRepo) List(ctx context.Context, scope account.Scope, f quotation.ListFilter) ([]*quotation.Quotation, int64, error) {
	var where conds
	where.eqIf("customer_id", f.CustomerID)
	where.eqIf("status", f.Status)
	where.add(search(f.Search, "quotation_number", "customer_name"))
	return r.t.list(ctx, scope, where, newestFirst, f.ListFilter)
}

func (r *QuotationRepo) CountByStatus(ctx context.Context, scope account.Scope, statuses ...string) (int64, error) {
	if len(statuses) == 0 {
		return 0, nil
	}
	return r.t.count(ctx, scope, squirrel.Eq{"status": statuses})
}

func (r *QuotationRepo) LatestNumber(ctx context.Context, scope account.Scope) (string, error) {
	return r.t.latestNumber(ctx, scope, "quotation_number")
}

func (r *QuotationRepo) CountAll(ctx context.Context, scope account.Scope) (int64, error) {
	return r.t.count(ctx, scope)
}

// PurchaseOrderRepo implements purchase_order.Repository.
type PurchaseOrderRepo struct {
	t table[purchase_order.PurchaseOrder]
}

// NewPurchaseOrderRepo creates a purchase order repository.
func NewPurchaseOrderRepo(txm *TxManager) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{t: newTable[purchase_order.PurchaseOrder](txm, "purchase_orders", "purchase_order")}
}

func (r *PurchaseOrderRepo) Create(ctx context.Context, scope account.Scope, po *purchase_order.PurchaseOrder) error {
	return r.t.insert(ctx, scope, po)
}

func (r *PurchaseOrderRepo) Get(ctx context.Context, scope account.Scope, id string) (*purchase_order.PurchaseOrder, error) {
	return r.t.get(ctx, scope, id)
}

func (r *PurchaseOrderRepo) Update(ctx context.Context, scope account.Scope, po *purchase_order.PurchaseOrder) error {
	return r.t.update(ctx, scope, po.ID, po, "created_at")
}

func (r *PurchaseOrderRepo) List(ctx context.Context, scope account.Scope, f purchase_order.ListFilter) ([]*purchase_order.PurchaseOrder, int64, error) {
	var where conds
	where.eqIf("weaver_id", f.WeaverID)
	where.eqIf("status", string(f.Status))
	where.add(search(f.Search, "po_number", "weaver_name"))
	return r.t.list(ctx, scope, where, newestFirst, f.ListFilter)
}

func (r *PurchaseOrderRepo) LatestNumber(ctx context.Context, scope account.Scope) (string, error) {
	return r.t.latestNumber(ctx, scope, "po_number")
}

func (r *PurchaseOrderRepo) CountAll(ctx context.Context, scope account.Scope) (int64, error) {
	return r.t.count(ctx, scope)
}

// PurchaseBillRepo implements purchase_bill.Repository.
type PurchaseBillRepo struct {
	t table[purchase_bill.PurchaseBill]
}

// NewPurchaseBillRepo creates a purchase bill repository.
func NewPurchaseBillRepo(txm *TxManager) *PurchaseBillRepo {
	return &PurchaseBillRepo{t: newTable[purchase_bill.PurchaseBill](txm, "purchase_bills", "purchase_bill")}
}

// withAttachments keeps the TEXT[] column non-null.
func withAttachments(b *purchase_bill.PurchaseBill) *purchase_bill.PurchaseBill {
	if b.Attachments != nil {
		return b
	}
	cp := *b
	cp.Attachments = []string{}
	return &cp
}

func (r *PurchaseBillRepo) Create(ctx context.Context, scope account.Scope, b *purchase_bill.PurchaseBill) error {
	return r.t.insert(ctx, scope, withAttachments(b))
}

func (r *PurchaseBillRepo) Get(ctx context.Context, scope account.Scope, id string) (*purchase_bill.PurchaseBill, error) {
	return r.t.get(ctx, scope, id)
}

func (r *PurchaseBillRepo) Update(ctx context.Context, scope account.Scope, b *purchase_bill.PurchaseBill) error {
	return r.t.update(ctx, scope, b.ID, withAttachments(b), "created_at")
}

func (r *PurchaseBillRepo) Delete(ctx context.Context, scope account.Scope, id string) error {
	return r.t.deleteByID(ctx, scope, id)
}

func (r *PurchaseBillRepo) List(ctx context.Context, scope account.Scope, f purchase_bill.ListFilter) ([]*purchase_bill.PurchaseBill, int64, error) {
	var where conds
	where.eqIf("weaver_id", f.WeaverID)
	where.eqIf("payment_status", string(f.PaymentStatus))
	where.add(search(f.Search, "bill_number", "weaver_name", "vendor_bill_number"))

	order := newestFirst
	if f.DueBefore != nil {
		where.add(squirrel.Eq{"payment_status": []string{string(balance.StatusUnpaid), string(balance.StatusPartial)}})
		where.add(squirrel.Lt{"due_date": *f.DueBefore})
		order = []string{"due_date", "created_at"}
	}
	return r.t.list(ctx, scope, where, order, f.ListFilter)
}

func (r *PurchaseBillRepo) SumByWeaver(ctx context.Context, scope account.Scope) (map[string]types.Money, error) {
	return r.t.sumBy(ctx, Builder().
		Select("weaver_id AS key", "SUM(total_amount)::bigint AS total").
		From(r.t.name).
		Where(r.t.scoped(scope)).
		GroupBy("weaver_id"))
}

func (r *PurchaseBillRepo) LatestNumber(ctx context.Context, scope account.Scope) (string, error) {
	return r.t.latestNumber(ctx, scope, "bill_number")
}

func (r *PurchaseBillRepo) CountAll(ctx context.Context, scope account.Scope) (int64, error) {
	return r.t.count(ctx, scope)
}

var (
	_ quotation.Repository      = (*QuotationRepo)(nil)
	_ purchase_order.Repository = (*PurchaseOrderRepo)(nil)
	_ purchase_bill.Repository  = (*PurchaseBillRepo)(nil)
)
