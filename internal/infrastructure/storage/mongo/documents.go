package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/balance"
	"weavebooks/internal/domain/documents/invoice"
	"weavebooks/internal/domain/documents/purchase_bill"
	"weavebooks/internal/domain/documents/purchase_order"
	"weavebooks/internal/domain/documents/quotation"
)

// InvoiceRepo implements invoice.Repository. Lines are embedded in the document.
type InvoiceRepo struct {
	c collection[invoice.Invoice]
}

func activeInvoices(scope account.Scope) bson.M {
	return scoped(scope, bson.M{"status": bson.M{"$ne": invoice.StatusCancelled}})
}

func (r *InvoiceRepo) Create(ctx context.Context, scope account.Scope, inv *invoice.Invoice) error {
	return r.c.insert(ctx, scope, inv.ID, inv)
}

func (r *InvoiceRepo) Get(ctx context.Context, scope account.Scope, id string) (*invoice.Invoice, error) {
	return r.c.get(ctx, scope, id)
}

func (r *InvoiceRepo) GetByNumber(ctx context.Context, scope account.Scope, number string) (*invoice.Invoice, error) {
	return r.c.findOne(ctx, scoped(scope, bson.M{"invoice_number": number}), number)
}

func (r *InvoiceRepo) Update(ctx context.Context, scope account.Scope, inv *invoice.Invoice) error {
	return r.c.replace(ctx, scope, inv.ID, inv)
}

func invoiceFilter(scope account.Scope, f invoice.ListFilter) bson.M {
	filter := scoped(scope, nil)
	switch f.Status {
	case "":
		filter["status"] = bson.M{"$ne": invoice.StatusCancelled}
	case invoice.StatusAll:
	default:
		filter["status"] = f.Status
	}
	eqIf(filter, "customer_id", f.CustomerID)
	eqIf(filter, "payment_status", string(f.PaymentStatus))
	rangeOf(filter, "invoice_date", f.InvoiceDate)
	rangeOf(filter, "created_at", f.CreatedAt)
	if !f.DueDate.IsEmpty() {
		op(filter, "due_date", "$exists", true)
		op(filter, "due_date", "$ne", nil)
		rangeOf(filter, "due_date", f.DueDate)
	}
	if f.OverdueAsOf != nil {
		filter["balance_amount"] = bson.M{"$gt": 0}
		op(filter, "due_date", "$lt", *f.OverdueAsOf)
	}
	search(filter, f.Search, "invoice_number", "customer_name", "customer_code")
	return filter
}

func (r *InvoiceRepo) List(ctx context.Context, scope account.Scope, f invoice.ListFilter) ([]*invoice.Invoice, int64, error) {
	return r.c.list(ctx, invoiceFilter(scope, f), byNewest(), f.ListFilter)
}

func (r *InvoiceRepo) CountActive(ctx context.Context, scope account.Scope) (int64, error) {
	return r.c.count(ctx, activeInvoices(scope))
}

func (r *InvoiceRepo) Summarize(ctx context.Context, scope account.Scope, f invoice.ListFilter) (invoice.Summary, error) {
	cur, err := r.c.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: invoiceFilter(scope, f)}},
		{{Key: "$group", Value: bson.M{
			"_id":         nil,
			"count":       bson.M{"$sum": 1},
			"grand_total": bson.M{"$sum": "$grand_total"},
			"balance":     bson.M{"$sum": "$balance_amount"},
		}}},
	})
	if err != nil {
		return invoice.Summary{}, fmt.Errorf("summarize invoices: %w", err)
	}
	var rows []struct {
		Count      int64 `bson:"count"`
		GrandTotal int64 `bson:"grand_total"`
		Balance    int64 `bson:"balance"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return invoice.Summary{}, fmt.Errorf("decode invoice summary: %w", err)
	}
	if len(rows) == 0 {
		return invoice.Summary{}, nil
	}
	return invoice.Summary{
		Count:      rows[0].Count,
		GrandTotal: types.Money(rows[0].GrandTotal),
		Balance:    types.Money(rows[0].Balance),
	}, nil
}

func (r *InvoiceRepo) DailyTotals(ctx context.Context, scope account.Scope, from, to time.Time) (map[string]types.Money, error) {
	match := activeInvoices(scope)
	match["invoice_date"] = bson.M{"$gte": from, "$lt": to}
	return r.c.sumBy(ctx, mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$invoice_date", "timezone": "UTC"}},
			"total": bson.M{"$sum": "$grand_total"},
		}}},
	})
}

func (r *InvoiceRepo) TopItems(ctx context.Context, scope account.Scope, limit int) ([]invoice.ItemSales, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: activeInvoices(scope)}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}}},
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$group", Value: bson.M{
			"_id":       "$items.item_id",
			"item_name": bson.M{"$first": "$items.item_name"},
			"qty":       bson.M{"$sum": "$items.qty"},
			"revenue":   bson.M{"$sum": "$items.total"},
			"first":     bson.M{"$min": "$created_at"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "revenue", Value: -1}, {Key: "first", Value: 1}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: int64(limit)}})
	}

	cur, err := r.c.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("top items: %w", err)
	}
	var rows []invoice.ItemSales
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode top items: %w", err)
	}
	return rows, nil
}

func (r *InvoiceRepo) SumActiveByCustomer(ctx context.Context, scope account.Scope) (map[string]types.Money, error) {
	return r.c.sumBy(ctx, mongo.Pipeline{
		{{Key: "$match", Value: activeInvoices(scope)}},
		{{Key: "$group", Value: bson.M{"_id": "$customer_id", "total": bson.M{"$sum": "$grand_total"}}}},
	})
}

func (r *InvoiceRepo) LatestNumber(ctx context.Context, scope account.Scope) (string, error) {
	return r.c.latest(ctx, scope, "invoice_number")
}

func (r *InvoiceRepo) CountAll(ctx context.Context, scope account.Scope) (int64, error) {
	return r.c.count(ctx, scoped(scope, nil))
}

// QuotationRepo implements quotation.Repository.
type QuotationRepo struct {
	c collection[quotation.Quotation]
}

func (r *QuotationRepo) Create(ctx context.Context, scope account.Scope, q *quotation.Quotation) error {
	return r.c.insert(ctx, scope, q.ID, q)
}

func (r *QuotationRepo) Get(ctx context.Context, scope account.Scope, id string) (*quotation.Quotation, error) {
	return r.c.get(ctx, scope, id)
}

func (r *QuotationRepo) Update(ctx context.Context, scope account.Scope, q *quotation.Quotation) error {
	return r.c.replace(ctx, scope, q.ID, q)
}

func (r *QuotationRepo) Delete(ctx context.Context, scope account.Scope, id string) error {
	return r.c.remove(ctx, scope, id)
}

func (r *QuotationRepo) List(ctx context.Context, scope account.Scope, f quotation.ListFilter) ([]*quotation.Quotation, int64, error) {
	filter := scoped(scope, nil)
	eqIf(filter, "customer_id", f.CustomerID)
	eqIf(filter, "status", f.Status)
	search(filter, f.Search, "quotation_number", "customer_name")
	return r.c.list(ctx, filter, byNewest(), f.ListFilter)
}

func (r *QuotationRepo) CountByStatus(ctx context.Context, scope account.Scope, statuses ...string) (int64, error) {
	if len(statuses) == 0 {
		return 0, nil
	}
	return r.c.count(ctx, scoped(scope, bson.M{"status": bson.M{"$in": statuses}}))
}

func (r *QuotationRepo) LatestNumber(ctx context.Context, scope account.Scope) (string, error) {
	return r.c.latest(ctx, scope, "quotation_number")
}

func (r *QuotationRepo) CountAll(ctx context.Context, scope account.Scope) (int64, error) {
	return r.c.count(ctx, scoped(scope, nil))
}

// PurchaseOrderRepo implements purchase_order.Repository.
type PurchaseOrderRepo struct {
	c collection[purchase_order.PurchaseOrder]
}

func (r *PurchaseOrderRepo) Create(ctx context.Context, scope account.Scope, po *purchase_order.PurchaseOrder) error {
	return r.c.insert(ctx, scope, po.ID, po)
}

func (r *PurchaseOrderRepo) Get(ctx context.Context, scope account.Scope, id string) (*purchase_order.PurchaseOrder, error) {
	return r.c.get(ctx, scope, id)
}

func (r *PurchaseOrderRepo) Update(ctx context.Context, scope account.Scope, po *purchase_order.PurchaseOrder) error {
	return r.c.replace(ctx, scope, po.ID, po)
}

func (r *PurchaseOrderRepo) List(ctx context.Context, scope account.Scope, f purchase_order.ListFilter) ([]*purchase_order.PurchaseOrder, int64, error) {
	filter := scoped(scope, nil)
	eqIf(filter, "weaver_id", f.WeaverID)
	eqIf(filter, "status", string(f.Status))
	search(filter, f.Search, "po_number", "weaver_name")
	return r.c.list(ctx, filter, byNewest(), f.ListFilter)
}

func (r *PurchaseOrderRepo) LatestNumber(ctx context.Context, scope account.Scope) (string, error) {
	return r.c.latest(ctx, scope, "po_number")
}

func (r *PurchaseOrderRepo) CountAll(ctx context.Context, scope account.Scope) (int64, error) {
	return r.c.count(ctx, scoped(scope, nil))
}

// PurchaseBillRepo implements purchase_bill.Repository.
type PurchaseBillRepo struct {
	c collection[purchase_bill.PurchaseBill]
}

func (r *PurchaseBillRepo) Create(ctx context.Context, scope account.Scope, b *purchase_bill.PurchaseBill) error {
	return r.c.insert(ctx, scope, b.ID, b)
}

func (r *PurchaseBillRepo) Get(ctx context.Context, scope account.Scope, id string) (*purchase_bill.PurchaseBill, error) {
	return r.c.get(ctx, scope, id)
}

func (r *PurchaseBillRepo) Update(ctx context.Context, scope account.Scope, b *purchase_bill.PurchaseBill) error {
	return r.c.replace(ctx, scope, b.ID, b)
}

func (r *PurchaseBillRepo) Delete(ctx context.Context, scope account.Scope, id string) error {
	return r.c.remove(ctx, scope, id)
}

func billFilter(scope account.Scope, f purchase_bill.ListFilter) (bson.M, sortSpec) {
	filter := scoped(scope, nil)
	eqIf(filter, "weaver_id", f.WeaverID)
	eqIf(filter, "payment_status", string(f.PaymentStatus))
	search(filter, f.Search, "bill_number", "weaver_name", "vendor_bill_number")

	if f.DueBefore == nil {
		return filter, byNewest()
	}
	open := bson.A{string(balance.StatusUnpaid), string(balance.StatusPartial)}
	if ps, ok := filter["payment_status"]; ok {
		filter["$and"] = bson.A{bson.M{"payment_status": ps}, bson.M{"payment_status": bson.M{"$in": open}}}
		delete(filter, "payment_status")
	} else {
		filter["payment_status"] = bson.M{"$in": open}
	}
	filter["due_date"] = bson.M{"$lt": *f.DueBefore}
	return filter, sortSpec{keys: bson.D{{Key: "due_date", Value: 1}, {Key: "created_at", Value: 1}}}
}

func (r *PurchaseBillRepo) List(ctx context.Context, scope account.Scope, f purchase_bill.ListFilter) ([]*purchase_bill.PurchaseBill, int64, error) {
	filter, order := billFilter(scope, f)
	return r.c.list(ctx, filter, order, f.ListFilter)
}

func (r *PurchaseBillRepo) SumByWeaver(ctx context.Context, scope account.Scope) (map[string]types.Money, error) {
	return r.c.sumBy(ctx, mongo.Pipeline{
		{{Key: "$match", Value: scoped(scope, nil)}},
		{{Key: "$group", Value: bson.M{"_id": "$weaver_id", "total": bson.M{"$sum": "$total_amount"}}}},
	})
}

func (r *PurchaseBillRepo) LatestNumber(ctx context.Context, scope account.Scope) (string, error) {
	return r.c.latest(ctx, scope, "bill_number")
}

func (r *PurchaseBillRepo) CountAll(ctx context.Context, scope account.Scope) (int64, error) {
	return r.c.count(ctx, scoped(scope, nil))
}

var (
	_ invoice.Repository        = (*InvoiceRepo)(nil)
	_ quotation.Repository      = (*QuotationRepo)(nil)
	_ purchase_order.Repository = (*PurchaseOrderRepo)(nil)
	_ purchase_bill.Repository  = (*PurchaseBillRepo)(nil)
)
