package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/balance"
	"weavebooks/internal/domain/documents/purchase_bill"
	"weavebooks/internal/domain/documents/purchase_order"
	"weavebooks/internal/domain/documents/quotation"
)

type quotationRow struct{ *quotation.Quotation }

func (r quotationRow) key() string { return r.ID }
func (r quotationRow) clone() quotationRow {
	cp := *r.Quotation
	cp.Items = append([]quotation.Line(nil), r.Items...)
	cp.ValidUntil = cloneTime(r.ValidUntil)
	return quotationRow{&cp}
}

// QuotationRepo implements quotation.Repository.
type QuotationRepo struct{ s *Store }

// Quotations returns the quotation repository.
func (s *Store) Quotations() *QuotationRepo { return &QuotationRepo{s: s} }

func (r *QuotationRepo) Create(ctx context.Context, scope account.Scope, q *quotation.Quotation) error {
	return insert(ctx, r.s, r.s.quotations, scope, quotationRow{q})
}

func (r *QuotationRepo) Get(ctx context.Context, scope account.Scope, id string) (*quotation.Quotation, error) {
	row, err := find(r.s, r.s.quotations, scope, id)
	if err != nil {
		return nil, err
	}
	return row.Quotation, nil
}

func (r *QuotationRepo) Update(ctx context.Context, scope account.Scope, q *quotation.Quotation) error {
	return replace(ctx, r.s, r.s.quotations, scope, quotationRow{q}, nil)
}

func (r *QuotationRepo) Delete(ctx context.Context, scope account.Scope, id string) error {
	return remove(ctx, r.s, r.s.quotations, scope, id)
}

func (r *QuotationRepo) List(ctx context.Context, scope account.Scope, f quotation.ListFilter) ([]*quotation.Quotation, int64, error) {
	rows := selectRows(r.s, r.s.quotations, scope, func(q quotationRow) bool {
		if f.CustomerID != "" && q.CustomerID != f.CustomerID {
			return false
		}
		if f.Status != "" && q.Status != f.Status {
			return false
		}
		return matches(f.Search, q.QuotationNumber, q.Name)
	})
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	rows, total := page(rows, f.ListFilter)
	out := make([]*quotation.Quotation, len(rows))
	for i, q := range rows {
		out[i] = q.Quotation
	}
	return out, total, nil
}

func (r *QuotationRepo) CountByStatus(ctx context.Context, scope account.Scope, statuses ...string) (int64, error) {
	rows := selectRows(r.s, r.s.quotations, scope, func(q quotationRow) bool { return slices.Contains(statuses, q.Status) })
	return int64(len(rows)), nil
}

func (r *QuotationRepo) LatestNumber(ctx context.Context, scope account.Scope) (string, error) {
	return latest(r.s, r.s.quotations, scope, func(q quotationRow) (string, time.Time) { return q.QuotationNumber, q.CreatedAt }), nil
}

func (r *QuotationRepo) CountAll(ctx context.Context, scope account.Scope) (int64, error) {
	return int64(len(selectRows(r.s, r.s.quotations, scope, nil))), nil
}

type purchaseOrderRow struct{ *purchase_order.PurchaseOrder }

func (r purchaseOrderRow) key() string { return r.ID }
func (r purchaseOrderRow) clone() purchaseOrderRow {
	cp := *r.PurchaseOrder
	cp.Items = append([]purchase_order.Line(nil), r.Items...)
	cp.ExpectedDeliveryDate = cloneTime(r.ExpectedDeliveryDate)
	return purchaseOrderRow{&cp}
}

// PurchaseOrderRepo implements purchase_order.Repository.
type PurchaseOrderRepo struct{ s *Store }

// PurchaseOrders returns the purchase order repository.
func (s *Store) PurchaseOrders() *PurchaseOrderRepo { return &PurchaseOrderRepo{s: s} }

func (r *PurchaseOrderRepo) Create(ctx context.Context, scope account.Scope, po *purchase_order.PurchaseOrder) error {
	return insert(ctx, r.s, r.s.purchaseOrders, scope, purchaseOrderRow{po})
}

func (r *PurchaseOrderRepo) Get(ctx context.Context, scope account.Scope, id string) (*purchase_order.PurchaseOrder, error) {
	row, err := find(r.s, r.s.purchaseOrders, scope, id)
	if err != nil {
		return nil, err
	}
	return row.PurchaseOrder, nil
}

func (r *PurchaseOrderRepo) Update(ctx context.Context, scope account.Scope, po *purchase_order.PurchaseOrder) error {
	return replace(ctx, r.s, r.s.purchaseOrders, scope, purchaseOrderRow{po}, nil)
}

func (r *PurchaseOrderRepo) List(ctx context.Context, scope account.Scope, f purchase_order.ListFilter) ([]*purchase_order.PurchaseOrder, int64, error) {
	rows := selectRows(r.s, r.s.purchaseOrders, scope, func(po purchaseOrderRow) bool {
		if f.WeaverID != "" && po.WeaverID != f.WeaverID {
			return false
		}
		if f.Status != "" && po.Status != f.Status {
			return false
		}
		return matches(f.Search, po.PONumber, po.WeaverName)
	})
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	rows, total := page(rows, f.ListFilter)
	out := make([]*purchase_order.PurchaseOrder, len(rows))
	for i, po := range rows {
		out[i] = po.PurchaseOrder
	}
	return out, total, nil
}

func (r *PurchaseOrderRepo) LatestNumber(ctx context.Context, scope account.Scope) (string, error) {
	return latest(r.s, r.s.purchaseOrders, scope, func(po purchaseOrderRow) (string, time.Time) { return po.PONumber, po.CreatedAt }), nil
}

func (r *PurchaseOrderRepo) CountAll(ctx context.Context, scope account.Scope) (int64, error) {
	return int64(len(selectRows(r.s, r.s.purchaseOrders, scope, nil))), nil
}

type purchaseBillRow struct{ *purchase_bill.PurchaseBill }

func (r purchaseBillRow) key() string { return r.ID }
func (r purchaseBillRow) clone() purchaseBillRow {
	cp := *r.PurchaseBill
	cp.Items = append([]purchase_bill.Line(nil), r.Items...)
	cp.Attachments = append([]string(nil), r.Attachments...)
	return purchaseBillRow{&cp}
}

// PurchaseBillRepo implements purchase_bill.Repository.
type PurchaseBillRepo struct{ s *Store }

// PurchaseBills returns the purchase bill repository.
func (s *Store) PurchaseBills() *PurchaseBillRepo { return &PurchaseBillRepo{s: s} }

func (r *PurchaseBillRepo) Create(ctx context.Context, scope account.Scope, b *purchase_bill.PurchaseBill) error {
	return insert(ctx, r.s, r.s.purchaseBills, scope, purchaseBillRow{b})
}

func (r *PurchaseBillRepo) Get(ctx context.Context, scope account.Scope, id string) (*purchase_bill.PurchaseBill, error) {
	row, err := find(r.s, r.s.purchaseBills, scope, id)
	if err != nil {
		return nil, err
	}
	return row.PurchaseBill, nil
}

func (r *PurchaseBillRepo) Update(ctx context.Context, scope account.Scope, b *purchase_bill.PurchaseBill) error {
	return replace(ctx, r.s, r.s.purchaseBills, scope, purchaseBillRow{b}, nil)
}

func (r *PurchaseBillRepo) Delete(ctx context.Context, scope account.Scope, id string) error {
	return remove(ctx, r.s, r.s.purchaseBills, scope, id)
}

func (r *PurchaseBillRepo) List(ctx context.Context, scope account.Scope, f purchase_bill.ListFilter) ([]*purchase_bill.PurchaseBill, int64, error) {
	rows := selectRows(r.s, r.s.purchaseBills, scope, func(b purchaseBillRow) bool {
		if f.WeaverID != "" && b.WeaverID != f.WeaverID {
			return false
		}
		if f.PaymentStatus != "" && b.PaymentStatus != f.PaymentStatus {
			return false
		}
		if f.DueBefore != nil {
			open := b.PaymentStatus == balance.StatusUnpaid || b.PaymentStatus == balance.StatusPartial
			if !open || !b.DueDate.Before(*f.DueBefore) {
				return false
			}
		}
		return matches(f.Search, b.BillNumber, b.WeaverName, b.VendorBillNumber)
	})
	if f.DueBefore != nil {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].DueDate.Before(rows[j].DueDate) })
	} else {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	}
	rows, total := page(rows, f.ListFilter)
	out := make([]*purchase_bill.PurchaseBill, len(rows))
	for i, b := range rows {
		out[i] = b.PurchaseBill
	}
	return out, total, nil
}

func (r *PurchaseBillRepo) SumByWeaver(ctx context.Context, scope account.Scope) (map[string]types.Money, error) {
	out := make(map[string]types.Money)
	for _, b := range selectRows(r.s, r.s.purchaseBills, scope, nil) {
		out[b.WeaverID] += b.TotalAmount
	}
	return out, nil
}

func (r *PurchaseBillRepo) LatestNumber(ctx context.Context, scope account.Scope) (string, error) {
	return latest(r.s, r.s.purchaseBills, scope, func(b purchaseBillRow) (string, time.Time) { return b.BillNumber, b.CreatedAt }), nil
}

func (r *PurchaseBillRepo) CountAll(ctx context.Context, scope account.Scope) (int64, error) {
	return int64(len(selectRows(r.s, r.s.purchaseBills, scope, nil))), nil
}

var (
	_ quotation.Repository      = (*QuotationRepo)(nil)
	_ purchase_order.Repository = (*PurchaseOrderRepo)(nil)
	_ purchase_bill.Repository  = (*PurchaseBillRepo)(nil)
)
