package memory

import (
	"context"
	"sort"
	"time"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/payments/payment"
	"weavebooks/internal/domain/payments/vendor_payment"
)

type paymentRow struct{ *payment.Payment }

func (r paymentRow) key() string { return r.ID }
func (r paymentRow) clone() paymentRow {
	cp := *r.Payment
	return paymentRow{&cp}
}

// PaymentRepo implements payment.Repository.
type PaymentRepo struct{ s *Store }

// Payments returns the payment repository.
func (s *Store) Payments() *PaymentRepo { return &PaymentRepo{s: s} }

func (r *PaymentRepo) Create(ctx context.Context, scope account.Scope, p *payment.Payment) error {
	return insert(ctx, r.s, r.s.payments, scope, paymentRow{p})
}

func (r *PaymentRepo) Get(ctx context.Context, scope account.Scope, id string) (*payment.Payment, error) {
	row, err := find(r.s, r.s.payments, scope, id)
	if err != nil {
		return nil, err
	}
	return row.Payment, nil
}

func (r *PaymentRepo) Delete(ctx context.Context, scope account.Scope, id string) error {
	return remove(ctx, r.s, r.s.payments, scope, id)
}

func (r *PaymentRepo) List(ctx context.Context, scope account.Scope, f payment.ListFilter) ([]*payment.Payment, int64, error) {
	rows := selectRows(r.s, r.s.payments, scope, func(p paymentRow) bool {
		if f.PaymentType != "" && p.PaymentType != f.PaymentType {
			return false
		}
		if f.PartyID != "" && p.PartyID != f.PartyID {
			return false
		}
		if f.InvoiceID != "" && p.InvoiceID != f.InvoiceID {
			return false
		}
		return matches(f.Search, p.PaymentNumber, p.PartyName, p.InvoiceNumber, p.ReferenceNumber)
	})
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].PaymentDate.After(rows[j].PaymentDate) })
	rows, total := page(rows, f.ListFilter)
	out := make([]*payment.Payment, len(rows))
	for i, p := range rows {
		out[i] = p.Payment
	}
	return out, total, nil
}

func (r *PaymentRepo) CancelByInvoice(ctx context.Context, scope account.Scope, invoiceID string) (int64, error) {
	rows := selectRows(r.s, r.s.payments, scope, func(p paymentRow) bool {
		return p.InvoiceID == invoiceID && p.IsCompleted()
	})
	for _, p := range rows {
		err := modify(ctx, r.s, r.s.payments, scope, p.ID, func(p paymentRow) error {
			p.Status = payment.StatusCancelled
			return nil
		})
		if err != nil {
			return 0, err
		}
	}
	return int64(len(rows)), nil
}

func (r *PaymentRepo) SumCompletedByParty(ctx context.Context, scope account.Scope, t payment.Type) (map[string]types.Money, error) {
	out := make(map[string]types.Money)
	for _, p := range selectRows(r.s, r.s.payments, scope, func(p paymentRow) bool {
		return p.PaymentType == t && p.IsCompleted()
	}) {
		out[p.PartyID] += p.Amount
	}
	return out, nil
}

func (r *PaymentRepo) LatestNumber(ctx context.Context, scope account.Scope) (string, error) {
	return latest(r.s, r.s.payments, scope, func(p paymentRow) (string, time.Time) { return p.PaymentNumber, p.CreatedAt }), nil
}

func (r *PaymentRepo) CountAll(ctx context.Context, scope account.Scope) (int64, error) {
	return int64(len(selectRows(r.s, r.s.payments, scope, nil))), nil
}

type vendorPaymentRow struct{ *vendor_payment.VendorPayment }

func (r vendorPaymentRow) key() string { return r.ID }
func (r vendorPaymentRow) clone() vendorPaymentRow {
	cp := *r.VendorPayment
	return vendorPaymentRow{&cp}
}

// VendorPaymentRepo implements vendor_payment.Repository.
type VendorPaymentRepo struct{ s *Store }

// VendorPayments returns the vendor payment repository.
func (s *Store) VendorPayments() *VendorPaymentRepo { return &VendorPaymentRepo{s: s} }

func (r *VendorPaymentRepo) Create(ctx context.Context, scope account.Scope, p *vendor_payment.VendorPayment) error {
	return insert(ctx, r.s, r.s.vendorPayments, scope, vendorPaymentRow{p})
}

func (r *VendorPaymentRepo) Get(ctx context.Context, scope account.Scope, id string) (*vendor_payment.VendorPayment, error) {
	row, err := find(r.s, r.s.vendorPayments, scope, id)
	if err != nil {
		return nil, err
	}
	return row.VendorPayment, nil
}

func (r *VendorPaymentRepo) Delete(ctx context.Context, scope account.Scope, id string) error {
	return remove(ctx, r.s, r.s.vendorPayments, scope, id)
}

func (r *VendorPaymentRepo) List(ctx context.Context, scope account.Scope, f vendor_payment.ListFilter) ([]*vendor_payment.VendorPayment, int64, error) {
	rows := selectRows(r.s, r.s.vendorPayments, scope, func(p vendorPaymentRow) bool {
		if f.WeaverID != "" && p.WeaverID != f.WeaverID {
			return false
		}
		if f.BillID != "" && p.BillID != f.BillID {
			return false
		}
		return matches(f.Search, p.PaymentNumber, p.WeaverName, p.BillNumber, p.ReferenceNumber)
	})
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].PaymentDate.After(rows[j].PaymentDate) })
	rows, total := page(rows, f.ListFilter)
	out := make([]*vendor_payment.VendorPayment, len(rows))
	for i, p := range rows {
		out[i] = p.VendorPayment
	}
	return out, total, nil
}

func (r *VendorPaymentRepo) SumSettledByWeaver(ctx context.Context, scope account.Scope) (map[string]types.Money, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]types.Money)
	for _, p := range r.s.vendorPayments.scan(scope.ID()) {
		if p.BillID != "" {
			if _, ok := r.s.purchaseBills.get(scope.ID(), p.BillID); !ok {
				continue
			}
		}
		out[p.WeaverID] += p.Amount
	}
	return out, nil
}

func (r *VendorPaymentRepo) LatestNumber(ctx context.Context, scope account.Scope) (string, error) {
	return latest(r.s, r.s.vendorPayments, scope, func(p vendorPaymentRow) (string, time.Time) { return p.PaymentNumber, p.CreatedAt }), nil
}

func (r *VendorPaymentRepo) CountAll(ctx context.Context, scope account.Scope) (int64, error) {
	return int64(len(selectRows(r.s, r.s.vendorPayments, scope, nil))), nil
}

var (
	_ payment.Repository        = (*PaymentRepo)(nil)
	_ vendor_payment.Repository = (*VendorPaymentRepo)(nil)
)
