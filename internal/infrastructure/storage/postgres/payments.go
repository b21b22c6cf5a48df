package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/payments/payment"
	"weavebooks/internal/domain/payments/vendor_payment"
)

var latestPaymentFirst = []string{"payment_date DESC", "created_at DESC"}

// PaymentRepo implements payment.Repository.
type PaymentRepo struct {
	t table[payment.Payment]
}

// NewPaymentRepo creates a payment repository.
func NewPaymentRepo(txm *TxManager) *PaymentRepo {
	return &PaymentRepo{t: newTable[payment.Payment](txm, "payments", "payment")}
}

func (r *PaymentRepo) Create(ctx context.Context, scope account.Scope, p *payment.Payment) error {
	return r.t.insert(ctx, scope, p)
}

func (r *PaymentRepo) Get(ctx context.Context, scope account.Scope, id string) (*payment.Payment, error) {
	return r.t.get(ctx, scope, id)
}

func (r *PaymentRepo) Delete(ctx context.Context, scope account.Scope, id string) error {
	return r.t.deleteByID(ctx, scope, id)
}

func (r *PaymentRepo) List(ctx context.Context, scope account.Scope, f payment.ListFilter) ([]*payment.Payment, int64, error) {
	var where conds
	where.eqIf("payment_type", string(f.PaymentType))
	where.eqIf("party_id", f.PartyID)
	where.eqIf("invoice_id", f.InvoiceID)
	where.add(search(f.Search, "payment_number", "party_name", "invoice_number", "reference_number"))
	return r.t.list(ctx, scope, where, latestPaymentFirst, f.ListFilter)
}

func (r *PaymentRepo) CancelByInvoice(ctx context.Context, scope account.Scope, invoiceID string) (int64, error) {
	sql, args, err := Builder().Update(r.t.name).
		Set("status", payment.StatusCancelled).
		Where(r.t.scoped(scope)).
		Where(squirrel.Eq{"invoice_id": invoiceID, "status": payment.StatusCompleted}).
		ToSql()
	if err != nil {
		return 0, err
	}
	tag, err := r.t.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, r.t.translate(err, "cancel payments")
	}
	return tag.RowsAffected(), nil
}

func (r *PaymentRepo) SumCompletedByParty(ctx context.Context, scope account.Scope, t payment.Type) (map[string]types.Money, error) {
	return r.t.sumBy(ctx, Builder().
		Select("party_id AS key", "SUM(amount)::bigint AS total").
		From(r.t.name).
		Where(r.t.scoped(scope)).
		Where(squirrel.Eq{"payment_type": t, "status": payment.StatusCompleted}).
		GroupBy("party_id"))
}

func (r *PaymentRepo) LatestNumber(ctx context.Context, scope account.Scope) (string, error) {
	return r.t.latestNumber(ctx, scope, "payment_number")
}

func (r *PaymentRepo) CountAll(ctx context.Context, scope account.Scope) (int64, error) {
	return r.t.count(ctx, scope)
}

// VendorPaymentRepo implements vendor_payment.Repository.
type VendorPaymentRepo struct {
	t table[vendor_payment.VendorPayment]
}

// NewVendorPaymentRepo creates a vendor payment repository.
func NewVendorPaymentRepo(txm *TxManager) *VendorPaymentRepo {
	return &VendorPaymentRepo{t: newTable[vendor_payment.VendorPayment](txm, "vendor_payments", "vendor_payment")}
}

func (r *VendorPaymentRepo) Create(ctx context.Context, scope account.Scope, p *vendor_payment.VendorPayment) error {
	return r.t.insert(ctx, scope, p)
}

func (r *VendorPaymentRepo) Get(ctx context.Context, scope account.Scope, id string) (*vendor_payment.VendorPayment, error) {
	return r.t.get(ctx, scope, id)
}

func (r *VendorPaymentRepo) Delete(ctx context.Context, scope account.Scope, id string) error {
	return r.t.deleteByID(ctx, scope, id)
}

func (r *VendorPaymentRepo) List(ctx context.Context, scope account.Scope, f vendor_payment.ListFilter) ([]*vendor_payment.VendorPayment, int64, error) {
	var where conds
	where.eqIf("weaver_id", f.WeaverID)
	where.eqIf("bill_id", f.BillID)
	where.add(search(f.Search, "payment_number", "weaver_name", "bill_number", "reference_number"))
	return r.t.list(ctx, scope, where, latestPaymentFirst, f.ListFilter)
}

// SumSettledByWeaver drops payments whose bill no longer exists.
func (r *VendorPaymentRepo) SumSettledByWeaver(ctx context.Context, scope account.Scope) (map[string]types.Money, error) {
	return r.t.sumBy(ctx, Builder().
		Select("vp.weaver_id AS key", "SUM(vp.amount)::bigint AS total").
		From(r.t.name+" vp").
		LeftJoin("purchase_bills b ON b.account_id = vp.account_id AND b.id = vp.bill_id").
		Where(squirrel.Eq{"vp.account_id": scope.ID()}).
		Where(squirrel.Or{squirrel.Eq{"vp.bill_id": ""}, squirrel.NotEq{"b.id": nil}}).
		GroupBy("vp.weaver_id"))
}

func (r *VendorPaymentRepo) LatestNumber(ctx context.Context, scope account.Scope) (string, error) {
	return r.t.latestNumber(ctx, scope, "payment_number")
}

func (r *VendorPaymentRepo) CountAll(ctx context.Context, scope account.Scope) (int64, error) {
	return r.t.count(ctx, scope)
}

var (
	_ payment.Repository        = (*PaymentRepo)(nil)
	_ vendor_payment.Repository = (*VendorPaymentRepo)(nil)
)
