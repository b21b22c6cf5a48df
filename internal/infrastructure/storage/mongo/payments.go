package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/tx"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/payments/payment"
	"weavebooks/internal/domain/payments/vendor_payment"
)

func byPaymentDate() sortSpec {
	return sortSpec{keys: bson.D{{Key: "payment_date", Value: -1}, {Key: "created_at", Value: -1}}}
}

// PaymentRepo implements payment.Repository.
type PaymentRepo struct {
	c collection[payment.Payment]
}

func (r *PaymentRepo) Create(ctx context.Context, scope account.Scope, p *payment.Payment) error {
	return r.c.insert(ctx, scope, p.ID, p)
}

func (r *PaymentRepo) Get(ctx context.Context, scope account.Scope, id string) (*payment.Payment, error) {
	return r.c.get(ctx, scope, id)
}

func (r *PaymentRepo) Delete(ctx context.Context, scope account.Scope, id string) error {
	return r.c.remove(ctx, scope, id)
}

func (r *PaymentRepo) List(ctx context.Context, scope account.Scope, f payment.ListFilter) ([]*payment.Payment, int64, error) {
	filter := scoped(scope, nil)
	eqIf(filter, "payment_type", string(f.PaymentType))
	eqIf(filter, "party_id", f.PartyID)
	eqIf(filter, "invoice_id", f.InvoiceID)
	search(filter, f.Search, "payment_number", "party_name", "invoice_number", "reference_number")
	return r.c.list(ctx, filter, byPaymentDate(), f.ListFilter)
}

// CancelByInvoice collects the affected ids first so the inverse restores
// exactly those payments.
func (r *PaymentRepo) CancelByInvoice(ctx context.Context, scope account.Scope, invoiceID string) (int64, error) {
	filter := scoped(scope, bson.M{"invoice_id": invoiceID, "status": payment.StatusCompleted})

	cur, err := r.c.c.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return 0, fmt.Errorf("find payments: %w", err)
	}
	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return 0, fmt.Errorf("decode payments: %w", err)
	}
	if len(docs) == 0 {
		return 0, nil
	}
	ids := make(bson.A, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}

	byIDs := scoped(scope, bson.M{"_id": bson.M{"$in": ids}})
	res, err := r.c.c.UpdateMany(ctx, byIDs, bson.M{"$set": bson.M{"status": payment.StatusCancelled}})
	if err != nil {
		return 0, r.c.translate(err, "cancel")
	}
	tx.OnRollback(ctx, "restore cancelled payments", func(ctx context.Context) error {
		_, err := r.c.c.UpdateMany(ctx, byIDs, bson.M{"$set": bson.M{"status": payment.StatusCompleted}})
		return err
	})
	return res.ModifiedCount, nil
}

func (r *PaymentRepo) SumCompletedByParty(ctx context.Context, scope account.Scope, t payment.Type) (map[string]types.Money, error) {
	return r.c.sumBy(ctx, mongo.Pipeline{
		{{Key: "$match", Value: scoped(scope, bson.M{"payment_type": t, "status": payment.StatusCompleted})}},
		{{Key: "$group", Value: bson.M{"_id": "$party_id", "total": bson.M{"$sum": "$amount"}}}},
	})
}

func (r *PaymentRepo) LatestNumber(ctx context.Context, scope account.Scope) (string, error) {
	return r.c.latest(ctx, scope, "payment_number")
}

func (r *PaymentRepo) CountAll(ctx context.Context, scope account.Scope) (int64, error) {
	return r.c.count(ctx, scoped(scope, nil))
}

// VendorPaymentRepo implements vendor_payment.Repository.
type VendorPaymentRepo struct {
	c collection[vendor_payment.VendorPayment]
}

func (r *VendorPaymentRepo) Create(ctx context.Context, scope account.Scope, p *vendor_payment.VendorPayment) error {
	return r.c.insert(ctx, scope, p.ID, p)
}

func (r *VendorPaymentRepo) Get(ctx context.Context, scope account.Scope, id string) (*vendor_payment.VendorPayment, error) {
	return r.c.get(ctx, scope, id)
}

func (r *VendorPaymentRepo) Delete(ctx context.Context, scope account.Scope, id string) error {
	return r.c.remove(ctx, scope, id)
}

func (r *VendorPaymentRepo) List(ctx context.Context, scope account.Scope, f vendor_payment.ListFilter) ([]*vendor_payment.VendorPayment, int64, error) {
	filter := scoped(scope, nil)
	eqIf(filter, "weaver_id", f.WeaverID)
	eqIf(filter, "bill_id", f.BillID)
	search(filter, f.Search, "payment_number", "weaver_name", "bill_number", "reference_number")
	return r.c.list(ctx, filter, byPaymentDate(), f.ListFilter)
}

// SumSettledByWeaver drops payments whose bill no longer exists.
func (r *VendorPaymentRepo) SumSettledByWeaver(ctx context.Context, scope account.Scope) (map[string]types.Money, error) {
	return r.c.sumBy(ctx, mongo.Pipeline{
		{{Key: "$match", Value: scoped(scope, nil)}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collBills,
			"localField":   "bill_id",
			"foreignField": "_id",
			"as":           "bill",
		}}},
		{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"bill_id": bson.M{"$in": bson.A{nil, ""}}},
			bson.M{"bill.0": bson.M{"$exists": true}},
		}}}},
		{{Key: "$group", Value: bson.M{"_id": "$weaver_id", "total": bson.M{"$sum": "$amount"}}}},
	})
}

func (r *VendorPaymentRepo) LatestNumber(ctx context.Context, scope account.Scope) (string, error) {
	return r.c.latest(ctx, scope, "payment_number")
}

func (r *VendorPaymentRepo) CountAll(ctx context.Context, scope account.Scope) (int64, error) {
	return r.c.count(ctx, scoped(scope, nil))
}

var (
	_ payment.Repository        = (*PaymentRepo)(nil)
	_ vendor_payment.Repository = (*VendorPaymentRepo)(nil)
)
