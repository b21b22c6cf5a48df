package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"

	"weavebooks/internal/core/account"
	"weavebooks/internal/domain"
	"weavebooks/internal/domain/balance"
	"weavebooks/internal/domain/documents/invoice"
	"weavebooks/internal/domain/documents/purchase_bill"
)

func TestSearch_QuotesRegex(t *testing.T) {
	filter := bson.M{}
	search(filter, " a.b* ", "name", "sku")

	re := bson.Regex{Pattern: `a\.b\*`, Options: "i"}
	assert.Equal(t, bson.A{bson.M{"name": re}, bson.M{"sku": re}}, filter["$or"])
}

func TestSearch_BlankLeavesFilter(t *testing.T) {
	filter := bson.M{}
	search(filter, "  ", "name")
	assert.Empty(t, filter)
}

func TestInvoiceFilter(t *testing.T) {
	scope := account.MustScope("acct-1")
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		filter invoice.ListFilter
		want   bson.M
	}{
		{
			name:   "default excludes cancelled",
			filter: invoice.ListFilter{CustomerID: "c-1"},
			want: bson.M{
				"account_id":  "acct-1",
				"status":      bson.M{"$ne": invoice.StatusCancelled},
				"customer_id": "c-1",
			},
		},
		{
			name:   "all statuses",
			filter: invoice.ListFilter{Status: invoice.StatusAll, PaymentStatus: balance.StatusPaid},
			want:   bson.M{"account_id": "acct-1", "payment_status": "paid"},
		},
		{
			name:   "due range requires a due date",
			filter: invoice.ListFilter{Status: invoice.StatusAll, DueDate: domain.DateRange{From: &from}},
			want: bson.M{
				"account_id": "acct-1",
				"due_date":   bson.M{"$exists": true, "$ne": nil, "$gte": from},
			},
		},
		{
			name:   "overdue",
			filter: invoice.ListFilter{Status: invoice.StatusActive, OverdueAsOf: &asOf},
			want: bson.M{
				"account_id":     "acct-1",
				"status":         invoice.StatusActive,
				"balance_amount": bson.M{"$gt": 0},
				"due_date":       bson.M{"$lt": asOf},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, invoiceFilter(scope, tt.filter))
		})
	}
}

func TestBillFilter_DueBeforeKeepsOpenBills(t *testing.T) {
	scope := account.MustScope("acct-1")
	before := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	filter, order := billFilter(scope, purchase_bill.ListFilter{DueBefore: &before})

	assert.Equal(t, bson.M{
		"account_id":     "acct-1",
		"payment_status": bson.M{"$in": bson.A{"unpaid", "partial"}},
		"due_date":       bson.M{"$lt": before},
	}, filter)
	assert.Equal(t, "due_date", order.keys[0].Key)
	assert.Equal(t, 1, order.keys[0].Value)
}

func TestBillFilter_DefaultsToNewest(t *testing.T) {
	_, order := billFilter(account.MustScope("acct-1"), purchase_bill.ListFilter{WeaverID: "w-1"})
	assert.Equal(t, byNewest(), order)
}
