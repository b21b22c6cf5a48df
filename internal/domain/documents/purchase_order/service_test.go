package purchase_order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weavebooks/internal/app/apptest"
	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/catalogs/item"
	po "weavebooks/internal/domain/documents/purchase_order"
	"weavebooks/internal/domain/plan"
	"weavebooks/internal/domain/registers/stock"
)

func qty(n int64) types.Quantity { return types.NewQuantityFromInt(n) }

func line(it *item.Item, n int64, rate string) po.Line {
	return po.Line{ItemID: it.ID, ItemName: it.Name, Quantity: qty(n), Rate: types.MustMoney(rate), TaxRate: types.NewPercent(12)}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to po.Status
		want     bool
	}{
		{po.StatusDraft, po.StatusSent, true},
		{po.StatusDraft, po.StatusReceived, true},
		{po.StatusSent, po.StatusConfirmed, true},
		{po.StatusConfirmed, po.StatusPartiallyReceived, true},
		{po.StatusPartiallyReceived, po.StatusReceived, true},
		{po.StatusConfirmed, po.StatusSent, false},
		{po.StatusSent, po.StatusSent, false},
		{po.StatusConfirmed, po.StatusCancelled, true},
		{po.StatusReceived, po.StatusCancelled, false},
		{po.StatusCancelled, po.StatusDraft, false},
		{po.StatusDraft, po.Status("lost"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, po.CanTransition(tt.from, tt.to))
		})
	}
}

func TestLifecycle_ReceiveAddsStock(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	w := e.Weaver(t, "Kanchi Looms", "0", 0)
	a := e.Item(t, "Cotton Saree", 2, "60", "100")
	b := e.Item(t, "Silk Dupatta", 0, "60", "100")

	order, err := e.PurchaseOrders.Create(e.Ctx, e.Scope, po.Draft{
		WeaverID: w.ID,
		Items:    []po.Line{line(a, 10, "50"), line(b, 5, "200")},
	})
	require.NoError(t, err)
	assert.Equal(t, "PO-001", order.PONumber)
	assert.Equal(t, po.StatusDraft, order.Status)
	assert.Equal(t, types.MustMoney("1500"), order.Subtotal)
	assert.Equal(t, types.MustMoney("180"), order.TaxAmount)
	assert.Equal(t, types.MustMoney("1680"), order.TotalAmount)
	assert.Equal(t, qty(15), order.PendingQty)
	assert.Equal(t, "Kanchi Looms", order.WeaverName)

	for _, st := range []po.Status{po.StatusSent, po.StatusConfirmed} {
		order, err = e.PurchaseOrders.SetStatus(e.Ctx, e.Scope, order.ID, st)
		require.NoError(t, err)
	}
	_, err = e.PurchaseOrders.SetStatus(e.Ctx, e.Scope, order.ID, po.StatusDraft)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))
	assert.Equal(t, qty(2), e.StockOf(t, a.ID), "no stock before receipt")

	order, err = e.PurchaseOrders.SetStatus(e.Ctx, e.Scope, order.ID, po.StatusReceived)
	require.NoError(t, err)
	assert.Equal(t, qty(15), order.ReceivedQty)
	assert.Zero(t, order.PendingQty)
	assert.Equal(t, qty(12), e.StockOf(t, a.ID))
	assert.Equal(t, qty(5), e.StockOf(t, b.ID))

	hist, err := e.Stock.History(e.Ctx, e.Scope, b.ID, 0)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, stock.DocPurchaseOrder, hist[0].DocumentKind)
	assert.Equal(t, "Received via PO PO-001", hist[0].Reason)

	_, err = e.PurchaseOrders.Cancel(e.Ctx, e.Scope, order.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))
	notes := "late"
	_, err = e.PurchaseOrders.Update(e.Ctx, e.Scope, order.ID, po.Patch{Notes: &notes})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))

	e.RequireConsistent(t)
}

func TestUpdate_ResetsPending(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	w := e.Weaver(t, "Kanchi Looms", "0", 0)
	other := e.Weaver(t, "Zari Works", "0", 0)
	it := e.Item(t, "Cotton Saree", 0, "60", "100")

	order, err := e.PurchaseOrders.Create(e.Ctx, e.Scope, po.Draft{WeaverID: w.ID, Items: []po.Line{line(it, 10, "50")}})
	require.NoError(t, err)

	items := []po.Line{line(it, 4, "50")}
	up, err := e.PurchaseOrders.Update(e.Ctx, e.Scope, order.ID, po.Patch{Items: &items, WeaverID: &other.ID})
	require.NoError(t, err)
	assert.Equal(t, qty(4), up.PendingQty)
	assert.Equal(t, types.MustMoney("224"), up.TotalAmount)
	assert.Equal(t, other.Code, up.WeaverCode)

	res, err := e.PurchaseOrders.List(e.Ctx, e.Scope, po.ListFilter{WeaverID: other.ID})
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
}

func TestCancel(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	w := e.Weaver(t, "Kanchi Looms", "0", 0)
	it := e.Item(t, "Cotton Saree", 0, "60", "100")

	order, err := e.PurchaseOrders.Create(e.Ctx, e.Scope, po.Draft{WeaverID: w.ID, Items: []po.Line{line(it, 1, "50")}})
	require.NoError(t, err)

	got, err := e.PurchaseOrders.Cancel(e.Ctx, e.Scope, order.ID)
	require.NoError(t, err)
	assert.Equal(t, po.StatusCancelled, got.Status)

	_, err = e.PurchaseOrders.SetStatus(e.Ctx, e.Scope, order.ID, po.StatusSent)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))
	_, err = e.PurchaseOrders.SetStatus(e.Ctx, e.Scope, order.ID, "bogus")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}
