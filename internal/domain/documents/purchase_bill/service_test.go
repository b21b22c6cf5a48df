package purchase_bill_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weavebooks/internal/app/apptest"
	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/balance"
	"weavebooks/internal/domain/catalogs/item"
	"weavebooks/internal/domain/documents/purchase_bill"
	"weavebooks/internal/domain/documents/purchase_order"
	"weavebooks/internal/domain/payments/vendor_payment"
	"weavebooks/internal/domain/plan"
	"weavebooks/internal/domain/registers/stock"
)

func qty(n int64) types.Quantity { return types.NewQuantityFromInt(n) }

func line(it *item.Item, n int64, rate string) purchase_bill.Line {
	return purchase_bill.Line{
		ItemID:   it.ID,
		ItemName: it.Name,
		Quantity: qty(n),
		Rate:     types.MustMoney(rate),
		TaxRate:  types.NewPercent(5),
	}
}

func TestCreateUpdate_StockFollowsLines(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	w := e.Weaver(t, "Kanchi Looms", "0", 30)
	it := e.Item(t, "Cotton Saree", 100, "60", "100")

	b, err := e.PurchaseBills.Create(e.Ctx, e.Scope, purchase_bill.Draft{
		WeaverID: w.ID,
		Items:    []purchase_bill.Line{line(it, 20, "50")},
	})
	require.NoError(t, err)
	assert.Equal(t, "BILL-0001", b.BillNumber)
	assert.Equal(t, purchase_bill.StatusDraft, b.Status)
	assert.Equal(t, types.MustMoney("1000"), b.Subtotal)
	assert.Equal(t, types.MustMoney("50"), b.TaxAmount)
	assert.Equal(t, types.MustMoney("1050"), b.TotalAmount)
	assert.Equal(t, balance.StatusUnpaid, b.PaymentStatus)
	assert.Equal(t, b.BillDate.AddDate(0, 0, 30), b.DueDate)
	assert.Equal(t, qty(120), e.StockOf(t, it.ID))
	assert.Equal(t, types.MustMoney("1050"), e.WeaverBalance(t, w.ID))

	items := []purchase_bill.Line{line(it, 5, "50")}
	up, err := e.PurchaseBills.Update(e.Ctx, e.Scope, b.ID, purchase_bill.Patch{Items: &items})
	require.NoError(t, err)
	assert.Equal(t, types.MustMoney("262.50"), up.TotalAmount)
	assert.Equal(t, qty(105), e.StockOf(t, it.ID))
	assert.Equal(t, types.MustMoney("262.50"), e.WeaverBalance(t, w.ID))

	txns, err := e.Stock.History(e.Ctx, e.Scope, it.ID, 0)
	require.NoError(t, err)
	require.Len(t, txns, 3)
	assert.Equal(t, stock.DirectionIn, txns[0].Direction)
	assert.Equal(t, qty(5), txns[0].Quantity)
	assert.Equal(t, stock.DirectionOut, txns[1].Direction)
	assert.Equal(t, qty(20), txns[1].Quantity)
	assert.Equal(t, stock.DirectionIn, txns[2].Direction)
	assert.Equal(t, qty(20), txns[2].Quantity)

	e.RequireConsistent(t)
}

func TestUpdate_RevertBlockedWhenStockWasSold(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	w := e.Weaver(t, "Kanchi Looms", "0", 30)
	it := e.Item(t, "Cotton Saree", 0, "60", "100")

	b, err := e.PurchaseBills.Create(e.Ctx, e.Scope, purchase_bill.Draft{WeaverID: w.ID, Items: []purchase_bill.Line{line(it, 10, "50")}})
	require.NoError(t, err)
	require.NoError(t, e.Repos.Items.SetStock(e.Ctx, e.Scope, it.ID, qty(4)))

	items := []purchase_bill.Line{line(it, 2, "50")}
	_, err = e.PurchaseBills.Update(e.Ctx, e.Scope, b.ID, purchase_bill.Patch{Items: &items})
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))
	assert.Equal(t, qty(4), e.StockOf(t, it.ID))
	assert.Equal(t, types.MustMoney("525"), e.WeaverBalance(t, w.ID))
}

func TestVendorPayment_SettlesBill(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	w := e.Weaver(t, "Kanchi Looms", "200", 15)
	it := e.Item(t, "Cotton Saree", 0, "60", "100")

	b, err := e.PurchaseBills.Create(e.Ctx, e.Scope, purchase_bill.Draft{WeaverID: w.ID, Items: []purchase_bill.Line{line(it, 10, "100")}})
	require.NoError(t, err)
	assert.Equal(t, types.MustMoney("1250"), e.WeaverBalance(t, w.ID))

	p := &vendor_payment.VendorPayment{BillID: b.ID, Amount: types.MustMoney("400")}
	require.NoError(t, e.VendorPayments.Create(e.Ctx, e.Scope, p))
	assert.Equal(t, "VPAY-001", p.PaymentNumber)
	assert.Equal(t, w.ID, p.WeaverID)
	assert.Equal(t, b.BillNumber, p.BillNumber)
	assert.Equal(t, vendor_payment.DefaultMode, p.PaymentMode)

	got, err := e.PurchaseBills.Get(e.Ctx, e.Scope, b.ID)
	require.NoError(t, err)
	assert.Equal(t, types.MustMoney("400"), got.PaidAmount)
	assert.Equal(t, types.MustMoney("650"), got.BalanceAmount)
	assert.Equal(t, balance.StatusPartial, got.PaymentStatus)
	assert.Equal(t, types.MustMoney("850"), e.WeaverBalance(t, w.ID))

	err = e.VendorPayments.Create(e.Ctx, e.Scope, &vendor_payment.VendorPayment{BillID: b.ID, Amount: types.MustMoney("650.01")})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	assert.Equal(t, types.MustMoney("850"), e.WeaverBalance(t, w.ID))

	discount := types.MustMoney("700")
	_, err = e.PurchaseBills.Update(e.Ctx, e.Scope, b.ID, purchase_bill.Patch{DiscountAmount: &discount})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "total below paid")

	other := e.Weaver(t, "Other Looms", "0", 0)
	_, err = e.PurchaseBills.Update(e.Ctx, e.Scope, b.ID, purchase_bill.Patch{WeaverID: &other.ID})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	require.NoError(t, e.VendorPayments.Delete(e.Ctx, e.Scope, p.ID))
	got, err = e.PurchaseBills.Get(e.Ctx, e.Scope, b.ID)
	require.NoError(t, err)
	assert.Zero(t, got.PaidAmount)
	assert.Equal(t, balance.StatusUnpaid, got.PaymentStatus)
	assert.Equal(t, types.MustMoney("1250"), e.WeaverBalance(t, w.ID))

	e.RequireConsistent(t)
}

func TestDelete_RelievesRemainingBalance(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	w := e.Weaver(t, "Kanchi Looms", "100", 15)
	it := e.Item(t, "Cotton Saree", 3, "60", "100")

	b, err := e.PurchaseBills.Create(e.Ctx, e.Scope, purchase_bill.Draft{WeaverID: w.ID, Items: []purchase_bill.Line{line(it, 10, "100")}})
	require.NoError(t, err)
	p := &vendor_payment.VendorPayment{BillID: b.ID, Amount: types.MustMoney("50")}
	require.NoError(t, e.VendorPayments.Create(e.Ctx, e.Scope, p))

	require.NoError(t, e.PurchaseBills.Delete(e.Ctx, e.Scope, b.ID))
	assert.Equal(t, qty(3), e.StockOf(t, it.ID))
	assert.Equal(t, types.MustMoney("100"), e.WeaverBalance(t, w.ID))

	_, err = e.PurchaseBills.Get(e.Ctx, e.Scope, b.ID)
	assert.True(t, apperror.IsNotFound(err))
	e.RequireConsistent(t)

	// deleting the orphaned payment has nothing left to reverse
	require.NoError(t, e.VendorPayments.Delete(e.Ctx, e.Scope, p.ID))
	assert.Equal(t, types.MustMoney("100"), e.WeaverBalance(t, w.ID))
	e.RequireConsistent(t)
}

func TestDelete_BlockedWhenGoodsWereSold(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	w := e.Weaver(t, "Kanchi Looms", "0", 15)
	it := e.Item(t, "Cotton Saree", 0, "60", "100")

	b, err := e.PurchaseBills.Create(e.Ctx, e.Scope, purchase_bill.Draft{WeaverID: w.ID, Items: []purchase_bill.Line{line(it, 10, "100")}})
	require.NoError(t, err)
	require.NoError(t, e.Repos.Items.SetStock(e.Ctx, e.Scope, it.ID, qty(6)))

	err = e.PurchaseBills.Delete(e.Ctx, e.Scope, b.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))
	_, err = e.PurchaseBills.Get(e.Ctx, e.Scope, b.ID)
	assert.NoError(t, err)
	assert.Equal(t, types.MustMoney("1050"), e.WeaverBalance(t, w.ID))
}

func TestCreate_AgainstPurchaseOrder(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	w := e.Weaver(t, "Kanchi Looms", "0", 15)
	other := e.Weaver(t, "Other Looms", "0", 15)
	it := e.Item(t, "Cotton Saree", 0, "60", "100")

	po, err := e.PurchaseOrders.Create(e.Ctx, e.Scope, purchase_order.Draft{WeaverID: w.ID, Items: []purchase_order.Line{line(it, 4, "100")}})
	require.NoError(t, err)

	b, err := e.PurchaseBills.Create(e.Ctx, e.Scope, purchase_bill.Draft{WeaverID: w.ID, POID: po.ID, Items: []purchase_bill.Line{line(it, 4, "100")}})
	require.NoError(t, err)
	assert.Equal(t, po.PONumber, b.PONumber)

	_, err = e.PurchaseBills.Create(e.Ctx, e.Scope, purchase_bill.Draft{WeaverID: other.ID, POID: po.ID, Items: []purchase_bill.Line{line(it, 1, "100")}})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestListOverdue(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	w := e.Weaver(t, "Kanchi Looms", "0", 0)
	it := e.Item(t, "Cotton Saree", 0, "60", "100")

	due := func(days int) time.Time { return apptest.Epoch.AddDate(0, 0, days) }
	mk := func(dueIn int) *purchase_bill.PurchaseBill {
		b, err := e.PurchaseBills.Create(e.Ctx, e.Scope, purchase_bill.Draft{
			WeaverID: w.ID,
			DueDate:  due(dueIn),
			Items:    []purchase_bill.Line{line(it, 1, "100")},
		})
		require.NoError(t, err)
		e.Tick()
		return b
	}
	late := mk(-2)
	later := mk(-5)
	mk(10)
	paid := mk(-8)
	require.NoError(t, e.VendorPayments.Create(e.Ctx, e.Scope, &vendor_payment.VendorPayment{BillID: paid.ID, Amount: paid.TotalAmount}))

	res, err := e.PurchaseBills.ListOverdue(e.Ctx, e.Scope, purchase_bill.ListFilter{})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, later.ID, res.Items[0].ID)
	assert.Equal(t, late.ID, res.Items[1].ID)

	all, err := e.PurchaseBills.List(e.Ctx, e.Scope, purchase_bill.ListFilter{PaymentStatus: balance.StatusPaid})
	require.NoError(t, err)
	require.Len(t, all.Items, 1)
	assert.Equal(t, paid.ID, all.Items[0].ID)
}

func TestUpdate_StatusMovesForwardOnly(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	w := e.Weaver(t, "Kanchi Looms", "0", 30)
	it := e.Item(t, "Cotton Saree", 100, "60", "100")

	b, err := e.PurchaseBills.Create(e.Ctx, e.Scope, purchase_bill.Draft{
		WeaverID: w.ID,
		Items:    []purchase_bill.Line{line(it, 2, "50")},
	})
	require.NoError(t, err)

	steps := []struct {
		to      purchase_bill.Status
		allowed bool
	}{
		{purchase_bill.StatusSubmitted, true},
		{purchase_bill.StatusSubmitted, true},
		{purchase_bill.StatusDraft, false},
		{purchase_bill.StatusApproved, true},
		{purchase_bill.StatusPaid, true},
		{purchase_bill.StatusApproved, false},
	}
	for _, st := range steps {
		to := st.to
		up, err := e.PurchaseBills.Update(e.Ctx, e.Scope, b.ID, purchase_bill.Patch{Status: &to})
		if !st.allowed {
			require.Error(t, err, "to %s", to)
			assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))
			continue
		}
		require.NoError(t, err, "to %s", to)
		assert.Equal(t, to, up.Status)
	}

	got, err := e.PurchaseBills.Get(e.Ctx, e.Scope, b.ID)
	require.NoError(t, err)
	assert.Equal(t, purchase_bill.StatusPaid, got.Status)
	assert.Equal(t, qty(102), e.StockOf(t, it.ID))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, purchase_bill.CanTransition(purchase_bill.StatusDraft, purchase_bill.StatusApproved))
	assert.True(t, purchase_bill.CanTransition(purchase_bill.StatusPaid, purchase_bill.StatusPaid))
	assert.False(t, purchase_bill.CanTransition(purchase_bill.StatusPaid, purchase_bill.StatusDraft))
	assert.False(t, purchase_bill.CanTransition(purchase_bill.StatusDraft, purchase_bill.Status("void")))
}
