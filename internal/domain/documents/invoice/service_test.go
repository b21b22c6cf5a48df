package invoice_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weavebooks/internal/app/apptest"
	"weavebooks/internal/core/account"
	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/id"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/balance"
	"weavebooks/internal/domain/catalogs/item"
	"weavebooks/internal/domain/documents/invoice"
	"weavebooks/internal/domain/documents/quotation"
	"weavebooks/internal/domain/payments/payment"
	"weavebooks/internal/domain/plan"
	"weavebooks/internal/domain/registers/stock"
)

func qty(n int64) types.Quantity { return types.NewQuantityFromInt(n) }

func line(it *item.Item, n int64, rate string) invoice.Line {
	return invoice.Line{
		ItemID:     it.ID,
		ItemName:   it.Name,
		Quantity:   qty(n),
		Rate:       types.MustMoney(rate),
		TaxPercent: types.NewPercent(18),
	}
}

func TestCreate_TotalsStockAndBalance(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	it := e.Item(t, "Cotton Saree", 20, "60", "100")

	inv, err := e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{
		CustomerID: c.ID,
		Items:      []invoice.Line{line(it, 10, "100")},
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-0001", inv.InvoiceNumber)
	assert.Equal(t, types.MustMoney("1000"), inv.SubTotal)
	assert.Equal(t, types.MustMoney("180"), inv.TotalTax)
	assert.Equal(t, types.MustMoney("1180"), inv.GrandTotal)
	assert.Equal(t, types.MustMoney("1180"), inv.BalanceAmount)
	assert.Equal(t, balance.StatusUnpaid, inv.PaymentStatus)
	assert.Equal(t, invoice.DefaultUnit, inv.Items[0].Unit)
	assert.Equal(t, "Asha Textiles", inv.Snapshot.Name)
	assert.Equal(t, e.Clock.Now(), inv.InvoiceDate)

	assert.Equal(t, qty(10), e.StockOf(t, it.ID))
	assert.Equal(t, types.MustMoney("1180"), e.CustomerBalance(t, c.ID))

	txns, err := e.Stock.History(e.Ctx, e.Scope, it.ID, 0)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, stock.DirectionOut, txns[0].Direction)
	assert.Equal(t, qty(20), txns[0].PreviousStock)
	assert.Equal(t, qty(10), txns[0].NewStock)
	assert.Equal(t, inv.InvoiceNumber, txns[0].DocumentNumber)

	e.RequireConsistent(t)
}

func TestCreate_AmountReceivedRecordsPayment(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	it := e.Item(t, "Cotton Saree", 20, "60", "100")

	inv, err := e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{
		CustomerID:     c.ID,
		Items:          []invoice.Line{line(it, 10, "100")},
		PaymentStatus:  balance.StatusPartial,
		AmountReceived: types.MustMoney("180"),
		PaymentMode:    "upi",
	})
	require.NoError(t, err)

	assert.Equal(t, types.MustMoney("180"), inv.AmountReceived)
	assert.Equal(t, types.MustMoney("1000"), inv.BalanceAmount)
	assert.Equal(t, balance.StatusPartial, inv.PaymentStatus)
	assert.Equal(t, types.MustMoney("1000"), e.CustomerBalance(t, c.ID))

	d, err := e.Invoices.Get(e.Ctx, e.Scope, inv.ID)
	require.NoError(t, err)
	require.Len(t, d.Payments, 1)
	assert.Equal(t, "PAY-0001", d.Payments[0].PaymentNumber)
	assert.Equal(t, "upi", d.Payments[0].PaymentMode)
	assert.Equal(t, payment.TypeReceive, d.Payments[0].PaymentType)
	assert.Equal(t, inv.InvoiceNumber, d.Payments[0].InvoiceNumber)

	e.RequireConsistent(t)
}

func TestCreate_PaymentStatusResolvesAmountReceived(t *testing.T) {
	tests := []struct {
		name       string
		status     balance.PaymentStatus
		sent       string
		wantStatus balance.PaymentStatus
		payments   int
	}{
		{"paid takes the computed total", balance.StatusPaid, "0", balance.StatusPaid, 1},
		{"partial keeps the sent amount", balance.StatusPartial, "50", balance.StatusPartial, 1},
		{"unpaid discards a stray amount", balance.StatusUnpaid, "50", balance.StatusUnpaid, 0},
		{"no status discards a stray amount", "", "50", balance.StatusUnpaid, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := apptest.New(t, plan.KeyPro)
			c := e.Customer(t, "Asha Textiles", "0")
			it := e.Item(t, "Cotton Saree", 20, "60", "100")

			inv, err := e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{
				CustomerID:     c.ID,
				Items:          []invoice.Line{line(it, 3, "33.33")},
				PaymentStatus:  tt.status,
				AmountReceived: types.MustMoney(tt.sent),
			})
			require.NoError(t, err)

			var want types.Money
			switch tt.status {
			case balance.StatusPaid:
				want = inv.GrandTotal
			case balance.StatusPartial:
				want = types.MustMoney(tt.sent)
			}
			assert.Equal(t, want, inv.AmountReceived)
			assert.Equal(t, inv.GrandTotal-want, inv.BalanceAmount)
			assert.Equal(t, tt.wantStatus, inv.PaymentStatus)
			assert.Equal(t, inv.GrandTotal-want, e.CustomerBalance(t, c.ID))

			d, err := e.Invoices.Get(e.Ctx, e.Scope, inv.ID)
			require.NoError(t, err)
			assert.Len(t, d.Payments, tt.payments)

			e.RequireConsistent(t)
		})
	}
}

func TestCreate_RejectsUnknownPaymentStatus(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	it := e.Item(t, "Cotton Saree", 20, "60", "100")

	_, err := e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{
		CustomerID:    c.ID,
		Items:         []invoice.Line{line(it, 1, "100")},
		PaymentStatus: balance.StatusOverdue,
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	assert.Equal(t, qty(20), e.StockOf(t, it.ID))
}

func TestCreate_RejectsOverpaymentWithoutSideEffects(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	it := e.Item(t, "Cotton Saree", 20, "60", "100")

	_, err := e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{
		CustomerID:     c.ID,
		Items:          []invoice.Line{line(it, 10, "100")},
		PaymentStatus:  balance.StatusPartial,
		AmountReceived: types.MustMoney("1180.01"),
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	assert.Equal(t, qty(20), e.StockOf(t, it.ID))
	assert.Zero(t, e.CustomerBalance(t, c.ID))
	n, err := e.Repos.Invoices.CountAll(e.Ctx, e.Scope)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreate_ValidatesDraft(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	it := e.Item(t, "Cotton Saree", 20, "60", "100")

	tests := []struct {
		name  string
		draft invoice.Draft
	}{
		{"no customer", invoice.Draft{Items: []invoice.Line{line(it, 1, "100")}}},
		{"no items", invoice.Draft{CustomerID: c.ID}},
		{"zero quantity", invoice.Draft{CustomerID: c.ID, Items: []invoice.Line{line(it, 0, "100")}}},
		{"negative rate", invoice.Draft{CustomerID: c.ID, Items: []invoice.Line{line(it, 1, "-1")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Invoices.Create(e.Ctx, e.Scope, tt.draft)
			assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "got %v", err)
		})
	}

	_, err := e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{CustomerID: "missing", Items: []invoice.Line{line(it, 1, "100")}})
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreate_StockBoundary(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	it := e.Item(t, "Cotton Saree", 7, "60", "100")

	_, err := e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{CustomerID: c.ID, Items: []invoice.Line{line(it, 8, "100")}})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))
	assert.Equal(t, qty(7), e.StockOf(t, it.ID))

	_, err = e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{CustomerID: c.ID, Items: []invoice.Line{line(it, 7, "100")}})
	require.NoError(t, err)
	assert.Zero(t, e.StockOf(t, it.ID))

	_, err = e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{CustomerID: c.ID, Items: []invoice.Line{line(it, 1, "100")}})
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))
	assert.Zero(t, e.StockOf(t, it.ID))

	e.RequireConsistent(t)
}

func TestCreate_ShortageListsEveryItem(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	a := e.Item(t, "Cotton Saree", 2, "60", "100")
	b := e.Item(t, "Silk Dupatta", 1, "60", "100")
	ok := e.Item(t, "Linen Shawl", 50, "60", "100")

	_, err := e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{
		CustomerID: c.ID,
		Items:      []invoice.Line{line(a, 3, "100"), line(ok, 1, "100"), line(b, 2, "100")},
	})
	require.Error(t, err)
	appErr, isApp := apperror.AsAppError(err)
	require.True(t, isApp)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	lines, _ := appErr.Details["items"].([]apperror.StockShortage)
	require.Len(t, lines, 2)
	assert.Equal(t, a.ID, lines[0].ItemID)
	assert.Equal(t, b.ID, lines[1].ItemID)

	assert.Equal(t, qty(50), e.StockOf(t, ok.ID))
}

func TestCreate_SameItemOnTwoLinesIsSummed(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	it := e.Item(t, "Cotton Saree", 5, "60", "100")

	_, err := e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{
		CustomerID: c.ID,
		Items:      []invoice.Line{line(it, 3, "100"), line(it, 3, "100")},
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))
	assert.Equal(t, qty(5), e.StockOf(t, it.ID))
}

func TestCreate_QuotaExceededOnFreePlan(t *testing.T) {
	e := apptest.New(t, plan.KeyFree)
	c := e.Customer(t, "Asha Textiles", "0")
	it := e.Item(t, "Cotton Saree", 20, "60", "100")

	for i := 0; i < 5; i++ {
		require.NoError(t, e.Repos.Invoices.Create(e.Ctx, e.Scope, &invoice.Invoice{
			ID:            id.New(),
			AccountID:     e.Scope.ID(),
			InvoiceNumber: fmt.Sprintf("LEGACY-%d", i),
			CustomerID:    c.ID,
			Status:        invoice.StatusActive,
			InvoiceDate:   apptest.Epoch,
			CreatedAt:     e.Tick(),
		}))
	}

	_, err := e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{CustomerID: c.ID, Items: []invoice.Line{line(it, 1, "100")}})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeQuotaExceeded))

	assert.Equal(t, qty(20), e.StockOf(t, it.ID))
	assert.Zero(t, e.CustomerBalance(t, c.ID))
	n, err := e.Repos.Invoices.CountAll(e.Ctx, e.Scope)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
}

func TestCancel_RestoresStockAndBalance(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "500")
	it := e.Item(t, "Cotton Saree", 10, "60", "100")

	inv, err := e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{
		CustomerID:     c.ID,
		Items:          []invoice.Line{line(it, 3, "100")},
		PaymentStatus:  balance.StatusPartial,
		AmountReceived: types.MustMoney("54"),
	})
	require.NoError(t, err)
	assert.Equal(t, qty(7), e.StockOf(t, it.ID))
	e.Tick()

	cancelled, err := e.Invoices.Cancel(e.Ctx, e.Scope, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusCancelled, cancelled.Status)
	assert.Zero(t, cancelled.BalanceAmount)

	assert.Equal(t, qty(10), e.StockOf(t, it.ID))
	assert.Equal(t, types.MustMoney("500"), e.CustomerBalance(t, c.ID))

	txns, err := e.Stock.History(e.Ctx, e.Scope, it.ID, 0)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, stock.DirectionIn, txns[0].Direction)
	assert.Equal(t, qty(3), txns[0].Quantity)
	assert.Equal(t, stock.DirectionOut, txns[1].Direction)
	assert.Equal(t, qty(3), txns[1].Quantity)

	d, err := e.Invoices.Get(e.Ctx, e.Scope, inv.ID)
	require.NoError(t, err)
	require.Len(t, d.Payments, 1)
	assert.Equal(t, payment.StatusCancelled, d.Payments[0].Status)

	_, err = e.Invoices.Cancel(e.Ctx, e.Scope, inv.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))
	assert.Equal(t, qty(10), e.StockOf(t, it.ID))

	list, err := e.Invoices.List(e.Ctx, e.Scope, invoice.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	e.RequireConsistent(t)
}

func TestCancelledInvoiceRejectsChanges(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	it := e.Item(t, "Cotton Saree", 10, "60", "100")

	inv, err := e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{CustomerID: c.ID, Items: []invoice.Line{line(it, 2, "100")}})
	require.NoError(t, err)
	_, err = e.Invoices.Cancel(e.Ctx, e.Scope, inv.ID)
	require.NoError(t, err)

	notes := "late"
	_, err = e.Invoices.Update(e.Ctx, e.Scope, inv.ID, invoice.Patch{Notes: &notes})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))

	_, err = e.Invoices.AddPayment(e.Ctx, e.Scope, inv.ID, invoice.PaymentInput{Amount: types.MustMoney("10")})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))
}

func TestAddPayment_ThenDeletePayment(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	it := e.Item(t, "Cotton Saree", 20, "60", "100")

	inv, err := e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{CustomerID: c.ID, Items: []invoice.Line{line(it, 10, "100")}})
	require.NoError(t, err)

	_, err = e.Invoices.AddPayment(e.Ctx, e.Scope, inv.ID, invoice.PaymentInput{Amount: types.MustMoney("1180.01")})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	_, err = e.Invoices.AddPayment(e.Ctx, e.Scope, inv.ID, invoice.PaymentInput{})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	paid, err := e.Invoices.AddPayment(e.Ctx, e.Scope, inv.ID, invoice.PaymentInput{Amount: types.MustMoney("1180"), PaymentMode: "bank"})
	require.NoError(t, err)
	assert.Equal(t, balance.StatusPaid, paid.PaymentStatus)
	assert.Zero(t, paid.BalanceAmount)
	assert.Zero(t, e.CustomerBalance(t, c.ID))

	d, err := e.Invoices.Get(e.Ctx, e.Scope, inv.ID)
	require.NoError(t, err)
	require.Len(t, d.Payments, 1)
	e.RequireConsistent(t)

	require.NoError(t, e.Payments.Delete(e.Ctx, e.Scope, d.Payments[0].ID))

	after, err := e.Invoices.Get(e.Ctx, e.Scope, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, balance.StatusUnpaid, after.PaymentStatus)
	assert.Equal(t, types.MustMoney("1180"), after.BalanceAmount)
	assert.Zero(t, after.AmountReceived)
	assert.Empty(t, after.Payments)
	assert.Equal(t, types.MustMoney("1180"), e.CustomerBalance(t, c.ID))

	e.RequireConsistent(t)
}

func TestUpdate_ReplacesLinesAndMovesBalance(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	a := e.Item(t, "Cotton Saree", 10, "60", "100")
	b := e.Item(t, "Silk Dupatta", 10, "60", "200")

	inv, err := e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{CustomerID: c.ID, Items: []invoice.Line{line(a, 4, "100")}})
	require.NoError(t, err)
	assert.Equal(t, qty(6), e.StockOf(t, a.ID))

	items := []invoice.Line{line(a, 1, "100"), line(b, 2, "200")}
	shipping := types.MustMoney("20")
	up, err := e.Invoices.Update(e.Ctx, e.Scope, inv.ID, invoice.Patch{Items: &items, ShippingCharges: &shipping})
	require.NoError(t, err)

	// 100 + 400 = 500 sub, 90 tax, 20 shipping
	assert.Equal(t, types.MustMoney("610"), up.GrandTotal)
	assert.Equal(t, qty(9), e.StockOf(t, a.ID))
	assert.Equal(t, qty(8), e.StockOf(t, b.ID))
	assert.Equal(t, types.MustMoney("610"), e.CustomerBalance(t, c.ID))

	e.RequireConsistent(t)
}

func TestUpdate_ShortageLeavesInvoiceUntouched(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	it := e.Item(t, "Cotton Saree", 5, "60", "100")

	inv, err := e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{CustomerID: c.ID, Items: []invoice.Line{line(it, 3, "100")}})
	require.NoError(t, err)

	// the 3 returned by the revert count: 5 is available, 6 is not
	items := []invoice.Line{line(it, 6, "100")}
	_, err = e.Invoices.Update(e.Ctx, e.Scope, inv.ID, invoice.Patch{Items: &items})
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))

	assert.Equal(t, qty(2), e.StockOf(t, it.ID))
	got, err := e.Invoices.Get(e.Ctx, e.Scope, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, qty(3), got.Items[0].Quantity)
	e.RequireConsistent(t)

	items = []invoice.Line{line(it, 5, "100")}
	_, err = e.Invoices.Update(e.Ctx, e.Scope, inv.ID, invoice.Patch{Items: &items})
	require.NoError(t, err)
	assert.Zero(t, e.StockOf(t, it.ID))
	e.RequireConsistent(t)
}

func TestUpdate_AmountReceived(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	other := e.Customer(t, "Bhavani Silks", "0")
	it := e.Item(t, "Cotton Saree", 20, "60", "100")

	inv, err := e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{CustomerID: c.ID, Items: []invoice.Line{line(it, 10, "100")}})
	require.NoError(t, err)

	received := types.MustMoney("500")
	up, err := e.Invoices.Update(e.Ctx, e.Scope, inv.ID, invoice.Patch{AmountReceived: &received})
	require.NoError(t, err)
	assert.Equal(t, received, up.AmountReceived)
	assert.Equal(t, balance.StatusPartial, up.PaymentStatus)
	assert.Equal(t, types.MustMoney("680"), e.CustomerBalance(t, c.ID))

	less := types.MustMoney("100")
	_, err = e.Invoices.Update(e.Ctx, e.Scope, inv.ID, invoice.Patch{AmountReceived: &less})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	discount := types.MustMoney("700")
	_, err = e.Invoices.Update(e.Ctx, e.Scope, inv.ID, invoice.Patch{DiscountAmount: &discount})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "grand total below amount received")

	_, err = e.Invoices.Update(e.Ctx, e.Scope, inv.ID, invoice.Patch{CustomerID: &other.ID})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	e.RequireConsistent(t)
}

func TestUpdate_ChangeCustomerMovesObligation(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	other := e.Customer(t, "Bhavani Silks", "100")
	it := e.Item(t, "Cotton Saree", 20, "60", "100")

	inv, err := e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{CustomerID: c.ID, Items: []invoice.Line{line(it, 10, "100")}})
	require.NoError(t, err)

	up, err := e.Invoices.Update(e.Ctx, e.Scope, inv.ID, invoice.Patch{CustomerID: &other.ID})
	require.NoError(t, err)
	assert.Equal(t, "Bhavani Silks", up.Snapshot.Name)
	assert.Zero(t, e.CustomerBalance(t, c.ID))
	assert.Equal(t, types.MustMoney("1280"), e.CustomerBalance(t, other.ID))

	e.RequireConsistent(t)
}

func TestDuplicate_DefersStockUntilFinalize(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	it := e.Item(t, "Cotton Saree", 10, "60", "100")

	src, err := e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{
		CustomerID:     c.ID,
		Items:          []invoice.Line{line(it, 3, "100")},
		PaymentStatus:  balance.StatusPartial,
		AmountReceived: types.MustMoney("354"),
	})
	require.NoError(t, err)
	e.Clock.Advance(48 * time.Hour)

	dup, err := e.Invoices.Duplicate(e.Ctx, e.Scope, src.ID)
	require.NoError(t, err)
	assert.NotEqual(t, src.ID, dup.ID)
	assert.Equal(t, "INV-0002", dup.InvoiceNumber)
	assert.Equal(t, balance.StatusUnpaid, dup.PaymentStatus)
	assert.Equal(t, src.GrandTotal, dup.BalanceAmount)
	assert.True(t, dup.StockPending)
	assert.Equal(t, time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC), dup.InvoiceDate)
	assert.Equal(t, qty(7), e.StockOf(t, it.ID))
	assert.Equal(t, types.MustMoney("354"), e.CustomerBalance(t, c.ID))
	e.RequireConsistent(t)

	fin, err := e.Invoices.Finalize(e.Ctx, e.Scope, dup.ID)
	require.NoError(t, err)
	assert.False(t, fin.StockPending)
	assert.Equal(t, qty(4), e.StockOf(t, it.ID))

	_, err = e.Invoices.Finalize(e.Ctx, e.Scope, dup.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))
	e.RequireConsistent(t)
}

func TestDuplicate_CancelBeforeFinalizeLeavesStock(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	it := e.Item(t, "Cotton Saree", 10, "60", "100")

	src, err := e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{CustomerID: c.ID, Items: []invoice.Line{line(it, 3, "100")}})
	require.NoError(t, err)
	dup, err := e.Invoices.Duplicate(e.Ctx, e.Scope, src.ID)
	require.NoError(t, err)

	_, err = e.Invoices.Cancel(e.Ctx, e.Scope, dup.ID)
	require.NoError(t, err)
	assert.Equal(t, qty(7), e.StockOf(t, it.ID))
	assert.Equal(t, src.GrandTotal, e.CustomerBalance(t, c.ID))
	e.RequireConsistent(t)
}

func TestDuplicate_ChecksStock(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	it := e.Item(t, "Cotton Saree", 5, "60", "100")

	src, err := e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{CustomerID: c.ID, Items: []invoice.Line{line(it, 3, "100")}})
	require.NoError(t, err)

	_, err = e.Invoices.Duplicate(e.Ctx, e.Scope, src.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))
	n, err := e.Repos.Invoices.CountAll(e.Ctx, e.Scope)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestCreate_FromQuotation(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	it := e.Item(t, "Cotton Saree", 10, "60", "100")

	q, err := e.Quotations.Create(e.Ctx, e.Scope, quotation.Draft{
		CustomerID: c.ID,
		Items: []quotation.Line{{
			ItemID: it.ID, ItemName: it.Name, Quantity: qty(2), Rate: types.MustMoney("100"), TaxPercent: types.NewPercent(18),
		}},
	})
	require.NoError(t, err)

	inv, err := e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{
		CustomerID:  c.ID,
		QuotationID: q.ID,
		Items:       []invoice.Line{line(it, 2, "100")},
	})
	require.NoError(t, err)
	assert.Equal(t, q.QuotationNumber, inv.QuotationNumber)

	got, err := e.Quotations.Get(e.Ctx, e.Scope, q.ID)
	require.NoError(t, err)
	assert.Equal(t, quotation.StatusConverted, got.Status)
	assert.Equal(t, inv.InvoiceNumber, got.InvoiceNumber)

	_, err = e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{
		CustomerID:  c.ID,
		QuotationID: q.ID,
		Items:       []invoice.Line{line(it, 1, "100")},
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))
	assert.Equal(t, qty(8), e.StockOf(t, it.ID), "failed conversion rolled back")

	_, err = e.Invoices.Cancel(e.Ctx, e.Scope, inv.ID)
	require.NoError(t, err)
	got, err = e.Quotations.Get(e.Ctx, e.Scope, q.ID)
	require.NoError(t, err)
	assert.Equal(t, quotation.StatusActive, got.Status)
	assert.Empty(t, got.InvoiceID)

	e.RequireConsistent(t)
}

func TestStats(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	it := e.Item(t, "Cotton Saree", 50, "60", "100")

	_, err := e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{CustomerID: c.ID, Items: []invoice.Line{line(it, 10, "100")}})
	require.NoError(t, err)
	_, err = e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{
		CustomerID: c.ID, Items: []invoice.Line{line(it, 5, "100")}, PaymentStatus: balance.StatusPartial, AmountReceived: types.MustMoney("590"),
	})
	require.NoError(t, err)
	cancelled, err := e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{CustomerID: c.ID, Items: []invoice.Line{line(it, 1, "100")}})
	require.NoError(t, err)
	_, err = e.Invoices.Cancel(e.Ctx, e.Scope, cancelled.ID)
	require.NoError(t, err)

	st, err := e.Invoices.Stats(e.Ctx, e.Scope)
	require.NoError(t, err)
	assert.EqualValues(t, 2, st.TotalInvoices)
	assert.EqualValues(t, 2, st.TodayInvoices)
	assert.Equal(t, types.MustMoney("1770"), st.TodayTotal)
	assert.Equal(t, types.MustMoney("1180"), st.PendingAmount)
	assert.EqualValues(t, 1, st.PaymentStatusCounts[balance.StatusUnpaid])
	assert.EqualValues(t, 1, st.PaymentStatusCounts[balance.StatusPaid])
	assert.EqualValues(t, 0, st.PaymentStatusCounts[balance.StatusPartial])
}

func TestInvoicesAreAccountScoped(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	it := e.Item(t, "Cotton Saree", 10, "60", "100")

	inv, err := e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{CustomerID: c.ID, Items: []invoice.Line{line(it, 1, "100")}})
	require.NoError(t, err)

	other := account.MustScope("acct-2")
	_, err = e.Invoices.Get(e.Ctx, other, inv.ID)
	assert.True(t, apperror.IsNotFound(err))
	_, err = e.Invoices.Cancel(e.Ctx, other, inv.ID)
	assert.True(t, apperror.IsNotFound(err))
	assert.Equal(t, qty(9), e.StockOf(t, it.ID))
}
