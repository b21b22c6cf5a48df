package reconcile_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weavebooks/internal/app/apptest"
	"weavebooks/internal/core/account"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/balance"
	"weavebooks/internal/domain/catalogs/item"
	"weavebooks/internal/domain/documents/invoice"
	"weavebooks/internal/domain/documents/purchase_bill"
	"weavebooks/internal/domain/plan"
	"weavebooks/internal/domain/reconcile"
)

type fixture struct {
	*apptest.Env
	customerID string
	weaverID   string
	itemID     string
}

// newFixture books one invoice with a part payment and one bill.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "100")
	w := e.Weaver(t, "Ravi Looms", "200", 15)
	it := e.Item(t, "Cotton Saree", 20, "60", "100")

	_, err := e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{
		CustomerID: c.ID,
		Items: []invoice.Line{{
			ItemID: it.ID, ItemName: it.Name,
			Quantity: types.NewQuantityFromInt(10), Rate: types.MustMoney("100"), TaxPercent: types.NewPercent(18),
		}},
		PaymentStatus:  balance.StatusPartial,
		AmountReceived: types.MustMoney("180"),
	})
	require.NoError(t, err)

	_, err = e.PurchaseBills.Create(e.Ctx, e.Scope, purchase_bill.Draft{
		WeaverID: w.ID,
		Items: []purchase_bill.Line{{
			ItemID: it.ID, ItemName: it.Name,
			Quantity: types.NewQuantityFromInt(5), Rate: types.MustMoney("50"),
		}},
	})
	require.NoError(t, err)

	return &fixture{Env: e, customerID: c.ID, weaverID: w.ID, itemID: it.ID}
}

func TestRun_CleanAccount(t *testing.T) {
	f := newFixture(t)

	rep, err := f.Auditor.Run(f.Ctx, f.Scope, reconcile.Options{})
	require.NoError(t, err)
	assert.True(t, rep.Clean())
	assert.Equal(t, f.Scope.ID(), rep.AccountID)
	assert.Equal(t, 1, rep.Customers)
	assert.Equal(t, 1, rep.Weavers)
	assert.Equal(t, 1, rep.Items)

	assert.Equal(t, types.MustMoney("1100"), f.CustomerBalance(t, f.customerID))
	assert.Equal(t, types.MustMoney("450"), f.WeaverBalance(t, f.weaverID))
	assert.Equal(t, types.NewQuantityFromInt(15), f.StockOf(t, f.itemID))
}

func TestRun_ReportsDriftWithoutRepair(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.Repos.Customers.SetBalance(f.Ctx, f.Scope, f.customerID, 0))
	require.NoError(t, f.Repos.Weavers.SetBalance(f.Ctx, f.Scope, f.weaverID, types.MustMoney("1")))
	require.NoError(t, f.Repos.Items.SetStock(f.Ctx, f.Scope, f.itemID, types.NewQuantityFromInt(99)))

	rep, err := f.Auditor.Run(f.Ctx, f.Scope, reconcile.Options{})
	require.NoError(t, err)
	require.Len(t, rep.Drifts, 3)
	assert.Equal(t, 1, rep.Count(reconcile.KindCustomer))
	assert.Equal(t, 1, rep.Count(reconcile.KindWeaver))
	assert.Equal(t, 1, rep.Count(reconcile.KindItem))

	for _, d := range rep.Drifts {
		assert.False(t, d.Repaired)
		switch d.Kind {
		case reconcile.KindCustomer:
			assert.True(t, decimal.Zero.Equal(d.Cached))
			assert.True(t, decimal.NewFromInt(1100).Equal(d.Expected), "got %s", d.Expected)
		case reconcile.KindWeaver:
			assert.True(t, decimal.NewFromInt(450).Equal(d.Expected), "got %s", d.Expected)
		case reconcile.KindItem:
			assert.True(t, decimal.NewFromInt(99).Equal(d.Cached), "got %s", d.Cached)
			assert.True(t, decimal.NewFromInt(15).Equal(d.Expected), "got %s", d.Expected)
		}
	}

	assert.True(t, f.CustomerBalance(t, f.customerID).IsZero(), "report only")
}

func TestRun_Repair(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.Repos.Customers.SetBalance(f.Ctx, f.Scope, f.customerID, types.MustMoney("7")))
	require.NoError(t, f.Repos.Items.SetStock(f.Ctx, f.Scope, f.itemID, types.NewQuantityFromInt(2)))

	rep, err := f.Auditor.Run(f.Ctx, f.Scope, reconcile.Options{Repair: true})
	require.NoError(t, err)
	require.Len(t, rep.Drifts, 2)
	for _, d := range rep.Drifts {
		assert.True(t, d.Repaired)
	}

	assert.Equal(t, types.MustMoney("1100"), f.CustomerBalance(t, f.customerID))
	assert.Equal(t, types.NewQuantityFromInt(15), f.StockOf(t, f.itemID))
	f.RequireConsistent(t)
}

func TestRun_OpeningStockEditAfterMovements(t *testing.T) {
	f := newFixture(t)

	opening := types.NewQuantityFromInt(30)
	_, err := f.Items.Update(f.Ctx, f.Scope, f.itemID, item.Patch{OpeningStock: &opening})
	require.NoError(t, err)

	rep, err := f.Auditor.Run(f.Ctx, f.Scope, reconcile.Options{})
	require.NoError(t, err)
	require.Len(t, rep.Drifts, 1)
	d := rep.Drifts[0]
	assert.Equal(t, reconcile.KindItem, d.Kind)
	assert.True(t, decimal.NewFromInt(15).Equal(d.Cached), "got %s", d.Cached)
	assert.True(t, decimal.NewFromInt(25).Equal(d.Expected), "got %s", d.Expected)
}

func TestRun_IgnoresOtherAccounts(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.Repos.Customers.SetBalance(f.Ctx, f.Scope, f.customerID, 0))

	rep, err := f.Auditor.Run(f.Ctx, account.MustScope("acct-2"), reconcile.Options{Repair: true})
	require.NoError(t, err)
	assert.True(t, rep.Clean())
	assert.Zero(t, rep.Customers)
	assert.True(t, f.CustomerBalance(t, f.customerID).IsZero())
}
