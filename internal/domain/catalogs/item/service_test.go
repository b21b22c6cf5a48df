package item_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weavebooks/internal/app/apptest"
	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/catalogs/item"
	"weavebooks/internal/domain/documents/invoice"
	"weavebooks/internal/domain/plan"
)

func qty(n int64) types.Quantity { return types.NewQuantityFromInt(n) }

func TestCreate_Defaults(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)

	it := &item.Item{Name: "  Cotton Saree ", OpeningStock: qty(12)}
	require.NoError(t, e.Items.Create(e.Ctx, e.Scope, it))
	assert.Equal(t, "Cotton Saree", it.Name)
	assert.Equal(t, "PCS", it.Unit)
	assert.Equal(t, "goods", it.ItemType)
	assert.Equal(t, item.StatusActive, it.Status)
	assert.Equal(t, qty(12), it.CurrentStock)

	err := e.Items.Create(e.Ctx, e.Scope, &item.Item{Name: "cotton saree"})
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))
	e.RequireConsistent(t)
}

func TestCreate_FreePlanLimit(t *testing.T) {
	e := apptest.New(t, plan.KeyFree)

	for i := 0; i < 9; i++ {
		require.NoError(t, e.Items.Create(e.Ctx, e.Scope, &item.Item{Name: fmt.Sprintf("Item %d", i)}))
	}
	err := e.Items.Create(e.Ctx, e.Scope, &item.Item{Name: "One too many"})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeQuotaExceeded))

	appErr, _ := apperror.AsAppError(err)
	assert.EqualValues(t, 10, appErr.Details["limit"])
}

func TestUpdate_OpeningStockSync(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	it := e.Item(t, "Cotton Saree", 10, "60", "100")

	opening := qty(15)
	got, err := e.Items.Update(e.Ctx, e.Scope, it.ID, item.Patch{OpeningStock: &opening})
	require.NoError(t, err)
	assert.Equal(t, qty(15), got.CurrentStock, "no movements yet")
	e.RequireConsistent(t)

	_, err = e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{
		CustomerID: c.ID,
		Items:      []invoice.Line{{ItemID: it.ID, ItemName: it.Name, Quantity: qty(4), Rate: types.MustMoney("100")}},
	})
	require.NoError(t, err)

	opening = qty(20)
	got, err = e.Items.Update(e.Ctx, e.Scope, it.ID, item.Patch{OpeningStock: &opening})
	require.NoError(t, err)
	assert.Equal(t, qty(11), got.CurrentStock, "moved stock keeps its value")
	assert.Equal(t, qty(20), got.OpeningStock)
}

func TestUpdate_RenameConflict(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	e.Item(t, "Cotton Saree", 1, "60", "100")
	silk := e.Item(t, "Silk Dupatta", 1, "60", "100")

	name := "COTTON SAREE"
	_, err := e.Items.Update(e.Ctx, e.Scope, silk.ID, item.Patch{Name: &name})
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))

	name = "Silk dupatta"
	_, err = e.Items.Update(e.Ctx, e.Scope, silk.ID, item.Patch{Name: &name})
	assert.NoError(t, err, "case change of its own name")
}

func TestList_FiltersAndHistory(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	low := e.Item(t, "Silk Dupatta", 3, "60", "100")
	e.Item(t, "Cotton Saree", 30, "60", "100")
	gone := e.Item(t, "Linen Shawl", 30, "60", "100")
	require.NoError(t, e.Items.Deactivate(e.Ctx, e.Scope, gone.ID))

	res, err := e.Items.List(e.Ctx, e.Scope, item.ListFilter{})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Cotton Saree", res.Items[0].Name)

	res, err = e.Items.List(e.Ctx, e.Scope, item.ListFilter{LowStockOnly: true})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, low.ID, res.Items[0].ID)

	_, err = e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{
		CustomerID: c.ID,
		Items:      []invoice.Line{{ItemID: low.ID, ItemName: low.Name, Quantity: qty(2), Rate: types.MustMoney("100")}},
	})
	require.NoError(t, err)

	hist, err := e.Items.StockHistory(e.Ctx, e.Scope, low.ID, 10)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "Sold via invoice INV-0001", hist[0].Reason)

	_, err = e.Items.StockHistory(e.Ctx, e.Scope, "missing", 10)
	assert.True(t, apperror.IsNotFound(err))
}
