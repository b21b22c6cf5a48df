package quotation_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weavebooks/internal/app/apptest"
	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/catalogs/customer"
	"weavebooks/internal/domain/catalogs/item"
	"weavebooks/internal/domain/documents/invoice"
	"weavebooks/internal/domain/documents/quotation"
	"weavebooks/internal/domain/plan"
)

func quoteLine(it *item.Item, n int64, rate string, discount float64) quotation.Line {
	return quotation.Line{
		ItemID:          it.ID,
		ItemName:        it.Name,
		Quantity:        types.NewQuantityFromInt(n),
		Rate:            types.MustMoney(rate),
		DiscountPercent: types.NewPercent(discount),
		TaxPercent:      types.NewPercent(18),
	}
}

func TestCreate_TotalsDiscountBeforeTax(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	it := e.Item(t, "Cotton Saree", 0, "60", "100")

	q, err := e.Quotations.Create(e.Ctx, e.Scope, quotation.Draft{
		CustomerID: c.ID,
		Items:      []quotation.Line{quoteLine(it, 10, "100", 10), quoteLine(it, 1, "33.33", 0)},
	})
	require.NoError(t, err)

	assert.Equal(t, "QTN-001", q.QuotationNumber)
	assert.Equal(t, quotation.StatusDraft, q.Status)
	assert.Equal(t, types.MustMoney("1033.33"), q.SubTotal)
	assert.Equal(t, types.MustMoney("100"), q.TotalDiscount)
	// 162 + 6.00 (33.33 * 18% = 5.9994)
	assert.Equal(t, types.MustMoney("168"), q.TotalTax)
	assert.Equal(t, types.MustMoney("1101.33"), q.GrandTotal)
	assert.Equal(t, "Asha Textiles", q.Snapshot.Name)
}

func TestCreate_Validates(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	it := e.Item(t, "Cotton Saree", 0, "60", "100")

	_, err := e.Quotations.Create(e.Ctx, e.Scope, quotation.Draft{CustomerID: c.ID, Items: []quotation.Line{quoteLine(it, 1, "10", 101)}})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = e.Quotations.Create(e.Ctx, e.Scope, quotation.Draft{CustomerID: c.ID, Status: "bogus", Items: []quotation.Line{quoteLine(it, 1, "10", 0)}})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestUpdate_ResnapshotsAndRecomputes(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	other := e.Customer(t, "Bhavani Silks", "0")
	it := e.Item(t, "Cotton Saree", 0, "60", "100")

	q, err := e.Quotations.Create(e.Ctx, e.Scope, quotation.Draft{CustomerID: c.ID, Items: []quotation.Line{quoteLine(it, 1, "100", 0)}})
	require.NoError(t, err)

	items := []quotation.Line{quoteLine(it, 2, "100", 0)}
	sent := quotation.StatusSent
	up, err := e.Quotations.Update(e.Ctx, e.Scope, q.ID, quotation.Patch{CustomerID: &other.ID, Items: &items, Status: &sent})
	require.NoError(t, err)
	assert.Equal(t, "Bhavani Silks", up.Snapshot.Name)
	assert.Equal(t, types.MustMoney("236"), up.GrandTotal)
	assert.Equal(t, quotation.StatusSent, up.Status)

	converted := quotation.StatusConverted
	_, err = e.Quotations.Update(e.Ctx, e.Scope, q.ID, quotation.Patch{Status: &converted})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestConverted_IsReadOnly(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	it := e.Item(t, "Cotton Saree", 10, "60", "100")

	q, err := e.Quotations.Create(e.Ctx, e.Scope, quotation.Draft{CustomerID: c.ID, Items: []quotation.Line{quoteLine(it, 1, "100", 0)}})
	require.NoError(t, err)
	_, err = e.Invoices.Create(e.Ctx, e.Scope, invoice.Draft{
		CustomerID:  c.ID,
		QuotationID: q.ID,
		Items:       []invoice.Line{{ItemID: it.ID, ItemName: it.Name, Quantity: types.NewQuantityFromInt(1), Rate: types.MustMoney("100")}},
	})
	require.NoError(t, err)

	notes := "revised"
	_, err = e.Quotations.Update(e.Ctx, e.Scope, q.ID, quotation.Patch{Notes: &notes})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))
}

func TestDuplicate(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	it := e.Item(t, "Cotton Saree", 0, "60", "100")

	q, err := e.Quotations.Create(e.Ctx, e.Scope, quotation.Draft{CustomerID: c.ID, Items: []quotation.Line{quoteLine(it, 3, "100", 5)}})
	require.NoError(t, err)
	e.Clock.Advance(72 * time.Hour)

	dup, err := e.Quotations.Duplicate(e.Ctx, e.Scope, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "QTN-002", dup.QuotationNumber)
	assert.Equal(t, quotation.StatusActive, dup.Status)
	assert.Equal(t, q.GrandTotal, dup.GrandTotal)
	assert.Equal(t, time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC), dup.QuoteDate)

	dup.Items[0].Quantity = types.NewQuantityFromInt(99)
	src, err := e.Quotations.Get(e.Ctx, e.Scope, q.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(3), src.Items[0].Quantity)
}

func TestPendingCountAndDelete(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	it := e.Item(t, "Cotton Saree", 0, "60", "100")

	mk := func(status string) *quotation.Quotation {
		q, err := e.Quotations.Create(e.Ctx, e.Scope, quotation.Draft{CustomerID: c.ID, Status: status, Items: []quotation.Line{quoteLine(it, 1, "100", 0)}})
		require.NoError(t, err)
		return q
	}
	draft := mk("")
	mk(quotation.StatusSent)
	mk(quotation.StatusDeclined)

	n, err := e.Quotations.CountPending(e.Ctx, e.Scope)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	require.NoError(t, e.Quotations.Delete(e.Ctx, e.Scope, draft.ID))
	_, err = e.Quotations.Get(e.Ctx, e.Scope, draft.ID)
	assert.True(t, apperror.IsNotFound(err))
	assert.True(t, apperror.IsNotFound(e.Quotations.Delete(e.Ctx, e.Scope, draft.ID)))

	res, err := e.Quotations.List(e.Ctx, e.Scope, quotation.ListFilter{Status: quotation.StatusSent})
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
}

func TestCreate_FreePlanLimit(t *testing.T) {
	e := apptest.New(t, plan.KeyFree)
	c := &customer.Customer{Name: "Asha Textiles"}
	require.NoError(t, e.Customers.Create(e.Ctx, e.Scope, c))
	it := e.Item(t, "Cotton Saree", 0, "60", "100")

	for i := 0; i < 9; i++ {
		_, err := e.Quotations.Create(e.Ctx, e.Scope, quotation.Draft{
			CustomerID: c.ID,
			Notes:      fmt.Sprintf("quote %d", i),
			Items:      []quotation.Line{quoteLine(it, 1, "100", 0)},
		})
		require.NoError(t, err)
	}
	_, err := e.Quotations.Create(e.Ctx, e.Scope, quotation.Draft{CustomerID: c.ID, Items: []quotation.Line{quoteLine(it, 1, "100", 0)}})
	assert.True(t, apperror.HasCode(err, apperror.CodeQuotaExceeded))
}
