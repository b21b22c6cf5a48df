package reports_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weavebooks/internal/app/apptest"
	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/catalogs/category"
	"weavebooks/internal/domain/catalogs/customer"
	"weavebooks/internal/domain/catalogs/item"
	"weavebooks/internal/domain/documents/invoice"
	"weavebooks/internal/domain/documents/purchase_bill"
	"weavebooks/internal/domain/documents/quotation"
	"weavebooks/internal/domain/plan"
	"weavebooks/internal/domain/reports"
)

func sell(t *testing.T, e *apptest.Env, c *customer.Customer, it *item.Item, n int64, rate string, mut func(*invoice.Draft)) *invoice.Invoice {
	t.Helper()
	d := invoice.Draft{
		CustomerID: c.ID,
		Items: []invoice.Line{{
			ItemID:     it.ID,
			ItemName:   it.Name,
			Quantity:   types.NewQuantityFromInt(n),
			Rate:       types.MustMoney(rate),
			TaxPercent: types.NewPercent(18),
		}},
	}
	if mut != nil {
		mut(&d)
	}
	inv, err := e.Invoices.Create(e.Ctx, e.Scope, d)
	require.NoError(t, err)
	e.Tick()
	return inv
}

func day(d time.Time) *time.Time { return &d }

func TestStats(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	e.Weaver(t, "Ravi Looms", "500", 30)
	saree := e.Item(t, "Cotton Saree", 20, "60", "100")
	e.Item(t, "Silk Stole", 3, "10", "50")

	sell(t, e, c, saree, 10, "100", func(d *invoice.Draft) { d.AmountReceived = types.MustMoney("180") })
	cancelled := sell(t, e, c, saree, 1, "100", nil)
	_, err := e.Invoices.Cancel(e.Ctx, e.Scope, cancelled.ID)
	require.NoError(t, err)

	_, err = e.Quotations.Create(e.Ctx, e.Scope, quotation.Draft{
		CustomerID: c.ID,
		Items: []quotation.Line{{
			ItemID: saree.ID, ItemName: saree.Name,
			Quantity: types.NewQuantityFromInt(1), Rate: types.MustMoney("100"),
		}},
	})
	require.NoError(t, err)

	st, err := e.Reports.Stats(e.Ctx, e.Scope, reports.StatsQuery{})
	require.NoError(t, err)

	assert.Equal(t, types.MustMoney("1180"), st.TotalSales)
	assert.Equal(t, types.MustMoney("1000"), st.Receivables)
	assert.Equal(t, types.MustMoney("500"), st.Payables)
	assert.Equal(t, types.MustMoney("630"), st.InventoryValue)
	assert.Equal(t, int64(1), st.LowStockCount)
	assert.Equal(t, int64(1), st.QuotePending)

	require.Len(t, st.RecentRevenue, reports.DefaultDays)
	require.Len(t, st.DaysLabels, reports.DefaultDays)
	assert.Equal(t, types.MustMoney("1180"), st.RecentRevenue[6])
	for _, v := range st.RecentRevenue[:6] {
		assert.True(t, v.IsZero())
	}
	assert.Equal(t, "Wed", st.DaysLabels[0])
	assert.Equal(t, "Tue", st.DaysLabels[6])
}

func TestStats_LongSeriesLabelsByDate(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)

	st, err := e.Reports.Stats(e.Ctx, e.Scope, reports.StatsQuery{Days: 14})
	require.NoError(t, err)
	require.Len(t, st.RecentRevenue, 14)
	assert.Equal(t, "25 Feb", st.DaysLabels[0])
	assert.Equal(t, "10 Mar", st.DaysLabels[13])
}

func TestStats_FreePlanHasNoSeries(t *testing.T) {
	e := apptest.New(t, plan.KeyFree)
	c := e.Customer(t, "Asha Textiles", "0")
	saree := e.Item(t, "Cotton Saree", 20, "60", "100")
	sell(t, e, c, saree, 1, "100", nil)

	st, err := e.Reports.Stats(e.Ctx, e.Scope, reports.StatsQuery{})
	require.NoError(t, err)
	assert.Equal(t, types.MustMoney("118"), st.TotalSales)
	assert.Nil(t, st.RecentRevenue)
	assert.Nil(t, st.DaysLabels)
}

func TestTopSellingItems(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	saree := e.Item(t, "Cotton Saree", 20, "60", "100")
	stole := e.Item(t, "Silk Stole", 20, "10", "50")

	sell(t, e, c, stole, 1, "50", nil)
	sell(t, e, c, saree, 4, "100", nil)
	sell(t, e, c, saree, 6, "100", nil)

	top, err := e.Reports.TopSellingItems(e.Ctx, e.Scope, 0)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, saree.ID, top[0].ItemID)
	assert.Equal(t, types.NewQuantityFromInt(10), top[0].Quantity)
	assert.Equal(t, types.MustMoney("1180"), top[0].Revenue)
	assert.Equal(t, stole.ID, top[1].ItemID)

	top, err = e.Reports.TopSellingItems(e.Ctx, e.Scope, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestTopSellingItems_RequiresReportsFeature(t *testing.T) {
	e := apptest.New(t, plan.KeyFree)

	_, err := e.Reports.TopSellingItems(e.Ctx, e.Scope, 5)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
}

func TestRecentInvoices_DueState(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	saree := e.Item(t, "Cotton Saree", 20, "60", "100")

	overdue := sell(t, e, c, saree, 1, "100", func(d *invoice.Draft) { d.DueDate = day(apptest.Epoch.AddDate(0, 0, -1)) })
	paid := sell(t, e, c, saree, 1, "100", func(d *invoice.Draft) {
		d.DueDate = day(apptest.Epoch.AddDate(0, 0, -1))
		d.AmountReceived = types.MustMoney("118")
	})
	open := sell(t, e, c, saree, 1, "100", func(d *invoice.Draft) { d.DueDate = day(apptest.Epoch.AddDate(0, 0, 10)) })

	rows, err := e.Reports.RecentInvoices(e.Ctx, e.Scope, 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	byID := map[string]reports.RecentInvoice{}
	for _, r := range rows {
		byID[r.InvoiceID] = r
	}
	assert.Equal(t, reports.DueOverdue, byID[overdue.ID].Status)
	assert.Equal(t, "danger", byID[overdue.ID].StatusColor)
	assert.Equal(t, reports.DuePaid, byID[paid.ID].Status)
	assert.Equal(t, reports.DueOpen, byID[open.ID].Status)
	assert.Equal(t, open.ID, rows[0].InvoiceID, "newest first")
}

func TestCalendarEvents_GroupsByDueDay(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	saree := e.Item(t, "Cotton Saree", 20, "60", "100")

	mid := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	sell(t, e, c, saree, 1, "100", func(d *invoice.Draft) { d.DueDate = day(mid) })
	sell(t, e, c, saree, 2, "100", func(d *invoice.Draft) { d.DueDate = day(mid) })
	sell(t, e, c, saree, 1, "100", func(d *invoice.Draft) { d.DueDate = day(time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)) })
	gone := sell(t, e, c, saree, 1, "100", func(d *invoice.Draft) { d.DueDate = day(mid) })
	_, err := e.Invoices.Cancel(e.Ctx, e.Scope, gone.ID)
	require.NoError(t, err)

	events, err := e.Reports.CalendarEvents(e.Ctx, e.Scope, 3, 2026)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Len(t, events["2026-03-15"], 2)
	assert.Equal(t, "Asha Textiles", events["2026-03-15"][0].CustomerName)

	events, err = e.Reports.CalendarEvents(e.Ctx, e.Scope, 0, 0)
	require.NoError(t, err)
	assert.Len(t, events, 1, "defaults to the current month")

	events, err = e.Reports.CalendarEvents(e.Ctx, e.Scope, 4, 2026)
	require.NoError(t, err)
	assert.Len(t, events["2026-04-02"], 1)
}

func TestNotifications(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)

	list, err := e.Reports.Notifications(e.Ctx, e.Scope)
	require.NoError(t, err)
	assert.Empty(t, list)

	c := e.Customer(t, "Asha Textiles", "0")
	saree := e.Item(t, "Cotton Saree", 6, "60", "100")
	sell(t, e, c, saree, 2, "100", func(d *invoice.Draft) { d.DueDate = day(apptest.Epoch.AddDate(0, 0, -3)) })

	list, err = e.Reports.Notifications(e.Ctx, e.Scope)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "low_stock", list[0].ID)
	assert.Equal(t, "1 items are below reorder levels.", list[0].Message)
	assert.Equal(t, "overdue", list[1].ID)
	assert.Equal(t, "danger", list[1].Type)
}

func TestActivity_NewestFirstAndCapped(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "0")
	saree := e.Item(t, "Cotton Saree", 20, "60", "100")
	e.Weaver(t, "Ravi Looms", "0", 0)
	e.Item(t, "Silk Stole", 20, "10", "50")
	e.Weaver(t, "Meena Handlooms", "0", 0)
	inv := sell(t, e, c, saree, 1, "100", nil)
	e.Weaver(t, "Kiran Weaves", "0", 0)

	feed, err := e.Reports.Activity(e.Ctx, e.Scope)
	require.NoError(t, err)
	require.Len(t, feed, 6)

	assert.Equal(t, reports.ActivityWeaver, feed[0].Type)
	assert.Contains(t, feed[0].Desc, "Kiran Weaves")
	assert.Equal(t, reports.ActivityInvoice, feed[1].Type)
	assert.Equal(t, "Invoice "+inv.InvoiceNumber, feed[1].Title)
	for i := 1; i < len(feed); i++ {
		assert.False(t, feed[i].Time.After(feed[i-1].Time))
	}
}

func TestSearch_GroupsCappedHitsByType(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	buyer := e.Customer(t, "Kanchi Traders", "0")
	gone := e.Customer(t, "Kanchi Old Mart", "0")
	require.NoError(t, e.Customers.Deactivate(e.Ctx, e.Scope, gone.ID))
	saree := e.Item(t, "Kanchi Saree A", 20, "60", "100")
	e.Item(t, "Kanchi Saree B", 20, "60", "100")
	e.Item(t, "Kanchi Saree C", 20, "60", "100")
	e.Item(t, "Kanchi Saree D", 20, "60", "100")
	e.Item(t, "Cotton Towel", 20, "10", "20")
	w := e.Weaver(t, "Kanchi Looms", "0", 0)
	cat := &category.Category{Name: "Kanchi Weaves"}
	require.NoError(t, e.Categories.Create(e.Ctx, e.Scope, cat))
	inv := sell(t, e, buyer, saree, 1, "100", nil)
	bill, err := e.PurchaseBills.Create(e.Ctx, e.Scope, purchase_bill.Draft{
		WeaverID: w.ID,
		Items: []purchase_bill.Line{{
			ItemID:   saree.ID,
			ItemName: saree.Name,
			Quantity: types.NewQuantityFromInt(2),
			Rate:     types.MustMoney("60"),
		}},
	})
	require.NoError(t, err)

	hits, err := e.Reports.Search(e.Ctx, e.Scope, "  kanchi ")
	require.NoError(t, err)
	require.Len(t, hits, 8, "inactive customers are skipped and each type is capped")
	assert.Equal(t, []reports.SearchHit{
		{Type: reports.HitCustomer, ID: buyer.ID, Name: "Kanchi Traders"},
		{Type: reports.HitItem, ID: saree.ID, Name: "Kanchi Saree A"},
		{Type: reports.HitItem, ID: hits[2].ID, Name: "Kanchi Saree B"},
		{Type: reports.HitItem, ID: hits[3].ID, Name: "Kanchi Saree C"},
		{Type: reports.HitInvoice, ID: inv.ID, Name: inv.InvoiceNumber},
		{Type: reports.HitWeaver, ID: w.ID, Name: "Kanchi Looms"},
		{Type: reports.HitCategory, ID: cat.ID, Name: "Kanchi Weaves"},
		{Type: reports.HitBill, ID: bill.ID, Name: bill.BillNumber},
	}, hits)

	hits, err = e.Reports.Search(e.Ctx, e.Scope, inv.InvoiceNumber)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, reports.HitInvoice, hits[0].Type)

	hits, err = e.Reports.Search(e.Ctx, e.Scope, " ")
	require.NoError(t, err)
	assert.Empty(t, hits)
}
