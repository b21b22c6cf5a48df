package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/numerator"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/catalogs/customer"
	"weavebooks/internal/domain/catalogs/item"
	"weavebooks/internal/domain/documents/purchase_bill"
	"weavebooks/internal/domain/payments/vendor_payment"
)

var (
	acctA = account.MustScope("acct-a")
	acctB = account.MustScope("acct-b")
)

func TestStore_RecordsAreAccountScoped(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Customers().Create(ctx, acctA, &customer.Customer{ID: "c1", Name: "Asha"}))

	_, err := s.Customers().Get(ctx, acctB, "c1")
	assert.True(t, apperror.IsNotFound(err))

	list, total, err := s.Customers().List(ctx, acctB, customer.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := &customer.Customer{ID: "c1", Name: "Asha"}
	require.NoError(t, s.Customers().Create(ctx, acctA, c))
	c.Name = "changed"

	got, err := s.Customers().Get(ctx, acctA, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.Name)
}

func TestStore_FailedUnitUndoesEveryWrite(t *testing.T) {
	ctx := context.Background()
	s := New()
	items := s.Items()
	require.NoError(t, items.Create(ctx, acctA, &item.Item{ID: "i1", Name: "Silk", CurrentStock: types.NewQuantityFromInt(10)}))
	require.NoError(t, s.Customers().Create(ctx, acctA, &customer.Customer{ID: "c1", Name: "Asha"}))

	boom := errors.New("boom")
	err := s.TxManager().RunInTransaction(ctx, func(ctx context.Context) error {
		_, ok, err := items.AdjustStock(ctx, acctA, "i1", types.NewQuantityFromInt(-4))
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, s.Customers().AdjustBalance(ctx, acctA, "c1", types.MustMoney("250.00")))
		require.NoError(t, s.Customers().Create(ctx, acctA, &customer.Customer{ID: "c2", Name: "Ravi"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	it, err := items.Get(ctx, acctA, "i1")
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(10), it.CurrentStock)

	c, err := s.Customers().Get(ctx, acctA, "c1")
	require.NoError(t, err)
	assert.Equal(t, types.Money(0), c.CurrentBalance)

	_, err = s.Customers().Get(ctx, acctA, "c2")
	assert.True(t, apperror.IsNotFound(err))
}

func TestStore_UpdateKeepsCachedBalance(t *testing.T) {
	ctx := context.Background()
	s := New()
	repo := s.Customers()
	require.NoError(t, repo.Create(ctx, acctA, &customer.Customer{ID: "c1", Name: "Asha", CurrentBalance: types.MustMoney("100.00")}))

	require.NoError(t, repo.Update(ctx, acctA, &customer.Customer{ID: "c1", Name: "Asha K", CurrentBalance: 0}))

	got, err := repo.Get(ctx, acctA, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Asha K", got.Name)
	assert.Equal(t, types.MustMoney("100.00"), got.CurrentBalance)
}

func TestItemRepo_AdjustStockGuard(t *testing.T) {
	ctx := context.Background()
	s := New()
	items := s.Items()
	require.NoError(t, items.Create(ctx, acctA, &item.Item{ID: "i1", Name: "Silk", CurrentStock: types.NewQuantityFromInt(3)}))

	lvl, ok, err := items.AdjustStock(ctx, acctA, "i1", types.NewQuantityFromInt(-5))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, types.NewQuantityFromInt(3), lvl.Current)

	lvl, ok, err = items.AdjustStock(ctx, acctA, "i1", types.NewQuantityFromInt(-3))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, lvl.Current.IsZero())

	_, _, err = items.AdjustStock(ctx, acctA, "missing", types.NewQuantityFromInt(1))
	assert.True(t, apperror.IsNotFound(err))
}

func TestCounter(t *testing.T) {
	ctx := context.Background()
	c := New().Counter()

	_, err := c.Next(ctx, acctA, "invoice")
	require.ErrorIs(t, err, numerator.ErrNotInitialized)

	require.NoError(t, c.Init(ctx, acctA, "invoice", 6))
	require.NoError(t, c.Init(ctx, acctA, "invoice", 100))
	n, err := c.Next(ctx, acctA, "invoice")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}

func TestVendorPaymentRepo_SumSkipsDeletedBills(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.PurchaseBills().Create(ctx, acctA, &purchase_bill.PurchaseBill{ID: "b1", WeaverID: "w1", CreatedAt: now}))
	require.NoError(t, s.PurchaseBills().Create(ctx, acctA, &purchase_bill.PurchaseBill{ID: "b2", WeaverID: "w1", CreatedAt: now}))

	vp := s.VendorPayments()
	require.NoError(t, vp.Create(ctx, acctA, &vendor_payment.VendorPayment{ID: "p1", WeaverID: "w1", BillID: "b1", Amount: types.MustMoney("10.00")}))
	require.NoError(t, vp.Create(ctx, acctA, &vendor_payment.VendorPayment{ID: "p2", WeaverID: "w1", BillID: "b2", Amount: types.MustMoney("20.00")}))
	require.NoError(t, vp.Create(ctx, acctA, &vendor_payment.VendorPayment{ID: "p3", WeaverID: "w1", Amount: types.MustMoney("5.00")}))
	require.NoError(t, s.PurchaseBills().Delete(ctx, acctA, "b2"))

	sums, err := vp.SumSettledByWeaver(ctx, acctA)
	require.NoError(t, err)
	assert.Equal(t, types.MustMoney("15.00"), sums["w1"])
}

func TestLatestNumber_ByCreationTime(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := s.Customers()
	require.NoError(t, repo.Create(ctx, acctA, &customer.Customer{ID: "a", Code: "C002", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, acctA, &customer.Customer{ID: "b", Code: "C001", CreatedAt: base}))

	n, err := repo.LatestNumber(ctx, acctA)
	require.NoError(t, err)
	assert.Equal(t, "C002", n)

	count, err := repo.CountAll(ctx, acctA)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
