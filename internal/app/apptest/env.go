// Package apptest builds a fully wired service graph over the memory store.
package apptest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"weavebooks/internal/app"
	"weavebooks/internal/core/account"
	"weavebooks/internal/core/clock"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/catalogs/customer"
	"weavebooks/internal/domain/catalogs/item"
	"weavebooks/internal/domain/catalogs/weaver"
	"weavebooks/internal/domain/plan"
	"weavebooks/internal/domain/reconcile"
	"weavebooks/internal/infrastructure/storage/memory"
	"weavebooks/pkg/logger"
)

// Epoch is the initial time of the test clock.
var Epoch = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

// Env is one account on a fresh store.
type Env struct {
	*app.Services
	Store *memory.Store
	Clock *clock.Fixed
	Scope account.Scope
	Ctx   context.Context
}

// New creates an environment whose account is on the given plan.
// Service logging is discarded.
func New(t testing.TB, planKey string) *Env {
	t.Helper()
	nop := logger.NewNop()
	logger.SetDefault(nop)

	store := memory.New()
	clk := clock.NewFixed(Epoch)
	svc := app.New(store.Repositories(), app.Options{Clock: clk})

	e := &Env{Services: svc, Store: store, Clock: clk, Scope: account.MustScope("acct-1"), Ctx: logger.WithLogger(context.Background(), nop)}
	require.NoError(t, store.Accounts().Create(e.Ctx, &plan.Account{
		ID:               e.Scope.ID(),
		Name:             "Loom House",
		SubscriptionType: planKey,
		CreatedAt:        Epoch,
	}))
	return e
}

// Tick advances the clock so creation order is observable.
func (e *Env) Tick() time.Time { return e.Clock.Advance(time.Minute) }

// Customer creates a customer with an opening balance.
func (e *Env) Customer(t testing.TB, name string, opening string) *customer.Customer {
	t.Helper()
	c := &customer.Customer{Name: name, OpeningBalance: types.MustMoney(opening)}
	require.NoError(t, e.Customers.Create(e.Ctx, e.Scope, c))
	e.Tick()
	return c
}

// Weaver creates a weaver with an opening balance and credit period.
func (e *Env) Weaver(t testing.TB, name string, opening string, creditDays int) *weaver.Weaver {
	t.Helper()
	w := &weaver.Weaver{Name: name, OpeningBalance: types.MustMoney(opening), CreditPeriodDays: creditDays}
	require.NoError(t, e.Weavers.Create(e.Ctx, e.Scope, w))
	e.Tick()
	return w
}

// Item creates an item with opening stock and prices.
func (e *Env) Item(t testing.TB, name string, opening int64, purchase, selling string) *item.Item {
	t.Helper()
	it := &item.Item{
		Name:          name,
		OpeningStock:  types.NewQuantityFromInt(opening),
		PurchasePrice: types.MustMoney(purchase),
		SellingPrice:  types.MustMoney(selling),
		ReorderLevel:  types.NewQuantityFromInt(5),
		TaxRate:       types.NewPercent(18),
	}
	require.NoError(t, e.Items.Create(e.Ctx, e.Scope, it))
	e.Tick()
	return it
}

// StockOf returns the item's current stock in whole units.
func (e *Env) StockOf(t testing.TB, itemID string) types.Quantity {
	t.Helper()
	it, err := e.Repos.Items.Get(e.Ctx, e.Scope, itemID)
	require.NoError(t, err)
	return it.CurrentStock
}

// CustomerBalance returns the cached balance.
func (e *Env) CustomerBalance(t testing.TB, id string) types.Money {
	t.Helper()
	c, err := e.Repos.Customers.Get(e.Ctx, e.Scope, id)
	require.NoError(t, err)
	return c.CurrentBalance
}

// WeaverBalance returns the cached balance.
func (e *Env) WeaverBalance(t testing.TB, id string) types.Money {
	t.Helper()
	w, err := e.Repos.Weavers.Get(e.Ctx, e.Scope, id)
	require.NoError(t, err)
	return w.CurrentBalance
}

// RequireConsistent runs the auditor and fails on any drift.
func (e *Env) RequireConsistent(t testing.TB) {
	t.Helper()
	rep, err := e.Auditor.Run(e.Ctx, e.Scope, reconcile.Options{})
	require.NoError(t, err)
	require.Empty(t, rep.Drifts, "cached projections drifted")
}
