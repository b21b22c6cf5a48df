package customer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weavebooks/internal/app/apptest"
	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain"
	"weavebooks/internal/domain/catalogs/customer"
	"weavebooks/internal/domain/plan"
)

func TestCreate_AssignsCodeAndBalance(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)

	first := e.Customer(t, "Asha Textiles", "250.50")
	second := e.Customer(t, "Bhavani Silks", "0")

	assert.Equal(t, "C001", first.Code)
	assert.Equal(t, "C002", second.Code)
	assert.Equal(t, customer.StatusActive, first.Status)
	assert.Equal(t, types.MustMoney("250.50"), first.CurrentBalance)
	e.RequireConsistent(t)
}

func TestCreate_Validates(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)

	err := e.Customers.Create(e.Ctx, e.Scope, &customer.Customer{Name: "  "})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	err = e.Customers.Create(e.Ctx, e.Scope, &customer.Customer{Name: "Asha", Email: "not-an-email"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestUpdate_OpeningBalanceShiftsCurrent(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	c := e.Customer(t, "Asha Textiles", "100")
	require.NoError(t, e.Repos.Customers.AdjustBalance(e.Ctx, e.Scope, c.ID, types.MustMoney("40")))

	opening := types.MustMoney("150")
	name := "Asha Textiles Pvt"
	got, err := e.Customers.Update(e.Ctx, e.Scope, c.ID, customer.Patch{OpeningBalance: &opening, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
	assert.Equal(t, types.MustMoney("190"), got.CurrentBalance)
}

func TestList_SearchAndDeactivate(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	e.Customer(t, "Meera Weaves", "0")
	asha := e.Customer(t, "Asha Textiles", "0")
	e.Customer(t, "Bhavani Silks", "0")

	res, err := e.Customers.List(e.Ctx, e.Scope, customer.ListFilter{})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.Equal(t, "Asha Textiles", res.Items[0].Name)
	assert.EqualValues(t, 3, res.TotalCount)
	assert.Equal(t, domain.DefaultLimit, res.Limit)

	res, err = e.Customers.List(e.Ctx, e.Scope, customer.ListFilter{ListFilter: domain.ListFilter{Search: "silk"}})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Bhavani Silks", res.Items[0].Name)

	res, err = e.Customers.List(e.Ctx, e.Scope, customer.ListFilter{ListFilter: domain.ListFilter{Search: asha.Code}})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)

	require.NoError(t, e.Customers.Deactivate(e.Ctx, e.Scope, asha.ID))
	res, err = e.Customers.List(e.Ctx, e.Scope, customer.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)

	got, err := e.Customers.Get(e.Ctx, e.Scope, asha.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive())
}

func TestGet_NotFound(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	_, err := e.Customers.Get(e.Ctx, e.Scope, "missing")
	assert.True(t, apperror.IsNotFound(err))
}
