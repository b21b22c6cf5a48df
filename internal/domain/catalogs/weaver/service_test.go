package weaver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weavebooks/internal/app/apptest"
	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/catalogs/weaver"
	"weavebooks/internal/domain/plan"
)

func TestCreate(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)

	w := &weaver.Weaver{Name: "Kanchi Looms", IFSC: "hdfc0001234", OpeningBalance: types.MustMoney("75")}
	require.NoError(t, e.Weavers.Create(e.Ctx, e.Scope, w))
	assert.Equal(t, "W001", w.Code)
	assert.Equal(t, "HDFC0001234", w.IFSC)
	assert.Equal(t, types.MustMoney("75"), w.CurrentBalance)

	err := e.Weavers.Create(e.Ctx, e.Scope, &weaver.Weaver{Name: "Bad", CreditPeriodDays: -1})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	e.RequireConsistent(t)
}

func TestList_Ordering(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	e.Weaver(t, "Zari Works", "0", 0)
	e.Weaver(t, "Anand Handloom", "0", 0)

	res, err := e.Weavers.List(e.Ctx, e.Scope, weaver.ListFilter{})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Anand Handloom", res.Items[0].Name)

	res, err = e.Weavers.List(e.Ctx, e.Scope, weaver.ListFilter{Newest: true})
	require.NoError(t, err)
	assert.Equal(t, "Anand Handloom", res.Items[0].Name)
	assert.Equal(t, "Zari Works", res.Items[1].Name)
}

func TestUpdate_OpeningBalanceAndDeactivate(t *testing.T) {
	e := apptest.New(t, plan.KeyPro)
	w := e.Weaver(t, "Kanchi Looms", "100", 30)

	opening := types.MustMoney("60")
	got, err := e.Weavers.Update(e.Ctx, e.Scope, w.ID, weaver.Patch{OpeningBalance: &opening})
	require.NoError(t, err)
	assert.Equal(t, types.MustMoney("60"), got.CurrentBalance)
	e.RequireConsistent(t)

	require.NoError(t, e.Weavers.Deactivate(e.Ctx, e.Scope, w.ID))
	res, err := e.Weavers.List(e.Ctx, e.Scope, weaver.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}
