package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weavebooks/internal/app/apptest"
	appctx "weavebooks/internal/core/context"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/auth"
	"weavebooks/internal/domain/plan"
	"weavebooks/internal/infrastructure/http/v1/handlers"
	"weavebooks/internal/infrastructure/metrics"
	"weavebooks/pkg/logger"
)

type apiFixture struct {
	env    *apptest.Env
	router http.Handler
	jwt    *auth.JWTService
	token  string
}

func newAPI(t *testing.T, ping handlers.PingFunc) *apiFixture {
	t.Helper()
	env := apptest.New(t, plan.KeyPro)
	jwt := auth.NewJWTService(auth.DefaultJWTConfig("test-secret"))
	router := NewRouter(RouterConfig{
		Services:     env.Services,
		Logger:       logger.NewNop(),
		JWTValidator: jwt,
		Metrics:      metrics.New(),
		Ping:         ping,
	})
	f := &apiFixture{env: env, router: router, jwt: jwt}
	f.token = f.tokenFor(t, env.Scope.ID())
	return f
}

func (f *apiFixture) tokenFor(t *testing.T, accountID string) string {
	t.Helper()
	token, _, err := f.jwt.GenerateAccessToken(appctx.UserContext{UserID: "u-1", AccountID: accountID})
	require.NoError(t, err)
	return token
}

func (f *apiFixture) do(t *testing.T, token, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestRouter_RequiresBearerToken(t *testing.T) {
	f := newAPI(t, nil)

	rec, body := f.do(t, "", http.MethodGet, "/api/v1/customers", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))

	rec, _ = f.do(t, "not-a-jwt", http.MethodGet, "/api/v1/customers", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_Healthz(t *testing.T) {
	f := newAPI(t, nil)
	rec, body := f.do(t, "", http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])

	down := newAPI(t, func(context.Context) error { return errors.New("store down") })
	rec, body = down.do(t, "", http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unavailable", body["status"])
}

func TestRouter_InvoiceLifecycle(t *testing.T) {
	f := newAPI(t, nil)
	it := f.env.Item(t, "Silk Saree", 20, "400", "1000")

	rec, cust := f.do(t, f.token, http.MethodPost, "/api/v1/customers", map[string]any{
		"customer_name": "Anand Textiles",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	customerID, _ := cust["customer_id"].(string)
	require.NotEmpty(t, customerID)

	rec, inv := f.do(t, f.token, http.MethodPost, "/api/v1/invoices", map[string]any{
		"customer_id": customerID,
		"items": []map[string]any{
			{"item_id": it.ID, "qty": 2, "rate": 1000, "tax_percent": 0},
		},
		"payment_status":  "partial",
		"amount_received": 500,
		"payment_mode":    "cash",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 2000.0, inv["grand_total"])
	assert.Equal(t, 1500.0, inv["balance_amount"])
	assert.Equal(t, "partial", inv["payment_status"])
	number, _ := inv["invoice_number"].(string)
	assert.Regexp(t, `^INV-\d{4}$`, number)
	invoiceID, _ := inv["invoice_id"].(string)

	rec, detail := f.do(t, f.token, http.MethodGet, "/api/v1/invoices/number/"+number, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, invoiceID, detail["invoice_id"])
	assert.Len(t, detail["payments"], 1)

	rec, inv = f.do(t, f.token, http.MethodPost, "/api/v1/invoices/"+invoiceID+"/payments", map[string]any{
		"amount": 1500, "payment_mode": "upi",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "paid", inv["payment_status"])

	rec, inv = f.do(t, f.token, http.MethodPost, "/api/v1/invoices/"+invoiceID+"/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "cancelled", inv["status"])

	assert.Equal(t, types.NewQuantityFromInt(20), f.env.StockOf(t, it.ID))
	f.env.RequireConsistent(t)
}

func TestRouter_ValidationErrorsNameFields(t *testing.T) {
	f := newAPI(t, nil)

	rec, body := f.do(t, f.token, http.MethodPost, "/api/v1/invoices", map[string]any{
		"customer_id": "c-1",
		"items":       []map[string]any{},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(body))
	details := body["error"].(map[string]any)["details"].(map[string]any)
	assert.Contains(t, details["fields"], "Items")

	rec, body = f.do(t, f.token, http.MethodGet, "/api/v1/invoices?payment_status=overdue", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(body))
}

func TestRouter_AccountsAreIsolated(t *testing.T) {
	f := newAPI(t, nil)
	c := f.env.Customer(t, "Anand Textiles", "0")

	rec, _ := f.do(t, f.token, http.MethodGet, "/api/v1/customers/"+c.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, f.env.Store.Accounts().Create(f.env.Ctx, &plan.Account{
		ID: "acct-2", Name: "Other", SubscriptionType: plan.KeyFree, CreatedAt: apptest.Epoch,
	}))
	other := f.tokenFor(t, "acct-2")

	rec, body := f.do(t, other, http.MethodGet, "/api/v1/customers/"+c.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestRouter_MetricsExposed(t *testing.T) {
	f := newAPI(t, nil)
	f.do(t, f.token, http.MethodGet, "/api/v1/customers", nil)

	rec, _ := f.do(t, "", http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/api/v1/customers"`)
}

func TestRouter_CategoryDeleteGuard(t *testing.T) {
	f := newAPI(t, nil)

	rec, cat := f.do(t, f.token, http.MethodPost, "/api/v1/categories", map[string]any{
		"category_name": "Silk Sarees",
		"description":   "Handloom silk",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	categoryID, _ := cat["category_id"].(string)
	require.NotEmpty(t, categoryID)

	rec, body := f.do(t, f.token, http.MethodPost, "/api/v1/categories", map[string]any{"category_name": "SILK SAREES"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", errorCode(body))

	rec, _ = f.do(t, f.token, http.MethodPost, "/api/v1/categories", map[string]any{"category_name": "ab"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(t, f.token, http.MethodPost, "/api/v1/items", map[string]any{
		"item_name":   "Kanchi Saree",
		"category_id": categoryID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, body = f.do(t, f.token, http.MethodDelete, "/api/v1/categories/"+categoryID, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", errorCode(body))

	rec, list := f.do(t, f.token, http.MethodGet, "/api/v1/categories?search=silk", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, list["totalCount"])
}

func TestRouter_DashboardSearch(t *testing.T) {
	f := newAPI(t, nil)
	c := f.env.Customer(t, "Kanchi Traders", "0")
	f.env.Item(t, "Cotton Towel", 5, "10", "20")

	rec, _ := f.do(t, f.token, http.MethodGet, "/api/v1/dashboard/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(t, f.token, http.MethodGet, "/api/v1/dashboard/search?q=kanchi", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var hits []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hits))
	require.Len(t, hits, 1)
	assert.Equal(t, "customer", hits[0]["type"])
	assert.Equal(t, c.ID, hits[0]["id"])
}

func TestRouter_ChangePlan(t *testing.T) {
	f := newAPI(t, nil)

	rec, _ := f.do(t, f.token, http.MethodGet, "/api/v1/account/plans", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var plans []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plans))
	require.Len(t, plans, 3)
	assert.Equal(t, "free", plans[0]["key"])

	rec, body := f.do(t, f.token, http.MethodPut, "/api/v1/account/plan", map[string]any{"plan": "gold"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(body))

	rec, body = f.do(t, f.token, http.MethodPut, "/api/v1/account/plan", map[string]any{"plan": "free"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "free", body["subscription_type"])

	rec, usage := f.do(t, f.token, http.MethodGet, "/api/v1/account/usage", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "free", usage["plan"])
}
