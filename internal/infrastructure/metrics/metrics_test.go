package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weavebooks/internal/domain/reconcile"
)

func TestMiddleware_LabelsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/items/:id", "GET", "204")))
}

func TestObserveReport(t *testing.T) {
	m := New()
	m.ObserveReport(&reconcile.Report{
		AccountID: "acct-1",
		CheckedAt: time.Unix(1700000000, 0),
		Drifts: []reconcile.Drift{
			{Kind: reconcile.KindCustomer, ID: "c-1"},
			{Kind: reconcile.KindCustomer, ID: "c-2"},
			{Kind: reconcile.KindItem, ID: "i-1"},
		},
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.driftGauge.WithLabelValues("acct-1", reconcile.KindCustomer)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.driftGauge.WithLabelValues("acct-1", reconcile.KindWeaver)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reconcileRuns.WithLabelValues("drift")))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(m.lastReconcile.WithLabelValues("acct-1")))
}

func TestHandler_ExposesRegistry(t *testing.T) {
	m := New()
	m.ReconcileFailed()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `weavebooks_reconcile_runs_total{outcome="failed"} 1`))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveReport(&reconcile.Report{})
	m.ReconcileFailed()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
