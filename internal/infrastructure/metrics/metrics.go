// Package metrics holds the prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"weavebooks/internal/domain/reconcile"
)

const namespace = "weavebooks"

// Metrics owns a registry and the collectors registered on it.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	driftGauge      *prometheus.GaugeVec
	reconcileRuns   *prometheus.CounterVec
	lastReconcile   *prometheus.GaugeVec
}

// New creates the registry with the process and go collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		driftGauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reconcile_drifts",
			Help:      "Cached balances that disagree with their source documents, from the last audit.",
		}, []string{"account_id", "kind"}),
		reconcileRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_runs_total",
			Help:      "Reconciliation runs by outcome.",
		}, []string{"outcome"}),
		lastReconcile: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reconcile_last_run_timestamp_seconds",
			Help:      "Unix time of the last completed audit per account.",
		}, []string{"account_id"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal, m.requestDuration, m.driftGauge, m.reconcileRuns, m.lastReconcile,
	)
	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	return m
}

// Handler serves /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registerer exposes the registry for extra collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

// Middleware records one observation per request, labelled by route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// ObserveReport publishes the drift counts of one audit.
func (m *Metrics) ObserveReport(rep *reconcile.Report) {
	if m == nil || rep == nil {
		return
	}
	for _, kind := range []string{reconcile.KindCustomer, reconcile.KindWeaver, reconcile.KindItem} {
		m.driftGauge.WithLabelValues(rep.AccountID, kind).Set(float64(rep.Count(kind)))
	}
	m.lastReconcile.WithLabelValues(rep.AccountID).Set(float64(rep.CheckedAt.Unix()))
	m.ReconcileOutcome(rep.Clean())
}

// ReconcileOutcome counts a run as clean, drift or failed.
func (m *Metrics) ReconcileOutcome(clean bool) {
	if m == nil {
		return
	}
	if clean {
		m.reconcileRuns.WithLabelValues("clean").Inc()
		return
	}
	m.reconcileRuns.WithLabelValues("drift").Inc()
}

// ReconcileFailed counts a run that returned an error.
func (m *Metrics) ReconcileFailed() {
	if m == nil {
		return
	}
	m.reconcileRuns.WithLabelValues("failed").Inc()
}
