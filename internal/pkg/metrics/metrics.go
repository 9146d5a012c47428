package metrics

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
	OutcomeLocked  = "locked"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry         *prometheus.Registry
	ledgerOperations *prometheus.CounterVec
	accruals         *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	httpRequests     *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ledgerOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hris_leave_ledger_operations_total",
			Help: "Leave ledger operations, labeled by operation and outcome",
		}, []string{"operation", "outcome"}),
		accruals: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hris_leave_accruals_total",
			Help: "Accrual attempts per balance, labeled by outcome",
		}, []string{"outcome"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hris_http_request_duration_seconds",
			Help:    "Latency distribution of HTTP requests",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "route"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hris_http_requests_total",
			Help: "Total HTTP requests processed, labeled by status code",
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveLedger counts one ledger operation.
func (m *Metrics) ObserveLedger(operation, outcome string) {
	if m == nil {
		return
	}
	m.ledgerOperations.WithLabelValues(operation, outcome).Inc()
}

// ObserveAccrual counts one balance visited by the accrual batch.
func (m *Metrics) ObserveAccrual(outcome string) {
	if m == nil {
		return
	}
	m.accruals.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records latency and status per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
			m.httpDuration.WithLabelValues(r.Method, routePattern(r)).Observe(v)
		}))

		next.ServeHTTP(ww, r)

		timer.ObserveDuration()
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(r.Method, routePattern(r), strconv.Itoa(status)).Inc()
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
