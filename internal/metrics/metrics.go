// ABOUTME: Prometheus metrics for the console HTTP server
// ABOUTME: Request counters and latency histograms plus the /metrics handler

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the console's instrumentation on a private registry so tests
// can create as many instances as they like.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	backendCalls    *prometheus.CounterVec
	activeSessions  prometheus.Gauge
}

// New creates and registers the console's metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_http_requests_total",
			Help: "HTTP requests served, by method, route, and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "console_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		backendCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_backend_calls_total",
			Help: "Calls made to the backend API, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "console_active_sessions",
			Help: "Sessions currently stored.",
		}),
	}

	reg.MustRegister(m.requestsTotal, m.requestDuration, m.backendCalls, m.activeSessions)
	return m
}

// Handler serves the scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveBackendCall records one backend API call.
func (m *Metrics) ObserveBackendCall(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.backendCalls.WithLabelValues(operation, outcome).Inc()
}

// SetActiveSessions records the current session count.
func (m *Metrics) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}

// statusRecorder captures the response code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Wrap instruments a handler under the given route label. An empty route
// falls back to the ServeMux pattern matched for the request, so wrapping a
// whole mux labels each request with its registered route.
func (m *Metrics) Wrap(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		label := route
		if label == "" {
			label = r.Pattern
			if label == "" {
				label = "unmatched"
			}
		}
		m.requestsTotal.WithLabelValues(r.Method, label, strconv.Itoa(rec.status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, label).Observe(time.Since(start).Seconds())
	})
}
