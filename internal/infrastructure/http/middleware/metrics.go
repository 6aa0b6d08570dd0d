package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the request-level Prometheus collectors
type Metrics struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	requestCount    *prometheus.CounterVec
	activeRequests  prometheus.Gauge
}

// NewMetrics creates and registers the request metrics. Each instance owns
// its registry, so constructing a second server never collides on collector
// names.
func NewMetrics() *Metrics {
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	requestCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	activeRequests := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Number of active HTTP requests",
		},
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(requestDuration, requestCount, activeRequests)

	return &Metrics{
		registry:        registry,
		requestDuration: requestDuration,
		requestCount:    requestCount,
		activeRequests:  activeRequests,
	}
}

// Instrument records duration, count, and in-flight gauge per request. The
// path label is the route pattern, not the raw URL, so history record ids
// never blow up label cardinality.
func (m *Metrics) Instrument() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			m.activeRequests.Inc()
			defer m.activeRequests.Dec()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			path := r.URL.Path
			if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
				if pattern := routeCtx.RoutePattern(); pattern != "" {
					path = pattern
				}
			}

			m.recordRequest(r.Method, path, wrapped.statusCode, time.Since(start))
		})
	}
}

// Handler exposes the metrics for scraping
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registerer so other subsystems can attach
// their collectors to the same scrape endpoint
func (m *Metrics) Registry() prometheus.Registerer {
	return m.registry
}

func (m *Metrics) recordRequest(method, path string, status int, duration time.Duration) {
	statusStr := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, statusStr).Observe(duration.Seconds())
	m.requestCount.WithLabelValues(method, path, statusStr).Inc()
}
