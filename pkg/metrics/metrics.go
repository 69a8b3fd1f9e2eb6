package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	hashRequestsTotal *prometheus.CounterVec
	hashDuration      *prometheus.HistogramVec

	upstreamRequestsTotal *prometheus.CounterVec
	upstreamDuration      *prometheus.HistogramVec
	cacheLookupsTotal     *prometheus.CounterVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	natsMessagesPublished *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		hashRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "safehash_hash_requests_total",
				Help: "Hash computations by kind (transaction, message), network and outcome",
			},
			[]string{"kind", "network", "outcome"},
		),
		hashDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "safehash_hash_duration_seconds",
				Help:    "End-to-end duration of a hash computation including fetches",
				Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"kind"},
		),
		upstreamRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "safehash_upstream_requests_total",
				Help: "Requests to the Safe Transaction Service and block explorers",
			},
			[]string{"service", "network", "status"},
		),
		upstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "safehash_upstream_duration_seconds",
				Help:    "Duration of upstream requests in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"service"},
		),
		cacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "safehash_cache_lookups_total",
				Help: "ABI cache lookups by result (hit, miss)",
			},
			[]string{"result"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"handler", "method", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"handler", "method"},
		),
		natsMessagesPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nats_messages_published_total",
				Help: "Total number of messages published to NATS",
			},
			[]string{"subject", "status"},
		),
	}
}

func (m *Metrics) RecordHash(kind, network, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.hashRequestsTotal.WithLabelValues(kind, network, outcome).Inc()
	m.hashDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

func (m *Metrics) RecordUpstream(service, network string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.upstreamRequestsTotal.WithLabelValues(service, network, label).Inc()
	m.upstreamDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookupsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordHTTPRequest(handler, method string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(handler, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(handler, method).Observe(seconds)
}

func (m *Metrics) RecordNATSPublish(subject string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.natsMessagesPublished.WithLabelValues(subject, status).Inc()
}

// HTTPMetricsMiddleware creates middleware that records HTTP request metrics.
// handlerName should be a constant identifier for the endpoint.
func HTTPMetricsMiddleware(m *Metrics, handlerName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			m.RecordHTTPRequest(handlerName, r.Method, wrapped.statusCode, time.Since(start).Seconds())
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
