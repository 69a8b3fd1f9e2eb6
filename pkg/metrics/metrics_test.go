package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorders(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordHash("transaction", "sepolia", "ok", 10*time.Millisecond)
	m.RecordHash("transaction", "sepolia", "ok", 20*time.Millisecond)
	m.RecordUpstream("tx_service", "sepolia", 200, time.Millisecond)
	m.RecordUpstream("tx_service", "sepolia", 0, time.Millisecond)
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordNATSPublish("safehash.results", nil)
	m.RecordNATSPublish("safehash.results", errors.New("down"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.hashRequestsTotal.WithLabelValues("transaction", "sepolia", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamRequestsTotal.WithLabelValues("tx_service", "sepolia", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamRequestsTotal.WithLabelValues("tx_service", "sepolia", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookupsTotal.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.natsMessagesPublished.WithLabelValues("safehash.results", "error")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordHash("message", "ethereum", "ok", time.Millisecond)
		m.RecordUpstream("explorer", "ethereum", 500, time.Millisecond)
		m.RecordCacheLookup(true)
		m.RecordHTTPRequest("/healthz", "GET", 200, 0.1)
		m.RecordNATSPublish("x", nil)
	})
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	h := HTTPMetricsMiddleware(m, "/api/v1/hashes")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/hashes", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("/api/v1/hashes", "POST", "400")))
}
