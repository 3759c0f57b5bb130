package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_CountersAndHandler(t *testing.T) {
	m := New()
	m.SourceError("github", "timeout")
	m.SourceError("github", "timeout")
	m.CacheLookup("search", true)
	m.ObserveSource("rss", "ok", 20*time.Millisecond)
	m.ObserveHTTP("GET", "/v1/search", "200", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SourceErrors.WithLabelValues("github", "timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("search", "hit")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "apifusion_source_errors_total")
	assert.Contains(t, rec.Body.String(), "apifusion_http_requests_total")
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SourceError("github", "timeout")
		m.CacheLookup("search", false)
		m.LogWrite(true)
		m.SetBreakerState("rss", 1)
		m.ObserveSource("rss", "ok", time.Second)
		m.ObserveHTTP("GET", "/", "200", time.Second)
	})
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}
