package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Transition("APPLIED", "SHORTLISTED")
		m.ApplicationSubmitted()
		m.NotificationFailed("interview")
		m.HTTPRequest("GET", "/health", 200, time.Millisecond)
	})
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Transition("APPLIED", "SHORTLISTED")
	m.Transition("APPLIED", "SHORTLISTED")
	m.ApplicationSubmitted()
	m.NotificationFailed("status_update")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("APPLIED", "SHORTLISTED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.applications))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notificationFailures.WithLabelValues("status_update")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.HTTPRequest("GET", "GET /api/companies", 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "placement_http_requests_total")
	assert.Contains(t, rec.Body.String(), "placement_http_request_duration_seconds")
}
