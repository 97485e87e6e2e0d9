package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveRequest(t *testing.T) {
	m := New()

	m.ObserveRequest("/api/folder", http.MethodGet, http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest("/api/folder", http.MethodGet, http.StatusOK, 30*time.Millisecond)
	m.ObserveRequest("/api/folder", http.MethodGet, http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/folder", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/folder", "GET", "404")))
}

func TestMetrics_Handler(t *testing.T) {
	// given
	m := New()
	m.ObserveConsolidation(2*time.Millisecond, 12)

	// when
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	// then
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "orcaposte_consolidation_lines_count 1"))
	assert.True(t, strings.Contains(body, "orcaposte_consolidation_duration_seconds_bucket"))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}
