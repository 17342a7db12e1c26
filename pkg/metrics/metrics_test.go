package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_HandlerExposesCollectors(t *testing.T) {
	m := New()
	m.QuoteRequests.Inc()
	m.Swaps.WithLabelValues("success").Inc()
	m.ReadFailures.WithLabelValues("fee_schedule").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.QuoteRequests))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReadFailures.WithLabelValues("fee_schedule")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ove_swap_quote_requests_total 1")
	assert.Contains(t, string(body), `ove_swap_swap_executions_total{outcome="success"} 1`)
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.QuoteFailures.Inc()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.QuoteFailures))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.QuoteIssued()
		m.QuoteDropped()
		m.ReadFailed("balance")
		m.SwapStarted()
		m.SwapFinished("success")
		m.SetPrice("BNB", 600)
	})
}

func TestMetrics_SwapLifecycle(t *testing.T) {
	m := New()
	m.SwapStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SwapInFlight))
	m.SwapFinished("user_rejected")
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SwapInFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Swaps.WithLabelValues("user_rejected")))
}
