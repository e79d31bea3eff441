package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollector("fraud_console_test")

	c.ObserveSubmission("success", 25*time.Millisecond)
	c.ObserveSubmission("success", 30*time.Millisecond)
	c.ObserveSubmission("failure", 5*time.Millisecond)
	c.RecordBatchRun("partial")
	c.RecordStatusLookup("blocked")
	c.RecordGateDenial()

	assert.Equal(t, float64(2), testutil.ToFloat64(c.submissions.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.submissions.WithLabelValues("failure")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.batchRuns.WithLabelValues("partial")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.statusLookups.WithLabelValues("blocked")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.gateDenials))
}

func TestCollector_SessionGauge(t *testing.T) {
	c := NewCollector("fraud_console_test")

	c.SessionOpened()
	c.SessionOpened()
	c.SessionClosed()

	assert.Equal(t, float64(1), testutil.ToFloat64(c.activeSessions))
}

func TestCollector_HandlerExposesMetrics(t *testing.T) {
	c := NewCollector("fraud_console_test")
	c.ObserveSubmission("success", 10*time.Millisecond)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	c.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "fraud_console_test_submissions_total")
	assert.Contains(t, body, "fraud_console_test_submit_duration_seconds")
}

func TestCollector_PrivateRegistriesDoNotCollide(t *testing.T) {
	// Two collectors with the same namespace must be able to coexist.
	a := NewCollector("fraud_console_test")
	b := NewCollector("fraud_console_test")

	a.RecordGateDenial()
	assert.Equal(t, float64(1), testutil.ToFloat64(a.gateDenials))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.gateDenials))
}
