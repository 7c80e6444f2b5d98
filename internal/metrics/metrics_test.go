package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/whirlwatch/internal/stats"
)

func TestObserveMutation(t *testing.T) {
	m := New()
	m.ObserveMutation("status", OutcomeCommitted)
	m.ObserveMutation("status", OutcomeCommitted)
	m.ObserveMutation("rating", OutcomeRolledBack)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.mutations.WithLabelValues("status", OutcomeCommitted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutations.WithLabelValues("rating", OutcomeRolledBack)))
}

func TestSetSummary(t *testing.T) {
	m := New()
	m.SetSummary(stats.Summary{TotalCount: 3, CompletedCount: 1, InProgressCount: 1, NotWatchedCount: 1, AverageRating: 8})

	assert.Equal(t, 3.0, testutil.ToFloat64(m.records))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.averageRating))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.statusCounts.WithLabelValues("completed")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveMutation("status", OutcomeCommitted)
	m.ObserveBackendCall("fetch_list", "ok", time.Second)
	m.ObserveReload("all", errors.New("boom"))
	m.SetSummary(stats.Summary{})
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveReload("list", nil)
	m.ObserveBackendCall("fetch_list", "ok", 20*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `whirlwatch_reloads_total{result="ok",scope="list"} 1`)
	assert.Contains(t, body, "whirlwatch_backend_request_duration_seconds_count")
}
