// Package metrics exposes the prometheus collectors of the client.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amaumene/whirlwatch/internal/stats"
)

const namespace = "whirlwatch"

// Outcome labels of a mutation
const (
	OutcomeCommitted  = "committed"
	OutcomeRolledBack = "rolled_back"
	OutcomeRejected   = "rejected_locally"
	OutcomeStale      = "stale"
)

// Metrics owns a registry and the collectors registered on it.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	mutations      *prometheus.CounterVec
	backendLatency *prometheus.HistogramVec
	reloads        *prometheus.CounterVec
	records        prometheus.Gauge
	averageRating  prometheus.Gauge
	statusCounts   *prometheus.GaugeVec
}

// New creates the collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Optimistic mutations by operation and outcome.",
		}, []string{"op", "outcome"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Latency of backend calls, retries included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "result"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reloads_total",
			Help:      "Full collection reloads by scope and result.",
		}, []string{"scope", "result"}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Records in the loaded scope.",
		}),
		averageRating: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "average_rating",
			Help:      "Average personal rating of the loaded scope, 0 when nothing is rated.",
		}),
		statusCounts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records_by_status",
			Help:      "Records in the loaded scope by watch status.",
		}, []string{"status"}),
	}

	m.registry.MustRegister(
		m.mutations,
		m.backendLatency,
		m.reloads,
		m.records,
		m.averageRating,
		m.statusCounts,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveMutation counts one mutation outcome
func (m *Metrics) ObserveMutation(op, outcome string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op, outcome).Inc()
}

// ObserveBackendCall records the latency of one backend operation.
// result is "ok" or a short error class.
func (m *Metrics) ObserveBackendCall(operation, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.backendLatency.WithLabelValues(operation, result).Observe(d.Seconds())
}

// ObserveReload counts one reload of a scope
func (m *Metrics) ObserveReload(scope string, err error) {
	if m == nil {
		return
	}
	m.reloads.WithLabelValues(scope, result(err)).Inc()
}

// SetSummary publishes the aggregates of the loaded scope
func (m *Metrics) SetSummary(s stats.Summary) {
	if m == nil {
		return
	}
	m.records.Set(float64(s.TotalCount))
	m.averageRating.Set(s.AverageRating)
	m.statusCounts.WithLabelValues("completed").Set(float64(s.CompletedCount))
	m.statusCounts.WithLabelValues("in_progress").Set(float64(s.InProgressCount))
	m.statusCounts.WithLabelValues("not_watched").Set(float64(s.NotWatchedCount))
}

func result(err error) string {
	if err == nil {
		return "ok"
	}
	return "error"
}
