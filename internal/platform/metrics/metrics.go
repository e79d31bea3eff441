// Package metrics exposes Prometheus instrumentation for the fraud console.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the console's Prometheus instruments on a private registry
// so tests and multiple instances never collide on the global one.
type Collector struct {
	registry *prometheus.Registry

	submissions   *prometheus.CounterVec
	batchRuns     *prometheus.CounterVec
	statusLookups *prometheus.CounterVec
	gateDenials   prometheus.Counter

	submitLatency prometheus.Histogram

	activeSessions prometheus.Gauge
}

// NewCollector creates and registers the console's metrics under the given
// namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "submissions_total",
				Help:      "Total transaction submissions by outcome",
			},
			[]string{"outcome"},
		),
		batchRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batch_runs_total",
				Help:      "Total batch runs by outcome",
			},
			[]string{"outcome"},
		),
		statusLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "status_lookups_total",
				Help:      "Total account status lookups by result",
			},
			[]string{"result"},
		),
		gateDenials: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gate_denials_total",
				Help:      "Total submissions denied because the sender account resolved blocked",
			},
		),
		submitLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "submit_duration_seconds",
				Help:      "Transaction submission latency",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
			},
		),
		activeSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_sessions",
				Help:      "Number of live operator sessions",
			},
		),
	}

	c.registry.MustRegister(
		c.submissions,
		c.batchRuns,
		c.statusLookups,
		c.gateDenials,
		c.submitLatency,
		c.activeSessions,
	)
	return c
}

// ObserveSubmission records one submission outcome ("success" or "failure")
// together with its latency.
func (c *Collector) ObserveSubmission(outcome string, duration time.Duration) {
	c.submissions.WithLabelValues(outcome).Inc()
	c.submitLatency.Observe(duration.Seconds())
}

// RecordBatchRun records one finished batch run outcome ("success",
// "partial" or "failure").
func (c *Collector) RecordBatchRun(outcome string) {
	c.batchRuns.WithLabelValues(outcome).Inc()
}

// RecordStatusLookup records one account status lookup result ("active",
// "blocked" or "error").
func (c *Collector) RecordStatusLookup(result string) {
	c.statusLookups.WithLabelValues(result).Inc()
}

// RecordGateDenial counts a submission stopped by the risk gate.
func (c *Collector) RecordGateDenial() {
	c.gateDenials.Inc()
}

// SessionOpened increments the live session gauge.
func (c *Collector) SessionOpened() {
	c.activeSessions.Inc()
}

// SessionClosed decrements the live session gauge.
func (c *Collector) SessionClosed() {
	c.activeSessions.Dec()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
