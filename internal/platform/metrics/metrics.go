// Package metrics holds all Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	RunsStarted   prometheus.Counter
	RunsCompleted *prometheus.CounterVec
	RunDuration   prometheus.Histogram
	ChecksTotal   *prometheus.CounterVec
	HTTPLatency   *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RunsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "numcheck_runs_started_total",
			Help: "Total number of check runs started",
		}),
		RunsCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "numcheck_runs_completed_total",
			Help: "Total number of check runs finished, by outcome",
		}, []string{"outcome"}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "numcheck_run_duration_seconds",
			Help:    "Wall-clock duration of check runs",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		ChecksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "numcheck_checks_total",
			Help: "Total number of individual checks, by kind and status",
		}, []string{"kind", "status"}),
		HTTPLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "numcheck_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// RunStarted increments the started-runs counter.
func (m *Metrics) RunStarted() {
	m.RunsStarted.Inc()
}

// RunCompleted records one finished run and its duration.
func (m *Metrics) RunCompleted(outcome string, d time.Duration) {
	m.RunsCompleted.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(d.Seconds())
}

// CheckObserved counts one individual check outcome.
func (m *Metrics) CheckObserved(kind, status string) {
	m.ChecksTotal.WithLabelValues(kind, status).Inc()
}

// ObserveHTTP records one HTTP request's latency.
func (m *Metrics) ObserveHTTP(route, method string, d time.Duration) {
	m.HTTPLatency.WithLabelValues(route, method).Observe(d.Seconds())
}
