// Package metrics exposes build and suppression counters in Prometheus
// format. All collectors live on a private registry so the /metrics
// endpoint only carries docfold series.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all docfold Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	BuildsTotal       *prometheus.CounterVec
	BuildDuration     prometheus.Histogram
	PagesBuilt        prometheus.Counter
	WarningsTotal     prometheus.Counter
	SuppressedRecords *prometheus.CounterVec
}

// New creates the collector set on the given registry. A nil registry
// gets a fresh private one.
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,
		BuildsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docfold_builds_total",
			Help: "Number of site builds by outcome",
		}, []string{"status"}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "docfold_build_duration_seconds",
			Help:    "Wall-clock duration of site builds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		PagesBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docfold_pages_built_total",
			Help: "Number of pages rendered across all builds",
		}),
		WarningsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docfold_build_warnings_total",
			Help: "Number of warnings emitted during builds",
		}),
		SuppressedRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docfold_suppressed_records_total",
			Help: "Number of log records dropped by suppression rules",
		}, []string{"logger"}),
	}

	registry.MustRegister(
		m.BuildsTotal,
		m.BuildDuration,
		m.PagesBuilt,
		m.WarningsTotal,
		m.SuppressedRecords,
	)

	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// ObserveBuild records one finished build.
func (m *Metrics) ObserveBuild(status string, pages, warnings int, duration time.Duration) {
	m.BuildsTotal.WithLabelValues(status).Inc()
	m.BuildDuration.Observe(duration.Seconds())
	m.PagesBuilt.Add(float64(pages))
	m.WarningsTotal.Add(float64(warnings))
}

// ObserveSuppressed records one dropped log record.
func (m *Metrics) ObserveSuppressed(logger string) {
	m.SuppressedRecords.WithLabelValues(logger).Inc()
}

// Handler returns the HTTP handler serving the registry in Prometheus
// text format.
func (m *Metrics) Handler() http.Handler {
	return m.handler
}
