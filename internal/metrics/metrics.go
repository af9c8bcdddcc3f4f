// Package metrics exposes the service's prometheus instruments on a private
// registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Report outcomes recorded on ReportsGenerated.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

var (
	DefaultHTTPDurationBuckets     = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultAnalysisDurationBuckets = []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}
)

// Metrics holds every instrument the service records.
type Metrics struct {
	registry *prometheus.Registry

	ReportsGenerated    *prometheus.CounterVec
	AnalysisDuration    prometheus.Histogram
	RowsAnalyzed        prometheus.Counter
	OpenScored          prometheus.Counter
	ArchiveFailures     prometheus.Counter
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New registers all instruments under namespace, together with the Go
// runtime and process collectors.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{Namespace: namespace}))
	reg.MustRegister(prometheus.NewGoCollector())

	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		ReportsGenerated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_generated_total",
			Help:      "Analysis reports produced, by outcome.",
		}, []string{"status"}),
		AnalysisDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Wall time from parsed upload to finished report.",
			Buckets:   DefaultAnalysisDurationBuckets,
		}),
		RowsAnalyzed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_analyzed_total",
			Help:      "Opportunity rows that entered an analysis after date filtering.",
		}),
		OpenScored: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "open_opportunities_scored_total",
			Help:      "Open opportunities given a score.",
		}),
		ArchiveFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_failures_total",
			Help:      "Reports that could not be written to the archive.",
		}),
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   DefaultHTTPDurationBuckets,
		}, []string{"method", "route"}),
	}
}

// NewNop returns instruments on a throwaway registry, for tests and the CLI.
func NewNop() *Metrics { return New("nop") }

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordReport records one finished analysis.
func (m *Metrics) RecordReport(status string, elapsed time.Duration, rows, scored int) {
	m.ReportsGenerated.WithLabelValues(status).Inc()
	if status != StatusOK {
		return
	}
	m.AnalysisDuration.Observe(elapsed.Seconds())
	m.RowsAnalyzed.Add(float64(rows))
	m.OpenScored.Add(float64(scored))
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
