package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles Prometheus collectors for the insight service.
type Metrics struct {
	Registry         *prometheus.Registry
	ReportsTotal     *prometheus.CounterVec
	ReportDuration   prometheus.Histogram
	ReportErrors     *prometheus.CounterVec
	IngestRowsTotal  *prometheus.CounterVec
	PagesMergedTotal prometheus.Counter
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	reports := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_reports_total",
			Help: "Total report requests served, by report kind.",
		},
		[]string{"report"},
	)
	reportDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "insight_report_duration_seconds",
			Help:    "Latency of report generation.",
			Buckets: prometheus.DefBuckets,
		},
	)
	reportErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_report_errors_total",
			Help: "Total failed report requests, by report kind.",
		},
		[]string{"report"},
	)
	ingestRows := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_ingest_rows_total",
			Help: "Total rows accepted via the ingest endpoints, by source kind.",
		},
		[]string{"source"},
	)
	pagesMerged := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "insight_pages_merged_total",
			Help: "Total merged page records produced across all datasets.",
		},
	)

	registry.MustRegister(reports, reportDuration, reportErrors, ingestRows, pagesMerged)

	return &Metrics{
		Registry:         registry,
		ReportsTotal:     reports,
		ReportDuration:   reportDuration,
		ReportErrors:     reportErrors,
		IngestRowsTotal:  ingestRows,
		PagesMergedTotal: pagesMerged,
	}
}

// ObserveReport records one served report and its latency.
func (m *Metrics) ObserveReport(report string, d time.Duration) {
	if m == nil {
		return
	}
	m.ReportsTotal.WithLabelValues(report).Inc()
	m.ReportDuration.Observe(d.Seconds())
}

// IncReportError records one failed report request.
func (m *Metrics) IncReportError(report string) {
	if m == nil {
		return
	}
	m.ReportErrors.WithLabelValues(report).Inc()
}

// AddIngestRows records accepted ingest rows for a source kind.
func (m *Metrics) AddIngestRows(source string, n int) {
	if m == nil {
		return
	}
	m.IngestRowsTotal.WithLabelValues(source).Add(float64(n))
}

// AddPagesMerged records merged records produced for a dataset.
func (m *Metrics) AddPagesMerged(n int) {
	if m == nil {
		return
	}
	m.PagesMergedTotal.Add(float64(n))
}

// Handler exposes the registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
