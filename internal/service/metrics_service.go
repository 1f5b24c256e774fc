package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the console.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	exportsTotal     *prometheus.CounterVec
	exportRows       prometheus.Histogram
	deletesTotal     *prometheus.CounterVec
	activeTables     prometheus.Gauge
	exportLogWrites  *prometheus.CounterVec
}

// NewMetricsService registers the console collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	upstreamDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "report_api_request_duration_seconds",
		Help:    "Duration of report API calls by operation and outcome",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "outcome"})

	exportsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_exports_total",
		Help: "Rendered exports by format",
	}, []string{"format"})

	exportRows := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "report_export_rows",
		Help:    "Number of rows written per export",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	deletesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_deletes_total",
		Help: "Delete commands by outcome",
	}, []string{"outcome"})

	activeTables := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "report_tables_active",
		Help: "Mounted report tables held for console sessions",
	})

	exportLogWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "export_log_writes_total",
		Help: "Export audit log writes by outcome",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, upstreamDuration, exportsTotal, exportRows, deletesTotal, activeTables, exportLogWrites, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		upstreamDuration: upstreamDuration,
		exportsTotal:     exportsTotal,
		exportRows:       exportRows,
		deletesTotal:     deletesTotal,
		activeTables:     activeTables,
		exportLogWrites:  exportLogWrites,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveUpstream records one report API call.
func (m *MetricsService) ObserveUpstream(operation, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.upstreamDuration.WithLabelValues(operation, outcome).Observe(duration.Seconds())
}

// ObserveExport counts a rendered export.
func (m *MetricsService) ObserveExport(format string, rows int) {
	if m == nil {
		return
	}
	m.exportsTotal.WithLabelValues(format).Inc()
	m.exportRows.Observe(float64(rows))
}

// ObserveDelete counts a delete command outcome.
func (m *MetricsService) ObserveDelete(outcome string) {
	if m == nil {
		return
	}
	m.deletesTotal.WithLabelValues(outcome).Inc()
}

// SetActiveTables reports how many session tables are held.
func (m *MetricsService) SetActiveTables(n int) {
	if m == nil {
		return
	}
	m.activeTables.Set(float64(n))
}

// ObserveExportLogWrite counts export log persistence attempts.
func (m *MetricsService) ObserveExportLogWrite(ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.exportLogWrites.WithLabelValues(outcome).Inc()
}
