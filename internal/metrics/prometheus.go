package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics wraps prometheus collectors for vega metrics
type PrometheusMetrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	remoteQueriesTotal  *prometheus.CounterVec
	remoteQueryDuration *prometheus.HistogramVec

	downloadsTotal      prometheus.Counter
	downloadBytesTotal  prometheus.Counter
	archivesBuiltTotal  prometheus.Counter
	archiveBytesTotal   prometheus.Counter
	archiveEntriesTotal prometheus.Counter

	rateLimitedTotal prometheus.Counter

	uptime prometheus.GaugeFunc
}

// Default histogram buckets for request and query durations (in milliseconds)
var defaultBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

var promMetrics *PrometheusMetrics

// InitPrometheus initializes the Prometheus metrics subsystem
func InitPrometheus(namespace string, buckets []float64) {
	if len(buckets) == 0 {
		buckets = defaultBuckets
	}

	registry := prometheus.NewRegistry()
	// Register default Go and process collectors
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	pm := &PrometheusMetrics{
		registry: registry,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of API requests served",
			},
			[]string{"method", "route", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_milliseconds",
				Help:      "Duration of API requests in milliseconds",
				Buckets:   buckets,
			},
			[]string{"method", "route"},
		),

		remoteQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "remote_queries_total",
				Help:      "Total number of statements sent to the remote database",
			},
			[]string{"operation", "status"},
		),

		remoteQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "remote_query_duration_milliseconds",
				Help:      "Duration of remote database statements in milliseconds",
				Buckets:   buckets,
			},
			[]string{"operation"},
		),

		downloadsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "downloads_total",
				Help:      "Total single-file downloads served",
			},
		),

		downloadBytesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "download_bytes_total",
				Help:      "Total bytes served by single-file downloads",
			},
		),

		archivesBuiltTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "archives_built_total",
				Help:      "Total ZIP archives built",
			},
		),

		archiveBytesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "archive_bytes_total",
				Help:      "Total compressed bytes written into archives",
			},
		),

		archiveEntriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "archive_entries_total",
				Help:      "Total file entries written into archives",
			},
		),

		rateLimitedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limited_total",
				Help:      "Total requests rejected by the rate limiter",
			},
		),
	}

	pm.uptime = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Time since the vega daemon started",
		},
		func() float64 {
			return time.Since(StartTime()).Seconds()
		},
	)

	registry.MustRegister(
		pm.httpRequestsTotal,
		pm.httpRequestDuration,
		pm.remoteQueriesTotal,
		pm.remoteQueryDuration,
		pm.downloadsTotal,
		pm.downloadBytesTotal,
		pm.archivesBuiltTotal,
		pm.archiveBytesTotal,
		pm.archiveEntriesTotal,
		pm.rateLimitedTotal,
		pm.uptime,
	)

	promMetrics = pm
}

func recordPrometheusHTTPRequest(method, route string, status int, durationMs int64) {
	if promMetrics == nil {
		return
	}
	promMetrics.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	promMetrics.httpRequestDuration.WithLabelValues(method, route).Observe(float64(durationMs))
}

func recordPrometheusRemoteQuery(operation string, durationMs int64, success bool) {
	if promMetrics == nil {
		return
	}
	status := "ok"
	if !success {
		status = "error"
	}
	promMetrics.remoteQueriesTotal.WithLabelValues(operation, status).Inc()
	promMetrics.remoteQueryDuration.WithLabelValues(operation).Observe(float64(durationMs))
}

func recordPrometheusDownload(n int64) {
	if promMetrics == nil {
		return
	}
	promMetrics.downloadsTotal.Inc()
	promMetrics.downloadBytesTotal.Add(float64(n))
}

func recordPrometheusArchive(entries int, bytes int64) {
	if promMetrics == nil {
		return
	}
	promMetrics.archivesBuiltTotal.Inc()
	promMetrics.archiveEntriesTotal.Add(float64(entries))
	promMetrics.archiveBytesTotal.Add(float64(bytes))
}

// RecordRateLimited counts a request rejected by the rate limiter.
func RecordRateLimited() {
	if promMetrics == nil {
		return
	}
	promMetrics.rateLimitedTotal.Inc()
}

// PrometheusHandler returns an HTTP handler for Prometheus metrics scraping
func PrometheusHandler() http.Handler {
	if promMetrics == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("prometheus metrics not initialized"))
		})
	}
	return promhttp.HandlerFor(promMetrics.registry, promhttp.HandlerOpts{})
}

// PrometheusRegistry returns the prometheus registry (for custom collectors)
func PrometheusRegistry() *prometheus.Registry {
	if promMetrics == nil {
		return nil
	}
	return promMetrics.registry
}
