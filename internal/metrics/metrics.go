package metrics

import (
	"sync/atomic"
	"time"
)

// Metrics collects process-local counters. The atomic counters are
// always live; Prometheus collectors mirror them once InitPrometheus
// has run, so CLI and health paths can read a cheap snapshot without
// a registry.
type Metrics struct {
	RemoteQueries     atomic.Int64
	RemoteQueryErrors atomic.Int64
	RequestsServed    atomic.Int64
	FilesDownloaded   atomic.Int64
	ArchivesBuilt     atomic.Int64
	ArchiveBytes      atomic.Int64

	startTime time.Time
}

var global = &Metrics{startTime: time.Now()}

// Global returns the global metrics instance.
func Global() *Metrics {
	return global
}

// StartTime returns the time when the metrics system was initialized.
func StartTime() time.Time {
	return global.startTime
}

// RecordRemoteQuery records one remote database statement.
func (m *Metrics) RecordRemoteQuery(operation string, durationMs int64, success bool) {
	m.RemoteQueries.Add(1)
	if !success {
		m.RemoteQueryErrors.Add(1)
	}

	// Prometheus bridge
	recordPrometheusRemoteQuery(operation, durationMs, success)
}

// RecordHTTPRequest records one served API request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, durationMs int64) {
	m.RequestsServed.Add(1)

	// Prometheus bridge
	recordPrometheusHTTPRequest(method, route, status, durationMs)
}

// RecordDownload records a single-file download of n bytes.
func (m *Metrics) RecordDownload(n int64) {
	m.FilesDownloaded.Add(1)

	// Prometheus bridge
	recordPrometheusDownload(n)
}

// RecordArchive records a built archive with its entry count and
// compressed output size.
func (m *Metrics) RecordArchive(entries int, bytes int64) {
	m.ArchivesBuilt.Add(1)
	m.ArchiveBytes.Add(bytes)

	// Prometheus bridge
	recordPrometheusArchive(entries, bytes)
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	UptimeSeconds     int64 `json:"uptime_seconds"`
	RemoteQueries     int64 `json:"remote_queries"`
	RemoteQueryErrors int64 `json:"remote_query_errors"`
	RequestsServed    int64 `json:"requests_served"`
	FilesDownloaded   int64 `json:"files_downloaded"`
	ArchivesBuilt     int64 `json:"archives_built"`
	ArchiveBytes      int64 `json:"archive_bytes"`
}

// GetSnapshot returns current counter values.
func (m *Metrics) GetSnapshot() Snapshot {
	return Snapshot{
		UptimeSeconds:     int64(time.Since(m.startTime).Seconds()),
		RemoteQueries:     m.RemoteQueries.Load(),
		RemoteQueryErrors: m.RemoteQueryErrors.Load(),
		RequestsServed:    m.RequestsServed.Load(),
		FilesDownloaded:   m.FilesDownloaded.Load(),
		ArchivesBuilt:     m.ArchivesBuilt.Load(),
		ArchiveBytes:      m.ArchiveBytes.Load(),
	}
}
