package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vfx_indexer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vfx_indexer_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vfx_indexer_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vfx_indexer_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vfx_indexer_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBSizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vfx_indexer_db_size_bytes",
			Help: "Size of SQLite database files in bytes",
		},
		[]string{"file"}, // "main", "wal", "shm"
	)
)

// Scanner metrics
var (
	ScanRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vfx_indexer_scan_runs_total",
			Help: "Total number of project scans",
		},
		[]string{"status"}, // "ok", "error", "coalesced", "canceled"
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vfx_indexer_scan_duration_seconds",
			Help:    "Project scan duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	ScanLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vfx_indexer_scan_last_run_timestamp",
			Help: "Unix timestamp of the last completed scan",
		},
	)

	ScanFilesSeen = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vfx_indexer_scan_files_seen_total",
			Help: "Total number of files visited during scans",
		},
	)

	ScanWarnings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vfx_indexer_scan_warnings_total",
			Help: "Total number of per-entry warnings emitted during scans",
		},
	)

	ScansRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vfx_indexer_scans_running",
			Help: "Number of scans currently in progress",
		},
	)
)

// Watcher metrics
var (
	WatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vfx_indexer_watcher_events_total",
			Help: "Total number of filesystem watcher events",
		},
		[]string{"event_type"},
	)

	WatcherErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vfx_indexer_watcher_errors_total",
			Help: "Total number of filesystem watcher errors",
		},
	)

	WatchedDirectories = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vfx_indexer_watched_directories",
			Help: "Number of directories currently being watched",
		},
	)

	WatchedProjects = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vfx_indexer_watched_projects",
			Help: "Number of projects with an active watch",
		},
	)
)

// Index store metrics
var (
	IndexedProjects = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vfx_indexer_indexed_projects",
			Help: "Number of projects with an in-memory index",
		},
	)

	IndexedRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vfx_indexer_indexed_records",
			Help: "Total number of file records across all project indexes",
		},
	)
)

// Filesystem retry metrics
var (
	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vfx_indexer_filesystem_stale_errors_total",
			Help: "Total number of NFS stale file handle errors",
		},
		[]string{"operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vfx_indexer_filesystem_retry_attempts_total",
			Help: "Total number of filesystem operation retries",
		},
		[]string{"operation"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vfx_indexer_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retry",
		},
		[]string{"operation"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vfx_indexer_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that exhausted retries",
		},
		[]string{"operation"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vfx_indexer_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
