package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	// --- Scan outcomes ---
	for _, status := range []string{"ok", "error", "coalesced", "canceled"} {
		ScanRunsTotal.WithLabelValues(status)
	}

	// --- Watcher event types ---
	for _, event := range []string{"create", "write", "remove", "rename", "chmod"} {
		WatcherEventsTotal.WithLabelValues(event)
	}

	// --- Filesystem retry metrics per operation ---
	for _, op := range []string{"stat", "readdir"} {
		FilesystemRetryAttempts.WithLabelValues(op)
		FilesystemRetrySuccess.WithLabelValues(op)
		FilesystemRetryFailures.WithLabelValues(op)
		FilesystemStaleErrors.WithLabelValues(op)
	}

	// --- DB query operations ---
	for _, op := range []string{"initialize_schema", "create_project", "get_project",
		"list_projects", "delete_project", "replace_project_files", "list_project_files"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	// --- Database size files ---
	for _, file := range []string{"main", "wal", "shm"} {
		DBSizeBytes.WithLabelValues(file)
	}
}
