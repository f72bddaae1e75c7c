// Package metrics defines the Prometheus instrumentation for the indexing
// engine. All collectors are registered at import time via promauto.
package metrics
