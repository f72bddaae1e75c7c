package handlers

import (
	"context"
	"sync"
	"time"

	"vfx-indexer/internal/database"
	"vfx-indexer/internal/indexstore"
	"vfx-indexer/internal/scanner"
	"vfx-indexer/internal/startup"
	"vfx-indexer/internal/watcher"
)

// Handlers wires the HTTP surface to the engine components.
type Handlers struct {
	db      *database.Database
	store   *indexstore.Store
	scanner *scanner.Scanner
	watch   *watcher.Manager
	config  *startup.Config

	startTime time.Time

	// Running scans per project, so deleting a project can cancel them.
	mu         sync.Mutex
	nextScanID int
	scans      map[string]map[int]context.CancelFunc
}

// New creates the handler set.
func New(db *database.Database, store *indexstore.Store, sc *scanner.Scanner, watch *watcher.Manager, config *startup.Config) *Handlers {
	return &Handlers{
		db:        db,
		store:     store,
		scanner:   sc,
		watch:     watch,
		config:    config,
		startTime: time.Now(),
		scans:     make(map[string]map[int]context.CancelFunc),
	}
}

// trackScan registers a cancel func for a project's running scan and
// returns a release func the scan calls when done.
func (h *Handlers) trackScan(projectID string, cancel context.CancelFunc) func() {
	h.mu.Lock()
	h.nextScanID++
	id := h.nextScanID
	if h.scans[projectID] == nil {
		h.scans[projectID] = make(map[int]context.CancelFunc)
	}
	h.scans[projectID][id] = cancel
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if m := h.scans[projectID]; m != nil {
			delete(m, id)
			if len(m) == 0 {
				delete(h.scans, projectID)
			}
		}
	}
}

// cancelScans aborts every running scan for a project.
func (h *Handlers) cancelScans(projectID string) {
	h.mu.Lock()
	cancels := h.scans[projectID]
	delete(h.scans, projectID)
	h.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}
