// Package watcher keeps project indexes current between scans by following
// filesystem notifications. Events are debounced per path and applied as
// incremental deltas through the same classification logic the scanner
// uses, so a quiescent watched index matches a fresh scan.
package watcher

import (
	"sync"
	"time"

	"vfx-indexer/internal/indexstore"
	"vfx-indexer/internal/logging"
	"vfx-indexer/internal/metrics"
)

// DefaultDebounce coalesces bursts of events on one path. Editors save
// through temp-write-rename sequences; half a second absorbs those.
const DefaultDebounce = 500 * time.Millisecond

// Request describes what to watch for one project. Patterns carry the same
// glob semantics as the scanner.
type Request struct {
	ProjectID       string
	Root            string
	ScanDirs        []string
	IncludePatterns []string
	ExcludePatterns []string
}

// ProjectStatus reports one active watch.
type ProjectStatus struct {
	ProjectID   string    `json:"projectId"`
	Root        string    `json:"root"`
	Directories int       `json:"directories"`
	StartedAt   time.Time `json:"startedAt"`
}

// Manager owns all per-project watchers.
type Manager struct {
	store    *indexstore.Store
	debounce time.Duration

	mu       sync.Mutex
	projects map[string]*projectWatcher
}

// NewManager creates a watcher manager applying deltas to the given store.
// A non-positive debounce falls back to DefaultDebounce.
func NewManager(store *indexstore.Store, debounce time.Duration) *Manager {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Manager{
		store:    store,
		debounce: debounce,
		projects: make(map[string]*projectWatcher),
	}
}

// Start begins watching a project. Starting an already-watched project is
// idempotent: the existing watch is kept and already reports true.
func (m *Manager) Start(req Request) (already bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[req.ProjectID]; ok {
		return true, nil
	}

	pw, err := newProjectWatcher(req, m.store, m.debounce)
	if err != nil {
		return false, err
	}
	m.projects[req.ProjectID] = pw
	metrics.WatchedProjects.Set(float64(len(m.projects)))
	logging.Info("watching project %s at %s (%d directories)", req.ProjectID, req.Root, pw.dirCount())
	return false, nil
}

// Stop ends a project's watch. Returns false when the project was not being
// watched; stopping twice is a no-op.
func (m *Manager) Stop(projectID string) bool {
	m.mu.Lock()
	pw, ok := m.projects[projectID]
	if ok {
		delete(m.projects, projectID)
		metrics.WatchedProjects.Set(float64(len(m.projects)))
	}
	m.mu.Unlock()

	if !ok {
		return false
	}
	pw.stop()
	logging.Info("stopped watching project %s", projectID)
	return true
}

// StopAll ends every watch. Called on shutdown.
func (m *Manager) StopAll() {
	m.mu.Lock()
	stopped := make([]*projectWatcher, 0, len(m.projects))
	for id, pw := range m.projects {
		stopped = append(stopped, pw)
		delete(m.projects, id)
	}
	metrics.WatchedProjects.Set(0)
	m.mu.Unlock()

	for _, pw := range stopped {
		pw.stop()
	}
}

// Status lists all active watches.
func (m *Manager) Status() []ProjectStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	statuses := make([]ProjectStatus, 0, len(m.projects))
	for _, pw := range m.projects {
		statuses = append(statuses, ProjectStatus{
			ProjectID:   pw.req.ProjectID,
			Root:        pw.req.Root,
			Directories: pw.dirCount(),
			StartedAt:   pw.startedAt,
		})
	}
	return statuses
}

// Watching reports whether a project has an active watch.
func (m *Manager) Watching(projectID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.projects[projectID]
	return ok
}
