package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"vfx-indexer/internal/database"
	"vfx-indexer/internal/logging"
	"vfx-indexer/internal/watcher"
)

// StartWatch subscribes the project to filesystem notifications. Starting
// an already-watched project succeeds and reports it.
func (h *Handlers) StartWatch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	project, err := h.db.GetProject(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrProjectNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		logging.Error("watch project %s: %v", id, err)
		writeJSONError(w, "failed to load project", http.StatusInternalServerError)
		return
	}

	already, err := h.watch.Start(watcher.Request{
		ProjectID:       project.ID,
		Root:            project.Root,
		ScanDirs:        project.ScanDirs,
		IncludePatterns: project.IncludePatterns,
		ExcludePatterns: project.ExcludePatterns,
	})
	if err != nil {
		logging.Error("watch project %s: %v", id, err)
		writeJSONError(w, "failed to start watch: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]any{
		"watching": true,
		"already":  already,
	})
}

// StopWatch unsubscribes the project. Stopping a project that is not
// watched is a no-op, reported as such.
func (h *Handlers) StopWatch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	stopped := h.watch.Stop(id)
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]any{
		"watching": false,
		"stopped":  stopped,
	})
}

// ListWatches reports every active watch.
func (h *Handlers) ListWatches(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, h.watch.Status())
}
