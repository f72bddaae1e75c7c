package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"vfx-indexer/internal/database"
	"vfx-indexer/internal/indexstore"
	"vfx-indexer/internal/logging"
	"vfx-indexer/internal/scanner"
)

// ScanProject walks the project tree and reconciles the index. The scan is
// synchronous; concurrent requests for the same project coalesce onto one
// walk inside the scanner.
func (h *Handlers) ScanProject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	project, err := h.db.GetProject(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrProjectNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		logging.Error("scan project %s: %v", id, err)
		writeJSONError(w, "failed to load project", http.StatusInternalServerError)
		return
	}

	// Scans outlive neither the request nor a project deletion. Deleting
	// the project cancels through trackScan; a dropped client cancels
	// through the request context.
	scanCtx, cancel := context.WithCancel(r.Context())
	release := h.trackScan(id, cancel)
	defer release()
	defer cancel()

	result, err := h.scanner.Scan(scanCtx, scanner.Request{
		ProjectID:       project.ID,
		Root:            project.Root,
		ScanDirs:        project.ScanDirs,
		IncludePatterns: project.IncludePatterns,
		ExcludePatterns: project.ExcludePatterns,
	})
	if err != nil {
		switch {
		case errors.Is(err, scanner.ErrInvalidRoot):
			writeJSONError(w, err.Error(), http.StatusUnprocessableEntity)
		case errors.Is(err, context.Canceled):
			writeJSONError(w, "scan canceled", http.StatusConflict)
		default:
			logging.Error("scan project %s: %v", id, err)
			writeJSONError(w, "scan failed", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, result)
}

// GetIndex returns the project's current index snapshot: the grouped view
// with versions ordered newest-first.
func (h *Handlers) GetIndex(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, err := h.db.GetProject(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrProjectNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		logging.Error("get index for project %s: %v", id, err)
		writeJSONError(w, "failed to load project", http.StatusInternalServerError)
		return
	}

	view, ok := h.store.Read(id)
	if !ok {
		writeJSONError(w, "project has not been scanned yet", http.StatusNotFound)
		return
	}

	// Clients consume both shapes: the group tree for browsing and the
	// flat list for lookup tables.
	records := make([]indexstore.Record, 0, view.RecordCount)
	for _, g := range view.Groups {
		records = append(records, g.Records...)
	}
	response := struct {
		indexstore.View
		Records []indexstore.Record `json:"records"`
	}{View: view, Records: records}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, response)
}
