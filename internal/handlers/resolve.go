package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"vfx-indexer/internal/artifacttypes"
	"vfx-indexer/internal/database"
	"vfx-indexer/internal/indexstore"
	"vfx-indexer/internal/logging"
	"vfx-indexer/internal/version"
)

// resolveResponse carries the resolved record. Fallback is set when the
// requested version token was stale and the group default was used instead.
type resolveResponse struct {
	Record   indexstore.Record `json:"record"`
	Fallback bool              `json:"fallback,omitempty"`
}

// ResolveVersion picks a version within an artifact group.
//
// Query parameters: fileType, baseName (required); folder, shotGroup
// (defaulted); version (empty selects the group default). A stale version
// reference falls back to the default rather than failing, so callers
// holding references to vanished files still open something sensible.
func (h *Handlers) ResolveVersion(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, err := h.db.GetProject(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrProjectNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		logging.Error("resolve for project %s: %v", id, err)
		writeJSONError(w, "failed to load project", http.StatusInternalServerError)
		return
	}

	q := r.URL.Query()
	fileType := q.Get("fileType")
	baseName := q.Get("baseName")
	if fileType == "" || baseName == "" {
		writeJSONError(w, "fileType and baseName are required", http.StatusBadRequest)
		return
	}
	folder := q.Get("folder")
	if folder == "" {
		folder = artifacttypes.RootFolder
	}
	shotGroup := q.Get("shotGroup")
	if shotGroup == "" {
		shotGroup = artifacttypes.DefaultShotGroup
	}

	key := artifacttypes.Key{
		Type:      artifacttypes.FileType(fileType),
		Folder:    folder,
		ShotGroup: shotGroup,
		BaseName:  baseName,
	}
	records, ok := h.store.Versions(id, key)
	if !ok || len(records) == 0 {
		writeJSONError(w, "no such artifact group: "+key.String(), http.StatusNotFound)
		return
	}

	response := resolveResponse{}
	record, err := version.Resolve(records, q.Get("version"))
	if err != nil {
		if !errors.Is(err, version.ErrVersionNotFound) {
			logging.Error("resolve %s: %v", key, err)
			writeJSONError(w, "resolve failed", http.StatusInternalServerError)
			return
		}
		// Stale reference: fall back to the group default.
		record, ok = version.Default(records)
		if !ok {
			writeJSONError(w, "no such artifact group: "+key.String(), http.StatusNotFound)
			return
		}
		response.Fallback = true
		logging.Info("stale version %q for %s, falling back to %s",
			q.Get("version"), key, record.VersionToken)
	}

	response.Record = record
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, response)
}
