package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"

	"vfx-indexer/internal/database"
	"vfx-indexer/internal/logging"
)

// createProjectRequest is the POST /api/projects body. Omitted scan dirs
// and patterns inherit the configured defaults.
type createProjectRequest struct {
	Name            string   `json:"name"`
	Root            string   `json:"root"`
	Client          string   `json:"client"`
	ScanDirs        []string `json:"scanDirs"`
	IncludePatterns []string `json:"includePatterns"`
	ExcludePatterns []string `json:"excludePatterns"`
}

// CreateProject registers a new project.
func (h *Handlers) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Root == "" {
		writeJSONError(w, "name and root are required", http.StatusBadRequest)
		return
	}
	if !filepath.IsAbs(req.Root) {
		writeJSONError(w, "root must be an absolute path", http.StatusBadRequest)
		return
	}

	project := database.Project{
		Name:            req.Name,
		Root:            filepath.Clean(req.Root),
		Client:          req.Client,
		ScanDirs:        req.ScanDirs,
		IncludePatterns: req.IncludePatterns,
		ExcludePatterns: req.ExcludePatterns,
	}
	if project.ScanDirs == nil {
		project.ScanDirs = h.config.DefaultScanDirs
	}
	if project.IncludePatterns == nil {
		project.IncludePatterns = h.config.DefaultIncludePatterns
	}
	if project.ExcludePatterns == nil {
		project.ExcludePatterns = h.config.DefaultExcludePatterns
	}

	created, err := h.db.CreateProject(r.Context(), project)
	if err != nil {
		if errors.Is(err, database.ErrProjectExists) {
			writeJSONError(w, err.Error(), http.StatusConflict)
			return
		}
		logging.Error("create project: %v", err)
		writeJSONError(w, "failed to create project", http.StatusInternalServerError)
		return
	}

	logging.Info("project %s created (%s)", created.Name, created.ID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, created)
}

// ListProjects returns all registered projects.
func (h *Handlers) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.db.ListProjects(r.Context())
	if err != nil {
		logging.Error("list projects: %v", err)
		writeJSONError(w, "failed to list projects", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, projects)
}

// GetProject returns one project with its index summary.
func (h *Handlers) GetProject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	project, err := h.db.GetProject(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrProjectNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		logging.Error("get project %s: %v", id, err)
		writeJSONError(w, "failed to load project", http.StatusInternalServerError)
		return
	}

	response := struct {
		database.Project
		RecordCount int  `json:"recordCount"`
		Watching    bool `json:"watching"`
	}{
		Project:     project,
		RecordCount: h.store.Count(id),
		Watching:    h.watch.Watching(id),
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, response)
}

// DeleteProject removes a project: any running scan is canceled, its watch
// stopped and its index dropped before the row goes away.
func (h *Handlers) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, err := h.db.GetProject(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrProjectNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		logging.Error("delete project %s: %v", id, err)
		writeJSONError(w, "failed to load project", http.StatusInternalServerError)
		return
	}

	h.cancelScans(id)
	h.watch.Stop(id)
	h.store.Drop(id)

	if err := h.db.DeleteProject(r.Context(), id); err != nil && !errors.Is(err, database.ErrProjectNotFound) {
		logging.Error("delete project %s: %v", id, err)
		writeJSONError(w, "failed to delete project", http.StatusInternalServerError)
		return
	}

	logging.Info("project %s deleted", id)
	writeJSONStatus(w, "deleted")
}
