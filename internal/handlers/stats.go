package handlers

import (
	"net/http"
	"time"

	"vfx-indexer/internal/logging"
)

// ProjectStats summarizes one project's index.
type ProjectStats struct {
	ProjectID   string    `json:"projectId"`
	Name        string    `json:"name"`
	RecordCount int       `json:"recordCount"`
	LastScan    time.Time `json:"lastScan,omitzero"`
	Watching    bool      `json:"watching"`
}

// StatsResponse summarizes the service's working set.
type StatsResponse struct {
	Projects        int            `json:"projects"`
	IndexedProjects int            `json:"indexedProjects"`
	IndexedRecords  int            `json:"indexedRecords"`
	ActiveWatches   int            `json:"activeWatches"`
	FileTypes       map[string]int `json:"fileTypes"`
	PerProject      []ProjectStats `json:"perProject"`
	Uptime          string         `json:"uptime"`
}

// GetStats returns service-wide statistics. Registered projects come from
// the database; indexed counts from the in-memory index, so a registered
// but never-scanned project shows a zero record count and no scan time.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	projects, err := h.db.ListProjects(r.Context())
	if err != nil {
		logging.Error("stats: %v", err)
		writeJSONError(w, "failed to list projects", http.StatusInternalServerError)
		return
	}

	h.db.UpdateSizeMetrics()

	fileTypes := make(map[string]int)
	perProject := make([]ProjectStats, 0, len(projects))
	for _, p := range projects {
		ps := ProjectStats{
			ProjectID: p.ID,
			Name:      p.Name,
			Watching:  h.watch.Watching(p.ID),
		}
		if view, ok := h.store.Read(p.ID); ok {
			ps.RecordCount = view.RecordCount
			ps.LastScan = view.UpdatedAt
			for _, g := range view.Groups {
				fileTypes[string(g.Key.Type)] += len(g.Records)
			}
		}
		perProject = append(perProject, ps)
	}

	indexed, records := h.store.Totals()
	response := StatsResponse{
		Projects:        len(projects),
		IndexedProjects: indexed,
		IndexedRecords:  records,
		ActiveWatches:   len(h.watch.Status()),
		FileTypes:       fileTypes,
		PerProject:      perProject,
		Uptime:          time.Since(h.startTime).Round(time.Second).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, response)
}
