package handlers

import (
	"net/http"

	"vfx-indexer/internal/startup"
)

// GetVersion returns build information.
func (h *Handlers) GetVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, startup.GetBuildInfo())
}
