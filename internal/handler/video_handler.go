package handler

import (
	"net/http"
	"strings"

	"github.com/dandantas/physicsai/internal/service"
)

// VideoHandler handles render job polling
type VideoHandler struct {
	simulations *service.SimulationService
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(simulations *service.SimulationService) *VideoHandler {
	return &VideoHandler{simulations: simulations}
}

// Get handles GET /api/video/{job_id}
func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	jobID := strings.TrimPrefix(r.URL.Path, "/api/video/")
	if jobID == "" || strings.Contains(jobID, "/") {
		writeError(w, http.StatusBadRequest, "Invalid job id")
		return
	}

	status, ok := h.simulations.JobStatus(jobID)
	if !ok {
		writeError(w, http.StatusNotFound, "Job not found")
		return
	}

	writeJSON(w, http.StatusOK, status)
}
