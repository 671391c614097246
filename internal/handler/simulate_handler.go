package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dandantas/physicsai/internal/model"
	"github.com/dandantas/physicsai/internal/service"
)

// SimulateHandler handles simulation generation requests
type SimulateHandler struct {
	simulations *service.SimulationService
}

// NewSimulateHandler creates a new simulate handler
func NewSimulateHandler(simulations *service.SimulationService) *SimulateHandler {
	return &SimulateHandler{simulations: simulations}
}

// Simulate handles POST /api/simulate
func (h *SimulateHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req model.SimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.simulations.Simulate(r.Context(), req.Question)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
