package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dandantas/physicsai/internal/model"
	"github.com/dandantas/physicsai/internal/service"
)

// RepairHandler handles single-shot visualization script repairs
type RepairHandler struct {
	simulations *service.SimulationService
}

// NewRepairHandler creates a new repair handler
func NewRepairHandler(simulations *service.SimulationService) *RepairHandler {
	return &RepairHandler{simulations: simulations}
}

// Fix handles POST /api/fix-p5js
func (h *RepairHandler) Fix(w http.ResponseWriter, r *http.Request) {
	var req model.FixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	fixed, err := h.simulations.FixScript(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.FixResponse{P5JSCode: fixed})
}
