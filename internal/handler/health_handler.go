package handler

import (
	"net/http"
	"time"

	"github.com/dandantas/physicsai/internal/database"
)

// HealthHandler handles service health and readiness checks
type HealthHandler struct {
	db        *database.MongoDB
	model     string
	keySet    bool
	startTime time.Time
	version   string
}

// NewHealthHandler creates a new health handler. db may be nil when the
// render-history archive is disabled.
func NewHealthHandler(db *database.MongoDB, model string, keySet bool, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		model:     model,
		keySet:    keySet,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Model         string `json:"model"`
	API           string `json:"api"`
	KeySet        bool   `json:"key_set"`
	Archive       string `json:"archive"`
	Timestamp     string `json:"timestamp"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// ReadyResponse represents the readiness check response
type ReadyResponse struct {
	Ready   bool   `json:"ready"`
	Archive string `json:"archive"`
}

func (h *HealthHandler) archiveStatus(r *http.Request) string {
	if h.db == nil {
		return "disabled"
	}
	if err := h.db.Client.Ping(r.Context(), nil); err != nil {
		return "disconnected"
	}
	return "connected"
}

// Health returns the service health status along with which model and
// backend are configured
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:        "ok",
		Version:       h.version,
		Model:         h.model,
		API:           "GEMINI_REST",
		KeySet:        h.keySet,
		Archive:       h.archiveStatus(r),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	}

	writeJSON(w, http.StatusOK, response)
}

// Ready returns the service readiness status
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	archive := h.archiveStatus(r)
	ready := archive != "disconnected"

	statusCode := http.StatusOK
	if !ready {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, ReadyResponse{
		Ready:   ready,
		Archive: archive,
	})
}
