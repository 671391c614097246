package handler

import (
	"errors"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/dandantas/physicsai/internal/database"
	"github.com/dandantas/physicsai/internal/model"
)

// HistoryHandler exposes the archived render history read-only
type HistoryHandler struct {
	repo *database.RenderRepository
}

// NewHistoryHandler creates a new history handler. repo may be nil when the
// archive is disabled.
func NewHistoryHandler(repo *database.RenderRepository) *HistoryHandler {
	return &HistoryHandler{repo: repo}
}

// HistoryListResponse represents a paginated render history listing
type HistoryListResponse struct {
	Renders []model.RenderSummary `json:"renders"`
	Total   int64                 `json:"total"`
	Page    int                   `json:"page"`
	Limit   int                   `json:"limit"`
}

// List handles GET /api/history
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		writeError(w, http.StatusServiceUnavailable, "Render history archive is disabled")
		return
	}

	page := parseQueryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := parseQueryInt(r, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	records, total, err := h.repo.List(r.Context(), filter, page, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	summaries := make([]model.RenderSummary, 0, len(records))
	for i := range records {
		summaries = append(summaries, records[i].ToSummary())
	}

	writeJSON(w, http.StatusOK, HistoryListResponse{
		Renders: summaries,
		Total:   total,
		Page:    page,
		Limit:   limit,
	})
}

// Get handles GET /api/history/{job_id}
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		writeError(w, http.StatusServiceUnavailable, "Render history archive is disabled")
		return
	}

	jobID := strings.TrimPrefix(r.URL.Path, "/api/history/")
	if jobID == "" || strings.Contains(jobID, "/") {
		writeError(w, http.StatusBadRequest, "Invalid job id")
		return
	}

	record, err := h.repo.GetByJobID(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Render record not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, record)
}
