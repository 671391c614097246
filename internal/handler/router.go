package handler

import (
	"net/http"
	"strings"

	"github.com/dandantas/physicsai/pkg/middleware"
)

// Router handles HTTP routing
type Router struct {
	simulateHandler *SimulateHandler
	videoHandler    *VideoHandler
	repairHandler   *RepairHandler
	historyHandler  *HistoryHandler
	healthHandler   *HealthHandler
	corsConfig      middleware.CORSConfig
}

// NewRouter creates a new router
func NewRouter(
	simulateHandler *SimulateHandler,
	videoHandler *VideoHandler,
	repairHandler *RepairHandler,
	historyHandler *HistoryHandler,
	healthHandler *HealthHandler,
	corsConfig middleware.CORSConfig,
) *Router {
	return &Router{
		simulateHandler: simulateHandler,
		videoHandler:    videoHandler,
		repairHandler:   repairHandler,
		historyHandler:  historyHandler,
		healthHandler:   healthHandler,
		corsConfig:      corsConfig,
	}
}

// Handler returns the configured HTTP handler with middleware
func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health endpoints (skipped by request logging)
	mux.HandleFunc("/health", rt.healthHandler.Health)
	mux.HandleFunc("/ready", rt.healthHandler.Ready)

	// API endpoints
	mux.HandleFunc("/api/simulate", rt.handleSimulate)
	mux.HandleFunc("/api/video/", rt.handleVideo)
	mux.HandleFunc("/api/fix-p5js", rt.handleFix)
	mux.HandleFunc("/api/history", rt.handleHistory)
	mux.HandleFunc("/api/history/", rt.handleHistoryWithID)

	// Apply middleware (CORS first to handle preflight requests)
	handler := middleware.CORS(rt.corsConfig)(mux)
	handler = middleware.Recovery(handler)
	handler = middleware.Logging(handler)
	handler = middleware.CorrelationID(handler)

	return handler
}

func (rt *Router) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	rt.simulateHandler.Simulate(w, r)
}

func (rt *Router) handleVideo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	rt.videoHandler.Get(w, r)
}

func (rt *Router) handleFix(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	rt.repairHandler.Fix(w, r)
}

func (rt *Router) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	rt.historyHandler.List(w, r)
}

func (rt *Router) handleHistoryWithID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	// A trailing slash with nothing after it is the listing
	if strings.TrimPrefix(r.URL.Path, "/api/history/") == "" {
		rt.historyHandler.List(w, r)
		return
	}
	rt.historyHandler.Get(w, r)
}
