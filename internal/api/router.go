package api

import (
	"net/http"
	"strings"

	"github.com/ArtAhmetaj/adaptive-backfill/pkg/middleware"
)

// Router wires the HTTP surface
type Router struct {
	jobHandler    *JobHandler
	runHandler    *RunHandler
	healthHandler *HealthHandler
	corsConfig    middleware.CORSConfig
}

// NewRouter creates a new router
func NewRouter(
	jobHandler *JobHandler,
	runHandler *RunHandler,
	healthHandler *HealthHandler,
	corsConfig middleware.CORSConfig,
) *Router {
	return &Router{
		jobHandler:    jobHandler,
		runHandler:    runHandler,
		healthHandler: healthHandler,
		corsConfig:    corsConfig,
	}
}

// Handler returns the configured HTTP handler with middleware
func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health endpoints (no middleware)
	mux.HandleFunc("/health", rt.healthHandler.Health)
	mux.HandleFunc("/ready", rt.healthHandler.Ready)

	// API endpoints
	mux.HandleFunc("/api/v1/jobs", rt.handleJobs)
	mux.HandleFunc("/api/v1/jobs/", rt.handleJobsWithName)
	mux.HandleFunc("/api/v1/runs", rt.handleRuns)
	mux.HandleFunc("/api/v1/runs/", rt.handleRunsWithID)

	// CORS first to handle preflight requests
	handler := middleware.CORS(rt.corsConfig)(mux)
	handler = middleware.Recovery(handler)
	handler = middleware.Logging(handler)
	handler = middleware.CorrelationID(handler)

	return handler
}

func (rt *Router) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	rt.jobHandler.List(w, r)
}

// handleJobsWithName routes /api/v1/jobs/{name}/run
func (rt *Router) handleJobsWithName(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/jobs/")

	if name, ok := strings.CutSuffix(path, "/run"); ok {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		rt.jobHandler.Trigger(w, r, name)
		return
	}

	writeError(w, http.StatusNotFound, "Endpoint not found")
}

func (rt *Router) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	rt.runHandler.List(w, r)
}

// handleRunsWithID routes /api/v1/runs/{run_id}
func (rt *Router) handleRunsWithID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	runID := strings.TrimPrefix(r.URL.Path, "/api/v1/runs/")
	if runID == "" || strings.Contains(runID, "/") {
		writeError(w, http.StatusNotFound, "Endpoint not found")
		return
	}
	rt.runHandler.Get(w, r, runID)
}
