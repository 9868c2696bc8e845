package api

import (
	"net/http"

	"github.com/ArtAhmetaj/adaptive-backfill/internal/runner"
)

// RunHandler serves run statuses and history
type RunHandler struct {
	runner  *runner.Runner
	history *runner.HistoryRepository
}

// NewRunHandler creates a run handler. history may be nil when run
// persistence is not configured.
func NewRunHandler(run *runner.Runner, history *runner.HistoryRepository) *RunHandler {
	return &RunHandler{
		runner:  run,
		history: history,
	}
}

// List returns run history, newest first, optionally filtered by ?job=
func (h *RunHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusServiceUnavailable, "run history is not configured")
		return
	}

	job := r.URL.Query().Get("job")
	limit := parseQueryInt(r, "limit", 50)
	if limit < 1 || limit > 500 {
		limit = 50
	}

	records, err := h.history.List(r.Context(), job, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// Get returns the status of one run. In-flight async runs come from the
// status store; finished runs fall back to the persisted history.
func (h *RunHandler) Get(w http.ResponseWriter, r *http.Request, runID string) {
	if status, exists := h.runner.GetRunStatus(runID); exists {
		writeJSON(w, http.StatusOK, status)
		return
	}

	if h.history != nil {
		record, err := h.history.GetByRunID(r.Context(), runID)
		if err == nil {
			writeJSON(w, http.StatusOK, record)
			return
		}
	}

	writeError(w, http.StatusNotFound, "run not found")
}
