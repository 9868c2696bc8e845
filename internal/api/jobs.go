package api

import (
	"errors"
	"net/http"

	"github.com/ArtAhmetaj/adaptive-backfill/internal/runner"
	"github.com/ArtAhmetaj/adaptive-backfill/pkg/middleware"
)

// JobHandler serves registered job definitions and run triggers
type JobHandler struct {
	registry *runner.Registry
	runner   *runner.Runner
}

// NewJobHandler creates a job handler
func NewJobHandler(registry *runner.Registry, run *runner.Runner) *JobHandler {
	return &JobHandler{
		registry: registry,
		runner:   run,
	}
}

// JobSummary describes a registered job for list responses
type JobSummary struct {
	Name     string `json:"name"`
	Type     string `json:"type"` // "batch" or "single"
	Schedule string `json:"schedule,omitempty"`
	Mode     string `json:"mode"`
}

// List returns all registered jobs
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	defs := h.registry.List()

	summaries := make([]JobSummary, 0, len(defs))
	for _, def := range defs {
		jobType := "batch"
		if def.Single {
			jobType = "single"
		}
		summaries = append(summaries, JobSummary{
			Name:     def.Name,
			Type:     jobType,
			Schedule: def.Schedule,
			Mode:     string(def.Config.Mode),
		})
	}

	writeJSON(w, http.StatusOK, summaries)
}

// TriggerResponse is returned for async run submissions
type TriggerResponse struct {
	RunID string `json:"run_id"`
	Job   string `json:"job"`
}

// Trigger starts a run of the named job. With ?async=true the run is
// submitted in the background and a run ID is returned to poll.
func (h *JobHandler) Trigger(w http.ResponseWriter, r *http.Request, name string) {
	correlationID := middleware.GetCorrelationID(r.Context())

	if r.URL.Query().Get("async") == "true" {
		runID, err := h.runner.Submit(name, correlationID)
		if err != nil {
			writeTriggerError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, TriggerResponse{RunID: runID, Job: name})
		return
	}

	record, err := h.runner.Run(r.Context(), name, correlationID)
	if err != nil {
		writeTriggerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func writeTriggerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, runner.ErrUnknownJob):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, runner.ErrAlreadyRunning):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
