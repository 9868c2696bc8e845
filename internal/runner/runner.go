package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ArtAhmetaj/adaptive-backfill/internal/model"
	"github.com/ArtAhmetaj/adaptive-backfill/internal/processor"
)

// ErrUnknownJob is returned when a job name is not registered
var ErrUnknownJob = errors.New("unknown job")

// ErrAlreadyRunning is returned when the job is already running in this
// process
var ErrAlreadyRunning = errors.New("job is already running")

// Runner executes registered jobs and records their runs
type Runner struct {
	registry *Registry
	guard    *Guard
	history  *HistoryRepository // nil disables persistence
	statuses *model.RunStatusStore
	batch    *processor.Batch
	single   *processor.Single
}

// New creates a runner. history may be nil when run persistence is not
// configured.
func New(registry *Registry, history *HistoryRepository) *Runner {
	return &Runner{
		registry: registry,
		guard:    NewGuard(),
		history:  history,
		statuses: model.NewRunStatusStore(),
		batch:    processor.NewBatch(),
		single:   processor.NewSingle(),
	}
}

// Run executes a registered job synchronously and returns its run record.
// A second run of the same name while one is in flight is rejected.
func (r *Runner) Run(ctx context.Context, name, correlationID string) (*model.RunRecord, error) {
	def, exists := r.registry.Get(name)
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	if !r.guard.Acquire(name) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRunning, name)
	}
	defer r.guard.Release(name)

	runID := uuid.New().String()
	return r.execute(ctx, def, runID, correlationID), nil
}

// Submit executes a registered job in the background and returns a run ID to
// poll via GetRunStatus.
func (r *Runner) Submit(name, correlationID string) (string, error) {
	def, exists := r.registry.Get(name)
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	if !r.guard.Acquire(name) {
		return "", fmt.Errorf("%w: %s", ErrAlreadyRunning, name)
	}

	runID := uuid.New().String()
	r.statuses.Set(runID, &model.RunStatus{
		RunID:         runID,
		Job:           name,
		Status:        "queued",
		CorrelationID: correlationID,
	})

	go func() {
		defer r.guard.Release(name)

		if status, exists := r.statuses.Get(runID); exists {
			status.Status = "running"
			r.statuses.Set(runID, status)
		}

		record := r.execute(context.Background(), def, runID, correlationID)

		if status, exists := r.statuses.Get(runID); exists {
			status.Status = "finished"
			status.Outcome = record.Outcome
			status.Error = record.Error
			r.statuses.Set(runID, status)
		}
	}()

	return runID, nil
}

// GetRunStatus retrieves the status of an async run
func (r *Runner) GetRunStatus(runID string) (*model.RunStatus, bool) {
	return r.statuses.Get(runID)
}

// execute runs the job through the right processor and records the result
func (r *Runner) execute(ctx context.Context, def *Definition, runID, correlationID string) *model.RunRecord {
	slog.Info("Starting job run",
		"job", def.Name,
		"run_id", runID,
		"correlation_id", correlationID,
	)

	cfg := def.Config
	cfg.Name = def.Name

	resumed := false
	if cfg.Checkpoint != nil {
		if _, err := cfg.Checkpoint.Load(ctx, def.Name); err == nil {
			resumed = true
		}
	}

	started := time.Now().UTC()

	var result model.Result
	if def.Single {
		result = r.single.Process(ctx, &cfg)
	} else {
		result = r.batch.Process(ctx, &cfg)
	}

	finished := time.Now().UTC()
	record := &model.RunRecord{
		RunID:         runID,
		Job:           def.Name,
		CorrelationID: correlationID,
		Outcome:       result.Outcome,
		Batches:       result.Batches,
		Resumed:       resumed,
		HaltReasons:   result.Signals.Reasons(),
		StartedAt:     started,
		FinishedAt:    finished,
		DurationMs:    finished.Sub(started).Milliseconds(),
	}
	if result.Err != nil {
		record.Error = result.Err.Error()
	}

	if r.history != nil {
		if err := r.history.Create(ctx, record); err != nil {
			slog.Error("Failed to save run record",
				"job", def.Name,
				"run_id", runID,
				"error", err,
			)
		}
	}

	slog.Info("Job run finished",
		"job", def.Name,
		"run_id", runID,
		"outcome", record.Outcome,
		"batches", record.Batches,
		"duration_ms", record.DurationMs,
	)

	return record
}
