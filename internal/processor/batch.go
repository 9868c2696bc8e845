package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ArtAhmetaj/adaptive-backfill/internal/checkpoint"
	"github.com/ArtAhmetaj/adaptive-backfill/internal/model"
	"github.com/ArtAhmetaj/adaptive-backfill/internal/telemetry"
)

// Batch drives the repeated cycle: run batch handler, persist checkpoint,
// optional delay, consult the health monitor, halt or continue.
type Batch struct{}

// NewBatch creates a batch-operation processor
func NewBatch() *Batch {
	return &Batch{}
}

// Process runs the batch state machine to a terminal result.
//
// Checkpoint policy: the persisted state is overwritten only after a batch
// success or failure, never on a halt-only step; it is deleted only on done
// and retained on halt and on error so an external re-invocation resumes
// from the last safe point.
func (p *Batch) Process(ctx context.Context, cfg *Config) model.Result {
	if err := cfg.validate(true); err != nil {
		return model.Failed(err)
	}

	store := cfg.store()
	emitter := cfg.emitter()

	state := cfg.InitialState
	resumed := false
	loaded, err := store.Load(ctx, cfg.Name)
	switch {
	case err == nil:
		state = loaded
		resumed = true
	case errors.Is(err, checkpoint.ErrNotFound):
		// fresh run from the configured initial state
	default:
		// A broken store must not silently restart the job from scratch.
		return model.Failed(fmt.Errorf("failed to load checkpoint for %s: %w", cfg.Name, err))
	}

	check, release := healthCheckFor(ctx, cfg)
	defer release()

	start := time.Now()
	slog.Info("Starting batch operation",
		"job", cfg.Name,
		"mode", cfg.Mode,
		"resumed", resumed,
	)
	emitter.Emit(ctx, []string{"batch", "run", "start"}, nil, map[string]any{
		"job":     cfg.Name,
		"mode":    string(cfg.Mode),
		"resumed": resumed,
	})

	result := p.run(ctx, cfg, store, emitter, check, state)
	duration := time.Since(start)

	emitter.Emit(ctx, []string{"batch", "run", "stop"}, telemetry.DurationMs(duration), map[string]any{
		"job":     cfg.Name,
		"outcome": string(result.Outcome),
		"batches": result.Batches,
		"resumed": resumed,
	})
	slog.Info("Batch operation finished",
		"job", cfg.Name,
		"outcome", result.Outcome,
		"batches", result.Batches,
		"duration_ms", duration.Milliseconds(),
	)

	return result
}

// run is the cycle loop over (state, batch count)
func (p *Batch) run(ctx context.Context, cfg *Config, store checkpoint.Store, emitter *telemetry.Emitter, check HealthCheck, state any) model.Result {
	batches := 0

	for {
		metadata := map[string]any{
			"job":   cfg.Name,
			"batch": batches,
		}
		emitter.Emit(ctx, []string{"batch", "start"}, nil, metadata)

		batchStart := time.Now()
		res := invokeBatch(ctx, cfg, state)
		duration := time.Since(batchStart)
		batches++

		switch res.Outcome {
		case model.OutcomeDone:
			if err := store.Delete(ctx, cfg.Name); err != nil {
				slog.Error("Failed to delete checkpoint",
					"job", cfg.Name,
					"error", err,
				)
			}
			emitter.Emit(ctx, []string{"batch", "done"}, telemetry.DurationMs(duration), metadata)

			result := model.Done()
			result.Batches = batches
			if cfg.OnComplete != nil {
				cfg.OnComplete(result)
			}
			return result

		case model.OutcomeOK:
			next := res.State
			emitter.Emit(ctx, []string{"batch", "success"}, telemetry.DurationMs(duration), metadata)
			if cfg.OnSuccess != nil {
				cfg.OnSuccess(next)
			}
			if err := store.Save(ctx, cfg.Name, next); err != nil {
				slog.Error("Failed to save checkpoint",
					"job", cfg.Name,
					"error", err,
				)
			}

			if cfg.Delay > 0 {
				select {
				case <-time.After(cfg.Delay):
				case <-ctx.Done():
					// fall through; the cancelled gather fail-closes and the
					// run halts with the checkpoint retained
				}
			}

			snapshot, halted := check(ctx)
			if halted {
				slog.Warn("Halting batch operation on degraded health",
					"job", cfg.Name,
					"signals", snapshot,
					"batches", batches,
				)
				metadata["halt_reasons"] = snapshot.Reasons()
				emitter.Emit(ctx, []string{"batch", "halt"}, telemetry.DurationMs(duration), metadata)

				result := model.Halted(next)
				result.Signals = snapshot
				result.Batches = batches
				if cfg.OnComplete != nil {
					cfg.OnComplete(result)
				}
				return result
			}

			state = next

		case model.OutcomeError:
			// Re-persist the input state of the failed batch so a retry
			// resumes from the same point.
			if err := store.Save(ctx, cfg.Name, state); err != nil {
				slog.Error("Failed to save checkpoint",
					"job", cfg.Name,
					"error", err,
				)
			}

			metadata["error"] = res.Err.Error()
			event := "error"
			if errors.Is(res.Err, ErrPanic) {
				event = "exception"
			}
			emitter.Emit(ctx, []string{"batch", event}, telemetry.DurationMs(duration), metadata)

			slog.Error("Batch failed",
				"job", cfg.Name,
				"batch", batches-1,
				"error", res.Err,
			)

			if cfg.OnError != nil {
				cfg.OnError(res.Err, state)
			}

			result := model.Failed(res.Err)
			result.State = state
			result.Batches = batches
			return result

		default:
			result := model.Failed(fmt.Errorf("batch handler returned invalid outcome: %s", res.Outcome))
			result.State = state
			result.Batches = batches
			return result
		}
	}
}
