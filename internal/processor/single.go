package processor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ArtAhmetaj/adaptive-backfill/internal/model"
	"github.com/ArtAhmetaj/adaptive-backfill/internal/telemetry"
)

// Single runs a one-shot unit of work with an injected health check
type Single struct{}

// NewSingle creates a single-operation processor
func NewSingle() *Single {
	return &Single{}
}

// Process validates the config, binds a health-check closure to the
// configured monitor and runs the handler once. Async mode starts a fresh
// monitor for this call's lifetime and stops it on every exit path.
func (p *Single) Process(ctx context.Context, cfg *Config) model.Result {
	if err := cfg.validate(false); err != nil {
		return model.Failed(err)
	}

	emitter := cfg.emitter()
	start := time.Now()

	slog.Info("Starting operation",
		"job", cfg.Name,
		"mode", cfg.Mode,
	)
	emitter.Emit(ctx, []string{"operation", "start"}, nil, map[string]any{
		"job":  cfg.Name,
		"mode": string(cfg.Mode),
	})

	check, release := healthCheckFor(ctx, cfg)
	defer release()

	result := invokeSingle(ctx, cfg, check)
	duration := time.Since(start)

	p.finish(ctx, cfg, emitter, result, duration)
	return result
}

// finish logs, emits and dispatches callbacks for the result variant.
// OnComplete fires for done/ok/halt; OnError fires only for error results.
func (p *Single) finish(ctx context.Context, cfg *Config, emitter *telemetry.Emitter, result model.Result, duration time.Duration) {
	metadata := map[string]any{
		"job":  cfg.Name,
		"mode": string(cfg.Mode),
	}

	switch result.Outcome {
	case model.OutcomeDone, model.OutcomeOK:
		slog.Info("Operation completed",
			"job", cfg.Name,
			"outcome", result.Outcome,
			"duration_ms", duration.Milliseconds(),
		)
		emitter.Emit(ctx, []string{"operation", "success"}, telemetry.DurationMs(duration), metadata)
		if result.Outcome == model.OutcomeOK && cfg.OnSuccess != nil {
			cfg.OnSuccess(result.State)
		}
		if cfg.OnComplete != nil {
			cfg.OnComplete(result)
		}

	case model.OutcomeHalt:
		slog.Warn("Operation halted",
			"job", cfg.Name,
			"signals", result.Signals,
			"duration_ms", duration.Milliseconds(),
		)
		metadata["halt_reasons"] = result.Signals.Reasons()
		emitter.Emit(ctx, []string{"operation", "halt"}, telemetry.DurationMs(duration), metadata)
		if cfg.OnComplete != nil {
			cfg.OnComplete(result)
		}

	case model.OutcomeError:
		slog.Error("Operation failed",
			"job", cfg.Name,
			"error", result.Err,
			"duration_ms", duration.Milliseconds(),
		)
		metadata["error"] = result.Err.Error()
		event := "error"
		if errors.Is(result.Err, ErrPanic) {
			event = "exception"
		}
		emitter.Emit(ctx, []string{"operation", event}, telemetry.DurationMs(duration), metadata)
		if cfg.OnError != nil {
			cfg.OnError(result.Err, result.State)
		}
	}
}
