// Package processor implements the execution engine for adaptive backfill
// operations: a single-shot processor and a resumable batch processor, both
// gated by infrastructure health probes.
package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/ArtAhmetaj/adaptive-backfill/internal/checkpoint"
	"github.com/ArtAhmetaj/adaptive-backfill/internal/health"
	"github.com/ArtAhmetaj/adaptive-backfill/internal/model"
	"github.com/ArtAhmetaj/adaptive-backfill/internal/telemetry"
)

// Validation error codes
const (
	CodeInvalidHandler        = "invalid_handler"
	CodeInvalidMode           = "invalid_mode"
	CodeInvalidHealthCheckers = "invalid_health_checkers"
	CodeInvalidTimeout        = "invalid_timeout"
	CodeInvalidDelay          = "invalid_delay"
)

// ConfigError is a construction-time validation failure. It carries a stable
// code and never reaches the execution loop.
type ConfigError struct {
	Code    string
	Message string
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HealthCheck reports the latest probe snapshot and whether it demands a
// halt. Handlers may call it zero or more times at their own discretion.
type HealthCheck func(ctx context.Context) (model.Snapshot, bool)

// SingleHandler is a one-shot unit of work. It receives a health check bound
// to the configured monitor and returns done, ok, halt or error.
type SingleHandler func(ctx context.Context, check HealthCheck) model.Result

// BatchHandler runs one batch against the current state and returns done,
// ok with the next state, or error. The handler exclusively owns the state
// value; the processor only reads it for checkpointing and passes it forward.
type BatchHandler func(ctx context.Context, state any) model.BatchResult

// Config is the validated bundle describing one operation. It must not be
// mutated after the operation starts.
type Config struct {
	// Name identifies the job. It keys the checkpoint and appears in logs
	// and telemetry metadata.
	Name string

	Mode   model.Mode
	Probes []model.Probe

	Handler      SingleHandler // single operations
	BatchHandler BatchHandler  // batch operations

	InitialState any
	// Checkpoint persists batch state between runs; nil disables
	// checkpointing entirely.
	Checkpoint checkpoint.Store

	// Timeout bounds one handler invocation; zero disables the bound.
	Timeout time.Duration
	// Delay is an optional pause between batches.
	Delay time.Duration

	// ProbeTimeout bounds one probe gather and PollInterval drives the async
	// monitor; zero values use the health package defaults.
	ProbeTimeout time.Duration
	PollInterval time.Duration

	OnSuccess  func(state any)
	OnError    func(err error, state any)
	OnComplete func(result model.Result)

	// TelemetryPrefix and TelemetrySink wire the event stream. An empty
	// prefix or nil sink disables emission.
	TelemetryPrefix []string
	TelemetrySink   telemetry.Sink
}

// validate is the pre-flight gate: it rejects malformed configuration with a
// coded error before execution starts.
func (c *Config) validate(batch bool) error {
	if batch {
		if c.BatchHandler == nil {
			return &ConfigError{Code: CodeInvalidHandler, Message: "batch handler is required"}
		}
	} else {
		if c.Handler == nil {
			return &ConfigError{Code: CodeInvalidHandler, Message: "handler is required"}
		}
	}

	if err := c.Mode.Validate(); err != nil {
		return &ConfigError{Code: CodeInvalidMode, Message: err.Error()}
	}

	if len(c.Probes) == 0 {
		return &ConfigError{Code: CodeInvalidHealthCheckers, Message: "probe set must not be empty"}
	}
	for i, probe := range c.Probes {
		if probe == nil {
			return &ConfigError{
				Code:    CodeInvalidHealthCheckers,
				Message: fmt.Sprintf("probe %d is nil", i),
			}
		}
	}

	if c.Timeout < 0 {
		return &ConfigError{Code: CodeInvalidTimeout, Message: "timeout must not be negative"}
	}
	if c.Delay < 0 {
		return &ConfigError{Code: CodeInvalidDelay, Message: "delay must not be negative"}
	}

	return nil
}

// store returns the configured checkpoint store, or the documented no-op
func (c *Config) store() checkpoint.Store {
	if c.Checkpoint == nil {
		return checkpoint.Noop{}
	}
	return c.Checkpoint
}

// emitter builds the telemetry emitter; nil when telemetry is not wired
func (c *Config) emitter() *telemetry.Emitter {
	return telemetry.New(c.TelemetryPrefix, c.TelemetrySink)
}

// healthCheckFor builds the health-check closure for the configured mode.
// Async mode starts a fresh monitor owned by this call; the returned release
// function must run on every exit path.
func healthCheckFor(ctx context.Context, cfg *Config) (HealthCheck, func()) {
	switch cfg.Mode {
	case model.ModeAsync:
		monitor := health.NewAsyncMonitor(cfg.Probes, cfg.PollInterval, cfg.ProbeTimeout)
		monitor.Start(ctx)
		check := func(context.Context) (model.Snapshot, bool) {
			snapshot := monitor.GetState()
			return snapshot, health.ShouldHalt(snapshot)
		}
		return check, monitor.Stop
	default:
		monitor := health.NewSyncMonitor(cfg.ProbeTimeout)
		check := func(cctx context.Context) (model.Snapshot, bool) {
			snapshot := monitor.GetState(cctx, cfg.Probes)
			return snapshot, health.ShouldHalt(snapshot)
		}
		return check, func() {}
	}
}
