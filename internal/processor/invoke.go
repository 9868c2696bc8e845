package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/ArtAhmetaj/adaptive-backfill/internal/model"
)

// ErrTimeout marks a handler invocation that exceeded the configured bound
var ErrTimeout = errors.New("handler timed out")

// ErrPanic marks a handler fault that was normalized to an error result
var ErrPanic = errors.New("handler panicked")

// invokeBatch runs one batch handler invocation, normalizing panics to error
// results and applying the configured timeout.
//
// On timeout the handler goroutine is abandoned, not force-stopped: its
// context is cancelled so cooperative handlers can wind down, but a handler
// that ignores it may keep running after the timeout surfaces.
func invokeBatch(ctx context.Context, cfg *Config, state any) model.BatchResult {
	if cfg.Timeout <= 0 {
		return safeBatch(ctx, cfg.BatchHandler, state)
	}

	tctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	results := make(chan model.BatchResult, 1)
	go func() {
		results <- safeBatch(tctx, cfg.BatchHandler, state)
	}()

	select {
	case res := <-results:
		return res
	case <-tctx.Done():
		return model.BatchError(timeoutErr(tctx, cfg))
	}
}

// invokeSingle runs the single handler with the same timeout and panic rules
func invokeSingle(ctx context.Context, cfg *Config, check HealthCheck) model.Result {
	if cfg.Timeout <= 0 {
		return safeSingle(ctx, cfg.Handler, check)
	}

	tctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	results := make(chan model.Result, 1)
	go func() {
		results <- safeSingle(tctx, cfg.Handler, check)
	}()

	select {
	case res := <-results:
		return res
	case <-tctx.Done():
		return model.Failed(timeoutErr(tctx, cfg))
	}
}

func timeoutErr(tctx context.Context, cfg *Config) error {
	if errors.Is(tctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, cfg.Timeout)
	}
	return tctx.Err()
}

// safeBatch catches handler panics and normalizes them to error results so
// a fault never propagates out of the processor
func safeBatch(ctx context.Context, handler BatchHandler, state any) (res model.BatchResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Batch handler panicked",
				"panic", r,
				"stack_trace", string(debug.Stack()),
			)
			res = model.BatchError(fmt.Errorf("%w: %v", ErrPanic, r))
		}
	}()
	return handler(ctx, state)
}

func safeSingle(ctx context.Context, handler SingleHandler, check HealthCheck) (res model.Result) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Handler panicked",
				"panic", r,
				"stack_trace", string(debug.Stack()),
			)
			res = model.Failed(fmt.Errorf("%w: %v", ErrPanic, r))
		}
	}()
	return handler(ctx, check)
}
