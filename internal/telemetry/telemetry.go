// Package telemetry publishes one-way execution events: an ordered symbolic
// path plus measurements and metadata.
package telemetry

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Event is a single emission
type Event struct {
	Path         []string
	Measurements map[string]any
	Metadata     map[string]any
}

// Sink receives events. Events flow one way; sinks must not call back into
// the emitting operation.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// Emitter publishes events under a fixed path prefix. A nil emitter is valid
// and drops every emission, so an absent prefix or sink is a no-op.
type Emitter struct {
	prefix []string
	sink   Sink
}

// New creates an emitter, or nil when no prefix or sink is configured
func New(prefix []string, sink Sink) *Emitter {
	if len(prefix) == 0 || sink == nil {
		return nil
	}
	return &Emitter{prefix: prefix, sink: sink}
}

// Emit publishes one event at prefix+suffix
func (e *Emitter) Emit(ctx context.Context, suffix []string, measurements, metadata map[string]any) {
	if e == nil {
		return
	}
	path := make([]string, 0, len(e.prefix)+len(suffix))
	path = append(path, e.prefix...)
	path = append(path, suffix...)

	e.sink.Emit(ctx, Event{
		Path:         path,
		Measurements: measurements,
		Metadata:     metadata,
	})
}

// DurationMs builds the standard duration measurement map
func DurationMs(d time.Duration) map[string]any {
	return map[string]any{"duration_ms": d.Milliseconds()}
}

// SlogSink is the reference sink: it logs every event through slog
type SlogSink struct{}

// Emit logs the event
func (SlogSink) Emit(ctx context.Context, event Event) {
	slog.Info("Telemetry event",
		"path", strings.Join(event.Path, "."),
		"measurements", event.Measurements,
		"metadata", event.Metadata,
	)
}
