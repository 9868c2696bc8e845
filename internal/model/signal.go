package model

import (
	"context"
	"fmt"
	"strings"
)

// Mode selects which health-monitor discipline an operation uses
type Mode string

const (
	// ModeSync gathers probe signals on demand, blocking the operation
	ModeSync Mode = "sync"
	// ModeAsync serves cached signals refreshed by a background poller
	ModeAsync Mode = "async"
)

// Validate validates the operation mode
func (m Mode) Validate() error {
	switch m {
	case ModeSync, ModeAsync:
		return nil
	default:
		return fmt.Errorf("invalid mode: %s (must be 'sync' or 'async')", m)
	}
}

// HealthSignal is the outcome of a single probe: healthy, or a halt
// with an opaque reason that is forwarded verbatim.
type HealthSignal struct {
	Healthy bool   `json:"healthy" bson:"healthy"`
	Reason  string `json:"reason,omitempty" bson:"reason,omitempty"`
}

// OK returns a healthy signal
func OK() HealthSignal {
	return HealthSignal{Healthy: true}
}

// HaltSignal returns a halt signal carrying the given reason
func HaltSignal(reason string) HealthSignal {
	return HealthSignal{Healthy: false, Reason: reason}
}

// Snapshot is an ordered collection of health signals, one per probe,
// in the same order as the probe set that produced it.
type Snapshot []HealthSignal

// Reasons collects the reasons of all halt entries, in probe order
func (s Snapshot) Reasons() []string {
	reasons := make([]string, 0, len(s))
	for _, sig := range s {
		if !sig.Healthy {
			reasons = append(reasons, sig.Reason)
		}
	}
	return reasons
}

// String renders the snapshot for logs and telemetry metadata
func (s Snapshot) String() string {
	parts := make([]string, 0, len(s))
	for _, sig := range s {
		if sig.Healthy {
			parts = append(parts, "ok")
		} else {
			parts = append(parts, "halt:"+sig.Reason)
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Probe checks one piece of surrounding infrastructure. Probes run under
// the monitor's gather context; implementations should honor cancellation.
type Probe func(ctx context.Context) HealthSignal
