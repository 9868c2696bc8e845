// Package checkpoint persists batch state between runs so an interrupted
// backfill can resume where it left off.
package checkpoint

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when no checkpoint exists for a name
var ErrNotFound = errors.New("checkpoint not found")

// Store persists batch state keyed by job name. Implementations must keep
// unrelated names fully independent. Concurrent runs against the same name
// are outside the guarantee surface: last writer wins.
type Store interface {
	Save(ctx context.Context, name string, state any) error
	Load(ctx context.Context, name string) (any, error)
	Delete(ctx context.Context, name string) error
}

// Noop implements the unset-checkpoint configuration: saves and deletes
// trivially succeed, loads always report not found. Checkpointing is strictly
// opt-in per job.
type Noop struct{}

// Save discards the state
func (Noop) Save(ctx context.Context, name string, state any) error {
	return nil
}

// Load always reports not found
func (Noop) Load(ctx context.Context, name string) (any, error) {
	return nil, ErrNotFound
}

// Delete is a no-op
func (Noop) Delete(ctx context.Context, name string) error {
	return nil
}
