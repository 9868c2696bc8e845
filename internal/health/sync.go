package health

import (
	"context"
	"time"

	"github.com/ArtAhmetaj/adaptive-backfill/internal/model"
)

// SyncMonitor gathers probe signals on demand, blocking the caller until
// every probe finishes or the bound expires.
type SyncMonitor struct {
	timeout time.Duration
}

// NewSyncMonitor creates a sync monitor with the given gather bound.
// A non-positive timeout falls back to DefaultProbeTimeout.
func NewSyncMonitor(timeout time.Duration) *SyncMonitor {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &SyncMonitor{timeout: timeout}
}

// GetState fans out all probes concurrently and returns one signal per probe,
// in probe order. Fail-closes on timeout or probe fault.
func (m *SyncMonitor) GetState(ctx context.Context, probes []model.Probe) model.Snapshot {
	return gather(ctx, probes, m.timeout)
}
