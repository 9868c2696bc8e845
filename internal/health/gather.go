package health

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ArtAhmetaj/adaptive-backfill/internal/model"
)

// DefaultProbeTimeout bounds a full probe gather
const DefaultProbeTimeout = 15 * time.Second

// gather runs every probe concurrently and waits for all of them, subject to
// the bound. On overall timeout or any probe panic the whole snapshot
// fail-closes: every entry becomes a halt, never a partial result. Unknown
// state is treated as unsafe.
func gather(ctx context.Context, probes []model.Probe, bound time.Duration) model.Snapshot {
	if bound <= 0 {
		bound = DefaultProbeTimeout
	}

	gctx, cancel := context.WithTimeout(ctx, bound)
	defer cancel()

	signals := make(model.Snapshot, len(probes))
	faults := make(chan error, len(probes))
	done := make(chan struct{})

	var wg sync.WaitGroup
	for i, probe := range probes {
		wg.Add(1)
		go func(i int, probe model.Probe) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					faults <- fmt.Errorf("probe %d panicked: %v", i, r)
				}
			}()
			signals[i] = probe(gctx)
		}(i, probe)
	}

	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		select {
		case err := <-faults:
			slog.Warn("Probe fault during gather, failing closed",
				"probes", len(probes),
				"error", err,
			)
			return failClosed(len(probes), err.Error())
		default:
			return signals
		}
	case <-gctx.Done():
		slog.Warn("Probe gather timed out, failing closed",
			"probes", len(probes),
			"bound", bound,
		)
		return failClosed(len(probes), "health check timed out")
	}
}

// failClosed builds an all-halt snapshot of the given length
func failClosed(n int, reason string) model.Snapshot {
	snap := make(model.Snapshot, n)
	for i := range snap {
		snap[i] = model.HaltSignal(reason)
	}
	return snap
}
