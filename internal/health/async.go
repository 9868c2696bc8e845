package health

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ArtAhmetaj/adaptive-backfill/internal/model"
)

// DefaultPollInterval is the time between background probe polls
const DefaultPollInterval = 10 * time.Second

// AsyncMonitor polls probes on a timer from a background goroutine that
// exclusively owns the cached snapshot. Readers receive the cached snapshot
// through a request/response exchange with the worker; they never wait for a
// fresh poll, so staleness is bounded by the poll interval plus probe latency.
// The cache is never shared as mutable state, which is what makes the monitor
// lock-free.
//
// Owners must call Stop to release the worker goroutine.
type AsyncMonitor struct {
	probes   []model.Probe
	interval time.Duration
	timeout  time.Duration

	requests chan chan model.Snapshot
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewAsyncMonitor creates an async monitor over the given probe set.
// Non-positive interval/timeout fall back to the package defaults.
func NewAsyncMonitor(probes []model.Probe, interval, timeout time.Duration) *AsyncMonitor {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &AsyncMonitor{
		probes:   probes,
		interval: interval,
		timeout:  timeout,
		requests: make(chan chan model.Snapshot),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the poll loop. The first poll runs immediately so the cache
// is populated before the first timer tick.
func (m *AsyncMonitor) Start(ctx context.Context) {
	go m.run(ctx)
}

// GetState returns the current cached snapshot without triggering a poll.
// After Stop, or once the start context is cancelled, it returns a
// fail-closed snapshot.
func (m *AsyncMonitor) GetState() model.Snapshot {
	reply := make(chan model.Snapshot, 1)
	select {
	case m.requests <- reply:
		return <-reply
	case <-m.done:
		return failClosed(len(m.probes), "health monitor stopped")
	}
}

// Stop terminates the poll loop and waits for the worker to exit.
// Safe to call more than once.
func (m *AsyncMonitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	<-m.done
}

// run is the worker loop. Only this goroutine ever writes the cache.
func (m *AsyncMonitor) run(ctx context.Context) {
	defer close(m.done)

	slog.Debug("Async health monitor started",
		"probes", len(m.probes),
		"poll_interval", m.interval,
	)

	cache := gather(ctx, m.probes, m.timeout)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cache = gather(ctx, m.probes, m.timeout)
		case reply := <-m.requests:
			reply <- cache
		case <-m.stop:
			slog.Debug("Async health monitor stopped")
			return
		case <-ctx.Done():
			slog.Debug("Async health monitor context done")
			return
		}
	}
}
