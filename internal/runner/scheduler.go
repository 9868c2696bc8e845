package runner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler periodically re-invokes registered jobs that carry a cron
// schedule. A scheduled invocation is an ordinary external re-invocation: a
// job halted or failed earlier simply resumes from its retained checkpoint.
type Scheduler struct {
	registry    *Registry
	runner      *Runner
	interval    time.Duration
	concurrency int

	parser    cron.Parser
	mu        sync.Mutex
	nextRuns  map[string]time.Time
	ticker    *time.Ticker
	stopChan  chan struct{}
	wg        sync.WaitGroup
	semaphore chan struct{}
}

// NewScheduler creates a scheduler ticking at the given interval
func NewScheduler(registry *Registry, runner *Runner, interval time.Duration, concurrency int) *Scheduler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Scheduler{
		registry:    registry,
		runner:      runner,
		interval:    interval,
		concurrency: concurrency,
		parser:      cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
		nextRuns:    make(map[string]time.Time),
		stopChan:    make(chan struct{}),
		semaphore:   make(chan struct{}, concurrency),
	}
}

// Start begins the tick loop
func (s *Scheduler) Start(ctx context.Context) {
	slog.Info("Starting scheduler",
		"tick_interval", s.interval,
		"concurrency", s.concurrency,
	)

	s.ticker = time.NewTicker(s.interval)
	s.wg.Add(1)
	go s.run(ctx)
}

// Stop gracefully stops the scheduler, waiting for in-flight runs until the
// context expires
func (s *Scheduler) Stop(ctx context.Context) {
	slog.Info("Stopping scheduler")

	close(s.stopChan)
	if s.ticker != nil {
		s.ticker.Stop()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("All scheduled runs completed")
	case <-ctx.Done():
		slog.Warn("Timeout waiting for scheduled runs to complete")
	}
}

// run is the main scheduler loop
func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	s.tick(ctx)

	for {
		select {
		case <-s.ticker.C:
			s.tick(ctx)
		case <-s.stopChan:
			slog.Info("Scheduler stopped")
			return
		case <-ctx.Done():
			slog.Info("Scheduler context done")
			return
		}
	}
}

// tick launches every job whose schedule is due
func (s *Scheduler) tick(ctx context.Context) {
	now := time.Now().UTC()

	for _, def := range s.registry.List() {
		if def.Schedule == "" {
			continue
		}

		due, err := s.due(def, now)
		if err != nil {
			slog.Error("Failed to evaluate schedule",
				"job", def.Name,
				"schedule", def.Schedule,
				"error", err,
			)
			continue
		}
		if !due {
			continue
		}

		s.wg.Add(1)
		go s.runJob(ctx, def.Name)
	}
}

// due reports whether the job's next scheduled time has passed, and advances
// it when so
func (s *Scheduler) due(def *Definition, now time.Time) (bool, error) {
	schedule, err := s.parser.Parse(def.Schedule)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, seen := s.nextRuns[def.Name]
	if !seen {
		// first sighting: schedule forward, do not fire immediately
		s.nextRuns[def.Name] = schedule.Next(now)
		return false, nil
	}
	if now.Before(next) {
		return false, nil
	}

	s.nextRuns[def.Name] = schedule.Next(now)
	return true, nil
}

// runJob executes one scheduled run with concurrency control
func (s *Scheduler) runJob(ctx context.Context, name string) {
	defer s.wg.Done()

	select {
	case s.semaphore <- struct{}{}:
		defer func() { <-s.semaphore }()
	case <-s.stopChan:
		return
	case <-ctx.Done():
		return
	}

	record, err := s.runner.Run(ctx, name, "")
	if err != nil {
		if errors.Is(err, ErrAlreadyRunning) {
			slog.Debug("Skipping scheduled run, job already running", "job", name)
			return
		}
		slog.Error("Scheduled run failed to start",
			"job", name,
			"error", err,
		)
		return
	}

	slog.Info("Scheduled run finished",
		"job", name,
		"run_id", record.RunID,
		"outcome", record.Outcome,
		"duration_ms", record.DurationMs,
	)
}
