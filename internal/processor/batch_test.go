package processor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArtAhmetaj/adaptive-backfill/internal/checkpoint"
	"github.com/ArtAhmetaj/adaptive-backfill/internal/model"
	"github.com/ArtAhmetaj/adaptive-backfill/internal/telemetry"
)

func batchConfig(handler BatchHandler) *Config {
	return &Config{
		Name:         "orders_backfill",
		Mode:         model.ModeSync,
		Probes:       []model.Probe{okProbe},
		BatchHandler: handler,
	}
}

// countTo returns a handler walking 0 -> 1 -> ... -> limit and then done.
func countTo(limit int) BatchHandler {
	return func(ctx context.Context, state any) model.BatchResult {
		n := 0
		if state != nil {
			n = state.(int)
		}
		if n >= limit {
			return model.BatchDone()
		}
		return model.BatchOK(n + 1)
	}
}

func TestBatchRunsToCompletion(t *testing.T) {
	store := checkpoint.NewMemory()
	var successes []any

	cfg := batchConfig(countTo(2))
	cfg.InitialState = 0
	cfg.Checkpoint = store
	cfg.OnSuccess = func(state any) { successes = append(successes, state) }

	result := NewBatch().Process(context.Background(), cfg)

	assert.Equal(t, model.OutcomeDone, result.Outcome)
	// two productive batches plus the one that reported done
	assert.Equal(t, 3, result.Batches)
	assert.Equal(t, []any{1, 2}, successes)

	_, err := store.Load(context.Background(), "orders_backfill")
	assert.ErrorIs(t, err, checkpoint.ErrNotFound, "checkpoint must be deleted on done")
}

func TestBatchResumesFromCheckpoint(t *testing.T) {
	ctx := context.Background()
	store := checkpoint.NewMemory()
	require.NoError(t, store.Save(ctx, "orders_backfill", 7))

	var seen []int
	cfg := batchConfig(func(ctx context.Context, state any) model.BatchResult {
		n := state.(int)
		seen = append(seen, n)
		if n >= 9 {
			return model.BatchDone()
		}
		return model.BatchOK(n + 1)
	})
	cfg.InitialState = 0
	cfg.Checkpoint = store

	result := NewBatch().Process(ctx, cfg)

	assert.Equal(t, model.OutcomeDone, result.Outcome)
	assert.Equal(t, []int{7, 8, 9}, seen, "run must start from the saved state, not the initial one")
}

func TestBatchHaltRetainsCheckpoint(t *testing.T) {
	ctx := context.Background()
	store := checkpoint.NewMemory()

	var polls int
	flapping := func(ctx context.Context) model.HealthSignal {
		polls++
		if polls >= 2 {
			return model.HaltSignal("disk pressure")
		}
		return model.OK()
	}

	cfg := batchConfig(countTo(100))
	cfg.InitialState = 0
	cfg.Checkpoint = store
	cfg.Probes = []model.Probe{flapping}

	result := NewBatch().Process(ctx, cfg)

	require.Equal(t, model.OutcomeHalt, result.Outcome)
	assert.Equal(t, 2, result.Batches)
	assert.Equal(t, 2, result.State)
	assert.Equal(t, []string{"disk pressure"}, result.Signals.Reasons())

	state, err := store.Load(ctx, "orders_backfill")
	require.NoError(t, err, "halt must retain the checkpoint")
	assert.Equal(t, 2, state)
}

func TestBatchErrorCheckpointsFailedInput(t *testing.T) {
	ctx := context.Background()
	store := checkpoint.NewMemory()
	wantErr := errors.New("duplicate key")

	var errState any
	cfg := batchConfig(func(ctx context.Context, state any) model.BatchResult {
		n := state.(int)
		if n == 2 {
			return model.BatchError(wantErr)
		}
		return model.BatchOK(n + 1)
	})
	cfg.InitialState = 0
	cfg.Checkpoint = store
	cfg.OnError = func(err error, state any) { errState = state }

	result := NewBatch().Process(ctx, cfg)

	require.Equal(t, model.OutcomeError, result.Outcome)
	assert.ErrorIs(t, result.Err, wantErr)
	assert.Equal(t, 3, result.Batches)
	assert.Equal(t, 2, result.State, "result carries the failed batch's input state")
	assert.Equal(t, 2, errState)

	state, err := store.Load(ctx, "orders_backfill")
	require.NoError(t, err)
	assert.Equal(t, 2, state, "retry must resume from the input of the failed batch")
}

func TestBatchPanicRecordsExceptionAndCheckpoint(t *testing.T) {
	ctx := context.Background()
	store := checkpoint.NewMemory()

	cfg := batchConfig(func(ctx context.Context, state any) model.BatchResult {
		n := state.(int)
		if n == 1 {
			panic("index out of range")
		}
		return model.BatchOK(n + 1)
	})
	cfg.InitialState = 0
	cfg.Checkpoint = store

	result := NewBatch().Process(ctx, cfg)

	require.Equal(t, model.OutcomeError, result.Outcome)
	assert.ErrorIs(t, result.Err, ErrPanic)
	assert.Contains(t, result.Err.Error(), "index out of range")

	state, err := store.Load(ctx, "orders_backfill")
	require.NoError(t, err)
	assert.Equal(t, 1, state)
}

func TestBatchTimeoutStopsRun(t *testing.T) {
	cfg := batchConfig(func(ctx context.Context, state any) model.BatchResult {
		time.Sleep(500 * time.Millisecond)
		return model.BatchDone()
	})
	cfg.Timeout = 50 * time.Millisecond

	start := time.Now()
	result := NewBatch().Process(context.Background(), cfg)

	require.Equal(t, model.OutcomeError, result.Outcome)
	assert.ErrorIs(t, result.Err, ErrTimeout)
	assert.Equal(t, 1, result.Batches)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestBatchWithoutCheckpointStore(t *testing.T) {
	cfg := batchConfig(countTo(1))
	cfg.InitialState = 0

	result := NewBatch().Process(context.Background(), cfg)

	assert.Equal(t, model.OutcomeDone, result.Outcome)
	assert.Equal(t, 2, result.Batches)
}

func TestBatchBrokenStoreAbortsRun(t *testing.T) {
	cfg := batchConfig(countTo(1))
	cfg.Checkpoint = failingStore{}

	result := NewBatch().Process(context.Background(), cfg)

	require.Equal(t, model.OutcomeError, result.Outcome)
	assert.Contains(t, result.Err.Error(), "failed to load checkpoint")
	assert.Zero(t, result.Batches)
}

type failingStore struct{}

func (failingStore) Save(ctx context.Context, name string, state any) error {
	return errors.New("store down")
}

func (failingStore) Load(ctx context.Context, name string) (any, error) {
	return nil, errors.New("store down")
}

func (failingStore) Delete(ctx context.Context, name string) error {
	return errors.New("store down")
}

func TestBatchAsyncModeHaltsMidRun(t *testing.T) {
	var batches atomic.Int32
	flapping := func(ctx context.Context) model.HealthSignal {
		if batches.Load() >= 3 {
			return model.HaltSignal("queue depth exceeded")
		}
		return model.OK()
	}

	cfg := batchConfig(func(ctx context.Context, state any) model.BatchResult {
		return model.BatchOK(int(batches.Add(1)))
	})
	cfg.Mode = model.ModeAsync
	cfg.Probes = []model.Probe{flapping}
	cfg.PollInterval = 5 * time.Millisecond
	cfg.Delay = 10 * time.Millisecond

	result := NewBatch().Process(context.Background(), cfg)

	require.Equal(t, model.OutcomeHalt, result.Outcome)
	assert.GreaterOrEqual(t, result.Batches, 3)
	assert.Equal(t, []string{"queue depth exceeded"}, result.Signals.Reasons())
}

func TestBatchEmitsTelemetry(t *testing.T) {
	sink := &recordingSink{}

	cfg := batchConfig(countTo(1))
	cfg.InitialState = 0
	cfg.TelemetryPrefix = []string{"backfill", "orders"}
	cfg.TelemetrySink = sink

	result := NewBatch().Process(context.Background(), cfg)
	require.Equal(t, model.OutcomeDone, result.Outcome)

	paths := sink.paths()
	assert.Contains(t, paths, "backfill.orders.batch.run.start")
	assert.Contains(t, paths, "backfill.orders.batch.start")
	assert.Contains(t, paths, "backfill.orders.batch.success")
	assert.Contains(t, paths, "backfill.orders.batch.done")
	assert.Contains(t, paths, "backfill.orders.batch.run.stop")
}

type recordingSink struct {
	events []telemetry.Event
}

func (s *recordingSink) Emit(ctx context.Context, event telemetry.Event) {
	s.events = append(s.events, event)
}

func (s *recordingSink) paths() []string {
	out := make([]string, 0, len(s.events))
	for _, event := range s.events {
		joined := ""
		for i, part := range event.Path {
			if i > 0 {
				joined += "."
			}
			joined += part
		}
		out = append(out, joined)
	}
	return out
}
