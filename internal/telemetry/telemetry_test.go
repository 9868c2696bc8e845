package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	events []Event
}

func (s *captureSink) Emit(ctx context.Context, event Event) {
	s.events = append(s.events, event)
}

func TestEmitterPrependsPrefix(t *testing.T) {
	sink := &captureSink{}
	emitter := New([]string{"backfill", "orders"}, sink)

	emitter.Emit(context.Background(), []string{"batch", "success"},
		DurationMs(1500*time.Millisecond),
		map[string]any{"batch": 3},
	)

	require.Len(t, sink.events, 1)
	event := sink.events[0]
	assert.Equal(t, []string{"backfill", "orders", "batch", "success"}, event.Path)
	assert.Equal(t, int64(1500), event.Measurements["duration_ms"])
	assert.Equal(t, 3, event.Metadata["batch"])
}

func TestEmitterWithoutPrefixIsNoop(t *testing.T) {
	sink := &captureSink{}

	emitter := New(nil, sink)
	require.Nil(t, emitter)

	// a nil emitter drops emissions instead of panicking
	emitter.Emit(context.Background(), []string{"batch", "start"}, nil, nil)
	assert.Empty(t, sink.events)
}

func TestEmitterWithoutSinkIsNoop(t *testing.T) {
	emitter := New([]string{"backfill"}, nil)
	require.Nil(t, emitter)

	emitter.Emit(context.Background(), []string{"start"}, nil, nil)
}
