package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerDueSemantics(t *testing.T) {
	scheduler := NewScheduler(NewRegistry(), nil, time.Second, 1)

	def := countingJob("every_minute", 1)
	def.Schedule = "* * * * *"

	now := time.Date(2026, 8, 27, 10, 30, 15, 0, time.UTC)

	// first sighting schedules forward without firing
	due, err := scheduler.due(def, now)
	require.NoError(t, err)
	assert.False(t, due)

	// still before the next minute boundary
	due, err = scheduler.due(def, now.Add(30*time.Second))
	require.NoError(t, err)
	assert.False(t, due)

	// past the boundary
	due, err = scheduler.due(def, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, due)

	// fired once, not again until the following boundary
	due, err = scheduler.due(def, now.Add(time.Minute+time.Second))
	require.NoError(t, err)
	assert.False(t, due)
}

func TestSchedulerDueInvalidSchedule(t *testing.T) {
	scheduler := NewScheduler(NewRegistry(), nil, time.Second, 1)

	def := countingJob("broken", 1)
	def.Schedule = "not cron"

	_, err := scheduler.due(def, time.Now().UTC())
	assert.Error(t, err)
}

func TestSchedulerStartStop(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(countingJob("orders_backfill", 1)))

	scheduler := NewScheduler(registry, New(registry, nil), 10*time.Millisecond, 2)
	scheduler.Start(context.Background())

	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	scheduler.Stop(ctx)
}
