package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := NewRegistry()

	require.NoError(t, registry.Register(countingJob("orders_backfill", 1)))

	err := registry.Register(countingJob("orders_backfill", 1))
	assert.ErrorContains(t, err, "already registered")
}

func TestRegistryValidatesSchedule(t *testing.T) {
	registry := NewRegistry()

	def := countingJob("nightly", 1)
	def.Schedule = "0 3 * * *"
	assert.NoError(t, registry.Register(def))

	bad := countingJob("broken", 1)
	bad.Schedule = "every tuesday"
	assert.ErrorContains(t, registry.Register(bad), "invalid schedule")

	unnamed := countingJob("", 1)
	assert.ErrorContains(t, registry.Register(unnamed), "name is required")
}

func TestRegistryListSortsByName(t *testing.T) {
	registry := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, registry.Register(countingJob(name, 1)))
	}

	defs := registry.List()
	require.Len(t, defs, 3)
	assert.Equal(t, "alpha", defs[0].Name)
	assert.Equal(t, "mid", defs[1].Name)
	assert.Equal(t, "zeta", defs[2].Name)
}

func TestGuard(t *testing.T) {
	guard := NewGuard()

	assert.True(t, guard.Acquire("job_a"))
	assert.False(t, guard.Acquire("job_a"))
	assert.True(t, guard.Running("job_a"))

	// independent names do not contend
	assert.True(t, guard.Acquire("job_b"))

	guard.Release("job_a")
	assert.False(t, guard.Running("job_a"))
	assert.True(t, guard.Acquire("job_a"))
}
