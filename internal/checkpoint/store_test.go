package checkpoint

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	require.NoError(t, store.Save(ctx, "orders_backfill", 42))

	state, err := store.Load(ctx, "orders_backfill")
	require.NoError(t, err)
	assert.Equal(t, 42, state)

	// overwrite
	require.NoError(t, store.Save(ctx, "orders_backfill", 43))
	state, err = store.Load(ctx, "orders_backfill")
	require.NoError(t, err)
	assert.Equal(t, 43, state)
}

func TestMemoryDeleteThenLoad(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	require.NoError(t, store.Save(ctx, "orders_backfill", "page-9"))
	require.NoError(t, store.Delete(ctx, "orders_backfill"))

	_, err := store.Load(ctx, "orders_backfill")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryLoadMissing(t *testing.T) {
	store := NewMemory()

	_, err := store.Load(context.Background(), "never_saved")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDeleteMissingIsNoop(t *testing.T) {
	store := NewMemory()
	assert.NoError(t, store.Delete(context.Background(), "never_saved"))
}

func TestTableRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewTable()

	require.NoError(t, store.Save(ctx, "job_a", map[string]int{"offset": 100}))

	state, err := store.Load(ctx, "job_a")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"offset": 100}, state)

	require.NoError(t, store.Delete(ctx, "job_a"))
	_, err = store.Load(ctx, "job_a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTableUnrelatedNamesDoNotCrossTalk(t *testing.T) {
	ctx := context.Background()
	store := NewTable()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("job_%d", i)
			for n := 0; n < 50; n++ {
				_ = store.Save(ctx, name, n)
				state, err := store.Load(ctx, name)
				if err == nil {
					// only this goroutine writes the name
					if state.(int) != n {
						t.Errorf("job %s: read %v after writing %d", name, state, n)
						return
					}
				}
				if n%10 == 9 {
					_ = store.Delete(ctx, name)
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestNoopSemantics(t *testing.T) {
	ctx := context.Background()
	store := Noop{}

	assert.NoError(t, store.Save(ctx, "anything", 1))
	assert.NoError(t, store.Delete(ctx, "anything"))

	_, err := store.Load(ctx, "anything")
	assert.ErrorIs(t, err, ErrNotFound)
}
