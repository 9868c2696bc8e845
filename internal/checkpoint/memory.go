package checkpoint

import (
	"context"
	"sync"
)

// Memory is an ephemeral in-process store scoped to the process lifetime.
// Single-owner semantics: it is not safe for concurrent use. Jobs that share
// one store across goroutines should use Table instead.
type Memory struct {
	states map[string]any
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		states: make(map[string]any),
	}
}

// Save stores the state under the given name, overwriting any previous value
func (m *Memory) Save(ctx context.Context, name string, state any) error {
	m.states[name] = state
	return nil
}

// Load returns the stored state, or ErrNotFound
func (m *Memory) Load(ctx context.Context, name string) (any, error) {
	state, exists := m.states[name]
	if !exists {
		return nil, ErrNotFound
	}
	return state, nil
}

// Delete removes the stored state, if any
func (m *Memory) Delete(ctx context.Context, name string) error {
	delete(m.states, name)
	return nil
}

// Table is a concurrency-safe variant of Memory. Simultaneous save/load/delete
// against unrelated names never cross-talk and need no external locking.
type Table struct {
	mu     sync.RWMutex
	states map[string]any
}

// NewTable creates an empty concurrent store
func NewTable() *Table {
	return &Table{
		states: make(map[string]any),
	}
}

// Save stores the state under the given name, overwriting any previous value
func (t *Table) Save(ctx context.Context, name string, state any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states[name] = state
	return nil
}

// Load returns the stored state, or ErrNotFound
func (t *Table) Load(ctx context.Context, name string) (any, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	state, exists := t.states[name]
	if !exists {
		return nil, ErrNotFound
	}
	return state, nil
}

// Delete removes the stored state, if any
func (t *Table) Delete(ctx context.Context, name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.states, name)
	return nil
}
