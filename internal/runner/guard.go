package runner

import (
	"sync"
)

// Guard prevents two concurrent runs of the same named job inside this
// process. Concurrent runs of the same name from different processes are out
// of the guarantee surface (last checkpoint writer wins), so there is no
// distributed lock behind this.
type Guard struct {
	mu     sync.Mutex
	active map[string]bool
}

// NewGuard creates an empty guard
func NewGuard() *Guard {
	return &Guard{
		active: make(map[string]bool),
	}
}

// Acquire marks the job as running; false when it already is
func (g *Guard) Acquire(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active[name] {
		return false
	}
	g.active[name] = true
	return true
}

// Release marks the job as idle again
func (g *Guard) Release(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, name)
}

// Running reports whether the job is currently running
func (g *Guard) Running(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active[name]
}
