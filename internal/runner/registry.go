// Package runner registers backfill jobs and drives their execution:
// synchronous runs, async submission and cron-based re-invocation.
package runner

import (
	"fmt"
	"sort"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/ArtAhmetaj/adaptive-backfill/internal/processor"
)

// Definition registers one backfill job: a processor config plus runner
// options. Registration is plain struct construction; there is no
// declarative syntax layer.
type Definition struct {
	Name string
	// Schedule is an optional cron expression (minute granularity). A
	// scheduled re-invocation resumes from the retained checkpoint like any
	// other external re-invocation.
	Schedule string
	// Single routes the job through the single-operation processor instead
	// of the batch processor.
	Single bool

	Config processor.Config
}

// Validate validates the definition
func (d *Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("job name is required")
	}
	if d.Schedule != "" {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		if _, err := parser.Parse(d.Schedule); err != nil {
			return fmt.Errorf("invalid schedule for job %s: %w", d.Name, err)
		}
	}
	return nil
}

// Registry holds the registered job definitions
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*Definition
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		jobs: make(map[string]*Definition),
	}
}

// Register adds a job definition. Names must be unique.
func (r *Registry) Register(def *Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[def.Name]; exists {
		return fmt.Errorf("job %s is already registered", def.Name)
	}
	r.jobs[def.Name] = def
	return nil
}

// Get returns a job definition by name
func (r *Registry) Get(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, exists := r.jobs[name]
	return def, exists
}

// List returns all definitions sorted by name
func (r *Registry) List() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Definition, 0, len(r.jobs))
	for _, def := range r.jobs {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
