package model

import (
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RunRecord is a persisted record of one job run
type RunRecord struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RunID         string             `json:"run_id" bson:"run_id"`
	Job           string             `json:"job" bson:"job"`
	CorrelationID string             `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	Outcome       Outcome            `json:"outcome" bson:"outcome"`
	Batches       int                `json:"batches" bson:"batches"`
	Resumed       bool               `json:"resumed" bson:"resumed"`
	HaltReasons   []string           `json:"halt_reasons,omitempty" bson:"halt_reasons,omitempty"`
	Error         string             `json:"error,omitempty" bson:"error,omitempty"`
	StartedAt     time.Time          `json:"started_at" bson:"started_at"`
	FinishedAt    time.Time          `json:"finished_at" bson:"finished_at"`
	DurationMs    int64              `json:"duration_ms" bson:"duration_ms"`
}

// RunStatus represents the status of an asynchronously submitted run
type RunStatus struct {
	RunID         string  `json:"run_id"`
	Job           string  `json:"job"`
	Status        string  `json:"status"` // "queued", "running", "finished"
	CorrelationID string  `json:"correlation_id,omitempty"`
	Outcome       Outcome `json:"outcome,omitempty"`
	Error         string  `json:"error,omitempty"`
}

// RunStatusStore is an in-memory store for async run statuses
type RunStatusStore struct {
	mu   sync.RWMutex
	runs map[string]*RunStatus
}

// NewRunStatusStore creates a new run status store
func NewRunStatusStore() *RunStatusStore {
	return &RunStatusStore{
		runs: make(map[string]*RunStatus),
	}
}

// Set stores a run status
func (s *RunStatusStore) Set(runID string, status *RunStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[runID] = status
}

// Get retrieves a run status
func (s *RunStatusStore) Get(runID string) (*RunStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, exists := s.runs[runID]
	return status, exists
}

// Delete removes a run status
func (s *RunStatusStore) Delete(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, runID)
}
