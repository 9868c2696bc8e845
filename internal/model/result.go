package model

// Outcome classifies how an operation, or a single batch, finished
type Outcome string

const (
	// OutcomeDone means the handler reported full completion
	OutcomeDone Outcome = "done"
	// OutcomeOK means the handler produced a next state to continue from
	OutcomeOK Outcome = "ok"
	// OutcomeHalt means a degraded probe stopped the operation; not an error
	OutcomeHalt Outcome = "halt"
	// OutcomeError means the handler failed or faulted
	OutcomeError Outcome = "error"
)

// Result is the terminal result of a processor run. State carries the last
// known operation state for ok/halt variants; Signals carries the snapshot
// that triggered a monitor-driven halt; Err is set only for error results.
// Batches counts handler invocations for batch operations.
type Result struct {
	Outcome Outcome
	State   any
	Signals Snapshot
	Err     error
	Batches int
}

// Done reports full completion
func Done() Result {
	return Result{Outcome: OutcomeDone}
}

// Continue reports success with a state to carry forward
func Continue(state any) Result {
	return Result{Outcome: OutcomeOK, State: state}
}

// Halted reports a controlled stop at the given state
func Halted(state any) Result {
	return Result{Outcome: OutcomeHalt, State: state}
}

// Failed reports a handler failure
func Failed(err error) Result {
	return Result{Outcome: OutcomeError, Err: err}
}

// BatchResult is what a batch handler returns for one cycle: done, ok with
// the next state, or an error.
type BatchResult struct {
	Outcome Outcome
	State   any
	Err     error
}

// BatchDone signals that the whole backfill has completed
func BatchDone() BatchResult {
	return BatchResult{Outcome: OutcomeDone}
}

// BatchOK signals a successful batch and the state for the next one
func BatchOK(next any) BatchResult {
	return BatchResult{Outcome: OutcomeOK, State: next}
}

// BatchError signals a failed batch
func BatchError(err error) BatchResult {
	return BatchResult{Outcome: OutcomeError, Err: err}
}
