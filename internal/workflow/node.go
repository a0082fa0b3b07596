package workflow

import "context"

// Decision is the sum-typed control-flow result of one node: either the
// pipeline continues to the next node or it suspends for external
// input. Suspension is anticipated control flow, not an error.
type Decision int

const (
	// Continue advances to the next node in the sequence.
	Continue Decision = iota
	// Suspend pauses the run; the runner persists the state as
	// awaiting approval and returns without failing.
	Suspend
)

// Node is one pipeline stage. Run mutates the shared state in place,
// performs at most one side-effecting external call set, and must be
// safe to re-invoke: each node checks whether its output already exists
// and short-circuits if so.
type Node interface {
	Name() string
	Run(ctx context.Context, st *State) (Decision, error)
}
