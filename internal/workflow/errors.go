package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrRunNotFound is returned by Resume when no persisted state
	// exists for the requested run.
	ErrRunNotFound = errors.New("run not found")
	// ErrNoJobDescription is returned when neither inline text nor a
	// fetchable URL yields a job description.
	ErrNoJobDescription = errors.New("no job description provided")
)

// NodeError wraps a failure raised inside a named pipeline node so the
// runner can persist which stage broke.
type NodeError struct {
	Node  string
	Cause error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s failed: %v", e.Node, e.Cause)
}

func (e *NodeError) Unwrap() error {
	return e.Cause
}
