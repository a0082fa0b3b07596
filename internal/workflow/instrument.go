package workflow

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// Instrument wraps a node so every invocation attempt produces exactly
// one NodeEvent: before/after state snapshots on success, the error
// message and an empty output snapshot on failure. The wrapped node's
// outcome is never altered; telemetry failures are logged and dropped.
func Instrument(node Node, storage Storage) Node {
	return &instrumentedNode{node: node, storage: storage}
}

type instrumentedNode struct {
	node    Node
	storage Storage
}

func (n *instrumentedNode) Name() string {
	return n.node.Name()
}

func (n *instrumentedNode) Run(ctx context.Context, st *State) (Decision, error) {
	startedAt := time.Now().UTC()
	before := st.Snapshot()
	runID := st.RunID

	decision, err := n.node.Run(ctx, st)
	completedAt := time.Now().UTC()

	// The node may have populated the run ID itself; prefer the
	// post-invocation value. Without one the event cannot be keyed and
	// telemetry is skipped on purpose.
	if st.RunID != uuid.Nil {
		runID = st.RunID
	}
	if runID == uuid.Nil {
		return decision, err
	}

	event := NodeEvent{
		RunID:       runID,
		NodeName:    n.node.Name(),
		StartedAt:   startedAt,
		CompletedAt: completedAt,
	}
	if err != nil {
		event.StateBefore = before
		event.StateAfter = map[string]any{}
		event.Error = err.Error()
	} else {
		event.StateBefore = before
		event.StateAfter = st.Snapshot()
	}

	if recordErr := n.storage.RecordNodeEvent(ctx, event); recordErr != nil {
		log.Printf("run %s: failed to record node event for %s: %v", runID, n.node.Name(), recordErr)
	}
	return decision, err
}
