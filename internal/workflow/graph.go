package workflow

import (
	"context"
	"fmt"
)

// Node names, in execution order.
const (
	NodeIngest           = "ingest"
	NodeExportDoc        = "export_doc"
	NodeMergeJD          = "merge_jd"
	NodeAnalyzeAlignment = "analyze_alignment"
	NodeScoreCV          = "score_cv"
	NodeBuildQueries     = "build_queries"
	NodeFindTutorials    = "find_tutorials"
	NodeMVPProjects      = "mvp_projects"
	NodeCollect          = "collect"
	NodeApprovalEmail    = "approval_email"
	NodeWaitApproval     = "wait_approval"
	NodeApplyEdits       = "apply_edits"
	NodeRecalcScore      = "recalc_score"
)

// Outcome is the sum-typed result of one graph invocation: either the
// pipeline ran to the end or it suspended at the approval gate.
type Outcome struct {
	State     *State
	Suspended bool
}

// Graph is the fixed, statically composed sequence of pipeline nodes.
// There is no branching; the single conditional suspension point is the
// wait_approval gate returning Suspend instead of Continue.
type Graph struct {
	nodes []Node
}

// NewGraph wires the full node sequence against the given dependencies.
// Every node is instrumented so the audit trail covers each attempt.
func NewGraph(deps *Deps) *Graph {
	ordered := []Node{
		&ingestNode{deps: deps},
		&exportDocNode{deps: deps},
		&mergeJDNode{deps: deps},
		&analyzeAlignmentNode{deps: deps},
		&scoreCVNode{deps: deps},
		&buildQueriesNode{deps: deps},
		&findTutorialsNode{deps: deps},
		&mvpProjectsNode{deps: deps},
		&collectNode{deps: deps},
		&approvalEmailNode{deps: deps},
		&waitApprovalNode{},
		&applyEditsNode{deps: deps},
		&recalcScoreNode{deps: deps},
	}

	instrumented := make([]Node, len(ordered))
	for i, node := range ordered {
		instrumented[i] = Instrument(node, deps.Storage)
	}
	return &Graph{nodes: instrumented}
}

// NodeNames returns the node names in execution order.
func (g *Graph) NodeNames() []string {
	names := make([]string, len(g.nodes))
	for i, node := range g.nodes {
		names[i] = node.Name()
	}
	return names
}

// Invoke runs the nodes strictly in sequence, threading the state. A
// node error aborts the invocation; a Suspend decision stops it and
// marks the outcome suspended. No node is skipped except through its
// own idempotency guard.
func (g *Graph) Invoke(ctx context.Context, st *State) (Outcome, error) {
	for _, node := range g.nodes {
		if err := ctx.Err(); err != nil {
			return Outcome{State: st}, fmt.Errorf("graph interrupted before %s: %w", node.Name(), err)
		}
		decision, err := node.Run(ctx, st)
		if err != nil {
			return Outcome{State: st}, &NodeError{Node: node.Name(), Cause: err}
		}
		if decision == Suspend {
			return Outcome{State: st, Suspended: true}, nil
		}
	}
	return Outcome{State: st}, nil
}
