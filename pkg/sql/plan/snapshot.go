// Copyright 2025 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package plan

// QueryExecution bundles the plan snapshots of one query. Each root is
// immutable once set by the upstream planning stages. Physical may be an
// AdaptivePlanOp root, in which case the executed tree is reached through
// its AdaptiveHandle.
type QueryExecution struct {
	Parsed    *Node
	Analyzed  *Node
	Optimized *Node
	Physical  *Node
}

// AdaptiveSnapshot is one consistent view of a plan under adaptive
// execution. All fields describe the same instant: Final is never true while
// Current predates finalization. Keeping StageOrder in step with the stages
// Current contains is the execution runtime's obligation; the snapshot only
// guarantees the fields come from a single published update.
type AdaptiveSnapshot struct {
	// Current is the plan as of the snapshot, replaced wholesale on each
	// re-optimization.
	Current *Node
	// Initial is the plan captured at attach time, before any
	// re-optimization.
	Initial *Node
	// Final is true once the plan is frozen. Monotonic.
	Final bool
	// StageOrder maps a query-stage id to the zero-based order in which that
	// stage was submitted for execution.
	StageOrder map[int64]int
}

// SubmissionIndex returns the submission order of a stage, if it was
// submitted before the snapshot was taken.
func (s AdaptiveSnapshot) SubmissionIndex(stageID int64) (int, bool) {
	idx, ok := s.StageOrder[stageID]
	return idx, ok
}

// AdaptiveHandle publishes consistent snapshots of a plan being mutated by
// the adaptive execution runtime. Implementations must make PlanSnapshot an
// atomic read: a returned snapshot never mixes state from two updates.
type AdaptiveHandle interface {
	PlanSnapshot() AdaptiveSnapshot
}

// NewAdaptiveRoot wraps an adaptive handle in the root operator under which
// the current plan renders. The node carries no static children; the tree
// beneath it is whatever the handle's snapshot holds at render time.
func NewAdaptiveRoot(handle AdaptiveHandle) *Node {
	return &Node{op: AdaptivePlanOp, adaptive: handle}
}
