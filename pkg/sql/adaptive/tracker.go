// Copyright 2025 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package adaptive tracks the lifecycle of a physical plan under adaptive
// re-optimization. The execution runtime mutates the tracked state; readers
// obtain consistent snapshots without blocking the writer.
package adaptive

import (
	"sync"
	"sync/atomic"

	"github.com/emberdb/ember/pkg/sql/plan"
	"github.com/emberdb/ember/pkg/util/logutil"
	"github.com/google/uuid"
)

// trackerState is one immutable generation of adaptive state. Updates build
// a new trackerState and publish it with a single pointer swap; a published
// state, including its stageOrder map, is never modified again.
type trackerState struct {
	current    *plan.Node
	initial    *plan.Node
	final      bool
	stageOrder map[int64]int
}

// Tracker owns the mutable lifecycle state of one plan under adaptive
// execution. The execution runtime calls the Record/Finalize methods; any
// number of concurrent readers call PlanSnapshot. Tracker implements
// plan.AdaptiveHandle.
type Tracker struct {
	sessionID uuid.UUID
	root      *plan.Node

	mu    sync.Mutex // serializes writers
	state atomic.Pointer[trackerState]
}

var _ plan.AdaptiveHandle = (*Tracker)(nil)

// NewTracker attaches a physical plan to adaptive execution. The initial
// plan is captured once, before any re-optimization.
func NewTracker(physical *plan.Node) *Tracker {
	t := &Tracker{sessionID: uuid.New()}
	t.state.Store(&trackerState{
		current:    physical,
		initial:    physical,
		stageOrder: map[int64]int{},
	})
	t.root = plan.NewAdaptiveRoot(t)
	logutil.Debug().
		Str("session", t.sessionID.String()).
		Msg("plan attached to adaptive execution")
	return t
}

// Plan returns the adaptive root node under which the current plan renders.
func (t *Tracker) Plan() *plan.Node { return t.root }

// RecordReplan replaces the current plan after a re-optimization. Calls
// after Finalize are dropped: the final plan is frozen.
func (t *Tracker) RecordReplan(newRoot *plan.Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur := t.state.Load()
	if cur.final {
		logutil.Warn().
			Str("session", t.sessionID.String()).
			Msg("replan recorded after finalization; dropped")
		return
	}
	t.state.Store(&trackerState{
		current:    newRoot,
		initial:    cur.initial,
		stageOrder: cur.stageOrder,
	})
	logutil.Debug().
		Str("session", t.sessionID.String()).
		Msg("adaptive replan recorded")
}

// RecordStageSubmission logs that a query stage was submitted for execution.
// The first submission of a stage fixes its zero-based order; resubmissions
// keep the original order.
func (t *Tracker) RecordStageSubmission(stageID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur := t.state.Load()
	if _, ok := cur.stageOrder[stageID]; ok {
		return
	}
	order := make(map[int64]int, len(cur.stageOrder)+1)
	for id, idx := range cur.stageOrder {
		order[id] = idx
	}
	order[stageID] = len(cur.stageOrder)
	t.state.Store(&trackerState{
		current:    cur.current,
		initial:    cur.initial,
		final:      cur.final,
		stageOrder: order,
	})
	logutil.Debug().
		Str("session", t.sessionID.String()).
		Int64("stage", stageID).
		Int("order", order[stageID]).
		Msg("query stage submitted")
}

// Finalize freezes the current plan. Idempotent; the transition is
// monotonic.
func (t *Tracker) Finalize() {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur := t.state.Load()
	if cur.final {
		return
	}
	t.state.Store(&trackerState{
		current:    cur.current,
		initial:    cur.initial,
		final:      true,
		stageOrder: cur.stageOrder,
	})
	logutil.Info().
		Str("session", t.sessionID.String()).
		Msg("adaptive plan finalized")
}

// PlanSnapshot returns one consistent view of the tracked state. The
// returned snapshot shares immutable structure with the tracker and must be
// treated as read-only.
func (t *Tracker) PlanSnapshot() plan.AdaptiveSnapshot {
	st := t.state.Load()
	return plan.AdaptiveSnapshot{
		Current:    st.current,
		Initial:    st.initial,
		Final:      st.final,
		StageOrder: st.stageOrder,
	}
}
