// Copyright 2025 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package explain_test

import (
	"strings"
	"testing"

	"github.com/emberdb/ember/pkg/sql/adaptive"
	"github.com/emberdb/ember/pkg/sql/explain"
	"github.com/emberdb/ember/pkg/sql/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// adaptiveJoinTracker builds an aggregation over a broadcast hash join and
// drives it through a full adaptive run: the broadcast stage materializes
// first, the join's shuffle output is replanned with a coalesced read, then
// the plan finalizes.
func adaptiveJoinTracker(t *testing.T) *adaptive.Tracker {
	t.Helper()

	dimAttrs := []plan.AttrRef{attr(1, "k"), attr(2, "v")}
	factAttrs := []plan.AttrRef{attr(3, "k"), attr(4, "m")}
	joinOut := append(append([]plan.AttrRef{}, dimAttrs...), factAttrs...)
	aggOut := []plan.AttrRef{attr(3, "k"), attr(9, "cnt")}

	dimScan := plan.New(plan.FileScanOp, dimAttrs, plan.MakeMetadata(
		strField(plan.MetaFormat, "parquet"),
		strField(plan.MetaTable, "db.dim"),
	))
	factScan := plan.New(plan.FileScanOp, factAttrs, plan.MakeMetadata(
		strField(plan.MetaFormat, "parquet"),
		strField(plan.MetaTable, "db.fact"),
	))
	joinMD := func() plan.Metadata {
		return plan.MakeMetadata(
			strField(plan.MetaLeftKeys, "k#1"),
			strField(plan.MetaRightKeys, "k#3"),
			strField(plan.MetaJoinType, "Inner"),
			strField(plan.MetaBuildSide, "BuildLeft"),
		)
	}
	aggMD := func() plan.Metadata {
		return plan.MakeMetadata(
			strField(plan.MetaGroupingKeys, "k#3"),
			strField(plan.MetaFunctions, "count(1) AS cnt#9"),
		)
	}

	bexch := plan.New(plan.BroadcastExchangeOp, dimAttrs, plan.MakeMetadata(
		strField(plan.MetaPartitioning, "HashedRelationBroadcastMode(List(k#1))"),
	), dimScan)
	bhj := plan.New(plan.BroadcastHashJoinOp, joinOut, joinMD(), bexch, factScan)
	exch := plan.New(plan.ShuffleExchangeOp, joinOut, plan.MakeMetadata(
		strField(plan.MetaPartitioning, "hashpartitioning(k#3, 200)"),
	), bhj)
	agg := plan.New(plan.HashAggregateOp, aggOut, aggMD(), exch)

	tr := adaptive.NewTracker(agg)

	// Runtime: the broadcast side materializes into stage 0.
	tr.RecordStageSubmission(0)
	bstage := plan.New(plan.BroadcastQueryStageOp, dimAttrs, plan.MakeMetadata(
		plan.Field{Key: plan.MetaStageID, Value: plan.IntValue(0)},
	), bexch)
	bhj2 := plan.New(plan.BroadcastHashJoinOp, joinOut, joinMD(), bstage, factScan)
	exch2 := plan.New(plan.ShuffleExchangeOp, joinOut, plan.MakeMetadata(
		strField(plan.MetaPartitioning, "hashpartitioning(k#3, 200)"),
	), bhj2)
	sstage := plan.New(plan.ShuffleQueryStageOp, joinOut, plan.MakeMetadata(
		plan.Field{Key: plan.MetaStageID, Value: plan.IntValue(1)},
	), exch2)
	sread := plan.New(plan.ShuffleReadOp, joinOut, plan.MakeMetadata(
		strField(plan.MetaStrategy, "coalesced"),
	), sstage)
	agg2 := plan.New(plan.HashAggregateOp, aggOut, aggMD(), sread)

	tr.RecordStageSubmission(1)
	tr.RecordReplan(agg2)
	tr.Finalize()
	return tr
}

func TestAdaptiveRenderBeforeFinalize(t *testing.T) {
	agg := plan.New(plan.HashAggregateOp, []plan.AttrRef{attr(1, "k")}, plan.MakeMetadata(
		strField(plan.MetaGroupingKeys, "k#1"),
	), plan.New(plan.LocalTableScanOp, []plan.AttrRef{attr(1, "k")}, plan.MakeMetadata()))
	tr := adaptive.NewTracker(agg)

	out, err := explain.RenderAdaptivePlan(tr.Plan(), "simple", explain.Context{})
	require.NoError(t, err)
	assert.Contains(t, out, "AdaptiveSparkPlan isFinalPlan=false")
	assert.Contains(t, out, "+- HashAggregate")
	assert.NotContains(t, out, "Final Plan")
	assert.NotContains(t, out, "Initial Plan")

	out, err = explain.RenderAdaptivePlan(tr.Plan(), "formatted", explain.Context{})
	require.NoError(t, err)
	assert.Contains(t, out, "AdaptiveSparkPlan")
	assert.Contains(t, out, "isFinalPlan=false")
	assert.NotContains(t, out, "Final Plan")
	assert.NotContains(t, out, "Initial Plan")
}

func TestAdaptiveRenderAfterFinalize(t *testing.T) {
	tr := adaptiveJoinTracker(t)

	out, err := explain.RenderAdaptivePlan(tr.Plan(), "simple", explain.Context{})
	require.NoError(t, err)
	assert.Contains(t, out, "AdaptiveSparkPlan isFinalPlan=true")
	assert.Equal(t, 1, strings.Count(out, "== Final Plan =="))
	assert.Equal(t, 1, strings.Count(out, "== Initial Plan =="))
	// Stage lines carry the runtime submission order.
	assert.Contains(t, out, "BroadcastQueryStage 0")
	assert.Contains(t, out, "ShuffleQueryStage 1")
	assert.Contains(t, out, "AQEShuffleRead coalesced")
	// The initial plan predates stage materialization.
	assert.NotContains(t, out, "isFinalPlan=false")
}

func TestShuffleReadStrategies(t *testing.T) {
	for _, strategy := range []string{"coalesced", "local", "none"} {
		t.Run(strategy, func(t *testing.T) {
			scan := plan.New(plan.LocalTableScanOp, []plan.AttrRef{attr(1, "a")}, plan.MakeMetadata())
			sread := plan.New(plan.ShuffleReadOp, scan.OutputAttrs(), plan.MakeMetadata(
				strField(plan.MetaStrategy, strategy),
			), scan)

			out, err := explain.Render(&plan.QueryExecution{Physical: sread}, "simple", explain.Context{})
			require.NoError(t, err)
			assert.Contains(t, out, "AQEShuffleRead "+strategy)

			out, err = explain.Render(&plan.QueryExecution{Physical: sread}, "formatted", explain.Context{})
			require.NoError(t, err)
			assert.Contains(t, out, "Arguments: "+strategy)
		})
	}
}

func TestAdaptiveFormattedAfterFinalize(t *testing.T) {
	tr := adaptiveJoinTracker(t)

	out, err := explain.RenderAdaptivePlan(tr.Plan(), "formatted", explain.Context{})
	require.NoError(t, err)
	assert.Contains(t, out, "AdaptiveSparkPlan isFinalPlan=true")
	assert.Equal(t, 1, strings.Count(out, "== Final Plan =="))
	assert.Equal(t, 1, strings.Count(out, "== Initial Plan =="))

	// Final plan ids follow bottom-up order: the broadcast stage was planned
	// beneath the join, so it numbers below the join's shuffle stage.
	assert.Contains(t, out, "(3) BroadcastQueryStage")
	assert.Contains(t, out, "(7) ShuffleQueryStage")
	assert.Contains(t, out, "(8) AQEShuffleRead")
	assert.Contains(t, out, "(9) HashAggregate")

	// Stage detail blocks report the submission order.
	assert.Contains(t, out, "Arguments: 0")
	assert.Contains(t, out, "Arguments: 1")
	assert.Contains(t, out, "Arguments: coalesced")
}
