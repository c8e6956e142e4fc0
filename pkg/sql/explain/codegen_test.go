// Copyright 2025 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package explain_test

import (
	"testing"

	"github.com/emberdb/ember/pkg/sql/explain"
	"github.com/emberdb/ember/pkg/sql/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGen serves canned generated source for an explicit set of subtree
// roots.
type stubGen map[*plan.Node]string

func (g stubGen) GeneratedSource(root *plan.Node) (string, int64, bool) {
	src, ok := g[root]
	return src, int64(len(src)), ok
}

// codegenFixture builds a plan with three fusible regions: the projection
// and filter above an exchange, an aggregation pipeline inside the filter's
// subquery, and the aggregation below the exchange.
func codegenFixture() (root, proj, agg *plan.Node) {
	subScan := plan.New(plan.FileScanOp, []plan.AttrRef{attr(7, "m")}, plan.MakeMetadata(
		strField(plan.MetaFormat, "parquet"),
		strField(plan.MetaTable, "db.u"),
	))
	subAgg := plan.New(plan.HashAggregateOp, []plan.AttrRef{attr(8, "max(m)")}, plan.MakeMetadata(
		strField(plan.MetaFunctions, "max(m#7) AS max(m)#8"),
	), subScan)

	scan := plan.New(plan.LocalTableScanOp, []plan.AttrRef{attr(1, "a")}, plan.MakeMetadata())
	agg = plan.New(plan.HashAggregateOp, []plan.AttrRef{attr(1, "a"), attr(2, "sum")}, plan.MakeMetadata(
		strField(plan.MetaGroupingKeys, "a#1"),
	), scan)
	exch := plan.New(plan.ShuffleExchangeOp, agg.OutputAttrs(), plan.MakeMetadata(
		strField(plan.MetaPartitioning, "hashpartitioning(a#1, 200)"),
	), agg)
	filter := plan.New(plan.FilterExecOp, agg.OutputAttrs(), plan.MakeMetadata(
		plan.Field{Key: plan.MetaCondition, Value: plan.SubqueryValue{
			ExprText: "(sum#2 < scalar-subquery#8)",
			Root:     subAgg,
		}},
	), exch)
	proj = plan.New(plan.ProjectExecOp, []plan.AttrRef{attr(1, "a")}, plan.MakeMetadata(
		strField(plan.MetaProjections, "a#1"),
	), filter)
	return proj, proj, agg
}

func TestSummarizeCodegen(t *testing.T) {
	root, proj, agg := codegenFixture()
	gen := stubGen{
		proj: "/* generated: project+filter */",
		agg:  "/* generated: partial aggregate */",
	}

	count, text := explain.SummarizeCodegen(root, gen)
	assert.Equal(t, 3, count)
	assert.Contains(t, text, "Found 3 WholeStageCodegen subtrees.")
	assert.Contains(t, text, "== Subtree 1 / 3 (maxMethodCodeSize:31) ==")
	assert.Contains(t, text, "/* generated: project+filter */")
	// The subquery pipeline is its own subtree; the generator has no source
	// for it, so its header carries no size.
	assert.Contains(t, text, "== Subtree 2 / 3 ==")
	assert.NotContains(t, text, "== Subtree 2 / 3 (")
	assert.Contains(t, text, "== Subtree 3 / 3 (maxMethodCodeSize:34) ==")
	assert.Contains(t, text, "/* generated: partial aggregate */")
}

func TestSummarizeCodegenNoRegions(t *testing.T) {
	scan := plan.New(plan.LocalTableScanOp, []plan.AttrRef{attr(1, "a")}, plan.MakeMetadata())
	exch := plan.New(plan.ShuffleExchangeOp, scan.OutputAttrs(), plan.MakeMetadata(), scan)

	count, text := explain.SummarizeCodegen(exch, nil)
	assert.Equal(t, 0, count)
	assert.Equal(t, "Found 0 WholeStageCodegen subtrees.\n", text)
}

func TestCodegenMode(t *testing.T) {
	root, proj, _ := codegenFixture()
	gen := stubGen{proj: "// pipeline"}

	out, err := explain.Render(&plan.QueryExecution{Physical: root}, "codegen", explain.Context{Codegen: gen})
	require.NoError(t, err)
	assert.Contains(t, out, "== Physical Plan ==")
	assert.Contains(t, out, "Found 3 WholeStageCodegen subtrees.")
	assert.Contains(t, out, "== Subtree 1 / 3 (maxMethodCodeSize:11) ==")
	assert.Contains(t, out, "// pipeline")
	assert.Contains(t, out, "== Subtree 3 / 3 ==")
}

func TestCodegenModeWithoutGenerator(t *testing.T) {
	root, _, _ := codegenFixture()
	out, err := explain.Render(&plan.QueryExecution{Physical: root}, "codegen", explain.Context{})
	require.NoError(t, err)
	assert.Contains(t, out, "Found 3 WholeStageCodegen subtrees.")
	assert.Contains(t, out, "== Subtree 1 / 3 ==")
	assert.Contains(t, out, "== Subtree 2 / 3 ==")
	assert.Contains(t, out, "== Subtree 3 / 3 ==")
}
