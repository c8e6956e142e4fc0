// Copyright 2025 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package explain renders query plan snapshots as deterministic text. A
// render call is a pure function of the snapshot contents, the mode, and
// the collaborators supplied through Context; it never mutates the plan.
package explain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"

	"github.com/emberdb/ember/pkg/sql/plan"
)

// Render resolves the mode name and renders the query's plan snapshots.
// Unrecognized mode names fail with an error marked ErrUnknownMode; nothing
// else about the input can fail the call.
func Render(qe *plan.QueryExecution, modeName string, ctx Context) (string, error) {
	mode, err := ParseMode(modeName)
	if err != nil {
		return "", err
	}
	return RenderMode(qe, mode, ctx)
}

// RenderAdaptivePlan renders a plan under adaptive execution as of call
// time. The root must be the node returned by the tracker's Plan method.
func RenderAdaptivePlan(root *plan.Node, modeName string, ctx Context) (string, error) {
	return Render(&plan.QueryExecution{Physical: root}, modeName, ctx)
}

// RenderMode is Render with an already-resolved mode.
func RenderMode(qe *plan.QueryExecution, mode Mode, ctx Context) (string, error) {
	e := emitter{
		ob:  NewOutputBuilder(),
		ctx: ctx,
		red: ctx.Redactor.Value,
	}
	// Capture one consistent adaptive view for the whole call. Everything
	// below reads e.snap, never the live handle.
	if qe.Physical != nil {
		if h := qe.Physical.AdaptiveHandle(); h != nil {
			e.snap = h.PlanSnapshot()
			e.hasSnap = true
		}
	}

	switch mode {
	case ModeSimple:
		e.emitPhysical(qe.Physical)

	case ModeExtended:
		e.ob.AddSectionHeader("Parsed Logical Plan")
		e.emitTree(qe.Parsed)
		e.ob.AddBlank()
		e.ob.AddSectionHeader("Analyzed Logical Plan")
		e.emitTree(qe.Analyzed)
		e.ob.AddBlank()
		e.ob.AddSectionHeader("Optimized Logical Plan")
		e.emitTree(qe.Optimized)
		e.ob.AddBlank()
		e.emitPhysical(qe.Physical)

	case ModeCost:
		e.withStats = true
		e.emitPhysical(qe.Physical)

	case ModeCodegen:
		e.emitPhysical(qe.Physical)
		if qe.Physical != nil {
			e.ob.AddBlank()
			regions := discoverCodegenRegions(qe.Physical, e.planChildren)
			emitCodegenSummary(e.ob, regions, e.ctx.Codegen)
		}

	case ModeFormatted:
		e.emitFormatted(qe.Physical)

	default:
		return "", errors.AssertionFailedf("unhandled explain mode %d", mode)
	}
	return e.ob.BuildString(), nil
}

// emitter holds the per-call rendering state: the output under
// construction, the collaborators, and the adaptive view captured at call
// entry.
type emitter struct {
	ob        *OutputBuilder
	ctx       Context
	red       plan.OptionRedactor
	withStats bool
	snap      plan.AdaptiveSnapshot
	hasSnap   bool
}

// planChildren resolves a node's children for this pass. An adaptive root
// has no static children; its subtree is the captured snapshot's current
// plan.
func (e *emitter) planChildren(n *plan.Node) []*plan.Node {
	if n.Op() == plan.AdaptivePlanOp && e.hasSnap && e.snap.Current != nil {
		return []*plan.Node{e.snap.Current}
	}
	return n.Children()
}

func (e *emitter) emitPhysical(root *plan.Node) {
	e.ob.AddSectionHeader("Physical Plan")
	e.emitTree(root)
}

// emitTree renders root as an indented tree in the simple-string grammar.
// A finalized adaptive root expands into Final Plan and Initial Plan
// branches; before finalization only the current tree is shown, with no
// section markers.
func (e *emitter) emitTree(root *plan.Node) {
	if root == nil {
		return
	}
	var walk func(n *plan.Node)
	walk = func(n *plan.Node) {
		if n.Op() == plan.AdaptivePlanOp && e.hasSnap && e.snap.Final {
			e.ob.EnterNode("AdaptiveSparkPlan isFinalPlan=true")
			e.ob.EnterNode(sectionBranch("Final Plan", e.subtreeString(e.snap.Current)))
			e.ob.LeaveNode()
			e.ob.EnterNode(sectionBranch("Initial Plan", e.subtreeString(e.snap.Initial)))
			e.ob.LeaveNode()
			e.ob.LeaveNode()
			return
		}
		e.ob.EnterNode(e.nodeLine(n))
		for _, c := range e.planChildren(n) {
			walk(c)
		}
		e.ob.LeaveNode()
	}
	walk(root)
}

// sectionBranch builds the text of a section marker branch with the tree
// it introduces indented beneath it.
func sectionBranch(name, tree string) string {
	text := "== " + name + " =="
	if tree != "" {
		text += "\n" + tree
	}
	return text
}

// subtreeString renders a tree standalone, for embedding as a multi-line
// branch under a section marker.
func (e *emitter) subtreeString(root *plan.Node) string {
	sub := emitter{
		ob:        NewOutputBuilder(),
		ctx:       e.ctx,
		red:       e.red,
		withStats: e.withStats,
		snap:      e.snap,
		hasSnap:   e.hasSnap,
	}
	sub.emitTree(root)
	return strings.TrimRight(sub.ob.BuildString(), "\n")
}

// nodeLine builds one tree line: display name, argument list, and in cost
// mode the size estimate when the statistics collaborator has one.
func (e *emitter) nodeLine(n *plan.Node) string {
	line := n.DisplayName()
	if args := e.nodeArgs(n); len(args) > 0 {
		line += " " + strings.Join(args, ", ")
	}
	if e.withStats && e.ctx.Stats != nil {
		if sz, ok := e.ctx.Stats.SizeInBytes(n); ok {
			line += ", Statistics(sizeInBytes=" + humanize.IBytes(sz) + ")"
		}
	}
	return line
}

// nodeArgs returns the argument list for one tree line. Query stages and
// the adaptive root take their arguments from the captured adaptive view;
// everything else answers for itself.
func (e *emitter) nodeArgs(n *plan.Node) []string {
	switch n.Op() {
	case plan.AdaptivePlanOp:
		final := e.hasSnap && e.snap.Final
		return []string{fmt.Sprintf("isFinalPlan=%t", final)}

	case plan.ShuffleQueryStageOp, plan.BroadcastQueryStageOp:
		if e.hasSnap {
			if id, ok := n.Metadata().Int(plan.MetaStageID); ok {
				if idx, ok := e.snap.SubmissionIndex(id); ok {
					return []string{strconv.Itoa(idx)}
				}
			}
		}
		return nil
	}
	return n.SimpleStringArgs(e.red)
}

// emitFormatted renders the formatted mode: numbered compact tree, detail
// blocks in ascending id order, and a trailing subquery section when any
// embedded plan was discovered. A finalized adaptive plan renders its final
// and initial trees as independently numbered sections.
func (e *emitter) emitFormatted(root *plan.Node) {
	e.ob.AddSectionHeader("Physical Plan")
	if root == nil {
		return
	}
	if root.Op() == plan.AdaptivePlanOp && e.hasSnap && e.snap.Final {
		e.ob.AddLine("AdaptiveSparkPlan isFinalPlan=true")
		e.ob.AddSectionHeader("Final Plan")
		e.emitFormattedBody(e.snap.Current)
		e.ob.AddBlank()
		e.ob.AddSectionHeader("Initial Plan")
		e.emitFormattedBody(e.snap.Initial)
		return
	}
	e.emitFormattedBody(root)
}

func (e *emitter) emitFormattedBody(root *plan.Node) {
	if root == nil {
		return
	}
	nb := newNumbering()
	nb.assign(root, e.planChildren)
	reg := &subqueryRegistry{}
	reg.discover(root, nb, e.planChildren)
	regions := discoverCodegenRegions(root, e.planChildren)

	var emitNumberedTree func(n *plan.Node)
	emitNumberedTree = func(n *plan.Node) {
		e.ob.EnterNode(e.numberedLine(n, nb, regions))
		for _, c := range e.planChildren(n) {
			emitNumberedTree(c)
		}
		e.ob.LeaveNode()
	}

	emitNumberedTree(root)
	e.ob.AddBlank()
	e.emitDetailBlocks(root, nb, regions)

	if len(reg.entries) > 0 {
		e.ob.AddBlank()
		e.ob.AddLine("===== Subqueries =====")
		for _, s := range reg.entries {
			e.ob.AddBlank()
			e.ob.AddLine(fmt.Sprintf(
				"Subquery:%d Hosting operator id = %d Hosting Expression = %s",
				s.Seq, s.HostID, s.HostExpr))
			emitNumberedTree(s.Root)
			e.ob.AddBlank()
			e.emitDetailBlocks(s.Root, nb, regions)
		}
	}
}

func (e *emitter) numberedLine(n *plan.Node, nb *numbering, regions codegenRegions) string {
	line := fmt.Sprintf("(%d) %s", nb.id(n), n.DisplayName())
	if m, ok := regions.regionOf[n]; ok {
		line += fmt.Sprintf(" [codegen id : %d]", m)
	}
	return line
}

// emitDetailBlocks prints one detail block per operator of the subtree
// rooted at root, in ascending operator id order. Embedded subquery plans
// are not included; they get their own blocks in the subquery section.
func (e *emitter) emitDetailBlocks(root *plan.Node, nb *numbering, regions codegenRegions) {
	var nodes []*plan.Node
	var collect func(n *plan.Node)
	collect = func(n *plan.Node) {
		nodes = append(nodes, n)
		for _, c := range e.planChildren(n) {
			collect(c)
		}
	}
	collect(root)
	sort.Slice(nodes, func(i, j int) bool { return nb.id(nodes[i]) < nb.id(nodes[j]) })

	for i, n := range nodes {
		if i > 0 {
			e.ob.AddBlank()
		}
		e.emitDetailBlock(n, nb, regions)
	}
}

// emitDetailBlock prints the header and the fields applicable to the
// operator kind. A field whose metadata is absent is omitted; a block never
// fails the render.
func (e *emitter) emitDetailBlock(n *plan.Node, nb *numbering, regions codegenRegions) {
	e.ob.AddLine(e.numberedLine(n, nb, regions))

	md := n.Metadata()
	addAttrs := func(label string, attrs []plan.AttrRef) {
		if len(attrs) > 0 {
			e.ob.AddField(fmt.Sprintf("%s [%d]", label, len(attrs)), plan.FormatAttrs(attrs))
		}
	}
	addStr := func(label, key string) {
		if s, ok := md.Str(key); ok {
			e.ob.AddField(label, s)
		}
	}
	addBracketed := func(label, key string) {
		if s, ok := md.Str(key); ok {
			e.ob.AddField(label, "["+s+"]")
		}
	}

	switch n.Op() {
	case plan.LocalRelationOp, plan.LocalTableScanOp:
		addAttrs("Output", n.OutputAttrs())

	case plan.RelationOp, plan.FileScanOp, plan.UnresolvedRelationOp:
		addAttrs("Output", n.OutputAttrs())
		addStr("Format", plan.MetaFormat)
		addStr("Location", plan.MetaLocation)
		addBracketed("PartitionFilters", plan.MetaPartitionFilters)
		addBracketed("DataFilters", plan.MetaDataFilters)
		addBracketed("PushedFilters", plan.MetaPushedFilters)
		addStr("ReadSchema", plan.MetaReadSchema)
		if opts, ok := md.Options(plan.MetaOptions); ok {
			e.ob.AddField("Options", opts.Format(e.red))
		}

	case plan.ProjectOp, plan.ProjectExecOp:
		addAttrs("Output", n.OutputAttrs())
		addAttrs("Input", e.inputAttrs(n))

	case plan.FilterOp, plan.FilterExecOp:
		addAttrs("Input", e.inputAttrs(n))
		addStr("Condition", plan.MetaCondition)

	case plan.JoinOp, plan.CartesianProductOp:
		addStr("Join type", plan.MetaJoinType)
		addStr("Condition", plan.MetaCondition)

	case plan.BroadcastHashJoinOp, plan.SortMergeJoinOp:
		addBracketed("Left keys", plan.MetaLeftKeys)
		addBracketed("Right keys", plan.MetaRightKeys)
		addStr("Join type", plan.MetaJoinType)
		addStr("Condition", plan.MetaCondition)

	case plan.AggregateOp, plan.HashAggregateOp:
		addAttrs("Input", e.inputAttrs(n))
		addBracketed("Keys", plan.MetaGroupingKeys)
		addBracketed("Functions", plan.MetaFunctions)

	case plan.SortOp, plan.SortExecOp:
		addAttrs("Input", e.inputAttrs(n))
		addBracketed("Arguments", plan.MetaSortOrder)

	case plan.ShuffleExchangeOp, plan.BroadcastExchangeOp:
		addAttrs("Input", e.inputAttrs(n))
		addStr("Arguments", plan.MetaPartitioning)

	case plan.AdaptivePlanOp:
		final := e.hasSnap && e.snap.Final
		e.ob.AddField("Arguments", fmt.Sprintf("isFinalPlan=%t", final))

	case plan.ShuffleQueryStageOp, plan.BroadcastQueryStageOp:
		addAttrs("Output", n.OutputAttrs())
		if e.hasSnap {
			if id, ok := md.Int(plan.MetaStageID); ok {
				if idx, ok := e.snap.SubmissionIndex(id); ok {
					e.ob.AddField("Arguments", strconv.Itoa(idx))
				}
			}
		}

	case plan.ShuffleReadOp:
		addAttrs("Input", e.inputAttrs(n))
		addStr("Arguments", plan.MetaStrategy)

	default:
		addStr("Arguments", plan.MetaArguments)
	}

	if e.ctx.Stats != nil {
		if sz, ok := e.ctx.Stats.SizeInBytes(n); ok {
			e.ob.AddField("Statistics", "sizeInBytes="+humanize.IBytes(sz))
		}
	}
}

// inputAttrs is the concatenated output of a node's children.
func (e *emitter) inputAttrs(n *plan.Node) []plan.AttrRef {
	children := e.planChildren(n)
	if len(children) == 1 {
		return children[0].OutputAttrs()
	}
	var attrs []plan.AttrRef
	for _, c := range children {
		attrs = append(attrs, c.OutputAttrs()...)
	}
	return attrs
}
