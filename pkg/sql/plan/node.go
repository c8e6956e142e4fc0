// Copyright 2025 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package plan defines the in-memory representation of query plan trees: a
// closed set of operator kinds, per-operator metadata, and the snapshot
// types consumed by the explain renderer. Trees are immutable once built;
// the sole mutable entity is the adaptive execution state reached through
// an AdaptiveHandle.
package plan

import "fmt"

// Node is one operator in a plan tree. A Node owns its children exclusively;
// the only references out of a tree are embedded subquery plans in metadata
// and the adaptive handle on an AdaptivePlanOp root. The operator kind,
// output attributes, children and metadata fully determine how the node
// renders.
type Node struct {
	op       Op
	output   []AttrRef
	md       Metadata
	children []*Node
	adaptive AdaptiveHandle
}

// New constructs a Node. The caller must not modify output or children after
// the call.
func New(op Op, output []AttrRef, md Metadata, children ...*Node) *Node {
	return &Node{op: op, output: output, md: md, children: children}
}

// Op returns the operator kind.
func (n *Node) Op() Op { return n.op }

// OutputAttrs returns the ordered output attribute descriptors.
func (n *Node) OutputAttrs() []AttrRef { return n.output }

// Metadata returns the operator-specific metadata.
func (n *Node) Metadata() Metadata { return n.md }

// Children returns the ordered child operators.
func (n *Node) Children() []*Node { return n.children }

// AdaptiveHandle returns the adaptive execution handle, non-nil only on an
// AdaptivePlanOp root.
func (n *Node) AdaptiveHandle() AdaptiveHandle { return n.adaptive }

// Fusible reports whether this operator can be fused into a generated-code
// subtree.
func (n *Node) Fusible() bool { return n.op.Fusible() }

// DisplayName returns the operator name shown in explain output. Scan names
// are composed from the source format and table carried in metadata.
func (n *Node) DisplayName() string {
	if n.op >= NumOperators {
		return "<unknown>"
	}
	switch n.op {
	case RelationOp:
		name := "Relation"
		if table, ok := n.md.Str(MetaTable); ok {
			name += " " + table
		}
		return name
	case FileScanOp:
		name := "Scan"
		if format, ok := n.md.Str(MetaFormat); ok {
			name += " " + format
		}
		if table, ok := n.md.Str(MetaTable); ok {
			name += " " + table
		}
		return name
	}
	return nodeNames[n.op]
}

// SimpleStringArgs returns the textual argument list appended to the operator
// name on a single tree line. Expression text is produced upstream and
// consumed verbatim; option maps are filtered through red before they can
// reach the output.
func (n *Node) SimpleStringArgs(red OptionRedactor) []string {
	var args []string
	addKey := func(key string) {
		if s, ok := n.md.Str(key); ok {
			args = append(args, s)
		}
	}

	switch n.op {
	case LocalRelationOp, LocalTableScanOp:
		args = append(args, FormatAttrs(n.output))

	case UnresolvedRelationOp:
		addKey(MetaTable)

	case RelationOp:
		args = append(args, FormatAttrs(n.output))
		if opts, ok := n.md.Options(MetaOptions); ok {
			args = append(args, "Options: "+opts.Format(red))
		}

	case FileScanOp:
		args = append(args, FormatAttrs(n.output))
		if loc, ok := n.md.Str(MetaLocation); ok {
			args = append(args, "Location: "+loc)
		}
		if pf, ok := n.md.Str(MetaPushedFilters); ok {
			args = append(args, "PushedFilters: ["+pf+"]")
		}
		if rs, ok := n.md.Str(MetaReadSchema); ok {
			args = append(args, "ReadSchema: "+rs)
		}
		if opts, ok := n.md.Options(MetaOptions); ok {
			args = append(args, "Options: "+opts.Format(red))
		}

	case ProjectOp, ProjectExecOp:
		if s, ok := n.md.Str(MetaProjections); ok {
			args = append(args, "["+s+"]")
		}

	case FilterOp, FilterExecOp:
		addKey(MetaCondition)

	case JoinOp:
		addKey(MetaJoinType)
		addKey(MetaCondition)

	case AggregateOp:
		if s, ok := n.md.Str(MetaGroupingKeys); ok {
			args = append(args, "["+s+"]")
		}
		if s, ok := n.md.Str(MetaFunctions); ok {
			args = append(args, "["+s+"]")
		}

	case HashAggregateOp:
		if s, ok := n.md.Str(MetaGroupingKeys); ok {
			args = append(args, "keys=["+s+"]")
		}
		if s, ok := n.md.Str(MetaFunctions); ok {
			args = append(args, "functions=["+s+"]")
		}

	case SortOp, SortExecOp:
		if s, ok := n.md.Str(MetaSortOrder); ok {
			args = append(args, "["+s+"]")
		}

	case BroadcastHashJoinOp, SortMergeJoinOp:
		if s, ok := n.md.Str(MetaLeftKeys); ok {
			args = append(args, "["+s+"]")
		}
		if s, ok := n.md.Str(MetaRightKeys); ok {
			args = append(args, "["+s+"]")
		}
		addKey(MetaJoinType)
		addKey(MetaBuildSide)
		addKey(MetaCondition)

	case CartesianProductOp:
		addKey(MetaCondition)

	case ShuffleExchangeOp, BroadcastExchangeOp:
		addKey(MetaPartitioning)

	case ShuffleReadOp:
		addKey(MetaStrategy)

	case AdaptivePlanOp, ShuffleQueryStageOp, BroadcastQueryStageOp:
		// Arguments depend on adaptive execution state captured by the
		// renderer, not on the node itself.

	default:
		if s, ok := n.md.Str(MetaArguments); ok {
			args = append(args, s)
		}
	}
	return args
}

// Format implements fmt.Formatter. Plan trees print shallow; full rendering
// goes through the explain package.
func (n *Node) Format(f fmt.State, verb rune) {
	fmt.Fprintf(f, "%s (%d children)", n.DisplayName(), len(n.children))
}
