// Copyright 2025 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package plan

import "github.com/cockroachdb/redact"

// Op identifies the kind of relational operator a Node represents. The set is
// closed: rendering code dispatches exhaustively over these values and treats
// an unknown value as a programming error.
type Op uint8

var _ redact.SafeValue = Op(0)

const (
	// InvalidOp is the zero value; it never appears in a well-formed tree.
	InvalidOp Op = iota

	// Logical operators (parsed/analyzed/optimized snapshots).

	// LocalRelationOp is an in-memory literal relation.
	LocalRelationOp
	// UnresolvedRelationOp is a relation reference before name resolution.
	UnresolvedRelationOp
	// RelationOp is a resolved file-backed relation.
	RelationOp
	// ProjectOp evaluates a projection list.
	ProjectOp
	// FilterOp applies a predicate.
	FilterOp
	// JoinOp is a logical join; the join type is carried in metadata.
	JoinOp
	// AggregateOp is a logical grouped aggregation.
	AggregateOp
	// SortOp is a logical sort.
	SortOp

	// Physical operators.

	// LocalTableScanOp scans an in-memory literal relation.
	LocalTableScanOp
	// FileScanOp scans a file-backed relation.
	FileScanOp
	// ProjectExecOp is the physical projection.
	ProjectExecOp
	// FilterExecOp is the physical filter.
	FilterExecOp
	// HashAggregateOp is a hash-based grouped aggregation.
	HashAggregateOp
	// SortExecOp is the physical sort.
	SortExecOp
	// BroadcastHashJoinOp joins against a broadcast build side.
	BroadcastHashJoinOp
	// SortMergeJoinOp is a merge join over sorted inputs.
	SortMergeJoinOp
	// CartesianProductOp is the physical cross join.
	CartesianProductOp
	// ShuffleExchangeOp repartitions its input.
	ShuffleExchangeOp
	// BroadcastExchangeOp broadcasts its input to every participant.
	BroadcastExchangeOp

	// Adaptive-execution operators.

	// AdaptivePlanOp is the root wrapper for a plan under adaptive execution.
	AdaptivePlanOp
	// ShuffleQueryStageOp is a materialized shuffle boundary.
	ShuffleQueryStageOp
	// BroadcastQueryStageOp is a materialized broadcast boundary.
	BroadcastQueryStageOp
	// ShuffleReadOp reads shuffle output using a runtime-chosen strategy.
	ShuffleReadOp

	// NumOperators is the number of valid operator kinds.
	NumOperators
)

// nodeNames holds the fixed display name for each operator. Entries that are
// composed dynamically from metadata (scans) are empty.
var nodeNames = [...]string{
	InvalidOp:             "<invalid>",
	LocalRelationOp:       "LocalRelation",
	UnresolvedRelationOp:  "UnresolvedRelation",
	RelationOp:            "", // composed from format and table
	ProjectOp:             "Project",
	FilterOp:              "Filter",
	JoinOp:                "Join",
	AggregateOp:           "Aggregate",
	SortOp:                "Sort",
	LocalTableScanOp:      "LocalTableScan",
	FileScanOp:            "", // composed from format and table
	ProjectExecOp:         "Project",
	FilterExecOp:          "Filter",
	HashAggregateOp:       "HashAggregate",
	SortExecOp:            "Sort",
	BroadcastHashJoinOp:   "BroadcastHashJoin",
	SortMergeJoinOp:       "SortMergeJoin",
	CartesianProductOp:    "CartesianProduct",
	ShuffleExchangeOp:     "Exchange",
	BroadcastExchangeOp:   "BroadcastExchange",
	AdaptivePlanOp:        "AdaptiveSparkPlan",
	ShuffleQueryStageOp:   "ShuffleQueryStage",
	BroadcastQueryStageOp: "BroadcastQueryStage",
	ShuffleReadOp:         "AQEShuffleRead",
}

// fusibleOps marks the operators that participate in whole-stage code
// generation. Materialization points (exchanges, stages) and literal scans
// never fuse.
var fusibleOps = [...]bool{
	FileScanOp:          true,
	ProjectExecOp:       true,
	FilterExecOp:        true,
	HashAggregateOp:     true,
	SortExecOp:          true,
	BroadcastHashJoinOp: true,
	SortMergeJoinOp:     true,
}

// Physical reports whether the operator belongs to a physical plan.
func (op Op) Physical() bool {
	return op >= LocalTableScanOp && op < NumOperators
}

// Fusible reports whether the operator can be part of a generated-code
// subtree.
func (op Op) Fusible() bool {
	return int(op) < len(fusibleOps) && fusibleOps[op]
}

func (op Op) String() string {
	if op >= NumOperators {
		return "<unknown>"
	}
	switch op {
	case RelationOp:
		return "Relation"
	case FileScanOp:
		return "Scan"
	}
	return nodeNames[op]
}

// SafeValue implements redact.SafeValue. Operator kinds carry no user data.
func (op Op) SafeValue() {}
