// Copyright 2025 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package explain

import (
	"github.com/emberdb/ember/pkg/sql/plan"
	"github.com/emberdb/ember/pkg/util/redactutil"
)

// StatsEstimator supplies optional per-operator size estimates. Absence of
// an estimate is not an error; the corresponding output fragment is omitted.
type StatsEstimator interface {
	SizeInBytes(n *plan.Node) (uint64, bool)
}

// CodeGenerator supplies the generated source for a whole-stage codegen
// subtree, keyed by the subtree's root operator. A miss omits the source
// block.
type CodeGenerator interface {
	GeneratedSource(root *plan.Node) (source string, maxMethodCodeSize int64, ok bool)
}

// Context carries the external collaborators a render call may consult. The
// zero value is valid: no statistics, no generated code, default redaction.
type Context struct {
	// Stats is consulted in cost and formatted modes. May be nil.
	Stats StatsEstimator
	// Codegen is consulted in codegen mode. May be nil.
	Codegen CodeGenerator
	// Redactor filters option values in every mode. The zero value applies
	// the default deny-list.
	Redactor redactutil.Redactor
}
