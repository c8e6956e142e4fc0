// Copyright 2025 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package explain

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// Mode selects the verbosity and shape of explain output.
type Mode uint8

var _ redact.SafeValue = Mode(0)

const (
	// ModeSimple shows only the physical plan tree.
	ModeSimple Mode = iota
	// ModeExtended shows every plan snapshot, parsed through physical.
	ModeExtended
	// ModeCodegen shows the physical plan and the generated-code subtrees.
	ModeCodegen
	// ModeCost shows the physical plan with size statistics where available.
	ModeCost
	// ModeFormatted shows a numbered physical plan tree with per-operator
	// detail blocks and subquery cross-references.
	ModeFormatted
)

var modeNames = [...]string{
	ModeSimple:    "simple",
	ModeExtended:  "extended",
	ModeCodegen:   "codegen",
	ModeCost:      "cost",
	ModeFormatted: "formatted",
}

func (m Mode) String() string {
	if int(m) >= len(modeNames) {
		return "<unknown>"
	}
	return modeNames[m]
}

// SafeValue implements redact.SafeValue.
func (m Mode) SafeValue() {}

// ErrUnknownMode marks errors returned by ParseMode for unrecognized mode
// names. Check with errors.Is.
var ErrUnknownMode = errors.New("unknown explain mode")

// ParseMode resolves a mode name, ignoring case. Unrecognized names produce
// an error carrying the offending string verbatim; there is no default mode.
// The name is caller input and stays unsafe in redactable output.
func ParseMode(name string) (Mode, error) {
	for m, n := range modeNames {
		if strings.EqualFold(name, n) {
			return Mode(m), nil
		}
	}
	return 0, errors.Mark(errors.Newf("unknown explain mode: %s", redact.Unsafe(name)), ErrUnknownMode)
}
