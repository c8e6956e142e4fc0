// Copyright 2025 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package plan

import (
	"fmt"
	"strings"
)

// AttrRef is a reference to one output attribute of an operator. The ID is a
// synthetic identifier assigned once per analysis pass by the plan producer;
// this package never generates or rewrites IDs.
type AttrRef struct {
	ID   int64
	Name string
}

func (a AttrRef) String() string {
	return fmt.Sprintf("%s#%d", a.Name, a.ID)
}

// FormatAttrs renders a list of attribute references in the bracketed form
// used throughout explain output, e.g. "[a#1, b#2]".
func FormatAttrs(attrs []AttrRef) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, a := range attrs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
