// Copyright 2025 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package explain

import "strings"

// OutputBuilder assembles explain output as a sequence of plain lines and
// indented plan trees. Tree nodes are entered and left in traversal order;
// a tree is appended to the output when its root is left. Node text may
// span multiple lines; continuation lines are indented under the node's
// branch.
type OutputBuilder struct {
	lines []string
	trees []*treeEntry
	stack []*treeEntry
}

type treeEntry struct {
	text     string
	children []*treeEntry
}

// NewOutputBuilder returns an empty builder.
func NewOutputBuilder() *OutputBuilder {
	return &OutputBuilder{}
}

// AddLine appends one output line outside any tree.
func (ob *OutputBuilder) AddLine(line string) {
	ob.lines = append(ob.lines, line)
}

// AddBlank appends an empty line.
func (ob *OutputBuilder) AddBlank() {
	ob.lines = append(ob.lines, "")
}

// AddSectionHeader appends a "== name ==" header line.
func (ob *OutputBuilder) AddSectionHeader(name string) {
	ob.lines = append(ob.lines, "== "+name+" ==")
}

// AddField appends a "key: value" detail line.
func (ob *OutputBuilder) AddField(key, value string) {
	ob.lines = append(ob.lines, key+": "+value)
}

// EnterNode opens a tree node with the given text. Subsequent EnterNode
// calls add children until the matching LeaveNode.
func (ob *OutputBuilder) EnterNode(text string) {
	entry := &treeEntry{text: text}
	if len(ob.stack) > 0 {
		parent := ob.stack[len(ob.stack)-1]
		parent.children = append(parent.children, entry)
	}
	ob.stack = append(ob.stack, entry)
}

// LeaveNode closes the current tree node. Leaving the root renders the tree
// into the output.
func (ob *OutputBuilder) LeaveNode() {
	entry := ob.stack[len(ob.stack)-1]
	ob.stack = ob.stack[:len(ob.stack)-1]
	if len(ob.stack) == 0 {
		ob.trees = append(ob.trees, entry)
		entry.render(&ob.lines, "", "")
	}
}

// render emits the entry and its subtree. A non-last child branches with
// ":- " and continues with ":  "; the last child branches with "+- " and
// continues with three spaces.
func (e *treeEntry) render(out *[]string, prefix, childIndent string) {
	for i, ln := range strings.Split(e.text, "\n") {
		if i == 0 {
			*out = append(*out, prefix+ln)
		} else {
			*out = append(*out, childIndent+ln)
		}
	}
	for i, c := range e.children {
		if i < len(e.children)-1 {
			c.render(out, childIndent+":- ", childIndent+":  ")
		} else {
			c.render(out, childIndent+"+- ", childIndent+"   ")
		}
	}
}

// BuildString returns the accumulated output. Every line, including the
// last, is newline-terminated.
func (ob *OutputBuilder) BuildString() string {
	if len(ob.lines) == 0 {
		return ""
	}
	return strings.Join(ob.lines, "\n") + "\n"
}

// BuildStringRows returns the accumulated output as individual rows.
func (ob *OutputBuilder) BuildStringRows() []string {
	return ob.lines
}

// TreeNode is the exported shape of one rendered tree, for tooling that
// wants structure instead of text.
type TreeNode struct {
	Name     string     `yaml:"name"`
	Children []TreeNode `yaml:"children,omitempty"`
}

// BuildTree returns every completed tree in output order.
func (ob *OutputBuilder) BuildTree() []TreeNode {
	out := make([]TreeNode, 0, len(ob.trees))
	for _, t := range ob.trees {
		out = append(out, t.toTreeNode())
	}
	return out
}

func (e *treeEntry) toTreeNode() TreeNode {
	n := TreeNode{Name: e.text}
	for _, c := range e.children {
		n.Children = append(n.Children, c.toTreeNode())
	}
	return n
}
