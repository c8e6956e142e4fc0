// Copyright 2025 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package explain

import "github.com/emberdb/ember/pkg/sql/plan"

// SubqueryEntry cross-references one embedded plan discovered during a
// render pass: its 1-based sequence number, the operator id and expression
// text of the hosting node, and the embedded plan root. Entries live only
// for the duration of the pass.
type SubqueryEntry struct {
	Seq      int
	HostID   int
	HostExpr string
	Root     *plan.Node
}

// DiscoverSubqueries enumerates the embedded plans reachable from root, in
// discovery order, numbering operators the way a formatted render pass
// does. Entries reference nodes of the given tree and are not retained.
func DiscoverSubqueries(root *plan.Node) []SubqueryEntry {
	nb := newNumbering()
	nb.assign(root, staticChildren)
	reg := &subqueryRegistry{}
	reg.discover(root, nb, staticChildren)
	return reg.entries
}

// childrenFn resolves the children of a node for one render pass. It lets
// the renderer substitute the adaptive snapshot's tree under an adaptive
// root without touching the immutable node.
type childrenFn func(*plan.Node) []*plan.Node

func staticChildren(n *plan.Node) []*plan.Node { return n.Children() }

// numbering assigns operator ids for one render pass. Ids are handed out by
// a single counter that is never reset: children before parents within a
// plan, and each embedded subquery plan numbered in full at its discovery
// point. Node identity is pointer identity; the pass never mutates nodes.
type numbering struct {
	ids  map[*plan.Node]int
	next int
}

func newNumbering() *numbering {
	return &numbering{ids: make(map[*plan.Node]int)}
}

// assign numbers n's subtree depth-first, children first, continuing the
// global counter.
func (nb *numbering) assign(n *plan.Node, children childrenFn) {
	for _, c := range children(n) {
		nb.assign(c, children)
	}
	nb.next++
	nb.ids[n] = nb.next
}

// id returns the operator id assigned to n in this pass.
func (nb *numbering) id(n *plan.Node) int {
	return nb.ids[n]
}

// subqueryRegistry discovers and numbers embedded plans. The walk over the
// hosting plan is depth-first pre-order; each discovered subquery receives
// the next sequence number, has its own plan numbered into the shared
// operator numbering, and is recursed into before the outer walk continues.
type subqueryRegistry struct {
	entries []SubqueryEntry
}

func (r *subqueryRegistry) discover(n *plan.Node, nb *numbering, children childrenFn) {
	for _, s := range n.Metadata().Subqueries() {
		if s.Root == nil {
			continue
		}
		nb.assign(s.Root, children)
		r.entries = append(r.entries, SubqueryEntry{
			Seq:      len(r.entries) + 1,
			HostID:   nb.id(n),
			HostExpr: s.ExprText,
			Root:     s.Root,
		})
		r.discover(s.Root, nb, children)
	}
	for _, c := range children(n) {
		r.discover(c, nb, children)
	}
}
