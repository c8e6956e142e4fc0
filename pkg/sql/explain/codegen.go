// Copyright 2025 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package explain

import (
	"fmt"

	"github.com/emberdb/ember/pkg/sql/plan"
)

// codegenRegions is the result of discovering whole-stage codegen subtrees:
// the maximal connected regions of fusible operators in a plan, including
// regions inside embedded subquery plans.
type codegenRegions struct {
	// roots holds the topmost operator of each region, in discovery order.
	roots []*plan.Node
	// regionOf maps every fusible operator to its 1-based region index.
	regionOf map[*plan.Node]int
}

// discoverCodegenRegions walks the plan pre-order. A fusible operator whose
// parent is not fusible starts a new region; fusible children extend their
// parent's region. Subquery plans are walked at their discovery point and
// never share a region with the hosting plan.
func discoverCodegenRegions(root *plan.Node, children childrenFn) codegenRegions {
	regions := codegenRegions{regionOf: make(map[*plan.Node]int)}
	var walk func(n *plan.Node, parentRegion int)
	walk = func(n *plan.Node, parentRegion int) {
		region := 0
		if n.Fusible() {
			region = parentRegion
			if region == 0 {
				regions.roots = append(regions.roots, n)
				region = len(regions.roots)
			}
			regions.regionOf[n] = region
		}
		for _, s := range n.Metadata().Subqueries() {
			if s.Root != nil {
				walk(s.Root, 0)
			}
		}
		for _, c := range children(n) {
			walk(c, region)
		}
	}
	walk(root, 0)
	return regions
}

// SummarizeCodegen reports the whole-stage codegen subtrees of a plan: the
// subtree count and the rendered trailer, starting with the
// "Found {n} WholeStageCodegen subtrees." line.
func SummarizeCodegen(root *plan.Node, gen CodeGenerator) (int, string) {
	ob := NewOutputBuilder()
	regions := discoverCodegenRegions(root, staticChildren)
	emitCodegenSummary(ob, regions, gen)
	return len(regions.roots), ob.BuildString()
}

// emitCodegenSummary appends the codegen trailer: the subtree count line and
// one block per subtree with the generated source supplied by the code
// generator. A missing generator or a miss for a subtree omits the size and
// source, never fails the render.
func emitCodegenSummary(ob *OutputBuilder, regions codegenRegions, gen CodeGenerator) {
	n := len(regions.roots)
	ob.AddLine(fmt.Sprintf("Found %d WholeStageCodegen subtrees.", n))
	for i, root := range regions.roots {
		if gen != nil {
			if src, maxSize, ok := gen.GeneratedSource(root); ok {
				ob.AddLine(fmt.Sprintf("== Subtree %d / %d (maxMethodCodeSize:%d) ==", i+1, n, maxSize))
				ob.AddLine(src)
				continue
			}
		}
		ob.AddLine(fmt.Sprintf("== Subtree %d / %d ==", i+1, n))
	}
}
