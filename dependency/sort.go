// Copyright 2025 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

// Package dependency orders firmware modules so that a module is flashed
// after the modules it declares as dependencies.
package dependency

import (
	"slices"

	"github.com/fwflash-cli/module"
	"github.com/golang/glog"
)

// Graph is the dependency -> dependents adjacency of a batch of modules,
// indexed by position in the batch
type Graph struct {
	modules    []*module.Descriptor
	dependents [][]int
	deps       [][]int
}

// NewGraph resolves the declared dependencies of every module against the
// batch.  A dependency is matched on function, index and version; one that
// matches nothing in the batch is already on the device and adds no edge.
func NewGraph(mods []*module.Descriptor) *Graph {
	g := &Graph{
		modules:    mods,
		dependents: make([][]int, len(mods)),
		deps:       make([][]int, len(mods)),
	}
	for i, m := range mods {
		for _, dep := range m.Prefix.Dependencies() {
			for j, d := range mods {
				if !d.Prefix.Satisfies(dep) {
					continue
				}
				if !slices.Contains(g.dependents[j], i) {
					g.dependents[j] = append(g.dependents[j], i)
				}
				if !slices.Contains(g.deps[i], j) {
					g.deps[i] = append(g.deps[i], j)
				}
			}
		}
	}
	return g
}

// Dependents returns the modules that directly depend on mods[i]
func (g *Graph) Dependents(i int) []*module.Descriptor {
	out := make([]*module.Descriptor, 0, len(g.dependents[i]))
	for _, j := range g.dependents[i] {
		out = append(out, g.modules[j])
	}
	return out
}

// SortByDependencies returns the modules in flashing order
func SortByDependencies(mods []*module.Descriptor) []*module.Descriptor {
	g := NewGraph(mods)
	order := g.repair(g.chains())
	sorted := make([]*module.Descriptor, len(order))
	for k, i := range order {
		sorted[k] = mods[i]
	}
	return sorted
}

// chains builds the order by taking each module with its first-level
// dependents and splicing that chain in front of the chain's last element,
// or in front of the final element when the last element isn't placed yet.
// Only the first occurrence of each module is kept.
func (g *Graph) chains() []int {
	var ordered []int
	for i := range g.modules {
		chain := []int{i}
		for _, d := range g.dependents[i] {
			if !slices.Contains(chain, d) {
				chain = append(chain, d)
			}
		}
		pos := slices.Index(ordered, chain[len(chain)-1])
		if pos < 0 {
			pos = max(len(ordered)-1, 0)
		}
		ordered = slices.Insert(ordered, pos, chain...)
	}

	seen := make([]bool, len(g.modules))
	deduped := make([]int, 0, len(g.modules))
	for _, i := range ordered {
		if !seen[i] {
			seen[i] = true
			deduped = append(deduped, i)
		}
	}
	return deduped
}

// repair emits modules in the given order, holding a module back until its
// direct dependencies in the batch have been emitted.  An order that already
// respects every edge comes back unchanged.
func (g *Graph) repair(order []int) []int {
	placed := make([]bool, len(g.modules))
	out := make([]int, 0, len(order))
	ready := func(i int) bool {
		for _, d := range g.deps[i] {
			if d != i && !placed[d] {
				return false
			}
		}
		return true
	}

	for len(out) < len(order) {
		next := -1
		for _, i := range order {
			if !placed[i] && ready(i) {
				next = i
				break
			}
		}
		if next < 0 {
			// A cycle; keep the remaining modules where they were
			for _, i := range order {
				if !placed[i] {
					next = i
					break
				}
			}
			glog.Warningf("dependency cycle involving %s", g.modules[next].Name())
		}
		placed[next] = true
		out = append(out, next)
	}

	if !slices.Equal(out, order) {
		glog.V(1).Infof("dependency order adjusted so that every module follows its dependencies")
	}
	return out
}
