// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package graph builds named job graphs and runs them on a [jobsys.System].
//
// Nodes name their prerequisites. [Graph.Run] turns each node into a job
// whose dependency count is the number of prerequisites, and each finishing
// job removes one dependency from every node that names it.
package graph

import (
	"cmp"
	"fmt"

	"github.com/addrummond/heap"
	"github.com/gammazero/deque"
	"github.com/petenewcomb/jobsys-go"
)

// A Node is one unit of work in a [Graph].
type Node struct {
	Name  string
	Color jobsys.Color
	Func  jobsys.JobFunction
	Deps  []string
}

// A Graph is a set of nodes connected by dependencies. Nodes may name
// dependencies that are added later; names are resolved by [Graph.Validate].
// A Graph is not safe for concurrent modification.
type Graph struct {
	nodes []node
	index map[string]int

	// resolved is true while preds and succs reflect the current nodes.
	resolved bool
}

type node struct {
	Node
	preds []int
	succs []int
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{index: make(map[string]int)}
}

// Add adds a node. Its name must be non-empty and unique.
func (g *Graph) Add(n Node) error {
	if n.Name == "" {
		return ErrEmptyName
	}
	if _, exists := g.index[n.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateNode, n.Name)
	}
	if n.Func == nil {
		n.Func = func() {}
	}
	n.Deps = append([]string(nil), n.Deps...)
	g.index[n.Name] = len(g.nodes)
	g.nodes = append(g.nodes, node{Node: n})
	g.resolved = false
	return nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Validate checks that every dependency names a node and that there are no
// cycles.
func (g *Graph) Validate() error {
	if err := g.resolve(); err != nil {
		return err
	}
	return g.checkAcyclic()
}

func (g *Graph) resolve() error {
	if g.resolved {
		return nil
	}
	for i := range g.nodes {
		g.nodes[i].preds = g.nodes[i].preds[:0]
		g.nodes[i].succs = g.nodes[i].succs[:0]
	}
	for i := range g.nodes {
		n := &g.nodes[i]
		for _, dep := range n.Deps {
			p, ok := g.index[dep]
			if !ok {
				return fmt.Errorf("%w: %q depends on %q", ErrUnknownDependency, n.Name, dep)
			}
			n.preds = append(n.preds, p)
			g.nodes[p].succs = append(g.nodes[p].succs, i)
		}
	}
	g.resolved = true
	return nil
}

// checkAcyclic runs Kahn's algorithm and reports the earliest added node left
// unvisited, which lies on or behind a cycle.
func (g *Graph) checkAcyclic() error {
	indegree := make([]int, len(g.nodes))
	var work deque.Deque[int]
	for i := range g.nodes {
		indegree[i] = len(g.nodes[i].preds)
		if indegree[i] == 0 {
			work.PushBack(i)
		}
	}
	visited := 0
	for work.Len() > 0 {
		i := work.PopFront()
		visited++
		for _, s := range g.nodes[i].succs {
			indegree[s]--
			if indegree[s] == 0 {
				work.PushBack(s)
			}
		}
	}
	if visited == len(g.nodes) {
		return nil
	}
	for i := range g.nodes {
		if indegree[i] > 0 {
			return fmt.Errorf("%w: involving %q", ErrCycle, g.nodes[i].Name)
		}
	}
	panic("unvisited nodes without remaining dependencies")
}

type readyNode struct {
	index int
}

func (a *readyNode) Cmp(b *readyNode) int {
	return cmp.Compare(a.index, b.index)
}

// Order returns the node names in a topological order. Among nodes whose
// dependencies are all satisfied, the one added first comes first, so the
// order is deterministic.
func (g *Graph) Order() ([]string, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	indegree := make([]int, len(g.nodes))
	var ready heap.Heap[readyNode, heap.Min]
	for i := range g.nodes {
		indegree[i] = len(g.nodes[i].preds)
		if indegree[i] == 0 {
			heap.PushOrderable(&ready, readyNode{index: i})
		}
	}
	order := make([]string, 0, len(g.nodes))
	for {
		r, ok := heap.PopOrderable(&ready)
		if !ok {
			break
		}
		n := &g.nodes[r.index]
		order = append(order, n.Name)
		for _, s := range n.succs {
			indegree[s]--
			if indegree[s] == 0 {
				heap.PushOrderable(&ready, readyNode{index: s})
			}
		}
	}
	return order, nil
}
