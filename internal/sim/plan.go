// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sim

import (
	"fmt"
	"strings"
	"time"

	"github.com/petenewcomb/jobsys-go"
	"github.com/petenewcomb/jobsys-go/graph"
	"github.com/petenewcomb/jobsys-go/internal/timerp"
	"pgregory.net/rapid"
)

// Config determines the shape of generated plans.
type Config struct {
	Nodes    Biased[int]
	Deps     Biased[int]
	SelfTime Biased[time.Duration]
}

var DefaultConfig = Config{
	Nodes:    Biased[int]{Min: 1, Med: 20, Max: 300},
	Deps:     Biased[int]{Min: 0, Med: 1, Max: 5},
	SelfTime: Biased[time.Duration]{Min: 0, Med: 0, Max: 50 * time.Microsecond},
}

// A Plan is a random DAG. Nodes appear in an order compatible with their
// dependencies; AddOrder is the order in which they should be added to a
// graph, which is usually not.
type Plan struct {
	Nodes    []PlanNode
	AddOrder []int
}

type PlanNode struct {
	Name     string
	Deps     []int
	SelfTime time.Duration
}

// NewPlan draws a plan. A nil config selects DefaultConfig.
func NewPlan(t *rapid.T, config *Config) *Plan {
	if config == nil {
		config = &DefaultConfig
	}
	nodeCount := config.Nodes.Draw(t, "nodeCount")
	p := &Plan{
		Nodes:    make([]PlanNode, nodeCount),
		AddOrder: make([]int, nodeCount),
	}
	for i := range p.Nodes {
		n := &p.Nodes[i]
		n.Name = fmt.Sprintf("n%d", i)
		n.SelfTime = config.SelfTime.Draw(t, "selfTime")
		if depCount := min(config.Deps.Draw(t, "depCount"), i); depCount > 0 {
			n.Deps = rapid.SliceOfNDistinct(rapid.IntRange(0, i-1), depCount, depCount, rapid.ID[int]).
				Draw(t, n.Name+".Deps")
		}
		p.AddOrder[i] = i
	}
	p.AddOrder = rapid.Permutation(p.AddOrder).Draw(t, "addOrder")
	return p
}

// Graph builds a graph for the plan whose node functions report to r.
func (p *Plan) Graph(r *Recorder) (*graph.Graph, error) {
	g := graph.New()
	for _, i := range p.AddOrder {
		n := &p.Nodes[i]
		deps := make([]string, len(n.Deps))
		for j, d := range n.Deps {
			deps[j] = p.Nodes[d].Name
		}
		err := g.Add(graph.Node{
			Name:  n.Name,
			Color: jobsys.ColorGreen,
			Func:  r.nodeFunc(i, n.SelfTime),
			Deps:  deps,
		})
		if err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (p *Plan) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Plan: nodeCount=%d\n", len(p.Nodes))
	for _, n := range p.Nodes {
		fmt.Fprintf(&b, "  %s: selfTime=%v", n.Name, n.SelfTime)
		if len(n.Deps) > 0 {
			b.WriteString(" deps=")
			for j, d := range n.Deps {
				if j > 0 {
					b.WriteByte(',')
				}
				b.WriteString(p.Nodes[d].Name)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func simulateSelfTime(d time.Duration) {
	if d > 0 {
		timerp.Sleep(d)
	}
}
