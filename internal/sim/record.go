// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sim

import (
	"fmt"
	"sync/atomic"
	"time"
)

// A Recorder stamps each node of a plan with a global sequence number when it
// starts and when it finishes.
type Recorder struct {
	seq      atomic.Int64
	runs     []atomic.Int32
	started  []atomic.Int64
	finished []atomic.Int64
}

func NewRecorder(p *Plan) *Recorder {
	n := len(p.Nodes)
	return &Recorder{
		runs:     make([]atomic.Int32, n),
		started:  make([]atomic.Int64, n),
		finished: make([]atomic.Int64, n),
	}
}

func (r *Recorder) nodeFunc(i int, selfTime time.Duration) func() {
	return func() {
		r.runs[i].Add(1)
		r.started[i].Store(r.seq.Add(1))
		simulateSelfTime(selfTime)
		r.finished[i].Store(r.seq.Add(1))
	}
}

// Check returns an error describing the first node that did not run exactly
// once or that started before one of its dependencies finished.
func (r *Recorder) Check(p *Plan) error {
	for i := range p.Nodes {
		n := &p.Nodes[i]
		if runs := r.runs[i].Load(); runs != 1 {
			return fmt.Errorf("%s ran %d times", n.Name, runs)
		}
		for _, d := range n.Deps {
			if r.finished[d].Load() > r.started[i].Load() {
				return fmt.Errorf("%s started before its dependency %s finished", n.Name, p.Nodes[d].Name)
			}
		}
	}
	return nil
}
