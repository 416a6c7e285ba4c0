// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package graph

import (
	"fmt"

	"github.com/petenewcomb/jobsys-go"
)

// Run executes every node on s and returns once all of them are done. Each
// node runs only after all of its dependencies have finished.
//
// All of the graph's jobs are alive and held by one barrier at once, so the
// graph may have at most [jobsys.BarrierCapacity] nodes and no more than the
// system's MaxJobs.
func (g *Graph) Run(s *jobsys.System) error {
	if err := g.Validate(); err != nil {
		return err
	}
	n := len(g.nodes)
	if n == 0 {
		return nil
	}
	if n > jobsys.BarrierCapacity || n > int(s.Config().MaxJobs) {
		return fmt.Errorf("%w: %d nodes", ErrGraphTooLarge, n)
	}

	// Every job starts with one extra dependency so that none can run, and
	// reach for a successor's handle, before all handles exist.
	handles := make([]jobsys.JobHandle, n)
	succs := make([][]jobsys.JobHandle, n)
	for i := range g.nodes {
		nd := &g.nodes[i]
		fn := nd.Func
		handles[i] = s.CreateJob(nd.Name, nd.Color, func() {
			fn()
			jobsys.RemoveDependencies(succs[i], 1)
		}, uint32(len(nd.preds)+1))
	}
	for i := range g.nodes {
		for _, succ := range g.nodes[i].succs {
			succs[i] = append(succs[i], handles[succ])
		}
	}

	b := s.CreateBarrier()
	b.AddJobs(handles)
	jobsys.RemoveDependencies(handles, 1)
	b.Wait()
	s.DestroyBarrier(b)

	for i := range handles {
		handles[i].Release()
	}
	return nil
}
