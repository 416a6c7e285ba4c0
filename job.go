// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package jobsys

import (
	"sync/atomic"

	"github.com/petenewcomb/jobsys-go/internal/state"
)

// A JobFunction is the work performed by a job. It runs exactly once.
type JobFunction func()

// job is a pooled unit of work. Its dependency countdown doubles as its
// execution state, see [state.Dependencies].
type job struct {
	system *System
	index  uint32
	name   string
	color  Color
	fn     JobFunction
	refs   state.RefCount
	deps   state.Dependencies

	// barrier is nil until the job is added to a barrier and is swapped to
	// barrierDone when the job finishes, so that a job that finished before
	// being added is never tracked.
	barrier atomic.Pointer[Barrier]
}

// barrierDone is a sentinel stored in job.barrier once the job has finished.
var barrierDone = &Barrier{}

func (j *job) init(s *System, index uint32, name string, color Color, fn JobFunction, numDependencies uint32) {
	j.system = s
	j.index = index
	j.name = name
	j.color = color
	j.fn = fn
	j.refs.Init(1)
	j.deps.Init(numDependencies)
	j.barrier.Store(nil)
}

// execute runs the job if it is ready and no other goroutine has claimed it,
// and reports whether it ran.
func (j *job) execute() bool {
	if !j.deps.TryStart() {
		return false
	}
	j.fn()
	b := j.barrier.Swap(barrierDone)
	j.deps.Finish()
	if b != nil {
		b.onJobFinished()
	}
	return true
}

// setBarrier associates the job with b and reports whether b must track it.
// A job that already finished needs no tracking.
func (j *job) setBarrier(b *Barrier) bool {
	if j.barrier.CompareAndSwap(nil, b) {
		return true
	}
	if j.barrier.Load() != barrierDone {
		panic("a job can only belong to one barrier")
	}
	return false
}

func (j *job) addRef() {
	j.refs.Add()
}

func (j *job) release() {
	if j.refs.Release() {
		j.system.freeJob(j)
	}
}
