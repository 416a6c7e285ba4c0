// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package jobsys

import (
	"sync/atomic"

	"github.com/petenewcomb/jobsys-go/internal/sema"
	"golang.org/x/sys/cpu"
)

// BarrierCapacity is the number of jobs a barrier can hold before adders
// stall waiting for [Barrier.Wait] to retire finished ones.
const BarrierCapacity = 1024

const barrierMask = BarrierCapacity - 1

// A Barrier collects jobs so that one goroutine can wait for all of them.
// Jobs may be added from any goroutine, including from jobs the barrier
// already holds, but only one goroutine may wait at a time.
//
// Barriers come from a fixed pool; see [System.CreateBarrier].
type Barrier struct {
	system  *System
	inUse   atomic.Bool
	waiting atomic.Bool

	jobs [BarrierCapacity]atomic.Pointer[job]

	_          cpu.CacheLinePad
	readIndex  atomic.Uint64
	_          cpu.CacheLinePad
	writeIndex atomic.Uint64

	// numToAcquire is how many semaphore units Wait still expects: one per
	// tracked job, plus one per batch that contained a ready job.
	numToAcquire atomic.Int64
	sem          *sema.Semaphore
}

func (b *Barrier) init(s *System) {
	b.system = s
	b.sem = s.newSemaphore(1)
}

// AddJob adds a job to the barrier. The barrier takes its own reference, so
// the caller may release its handle afterward. A job that has already
// finished is ignored.
func (b *Barrier) AddJob(h JobHandle) {
	b.mustBeInUse()
	if b.track(h.mustJob(), true) {
		b.sem.Release(1)
	}
}

// AddJobs adds several jobs, waking the waiter at most once.
func (b *Barrier) AddJobs(handles []JobHandle) {
	b.mustBeInUse()
	wake := false
	for _, h := range handles {
		if b.track(h.mustJob(), !wake) {
			wake = true
		}
	}
	if wake {
		b.sem.Release(1)
	}
}

// track appends j to the ring and reports whether it counted j as ready to
// run, in which case the caller owes the semaphore one release.
func (b *Barrier) track(j *job, countReady bool) bool {
	if j.system != b.system {
		panic("job belongs to a different system than the barrier")
	}
	if !j.setBarrier(b) {
		return false
	}
	b.numToAcquire.Add(1)
	ready := countReady && j.deps.Ready()
	if ready {
		b.numToAcquire.Add(1)
	}

	j.addRef()
	w := b.writeIndex.Add(1) - 1
	if w-b.readIndex.Load() >= BarrierCapacity {
		st := b.system.newStall(resourceBarrier)
		for w-b.readIndex.Load() >= BarrierCapacity {
			st.wait()
		}
		st.done()
	}
	b.jobs[w&barrierMask].Store(j)
	return ready
}

func (b *Barrier) onJobFinished() {
	b.sem.Release(1)
}

// IsEmpty returns true if the barrier holds no jobs.
func (b *Barrier) IsEmpty() bool {
	return b.readIndex.Load() == b.writeIndex.Load()
}

// Wait returns once every job added to the barrier has finished. While
// waiting it executes any of those jobs that are ready, so it makes progress
// even when the system has no workers.
func (b *Barrier) Wait() {
	b.mustBeInUse()
	if !b.waiting.CompareAndSwap(false, true) {
		panic("barrier waited on concurrently")
	}
	defer b.waiting.Store(false)

	for b.numToAcquire.Load() > 0 {
		for {
			b.retireFinished()
			if !b.executeReady() {
				break
			}
		}

		// Take everything already released in one go, but at least one unit
		// so that the goroutine parks when there is nothing to do.
		n := max(1, b.sem.Value())
		b.sem.Acquire(n)
		b.numToAcquire.Add(-int64(n))
	}

	for r := b.readIndex.Load(); r != b.writeIndex.Load(); r++ {
		slot := &b.jobs[r&barrierMask]
		j := slot.Load()
		if j == nil || !j.deps.Done() {
			panic("barrier finished waiting with an unfinished job")
		}
		slot.Store(nil)
		j.release()
		b.readIndex.Store(r + 1)
	}
}

// retireFinished releases finished jobs from the front of the ring.
func (b *Barrier) retireFinished() {
	for {
		r := b.readIndex.Load()
		if r == b.writeIndex.Load() {
			return
		}
		slot := &b.jobs[r&barrierMask]
		j := slot.Load()
		if j == nil || !j.deps.Done() {
			return
		}
		slot.Store(nil)
		j.release()
		b.readIndex.Store(r + 1)
	}
}

// executeReady executes the first ready job in the ring and reports whether
// it found one. Losing the race for that job to a worker still counts.
func (b *Barrier) executeReady() bool {
	for r := b.readIndex.Load(); r != b.writeIndex.Load(); r++ {
		j := b.jobs[r&barrierMask].Load()
		if j != nil && j.deps.Ready() {
			if j.execute() {
				b.system.stats.executedInWait.Add(1)
			}
			return true
		}
	}
	return false
}

func (b *Barrier) mustBeInUse() {
	if !b.inUse.Load() {
		panic("barrier is not in use")
	}
}
