// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package jobsys

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// jobQueue is a bounded multi-producer multi-consumer ring of jobs. Producers
// claim a slot by swapping it from nil and then advance tail. Each worker owns
// a private head and scans every slot from its head to tail, racing the other
// workers to swap jobs out. A slot is reusable once every worker's head has
// passed it.
type jobQueue struct {
	slots []atomic.Pointer[job]
	mask  uint64

	_    cpu.CacheLinePad
	tail atomic.Uint64
	_    cpu.CacheLinePad

	heads []workerHead
}

type workerHead struct {
	v atomic.Uint64
	_ cpu.CacheLinePad
}

func (q *jobQueue) init(length uint32) {
	q.slots = make([]atomic.Pointer[job], length)
	q.mask = uint64(length - 1)
}

func (q *jobQueue) capacity() uint64 {
	return uint64(len(q.slots))
}

func (q *jobQueue) slot(index uint64) *atomic.Pointer[job] {
	return &q.slots[index&q.mask]
}

// minHead returns the smallest worker head, or tail if there are no workers.
func (q *jobQueue) minHead() uint64 {
	head := q.tail.Load()
	for i := range q.heads {
		head = min(head, q.heads[i].v.Load())
	}
	return head
}

// reset discards the per-worker heads and rewinds the queue for n workers.
// The queue must be empty and no goroutine may be using it.
func (q *jobQueue) reset(n int) {
	q.tail.Store(0)
	q.heads = make([]workerHead, n)
}

// push inserts j, stalling while the queue is full. The queue takes its own
// reference to j.
func (s *System) push(j *job) {
	j.addRef()
	q := &s.queue
	st := s.newStall(resourceQueue)
	head := q.minHead()
	for {
		oldTail := q.tail.Load()
		if oldTail-head >= q.capacity() {
			head = q.minHead()
			oldTail = q.tail.Load()
			if oldTail-head >= q.capacity() {
				// During shutdown the caller is the only consumer, so it makes
				// room itself.
				if s.draining.Load() {
					s.drainStep()
					head = q.minHead()
					continue
				}
				// Every worker must make progress for the queue to drain.
				s.sem.Release(len(q.heads))
				st.wait()
				continue
			}
		}

		// A failed swap means another producer filled this slot first. Either
		// way tail must move past it before anyone retries.
		ok := q.slot(oldTail).CompareAndSwap(nil, j)
		q.tail.CompareAndSwap(oldTail, oldTail+1)
		if ok {
			break
		}
	}
	st.done()
}
