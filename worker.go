// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package jobsys

import (
	"runtime"
	"sync/atomic"

	"go.uber.org/zap"
)

// startWorkers launches n worker goroutines. No workers may be running.
func (s *System) startWorkers(n int) {
	s.quit.Store(false)
	s.queue.reset(n)
	s.sem = s.newSemaphore(n)
	s.numThreads = n
	s.workers.Add(n)
	for i := range n {
		go s.workerMain(i, &s.queue.heads[i].v)
	}
	s.log.Debug("started workers", zap.Int("count", n))
}

// stopWorkers signals every worker to quit, waits for them, and then executes
// whatever they left in the queue on the calling goroutine.
func (s *System) stopWorkers() {
	n := s.numThreads
	if n == 0 {
		return
	}
	s.quit.Store(true)
	s.sem.Release(n)
	s.workers.Wait()

	// The calling goroutine takes over as the only worker. A producer that
	// lost the race for tail can still have filled a slot behind every head,
	// so every physical slot is swept once before following tail. Jobs run
	// here may queue more jobs, so tail is reread on every step.
	q := &s.queue
	q.heads = q.heads[:1]
	q.heads[0].v.Store(q.tail.Load())
	s.draining.Store(true)
	drained := 0
	for i := range q.slots {
		if j := q.slots[i].Swap(nil); j != nil && s.runAtShutdown(j) {
			drained++
		}
	}
	for {
		ran, ok := s.drainStep()
		if !ok {
			break
		}
		if ran {
			drained++
		}
	}
	s.draining.Store(false)
	if drained > 0 {
		s.log.Debug("executed remaining jobs at shutdown", zap.Int("count", drained))
	}

	s.numThreads = 0
	s.queue.reset(0)
	s.log.Debug("stopped workers", zap.Int("count", n))
}

// drainStep takes the job at the shutdown head and runs it. It reports whether
// a job ran and whether the head was short of tail.
func (s *System) drainStep() (ran, ok bool) {
	q := &s.queue
	head := &q.heads[0].v
	h := head.Load()
	if h == q.tail.Load() {
		return false, false
	}
	j := q.slot(h).Swap(nil)
	head.CompareAndSwap(h, h+1)
	if j != nil {
		ran = s.runAtShutdown(j)
	}
	return ran, true
}

func (s *System) runAtShutdown(j *job) bool {
	ran := j.execute()
	if ran {
		s.stats.executedAtShutdown.Add(1)
	}
	j.release()
	return ran
}

func (s *System) workerMain(index int, head *atomic.Uint64) {
	defer s.workers.Done()
	if s.config.LockOSThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}

	log := s.log.With(zap.Int("worker", index))
	log.Debug("worker started")

	q := &s.queue
	for !s.quit.Load() {
		s.sem.Acquire(1)
		for {
			h := head.Load()
			if h == q.tail.Load() {
				break
			}
			slot := q.slot(h)
			// Load first to avoid dirtying the cache line when another worker
			// already took the job.
			if slot.Load() != nil {
				if j := slot.Swap(nil); j != nil {
					if j.execute() {
						s.stats.executedByWorkers.Add(1)
					}
					j.release()
				}
			}
			head.Store(h + 1)
		}
	}

	log.Debug("worker stopped")
}
