// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package jobsys

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/petenewcomb/jobsys-go/internal/freelist"
	"github.com/petenewcomb/jobsys-go/internal/sema"
	"go.uber.org/zap"
)

// A System owns a pool of jobs, a pool of barriers, a job queue and the worker
// goroutines that drain it. Create one with [NewSystem] and shut it down with
// [System.Stop].
//
// CreateJob, QueueJob, QueueJobs and the barrier operations may be called from
// any goroutine, including from inside a running job. SetNumThreads and Stop
// must not race with anything else.
type System struct {
	id       uuid.UUID
	config   Config
	log      *zap.Logger
	jobs     *freelist.List[job]
	barriers []Barrier
	queue    jobQueue

	sem        *sema.Semaphore
	numThreads int
	quit       atomic.Bool
	draining   atomic.Bool
	workers    sync.WaitGroup
	stopped    bool

	stats stats
}

// NewSystem creates a System with room for maxJobs live jobs and maxBarriers
// live barriers, and starts numThreads workers. A negative numThreads selects
// one fewer than the number of CPUs.
func NewSystem(maxJobs, maxBarriers uint32, numThreads int, opts ...Option) *System {
	cfg := DefaultConfig()
	cfg.MaxJobs = maxJobs
	cfg.MaxBarriers = maxBarriers
	cfg.NumThreads = numThreads
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewSystemWithConfig(cfg)
}

// NewSystemWithConfig creates a System from a complete configuration.
func NewSystemWithConfig(cfg Config) *System {
	cfg.validate()
	s := &System{
		id:     uuid.New(),
		config: cfg,
		jobs:   freelist.New[job](cfg.MaxJobs),
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.L()
	}
	s.log = logger.With(zap.Stringer("system", s.id))

	s.barriers = make([]Barrier, cfg.MaxBarriers)
	for i := range s.barriers {
		s.barriers[i].init(s)
	}
	s.queue.init(cfg.QueueLength)

	s.startWorkers(resolveNumThreads(cfg.NumThreads))
	s.log.Debug("job system created",
		zap.Uint32("maxJobs", cfg.MaxJobs),
		zap.Uint32("maxBarriers", cfg.MaxBarriers),
		zap.Uint32("queueLength", cfg.QueueLength))
	return s
}

func (s *System) newSemaphore(maxWaiters int) *sema.Semaphore {
	if s.config.CondSemaphore {
		return sema.NewWithParker(sema.NewCondParker())
	}
	return sema.New(maxWaiters)
}

// ID returns the identifier that tags this system's log entries.
func (s *System) ID() uuid.UUID {
	return s.id
}

// Config returns the configuration the system was created with.
func (s *System) Config() Config {
	return s.config
}

// NumThreads returns the number of worker goroutines.
func (s *System) NumThreads() int {
	return s.numThreads
}

// MaxConcurrency returns the number of goroutines that may execute jobs at
// once: the workers plus one goroutine waiting on a barrier.
func (s *System) MaxConcurrency() int {
	return s.numThreads + 1
}

// SetNumThreads stops the current workers, executing anything they left in
// the queue, and starts n new ones. A negative n selects one fewer than the
// number of CPUs.
func (s *System) SetNumThreads(n int) {
	if s.stopped {
		panic("job system is stopped")
	}
	s.stopWorkers()
	s.config.NumThreads = n
	s.startWorkers(resolveNumThreads(n))
}

// Stop shuts down the workers after executing every job still in the queue,
// including jobs queued by those jobs, on the calling goroutine. All barriers
// must have been destroyed. Stop is idempotent.
func (s *System) Stop() {
	if s.stopped {
		return
	}
	s.stopWorkers()
	for i := range s.barriers {
		if s.barriers[i].inUse.Load() {
			panic("barrier still in use at shutdown")
		}
	}
	s.stopped = true
	s.log.Debug("job system stopped")
}

// Stats returns a snapshot of the system's counters.
func (s *System) Stats() Stats {
	return s.stats.snapshot()
}

// CreateJob takes a job from the pool and returns a handle to it. A job with
// no dependencies is queued at once; any other job is queued when
// [JobHandle.RemoveDependency] brings its count to zero. If the pool is empty
// CreateJob stalls until another job is freed.
func (s *System) CreateJob(name string, color Color, fn JobFunction, numDependencies uint32) JobHandle {
	if fn == nil {
		panic("job function must be non-nil")
	}
	index := s.jobs.Alloc()
	if index == freelist.Invalid {
		st := s.newStall(resourceJobPool)
		for index == freelist.Invalid {
			st.wait()
			index = s.jobs.Alloc()
		}
		st.done()
	}
	j := s.jobs.Get(index)
	j.init(s, index, name, color, fn, numDependencies)
	s.stats.created.Add(1)
	if numDependencies == 0 {
		s.queueJob(j)
	}
	return JobHandle{j: j}
}

func (s *System) freeJob(j *job) {
	j.fn = nil
	j.name = ""
	s.jobs.Release(j.index)
}

// QueueJob queues a job for the workers. With no workers it does nothing and
// the job can only run inside [Barrier.Wait].
func (s *System) QueueJob(h JobHandle) {
	s.queueJob(s.own(h))
}

// QueueJobs queues several jobs, waking at most one worker per job.
func (s *System) QueueJobs(handles []JobHandle) {
	jobs := make([]*job, len(handles))
	for i, h := range handles {
		jobs[i] = s.own(h)
	}
	s.queueJobs(jobs)
}

func (s *System) queueJob(j *job) {
	if s.numThreads == 0 {
		return
	}
	s.push(j)
	s.sem.Release(1)
}

func (s *System) queueJobs(jobs []*job) {
	if s.numThreads == 0 || len(jobs) == 0 {
		return
	}
	for _, j := range jobs {
		s.push(j)
	}
	s.sem.Release(min(len(jobs), s.numThreads))
}

func (s *System) own(h JobHandle) *job {
	j := h.mustJob()
	if j.system != s {
		panic("job handle belongs to a different system")
	}
	return j
}

// CreateBarrier takes a barrier from the pool, stalling until one is free.
func (s *System) CreateBarrier() *Barrier {
	if b := s.TryCreateBarrier(); b != nil {
		return b
	}
	st := s.newStall(resourceBarrierPool)
	defer st.done()
	for {
		st.wait()
		if b := s.TryCreateBarrier(); b != nil {
			return b
		}
	}
}

// TryCreateBarrier takes a barrier from the pool, or returns nil if all of
// them are in use.
func (s *System) TryCreateBarrier() *Barrier {
	for i := range s.barriers {
		b := &s.barriers[i]
		if b.inUse.CompareAndSwap(false, true) {
			return b
		}
	}
	return nil
}

// DestroyBarrier returns b to the pool. Every job added to b must have been
// waited for.
func (s *System) DestroyBarrier(b *Barrier) {
	if b.system != s {
		panic("barrier belongs to a different system")
	}
	if !b.IsEmpty() {
		panic("barrier destroyed while it still holds jobs")
	}
	if !b.inUse.CompareAndSwap(true, false) {
		panic("barrier is not in use")
	}
}

// WaitForJobs waits on b. It is equivalent to b.Wait().
func (s *System) WaitForJobs(b *Barrier) {
	if b.system != s {
		panic("barrier belongs to a different system")
	}
	b.Wait()
}
