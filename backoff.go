// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package jobsys

import (
	"runtime"
	"time"

	"github.com/petenewcomb/jobsys-go/internal/timerp"
	"go.uber.org/zap"
)

// A Backoff decides how a goroutine waits before retrying when a fixed
// resource (the job pool, the barrier pool, the queue, or a barrier's job
// ring) is exhausted. attempt counts the retries so far in the current stall,
// starting from zero.
type Backoff interface {
	Stall(attempt int)
}

// SleepBackoff sleeps for a fixed duration between attempts.
type SleepBackoff struct {
	Duration time.Duration
}

// DefaultBackoff is the backoff used when none is configured.
var DefaultBackoff Backoff = SleepBackoff{Duration: 100 * time.Microsecond}

func (b SleepBackoff) Stall(int) {
	timerp.Sleep(b.Duration)
}

// YieldBackoff yields the processor between attempts without sleeping. It is
// meant for tests that want stalls to resolve as quickly as possible.
type YieldBackoff struct{}

func (YieldBackoff) Stall(int) {
	runtime.Gosched()
}

type resource int

const (
	resourceJobPool resource = iota
	resourceBarrierPool
	resourceQueue
	resourceBarrier
	resourceCount
)

var resourceStallMessages = [resourceCount]string{
	resourceJobPool:     "job pool exhausted, stalling",
	resourceBarrierPool: "barrier pool exhausted, stalling",
	resourceQueue:       "job queue full, stalling",
	resourceBarrier:     "barrier full, stalling",
}

// stall tracks one episode of waiting on an exhausted resource. The warning is
// logged once per episode rather than once per attempt.
type stall struct {
	s        *System
	what     resource
	attempts int
}

func (s *System) newStall(what resource) stall {
	return stall{s: s, what: what}
}

func (st *stall) wait() {
	if st.attempts == 0 {
		st.s.stats.stalls[st.what].Add(1)
		st.s.log.Warn(resourceStallMessages[st.what])
	}
	st.s.config.Backoff.Stall(st.attempts)
	st.attempts++
}

func (st *stall) done() {
	if st.attempts > 0 {
		st.s.log.Debug("stall resolved",
			zap.String("reason", resourceStallMessages[st.what]),
			zap.Int("attempts", st.attempts))
	}
}
