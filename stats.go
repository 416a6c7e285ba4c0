// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package jobsys

import (
	"sync/atomic"
)

// Stats is a snapshot of a System's counters.
type Stats struct {
	JobsCreated            int64
	JobsExecutedByWorkers  int64
	JobsExecutedInWait     int64
	JobsExecutedAtShutdown int64

	// Each stall counter counts episodes, not retries.
	JobPoolStalls     int64
	BarrierPoolStalls int64
	QueueStalls       int64
	BarrierStalls     int64
}

// JobsExecuted returns the total number of jobs executed.
func (s Stats) JobsExecuted() int64 {
	return s.JobsExecutedByWorkers + s.JobsExecutedInWait + s.JobsExecutedAtShutdown
}

type stats struct {
	created            atomic.Int64
	executedByWorkers  atomic.Int64
	executedInWait     atomic.Int64
	executedAtShutdown atomic.Int64
	stalls             [resourceCount]atomic.Int64
}

func (s *stats) snapshot() Stats {
	return Stats{
		JobsCreated:            s.created.Load(),
		JobsExecutedByWorkers:  s.executedByWorkers.Load(),
		JobsExecutedInWait:     s.executedInWait.Load(),
		JobsExecutedAtShutdown: s.executedAtShutdown.Load(),
		JobPoolStalls:          s.stalls[resourceJobPool].Load(),
		BarrierPoolStalls:      s.stalls[resourceBarrierPool].Load(),
		QueueStalls:            s.stalls[resourceQueue].Load(),
		BarrierStalls:          s.stalls[resourceBarrier].Load(),
	}
}
