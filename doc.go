// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package jobsys provides a job system: a fixed pool of worker goroutines
// draining a bounded lock-free queue of dependency-gated jobs, plus barriers
// that let a caller wait for a batch of jobs while helping to execute them.
//
// A [System] is sized once at creation: the maximum number of live jobs, the
// maximum number of live barriers, and the number of worker goroutines. Jobs
// and barriers are drawn from fixed pools, so the steady state allocates
// nothing. Running out of either is treated as a sizing mistake rather than an
// error: the caller stalls, with a warning logged, until another goroutine
// returns capacity.
//
// Each job is created with a count of unmet dependencies. A job with none is
// queued immediately; any other job is queued when its count reaches zero
// through [JobHandle.RemoveDependency], which is how an outside graph builder
// (such as the graph subpackage) expresses "this job's prerequisites are
// done". A job runs exactly once, on whichever goroutine claims it first.
//
// A [Barrier] collects jobs and [Barrier.Wait] returns once all of them are
// done. While waiting, the calling goroutine executes any collected job that
// is ready, so a System with zero workers is still fully functional: all work
// then happens inside Wait.
package jobsys
