// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package state

import (
	"sync/atomic"
)

// The dependency countdown doubles as the execution state of a job. Values
// below dependenciesLimit count unmet prerequisites; the two sentinels mark a
// job that has been claimed for execution and one that has finished.
const (
	dependenciesExecuting uint32 = 0xe0e0e0e0
	dependenciesDone      uint32 = 0xd0d0d0d0
	dependenciesLimit     uint32 = 0xd0000000
)

// MaxDependencies is the largest countdown a job may carry.
const MaxDependencies = dependenciesLimit - 1

// Dependencies tracks how many prerequisites a job is still waiting for and,
// once there are none, whether it is running or done.
type Dependencies struct {
	v atomic.Uint32
}

// Init sets the countdown to n. It must not race with any other method.
func (d *Dependencies) Init(n uint32) {
	if n > MaxDependencies {
		panic("too many dependencies")
	}
	d.v.Store(n)
}

// Add raises the countdown by n. Only a job that is still waiting for at least
// one prerequisite may gain more.
func (d *Dependencies) Add(n uint32) {
	for {
		oldValue := d.v.Load()
		if oldValue == 0 || oldValue >= dependenciesLimit {
			panic("cannot add a dependency to a job that is queued, running or done")
		}
		if n > MaxDependencies-oldValue {
			panic("too many dependencies")
		}
		if d.v.CompareAndSwap(oldValue, oldValue+n) {
			return
		}
	}
}

// Remove lowers the countdown by n and returns true if it reached zero, at
// which point the job is ready to run.
func (d *Dependencies) Remove(n uint32) bool {
	for {
		oldValue := d.v.Load()
		if oldValue < n || oldValue >= dependenciesLimit {
			panic("cannot remove more dependencies than remain")
		}
		if d.v.CompareAndSwap(oldValue, oldValue-n) {
			return oldValue == n
		}
	}
}

// Ready returns true if the job has no unmet prerequisites and has not yet
// been claimed for execution.
func (d *Dependencies) Ready() bool {
	return d.v.Load() == 0
}

// Done returns true once the job has finished running.
func (d *Dependencies) Done() bool {
	return d.v.Load() == dependenciesDone
}

// TryStart claims the job for execution. It returns false if the job is not
// ready, is already running, or is done.
func (d *Dependencies) TryStart() bool {
	return d.v.CompareAndSwap(0, dependenciesExecuting)
}

// Finish marks a job claimed by TryStart as done.
func (d *Dependencies) Finish() {
	if !d.v.CompareAndSwap(dependenciesExecuting, dependenciesDone) {
		panic("job finished without being started")
	}
}
