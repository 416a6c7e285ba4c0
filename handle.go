// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package jobsys

import (
	"github.com/petenewcomb/jobsys-go/internal/state"
)

// A JobHandle is a counted reference to a job created by [System.CreateJob].
// The zero JobHandle is invalid.
//
// A handle keeps its job's pool slot reserved until [JobHandle.Release] is
// called, so every handle obtained from CreateJob or [JobHandle.Clone] must
// eventually be released. Handles are values; copying one does not take a
// new reference.
type JobHandle struct {
	j *job
}

// IsValid returns true if the handle refers to a job.
func (h JobHandle) IsValid() bool {
	return h.j != nil
}

// IsDone returns true if the job has finished executing.
func (h JobHandle) IsDone() bool {
	return h.j != nil && h.j.deps.Done()
}

// Name returns the diagnostic name the job was created with.
func (h JobHandle) Name() string {
	return h.mustJob().name
}

// Color returns the diagnostic color the job was created with.
func (h JobHandle) Color() Color {
	return h.mustJob().color
}

// Clone returns a new reference to the same job. The clone must be released
// separately.
func (h JobHandle) Clone() JobHandle {
	if h.j != nil {
		h.j.addRef()
	}
	return h
}

// Release drops the reference held by h and invalidates it. Releasing an
// invalid handle does nothing.
func (h *JobHandle) Release() {
	if h.j != nil {
		h.j.release()
		h.j = nil
	}
}

// AddDependency raises the number of prerequisites the job waits for. The job
// must not yet be queued.
func (h JobHandle) AddDependency(count int) {
	h.mustJob().deps.Add(dependencyCount(count))
}

// RemoveDependency lowers the number of prerequisites the job waits for,
// queueing it if none remain.
func (h JobHandle) RemoveDependency(count int) {
	j := h.mustJob()
	if j.deps.Remove(dependencyCount(count)) {
		j.system.queueJob(j)
	}
}

// RemoveDependencies calls RemoveDependency on each handle, then queues all of
// the jobs that became ready in one batch. All handles must belong to the same
// System.
func RemoveDependencies(handles []JobHandle, count int) {
	if len(handles) == 0 {
		return
	}
	n := dependencyCount(count)
	var s *System
	ready := make([]*job, 0, len(handles))
	for _, h := range handles {
		j := h.mustJob()
		if s == nil {
			s = j.system
		} else if s != j.system {
			panic("job handles belong to different systems")
		}
		if j.deps.Remove(n) {
			ready = append(ready, j)
		}
	}
	s.queueJobs(ready)
}

func (h JobHandle) mustJob() *job {
	if h.j == nil {
		panic("invalid job handle")
	}
	return h.j
}

func dependencyCount(count int) uint32 {
	if count <= 0 {
		panic("dependency count must be positive")
	}
	if uint64(count) > uint64(state.MaxDependencies) {
		panic("too many dependencies")
	}
	return uint32(count)
}
