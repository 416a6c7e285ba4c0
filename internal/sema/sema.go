// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package sema provides the counting semaphore used to park worker goroutines
// and barrier waiters.
//
// The count is kept in an atomic integer that goes negative while goroutines
// are parked, so releases and acquires that do not cross zero never touch the
// underlying blocking primitive. Only the shortfall is handed to a [Parker],
// one unit per wake-up. The Parker is the only platform- or build-dependent
// piece; the accounting is identical regardless of which one is in use.
package sema

import (
	"sync/atomic"
)

// A Parker is the blocking primitive underneath a [Semaphore]. Post makes n
// wake-ups available and Wait consumes exactly one, blocking until one is
// available. Wake-ups are fungible: any parked goroutine may consume any
// posted wake-up.
type Parker interface {
	Post(n int)
	Wait()
}

// Semaphore is a counting semaphore. Its zero value is not usable; create one
// with [New] or [NewWithParker].
type Semaphore struct {
	// Positive values are available units. Negative values are units owed
	// to parked goroutines.
	count  atomic.Int64
	parker Parker
}

// New returns a Semaphore backed by the default [Parker] for this build.
// maxWaiters is a hint for how many goroutines may be parked at once.
func New(maxWaiters int) *Semaphore {
	return NewWithParker(NewDefaultParker(maxWaiters))
}

// NewWithParker returns a Semaphore backed by the given [Parker].
func NewWithParker(p Parker) *Semaphore {
	if p == nil {
		panic("parker must be non-nil")
	}
	return &Semaphore{parker: p}
}

// Release makes n units available and wakes at most as many parked
// goroutines as the release can satisfy.
func (s *Semaphore) Release(n int) {
	if n <= 0 {
		panic("release count must be positive")
	}
	newValue := s.count.Add(int64(n))
	oldValue := newValue - int64(n)
	if oldValue < 0 {
		s.parker.Post(int(min(newValue, 0) - oldValue))
	}
}

// Acquire consumes n units, blocking until they have been released.
func (s *Semaphore) Acquire(n int) {
	if n <= 0 {
		panic("acquire count must be positive")
	}
	newValue := s.count.Add(-int64(n))
	oldValue := newValue + int64(n)
	if newValue < 0 {
		for range min(oldValue, 0) - newValue {
			s.parker.Wait()
		}
	}
}

// Value returns a snapshot of the number of available units. A negative
// value means goroutines are parked. The result is only a hint; it may be
// stale by the time it is used.
func (s *Semaphore) Value() int {
	return int(s.count.Load())
}
