// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package state

import (
	"sync/atomic"
)

// RefCount is an atomic reference count that panics if it is released more
// times than it was referenced.
type RefCount struct {
	v atomic.Int32
}

// Init sets the count to n. It must not race with any other method.
func (c *RefCount) Init(n int32) {
	c.v.Store(n)
}

// Add takes an additional reference.
func (c *RefCount) Add() {
	if c.v.Add(1) <= 1 {
		panic("reference taken on a released object")
	}
}

// Release drops a reference and returns true if it was the last one.
func (c *RefCount) Release() bool {
	newValue := c.v.Add(-1)
	if newValue < 0 {
		panic("object released more times than it was referenced")
	}
	return newValue == 0
}

// Load returns the current count.
func (c *RefCount) Load() int32 {
	return c.v.Load()
}
