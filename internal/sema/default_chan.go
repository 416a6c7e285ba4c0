// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

//go:build !jobsys_condsema

package sema

// NewDefaultParker returns the [Parker] selected for this build. Build with
// the jobsys_condsema tag to use [CondParker] instead.
func NewDefaultParker(maxWaiters int) Parker {
	return NewChanParker(maxWaiters)
}
