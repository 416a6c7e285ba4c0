// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

//go:build jobsys_condsema

package sema

// NewDefaultParker returns the [Parker] selected for this build.
func NewDefaultParker(maxWaiters int) Parker {
	return NewCondParker()
}
