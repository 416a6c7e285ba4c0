// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package graph

type constError string

func (e constError) Error() string {
	return string(e)
}

const ErrEmptyName = constError("node name is empty")
const ErrDuplicateNode = constError("duplicate node")
const ErrUnknownDependency = constError("unknown dependency")
const ErrCycle = constError("dependency cycle")
const ErrGraphTooLarge = constError("graph too large for job system")
