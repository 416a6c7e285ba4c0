// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package sim generates random job graphs for property tests. A plan is a
// directed acyclic graph of nodes, each with some simulated self time, drawn
// according to a set of configuration parameters that determine the size and
// density of the graph. A [Recorder] instruments a plan's nodes so that a test
// can check afterward that every node ran exactly once and never before its
// dependencies finished.
package sim
