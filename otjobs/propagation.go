// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package otjobs provides OpenTelemetry and zap instrumentation for jobsys
// jobs. Job functions take no arguments, so each wrapper captures what it
// needs (a context, a name) when the job is created and applies it when the
// job eventually runs on whichever goroutine claims it.
package otjobs

import (
	"context"

	"github.com/petenewcomb/jobsys-go"
)

const instrumentationName = "otjobs"

// PropagateJob binds ctx to a context-aware function, producing a job
// function. The job sees ctx's values, including its trace span, but not its
// cancellation: once queued, a job always runs.
func PropagateJob(ctx context.Context, fn func(ctx context.Context)) jobsys.JobFunction {
	jobCtx := context.WithoutCancel(ctx)
	return func() {
		fn(jobCtx)
	}
}
