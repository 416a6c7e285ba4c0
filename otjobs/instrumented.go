// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otjobs

import (
	"context"

	"github.com/petenewcomb/jobsys-go"
)

// InstrumentedJob combines tracing, metrics, and logging into a single
// wrapper. The span encloses the metrics, which enclose the logging.
func InstrumentedJob(ctx context.Context, name string, fn func(ctx context.Context)) jobsys.JobFunction {
	m := newJobMetrics(name)
	return TracedJob(ctx, name, func(ctx context.Context) {
		m.run(ctx, func() {
			runLogged(name, func() {
				fn(ctx)
			})
		})
	})
}

// CreateInstrumentedJob creates a job on s whose function is wrapped with
// InstrumentedJob, using the job name as the operation name.
func CreateInstrumentedJob(
	ctx context.Context,
	s *jobsys.System,
	name string,
	color jobsys.Color,
	fn func(ctx context.Context),
	numDependencies uint32,
) jobsys.JobHandle {
	return s.CreateJob(name, color, InstrumentedJob(ctx, name, fn), numDependencies)
}
