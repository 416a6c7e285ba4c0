// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otjobs

import (
	"time"

	"github.com/petenewcomb/jobsys-go"
	"go.uber.org/zap"
)

// LoggedJob adds structured logging to a job function. It logs the start and
// completion of the job at debug level, with its duration, and logs at error
// level if the job panics.
func LoggedJob(jobName string, fn jobsys.JobFunction) jobsys.JobFunction {
	return func() {
		runLogged(jobName, fn)
	}
}

func runLogged(jobName string, fn func()) {
	// This implementation uses the global zap logger so that wrapping a job
	// needs no plumbing.
	logger := zap.L().With(
		zap.String("job", jobName),
		zap.String("component", instrumentationName))

	logger.Debug("Starting job")
	startTime := time.Now()
	completed := false
	defer func() {
		if !completed {
			logger.Error("Job panicked", zap.Duration("duration", time.Since(startTime)))
		}
	}()

	fn()
	completed = true
	logger.Debug("Job completed", zap.Duration("duration", time.Since(startTime)))
}
