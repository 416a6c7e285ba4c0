// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otjobs

import (
	"context"
	"time"

	"github.com/petenewcomb/jobsys-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type jobMetrics struct {
	count    metric.Int64Counter
	duration metric.Float64Histogram
	panics   metric.Int64Counter
}

func newJobMetrics(metricName string) jobMetrics {
	meter := otel.GetMeterProvider().Meter(instrumentationName)

	var m jobMetrics
	m.count, _ = meter.Int64Counter(metricName + ".count")
	m.duration, _ = meter.Float64Histogram(metricName + ".duration")
	m.panics, _ = meter.Int64Counter(metricName + ".panics")
	return m
}

func (m jobMetrics) run(ctx context.Context, fn func()) {
	startTime := time.Now()
	m.count.Add(ctx, 1)

	didPanic := true
	defer func() {
		m.duration.Record(ctx, time.Since(startTime).Seconds())
		if didPanic {
			m.panics.Add(ctx, 1)
		}
	}()

	fn()
	didPanic = false
}

// MetricsJob adds metrics collection to a job function: a count of runs, a
// histogram of durations in seconds, and a count of panics. The instruments
// are created once, when the job function is wrapped.
func MetricsJob(metricName string, fn jobsys.JobFunction) jobsys.JobFunction {
	m := newJobMetrics(metricName)
	return func() {
		m.run(context.Background(), fn)
	}
}
