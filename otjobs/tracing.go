// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otjobs

import (
	"context"

	"github.com/petenewcomb/jobsys-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracedJob wraps fn in a span with the given operation name. The span is
// started when the job runs, not when it is created, and is parented to the
// span in ctx at creation time.
func TracedJob(ctx context.Context, operationName string, fn func(ctx context.Context)) jobsys.JobFunction {
	return PropagateJob(ctx, func(ctx context.Context) {
		runTraced(ctx, operationName, fn)
	})
}

func runTraced(ctx context.Context, operationName string, fn func(ctx context.Context)) {
	tracer := otel.Tracer(instrumentationName)
	ctx, span := tracer.Start(ctx, operationName, trace.WithSpanKind(trace.SpanKindInternal))
	completed := false
	defer func() {
		if !completed {
			span.SetStatus(codes.Error, "job panicked")
		}
		span.End()
	}()

	fn(ctx)
	completed = true
}
