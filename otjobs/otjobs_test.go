// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otjobs_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/petenewcomb/jobsys-go"
	"github.com/petenewcomb/jobsys-go/otjobs"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observeLogs(t *testing.T) *observer.ObservedLogs {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)
	return logs
}

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	old := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(old)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func runJob(t *testing.T, fn jobsys.JobFunction) {
	s := jobsys.NewSystem(4, 1, 1)
	defer s.Stop()
	h := s.CreateJob("test", jobsys.ColorGreen, fn, 0)
	b := s.CreateBarrier()
	b.AddJob(h)
	b.Wait()
	s.DestroyBarrier(b)
	require.True(t, h.IsDone())
	h.Release()
}

func TestLoggedJob(t *testing.T) {
	chk := require.New(t)
	logs := observeLogs(t)

	var ran atomic.Bool
	runJob(t, otjobs.LoggedJob("logged", func() { ran.Store(true) }))
	chk.True(ran.Load())

	chk.Equal(1, logs.FilterMessage("Starting job").Len())
	completed := logs.FilterMessage("Job completed").All()
	chk.Len(completed, 1)
	fields := completed[0].ContextMap()
	chk.Equal("logged", fields["job"])
	chk.Equal("otjobs", fields["component"])
	chk.Contains(fields, "duration")
}

func TestLoggedJobPanic(t *testing.T) {
	chk := require.New(t)
	logs := observeLogs(t)

	fn := otjobs.LoggedJob("explosive", func() { panic("boom") })
	chk.PanicsWithValue("boom", func() { fn() })
	chk.Equal(1, logs.FilterMessage("Job panicked").FilterLevelExact(zapcore.ErrorLevel).Len())
	chk.Zero(logs.FilterMessage("Job completed").Len())
}

func TestMetricsJob(t *testing.T) {
	chk := require.New(t)

	var count atomic.Int32
	fn := otjobs.MetricsJob("counted", func() { count.Add(1) })
	runJob(t, fn)
	chk.Equal(int32(1), count.Load())

	explosive := otjobs.MetricsJob("explosive", func() { panic("boom") })
	chk.PanicsWithValue("boom", func() { explosive() })
}

func TestTracedJobParentsSpan(t *testing.T) {
	chk := require.New(t)
	sr := recordSpans(t)

	ctx, cancel := context.WithCancel(context.Background())
	ctx, root := otel.Tracer("test").Start(ctx, "root")
	var sawCanceled atomic.Bool
	fn := otjobs.TracedJob(ctx, "traced", func(ctx context.Context) {
		sawCanceled.Store(ctx.Err() != nil)
	})

	// The job outlives the creator's cancellation.
	cancel()
	runJob(t, fn)
	root.End()
	chk.False(sawCanceled.Load())

	spans := sr.Ended()
	chk.Len(spans, 2)
	traced := spans[0]
	chk.Equal("traced", traced.Name())
	chk.Equal(root.SpanContext().SpanID(), traced.Parent().SpanID())
	chk.Equal(root.SpanContext().TraceID(), traced.SpanContext().TraceID())
	chk.Equal(codes.Unset, traced.Status().Code)
}

func TestTracedJobPanicMarksSpan(t *testing.T) {
	chk := require.New(t)
	sr := recordSpans(t)

	fn := otjobs.TracedJob(context.Background(), "explosive", func(context.Context) { panic("boom") })
	chk.PanicsWithValue("boom", func() { fn() })

	spans := sr.Ended()
	chk.Len(spans, 1)
	chk.Equal(codes.Error, spans[0].Status().Code)
	chk.Equal("job panicked", spans[0].Status().Description)
}

func TestCreateInstrumentedJob(t *testing.T) {
	chk := require.New(t)
	logs := observeLogs(t)
	sr := recordSpans(t)

	s := jobsys.NewSystem(16, 1, 2)
	defer s.Stop()

	var inSpan atomic.Bool
	ctx := context.Background()
	b := s.CreateBarrier()
	h := otjobs.CreateInstrumentedJob(ctx, s, "instrumented", jobsys.ColorCyan, func(ctx context.Context) {
		inSpan.Store(spanIsRecording(ctx))
	}, 0)
	b.AddJob(h)
	b.Wait()
	s.DestroyBarrier(b)
	chk.Equal("instrumented", h.Name())
	h.Release()

	chk.True(inSpan.Load())
	chk.Len(sr.Ended(), 1)
	chk.Equal("instrumented", sr.Ended()[0].Name())
	chk.Equal(1, logs.FilterMessage("Job completed").Len())
}
