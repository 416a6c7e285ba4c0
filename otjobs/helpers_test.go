// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otjobs_test

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

func spanIsRecording(ctx context.Context) bool {
	return trace.SpanFromContext(ctx).IsRecording()
}
