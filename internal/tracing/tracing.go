// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package tracing starts spans for the server's operations.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/azure/azdo-mcp"

// Span is a trace.Span that can also end itself with the status derived from an error.
type Span interface {
	trace.Span

	// EndWithStatus sets the span status from err and ends the span.
	EndWithStatus(err error, options ...trace.SpanEndOption)
}

type span struct {
	trace.Span
}

func (s *span) EndWithStatus(err error, options ...trace.SpanEndOption) {
	if err != nil {
		s.RecordError(err)
		s.SetStatus(codes.Error, err.Error())
	} else {
		s.SetStatus(codes.Ok, "")
	}

	s.End(options...)
}

// Start creates a span using the globally registered tracer provider.
func Start(ctx context.Context, name string, options ...trace.SpanStartOption) (context.Context, Span) {
	ctx, s := otel.Tracer(instrumentationName).Start(ctx, name, options...)
	return ctx, &span{Span: s}
}
