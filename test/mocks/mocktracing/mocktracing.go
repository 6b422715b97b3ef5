// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package mocktracing

import (
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// Install registers a recording tracer provider as the global provider for the duration of the test.
func Install(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := tracesdk.NewTracerProvider(tracesdk.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(t.Context())
	})

	return recorder
}

// Find returns the first ended span with the given name, or nil.
func Find(recorder *tracetest.SpanRecorder, name string) tracesdk.ReadOnlySpan {
	for _, span := range recorder.Ended() {
		if span.Name() == name {
			return span
		}
	}

	return nil
}

// Attribute returns the value of the attribute with the given key on span.
func Attribute(span tracesdk.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}

	return attribute.Value{}, false
}
