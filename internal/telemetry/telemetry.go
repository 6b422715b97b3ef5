// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package telemetry configures the OpenTelemetry trace pipeline of the server.
package telemetry

import (
	"context"
	"fmt"
	"os"

	"github.com/azure/azdo-mcp/internal/tracing/fields"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/multierr"
)

const serviceName = "azdo-mcp"

// Options select where spans are exported. With neither Endpoint nor File set, tracing stays disabled.
type Options struct {
	ServiceVersion string
	Organization   string
	// Endpoint is an OTLP/HTTP traces URL, e.g. http://localhost:4318/v1/traces.
	Endpoint string
	// File receives spans as JSON lines.
	File string
}

// ShutdownFunc flushes pending spans and releases exporter resources.
type ShutdownFunc func(ctx context.Context) error

// Start installs a global tracer provider exporting to the configured destinations.
func Start(ctx context.Context, options Options) (ShutdownFunc, error) {
	if options.Endpoint == "" && options.File == "" {
		return func(context.Context) error { return nil }, nil
	}

	var closers []func() error
	providerOptions := []trace.TracerProviderOption{
		trace.WithResource(newResource(options)),
	}

	if options.Endpoint != "" {
		exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(options.Endpoint))
		if err != nil {
			return nil, fmt.Errorf("creating otlp trace exporter: %w", err)
		}
		providerOptions = append(providerOptions, trace.WithBatcher(exporter))
	}

	if options.File != "" {
		f, err := os.OpenFile(options.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, fmt.Errorf("opening trace file: %w", err)
		}
		closers = append(closers, f.Close)

		exporter, err := stdouttrace.New(stdouttrace.WithWriter(f))
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("creating file trace exporter: %w", err)
		}
		providerOptions = append(providerOptions, trace.WithSyncer(exporter))
	}

	provider := trace.NewTracerProvider(providerOptions...)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return func(ctx context.Context) error {
		err := provider.Shutdown(ctx)
		for _, closeFn := range closers {
			err = multierr.Append(err, closeFn())
		}

		return err
	}, nil
}

func newResource(options Options) *resource.Resource {
	attrs := []attribute.KeyValue{
		fields.ServiceNameKey.String(serviceName),
		fields.ServiceVersionKey.String(options.ServiceVersion),
	}

	if options.Organization != "" {
		attrs = append(attrs, fields.StringHashed(fields.OrganizationKey.Key, options.Organization))
	}

	return resource.NewSchemaless(attrs...)
}
