// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package mcp hosts the Model Context Protocol server that exposes the Azure DevOps tools.
package mcp

import (
	"bufio"
	"context"
	"io"
	"time"

	"github.com/azure/azdo-mcp/internal"
	"github.com/azure/azdo-mcp/internal/logging"
	"github.com/azure/azdo-mcp/internal/tracing"
	"github.com/azure/azdo-mcp/internal/tracing/events"
	"github.com/azure/azdo-mcp/internal/tracing/fields"
	"github.com/benbjohnson/clock"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// ServerName is reported to clients during initialization.
const ServerName = "ado"

// ToolObserver records the result of every tool call.
type ToolObserver interface {
	ObserveToolCall(tool string, result string, duration time.Duration)
}

const (
	resultOk        = "ok"
	resultToolError = "tool_error"
	resultError     = "error"
)

// NewServer creates the MCP server with the given tools registered. observer may be nil.
func NewServer(version string, logger *zap.Logger, observer ToolObserver, tools ...server.ServerTool) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName, version,
		server.WithToolCapabilities(false),
		server.WithToolHandlerMiddleware(observeToolCalls(logger, observer, clock.New())),
		server.WithRecovery(),
	)

	s.AddTools(tools...)

	return s
}

// Serve runs the stdio transport until in is exhausted or ctx is done. At end of input it returns once every
// tool call read so far has written its response.
func Serve(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer, logger *zap.Logger) error {
	stdio := server.NewStdioServer(s)
	stdio.SetErrorLogger(logging.NewStdLog(logger))

	pending := newPendingCalls()
	reader := &requestReader{reader: bufio.NewReader(in), pending: pending}
	writer := &responseWriter{writer: out, pending: pending}

	logger.Info("serving MCP on stdio", zap.String("server", ServerName))
	if err := stdio.Listen(ctx, reader, writer); err != nil {
		return err
	}

	if n := pending.len(); n > 0 {
		logger.Info("input closed, waiting for in-flight tool calls", zap.Int("calls", n))
	}

	return pending.wait(ctx)
}

func observeToolCalls(logger *zap.Logger, observer ToolObserver, clock clock.Clock) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			tool := request.Params.Name
			start := clock.Now()

			ctx, span := tracing.Start(ctx, events.McpToolEventPrefix+tool)
			span.SetAttributes(fields.ToolNameKey.String(tool))

			log := logger.With(zap.String("tool", tool))
			log.Debug("tool call started")

			result, err := next(ctx, request)

			outcome := resultOk
			switch {
			case err != nil:
				outcome = resultError
			case result != nil && result.IsError:
				outcome = resultToolError
			}

			duration := clock.Since(start)
			span.SetAttributes(fields.ToolResultKey.String(outcome))
			if err != nil {
				span.SetAttributes(fields.ErrorKey(fields.ToolNameKey.Key).String(tool))
			}
			span.EndWithStatus(err)

			if observer != nil {
				observer.ObserveToolCall(tool, outcome, duration)
			}

			if err != nil {
				traceId := span.SpanContext().TraceID()
				log.Error("tool call failed",
					zap.Error(err),
					zap.Duration("duration", duration),
					zap.Stringer("traceId", traceId))

				if traceId.IsValid() {
					err = &internal.ErrorWithTraceId{TraceId: traceId.String(), Err: err}
				}

				return nil, err
			}

			log.Info("tool call completed", zap.String("result", outcome), zap.Duration("duration", duration))
			return result, nil
		}
	}
}
