// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package metrics exposes Prometheus metrics for tool calls and project creation.
//
// Metrics:
//   - azdo_mcp_tool_calls_total{tool,result} - tool calls by result ("ok", "tool_error", "error")
//   - azdo_mcp_tool_call_duration_seconds{tool} - tool call latency
//   - azdo_mcp_project_outcomes_total{outcome} - workflow outcomes ("already_exists", "succeeded", "failed")
//   - azdo_mcp_operation_polls_total{status} - operation status reads by observed status
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics holds the collectors registered on a private registry.
//
// All methods are safe to call on a nil *Metrics, which records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ToolCalls       *prometheus.CounterVec
	ToolDuration    *prometheus.HistogramVec
	ProjectOutcomes *prometheus.CounterVec
	OperationPolls  *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		ToolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "azdo_mcp_tool_calls_total",
				Help: "Total number of MCP tool calls",
			},
			[]string{"tool", "result"},
		),
		ToolDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "azdo_mcp_tool_call_duration_seconds",
				Help:    "Duration of MCP tool calls in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
			},
			[]string{"tool"},
		),
		ProjectOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "azdo_mcp_project_outcomes_total",
				Help: "Total number of project creation requests by outcome",
			},
			[]string{"outcome"},
		),
		OperationPolls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "azdo_mcp_operation_polls_total",
				Help: "Total number of operation status reads by observed status",
			},
			[]string{"status"},
		),
	}
}

func (m *Metrics) ObserveToolCall(tool string, result string, duration time.Duration) {
	if m == nil {
		return
	}

	m.ToolCalls.WithLabelValues(tool, result).Inc()
	m.ToolDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

func (m *Metrics) ObserveProjectOutcome(outcome string) {
	if m == nil {
		return
	}

	m.ProjectOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveOperationPoll(status string) {
	if m == nil {
		return
	}

	m.OperationPolls.WithLabelValues(status).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}

	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve exposes /metrics on listener until ctx is done.
func (m *Metrics) Serve(ctx context.Context, listener net.Listener, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", zap.String("address", listener.Addr().String()))
	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
