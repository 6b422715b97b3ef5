// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/azure/azdo-mcp/internal"
	"github.com/azure/azdo-mcp/internal/config"
	"github.com/azure/azdo-mcp/internal/logging"
	"github.com/azure/azdo-mcp/internal/mcp"
	"github.com/azure/azdo-mcp/internal/mcp/tools"
	"github.com/azure/azdo-mcp/internal/metrics"
	"github.com/azure/azdo-mcp/internal/telemetry"
	"github.com/azure/azdo-mcp/internal/tracing"
	"github.com/azure/azdo-mcp/pkg/azdo"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/operations"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type rootFlags struct {
	configFile  string
	envFile     string
	debug       bool
	metricsAddr string
}

func (f *rootFlags) Bind(local *pflag.FlagSet) {
	local.StringVar(&f.configFile, "config", "", "Path to an optional YAML configuration file.")
	local.StringVar(&f.envFile, "env-file", config.DefaultEnvFile, "Path to an optional .env file.")
	local.BoolVar(&f.debug, "debug", false, "Enables debug logging.")
	local.StringVar(
		&f.metricsAddr,
		"metrics-addr",
		"",
		"Address to serve Prometheus metrics on, for example 127.0.0.1:9464. Overrides the configured value.",
	)
}

// NewRootCmd creates the azdo-mcp command. Running it serves the MCP tools on stdin/stdout.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "azdo-mcp",
		Short: "MCP server that creates Azure DevOps projects.",
		Long: fmt.Sprintf(
			"Serves the %s tool over the Model Context Protocol on stdio.\n\n"+
				"Credentials are read from %s and %s.",
			tools.CreateProjectToolName, config.OrganizationEnvVarName, config.PatEnvVarName,
		),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd, flags)
		},
	}

	flags.Bind(root.Flags())
	root.AddCommand(newVersionCmd())

	return root
}

func runServer(cmd *cobra.Command, flags *rootFlags) error {
	cfg, err := config.Load(config.LoadOptions{ConfigFile: flags.configFile, EnvFile: flags.envFile})
	if err != nil {
		return err
	}

	if flags.metricsAddr != "" {
		cfg.MetricsAddress = flags.metricsAddr
	}

	logger := logging.NewLogger(cmd.ErrOrStderr(), flags.debug)
	defer func() { _ = logger.Sync() }()

	logger.Debug("configuration loaded", zap.Stringer("config", cfg))

	if err := cfg.CheckCredentials(); err != nil {
		suggestion, _ := internal.SuggestionOf(err)
		logger.Warn("credentials are not configured; tool calls will fail until they are",
			zap.Error(err),
			zap.String("suggestion", suggestion))
	} else {
		logger.Info("credentials configured",
			zap.String("organization", cfg.Organization),
			logging.Secret("pat", cfg.PersonalAccessToken))
	}

	ctx := tracing.ContextFromEnv(cmd.Context())

	shutdown, err := telemetry.Start(ctx, telemetry.Options{
		ServiceVersion: internal.GetVersionNumber(),
		Organization:   cfg.Organization,
		Endpoint:       cfg.TraceEndpoint,
		File:           cfg.TraceFile,
	})
	if err != nil {
		return fmt.Errorf("starting telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("failed to flush telemetry", zap.Error(err))
		}
	}()

	m := metrics.New()
	if cfg.MetricsAddress != "" {
		listener, err := net.Listen("tcp", cfg.MetricsAddress)
		if err != nil {
			return fmt.Errorf("listening on %s: %w", cfg.MetricsAddress, err)
		}

		metricsCtx, stopMetrics := context.WithCancel(ctx)
		defer stopMetrics()

		go func() {
			if err := m.Serve(metricsCtx, listener, logger); err != nil {
				logger.Error("metrics listener stopped", zap.Error(err))
			}
		}()
	}

	options := cfg.CreateOptions()
	options.Poll.OnPoll = func(status operations.OperationStatus) {
		m.ObserveOperationPoll(string(status))
	}

	creator := azdo.NewProjectCreator(azdo.NewClientProvider(cfg.Credentials()), options, logger)
	s := mcp.NewServer(
		internal.GetVersionNumber(),
		logger,
		m,
		tools.NewCreateProjectTool(creator, m),
	)

	err = mcp.Serve(ctx, s, cmd.InOrStdin(), cmd.OutOrStdout(), logger)
	if errors.Is(err, context.Canceled) {
		logger.Info("shutting down")
		return nil
	}

	return err
}
