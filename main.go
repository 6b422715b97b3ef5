// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/azure/azdo-mcp/cmd"
	"github.com/azure/azdo-mcp/internal"
	"github.com/fatih/color"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cmd.NewRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		// Standard output carries the MCP protocol; errors only go to standard error.
		color.New(color.FgRed).Fprintf(os.Stderr, "ERROR: %v\n", err)

		if suggestion, ok := internal.SuggestionOf(err); ok {
			color.New(color.FgYellow).Fprintf(os.Stderr, "SUGGESTION: %s\n", suggestion)
		}

		os.Exit(1)
	}
}
