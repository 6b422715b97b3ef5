// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package tools

import (
	"context"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/azure/azdo-mcp/pkg/azdo"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CreateProjectToolName is the name under which the tool is exposed to MCP clients.
const CreateProjectToolName = "create_project"

// ProjectCreator runs the project creation workflow.
type ProjectCreator interface {
	Create(ctx context.Context, name string) (azdo.Outcome, error)
}

// OutcomeRecorder is notified of every workflow outcome.
type OutcomeRecorder interface {
	ObserveProjectOutcome(outcome string)
}

// NewCreateProjectTool creates the tool that creates an Azure DevOps project unless it already exists.
// recorder may be nil.
func NewCreateProjectTool(creator ProjectCreator, recorder OutcomeRecorder) server.ServerTool {
	return server.ServerTool{
		Tool: mcp.NewTool(
			CreateProjectToolName,
			mcp.WithTitleAnnotation("Create Azure DevOps project"),
			mcp.WithReadOnlyHintAnnotation(false),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithOpenWorldHintAnnotation(true),
			mcp.WithDescription(heredoc.Doc(`
				Create a new Azure DevOps project with the specified name.

				Checks whether a project with the given name already exists (case-insensitive). If it does not,
				creates a private Git project and waits until the creation completes.

				Returns one of:
				- "<project_name> Already Exist Project"
				- "<project_name> Created Successfully"
				- "<project_name> Failed to create."
			`)),
			mcp.WithString("project_name",
				mcp.Description("The name of the project to create"),
				mcp.Required(),
			),
		),
		Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projectName, err := request.RequireString("project_name")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			if strings.TrimSpace(projectName) == "" {
				return mcp.NewToolResultError("project_name must not be empty"), nil
			}

			outcome, err := creator.Create(ctx, projectName)
			if err != nil {
				return nil, err
			}

			if recorder != nil {
				recorder.ObserveProjectOutcome(string(outcome))
			}

			return mcp.NewToolResultText(outcome.Message(projectName)), nil
		},
	}
}
