// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package events provides definitions of the span names emitted by the server.
package events

// Tool call span names follow the convention mcp.tool.<tool name>.
//
// Examples:
//   - mcp.tool.create_project
const McpToolEventPrefix = "mcp.tool."

// ProjectCreateEvent is the name of the event which tracks the overall project creation workflow.
const ProjectCreateEvent = "azdo.project.create"

// OperationWaitEvent is the name of the event which tracks polling of a long running operation.
const OperationWaitEvent = "azdo.operation.wait"
