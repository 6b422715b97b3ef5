// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/azure/azdo-mcp/pkg/azdo"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProjectCreator struct {
	mock.Mock
}

func (m *mockProjectCreator) Create(ctx context.Context, name string) (azdo.Outcome, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(azdo.Outcome), args.Error(1)
}

type outcomeRecorder struct {
	outcomes []string
}

func (r *outcomeRecorder) ObserveProjectOutcome(outcome string) {
	r.outcomes = append(r.outcomes, outcome)
}

func callRequest(arguments map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      CreateProjectToolName,
			Arguments: arguments,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestNewCreateProjectTool_Definition(t *testing.T) {
	tool := NewCreateProjectTool(&mockProjectCreator{}, nil)

	assert.Equal(t, "create_project", tool.Tool.Name)
	assert.True(t, strings.HasPrefix(tool.Tool.Description, "Create a new Azure DevOps project"))
	assert.Contains(t, tool.Tool.Description, "\n- \"<project_name> Failed to create.\"")
	assert.Contains(t, tool.Tool.InputSchema.Properties, "project_name")
	assert.Equal(t, []string{"project_name"}, tool.Tool.InputSchema.Required)
	require.NotNil(t, tool.Tool.Annotations.ReadOnlyHint)
	assert.False(t, *tool.Tool.Annotations.ReadOnlyHint)
	require.NotNil(t, tool.Tool.Annotations.DestructiveHint)
	assert.False(t, *tool.Tool.Annotations.DestructiveHint)
}

func TestCreateProjectTool_Outcomes(t *testing.T) {
	tests := []struct {
		name    string
		project string
		outcome azdo.Outcome
		want    string
	}{
		{"AlreadyExists", "alpha", azdo.OutcomeAlreadyExists, "alpha Already Exist Project"},
		{"Succeeded", "Beta", azdo.OutcomeSucceeded, "Beta Created Successfully"},
		{"Failed", "Gamma", azdo.OutcomeFailed, "Gamma Failed to create."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := &mockProjectCreator{}
			creator.On("Create", mock.Anything, tt.project).Return(tt.outcome, nil).Once()
			recorder := &outcomeRecorder{}

			tool := NewCreateProjectTool(creator, recorder)
			result, err := tool.Handler(context.Background(), callRequest(map[string]any{"project_name": tt.project}))

			require.NoError(t, err)
			require.False(t, result.IsError)
			require.Equal(t, tt.want, resultText(t, result))
			require.Equal(t, []string{string(tt.outcome)}, recorder.outcomes)
			creator.AssertExpectations(t)
		})
	}
}

func TestCreateProjectTool_InvalidArguments(t *testing.T) {
	tests := []struct {
		name      string
		arguments map[string]any
	}{
		{"Missing", map[string]any{}},
		{"WrongType", map[string]any{"project_name": 42}},
		{"Blank", map[string]any{"project_name": "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := &mockProjectCreator{}
			tool := NewCreateProjectTool(creator, nil)

			result, err := tool.Handler(context.Background(), callRequest(tt.arguments))

			require.NoError(t, err)
			require.True(t, result.IsError)
			creator.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateProjectTool_InfrastructureError(t *testing.T) {
	cause := &azdo.DirectoryQueryError{Op: "listing projects", Err: errors.New("401 Unauthorized")}
	creator := &mockProjectCreator{}
	creator.On("Create", mock.Anything, "Delta").Return(azdo.Outcome(""), cause)
	recorder := &outcomeRecorder{}

	tool := NewCreateProjectTool(creator, recorder)
	result, err := tool.Handler(context.Background(), callRequest(map[string]any{"project_name": "Delta"}))

	require.Nil(t, result)
	require.ErrorIs(t, err, cause)
	require.Empty(t, recorder.outcomes)
}
