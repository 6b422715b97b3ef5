// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azdo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/azure/azdo-mcp/pkg/azdo"
	"github.com/azure/azdo-mcp/test/mocks/mockazdo"
	"github.com/google/uuid"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/core"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/operations"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type staticClients struct {
	clients *azdo.Clients
	err     error
	calls   int
}

func (s *staticClients) Clients(ctx context.Context) (*azdo.Clients, error) {
	s.calls++
	return s.clients, s.err
}

type workflowFixture struct {
	directory *mockazdo.MockDirectory
	tracker   *mockazdo.MockTracker
	factory   *staticClients
	creator   *azdo.ProjectCreator
}

func newWorkflowFixture(options azdo.CreateOptions) *workflowFixture {
	directory := &mockazdo.MockDirectory{}
	tracker := &mockazdo.MockTracker{}
	factory := &staticClients{
		clients: &azdo.Clients{Directory: directory, Tracker: tracker},
	}

	if options.Poll.Interval == 0 {
		options.Poll.Interval = time.Millisecond
	}

	return &workflowFixture{
		directory: directory,
		tracker:   tracker,
		factory:   factory,
		creator:   azdo.NewProjectCreator(factory, options, nil),
	}
}

func isProjectDescriptor(name string, templateId string) func(core.QueueCreateProjectArgs) bool {
	return func(args core.QueueCreateProjectArgs) bool {
		project := args.ProjectToCreate
		if project == nil || project.Name == nil || project.Description == nil ||
			project.Visibility == nil || project.Capabilities == nil {
			return false
		}

		capabilities := *project.Capabilities
		return *project.Name == name &&
			*project.Description == "Project created using MCP" &&
			*project.Visibility == core.ProjectVisibilityValues.Private &&
			capabilities["versioncontrol"]["sourceControlType"] == "Git" &&
			capabilities["processTemplate"]["templateTypeId"] == templateId
	}
}

func TestCreateProject_AlreadyExists(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		request  string
	}{
		{"SameCase", []string{"Alpha"}, "Alpha"},
		{"LowerCaseRequest", []string{"Alpha"}, "alpha"},
		{"UpperCaseRequest", []string{"myproj"}, "MYPROJ"},
		{"MixedCaseRequest", []string{"other", "myproj"}, "MyProj"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWorkflowFixture(azdo.CreateOptions{})
			f.directory.On("GetProjects", mock.Anything, mockazdo.PageArgs("")).
				Return(mockazdo.Projects(tt.existing...), nil)

			result, err := f.creator.CreateProject(context.Background(), tt.request)
			require.NoError(t, err)
			require.Equal(t, tt.request+" Already Exist Project", result)

			f.directory.AssertNotCalled(t, "QueueCreateProject", mock.Anything, mock.Anything)
			f.tracker.AssertNotCalled(t, "GetOperation", mock.Anything, mock.Anything)
			require.Equal(t, 1, f.factory.calls)
		})
	}
}

func TestCreateProject_Succeeds(t *testing.T) {
	tests := []struct {
		name     string
		statuses []operations.OperationStatus
	}{
		{"Immediate", []operations.OperationStatus{operations.OperationStatusValues.Succeeded}},
		{"AfterInProgress", []operations.OperationStatus{
			operations.OperationStatusValues.InProgress,
			operations.OperationStatusValues.InProgress,
			operations.OperationStatusValues.Succeeded,
		}},
		{"AfterQueued", []operations.OperationStatus{
			operations.OperationStatusValues.Queued,
			operations.OperationStatusValues.InProgress,
			operations.OperationStatusValues.InProgress,
			operations.OperationStatusValues.Succeeded,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWorkflowFixture(azdo.CreateOptions{})
			operationId := uuid.New()

			f.directory.On("GetProjects", mock.Anything, mockazdo.PageArgs("")).
				Return(mockazdo.Projects(), nil)
			f.directory.On(
				"QueueCreateProject",
				mock.Anything,
				mock.MatchedBy(isProjectDescriptor("Beta", azdo.DefaultProcessTemplateId)),
			).Return(mockazdo.OperationReference(operationId, operations.OperationStatusValues.Queued), nil).Once()
			f.tracker.ReturnStatuses(operationId, tt.statuses...)

			result, err := f.creator.CreateProject(context.Background(), "Beta")
			require.NoError(t, err)
			require.Equal(t, "Beta Created Successfully", result)

			f.directory.AssertNumberOfCalls(t, "QueueCreateProject", 1)
			f.tracker.AssertNumberOfCalls(t, "GetOperation", len(tt.statuses))
			f.tracker.AssertExpectations(t)
		})
	}
}

func TestCreateProject_Fails(t *testing.T) {
	tests := []struct {
		name     string
		statuses []operations.OperationStatus
	}{
		{"Failed", []operations.OperationStatus{operations.OperationStatusValues.Failed}},
		{"Cancelled", []operations.OperationStatus{operations.OperationStatusValues.Cancelled}},
		{"FailedAfterInProgress", []operations.OperationStatus{
			operations.OperationStatusValues.InProgress,
			operations.OperationStatusValues.Failed,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWorkflowFixture(azdo.CreateOptions{})
			operationId := uuid.New()

			f.directory.On("GetProjects", mock.Anything, mockazdo.PageArgs("")).
				Return(mockazdo.Projects("Alpha"), nil)
			f.directory.On("QueueCreateProject", mock.Anything, mock.Anything).
				Return(mockazdo.OperationReference(operationId, operations.OperationStatusValues.InProgress), nil)
			f.tracker.ReturnStatuses(operationId, tt.statuses...)

			result, err := f.creator.CreateProject(context.Background(), "Gamma")
			require.NoError(t, err)
			require.Equal(t, "Gamma Failed to create.", result)
			f.tracker.AssertNumberOfCalls(t, "GetOperation", len(tt.statuses))
		})
	}
}

func TestCreateProject_TerminalSubmission(t *testing.T) {
	f := newWorkflowFixture(azdo.CreateOptions{})
	operationId := uuid.New()

	f.directory.On("GetProjects", mock.Anything, mockazdo.PageArgs("")).Return(mockazdo.Projects(), nil)
	f.directory.On("QueueCreateProject", mock.Anything, mock.Anything).
		Return(mockazdo.OperationReference(operationId, operations.OperationStatusValues.Succeeded), nil)

	result, err := f.creator.CreateProject(context.Background(), "Delta")
	require.NoError(t, err)
	require.Equal(t, "Delta Created Successfully", result)
	f.tracker.AssertNotCalled(t, "GetOperation", mock.Anything, mock.Anything)
}

func TestCreateProject_ProcessTemplateOverride(t *testing.T) {
	templateId := "adcc42ab-9882-485e-a3ed-7678f01f66bc"
	f := newWorkflowFixture(azdo.CreateOptions{ProcessTemplateId: templateId})
	operationId := uuid.New()

	f.directory.On("GetProjects", mock.Anything, mockazdo.PageArgs("")).Return(mockazdo.Projects(), nil)
	f.directory.On("QueueCreateProject", mock.Anything, mock.MatchedBy(isProjectDescriptor("Epsilon", templateId))).
		Return(mockazdo.OperationReference(operationId, operations.OperationStatusValues.Queued), nil)
	f.tracker.ReturnStatuses(operationId, operations.OperationStatusValues.Succeeded)

	result, err := f.creator.CreateProject(context.Background(), "Epsilon")
	require.NoError(t, err)
	require.Equal(t, "Epsilon Created Successfully", result)
}

func TestCreateProject_Errors(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("service unavailable")

	t.Run("EmptyName", func(t *testing.T) {
		f := newWorkflowFixture(azdo.CreateOptions{})

		_, err := f.creator.CreateProject(ctx, "  ")
		require.ErrorIs(t, err, azdo.ErrEmptyProjectName)
		require.Equal(t, 0, f.factory.calls)
	})

	t.Run("ClientFactory", func(t *testing.T) {
		f := newWorkflowFixture(azdo.CreateOptions{})
		f.factory.clients = nil
		f.factory.err = &azdo.ConfigurationError{Setting: azdo.SettingPersonalAccessToken}

		_, err := f.creator.CreateProject(ctx, "Zeta")

		var configErr *azdo.ConfigurationError
		require.ErrorAs(t, err, &configErr)
		f.directory.AssertNotCalled(t, "GetProjects", mock.Anything, mock.Anything)
	})

	t.Run("ListProjects", func(t *testing.T) {
		f := newWorkflowFixture(azdo.CreateOptions{})
		f.directory.On("GetProjects", mock.Anything, mock.Anything).Return(nil, cause)

		_, err := f.creator.CreateProject(ctx, "Zeta")

		var queryErr *azdo.DirectoryQueryError
		require.ErrorAs(t, err, &queryErr)
		require.ErrorIs(t, err, cause)
		f.directory.AssertNotCalled(t, "QueueCreateProject", mock.Anything, mock.Anything)
	})

	t.Run("QueueCreateProject", func(t *testing.T) {
		f := newWorkflowFixture(azdo.CreateOptions{})
		f.directory.On("GetProjects", mock.Anything, mock.Anything).Return(mockazdo.Projects(), nil)
		f.directory.On("QueueCreateProject", mock.Anything, mock.Anything).Return(nil, cause)

		_, err := f.creator.CreateProject(ctx, "Zeta")

		var queryErr *azdo.DirectoryQueryError
		require.ErrorAs(t, err, &queryErr)
		require.ErrorIs(t, err, cause)
		f.tracker.AssertNotCalled(t, "GetOperation", mock.Anything, mock.Anything)
	})

	t.Run("GetOperation", func(t *testing.T) {
		f := newWorkflowFixture(azdo.CreateOptions{})
		operationId := uuid.New()
		f.directory.On("GetProjects", mock.Anything, mock.Anything).Return(mockazdo.Projects(), nil)
		f.directory.On("QueueCreateProject", mock.Anything, mock.Anything).
			Return(mockazdo.OperationReference(operationId, operations.OperationStatusValues.Queued), nil)
		f.tracker.ReturnStatuses(operationId, operations.OperationStatusValues.InProgress)
		f.tracker.On("GetOperation", mock.Anything, mock.Anything).Return(nil, cause).Once()

		_, err := f.creator.CreateProject(ctx, "Zeta")

		var trackerErr *azdo.TrackerQueryError
		require.ErrorAs(t, err, &trackerErr)
		require.Equal(t, operationId, trackerErr.OperationId)
		require.ErrorIs(t, err, cause)
		f.tracker.AssertNumberOfCalls(t, "GetOperation", 2)
	})
}

func TestProjectExists(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyDirectory", func(t *testing.T) {
		directory := &mockazdo.MockDirectory{}
		directory.On("GetProjects", mock.Anything, mockazdo.PageArgs("")).Return(mockazdo.Projects(), nil)

		exists, err := azdo.ProjectExists(ctx, directory, "Alpha")
		require.NoError(t, err)
		require.False(t, exists)
	})

	t.Run("NoPartialMatch", func(t *testing.T) {
		directory := &mockazdo.MockDirectory{}
		directory.On("GetProjects", mock.Anything, mockazdo.PageArgs("")).
			Return(mockazdo.Projects("Alpha2", "Alph"), nil)

		exists, err := azdo.ProjectExists(ctx, directory, "Alpha")
		require.NoError(t, err)
		require.False(t, exists)
	})

	t.Run("MatchOnLaterPage", func(t *testing.T) {
		directory := &mockazdo.MockDirectory{}
		directory.On("GetProjects", mock.Anything, mockazdo.PageArgs("")).
			Return(mockazdo.ProjectsPage("100", "one", "two"), nil).Once()
		directory.On("GetProjects", mock.Anything, mockazdo.PageArgs("100")).
			Return(mockazdo.ProjectsPage("200", "three"), nil).Once()
		directory.On("GetProjects", mock.Anything, mockazdo.PageArgs("200")).
			Return(mockazdo.ProjectsPage("", "MyProj"), nil).Once()

		exists, err := azdo.ProjectExists(ctx, directory, "myproj")
		require.NoError(t, err)
		require.True(t, exists)
		directory.AssertExpectations(t)
	})

	t.Run("StopsOnRepeatedToken", func(t *testing.T) {
		directory := &mockazdo.MockDirectory{}
		directory.On("GetProjects", mock.Anything, mockazdo.PageArgs("")).
			Return(mockazdo.ProjectsPage("100", "one"), nil).Once()
		directory.On("GetProjects", mock.Anything, mockazdo.PageArgs("100")).
			Return(mockazdo.ProjectsPage("100", "two"), nil).Once()

		exists, err := azdo.ProjectExists(ctx, directory, "three")
		require.NoError(t, err)
		require.False(t, exists)
		directory.AssertNumberOfCalls(t, "GetProjects", 2)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		directory := &mockazdo.MockDirectory{}
		directory.On("GetProjects", mock.Anything, mockazdo.PageArgs("")).
			Return(mockazdo.ProjectsPage("not-a-number", "one"), nil)

		_, err := azdo.ProjectExists(ctx, directory, "two")

		var queryErr *azdo.DirectoryQueryError
		require.ErrorAs(t, err, &queryErr)
	})
}

func TestOutcomeMessage(t *testing.T) {
	require.Equal(t, "alpha Already Exist Project", azdo.OutcomeAlreadyExists.Message("alpha"))
	require.Equal(t, "Beta Created Successfully", azdo.OutcomeSucceeded.Message("Beta"))
	require.Equal(t, "Beta Failed to create.", azdo.OutcomeFailed.Message("Beta"))
}
