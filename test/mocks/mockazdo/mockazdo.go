// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package mockazdo

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/core"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/operations"
	"github.com/stretchr/testify/mock"
)

// MockDirectory is a testify mock of the project listing and creation calls of core.Client.
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) GetProjects(
	ctx context.Context,
	args core.GetProjectsArgs,
) (*core.GetProjectsResponseValue, error) {
	callArgs := m.Called(ctx, args)
	res, _ := callArgs.Get(0).(*core.GetProjectsResponseValue)
	return res, callArgs.Error(1)
}

func (m *MockDirectory) QueueCreateProject(
	ctx context.Context,
	args core.QueueCreateProjectArgs,
) (*operations.OperationReference, error) {
	callArgs := m.Called(ctx, args)
	res, _ := callArgs.Get(0).(*operations.OperationReference)
	return res, callArgs.Error(1)
}

// MockTracker is a testify mock of operations.Client.GetOperation.
type MockTracker struct {
	mock.Mock
}

func (m *MockTracker) GetOperation(
	ctx context.Context,
	args operations.GetOperationArgs,
) (*operations.Operation, error) {
	callArgs := m.Called(ctx, args)
	res, _ := callArgs.Get(0).(*operations.Operation)
	return res, callArgs.Error(1)
}

// ReturnStatuses queues one GetOperation response per status, in order.
func (m *MockTracker) ReturnStatuses(id uuid.UUID, statuses ...operations.OperationStatus) {
	for _, status := range statuses {
		m.On("GetOperation", mock.Anything, operations.GetOperationArgs{OperationId: &id}).
			Return(Operation(id, status), nil).
			Once()
	}
}

// Projects builds a single page listing with the given project names.
func Projects(names ...string) *core.GetProjectsResponseValue {
	return ProjectsPage("", names...)
}

// ProjectsPage builds a listing page that points at the next page with continuationToken.
func ProjectsPage(continuationToken string, names ...string) *core.GetProjectsResponseValue {
	value := make([]core.TeamProjectReference, 0, len(names))
	for _, name := range names {
		id := uuid.New()
		value = append(value, core.TeamProjectReference{
			Id:   &id,
			Name: &name,
		})
	}

	return &core.GetProjectsResponseValue{
		Value:             value,
		ContinuationToken: continuationToken,
	}
}

// PageArgs returns the listing arguments expected for the page at continuationToken.
// An empty token selects the first page.
func PageArgs(continuationToken string) core.GetProjectsArgs {
	if continuationToken == "" {
		return core.GetProjectsArgs{}
	}

	token, err := strconv.Atoi(continuationToken)
	if err != nil {
		panic(err)
	}

	return core.GetProjectsArgs{ContinuationToken: &token}
}

// OperationReference builds the response of QueueCreateProject.
func OperationReference(id uuid.UUID, status operations.OperationStatus) *operations.OperationReference {
	return &operations.OperationReference{
		Id:     &id,
		Status: &status,
	}
}

// Operation builds the response of GetOperation.
func Operation(id uuid.UUID, status operations.OperationStatus) *operations.Operation {
	return &operations.Operation{
		Id:     &id,
		Status: &status,
	}
}
