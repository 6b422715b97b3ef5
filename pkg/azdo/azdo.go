// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azdo

import (
	"context"
	"fmt"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/core"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/operations"
)

var (
	// hostname of the AzDo PaaS service.
	AzDoHostName = "dev.azure.com"
	// azure devops project description
	AzDoProjectDescription = "Project created using MCP"
	// source control type requested for new projects
	AzDoSourceControlType = "Git"
	// process template used when none is configured
	DefaultProcessTemplateId = "b8a3a935-7e91-48b8-a94c-606d37c3e9f2"
)

// ProjectDirectory lists and creates projects in an organization.
// It is satisfied by core.Client.
type ProjectDirectory interface {
	GetProjects(ctx context.Context, args core.GetProjectsArgs) (*core.GetProjectsResponseValue, error)
	QueueCreateProject(ctx context.Context, args core.QueueCreateProjectArgs) (*operations.OperationReference, error)
}

// OperationTracker reads the status of long running operations.
// It is satisfied by operations.Client.
type OperationTracker interface {
	GetOperation(ctx context.Context, args operations.GetOperationArgs) (*operations.Operation, error)
}

// Clients is the pair of capability handles used by the project creation workflow.
type Clients struct {
	Directory ProjectDirectory
	Tracker   OperationTracker
}

// ClientFactory produces authenticated clients for a single invocation.
type ClientFactory interface {
	Clients(ctx context.Context) (*Clients, error)
}

// Credentials identify the organization and the personal access token used to reach it.
type Credentials struct {
	Organization        string
	PersonalAccessToken string
}

// OrganizationUrl returns the service endpoint of the organization.
func (c Credentials) OrganizationUrl() string {
	return fmt.Sprintf("https://%s/%s", AzDoHostName, c.Organization)
}

func (c Credentials) validate() error {
	if c.Organization == "" {
		return &ConfigurationError{Setting: SettingOrganization}
	}

	if c.PersonalAccessToken == "" {
		return &ConfigurationError{Setting: SettingPersonalAccessToken}
	}

	return nil
}

// ClientProvider builds a fresh connection and client pair on every call to Clients.
type ClientProvider struct {
	credentials Credentials

	newCoreClient       func(ctx context.Context, connection *azuredevops.Connection) (core.Client, error)
	newOperationsClient func(ctx context.Context, connection *azuredevops.Connection) operations.Client
}

func NewClientProvider(credentials Credentials) *ClientProvider {
	return &ClientProvider{
		credentials:         credentials,
		newCoreClient:       core.NewClient,
		newOperationsClient: operations.NewClient,
	}
}

// Clients validates the credentials, opens a PAT connection to the organization and returns
// the directory and tracker clients bound to it.
func (p *ClientProvider) Clients(ctx context.Context) (*Clients, error) {
	connection, err := GetConnection(ctx, p.credentials)
	if err != nil {
		return nil, err
	}

	coreClient, err := p.newCoreClient(ctx, connection)
	if err != nil {
		return nil, &ClientConstructionError{Client: "core", Err: err}
	}

	operationsClient := p.newOperationsClient(ctx, connection)
	if operationsClient == nil {
		return nil, &ClientConstructionError{Client: "operations", Err: errNilClient}
	}

	return &Clients{
		Directory: coreClient,
		Tracker:   operationsClient,
	}, nil
}

// helper method to return an Azure DevOps connection used the AzDo go sdk
func GetConnection(ctx context.Context, credentials Credentials) (*azuredevops.Connection, error) {
	if err := credentials.validate(); err != nil {
		return nil, err
	}

	return azuredevops.NewPatConnection(credentials.OrganizationUrl(), credentials.PersonalAccessToken), nil
}
