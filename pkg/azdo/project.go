// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azdo

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/azure/azdo-mcp/internal/tracing"
	"github.com/azure/azdo-mcp/internal/tracing/events"
	"github.com/azure/azdo-mcp/internal/tracing/fields"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/core"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/operations"
	"go.uber.org/zap"
)

// Outcome is the business result of a project creation request.
type Outcome string

const (
	OutcomeAlreadyExists Outcome = "already_exists"
	OutcomeSucceeded     Outcome = "succeeded"
	OutcomeFailed        Outcome = "failed"
)

// Message renders the outcome as reported back to the caller.
func (o Outcome) Message(projectName string) string {
	switch o {
	case OutcomeAlreadyExists:
		return fmt.Sprintf("%s Already Exist Project", projectName)
	case OutcomeSucceeded:
		return fmt.Sprintf("%s Created Successfully", projectName)
	default:
		return fmt.Sprintf("%s Failed to create.", projectName)
	}
}

// NewProjectDescriptor returns the project definition submitted for a new project.
func NewProjectDescriptor(name string, processTemplateId string) *core.TeamProject {
	if processTemplateId == "" {
		processTemplateId = DefaultProcessTemplateId
	}

	description := AzDoProjectDescription
	capabilities := map[string]map[string]string{
		"versioncontrol": {
			"sourceControlType": AzDoSourceControlType,
		},
		"processTemplate": {
			"templateTypeId": processTemplateId,
		},
	}

	return &core.TeamProject{
		Description:  &description,
		Name:         &name,
		Visibility:   &core.ProjectVisibilityValues.Private,
		Capabilities: &capabilities,
	}
}

// ProjectExists reports whether any project of the organization has the given name, ignoring case.
// Every page of the project listing is inspected.
func ProjectExists(ctx context.Context, directory ProjectDirectory, name string) (bool, error) {
	args := core.GetProjectsArgs{}
	seen := map[string]bool{}

	for {
		res, err := directory.GetProjects(ctx, args)
		if err != nil {
			return false, &DirectoryQueryError{Op: "listing projects", Err: err}
		}

		if res == nil {
			return false, nil
		}

		for _, project := range res.Value {
			if project.Name != nil && strings.EqualFold(*project.Name, name) {
				return true, nil
			}
		}

		if res.ContinuationToken == "" || seen[res.ContinuationToken] {
			return false, nil
		}
		seen[res.ContinuationToken] = true

		token, err := strconv.Atoi(res.ContinuationToken)
		if err != nil {
			return false, &DirectoryQueryError{
				Op:  "listing projects",
				Err: fmt.Errorf("invalid continuation token %q: %w", res.ContinuationToken, err),
			}
		}
		args.ContinuationToken = &token
	}
}

// CreateOptions configure the project creation workflow.
type CreateOptions struct {
	ProcessTemplateId string
	Poll              PollOptions
}

// ProjectCreator creates projects that do not exist yet and waits for the creation to finish.
type ProjectCreator struct {
	clients ClientFactory
	options CreateOptions
	logger  *zap.Logger
}

func NewProjectCreator(clients ClientFactory, options CreateOptions, logger *zap.Logger) *ProjectCreator {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ProjectCreator{
		clients: clients,
		options: options,
		logger:  logger,
	}
}

// CreateProject runs the workflow and returns the message reported to the caller.
func (c *ProjectCreator) CreateProject(ctx context.Context, name string) (string, error) {
	outcome, err := c.Create(ctx, name)
	if err != nil {
		return "", err
	}

	return outcome.Message(name), nil
}

// Create checks whether the project exists, submits the creation request when it does not and
// polls the resulting operation until it completes.
func (c *ProjectCreator) Create(ctx context.Context, name string) (outcome Outcome, err error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrEmptyProjectName
	}

	ctx, span := tracing.Start(ctx, events.ProjectCreateEvent)
	defer func() {
		span.SetAttributes(
			fields.StringHashed(fields.ProjectNameKey.Key, name),
			fields.ProjectOutcomeKey.String(string(outcome)),
		)
		span.EndWithStatus(err)
	}()

	log := c.logger.With(zap.String("project", name))

	clients, err := c.clients.Clients(ctx)
	if err != nil {
		return "", err
	}

	exists, err := ProjectExists(ctx, clients.Directory, name)
	if err != nil {
		return "", err
	}

	if exists {
		log.Info("project already exists")
		return OutcomeAlreadyExists, nil
	}

	args := core.QueueCreateProjectArgs{
		ProjectToCreate: NewProjectDescriptor(name, c.options.ProcessTemplateId),
	}
	ref, err := clients.Directory.QueueCreateProject(ctx, args)
	if err != nil {
		return "", &DirectoryQueryError{Op: fmt.Sprintf("queueing creation of project %s", name), Err: err}
	}

	if ref != nil && ref.Id != nil {
		log.Info("project creation queued", zap.Stringer("operation", ref.Id))
	}

	status, err := WaitForOperation(ctx, clients.Tracker, ref, c.options.Poll)
	if err != nil {
		return "", err
	}

	if status == operations.OperationStatusValues.Succeeded {
		log.Info("project created")
		return OutcomeSucceeded, nil
	}

	log.Warn("project creation did not succeed", zap.String("status", string(status)))
	return OutcomeFailed, nil
}
