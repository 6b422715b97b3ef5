// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azdo

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const (
	SettingOrganization        = "organization name"
	SettingPersonalAccessToken = "personal access token"
)

var (
	// ErrMissingConfiguration is wrapped by every ConfigurationError.
	ErrMissingConfiguration = errors.New("missing azure devops configuration")
	// ErrOperationTimeout is returned when polling stops before the operation reaches a terminal state.
	ErrOperationTimeout = errors.New("operation did not complete in time")
	// ErrEmptyProjectName is returned when the workflow is invoked without a project name.
	ErrEmptyProjectName = errors.New("project name is required")

	errNilClient = errors.New("client constructor returned nil")
)

// ConfigurationError reports a required setting that is absent or empty.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s is required", e.Setting)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrMissingConfiguration
}

// ClientConstructionError wraps a failure to build one of the service clients.
type ClientConstructionError struct {
	Client string
	Err    error
}

func (e *ClientConstructionError) Error() string {
	return fmt.Sprintf("failed to create azure devops %s client: %v", e.Client, e.Err)
}

func (e *ClientConstructionError) Unwrap() error {
	return e.Err
}

// DirectoryQueryError wraps a failure to list or create projects.
type DirectoryQueryError struct {
	Op  string
	Err error
}

func (e *DirectoryQueryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DirectoryQueryError) Unwrap() error {
	return e.Err
}

// TrackerQueryError wraps a failure while polling an operation.
type TrackerQueryError struct {
	OperationId uuid.UUID
	Err         error
}

func (e *TrackerQueryError) Error() string {
	return fmt.Sprintf("polling operation %s: %v", e.OperationId, e.Err)
}

func (e *TrackerQueryError) Unwrap() error {
	return e.Err
}
