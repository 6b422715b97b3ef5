// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package fields provides definitions and functions related to the definition of telemetry fields.
package fields

import (
	"go.opentelemetry.io/otel/attribute"
)

// AttributeKey represents an attribute key with additional metadata.
type AttributeKey struct {
	attribute.Key
	Classification Classification
}

type Classification string

const (
	SystemMetadata                        Classification = "SystemMetadata"
	CustomerContent                       Classification = "CustomerContent"
	OrganizationalIdentifiableInformation Classification = "OrganizationalIdentifiableInformation"
)

// Application-level fields.
var (
	ServiceNameKey = AttributeKey{
		Key:            attribute.Key("service.name"),
		Classification: SystemMetadata,
	}

	ServiceVersionKey = AttributeKey{
		Key:            attribute.Key("service.version"),
		Classification: SystemMetadata,
	}

	// Hashed name of the Azure DevOps organization.
	OrganizationKey = AttributeKey{
		Key:            attribute.Key("azdo.organization"),
		Classification: OrganizationalIdentifiableInformation,
	}
)

// Tool call fields.
var (
	ToolNameKey = AttributeKey{
		Key:            attribute.Key("mcp.tool.name"),
		Classification: SystemMetadata,
	}

	// One of "ok", "tool_error" or "error".
	ToolResultKey = AttributeKey{
		Key:            attribute.Key("mcp.tool.result"),
		Classification: SystemMetadata,
	}
)

// Project creation fields.
var (
	// Hashed, case-insensitive project name.
	ProjectNameKey = AttributeKey{
		Key:            attribute.Key("azdo.project.name"),
		Classification: CustomerContent,
	}

	ProjectOutcomeKey = AttributeKey{
		Key:            attribute.Key("azdo.project.outcome"),
		Classification: SystemMetadata,
	}

	OperationIdKey = AttributeKey{
		Key:            attribute.Key("azdo.operation.id"),
		Classification: SystemMetadata,
	}

	OperationStatusKey = AttributeKey{
		Key:            attribute.Key("azdo.operation.status"),
		Classification: SystemMetadata,
	}

	OperationPollsKey = AttributeKey{
		Key:            attribute.Key("azdo.operation.polls"),
		Classification: SystemMetadata,
	}
)
