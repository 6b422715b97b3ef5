// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package internal

import (
	"strings"

	"github.com/blang/semver/v4"
)

// The version string, as printed by `azdo-mcp version`.
//
// This MUST be of the form "<semver> (commit <full commit hash>)"
//
// The version is overridden at build time by passing
// -ldflags="-X 'github.com/azure/azdo-mcp/internal.Version=<version>'"
var Version = "0.0.0-dev.0 (commit 0000000000000000000000000000000000000000)"

// GetVersionNumber returns the semver portion of Version, or "unknown" when it cannot be parsed.
func GetVersionNumber() string {
	versionSpec, _, _ := strings.Cut(Version, " ")

	version, err := semver.Parse(versionSpec)
	if err != nil {
		return "unknown"
	}

	return version.String()
}
