// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package config loads the server configuration once at process start.
//
// Values are resolved in this order, later sources winning:
//  1. built-in defaults
//  2. the optional YAML file given with --config, after ${VAR} references are expanded from the environment
//  3. variables from the optional .env file (never overriding the process environment)
//  4. the process environment
//
// Every environment variable carries the AZURE_DEVOPS_DESTINATION_ prefix. The remainder, lower cased,
// is the YAML key: AZURE_DEVOPS_DESTINATION_POLL_INTERVAL -> poll_interval.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/azure/azdo-mcp/internal"
	"github.com/azure/azdo-mcp/pkg/azdo"
	"github.com/drone/envsubst"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix is the prefix shared by all environment variables read by the server.
	EnvPrefix = "AZURE_DEVOPS_DESTINATION_"
	// environment variable that holds the Azure DevOps PAT
	PatEnvVarName = EnvPrefix + "PAT_TOKEN"
	// environment variable that holds the Azure DevOps Organization Name
	OrganizationEnvVarName = EnvPrefix + "ORGANIZATION"

	// DefaultEnvFile is loaded when it exists and no other file is requested.
	DefaultEnvFile = ".env"

	maxConfigFileSize = 1024 * 1024

	// MinPollInterval rejects intervals written without a unit, which decode as nanoseconds.
	MinPollInterval = time.Millisecond
)

// Config is the process wide configuration.
type Config struct {
	Organization        string        `koanf:"organization"`
	PersonalAccessToken string        `koanf:"pat_token"`
	ProcessTemplateId   string        `koanf:"process_template_id"`
	PollInterval        time.Duration `koanf:"poll_interval"`
	PollMaxAttempts     int           `koanf:"poll_max_attempts"`
	PollTimeout         time.Duration `koanf:"poll_timeout"`
	MetricsAddress      string        `koanf:"metrics_address"`
	TraceEndpoint       string        `koanf:"trace_endpoint"`
	TraceFile           string        `koanf:"trace_file"`
}

// LoadOptions select the files read by Load.
type LoadOptions struct {
	// ConfigFile is an optional YAML file. A missing file is an error.
	ConfigFile string
	// EnvFile is an optional dotenv file. A missing file is ignored.
	EnvFile string
}

// Load resolves the configuration. Credentials are not required here; their absence is reported by
// CheckCredentials and, per invocation, by the client provider.
func Load(options LoadOptions) (*Config, error) {
	if options.EnvFile != "" {
		if err := godotenv.Load(options.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", options.EnvFile, err)
		}
	}

	k := koanf.New(".")

	if options.ConfigFile != "" {
		content, err := readConfigFile(options.ConfigFile)
		if err != nil {
			return nil, err
		}

		expanded, err := envsubst.EvalEnv(string(content))
		if err != nil {
			return nil, fmt.Errorf("failed to expand variables in config file %s: %w", options.ConfigFile, err)
		}
		content = []byte(expanded)

		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", options.ConfigFile, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("config file %s is a directory", path)
	}

	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return content, nil
}

func (c *Config) applyDefaults() {
	if c.ProcessTemplateId == "" {
		c.ProcessTemplateId = azdo.DefaultProcessTemplateId
	}

	if c.PollInterval == 0 {
		c.PollInterval = azdo.DefaultPollInterval
	}
}

// Validate checks the optional settings. It does not require credentials.
func (c *Config) Validate() error {
	if _, err := uuid.Parse(c.ProcessTemplateId); err != nil {
		return fmt.Errorf("process_template_id %q is not a valid GUID: %w", c.ProcessTemplateId, err)
	}

	if c.PollInterval < MinPollInterval {
		return fmt.Errorf(
			"poll_interval must be at least %s, got %s (use Go duration syntax such as 5s)",
			MinPollInterval, c.PollInterval,
		)
	}

	if c.PollMaxAttempts < 0 {
		return fmt.Errorf("poll_max_attempts must not be negative, got %d", c.PollMaxAttempts)
	}

	if c.PollTimeout < 0 {
		return fmt.Errorf("poll_timeout must not be negative, got %s", c.PollTimeout)
	}

	return nil
}

// Credentials returns the organization and token handed to the client provider.
func (c *Config) Credentials() azdo.Credentials {
	return azdo.Credentials{
		Organization:        c.Organization,
		PersonalAccessToken: c.PersonalAccessToken,
	}
}

// CreateOptions returns the project creation settings.
func (c *Config) CreateOptions() azdo.CreateOptions {
	return azdo.CreateOptions{
		ProcessTemplateId: c.ProcessTemplateId,
		Poll: azdo.PollOptions{
			Interval:    c.PollInterval,
			MaxAttempts: c.PollMaxAttempts,
			Timeout:     c.PollTimeout,
		},
	}
}

// CheckCredentials reports missing credentials with the variable to set.
func (c *Config) CheckCredentials() error {
	var missing *azdo.ConfigurationError
	var envVar string

	switch {
	case c.Organization == "":
		missing, envVar = &azdo.ConfigurationError{Setting: azdo.SettingOrganization}, OrganizationEnvVarName
	case c.PersonalAccessToken == "":
		missing, envVar = &azdo.ConfigurationError{Setting: azdo.SettingPersonalAccessToken}, PatEnvVarName
	default:
		return nil
	}

	return &internal.ErrorWithSuggestion{
		Err:        missing,
		Suggestion: fmt.Sprintf("Set %s in the environment or in %s.", envVar, DefaultEnvFile),
	}
}

// String renders the configuration with the token redacted.
func (c *Config) String() string {
	pat := ""
	if c.PersonalAccessToken != "" {
		pat = "<redacted>"
	}

	return fmt.Sprintf(
		"organization=%q pat_token=%q process_template_id=%s poll_interval=%s poll_max_attempts=%d poll_timeout=%s",
		c.Organization, pat, c.ProcessTemplateId, c.PollInterval, c.PollMaxAttempts, c.PollTimeout,
	)
}
