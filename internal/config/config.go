// Package config loads backup defaults from an optional JSON file and the
// process environment. Precedence is CLI flags over environment over config
// file over built-in defaults; flag handling lives in the CLI, this package
// covers the rest.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/academyafrica/go-coursebak/internal/course"
	"github.com/academyafrica/go-coursebak/internal/exporter"
	"github.com/academyafrica/go-coursebak/internal/git"
)

// Environment variables consulted by ApplyEnv
const (
	EnvServer        = "COURSEBAK_SERVER"
	EnvETL           = "COURSEBAK_ETL"
	EnvBranch        = "COURSEBAK_BRANCH"
	EnvCommitMessage = "COURSEBAK_COMMIT_MESSAGE"
)

// BackupConfig represents the persisted backup defaults
type BackupConfig struct {
	Server    string `json:"server,omitempty"`
	ETLBinary string `json:"etl_binary,omitempty"`
	Branch    string `json:"branch,omitempty"`
	KeepClone bool   `json:"keep_clone,omitempty"`

	// CommitMessage is a template for the backup commit message; the
	// {course} placeholder expands to the normalized course name.
	CommitMessage string `json:"commit_message,omitempty"`
}

// DefaultConfig provides default configuration values
func DefaultConfig() *BackupConfig {
	return &BackupConfig{
		Server:        course.DefaultServer,
		ETLBinary:     exporter.DefaultBinary,
		Branch:        git.DefaultBranch,
		CommitMessage: course.DefaultCommitTemplate,
	}
}

// LoadConfig loads configuration from a file. A missing file yields the
// defaults, not an error.
func LoadConfig(path string) (*BackupConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &BackupConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.MergeDefaults()
	return cfg, nil
}

// SaveConfig saves configuration to a file
func SaveConfig(cfg *BackupConfig, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeDefaults merges default values for unset fields
func (c *BackupConfig) MergeDefaults() {
	defaults := DefaultConfig()
	if c.Server == "" {
		c.Server = defaults.Server
	}
	if c.ETLBinary == "" {
		c.ETLBinary = defaults.ETLBinary
	}
	if c.Branch == "" {
		c.Branch = defaults.Branch
	}
	if c.CommitMessage == "" {
		c.CommitMessage = defaults.CommitMessage
	}
}

// ApplyEnv overrides config values from the environment. A .env file in
// the working directory is loaded first when present; its absence is not
// an error.
func (c *BackupConfig) ApplyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv(EnvServer); v != "" {
		c.Server = v
	}
	if v := os.Getenv(EnvETL); v != "" {
		c.ETLBinary = v
	}
	if v := os.Getenv(EnvBranch); v != "" {
		c.Branch = v
	}
	if v := os.Getenv(EnvCommitMessage); v != "" {
		c.CommitMessage = v
	}
}

// Validate checks if the configuration is valid
func (c *BackupConfig) Validate() error {
	if c.Server == "" {
		return fmt.Errorf("server must not be empty")
	}
	if c.ETLBinary == "" {
		return fmt.Errorf("etl_binary must not be empty")
	}
	if c.Branch == "" {
		return fmt.Errorf("branch must not be empty")
	}
	if c.CommitMessage == "" {
		return fmt.Errorf("commit_message must not be empty")
	}
	return nil
}
