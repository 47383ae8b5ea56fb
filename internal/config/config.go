// Package config loads the optional per-project configuration and locates
// the blackboard directory. Directory discovery and init/destroy are
// adapter concerns; the core never touches them.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Well-known names under the project root.
const (
	BlackboardDirName = ".bb"
	DatabaseFileName  = "blackboard.db"
	ConfigFileName    = "config.yml"
)

// Environment variables consumed by both adapters.
const (
	EnvAgentID    = "BB_AGENT_ID"
	EnvProjectDir = "BB_DIR"
)

// Config is the optional .bb/config.yml. All fields have working defaults.
type Config struct {
	// DefaultAgent is used by the CLI when neither --as nor BB_AGENT_ID is
	// set. Defaults to "human".
	DefaultAgent string `yaml:"default_agent"`
	// LogFile is where the MCP server writes its log. "none" disables the
	// file; stderr is still used when interactive.
	LogFile string `yaml:"log_file"`
	// MessageRetentionDays is the default cutoff for 'bb clear
	// --messages-before' when no duration is given. 0 means no default.
	MessageRetentionDays int `yaml:"message_retention_days"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{DefaultAgent: "human"}
}

// Load reads .bb/config.yml under projectDir, falling back to defaults
// when the file is absent.
func Load(projectDir string) (*Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(projectDir, BlackboardDirName, ConfigFileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.DefaultAgent == "" {
		cfg.DefaultAgent = "human"
	}
	return cfg, nil
}

// DatabasePath returns the store location under projectDir.
func DatabasePath(projectDir string) string {
	return filepath.Join(projectDir, BlackboardDirName, DatabaseFileName)
}
