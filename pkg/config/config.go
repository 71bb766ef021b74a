package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Config holds all runtime configuration for the agent.
type Config struct {
	RepoRoot   string
	ConfigPath string
	Verbose    bool
	Stream     bool
	DryRun     bool
	Copy       bool

	APIKey  string
	BaseURL string
	Model   string
}

// DefaultConfig returns a baseline configuration without side effects.
func DefaultConfig() Config {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return Config{
		RepoRoot: wd,
		Verbose:  false,
		Stream:   false,
	}
}

// Normalize sanitizes configuration values and applies defaults.
func Normalize(cfg Config) Config {
	cfg.RepoRoot = strings.TrimSpace(cfg.RepoRoot)
	cfg.ConfigPath = strings.TrimSpace(cfg.ConfigPath)
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)

	if cfg.RepoRoot == "" {
		cfg.RepoRoot = "."
	}
	if abs, err := filepath.Abs(cfg.RepoRoot); err == nil {
		cfg.RepoRoot = abs
	}
	if cfg.ConfigPath == "" {
		cfg.ConfigPath = DefaultAgentConfigPath(cfg.RepoRoot)
	} else if !filepath.IsAbs(cfg.ConfigPath) {
		if abs, err := filepath.Abs(cfg.ConfigPath); err == nil {
			cfg.ConfigPath = abs
		}
	}
	return cfg
}
