package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// AgentConfigBaseName is the file name, without extension, looked up in the repository root.
	AgentConfigBaseName = "agent_config"

	DefaultMaxFiles        = 10
	DefaultMaxCharsPerFile = 8000
	DefaultLanguage        = "cs"
	DefaultModel           = "gpt-5.1"
)

// agentConfigExtensions lists the formats probed by DefaultAgentConfigPath, in order.
var agentConfigExtensions = []string{".json", ".yaml", ".yml", ".toml"}

// ErrConfigNotFound reports that no agent configuration file exists at the requested path.
var ErrConfigNotFound = errors.New("agent configuration not found")

// AgentConfig controls which parts of the repository are shown to the model
// and how the model is asked.
type AgentConfig struct {
	IncludeExtensions  []string `mapstructure:"include_extensions" yaml:"include_extensions"`
	ExcludePaths       []string `mapstructure:"exclude_paths" yaml:"exclude_paths"`
	MaxFiles           int      `mapstructure:"max_files" yaml:"max_files"`
	MaxCharsPerFile    int      `mapstructure:"max_chars_per_file" yaml:"max_chars_per_file"`
	Language           string   `mapstructure:"language" yaml:"language"`
	SystemInstructions string   `mapstructure:"system_instructions" yaml:"system_instructions"`
	Model              string   `mapstructure:"model" yaml:"model"`
}

// DefaultAgentConfig returns the values used for keys missing from the file.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		IncludeExtensions: []string{},
		ExcludePaths:      []string{},
		MaxFiles:          DefaultMaxFiles,
		MaxCharsPerFile:   DefaultMaxCharsPerFile,
		Language:          DefaultLanguage,
		Model:             DefaultModel,
	}
}

// DefaultAgentConfigPath returns the first existing agent_config.{json,yaml,yml,toml}
// under root, or the .json path when none exists.
func DefaultAgentConfigPath(root string) string {
	for _, ext := range agentConfigExtensions {
		candidate := filepath.Join(root, AgentConfigBaseName+ext)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return filepath.Join(root, AgentConfigBaseName+agentConfigExtensions[0])
}

// LoadAgentConfig reads the agent configuration at path. Unknown keys are
// ignored and missing keys fall back to DefaultAgentConfig.
func LoadAgentConfig(path string) (AgentConfig, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return AgentConfig{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return AgentConfig{}, fmt.Errorf("stat configuration %s: %w", path, err)
	}
	if info.IsDir() {
		return AgentConfig{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	defaults := DefaultAgentConfig()
	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetDefault("include_extensions", defaults.IncludeExtensions)
	reader.SetDefault("exclude_paths", defaults.ExcludePaths)
	reader.SetDefault("max_files", defaults.MaxFiles)
	reader.SetDefault("max_chars_per_file", defaults.MaxCharsPerFile)
	reader.SetDefault("language", defaults.Language)
	reader.SetDefault("system_instructions", defaults.SystemInstructions)
	reader.SetDefault("model", defaults.Model)
	if err := reader.ReadInConfig(); err != nil {
		return AgentConfig{}, fmt.Errorf("read configuration from %s: %w", path, err)
	}

	var cfg AgentConfig
	if err := reader.Unmarshal(&cfg); err != nil {
		return AgentConfig{}, fmt.Errorf("decode configuration from %s: %w", path, err)
	}
	cfg = NormalizeAgentConfig(cfg)
	if err := cfg.Validate(); err != nil {
		return AgentConfig{}, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	return cfg, nil
}

// NormalizeAgentConfig trims values, drops blank entries, and replaces blank
// strings with defaults. Limits are kept as given; zero is a valid limit.
func NormalizeAgentConfig(cfg AgentConfig) AgentConfig {
	defaults := DefaultAgentConfig()

	extensions := make([]string, 0, len(cfg.IncludeExtensions))
	seen := map[string]struct{}{}
	for _, ext := range cfg.IncludeExtensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		extensions = append(extensions, ext)
	}
	cfg.IncludeExtensions = extensions

	excludes := make([]string, 0, len(cfg.ExcludePaths))
	for _, name := range cfg.ExcludePaths {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		excludes = append(excludes, name)
	}
	cfg.ExcludePaths = excludes

	cfg.Language = strings.TrimSpace(cfg.Language)
	if cfg.Language == "" {
		cfg.Language = defaults.Language
	}
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	cfg.SystemInstructions = strings.TrimSpace(cfg.SystemInstructions)
	return cfg
}

// Validate rejects negative limits.
func (c AgentConfig) Validate() error {
	if c.MaxFiles < 0 {
		return fmt.Errorf("max_files must not be negative, got %d", c.MaxFiles)
	}
	if c.MaxCharsPerFile < 0 {
		return fmt.Errorf("max_chars_per_file must not be negative, got %d", c.MaxCharsPerFile)
	}
	return nil
}

// AllowsExtension reports whether ext passes the allowlist. An empty
// allowlist admits every extension.
func (c AgentConfig) AllowsExtension(ext string) bool {
	if len(c.IncludeExtensions) == 0 {
		return true
	}
	for _, allowed := range c.IncludeExtensions {
		if allowed == ext {
			return true
		}
	}
	return false
}

// IsExcluded reports whether name equals one of the excluded path segments.
func (c AgentConfig) IsExcluded(name string) bool {
	for _, excluded := range c.ExcludePaths {
		if excluded == name {
			return true
		}
	}
	return false
}
