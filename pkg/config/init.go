package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// InitOptions controls how a starter agent configuration is written.
type InitOptions struct {
	RepoRoot string
	// Path overrides the destination; defaults to agent_config.yaml in RepoRoot.
	Path  string
	Force bool
}

// starterAgentConfig is written by InitAgentConfig.
func starterAgentConfig() AgentConfig {
	cfg := DefaultAgentConfig()
	cfg.IncludeExtensions = []string{".go", ".py", ".js", ".ts", ".md"}
	cfg.ExcludePaths = []string{".git", "node_modules", "vendor", "dist", "build", "__pycache__", ".venv"}
	cfg.SystemInstructions = "You are a careful senior engineer. Base every suggestion on the repository content you were given."
	return cfg
}

// InitAgentConfig writes a starter configuration and returns its path.
// Existing files are kept unless Force is set.
func InitAgentConfig(options InitOptions) (string, error) {
	destination := options.Path
	if destination == "" {
		root := options.RepoRoot
		if root == "" {
			wd, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf("determine working directory for configuration: %w", err)
			}
			root = wd
		}
		destination = filepath.Join(root, AgentConfigBaseName+".yaml")
	}
	if ext := filepath.Ext(destination); ext != ".yaml" && ext != ".yml" {
		return "", fmt.Errorf("starter configuration must be a .yaml or .yml file, got %s", destination)
	}

	if _, err := os.Stat(destination); err == nil {
		if !options.Force {
			return "", fmt.Errorf("configuration file already exists at %s", destination)
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("inspect configuration path %s: %w", destination, err)
	}

	payload, err := yaml.Marshal(starterAgentConfig())
	if err != nil {
		return "", fmt.Errorf("encode starter configuration: %w", err)
	}
	if err := os.WriteFile(destination, payload, 0o644); err != nil {
		return "", fmt.Errorf("write configuration to %s: %w", destination, err)
	}
	return destination, nil
}
