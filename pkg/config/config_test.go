package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadAgentConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent_config.json")
	_, err := LoadAgentConfig(path)
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to name %s, got %v", path, err)
	}
}

func TestLoadAgentConfigAppliesDefaultsAndIgnoresUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent_config.json")
	writeFile(t, path, `{
  "include_extensions": [".py", "go", " "],
  "exclude_paths": ["node_modules", ""],
  "system_instructions": "  Be brief.  ",
  "unknown_key": 42
}`)

	cfg, err := LoadAgentConfig(path)
	if err != nil {
		t.Fatalf("LoadAgentConfig: %v", err)
	}
	if len(cfg.IncludeExtensions) != 2 || cfg.IncludeExtensions[0] != ".py" || cfg.IncludeExtensions[1] != ".go" {
		t.Fatalf("unexpected extensions: %#v", cfg.IncludeExtensions)
	}
	if len(cfg.ExcludePaths) != 1 || cfg.ExcludePaths[0] != "node_modules" {
		t.Fatalf("unexpected exclude paths: %#v", cfg.ExcludePaths)
	}
	if cfg.MaxFiles != DefaultMaxFiles {
		t.Fatalf("expected default max_files %d, got %d", DefaultMaxFiles, cfg.MaxFiles)
	}
	if cfg.MaxCharsPerFile != DefaultMaxCharsPerFile {
		t.Fatalf("expected default max_chars_per_file %d, got %d", DefaultMaxCharsPerFile, cfg.MaxCharsPerFile)
	}
	if cfg.Language != DefaultLanguage || cfg.Model != DefaultModel {
		t.Fatalf("expected default language/model, got %q/%q", cfg.Language, cfg.Model)
	}
	if cfg.SystemInstructions != "Be brief." {
		t.Fatalf("unexpected system instructions: %q", cfg.SystemInstructions)
	}
}

func TestLoadAgentConfigExplicitValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent_config.yaml")
	writeFile(t, path, `max_files: 3
max_chars_per_file: 120
language: en
model: gpt-4o-mini
`)

	cfg, err := LoadAgentConfig(path)
	if err != nil {
		t.Fatalf("LoadAgentConfig: %v", err)
	}
	if cfg.MaxFiles != 3 || cfg.MaxCharsPerFile != 120 || cfg.Language != "en" || cfg.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.IncludeExtensions) != 0 {
		t.Fatalf("expected empty allowlist, got %#v", cfg.IncludeExtensions)
	}
}

func TestLoadAgentConfigKeepsExplicitZeroLimits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent_config.json")
	writeFile(t, path, `{"include_extensions": [".py"], "max_files": 0, "max_chars_per_file": 0}`)

	cfg, err := LoadAgentConfig(path)
	if err != nil {
		t.Fatalf("LoadAgentConfig: %v", err)
	}
	if cfg.MaxFiles != 0 || cfg.MaxCharsPerFile != 0 {
		t.Fatalf("expected explicit zero limits, got max_files=%d max_chars_per_file=%d", cfg.MaxFiles, cfg.MaxCharsPerFile)
	}
}

func TestLoadAgentConfigRejectsNegativeLimits(t *testing.T) {
	tests := map[string]string{
		"max_files":          `{"max_files": -1}`,
		"max_chars_per_file": `{"max_chars_per_file": -5}`,
	}
	for key, content := range tests {
		path := filepath.Join(t.TempDir(), "agent_config.json")
		writeFile(t, path, content)

		_, err := LoadAgentConfig(path)
		if err == nil {
			t.Fatalf("%s: expected error for negative limit", key)
		}
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("%s: expected error to name the key, got %v", key, err)
		}
	}
}

func TestLoadAgentConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent_config.json")
	writeFile(t, path, `{"max_files": `)

	_, err := LoadAgentConfig(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("parse error must not be reported as missing config: %v", err)
	}
}

func TestLoadAgentConfigRejectsDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "agent_config.json")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := LoadAgentConfig(dir); err == nil {
		t.Fatal("expected error for directory path")
	}
}

func TestDefaultAgentConfigPathPrefersExistingFile(t *testing.T) {
	root := t.TempDir()
	if got := DefaultAgentConfigPath(root); got != filepath.Join(root, "agent_config.json") {
		t.Fatalf("expected json fallback, got %s", got)
	}
	writeFile(t, filepath.Join(root, "agent_config.yaml"), "max_files: 1\n")
	if got := DefaultAgentConfigPath(root); got != filepath.Join(root, "agent_config.yaml") {
		t.Fatalf("expected yaml file, got %s", got)
	}
}

func TestAgentConfigAllowsExtension(t *testing.T) {
	open := AgentConfig{}
	if !open.AllowsExtension(".anything") || !open.AllowsExtension("") {
		t.Fatal("empty allowlist should admit every file")
	}
	restricted := AgentConfig{IncludeExtensions: []string{".py"}}
	if !restricted.AllowsExtension(".py") || restricted.AllowsExtension(".txt") {
		t.Fatal("allowlist not applied")
	}
}

func TestNormalizeResolvesConfigPathFromRoot(t *testing.T) {
	root := t.TempDir()
	cfg := Normalize(Config{RepoRoot: "  " + root + "  ", APIKey: " key "})
	if cfg.RepoRoot != root {
		t.Fatalf("expected root %s, got %s", root, cfg.RepoRoot)
	}
	if cfg.ConfigPath != filepath.Join(root, "agent_config.json") {
		t.Fatalf("unexpected config path %s", cfg.ConfigPath)
	}
	if cfg.APIKey != "key" {
		t.Fatalf("expected trimmed api key, got %q", cfg.APIKey)
	}
}

func TestInitAgentConfigWritesLoadableFile(t *testing.T) {
	root := t.TempDir()
	path, err := InitAgentConfig(InitOptions{RepoRoot: root})
	if err != nil {
		t.Fatalf("InitAgentConfig: %v", err)
	}
	if path != filepath.Join(root, "agent_config.yaml") {
		t.Fatalf("unexpected path %s", path)
	}
	cfg, err := LoadAgentConfig(path)
	if err != nil {
		t.Fatalf("load starter config: %v", err)
	}
	if !cfg.IsExcluded("node_modules") || !cfg.AllowsExtension(".go") {
		t.Fatalf("starter config missing expected entries: %+v", cfg)
	}
}

func TestInitAgentConfigPreventsOverwriteWithoutForce(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "agent_config.yaml"), "existing")
	if _, err := InitAgentConfig(InitOptions{RepoRoot: root}); err == nil {
		t.Fatal("expected error when configuration already exists")
	}
	if _, err := InitAgentConfig(InitOptions{RepoRoot: root, Force: true}); err != nil {
		t.Fatalf("forced init failed: %v", err)
	}
}
