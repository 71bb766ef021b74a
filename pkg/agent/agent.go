// Package agent runs the repository-to-prompt pipeline and the single
// completion call.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/minhyannv/coding-agent-go/pkg/assistant"
	configpkg "github.com/minhyannv/coding-agent-go/pkg/config"
	loggerpkg "github.com/minhyannv/coding-agent-go/pkg/logger"
	"github.com/minhyannv/coding-agent-go/pkg/prompt"
	"github.com/minhyannv/coding-agent-go/pkg/repo"
	"github.com/minhyannv/coding-agent-go/pkg/tokens"
)

// ErrEmptyTask reports a blank task; callers treat it as a normal early exit.
var ErrEmptyTask = errors.New("no task given")

// Agent holds the configuration and dependencies of one run.
type Agent struct {
	config      configpkg.Config
	agentConfig configpkg.AgentConfig
	completer   assistant.Completer
	counter     tokens.Counter

	ctx     context.Context
	logger  loggerpkg.Logger
	verbose bool
}

// Plan is everything derived from the repository before the remote call.
type Plan struct {
	Task         string
	Model        string
	Instructions string
	Prompt       string
	Scan         repo.ScanResult
	Contents     repo.Contents
	// Tokens is the estimated prompt size, -1 when no counter is configured.
	Tokens       int
	TokenCounter string
}

// Result is a finished run.
type Result struct {
	Plan     Plan
	Response assistant.Response
}

// New loads the agent configuration and wires dependencies. A missing
// configuration file fails with config.ErrConfigNotFound.
func New(ctx context.Context, cfg configpkg.Config, opts ...AgentOption) (*Agent, error) {
	cfg = configpkg.Normalize(cfg)
	deps := agentDeps{logger: loggerpkg.NopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&deps)
		}
	}
	if deps.logger == nil {
		deps.logger = loggerpkg.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	loggerpkg.Debug(cfg.Verbose, deps.logger, "agent init", map[string]any{
		"repo_root":   cfg.RepoRoot,
		"config_path": cfg.ConfigPath,
		"base_url":    cfg.BaseURL,
		"model":       cfg.Model,
	})

	agentConfig, err := configpkg.LoadAgentConfig(cfg.ConfigPath)
	if err != nil {
		return nil, err
	}
	if cfg.Model != "" {
		agentConfig.Model = cfg.Model
	}
	loggerpkg.Debug(cfg.Verbose, deps.logger, "agent config loaded", map[string]any{
		"include_extensions": agentConfig.IncludeExtensions,
		"exclude_paths":      agentConfig.ExcludePaths,
		"max_files":          agentConfig.MaxFiles,
		"max_chars_per_file": agentConfig.MaxCharsPerFile,
		"language":           agentConfig.Language,
		"model":              agentConfig.Model,
	})

	if deps.completer == nil && deps.completerFactory != nil {
		completer, err := deps.completerFactory()
		if err != nil {
			return nil, err
		}
		deps.completer = completer
	}

	if deps.counter == nil && deps.counterFactory != nil {
		counter, err := deps.counterFactory(agentConfig.Model)
		if err != nil {
			loggerpkg.Warn(deps.logger, "token counter unavailable", map[string]any{"error": err.Error()})
		}
		deps.counter = counter
	}

	return &Agent{
		config:      cfg,
		agentConfig: agentConfig,
		completer:   deps.completer,
		counter:     deps.counter,

		ctx:     ctx,
		logger:  deps.logger,
		verbose: cfg.Verbose,
	}, nil
}

// AgentConfig returns the loaded agent configuration.
func (a *Agent) AgentConfig() configpkg.AgentConfig {
	return a.agentConfig
}

// Prepare scans the repository, loads the selected files, and renders the prompt.
func (a *Agent) Prepare(task string) (Plan, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return Plan{}, ErrEmptyTask
	}

	scan, err := repo.Scan(a.config.RepoRoot, a.agentConfig, repo.ScanOptions{
		Logger:  a.logger,
		Verbose: a.verbose,
	})
	if err != nil {
		return Plan{}, fmt.Errorf("scan repository: %w", err)
	}

	contents, err := repo.LoadContents(scan.Root, scan.Selected, a.agentConfig.MaxCharsPerFile, repo.LoadOptions{
		Logger:  a.logger,
		Verbose: a.verbose,
	})
	if err != nil {
		return Plan{}, fmt.Errorf("load file contents: %w", err)
	}

	rendered := prompt.Build(prompt.Input{
		Task:      task,
		Language:  a.agentConfig.Language,
		Structure: scan.StructureText(),
		Contents:  contents.Text,
	})

	plan := Plan{
		Task:         task,
		Model:        a.agentConfig.Model,
		Instructions: a.agentConfig.SystemInstructions,
		Prompt:       rendered,
		Scan:         scan,
		Contents:     contents,
		Tokens:       -1,
	}
	if a.counter != nil {
		count, err := a.counter.Count(rendered)
		if err != nil {
			loggerpkg.Warn(a.logger, "token estimate failed", map[string]any{"error": err.Error()})
		} else {
			plan.Tokens = count
			plan.TokenCounter = a.counter.Name()
		}
	}

	a.debugf("[verbose] prompt ready: bytes=%d files=%d skipped=%d tokens=%d", len(rendered), len(contents.Files), len(contents.Skipped), plan.Tokens)
	return plan, nil
}

// Run prepares the prompt and sends it with the system instructions to the completer.
func (a *Agent) Run(task string) (Result, error) {
	plan, err := a.Prepare(task)
	if err != nil {
		return Result{}, err
	}
	return a.Send(plan)
}

// Send performs the single completion call for a prepared plan.
func (a *Agent) Send(plan Plan) (Result, error) {
	if a.completer == nil {
		return Result{}, errors.New("completer is not configured")
	}

	resp, err := a.completer.Complete(a.ctx, assistant.Request{
		Model:        plan.Model,
		Instructions: plan.Instructions,
		Input:        plan.Prompt,
	})
	if err != nil {
		return Result{}, err
	}
	a.debugf("[verbose] response received: bytes=%d prompt_tokens=%d completion_tokens=%d", len(resp.Text), resp.PromptTokens, resp.CompletionTokens)
	return Result{Plan: plan, Response: resp}, nil
}

func (a *Agent) debugf(format string, args ...any) {
	loggerpkg.Debugf(a.verbose, a.logger, format, args...)
}
