package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/joho/godotenv"
	"github.com/minhyannv/coding-agent-go/pkg/agent"
	"github.com/minhyannv/coding-agent-go/pkg/assistant"
	configpkg "github.com/minhyannv/coding-agent-go/pkg/config"
	loggerpkg "github.com/minhyannv/coding-agent-go/pkg/logger"
	"github.com/minhyannv/coding-agent-go/pkg/tokens"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	envPrefix = "CODING_AGENT"

	rootFlagName    = "root"
	configFlagName  = "config"
	modelFlagName   = "model"
	verboseFlagName = "verbose"
	streamFlagName  = "stream"
	dryRunFlagName  = "dry-run"
	copyFlagName    = "copy"
	initFlagName    = "init"
	forceFlagName   = "force"

	apiKeySetting  = "api_key"
	baseURLSetting = "base_url"

	rootUse              = "coding-agent [task...]"
	rootShortDescription = "Ask an LLM for suggestions about a local repository"
	rootLongDescription  = `coding-agent scans a local repository, embeds its structure and a bounded
set of file contents into a prompt, sends the prompt with your task to the
completion service, and prints the answer. It never modifies files.

The scan is controlled by agent_config.json (or .yaml/.yml/.toml) in the
repository root. Credentials come from OPENAI_API_KEY and OPENAI_BASE_URL,
optionally loaded from a .env file. Without a task argument the task is read
from standard input.`
	rootUsageExample = `  # Ask for a refactoring plan
  coding-agent Propose a refactoring of the storage layer

  # Inspect the prompt without calling the service
  coding-agent --dry-run Suggest missing tests

  # Write a starter configuration
  coding-agent --init`
)

// Replaced in tests.
var (
	newCompleter = func(opts assistant.Options) (assistant.Completer, error) {
		return assistant.NewOpenAIClient(opts)
	}
	newCounter     = tokens.NewCounterOrHeuristic
	writeClipboard = clipboard.WriteAll
)

// newRootCommand builds the single coding-agent command.
func newRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	settings := viper.New()

	command := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			loadDotEnv(settings.GetString(rootFlagName))
			if settings.GetBool(initFlagName) {
				return runInit(settings, out)
			}
			return runAgent(command, settings, arguments, in, out, errOut)
		},
	}
	command.SetIn(in)
	command.SetOut(out)
	command.SetErr(errOut)

	flags := command.Flags()
	// Everything after the first task word belongs to the task.
	flags.SetInterspersed(false)
	flags.String(rootFlagName, ".", "repository root to scan")
	flags.String(configFlagName, "", "agent configuration file (default: agent_config.{json,yaml,yml,toml} in the root)")
	flags.String(modelFlagName, "", "model override (default: model from the agent configuration)")
	flags.BoolP(verboseFlagName, "v", false, "verbose logging to stderr")
	flags.Bool(streamFlagName, false, "stream the response as it is generated")
	flags.Bool(dryRunFlagName, false, "print the prompt instead of calling the service")
	flags.Bool(copyFlagName, false, "copy the prompt to the clipboard")
	flags.Bool(initFlagName, false, "write a starter agent_config.yaml and exit")
	flags.Bool(forceFlagName, false, "overwrite an existing configuration with --init")

	_ = settings.BindPFlags(flags)
	settings.SetEnvPrefix(envPrefix)
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()
	_ = settings.BindEnv(apiKeySetting, "OPENAI_API_KEY")
	_ = settings.BindEnv(baseURLSetting, "OPENAI_BASE_URL")
	_ = settings.BindEnv(modelFlagName, envPrefix+"_MODEL", "OPENAI_MODEL")

	return command
}

// loadDotEnv loads .env from the working directory and the repository root
// without overriding variables that are already set.
func loadDotEnv(root string) {
	_ = godotenv.Load()
	if root == "" {
		return
	}
	if abs, err := filepath.Abs(filepath.Join(root, ".env")); err == nil {
		_ = godotenv.Load(abs)
	}
}

func configFromSettings(settings *viper.Viper) configpkg.Config {
	cfg := configpkg.DefaultConfig()
	cfg.RepoRoot = settings.GetString(rootFlagName)
	cfg.ConfigPath = settings.GetString(configFlagName)
	cfg.Verbose = settings.GetBool(verboseFlagName)
	cfg.Stream = settings.GetBool(streamFlagName)
	cfg.DryRun = settings.GetBool(dryRunFlagName)
	cfg.Copy = settings.GetBool(copyFlagName)
	cfg.APIKey = settings.GetString(apiKeySetting)
	cfg.BaseURL = settings.GetString(baseURLSetting)
	cfg.Model = settings.GetString(modelFlagName)
	return configpkg.Normalize(cfg)
}

func runAgent(command *cobra.Command, settings *viper.Viper, arguments []string, in io.Reader, out, errOut io.Writer) error {
	task, err := resolveTask(arguments, in, out)
	if err != nil {
		return err
	}
	if task == "" {
		_, _ = fmt.Fprintln(out, noTaskMessage)
		return nil
	}

	cfg := configFromSettings(settings)
	appLogger := loggerpkg.NewZapLogger(errOut, cfg.Verbose)
	defer func() { _ = appLogger.Sync() }()

	opts := []agent.AgentOption{agent.WithLogger(appLogger)}
	if cfg.Verbose || cfg.DryRun {
		opts = append(opts, agent.WithCounterFor(newCounter))
	}

	framed := &framedWriter{out: out}
	if !cfg.DryRun {
		opts = append(opts, agent.WithCompleterFrom(func() (assistant.Completer, error) {
			return newCompleter(assistant.Options{
				APIKey:       cfg.APIKey,
				BaseURL:      cfg.BaseURL,
				Stream:       cfg.Stream,
				StreamWriter: framed,
				Logger:       appLogger,
				Verbose:      cfg.Verbose,
			})
		}))
	}

	app, err := agent.New(command.Context(), cfg, opts...)
	if err != nil {
		return err
	}

	plan, err := app.Prepare(task)
	if errors.Is(err, agent.ErrEmptyTask) {
		_, _ = fmt.Fprintln(out, noTaskMessage)
		return nil
	}
	if err != nil {
		return err
	}

	if cfg.Copy {
		if err := writeClipboard(plan.Prompt); err != nil {
			loggerpkg.Warn(appLogger, "copy to clipboard failed", map[string]any{"error": err.Error()})
		} else {
			loggerpkg.Info(appLogger, "prompt copied to clipboard", map[string]any{"bytes": len(plan.Prompt)})
		}
	}

	if cfg.DryRun {
		printPlan(out, plan)
		return nil
	}

	result, err := app.Send(plan)
	if err != nil {
		return err
	}
	if !framed.opened {
		printResponseHeader(out)
	}
	printResponseFooter(out, result.Response.Text, result.Response.Streamed)
	return nil
}

func runInit(settings *viper.Viper, out io.Writer) error {
	root := settings.GetString(rootFlagName)
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	path, err := configpkg.InitAgentConfig(configpkg.InitOptions{
		RepoRoot: root,
		Path:     settings.GetString(configFlagName),
		Force:    settings.GetBool(forceFlagName),
	})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Wrote %s\n", path)
	return nil
}

// framedWriter prints the response header before the first streamed byte.
type framedWriter struct {
	out    io.Writer
	opened bool
}

func (w *framedWriter) Write(p []byte) (int, error) {
	if !w.opened {
		printResponseHeader(w.out)
		w.opened = true
	}
	return w.out.Write(p)
}
