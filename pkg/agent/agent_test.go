package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/minhyannv/coding-agent-go/pkg/assistant"
	configpkg "github.com/minhyannv/coding-agent-go/pkg/config"
	"github.com/minhyannv/coding-agent-go/pkg/tokens"
)

type fakeCompleter struct {
	calls    int
	requests []assistant.Request
	text     string
	err      error
}

func (f *fakeCompleter) Complete(_ context.Context, req assistant.Request) (assistant.Response, error) {
	f.calls++
	f.requests = append(f.requests, req)
	if f.err != nil {
		return assistant.Response{}, f.err
	}
	return assistant.Response{Text: f.text}, nil
}

func writeRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return root
}

const testAgentConfig = `{
  "include_extensions": [".py"],
  "exclude_paths": ["node_modules"],
  "max_files": 10,
  "max_chars_per_file": 8000,
  "language": "en",
  "system_instructions": "Answer as a reviewer.",
  "model": "gpt-test"
}`

func TestNewFailsWithoutConfig(t *testing.T) {
	root := t.TempDir()
	_, err := New(context.Background(), configpkg.Config{RepoRoot: root})
	if !errors.Is(err, configpkg.ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestRunSendsPromptWithInstructionsAndModel(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"agent_config.json": testAgentConfig,
		"a.py":              "print('hello')",
		"b.txt":             "ignored",
		"node_modules/x.py": "vendored",
	})
	completer := &fakeCompleter{text: "1. Split main"}

	a, err := New(context.Background(), configpkg.Config{RepoRoot: root}, WithCompleter(completer))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := a.Run("  Suggest a refactoring  ")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Response.Text != "1. Split main" {
		t.Fatalf("unexpected response %q", result.Response.Text)
	}
	if completer.calls != 1 {
		t.Fatalf("expected one remote call, got %d", completer.calls)
	}
	req := completer.requests[0]
	if req.Model != "gpt-test" || req.Instructions != "Answer as a reviewer." {
		t.Fatalf("unexpected request metadata: %+v", req)
	}
	for _, needle := range []string{"Suggest a refactoring", "Preferred language: en", "----- FILE: a.py -----\nprint('hello')", "  - a.py"} {
		if !strings.Contains(req.Input, needle) {
			t.Fatalf("prompt missing %q:\n%s", needle, req.Input)
		}
	}
	for _, unwanted := range []string{"node_modules", "b.txt", "vendored"} {
		if strings.Contains(req.Input, unwanted) {
			t.Fatalf("prompt must not contain %q:\n%s", unwanted, req.Input)
		}
	}
	if result.Plan.Tokens != -1 {
		t.Fatalf("expected no token estimate without a counter, got %d", result.Plan.Tokens)
	}
}

func TestRunBlankTaskSkipsScanAndRemoteCall(t *testing.T) {
	root := writeRepo(t, map[string]string{"agent_config.json": testAgentConfig})
	completer := &fakeCompleter{}

	a, err := New(context.Background(), configpkg.Config{RepoRoot: root}, WithCompleter(completer))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Removing the root proves no scan happens for a blank task.
	if err := os.RemoveAll(root); err != nil {
		t.Fatalf("remove root: %v", err)
	}
	if _, err := a.Run(" \t\n "); !errors.Is(err, ErrEmptyTask) {
		t.Fatalf("expected ErrEmptyTask, got %v", err)
	}
	if completer.calls != 0 {
		t.Fatalf("expected no remote call, got %d", completer.calls)
	}
}

func TestRunPropagatesCompleterError(t *testing.T) {
	root := writeRepo(t, map[string]string{"agent_config.json": testAgentConfig, "a.py": "x"})
	wantErr := errors.New("quota exceeded")

	a, err := New(context.Background(), configpkg.Config{RepoRoot: root}, WithCompleter(&fakeCompleter{err: wantErr}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := a.Run("task"); !errors.Is(err, wantErr) {
		t.Fatalf("expected completer error, got %v", err)
	}
}

func TestRunWithoutCompleterFails(t *testing.T) {
	root := writeRepo(t, map[string]string{"agent_config.json": testAgentConfig})
	a, err := New(context.Background(), configpkg.Config{RepoRoot: root})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := a.Run("task"); err == nil {
		t.Fatal("expected error without completer")
	}
}

func TestModelOverrideWinsOverConfigFile(t *testing.T) {
	root := writeRepo(t, map[string]string{"agent_config.json": testAgentConfig})
	completer := &fakeCompleter{text: "ok"}

	a, err := New(context.Background(), configpkg.Config{RepoRoot: root, Model: "gpt-override"}, WithCompleter(completer))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := a.Run("task"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if completer.requests[0].Model != "gpt-override" {
		t.Fatalf("expected override model, got %q", completer.requests[0].Model)
	}
}

func TestPrepareSkipsUndecodableFilesAndEstimatesTokens(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"agent_config.json": testAgentConfig,
		"a.py":              "print('a')",
		"b.py":              string([]byte{0xc3, 0x28}),
	})

	a, err := New(context.Background(), configpkg.Config{RepoRoot: root}, WithCounter(tokens.HeuristicCounter{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	plan, err := a.Prepare("task")
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if len(plan.Scan.Selected) != 2 {
		t.Fatalf("expected both files selected, got %#v", plan.Scan.Selected)
	}
	if len(plan.Contents.Files) != 1 || plan.Contents.Files[0].Path != "a.py" {
		t.Fatalf("expected only a.py loaded, got %+v", plan.Contents.Files)
	}
	if strings.Contains(plan.Prompt, "----- FILE: b.py") {
		t.Fatalf("undecodable file rendered:\n%s", plan.Prompt)
	}
	if plan.Tokens <= 0 || plan.TokenCounter != "heuristic" {
		t.Fatalf("expected heuristic estimate, got %d (%s)", plan.Tokens, plan.TokenCounter)
	}
}

func TestCounterFactoryFallbackIsUsed(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"agent_config.json": `{"model": "gpt-factory"}`,
		"a.py":              "print('a')",
	})

	var gotModel string
	factory := func(model string) (tokens.Counter, error) {
		gotModel = model
		return tokens.HeuristicCounter{}, errors.New("encoding unavailable")
	}
	a, err := New(context.Background(), configpkg.Config{RepoRoot: root}, WithCounterFor(factory))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if gotModel != "gpt-factory" {
		t.Fatalf("factory called with %q", gotModel)
	}
	plan, err := a.Prepare("task")
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if plan.TokenCounter != "heuristic" || plan.Tokens <= 0 {
		t.Fatalf("expected fallback estimate, got %d (%s)", plan.Tokens, plan.TokenCounter)
	}
}

func TestCompleterFactoryRunsAfterConfigLoads(t *testing.T) {
	calls := 0
	factory := func() (assistant.Completer, error) {
		calls++
		return nil, errors.New("credentials missing")
	}

	_, err := New(context.Background(), configpkg.Config{RepoRoot: t.TempDir()}, WithCompleterFrom(factory))
	if !errors.Is(err, configpkg.ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("factory called %d times before configuration loaded", calls)
	}

	root := writeRepo(t, map[string]string{"agent_config.json": testAgentConfig})
	if _, err := New(context.Background(), configpkg.Config{RepoRoot: root}, WithCompleterFrom(factory)); err == nil || err.Error() != "credentials missing" {
		t.Fatalf("expected factory error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one factory call, got %d", calls)
	}
}
