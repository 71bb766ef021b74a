package agent

import (
	"github.com/minhyannv/coding-agent-go/pkg/assistant"
	loggerpkg "github.com/minhyannv/coding-agent-go/pkg/logger"
	"github.com/minhyannv/coding-agent-go/pkg/tokens"
)

// AgentOption configures optional runtime dependencies for Agent.
type AgentOption func(*agentDeps)

type agentDeps struct {
	logger    loggerpkg.Logger
	completer assistant.Completer
	counter   tokens.Counter

	completerFactory func() (assistant.Completer, error)
	counterFactory   func(model string) (tokens.Counter, error)
}

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) AgentOption {
	return func(d *agentDeps) {
		d.logger = l
	}
}

// WithCompleter injects the completion service used by Run.
func WithCompleter(c assistant.Completer) AgentOption {
	return func(d *agentDeps) {
		d.completer = c
	}
}

// WithCompleterFrom builds the completer after the agent configuration has
// loaded, so a missing configuration is reported before credential errors.
func WithCompleterFrom(factory func() (assistant.Completer, error)) AgentOption {
	return func(d *agentDeps) {
		d.completerFactory = factory
	}
}

// WithCounter enables prompt token estimates.
func WithCounter(c tokens.Counter) AgentOption {
	return func(d *agentDeps) {
		d.counter = c
	}
}

// WithCounterFor builds the token counter once the model is known.
func WithCounterFor(factory func(model string) (tokens.Counter, error)) AgentOption {
	return func(d *agentDeps) {
		d.counterFactory = factory
	}
}
