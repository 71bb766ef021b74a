package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/minhyannv/coding-agent-go/pkg/agent"
)

const (
	responseHeading = "CODING AGENT RESPONSE:"
	promptHeading   = "CODING AGENT PROMPT (dry run):"
	noTaskMessage   = "No task given, exiting."
)

var separator = strings.Repeat("=", 80)

// printResponseHeader opens the framed response block.
func printResponseHeader(out io.Writer) {
	_, _ = fmt.Fprintln(out, separator)
	_, _ = fmt.Fprintln(out, responseHeading)
	_, _ = fmt.Fprintln(out)
}

// printResponseFooter closes the framed response block. A streamed body is
// already on screen, so only a missing trailing newline is added.
func printResponseFooter(out io.Writer, text string, streamed bool) {
	if !streamed {
		_, _ = fmt.Fprintln(out, text)
	} else if !strings.HasSuffix(text, "\n") {
		_, _ = fmt.Fprintln(out)
	}
	_, _ = fmt.Fprintln(out, separator)
}

// printPlan renders a dry run: the prompt plus what went into it.
func printPlan(out io.Writer, plan agent.Plan) {
	_, _ = fmt.Fprintln(out, separator)
	_, _ = fmt.Fprintln(out, promptHeading)
	_, _ = fmt.Fprintf(out, "model: %s\n", plan.Model)
	_, _ = fmt.Fprintf(out, "files: %d selected, %d loaded, %d skipped (%d listed)\n",
		len(plan.Scan.Selected), len(plan.Contents.Files), len(plan.Contents.Skipped), plan.Scan.Matched)
	if plan.Tokens >= 0 {
		_, _ = fmt.Fprintf(out, "estimated prompt tokens: %d (%s)\n", plan.Tokens, plan.TokenCounter)
	}
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, plan.Prompt)
	_, _ = fmt.Fprintln(out, separator)
}
