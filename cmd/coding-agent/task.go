package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const taskHint = "Enter a task for the coding agent (e.g. 'Analyze the structure and propose a refactoring'):"

// isTerminal reports whether a reader is an interactive TTY.
var isTerminal = defaultIsTerminal

// resolveTask joins positional arguments, or reads one line from in when
// there are none. The hint is only shown when in is a terminal.
func resolveTask(args []string, in io.Reader, out io.Writer) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(strings.Join(args, " ")), nil
	}
	if in == nil {
		return "", nil
	}
	if out == nil {
		out = io.Discard
	}

	if isTerminal(in) {
		_, _ = fmt.Fprintln(out, taskHint)
		_, _ = fmt.Fprint(out, "> ")
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read task: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// defaultIsTerminal inspects a reader for TTY support.
func defaultIsTerminal(in io.Reader) bool {
	if file, ok := in.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	return false
}
