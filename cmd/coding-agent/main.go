// Package main provides the coding-agent CLI.
package main

import (
	"fmt"
	"os"
)

// main is the program entry point.
func main() {
	if err := newRootCommand(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
