// Package prompt renders the repository prompt sent to the completion service.
package prompt

import (
	"strings"
)

const (
	StructureHeading = "=== REPOSITORY STRUCTURE ==="
	ContentsHeading  = "=== SELECTED FILE CONTENTS ==="
)

// Input is everything the prompt is rendered from.
type Input struct {
	Task      string
	Language  string
	Structure string
	Contents  string
}

// Build renders the prompt. The output depends only on in.
func Build(in Input) string {
	var sb strings.Builder

	sb.WriteString("Context:\n")
	sb.WriteString("- You are a coding assistant working on one specific GitHub repository.\n")
	sb.WriteString("- The repository is cloned locally; you have read-only access to its structure and selected files.\n")
	sb.WriteString("- You never write to files; you only propose concrete steps.\n")

	sb.WriteString("\nResponse language:\n")
	sb.WriteString("- Preferred language: ")
	sb.WriteString(singleLine(in.Language))
	sb.WriteString("\n")

	sb.WriteString("\nTask from the user:\n")
	sb.WriteString(strings.TrimSpace(in.Task))
	sb.WriteString("\n")

	sb.WriteString("\nFirst:\n")
	sb.WriteString("- Briefly summarize what you understand about the project structure.\n")
	sb.WriteString("Then:\n")
	sb.WriteString("- Propose concrete numbered steps (1, 2, 3...): refactoring, new features, tests, documentation.\n")
	sb.WriteString("- If anything is unclear, state explicitly what information is missing.\n")

	sb.WriteString("\n\n")
	sb.WriteString(StructureHeading)
	sb.WriteString("\n")
	sb.WriteString(in.Structure)
	sb.WriteString("\n\n")
	sb.WriteString(ContentsHeading)
	sb.WriteString("\n")
	sb.WriteString(in.Contents)
	sb.WriteString("\n")

	return sb.String()
}

// singleLine keeps a template field on one trimmed line.
func singleLine(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	return strings.TrimSpace(value)
}
