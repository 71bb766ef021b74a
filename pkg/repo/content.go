package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	loggerpkg "github.com/minhyannv/coding-agent-go/pkg/logger"
)

// TruncationMarker is appended to file content cut at the character limit.
const TruncationMarker = "\n\n[... content truncated ...]"

const blockSeparator = "\n\n"

// LoadedFile describes one file rendered into the content text.
type LoadedFile struct {
	Path      string
	Chars     int
	Truncated bool
}

// Contents is the rendered file blocks plus bookkeeping about what was kept.
type Contents struct {
	Text    string
	Files   []LoadedFile
	Skipped []string
}

// LoadOptions carries optional dependencies for LoadContents.
type LoadOptions struct {
	Logger  loggerpkg.Logger
	Verbose bool
}

// LoadContents reads the selected files (relative to root) in order. Files
// that are not valid UTF-8 are skipped with a warning; any other read error is
// returned. Content longer than maxChars characters keeps its first maxChars
// characters followed by TruncationMarker.
func LoadContents(root string, selected []string, maxChars int, opts LoadOptions) (Contents, error) {
	if opts.Logger == nil {
		opts.Logger = loggerpkg.NopLogger{}
	}
	resolved, err := resolveRoot(root)
	if err != nil {
		return Contents{}, err
	}

	blocks := make([]string, 0, len(selected))
	out := Contents{Files: []LoadedFile{}, Skipped: []string{}}
	for _, relPath := range selected {
		data, err := os.ReadFile(filepath.Join(resolved, filepath.FromSlash(relPath)))
		if err != nil {
			return Contents{}, fmt.Errorf("read %s: %w", relPath, err)
		}
		if !utf8.Valid(data) {
			loggerpkg.Warn(opts.Logger, "skipping file that is not valid UTF-8 text", map[string]any{"path": relPath})
			out.Skipped = append(out.Skipped, relPath)
			continue
		}

		content, truncated := truncateChars(normalizeNewlines(string(data)), maxChars)
		kept := utf8.RuneCountInString(content)
		if truncated {
			loggerpkg.Debug(opts.Verbose, opts.Logger, "file truncated", map[string]any{
				"path":      relPath,
				"max_chars": maxChars,
			})
			content += TruncationMarker
		}
		blocks = append(blocks, RenderBlock(relPath, content))
		out.Files = append(out.Files, LoadedFile{
			Path:      relPath,
			Chars:     kept,
			Truncated: truncated,
		})
	}
	out.Text = strings.Join(blocks, blockSeparator)
	return out, nil
}

// RenderBlock labels one file's content.
func RenderBlock(relPath, content string) string {
	return fmt.Sprintf("----- FILE: %s -----\n%s", relPath, content)
}

// truncateChars keeps the first maxChars characters of s. A negative
// maxChars disables truncation.
func truncateChars(s string, maxChars int) (string, bool) {
	if maxChars < 0 || len(s) <= maxChars {
		return s, false
	}
	count := 0
	for idx := range s {
		if count == maxChars {
			return s[:idx], true
		}
		count++
	}
	return s, false
}

// normalizeNewlines converts CRLF and lone CR line endings to LF.
func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
