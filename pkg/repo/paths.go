package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// resolveRoot returns the absolute, symlink-free repository root and checks
// that it is a directory.
func resolveRoot(root string) (string, error) {
	if strings.TrimSpace(root) == "" {
		return "", fmt.Errorf("repository root cannot be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("invalid repository root: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolve repository root %s: %w", abs, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("repository root is not a directory: %s", resolved)
	}
	return resolved, nil
}

// isWithinRoot reports whether absPath is root itself or lies below it.
func isWithinRoot(root, absPath string) bool {
	rel, err := filepath.Rel(root, absPath)
	if err != nil {
		return false
	}
	return rel == "." || !hasParentTraversal(rel)
}

// hasParentTraversal reports whether a path contains a parent directory segment.
func hasParentTraversal(cleanPath string) bool {
	if cleanPath == ".." {
		return true
	}
	for _, part := range strings.Split(cleanPath, string(filepath.Separator)) {
		if part == ".." {
			return true
		}
	}
	return false
}

// joinRel appends name to a slash-separated relative directory.
func joinRel(relDir, name string) string {
	if relDir == "" || relDir == "." {
		return name
	}
	return relDir + "/" + name
}

// segments splits a slash-separated relative path.
func segments(relPath string) []string {
	if relPath == "" || relPath == "." {
		return nil
	}
	return strings.Split(relPath, "/")
}

// fileExtension returns the suffix from the last dot of name. A dot in the
// first position does not start an extension, so ".bashrc" has none while
// "..foo" has ".foo".
func fileExtension(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 || idx == len(name)-1 {
		return ""
	}
	return name[idx:]
}
