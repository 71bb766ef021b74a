// Package repo walks a local repository and renders the structure listing
// and file content blocks that are embedded into the prompt.
package repo

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	configpkg "github.com/minhyannv/coding-agent-go/pkg/config"
	loggerpkg "github.com/minhyannv/coding-agent-go/pkg/logger"
)

const (
	dirLinePrefix  = "[DIR] "
	fileLinePrefix = "  - "
)

// ScanResult is the structure listing plus the files chosen for the prompt.
type ScanResult struct {
	Root      string
	Structure []string
	// Selected holds at most MaxFiles slash-separated paths relative to Root, in traversal order.
	Selected []string
	// Matched counts every listed file, selected or not.
	Matched int
}

// StructureText joins the listing lines.
func (r ScanResult) StructureText() string {
	return strings.Join(r.Structure, "\n")
}

// ScanOptions carries optional dependencies for Scan.
type ScanOptions struct {
	Logger  loggerpkg.Logger
	Verbose bool
}

type scanner struct {
	root   string
	cfg    configpkg.AgentConfig
	opts   ScanOptions
	result ScanResult
}

// Scan walks root once. Each directory contributes a listing line followed by
// its matching files; subdirectories are visited afterwards in lexical order.
// Directories whose path relative to root contains an excluded segment are
// neither listed nor descended into.
func Scan(root string, cfg configpkg.AgentConfig, opts ScanOptions) (ScanResult, error) {
	if opts.Logger == nil {
		opts.Logger = loggerpkg.NopLogger{}
	}
	resolved, err := resolveRoot(root)
	if err != nil {
		return ScanResult{}, err
	}
	cfg = configpkg.NormalizeAgentConfig(cfg)

	s := &scanner{
		root:   resolved,
		cfg:    cfg,
		opts:   opts,
		result: ScanResult{Root: resolved, Structure: []string{}, Selected: []string{}},
	}
	s.debug("scan start", map[string]any{
		"root":               resolved,
		"include_extensions": cfg.IncludeExtensions,
		"exclude_paths":      cfg.ExcludePaths,
		"max_files":          cfg.MaxFiles,
	})
	if err := s.walk(resolved, "."); err != nil {
		return ScanResult{}, err
	}
	s.debug("scan done", map[string]any{
		"lines":    len(s.result.Structure),
		"matched":  s.result.Matched,
		"selected": len(s.result.Selected),
	})
	return s.result, nil
}

func (s *scanner) walk(absDir, relDir string) error {
	entries, err := os.ReadDir(absDir)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", absDir, err)
	}

	s.result.Structure = append(s.result.Structure, dirLinePrefix+relDir)

	var subdirs []string
	for _, entry := range entries {
		relPath := joinRel(relDir, entry.Name())
		absPath := filepath.Join(absDir, entry.Name())

		if entry.IsDir() {
			subdirs = append(subdirs, entry.Name())
			continue
		}
		include, err := s.isCandidateFile(absPath, relPath, entry)
		if err != nil {
			return err
		}
		if !include || !s.cfg.AllowsExtension(fileExtension(entry.Name())) {
			continue
		}

		s.result.Structure = append(s.result.Structure, fileLinePrefix+relPath)
		s.result.Matched++
		if len(s.result.Selected) < s.cfg.MaxFiles {
			s.result.Selected = append(s.result.Selected, relPath)
		}
	}

	for _, name := range subdirs {
		relPath := joinRel(relDir, name)
		if s.isExcluded(relPath) {
			s.debug("directory excluded", map[string]any{"path": relPath})
			continue
		}
		if err := s.walk(filepath.Join(absDir, name), relPath); err != nil {
			return err
		}
	}
	return nil
}

// isCandidateFile filters out entries that cannot be read as repository
// files: symlinked directories, dangling links, links leaving the root,
// and special files.
func (s *scanner) isCandidateFile(absPath, relPath string, entry fs.DirEntry) (bool, error) {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.Type().IsRegular(), nil
	}

	target, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		loggerpkg.Warn(s.opts.Logger, "skipping dangling symlink", map[string]any{"path": relPath})
		return false, nil
	}
	if !isWithinRoot(s.root, target) {
		loggerpkg.Warn(s.opts.Logger, "skipping symlink outside repository", map[string]any{
			"path":   relPath,
			"target": target,
		})
		return false, nil
	}
	info, err := os.Stat(target)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", relPath, err)
	}
	if info.IsDir() {
		s.debug("symlinked directory not followed", map[string]any{"path": relPath})
		return false, nil
	}
	return info.Mode().IsRegular(), nil
}

func (s *scanner) isExcluded(relPath string) bool {
	for _, segment := range segments(relPath) {
		if s.cfg.IsExcluded(segment) {
			return true
		}
	}
	return false
}

func (s *scanner) debug(msg string, obj any) {
	loggerpkg.Debug(s.opts.Verbose, s.opts.Logger, msg, obj)
}
