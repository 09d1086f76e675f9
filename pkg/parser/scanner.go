package parser

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"

	"github.com/specvital/webcompat/pkg/domain"
)

const (
	// DefaultWorkers indicates that batch parsing should use GOMAXPROCS as the worker count.
	DefaultWorkers = 0
	// MaxWorkers is the maximum number of concurrent workers allowed.
	MaxWorkers = 1024
	// DefaultMaxFileSize is the default maximum file size for discovery (10MB).
	DefaultMaxFileSize = 10 * 1024 * 1024
)

// DefaultSkipPatterns contains directory names that are skipped by default during discovery.
var DefaultSkipPatterns = []string{
	"node_modules",
	".git",
	"vendor",
	"dist",
	"build",
	".next",
	".nuxt",
	"coverage",
	".cache",
	"bower_components",
}

// FileSet groups discovered source files by report category.
// Paths are absolute and sorted.
type FileSet struct {
	CSS  []string
	HTML []string
	JS   []string
}

// Len returns the total number of files.
func (f FileSet) Len() int {
	return len(f.CSS) + len(f.HTML) + len(f.JS)
}

// DiscoverResult is the outcome of walking a directory.
type DiscoverResult struct {
	// Errors contains non-fatal walk errors.
	Errors []error
	// Files holds the discovered web sources.
	Files FileSet
	// Skipped counts web sources left out because of size.
	Skipped int
}

// Discover walks root and collects HTML, CSS and script files.
// Directories in DefaultSkipPatterns and ExcludePatterns are not entered.
func Discover(ctx context.Context, root string, opts ...ScanOption) (*DiscoverResult, error) {
	options := newOptions(opts)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, domain.NewError(domain.KindFileAccess, "cannot resolve root: %s", root).Wrap(err)
	}

	skipSet, skipGlobs := splitExcludes(append(append([]string{}, DefaultSkipPatterns...), options.ExcludePatterns...))
	result := &DiscoverResult{}

	var ignore gitignore.GitIgnore
	if options.Gitignore {
		ignore, err = loadGitignore(absRoot)
		if err != nil {
			result.Errors = append(result.Errors, err)
		}
	}

	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if walkErr != nil {
			if path == absRoot {
				return walkErr
			}
			result.Errors = append(result.Errors, fmt.Errorf("access error at %s: %w", path, walkErr))
			return nil
		}

		if d.IsDir() {
			if shouldSkipDir(path, absRoot, skipSet, skipGlobs) || isIgnored(ignore, path, absRoot, true) {
				return filepath.SkipDir
			}
			return nil
		}

		lang, ok := domain.LanguageFromPath(path)
		if !ok {
			return nil
		}

		if len(options.Patterns) > 0 && !matchesAnyPattern(path, absRoot, options.Patterns) {
			return nil
		}
		if len(skipGlobs) > 0 && matchesAnyPattern(path, absRoot, skipGlobs) {
			return nil
		}
		if isIgnored(ignore, path, absRoot, false) {
			return nil
		}

		if options.MaxFileSize > 0 {
			info, err := d.Info()
			if err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("failed to get file info for %s: %w", path, err))
				return nil
			}
			if info.Size() > options.MaxFileSize {
				options.Logger.Debug("skipping large file", "path", path, "size", info.Size())
				result.Skipped++
				return nil
			}
		}

		switch lang.ReportKey() {
		case "html":
			result.Files.HTML = append(result.Files.HTML, path)
		case "css":
			result.Files.CSS = append(result.Files.CSS, path)
		default:
			result.Files.JS = append(result.Files.JS, path)
		}
		return nil
	})

	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			return result, walkErr
		}
		if errors.Is(walkErr, fs.ErrNotExist) {
			return nil, domain.NewError(domain.KindFileNotFound, "directory not found: %s", root).
				WithDetail("path", root).
				Wrap(walkErr)
		}
		return nil, domain.NewError(domain.KindFileAccess, "cannot walk directory: %s", root).
			WithDetail("path", root).
			Wrap(walkErr)
	}

	sort.Strings(result.Files.HTML)
	sort.Strings(result.Files.CSS)
	sort.Strings(result.Files.JS)

	return result, nil
}

// loadGitignore reads root/.gitignore. A missing file yields a nil matcher.
func loadGitignore(root string) (gitignore.GitIgnore, error) {
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}
	ignore, err := gitignore.NewFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ignore, nil
}

func isIgnored(ignore gitignore.GitIgnore, path, rootPath string, isDir bool) bool {
	if ignore == nil || path == rootPath {
		return false
	}
	rel, err := filepath.Rel(rootPath, path)
	if err != nil {
		return false
	}
	match := ignore.Relative(filepath.ToSlash(rel), isDir)
	return match != nil && match.Ignore()
}

// splitExcludes separates plain directory names from doublestar globs.
func splitExcludes(patterns []string) (map[string]bool, []string) {
	skipSet := make(map[string]bool, len(patterns))
	var globs []string
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if isGlob(p) {
			globs = append(globs, p)
			continue
		}
		skipSet[p] = true
	}
	return skipSet, globs
}

func isGlob(pattern string) bool {
	for _, r := range pattern {
		switch r {
		case '*', '?', '[', '{', '/':
			return true
		}
	}
	return false
}

func shouldSkipDir(path, rootPath string, skipSet map[string]bool, globs []string) bool {
	if path == rootPath {
		return false
	}

	if skipSet[filepath.Base(path)] {
		return true
	}
	return len(globs) > 0 && matchesAnyPattern(path, rootPath, globs)
}

func matchesAnyPattern(path, rootPath string, patterns []string) bool {
	relPath, err := filepath.Rel(rootPath, path)
	if err != nil {
		return false
	}
	relPath = filepath.ToSlash(relPath)

	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, relPath)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
