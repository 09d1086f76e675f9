package parser

import (
	"github.com/charmbracelet/log"
)

// ScanOptions configures file discovery and batch parsing.
type ScanOptions struct {
	// ExcludePatterns specifies directory names or doublestar globs to skip
	// during file discovery. These are combined with DefaultSkipPatterns.
	ExcludePatterns []string

	// Gitignore makes discovery honor the .gitignore file at the root.
	Gitignore bool

	// Logger receives skipped-file warnings and per-file debug messages.
	// Nil means log.Default().
	Logger *log.Logger

	// MaxFileSize is the maximum file size in bytes to discover.
	// Larger files are skipped during discovery; explicitly listed files are always parsed.
	MaxFileSize int64

	// Patterns specifies doublestar globs to filter discovered files.
	// Empty means all web source files are candidates.
	Patterns []string

	// Workers specifies the number of concurrent file parsers.
	// Zero or negative values use runtime.GOMAXPROCS(0).
	Workers int
}

// ScanOption is a functional option for configuring discovery and batch parsing.
type ScanOption func(*ScanOptions)

// WithWorkers sets the number of concurrent file parsers.
// Negative values are ignored.
func WithWorkers(n int) ScanOption {
	return func(o *ScanOptions) {
		if n >= 0 {
			o.Workers = n
		}
	}
}

// WithExcludePatterns adds directory patterns to skip during file discovery.
func WithExcludePatterns(patterns []string) ScanOption {
	return func(o *ScanOptions) {
		o.ExcludePatterns = patterns
	}
}

// WithGitignore toggles honoring the root .gitignore during discovery.
func WithGitignore(enabled bool) ScanOption {
	return func(o *ScanOptions) {
		o.Gitignore = enabled
	}
}

// WithMaxFileSize sets the maximum file size to discover.
// Negative values are ignored.
func WithMaxFileSize(size int64) ScanOption {
	return func(o *ScanOptions) {
		if size >= 0 {
			o.MaxFileSize = size
		}
	}
}

// WithPatterns sets glob patterns to filter discovered files.
func WithPatterns(patterns []string) ScanOption {
	return func(o *ScanOptions) {
		o.Patterns = patterns
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) ScanOption {
	return func(o *ScanOptions) {
		o.Logger = l
	}
}

func applyDefaults(opts *ScanOptions) {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
}

func newOptions(opts []ScanOption) *ScanOptions {
	options := &ScanOptions{}
	for _, opt := range opts {
		opt(options)
	}
	applyDefaults(options)
	return options
}
