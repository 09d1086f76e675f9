package analyzer

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/specvital/webcompat/pkg/domain"
	"github.com/specvital/webcompat/pkg/parser"
	"github.com/specvital/webcompat/pkg/scoring"
)

// Config holds analyzer settings. The zero value is not valid; start from
// DefaultConfig or LoadConfig.
type Config struct {
	// Browsers is the target set used when a request names none.
	Browsers map[string]string `toml:"browsers"`
	Data     DataConfig        `toml:"data"`
	Log      LogConfig         `toml:"log"`
	Scan     ScanConfig        `toml:"scan"`
	Scoring  scoring.Weights   `toml:"scoring"`
}

// DataConfig overrides the embedded datasets.
type DataConfig struct {
	Features  string `toml:"features"`
	Polyfills string `toml:"polyfills"`
}

// LogConfig sets the level of the analyzer's own logger.
type LogConfig struct {
	Level string `toml:"level"`
}

// ScanConfig controls file discovery and batch parsing.
type ScanConfig struct {
	Exclude []string `toml:"exclude"`
	// Gitignore makes directory analysis skip paths ignored by root/.gitignore.
	Gitignore   bool     `toml:"gitignore"`
	Include     []string `toml:"include"`
	MaxFileSize int64    `toml:"max_file_size"`
	Workers     int      `toml:"workers"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Browsers: scoring.DefaultBrowsers(),
		Log:      LogConfig{Level: "info"},
		Scan: ScanConfig{
			Gitignore:   true,
			MaxFileSize: parser.DefaultMaxFileSize,
		},
		Scoring: scoring.DefaultWeights(),
	}
}

// LoadConfig reads a TOML file on top of DefaultConfig. A [browsers] table
// replaces the default browser set instead of extending it. Unknown keys
// are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	cfg.Browsers = nil

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, domain.NewError(domain.KindFileNotFound, "config file not found").
				WithDetail("path", path).
				Wrap(err)
		}
		return Config{}, domain.NewError(domain.KindValidation, "decode config").
			WithDetail("path", path).
			Wrap(err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, domain.NewError(domain.KindValidation, "unknown config keys: %s", strings.Join(keys, ", ")).
			WithDetail("path", path)
	}

	if cfg.Browsers == nil {
		cfg.Browsers = scoring.DefaultBrowsers()
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks weights, scan limits, browsers and log level.
func (c Config) Validate() error {
	if err := c.Scoring.Validate(); err != nil {
		return err
	}
	if c.Scan.Workers < 0 {
		return domain.NewError(domain.KindValidation, "scan.workers must not be negative").
			WithDetail("value", c.Scan.Workers)
	}
	if c.Scan.Workers > parser.MaxWorkers {
		return domain.NewError(domain.KindValidation, "scan.workers must not exceed %d", parser.MaxWorkers).
			WithDetail("value", c.Scan.Workers)
	}
	if c.Scan.MaxFileSize < 0 {
		return domain.NewError(domain.KindValidation, "scan.max_file_size must not be negative").
			WithDetail("value", c.Scan.MaxFileSize)
	}
	for browser := range c.Browsers {
		if strings.TrimSpace(browser) == "" {
			return domain.NewError(domain.KindValidation, "browser key must not be empty")
		}
	}
	if _, err := c.level(); err != nil {
		return domain.NewError(domain.KindValidation, "invalid log level").
			WithDetail("value", c.Log.Level).
			Wrap(err)
	}
	return nil
}

func (c Config) level() (log.Level, error) {
	if c.Log.Level == "" {
		return log.InfoLevel, nil
	}
	return log.ParseLevel(c.Log.Level)
}

func (c Config) scanOptions(logger *log.Logger) []parser.ScanOption {
	return []parser.ScanOption{
		parser.WithExcludePatterns(c.Scan.Exclude),
		parser.WithGitignore(c.Scan.Gitignore),
		parser.WithLogger(logger),
		parser.WithMaxFileSize(c.Scan.MaxFileSize),
		parser.WithPatterns(c.Scan.Include),
		parser.WithWorkers(c.Scan.Workers),
	}
}
