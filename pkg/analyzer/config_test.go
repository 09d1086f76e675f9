package analyzer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specvital/webcompat/pkg/domain"
	"github.com/specvital/webcompat/pkg/parser"
	"github.com/specvital/webcompat/pkg/scoring"
)

func TestDefaultConfig(t *testing.T) {
	t.Run("should be valid", func(t *testing.T) {
		cfg := DefaultConfig()

		require.NoError(t, cfg.Validate())
		assert.Equal(t, scoring.DefaultBrowsers(), cfg.Browsers)
		assert.Equal(t, scoring.DefaultWeights(), cfg.Scoring)
		assert.Equal(t, int64(parser.DefaultMaxFileSize), cfg.Scan.MaxFileSize)
		assert.True(t, cfg.Scan.Gitignore)
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("should decode every section", func(t *testing.T) {
		// Given
		path := writeFile(t, t.TempDir(), "webcompat.toml", `
[browsers]
chrome = "100"
ie = "11"

[scoring]
partial_weight = 0.25
prefixed_weight = 0.75

[scan]
workers = 2
max_file_size = 2048
exclude = ["**/*.min.js", "fixtures"]
gitignore = false

[data]
polyfills = "/tmp/polyfills.json"

[log]
level = "debug"
`)

		// When
		cfg, err := LoadConfig(path)

		// Then
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"chrome": "100", "ie": "11"}, cfg.Browsers)
		assert.Equal(t, 0.25, cfg.Scoring.Partial)
		assert.Equal(t, 0.75, cfg.Scoring.Prefixed)
		assert.Equal(t, 1.0, cfg.Scoring.Supported)
		assert.Equal(t, 2, cfg.Scan.Workers)
		assert.Equal(t, int64(2048), cfg.Scan.MaxFileSize)
		assert.Equal(t, []string{"**/*.min.js", "fixtures"}, cfg.Scan.Exclude)
		assert.False(t, cfg.Scan.Gitignore)
		assert.Equal(t, "/tmp/polyfills.json", cfg.Data.Polyfills)
		assert.Equal(t, "", cfg.Data.Features)
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("should keep defaults for omitted sections", func(t *testing.T) {
		// Given
		path := writeFile(t, t.TempDir(), "webcompat.toml", "[log]\nlevel = \"warn\"\n")

		// When
		cfg, err := LoadConfig(path)

		// Then
		require.NoError(t, err)
		assert.Equal(t, scoring.DefaultBrowsers(), cfg.Browsers)
		assert.Equal(t, scoring.DefaultWeights(), cfg.Scoring)
	})

	t.Run("should reject unknown keys", func(t *testing.T) {
		// Given
		path := writeFile(t, t.TempDir(), "webcompat.toml", "[scan]\nthreads = 4\n")

		// When
		_, err := LoadConfig(path)

		// Then
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Contains(t, err.Error(), "scan.threads")
	})

	t.Run("should reject weights above one", func(t *testing.T) {
		// Given
		path := writeFile(t, t.TempDir(), "webcompat.toml", "[scoring]\npartial_weight = 1.5\n")

		// When
		_, err := LoadConfig(path)

		// Then
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("should reject malformed TOML", func(t *testing.T) {
		// Given
		path := writeFile(t, t.TempDir(), "webcompat.toml", "[scan\n")

		// When
		_, err := LoadConfig(path)

		// Then
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("should report a missing file", func(t *testing.T) {
		// When
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))

		// Then
		assert.ErrorIs(t, err, domain.ErrFileNotFound)
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative workers", func(c *Config) { c.Scan.Workers = -1 }},
		{"too many workers", func(c *Config) { c.Scan.Workers = parser.MaxWorkers + 1 }},
		{"negative max file size", func(c *Config) { c.Scan.MaxFileSize = -1 }},
		{"empty browser key", func(c *Config) { c.Browsers[" "] = "1" }},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }},
		{"negative weight", func(c *Config) { c.Scoring.Unsupported = -0.5 }},
	}

	for _, tt := range tests {
		t.Run("should reject "+tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()

			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}
