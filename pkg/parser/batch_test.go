package parser_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specvital/webcompat/pkg/domain"
	"github.com/specvital/webcompat/pkg/parser"
	"github.com/specvital/webcompat/pkg/parser/strategies"
	"github.com/specvital/webcompat/pkg/parser/strategies/css"
	"github.com/specvital/webcompat/pkg/parser/strategies/html"
	"github.com/specvital/webcompat/pkg/parser/strategies/javascript"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

func TestParseString(t *testing.T) {
	features, err := parser.ParseString(context.Background(), css.NewStrategy(), ".a{display:flex;gap:20px}")
	require.NoError(t, err)
	assert.True(t, features.Has("flexbox"))
	assert.True(t, features.Has("flexbox-gap"))
}

func TestParseFile(t *testing.T) {
	t.Run("should parse and set path", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "index.html", "<dialog></dialog>")

		result, err := parser.ParseFile(context.Background(), html.NewStrategy(), path)

		require.NoError(t, err)
		assert.Equal(t, path, result.Path)
		assert.True(t, result.Features.Has("dialog"))
	})

	t.Run("should report missing file as file_not_found", func(t *testing.T) {
		_, err := parser.ParseFile(context.Background(), html.NewStrategy(), "/nonexistent/index.html")

		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrFileNotFound))

		var domainErr *domain.Error
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "/nonexistent/index.html", domainErr.Detail["path"])
	})
}

func TestParseFiles(t *testing.T) {
	t.Run("should return empty set for empty list", func(t *testing.T) {
		batch := parser.ParseFiles(context.Background(), css.NewStrategy(), nil)
		assert.Equal(t, 0, batch.Features.Len())
		assert.Empty(t, batch.Errors)
	})

	t.Run("should skip unreadable files and keep the rest", func(t *testing.T) {
		valid := writeFile(t, t.TempDir(), "app.js", "fetch('/x').then(r=>r.json())")

		batch := parser.ParseFiles(context.Background(), javascript.NewStrategy(),
			[]string{valid, "/nonexistent"}, parser.WithLogger(quietLogger()))

		assert.True(t, batch.Features.Has("fetch"))
		assert.True(t, batch.Features.Has("promises"))
		assert.True(t, batch.Features.Has("arrow-functions"))
		require.Len(t, batch.Errors, 1)
		assert.Equal(t, "/nonexistent", batch.Errors[0].Path)
		assert.True(t, errors.Is(batch.Errors[0], domain.ErrFileNotFound))
		require.Len(t, batch.Results, 1)
		assert.Equal(t, valid, batch.Results[0].Path)
	})

	t.Run("should equal the union of single-file results", func(t *testing.T) {
		dir := t.TempDir()
		sources := []string{
			".a{display:flex;gap:1px}",
			".b{position:sticky}",
			"@supports (display:grid){.c{display:grid}}",
			".d{text-overflow:ellipsis}",
		}
		var paths []string
		var singles []domain.FeatureSet
		for i, src := range sources {
			path := writeFile(t, dir, filepath.Join("css", string(rune('a'+i))+".css"), src)
			paths = append(paths, path)
			features, err := parser.ParseString(context.Background(), css.NewStrategy(), src)
			require.NoError(t, err)
			singles = append(singles, features)
		}

		for _, workers := range []int{1, 2, 8} {
			batch := parser.ParseFiles(context.Background(), css.NewStrategy(), paths, parser.WithWorkers(workers))
			assert.True(t, batch.Features.Equal(domain.Union(singles...)), "workers=%d", workers)

			require.Len(t, batch.Results, len(paths))
			for i, r := range batch.Results {
				assert.Equal(t, paths[i], r.Path, "results keep input order")
			}
		}
	})

	t.Run("should resolve detectors per file", func(t *testing.T) {
		dir := t.TempDir()
		paths := []string{
			writeFile(t, dir, "index.html", "<video></video>"),
			writeFile(t, dir, "site.css", ".a{display:grid}"),
			writeFile(t, dir, "notes.txt", "fetch"),
		}

		registry := strategies.NewRegistry()
		registry.Register(html.NewStrategy())
		registry.Register(css.NewStrategy())

		batch := parser.ParseFilesWith(context.Background(), func(path string) parser.Detector {
			s := registry.FindStrategy(path)
			if s == nil {
				return nil
			}
			return s
		}, paths, parser.WithLogger(quietLogger()))

		assert.Equal(t, []string{"css-grid", "video"}, batch.Features.Strings())
		require.Len(t, batch.Errors, 1)
		assert.True(t, errors.Is(batch.Errors[0], domain.ErrParse))
	})
}
