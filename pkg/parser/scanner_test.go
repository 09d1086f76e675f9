package parser_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specvital/webcompat/pkg/domain"
	"github.com/specvital/webcompat/pkg/parser"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", rel, err)
	}
	return path
}

func baseNames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

func TestDiscover(t *testing.T) {
	t.Run("should return empty file set for empty directory", func(t *testing.T) {
		// Given
		tmpDir := t.TempDir()

		// When
		result, err := parser.Discover(context.Background(), tmpDir)

		// Then
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Files.Len() != 0 {
			t.Errorf("expected 0 files, got %d", result.Files.Len())
		}
	})

	t.Run("should group web sources by category", func(t *testing.T) {
		// Given
		tmpDir := t.TempDir()
		writeFile(t, tmpDir, "index.html", "<video></video>")
		writeFile(t, tmpDir, "about.htm", "<p></p>")
		writeFile(t, tmpDir, "css/site.css", ".a{}")
		writeFile(t, tmpDir, "js/app.js", "fetch('/')")
		writeFile(t, tmpDir, "js/view.tsx", "const a = 1")
		writeFile(t, tmpDir, "README.md", "# readme")

		// When
		result, err := parser.Discover(context.Background(), tmpDir)

		// Then
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := strings.Join(baseNames(result.Files.HTML), ","); got != "about.htm,index.html" {
			t.Errorf("HTML = %s", got)
		}
		if got := strings.Join(baseNames(result.Files.CSS), ","); got != "site.css" {
			t.Errorf("CSS = %s", got)
		}
		if got := strings.Join(baseNames(result.Files.JS), ","); got != "app.js,view.tsx" {
			t.Errorf("JS = %s", got)
		}
		for _, p := range result.Files.JS {
			if !filepath.IsAbs(p) {
				t.Errorf("expected absolute path, got %s", p)
			}
		}
	})

	t.Run("should skip default directories", func(t *testing.T) {
		// Given
		tmpDir := t.TempDir()
		writeFile(t, tmpDir, "node_modules/lib/index.js", "x")
		writeFile(t, tmpDir, ".git/hooks/a.js", "x")
		writeFile(t, tmpDir, "dist/bundle.js", "x")
		writeFile(t, tmpDir, "src/main.js", "x")

		// When
		result, err := parser.Discover(context.Background(), tmpDir)

		// Then
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := baseNames(result.Files.JS); len(got) != 1 || got[0] != "main.js" {
			t.Errorf("JS = %v, want [main.js]", got)
		}
	})

	t.Run("should respect exclude names and globs", func(t *testing.T) {
		// Given
		tmpDir := t.TempDir()
		writeFile(t, tmpDir, "fixtures/a.css", "x")
		writeFile(t, tmpDir, "src/app.min.js", "x")
		writeFile(t, tmpDir, "src/app.js", "x")

		// When
		result, err := parser.Discover(context.Background(), tmpDir,
			parser.WithExcludePatterns([]string{"fixtures", "**/*.min.js"}))

		// Then
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Files.CSS) != 0 {
			t.Errorf("expected fixtures to be skipped, got %v", result.Files.CSS)
		}
		if got := baseNames(result.Files.JS); len(got) != 1 || got[0] != "app.js" {
			t.Errorf("JS = %v, want [app.js]", got)
		}
	})

	t.Run("should honor the root gitignore when enabled", func(t *testing.T) {
		// Given
		tmpDir := t.TempDir()
		writeFile(t, tmpDir, ".gitignore", "generated/\n*.bundle.js\n")
		writeFile(t, tmpDir, "generated/out.css", "x")
		writeFile(t, tmpDir, "app.bundle.js", "x")
		writeFile(t, tmpDir, "app.js", "x")

		// When
		ignored, err := parser.Discover(context.Background(), tmpDir, parser.WithGitignore(true))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		all, err := parser.Discover(context.Background(), tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Then
		if len(ignored.Files.CSS) != 0 {
			t.Errorf("expected generated/ to be ignored, got %v", ignored.Files.CSS)
		}
		if got := baseNames(ignored.Files.JS); len(got) != 1 || got[0] != "app.js" {
			t.Errorf("JS = %v, want [app.js]", got)
		}
		if all.Files.Len() != 3 {
			t.Errorf("expected 3 files without gitignore, got %d", all.Files.Len())
		}
	})

	t.Run("should filter by include patterns", func(t *testing.T) {
		// Given
		tmpDir := t.TempDir()
		writeFile(t, tmpDir, "public/index.html", "x")
		writeFile(t, tmpDir, "other/page.html", "x")

		// When
		result, err := parser.Discover(context.Background(), tmpDir,
			parser.WithPatterns([]string{"public/**"}))

		// Then
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := baseNames(result.Files.HTML); len(got) != 1 || got[0] != "index.html" {
			t.Errorf("HTML = %v, want [index.html]", got)
		}
	})

	t.Run("should skip files over the size limit", func(t *testing.T) {
		// Given
		tmpDir := t.TempDir()
		writeFile(t, tmpDir, "big.css", strings.Repeat("a", 200))
		writeFile(t, tmpDir, "small.css", "a")

		// When
		result, err := parser.Discover(context.Background(), tmpDir, parser.WithMaxFileSize(100))

		// Then
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := baseNames(result.Files.CSS); len(got) != 1 || got[0] != "small.css" {
			t.Errorf("CSS = %v, want [small.css]", got)
		}
		if result.Skipped != 1 {
			t.Errorf("Skipped = %d, want 1", result.Skipped)
		}
	})

	t.Run("should return file_not_found for missing root", func(t *testing.T) {
		_, err := parser.Discover(context.Background(), filepath.Join(t.TempDir(), "missing"))
		if !errors.Is(err, domain.ErrFileNotFound) {
			t.Errorf("expected ErrFileNotFound, got %v", err)
		}
	})

	t.Run("should stop on cancelled context", func(t *testing.T) {
		tmpDir := t.TempDir()
		writeFile(t, tmpDir, "a.css", "x")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := parser.Discover(ctx, tmpDir)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
