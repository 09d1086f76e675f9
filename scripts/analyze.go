//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/specvital/webcompat/pkg/analyzer"
)

// Usage: go run scripts/analyze.go <path> [browser=version ...]
// WEBCOMPAT_CONFIG names an optional TOML config file.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: go run scripts/analyze.go <path> [browser=version ...]\n")
		os.Exit(1)
	}

	path := os.Args[1]
	browsers, err := parseBrowsers(os.Args[2:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg := analyzer.DefaultConfig()
	if cfgPath := os.Getenv("WEBCOMPAT_CONFIG"); cfgPath != "" {
		cfg, err = analyzer.LoadConfig(cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
			os.Exit(1)
		}
	}

	a, err := analyzer.New(analyzer.WithConfig(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "analyzer error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	logger := analyzer.NewLogger(os.Stderr, log.InfoLevel)
	ctx = analyzer.WithLogger(ctx, logger)
	stats := a.KnowledgeBase().Statistics()
	logger.Info("feature dataset loaded", "features", stats.Features, "browsers", stats.Browsers, "version", stats.Version)

	report := a.AnalyzeDirectory(ctx, path, browsers)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		fmt.Fprintf(os.Stderr, "encode error: %v\n", err)
		os.Exit(1)
	}
	if !report.Success {
		os.Exit(2)
	}
}

func parseBrowsers(args []string) (map[string]string, error) {
	browsers := make(map[string]string, len(args))
	for _, arg := range args {
		name, version, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid browser %q, want name=version", arg)
		}
		browsers[name] = version
	}
	return browsers, nil
}
