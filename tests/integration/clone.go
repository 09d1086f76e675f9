//go:build integration

package integration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// revisionFile records the ref a cached checkout was made from. It is
// written last, so a checkout without it is incomplete.
const revisionFile = ".webcompat-ref"

// cacheEnv overrides the checkout cache directory.
const cacheEnv = "WEBCOMPAT_REPO_CACHE"

// Checkout is a local copy of a pinned repository.
type Checkout struct {
	Cached bool
	Dir    string
}

// Fetch returns a shallow checkout of repo at its pinned ref, reusing a
// complete cached checkout of the same ref.
func Fetch(ctx context.Context, repo Repository) (*Checkout, error) {
	root, err := cacheRoot()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(root, checkoutName(repo))

	if recorded, err := os.ReadFile(filepath.Join(dir, revisionFile)); err == nil {
		if strings.TrimSpace(string(recorded)) == repo.Ref {
			return &Checkout{Cached: true, Dir: dir}, nil
		}
	}

	if _, err := exec.LookPath("git"); err != nil {
		return nil, fmt.Errorf("git not available: %w", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("clear stale checkout: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create checkout cache: %w", err)
	}

	if err := git(ctx, "clone", "--quiet", "--depth=1", "--single-branch", "--branch="+repo.Ref, repo.URL, dir); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("fetch %s@%s: %w", repo.Name, repo.Ref, err)
	}
	if err := os.WriteFile(filepath.Join(dir, revisionFile), []byte(repo.Ref+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("record checkout ref: %w", err)
	}
	return &Checkout{Dir: dir}, nil
}

func git(ctx context.Context, args ...string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ctx.Err()
		}
		return fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func cacheRoot() (string, error) {
	if dir := os.Getenv(cacheEnv); dir != "" {
		return dir, nil
	}
	testData, err := getTestDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(testData, "repos"), nil
}

// checkoutName keeps names filesystem-safe; the ref is verified through
// revisionFile rather than encoded in the directory name.
func checkoutName(repo Repository) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return '_'
		}
	}, repo.Name)
}
