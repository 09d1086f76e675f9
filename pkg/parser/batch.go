package parser

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/specvital/webcompat/pkg/domain"
)

// Detector turns one source unit into a detection result.
//
// Implementations must be pure: every call builds a fresh result, so the
// same input always yields the same output and nothing leaks between calls.
// Malformed input never fails; only context cancellation does.
type Detector interface {
	// Language returns the detector language.
	Language() domain.Language
	// Parse scans source. filename may be empty; detectors may use its
	// extension to pick a grammar.
	Parse(ctx context.Context, source []byte, filename string) (*domain.DetectionResult, error)
}

// ParseString scans in-memory source and returns the detected feature set.
func ParseString(ctx context.Context, d Detector, source string) (domain.FeatureSet, error) {
	result, err := d.Parse(ctx, []byte(source), "")
	if err != nil {
		return domain.NewFeatureSet(), err
	}
	return result.Features, nil
}

// ParseFile reads and scans one file.
// A missing file yields a domain error of kind file_not_found.
func ParseFile(ctx context.Context, d Detector, path string) (*domain.DetectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NewError(domain.KindFileNotFound, "file not found: %s", path).
				WithDetail("path", path).
				Wrap(err)
		}
		return nil, domain.NewError(domain.KindFileAccess, "cannot read file: %s", path).
			WithDetail("path", path).
			Wrap(err)
	}

	result, err := d.Parse(ctx, content, path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	result.Path = path
	return result, nil
}

// FileError records a file skipped during batch parsing.
type FileError struct {
	// Err is the underlying error.
	Err error
	// Path is the skipped file.
	Path string
}

// Error implements the error interface.
func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e FileError) Unwrap() error { return e.Err }

// BatchResult is the outcome of parsing several files.
type BatchResult struct {
	// Errors lists skipped files in input order.
	Errors []FileError
	// Features is the union of all parsed files' features.
	Features domain.FeatureSet
	// Results holds one result per parsed file in input order.
	Results []*domain.DetectionResult
}

// ParseFiles scans every file with d and unions the results.
// Unreadable files are logged and skipped; an empty list yields an empty set.
// Files are parsed concurrently but results keep input order.
func ParseFiles(ctx context.Context, d Detector, paths []string, opts ...ScanOption) *BatchResult {
	return ParseFilesWith(ctx, func(string) Detector { return d }, paths, opts...)
}

// Resolver picks the detector for a file.
type Resolver func(path string) Detector

// ParseFilesWith is ParseFiles with a per-file detector choice.
// Files the resolver returns nil for are skipped with an error.
func ParseFilesWith(ctx context.Context, resolve Resolver, paths []string, opts ...ScanOption) *BatchResult {
	options := newOptions(opts)
	logger := options.Logger

	batch := &BatchResult{Features: domain.NewFeatureSet()}
	if len(paths) == 0 {
		return batch
	}

	workers := options.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}

	sem := semaphore.NewWeighted(int64(workers))
	g, gCtx := errgroup.WithContext(ctx)

	// Each worker owns one slot, so no locking is needed.
	results := make([]*domain.DetectionResult, len(paths))
	errs := make([]error, len(paths))

	for i, path := range paths {
		g.Go(func() error {
			if err := sem.Acquire(gCtx, 1); err != nil {
				errs[i] = err
				return nil
			}
			defer sem.Release(1)

			d := resolve(path)
			if d == nil {
				errs[i] = domain.NewError(domain.KindParse, "no detector for file: %s", path).WithDetail("path", path)
				return nil
			}

			results[i], errs[i] = ParseFile(gCtx, d, path)
			return nil
		})
	}

	_ = g.Wait()

	for i, path := range paths {
		if errs[i] != nil {
			logger.Warn("skipping file", "path", path, "err", errs[i])
			batch.Errors = append(batch.Errors, FileError{Err: errs[i], Path: path})
			continue
		}
		if results[i] == nil {
			continue
		}
		logger.Debug("parsed file", "path", path, "features", results[i].Features.Len())
		batch.Results = append(batch.Results, results[i])
		batch.Features.Merge(results[i].Features)
	}

	return batch
}
