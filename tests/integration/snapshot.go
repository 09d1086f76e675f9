//go:build integration

package integration

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/specvital/webcompat/pkg/domain"
)

var unsafePathChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// scoreTolerance absorbs float noise when comparing stored scores.
const scoreTolerance = 0.01

// Snapshot is the golden record of analyzing one repository.
type Snapshot struct {
	Aggregate  float64            `json:"aggregate"`
	Features   SnapshotFeatures   `json:"features"`
	Files      map[string]int     `json:"files"`
	Polyfills  []string           `json:"polyfills"`
	Ref        string             `json:"ref"`
	Repository string             `json:"repository"`
	Scores     map[string]float64 `json:"scores"`
}

// SnapshotFeatures lists detected features per report language.
type SnapshotFeatures struct {
	CSS  []string `json:"css"`
	HTML []string `json:"html"`
	JS   []string `json:"js"`
}

// SnapshotFromReport creates a Snapshot from an analysis report.
func SnapshotFromReport(repo Repository, report *domain.AnalysisReport) *Snapshot {
	files := make(map[string]int, len(report.Summary.Languages))
	for lang, summary := range report.Summary.Languages {
		files[lang] = summary.FilesAnalyzed
	}

	scores := make(map[string]float64, len(report.Scores.Browsers))
	for browser, s := range report.Scores.Browsers {
		scores[browser] = s.Score
	}

	polyfills := make([]string, 0, len(report.Polyfills))
	for _, rec := range report.Polyfills {
		polyfills = append(polyfills, string(rec.FeatureID))
	}

	return &Snapshot{
		Aggregate: report.Scores.Aggregate,
		Features: SnapshotFeatures{
			CSS:  report.Features.CSS,
			HTML: report.Features.HTML,
			JS:   report.Features.JS,
		},
		Files:      files,
		Polyfills:  polyfills,
		Ref:        repo.Ref,
		Repository: repo.Name,
		Scores:     scores,
	}
}

// SaveSnapshot writes a snapshot to the golden directory.
func SaveSnapshot(snapshot *Snapshot) error {
	goldenDir, err := getGoldenDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(goldenDir, 0755); err != nil {
		return fmt.Errorf("create golden dir: %w", err)
	}

	path := filepath.Join(goldenDir, snapshotFilename(snapshot.Repository, snapshot.Ref))
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	return nil
}

// LoadSnapshot reads a snapshot from the golden directory.
func LoadSnapshot(repoName, ref string) (*Snapshot, error) {
	goldenDir, err := getGoldenDir()
	if err != nil {
		return nil, err
	}

	path := filepath.Join(goldenDir, snapshotFilename(repoName, ref))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("snapshot not found: %s (run with -update to create)", path)
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}

// ScoreDiff is a changed browser score.
type ScoreDiff struct {
	Actual   float64
	Expected float64
}

// SnapshotDiff lists differences between a golden and a fresh snapshot.
type SnapshotDiff struct {
	ExtraFeatures   []string
	FileCountDiffs  map[string]int
	MissingFeatures []string
	ScoreDiffs      map[string]ScoreDiff
}

// IsEmpty reports whether the snapshots match.
func (d *SnapshotDiff) IsEmpty() bool {
	return len(d.ExtraFeatures) == 0 &&
		len(d.FileCountDiffs) == 0 &&
		len(d.MissingFeatures) == 0 &&
		len(d.ScoreDiffs) == 0
}

// String returns a human-readable diff summary.
func (d *SnapshotDiff) String() string {
	if d.IsEmpty() {
		return "no differences"
	}

	var sb strings.Builder

	for _, lang := range sortedKeys(d.FileCountDiffs) {
		sb.WriteString(fmt.Sprintf("  %s files: %+d\n", lang, d.FileCountDiffs[lang]))
	}
	for _, browser := range sortedKeys(d.ScoreDiffs) {
		diff := d.ScoreDiffs[browser]
		sb.WriteString(fmt.Sprintf("  %s score: expected %.2f, got %.2f\n", browser, diff.Expected, diff.Actual))
	}
	writeList(&sb, "missing features", "-", d.MissingFeatures)
	writeList(&sb, "extra features", "+", d.ExtraFeatures)

	return sb.String()
}

func writeList(sb *strings.Builder, title, mark string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("  %s (%d):\n", title, len(items)))
	for i, item := range items {
		if i == 10 {
			sb.WriteString(fmt.Sprintf("    ... and %d more\n", len(items)-10))
			break
		}
		sb.WriteString(fmt.Sprintf("    %s %s\n", mark, item))
	}
}

// CompareSnapshots compares a golden snapshot with a fresh one.
func CompareSnapshots(expected, actual *Snapshot) *SnapshotDiff {
	diff := &SnapshotDiff{
		FileCountDiffs: make(map[string]int),
		ScoreDiffs:     make(map[string]ScoreDiff),
	}

	langs := make(map[string]bool)
	for lang := range expected.Files {
		langs[lang] = true
	}
	for lang := range actual.Files {
		langs[lang] = true
	}
	for lang := range langs {
		if delta := actual.Files[lang] - expected.Files[lang]; delta != 0 {
			diff.FileCountDiffs[lang] = delta
		}
	}

	browsers := make(map[string]bool)
	for b := range expected.Scores {
		browsers[b] = true
	}
	for b := range actual.Scores {
		browsers[b] = true
	}
	for b := range browsers {
		want, got := expected.Scores[b], actual.Scores[b]
		if math.Abs(want-got) > scoreTolerance {
			diff.ScoreDiffs[b] = ScoreDiff{Actual: got, Expected: want}
		}
	}

	wantFeatures := featureKeys(expected.Features)
	gotFeatures := featureKeys(actual.Features)
	for f := range wantFeatures {
		if !gotFeatures[f] {
			diff.MissingFeatures = append(diff.MissingFeatures, f)
		}
	}
	for f := range gotFeatures {
		if !wantFeatures[f] {
			diff.ExtraFeatures = append(diff.ExtraFeatures, f)
		}
	}
	sort.Strings(diff.MissingFeatures)
	sort.Strings(diff.ExtraFeatures)

	return diff
}

// featureKeys flattens per-language lists into "lang:feature" keys.
func featureKeys(f SnapshotFeatures) map[string]bool {
	keys := make(map[string]bool)
	add := func(lang string, ids []string) {
		for _, id := range ids {
			keys[lang+":"+id] = true
		}
	}
	add("css", f.CSS)
	add("html", f.HTML)
	add("js", f.JS)
	return keys
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func getGoldenDir() (string, error) {
	testDataDir, err := getTestDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(testDataDir, "golden"), nil
}

func snapshotFilename(repoName, ref string) string {
	safeName := unsafePathChars.ReplaceAllString(repoName, "_")
	safeRef := unsafePathChars.ReplaceAllString(ref, "_")
	return fmt.Sprintf("%s-%s.json", safeName, safeRef)
}
