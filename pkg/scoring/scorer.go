// Package scoring computes per-browser compatibility scores for a feature set.
package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/specvital/webcompat/pkg/domain"
	"github.com/specvital/webcompat/pkg/knowledge"
)

// PerfectScore is the score of a browser with nothing to penalize.
const PerfectScore = 100.0

// DefaultBrowsers returns the browser set scored when a request names none.
func DefaultBrowsers() map[string]string {
	return map[string]string{
		"chrome":  "120",
		"edge":    "120",
		"firefox": "121",
		"safari":  "17",
	}
}

// Weights maps each known support status to its contribution to a score.
// Unknown status never contributes and is excluded from the denominator.
type Weights struct {
	Partial     float64 `toml:"partial_weight"`
	Polyfill    float64 `toml:"polyfill_weight"`
	Prefixed    float64 `toml:"prefixed_weight"`
	Supported   float64 `toml:"supported_weight"`
	Unsupported float64 `toml:"unsupported_weight"`
}

// DefaultWeights counts partial and prefixed support at half weight.
func DefaultWeights() Weights {
	return Weights{
		Partial:     0.5,
		Polyfill:    0,
		Prefixed:    0.5,
		Supported:   1,
		Unsupported: 0,
	}
}

// Validate rejects weights outside [0, 1].
func (w Weights) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"partial", w.Partial},
		{"polyfill", w.Polyfill},
		{"prefixed", w.Prefixed},
		{"supported", w.Supported},
		{"unsupported", w.Unsupported},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || f.value < 0 || f.value > 1 {
			return domain.NewError(domain.KindValidation, "%s weight must be between 0 and 1", f.name).
				WithDetail("weight", f.name).
				WithDetail("value", f.value)
		}
	}
	return nil
}

// For returns the weight of status. ok is false for unknown status.
func (w Weights) For(status domain.SupportStatus) (weight float64, ok bool) {
	switch status {
	case domain.StatusSupported:
		return w.Supported, true
	case domain.StatusPartial:
		return w.Partial, true
	case domain.StatusPrefixed:
		return w.Prefixed, true
	case domain.StatusPolyfill:
		return w.Polyfill, true
	case domain.StatusUnsupported:
		return w.Unsupported, true
	default:
		return 0, false
	}
}

// Scorer resolves support through a knowledge base and scores feature sets.
// It is safe for concurrent use.
type Scorer struct {
	kb      *knowledge.Base
	logger  *log.Logger
	weights Weights
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithWeights replaces the default status weights.
func WithWeights(w Weights) Option {
	return func(s *Scorer) {
		s.weights = w
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Scorer) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Scorer backed by kb.
func New(kb *knowledge.Base, opts ...Option) *Scorer {
	s := &Scorer{
		kb:      kb,
		logger:  log.Default(),
		weights: DefaultWeights(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weights returns the weights in use.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Result is the outcome of scoring one feature set.
type Result struct {
	// Aggregate is the arithmetic mean of the recognized browsers' scores.
	Aggregate float64
	// Browsers holds one score per recognized browser, keyed by lowercase browser key.
	Browsers map[string]domain.BrowserScore
	// Unrecognized lists the requested browsers missing from the dataset, sorted.
	Unrecognized []string
}

// Score scores features against browsers (browser key to version).
// It never fails: unrecognized browsers are set aside and an empty
// feature set scores PerfectScore.
func (s *Scorer) Score(features domain.FeatureSet, browsers map[string]string) Result {
	result := Result{
		Browsers:     make(map[string]domain.BrowserScore),
		Unrecognized: []string{},
	}
	ids := features.Sorted()

	for _, browser := range sortedKeys(browsers) {
		key := strings.ToLower(strings.TrimSpace(browser))
		if !s.kb.IsKnownBrowser(key) {
			result.Unrecognized = append(result.Unrecognized, browser)
			continue
		}
		result.Browsers[key] = s.scoreBrowser(ids, key, strings.TrimSpace(browsers[browser]))
	}

	if len(result.Unrecognized) > 0 {
		s.logger.Warn("unrecognized browsers excluded from scoring", "browsers", result.Unrecognized)
	}

	result.Aggregate = aggregate(result.Browsers)
	return result
}

func (s *Scorer) scoreBrowser(ids []domain.FeatureID, browser, version string) domain.BrowserScore {
	score := domain.BrowserScore{
		Browser:     browser,
		Partial:     []string{},
		Prefixed:    []string{},
		Supported:   []string{},
		Unknown:     []string{},
		Unsupported: []string{},
		Version:     version,
	}

	var sum float64
	known := 0
	for _, id := range ids {
		status := s.kb.CheckSupport(id, browser, version)
		switch status {
		case domain.StatusSupported:
			score.Supported = append(score.Supported, string(id))
		case domain.StatusPartial:
			score.Partial = append(score.Partial, string(id))
		case domain.StatusPrefixed:
			score.Prefixed = append(score.Prefixed, string(id))
		case domain.StatusUnsupported, domain.StatusPolyfill:
			score.Unsupported = append(score.Unsupported, string(id))
		default:
			score.Unknown = append(score.Unknown, string(id))
		}

		w, ok := s.weights.For(status)
		if !ok {
			continue
		}
		sum += w
		known++
	}

	if known == 0 {
		score.Score = PerfectScore
		return score
	}
	score.Score = round2(PerfectScore * sum / float64(known))
	return score
}

func aggregate(scores map[string]domain.BrowserScore) float64 {
	if len(scores) == 0 {
		return PerfectScore
	}
	var total float64
	for _, browser := range sortedKeys(scores) {
		total += scores[browser].Score
	}
	return round2(total / float64(len(scores)))
}

// Scores converts the result to its report shape.
func (r Result) Scores() domain.Scores {
	return domain.Scores{
		Aggregate: r.Aggregate,
		Browsers:  r.Browsers,
	}
}

// NeedsAttention maps every feature that is unsupported, partially
// supported or prefix-only in at least one browser to the sorted list of
// affected browsers.
func (r Result) NeedsAttention() map[domain.FeatureID][]string {
	out := make(map[domain.FeatureID][]string)
	for _, browser := range sortedKeys(r.Browsers) {
		bs := r.Browsers[browser]
		for _, list := range [][]string{bs.Unsupported, bs.Partial, bs.Prefixed} {
			for _, id := range list {
				fid := domain.FeatureID(id)
				out[fid] = append(out[fid], browser)
			}
		}
	}
	return out
}

// AttentionSet returns the keys of NeedsAttention as a feature set.
func (r Result) AttentionSet() domain.FeatureSet {
	set := domain.NewFeatureSet()
	for id := range r.NeedsAttention() {
		set.Add(id)
	}
	return set
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
