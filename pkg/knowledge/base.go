// Package knowledge provides the feature knowledge base: a versioned
// feature-to-browser support matrix answering point queries.
//
// A Base is constructed explicitly and shared read-only by all consumers.
// The dataset is loaded lazily on first use; Reload swaps it atomically.
// Unknown features or browsers answer [domain.StatusUnknown], never an error.
package knowledge

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/specvital/webcompat/pkg/domain"
)

// Base is the feature knowledge base. It is safe for concurrent use.
type Base struct {
	opts  options
	mu    sync.Mutex
	table atomic.Pointer[table]
}

type options struct {
	data     []byte
	dataPath string
	logger   *log.Logger
}

// Option configures a Base.
type Option func(*options)

// WithDataPath loads the dataset from a file instead of the embedded copy.
func WithDataPath(path string) Option {
	return func(o *options) {
		o.dataPath = path
	}
}

// WithData loads the dataset from raw JSON bytes.
func WithData(data []byte) Option {
	return func(o *options) {
		o.data = data
	}
}

// WithLogger sets the logger used for load and integrity messages.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates a knowledge base. Nothing is loaded until the first query.
func New(opts ...Option) *Base {
	o := options{logger: log.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Base{opts: o}
}

func (b *Base) current() *table {
	if t := b.table.Load(); t != nil {
		return t
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if t := b.table.Load(); t != nil {
		return t
	}
	t, err := b.load()
	if err != nil {
		b.opts.logger.Error("feature dataset unavailable, using empty table", "err", err)
	}
	b.table.Store(t)
	return t
}

// load always returns a usable table; on failure it is empty.
func (b *Base) load() (*table, error) {
	data := b.opts.data
	source := "inline"

	switch {
	case data != nil:
	case b.opts.dataPath != "":
		source = b.opts.dataPath
		raw, err := os.ReadFile(b.opts.dataPath)
		if err != nil {
			return emptyTable(), domain.NewError(domain.KindDataIntegrity, "read feature dataset").
				WithDetail("path", b.opts.dataPath).
				Wrap(err)
		}
		data = raw
	default:
		source = "embedded"
		data = embeddedFeatures
	}

	t, err := parseTable(data)
	if err != nil {
		return emptyTable(), domain.NewError(domain.KindDataIntegrity, "parse feature dataset").
			WithDetail("source", source).
			Wrap(err)
	}

	b.opts.logger.Debug("feature dataset loaded", "source", source, "features", len(t.features), "version", t.version)
	return t, nil
}

// Load forces the lazy load and reports dataset problems.
// Queries work regardless: a failed load leaves an empty table.
func (b *Base) Load() error {
	if b.table.Load() != nil {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.table.Load() != nil {
		return nil
	}
	t, err := b.load()
	b.table.Store(t)
	if err != nil {
		b.opts.logger.Error("feature dataset unavailable, using empty table", "err", err)
	}
	return err
}

// Reload re-reads the dataset and replaces the table atomically.
// Concurrent readers see either the old or the new table, never a mix.
func (b *Base) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	t, err := b.load()
	b.table.Store(t)
	if err != nil {
		b.opts.logger.Error("feature dataset reload failed, using empty table", "err", err)
		return err
	}
	b.opts.logger.Info("feature dataset reloaded", "features", len(t.features), "version", t.version)
	return nil
}

// Feature returns a copy of the record for id.
func (b *Base) Feature(id domain.FeatureID) (*domain.FeatureRecord, bool) {
	rec, ok := b.current().features[id]
	if !ok {
		return nil, false
	}
	out := rec.toRecord()
	return &out, true
}

// HasFeature reports whether id is in the dataset.
func (b *Base) HasFeature(id domain.FeatureID) bool {
	_, ok := b.current().features[id]
	return ok
}

// Title returns the display name of id, or id itself when unknown.
func (b *Base) Title(id domain.FeatureID) string {
	if rec, ok := b.current().features[id]; ok && rec.title != "" {
		return rec.title
	}
	return string(id)
}

// Features returns every feature ID, sorted.
func (b *Base) Features() []domain.FeatureID {
	t := b.current()
	out := make([]domain.FeatureID, 0, len(t.features))
	for id := range t.features {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Browsers returns every browser key known to the dataset, sorted.
func (b *Base) Browsers() []string {
	t := b.current()
	out := make([]string, 0, len(t.browsers))
	for key := range t.browsers {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// IsKnownBrowser reports whether browser is in the dataset.
func (b *Base) IsKnownBrowser(browser string) bool {
	_, ok := b.current().browsers[normalizeBrowser(browser)]
	return ok
}

// BrowserName returns the display name of browser, or the key when unknown.
func (b *Base) BrowserName(browser string) string {
	if info, ok := b.current().browsers[normalizeBrowser(browser)]; ok && info.name != "" {
		return info.name
	}
	return browser
}

// CheckSupport resolves the support status of id in browser at version.
//
// An exact version match wins; otherwise the nearest lower defined version
// applies, so support is monotonic unless the table states otherwise. A
// version older than the first entry is unsupported. An empty version,
// "all", "latest" or "stable" resolves to the newest entry. Unknown feature,
// browser or unparseable version yields "u".
func (b *Base) CheckSupport(id domain.FeatureID, browser, version string) domain.SupportStatus {
	rec, ok := b.current().features[id]
	if !ok {
		return domain.StatusUnknown
	}
	ranges, ok := rec.support[normalizeBrowser(browser)]
	if !ok || len(ranges) == 0 {
		return domain.StatusUnknown
	}
	if version == "" {
		return ranges[len(ranges)-1].status
	}
	requested := ParseVersionRange(version).Since
	switch requested.kind {
	case kindAll:
		return ranges[len(ranges)-1].status
	case kindOther:
		return domain.StatusUnknown
	}
	return resolve(ranges, requested)
}

func resolve(ranges []supportRange, v Version) domain.SupportStatus {
	for _, r := range ranges {
		if r.versions.Contains(v) {
			return r.status
		}
	}

	// ranges are sorted ascending by Since; take the last one starting at or below v.
	idx := sort.Search(len(ranges), func(i int) bool {
		return ranges[i].versions.Since.Compare(v) > 0
	})
	if idx == 0 {
		return domain.StatusUnsupported
	}
	return ranges[idx-1].status
}

// Stats summarizes the loaded dataset.
type Stats struct {
	Browsers   int            `json:"browsers"`
	ByBrowser  map[string]int `json:"byBrowser"`
	ByCategory map[string]int `json:"byCategory"`
	Features   int            `json:"features"`
	Version    string         `json:"version"`
}

// Statistics returns counts of the loaded dataset.
func (b *Base) Statistics() Stats {
	t := b.current()
	stats := Stats{
		Browsers:   len(t.browsers),
		ByBrowser:  make(map[string]int),
		ByCategory: make(map[string]int),
		Features:   len(t.features),
		Version:    t.version,
	}
	for _, rec := range t.features {
		stats.ByCategory[rec.category]++
		for browser := range rec.support {
			stats.ByBrowser[browser]++
		}
	}
	return stats
}

// String implements fmt.Stringer for logging.
func (s Stats) String() string {
	return fmt.Sprintf("dataset %s: %d features, %d browsers", s.Version, s.Features, s.Browsers)
}
