// Package polyfill maps features lacking native support to npm polyfill
// packages or code fallbacks.
package polyfill

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"

	"github.com/specvital/webcompat/pkg/domain"
)

//go:embed data/polyfills.json
var embeddedPolyfills []byte

type entry struct {
	fallback     *domain.Fallback
	packages     []domain.Package
	polyfillable bool
}

// TitleFunc resolves the display name of a feature.
type TitleFunc func(domain.FeatureID) string

type options struct {
	data     []byte
	dataPath string
	logger   *log.Logger
	title    TitleFunc
}

// Option configures a Recommender.
type Option func(*options)

// WithDataPath loads the polyfill map from a file instead of the embedded copy.
func WithDataPath(path string) Option {
	return func(o *options) {
		o.dataPath = path
	}
}

// WithData loads the polyfill map from raw JSON bytes.
func WithData(data []byte) Option {
	return func(o *options) {
		o.data = data
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTitles sets how feature display names are resolved, typically
// knowledge.Base.Title.
func WithTitles(fn TitleFunc) Option {
	return func(o *options) {
		o.title = fn
	}
}

// Recommender answers polyfill lookups. The map is loaded on first use and
// shared read-only afterwards.
type Recommender struct {
	entries map[domain.FeatureID]entry
	once    sync.Once
	opts    options
}

// New creates a Recommender.
func New(opts ...Option) *Recommender {
	o := options{
		logger: log.Default(),
		title:  func(id domain.FeatureID) string { return string(id) },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Recommender{opts: o}
}

func (r *Recommender) table() map[domain.FeatureID]entry {
	r.once.Do(func() {
		entries, err := r.load()
		if err != nil {
			r.opts.logger.Error("polyfill map unavailable, recommending nothing", "err", err)
			entries = make(map[domain.FeatureID]entry)
		}
		r.entries = entries
	})
	return r.entries
}

func (r *Recommender) load() (map[domain.FeatureID]entry, error) {
	data := r.opts.data
	if data == nil {
		data = embeddedPolyfills
		if r.opts.dataPath != "" {
			raw, err := os.ReadFile(r.opts.dataPath)
			if err != nil {
				return nil, domain.NewError(domain.KindDataIntegrity, "read polyfill map").
					WithDetail("path", r.opts.dataPath).
					Wrap(err)
			}
			data = raw
		}
	}
	entries, err := parseEntries(data)
	if err != nil {
		return nil, domain.NewError(domain.KindDataIntegrity, "parse polyfill map").Wrap(err)
	}
	return entries, nil
}

// parseEntries reads a polyfill map document:
//
//	{"features": {"fetch": {"polyfillable": true, "packages": [{"name": "...", "package": "...", "import": "..."}]},
//	              "css-grid": {"polyfillable": false, "fallback": {"code": "...", "description": "..."}}}}
func parseEntries(data []byte) (map[domain.FeatureID]entry, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("polyfill map is not valid JSON")
	}
	features := gjson.GetBytes(data, "features")
	if !features.IsObject() {
		return nil, errors.New(`polyfill map has no "features" object`)
	}

	entries := make(map[domain.FeatureID]entry)
	var parseErr error
	features.ForEach(func(key, value gjson.Result) bool {
		e := entry{polyfillable: value.Get("polyfillable").Bool()}
		for i, pkg := range value.Get("packages").Array() {
			p := domain.Package{
				CDN:     pkg.Get("cdn").String(),
				Import:  pkg.Get("import").String(),
				Name:    pkg.Get("name").String(),
				Note:    pkg.Get("note").String(),
				Package: pkg.Get("package").String(),
			}
			if p.Package == "" {
				parseErr = fmt.Errorf("feature %q: package %d has no package id", key.String(), i)
				return false
			}
			if size := pkg.Get("sizeKb"); size.Exists() {
				kb := size.Float()
				p.SizeKB = &kb
			}
			e.packages = append(e.packages, p)
		}
		if fb := value.Get("fallback"); fb.IsObject() {
			e.fallback = &domain.Fallback{
				Code:        fb.Get("code").String(),
				Description: fb.Get("description").String(),
			}
		}
		entries[domain.FeatureID(key.String())] = e
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return entries, nil
}

// Has reports whether the map knows anything about id.
func (r *Recommender) Has(id domain.FeatureID) bool {
	_, ok := r.table()[id]
	return ok
}

// Recommend returns one recommendation per feature of features that has a
// polyfill or a fallback, sorted by feature ID. Features with neither are
// skipped. affected optionally narrows the browsers listed per feature;
// features absent from it list every browser of browsers.
func (r *Recommender) Recommend(features domain.FeatureSet, browsers map[string]string, affected map[domain.FeatureID][]string) []domain.Recommendation {
	entries := r.table()
	all := browserKeys(browsers)

	recs := []domain.Recommendation{}
	for _, id := range features.Sorted() {
		e, ok := entries[id]
		if !ok {
			continue
		}

		rec := domain.Recommendation{
			Browsers:    all,
			FeatureID:   id,
			FeatureName: r.opts.title(id),
		}
		if list, ok := affected[id]; ok {
			rec.Browsers = append([]string(nil), list...)
			sort.Strings(rec.Browsers)
		}

		switch {
		case e.polyfillable && len(e.packages) > 0:
			rec.Type = domain.RecommendationNPM
			rec.Packages = append([]domain.Package(nil), e.packages...)
		case e.fallback != nil:
			rec.Type = domain.RecommendationFallback
			fb := *e.fallback
			rec.Fallback = &fb
		default:
			continue
		}
		recs = append(recs, rec)
	}
	return recs
}

func browserKeys(browsers map[string]string) []string {
	keys := make([]string, 0, len(browsers))
	for k := range browsers {
		keys = append(keys, strings.ToLower(strings.TrimSpace(k)))
	}
	sort.Strings(keys)
	return keys
}
