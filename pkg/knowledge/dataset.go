package knowledge

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/specvital/webcompat/pkg/domain"
)

//go:embed data/features.json
var embeddedFeatures []byte

type browserInfo struct {
	name     string
	versions []string
}

type supportRange struct {
	versions VersionRange
	status   domain.SupportStatus
}

type record struct {
	category    string
	description string
	id          domain.FeatureID
	support     map[string][]supportRange
	title       string
}

type table struct {
	browsers map[string]browserInfo
	features map[domain.FeatureID]*record
	version  string
}

func emptyTable() *table {
	return &table{
		browsers: make(map[string]browserInfo),
		features: make(map[domain.FeatureID]*record),
	}
}

func normalizeBrowser(b string) string {
	return strings.ToLower(strings.TrimSpace(b))
}

// parseTable reads a dataset document:
//
//	{"version": "...", "browsers": {"chrome": {"name": "Chrome", "versions": [...]}},
//	 "features": {"flexbox": {"title": "...", "category": "css", "stats": {"chrome": {"4-20": "a x", "29": "y"}}}}}
//
// Stats keys are version breakpoints in document order; they are sorted on load.
func parseTable(data []byte) (*table, error) {
	if len(data) == 0 {
		return nil, errors.New("empty dataset")
	}
	if !gjson.ValidBytes(data) {
		return nil, errors.New("dataset is not valid JSON")
	}

	root := gjson.ParseBytes(data)
	features := root.Get("features")
	if !features.IsObject() {
		return nil, errors.New(`dataset has no "features" object`)
	}

	t := emptyTable()
	t.version = root.Get("version").String()

	root.Get("browsers").ForEach(func(key, value gjson.Result) bool {
		info := browserInfo{name: value.Get("name").String()}
		for _, v := range value.Get("versions").Array() {
			info.versions = append(info.versions, v.String())
		}
		t.browsers[normalizeBrowser(key.String())] = info
		return true
	})

	var parseErr error
	features.ForEach(func(key, value gjson.Result) bool {
		id := domain.FeatureID(key.String())
		if _, dup := t.features[id]; dup {
			parseErr = fmt.Errorf("duplicate feature %q", id)
			return false
		}
		rec := &record{
			category:    value.Get("category").String(),
			description: value.Get("description").String(),
			id:          id,
			support:     make(map[string][]supportRange),
			title:       value.Get("title").String(),
		}
		value.Get("stats").ForEach(func(browser, versions gjson.Result) bool {
			name := normalizeBrowser(browser.String())
			var ranges []supportRange
			versions.ForEach(func(ver, status gjson.Result) bool {
				ranges = append(ranges, supportRange{
					versions: ParseVersionRange(ver.String()),
					status:   domain.ParseSupportStatus(status.String()),
				})
				return true
			})
			sort.SliceStable(ranges, func(i, j int) bool {
				return ranges[i].versions.Since.Compare(ranges[j].versions.Since) < 0
			})
			rec.support[name] = ranges
			// Browsers referenced only from stats are still known browsers.
			if _, ok := t.browsers[name]; !ok {
				t.browsers[name] = browserInfo{name: browser.String()}
			}
			return true
		})
		t.features[id] = rec
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return t, nil
}

func (r *record) toRecord() domain.FeatureRecord {
	out := domain.FeatureRecord{
		Category:    r.category,
		Description: r.description,
		ID:          r.id,
		Support:     make(map[string][]domain.SupportRange, len(r.support)),
		Title:       r.title,
	}
	for browser, ranges := range r.support {
		converted := make([]domain.SupportRange, len(ranges))
		for i, sr := range ranges {
			converted[i] = domain.SupportRange{
				Since:  sr.versions.Since.String(),
				Status: sr.status,
			}
			if sr.versions.Until.Compare(sr.versions.Since) != 0 {
				converted[i].Until = sr.versions.Until.String()
			}
		}
		out.Support[browser] = converted
	}
	return out
}
