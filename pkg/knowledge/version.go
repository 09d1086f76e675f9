package knowledge

import (
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

type versionKind int

// Ordering of version kinds: "all" sorts first, technology previews last.
const (
	kindAll versionKind = iota
	kindOther
	kindNumeric
	kindPreview
)

// Version is a browser version token such as "120", "15.2", "TP" or "all".
type Version struct {
	raw      string
	kind     versionKind
	semver   *semver.Version
	segments []int
}

var previewTokens = map[string]bool{
	"tp":      true,
	"preview": true,
	"nightly": true,
	"canary":  true,
	"dev":     true,
}

// newestTokens name whatever release is current; they resolve like a preview.
var newestTokens = map[string]bool{
	"current": true,
	"latest":  true,
	"stable":  true,
}

// ParseVersion parses a single version token. It never fails: tokens that are
// not numeric are ordered by kind and then lexically.
func ParseVersion(s string) Version {
	raw := strings.TrimSpace(s)
	lower := strings.ToLower(raw)
	v := Version{raw: raw}

	switch {
	case lower == "all" || lower == "*":
		v.kind = kindAll
		return v
	case previewTokens[lower] || newestTokens[lower]:
		v.kind = kindPreview
		return v
	}

	trimmed := strings.TrimPrefix(lower, "v")
	if segments, ok := numericSegments(trimmed); ok {
		v.kind = kindNumeric
		v.segments = segments
		// semver only understands up to three segments; longer tokens such as
		// "4.4.3.4" fall back to the segment comparison.
		if len(segments) <= 3 {
			if sv, err := semver.NewVersion(trimmed); err == nil {
				v.semver = sv
			}
		}
		return v
	}

	v.kind = kindOther
	return v
}

func numericSegments(s string) ([]int, bool) {
	if s == "" {
		return nil, false
	}
	parts := strings.Split(s, ".")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

// String returns the original token.
func (v Version) String() string { return v.raw }

// IsNumeric reports whether the token is a dotted number.
func (v Version) IsNumeric() bool { return v.kind == kindNumeric }

// Compare returns -1, 0 or +1 depending on whether v sorts before, equal to or after o.
func (v Version) Compare(o Version) int {
	if v.kind != o.kind {
		if v.kind < o.kind {
			return -1
		}
		return 1
	}

	switch v.kind {
	case kindNumeric:
		if v.semver != nil && o.semver != nil {
			return v.semver.Compare(o.semver)
		}
		return compareSegments(v.segments, o.segments)
	case kindOther:
		return strings.Compare(strings.ToLower(v.raw), strings.ToLower(o.raw))
	default:
		return 0
	}
}

func compareSegments(a, b []int) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		var x, y int
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		if x < y {
			return -1
		}
		if x > y {
			return 1
		}
	}
	return 0
}

// VersionRange is an inclusive range of versions. A single version has Since == Until.
type VersionRange struct {
	Since Version
	Until Version
}

// ParseVersionRange parses "15.2-15.3" style ranges as well as single tokens.
// A dash only separates a range when both sides are numeric.
func ParseVersionRange(s string) VersionRange {
	if lo, hi, ok := strings.Cut(s, "-"); ok {
		since, until := ParseVersion(lo), ParseVersion(hi)
		if since.IsNumeric() && until.IsNumeric() {
			return VersionRange{Since: since, Until: until}
		}
	}
	v := ParseVersion(s)
	return VersionRange{Since: v, Until: v}
}

// Contains reports whether v lies within the range.
func (r VersionRange) Contains(v Version) bool {
	return r.Since.Compare(v) <= 0 && v.Compare(r.Until) <= 0
}
