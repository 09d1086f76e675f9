package polyfill

import (
	"math"
	"strings"

	"github.com/specvital/webcompat/pkg/domain"
)

// Categories splits recommendations by type.
type Categories struct {
	Fallback []domain.Recommendation `json:"fallback"`
	NPM      []domain.Recommendation `json:"npm"`
}

// Categorize buckets recs into npm and fallback recommendations, keeping order.
func Categorize(recs []domain.Recommendation) Categories {
	c := Categories{
		Fallback: []domain.Recommendation{},
		NPM:      []domain.Recommendation{},
	}
	for _, rec := range recs {
		switch rec.Type {
		case domain.RecommendationNPM:
			c.NPM = append(c.NPM, rec)
		case domain.RecommendationFallback:
			c.Fallback = append(c.Fallback, rec)
		}
	}
	return c
}

// firstChoices returns the recommended package of every npm recommendation.
func firstChoices(recs []domain.Recommendation) []domain.Package {
	var out []domain.Package
	for _, rec := range recs {
		if rec.Type != domain.RecommendationNPM {
			continue
		}
		if p := rec.Recommended(); p != nil {
			out = append(out, *p)
		}
	}
	return out
}

// PackageNames returns the deduplicated first-choice package ids in order.
func PackageNames(recs []domain.Recommendation) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, p := range firstChoices(recs) {
		if _, dup := seen[p.Package]; dup {
			continue
		}
		seen[p.Package] = struct{}{}
		names = append(names, p.Package)
	}
	return names
}

// InstallCommand returns "npm install a b ..." over the first-choice
// packages, or "" when no npm recommendation exists.
func InstallCommand(recs []domain.Recommendation) string {
	names := PackageNames(recs)
	if len(names) == 0 {
		return ""
	}
	return "npm install " + strings.Join(names, " ")
}

// ImportStatements returns the deduplicated import statements of the
// first-choice packages in order.
func ImportStatements(recs []domain.Recommendation) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range firstChoices(recs) {
		if p.Import == "" {
			continue
		}
		if _, dup := seen[p.Import]; dup {
			continue
		}
		seen[p.Import] = struct{}{}
		out = append(out, p.Import)
	}
	return out
}

// TotalSizeKB sums the sizes of the distinct first-choice packages.
// Packages without size data are ignored.
func TotalSizeKB(recs []domain.Recommendation) float64 {
	seen := make(map[string]struct{})
	var total float64
	for _, p := range firstChoices(recs) {
		if p.SizeKB == nil {
			continue
		}
		// one package can back several features; count it once per import
		key := p.Package + "\x00" + p.Import
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		total += *p.SizeKB
	}
	return math.Round(total*100) / 100
}
