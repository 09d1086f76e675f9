package domain

import "sort"

// Match records which concrete pattern or node shape triggered a feature.
type Match struct {
	Count   int    `json:"count"`
	Pattern string `json:"pattern"`
}

// DetectionResult is the outcome of scanning one source unit.
// Features is a set: a feature is listed once regardless of match count.
// Matches, Elements and Attributes are reporting detail only.
type DetectionResult struct {
	// Attributes counts attribute names (HTML) or property names (CSS).
	Attributes map[string]int `json:"attributes,omitempty"`
	// Elements counts element names (HTML), at-rules (CSS) or node kinds (JS).
	Elements map[string]int `json:"elements,omitempty"`
	// Features is the set of detected features.
	Features FeatureSet `json:"-"`
	// Language is the detector language.
	Language Language `json:"language"`
	// Matches lists per feature the patterns that produced it.
	Matches map[FeatureID][]Match `json:"matches,omitempty"`
	// Path is the source file, empty for in-memory input.
	Path string `json:"path,omitempty"`
}

// NewDetectionResult returns an empty result for lang.
func NewDetectionResult(lang Language) *DetectionResult {
	return &DetectionResult{
		Attributes: make(map[string]int),
		Elements:   make(map[string]int),
		Features:   NewFeatureSet(),
		Language:   lang,
		Matches:    make(map[FeatureID][]Match),
	}
}

// Record adds feature id triggered by pattern.
func (r *DetectionResult) Record(id FeatureID, pattern string) {
	r.Features.Add(id)
	matches := r.Matches[id]
	for i := range matches {
		if matches[i].Pattern == pattern {
			matches[i].Count++
			return
		}
	}
	r.Matches[id] = append(matches, Match{Count: 1, Pattern: pattern})
}

// CountElement increments the element inventory for name.
func (r *DetectionResult) CountElement(name string) {
	r.Elements[name]++
}

// CountAttribute increments the attribute inventory for name.
func (r *DetectionResult) CountAttribute(name string) {
	r.Attributes[name]++
}

// FeatureDetail is one line of a detailed report.
type FeatureDetail struct {
	Feature FeatureID `json:"feature"`
	Matches []Match   `json:"matches"`
	Total   int       `json:"total"`
}

// DetailedReport lists every detected feature with its triggering patterns,
// sorted by feature ID and pattern.
func (r *DetectionResult) DetailedReport() []FeatureDetail {
	ids := r.Features.Sorted()
	out := make([]FeatureDetail, 0, len(ids))
	for _, id := range ids {
		matches := append([]Match(nil), r.Matches[id]...)
		sort.Slice(matches, func(i, j int) bool { return matches[i].Pattern < matches[j].Pattern })
		total := 0
		for _, m := range matches {
			total += m.Count
		}
		out = append(out, FeatureDetail{Feature: id, Matches: matches, Total: total})
	}
	return out
}

// DetectionStats summarizes a detection result.
type DetectionStats struct {
	DistinctAttributes int `json:"distinctAttributes"`
	DistinctElements   int `json:"distinctElements"`
	TotalAttributes    int `json:"totalAttributes"`
	TotalElements      int `json:"totalElements"`
	TotalFeatures      int `json:"totalFeatures"`
	TotalMatches       int `json:"totalMatches"`
}

// Statistics returns counts derived from the same data as DetailedReport.
func (r *DetectionResult) Statistics() DetectionStats {
	stats := DetectionStats{
		DistinctAttributes: len(r.Attributes),
		DistinctElements:   len(r.Elements),
		TotalFeatures:      r.Features.Len(),
	}
	for _, n := range r.Elements {
		stats.TotalElements += n
	}
	for _, n := range r.Attributes {
		stats.TotalAttributes += n
	}
	for id := range r.Features {
		for _, m := range r.Matches[id] {
			stats.TotalMatches += m.Count
		}
	}
	return stats
}
