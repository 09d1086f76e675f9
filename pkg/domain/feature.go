package domain

import "sort"

// FeatureID is the canonical key of one web-platform capability (e.g. "flexbox", "fetch").
type FeatureID string

// FeatureSet is a set of feature IDs. The zero value is not usable; use NewFeatureSet.
type FeatureSet map[FeatureID]struct{}

// NewFeatureSet returns a set holding ids.
func NewFeatureSet(ids ...FeatureID) FeatureSet {
	s := make(FeatureSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id into the set.
func (s FeatureSet) Add(id FeatureID) {
	s[id] = struct{}{}
}

// Has reports whether id is in the set.
func (s FeatureSet) Has(id FeatureID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of features in the set.
func (s FeatureSet) Len() int {
	return len(s)
}

// Merge adds every feature of other into s.
func (s FeatureSet) Merge(other FeatureSet) {
	for id := range other {
		s[id] = struct{}{}
	}
}

// Union returns a new set holding the features of all sets.
func Union(sets ...FeatureSet) FeatureSet {
	out := NewFeatureSet()
	for _, s := range sets {
		out.Merge(s)
	}
	return out
}

// Equal reports whether both sets hold the same features.
func (s FeatureSet) Equal(other FeatureSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// Sorted returns the features in ascending order.
func (s FeatureSet) Sorted() []FeatureID {
	ids := make([]FeatureID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Strings returns the sorted features as plain strings.
func (s FeatureSet) Strings() []string {
	ids := s.Sorted()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// SupportRange is one entry of a browser support table.
// Since and Until are inclusive version tokens; Until is empty for open ranges.
type SupportRange struct {
	Since  string        `json:"since"`
	Until  string        `json:"until,omitempty"`
	Status SupportStatus `json:"status"`
}

// FeatureRecord describes one feature and its per-browser support table.
type FeatureRecord struct {
	// Category groups features (e.g. "html", "css", "js", "js-api").
	Category string `json:"category"`
	// Description is a short human-readable summary.
	Description string `json:"description,omitempty"`
	// ID is the canonical feature key.
	ID FeatureID `json:"id"`
	// Support maps a browser key to its ranges in ascending version order.
	Support map[string][]SupportRange `json:"support"`
	// Title is the display name.
	Title string `json:"title"`
}

// Browsers returns the browser keys present in the support table, sorted.
func (r *FeatureRecord) Browsers() []string {
	out := make([]string, 0, len(r.Support))
	for b := range r.Support {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}
