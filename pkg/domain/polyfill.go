package domain

// RecommendationType distinguishes npm polyfills from code fallbacks.
type RecommendationType string

const (
	RecommendationNPM      RecommendationType = "npm"
	RecommendationFallback RecommendationType = "fallback"
)

// Package is one polyfill package candidate.
type Package struct {
	CDN     string   `json:"cdn,omitempty"`
	Import  string   `json:"import"`
	Name    string   `json:"name"`
	Note    string   `json:"note,omitempty"`
	Package string   `json:"package"`
	SizeKB  *float64 `json:"sizeKb,omitempty"`
}

// Fallback is a non-polyfill workaround.
type Fallback struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Recommendation suggests how to cover one feature in the target browsers.
type Recommendation struct {
	// Browsers lists the target browsers that need the recommendation, sorted.
	Browsers []string `json:"browsers"`
	// Fallback is set for fallback-type recommendations.
	Fallback *Fallback `json:"fallback,omitempty"`
	// FeatureID is the feature key.
	FeatureID FeatureID `json:"featureId"`
	// FeatureName is the display name.
	FeatureName string `json:"featureName"`
	// Packages lists npm candidates; the first one is recommended.
	Packages []Package `json:"packages,omitempty"`
	// Type is npm or fallback.
	Type RecommendationType `json:"type"`
}

// Recommended returns the first-choice package, or nil for fallbacks.
func (r Recommendation) Recommended() *Package {
	if len(r.Packages) == 0 {
		return nil
	}
	return &r.Packages[0]
}
