package domain

// AnalysisRequest lists the files to analyze and the target browsers.
type AnalysisRequest struct {
	// Browsers maps a browser key to a version (e.g. {"chrome": "120"}).
	Browsers  map[string]string `json:"browsers,omitempty"`
	CSSFiles  []string          `json:"cssFiles,omitempty"`
	HTMLFiles []string          `json:"htmlFiles,omitempty"`
	JSFiles   []string          `json:"jsFiles,omitempty"`
}

// IsEmpty reports whether no file of any language was requested.
func (r AnalysisRequest) IsEmpty() bool {
	return len(r.HTMLFiles) == 0 && len(r.CSSFiles) == 0 && len(r.JSFiles) == 0
}

// CountFiles returns the number of requested files.
func (r AnalysisRequest) CountFiles() int {
	return len(r.HTMLFiles) + len(r.CSSFiles) + len(r.JSFiles)
}

// BrowserScore is the compatibility score of one target browser.
type BrowserScore struct {
	Browser     string   `json:"browser"`
	Partial     []string `json:"partial"`
	Prefixed    []string `json:"prefixed"`
	Score       float64  `json:"score"`
	Supported   []string `json:"supported"`
	Unknown     []string `json:"unknown"`
	Unsupported []string `json:"unsupported"`
	Version     string   `json:"version"`
}

// Scores holds per-browser scores and their aggregate.
type Scores struct {
	Aggregate float64                 `json:"aggregate"`
	Browsers  map[string]BrowserScore `json:"browsers"`
}

// FeatureLists holds the sorted features per language and their union.
type FeatureLists struct {
	All  []string `json:"all"`
	CSS  []string `json:"css"`
	HTML []string `json:"html"`
	JS   []string `json:"js"`
}

// LanguageSummary counts files and features of one language.
type LanguageSummary struct {
	Features      int `json:"features"`
	FilesAnalyzed int `json:"filesAnalyzed"`
	FilesSkipped  int `json:"filesSkipped"`
}

// Summary aggregates the counts of an analysis.
type Summary struct {
	AggregateScore  float64                    `json:"aggregateScore"`
	FallbacksNeeded int                        `json:"fallbacksNeeded"`
	FilesAnalyzed   int                        `json:"filesAnalyzed"`
	FilesSkipped    int                        `json:"filesSkipped"`
	InstallCommand  string                     `json:"installCommand,omitempty"`
	Languages       map[string]LanguageSummary `json:"languages"`
	PolyfillsNeeded int                        `json:"polyfillsNeeded"`
	TotalFeatures   int                        `json:"totalFeatures"`
}

// AnalysisReport is the structured result of one analysis request.
// It contains only JSON-serializable values with stable keys.
type AnalysisReport struct {
	Browsers             map[string]string `json:"browsers"`
	Errors               []map[string]any  `json:"errors"`
	Features             FeatureLists      `json:"features"`
	Message              string            `json:"message,omitempty"`
	Polyfills            []Recommendation  `json:"polyfills"`
	Scores               Scores            `json:"scores"`
	Success              bool              `json:"success"`
	Summary              Summary           `json:"summary"`
	Timestamp            string            `json:"timestamp"`
	UnrecognizedBrowsers []string          `json:"unrecognizedBrowsers"`
}
