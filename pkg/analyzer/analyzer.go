// Package analyzer orchestrates feature detection, compatibility scoring and
// polyfill recommendation into a single analysis report.
//
// An Analyzer is built once and reused; it holds no per-request state, so
// concurrent analyses are safe. The logger is taken from the request context
// when one is attached with WithLogger.
package analyzer

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/specvital/webcompat/pkg/domain"
	"github.com/specvital/webcompat/pkg/knowledge"
	"github.com/specvital/webcompat/pkg/parser"
	"github.com/specvital/webcompat/pkg/parser/strategies"
	_ "github.com/specvital/webcompat/pkg/parser/strategies/all"
	"github.com/specvital/webcompat/pkg/polyfill"
	"github.com/specvital/webcompat/pkg/scoring"
)

// Report keys per language, in report order.
var reportLanguages = []domain.Language{
	domain.LanguageHTML,
	domain.LanguageCSS,
	domain.LanguageJavaScript,
}

// Analyzer is the analysis facade.
type Analyzer struct {
	config      Config
	kb          *knowledge.Base
	logger      *log.Logger
	now         func() time.Time
	recommender *polyfill.Recommender
	registry    *strategies.Registry
	scorer      *scoring.Scorer
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithConfig replaces DefaultConfig.
func WithConfig(cfg Config) Option {
	return func(a *Analyzer) {
		a.config = cfg
	}
}

// WithKnowledgeBase shares an existing knowledge base instead of creating one.
func WithKnowledgeBase(kb *knowledge.Base) Option {
	return func(a *Analyzer) {
		a.kb = kb
	}
}

// WithRecommender replaces the polyfill recommender.
func WithRecommender(r *polyfill.Recommender) Option {
	return func(a *Analyzer) {
		a.recommender = r
	}
}

// WithRegistry sets the strategy registry used to pick detectors.
func WithRegistry(r *strategies.Registry) Option {
	return func(a *Analyzer) {
		a.registry = r
	}
}

// WithClock sets the time source for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		a.now = now
	}
}

// WithBaseLogger sets the logger used when the context carries none.
func WithBaseLogger(l *log.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// New creates an Analyzer. It fails only on invalid configuration.
func New(opts ...Option) (*Analyzer, error) {
	a := &Analyzer{
		config:   DefaultConfig(),
		now:      time.Now,
		registry: strategies.DefaultRegistry(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if err := a.config.Validate(); err != nil {
		return nil, err
	}
	if a.logger == nil {
		level, _ := a.config.level()
		a.logger = NewLogger(os.Stderr, level)
	}
	if a.kb == nil {
		kbOpts := []knowledge.Option{knowledge.WithLogger(a.logger)}
		if a.config.Data.Features != "" {
			kbOpts = append(kbOpts, knowledge.WithDataPath(a.config.Data.Features))
		}
		a.kb = knowledge.New(kbOpts...)
	}
	if a.recommender == nil {
		pfOpts := []polyfill.Option{
			polyfill.WithLogger(a.logger),
			polyfill.WithTitles(a.kb.Title),
		}
		if a.config.Data.Polyfills != "" {
			pfOpts = append(pfOpts, polyfill.WithDataPath(a.config.Data.Polyfills))
		}
		a.recommender = polyfill.New(pfOpts...)
	}
	a.scorer = scoring.New(a.kb,
		scoring.WithWeights(a.config.Scoring),
		scoring.WithLogger(a.logger),
	)
	return a, nil
}

// KnowledgeBase returns the knowledge base in use.
func (a *Analyzer) KnowledgeBase() *knowledge.Base {
	return a.kb
}

func (a *Analyzer) loggerFor(ctx context.Context) *log.Logger {
	if l, ok := loggerFrom(ctx); ok {
		return l
	}
	return a.logger
}

// AnalyzeProject detects, scores and recommends for the files in req.
// It never returns nil and never fails: an empty request yields a report
// with Success false and a validation error, unreadable files are skipped
// and listed under Errors.
func (a *Analyzer) AnalyzeProject(ctx context.Context, req domain.AnalysisRequest) *domain.AnalysisReport {
	logger := a.loggerFor(ctx)
	browsers := a.targetBrowsers(req.Browsers)
	report := a.newReport(browsers)

	if req.IsEmpty() {
		err := domain.NewError(domain.KindValidation, "no files to analyze").
			WithDetail("field", "htmlFiles, cssFiles, jsFiles")
		report.Message = err.Message
		report.Errors = append(report.Errors, err.ToMap())
		logger.Warn("rejected empty analysis request")
		return report
	}

	files := map[domain.Language][]string{
		domain.LanguageHTML:       req.HTMLFiles,
		domain.LanguageCSS:        req.CSSFiles,
		domain.LanguageJavaScript: req.JSFiles,
	}
	logger.Debug("analyzing request", "files", req.CountFiles(), "browsers", len(browsers))
	a.analyze(ctx, logger, report, files)
	return report
}

// AnalyzeDirectory discovers web sources under root and analyzes them.
// When browsers is empty the configured default set is used. A missing
// root or a tree without web sources yields an unsuccessful report.
func (a *Analyzer) AnalyzeDirectory(ctx context.Context, root string, browsers map[string]string) *domain.AnalysisReport {
	logger := a.loggerFor(ctx)

	discovered, err := parser.Discover(ctx, root, a.config.scanOptions(logger)...)
	if err != nil {
		report := a.newReport(a.targetBrowsers(browsers))
		report.Message = "cannot discover files"
		report.Errors = append(report.Errors, withPath(domain.ErrorToMap(err), root))
		logger.Error("discovery failed", "root", root, "err", err)
		return report
	}
	logger.Info("discovered files",
		"root", root,
		"html", len(discovered.Files.HTML),
		"css", len(discovered.Files.CSS),
		"js", len(discovered.Files.JS),
		"skipped", discovered.Skipped,
	)

	report := a.AnalyzeProject(ctx, domain.AnalysisRequest{
		Browsers:  browsers,
		CSSFiles:  discovered.Files.CSS,
		HTMLFiles: discovered.Files.HTML,
		JSFiles:   discovered.Files.JS,
	})
	for _, walkErr := range discovered.Errors {
		report.Errors = append(report.Errors, domain.ErrorToMap(walkErr))
	}
	report.Summary.FilesSkipped += discovered.Skipped
	return report
}

func (a *Analyzer) analyze(ctx context.Context, logger *log.Logger, report *domain.AnalysisReport, files map[domain.Language][]string) {
	start := a.now()
	opts := a.config.scanOptions(logger)

	sets := make(map[domain.Language]domain.FeatureSet, len(reportLanguages))
	for _, lang := range reportLanguages {
		paths := files[lang]
		batch := parser.ParseFilesWith(ctx, a.resolver(lang), paths, opts...)

		for _, fe := range batch.Errors {
			report.Errors = append(report.Errors, withPath(domain.ErrorToMap(fe.Err), fe.Path))
		}

		sets[lang] = batch.Features
		key := lang.ReportKey()
		report.Summary.Languages[key] = domain.LanguageSummary{
			Features:      batch.Features.Len(),
			FilesAnalyzed: len(batch.Results),
			FilesSkipped:  len(batch.Errors),
		}
		report.Summary.FilesAnalyzed += len(batch.Results)
		report.Summary.FilesSkipped += len(batch.Errors)
	}

	all := domain.Union(sets[domain.LanguageHTML], sets[domain.LanguageCSS], sets[domain.LanguageJavaScript])
	report.Features = domain.FeatureLists{
		All:  all.Strings(),
		CSS:  sets[domain.LanguageCSS].Strings(),
		HTML: sets[domain.LanguageHTML].Strings(),
		JS:   sets[domain.LanguageJavaScript].Strings(),
	}
	report.Summary.TotalFeatures = all.Len()

	scores := a.scorer.Score(all, report.Browsers)
	report.Scores = scores.Scores()
	report.UnrecognizedBrowsers = scores.Unrecognized
	report.Summary.AggregateScore = scores.Aggregate

	report.Polyfills = a.recommender.Recommend(scores.AttentionSet(), report.Browsers, scores.NeedsAttention())

	buckets := polyfill.Categorize(report.Polyfills)
	report.Summary.PolyfillsNeeded = len(buckets.NPM)
	report.Summary.FallbacksNeeded = len(buckets.Fallback)
	report.Summary.InstallCommand = polyfill.InstallCommand(report.Polyfills)

	report.Success = true
	logger.Info("analysis complete",
		"files", report.Summary.FilesAnalyzed,
		"skipped", report.Summary.FilesSkipped,
		"features", report.Summary.TotalFeatures,
		"score", report.Summary.AggregateScore,
		"elapsed", a.now().Sub(start).Round(time.Millisecond),
	)
}

// resolver picks the detector for files listed under lang. Script files are
// matched by extension so TypeScript sources get their grammar; anything
// else falls back to the language's own strategy.
func (a *Analyzer) resolver(lang domain.Language) parser.Resolver {
	fallback := a.registry.FindByLanguage(lang)
	return func(path string) parser.Detector {
		if s := a.registry.FindStrategy(path); s != nil && s.Language().ReportKey() == lang.ReportKey() {
			return s
		}
		return fallback
	}
}

func (a *Analyzer) targetBrowsers(requested map[string]string) map[string]string {
	src := requested
	if len(src) == 0 {
		src = a.config.Browsers
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func (a *Analyzer) newReport(browsers map[string]string) *domain.AnalysisReport {
	return &domain.AnalysisReport{
		Browsers: browsers,
		Errors:   []map[string]any{},
		Features: domain.FeatureLists{
			All:  []string{},
			CSS:  []string{},
			HTML: []string{},
			JS:   []string{},
		},
		Polyfills: []domain.Recommendation{},
		Scores: domain.Scores{
			Aggregate: scoring.PerfectScore,
			Browsers:  map[string]domain.BrowserScore{},
		},
		Summary: domain.Summary{
			AggregateScore: scoring.PerfectScore,
			Languages:      map[string]domain.LanguageSummary{},
		},
		Timestamp:            a.now().UTC().Format(time.RFC3339),
		UnrecognizedBrowsers: []string{},
	}
}

func withPath(m map[string]any, path string) map[string]any {
	detail, _ := m["detail"].(map[string]any)
	if detail == nil {
		detail = make(map[string]any)
		m["detail"] = detail
	}
	if _, ok := detail["path"]; !ok {
		detail["path"] = path
	}
	return m
}
