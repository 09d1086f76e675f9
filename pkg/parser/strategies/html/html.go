// Package html detects web-platform features used by HTML documents.
package html

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/specvital/webcompat/pkg/domain"
	"github.com/specvital/webcompat/pkg/parser"
	"github.com/specvital/webcompat/pkg/parser/rules"
	"github.com/specvital/webcompat/pkg/parser/strategies"
)

const strategyName = "html"

func init() {
	strategies.Register(NewStrategy())
}

// Strategy is the HTML feature detector.
type Strategy struct{}

// NewStrategy creates the HTML detector.
func NewStrategy() *Strategy {
	return &Strategy{}
}

func (s *Strategy) Name() string                 { return strategyName }
func (s *Strategy) Priority() int                { return strategies.DefaultPriority }
func (s *Strategy) Language() domain.Language    { return domain.LanguageHTML }
func (s *Strategy) Languages() []domain.Language { return []domain.Language{domain.LanguageHTML} }

// CanHandle accepts .html, .htm and .xhtml files.
func (s *Strategy) CanHandle(filename string) bool {
	lang, ok := domain.LanguageFromPath(filename)
	return ok && lang == domain.LanguageHTML
}

// Validate reports whether the tolerant HTML parser accepts source.
// Malformed markup is accepted; only a parser failure is rejected.
func (s *Strategy) Validate(source []byte) bool {
	_, err := parseDocument(source)
	return err == nil
}

// Parse builds a fresh detection result for source.
func (s *Strategy) Parse(ctx context.Context, source []byte, filename string) (*domain.DetectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := domain.NewDetectionResult(domain.LanguageHTML)
	result.Path = filename
	if len(bytes.TrimSpace(source)) == 0 {
		return result, nil
	}

	doc, err := parseDocument(source)
	if err != nil {
		return nil, domain.NewError(domain.KindParse, "html parser: failed to parse %s", displayName(filename)).
			WithDetail("path", filename).
			Wrap(err)
	}

	w := &walker{
		result:   result,
		explicit: explicitRootTags(source),
	}
	w.walk(doc, 0)
	return result, nil
}

func displayName(filename string) string {
	if filename == "" {
		return "<input>"
	}
	return filepath.Base(filename)
}

// parseDocument builds the tree with scripting disabled so <noscript>
// content is parsed as markup instead of raw text.
func parseDocument(source []byte) (*html.Node, error) {
	return html.ParseWithOptions(bytes.NewReader(source), html.ParseOptionEnableScripting(false))
}

// explicitRootTags reports which of html, head and body were written in the
// source as real start tags. The parser synthesizes them otherwise, and
// synthesized elements must not show up in the inventory.
func explicitRootTags(source []byte) map[string]bool {
	out := make(map[string]bool, 3)
	z := html.NewTokenizer(bytes.NewReader(source))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return out
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch tag := string(bytes.ToLower(name)); tag {
			case "html", "head", "body":
				out[tag] = true
			}
		}
	}
}

type walker struct {
	explicit map[string]bool
	result   *domain.DetectionResult
}

func (w *walker) walk(n *html.Node, depth int) {
	if n == nil || depth > parser.MaxTreeDepth {
		return
	}

	if n.Type == html.ElementNode {
		w.visitElement(n)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c, depth+1)
	}
}

func (w *walker) visitElement(n *html.Node) {
	tag := n.Data
	if n.Namespace == "" {
		tag = strings.ToLower(tag)
		if (tag == "html" || tag == "head" || tag == "body") && !w.explicit[tag] {
			return
		}
	}

	w.result.CountElement(tag)
	rules.Record(w.result, registry.MatchElement(tag)...)

	if isCustomElement(n, tag) {
		w.result.Record("custom-elementsv1", "<"+tag+">")
	}

	parent := parentElement(n)
	switch tag {
	case "source":
		// A source element only ever belongs to its media parent.
		if parent == "video" || parent == "audio" || parent == "picture" {
			w.result.Record(domain.FeatureID(parent), "<"+parent+"> > <source>")
		}
	case "track":
		switch parent {
		case "video":
			w.result.Record("videotracks", "<video> > <track>")
		case "audio":
			w.result.Record("audiotracks", "<audio> > <track>")
		}
	}

	for _, attr := range n.Attr {
		w.visitAttribute(tag, parent, attr)
	}
}

func (w *walker) visitAttribute(tag, parent string, attr html.Attribute) {
	name := strings.ToLower(attr.Key)
	if attr.Namespace != "" {
		name = attr.Namespace + ":" + name
	}
	value := strings.TrimSpace(attr.Val)

	w.result.CountAttribute(name)
	rules.Record(w.result, registry.MatchAttribute(tag, name, value)...)

	switch {
	case strings.HasPrefix(name, "data-") && len(name) > len("data-"):
		w.result.Record("dataset", "[data-*]")
	case strings.HasPrefix(name, "aria-") && len(name) > len("aria-"):
		w.result.Record("wai-aria", "[aria-*]")
	case name == "role":
		w.result.Record("wai-aria", "[role]")
	case name == "is":
		if value != "" {
			w.result.Record("custom-elementsv1", "[is]")
		}
	}

	if !urlAttributes[name] {
		return
	}

	lowerValue := strings.ToLower(value)
	if strings.HasPrefix(lowerValue, "data:") {
		w.result.Record("datauri", "["+name+"=data:]")
		return
	}

	switch name {
	case "href", "xlink:href":
		if strings.HasPrefix(lowerValue, "#") && (tag == "use" || name == "xlink:href") {
			w.result.Record("svg-fragment", tag+"["+name+"=#]")
		}
	case "src", "srcset":
		w.visitResource(tag, parent, name, lowerValue)
	}
}

// visitResource applies the rules that depend on the referenced URL.
func (w *walker) visitResource(tag, parent, name, value string) {
	var urls []string
	if name == "srcset" {
		urls = srcsetURLs(value)
	} else {
		urls = []string{value}
	}

	for _, u := range urls {
		path, fragment, _ := strings.Cut(u, "#")
		path, _, _ = strings.Cut(path, "?")

		if strings.HasSuffix(path, ".svg") {
			if fragment != "" {
				w.result.Record("svg-fragment", "["+name+"=*.svg#]")
			} else {
				w.result.Record("svg-img", "["+name+"=*.svg]")
			}
		}

		if name == "src" && isMediaElement(tag, parent) && hasMediaFragment(fragment) {
			w.result.Record("media-fragments", "["+name+"=#t=]")
		}

		if tag == "track" && name == "src" && strings.HasSuffix(path, ".vtt") {
			w.result.Record("webvtt", "track[src=*.vtt]")
		}
	}
}

var urlAttributes = map[string]bool{
	"action":     true,
	"background": true,
	"cite":       true,
	"data":       true,
	"formaction": true,
	"href":       true,
	"icon":       true,
	"poster":     true,
	"src":        true,
	"srcset":     true,
	"xlink:href": true,
}

// Hyphenated names reserved by SVG and MathML that are not custom elements.
var reservedHyphenatedNames = map[string]bool{
	"annotation-xml":   true,
	"color-profile":    true,
	"font-face":        true,
	"font-face-format": true,
	"font-face-name":   true,
	"font-face-src":    true,
	"font-face-uri":    true,
	"missing-glyph":    true,
}

func isCustomElement(n *html.Node, tag string) bool {
	if n.Namespace != "" || !strings.Contains(tag, "-") {
		return false
	}
	return !reservedHyphenatedNames[tag]
}

func parentElement(n *html.Node) string {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return strings.ToLower(p.Data)
		}
	}
	return ""
}

func isMediaElement(tag, parent string) bool {
	switch tag {
	case "video", "audio":
		return true
	case "source":
		return parent == "video" || parent == "audio"
	}
	return false
}

func hasMediaFragment(fragment string) bool {
	for _, key := range []string{"t=", "track=", "xywh=", "id="} {
		if strings.HasPrefix(fragment, key) || strings.Contains(fragment, "&"+key) {
			return true
		}
	}
	return false
}

// srcsetURLs returns the URL of every image candidate in a srcset value.
func srcsetURLs(value string) []string {
	var urls []string
	for _, candidate := range strings.Split(value, ",") {
		fields := strings.Fields(candidate)
		if len(fields) > 0 {
			urls = append(urls, fields[0])
		}
	}
	return urls
}
