// Package css detects web-platform features used by stylesheets.
//
// Stylesheets are scanned, not parsed into a full CSS object model: comments
// are blanked out, the text is cut into blocks at braces and semicolons, and
// each prelude and declaration is checked against an ordered rule table.
// Malformed input never fails; well-formed portions are still detected.
package css

import (
	"bytes"
	"context"
	"regexp"
	"strings"

	"github.com/specvital/webcompat/pkg/domain"
	"github.com/specvital/webcompat/pkg/parser/rules"
	"github.com/specvital/webcompat/pkg/parser/strategies"
)

const strategyName = "css"

func init() {
	strategies.Register(NewStrategy())
}

// Strategy is the CSS feature detector.
type Strategy struct{}

// NewStrategy creates the CSS detector.
func NewStrategy() *Strategy {
	return &Strategy{}
}

func (s *Strategy) Name() string                 { return strategyName }
func (s *Strategy) Priority() int                { return strategies.DefaultPriority }
func (s *Strategy) Language() domain.Language    { return domain.LanguageCSS }
func (s *Strategy) Languages() []domain.Language { return []domain.Language{domain.LanguageCSS} }

// CanHandle accepts .css files.
func (s *Strategy) CanHandle(filename string) bool {
	lang, ok := domain.LanguageFromPath(filename)
	return ok && lang == domain.LanguageCSS
}

// Validate always accepts: the scanner tolerates any input.
func (s *Strategy) Validate([]byte) bool {
	return true
}

// Parse builds a fresh detection result for source.
func (s *Strategy) Parse(ctx context.Context, source []byte, filename string) (*domain.DetectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := domain.NewDetectionResult(domain.LanguageCSS)
	result.Path = filename
	if len(bytes.TrimSpace(source)) == 0 {
		return result, nil
	}

	sc := &scanner{result: result}
	sc.scan(string(StripComments(source)))
	return result, nil
}

type blockKind int

const (
	blockRoot blockKind = iota
	blockStyle
	blockGroup
	blockDescriptors
	blockKeyframes
	blockKeyframe
)

// At-rules whose body holds declarations rather than nested rules.
var descriptorAtRules = map[string]bool{
	"counter-style":       true,
	"font-face":           true,
	"font-feature-values": true,
	"font-palette-values": true,
	"page":                true,
	"property":            true,
	"viewport":            true,
}

type declaration struct {
	property string
	value    string
}

type block struct {
	decls []declaration
	kind  blockKind
}

type scanner struct {
	result *domain.DetectionResult
	stack  []*block
}

func (sc *scanner) top() *block {
	return sc.stack[len(sc.stack)-1]
}

// scan walks the comment-free text. Braces inside strings are ignored and
// semicolons inside parentheses do not end a declaration.
func (sc *scanner) scan(text string) {
	sc.stack = []*block{{kind: blockRoot}}

	var (
		quote      byte
		parenDepth int
		segStart   int
	)

	for i := 0; i < len(text); i++ {
		c := text[i]

		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote, '\n':
				quote = 0
			}
			continue
		}

		switch c {
		case '"', '\'':
			quote = c
		case '(':
			parenDepth++
		case ')':
			if parenDepth > 0 {
				parenDepth--
			}
		case '{':
			sc.openBlock(text[segStart:i])
			segStart = i + 1
			parenDepth = 0
		case ';':
			if parenDepth > 0 {
				continue
			}
			sc.statement(text[segStart:i])
			segStart = i + 1
		case '}':
			sc.statement(text[segStart:i])
			sc.closeBlock()
			segStart = i + 1
			parenDepth = 0
		}
	}

	sc.statement(text[segStart:])
	for len(sc.stack) > 1 {
		sc.closeBlock()
	}
	sc.finish(sc.stack[0])
}

func (sc *scanner) openBlock(prelude string) {
	prelude = strings.TrimSpace(prelude)
	parent := sc.top()

	if strings.HasPrefix(prelude, "@") {
		name, rest := splitAtRule(prelude)
		sc.atRule(name, rest)

		base, _ := rules.StripVendorPrefix(name)
		kind := blockGroup
		switch {
		case base == "keyframes":
			kind = blockKeyframes
		case descriptorAtRules[base]:
			kind = blockDescriptors
		}
		sc.stack = append(sc.stack, &block{kind: kind})
		return
	}

	if parent.kind == blockKeyframes {
		sc.stack = append(sc.stack, &block{kind: blockKeyframe})
		return
	}

	if prelude != "" {
		rules.Record(sc.result, registry.MatchSelector(prelude)...)
		if parent.kind == blockStyle {
			sc.result.Record("css-nesting", "nested rule")
		} else if strings.Contains(prelude, "&") {
			sc.result.Record("css-nesting", "&")
		}
	}
	sc.stack = append(sc.stack, &block{kind: blockStyle})
}

func (sc *scanner) closeBlock() {
	if len(sc.stack) == 1 {
		return
	}
	b := sc.top()
	sc.stack = sc.stack[:len(sc.stack)-1]
	sc.finish(b)
}

// statement handles text ended by ';' or '}': a declaration, or an at-rule
// without a block such as @import.
func (sc *scanner) statement(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	if strings.HasPrefix(text, "@") {
		name, rest := splitAtRule(text)
		sc.atRule(name, rest)
		return
	}

	property, value, ok := strings.Cut(text, ":")
	if !ok {
		return
	}
	property = strings.ToLower(strings.TrimSpace(property))
	if !isIdent(property) {
		return
	}
	value = trimImportant(strings.TrimSpace(value))

	b := sc.top()
	b.decls = append(b.decls, declaration{property: property, value: value})
	sc.declaration(property, value)
}

func (sc *scanner) atRule(name, prelude string) {
	name = strings.ToLower(name)
	if name == "" {
		return
	}
	sc.result.CountElement("@" + name)
	rules.Record(sc.result, registry.MatchAtRule(name, prelude)...)
	sc.functions(prelude)
}

func (sc *scanner) declaration(property, value string) {
	sc.result.CountAttribute(property)

	if strings.HasPrefix(property, "--") {
		sc.result.Record("css-variables", "--*")
	} else {
		rules.Record(sc.result, registry.MatchProperty(property)...)
	}
	rules.Record(sc.result, registry.MatchDeclaration(property, value)...)
	sc.functions(value)
}

var functionPattern = regexp.MustCompile(`(?i)(-?[a-z_][a-z0-9_-]*)\(`)

func (sc *scanner) functions(text string) {
	if !strings.Contains(text, "(") {
		return
	}
	for _, m := range functionPattern.FindAllStringSubmatch(text, -1) {
		rules.Record(sc.result, registry.MatchFunction(m[1])...)
	}
}

var gapProperties = map[string]bool{
	"column-gap": true,
	"gap":        true,
	"row-gap":    true,
}

// finish applies the rules that depend on the whole block: gap means
// flexbox-gap only next to a flex display.
func (sc *scanner) finish(b *block) {
	var flex, grid, multicol bool
	for _, d := range b.decls {
		base, _ := rules.StripVendorPrefix(d.property)
		switch {
		case base == "display":
			for _, h := range registry.MatchDeclaration(d.property, d.value) {
				switch h.Feature {
				case "flexbox":
					flex = true
				case "css-grid":
					grid = true
				}
			}
		case base == "columns" || base == "column-count" || base == "column-width":
			multicol = true
		}
	}

	for _, d := range b.decls {
		if !gapProperties[d.property] {
			continue
		}
		switch {
		case flex:
			sc.result.Record("flexbox-gap", d.property+" (flex)")
		case grid:
			sc.result.Record("css-grid", d.property+" (grid)")
		case multicol && d.property == "column-gap":
			sc.result.Record("multicolumn", d.property+" (multicol)")
		}
	}
}

func splitAtRule(text string) (string, string) {
	text = strings.TrimPrefix(text, "@")
	end := 0
	for end < len(text) && isIdentByte(text[end]) {
		end++
	}
	return text[:end], strings.TrimSpace(text[end:])
}

func isIdentByte(c byte) bool {
	return c == '-' || c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentByte(s[i]) {
			return false
		}
	}
	return true
}

func trimImportant(value string) string {
	lower := strings.ToLower(value)
	if i := strings.LastIndex(lower, "!important"); i >= 0 && strings.TrimSpace(lower[i+len("!important"):]) == "" {
		return strings.TrimSpace(value[:i])
	}
	return value
}

// StripComments blanks out /* */ comments. Comment markers inside string
// literals are left alone, string contents are kept, and every removed byte
// becomes a space (newlines are kept) so offsets still line up with the
// input. An unterminated comment runs to the end of input.
func StripComments(src []byte) []byte {
	out := make([]byte, len(src))
	copy(out, src)

	var quote byte
	for i := 0; i < len(out); i++ {
		c := out[i]

		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote, '\n':
				quote = 0
			}
			continue
		}

		if c == '"' || c == '\'' {
			quote = c
			continue
		}

		if c != '/' || i+1 >= len(out) || out[i+1] != '*' {
			continue
		}

		end := bytes.Index(out[i+2:], []byte("*/"))
		if end < 0 {
			end = len(out)
		} else {
			end = i + 2 + end + 2
		}
		for j := i; j < end; j++ {
			if out[j] != '\n' {
				out[j] = ' '
			}
		}
		i = end - 1
	}
	return out
}
