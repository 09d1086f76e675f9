package css

import (
	"github.com/specvital/webcompat/pkg/domain"
	"github.com/specvital/webcompat/pkg/parser/rules"
)

var atRules = []rules.AtRuleRule{
	{ID: "css-featurequeries", Name: "supports"},
	{ID: "css-cascade-layers", Name: "layer"},
	{ID: "css-paged-media", Name: "page"},
	{ID: "css-container-queries", Name: "container"},
	{ID: "css-cascade-scope", Name: "scope"},
	{ID: "fontface", Name: "font-face"},
	{ID: "css-animation", Name: "keyframes"},
	{ID: "css-namespaces", Name: "namespace"},
	{ID: "css-at-counter-style", Name: "counter-style"},
	{ID: "css-deviceadaptation", Name: "viewport"},
	{ID: "css-at-property", Name: "property"},
	{ID: "css-media-range-syntax", Name: "media", Prelude: `\([^)]*[<>]`},
	{ID: "prefers-color-scheme", Name: "media", Prelude: `prefers-color-scheme`},
	{ID: "prefers-reduced-motion", Name: "media", Prelude: `prefers-reduced-motion`},
	{ID: "css-media-interaction", Name: "media", Prelude: `\(\s*(any-)?(hover|pointer)\b`},
	{ID: "css-cascade-layers", Name: "import", Prelude: `\blayer\b`},
	{ID: "css-featurequeries", Name: "import", Prelude: `\bsupports\(`},
}

var properties = []struct {
	id    domain.FeatureID
	names []string
}{
	{"flexbox", []string{"flex", "flex-basis", "flex-direction", "flex-flow", "flex-grow", "flex-shrink", "flex-wrap"}},
	{"css-grid", []string{
		"grid", "grid-area", "grid-auto-columns", "grid-auto-flow", "grid-auto-rows", "grid-column",
		"grid-column-gap", "grid-gap", "grid-row", "grid-row-gap", "grid-template",
		"grid-template-areas", "grid-template-columns", "grid-template-rows",
	}},
	{"multicolumn", []string{"column-count", "column-fill", "column-rule", "column-span", "column-width", "columns"}},
	{"css-animation", []string{
		"animation", "animation-delay", "animation-direction", "animation-duration", "animation-fill-mode",
		"animation-iteration-count", "animation-name", "animation-play-state", "animation-timing-function",
	}},
	{"css-transitions", []string{"transition", "transition-delay", "transition-duration", "transition-property", "transition-timing-function"}},
	{"transforms2d", []string{"transform", "transform-origin"}},
	{"transforms3d", []string{"backface-visibility", "perspective", "perspective-origin", "transform-style"}},
	{"css-filters", []string{"filter"}},
	{"css-backdrop-filter", []string{"backdrop-filter"}},
	{"css-masks", []string{"mask", "mask-composite", "mask-image", "mask-mode", "mask-position", "mask-repeat", "mask-size"}},
	{"css-clip-path", []string{"clip-path"}},
	{"css-shapes", []string{"shape-image-threshold", "shape-margin", "shape-outside"}},
	{"border-radius", []string{
		"border-radius", "border-bottom-left-radius", "border-bottom-right-radius",
		"border-top-left-radius", "border-top-right-radius",
	}},
	{"css-boxshadow", []string{"box-shadow"}},
	{"css3-boxsizing", []string{"box-sizing"}},
	{"css-textshadow", []string{"text-shadow"}},
	{"css-hyphens", []string{"hyphens"}},
	{"css-writing-mode", []string{"writing-mode"}},
	{"css-scroll-behavior", []string{"scroll-behavior"}},
	{"css-snappoints", []string{"scroll-margin", "scroll-padding", "scroll-snap-align", "scroll-snap-stop", "scroll-snap-type"}},
	{"css-overscroll-behavior", []string{
		"overscroll-behavior", "overscroll-behavior-block", "overscroll-behavior-inline",
		"overscroll-behavior-x", "overscroll-behavior-y",
	}},
	{"css-appearance", []string{"appearance"}},
	{"css-resize", []string{"resize"}},
	{"object-fit", []string{"object-fit", "object-position"}},
	{"mdn-css_properties_aspect-ratio", []string{"aspect-ratio"}},
	{"css-logical-props", []string{
		"block-size", "border-block-end", "border-block-start", "border-inline-end", "border-inline-start",
		"inline-size", "inset", "inset-block", "inset-inline", "margin-block", "margin-block-end",
		"margin-block-start", "margin-inline", "margin-inline-end", "margin-inline-start",
		"max-block-size", "max-inline-size", "min-block-size", "min-inline-size", "padding-block",
		"padding-block-end", "padding-block-start", "padding-inline", "padding-inline-end",
		"padding-inline-start",
	}},
	{"font-feature", []string{"font-feature-settings", "font-variant-ligatures"}},
	{"css-font-rendering-controls", []string{"font-display"}},
	{"css-content-visibility", []string{"content-visibility"}},
	{"css-containment", []string{"contain"}},
	{"will-change", []string{"will-change"}},
	{"css-mixblendmode", []string{"background-blend-mode", "mix-blend-mode"}},
	{"css-caret-color", []string{"caret-color"}},
	{"css-accent-color", []string{"accent-color"}},
	{"text-stroke", []string{"text-fill-color", "text-stroke", "text-stroke-color", "text-stroke-width"}},
	{"css-line-clamp", []string{"line-clamp"}},
	{"css-touch-action", []string{"touch-action"}},
	{"css-counters", []string{"counter-increment", "counter-reset"}},
	{"css-outline", []string{"outline-offset"}},
	{"css-isolation", []string{"isolation"}},
	{"css-scrollbar", []string{"scrollbar-color", "scrollbar-gutter", "scrollbar-width"}},
	{"css-text-indent", []string{"text-indent"}},
	{"css-text-align-last", []string{"text-align-last"}},
	{"css-all", []string{"all"}},
	{"css-container-queries", []string{"container", "container-name", "container-type"}},
}

var declarations = []rules.DeclarationRule{
	{ID: "flexbox", Property: "display", Keywords: []string{"flex", "inline-flex", "-webkit-box", "-ms-flexbox"}},
	{ID: "css-grid", Property: "display", Keywords: []string{"grid", "inline-grid", "-ms-grid"}},
	{ID: "css-display-contents", Property: "display", Keywords: []string{"contents"}},
	{ID: "css-table", Property: "display", Keywords: []string{"table", "table-cell", "table-row", "inline-table"}},
	{ID: "inline-block", Property: "display", Keywords: []string{"inline-block"}},
	{ID: "css-sticky", Property: "position", Keywords: []string{"sticky"}},
	{ID: "css-fixed", Property: "position", Keywords: []string{"fixed"}},
	{ID: "css-subgrid", Property: "grid-template-columns", Keywords: []string{"subgrid"}},
	{ID: "css-subgrid", Property: "grid-template-rows", Keywords: []string{"subgrid"}},
	{ID: "text-overflow", Property: "text-overflow", Keywords: []string{"ellipsis"}},
	{ID: "word-break", Property: "word-break", Keywords: []string{"break-all", "keep-all", "break-word"}},
	{ID: "user-select-none", Property: "user-select", Keywords: []string{"none"}},
	{ID: "css-text-wrap-balance", Property: "text-wrap", Keywords: []string{"balance"}},
	{ID: "css-text-wrap-balance", Property: "text-wrap-style", Keywords: []string{"balance"}},
	{ID: "css-initial-value", Keywords: []string{"initial"}},
	{ID: "css-unset-value", Keywords: []string{"unset"}},
	{ID: "rem", Value: `(^|[^a-z0-9_-])[0-9]*\.?[0-9]+rem\b`},
	{ID: "viewport-units", Value: `[0-9](vw|vh|vmin|vmax)\b`},
	{ID: "viewport-unit-variants", Value: `[0-9](d|s|l)(vw|vh|vi|vb|vmin|vmax)\b`},
	{ID: "css-rrggbbaa", Value: `#([0-9a-f]{8}|[0-9a-f]{4})\b`},
}

var functions = []struct {
	id    domain.FeatureID
	names []string
}{
	{"calc", []string{"calc"}},
	{"css-math-functions", []string{"clamp", "max", "min"}},
	{"css-gradients", []string{"linear-gradient", "radial-gradient", "repeating-linear-gradient", "repeating-radial-gradient"}},
	{"css-conic-gradients", []string{"conic-gradient", "repeating-conic-gradient"}},
	{"css3-attr", []string{"attr"}},
	{"css-variables", []string{"var"}},
	{"css-env-function", []string{"env"}},
	{"css-image-set", []string{"image-set"}},
	{"css-color-mix", []string{"color-mix"}},
	{"css-lch-lab", []string{"lab", "lch", "oklab", "oklch"}},
	{"css-counters", []string{"counter", "counters"}},
	{"css-filters", []string{"blur", "brightness", "contrast", "drop-shadow", "grayscale", "hue-rotate", "invert", "saturate", "sepia"}},
	{"transforms3d", []string{"matrix3d", "perspective", "rotate3d", "rotatex", "rotatey", "scale3d", "translate3d", "translatez"}},
}

var selectors = []struct {
	id    domain.FeatureID
	names []string
}{
	{"css-has", []string{":has"}},
	{"css-matches-pseudo", []string{":is", ":matches", ":-webkit-any", ":-moz-any"}},
	{"mdn-css_selectors_where", []string{":where"}},
	{"css-focus-visible", []string{":focus-visible"}},
	{"css-focus-within", []string{":focus-within"}},
	{"css-marker-pseudo", []string{"::marker"}},
	{"css-placeholder", []string{"::placeholder", "::-webkit-input-placeholder", "::-moz-placeholder", ":-ms-input-placeholder"}},
	{"css-selection", []string{"::selection", "::-moz-selection"}},
	{"css-gencontent", []string{":before", ":after"}},
}

var registry = buildRegistry()

func buildRegistry() *rules.Registry {
	var list []rules.Rule
	for _, r := range atRules {
		list = append(list, r)
	}
	for _, group := range properties {
		for _, name := range group.names {
			list = append(list, rules.PropertyRule{ID: group.id, Property: name})
		}
	}
	for _, r := range declarations {
		list = append(list, r)
	}
	for _, group := range functions {
		for _, name := range group.names {
			list = append(list, rules.CSSFunctionRule{ID: group.id, Function: name})
		}
	}
	for _, group := range selectors {
		for _, name := range group.names {
			list = append(list, rules.SelectorRule{ID: group.id, Selector: name})
		}
	}
	return rules.MustCompile(list...)
}
