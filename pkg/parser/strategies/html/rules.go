package html

import (
	"github.com/specvital/webcompat/pkg/domain"
	"github.com/specvital/webcompat/pkg/parser/rules"
)

var semanticElements = []string{
	"article", "aside", "figcaption", "figure", "footer",
	"header", "main", "mark", "nav", "section", "time",
}

var inputTypes = []struct {
	id    domain.FeatureID
	types []string
}{
	{"input-color", []string{"color"}},
	{"input-datetime", []string{"date", "datetime-local", "month", "time", "week"}},
	{"input-email-tel-url", []string{"email", "tel", "url"}},
	{"input-number", []string{"number"}},
	{"input-range", []string{"range"}},
	{"input-search", []string{"search"}},
}

var linkRelations = []struct {
	rel string
	id  domain.FeatureID
}{
	{"dns-prefetch", "link-rel-dns-prefetch"},
	{"manifest", "web-app-manifest"},
	{"modulepreload", "link-rel-modulepreload"},
	{"preconnect", "link-rel-preconnect"},
	{"prefetch", "link-rel-prefetch"},
	{"preload", "link-rel-preload"},
}

var registry = buildRegistry()

func buildRegistry() *rules.Registry {
	list := []rules.Rule{
		rules.ElementRule{ID: "video", Element: "video"},
		rules.ElementRule{ID: "audio", Element: "audio"},
		rules.ElementRule{ID: "picture", Element: "picture"},
		rules.ElementRule{ID: "canvas", Element: "canvas"},
		rules.ElementRule{ID: "svg-html5", Element: "svg"},
		rules.ElementRule{ID: "template", Element: "template"},
		rules.ElementRule{ID: "dialog", Element: "dialog"},
		rules.ElementRule{ID: "details", Element: "details"},
		rules.ElementRule{ID: "details", Element: "summary"},
		rules.ElementRule{ID: "datalist", Element: "datalist"},
		rules.ElementRule{ID: "meter", Element: "meter"},
		rules.ElementRule{ID: "progress", Element: "progress"},
		rules.ElementRule{ID: "mathml", Element: "math"},
		rules.ElementRule{ID: "ruby", Element: "ruby"},
		rules.ElementRule{ID: "ruby", Element: "rt"},
		rules.ElementRule{ID: "ruby", Element: "rp"},
		rules.ElementRule{ID: "wbr-element", Element: "wbr"},

		rules.AttributeRule{ID: "xhtml", Attribute: "xmlns", Element: "html"},
		rules.AttributeRule{ID: "offline-apps", Attribute: "manifest", Element: "html"},
		rules.AttributeRule{ID: "style-scoped", Attribute: "scoped", Element: "style"},
		rules.AttributeRule{ID: "fieldset-disabled", Attribute: "disabled", Element: "fieldset"},
		rules.AttributeRule{ID: "shadowdomv1", Attribute: "shadowrootmode", Element: "template"},
		rules.AttributeRule{ID: "shadowdomv1", Attribute: "shadowroot", Element: "template"},
		rules.AttributeRule{ID: "srcset", Attribute: "srcset"},
		rules.AttributeRule{ID: "srcset", Attribute: "sizes", Element: "img"},
		rules.AttributeValueRule{ID: "loading-lazy-attr", Attribute: "loading", Value: "lazy"},
		rules.AttributeRule{ID: "script-async", Attribute: "async", Element: "script"},
		rules.AttributeRule{ID: "script-defer", Attribute: "defer", Element: "script"},
		rules.AttributeValueRule{ID: "es6-module", Attribute: "type", Element: "script", Value: "module"},
		rules.AttributeRule{ID: "es6-module", Attribute: "nomodule", Element: "script"},
		rules.AttributeRule{ID: "contenteditable", Attribute: "contenteditable"},
		rules.AttributeRule{ID: "dragndrop", Attribute: "draggable"},
		rules.AttributeRule{ID: "dragndrop", Attribute: "ondrop"},
		rules.AttributeRule{ID: "download", Attribute: "download", Element: "a"},
		rules.AttributeRule{ID: "download", Attribute: "download", Element: "area"},
		rules.AttributeRule{ID: "hidden", Attribute: "hidden"},
		rules.AttributeRule{ID: "autofocus", Attribute: "autofocus"},
		rules.AttributeRule{ID: "input-placeholder", Attribute: "placeholder"},
		rules.AttributeRule{ID: "form-validation", Attribute: "required"},
		rules.AttributeRule{ID: "form-validation", Attribute: "novalidate", Element: "form"},
		rules.AttributeRule{ID: "form-validation", Attribute: "formnovalidate"},
		rules.AttributeRule{ID: "input-pattern", Attribute: "pattern", Element: "input"},
		rules.AttributeRule{ID: "input-minlength", Attribute: "minlength"},
		rules.AttributeRule{ID: "subresource-integrity", Attribute: "integrity"},
		rules.AttributeRule{ID: "iframe-sandbox", Attribute: "sandbox", Element: "iframe"},
		rules.AttributeRule{ID: "iframe-srcdoc", Attribute: "srcdoc", Element: "iframe"},
		rules.AttributeRule{ID: "spellcheck-attribute", Attribute: "spellcheck"},
		rules.AttributeRule{ID: "input-inputmode", Attribute: "inputmode"},
		rules.AttributeRule{ID: "enterkeyhint", Attribute: "enterkeyhint"},
		rules.AttributeRule{ID: "input-file-multiple", Attribute: "multiple", Element: "input"},
		rules.AttributeRule{ID: "html-media-capture", Attribute: "capture", Element: "input"},
		rules.AttributeValueRule{ID: "meta-theme-color", Attribute: "name", Element: "meta", Value: "theme-color"},
		rules.AttributeValueRule{ID: "referrer-policy", Attribute: "name", Element: "meta", Value: "referrer"},
		rules.AttributeRule{ID: "referrer-policy", Attribute: "referrerpolicy"},
		rules.AttributeValueRule{ID: "rel-noopener", Attribute: "rel", Value: "noopener", Token: true},
		rules.AttributeValueRule{ID: "rel-noreferrer", Attribute: "rel", Value: "noreferrer", Token: true},
		rules.AttributeRule{ID: "ping", Attribute: "ping"},
		rules.AttributeRule{ID: "popover", Attribute: "popover"},
		rules.AttributeRule{ID: "popover", Attribute: "popovertarget"},
		rules.AttributeRule{ID: "priority-hints", Attribute: "fetchpriority"},
	}

	for _, el := range semanticElements {
		list = append(list, rules.ElementRule{ID: "html5semantic", Element: el})
	}
	for _, in := range inputTypes {
		for _, typ := range in.types {
			list = append(list, rules.AttributeValueRule{ID: in.id, Attribute: "type", Element: "input", Value: typ})
		}
	}
	for _, link := range linkRelations {
		list = append(list, rules.AttributeValueRule{ID: link.id, Attribute: "rel", Element: "link", Value: link.rel, Token: true})
	}

	return rules.MustCompile(list...)
}
