// Package rules provides the declarative feature rules shared by the
// HTML, CSS and JavaScript detectors.
//
// Each rule maps one syntactic shape to a feature ID. Rules are plain
// values; a Registry indexes them once so detectors only do map lookups
// while walking a document.
package rules

import (
	"regexp"
	"strings"

	"github.com/specvital/webcompat/pkg/domain"
)

// Kind tags a rule variant.
type Kind string

// Rule kinds.
const (
	KindAttribute      Kind = "attribute"
	KindAttributeValue Kind = "attribute-value"
	KindAtRule         Kind = "at-rule"
	KindConstructor    Kind = "constructor"
	KindCSSFunction    Kind = "css-function"
	KindDeclaration    Kind = "declaration"
	KindElement        Kind = "element"
	KindFunctionCall   Kind = "function-call"
	KindMemberCall     Kind = "member-call"
	KindNodeKind       Kind = "node-kind"
	KindProperty       Kind = "property"
	KindSelector       Kind = "selector"
)

// Rule maps a syntactic shape to a feature.
type Rule interface {
	// Feature returns the feature the rule detects.
	Feature() domain.FeatureID
	// Kind returns the variant tag.
	Kind() Kind
	// Pattern returns the label recorded in detection matches.
	Pattern() string
}

// ElementRule matches an HTML element by tag name.
type ElementRule struct {
	ID      domain.FeatureID
	Element string
}

func (r ElementRule) Feature() domain.FeatureID { return r.ID }
func (r ElementRule) Kind() Kind                { return KindElement }
func (r ElementRule) Pattern() string           { return "<" + strings.ToLower(r.Element) + ">" }

// AttributeRule matches an attribute name, optionally only on one element.
type AttributeRule struct {
	ID        domain.FeatureID
	Attribute string
	// Element restricts the rule to one tag. Empty matches any element.
	Element string
}

func (r AttributeRule) Feature() domain.FeatureID { return r.ID }
func (r AttributeRule) Kind() Kind                { return KindAttribute }
func (r AttributeRule) Pattern() string {
	return strings.ToLower(r.Element) + "[" + strings.ToLower(r.Attribute) + "]"
}

// AttributeValueRule matches an attribute with a specific value.
// Values compare case-insensitively after trimming.
type AttributeValueRule struct {
	ID        domain.FeatureID
	Attribute string
	// Element restricts the rule to one tag. Empty matches any element.
	Element string
	Value   string
	// Token matches when Value is one of the whitespace-separated tokens
	// of the attribute (e.g. rel="noopener noreferrer").
	Token bool
}

func (r AttributeValueRule) Feature() domain.FeatureID { return r.ID }
func (r AttributeValueRule) Kind() Kind                { return KindAttributeValue }
func (r AttributeValueRule) Pattern() string {
	return strings.ToLower(r.Element) + "[" + strings.ToLower(r.Attribute) + "=" + strings.ToLower(r.Value) + "]"
}

// AtRuleRule matches a CSS at-rule by name, optionally constrained by a
// regular expression over its prelude.
type AtRuleRule struct {
	ID      domain.FeatureID
	Name    string
	Prelude string
}

func (r AtRuleRule) Feature() domain.FeatureID { return r.ID }
func (r AtRuleRule) Kind() Kind                { return KindAtRule }
func (r AtRuleRule) Pattern() string {
	if r.Prelude != "" {
		return "@" + strings.ToLower(r.Name) + " " + r.Prelude
	}
	return "@" + strings.ToLower(r.Name)
}

// PropertyRule matches a CSS property by name. Vendor-prefixed spellings
// match too unless Exact is set.
type PropertyRule struct {
	ID       domain.FeatureID
	Property string
	Exact    bool
}

func (r PropertyRule) Feature() domain.FeatureID { return r.ID }
func (r PropertyRule) Kind() Kind                { return KindProperty }
func (r PropertyRule) Pattern() string           { return strings.ToLower(r.Property) }

// DeclarationRule matches a CSS property together with its value.
// Keywords match whole value tokens; Value is a case-insensitive regular
// expression over the whole value. An empty Property matches any property.
type DeclarationRule struct {
	ID       domain.FeatureID
	Keywords []string
	Property string
	Value    string
}

func (r DeclarationRule) Feature() domain.FeatureID { return r.ID }
func (r DeclarationRule) Kind() Kind                { return KindDeclaration }
func (r DeclarationRule) Pattern() string {
	prop := strings.ToLower(r.Property)
	if prop == "" {
		prop = "*"
	}
	if len(r.Keywords) > 0 {
		return prop + ": " + strings.ToLower(strings.Join(r.Keywords, "|"))
	}
	return prop + ": /" + r.Value + "/"
}

// CSSFunctionRule matches a CSS function call such as calc( or attr(.
type CSSFunctionRule struct {
	ID       domain.FeatureID
	Function string
}

func (r CSSFunctionRule) Feature() domain.FeatureID { return r.ID }
func (r CSSFunctionRule) Kind() Kind                { return KindCSSFunction }
func (r CSSFunctionRule) Pattern() string           { return strings.ToLower(r.Function) + "()" }

// SelectorRule matches a pseudo-class or pseudo-element in a selector.
// Selector includes its leading colons, e.g. ":has" or "::marker".
type SelectorRule struct {
	ID       domain.FeatureID
	Selector string
}

func (r SelectorRule) Feature() domain.FeatureID { return r.ID }
func (r SelectorRule) Kind() Kind                { return KindSelector }
func (r SelectorRule) Pattern() string           { return strings.ToLower(r.Selector) }

// NodeKindRule matches a syntax node type in a tree-sitter tree.
type NodeKindRule struct {
	ID   domain.FeatureID
	Node string
}

func (r NodeKindRule) Feature() domain.FeatureID { return r.ID }
func (r NodeKindRule) Kind() Kind                { return KindNodeKind }
func (r NodeKindRule) Pattern() string           { return "node " + r.Node }

// ConstructorRule matches `new Name(...)`. Name may be dotted (Intl.DateTimeFormat).
type ConstructorRule struct {
	ID   domain.FeatureID
	Name string
}

func (r ConstructorRule) Feature() domain.FeatureID { return r.ID }
func (r ConstructorRule) Kind() Kind                { return KindConstructor }
func (r ConstructorRule) Pattern() string           { return "new " + r.Name }

// FunctionCallRule matches a call to a global function. The call may be
// spelled through a global receiver (window.fetch, globalThis.fetch).
type FunctionCallRule struct {
	ID   domain.FeatureID
	Name string
}

func (r FunctionCallRule) Feature() domain.FeatureID { return r.ID }
func (r FunctionCallRule) Kind() Kind                { return KindFunctionCall }
func (r FunctionCallRule) Pattern() string           { return "call " + r.Name }

// Wildcards for MemberCallRule.
const (
	// AnyReceiver matches any receiver, called or not.
	AnyReceiver = "*"
	// AnyMember matches every member of Object.
	AnyMember = "*"
)

// MemberCallRule matches obj.prop(...) or obj.prop access.
// An empty Object matches a call on any receiver; AnyReceiver also matches
// plain access. Property may be AnyMember.
type MemberCallRule struct {
	ID       domain.FeatureID
	Object   string
	Property string
}

func (r MemberCallRule) Feature() domain.FeatureID { return r.ID }
func (r MemberCallRule) Kind() Kind                { return KindMemberCall }
func (r MemberCallRule) Pattern() string {
	if r.Object == "" || r.Object == AnyReceiver {
		return "member ." + r.Property
	}
	return "member " + r.Object + "." + r.Property
}

// Hit is a rule that matched, with the concrete label to record.
type Hit struct {
	Feature domain.FeatureID
	Pattern string
}

func hit(r Rule) Hit {
	return Hit{Feature: r.Feature(), Pattern: r.Pattern()}
}

// Record adds every hit to result.
func Record(result *domain.DetectionResult, hits ...Hit) {
	for _, h := range hits {
		result.Record(h.Feature, h.Pattern)
	}
}

type compiledDeclaration struct {
	keywords map[string]bool
	rule     DeclarationRule
	value    *regexp.Regexp
}

type compiledAtRule struct {
	prelude *regexp.Regexp
	rule    AtRuleRule
}
