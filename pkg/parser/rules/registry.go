package rules

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

var vendorPrefixes = []string{"-webkit-", "-moz-", "-ms-", "-o-"}

// StripVendorPrefix removes a leading vendor prefix from a lowercased name.
func StripVendorPrefix(name string) (string, bool) {
	for _, p := range vendorPrefixes {
		if strings.HasPrefix(name, p) && len(name) > len(p) {
			return name[len(p):], true
		}
	}
	return name, false
}

type compiledSelector struct {
	pattern *regexp.Regexp
	rule    SelectorRule
}

// Registry indexes rules by the key detectors look them up with.
// It is safe for concurrent use; detectors build one per package and only read it.
type Registry struct {
	mu            sync.RWMutex
	all           []Rule
	atRules       map[string][]compiledAtRule
	attrValues    map[string][]AttributeValueRule
	attributes    map[string][]AttributeRule
	constructors  map[string][]Rule
	declarations  map[string][]compiledDeclaration
	elements      map[string][]Rule
	functionCalls map[string][]Rule
	functions     map[string][]Rule
	memberCalls   map[string][]MemberCallRule
	nodeKinds     map[string][]Rule
	properties    map[string][]PropertyRule
	selectors     []compiledSelector
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		atRules:       make(map[string][]compiledAtRule),
		attrValues:    make(map[string][]AttributeValueRule),
		attributes:    make(map[string][]AttributeRule),
		constructors:  make(map[string][]Rule),
		declarations:  make(map[string][]compiledDeclaration),
		elements:      make(map[string][]Rule),
		functionCalls: make(map[string][]Rule),
		functions:     make(map[string][]Rule),
		memberCalls:   make(map[string][]MemberCallRule),
		nodeKinds:     make(map[string][]Rule),
		properties:    make(map[string][]PropertyRule),
	}
}

// MustCompile builds a registry from rules and panics on an invalid rule.
// It is meant for package-level rule tables.
func MustCompile(rules ...Rule) *Registry {
	r := NewRegistry()
	for _, rule := range rules {
		if err := r.Register(rule); err != nil {
			panic(err)
		}
	}
	return r
}

// Register indexes one rule.
func (r *Registry) Register(rule Rule) error {
	if rule.Feature() == "" {
		return fmt.Errorf("rules: %s rule %q has no feature", rule.Kind(), rule.Pattern())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch v := rule.(type) {
	case ElementRule:
		key := strings.ToLower(v.Element)
		r.elements[key] = append(r.elements[key], v)
	case AttributeRule:
		key := strings.ToLower(v.Attribute)
		r.attributes[key] = append(r.attributes[key], v)
	case AttributeValueRule:
		key := strings.ToLower(v.Attribute)
		r.attrValues[key] = append(r.attrValues[key], v)
	case AtRuleRule:
		c := compiledAtRule{rule: v}
		if v.Prelude != "" {
			re, err := regexp.Compile("(?i)" + v.Prelude)
			if err != nil {
				return fmt.Errorf("rules: at-rule %q: %w", v.Name, err)
			}
			c.prelude = re
		}
		key := strings.ToLower(v.Name)
		r.atRules[key] = append(r.atRules[key], c)
	case PropertyRule:
		key := strings.ToLower(v.Property)
		r.properties[key] = append(r.properties[key], v)
	case DeclarationRule:
		c := compiledDeclaration{rule: v}
		if len(v.Keywords) > 0 {
			c.keywords = make(map[string]bool, len(v.Keywords))
			for _, k := range v.Keywords {
				c.keywords[strings.ToLower(k)] = true
			}
		}
		if v.Value != "" {
			re, err := regexp.Compile("(?i)" + v.Value)
			if err != nil {
				return fmt.Errorf("rules: declaration %q: %w", v.Property, err)
			}
			c.value = re
		}
		if c.keywords == nil && c.value == nil {
			return fmt.Errorf("rules: declaration %q has neither keywords nor value pattern", v.Property)
		}
		key := strings.ToLower(v.Property)
		r.declarations[key] = append(r.declarations[key], c)
	case CSSFunctionRule:
		key := strings.ToLower(v.Function)
		r.functions[key] = append(r.functions[key], v)
	case SelectorRule:
		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(v.Selector) + `(?:[^a-zA-Z0-9_-]|$)`)
		if err != nil {
			return fmt.Errorf("rules: selector %q: %w", v.Selector, err)
		}
		r.selectors = append(r.selectors, compiledSelector{pattern: re, rule: v})
	case NodeKindRule:
		r.nodeKinds[v.Node] = append(r.nodeKinds[v.Node], v)
	case ConstructorRule:
		r.constructors[v.Name] = append(r.constructors[v.Name], v)
	case FunctionCallRule:
		r.functionCalls[v.Name] = append(r.functionCalls[v.Name], v)
	case MemberCallRule:
		r.memberCalls[v.Property] = append(r.memberCalls[v.Property], v)
	default:
		return fmt.Errorf("rules: unsupported rule type %T", rule)
	}

	r.all = append(r.all, rule)
	return nil
}

// All returns a copy of the registered rules in registration order.
func (r *Registry) All() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Rule, len(r.all))
	copy(result, r.all)
	return result
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.all)
}

// Features returns the distinct features the registry can produce.
func (r *Registry) Features() map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]bool)
	for _, rule := range r.all {
		out[string(rule.Feature())] = true
	}
	return out
}

// MatchElement returns hits for an element tag name.
func (r *Registry) MatchElement(tag string) []Hit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return hitsOf(r.elements[strings.ToLower(tag)])
}

// MatchAttribute returns hits for attribute attr with value on element tag.
func (r *Registry) MatchAttribute(tag, attr, value string) []Hit {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tag = strings.ToLower(tag)
	attr = strings.ToLower(attr)

	var hits []Hit
	for _, rule := range r.attributes[attr] {
		if rule.Element != "" && !strings.EqualFold(rule.Element, tag) {
			continue
		}
		hits = append(hits, hit(rule))
	}

	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, rule := range r.attrValues[attr] {
		if rule.Element != "" && !strings.EqualFold(rule.Element, tag) {
			continue
		}
		want := strings.ToLower(rule.Value)
		if rule.Token {
			if containsToken(normalized, want) {
				hits = append(hits, hit(rule))
			}
			continue
		}
		if normalized == want {
			hits = append(hits, hit(rule))
		}
	}
	return hits
}

// MatchAtRule returns hits for an at-rule name (without "@") and its prelude.
func (r *Registry) MatchAtRule(name, prelude string) []Hit {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name = strings.ToLower(name)
	base, _ := StripVendorPrefix(name)

	var hits []Hit
	for _, c := range r.atRules[base] {
		if c.prelude != nil && !c.prelude.MatchString(prelude) {
			continue
		}
		hits = append(hits, hit(c.rule))
	}
	return hits
}

// MatchProperty returns hits for a property name. Vendor-prefixed names
// record the prefixed spelling as the pattern.
func (r *Registry) MatchProperty(property string) []Hit {
	r.mu.RLock()
	defer r.mu.RUnlock()

	property = strings.ToLower(property)

	var hits []Hit
	for _, rule := range r.properties[property] {
		hits = append(hits, hit(rule))
	}

	base, prefixed := StripVendorPrefix(property)
	if !prefixed {
		return hits
	}
	for _, rule := range r.properties[base] {
		if rule.Exact {
			continue
		}
		hits = append(hits, Hit{Feature: rule.ID, Pattern: property})
	}
	return hits
}

// MatchDeclaration returns hits for a property: value pair.
func (r *Registry) MatchDeclaration(property, value string) []Hit {
	r.mu.RLock()
	defer r.mu.RUnlock()

	property = strings.ToLower(property)
	base, _ := StripVendorPrefix(property)

	var tokens map[string]bool
	var hits []Hit
	check := func(list []compiledDeclaration) {
		for _, c := range list {
			if c.keywords != nil {
				if tokens == nil {
					tokens = valueTokens(value)
				}
				if anyToken(tokens, c.keywords) {
					hits = append(hits, hit(c.rule))
				}
				continue
			}
			if c.value.MatchString(value) {
				hits = append(hits, hit(c.rule))
			}
		}
	}

	check(r.declarations[property])
	if base != property {
		check(r.declarations[base])
	}
	check(r.declarations[""])
	return hits
}

// MatchFunction returns hits for a CSS function name.
func (r *Registry) MatchFunction(name string) []Hit {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name = strings.ToLower(name)
	hits := hitsOf(r.functions[name])
	if base, prefixed := StripVendorPrefix(name); prefixed {
		for _, rule := range r.functions[base] {
			hits = append(hits, Hit{Feature: rule.Feature(), Pattern: name + "()"})
		}
	}
	return hits
}

// MatchSelector returns hits for every pseudo selector found in selector.
func (r *Registry) MatchSelector(selector string) []Hit {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var hits []Hit
	for _, c := range r.selectors {
		if c.pattern.MatchString(selector) {
			hits = append(hits, hit(c.rule))
		}
	}
	return hits
}

// MatchNode returns hits for a syntax node type.
func (r *Registry) MatchNode(nodeType string) []Hit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return hitsOf(r.nodeKinds[nodeType])
}

// MatchConstructor returns hits for `new name(...)`.
func (r *Registry) MatchConstructor(name string) []Hit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return hitsOf(r.constructors[name])
}

// MatchFunctionCall returns hits for a call to a global function.
func (r *Registry) MatchFunctionCall(name string) []Hit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return hitsOf(r.functionCalls[name])
}

// MatchMember returns hits for object.property. object is the receiver
// text with global prefixes already removed; it may be empty. call reports
// whether the member is being called: rules with an empty Object only match
// calls.
func (r *Registry) MatchMember(object, property string, call bool) []Hit {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var hits []Hit
	check := func(list []MemberCallRule) {
		for _, rule := range list {
			switch rule.Object {
			case "":
				if !call {
					continue
				}
			case AnyReceiver:
			default:
				if rule.Object != object {
					continue
				}
			}
			hits = append(hits, hit(rule))
		}
	}

	check(r.memberCalls[property])
	if property != AnyMember {
		check(r.memberCalls[AnyMember])
	}
	return hits
}

func hitsOf(list []Rule) []Hit {
	if len(list) == 0 {
		return nil
	}
	hits := make([]Hit, len(list))
	for i, rule := range list {
		hits[i] = hit(rule)
	}
	return hits
}

func containsToken(value, want string) bool {
	for _, tok := range strings.Fields(value) {
		if tok == want {
			return true
		}
	}
	return false
}

func isValueTokenByte(c byte) bool {
	return c == '-' || c == '_' || c == '#' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// valueTokens splits a CSS value into lowercased identifier tokens.
// Vendor-prefixed tokens are also indexed without their prefix.
func valueTokens(value string) map[string]bool {
	tokens := make(map[string]bool)
	start := -1
	for i := 0; i <= len(value); i++ {
		if i < len(value) && isValueTokenByte(value[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tok := strings.ToLower(value[start:i])
			tokens[tok] = true
			if base, prefixed := StripVendorPrefix(tok); prefixed {
				tokens[base] = true
			}
			start = -1
		}
	}
	return tokens
}

func anyToken(tokens, keywords map[string]bool) bool {
	for k := range keywords {
		if tokens[k] {
			return true
		}
	}
	return false
}
