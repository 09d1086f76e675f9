package javascript

import (
	"github.com/specvital/webcompat/pkg/domain"
	"github.com/specvital/webcompat/pkg/parser/rules"
)

const (
	featureAsync             domain.FeatureID = "async-functions"
	featureBigInt            domain.FeatureID = "bigint"
	featureConst             domain.FeatureID = "const"
	featureDynamicImport     domain.FeatureID = "es6-module-dynamic-import"
	featureExponent          domain.FeatureID = "mdn-javascript_operators_exponentiation"
	featureFetch             domain.FeatureID = "fetch"
	featureGenerators        domain.FeatureID = "es6-generators"
	featureLet               domain.FeatureID = "let"
	featureLogicalAssignment domain.FeatureID = "mdn-javascript_operators_logical_or_assignment"
	featureModule            domain.FeatureID = "es6-module"
	featureNullish           domain.FeatureID = "mdn-javascript_operators_nullish_coalescing"
	featurePromises          domain.FeatureID = "promises"
	featureUseStrict         domain.FeatureID = "use-strict"
)

var nodeKinds = []rules.NodeKindRule{
	{ID: "arrow-functions", Node: "arrow_function"},
	{ID: "es6-class", Node: "class_declaration"},
	{ID: "es6-class", Node: "class"},
	{ID: "es6-class", Node: "abstract_class_declaration"},
	{ID: featureGenerators, Node: "generator_function"},
	{ID: featureGenerators, Node: "generator_function_declaration"},
	{ID: featureGenerators, Node: "yield_expression"},
	{ID: "template-literals", Node: "template_string"},
	{ID: "destructuring", Node: "object_pattern"},
	{ID: "destructuring", Node: "array_pattern"},
	{ID: "spread", Node: "spread_element"},
	{ID: "rest-parameters", Node: "rest_pattern"},
	{ID: featureAsync, Node: "await_expression"},
	{ID: "mdn-javascript_operators_optional_chaining", Node: "optional_chain"},
	{ID: "mdn-javascript_classes_private_class_fields", Node: "private_property_identifier"},
	{ID: featureModule, Node: "import_statement"},
	{ID: featureModule, Node: "export_statement"},
	{ID: "mdn-javascript_classes_static_initialization_blocks", Node: "class_static_block"},
}

var constructors = []struct {
	id    domain.FeatureID
	names []string
}{
	{featurePromises, []string{"Promise"}},
	{"webworkers", []string{"Worker"}},
	{"sharedworkers", []string{"SharedWorker"}},
	{"websockets", []string{"WebSocket"}},
	{"es6-map", []string{"Map"}},
	{"es6-set", []string{"Set"}},
	{"es6-weakmap", []string{"WeakMap"}},
	{"es6-weakset", []string{"WeakSet"}},
	{"mdn-javascript_builtins_weakref", []string{"WeakRef", "FinalizationRegistry"}},
	{"url", []string{"URL"}},
	{"urlsearchparams", []string{"URLSearchParams"}},
	{"blobbuilder", []string{"Blob"}},
	{"textencoder", []string{"TextEncoder", "TextDecoder"}},
	{"intersectionobserver", []string{"IntersectionObserver"}},
	{"resizeobserver", []string{"ResizeObserver"}},
	{"mutationobserver", []string{"MutationObserver"}},
	{"mdn-api_performanceobserver", []string{"PerformanceObserver"}},
	{"rtcpeerconnection", []string{"RTCPeerConnection"}},
	{"proxy", []string{"Proxy"}},
	{"abortcontroller", []string{"AbortController"}},
	{"broadcastchannel", []string{"BroadcastChannel"}},
	{"xhr2", []string{"FormData"}},
	{featureFetch, []string{"Headers", "Request", "Response"}},
	{"eventsource", []string{"EventSource"}},
	{"notifications", []string{"Notification"}},
	{"customevent", []string{"CustomEvent"}},
	{"internationalization", []string{
		"Intl.Collator", "Intl.DateTimeFormat", "Intl.DisplayNames", "Intl.ListFormat", "Intl.Locale",
		"Intl.NumberFormat", "Intl.PluralRules", "Intl.RelativeTimeFormat", "Intl.Segmenter",
	}},
}

var functionCalls = []struct {
	id    domain.FeatureID
	names []string
}{
	{featureFetch, []string{"fetch"}},
	{"requestanimationframe", []string{"requestAnimationFrame", "cancelAnimationFrame"}},
	{"requestidlecallback", []string{"requestIdleCallback", "cancelIdleCallback"}},
	{"atob-btoa", []string{"atob", "btoa"}},
	{"matchmedia", []string{"matchMedia"}},
	{"setimmediate", []string{"setImmediate", "clearImmediate"}},
	{"mdn-api_structuredclone", []string{"structuredClone"}},
	{"mdn-api_queuemicrotask", []string{"queueMicrotask"}},
	{featureBigInt, []string{"BigInt"}},
}

var memberCalls = []rules.MemberCallRule{
	{ID: "geolocation", Object: "navigator", Property: "geolocation"},
	{ID: "async-clipboard", Object: "navigator", Property: "clipboard"},
	{ID: "serviceworkers", Object: "navigator", Property: "serviceWorker"},
	{ID: "beacon", Object: "navigator", Property: "sendBeacon"},
	{ID: "queryselector", Property: "querySelector"},
	{ID: "queryselector", Property: "querySelectorAll"},
	{ID: "object-entries", Object: "Object", Property: "entries"},
	{ID: "object-values", Object: "Object", Property: "values"},
	{ID: "mdn-javascript_builtins_object_assign", Object: "Object", Property: "assign"},
	{ID: "mdn-javascript_builtins_object_fromentries", Object: "Object", Property: "fromEntries"},
	{ID: "array-find", Property: "find"},
	{ID: "array-find-index", Property: "findIndex"},
	{ID: "array-includes", Property: "includes"},
	{ID: "array-flat", Property: "flat"},
	{ID: "array-flat", Property: "flatMap"},
	{ID: "mdn-javascript_builtins_array_at", Property: "at"},
	{ID: "mdn-javascript_builtins_array_from", Object: "Array", Property: "from"},
	{ID: "history", Object: "history", Property: "pushState"},
	{ID: "history", Object: "history", Property: "replaceState"},
	{ID: "css-supports-api", Object: "CSS", Property: "supports"},
	{ID: featurePromises, Object: "Promise", Property: rules.AnyMember},
	{ID: featurePromises, Property: "then"},
	{ID: featurePromises, Property: "catch"},
	{ID: featurePromises, Property: "finally"},
	{ID: "promise-finally", Property: "finally"},
	{ID: "namevalue-storage", Object: "localStorage", Property: rules.AnyMember},
	{ID: "namevalue-storage", Object: "sessionStorage", Property: rules.AnyMember},
	{ID: "classlist", Object: rules.AnyReceiver, Property: "classList"},
	{ID: "shadowdomv1", Property: "attachShadow"},
	{ID: "custom-elementsv1", Object: "customElements", Property: "define"},
	{ID: "notifications", Object: "Notification", Property: "requestPermission"},
}

var registry = buildRegistry()

func buildRegistry() *rules.Registry {
	var list []rules.Rule
	for _, r := range nodeKinds {
		list = append(list, r)
	}
	for _, group := range constructors {
		for _, name := range group.names {
			list = append(list, rules.ConstructorRule{ID: group.id, Name: name})
		}
	}
	for _, group := range functionCalls {
		for _, name := range group.names {
			list = append(list, rules.FunctionCallRule{ID: group.id, Name: name})
		}
	}
	for _, r := range memberCalls {
		list = append(list, r)
	}
	return rules.MustCompile(list...)
}

// implied lists features that always come with another one.
var implied = map[domain.FeatureID][]domain.FeatureID{
	featureFetch: {featurePromises},
}
