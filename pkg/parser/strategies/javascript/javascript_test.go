package javascript

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specvital/webcompat/pkg/domain"
)

func parse(t *testing.T, src string) *domain.DetectionResult {
	t.Helper()
	return parseFile(t, src, "")
}

func parseFile(t *testing.T, src, filename string) *domain.DetectionResult {
	t.Helper()
	result, err := NewStrategy().Parse(context.Background(), []byte(src), filename)
	require.NoError(t, err)
	return result
}

func TestStrategy_Parse(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		want    []domain.FeatureID
		notWant []domain.FeatureID
	}{
		{
			name:   "fetch with then and arrow",
			source: `fetch('/x').then(r=>r.json())`,
			want:   []domain.FeatureID{"fetch", "promises", "arrow-functions"},
		},
		{
			name:    "fetch implies promises",
			source:  `fetch('/x')`,
			want:    []domain.FeatureID{"fetch", "promises"},
			notWant: []domain.FeatureID{"arrow-functions"},
		},
		{
			name:   "global receivers",
			source: `window.fetch('/a'); globalThis.requestAnimationFrame(draw); self.atob('eA==')`,
			want:   []domain.FeatureID{"fetch", "requestanimationframe", "atob-btoa"},
		},
		{
			name:   "classes and private fields",
			source: `class A { #x = 1; get x() { return this.#x } }; const B = class {}`,
			want:   []domain.FeatureID{"es6-class", "mdn-javascript_classes_private_class_fields", "const"},
		},
		{
			name:   "generators",
			source: `function* gen() { yield 1 } const o = { *items() {} }`,
			want:   []domain.FeatureID{"es6-generators"},
		},
		{
			name:   "template literals",
			source: "const s = `a ${b} c`; tag`x`",
			want:   []domain.FeatureID{"template-literals", "const"},
		},
		{
			name:    "let without const",
			source:  `let a = 1; var b = 2`,
			want:    []domain.FeatureID{"let"},
			notWant: []domain.FeatureID{"const"},
		},
		{
			name:   "for-of with const",
			source: `for (const x of xs) {}`,
			want:   []domain.FeatureID{"const"},
		},
		{
			name:   "destructuring spread and rest",
			source: `const {a, ...rest} = obj; const [x, y] = arr; f(...args); function g(...params) {}`,
			want:   []domain.FeatureID{"destructuring", "spread", "rest-parameters"},
		},
		{
			name:   "async await",
			source: `async function load() { await fetch('/x') }`,
			want:   []domain.FeatureID{"async-functions", "fetch"},
		},
		{
			name:   "async arrow",
			source: `const f = async () => 1`,
			want:   []domain.FeatureID{"async-functions", "arrow-functions"},
		},
		{
			name:   "operators",
			source: `a = b ?? c; d ??= e; x = y ** 2; z = obj?.prop`,
			want: []domain.FeatureID{
				"mdn-javascript_operators_nullish_coalescing",
				"mdn-javascript_operators_logical_or_assignment",
				"mdn-javascript_operators_exponentiation",
				"mdn-javascript_operators_optional_chaining",
			},
		},
		{
			name:   "use strict directive",
			source: `'use strict'; doSomething()`,
			want:   []domain.FeatureID{"use-strict"},
		},
		{
			name:    "use strict after a statement is not a directive",
			source:  `foo(); "use strict";`,
			notWant: []domain.FeatureID{"use-strict"},
		},
		{
			name:   "use strict after another directive",
			source: `"use asm"; 'use strict'; run()`,
			want:   []domain.FeatureID{"use-strict"},
		},
		{
			name:   "use strict in a function body",
			source: `function f() { /* strict */ "use strict"; return 1 }`,
			want:   []domain.FeatureID{"use-strict"},
		},
		{
			name:    "use strict in a plain block is not a directive",
			source:  `if (x) { "use strict"; }`,
			notWant: []domain.FeatureID{"use-strict"},
		},
		{
			name:    "use strict inside an expression is not a directive",
			source:  `log('use strict')`,
			notWant: []domain.FeatureID{"use-strict"},
		},
		{
			name:   "modules",
			source: `import x from './x.js'; export const y = 1; const m = import('./lazy.js')`,
			want:   []domain.FeatureID{"es6-module", "es6-module-dynamic-import"},
		},
		{
			name:   "bigint",
			source: `const big = 10n; const other = BigInt(5)`,
			want:   []domain.FeatureID{"bigint"},
		},
		{
			name:   "constructors",
			source: `new Promise(r => r()); new Worker('w.js'); new Map(); new WeakRef(o); new Intl.NumberFormat('en'); new window.IntersectionObserver(cb)`,
			want: []domain.FeatureID{
				"promises", "webworkers", "es6-map", "mdn-javascript_builtins_weakref",
				"internationalization", "intersectionobserver",
			},
		},
		{
			name:    "user class named like an api is matched by name only",
			source:  `new Mapper()`,
			notWant: []domain.FeatureID{"es6-map"},
		},
		{
			name:   "member calls",
			source: `navigator.geolocation.getCurrentPosition(cb); document.querySelectorAll('a'); Object.entries(o); items.find(x); arr.includes(1); history.pushState({}, '', '/'); CSS.supports('display', 'grid')`,
			want: []domain.FeatureID{
				"geolocation", "queryselector", "object-entries", "array-find",
				"array-includes", "history", "css-supports-api",
			},
		},
		{
			name:    "array methods need a call",
			source:  `const f = items.find; const n = obj.at`,
			notWant: []domain.FeatureID{"array-find", "mdn-javascript_builtins_array_at"},
		},
		{
			name:   "storage and classList access",
			source: `localStorage.setItem('k', 'v'); el.classList.add('x')`,
			want:   []domain.FeatureID{"namevalue-storage", "classlist"},
		},
		{
			name:   "promise statics and finally",
			source: `Promise.all([]); p.finally(done)`,
			want:   []domain.FeatureID{"promises", "promise-finally"},
		},
		{
			name:    "entries on a non Object receiver",
			source:  `map.entries()`,
			notWant: []domain.FeatureID{"object-entries"},
		},
	}

	for _, tt := range tests {
		t.Run("should detect "+tt.name, func(t *testing.T) {
			result := parse(t, tt.source)
			for _, id := range tt.want {
				assert.True(t, result.Features.Has(id), "expected %s in %v", id, result.Features.Strings())
			}
			for _, id := range tt.notWant {
				assert.False(t, result.Features.Has(id), "unexpected %s in %v", id, result.Features.Strings())
			}
		})
	}
}

func TestStrategy_Parse_CommentsAndStrings(t *testing.T) {
	t.Run("should ignore comments", func(t *testing.T) {
		result := parse(t, "// fetch('/x').then(r => r)\n/* new Promise() */\nvar a = 1")
		assert.Equal(t, 0, result.Features.Len(), "got %v", result.Features.Strings())
	})

	t.Run("should ignore string contents", func(t *testing.T) {
		result := parse(t, `var s = "fetch('/x').then(r => r) new Map()"`)
		assert.Equal(t, 0, result.Features.Len(), "got %v", result.Features.Strings())
	})
}

func TestStrategy_Parse_MinifiedMatchesFormatted(t *testing.T) {
	formatted := `
const load = async (url) => {
  const response = await fetch(url);
  return response
    .json()
    .then((data) => data.items.find((item) => item.id === 1));
};

navigator
  .geolocation
  .getCurrentPosition(console.log);
`
	minified := `const load=async(url)=>{const response=await fetch(url);return response.json().then((data)=>data.items.find((item)=>item.id===1))};navigator.geolocation.getCurrentPosition(console.log);`

	a := parse(t, formatted)
	b := parse(t, minified)
	assert.Equal(t, a.Features.Strings(), b.Features.Strings())
	assert.Equal(t, a.DetailedReport(), b.DetailedReport())
	assert.True(t, a.Features.Has("geolocation"))
}

func TestStrategy_Parse_EmptyInput(t *testing.T) {
	for _, src := range []string{"", "  \n\t", "// just a comment"} {
		result := parse(t, src)
		assert.Equal(t, 0, result.Features.Len(), "input %q", src)
	}
}

func TestStrategy_Parse_SyntaxErrors(t *testing.T) {
	result := parse(t, `const a = 1; fetch('/x'`)
	assert.True(t, result.Features.Has("const"))
}

func TestStrategy_Parse_Idempotent(t *testing.T) {
	s := NewStrategy()
	src := []byte(`fetch('/x').then(r=>r.json())`)

	first, err := s.Parse(context.Background(), src, "")
	require.NoError(t, err)
	second, err := s.Parse(context.Background(), src, "")
	require.NoError(t, err)

	assert.True(t, first.Features.Equal(second.Features))
	assert.Equal(t, first.DetailedReport(), second.DetailedReport())
}

func TestStrategy_Parse_TypeScript(t *testing.T) {
	t.Run("should use the typescript grammar for .ts", func(t *testing.T) {
		result := parseFile(t, `const x: number = 1; const f = (a: string): string => a ?? 'b'`, "app.ts")
		assert.Equal(t, domain.LanguageTypeScript, result.Language)
		assert.True(t, result.Features.Has("const"))
		assert.True(t, result.Features.Has("arrow-functions"))
		assert.True(t, result.Features.Has("mdn-javascript_operators_nullish_coalescing"))
	})

	t.Run("should use the tsx grammar for .tsx", func(t *testing.T) {
		result := parseFile(t, `const App = () => <div>{items.find(x => x)}</div>`, "App.tsx")
		assert.Equal(t, domain.LanguageTSX, result.Language)
		assert.True(t, result.Features.Has("arrow-functions"))
		assert.True(t, result.Features.Has("array-find"))
	})
}

func TestStrategy_DetailedReport(t *testing.T) {
	result := parse(t, `fetch('/a').then(a => a); fetch('/b')`)

	var promises *domain.FeatureDetail
	report := result.DetailedReport()
	for i := range report {
		if report[i].Feature == "promises" {
			promises = &report[i]
		}
	}
	require.NotNil(t, promises)

	patterns := make([]string, len(promises.Matches))
	for i, m := range promises.Matches {
		patterns[i] = m.Pattern
	}
	assert.Equal(t, []string{"implied by fetch", "member .then"}, patterns)

	for _, d := range report {
		if d.Feature == "fetch" {
			assert.Equal(t, 2, d.Total)
		}
	}
}

func TestStrategy_ImportSources(t *testing.T) {
	result := parse(t, `import a from "lib-a"; import "./side.js"`)

	var patterns []string
	for _, m := range result.Matches["es6-module"] {
		patterns = append(patterns, m.Pattern)
	}
	assert.Contains(t, patterns, `import from "lib-a"`)
	assert.Contains(t, patterns, `import from "./side.js"`)
}

func TestStrategy_CanHandle(t *testing.T) {
	s := NewStrategy()
	for _, f := range []string{"a.js", "a.mjs", "a.cjs", "a.jsx", "a.ts", "a.tsx"} {
		assert.True(t, s.CanHandle(f), f)
	}
	assert.False(t, s.CanHandle("a.css"))
	assert.True(t, s.Validate([]byte("const = ;")))
}
