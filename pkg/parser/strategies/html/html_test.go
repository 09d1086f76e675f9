package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specvital/webcompat/pkg/domain"
)

func parse(t *testing.T, src string) *domain.DetectionResult {
	t.Helper()
	result, err := NewStrategy().Parse(context.Background(), []byte(src), "")
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
			name:    "video with source does not yield picture",
			source:  `<video><source type='video/mp4'></video>`,
			want:    []domain.FeatureID{"video"},
			notWant: []domain.FeatureID{"picture"},
		},
		{
			name:    "audio with source does not yield picture",
			source:  `<audio controls><source src="a.ogg"></audio>`,
			want:    []domain.FeatureID{"audio"},
			notWant: []domain.FeatureID{"picture", "video"},
		},
		{
			name:   "literal picture",
			source: `<picture><source srcset="a.webp"><img src="a.jpg"></picture>`,
			want:   []domain.FeatureID{"picture", "srcset"},
		},
		{
			name:   "semantic elements",
			source: `<header></header><nav></nav><main><article><section></section></article></main>`,
			want:   []domain.FeatureID{"html5semantic"},
		},
		{
			name:    "custom element",
			source:  `<my-widget></my-widget>`,
			want:    []domain.FeatureID{"custom-elementsv1"},
			notWant: []domain.FeatureID{"html5semantic"},
		},
		{
			name:    "reserved hyphenated name is not a custom element",
			source:  `<font-face></font-face>`,
			notWant: []domain.FeatureID{"custom-elementsv1"},
		},
		{
			name:   "customized built-in",
			source: `<button is="fancy-button">x</button>`,
			want:   []domain.FeatureID{"custom-elementsv1"},
		},
		{
			name:   "data and aria attributes",
			source: `<div data-id="1" aria-label="x"></div><span role="button"></span>`,
			want:   []domain.FeatureID{"dataset", "wai-aria"},
		},
		{
			name:   "data uri",
			source: `<img src="DATA:image/png;base64,AAAA">`,
			want:   []domain.FeatureID{"datauri"},
		},
		{
			name:    "svg fragment in src",
			source:  `<img src="icons.svg#home">`,
			want:    []domain.FeatureID{"svg-fragment"},
			notWant: []domain.FeatureID{"svg-img"},
		},
		{
			name:    "svg image without fragment",
			source:  `<img src="logo.svg?v=2">`,
			want:    []domain.FeatureID{"svg-img"},
			notWant: []domain.FeatureID{"svg-fragment"},
		},
		{
			name:   "inline svg use reference",
			source: `<svg><use href="#icon"></use></svg>`,
			want:   []domain.FeatureID{"svg-html5", "svg-fragment"},
		},
		{
			name:   "media fragment",
			source: `<video src="movie.mp4#t=10,20"></video>`,
			want:   []domain.FeatureID{"video", "media-fragments"},
		},
		{
			name:   "video text track",
			source: `<video><track kind="subtitles" src="subs.vtt"></video>`,
			want:   []domain.FeatureID{"video", "videotracks", "webvtt"},
		},
		{
			name:    "audio track",
			source:  `<audio><track src="captions.txt"></audio>`,
			want:    []domain.FeatureID{"audiotracks"},
			notWant: []domain.FeatureID{"videotracks", "webvtt"},
		},
		{
			name:   "xhtml and manifest",
			source: `<html xmlns="http://www.w3.org/1999/xhtml" manifest="app.appcache"><body></body></html>`,
			want:   []domain.FeatureID{"xhtml", "offline-apps"},
		},
		{
			name:   "scoped style and disabled fieldset",
			source: `<style scoped>p{}</style><fieldset disabled></fieldset>`,
			want:   []domain.FeatureID{"style-scoped", "fieldset-disabled"},
		},
		{
			name:    "input types compare case-insensitively",
			source:  `<input type="COLOR"><input type="date"><input type="email"><input type="text">`,
			want:    []domain.FeatureID{"input-color", "input-datetime", "input-email-tel-url"},
			notWant: []domain.FeatureID{"input-number"},
		},
		{
			name:   "lazy loading and module scripts",
			source: `<img loading="lazy" src="a.png"><script type="module" src="m.js"></script><script async src="x.js"></script>`,
			want:   []domain.FeatureID{"loading-lazy-attr", "es6-module", "script-async"},
		},
		{
			name:    "eager loading is not lazy loading",
			source:  `<img loading="eager" src="a.png">`,
			notWant: []domain.FeatureID{"loading-lazy-attr"},
		},
		{
			name:   "link relations",
			source: `<link rel="preload stylesheet" href="a.css"><link rel="manifest" href="m.json"><a rel="noopener noreferrer" href="/">x</a>`,
			want:   []domain.FeatureID{"link-rel-preload", "web-app-manifest", "rel-noopener", "rel-noreferrer"},
		},
		{
			name:   "form validation",
			source: `<form novalidate><input required pattern="[a-z]+" placeholder="name"></form>`,
			want:   []domain.FeatureID{"form-validation", "input-pattern", "input-placeholder"},
		},
		{
			name:   "interactive elements",
			source: `<dialog open></dialog><details><summary>x</summary></details><progress></progress><meter></meter>`,
			want:   []domain.FeatureID{"dialog", "details", "progress", "meter"},
		},
		{
			name:   "declarative shadow dom",
			source: `<host-el><template shadowrootmode="open"><slot></slot></template></host-el>`,
			want:   []domain.FeatureID{"template", "shadowdomv1", "custom-elementsv1"},
		},
		{
			name:   "malformed markup still detected",
			source: `<div><video><p></div></span><canvas>`,
			want:   []domain.FeatureID{"video", "canvas"},
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

func TestStrategy_Parse_EmptyInput(t *testing.T) {
	for _, src := range []string{"", "   \n\t", "<!DOCTYPE html>"} {
		t.Run("should return empty set for "+src, func(t *testing.T) {
			result := parse(t, src)
			assert.Equal(t, 0, result.Features.Len())
			assert.Empty(t, result.Elements)
		})
	}
}

func TestStrategy_Parse_CommentsAndText(t *testing.T) {
	t.Run("should ignore comments", func(t *testing.T) {
		result := parse(t, `<!-- <video></video> <dialog> --><p>hello</p>`)
		assert.False(t, result.Features.Has("video"))
		assert.False(t, result.Features.Has("dialog"))
	})

	t.Run("should read markup inside noscript", func(t *testing.T) {
		result := parse(t, `<noscript><video></video><img loading="lazy" src="x.svg"></noscript>`)
		assert.True(t, result.Features.Has("video"))
		assert.True(t, result.Features.Has("svg-img"))
	})

	t.Run("should ignore text content", func(t *testing.T) {
		result := parse(t, `<p>use &lt;video&gt; and data-foo here</p>`)
		assert.Equal(t, 0, result.Features.Len())
	})
}

func TestStrategy_Parse_Idempotent(t *testing.T) {
	s := NewStrategy()
	src := []byte(`<video><source src="a.mp4#t=1"></video><my-el data-x="1"></my-el>`)

	first, err := s.Parse(context.Background(), src, "")
	require.NoError(t, err)
	second, err := s.Parse(context.Background(), src, "")
	require.NoError(t, err)

	assert.True(t, first.Features.Equal(second.Features))
	assert.Equal(t, first.DetailedReport(), second.DetailedReport())

	other, err := s.Parse(context.Background(), []byte(`<canvas></canvas>`), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"canvas"}, other.Features.Strings())
}

func TestStrategy_Parse_Inventory(t *testing.T) {
	t.Run("should not count synthesized root elements", func(t *testing.T) {
		result := parse(t, `<video></video>`)
		assert.Equal(t, map[string]int{"video": 1}, result.Elements)
	})

	t.Run("should not count root tags inside comments", func(t *testing.T) {
		result := parse(t, `<!-- <html><body> --><video></video>`)
		assert.Equal(t, map[string]int{"video": 1}, result.Elements)
	})

	t.Run("should count explicit root elements", func(t *testing.T) {
		result := parse(t, `<html><head></head><body><p data-a="1" data-b="2"></p></body></html>`)
		assert.Equal(t, 1, result.Elements["html"])
		assert.Equal(t, 1, result.Elements["body"])
		assert.Equal(t, 1, result.Attributes["data-a"])

		stats := result.Statistics()
		assert.Equal(t, 1, stats.TotalFeatures)
		assert.Equal(t, 2, stats.TotalMatches)
	})
}

func TestStrategy_DetailedReport(t *testing.T) {
	result := parse(t, `<video><source src="a.mp4"></video><video></video>`)

	report := result.DetailedReport()
	require.Len(t, report, 1)
	assert.Equal(t, domain.FeatureID("video"), report[0].Feature)
	assert.Equal(t, 3, report[0].Total)
	assert.Equal(t, []domain.Match{
		{Count: 2, Pattern: "<video>"},
		{Count: 1, Pattern: "<video> > <source>"},
	}, report[0].Matches)
}

func TestStrategy_Parse_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStrategy().Parse(ctx, []byte(`<video>`), "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStrategy_CanHandleAndValidate(t *testing.T) {
	s := NewStrategy()
	assert.True(t, s.CanHandle("index.html"))
	assert.True(t, s.CanHandle("PAGE.HTM"))
	assert.False(t, s.CanHandle("style.css"))
	assert.True(t, s.Validate([]byte(`<div><span></div>`)))
	assert.True(t, s.Validate(nil))
}
