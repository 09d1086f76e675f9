// Package domain defines the core types shared by feature detection,
// compatibility scoring and polyfill recommendation.
package domain

import (
	"path/filepath"
	"strings"
)

// Language represents a web source language.
type Language string

// Supported languages for feature detection.
const (
	LanguageCSS        Language = "css"
	LanguageHTML       Language = "html"
	LanguageJavaScript Language = "javascript"
	LanguageTSX        Language = "tsx"
	LanguageTypeScript Language = "typescript"
)

// ReportKey returns the key under which the language's features are listed
// in an analysis report. TypeScript flavours report as "js".
func (l Language) ReportKey() string {
	switch l {
	case LanguageHTML:
		return "html"
	case LanguageCSS:
		return "css"
	default:
		return "js"
	}
}

// IsScript reports whether l is parsed by the script detector.
func (l Language) IsScript() bool {
	return l == LanguageJavaScript || l == LanguageTypeScript || l == LanguageTSX
}

// LanguageFromPath infers the language from a file extension.
// Returns false for files that are not web sources.
func LanguageFromPath(path string) (Language, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return LanguageHTML, true
	case ".css":
		return LanguageCSS, true
	case ".js", ".mjs", ".cjs", ".jsx":
		return LanguageJavaScript, true
	case ".ts", ".mts", ".cts":
		return LanguageTypeScript, true
	case ".tsx":
		return LanguageTSX, true
	default:
		return "", false
	}
}
