package domain

import "strings"

// SupportStatus is the support level of a feature in one browser version.
// Values follow the caniuse status letters.
type SupportStatus string

const (
	// StatusSupported indicates full native support.
	StatusSupported SupportStatus = "y"
	// StatusPartial indicates partial support.
	StatusPartial SupportStatus = "a"
	// StatusUnsupported indicates no support.
	StatusUnsupported SupportStatus = "n"
	// StatusPrefixed indicates support behind a vendor prefix.
	StatusPrefixed SupportStatus = "x"
	// StatusPolyfill indicates support only through a polyfill.
	StatusPolyfill SupportStatus = "p"
	// StatusUnknown indicates the feature or browser is not in the dataset.
	StatusUnknown SupportStatus = "u"
)

// ParseSupportStatus parses a dataset status string such as "y", "a x" or "n #2".
// Notes markers ("#n") are ignored. A prefix flag wins over the base letter
// because the feature is only usable with the prefix.
func ParseSupportStatus(s string) SupportStatus {
	base := StatusUnknown
	prefixed := false
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		if strings.HasPrefix(tok, "#") {
			continue
		}
		switch SupportStatus(tok) {
		case StatusPrefixed:
			prefixed = true
		case StatusSupported, StatusPartial, StatusUnsupported, StatusPolyfill, StatusUnknown:
			if base == StatusUnknown {
				base = SupportStatus(tok)
			}
		}
	}
	if prefixed && base != StatusUnsupported {
		return StatusPrefixed
	}
	return base
}

// IsValid reports whether s is one of the known status letters.
func (s SupportStatus) IsValid() bool {
	switch s {
	case StatusSupported, StatusPartial, StatusUnsupported, StatusPrefixed, StatusPolyfill, StatusUnknown:
		return true
	}
	return false
}

// IsUsable reports whether the feature works natively, fully or partially.
func (s SupportStatus) IsUsable() bool {
	return s == StatusSupported || s == StatusPartial || s == StatusPrefixed
}

// NeedsAttention reports whether the status calls for a polyfill or fallback.
func (s SupportStatus) NeedsAttention() bool {
	return s == StatusPartial || s == StatusPrefixed || s == StatusUnsupported || s == StatusPolyfill
}
