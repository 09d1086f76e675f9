// Package all imports all detection strategies for side-effect registration.
// Usage: _ "github.com/specvital/webcompat/pkg/parser/strategies/all"
package all

import (
	_ "github.com/specvital/webcompat/pkg/parser/strategies/css"
	_ "github.com/specvital/webcompat/pkg/parser/strategies/html"
	_ "github.com/specvital/webcompat/pkg/parser/strategies/javascript"
)
