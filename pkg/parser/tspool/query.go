package tspool

import (
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/webcompat/pkg/domain"
)

type patternKey struct {
	grammar *sitter.Language
	pattern string
}

type compiled struct {
	err   error
	query *sitter.Query
	ready chan struct{}
}

// patterns holds compiled queries per grammar. Compilation is done once by
// whichever caller registers the entry first; later callers wait on ready.
var patterns = struct {
	sync.Mutex
	byKey map[patternKey]*compiled
}{byKey: make(map[patternKey]*compiled)}

func compile(lang domain.Language, pattern string) (*sitter.Query, error) {
	grammar := GetLanguage(lang)
	key := patternKey{grammar: grammar, pattern: pattern}

	patterns.Lock()
	c, ok := patterns.byKey[key]
	if !ok {
		c = &compiled{ready: make(chan struct{})}
		patterns.byKey[key] = c
	}
	patterns.Unlock()

	if ok {
		<-c.ready
		return c.query, c.err
	}

	c.query, c.err = sitter.NewQuery([]byte(pattern), grammar)
	close(c.ready)
	return c.query, c.err
}

// Capture is one node captured by a query pattern.
type Capture struct {
	Name string
	Node *sitter.Node
	Text string
}

// Captures runs pattern against root and returns every capture in match
// order. When names are given only captures with those names are kept.
func Captures(root *sitter.Node, source []byte, lang domain.Language, pattern string, names ...string) ([]Capture, error) {
	query, err := compile(lang, pattern)
	if err != nil {
		return nil, fmt.Errorf("compile %s query: %w", lang, err)
	}

	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[n] = true
	}

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(query, root)

	var out []Capture
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		for _, c := range match.Captures {
			name := query.CaptureNameForId(c.Index)
			if len(keep) > 0 && !keep[name] {
				continue
			}
			out = append(out, Capture{Name: name, Node: c.Node, Text: c.Node.Content(source)})
		}
	}
	return out, nil
}

// ResetQueries closes and forgets every compiled query.
// Callers must not run Captures concurrently with it.
func ResetQueries() {
	patterns.Lock()
	old := patterns.byKey
	patterns.byKey = make(map[patternKey]*compiled)
	patterns.Unlock()

	for _, c := range old {
		<-c.ready
		if c.query != nil {
			c.query.Close()
		}
	}
}
