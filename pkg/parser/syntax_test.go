package parser_test

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specvital/webcompat/pkg/domain"
	"github.com/specvital/webcompat/pkg/parser"
	"github.com/specvital/webcompat/pkg/parser/tspool"
)

func parseScript(t *testing.T, src string) (*sitter.Node, []byte) {
	t.Helper()
	source := []byte(src)
	tree, err := tspool.Parse(context.Background(), domain.LanguageJavaScript, source)
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree.RootNode(), source
}

func TestWalk(t *testing.T) {
	t.Run("should visit nodes in document order", func(t *testing.T) {
		// Given
		root, source := parseScript(t, "a(); b(); c();")

		// When
		var callees []string
		parser.Walk(root, func(n *sitter.Node) bool {
			if n.Type() == "call_expression" {
				callees = append(callees, parser.NodeText(n.ChildByFieldName("function"), source))
			}
			return true
		})

		// Then
		assert.Equal(t, []string{"a", "b", "c"}, callees)
	})

	t.Run("should skip children when the visitor returns false", func(t *testing.T) {
		root, _ := parseScript(t, "f(() => g())")

		calls := 0
		parser.Walk(root, func(n *sitter.Node) bool {
			if n.Type() == "call_expression" {
				calls++
				return false
			}
			return true
		})

		assert.Equal(t, 1, calls)
	})

	t.Run("should ignore a nil node", func(t *testing.T) {
		parser.Walk(nil, func(*sitter.Node) bool {
			t.Fatal("visitor must not run")
			return false
		})
	})
}

func TestHasToken(t *testing.T) {
	root, _ := parseScript(t, "async function f() {}\nfunction g() {}")

	var asyncs []bool
	parser.Walk(root, func(n *sitter.Node) bool {
		if n.Type() == "function_declaration" {
			asyncs = append(asyncs, parser.HasToken(n, "async"))
		}
		return true
	})

	assert.Equal(t, []bool{true, false}, asyncs)
}

func TestNodeText(t *testing.T) {
	root, source := parseScript(t, "let x = 1;")

	assert.Equal(t, "let x = 1;", parser.NodeText(root, source))
	assert.Equal(t, "", parser.NodeText(nil, source))
	assert.Equal(t, "", parser.NodeText(root, source[:3]))
}
