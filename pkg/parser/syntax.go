package parser

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/webcompat/pkg/parser/tspool"
)

// MaxTreeDepth bounds recursion for every detector that walks a tree.
const MaxTreeDepth = tspool.MaxTreeDepth

// NodeText returns the source slice covered by node, or "" when the node is
// nil or its range falls outside source.
func NodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if start > end || int(end) > len(source) {
		return ""
	}
	return string(source[start:end])
}

// HasToken reports whether a direct child of node, named or anonymous, has
// the given type. Keyword tokens such as "async", "*" or "?." are anonymous.
func HasToken(node *sitter.Node, token string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == token {
			return true
		}
	}
	return false
}

// Walk visits node and its descendants in document order, at most
// MaxTreeDepth levels deep. Returning false from visit skips the children.
func Walk(node *sitter.Node, visit func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	type frame struct {
		node  *sitter.Node
		depth int
	}
	stack := []frame{{node, 0}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.depth > MaxTreeDepth || !visit(top.node) {
			continue
		}
		for i := int(top.node.ChildCount()) - 1; i >= 0; i-- {
			stack = append(stack, frame{top.node.Child(i), top.depth + 1})
		}
	}
}
