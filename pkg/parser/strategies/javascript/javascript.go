// Package javascript detects web-platform features used by JavaScript and
// TypeScript sources.
//
// Sources are parsed with tree-sitter, so comments and string contents can
// never produce a match and minified code matches exactly like formatted code.
package javascript

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/webcompat/pkg/domain"
	"github.com/specvital/webcompat/pkg/parser"
	"github.com/specvital/webcompat/pkg/parser/rules"
	"github.com/specvital/webcompat/pkg/parser/strategies"
	"github.com/specvital/webcompat/pkg/parser/tspool"
)

const (
	strategyName = "javascript"

	nodeAugmentedAssign    = "augmented_assignment_expression"
	nodeBinaryExpression   = "binary_expression"
	nodeCallExpression     = "call_expression"
	nodeComment            = "comment"
	nodeExpressionStmt     = "expression_statement"
	nodeForIn              = "for_in_statement"
	nodeIdentifier         = "identifier"
	nodeImport             = "import"
	nodeLexicalDeclaration = "lexical_declaration"
	nodeMemberExpression   = "member_expression"
	nodeMethodDefinition   = "method_definition"
	nodeNewExpression      = "new_expression"
	nodeNumber             = "number"
	nodeProgram            = "program"
	nodeStatementBlock     = "statement_block"
	nodeString             = "string"
	nodeThis               = "this"
)

// ES module sources, recorded as detail for es6-module.
const importSourceQuery = `
	(import_statement
		source: (string) @source
	)
`

// Function-like nodes. They can carry an "async" keyword and their body may
// open with a directive prologue.
var functionLike = map[string]bool{
	"arrow_function":                 true,
	"function":                       true,
	"function_declaration":           true,
	"function_expression":            true,
	"generator_function":             true,
	"generator_function_declaration": true,
	nodeMethodDefinition:             true,
}

// Receivers that denote the global object.
var globalReceivers = []string{"window.", "globalThis.", "self."}

func init() {
	strategies.Register(NewStrategy())
}

// Strategy is the JavaScript/TypeScript feature detector.
type Strategy struct{}

// NewStrategy creates the script detector.
func NewStrategy() *Strategy {
	return &Strategy{}
}

func (s *Strategy) Name() string              { return strategyName }
func (s *Strategy) Priority() int             { return strategies.DefaultPriority }
func (s *Strategy) Language() domain.Language { return domain.LanguageJavaScript }
func (s *Strategy) Languages() []domain.Language {
	return []domain.Language{domain.LanguageJavaScript, domain.LanguageTypeScript, domain.LanguageTSX}
}

// CanHandle accepts JavaScript, TypeScript and TSX files.
func (s *Strategy) CanHandle(filename string) bool {
	lang, ok := domain.LanguageFromPath(filename)
	return ok && lang.IsScript()
}

// Validate reports whether tree-sitter produced a tree. Syntax errors are
// still valid input; they only show up as error nodes in the tree.
func (s *Strategy) Validate(source []byte) bool {
	tree, err := tspool.Parse(context.Background(), domain.LanguageJavaScript, source)
	if err != nil {
		return false
	}
	tree.Close()
	return true
}

// grammarFor picks the grammar from the file extension. In-memory input and
// plain script files use JavaScript.
func grammarFor(filename string) domain.Language {
	if lang, ok := domain.LanguageFromPath(filename); ok && lang.IsScript() {
		return lang
	}
	return domain.LanguageJavaScript
}

// Parse builds a fresh detection result for source.
func (s *Strategy) Parse(ctx context.Context, source []byte, filename string) (*domain.DetectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lang := grammarFor(filename)
	result := domain.NewDetectionResult(lang)
	result.Path = filename
	if len(bytes.TrimSpace(source)) == 0 {
		return result, nil
	}

	tree, err := tspool.Parse(ctx, lang, source)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, domain.NewError(domain.KindParse, "javascript parser: failed to parse %s", filename).
			WithDetail("path", filename).
			Wrap(err)
	}
	defer tree.Close()

	root := tree.RootNode()
	w := &walker{result: result, source: source}
	parser.Walk(root, w.visit)
	w.recordImportSources(root, lang)
	w.applyImplied()

	return result, nil
}

type walker struct {
	result *domain.DetectionResult
	source []byte
}

func (w *walker) text(n *sitter.Node) string {
	return parser.NodeText(n, w.source)
}

func (w *walker) record(nodeType string, hits []rules.Hit) {
	if len(hits) == 0 {
		return
	}
	w.result.CountElement(nodeType)
	rules.Record(w.result, hits...)
}

func (w *walker) visit(n *sitter.Node) bool {
	nodeType := n.Type()
	w.record(nodeType, registry.MatchNode(nodeType))

	switch nodeType {
	case nodeLexicalDeclaration:
		w.visitLexicalDeclaration(n)
	case nodeBinaryExpression:
		w.visitOperator(n, map[string]domain.FeatureID{
			"??": featureNullish,
			"**": featureExponent,
		})
	case nodeAugmentedAssign:
		w.visitOperator(n, map[string]domain.FeatureID{
			"??=": featureLogicalAssignment,
			"||=": featureLogicalAssignment,
			"&&=": featureLogicalAssignment,
			"**=": featureExponent,
		})
	case nodeNumber:
		if strings.HasSuffix(w.text(n), "n") {
			w.result.CountElement(nodeType)
			w.result.Record(featureBigInt, "bigint literal")
		}
	case nodeExpressionStmt:
		w.visitDirective(n)
	case nodeCallExpression:
		w.visitCall(n)
	case nodeNewExpression:
		w.visitNew(n)
	case nodeMemberExpression:
		if !isCallee(n) {
			w.visitMember(n, false)
		}
	case nodeForIn:
		w.visitForHeader(n)
	}

	if functionLike[nodeType] {
		if parser.HasToken(n, "async") {
			w.result.CountElement(nodeType)
			w.result.Record(featureAsync, "async "+nodeType)
		}
		if nodeType == nodeMethodDefinition && parser.HasToken(n, "*") {
			w.result.CountElement(nodeType)
			w.result.Record(featureGenerators, "generator method")
		}
	}

	return true
}

func (w *walker) visitLexicalDeclaration(n *sitter.Node) {
	if n.ChildCount() == 0 {
		return
	}
	w.visitDeclarationKind(nodeLexicalDeclaration, n.Child(0).Type())
}

// visitForHeader handles for (const x of xs) and for (let k in o), whose
// declaration keyword is a direct child of the loop.
func (w *walker) visitForHeader(n *sitter.Node) {
	if kind := n.ChildByFieldName("kind"); kind != nil {
		w.visitDeclarationKind(nodeForIn, kind.Type())
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if t := n.Child(i).Type(); t == "const" || t == "let" {
			w.visitDeclarationKind(nodeForIn, t)
			return
		}
	}
}

func (w *walker) visitDeclarationKind(nodeType, kind string) {
	switch kind {
	case "const":
		w.result.CountElement(nodeType)
		w.result.Record(featureConst, "const declaration")
	case "let":
		w.result.CountElement(nodeType)
		w.result.Record(featureLet, "let declaration")
	}
}

func (w *walker) visitOperator(n *sitter.Node, operators map[string]domain.FeatureID) {
	op := n.ChildByFieldName("operator")
	if op == nil {
		return
	}
	if id, ok := operators[op.Type()]; ok {
		w.result.CountElement(n.Type())
		w.result.Record(id, "operator "+op.Type())
	}
}

// visitDirective records a "use strict" directive in the prologue of a
// program or function body. Only string statements may precede it.
func (w *walker) visitDirective(n *sitter.Node) {
	parent := n.Parent()
	if parent == nil {
		return
	}
	switch parent.Type() {
	case nodeProgram:
	case nodeStatementBlock:
		if owner := parent.Parent(); owner == nil || !functionLike[owner.Type()] {
			return
		}
	default:
		return
	}
	if !isStringStatement(n) {
		return
	}
	for prev := n.PrevNamedSibling(); prev != nil; prev = prev.PrevNamedSibling() {
		if prev.Type() == nodeComment {
			continue
		}
		if !isStringStatement(prev) {
			return
		}
	}
	if strings.Trim(w.text(n.NamedChild(0)), `"'`) == "use strict" {
		w.result.CountElement("directive")
		w.result.Record(featureUseStrict, `directive "use strict"`)
	}
}

func isStringStatement(n *sitter.Node) bool {
	return n.Type() == nodeExpressionStmt && n.NamedChildCount() == 1 && n.NamedChild(0).Type() == nodeString
}

func (w *walker) visitCall(n *sitter.Node) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return
	}

	switch fn.Type() {
	case nodeImport:
		w.result.CountElement(nodeCallExpression)
		w.result.Record(featureDynamicImport, "call import()")
	case nodeIdentifier:
		name := w.text(fn)
		w.countCall("call " + name)
		w.record(nodeCallExpression, registry.MatchFunctionCall(name))
	case nodeMemberExpression:
		w.visitMember(fn, true)
	}
}

func (w *walker) visitNew(n *sitter.Node) {
	ctor := n.ChildByFieldName("constructor")
	if ctor == nil {
		return
	}
	if ctor.Type() != nodeIdentifier && ctor.Type() != nodeMemberExpression {
		return
	}
	name := normalizeReceiver(w.text(ctor))
	w.countCall("new " + name)
	w.record(nodeNewExpression, registry.MatchConstructor(name))
}

// visitMember matches obj.prop. call is set when the member expression is
// the callee of a call expression.
func (w *walker) visitMember(n *sitter.Node, call bool) {
	prop := n.ChildByFieldName("property")
	obj := n.ChildByFieldName("object")
	if prop == nil || obj == nil {
		return
	}

	property := w.text(prop)
	receiver := w.receiver(obj)

	if call {
		w.countCall("member ." + property)
		// window.fetch(), globalThis.fetch() and self.fetch() are plain calls.
		if isGlobalObject(receiver) {
			w.record(nodeCallExpression, registry.MatchFunctionCall(property))
		}
		w.record(nodeCallExpression, registry.MatchMember(receiver, property, true))
		return
	}

	w.record(nodeMemberExpression, registry.MatchMember(receiver, property, false))
}

// isCallee reports whether n is the function of its parent call expression.
func isCallee(n *sitter.Node) bool {
	parent := n.Parent()
	if parent == nil || parent.Type() != nodeCallExpression {
		return false
	}
	fn := parent.ChildByFieldName("function")
	return fn != nil && fn.StartByte() == n.StartByte() && fn.EndByte() == n.EndByte()
}

// receiver returns the normalized receiver text for identifier chains and
// an empty string for any other expression.
func (w *walker) receiver(obj *sitter.Node) string {
	switch obj.Type() {
	case nodeIdentifier, nodeMemberExpression, nodeThis:
		if !isIdentifierChain(obj) {
			return ""
		}
		return normalizeReceiver(w.text(obj))
	}
	return ""
}

func isIdentifierChain(n *sitter.Node) bool {
	for n != nil {
		switch n.Type() {
		case nodeIdentifier, nodeThis:
			return true
		case nodeMemberExpression:
			n = n.ChildByFieldName("object")
		default:
			return false
		}
	}
	return false
}

func (w *walker) countCall(shape string) {
	w.result.CountAttribute(shape)
}

func (w *walker) recordImportSources(root *sitter.Node, lang domain.Language) {
	captures, err := tspool.Captures(root, w.source, lang, importSourceQuery, "source")
	if err != nil {
		return
	}
	for _, c := range captures {
		module := strings.Trim(c.Text, "\"'`")
		if module == "" {
			continue
		}
		w.result.Record(featureModule, fmt.Sprintf("import from %q", module))
	}
}

func (w *walker) applyImplied() {
	for id, extra := range implied {
		if !w.result.Features.Has(id) {
			continue
		}
		for _, e := range extra {
			w.result.Record(e, "implied by "+string(id))
		}
	}
}

// normalizeReceiver removes whitespace, optional-chaining dots and global
// object prefixes so window.navigator and navigator compare equal.
func normalizeReceiver(text string) string {
	text = strings.Join(strings.Fields(text), "")
	text = strings.ReplaceAll(text, "?.", ".")
	for changed := true; changed; {
		changed = false
		for _, prefix := range globalReceivers {
			if strings.HasPrefix(text, prefix) {
				text = text[len(prefix):]
				changed = true
			}
		}
	}
	return text
}

func isGlobalObject(receiver string) bool {
	return receiver == "window" || receiver == "globalThis" || receiver == "self"
}
