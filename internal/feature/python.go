package feature

import (
	"fmt"

	"github.com/hargabyte/sift/internal/parser"
)

// matcher extracts feature values from a matchContext.
type matcher interface {
	match(mc *matchContext) ([]string, error)
}

// unknownMatcherError reports a rule naming a matcher that does not exist.
type unknownMatcherError struct {
	Matcher string
}

func (e *unknownMatcherError) Error() string {
	return fmt.Sprintf("unknown matcher: %s", e.Matcher)
}

// matchContext carries the content under extraction and a lazily built
// Python AST shared by all AST matchers, so the source is parsed at most
// once per Extract call.
type matchContext struct {
	content []byte

	parsed bool
	ast    *parser.ParseResult
	astErr error
}

func newMatchContext(content []byte) *matchContext {
	return &matchContext{content: content}
}

// parse builds the Python AST on first use. A parse failure is sticky:
// every AST matcher on this content degrades the same way.
func (mc *matchContext) parse() (*parser.ParseResult, error) {
	if mc.parsed {
		return mc.ast, mc.astErr
	}
	mc.parsed = true

	p := parser.NewPython()
	defer p.Close()

	mc.ast, mc.astErr = p.Parse(mc.content)
	return mc.ast, mc.astErr
}

func (mc *matchContext) close() {
	if mc.ast != nil {
		mc.ast.Close()
		mc.ast = nil
	}
}

// pythonMatcher extracts the name of every node of the given type
// (function_definition, class_definition) from the Python AST.
type pythonMatcher struct {
	nodeType string
}

func (m *pythonMatcher) match(mc *matchContext) ([]string, error) {
	ast, err := mc.parse()
	if err != nil {
		return nil, err
	}

	var values []string
	for _, node := range ast.FindNodesByType(m.nodeType) {
		name := node.ChildByFieldName("name")
		if name == nil {
			continue
		}
		values = append(values, ast.NodeText(name))
	}
	return values, nil
}

// pythonImportMatcher extracts imported module names from both
// `import x` and `from x import y` statements.
type pythonImportMatcher struct{}

func (m *pythonImportMatcher) match(mc *matchContext) ([]string, error) {
	ast, err := mc.parse()
	if err != nil {
		return nil, err
	}

	var values []string

	for _, node := range ast.FindNodesByType("import_statement") {
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			switch child.Type() {
			case "dotted_name":
				values = append(values, ast.NodeText(child))
			case "aliased_import":
				if name := child.ChildByFieldName("name"); name != nil {
					values = append(values, ast.NodeText(name))
				}
			}
		}
	}

	for _, node := range ast.FindNodesByType("import_from_statement") {
		if mod := node.ChildByFieldName("module_name"); mod != nil {
			values = append(values, ast.NodeText(mod))
		}
	}

	return values, nil
}
