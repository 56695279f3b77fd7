package writeback

import (
	"context"
	"fmt"

	"github.com/agentic-research/rbxforge/api"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/lua"
)

// ValidationError contains structured information about a script syntax error.
type ValidationError struct {
	Path    string // asset path, e.g. "Obby/Spawner"
	Line    uint32 // 0-indexed
	Column  uint32 // 0-indexed
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line+1, e.Column+1, e.Message)
}

// Validate parses script source with tree-sitter and returns an error if the
// AST contains syntax errors. Non-script classes pass through (returns nil).
// The grammar is plain Lua 5.x, so Luau-only syntax such as type annotations
// is reported as an error.
func Validate(source []byte, className, path string) error {
	if !api.IsScriptClass(className) {
		return nil
	}

	root, err := parse(source)
	if err != nil {
		return fmt.Errorf("tree-sitter parse failed for %s: %w", path, err)
	}
	if root == nil {
		return fmt.Errorf("tree-sitter returned nil root for %s", path)
	}

	if !root.HasError() {
		return nil
	}

	// Walk tree to find first ERROR node for a useful error message
	errNode := findFirstError(root)
	if errNode != nil {
		return &ValidationError{
			Path:    path,
			Line:    errNode.StartPoint().Row,
			Column:  errNode.StartPoint().Column,
			Message: "syntax error in script",
		}
	}

	return &ValidationError{
		Path:    path,
		Message: "script contains errors",
	}
}

// ASTErrors returns all ERROR node locations in the source for diagnostic reporting.
// Returns nil if there are no errors.
func ASTErrors(source []byte, path string) []ValidationError {
	root, err := parse(source)
	if err != nil || root == nil || !root.HasError() {
		return nil
	}

	var errs []ValidationError
	collectErrors(root, path, &errs)
	return errs
}

// ValidateTree checks the source of every script in the tree and returns the
// first syntax error of each broken script, in document order.
func ValidateTree(root api.Node) []ValidationError {
	var errs []ValidationError
	var visit func(n *api.Node, path string)
	visit = func(n *api.Node, path string) {
		if n.HasSource() {
			err := Validate([]byte(*n.Source), n.ClassName, path)
			if ve, ok := err.(*ValidationError); ok {
				errs = append(errs, *ve)
			} else if err != nil {
				errs = append(errs, ValidationError{Path: path, Message: err.Error()})
			}
		}
		for i := range n.Children {
			visit(&n.Children[i], path+"/"+n.Children[i].Name)
		}
	}
	visit(&root, root.Name)
	return errs
}

func parse(source []byte) (*sitter.Node, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(lua.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, err
	}
	return tree.RootNode(), nil
}

// findFirstError does a depth-first search for the first ERROR node.
func findFirstError(node *sitter.Node) *sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.HasError() || child.IsError() || child.IsMissing() {
			found := findFirstError(child)
			if found != nil {
				return found
			}
		}
	}
	return nil
}

// collectErrors gathers all ERROR/MISSING nodes in the tree.
func collectErrors(node *sitter.Node, path string, errs *[]ValidationError) {
	if node.IsError() || node.IsMissing() {
		*errs = append(*errs, ValidationError{
			Path:    path,
			Line:    node.StartPoint().Row,
			Column:  node.StartPoint().Column,
			Message: "syntax error in script",
		})
		return // don't recurse into error children
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.HasError() || child.IsError() || child.IsMissing() {
			collectErrors(child, path, errs)
		}
	}
}
