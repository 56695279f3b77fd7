package linter

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentic-research/rbxforge/api"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/lua"
)

type Diagnostic struct {
	Message string
	Line    uint32
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s", d.Line+1, d.Message)
}

// PathDiagnostic ties a Diagnostic to the asset path of its script.
type PathDiagnostic struct {
	Path string
	Diagnostic
}

func (d PathDiagnostic) String() string {
	return d.Path + ": " + d.Diagnostic.String()
}

// deprecatedGlobals maps legacy scheduler globals to their task library
// replacements.
var deprecatedGlobals = map[string]string{
	"wait":  "task.wait",
	"spawn": "task.spawn",
	"delay": "task.delay",
}

// Lint checks script source for static analysis issues.
func Lint(source []byte) ([]Diagnostic, error) {
	if strings.TrimSpace(string(source)) == "" {
		return []Diagnostic{{Message: "Script is empty."}}, nil
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lua.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, err
	}

	var diags []Diagnostic
	visit(tree.RootNode(), func(n *sitter.Node) {
		// Rule: calls to deprecated scheduler globals, e.g. wait(1).
		if !strings.Contains(n.Type(), "call") || n.NamedChildCount() == 0 {
			return
		}
		callee := n.NamedChild(0)
		if callee.Type() != "identifier" {
			return
		}
		if repl, ok := deprecatedGlobals[callee.Content(source)]; ok {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("Deprecated global '%s'. Use '%s' instead.", callee.Content(source), repl),
				Line:    callee.StartPoint().Row,
			})
		}
	})
	return diags, nil
}

// LintTree lints every script with source in the tree, in document order.
func LintTree(root api.Node) ([]PathDiagnostic, error) {
	var out []PathDiagnostic
	var firstErr error
	var walk func(n *api.Node, path string)
	walk = func(n *api.Node, path string) {
		if n.HasSource() {
			diags, err := Lint([]byte(*n.Source))
			if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("lint %s: %w", path, err)
			}
			for _, d := range diags {
				out = append(out, PathDiagnostic{Path: path, Diagnostic: d})
			}
		}
		for i := range n.Children {
			walk(&n.Children[i], path+"/"+n.Children[i].Name)
		}
	}
	walk(&root, root.Name)
	return out, firstErr
}

func visit(n *sitter.Node, fn func(*sitter.Node)) {
	if n == nil {
		return
	}
	fn(n)
	for i := 0; i < int(n.ChildCount()); i++ {
		visit(n.Child(i), fn)
	}
}
