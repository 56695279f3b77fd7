package api

import "strings"

// Fallbacks applied when a decoded item carries no usable name or class.
const (
	DefaultName      = "Unnamed"
	DefaultClassName = "Model"
)

// Node is one object in an asset tree.
// Children are owned by value, so a tree can never share or cycle nodes.
type Node struct {
	// ID is unique within one in-memory tree. It is never written to XML.
	ID string `json:"id,omitempty"`
	// Name is the display name of the object.
	Name string `json:"name"`
	// ClassName is the engine type tag (e.g. "Script", "Folder", "Part").
	ClassName string `json:"className"`
	// Source holds script text for script-like classes (nil when absent).
	Source *string `json:"source,omitempty"`
	// Properties are typed custom properties.
	Properties Properties `json:"properties,omitempty"`
	// Children in document order.
	Children []Node `json:"children"`
}

// IsScript reports whether the node's class carries executable source.
func (n *Node) IsScript() bool {
	return IsScriptClass(n.ClassName)
}

// HasSource reports whether the node is a script with source attached.
func (n *Node) HasSource() bool {
	return n.Source != nil && n.IsScript()
}

// SetSource attaches script text to the node.
func (n *Node) SetSource(src string) {
	n.Source = &src
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	total := 1
	for i := range n.Children {
		total += n.Children[i].Count()
	}
	return total
}

// Walk visits n and its descendants depth-first, parents before children.
// Returning false from fn skips the node's children.
func (n *Node) Walk(fn func(parent, node *Node) bool) {
	walk(nil, n, fn)
}

func walk(parent, n *Node, fn func(parent, node *Node) bool) {
	if !fn(parent, n) {
		return
	}
	for i := range n.Children {
		walk(n, &n.Children[i], fn)
	}
}

// IsScriptClass reports whether className denotes an executable code
// container: Script, LocalScript, ModuleScript and any other *Script class.
func IsScriptClass(className string) bool {
	return strings.HasSuffix(className, "Script")
}
