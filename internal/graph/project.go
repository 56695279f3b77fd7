package graph

import (
	"io/fs"
	"strconv"
	"strings"

	"github.com/agentic-research/rbxforge/api"
)

// Project flattens an asset tree into a MemoryStore. Node IDs are paths built
// from asset names; slashes in names become underscores and repeated sibling
// names get a "~N" suffix so every path is unique.
func Project(root api.Node) *MemoryStore {
	s := NewMemoryStore()
	projectNode(s, &root, "")
	return s
}

// projectNode adds n before its children so the class index keeps document
// order.
func projectNode(s *MemoryStore, n *api.Node, id string) {
	isRoot := id == ""
	if isRoot {
		id = segment(n.Name)
	}
	out := &Node{
		ID:        id,
		AssetID:   n.ID,
		Name:      n.Name,
		ClassName: n.ClassName,
	}
	if n.HasSource() {
		out.Data = []byte(*n.Source)
	}
	if len(n.Properties) > 0 {
		out.Properties = make(map[string][]byte, len(n.Properties))
		for _, k := range n.Properties.Keys() {
			out.Properties[k] = []byte(n.Properties[k].String())
		}
	}
	if len(n.Children) > 0 {
		out.Mode = fs.ModeDir
	}
	if isRoot {
		s.AddRoot(out)
	} else {
		s.AddNode(out)
	}

	used := make(map[string]bool, len(n.Children))
	for i := range n.Children {
		child := &n.Children[i]
		seg := segment(child.Name)
		if used[seg] {
			base := seg
			for c := 2; used[seg]; c++ {
				seg = base + "~" + strconv.Itoa(c)
			}
		}
		used[seg] = true
		childID := id + "/" + seg
		out.Children = append(out.Children, childID)
		projectNode(s, child, childID)
	}
}

func segment(name string) string {
	if name == "" {
		name = api.DefaultName
	}
	return strings.ReplaceAll(name, "/", "_")
}

func isScriptClass(className string) bool {
	return api.IsScriptClass(className)
}
