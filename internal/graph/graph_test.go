package graph

import (
	"io/fs"
	"testing"

	"github.com/agentic-research/rbxforge/api"
)

func TestMemoryStore_AddRootAndGetNode(t *testing.T) {
	store := NewMemoryStore()
	store.AddRoot(&Node{
		ID:        "Obby",
		ClassName: "Model",
		Mode:      fs.ModeDir,
		Children: []string{
			"Obby/Spawner",
		},
	})

	node, err := store.GetNode("Obby")
	if err != nil {
		t.Fatalf("GetNode(Obby) returned error: %v", err)
	}
	if !node.Mode.IsDir() {
		t.Error("Obby should be a directory")
	}
	if len(node.Children) != 1 {
		t.Errorf("Obby children = %d, want 1", len(node.Children))
	}
}

func TestMemoryStore_GetNodeNormalizesLeadingSlash(t *testing.T) {
	store := NewMemoryStore()
	store.AddNode(&Node{ID: "foo", Mode: fs.ModeDir})

	node, err := store.GetNode("/foo")
	if err != nil {
		t.Fatalf("GetNode(/foo) should resolve to foo: %v", err)
	}
	if node.ID != "foo" {
		t.Errorf("ID = %q, want %q", node.ID, "foo")
	}
}

func TestMemoryStore_GetNodeNotFound(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.GetNode("missing"); err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := store.ListChildren("missing"); err != ErrNotFound {
		t.Errorf("ListChildren err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_ListChildrenRoot(t *testing.T) {
	store := NewMemoryStore()
	store.AddRoot(&Node{ID: "Lobby", Mode: fs.ModeDir})
	store.AddRoot(&Node{ID: "Arena", Mode: fs.ModeDir})
	store.AddRoot(&Node{ID: "Arena", Mode: fs.ModeDir})

	roots, err := store.ListChildren("/")
	if err != nil {
		t.Fatalf("ListChildren(/) returned error: %v", err)
	}
	if len(roots) != 2 {
		t.Fatalf("roots = %d, want 2", len(roots))
	}
}

func TestMemoryStore_ReadContent(t *testing.T) {
	store := NewMemoryStore()
	store.AddNode(&Node{ID: "Main", ClassName: "Script", Data: []byte("print('hello')")})

	buf := make([]byte, 5)
	n, err := store.ReadContent("Main", buf, 0)
	if err != nil {
		t.Fatalf("ReadContent returned error: %v", err)
	}
	if string(buf[:n]) != "print" {
		t.Errorf("ReadContent = %q, want %q", buf[:n], "print")
	}

	n, err = store.ReadContent("Main", buf, 100)
	if err != nil || n != 0 {
		t.Errorf("ReadContent past end = (%d, %v), want (0, nil)", n, err)
	}
}

func sampleTree() api.Node {
	src := "print('spawn')"
	return api.Node{
		ID:         "a1",
		Name:       "Obby",
		ClassName:  "Model",
		Properties: api.Properties{"Speed": api.Number(16), "Hard": api.Bool(true)},
		Children: []api.Node{
			{ID: "a2", Name: "Spawner", ClassName: "Script", Source: &src},
			{ID: "a3", Name: "Part", ClassName: "Part"},
			{ID: "a4", Name: "Part", ClassName: "Part"},
			{ID: "a5", Name: "Part~2", ClassName: "Part"},
			{ID: "a6", Name: "a/b", ClassName: "Folder", Children: []api.Node{
				{ID: "a7", Name: "Helper", ClassName: "ModuleScript"},
			}},
		},
	}
}

func TestProject_PathsAndIndex(t *testing.T) {
	store := Project(sampleTree())

	if store.Len() != 7 {
		t.Fatalf("Len = %d, want 7", store.Len())
	}

	root, err := store.GetNode("Obby")
	if err != nil {
		t.Fatalf("GetNode(Obby): %v", err)
	}
	want := []string{"Obby/Spawner", "Obby/Part", "Obby/Part~2", "Obby/Part~2~2", "Obby/a_b"}
	if len(root.Children) != len(want) {
		t.Fatalf("children = %v, want %v", root.Children, want)
	}
	for i := range want {
		if root.Children[i] != want[i] {
			t.Errorf("child %d = %q, want %q", i, root.Children[i], want[i])
		}
	}
	if string(root.Properties["Speed"]) != "16" || string(root.Properties["Hard"]) != "true" {
		t.Errorf("properties = %v", root.Properties)
	}

	spawner, err := store.GetNode("/Obby/Spawner")
	if err != nil {
		t.Fatalf("GetNode(Spawner): %v", err)
	}
	if string(spawner.Data) != "print('spawn')" || spawner.AssetID != "a2" {
		t.Errorf("spawner = %+v", spawner)
	}

	parts, _ := store.ByClass("Part")
	if len(parts) != 3 {
		t.Fatalf("ByClass(Part) = %d, want 3", len(parts))
	}
	if parts[0].AssetID != "a3" || parts[2].AssetID != "a5" {
		t.Errorf("ByClass order = %s, %s, %s", parts[0].AssetID, parts[1].AssetID, parts[2].AssetID)
	}

	if none, _ := store.ByClass("Sound"); len(none) != 0 {
		t.Errorf("ByClass(Sound) = %d, want 0", len(none))
	}

	scripts := store.Scripts()
	if len(scripts) != 2 || scripts[0].ID != "Obby/Spawner" || scripts[1].ID != "Obby/a_b/Helper" {
		t.Errorf("Scripts = %v", scripts)
	}

	classes := store.Classes()
	if len(classes) != 5 || classes[3].ClassName != "Part" || classes[3].Count != 3 {
		t.Errorf("Classes = %+v", classes)
	}
}

func TestProject_SlashNamesDoNotCollide(t *testing.T) {
	store := Project(api.Node{Name: "R", ClassName: "Folder", Children: []api.Node{
		{Name: "a/b", ClassName: "Folder", Children: []api.Node{{Name: "c", ClassName: "Part"}}},
		{Name: "a_b", ClassName: "Folder", Children: []api.Node{{Name: "c", ClassName: "Part"}}},
		{Name: "a", ClassName: "Folder", Children: []api.Node{{Name: "b", ClassName: "Part"}}},
	}})

	for id, name := range map[string]string{
		"R/a_b":     "a/b",
		"R/a_b~2":   "a_b",
		"R/a":       "a",
		"R/a/b":     "b",
		"R/a_b/c":   "c",
		"R/a_b~2/c": "c",
	} {
		n, err := store.GetNode(id)
		if err != nil {
			t.Fatalf("GetNode(%s): %v", id, err)
		}
		if n.Name != name {
			t.Errorf("%s: Name = %q, want %q", id, n.Name, name)
		}
	}
	if store.Len() != 7 {
		t.Errorf("Len = %d, want 7", store.Len())
	}
}

func TestProject_Walk(t *testing.T) {
	store := Project(sampleTree())
	var ids []string
	var depths []int
	store.Walk(func(n *Node, depth int) {
		ids = append(ids, n.ID)
		depths = append(depths, depth)
	})
	if len(ids) != 7 || ids[0] != "Obby" || ids[6] != "Obby/a_b/Helper" {
		t.Errorf("Walk order = %v", ids)
	}
	if depths[6] != 2 {
		t.Errorf("Helper depth = %d, want 2", depths[6])
	}
}

func TestHotSwapGraph_Swap(t *testing.T) {
	h := NewHotSwapGraph(api.Node{Name: "Empty", ClassName: "Folder"})
	if _, err := h.GetNode("Empty"); err != nil {
		t.Fatalf("initial GetNode: %v", err)
	}

	h.Swap(sampleTree())
	if _, err := h.GetNode("Empty"); err != ErrNotFound {
		t.Errorf("old tree still visible: %v", err)
	}
	if got := h.Tree().Name; got != "Obby" {
		t.Errorf("Tree().Name = %q, want Obby", got)
	}
	parts, _ := h.ByClass("Part")
	if len(parts) != 3 {
		t.Errorf("ByClass(Part) = %d, want 3", len(parts))
	}
	children, _ := h.ListChildren("Obby")
	if len(children) != 5 {
		t.Errorf("children = %d, want 5", len(children))
	}
	buf := make([]byte, 64)
	n, _ := h.ReadContent("Obby/Spawner", buf, 0)
	if string(buf[:n]) != "print('spawn')" {
		t.Errorf("ReadContent = %q", buf[:n])
	}
}
