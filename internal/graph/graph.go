package graph

import (
	"errors"
	"io/fs"
	"sort"
	"sync"

	"github.com/RoaringBitmap/roaring"
)

var ErrNotFound = errors.New("node not found")

// Node is one asset projected into a path-addressed view.
// The Mode field declares whether the asset has children.
type Node struct {
	ID         string            // Slash-separated path, e.g. "Obby/Parts/Floor"
	AssetID    string            // ID of the originating api.Node
	Name       string            // Display name
	ClassName  string            // Engine class
	Mode       fs.FileMode       // fs.ModeDir when the asset has children
	Data       []byte            // Script source (nil for non-scripts)
	Properties map[string][]byte // Text renderings of typed properties
	Children   []string          // Child node IDs in document order
}

// ContentSize returns the byte length of the node's script source.
func (n *Node) ContentSize() int64 {
	return int64(len(n.Data))
}

// Graph is the read interface over a projected asset tree.
type Graph interface {
	GetNode(id string) (*Node, error)
	ListChildren(id string) ([]string, error)
	ReadContent(id string, buf []byte, offset int64) (int, error)
	ByClass(className string) ([]*Node, error)
}

// MemoryStore is an in-memory Graph with a per-class roaring bitmap index.
type MemoryStore struct {
	mu    sync.RWMutex
	nodes map[string]*Node
	roots []string

	// Roaring bitmap index: class name → set of node internal IDs.
	classToNodes map[string]*roaring.Bitmap
	nodeIntID    map[string]uint32 // Node.ID → internal bitmap uint32 ID
	intToNodeID  []string          // reverse: uint32 → Node.ID
	nextIntID    uint32            // monotonic counter
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes:        make(map[string]*Node),
		roots:        []string{},
		classToNodes: make(map[string]*roaring.Bitmap),
		nodeIntID:    make(map[string]uint32),
	}
}

// AddRoot registers a node as a top-level root and adds it to the store.
func (s *MemoryStore) AddRoot(n *Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[n.ID] = n
	s.indexNode(n)
	for _, r := range s.roots {
		if r == n.ID {
			return
		}
	}
	s.roots = append(s.roots, n.ID)
}

// AddNode adds a non-root node to the store.
func (s *MemoryStore) AddNode(n *Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[n.ID] = n
	s.indexNode(n)
}

// indexNode assigns an internal bitmap ID and registers the node in classToNodes.
// Must be called with s.mu held.
func (s *MemoryStore) indexNode(n *Node) {
	intID, ok := s.nodeIntID[n.ID]
	if !ok {
		intID = s.nextIntID
		s.nextIntID++
		s.nodeIntID[n.ID] = intID
		s.intToNodeID = append(s.intToNodeID, n.ID)
	}
	bm, exists := s.classToNodes[n.ClassName]
	if !exists {
		bm = roaring.New()
		s.classToNodes[n.ClassName] = bm
	}
	bm.Add(intID)
}

// Len returns the number of nodes in the store.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// Classes returns every indexed class name with its node count, sorted by name.
func (s *MemoryStore) Classes() []ClassCount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ClassCount, 0, len(s.classToNodes))
	for class, bm := range s.classToNodes {
		out = append(out, ClassCount{ClassName: class, Count: int(bm.GetCardinality())})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClassName < out[j].ClassName })
	return out
}

// ClassCount pairs a class name with how many nodes carry it.
type ClassCount struct {
	ClassName string
	Count     int
}

// ByClass implements Graph. Nodes are returned in insertion (document) order.
func (s *MemoryStore) ByClass(className string) ([]*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bm, ok := s.classToNodes[className]
	if !ok {
		return nil, nil
	}
	nodes := make([]*Node, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		intID := it.Next()
		if int(intID) >= len(s.intToNodeID) {
			continue
		}
		if n, ok := s.nodes[s.intToNodeID[intID]]; ok {
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}

// Scripts returns every node whose class carries source, in document order.
func (s *MemoryStore) Scripts() []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	union := roaring.New()
	for class, bm := range s.classToNodes {
		if isScriptClass(class) {
			union.Or(bm)
		}
	}
	nodes := make([]*Node, 0, union.GetCardinality())
	it := union.Iterator()
	for it.HasNext() {
		if n, ok := s.nodes[s.intToNodeID[it.Next()]]; ok {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Walk visits every node depth-first in document order.
func (s *MemoryStore) Walk(fn func(n *Node, depth int)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.roots {
		s.walk(r, 0, fn)
	}
}

func (s *MemoryStore) walk(id string, depth int, fn func(n *Node, depth int)) {
	n, ok := s.nodes[id]
	if !ok {
		return
	}
	fn(n, depth)
	for _, c := range n.Children {
		s.walk(c, depth+1, fn)
	}
}

// GetNode implements Graph.
func (s *MemoryStore) GetNode(id string) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Normalize path: remove leading slash
	if len(id) > 0 && id[0] == '/' {
		id = id[1:]
	}

	n, ok := s.nodes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return n, nil
}

// ListChildren implements Graph.
func (s *MemoryStore) ListChildren(id string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Root case
	if id == "" || id == "/" {
		return s.roots, nil
	}

	// Normalize
	if len(id) > 0 && id[0] == '/' {
		id = id[1:]
	}

	n, ok := s.nodes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return n.Children, nil
}

// ReadContent implements Graph.
func (s *MemoryStore) ReadContent(id string, buf []byte, offset int64) (int, error) {
	node, err := s.GetNode(id)
	if err != nil {
		return 0, err
	}
	data := node.Data
	if offset >= int64(len(data)) {
		return 0, nil
	}
	end := offset + int64(len(buf))
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return copy(buf, data[offset:end]), nil
}
