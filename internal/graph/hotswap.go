package graph

import (
	"sync"

	"github.com/agentic-research/rbxforge/api"
)

// HotSwapGraph is a thread-safe workspace holding the current asset tree and
// its projection. Swap replaces both at once, so a failed import or
// generation that never calls Swap leaves the previous state untouched.
type HotSwapGraph struct {
	mu      sync.RWMutex
	tree    api.Node
	current *MemoryStore
}

func NewHotSwapGraph(initial api.Node) *HotSwapGraph {
	return &HotSwapGraph{tree: initial, current: Project(initial)}
}

// Swap atomically replaces the current tree.
func (h *HotSwapGraph) Swap(tree api.Node) {
	projected := Project(tree)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tree = tree
	h.current = projected
}

// Tree returns the current asset tree.
func (h *HotSwapGraph) Tree() api.Node {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.tree
}

// Store returns the projection of the current tree.
func (h *HotSwapGraph) Store() *MemoryStore {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// GetNode delegates to current graph.
func (h *HotSwapGraph) GetNode(id string) (*Node, error) {
	return h.Store().GetNode(id)
}

// ListChildren delegates to current graph.
func (h *HotSwapGraph) ListChildren(id string) ([]string, error) {
	return h.Store().ListChildren(id)
}

// ReadContent delegates to current graph.
func (h *HotSwapGraph) ReadContent(id string, buf []byte, offset int64) (int, error) {
	return h.Store().ReadContent(id, buf, offset)
}

// ByClass delegates to current graph.
func (h *HotSwapGraph) ByClass(className string) ([]*Node, error) {
	return h.Store().ByClass(className)
}
