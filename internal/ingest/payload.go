package ingest

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agentic-research/rbxforge/api"
	"github.com/google/uuid"
	"github.com/ohler55/ojg/oj"
)

// DefaultSelector selects the whole payload.
const DefaultSelector = "$"

// ErrNoTree is returned when a payload holds nothing shaped like an asset.
var ErrNoTree = errors.New("payload contains no asset tree")

// wrapperKeys are envelope fields models commonly put around the tree.
var wrapperKeys = []string{"root", "asset", "tree", "model"}

// Builder turns generic decoded JSON into asset trees.
type Builder struct {
	Walker Walker
	Logger *slog.Logger
	NewID  func() string
}

// NewBuilder returns a Builder using JSONPath selection and random UUIDs.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		Walker: NewJsonWalker(),
		Logger: logger,
		NewID:  uuid.NewString,
	}
}

// ParsePayload parses raw model output and returns the asset tree selected by
// selector (DefaultSelector when empty). A fenced code block around the JSON
// is tolerated.
func (b *Builder) ParsePayload(raw, selector string) (api.Node, error) {
	data, err := oj.ParseString(stripCodeFence(raw))
	if err != nil {
		return api.Node{}, fmt.Errorf("parse payload json: %w", err)
	}
	if strings.TrimSpace(selector) == "" {
		selector = DefaultSelector
	}
	matches, err := b.Walker.Query(data, selector)
	if err != nil {
		return api.Node{}, err
	}
	for _, m := range matches {
		obj, ok := unwrap(m.Context())
		if !ok {
			continue
		}
		return b.BuildTree(obj)
	}
	return api.Node{}, fmt.Errorf("selector %q: %w", selector, ErrNoTree)
}

// BuildTree converts a decoded JSON object into an asset tree. Missing IDs are
// generated; property values other than strings, numbers and booleans are
// dropped.
func (b *Builder) BuildTree(v any) (api.Node, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return api.Node{}, fmt.Errorf("asset node: expected object, got %T", v)
	}
	return b.build(obj, "")
}

func (b *Builder) build(obj map[string]any, path string) (api.Node, error) {
	n := api.Node{
		ID:        stringField(obj, "id"),
		Name:      stringField(obj, "name", "Name"),
		ClassName: stringField(obj, "className", "class", "ClassName"),
		Children:  []api.Node{},
	}
	if n.ID == "" {
		n.ID = b.newID()
	}
	path = path + "/" + n.Name

	if src, ok := obj["source"].(string); ok {
		n.SetSource(src)
	}

	if props, ok := obj["properties"].(map[string]any); ok && len(props) > 0 {
		n.Properties = make(api.Properties, len(props))
		for key, raw := range props {
			val, ok := api.ValueOf(raw)
			if !ok {
				b.logger().Debug("dropping unsupported property value",
					"path", path, "property", key, "type", fmt.Sprintf("%T", raw))
				continue
			}
			n.Properties[key] = val
		}
	}

	switch children := obj["children"].(type) {
	case nil:
	case []any:
		for i, c := range children {
			child, ok := c.(map[string]any)
			if !ok {
				return api.Node{}, fmt.Errorf("%s: child %d: expected object, got %T", path, i, c)
			}
			built, err := b.build(child, path)
			if err != nil {
				return api.Node{}, err
			}
			n.Children = append(n.Children, built)
		}
	default:
		return api.Node{}, fmt.Errorf("%s: children: expected array, got %T", path, children)
	}
	return n, nil
}

func (b *Builder) newID() string {
	if b.NewID != nil {
		return b.NewID()
	}
	return uuid.NewString()
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

// unwrap returns the object that looks like an asset node, descending into
// a single envelope key when the object itself carries no class.
func unwrap(v any) (map[string]any, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	if looksLikeNode(obj) {
		return obj, true
	}
	for _, key := range wrapperKeys {
		if inner, ok := obj[key].(map[string]any); ok && looksLikeNode(inner) {
			return inner, true
		}
	}
	return nil, false
}

func looksLikeNode(obj map[string]any) bool {
	for _, key := range []string{"className", "class", "ClassName"} {
		if _, ok := obj[key]; ok {
			return true
		}
	}
	_, hasName := obj["name"]
	_, hasChildren := obj["children"]
	return hasName && hasChildren
}

func stringField(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok {
			return s
		}
	}
	return ""
}

// stripCodeFence removes a surrounding ```json ... ``` block if present.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
