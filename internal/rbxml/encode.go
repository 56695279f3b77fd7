// Package rbxml translates asset trees to and from the Roblox XML model
// format (.rbxmx).
package rbxml

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/agentic-research/rbxforge/api"
)

const (
	xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>`
	rootOpen  = `<roblox xmlns:xmime="http://www.w3.org/2005/05/xmlmime"` +
		` xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"` +
		` xsi:noNamespaceSchemaLocation="http://www.roblox.com/roblox.xsd" version="4">`
	rootClose = `</roblox>`

	itemTag       = "Item"
	propertiesTag = "Properties"
	nameProperty  = "Name"
	srcProperty   = "Source"
)

// Encoder renders asset trees as XML documents. The zero value is usable.
type Encoder struct {
	indent    string
	referents func() *ReferentGenerator
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithIndent sets the per-depth indentation (default one tab).
func WithIndent(indent string) Option {
	return func(e *Encoder) {
		e.indent = indent
	}
}

// WithReferents overrides how each document gets its referent generator.
func WithReferents(fn func() *ReferentGenerator) Option {
	return func(e *Encoder) {
		if fn != nil {
			e.referents = fn
		}
	}
}

// NewEncoder constructs an Encoder.
func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{indent: "\t", referents: NewReferentGenerator}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode renders root with the default encoder.
func Encode(root api.Node) string {
	return NewEncoder().Encode(root)
}

// Encode renders root as a complete document. It never fails.
func (e *Encoder) Encode(root api.Node) string {
	newRefs := e.referents
	if newRefs == nil {
		newRefs = NewReferentGenerator
	}
	w := &docWriter{indent: e.indent, refs: newRefs()}
	w.b.WriteString(xmlHeader)
	w.b.WriteByte('\n')
	w.b.WriteString(rootOpen)
	w.b.WriteByte('\n')
	w.line(1, "<External>null</External>")
	w.line(1, "<External>nil</External>")
	w.item(&root, 1)
	w.b.WriteString(rootClose)
	w.b.WriteByte('\n')
	return w.b.String()
}

// EncodeTo writes the document for root to dst.
func (e *Encoder) EncodeTo(dst io.Writer, root api.Node) error {
	_, err := io.WriteString(dst, e.Encode(root))
	return err
}

type docWriter struct {
	b      strings.Builder
	indent string
	refs   *ReferentGenerator
}

func (w *docWriter) pad(depth int) {
	for i := 0; i < depth; i++ {
		w.b.WriteString(w.indent)
	}
}

func (w *docWriter) line(depth int, s string) {
	w.pad(depth)
	w.b.WriteString(s)
	w.b.WriteByte('\n')
}

func (w *docWriter) item(n *api.Node, depth int) {
	w.pad(depth)
	w.b.WriteString(`<` + itemTag + ` class="`)
	w.b.WriteString(Escape(n.ClassName))
	w.b.WriteString(`" referent="`)
	w.b.WriteString(w.refs.Next())
	w.b.WriteString("\">\n")

	w.line(depth+1, "<"+propertiesTag+">")
	w.property(depth+2, "string", nameProperty, Escape(n.Name))
	if n.HasSource() {
		w.pad(depth + 2)
		w.b.WriteString(`<ProtectedString name="` + srcProperty + `">`)
		writeCDATA(&w.b, *n.Source)
		w.b.WriteString("</ProtectedString>\n")
	}
	for _, key := range n.Properties.Keys() {
		// Name and Source are written above; a second element would be
		// ambiguous to loaders.
		if key == nameProperty || key == srcProperty {
			continue
		}
		tag, text, ok := typedProperty(n.Properties[key])
		if !ok {
			continue
		}
		w.property(depth+2, tag, Escape(key), text)
	}
	w.line(depth+1, "</"+propertiesTag+">")

	for i := range n.Children {
		w.item(&n.Children[i], depth+1)
	}
	w.line(depth, "</"+itemTag+">")
}

func (w *docWriter) property(depth int, tag, name, text string) {
	w.pad(depth)
	w.b.WriteString("<" + tag + ` name="` + name + `">`)
	w.b.WriteString(text)
	w.b.WriteString("</" + tag + ">\n")
}

// typedProperty picks the element tag and text for v. Values without a kind
// are dropped.
func typedProperty(v api.Value) (tag, text string, ok bool) {
	switch v.Kind() {
	case api.KindText:
		s, _ := v.AsText()
		return "string", Escape(s), true
	case api.KindNumber:
		f, _ := v.AsNumber()
		return "float", formatFloat(f), true
	case api.KindBool:
		b, _ := v.AsBool()
		return "bool", strconv.FormatBool(b), true
	default:
		return "", "", false
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NAN"
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}
