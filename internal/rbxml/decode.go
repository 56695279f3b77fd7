package rbxml

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/agentic-research/rbxforge/api"
	"github.com/google/uuid"
)

type xmlItem struct {
	Class      string        `xml:"class,attr"`
	Properties xmlProperties `xml:"Properties"`
	Items      []xmlItem     `xml:"Item"`
}

type xmlProperties struct {
	Entries []xmlProperty `xml:",any"`
}

type xmlProperty struct {
	XMLName xml.Name
	Name    string `xml:"name,attr"`
	Text    string `xml:",chardata"`
}

func (p *xmlProperties) lookup(tag, name string) (string, bool) {
	for _, e := range p.Entries {
		if e.XMLName.Local == tag && e.Name == name {
			return e.Text, true
		}
	}
	return "", false
}

// Decoder rebuilds asset trees from XML documents. The zero value is usable.
type Decoder struct {
	newID func() string
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithIDGenerator overrides how node IDs are assigned (default: random UUIDs).
func WithIDGenerator(fn func() string) DecoderOption {
	return func(d *Decoder) {
		if fn != nil {
			d.newID = fn
		}
	}
}

// NewDecoder constructs a Decoder.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{newID: uuid.NewString}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode parses doc with the default decoder.
func Decode(doc string) (api.Node, error) {
	return NewDecoder().Decode(doc)
}

// Decode parses doc and returns the tree rooted at its first Item.
func (d *Decoder) Decode(doc string) (api.Node, error) {
	return d.DecodeReader(strings.NewReader(doc))
}

// DecodeReader is Decode over a stream. The whole document must be well
// formed; on any failure the returned node is the zero value and the error
// is a *StructuralError.
func (d *Decoder) DecodeReader(r io.Reader) (api.Node, error) {
	dec := xml.NewDecoder(r)
	var root *xmlItem
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return api.Node{}, &StructuralError{Reason: "malformed XML", Err: err}
		}
		start, ok := tok.(xml.StartElement)
		if !ok || root != nil || start.Name.Local != itemTag {
			continue
		}
		var item xmlItem
		if err := dec.DecodeElement(&item, &start); err != nil {
			return api.Node{}, &StructuralError{Reason: "malformed XML", Err: err}
		}
		root = &item
	}
	if root == nil {
		return api.Node{}, &StructuralError{Reason: "no Roblox items found"}
	}
	return d.build(root), nil
}

func (d *Decoder) build(it *xmlItem) api.Node {
	newID := d.newID
	if newID == nil {
		newID = uuid.NewString
	}
	n := api.Node{
		ID:        newID(),
		Name:      api.DefaultName,
		ClassName: it.Class,
		Children:  make([]api.Node, 0, len(it.Items)),
	}
	if n.ClassName == "" {
		n.ClassName = api.DefaultClassName
	}
	if name, ok := it.Properties.lookup("string", nameProperty); ok && name != "" {
		n.Name = name
	}
	if n.IsScript() {
		if src, ok := it.Properties.lookup("ProtectedString", srcProperty); ok {
			n.SetSource(src)
		}
	}
	for i := range it.Items {
		n.Children = append(n.Children, d.build(&it.Items[i]))
	}
	return n
}
