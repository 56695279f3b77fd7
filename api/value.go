package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	// KindInvalid is the zero Value. It is never encoded.
	KindInvalid Kind = iota
	KindText
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "invalid"
	}
}

// Value is a typed property value: exactly one of text, number or boolean.
type Value struct {
	kind Kind
	text string
	num  float64
	b    bool
}

// Text returns a text-kind Value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Number returns a number-kind Value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool returns a boolean-kind Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// AsText returns the text payload and whether v is a text value.
func (v Value) AsText() (string, bool) { return v.text, v.kind == KindText }

// AsNumber returns the numeric payload and whether v is a number value.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsBool returns the boolean payload and whether v is a boolean value.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// String renders the payload for display.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// MarshalJSON writes the payload as a bare JSON string, number or boolean.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindText:
		return json.Marshal(v.text)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a JSON string, number or boolean. Any other JSON kind
// leaves v as the zero Value.
func (v *Value) UnmarshalJSON(data []byte) error {
	*v = Value{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	val, ok := ValueOf(raw)
	if ok {
		*v = val
	}
	return nil
}

// ValueOf converts a generic decoded JSON scalar into a Value. It reports
// false for nil, objects, arrays and any other unsupported kind.
func ValueOf(raw any) (Value, bool) {
	switch x := raw.(type) {
	case string:
		return Text(x), true
	case bool:
		return Bool(x), true
	case float64:
		return Number(x), true
	case float32:
		return Number(float64(x)), true
	case int:
		return Number(float64(x)), true
	case int64:
		return Number(float64(x)), true
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Value{}, false
		}
		return Number(f), true
	default:
		return Value{}, false
	}
}

// Properties maps property names to typed values.
type Properties map[string]Value

// Keys returns the property names in sorted order.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UnmarshalJSON decodes an object of scalars, silently dropping entries whose
// value is null, an object or an array.
func (p *Properties) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("properties: %w", err)
	}
	out := make(Properties, len(raw))
	for name, msg := range raw {
		var v Value
		if err := v.UnmarshalJSON(msg); err != nil {
			return fmt.Errorf("property %q: %w", name, err)
		}
		if v.Kind() == KindInvalid {
			continue
		}
		out[name] = v
	}
	*p = out
	return nil
}
