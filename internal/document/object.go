package document

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/goccy/go-yaml"
)

// Object is a JSON object that remembers member insertion order. It
// implements jsonpath.Mapping so queries visit members in source order.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty object with room for capacity members.
func NewObject(capacity int) *Object {
	return &Object{
		keys:   make([]string, 0, capacity),
		values: make(map[string]any, capacity),
	}
}

// Set adds or replaces a member. A replaced member keeps its position.
func (o *Object) Set(key string, value any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Keys returns the member names in insertion order.
func (o *Object) Keys() []string {
	return o.keys
}

// Lookup returns the value of the member named key.
func (o *Object) Lookup(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// MarshalJSON encodes members in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		value, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, fmt.Errorf("encode member %q: %w", k, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes members in insertion order.
func (o *Object) MarshalYAML() (any, error) {
	return ToYAML(o), nil
}

// ToYAML converts a decoded value into a form the YAML encoder renders
// faithfully: objects become ordered map slices and json.Number values
// become native numbers.
func ToYAML(value any) any {
	switch v := value.(type) {
	case *Object:
		items := make(yaml.MapSlice, 0, len(v.keys))
		for _, k := range v.keys {
			items = append(items, yaml.MapItem{Key: k, Value: ToYAML(v.values[k])})
		}
		return items
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = ToYAML(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, elem := range v {
			out[k] = ToYAML(elem)
		}
		return out
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	}
	return value
}
