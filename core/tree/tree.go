// Package tree holds the normalized data tree every source produces and
// every dumper consumes: insertion ordered maps (*Map), sequences ([]any)
// and scalars (string, int, float64, bool, nil).
package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Map is a string keyed map that remembers insertion order.
type Map struct {
	keys   []string
	values map[string]any

	// Tag is emitted as a local YAML tag ("!Tag") when the map is marshalled.
	Tag string
}

// NewMap creates an empty map.
func NewMap() *Map {
	return &Map{values: make(map[string]any)}
}

// Set stores v under key. An existing key keeps its position.
func (m *Map) Set(key string, v any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is set.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key.
func (m *Map) Delete(key string) {
	if _, exists := m.values[key]; !exists {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of keys.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Clone returns a deep copy of m.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	out := &Map{
		keys:   make([]string, len(m.keys)),
		values: make(map[string]any, len(m.values)),
		Tag:    m.Tag,
	}
	copy(out.keys, m.keys)
	for k, v := range m.values {
		out.values[k] = DeepCopy(v)
	}
	return out
}

// DeepCopy copies maps and sequences of a tree value. Scalars are shared.
func DeepCopy(v any) any {
	switch t := v.(type) {
	case *Map:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = DeepCopy(item)
		}
		return out
	}
	return v
}

// Merge overlays src onto dst. Maps present on both sides are merged
// recursively, any other src value replaces the dst value.
func Merge(dst, src *Map) {
	for _, k := range src.keys {
		sv := src.values[k]
		if sm, ok := sv.(*Map); ok {
			if dm, ok := dst.values[k].(*Map); ok {
				Merge(dm, sm)
				continue
			}
		}
		dst.Set(k, DeepCopy(sv))
	}
}

// MarshalYAML renders m as an ordered YAML mapping.
func (m *Map) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	if m.Tag != "" {
		node.Tag = "!" + m.Tag
	}
	for _, k := range m.keys {
		value, err := EncodeYAML(m.values[k])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", k, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			value,
		)
	}
	return node, nil
}

// MarshalJSON renders m as a JSON object keeping key order.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := EncodeJSON(m.values[k])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", k, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// EncodeYAML converts a tree value into a YAML node. Whole floats keep a
// decimal point so they decode back as floats.
func EncodeYAML(v any) (*yaml.Node, error) {
	switch t := v.(type) {
	case *Map:
		if t != nil {
			n, err := t.MarshalYAML()
			if err != nil {
				return nil, err
			}
			return n.(*yaml.Node), nil
		}
	case float64:
		if s, ok := formatFloat(t); ok {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: s}, nil
		}
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i, item := range t {
			n, err := EncodeYAML(item)
			if err != nil {
				return nil, fmt.Errorf("encode item %d: %w", i, err)
			}
			node.Content = append(node.Content, n)
		}
		return node, nil
	}
	node := &yaml.Node{}
	if err := node.Encode(v); err != nil {
		return nil, err
	}
	return node, nil
}

// EncodeJSON renders a tree value as JSON with the float rendering of
// EncodeYAML.
func EncodeJSON(v any) ([]byte, error) {
	switch t := v.(type) {
	case float64:
		if s, ok := formatFloat(t); ok {
			return []byte(s), nil
		}
	case []any:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			value, err := EncodeJSON(item)
			if err != nil {
				return nil, fmt.Errorf("encode item %d: %w", i, err)
			}
			buf.Write(value)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	}
	return json.Marshal(v)
}

// formatFloat renders f in its shortest form with a decimal point or an
// exponent. Infinities and NaN are left to the encoders.
func formatFloat(f float64) (string, bool) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "", false
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s, true
}

// FromNative converts decoded Go values (maps, slices, numbers of any
// width) into tree values. Keys of native maps are sorted since their
// order is lost.
func FromNative(v any) any {
	switch t := v.(type) {
	case *Map:
		out := NewMap()
		for _, k := range t.keys {
			out.Set(k, FromNative(t.values[k]))
		}
		out.Tag = t.Tag
		return out
	case map[string]any:
		out := NewMap()
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out.Set(k, FromNative(t[k]))
		}
		return out
	case map[any]any:
		byKey := make(map[string]any, len(t))
		for k, item := range t {
			byKey[fmt.Sprint(k)] = item
		}
		return FromNative(byKey)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = FromNative(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = FromNative(item)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = item
		}
		return out
	case int8:
		return int(t)
	case int16:
		return int(t)
	case int32:
		return int(t)
	case int64:
		return int(t)
	case uint:
		return int(t)
	case uint8:
		return int(t)
	case uint16:
		return int(t)
	case uint32:
		return int(t)
	case uint64:
		return int(t)
	case float32:
		return float64(t)
	}
	return v
}

// ToNative converts tree values into plain Go maps and slices.
func ToNative(v any) any {
	switch t := v.(type) {
	case *Map:
		out := make(map[string]any, len(t.keys))
		for _, k := range t.keys {
			out[k] = ToNative(t.values[k])
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = ToNative(item)
		}
		return out
	}
	return v
}
