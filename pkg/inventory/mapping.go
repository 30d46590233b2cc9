package inventory

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

// Reserved keys inside a group body.
const (
	KeyChildren = "children"
	KeyHosts    = "hosts"
	KeyVars     = "vars"
)

// ErrNotMapping is returned when a document's top level is not a mapping.
var ErrNotMapping = errors.New("inventory root is not a mapping")

// Entry is a single key/value pair of a [Mapping].
type Entry struct {
	Key   string
	Value any
}

// Mapping is an insertion-ordered mapping. Nested mappings decode as Mapping,
// sequences as []any and scalars as their natural Go type. A YAML null (a bare
// key such as "spine1:") decodes as a nil Value.
type Mapping []Entry

// Len returns the number of entries.
func (m Mapping) Len() int { return len(m) }

// Get returns the value stored under key.
func (m Mapping) Get(key string) (any, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present, even with a nil value.
func (m Mapping) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Keys returns the keys in insertion order.
func (m Mapping) Keys() []string {
	keys := make([]string, len(m))
	for i, e := range m {
		keys[i] = e.Key
	}
	return keys
}

// Set stores value under key. An existing key keeps its position.
func (m *Mapping) Set(key string, value any) {
	for i := range *m {
		if (*m)[i].Key == key {
			(*m)[i].Value = value
			return
		}
	}
	*m = append(*m, Entry{Key: key, Value: value})
}

// UnmarshalYAML decodes a YAML mapping node while preserving key order.
func (m *Mapping) UnmarshalYAML(node *yaml.Node) error {
	v, err := decodeNode(node)
	if err != nil {
		return err
	}
	switch v := v.(type) {
	case nil:
		*m = Mapping{}
	case Mapping:
		*m = v
	default:
		return fmt.Errorf("%w: line %d: got %s", ErrNotMapping, node.Line, kindName(node))
	}
	return nil
}

// FromMap converts a plain Go map into a Mapping with keys sorted, recursing
// into nested maps and slices. It is meant for programmatic inventories where
// no source order exists.
func FromMap(src map[string]any) Mapping {
	m := make(Mapping, 0, len(src))
	for _, k := range slices.Sorted(maps.Keys(src)) {
		m = append(m, Entry{Key: k, Value: fromValue(src[k])})
	}
	return m
}

func fromValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return FromMap(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = fromValue(item)
		}
		return out
	default:
		return v
	}
}

func decodeNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return decodeNode(n.Content[0])
	case yaml.AliasNode:
		return decodeNode(n.Alias)
	case yaml.MappingNode:
		return decodeMapping(n)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := decodeNode(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			return nil, nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("line %d: unsupported node kind %d", n.Line, n.Kind)
}

func decodeMapping(n *yaml.Node) (Mapping, error) {
	m := make(Mapping, 0, len(n.Content)/2)
	var merges []Mapping
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		val, err := decodeNode(v)
		if err != nil {
			return nil, err
		}
		if k.ShortTag() == "!!merge" {
			if mm, ok := val.(Mapping); ok {
				merges = append(merges, mm)
			}
			continue
		}
		m.Set(k.Value, val)
	}
	for _, mm := range merges {
		for _, e := range mm {
			if !m.Has(e.Key) {
				m = append(m, e)
			}
		}
	}
	return m, nil
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar " + n.ShortTag()
	default:
		return "node"
	}
}
