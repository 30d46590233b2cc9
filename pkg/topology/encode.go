package topology

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// record is the wire form of a Container, matching the structure expected by
// arista.cvp.cv_container.
type record struct {
	ParentContainer string    `json:"parent_container,omitempty" yaml:"parent_container,omitempty"`
	Devices         *[]string `json:"devices,omitempty" yaml:"devices,omitempty"`
}

func (c Container) record() record {
	r := record{ParentContainer: c.Parent}
	if c.Leaf {
		devices := c.Devices
		if devices == nil {
			devices = []string{}
		}
		r.Devices = &devices
	}
	return r
}

func (r record) container() Container {
	c := Container{Parent: r.ParentContainer}
	if r.Devices != nil {
		c.Leaf = true
		c.Devices = *r.Devices
	}
	return c
}

// MarshalJSON encodes the record as {"parent_container": ..., "devices": [...]}.
func (c Container) MarshalJSON() ([]byte, error) { return json.Marshal(c.record()) }

// UnmarshalJSON decodes a record; the presence of "devices" marks a leaf.
func (c *Container) UnmarshalJSON(data []byte) error {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*c = r.container()
	return nil
}

// MarshalYAML encodes the record with the same keys as MarshalJSON.
func (c Container) MarshalYAML() (any, error) { return c.record(), nil }

// MarshalJSON encodes the topology as a JSON object in traversal order.
func (t *Topology) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range t.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(t.records[name])
		if err != nil {
			return nil, fmt.Errorf("container %s: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object while keeping its key order. The
// reserved root is left at its current value, or the default for a zero
// Topology.
func (t *Topology) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("topology: expected object, got %v", tok)
	}

	out := NewTopology(t.reservedRoot)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("topology: expected container name, got %v", tok)
		}
		var c Container
		if err := dec.Decode(&c); err != nil {
			return fmt.Errorf("container %s: %w", name, err)
		}
		out.Set(name, c)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*t = *out
	return nil
}

// MarshalYAML encodes the topology as a YAML mapping in traversal order.
func (t *Topology) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, name := range t.names {
		var val yaml.Node
		if err := val.Encode(t.records[name].record()); err != nil {
			return nil, fmt.Errorf("container %s: %w", name, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
			&val,
		)
	}
	return node, nil
}

// UnmarshalYAML decodes a YAML mapping while keeping its key order.
func (t *Topology) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.DocumentNode && len(value.Content) == 1 {
		value = value.Content[0]
	}
	out := NewTopology(t.reservedRoot)
	if value.Tag == "!!null" {
		*t = *out
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("topology: line %d: expected mapping", value.Line)
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		name := value.Content[i].Value
		var r record
		if v := value.Content[i+1]; v.Tag != "!!null" {
			if err := v.Decode(&r); err != nil {
				return fmt.Errorf("container %s: %w", name, err)
			}
		}
		out.Set(name, r.container())
	}
	*t = *out
	return nil
}
