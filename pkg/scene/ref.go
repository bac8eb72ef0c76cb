package scene

import (
	"encoding/base64"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Ref is a by-name reference to another block. Name and Library come from
// the scene file; ID is filled in by [Graph.Resolve].
//
// In YAML a reference is either a bare name or a mapping with name and
// library keys.
type Ref struct {
	Name    string
	Library string
	ID      ID
}

// RefTo returns an unresolved reference to a local block.
func RefTo(name string) Ref { return Ref{Name: name} }

// IsSet reports whether the reference names a block at all.
func (r Ref) IsSet() bool { return r.Name != "" }

// Valid reports whether the reference has been resolved to a block.
func (r Ref) Valid() bool { return r.ID != None }

// UnmarshalYAML decodes a bare name or a {name, library} mapping.
func (r *Ref) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			*r = Ref{}
			return nil
		}
		*r = Ref{Name: n.Value}
		return nil
	case yaml.MappingNode:
		var aux struct {
			Name    string `yaml:"name"`
			Library string `yaml:"library"`
		}
		if err := n.Decode(&aux); err != nil {
			return err
		}
		*r = Ref{Name: aux.Name, Library: aux.Library}
		return nil
	}
	return fmt.Errorf("line %d: reference must be a name or a {name, library} mapping", n.Line)
}

// Prop is one opaque key/value pair.
type Prop struct {
	Key   string
	Value any
}

// Props is an ordered list of opaque properties. Order is preserved from the
// scene file to the exported record.
type Props []Prop

// Get returns the value stored under key.
func (p Props) Get(key string) (any, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return nil, false
}

// UnmarshalYAML decodes a mapping while keeping key order.
func (p *Props) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: props must be a mapping", n.Line)
	}
	out := make(Props, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		var v any
		if err := n.Content[i+1].Decode(&v); err != nil {
			return err
		}
		out = append(out, Prop{Key: n.Content[i].Value, Value: v})
	}
	*p = out
	return nil
}

// Packed holds raw bytes embedded in the scene file as base64 text.
type Packed []byte

// UnmarshalYAML decodes base64 text.
func (p *Packed) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("line %d: packed data: %w", n.Line, err)
	}
	*p = data
	return nil
}
