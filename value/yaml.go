package value

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MarshalYAML encodes the node as a yaml.Node so that object key order survives encoding.
func (n Node) MarshalYAML() (any, error) {
	return n.yamlNode(), nil
}

func (n Node) yamlNode() *yaml.Node {
	switch n.kind {
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(n.b)}
	case KindInt:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(n.i, 10)}
	case KindFloat:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(n.f, 'g', -1, 64)}
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: n.s}
	case KindList:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range n.items {
			seq.Content = append(seq.Content, item.yamlNode())
		}

		return seq
	case KindObject:
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, p := range n.props {
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.Key},
				p.Value.yamlNode(),
			)
		}

		return m
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

// UnmarshalYAML decodes a YAML node keeping mapping key order.
func (n *Node) UnmarshalYAML(y *yaml.Node) error {
	v, err := fromYAML(y)
	if err != nil {
		return err
	}
	*n = v

	return nil
}

// ParseYAML decodes a YAML document into a Node.
func ParseYAML(data []byte) (Node, error) {
	var n Node
	if err := yaml.Unmarshal(data, &n); err != nil {
		return Node{}, err
	}

	return n, nil
}

func fromYAML(y *yaml.Node) (Node, error) {
	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return Node{}, nil
		}

		return fromYAML(y.Content[0])
	case yaml.AliasNode:
		return fromYAML(y.Alias)
	case yaml.SequenceNode:
		items := make([]Node, 0, len(y.Content))
		for _, c := range y.Content {
			item, err := fromYAML(c)
			if err != nil {
				return Node{}, err
			}
			items = append(items, item)
		}

		return Node{kind: KindList, items: items}, nil
	case yaml.MappingNode:
		obj := Object()
		for i := 0; i+1 < len(y.Content); i += 2 {
			key, val := y.Content[i], y.Content[i+1]
			if key.Kind != yaml.ScalarNode {
				return Node{}, fmt.Errorf("line %d: mapping keys must be scalars", key.Line)
			}
			v, err := fromYAML(val)
			if err != nil {
				return Node{}, err
			}
			obj = obj.With(key.Value, v)
		}

		return obj, nil
	case yaml.ScalarNode:
		switch y.ShortTag() {
		case "!!null":
			return Node{}, nil
		case "!!bool":
			var b bool
			if err := y.Decode(&b); err != nil {
				return Node{}, err
			}

			return Bool(b), nil
		case "!!int":
			var i int64
			if err := y.Decode(&i); err != nil {
				return Node{}, err
			}

			return Int(i), nil
		case "!!float":
			var f float64
			if err := y.Decode(&f); err != nil {
				return Node{}, err
			}

			return Float(f), nil
		default:
			return String(y.Value), nil
		}
	}

	return Node{}, fmt.Errorf("line %d: unsupported YAML node kind %d", y.Line, y.Kind)
}
