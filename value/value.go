// Package value implements the structured value used for every operation request, response
// and failure description exchanged between the domain coordinator and the hosts it manages.
//
// A Node is a recursive, JSON-like tree: undefined, boolean, integer, float, string, ordered
// list or ordered object. Object keys keep their insertion order, which is what makes response
// trees byte-for-byte reproducible.
//
// Nodes are immutable. Methods such as With, WithPath and Append return a modified copy and
// never change the receiver, so a Node can be shared between goroutines without locking.
package value

import (
	"strconv"
)

// Kind is the type of value held by a Node.
type Kind int

const (
	KindUndefined Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindObject
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Property is a single key/value entry of an object Node.
type Property struct {
	Key   string
	Value Node
}

// Prop is shorthand for building a Property.
func Prop(key string, v Node) Property {
	return Property{Key: key, Value: v}
}

// Node is an immutable structured value. The zero value is undefined.
type Node struct {
	kind  Kind
	b     bool
	i     int64
	f     float64
	s     string
	items []Node
	props []Property
}

// Undefined returns an undefined Node.
func Undefined() Node { return Node{} }

// Bool returns a boolean Node.
func Bool(b bool) Node { return Node{kind: KindBool, b: b} }

// Int returns an integer Node.
func Int(i int64) Node { return Node{kind: KindInt, i: i} }

// Float returns a floating point Node.
func Float(f float64) Node { return Node{kind: KindFloat, f: f} }

// String returns a string Node.
func String(s string) Node { return Node{kind: KindString, s: s} }

// List returns a list Node holding items in order. List() is an empty, defined list.
func List(items ...Node) Node {
	return Node{kind: KindList, items: append([]Node{}, items...)}
}

// Object returns an object Node. A repeated key keeps its first position and its last value.
// Object() is an empty, defined object.
func Object(props ...Property) Node {
	n := Node{kind: KindObject, props: []Property{}}
	for _, p := range props {
		n = n.With(p.Key, p.Value)
	}

	return n
}

// Kind returns the kind of the node.
func (n Node) Kind() Kind { return n.kind }

// IsDefined reports whether the node holds a value.
func (n Node) IsDefined() bool { return n.kind != KindUndefined }

// IsObject reports whether the node is an object.
func (n Node) IsObject() bool { return n.kind == KindObject }

// AsString returns the textual form of the node. Strings are returned as-is, other scalars are
// formatted, lists and objects are rendered as compact JSON.
func (n Node) AsString() string {
	switch n.kind {
	case KindUndefined:
		return "undefined"
	case KindBool:
		return strconv.FormatBool(n.b)
	case KindInt:
		return strconv.FormatInt(n.i, 10)
	case KindFloat:
		return strconv.FormatFloat(n.f, 'g', -1, 64)
	case KindString:
		return n.s
	default:
		return n.String()
	}
}

// AsBool returns the boolean held by the node.
func (n Node) AsBool() (bool, bool) {
	if n.kind != KindBool {
		return false, false
	}

	return n.b, true
}

// AsInt returns the integer held by the node.
func (n Node) AsInt() (int64, bool) {
	if n.kind != KindInt {
		return 0, false
	}

	return n.i, true
}

// Len returns the number of items of a list or properties of an object, zero otherwise.
func (n Node) Len() int {
	switch n.kind {
	case KindList:
		return len(n.items)
	case KindObject:
		return len(n.props)
	default:
		return 0
	}
}

// Items returns a copy of the list items. It returns nil for non-list nodes.
func (n Node) Items() []Node {
	if n.kind != KindList {
		return nil
	}

	return append([]Node{}, n.items...)
}

// Properties returns a copy of the object properties in order. It returns nil for non-object
// nodes.
func (n Node) Properties() []Property {
	if n.kind != KindObject {
		return nil
	}

	return append([]Property{}, n.props...)
}

// Keys returns the object keys in order.
func (n Node) Keys() []string {
	if n.kind != KindObject {
		return nil
	}
	keys := make([]string, 0, len(n.props))
	for _, p := range n.props {
		keys = append(keys, p.Key)
	}

	return keys
}

// Has reports whether the object contains key, even when the value stored under it is
// undefined.
func (n Node) Has(key string) bool {
	return n.index(key) >= 0
}

// HasDefined reports whether the object contains key with a defined value.
func (n Node) HasDefined(key string) bool {
	i := n.index(key)

	return i >= 0 && n.props[i].Value.IsDefined()
}

// Get descends through objects following keys. The boolean is false if any key along the way
// is missing; an explicitly stored undefined value is reported as found.
func (n Node) Get(keys ...string) (Node, bool) {
	cur := n
	for _, k := range keys {
		i := cur.index(k)
		if i < 0 {
			return Node{}, false
		}
		cur = cur.props[i].Value
	}

	return cur, true
}

// With returns a copy of the node with key set to v. An existing key keeps its position. A
// node that is not an object is replaced by an object holding only key.
func (n Node) With(key string, v Node) Node {
	if n.kind != KindObject {
		return Node{kind: KindObject, props: []Property{{Key: key, Value: v}}}
	}
	props := make([]Property, len(n.props), len(n.props)+1)
	copy(props, n.props)
	if i := n.index(key); i >= 0 {
		props[i].Value = v
	} else {
		props = append(props, Property{Key: key, Value: v})
	}

	return Node{kind: KindObject, props: props}
}

// WithPath returns a copy of the node with v stored under the nested keys, creating
// intermediate objects as needed. With no keys it returns v.
func (n Node) WithPath(v Node, keys ...string) Node {
	if len(keys) == 0 {
		return v
	}
	child, _ := n.Get(keys[0])

	return n.With(keys[0], child.WithPath(v, keys[1:]...))
}

// Without returns a copy of the object without key.
func (n Node) Without(key string) Node {
	i := n.index(key)
	if i < 0 {
		return n
	}
	props := make([]Property, 0, len(n.props)-1)
	props = append(props, n.props[:i]...)
	props = append(props, n.props[i+1:]...)

	return Node{kind: KindObject, props: props}
}

// Append returns a copy of the list with v added at the end. A node that is not a list is
// replaced by a list holding only v.
func (n Node) Append(v Node) Node {
	if n.kind != KindList {
		return Node{kind: KindList, items: []Node{v}}
	}
	items := make([]Node, len(n.items), len(n.items)+1)
	copy(items, n.items)

	return Node{kind: KindList, items: append(items, v)}
}

// Equal reports whether two nodes hold the same value, including object key order.
func (n Node) Equal(o Node) bool {
	if n.kind != o.kind {
		return false
	}
	switch n.kind {
	case KindUndefined:
		return true
	case KindBool:
		return n.b == o.b
	case KindInt:
		return n.i == o.i
	case KindFloat:
		return n.f == o.f
	case KindString:
		return n.s == o.s
	case KindList:
		if len(n.items) != len(o.items) {
			return false
		}
		for i := range n.items {
			if !n.items[i].Equal(o.items[i]) {
				return false
			}
		}

		return true
	case KindObject:
		if len(n.props) != len(o.props) {
			return false
		}
		for i := range n.props {
			if n.props[i].Key != o.props[i].Key || !n.props[i].Value.Equal(o.props[i].Value) {
				return false
			}
		}

		return true
	}

	return false
}

func (n Node) index(key string) int {
	if n.kind != KindObject {
		return -1
	}
	for i, p := range n.props {
		if p.Key == key {
			return i
		}
	}

	return -1
}
