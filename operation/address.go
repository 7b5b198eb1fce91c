package operation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/smartcontractkit/domain-coordinator/value"
)

var (
	ErrInvalidAddress = errors.New("invalid address")
)

// Segment is one key=value element of an Address.
type Segment struct {
	Key   string
	Value string
}

// NewSegment returns a Segment for key and value.
func NewSegment(key, value string) Segment {
	return Segment{Key: key, Value: value}
}

// IsWildcard reports whether the segment addresses every current target at its position.
func (s Segment) IsWildcard() bool {
	return s.Value == Wildcard
}

// String returns the key=value form of the segment.
func (s Segment) String() string {
	return s.Key + "=" + s.Value
}

// Address is an ordered list of segments identifying the resource an operation targets. The
// empty address is the domain root.
type Address []Segment

// NewAddress builds an address from alternating keys and values. It panics on an odd number of
// arguments, so it is only meant for literals.
func NewAddress(keyValues ...string) Address {
	if len(keyValues)%2 != 0 {
		panic("operation: NewAddress requires key/value pairs")
	}
	addr := make(Address, 0, len(keyValues)/2)
	for i := 0; i < len(keyValues); i += 2 {
		addr = append(addr, NewSegment(keyValues[i], keyValues[i+1]))
	}

	return addr
}

// ParseAddress parses the CLI form of an address, e.g. "/host=master/server=server-one".
// "" and "/" are the domain root.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	addr := Address{}
	for _, part := range strings.Split(s, "/") {
		if part == "" {
			continue
		}
		key, val, ok := strings.Cut(part, "=")
		if !ok || key == "" || val == "" {
			return nil, fmt.Errorf("%w: segment %q is not key=value", ErrInvalidAddress, part)
		}
		addr = append(addr, NewSegment(key, val))
	}

	return addr, nil
}

// String returns the CLI form of the address.
func (a Address) String() string {
	if len(a) == 0 {
		return "/"
	}
	var sb strings.Builder
	for _, s := range a {
		sb.WriteByte('/')
		sb.WriteString(s.String())
	}

	return sb.String()
}

// Validate checks the placement rules for host and server segments: a host segment may only
// appear first, and a server segment may only appear directly after a non-wildcard host.
func (a Address) Validate() error {
	for i, s := range a {
		switch s.Key {
		case Host:
			if i != 0 {
				return fmt.Errorf("%w: %s: host must be the first segment", ErrInvalidAddress, a)
			}
		case Server:
			if i != 1 || a[0].Key != Host {
				return fmt.Errorf("%w: %s: server must follow a host segment", ErrInvalidAddress, a)
			}
			if a[0].IsWildcard() {
				return fmt.Errorf("%w: %s: server cannot follow a wildcard host", ErrInvalidAddress, a)
			}
		}
	}

	return nil
}

// ToNode returns the wire form of the address: a list of single-entry objects.
func (a Address) ToNode() value.Node {
	items := make([]value.Node, 0, len(a))
	for _, s := range a {
		items = append(items, value.Object(value.Prop(s.Key, value.String(s.Value))))
	}

	return value.List(items...)
}

// AddressFromNode decodes the wire form of an address. Besides a list of single-entry objects
// it accepts an object whose properties are the segments in order, and the CLI string form.
// Undefined is the domain root.
func AddressFromNode(n value.Node) (Address, error) {
	switch n.Kind() {
	case value.KindUndefined:
		return Address{}, nil
	case value.KindString:
		return ParseAddress(n.AsString())
	case value.KindObject:
		addr := make(Address, 0, n.Len())
		for _, p := range n.Properties() {
			addr = append(addr, NewSegment(p.Key, p.Value.AsString()))
		}

		return addr, nil
	case value.KindList:
		addr := make(Address, 0, n.Len())
		for i, item := range n.Items() {
			props := item.Properties()
			if len(props) != 1 {
				return nil, fmt.Errorf("%w: element %d must hold exactly one key", ErrInvalidAddress, i)
			}
			addr = append(addr, NewSegment(props[0].Key, props[0].Value.AsString()))
		}

		return addr, nil
	default:
		return nil, fmt.Errorf("%w: unexpected %s", ErrInvalidAddress, n.Kind())
	}
}
