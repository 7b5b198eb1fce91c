package operation

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/smartcontractkit/domain-coordinator/value"
)

var (
	ErrMissingAddress       = errors.New("operation is missing its address (" + OpAddr + ")")
	ErrMissingOperationName = errors.New("operation is missing its name (" + Op + ")")
	ErrInvalidDescriptor    = errors.New("invalid operation descriptor")
)

// Shape tells whether a descriptor is a single operation or a composite of steps.
type Shape int

const (
	ShapeLeaf Shape = iota
	ShapeComposite
)

// String returns the shape name.
func (s Shape) String() string {
	if s == ShapeComposite {
		return "composite"
	}

	return "leaf"
}

// Descriptor is an operation request: an address, an operation name and, for composite
// operations, the ordered child steps. Params holds any other request attributes untouched.
type Descriptor struct {
	Address Address
	Name    string
	Steps   []Descriptor
	Params  value.Node
}

// New returns a leaf descriptor.
func New(addr Address, name string) Descriptor {
	return Descriptor{Address: addr, Name: name}
}

// NewComposite returns a composite descriptor executing steps in order.
func NewComposite(addr Address, steps ...Descriptor) Descriptor {
	return Descriptor{Address: addr, Name: Composite, Steps: steps}
}

// IsComposite reports whether the operation name denotes a composite operation.
func (d Descriptor) IsComposite() bool {
	return d.Name == Composite
}

// Shape returns ShapeComposite for composite operations and ShapeLeaf otherwise.
func (d Descriptor) Shape() Shape {
	if d.IsComposite() {
		return ShapeComposite
	}

	return ShapeLeaf
}

// StepLabel returns the response label of the step at zero-based index i.
func StepLabel(i int) string {
	return "step-" + strconv.Itoa(i+1)
}

// ToNode returns the wire form of the descriptor.
func (d Descriptor) ToNode() value.Node {
	n := value.Object(
		value.Prop(Op, value.String(d.Name)),
		value.Prop(OpAddr, d.Address.ToNode()),
	)
	for _, p := range d.Params.Properties() {
		n = n.With(p.Key, p.Value)
	}
	if d.IsComposite() {
		steps := make([]value.Node, 0, len(d.Steps))
		for _, s := range d.Steps {
			steps = append(steps, s.ToNode())
		}
		n = n.With(Steps, value.List(steps...))
	}

	return n
}

// FromNode decodes a descriptor from its wire form. A missing op-addr is a precondition
// violation and is reported as ErrMissingAddress; an op-addr that is present but undefined is
// the domain root. Steps are only read for composite operations.
func FromNode(n value.Node) (Descriptor, error) {
	if !n.IsObject() {
		return Descriptor{}, fmt.Errorf("%w: expected an object, got %s", ErrInvalidDescriptor, n.Kind())
	}
	if !n.HasDefined(Op) {
		return Descriptor{}, ErrMissingOperationName
	}
	if !n.Has(OpAddr) {
		return Descriptor{}, ErrMissingAddress
	}

	name, _ := n.Get(Op)
	rawAddr, _ := n.Get(OpAddr)
	addr, err := AddressFromNode(rawAddr)
	if err != nil {
		return Descriptor{}, err
	}

	d := Descriptor{Address: addr, Name: name.AsString()}
	for _, p := range n.Properties() {
		switch p.Key {
		case Op, OpAddr:
			continue
		case Steps:
			if d.IsComposite() {
				continue
			}
		}
		d.Params = d.Params.With(p.Key, p.Value)
	}

	if d.IsComposite() && n.HasDefined(Steps) {
		rawSteps, _ := n.Get(Steps)
		if rawSteps.Kind() != value.KindList {
			return Descriptor{}, fmt.Errorf("%w: %s must be a list", ErrInvalidDescriptor, Steps)
		}
		for i, raw := range rawSteps.Items() {
			step, err := FromNode(raw)
			if err != nil {
				return Descriptor{}, fmt.Errorf("%s: %w", StepLabel(i), err)
			}
			d.Steps = append(d.Steps, step)
		}
	}

	return d, nil
}
