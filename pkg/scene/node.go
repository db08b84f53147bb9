package scene

import (
	"fmt"

	"github.com/google/uuid"
)

// NodeKind enumerates the closed set of node kinds.
type NodeKind int

const (
	KindShape     NodeKind = iota // leaf with a primitive
	KindGroup                     // ordered children
	KindTransform                 // group with a spatial transform
)

func (k NodeKind) String() string {
	switch k {
	case KindShape:
		return "shape"
	case KindGroup:
		return "group"
	case KindTransform:
		return "transform"
	default:
		return "unknown"
	}
}

// Node is the unit of the scene tree. The set of implementations is closed:
// *Shape, *Group and *Transform.
type Node interface {
	// ID is assigned at construction and never changes.
	ID() uuid.UUID
	Name() string
	SetName(name string)
	Kind() NodeKind

	// Parent returns the composite node holding this one, or nil for a root.
	Parent() Node

	// Accept calls the Visitor method for the node's own kind.
	Accept(v Visitor) error

	base() *nodeBase // marker method restricting implementations to this package
}

// Composite is a node that owns children. Both *Group and *Transform
// satisfy it.
type Composite interface {
	Node
	NumChildren() int
	Child(i int) (Node, error)
	Children() []Node
	IndexOf(n Node) int
	Append(n Node) error
	Prepend(n Node) error
	Remove(n Node) error
	RemoveAt(i int) (Node, error)
	Clear()

	group() *Group
}

// nodeBase holds the state shared by every node kind.
type nodeBase struct {
	id     uuid.UUID
	name   string
	parent Node

	// self is the outermost node holding this base. For a Transform it is
	// the Transform, never its embedded Group. Constructors set it.
	self Node
}

func newNodeBase(name string) nodeBase {
	return nodeBase{id: uuid.New(), name: name}
}

// outer returns the node n stands for: a Transform's embedded Group
// resolves to the Transform.
func outer(n Node) (Node, error) {
	if n == nil {
		return nil, ErrNilNode
	}
	self := n.base().self
	if self == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnbuilt, n.Kind())
	}
	return self, nil
}

func (b *nodeBase) base() *nodeBase { return b }

// ID returns the node's identity.
func (b *nodeBase) ID() uuid.UUID { return b.id }

// Name returns the user-assigned name, which may be empty.
func (b *nodeBase) Name() string { return b.name }

// SetName sets the user-assigned name. Names are not required to be unique.
func (b *nodeBase) SetName(name string) { b.name = name }

// Parent returns the composite node holding this one, or nil.
func (b *nodeBase) Parent() Node { return b.parent }

// ShortID returns the first 8 hex digits of a node's ID, for messages.
func ShortID(n Node) string {
	return n.ID().String()[:8]
}

// Label returns the node's name, or its kind and short ID when unnamed.
func Label(n Node) string {
	if name := n.Name(); name != "" {
		return name
	}
	return n.Kind().String() + ":" + ShortID(n)
}
