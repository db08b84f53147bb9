package scene

import (
	"fmt"
	"slices"
)

// Group is a composite node holding an ordered sequence of children.
// Insertion order is traversal order.
//
// Groups must be made with NewGroup; a zero Group rejects children.
type Group struct {
	nodeBase
	children []Node
}

// NewGroup returns an empty group with the given name.
func NewGroup(name string) *Group {
	g := &Group{nodeBase: newNodeBase(name)}
	g.self = g
	return g
}

// Kind returns KindGroup.
func (g *Group) Kind() NodeKind { return KindGroup }

// Accept calls v.ApplyGroup.
func (g *Group) Accept(v Visitor) error { return v.ApplyGroup(g) }

func (g *Group) group() *Group { return g }

// owner is the node children record as their parent: the group itself or
// the Transform embedding it. It is nil for a zero Group.
func (g *Group) owner() Node { return g.self }

// NumChildren returns the number of children.
func (g *Group) NumChildren() int { return len(g.children) }

// HasChildren reports whether the group has at least one child.
func (g *Group) HasChildren() bool { return len(g.children) > 0 }

// Child returns the child at index i. An index outside [0, NumChildren)
// returns an error wrapping ErrIndexOutOfRange.
func (g *Group) Child(i int) (Node, error) {
	if i < 0 || i >= len(g.children) {
		return nil, fmt.Errorf("%w: index %d, group %s has %d children",
			ErrIndexOutOfRange, i, g.label(), len(g.children))
	}
	return g.children[i], nil
}

// Children returns a copy of the ordered child list.
func (g *Group) Children() []Node {
	return slices.Clone(g.children)
}

// IndexOf returns the position of n among the children, or -1.
func (g *Group) IndexOf(n Node) int {
	if n == nil {
		return -1
	}
	nb := n.base()
	return slices.IndexFunc(g.children, func(c Node) bool { return c.base() == nb })
}

func (g *Group) label() string {
	if g.self == nil {
		return "group:unbuilt"
	}
	return Label(g.self)
}

// Append adds n after the last child. A Transform's embedded Group is
// inserted as the Transform itself.
func (g *Group) Append(n Node) error {
	n, err := g.checkInsert(n)
	if err != nil {
		return err
	}
	g.children = append(g.children, n)
	n.base().parent = g.owner()
	return nil
}

// Prepend adds n before the first child.
func (g *Group) Prepend(n Node) error {
	n, err := g.checkInsert(n)
	if err != nil {
		return err
	}
	g.children = slices.Insert(g.children, 0, n)
	n.base().parent = g.owner()
	return nil
}

// Remove detaches n from the group. The node keeps its own subtree and may
// be inserted elsewhere afterwards.
func (g *Group) Remove(n Node) error {
	i := g.IndexOf(n)
	if i < 0 {
		if n == nil {
			return ErrNilNode
		}
		return fmt.Errorf("%w: %s", ErrNotChild, Label(n))
	}
	_, err := g.RemoveAt(i)
	return err
}

// RemoveAt detaches and returns the child at index i.
func (g *Group) RemoveAt(i int) (Node, error) {
	n, err := g.Child(i)
	if err != nil {
		return nil, err
	}
	g.children = slices.Delete(g.children, i, i+1)
	n.base().parent = nil
	return n, nil
}

// Clear detaches every child.
func (g *Group) Clear() {
	for _, c := range g.children {
		c.base().parent = nil
	}
	g.children = nil
}

// checkInsert enforces tree-only topology: no duplicates, no second parent,
// no ancestor as a child. It returns the node to store.
func (g *Group) checkInsert(n Node) (Node, error) {
	if g.self == nil {
		return nil, fmt.Errorf("%w: group", ErrUnbuilt)
	}
	n, err := outer(n)
	if err != nil {
		return nil, err
	}
	if g.IndexOf(n) >= 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateChild, Label(n))
	}
	if p := n.Parent(); p != nil {
		return nil, fmt.Errorf("%w: %s is held by %s", ErrHasParent, Label(n), Label(p))
	}
	nb := n.base()
	for a := g.owner(); a != nil; a = a.Parent() {
		if a.base() == nb {
			return nil, fmt.Errorf("%w: %s", ErrCycle, Label(n))
		}
	}
	return n, nil
}
