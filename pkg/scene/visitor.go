package scene

import "fmt"

// Visitor is an operation over the closed set of node kinds. Accept on a
// node calls exactly one method, the one for the node's own kind.
//
// Composite methods are responsible for their children: call Traverse to
// continue pre-order, or return without it to prune the subtree. Returning
// an error aborts the traversal; changes already made to earlier nodes are
// not rolled back.
type Visitor interface {
	ApplyShape(s *Shape) error
	ApplyGroup(g *Group) error
	ApplyTransform(t *Transform) error
}

// Traverse calls Accept on each child of c in insertion order and stops at
// the first error, which is returned unchanged.
func Traverse(v Visitor, c Composite) error {
	for _, child := range c.group().children {
		if err := child.Accept(v); err != nil {
			return err
		}
	}
	return nil
}

// Dispatch is the type-switch form of Accept: it selects the Visitor method
// by matching on the concrete kind of n.
func Dispatch(n Node, v Visitor) error {
	switch n := n.(type) {
	case nil:
		return ErrNilNode
	case *Shape:
		return v.ApplyShape(n)
	case *Transform:
		return v.ApplyTransform(n)
	case *Group:
		return v.ApplyGroup(n)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownKind, n)
	}
}

// Funcs adapts plain functions into a Visitor. A nil Shape func does
// nothing; a nil Group or Transform func recurses into the children.
type Funcs struct {
	Shape     func(s *Shape) error
	Group     func(g *Group) error
	Transform func(t *Transform) error
}

var _ Visitor = Funcs{}

func (f Funcs) ApplyShape(s *Shape) error {
	if f.Shape == nil {
		return nil
	}
	return f.Shape(s)
}

func (f Funcs) ApplyGroup(g *Group) error {
	if f.Group == nil {
		return Traverse(f, g)
	}
	return f.Group(g)
}

func (f Funcs) ApplyTransform(t *Transform) error {
	if f.Transform == nil {
		return Traverse(f, t)
	}
	return f.Transform(t)
}
