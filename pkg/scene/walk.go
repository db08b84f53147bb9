package scene

import (
	"strings"

	"github.com/samber/lo"
)

// WalkFunc is called for each node in pre-order with its depth below the
// walk root. Returning descend=false skips the node's children; returning
// an error stops the walk.
type WalkFunc func(n Node, depth int) (descend bool, err error)

// Walk visits root and its descendants depth-first, pre-order. An error
// from fn is returned wrapped in a *VisitError naming the node's path.
func Walk(root Node, fn WalkFunc) error {
	if root == nil {
		return ErrNilNode
	}
	return walk(root, 0, fn)
}

func walk(n Node, depth int, fn WalkFunc) error {
	descend, err := fn(n, depth)
	if err != nil {
		return &VisitError{Path: Path(n), Err: err}
	}
	c, ok := n.(Composite)
	if !descend || !ok {
		return nil
	}
	for _, child := range c.group().children {
		if err := walk(child, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// Find returns the first node in pre-order whose name is name, or nil.
func Find(root Node, name string) Node {
	var found Node
	_ = Walk(root, func(n Node, _ int) (bool, error) {
		if found != nil {
			return false, nil
		}
		if n.Name() == name {
			found = n
			return false, nil
		}
		return true, nil
	})
	return found
}

// Count returns the number of nodes in the subtree rooted at root.
func Count(root Node) int {
	count := 0
	_ = Walk(root, func(Node, int) (bool, error) {
		count++
		return true, nil
	})
	return count
}

// Ancestors returns the chain of parents from n's parent up to the root.
func Ancestors(n Node) []Node {
	var chain []Node
	for p := n.Parent(); p != nil; p = p.Parent() {
		chain = append(chain, p)
	}
	return chain
}

// Root returns the topmost ancestor of n, or n itself.
func Root(n Node) Node {
	for n.Parent() != nil {
		n = n.Parent()
	}
	return n
}

// Path returns a slash-separated path of labels from the root to n,
// e.g. "/table/leg-1/shape:1a2b3c4d".
func Path(n Node) string {
	chain := append([]Node{n}, Ancestors(n)...)
	labels := lo.Map(lo.Reverse(chain), func(n Node, _ int) string { return Label(n) })
	return "/" + strings.Join(labels, "/")
}
