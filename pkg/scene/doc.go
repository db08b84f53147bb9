// Package scene defines a retained-mode scene graph.
//
// A scene is a tree of nodes drawn from a closed set of kinds: Shape (a
// leaf carrying a primitive and optional tessellated geometry), Group (an
// ordered list of children) and Transform (a Group with a position, an
// axis-angle rotation and a pivot). Operations over the tree are written as
// Visitors; each node's Accept calls back into the Visitor method for its
// own kind, and composite methods decide for themselves whether to recurse.
//
// The tree is single-threaded. Use Scene to share a root between
// goroutines under a reader-writer lock.
package scene
