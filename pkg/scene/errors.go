package scene

import (
	"errors"
	"fmt"
)

// Structural errors returned by Group mutation and access.
var (
	ErrNilNode         = errors.New("scene: nil node")
	ErrDuplicateChild  = errors.New("scene: node is already a child of this group")
	ErrHasParent       = errors.New("scene: node already has a parent")
	ErrCycle           = errors.New("scene: node is an ancestor of the group")
	ErrIndexOutOfRange = errors.New("scene: child index out of range")
	ErrNotChild        = errors.New("scene: node is not a child of this group")
	ErrUnknownKind     = errors.New("scene: unknown node kind")
	ErrUnbuilt         = errors.New("scene: node was not made by its constructor")
)

// VisitError records where in the tree a walk function failed.
type VisitError struct {
	Path string
	Err  error
}

func (e *VisitError) Error() string {
	return fmt.Sprintf("visit %s: %v", e.Path, e.Err)
}

func (e *VisitError) Unwrap() error {
	return e.Err
}
