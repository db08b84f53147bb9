package scene

import "sync"

// Scene shares a root node between goroutines. The tree itself has no
// locking; every access must go through View or Update, which hold the lock
// for the whole call so a traversal never observes a half-applied edit.
type Scene struct {
	mu   sync.RWMutex
	root Node
}

// NewScene returns a Scene holding root, which may be nil.
func NewScene(root Node) *Scene {
	return &Scene{root: root}
}

// View runs fn with the read lock held. fn must not mutate the tree.
func (s *Scene) View(fn func(root Node) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.root)
}

// Update runs fn with the write lock held.
func (s *Scene) Update(fn func(root Node) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.root)
}

// SetRoot replaces the root.
func (s *Scene) SetRoot(root Node) {
	s.mu.Lock()
	s.root = root
	s.mu.Unlock()
}

// Accept runs v over the root with the read lock held. It is a no-op for an
// empty scene.
func (s *Scene) Accept(v Visitor) error {
	return s.View(func(root Node) error {
		if root == nil {
			return nil
		}
		return root.Accept(v)
	})
}
