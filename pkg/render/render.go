// Package render translates a scene into backend draw calls. The backend is
// supplied by the caller; Recorder is an in-memory backend for tools and
// tests.
package render

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/perryiv/cadkit-sub042/pkg/scene"
)

// DrawCall asks the backend to draw one shape under the current matrix.
type DrawCall struct {
	Path     string
	Shape    *scene.Shape
	Geometry *scene.Geometry
	// World is the composed matrix, also available from the matrix stack.
	World mgl64.Mat4
}

// Backend receives matrix and draw commands in traversal order. Every
// PushMatrix is matched by a PopMatrix, even when Draw fails.
type Backend interface {
	PushMatrix(m mgl64.Mat4)
	PopMatrix()
	Draw(DrawCall) error
}

// renderer is the scene.Visitor feeding a Backend.
type renderer struct {
	backend Backend
	world   []mgl64.Mat4
}

func (r *renderer) current() mgl64.Mat4 {
	if len(r.world) == 0 {
		return mgl64.Ident4()
	}
	return r.world[len(r.world)-1]
}

func (r *renderer) ApplyShape(s *scene.Shape) error {
	if s.Geometry == nil || s.Geometry.TriangleCount() == 0 {
		return nil
	}
	path := scene.Path(s)
	err := r.backend.Draw(DrawCall{
		Path:     path,
		Shape:    s,
		Geometry: s.Geometry,
		World:    r.current(),
	})
	if err != nil {
		return fmt.Errorf("draw %s: %w", path, err)
	}
	return nil
}

func (r *renderer) ApplyGroup(g *scene.Group) error {
	return scene.Traverse(r, g)
}

func (r *renderer) ApplyTransform(t *scene.Transform) error {
	m := r.current().Mul4(t.Matrix())
	r.world = append(r.world, m)
	r.backend.PushMatrix(m)
	defer func() {
		r.backend.PopMatrix()
		r.world = r.world[:len(r.world)-1]
	}()
	return scene.Traverse(r, t)
}

// Traverse renders the scene under root into b. Each Transform pushes its
// composed world matrix; each Shape with geometry is drawn. The first draw
// error stops the traversal.
func Traverse(root scene.Node, b Backend) error {
	if root == nil {
		return nil
	}
	return root.Accept(&renderer{backend: b})
}

// Frame renders the root held by s under its read lock.
func Frame(s *scene.Scene, b Backend) error {
	return s.View(func(root scene.Node) error {
		return Traverse(root, b)
	})
}
