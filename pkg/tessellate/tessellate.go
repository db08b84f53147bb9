// Package tessellate walks a scene and produces triangle meshes using a
// geometry kernel. One mesh is produced per shape.
package tessellate

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/perryiv/cadkit-sub042/pkg/kernel"
	"github.com/perryiv/cadkit-sub042/pkg/scene"
)

// Source selects where a shape's triangles come from.
type Source int

const (
	// SourceKernel meshes the analytic primitive through the kernel.
	SourceKernel Source = iota
	// SourceGeometry uses the shape's own Geometry when it has one and
	// falls back to the kernel otherwise.
	SourceGeometry
)

// Options tune a tessellation run.
type Options struct {
	Source Source
	// Skip prunes the subtree under any node for which it returns true.
	Skip func(scene.Node) bool
}

// transformStack holds the Transforms between the traversal root and the
// current node, outermost first.
type transformStack struct {
	items []*scene.Transform
}

func (ts *transformStack) push(t *scene.Transform) {
	ts.items = append(ts.items, t)
}

func (ts *transformStack) pop() {
	if len(ts.items) > 0 {
		ts.items = ts.items[:len(ts.items)-1]
	}
}

// matrix composes the stack into one world matrix.
func (ts *transformStack) matrix() mgl64.Mat4 {
	m := mgl64.Ident4()
	for _, t := range ts.items {
		m = m.Mul4(t.Matrix())
	}
	return m
}

// place applies the stacked transforms to a kernel solid, innermost first,
// using the same composition as scene.Transform.Matrix.
func (ts *transformStack) place(k kernel.Kernel, s kernel.Solid) kernel.Solid {
	for i := len(ts.items) - 1; i >= 0; i-- {
		t := ts.items[i]
		r := t.Rotation()
		if axis := r.Vec3(); axis.Len() != 0 && r.W() != 0 {
			p := t.Pivot()
			s = k.Translate(s, p.Mul(-1))
			s = k.Rotate(s, axis, r.W())
			s = k.Translate(s, p)
		}
		if pos := t.Position(); pos != (mgl64.Vec3{}) {
			s = k.Translate(s, pos)
		}
	}
	return s
}

// tessellator is the scene.Visitor doing the work.
type tessellator struct {
	k      kernel.Kernel
	opts   Options
	stack  transformStack
	meshes []*kernel.Mesh
}

// Tessellate walks the scene under root and produces one triangle mesh per
// shape using the provided geometry kernel. Transforms above root are
// ignored. The tessellator is read-only and never mutates the scene.
func Tessellate(root scene.Node, k kernel.Kernel, opts Options) ([]*kernel.Mesh, error) {
	if root == nil {
		return nil, nil
	}
	v := &tessellator{k: k, opts: opts}
	if err := root.Accept(v); err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}
	return v.meshes, nil
}

func (v *tessellator) skip(n scene.Node) bool {
	return v.opts.Skip != nil && v.opts.Skip(n)
}

// ApplyShape meshes a single shape.
func (v *tessellator) ApplyShape(s *scene.Shape) error {
	if v.skip(s) {
		return nil
	}

	var mesh *kernel.Mesh
	if v.opts.Source == SourceGeometry && s.Geometry != nil {
		mesh = kernel.FromGeometry(s.Geometry, v.stack.matrix())
	} else {
		solid, err := kernel.FromPrimitive(v.k, s.Primitive)
		if err != nil {
			return fmt.Errorf("shape %s: %w", scene.Path(s), err)
		}
		mesh, err = v.k.ToMesh(v.stack.place(v.k, solid))
		if err != nil {
			return fmt.Errorf("ToMesh failed for shape %s: %w", scene.Path(s), err)
		}
	}

	mesh.Name = scene.Path(s)
	v.meshes = append(v.meshes, mesh)
	return nil
}

// ApplyGroup recurses into children transparently.
func (v *tessellator) ApplyGroup(g *scene.Group) error {
	if v.skip(g) {
		return nil
	}
	return scene.Traverse(v, g)
}

// ApplyTransform pushes the transform, recurses into children, then pops.
func (v *tessellator) ApplyTransform(t *scene.Transform) error {
	if v.skip(t) {
		return nil
	}
	v.stack.push(t)
	defer v.stack.pop()
	return scene.Traverse(v, t)
}
