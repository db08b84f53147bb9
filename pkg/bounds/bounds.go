// Package bounds computes axis-aligned bounding boxes of scenes.
package bounds

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/perryiv/cadkit-sub042/pkg/scene"
)

// Box3 is an axis-aligned box. The zero value is not empty; use Empty.
type Box3 struct {
	Min, Max mgl64.Vec3
}

// Empty returns a box that contains nothing and absorbs the first point
// extended into it.
func Empty() Box3 {
	inf := math.Inf(1)
	return Box3{
		Min: mgl64.Vec3{inf, inf, inf},
		Max: mgl64.Vec3{-inf, -inf, -inf},
	}
}

// IsEmpty reports whether b contains no points.
func (b Box3) IsEmpty() bool {
	return b.Min.X() > b.Max.X() || b.Min.Y() > b.Max.Y() || b.Min.Z() > b.Max.Z()
}

// ExtendPoint grows b to include p.
func (b Box3) ExtendPoint(p mgl64.Vec3) Box3 {
	for i := range 3 {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
	return b
}

// Union returns the smallest box holding both.
func (b Box3) Union(o Box3) Box3 {
	if o.IsEmpty() {
		return b
	}
	return b.ExtendPoint(o.Min).ExtendPoint(o.Max)
}

// Corners returns the eight corners of a non-empty box.
func (b Box3) Corners() [8]mgl64.Vec3 {
	var out [8]mgl64.Vec3
	for i := range out {
		c := b.Min
		for a := range 3 {
			if i&(1<<a) != 0 {
				c[a] = b.Max[a]
			}
		}
		out[i] = c
	}
	return out
}

// Transform returns the box enclosing b after applying m.
func (b Box3) Transform(m mgl64.Mat4) Box3 {
	if b.IsEmpty() {
		return b
	}
	out := Empty()
	for _, c := range b.Corners() {
		out = out.ExtendPoint(mgl64.TransformCoordinate(c, m))
	}
	return out
}

// Center returns the midpoint.
func (b Box3) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the edge lengths, zero for an empty box.
func (b Box3) Size() mgl64.Vec3 {
	if b.IsEmpty() {
		return mgl64.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

func (b Box3) String() string {
	if b.IsEmpty() {
		return "empty"
	}
	return fmt.Sprintf("[%g %g %g] .. [%g %g %g]",
		b.Min.X(), b.Min.Y(), b.Min.Z(), b.Max.X(), b.Max.Y(), b.Max.Z())
}

// Visitor accumulates the world bounds of every shape it reaches. Shapes
// with geometry contribute their transformed vertices; others contribute the
// transformed corners of their primitive extent.
type Visitor struct {
	// Skip prunes the subtree under any node for which it returns true.
	Skip func(scene.Node) bool

	Box    Box3
	Shapes int

	stack []mgl64.Mat4
}

// NewVisitor returns a visitor with an empty box.
func NewVisitor() *Visitor {
	return &Visitor{Box: Empty()}
}

func (v *Visitor) current() mgl64.Mat4 {
	if len(v.stack) == 0 {
		return mgl64.Ident4()
	}
	return v.stack[len(v.stack)-1]
}

func (v *Visitor) skip(n scene.Node) bool {
	return v.Skip != nil && v.Skip(n)
}

func (v *Visitor) ApplyShape(s *scene.Shape) error {
	if v.skip(s) {
		return nil
	}
	m := v.current()
	switch {
	case s.Geometry != nil && len(s.Geometry.Vertices) > 0:
		for _, p := range s.Geometry.Vertices {
			v.Box = v.Box.ExtendPoint(mgl64.TransformCoordinate(p, m))
		}
	case s.Primitive != nil:
		lo, hi := s.Primitive.Extent()
		v.Box = v.Box.Union(Box3{Min: lo, Max: hi}.Transform(m))
	default:
		return nil
	}
	v.Shapes++
	return nil
}

func (v *Visitor) ApplyGroup(g *scene.Group) error {
	if v.skip(g) {
		return nil
	}
	return scene.Traverse(v, g)
}

func (v *Visitor) ApplyTransform(t *scene.Transform) error {
	if v.skip(t) {
		return nil
	}
	v.stack = append(v.stack, v.current().Mul4(t.Matrix()))
	defer func() { v.stack = v.stack[:len(v.stack)-1] }()
	return scene.Traverse(v, t)
}

// Compute returns the bounds of everything under root, placed by the
// transforms between root and each shape. Transforms above root are ignored.
func Compute(root scene.Node) (Box3, error) {
	if root == nil {
		return Empty(), nil
	}
	v := NewVisitor()
	if err := root.Accept(v); err != nil {
		return Empty(), err
	}
	return v.Box, nil
}
