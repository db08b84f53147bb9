package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Shape is a leaf node. It carries an analytic primitive and, when built by
// a factory, the primitive's tessellated geometry.
type Shape struct {
	nodeBase
	Primitive Primitive
	Geometry  *Geometry
}

// NewShape returns a shape for the given primitive. Geometry is left nil.
func NewShape(name string, p Primitive) *Shape {
	s := &Shape{nodeBase: newNodeBase(name), Primitive: p}
	s.self = s
	return s
}

// Kind returns KindShape.
func (s *Shape) Kind() NodeKind { return KindShape }

// Accept calls v.ApplyShape.
func (s *Shape) Accept(v Visitor) error { return v.ApplyShape(s) }

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// Primitive is the analytic description of a shape. All primitives are
// centered on the local origin; round bodies use Z as their axis.
type Primitive interface {
	// Extent returns the local axis-aligned bounds.
	Extent() (min, max mgl64.Vec3)
	// Validate reports non-positive dimensions.
	Validate() error
	fmt.Stringer

	primitive() // marker method restricting implementations to this package
}

// BoxPrimitive is an axis-aligned box of the given edge lengths.
type BoxPrimitive struct {
	Size mgl64.Vec3
}

func (BoxPrimitive) primitive() {}

func (p BoxPrimitive) Extent() (mgl64.Vec3, mgl64.Vec3) {
	h := p.Size.Mul(0.5)
	return h.Mul(-1), h
}

func (p BoxPrimitive) Validate() error {
	for i, axis := range [3]string{"x", "y", "z"} {
		if p.Size[i] <= 0 {
			return fmt.Errorf("box size %s is %g, must be positive", axis, p.Size[i])
		}
	}
	return nil
}

func (p BoxPrimitive) String() string {
	return fmt.Sprintf("box %gx%gx%g", p.Size.X(), p.Size.Y(), p.Size.Z())
}

// SpherePrimitive is a sphere of the given radius.
type SpherePrimitive struct {
	Radius float64
}

func (SpherePrimitive) primitive() {}

func (p SpherePrimitive) Extent() (mgl64.Vec3, mgl64.Vec3) {
	r := p.Radius
	return mgl64.Vec3{-r, -r, -r}, mgl64.Vec3{r, r, r}
}

func (p SpherePrimitive) Validate() error {
	if p.Radius <= 0 {
		return fmt.Errorf("sphere radius is %g, must be positive", p.Radius)
	}
	return nil
}

func (p SpherePrimitive) String() string {
	return fmt.Sprintf("sphere r=%g", p.Radius)
}

// CylinderPrimitive is a capped cylinder along Z.
type CylinderPrimitive struct {
	Height float64
	Radius float64
}

func (CylinderPrimitive) primitive() {}

func (p CylinderPrimitive) Extent() (mgl64.Vec3, mgl64.Vec3) {
	r, h := p.Radius, p.Height/2
	return mgl64.Vec3{-r, -r, -h}, mgl64.Vec3{r, r, h}
}

func (p CylinderPrimitive) Validate() error {
	if p.Height <= 0 {
		return fmt.Errorf("cylinder height is %g, must be positive", p.Height)
	}
	if p.Radius <= 0 {
		return fmt.Errorf("cylinder radius is %g, must be positive", p.Radius)
	}
	return nil
}

func (p CylinderPrimitive) String() string {
	return fmt.Sprintf("cylinder h=%g r=%g", p.Height, p.Radius)
}

// ConePrimitive is a capped cone frustum along Z. BottomRadius is at -Z,
// TopRadius at +Z; one of them may be zero.
type ConePrimitive struct {
	Height       float64
	BottomRadius float64
	TopRadius    float64
}

func (ConePrimitive) primitive() {}

func (p ConePrimitive) Extent() (mgl64.Vec3, mgl64.Vec3) {
	r, h := max(p.BottomRadius, p.TopRadius), p.Height/2
	return mgl64.Vec3{-r, -r, -h}, mgl64.Vec3{r, r, h}
}

func (p ConePrimitive) Validate() error {
	if p.Height <= 0 {
		return fmt.Errorf("cone height is %g, must be positive", p.Height)
	}
	if p.BottomRadius < 0 || p.TopRadius < 0 {
		return fmt.Errorf("cone radii %g/%g must not be negative", p.BottomRadius, p.TopRadius)
	}
	if p.BottomRadius == 0 && p.TopRadius == 0 {
		return fmt.Errorf("cone needs at least one positive radius")
	}
	return nil
}

func (p ConePrimitive) String() string {
	return fmt.Sprintf("cone h=%g r0=%g r1=%g", p.Height, p.BottomRadius, p.TopRadius)
}

// ---------------------------------------------------------------------------
// Geometry
// ---------------------------------------------------------------------------

// Geometry is an indexed triangle list. Vertices and normals live in
// separate pools; Indices and NormalIndices run in parallel, three entries
// per triangle.
type Geometry struct {
	Vertices      []mgl64.Vec3
	Normals       []mgl64.Vec3
	Indices       []uint32
	NormalIndices []uint32
}

// TriangleCount returns the number of triangles.
func (g *Geometry) TriangleCount() int {
	return len(g.Indices) / 3
}

// Check reports index lists that are malformed or out of range.
func (g *Geometry) Check() error {
	if len(g.Indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3", len(g.Indices))
	}
	if len(g.NormalIndices) != 0 && len(g.NormalIndices) != len(g.Indices) {
		return fmt.Errorf("normal index count %d != vertex index count %d", len(g.NormalIndices), len(g.Indices))
	}
	for i, idx := range g.Indices {
		if int(idx) >= len(g.Vertices) {
			return fmt.Errorf("index %d refers to vertex %d of %d", i, idx, len(g.Vertices))
		}
	}
	for i, idx := range g.NormalIndices {
		if int(idx) >= len(g.Normals) {
			return fmt.Errorf("normal index %d refers to normal %d of %d", i, idx, len(g.Normals))
		}
	}
	return nil
}
