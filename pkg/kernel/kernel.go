// Package kernel defines the geometry kernel used to turn scene primitives
// into meshes. The sdfx subpackage is the implementation; tests may supply
// their own.
package kernel

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/perryiv/cadkit-sub042/pkg/scene"
)

// ErrUnsupported is returned for primitives a kernel cannot build.
var ErrUnsupported = errors.New("unsupported primitive")

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max mgl64.Vec3)
}

// Kernel builds solids and meshes them. Every primitive is centered on the
// origin with Z as the axis of round bodies, matching scene.Primitive.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) (Solid, error)
	Sphere(radius float64) (Solid, error)
	Cylinder(height, radius float64) (Solid, error)
	Cone(height, bottomRadius, topRadius float64) (Solid, error)

	// Union combines one or more solids.
	Union(solids ...Solid) (Solid, error)

	// Transforms
	Translate(s Solid, v mgl64.Vec3) Solid
	Rotate(s Solid, axis mgl64.Vec3, radians float64) Solid

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

// FromPrimitive builds the kernel solid for a scene primitive.
func FromPrimitive(k Kernel, p scene.Primitive) (Solid, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil primitive", ErrUnsupported)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	switch p := p.(type) {
	case scene.BoxPrimitive:
		return k.Box(p.Size.X(), p.Size.Y(), p.Size.Z())
	case scene.SpherePrimitive:
		return k.Sphere(p.Radius)
	case scene.CylinderPrimitive:
		return k.Cylinder(p.Height, p.Radius)
	case scene.ConePrimitive:
		return k.Cone(p.Height, p.BottomRadius, p.TopRadius)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, p)
}
