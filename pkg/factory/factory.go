// Package factory builds ready-to-append primitive subtrees: a Transform
// placing a single Shape whose Geometry is an indexed triangle mesh.
package factory

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/perryiv/cadkit-sub042/pkg/config"
	"github.com/perryiv/cadkit-sub042/pkg/scene"
)

// ErrInvalidArgument is returned for unknown kinds and out-of-range
// parameters. No node is built in that case.
var ErrInvalidArgument = errors.New("invalid argument")

// TransformType tags every Transform the factory returns.
const TransformType = "primitive"

// MaxSubdivisions bounds sphere refinement; level n has 20·4ⁿ triangles.
const MaxSubdivisions = config.MaxSubdivisions

// MinSegments and MaxSegments bound the ring a cylinder or cone may use.
const (
	MinSegments = config.MinSegments
	MaxSegments = config.MaxSegments
)

// Kind selects a primitive.
type Kind int

const (
	Cube Kind = iota
	Box
	Sphere
	Cylinder
	Cone
)

var kindNames = map[Kind]string{
	Cube:     "cube",
	Box:      "box",
	Sphere:   "sphere",
	Cylinder: "cylinder",
	Cone:     "cone",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a lower-case name back to a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown primitive kind %q", ErrInvalidArgument, s)
}

// Params describes a primitive. Only the fields relevant to the kind are
// read:
//
//	Cube      Size
//	Box       Dimensions
//	Sphere    Radius, Subdivisions
//	Cylinder  Height, Radius, Segments
//	Cone      Height, Radius (bottom), TopRadius, Segments
type Params struct {
	Name         string
	Center       mgl64.Vec3
	Size         float64
	Dimensions   mgl64.Vec3
	Radius       float64
	TopRadius    float64
	Height       float64
	Subdivisions int
	Segments     int
}

// Factory makes primitives. It holds no per-call state and is safe for
// concurrent use.
type Factory struct {
	defaults config.Factory
	log      *slog.Logger
}

// New returns a factory whose Params defaults come from cfg.
func New(cfg config.Factory, log *slog.Logger) *Factory {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Factory{defaults: cfg, log: log}
}

// Params returns unit-sized parameters with the configured tessellation.
func (f *Factory) Params() Params {
	return Params{
		Size:         1,
		Dimensions:   mgl64.Vec3{1, 1, 1},
		Radius:       0.5,
		Height:       1,
		Subdivisions: f.defaults.Subdivisions,
		Segments:     f.defaults.Segments,
	}
}

// MakePrimitive builds a Transform (Type "primitive", Position p.Center)
// holding one Shape with the analytic primitive and its mesh.
func (f *Factory) MakePrimitive(kind Kind, p Params) (*scene.Transform, error) {
	prim, geom, err := build(kind, p)
	if err == nil {
		for i, axis := range [3]string{"x", "y", "z"} {
			if err = finite("center "+axis, p.Center[i]); err != nil {
				break
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("make %s: %w", kind, err)
	}

	name := p.Name
	if name == "" {
		name = kind.String()
	}
	shape := scene.NewShape(name, prim)
	shape.Geometry = geom

	t := scene.NewTransform(name).SetType(TransformType).SetPosition(p.Center)
	if err := t.Append(shape); err != nil {
		return nil, err
	}
	f.log.Debug("made primitive",
		"kind", kind.String(),
		"name", name,
		"vertices", len(geom.Vertices),
		"triangles", geom.TriangleCount(),
	)
	return t, nil
}

func build(kind Kind, p Params) (scene.Primitive, *scene.Geometry, error) {
	switch kind {
	case Cube:
		if err := positive("size", p.Size); err != nil {
			return nil, nil, err
		}
		size := mgl64.Vec3{p.Size, p.Size, p.Size}
		return scene.BoxPrimitive{Size: size}, boxGeometry(size), nil

	case Box:
		for i, axis := range [3]string{"x", "y", "z"} {
			if err := positive("dimension "+axis, p.Dimensions[i]); err != nil {
				return nil, nil, err
			}
		}
		return scene.BoxPrimitive{Size: p.Dimensions}, boxGeometry(p.Dimensions), nil

	case Sphere:
		if err := positive("radius", p.Radius); err != nil {
			return nil, nil, err
		}
		if p.Subdivisions < 0 || p.Subdivisions > MaxSubdivisions {
			return nil, nil, fmt.Errorf("%w: subdivisions %d out of range 0..%d",
				ErrInvalidArgument, p.Subdivisions, MaxSubdivisions)
		}
		return scene.SpherePrimitive{Radius: p.Radius}, sphereGeometry(p.Radius, p.Subdivisions), nil

	case Cylinder:
		if err := positive("height", p.Height); err != nil {
			return nil, nil, err
		}
		if err := positive("radius", p.Radius); err != nil {
			return nil, nil, err
		}
		if err := segments(p.Segments); err != nil {
			return nil, nil, err
		}
		prim := scene.CylinderPrimitive{Height: p.Height, Radius: p.Radius}
		return prim, frustumGeometry(p.Height, p.Radius, p.Radius, p.Segments), nil

	case Cone:
		if err := positive("height", p.Height); err != nil {
			return nil, nil, err
		}
		if err := finite("radius", p.Radius); err != nil {
			return nil, nil, err
		}
		if err := finite("top radius", p.TopRadius); err != nil {
			return nil, nil, err
		}
		if p.Radius < 0 || p.TopRadius < 0 || (p.Radius == 0 && p.TopRadius == 0) {
			return nil, nil, fmt.Errorf("%w: cone radii %g/%g need one positive and none negative",
				ErrInvalidArgument, p.Radius, p.TopRadius)
		}
		if err := segments(p.Segments); err != nil {
			return nil, nil, err
		}
		prim := scene.ConePrimitive{Height: p.Height, BottomRadius: p.Radius, TopRadius: p.TopRadius}
		return prim, frustumGeometry(p.Height, p.Radius, p.TopRadius, p.Segments), nil
	}
	return nil, nil, fmt.Errorf("%w: unknown primitive kind %d", ErrInvalidArgument, int(kind))
}

func finite(what string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s %g is not finite", ErrInvalidArgument, what, v)
	}
	return nil
}

func positive(what string, v float64) error {
	if err := finite(what, v); err != nil {
		return err
	}
	if !(v > 0) {
		return fmt.Errorf("%w: %s %g must be positive", ErrInvalidArgument, what, v)
	}
	return nil
}

func segments(n int) error {
	if n < MinSegments || n > MaxSegments {
		return fmt.Errorf("%w: %d segments, want %d..%d", ErrInvalidArgument, n, MinSegments, MaxSegments)
	}
	return nil
}
