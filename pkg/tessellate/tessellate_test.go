package tessellate_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/perryiv/cadkit-sub042/pkg/kernel"
	"github.com/perryiv/cadkit-sub042/pkg/kernel/sdfx"
	"github.com/perryiv/cadkit-sub042/pkg/scene"
	"github.com/perryiv/cadkit-sub042/pkg/tessellate"
)

// boxSolid is an axis-aligned box placed by a matrix. It lets the tests
// check solid placement exactly without marching cubes.
type boxSolid struct {
	half mgl64.Vec3
	m    mgl64.Mat4
}

func (s *boxSolid) corners() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, 0, 8)
	for i := 0; i < 8; i++ {
		c := s.half.Mul(-1)
		for a := 0; a < 3; a++ {
			if i&(1<<a) != 0 {
				c[a] = s.half[a]
			}
		}
		out = append(out, mgl64.TransformCoordinate(c, s.m))
	}
	return out
}

func (s *boxSolid) BoundingBox() (min, max mgl64.Vec3) {
	cs := s.corners()
	min, max = cs[0], cs[0]
	for _, c := range cs[1:] {
		for a := 0; a < 3; a++ {
			min[a] = math.Min(min[a], c[a])
			max[a] = math.Max(max[a], c[a])
		}
	}
	return min, max
}

// matrixKernel models every primitive by its bounding box and records
// transforms as matrices.
type matrixKernel struct {
	meshed int
}

func (k *matrixKernel) solid(h mgl64.Vec3) (kernel.Solid, error) {
	return &boxSolid{half: h, m: mgl64.Ident4()}, nil
}

func (k *matrixKernel) Box(x, y, z float64) (kernel.Solid, error) {
	return k.solid(mgl64.Vec3{x, y, z}.Mul(0.5))
}

func (k *matrixKernel) Sphere(r float64) (kernel.Solid, error) {
	return k.solid(mgl64.Vec3{r, r, r})
}

func (k *matrixKernel) Cylinder(h, r float64) (kernel.Solid, error) {
	return k.solid(mgl64.Vec3{r, r, h / 2})
}

func (k *matrixKernel) Cone(h, r0, r1 float64) (kernel.Solid, error) {
	r := math.Max(r0, r1)
	return k.solid(mgl64.Vec3{r, r, h / 2})
}

func (k *matrixKernel) Union(s ...kernel.Solid) (kernel.Solid, error) {
	return s[0], nil
}

func (k *matrixKernel) Translate(s kernel.Solid, v mgl64.Vec3) kernel.Solid {
	b := *s.(*boxSolid)
	b.m = mgl64.Translate3D(v.X(), v.Y(), v.Z()).Mul4(b.m)
	return &b
}

func (k *matrixKernel) Rotate(s kernel.Solid, axis mgl64.Vec3, radians float64) kernel.Solid {
	b := *s.(*boxSolid)
	b.m = mgl64.HomogRotate3D(radians, axis.Normalize()).Mul4(b.m)
	return &b
}

func (k *matrixKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	k.meshed++
	m := &kernel.Mesh{}
	for i, c := range s.(*boxSolid).corners() {
		m.Vertices = append(m.Vertices, float32(c.X()), float32(c.Y()), float32(c.Z()))
		m.Normals = append(m.Normals, 0, 0, 1)
		if i < 3 {
			m.Indices = append(m.Indices, uint32(i))
		}
	}
	return m, nil
}

var _ kernel.Kernel = (*matrixKernel)(nil)

func box(name string, x, y, z float64) *scene.Shape {
	return scene.NewShape(name, scene.BoxPrimitive{Size: mgl64.Vec3{x, y, z}})
}

func mustAppend(t *testing.T, g scene.Composite, nodes ...scene.Node) {
	t.Helper()
	for _, n := range nodes {
		if err := g.Append(n); err != nil {
			t.Fatalf("append %s: %v", n.Name(), err)
		}
	}
}

func approxVec(a, b mgl64.Vec3, tol float64) bool {
	return a.ApproxEqualThreshold(b, tol)
}

func TestNilRoot(t *testing.T) {
	meshes, err := tessellate.Tessellate(nil, &matrixKernel{}, tessellate.Options{})
	if err != nil || meshes != nil {
		t.Fatalf("Tessellate(nil) = %v, %v; want nil, nil", meshes, err)
	}
}

func TestOneMeshPerShapeInOrder(t *testing.T) {
	root := scene.NewGroup("root")
	arm := scene.NewTransform("arm")
	mustAppend(t, root, box("a", 1, 1, 1), arm)
	mustAppend(t, arm, box("b", 1, 1, 1), scene.NewGroup("empty"), box("c", 1, 1, 1))

	k := &matrixKernel{}
	meshes, err := tessellate.Tessellate(root, k, tessellate.Options{})
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	want := []string{"/root/a", "/root/arm/b", "/root/arm/c"}
	if len(meshes) != len(want) {
		t.Fatalf("got %d meshes, want %d", len(meshes), len(want))
	}
	for i, m := range meshes {
		if m.Name != want[i] {
			t.Errorf("mesh %d name = %q, want %q", i, m.Name, want[i])
		}
	}
	if k.meshed != 3 {
		t.Errorf("ToMesh called %d times, want 3", k.meshed)
	}
}

// The kernel placement must agree with scene.WorldMatrix for any mix of
// position, rotation and pivot.
func TestPlacementMatchesWorldMatrix(t *testing.T) {
	root := scene.NewTransform("root").SetPosition(mgl64.Vec3{10, 0, 0})
	mid := scene.NewTransform("mid").
		SetAxisAngle(mgl64.Vec3{0, 0, 1}, math.Pi/2).
		SetPivot(mgl64.Vec3{1, 0, 0})
	inner := scene.NewTransform("inner").
		SetPosition(mgl64.Vec3{0, 2, 0}).
		SetAxisAngle(mgl64.Vec3{1, 1, 0}, 0.7).
		SetPivot(mgl64.Vec3{0, 0, 3})
	leaf := box("leaf", 2, 4, 6)
	mustAppend(t, root, mid)
	mustAppend(t, mid, inner)
	mustAppend(t, inner, leaf)

	meshes, err := tessellate.Tessellate(root, &matrixKernel{}, tessellate.Options{})
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("got %d meshes, want 1", len(meshes))
	}

	want := (&boxSolid{half: mgl64.Vec3{1, 2, 3}, m: scene.WorldMatrix(leaf)}).corners()
	got := meshes[0].Vertices
	for i, c := range want {
		v := mgl64.Vec3{float64(got[i*3]), float64(got[i*3+1]), float64(got[i*3+2])}
		if !approxVec(v, c, 1e-5) {
			t.Errorf("corner %d = %v, want %v", i, v, c)
		}
	}
}

func TestGeometrySource(t *testing.T) {
	s := box("tri", 1, 1, 1)
	s.Geometry = &scene.Geometry{
		Vertices:      []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Normals:       []mgl64.Vec3{{0, 0, 1}},
		Indices:       []uint32{0, 1, 2},
		NormalIndices: []uint32{0, 0, 0},
	}
	tr := scene.NewTransform("up").SetPosition(mgl64.Vec3{0, 0, 5})
	mustAppend(t, tr, s)

	k := &matrixKernel{}
	meshes, err := tessellate.Tessellate(tr, k, tessellate.Options{Source: tessellate.SourceGeometry})
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if k.meshed != 0 {
		t.Error("kernel should not be used when geometry is present")
	}
	if meshes[0].TriangleCount() != 1 {
		t.Fatalf("got %d triangles, want 1", meshes[0].TriangleCount())
	}
	for i := 2; i < len(meshes[0].Vertices); i += 3 {
		if meshes[0].Vertices[i] != 5 {
			t.Errorf("vertex %d z = %g, want 5", i/3, meshes[0].Vertices[i])
		}
	}
}

func TestSkipPrunesSubtree(t *testing.T) {
	root := scene.NewGroup("root")
	hidden := scene.NewGroup("hidden")
	mustAppend(t, root, hidden, box("shown", 1, 1, 1))
	mustAppend(t, hidden, box("inside", 1, 1, 1))

	meshes, err := tessellate.Tessellate(root, &matrixKernel{}, tessellate.Options{
		Skip: func(n scene.Node) bool { return n.Name() == "hidden" },
	})
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 || meshes[0].Name != "/root/shown" {
		t.Fatalf("got %v, want only /root/shown", meshes)
	}
}

func TestBadPrimitiveNamesShape(t *testing.T) {
	root := scene.NewGroup("root")
	mustAppend(t, root, box("ok", 1, 1, 1), scene.NewShape("broken", scene.SpherePrimitive{Radius: -1}))

	_, err := tessellate.Tessellate(root, &matrixKernel{}, tessellate.Options{})
	if err == nil {
		t.Fatal("expected error for negative radius")
	}
	if want := "/root/broken"; !strings.Contains(err.Error(), want) {
		t.Errorf("error %q does not name %s", err, want)
	}

	_, err = tessellate.Tessellate(scene.NewShape("none", nil), &matrixKernel{}, tessellate.Options{})
	if !errors.Is(err, kernel.ErrUnsupported) {
		t.Errorf("nil primitive: err = %v, want ErrUnsupported", err)
	}
}

// --- sdfx integration ---

func TestSdfxTranslatedBox(t *testing.T) {
	k := sdfx.New(40)
	tr := scene.NewTransform("place").SetPosition(mgl64.Vec3{100, 0, 0})
	mustAppend(t, tr, box("board", 10, 10, 10))

	meshes, err := tessellate.Tessellate(tr, k, tessellate.Options{})
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 || meshes[0].IsEmpty() {
		t.Fatal("expected one non-empty mesh")
	}
	lo, hi, _ := meshes[0].Bounds()
	const tol = 0.5
	if math.Abs(lo.X()-95) > tol || math.Abs(hi.X()-105) > tol {
		t.Errorf("x range = [%f, %f], want ~[95, 105]", lo.X(), hi.X())
	}
}

func TestSdfxRotatedAboutPivot(t *testing.T) {
	k := sdfx.New(40)
	// Rotating a rod about its end swings it from +X to +Y.
	tr := scene.NewTransform("hinge").
		SetAxisAngle(mgl64.Vec3{0, 0, 1}, math.Pi/2).
		SetPivot(mgl64.Vec3{-50, 0, 0})
	mustAppend(t, tr, box("rod", 100, 10, 10))

	meshes, err := tessellate.Tessellate(tr, k, tessellate.Options{})
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	lo, hi, _ := meshes[0].Bounds()
	const tol = 2.0
	if math.Abs(lo.X()-(-55)) > tol || math.Abs(hi.X()-(-45)) > tol {
		t.Errorf("x range = [%f, %f], want ~[-55, -45]", lo.X(), hi.X())
	}
	if math.Abs(lo.Y()) > tol || math.Abs(hi.Y()-100) > tol {
		t.Errorf("y range = [%f, %f], want ~[0, 100]", lo.Y(), hi.Y())
	}
}
