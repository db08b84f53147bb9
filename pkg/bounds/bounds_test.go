package bounds

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perryiv/cadkit-sub042/pkg/scene"
)

func approx(t *testing.T, want, got mgl64.Vec3) {
	t.Helper()
	assert.True(t, want.ApproxEqualThreshold(got, 1e-9), "want %v, got %v", want, got)
}

func TestBox3Basics(t *testing.T) {
	b := Empty()
	assert.True(t, b.IsEmpty())
	assert.Equal(t, "empty", b.String())
	assert.Equal(t, mgl64.Vec3{}, b.Size())

	b = b.ExtendPoint(mgl64.Vec3{1, 2, 3})
	assert.False(t, b.IsEmpty())
	assert.Equal(t, mgl64.Vec3{}, b.Size())

	b = b.ExtendPoint(mgl64.Vec3{-1, 4, 0})
	assert.Equal(t, mgl64.Vec3{-1, 2, 0}, b.Min)
	assert.Equal(t, mgl64.Vec3{1, 4, 3}, b.Max)
	assert.Equal(t, mgl64.Vec3{0, 3, 1.5}, b.Center())
	assert.Equal(t, mgl64.Vec3{2, 2, 3}, b.Size())

	assert.Equal(t, b, b.Union(Empty()))
	assert.Equal(t, b, Empty().Union(b))
	assert.True(t, Empty().Transform(mgl64.Translate3D(1, 1, 1)).IsEmpty())
}

func TestBox3TransformRotates(t *testing.T) {
	b := Box3{Min: mgl64.Vec3{-5, -1, -1}, Max: mgl64.Vec3{5, 1, 1}}
	r := b.Transform(mgl64.HomogRotate3DZ(math.Pi / 2))
	approx(t, mgl64.Vec3{-1, -5, -1}, r.Min)
	approx(t, mgl64.Vec3{1, 5, 1}, r.Max)
}

func TestComputeComposesTransforms(t *testing.T) {
	root := scene.NewTransform("root").SetPosition(mgl64.Vec3{10, 0, 0})
	spin := scene.NewTransform("spin").SetAxisAngle(mgl64.Vec3{0, 0, 1}, math.Pi/2)
	rod := scene.NewShape("rod", scene.BoxPrimitive{Size: mgl64.Vec3{4, 2, 2}})
	ball := scene.NewShape("ball", scene.SpherePrimitive{Radius: 1})
	require.NoError(t, root.Append(spin))
	require.NoError(t, spin.Append(rod))
	require.NoError(t, root.Append(ball))

	b, err := Compute(root)
	require.NoError(t, err)
	// rod: 2 wide in x, 4 long in y after the spin, then shifted to x=10.
	// ball: radius 1 at x=10.
	approx(t, mgl64.Vec3{9, -2, -1}, b.Min)
	approx(t, mgl64.Vec3{11, 2, 1}, b.Max)
}

func TestComputeUsesGeometry(t *testing.T) {
	s := scene.NewShape("tri", scene.BoxPrimitive{Size: mgl64.Vec3{100, 100, 100}})
	s.Geometry = &scene.Geometry{
		Vertices: []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 2, 0}},
		Indices:  []uint32{0, 1, 2},
	}
	b, err := Compute(s)
	require.NoError(t, err)
	assert.Equal(t, mgl64.Vec3{0, 0, 0}, b.Min)
	assert.Equal(t, mgl64.Vec3{1, 2, 0}, b.Max)
}

func TestVisitorSkipAndEmpty(t *testing.T) {
	b, err := Compute(nil)
	require.NoError(t, err)
	assert.True(t, b.IsEmpty())

	b, err = Compute(scene.NewGroup("empty"))
	require.NoError(t, err)
	assert.True(t, b.IsEmpty())

	root := scene.NewGroup("root")
	far := scene.NewTransform("far").SetPosition(mgl64.Vec3{1000, 0, 0})
	require.NoError(t, far.Append(scene.NewShape("x", scene.SpherePrimitive{Radius: 1})))
	require.NoError(t, root.Append(far))
	require.NoError(t, root.Append(scene.NewShape("near", scene.SpherePrimitive{Radius: 1})))

	v := NewVisitor()
	v.Skip = func(n scene.Node) bool { return n.Name() == "far" }
	require.NoError(t, root.Accept(v))
	assert.Equal(t, 1, v.Shapes)
	assert.Equal(t, mgl64.Vec3{1, 1, 1}, v.Box.Max)
}

func TestComputeTransformAddedThroughEmbeddedGroup(t *testing.T) {
	root := scene.NewGroup("root")
	tr := scene.NewTransform("moved").SetPosition(mgl64.Vec3{5, 0, 0})
	s := scene.NewShape("s", scene.BoxPrimitive{Size: mgl64.Vec3{1, 1, 1}})
	require.NoError(t, tr.Append(s))
	require.NoError(t, root.Append(&tr.Group))

	box, err := Compute(root)
	require.NoError(t, err)
	approx(t, mgl64.Vec3{4.5, -0.5, -0.5}, box.Min)
	approx(t, mgl64.Vec3{5.5, 0.5, 0.5}, box.Max)
	assert.Equal(t, 5.0, scene.WorldMatrix(s).Col(3).X())
}
