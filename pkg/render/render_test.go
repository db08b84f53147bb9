package render_test

import (
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perryiv/cadkit-sub042/pkg/config"
	"github.com/perryiv/cadkit-sub042/pkg/factory"
	"github.com/perryiv/cadkit-sub042/pkg/render"
	"github.com/perryiv/cadkit-sub042/pkg/scene"
)

// table builds root(group) -> [top(primitive box), legs(transform) -> [leg(primitive cylinder)], label(shape without geometry)].
func table(t *testing.T) *scene.Group {
	t.Helper()
	f := factory.New(config.Default().Factory, nil)

	p := f.Params()
	p.Name = "top"
	p.Dimensions = mgl64.Vec3{4, 2, 0.2}
	p.Center = mgl64.Vec3{0, 0, 1}
	top, err := f.MakePrimitive(factory.Box, p)
	require.NoError(t, err)

	p = f.Params()
	p.Name = "leg"
	p.Segments = 8
	leg, err := f.MakePrimitive(factory.Cylinder, p)
	require.NoError(t, err)

	legs := scene.NewTransform("legs").SetAxisAngle(mgl64.Vec3{0, 0, 1}, math.Pi)
	require.NoError(t, legs.Append(leg))

	root := scene.NewGroup("root")
	require.NoError(t, root.Append(top))
	require.NoError(t, root.Append(legs))
	require.NoError(t, root.Append(scene.NewShape("label", scene.SpherePrimitive{Radius: 1})))
	return root
}

func TestTraverseEmitsBalancedCalls(t *testing.T) {
	rec := &render.Recorder{}
	require.NoError(t, render.Traverse(table(t), rec))

	want := strings.Join([]string{
		"push",
		"draw /root/top/top",
		"pop",
		"push",
		"push",
		"draw /root/legs/leg/leg",
		"pop",
		"pop",
	}, "\n")
	assert.Equal(t, want, rec.Script())
	assert.Zero(t, rec.Depth())
	assert.Equal(t, 2, rec.MaxDepth())
	assert.Equal(t, 12+4*8, rec.Triangles())
}

func TestDrawCarriesWorldMatrix(t *testing.T) {
	rec := &render.Recorder{}
	root := table(t)
	require.NoError(t, render.Traverse(root, rec))

	for _, d := range rec.Draws() {
		want := scene.WorldMatrix(d.Shape)
		assert.True(t, want.ApproxEqualThreshold(d.World, 1e-12), "draw %s", d.Path)
	}
	// The pushed matrix before a draw is the draw's matrix.
	assert.True(t, rec.Ops[0].Matrix.ApproxEqualThreshold(mgl64.Translate3D(0, 0, 1), 1e-12))
}

func TestDrawErrorStopsButBalances(t *testing.T) {
	rec := &render.Recorder{FailOn: "/root/top/top"}
	err := render.Traverse(table(t), rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/root/top/top")
	assert.Zero(t, rec.Depth(), "pops still run on failure")
	assert.Empty(t, rec.Draws(), "legs are never reached")
}

func TestFrameUsesScene(t *testing.T) {
	rec := &render.Recorder{}
	require.NoError(t, render.Frame(scene.NewScene(nil), rec))
	assert.Empty(t, rec.Ops)

	require.NoError(t, render.Frame(scene.NewScene(table(t)), rec))
	assert.Len(t, rec.Draws(), 2)
}
