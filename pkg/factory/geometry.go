package factory

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/perryiv/cadkit-sub042/pkg/scene"
)

// pool stores each distinct vector once and hands back its index.
type pool struct {
	index map[mgl64.Vec3]uint32
	list  []mgl64.Vec3
}

func newPool() *pool {
	return &pool{index: make(map[mgl64.Vec3]uint32)}
}

func (p *pool) add(v mgl64.Vec3) uint32 {
	if i, ok := p.index[v]; ok {
		return i
	}
	i := uint32(len(p.list))
	p.index[v] = i
	p.list = append(p.list, v)
	return i
}

// mesh accumulates triangles into pooled vertices and normals.
type mesh struct {
	vp, np *pool
	geom   scene.Geometry
}

func newMesh() *mesh {
	return &mesh{vp: newPool(), np: newPool()}
}

// tri appends a counter-clockwise triangle with per-corner normals.
func (m *mesh) tri(a, b, c, na, nb, nc mgl64.Vec3) {
	m.geom.Indices = append(m.geom.Indices, m.vp.add(a), m.vp.add(b), m.vp.add(c))
	m.geom.NormalIndices = append(m.geom.NormalIndices, m.np.add(na), m.np.add(nb), m.np.add(nc))
}

func (m *mesh) flat(a, b, c, n mgl64.Vec3) {
	m.tri(a, b, c, n, n, n)
}

func (m *mesh) done() *scene.Geometry {
	m.geom.Vertices = m.vp.list
	m.geom.Normals = m.np.list
	return &m.geom
}

// boxGeometry returns 12 triangles over 8 shared corners, centered on the
// origin. Corner i has x set by bit 0, y by bit 1, z by bit 2.
func boxGeometry(size mgl64.Vec3) *scene.Geometry {
	h := size.Mul(0.5)
	var v [8]mgl64.Vec3
	for i := range v {
		v[i] = mgl64.Vec3{-h.X(), -h.Y(), -h.Z()}
		if i&1 != 0 {
			v[i][0] = h.X()
		}
		if i&2 != 0 {
			v[i][1] = h.Y()
		}
		if i&4 != 0 {
			v[i][2] = h.Z()
		}
	}

	faces := []struct {
		n          mgl64.Vec3
		a, b, c, d int
	}{
		{mgl64.Vec3{0, 0, -1}, 0, 2, 3, 1},
		{mgl64.Vec3{0, 0, 1}, 4, 5, 7, 6},
		{mgl64.Vec3{-1, 0, 0}, 0, 4, 6, 2},
		{mgl64.Vec3{1, 0, 0}, 1, 3, 7, 5},
		{mgl64.Vec3{0, -1, 0}, 0, 1, 5, 4},
		{mgl64.Vec3{0, 1, 0}, 2, 6, 7, 3},
	}
	m := newMesh()
	for _, f := range faces {
		m.flat(v[f.a], v[f.b], v[f.c], f.n)
		m.flat(v[f.a], v[f.c], v[f.d], f.n)
	}
	return m.done()
}

// Icosahedron vertex coordinates on the unit sphere.
const (
	icoX = 0.525731112119133606
	icoZ = 0.8506508083528655993
)

var icosahedron = [20][3]mgl64.Vec3{
	{{-icoX, 0, icoZ}, {icoX, 0, icoZ}, {0, icoZ, icoX}},
	{{-icoX, 0, icoZ}, {0, icoZ, icoX}, {-icoZ, icoX, 0}},
	{{-icoZ, icoX, 0}, {0, icoZ, icoX}, {0, icoZ, -icoX}},
	{{0, icoZ, icoX}, {icoZ, icoX, 0}, {0, icoZ, -icoX}},
	{{0, icoZ, icoX}, {icoX, 0, icoZ}, {icoZ, icoX, 0}},
	{{icoZ, icoX, 0}, {icoX, 0, icoZ}, {icoZ, -icoX, 0}},
	{{icoZ, icoX, 0}, {icoZ, -icoX, 0}, {icoX, 0, -icoZ}},
	{{0, icoZ, -icoX}, {icoZ, icoX, 0}, {icoX, 0, -icoZ}},
	{{0, icoZ, -icoX}, {icoX, 0, -icoZ}, {-icoX, 0, -icoZ}},
	{{-icoX, 0, -icoZ}, {icoX, 0, -icoZ}, {0, -icoZ, -icoX}},
	{{0, -icoZ, -icoX}, {icoX, 0, -icoZ}, {icoZ, -icoX, 0}},
	{{0, -icoZ, -icoX}, {icoZ, -icoX, 0}, {0, -icoZ, icoX}},
	{{0, -icoZ, -icoX}, {0, -icoZ, icoX}, {-icoZ, -icoX, 0}},
	{{-icoZ, -icoX, 0}, {0, -icoZ, icoX}, {-icoX, 0, icoZ}},
	{{-icoX, 0, icoZ}, {0, -icoZ, icoX}, {icoX, 0, icoZ}},
	{{0, -icoZ, icoX}, {icoZ, -icoX, 0}, {icoX, 0, icoZ}},
	{{-icoZ, icoX, 0}, {-icoZ, -icoX, 0}, {-icoX, 0, icoZ}},
	{{-icoZ, icoX, 0}, {-icoX, 0, -icoZ}, {-icoZ, -icoX, 0}},
	{{-icoZ, icoX, 0}, {0, icoZ, -icoX}, {-icoX, 0, -icoZ}},
	{{0, -icoZ, -icoX}, {-icoZ, -icoX, 0}, {-icoX, 0, -icoZ}},
}

// sphereGeometry subdivides the icosahedron depth times. Every vertex is
// its own unit normal scaled by r.
func sphereGeometry(r float64, depth int) *scene.Geometry {
	m := newMesh()
	var subdivide func(a, b, c mgl64.Vec3, depth int)
	subdivide = func(a, b, c mgl64.Vec3, depth int) {
		if depth == 0 {
			m.tri(a.Mul(r), b.Mul(r), c.Mul(r), a, b, c)
			return
		}
		ab := a.Add(b).Normalize()
		bc := b.Add(c).Normalize()
		ca := c.Add(a).Normalize()
		subdivide(a, ab, ca, depth-1)
		subdivide(b, bc, ab, depth-1)
		subdivide(c, ca, bc, depth-1)
		subdivide(ab, bc, ca, depth-1)
	}
	for _, t := range icosahedron {
		subdivide(t[0], t[1], t[2], depth)
	}
	return m.done()
}

// frustumGeometry builds a capped frustum along Z from z=-h/2 (radius r0)
// to z=+h/2 (radius r1). A zero radius collapses that ring to an apex and
// drops its cap.
func frustumGeometry(h, r0, r1 float64, segments int) *scene.Geometry {
	m := newMesh()
	z0, z1 := -h/2, h/2
	ring := func(r, z float64, i int) mgl64.Vec3 {
		s, c := math.Sincos(2 * math.Pi * float64(i%segments) / float64(segments))
		return mgl64.Vec3{r * c, r * s, z}
	}
	side := func(i int) mgl64.Vec3 {
		s, c := math.Sincos(2 * math.Pi * float64(i%segments) / float64(segments))
		return mgl64.Vec3{h * c, h * s, r0 - r1}.Normalize()
	}
	bottom, top := mgl64.Vec3{0, 0, z0}, mgl64.Vec3{0, 0, z1}
	down, up := mgl64.Vec3{0, 0, -1}, mgl64.Vec3{0, 0, 1}

	for i := 0; i < segments; i++ {
		j := i + 1
		bi, bj := ring(r0, z0, i), ring(r0, z0, j)
		ti, tj := ring(r1, z1, i), ring(r1, z1, j)
		ni, nj := side(i), side(j)

		switch {
		case r1 == 0:
			m.tri(bi, bj, top, ni, nj, ni.Add(nj).Normalize())
		case r0 == 0:
			m.tri(bottom, tj, ti, ni.Add(nj).Normalize(), nj, ni)
		default:
			m.tri(bi, bj, tj, ni, nj, nj)
			m.tri(bi, tj, ti, ni, nj, ni)
		}
		if r0 > 0 {
			m.flat(bottom, bj, bi, down)
		}
		if r1 > 0 {
			m.flat(top, ti, tj, up)
		}
	}
	return m.done()
}
