package kernel

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/perryiv/cadkit-sub042/pkg/scene"
)

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name"`     // path of the source shape
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Bounds returns the axis-aligned extent of the vertices. ok is false for an
// empty mesh.
func (m *Mesh) Bounds() (lo, hi mgl64.Vec3, ok bool) {
	if m.IsEmpty() {
		return lo, hi, false
	}
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		v := mgl64.Vec3{float64(m.Vertices[i]), float64(m.Vertices[i+1]), float64(m.Vertices[i+2])}
		if i == 0 {
			lo, hi = v, v
			continue
		}
		for j := range 3 {
			lo[j] = min(lo[j], v[j])
			hi[j] = max(hi[j], v[j])
		}
	}
	return lo, hi, true
}

// FromGeometry flattens pooled scene geometry into a mesh placed by m. Each
// triangle corner becomes its own vertex so it keeps its own normal.
func FromGeometry(g *scene.Geometry, m mgl64.Mat4) *Mesh {
	n := len(g.Indices)
	out := &Mesh{
		Vertices: make([]float32, 0, n*3),
		Normals:  make([]float32, 0, n*3),
		Indices:  make([]uint32, 0, n),
	}
	normalMat := mgl64.Mat4Normal(m)
	for i, vi := range g.Indices {
		v := mgl64.TransformCoordinate(g.Vertices[vi], m)
		var nrm mgl64.Vec3
		if i < len(g.NormalIndices) {
			nrm = normalMat.Mul3x1(g.Normals[g.NormalIndices[i]]).Normalize()
		}
		out.Vertices = append(out.Vertices, float32(v.X()), float32(v.Y()), float32(v.Z()))
		out.Normals = append(out.Normals, float32(nrm.X()), float32(nrm.Y()), float32(nrm.Z()))
		out.Indices = append(out.Indices, uint32(i))
	}
	return out
}

// VertexNormals averages the face normals around each vertex, weighting by
// face area. It serves kernels whose meshes come without normals.
func VertexNormals(vertices []float32, indices []uint32) []float32 {
	at := func(i uint32) mgl64.Vec3 {
		return mgl64.Vec3{float64(vertices[i*3]), float64(vertices[i*3+1]), float64(vertices[i*3+2])}
	}
	acc := make([]mgl64.Vec3, len(vertices)/3)
	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		a := at(i0)
		face := at(i1).Sub(a).Cross(at(i2).Sub(a))
		for _, i := range [3]uint32{i0, i1, i2} {
			acc[i] = acc[i].Add(face)
		}
	}
	out := make([]float32, len(vertices))
	for i, n := range acc {
		if n.Len() < 1e-12 {
			continue
		}
		n = n.Normalize()
		out[i*3], out[i*3+1], out[i*3+2] = float32(n.X()), float32(n.Y()), float32(n.Z())
	}
	return out
}
