//go:build manifold

package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/perryiv/cadkit-sub042/pkg/kernel"
)

var _ kernel.Kernel = (*ManifoldKernel)(nil)
var _ kernel.Solid = (*manifoldSolid)(nil)

// manifoldSolid owns a C ManifoldManifold; a finalizer frees it.
type manifoldSolid struct {
	ptr *C.ManifoldManifold
}

func (s *manifoldSolid) BoundingBox() (min, max mgl64.Vec3) {
	bbox := C.manifold_bounding_box(C.manifold_alloc_box(), s.ptr)
	defer C.manifold_delete_box(bbox)

	min = mgl64.Vec3{
		float64(C.manifold_box_min_x(bbox)),
		float64(C.manifold_box_min_y(bbox)),
		float64(C.manifold_box_min_z(bbox)),
	}
	max = mgl64.Vec3{
		float64(C.manifold_box_max_x(bbox)),
		float64(C.manifold_box_max_y(bbox)),
		float64(C.manifold_box_max_z(bbox)),
	}
	return min, max
}

func newSolid(ptr *C.ManifoldManifold) (kernel.Solid, error) {
	if ptr == nil {
		return nil, errors.New("manifold: allocation failed")
	}
	s := &manifoldSolid{ptr: ptr}
	runtime.SetFinalizer(s, func(s *manifoldSolid) {
		if s.ptr != nil {
			C.manifold_delete_manifold(s.ptr)
			s.ptr = nil
		}
	})
	return s, nil
}

func mustSolid(ptr *C.ManifoldManifold) kernel.Solid {
	s, err := newSolid(ptr)
	if err != nil {
		panic(err)
	}
	return s
}

func unwrap(s kernel.Solid) *C.ManifoldManifold {
	return s.(*manifoldSolid).ptr
}

// ManifoldKernel builds exact polyhedral solids. Round bodies use segments
// around their circumference.
type ManifoldKernel struct {
	segments int
}

// New returns a kernel tessellating round bodies with the given number of
// segments; values below 3 select DefaultSegments.
func New(segments int) (kernel.Kernel, error) {
	if segments < 3 {
		segments = DefaultSegments
	}
	return &ManifoldKernel{segments: segments}, nil
}

func (k *ManifoldKernel) Box(x, y, z float64) (kernel.Solid, error) {
	ptr := C.manifold_cube(C.manifold_alloc_manifold(),
		C.double(x), C.double(y), C.double(z),
		C.int(1), // centered
	)
	return newSolid(ptr)
}

func (k *ManifoldKernel) Sphere(radius float64) (kernel.Solid, error) {
	ptr := C.manifold_sphere(C.manifold_alloc_manifold(), C.double(radius), C.int(k.segments))
	return newSolid(ptr)
}

func (k *ManifoldKernel) Cylinder(height, radius float64) (kernel.Solid, error) {
	return k.Cone(height, radius, radius)
}

func (k *ManifoldKernel) Cone(height, bottomRadius, topRadius float64) (kernel.Solid, error) {
	ptr := C.manifold_cylinder(C.manifold_alloc_manifold(),
		C.double(height),
		C.double(bottomRadius),
		C.double(topRadius),
		C.int(k.segments),
		C.int(1), // centered
	)
	return newSolid(ptr)
}

func (k *ManifoldKernel) Union(solids ...kernel.Solid) (kernel.Solid, error) {
	switch len(solids) {
	case 0:
		return nil, fmt.Errorf("manifold union: no solids")
	case 1:
		return solids[0], nil
	}
	acc := solids[0]
	for _, s := range solids[1:] {
		next, err := newSolid(C.manifold_union(C.manifold_alloc_manifold(), unwrap(acc), unwrap(s)))
		if err != nil {
			return nil, err
		}
		acc = next
	}
	return acc, nil
}

func (k *ManifoldKernel) Translate(s kernel.Solid, v mgl64.Vec3) kernel.Solid {
	return mustSolid(C.manifold_translate(C.manifold_alloc_manifold(), unwrap(s),
		C.double(v.X()), C.double(v.Y()), C.double(v.Z()),
	))
}

// Rotate applies an axis-angle rotation as a 4x3 affine matrix, columns
// first, the layout manifold_transform takes.
func (k *ManifoldKernel) Rotate(s kernel.Solid, axis mgl64.Vec3, radians float64) kernel.Solid {
	if axis.Len() == 0 || radians == 0 {
		return s
	}
	m := mgl64.HomogRotate3D(radians, axis.Normalize())
	c := func(col, row int) C.double { return C.double(m.At(row, col)) }
	return mustSolid(C.manifold_transform(C.manifold_alloc_manifold(), unwrap(s),
		c(0, 0), c(0, 1), c(0, 2),
		c(1, 0), c(1, 1), c(1, 2),
		c(2, 0), c(2, 1), c(2, 2),
		c(3, 0), c(3, 1), c(3, 2),
	))
}

// ToMesh copies Manifold's MeshGL into a kernel.Mesh. MeshGL interleaves
// per-vertex properties; the first three are the position and, when there
// are six or more, the next three are the normal.
func (k *ManifoldKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	meshGL := C.manifold_get_meshgl(C.manifold_alloc_meshgl(), unwrap(s))
	defer C.manifold_delete_meshgl(meshGL)

	numVert := int(C.manifold_meshgl_num_vert(meshGL))
	numTri := int(C.manifold_meshgl_num_tri(meshGL))
	if numVert == 0 || numTri == 0 {
		return nil, errors.New("manifold: mesh has no triangles")
	}
	numProp := int(C.manifold_meshgl_num_prop(meshGL))

	props := make([]float32, numVert*numProp)
	C.manifold_meshgl_vert_properties((*C.float)(unsafe.Pointer(&props[0])), meshGL)

	indices := make([]uint32, numTri*3)
	C.manifold_meshgl_tri_verts((*C.uint32_t)(unsafe.Pointer(&indices[0])), meshGL)

	vertices := make([]float32, numVert*3)
	for i := 0; i < numVert; i++ {
		copy(vertices[i*3:i*3+3], props[i*numProp:i*numProp+3])
	}

	var normals []float32
	if numProp >= 6 {
		normals = make([]float32, numVert*3)
		for i := 0; i < numVert; i++ {
			copy(normals[i*3:i*3+3], props[i*numProp+3:i*numProp+6])
		}
	} else {
		normals = kernel.VertexNormals(vertices, indices)
	}

	return &kernel.Mesh{Vertices: vertices, Normals: normals, Indices: indices}, nil
}
