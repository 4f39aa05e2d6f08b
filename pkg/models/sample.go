package models

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/taigrr/phong/pkg/math3d"
)

// Load picks a loader from the file extension.
func Load(path string) (*Mesh, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return LoadOBJ(path)
	case ".glb", ".gltf":
		return LoadGLB(path)
	default:
		return nil, fmt.Errorf("unsupported model format %q (want .obj, .glb or .gltf)", filepath.Ext(path))
	}
}

// Sphere builds a unit UV sphere with smooth normals. The caps are
// triangles and every other band is made of quads.
func Sphere(stacks, slices int) (*Mesh, error) {
	if stacks < 2 || slices < 3 {
		return nil, &math3d.DegenerateError{
			Op:     "sphere",
			Reason: fmt.Sprintf("need at least 2 stacks and 3 slices, got %d and %d", stacks, slices),
		}
	}

	mesh := NewMesh(fmt.Sprintf("sphere-%dx%d", stacks, slices))

	// north pole, interior rings, south pole
	mesh.Positions = append(mesh.Positions, math3d.V3(0, 1, 0))
	for i := 1; i < stacks; i++ {
		phi := math.Pi * float64(i) / float64(stacks)
		y, r := math.Cos(phi), math.Sin(phi)
		for j := range slices {
			theta := 2 * math.Pi * float64(j) / float64(slices)
			mesh.Positions = append(mesh.Positions, math3d.V3(r*math.Cos(theta), y, r*math.Sin(theta)))
		}
	}
	mesh.Positions = append(mesh.Positions, math3d.V3(0, -1, 0))
	mesh.Normals = append(mesh.Normals, mesh.Positions...)

	north, south := 1, len(mesh.Positions)
	ring := func(i, j int) int { // 1-based index of ring i (1..stacks-1), slice j
		return 2 + (i-1)*slices + j%slices
	}
	corners := func(idx ...int) Face {
		f := Face{Corners: make([]Corner, len(idx))}
		for k, v := range idx {
			f.Corners[k] = Corner{Vertex: v, Normal: v}
		}
		return f
	}

	for j := range slices {
		mesh.Faces = append(mesh.Faces, corners(north, ring(1, j+1), ring(1, j)))
	}
	for i := 1; i < stacks-1; i++ {
		for j := range slices {
			mesh.Faces = append(mesh.Faces, corners(ring(i, j), ring(i, j+1), ring(i+1, j+1), ring(i+1, j)))
		}
	}
	for j := range slices {
		mesh.Faces = append(mesh.Faces, corners(south, ring(stacks-1, j), ring(stacks-1, j+1)))
	}

	mesh.CalculateBounds()
	return mesh, nil
}
