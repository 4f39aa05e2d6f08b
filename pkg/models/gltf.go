package models

import (
	"fmt"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/phong/pkg/math3d"
)

// LoadGLB loads the triangle geometry of a glTF or GLB file. Every mesh and
// primitive in the document is merged into one Mesh; node transforms are
// not applied.
func LoadGLB(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh, err := FromGLTF(doc)
	if err != nil {
		return nil, err
	}
	mesh.Name = filepath.Base(path)
	return mesh, nil
}

// FromGLTF converts an already decoded glTF document.
func FromGLTF(doc *gltf.Document) (*Mesh, error) {
	mesh := NewMesh("")

	for _, m := range doc.Meshes {
		for i, prim := range m.Primitives {
			if err := addPrimitive(doc, prim, mesh); err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d: %w", m.Name, i, err)
			}
		}
	}
	if len(mesh.Faces) == 0 {
		return nil, fmt.Errorf("gltf: %w: no triangle primitives", math3d.ErrMalformedGeometry)
	}

	mesh.FillNormals()
	mesh.CalculateBounds()
	return mesh, nil
}

func addPrimitive(doc *gltf.Document, prim *gltf.Primitive, mesh *Mesh) error {
	if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
		// lines, points, strips and fans are skipped
		return nil
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return fmt.Errorf("read positions: %w", err)
	}

	var normals [][3]float32
	if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err = modeler.ReadNormal(doc, doc.Accessors[normIdx], nil)
		if err != nil {
			return fmt.Errorf("read normals: %w", err)
		}
		if len(normals) != len(positions) {
			normals = nil
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return fmt.Errorf("read indices: %w", err)
		}
	} else {
		// no indices, sequential triangles
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	baseVertex := len(mesh.Positions)
	baseNormal := len(mesh.Normals)
	for _, p := range positions {
		mesh.Positions = append(mesh.Positions, vec3(p))
	}
	for _, n := range normals {
		mesh.Normals = append(mesh.Normals, vec3(n))
	}

	for i := 0; i+2 < len(indices); i += 3 {
		face := Face{Corners: make([]Corner, 3)}
		for j := range 3 {
			idx := int(indices[i+j])
			if idx >= len(positions) {
				return &math3d.IndexError{Op: "gltf index", Index: idx, Len: len(positions)}
			}
			face.Corners[j].Vertex = baseVertex + idx + 1
			if normals != nil {
				face.Corners[j].Normal = baseNormal + idx + 1
			}
		}
		mesh.Faces = append(mesh.Faces, face)
	}
	return nil
}

func vec3(f [3]float32) math3d.Vec3 {
	return math3d.V3(float64(f[0]), float64(f[1]), float64(f[2]))
}
