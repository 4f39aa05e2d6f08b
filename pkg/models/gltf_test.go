package models

import (
	"errors"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/phong/pkg/math3d"
)

func TestLoadGLBInvalidPath(t *testing.T) {
	_, err := LoadGLB("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func quadDocument(withNormals bool) *gltf.Document {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2, 0, 2, 3})

	attrs := map[string]int{gltf.POSITION: pos}
	if withNormals {
		attrs[gltf.NORMAL] = modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	}
	doc.Meshes = []*gltf.Mesh{{
		Name: "quad",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: attrs,
		}},
	}}
	return doc
}

func TestFromGLTF(t *testing.T) {
	mesh, err := FromGLTF(quadDocument(true))
	if err != nil {
		t.Fatalf("FromGLTF: %v", err)
	}

	if mesh.FaceCount() != 2 {
		t.Fatalf("Expected 2 faces, got %d", mesh.FaceCount())
	}
	if len(mesh.Positions) != 4 || len(mesh.Normals) != 4 {
		t.Errorf("Expected 4 positions and normals, got %d and %d", len(mesh.Positions), len(mesh.Normals))
	}

	p, err := mesh.Vertex(1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if p != math3d.V3(0, 1, 0) {
		t.Errorf("Face 1 corner 2: expected (0,1,0), got %v", p)
	}

	n, err := mesh.Normal(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if n != math3d.V3(0, 0, 1) {
		t.Errorf("Expected normal (0,0,1), got %v", n)
	}
	if mesh.BoundsMax != math3d.V3(1, 1, 0) {
		t.Errorf("Unexpected bounds max %v", mesh.BoundsMax)
	}
}

func TestFromGLTFFillsNormals(t *testing.T) {
	mesh, err := FromGLTF(quadDocument(false))
	if err != nil {
		t.Fatalf("FromGLTF: %v", err)
	}
	if err := mesh.Validate(); err != nil {
		t.Fatal(err)
	}
	for f := range mesh.FaceCount() {
		for c := range mesh.CornerCount(f) {
			n, err := mesh.Normal(f, c)
			if err != nil {
				t.Fatal(err)
			}
			if n.Z < 0.999 {
				t.Errorf("Face %d corner %d: expected +Z normal, got %v", f, c, n)
			}
		}
	}
}

func TestFromGLTFEmpty(t *testing.T) {
	_, err := FromGLTF(gltf.NewDocument())
	if !errors.Is(err, math3d.ErrMalformedGeometry) {
		t.Errorf("Expected ErrMalformedGeometry, got %v", err)
	}
}
