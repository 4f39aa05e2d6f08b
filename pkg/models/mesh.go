// Package models loads and builds polygon meshes for the renderer.
package models

import (
	"fmt"

	"github.com/taigrr/phong/pkg/math3d"
)

// Mesh is an indexed polygon mesh. Faces may have any number of corners
// (three or more); the renderer fans them into triangles.
type Mesh struct {
	Name      string
	Positions []math3d.Vec3
	Normals   []math3d.Vec3
	Faces     []Face

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// Face is one polygon of the mesh.
type Face struct {
	Corners []Corner
}

// Corner references a position and a normal of the mesh. Indices are
// 1-based; zero means the attribute is absent. Texture counts the vt
// statements of the source OBJ; the mesh keeps no texture coordinates.
type Corner struct {
	Vertex  int
	Texture int
	Normal  int
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// CornerCount returns the number of corners of face, or 0 if face is out of
// range.
func (m *Mesh) CornerCount(face int) int {
	if face < 0 || face >= len(m.Faces) {
		return 0
	}
	return len(m.Faces[face].Corners)
}

func (m *Mesh) corner(op string, face, corner int) (Corner, error) {
	if face < 0 || face >= len(m.Faces) {
		return Corner{}, &math3d.IndexError{Op: op + " face", Index: face, Len: len(m.Faces)}
	}
	cs := m.Faces[face].Corners
	if corner < 0 || corner >= len(cs) {
		return Corner{}, &math3d.IndexError{Op: op + " corner", Index: corner, Len: len(cs)}
	}
	return cs[corner], nil
}

// Vertex returns the position of a face corner.
func (m *Mesh) Vertex(face, corner int) (math3d.Vec3, error) {
	c, err := m.corner("vertex", face, corner)
	if err != nil {
		return math3d.Vec3{}, err
	}
	if c.Vertex < 1 || c.Vertex > len(m.Positions) {
		return math3d.Vec3{}, &math3d.IndexError{Op: "vertex position", Index: c.Vertex, Len: len(m.Positions)}
	}
	return m.Positions[c.Vertex-1], nil
}

// Normal returns the normal of a face corner.
func (m *Mesh) Normal(face, corner int) (math3d.Vec3, error) {
	c, err := m.corner("normal", face, corner)
	if err != nil {
		return math3d.Vec3{}, err
	}
	if c.Normal < 1 || c.Normal > len(m.Normals) {
		return math3d.Vec3{}, &math3d.IndexError{Op: "vertex normal", Index: c.Normal, Len: len(m.Normals)}
	}
	return m.Normals[c.Normal-1], nil
}

// TriangleCount returns the number of triangles the faces fan into.
func (m *Mesh) TriangleCount() int {
	n := 0
	for _, f := range m.Faces {
		if len(f.Corners) >= 3 {
			n += len(f.Corners) - 2
		}
	}
	return n
}

// Validate checks that every face has at least three corners and that all
// indices resolve.
func (m *Mesh) Validate() error {
	for i, f := range m.Faces {
		if len(f.Corners) < 3 {
			return &math3d.GeometryError{Face: i, Corners: len(f.Corners)}
		}
		for j, c := range f.Corners {
			if c.Vertex < 1 || c.Vertex > len(m.Positions) {
				return fmt.Errorf("face %d corner %d: %w", i, j,
					&math3d.IndexError{Op: "vertex position", Index: c.Vertex, Len: len(m.Positions)})
			}
			if c.Normal < 0 || c.Normal > len(m.Normals) {
				return fmt.Errorf("face %d corner %d: %w", i, j,
					&math3d.IndexError{Op: "vertex normal", Index: c.Normal, Len: len(m.Normals)})
			}
		}
	}
	return nil
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Positions) == 0 {
		return
	}

	m.BoundsMin = m.Positions[0]
	m.BoundsMax = m.Positions[0]

	for _, p := range m.Positions[1:] {
		m.BoundsMin = m.BoundsMin.Min(p)
		m.BoundsMax = m.BoundsMax.Max(p)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// FillNormals gives every corner without a normal the area-weighted average
// of the face normals around its position. Corners that already reference a
// normal are left alone.
func (m *Mesh) FillNormals() {
	missing := false
	for _, f := range m.Faces {
		for _, c := range f.Corners {
			if c.Normal == 0 {
				missing = true
			}
		}
	}
	if !missing {
		return
	}

	acc := make([]math3d.Vec3, len(m.Positions))
	for _, f := range m.Faces {
		cs := f.Corners
		if len(cs) < 3 {
			continue
		}
		p0 := m.Positions[cs[0].Vertex-1]
		for i := 2; i < len(cs); i++ {
			p1 := m.Positions[cs[i-1].Vertex-1]
			p2 := m.Positions[cs[i].Vertex-1]
			n := p1.Sub(p0).Cross(p2.Sub(p0)) // area weighted, normalized below
			acc[cs[0].Vertex-1] = acc[cs[0].Vertex-1].Add(n)
			acc[cs[i-1].Vertex-1] = acc[cs[i-1].Vertex-1].Add(n)
			acc[cs[i].Vertex-1] = acc[cs[i].Vertex-1].Add(n)
		}
	}

	// one new normal per position, appended after any existing normals
	base := len(m.Normals)
	for _, n := range acc {
		m.Normals = append(m.Normals, n.Normalize())
	}
	for i := range m.Faces {
		for j := range m.Faces[i].Corners {
			c := &m.Faces[i].Corners[j]
			if c.Normal == 0 {
				c.Normal = base + c.Vertex
			}
		}
	}
}

// Transform applies mat to every position and its inverse transpose to every
// normal.
func (m *Mesh) Transform(mat math3d.Mat4) error {
	inv, err := mat.Inverse()
	if err != nil {
		return fmt.Errorf("transform normals: %w", err)
	}
	nt := inv.Transpose()

	for i, p := range m.Positions {
		m.Positions[i] = mat.MulPoint(p)
	}
	for i, n := range m.Normals {
		m.Normals[i] = nt.MulDir(n).Normalize()
	}
	m.CalculateBounds()
	return nil
}

// Fit centers the mesh on the origin and scales it uniformly so its largest
// dimension spans [-1, 1].
func (m *Mesh) Fit() error {
	m.CalculateBounds()
	size := m.Size()
	extent := max(size.X, size.Y, size.Z)
	if extent == 0 {
		return &math3d.DegenerateError{Op: "fit mesh", Reason: "mesh has zero extent"}
	}
	return m.Transform(math3d.ScaleUniform(2 / extent).Mul(math3d.Translate(m.Center().Negate())))
}
