package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/phong/pkg/math3d"
)

// LoadOBJ reads a Wavefront OBJ file. Corners without normals get smooth
// normals from FillNormals.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh, err := ParseOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	mesh.Name = filepath.Base(path)
	return mesh, nil
}

// ParseOBJ reads OBJ geometry from r. It understands v, vt, vn and f
// statements; corners may be written v, v/t, v//n or v/t/n and indices may
// be negative (relative to the end of the list so far). Everything else is
// ignored.
func ParseOBJ(r io.Reader) (*Mesh, error) {
	mesh := NewMesh("")
	texCoords := 0

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			p, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: vertex: %w", line, err)
			}
			mesh.Positions = append(mesh.Positions, p)
		case "vn":
			n, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: normal: %w", line, err)
			}
			mesh.Normals = append(mesh.Normals, n)
		case "vt":
			// only counted; corners keep the index
			texCoords++
		case "f":
			face, err := parseFace(fields[1:], len(mesh.Positions), texCoords, len(mesh.Normals))
			if err != nil {
				return nil, fmt.Errorf("line %d: face: %w", line, err)
			}
			if len(face.Corners) < 3 {
				return nil, fmt.Errorf("line %d: %w", line,
					&math3d.GeometryError{Face: len(mesh.Faces), Corners: len(face.Corners)})
			}
			mesh.Faces = append(mesh.Faces, face)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	mesh.FillNormals()
	mesh.CalculateBounds()
	return mesh, nil
}

func parseVec3(fields []string) (math3d.Vec3, error) {
	if len(fields) < 3 {
		return math3d.Vec3{}, &math3d.DimensionError{Op: "parse vec3", Want: "3 components", Got: strconv.Itoa(len(fields))}
	}
	var xyz [3]float64
	for i := range 3 {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return math3d.Vec3{}, err
		}
		xyz[i] = v
	}
	return math3d.V3(xyz[0], xyz[1], xyz[2]), nil
}

func parseFace(fields []string, positions, texCoords, normals int) (Face, error) {
	face := Face{Corners: make([]Corner, 0, len(fields))}
	for _, field := range fields {
		parts := strings.Split(field, "/")
		if len(parts) > 3 {
			return Face{}, fmt.Errorf("corner %q: too many components", field)
		}

		v, err := resolveIndex(parts[0], positions, "position")
		if err != nil {
			return Face{}, fmt.Errorf("corner %q: %w", field, err)
		}
		c := Corner{Vertex: v}

		if len(parts) > 1 && parts[1] != "" {
			vt, err := resolveIndex(parts[1], texCoords, "texcoord")
			if err != nil {
				return Face{}, fmt.Errorf("corner %q: %w", field, err)
			}
			c.Texture = vt
		}
		if len(parts) > 2 && parts[2] != "" {
			n, err := resolveIndex(parts[2], normals, "normal")
			if err != nil {
				return Face{}, fmt.Errorf("corner %q: %w", field, err)
			}
			c.Normal = n
		}
		face.Corners = append(face.Corners, c)
	}
	return face, nil
}

// resolveIndex turns an OBJ index into a 1-based index into a list of
// length n.
func resolveIndex(s string, n int, what string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s index: %w", what, err)
	}
	if i < 0 {
		i = n + i + 1
	}
	if i < 1 || i > n {
		return 0, &math3d.IndexError{Op: what + " index", Index: i, Len: n}
	}
	return i, nil
}
