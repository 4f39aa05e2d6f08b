package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/phong/pkg/math3d"
)

func TestLoadOBJCube(t *testing.T) {
	mesh, err := LoadOBJ("testdata/cube.obj")
	require.NoError(t, err)

	assert.Equal(t, "cube.obj", mesh.Name)
	assert.Len(t, mesh.Positions, 8)
	assert.Len(t, mesh.Normals, 6)
	assert.Equal(t, 6, mesh.FaceCount())
	assert.Equal(t, 12, mesh.TriangleCount())
	assert.Equal(t, math3d.V3(-1, -1, -1), mesh.BoundsMin)
	assert.Equal(t, math3d.V3(1, 1, 1), mesh.BoundsMax)
	require.NoError(t, mesh.Validate())

	for f := range mesh.FaceCount() {
		assert.Equal(t, 4, mesh.CornerCount(f))
	}

	p, err := mesh.Vertex(2, 1)
	require.NoError(t, err)
	assert.Equal(t, math3d.V3(1, -1, -1), p)

	n, err := mesh.Normal(2, 1)
	require.NoError(t, err)
	assert.Equal(t, math3d.V3(1, 0, 0), n)
}

func TestParseOBJRelativeIndicesAndMissingNormals(t *testing.T) {
	mesh, err := LoadOBJ("testdata/tetra.obj")
	require.NoError(t, err)
	require.NoError(t, mesh.Validate())

	assert.Equal(t, []Corner{{Vertex: 1, Normal: 1}, {Vertex: 3, Normal: 3}, {Vertex: 2, Normal: 2}},
		mesh.Faces[0].Corners)

	// every corner now has a unit normal
	for f := range mesh.FaceCount() {
		for c := range mesh.CornerCount(f) {
			n, err := mesh.Normal(f, c)
			require.NoError(t, err)
			assert.InDelta(t, 1, n.Len(), 1e-9)
		}
	}

	// the corner at the origin averages the three axis-aligned faces
	n, err := mesh.Normal(0, 0)
	require.NoError(t, err)
	assert.Less(t, n.X, 0.0)
	assert.Less(t, n.Y, 0.0)
	assert.Less(t, n.Z, 0.0)
}

func TestParseOBJCornerForms(t *testing.T) {
	src := `
v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 0
vn 0 0 1
f 1 2 3
f 1/1 2/2 3/1
f 1//1 2//1 3//1
f 1/2/1 2/1/1 3/2/1 # trailing comment
usemtl ignored
`
	mesh, err := ParseOBJ(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, 4, mesh.FaceCount())

	assert.Equal(t, 2, mesh.Faces[2].Corners[1].Vertex)
	assert.Equal(t, 1, mesh.Faces[2].Corners[1].Normal)
	assert.Equal(t, 1, mesh.Faces[3].Corners[2].Normal)
	// the first two faces had no normals and were filled
	assert.NotZero(t, mesh.Faces[0].Corners[0].Normal)
	assert.NotZero(t, mesh.Faces[1].Corners[0].Normal)

	// v/t and v/t/n keep the texture index; v and v//n leave it zero
	assert.Zero(t, mesh.Faces[0].Corners[0].Texture)
	assert.Equal(t, []int{1, 2, 1}, textures(mesh.Faces[1]))
	assert.Zero(t, mesh.Faces[2].Corners[0].Texture)
	assert.Equal(t, []int{2, 1, 2}, textures(mesh.Faces[3]))
	assert.Equal(t, Corner{Vertex: 1, Texture: 2, Normal: 1}, mesh.Faces[3].Corners[0])
}

func TestParseOBJRelativeTexture(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nvt 1 0\nvt 0 1\nf 1/-1 2/-2 3/-3\n"
	mesh, err := ParseOBJ(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2, 1}, textures(mesh.Faces[0]))
}

func textures(f Face) []int {
	out := make([]int, len(f.Corners))
	for i, c := range f.Corners {
		out[i] = c.Texture
	}
	return out
}

func TestParseOBJErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
		line    string
	}{
		{
			name:    "two corners",
			src:     "v 0 0 0\nv 1 0 0\nf 1 2\n",
			wantErr: math3d.ErrMalformedGeometry,
			line:    "line 3",
		},
		{
			name:    "position out of range",
			src:     "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n",
			wantErr: math3d.ErrIndexOutOfRange,
			line:    "line 4",
		},
		{
			name:    "zero index",
			src:     "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n",
			wantErr: math3d.ErrIndexOutOfRange,
			line:    "line 4",
		},
		{
			name:    "normal out of range",
			src:     "v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 1\nf 1//1 2//2 3//1\n",
			wantErr: math3d.ErrIndexOutOfRange,
			line:    "line 5",
		},
		{
			name:    "short vertex",
			src:     "v 0 0\n",
			wantErr: math3d.ErrInvalidDimension,
			line:    "line 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOBJ(strings.NewReader(tt.src))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.line)
		})
	}

	_, err := ParseOBJ(strings.NewReader("v 0 zero 0\n"))
	assert.Error(t, err)
}

func TestLoadDispatch(t *testing.T) {
	mesh, err := Load("testdata/cube.obj")
	require.NoError(t, err)
	assert.Equal(t, 6, mesh.FaceCount())

	_, err = Load("model.stl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported model format")
}
