package render

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/phong/pkg/math3d"
	"github.com/taigrr/phong/pkg/models"
)

func TestProjectionPoints(t *testing.T) {
	cam := Camera{Position: math3d.V3(0, 0, 3)}
	proj, err := NewProjection(cam, 900, 900, 900)
	if err != nil {
		t.Fatalf("NewProjection failed: %v", err)
	}

	tests := []struct {
		name     string
		in       math3d.Vec3
		expected math3d.Vec3
	}{
		{"origin", math3d.V3(0, 0, 0), math3d.V3(450, 450, 1125)},
		{"up is screen up", math3d.V3(0, 1, 0), math3d.V3(450, 225, 1125)},
		{"near right", math3d.V3(1, 0, -1), math3d.V3(720, 450, 990)},
		{"far right", math3d.V3(1, 0, 1), math3d.V3(4500.0/7, 450, 8550.0/7)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := proj.Point(tc.in)
			if got.Sub(tc.expected).Len() > 1e-6 {
				t.Errorf("Expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestPerspectiveZeroZ(t *testing.T) {
	cam := Camera{Position: math3d.V3(1, 2, 0)}
	if _, err := cam.Perspective(); !errors.Is(err, math3d.ErrDegenerate) {
		t.Errorf("Expected ErrDegenerate, got %v", err)
	}
	if _, err := NewProjection(cam, 10, 10, 10); !errors.Is(err, math3d.ErrDegenerate) {
		t.Errorf("Expected ErrDegenerate from NewProjection, got %v", err)
	}
}

func TestProjectionSingularViewport(t *testing.T) {
	cam := Camera{Position: math3d.V3(0, 0, 3)}
	_, err := NewProjection(cam, 0, 100, 100)
	if !errors.Is(err, math3d.ErrDegenerate) {
		t.Errorf("Zero width should give a singular transform, got %v", err)
	}
}

func TestCameraBasis(t *testing.T) {
	cams := []Camera{
		{},
		{Yaw: math.Pi / 8},
		{Yaw: 1.2, Pitch: -0.4},
		{Yaw: -2, Pitch: 0.9},
	}

	for _, cam := range cams {
		r, u, f := cam.Basis()
		for name, v := range map[string]math3d.Vec3{"right": r, "up": u, "forward": f} {
			if math.Abs(v.Len()-1) > 1e-9 {
				t.Errorf("%+v: %s not unit length: %v", cam, name, v)
			}
		}
		if math.Abs(r.Dot(u)) > 1e-9 || math.Abs(r.Dot(f)) > 1e-9 || math.Abs(u.Dot(f)) > 1e-9 {
			t.Errorf("%+v: basis not orthogonal", cam)
		}
	}

	r, u, f := Camera{}.Basis()
	if r != math3d.V3(1, 0, 0) || u != math3d.V3(0, 1, 0) || f != math3d.V3(0, 0, 1) {
		t.Errorf("Default basis wrong: %v %v %v", r, u, f)
	}
}

func TestCameraDepthTest(t *testing.T) {
	if got := (Camera{Position: math3d.V3(0, 0, 3)}).DepthTest(); got != DepthLess {
		t.Errorf("Positive z: expected %v, got %v", DepthLess, got)
	}
	if got := (Camera{Position: math3d.V3(0, 0, -3)}).DepthTest(); got != DepthGreater {
		t.Errorf("Negative z: expected %v, got %v", DepthGreater, got)
	}
}

func TestCameraHeadOnLight(t *testing.T) {
	for _, z := range []float64{3, -3, 0.5, -0.5, -1.5, -10} {
		cam := Camera{Position: math3d.V3(0, 0, z)}
		light, err := cam.HeadOnLight()
		if err != nil {
			t.Fatalf("z=%g: HeadOnLight failed: %v", z, err)
		}
		proj, err := NewProjection(cam, 100, 100, 100)
		if err != nil {
			t.Fatalf("NewProjection failed: %v", err)
		}
		// the eye sits at world (0, 0, -z)
		facing := math3d.V3(0, 0, -math.Copysign(1, z))
		n := proj.Normal(facing)
		if got := n.Dot(light.Negate()); got <= 0 {
			t.Errorf("z=%g: facing normal %v gets intensity %f under %v", z, n, got, light)
		}
	}

	if got, _ := (Camera{Position: math3d.V3(0, 0, 3)}).HeadOnLight(); got != math3d.V3(0, 0, 1) {
		t.Errorf("z=3: expected (0,0,1), got %v", got)
	}
	if got, _ := (Camera{Position: math3d.V3(0, 0, -3)}).HeadOnLight(); got != math3d.V3(0, 0, -1) {
		t.Errorf("z=-3: expected (0,0,-1), got %v", got)
	}
	if _, err := (Camera{}).HeadOnLight(); !errors.Is(err, math3d.ErrDegenerate) {
		t.Errorf("z=0: expected ErrDegenerate, got %v", err)
	}
}

func TestProjectionNormal(t *testing.T) {
	proj, err := NewProjection(Camera{Position: math3d.V3(0, 0, 3), Yaw: 0.3}, 200, 100, 100)
	if err != nil {
		t.Fatalf("NewProjection failed: %v", err)
	}
	for _, n := range []math3d.Vec3{math3d.V3(1, 0, 0), math3d.V3(0, 1, 0), math3d.V3(0.5, 0.5, 0.7)} {
		if got := proj.Normal(n); math.Abs(got.Len()-1) > 1e-9 {
			t.Errorf("Normal(%v) not unit length: %v", n, got)
		}
	}
}

func pentagon() *models.Mesh {
	m := models.NewMesh("pentagon")
	for i := range 5 {
		a := 2 * math.Pi * float64(i) / 5
		m.Positions = append(m.Positions, math3d.V3(math.Cos(a), math.Sin(a), 0))
	}
	m.Normals = []math3d.Vec3{math3d.V3(0, 0, 1)}
	face := models.Face{}
	for i := range 5 {
		face.Corners = append(face.Corners, models.Corner{Vertex: i + 1, Normal: 1})
	}
	m.Faces = []models.Face{face}
	m.CalculateBounds()
	return m
}

func TestProjectionFaceFan(t *testing.T) {
	proj, err := NewProjection(Camera{Position: math3d.V3(0, 0, 3)}, 100, 100, 100)
	if err != nil {
		t.Fatalf("NewProjection failed: %v", err)
	}
	m := pentagon()

	tris, err := proj.Face(m, 0, nil)
	if err != nil {
		t.Fatalf("Face failed: %v", err)
	}
	if len(tris) != 3 {
		t.Fatalf("Expected 3 triangles, got %d", len(tris))
	}

	v0 := proj.Point(m.Positions[0])
	for i, tri := range tris {
		if tri.V[0].Position != v0 {
			t.Errorf("Triangle %d does not start at corner 0", i)
		}
		want := proj.Point(m.Positions[i+2])
		if tri.V[2].Position != want {
			t.Errorf("Triangle %d: third vertex should be corner %d", i, i+2)
		}
	}
}

func TestProjectionFaceTooFewCorners(t *testing.T) {
	proj, err := NewProjection(Camera{Position: math3d.V3(0, 0, 3)}, 100, 100, 100)
	if err != nil {
		t.Fatalf("NewProjection failed: %v", err)
	}
	m := pentagon()
	m.Faces[0].Corners = m.Faces[0].Corners[:2]

	tris, err := proj.Face(m, 0, nil)
	if !errors.Is(err, math3d.ErrMalformedGeometry) {
		t.Errorf("Expected ErrMalformedGeometry, got %v", err)
	}
	if len(tris) != 0 {
		t.Errorf("Expected no triangles, got %d", len(tris))
	}

	var gerr *math3d.GeometryError
	if !errors.As(err, &gerr) || gerr.Corners != 2 {
		t.Errorf("Expected GeometryError with 2 corners, got %v", err)
	}
}
