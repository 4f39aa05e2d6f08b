package render

import (
	"fmt"

	"github.com/taigrr/phong/pkg/math3d"
)

// Camera is a yaw/pitch camera. It is a plain value so a frame can carry
// its own copy.
type Camera struct {
	// Position in world space. Z must not be zero; its sign picks which
	// side of the scene the projection center sits on.
	Position math3d.Vec3

	// Orientation (radians)
	Yaw   float64 // Rotation around Y axis (look left/right)
	Pitch float64 // Rotation around X axis (look up/down)
}

// Basis returns the camera's orthonormal right, up and forward vectors.
func (c Camera) Basis() (right, up, forward math3d.Vec3) {
	forward = math3d.ViewVector(c.Yaw, c.Pitch).Normalize()
	right = math3d.Up().Cross(forward).Normalize()
	up = forward.Cross(right).Normalize()
	return right, up, forward
}

// ModelView returns the matrix whose rows are right, up and forward with the
// camera position in the last column.
func (c Camera) ModelView() math3d.Mat4 {
	r, u, f := c.Basis()
	p := c.Position
	return math3d.Mat4FromRows(
		[4]float64{r.X, r.Y, r.Z, p.X},
		[4]float64{u.X, u.Y, u.Z, p.Y},
		[4]float64{f.X, f.Y, f.Z, p.Z},
		[4]float64{0, 0, 0, 1},
	)
}

// Perspective returns the identity with 1/Position.Z at row 3 column 2, so
// w grows with view-space z.
func (c Camera) Perspective() (math3d.Mat4, error) {
	if c.Position.Z == 0 {
		return math3d.Mat4{}, &math3d.DegenerateError{Op: "perspective", Reason: "camera z is zero"}
	}
	m := math3d.Identity()
	if err := m.Set(3, 2, 1/c.Position.Z); err != nil {
		return math3d.Mat4{}, err
	}
	return m, nil
}

// DepthTest returns the depth rule under which nearer fragments win for
// this camera. Screen depth grows with view-space z, and the projection
// center is on the -z side when Position.Z is positive.
func (c Camera) DepthTest() DepthTest {
	if c.Position.Z > 0 {
		return DepthLess
	}
	return DepthGreater
}

// HeadOnLight returns the axis light direction that lights the surface
// facing the eye for a scene around the origin. Its sign follows the screen
// normal the projection gives that surface, which does not simply track the
// sign of Position.Z.
func (c Camera) HeadOnLight() (math3d.Vec3, error) {
	proj, err := NewProjection(c, 2, 2, 2)
	if err != nil {
		return math3d.Vec3{}, err
	}
	r, u, f := c.Basis()
	p := c.Position
	eye := r.Scale(p.X).Add(u.Scale(p.Y)).Add(f.Scale(p.Z)).Negate()
	if proj.Normal(eye.Normalize()).Z < 0 {
		return math3d.V3(0, 0, 1), nil
	}
	return math3d.V3(0, 0, -1), nil
}

// Viewport maps normalized coordinates to a width×height screen with y
// pointing down and depth in [0, depth] for the unit cube.
func Viewport(width, height int, depth float64) math3d.Mat4 {
	w, h := float64(width)/2, float64(height)/2
	return math3d.Mat4FromRows(
		[4]float64{w, 0, 0, w},
		[4]float64{0, -h, 0, h},
		[4]float64{0, 0, depth / 2, depth / 2},
		[4]float64{0, 0, 0, 1},
	)
}

// Projection carries the world-to-screen transform of one frame and the
// matching transform for normals.
type Projection struct {
	Transform       math3d.Mat4
	NormalTransform math3d.Mat4
}

// NewProjection builds viewport · perspective · modelView and its inverse
// transpose. A singular transform is reported as ErrDegenerate.
func NewProjection(c Camera, width, height int, depth float64) (Projection, error) {
	persp, err := c.Perspective()
	if err != nil {
		return Projection{}, err
	}
	t := Viewport(width, height, depth).Mul(persp).Mul(c.ModelView())

	inv, err := t.Inverse()
	if err != nil {
		return Projection{}, fmt.Errorf("normal transform: %w", err)
	}
	return Projection{Transform: t, NormalTransform: inv.Transpose()}, nil
}

// Point maps a world position to screen space.
func (p Projection) Point(v math3d.Vec3) math3d.Vec3 {
	return p.Transform.MulPoint(v)
}

// Normal maps a world normal to a unit screen-space normal.
func (p Projection) Normal(n math3d.Vec3) math3d.Vec3 {
	return p.NormalTransform.MulPoint(n).Normalize()
}

// Face projects face of m and fans it into triangles (v0, v[i-1], v[i]),
// appending them to dst.
func (p Projection) Face(m Model, face int, dst []Triangle) ([]Triangle, error) {
	n := m.CornerCount(face)
	if n < 3 {
		return dst, &math3d.GeometryError{Face: face, Corners: n}
	}

	var buf [8]Vertex
	verts := buf[:0]
	for c := range n {
		pos, err := m.Vertex(face, c)
		if err != nil {
			return dst, fmt.Errorf("face %d: %w", face, err)
		}
		nrm, err := m.Normal(face, c)
		if err != nil {
			return dst, fmt.Errorf("face %d: %w", face, err)
		}
		verts = append(verts, Vertex{Position: p.Point(pos), Normal: p.Normal(nrm)})
	}

	for i := 2; i < n; i++ {
		dst = append(dst, Triangle{V: [3]Vertex{verts[0], verts[i-1], verts[i]}})
	}
	return dst, nil
}
