// Package render turns projected triangles into shaded, depth-tested pixels
// and drives a frame across a worker pool.
package render

import (
	"image"
	"math"

	"github.com/taigrr/phong/pkg/math3d"
)

// Vertex is a screen-space position with its screen-space normal.
type Vertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
}

// Triangle represents a triangle to be rasterized.
type Triangle struct {
	V [3]Vertex
}

// ShadeMode selects how the lighting normal is picked per pixel.
type ShadeMode int

const (
	// ShadePhong interpolates the vertex normals at every pixel.
	ShadePhong ShadeMode = iota
	// ShadeFlat uses the mean of the three vertex normals.
	ShadeFlat
)

func (m ShadeMode) String() string {
	switch m {
	case ShadePhong:
		return "phong"
	case ShadeFlat:
		return "flat"
	default:
		return "unknown"
	}
}

// Shading is the per-draw lighting input.
type Shading struct {
	// LightDir is the direction the light travels. A surface is lit when
	// its normal points back against it.
	LightDir math3d.Vec3
	Color    Color
	Mode     ShadeMode
}

// FillStats reports what one Fill did.
type FillStats struct {
	Culled bool // Triangle had no area in screen space
	Pixels int  // Pixels that passed the depth test and were written
}

// Rasterizer scan-converts triangles into a Surface. It holds no per-frame
// state, so one Rasterizer may be used from many goroutines.
type Rasterizer struct {
	surface *Surface
}

// NewRasterizer creates a rasterizer writing into s.
func NewRasterizer(s *Surface) *Rasterizer {
	return &Rasterizer{surface: s}
}

// Fill rasterizes tri over the whole surface using locked writes.
func (r *Rasterizer) Fill(tri Triangle, sh Shading) FillStats {
	return r.fill(tri, sh, r.surface.Bounds(), r.surface.Plot)
}

// fillOwned rasterizes the part of tri inside clip with unlocked writes.
// The caller must be the only writer to clip.
func (r *Rasterizer) fillOwned(tri Triangle, sh Shading, clip image.Rectangle) FillStats {
	return r.fill(tri, sh, clip, r.surface.plot)
}

func (r *Rasterizer) fill(tri Triangle, sh Shading, clip image.Rectangle, plot func(x, y int, z float64, c Color) bool) FillStats {
	v1, v2, v3 := tri.V[0], tri.V[1], tri.V[2]

	n := planeNormal(v1.Position, v2.Position, v3.Position)
	if n.Z == 0 {
		return FillStats{Culled: true}
	}
	// The edge test below accepts the winding whose plane normal has
	// negative z; flip the other one.
	if n.Z > 0 {
		v2, v3 = v3, v2
		n = n.Negate()
	}
	p1, p2, p3 := v1.Position, v2.Position, v3.Position

	box := pixelBounds(p1, p2, p3).Intersect(clip).Intersect(r.surface.Bounds())

	toLight := sh.LightDir.Normalize().Negate()
	area := triangleArea(p1.X, p1.Y, p2.X, p2.Y, p3.X, p3.Y)
	flat := v1.Normal.Add(v2.Normal).Add(v3.Normal).Scale(1.0 / 3).Normalize()

	var stats FillStats
	for y := box.Min.Y; y < box.Max.Y; y++ {
		py := float64(y)
		for x := box.Min.X; x < box.Max.X; x++ {
			px := float64(x)
			if !inside(p1, p2, p3, px, py) {
				continue
			}

			normal := flat
			if sh.Mode == ShadePhong {
				normal = interpolateNormal(v1, v2, v3, area, px, py)
			}
			intensity := normal.Dot(toLight)
			if intensity <= 0 {
				continue
			}

			z := planeDepth(n, p1, px, py)
			if plot(x, y, z, shade(sh.Color, intensity)) {
				stats.Pixels++
			}
		}
	}
	return stats
}

// pixelBounds returns the half-open box of integer samples that lie within
// the vertices' bounding box. Non-finite input gives an empty box.
func pixelBounds(p1, p2, p3 math3d.Vec3) image.Rectangle {
	x0, x1 := min3(p1.X, p2.X, p3.X), max3(p1.X, p2.X, p3.X)
	y0, y1 := min3(p1.Y, p2.Y, p3.Y), max3(p1.Y, p2.Y, p3.Y)
	if math.IsNaN(x0 + x1 + y0 + y1) {
		return image.Rectangle{}
	}
	return image.Rect(toInt(math.Ceil(x0)), toInt(math.Ceil(y0)), toInt(math.Floor(x1))+1, toInt(math.Floor(y1))+1)
}

// toInt converts f to int, saturating well inside the int range.
func toInt(f float64) int {
	const limit = 1 << 30
	return int(math.Max(-limit, math.Min(limit, f)))
}

// planeNormal returns cross(b-a, c-a).
func planeNormal(a, b, c math3d.Vec3) math3d.Vec3 {
	return b.Sub(a).Cross(c.Sub(a))
}

// edge is the Pineda edge expression for the edge starting at v with
// direction d = v - next.
func edge(vx, vy, dx, dy, px, py float64) float64 {
	return (py-vy)*dx - (px-vx)*dy
}

// inside reports whether (px, py) lies in the triangle or on its boundary.
// The vertices must be ordered so their plane normal has negative z.
func inside(p1, p2, p3 math3d.Vec3, px, py float64) bool {
	return edge(p1.X, p1.Y, p1.X-p2.X, p1.Y-p2.Y, px, py) >= 0 &&
		edge(p2.X, p2.Y, p2.X-p3.X, p2.Y-p3.Y, px, py) >= 0 &&
		edge(p3.X, p3.Y, p3.X-p1.X, p3.Y-p1.Y, px, py) >= 0
}

// InsideTriangle reports whether the pixel sample (px, py) is covered by
// the screen-space projection of tri, edges included. Either winding is
// accepted; degenerate triangles cover nothing.
func InsideTriangle(tri Triangle, px, py float64) bool {
	p1, p2, p3 := tri.V[0].Position, tri.V[1].Position, tri.V[2].Position
	nz := planeNormal(p1, p2, p3).Z
	if nz == 0 {
		return false
	}
	if nz > 0 {
		p2, p3 = p3, p2
	}
	return inside(p1, p2, p3, px, py)
}

// planeDepth solves the plane a(x-x0) + b(y-y0) + c(z-z0) = 0 for z.
func planeDepth(n, p0 math3d.Vec3, px, py float64) float64 {
	return (-n.X*(px-p0.X)-n.Y*(py-p0.Y))/n.Z + p0.Z
}

// triangleArea is half the determinant of
//
//	| x1 x2 x3 |
//	| y1 y2 y3 |
//	| 1  1  1  |
func triangleArea(x1, y1, x2, y2, x3, y3 float64) float64 {
	return (x1*(y2-y3) - x2*(y1-y3) + x3*(y1-y2)) / 2
}

// interpolateNormal blends the vertex normals with barycentric weights
// taken from signed sub-triangle areas.
func interpolateNormal(v1, v2, v3 Vertex, area, px, py float64) math3d.Vec3 {
	p1, p2, p3 := v1.Position, v2.Position, v3.Position
	s1 := triangleArea(px, py, p2.X, p2.Y, p3.X, p3.Y) / area
	s2 := triangleArea(p1.X, p1.Y, px, py, p3.X, p3.Y) / area
	s3 := triangleArea(p1.X, p1.Y, p2.X, p2.Y, px, py) / area
	return v1.Normal.Scale(s1).Add(v2.Normal.Scale(s2)).Add(v3.Normal.Scale(s3)).Normalize()
}

// shade scales the color channels by intensity. Alpha is always opaque.
func shade(c Color, intensity float64) Color {
	return RGB(channel(c.R, intensity), channel(c.G, intensity), channel(c.B, intensity))
}

func channel(v uint8, intensity float64) uint8 {
	f := float64(v) * intensity
	switch {
	case f <= 0:
		return 0
	case f >= 255:
		return 255
	default:
		return uint8(f)
	}
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
