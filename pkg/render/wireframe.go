package render

import (
	"fmt"
	"math"
)

// pixelSetter is the part of a Presenter line drawing needs.
type pixelSetter interface {
	SetPixel(x, y int, c Color)
}

// drawLine draws a line from (x0, y0) to (x1, y1) using Bresenham's
// algorithm. Out-of-range pixels are left to the setter to discard.
func drawLine(dst pixelSetter, x0, y0, x1, y1 int, c Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		dst.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// DrawWireframe draws the outline of every face of m without depth testing
// or shading. Edges are the polygon's own sides, not the fan diagonals.
// It runs on the calling goroutine.
func (r *Renderer) DrawWireframe(m Model, cfg FrameConfig) error {
	proj, err := NewProjection(cfg.Camera, r.surface.Width(), r.surface.Height(), r.depth)
	if err != nil {
		return err
	}

	// far off-screen endpoints would make Bresenham walk millions of pixels
	limit := 4 * float64(max(r.surface.Width(), r.surface.Height()))

	type corner struct {
		x, y int
		ok   bool
	}
	var pts []corner
	for face := range m.FaceCount() {
		n := m.CornerCount(face)
		if n < 2 {
			continue
		}
		pts = pts[:0]
		for c := range n {
			p, err := m.Vertex(face, c)
			if err != nil {
				return fmt.Errorf("face %d: %w", face, err)
			}
			s := proj.Point(p)
			ok := math.Abs(s.X) <= limit && math.Abs(s.Y) <= limit
			if !ok {
				pts = append(pts, corner{})
				continue
			}
			pts = append(pts, corner{int(math.Round(s.X)), int(math.Round(s.Y)), true})
		}
		// an edge with an unusable endpoint is dropped, its neighbors are not
		// joined in its place
		for i := range pts {
			a, b := pts[i], pts[(i+1)%len(pts)]
			if !a.ok || !b.ok {
				continue
			}
			drawLine(r.surface.out, a.x, a.y, b.x, b.y, cfg.Color)
		}
	}
	return nil
}
