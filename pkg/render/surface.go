package render

import (
	"image"
	"math"
	"sync"
)

// TileSize is the edge length in pixels of the square regions a Surface
// locks independently and tile dispatch hands to one task.
const TileSize = 64

// DepthTest decides whether an incoming fragment replaces the stored one.
// A Surface keeps one rule for its lifetime.
type DepthTest int

const (
	// DepthGreater keeps the largest depth. The buffer clears to -Inf.
	DepthGreater DepthTest = iota
	// DepthLess keeps the smallest depth. The buffer clears to +Inf.
	DepthLess
)

func (d DepthTest) String() string {
	switch d {
	case DepthGreater:
		return "greater"
	case DepthLess:
		return "less"
	default:
		return "unknown"
	}
}

// Sentinel returns the value the depth buffer is reset to.
func (d DepthTest) Sentinel() float64 {
	if d == DepthLess {
		return math.Inf(1)
	}
	return math.Inf(-1)
}

// Pass reports whether z wins over stored. Ties pass.
func (d DepthTest) Pass(z, stored float64) bool {
	if d == DepthLess {
		return z <= stored
	}
	return z >= stored
}

// Surface pairs a depth buffer with a Presenter. Plot is safe for
// concurrent use: the depth test, depth write and pixel write for a pixel
// happen under the lock of the tile containing it.
type Surface struct {
	out           Presenter
	width, height int
	test          DepthTest
	depth         []float64

	tilesX, tilesY int
	locks          []sync.Mutex
}

// NewSurface creates a surface sized to out with a cleared depth buffer.
func NewSurface(out Presenter, test DepthTest) *Surface {
	w, h := out.Size()
	tx := (w + TileSize - 1) / TileSize
	ty := (h + TileSize - 1) / TileSize
	s := &Surface{
		out:    out,
		width:  w,
		height: h,
		test:   test,
		depth:  make([]float64, w*h),
		tilesX: tx,
		tilesY: ty,
		locks:  make([]sync.Mutex, tx*ty),
	}
	s.clearDepth()
	return s
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.width }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.height }

// DepthTest returns the surface's depth rule.
func (s *Surface) DepthTest() DepthTest { return s.test }

// Bounds returns the pixel rectangle of the surface.
func (s *Surface) Bounds() image.Rectangle { return image.Rect(0, 0, s.width, s.height) }

// Depth returns the stored depth at (x, y), or the sentinel outside the
// surface.
func (s *Surface) Depth(x, y int) float64 {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return s.test.Sentinel()
	}
	return s.depth[y*s.width+x]
}

// Plot depth-tests z at (x, y) and, if it passes, stores z and writes c.
// It reports whether the pixel was written.
func (s *Surface) Plot(x, y int, z float64, c Color) bool {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return false
	}
	mu := &s.locks[(y/TileSize)*s.tilesX+x/TileSize]
	mu.Lock()
	ok := s.plot(x, y, z, c)
	mu.Unlock()
	return ok
}

// plot is Plot without locking. The caller must own the pixel's tile and
// have checked bounds.
func (s *Surface) plot(x, y int, z float64, c Color) bool {
	i := y*s.width + x
	if !s.test.Pass(z, s.depth[i]) {
		return false
	}
	s.depth[i] = z
	s.out.SetPixel(x, y, c)
	return true
}

// Tiles returns the tile grid dimensions.
func (s *Surface) Tiles() (cols, rows int) { return s.tilesX, s.tilesY }

// TileBounds returns the pixel rectangle of tile (tx, ty). Edge tiles are
// cut to the surface.
func (s *Surface) TileBounds(tx, ty int) image.Rectangle {
	r := image.Rect(tx*TileSize, ty*TileSize, (tx+1)*TileSize, (ty+1)*TileSize)
	return r.Intersect(s.Bounds())
}

func (s *Surface) clearDepth() {
	n := len(s.depth)
	if n == 0 {
		return
	}
	s.depth[0] = s.test.Sentinel()
	for i := 1; i < n; i *= 2 {
		copy(s.depth[i:], s.depth[:i])
	}
}

// Clear resets the depth buffer and clears the presenter. It must not run
// concurrently with Plot.
func (s *Surface) Clear() {
	s.clearDepth()
	s.out.Clear()
}

// Present forwards the finished frame to the presenter.
func (s *Surface) Present() error {
	return s.out.Present()
}
