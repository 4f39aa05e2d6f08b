package render

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/phong/pkg/math3d"
	"github.com/taigrr/phong/pkg/taskpool"
)

// DefaultDepth is the screen-space depth range used when Options.Depth is
// zero.
const DefaultDepth = 900.0

// Model is the geometry a Renderer draws. Corners are numbered from 0
// within each face.
type Model interface {
	FaceCount() int
	CornerCount(face int) int
	Vertex(face, corner int) (math3d.Vec3, error)
	Normal(face, corner int) (math3d.Vec3, error)
}

// Dispatch selects how fill work is split into pool tasks.
type Dispatch int

const (
	// DispatchTriangle queues one task per triangle. Writes go through the
	// surface's per-tile locks.
	DispatchTriangle Dispatch = iota
	// DispatchTile bins triangles by screen tile and queues one task per
	// non-empty tile. Each task owns its tile, so writes are unlocked.
	DispatchTile
)

func (d Dispatch) String() string {
	switch d {
	case DispatchTriangle:
		return "triangle"
	case DispatchTile:
		return "tile"
	default:
		return "unknown"
	}
}

// Options configures a Renderer.
type Options struct {
	Dispatch Dispatch
	Depth    float64 // Screen depth range; DefaultDepth if zero
	// ProjectChunk is the number of faces one projection goroutine handles.
	// Zero picks 256.
	ProjectChunk int
}

// FrameConfig is the immutable input of one DrawModel call.
type FrameConfig struct {
	Camera   Camera
	LightDir math3d.Vec3 // Direction the light travels
	Color    Color
	Shade    ShadeMode
}

// Shading returns the rasterizer input for this frame.
func (c FrameConfig) Shading() Shading {
	return Shading{LightDir: c.LightDir, Color: c.Color, Mode: c.Shade}
}

// FrameStats summarizes one DrawModel call.
type FrameStats struct {
	Faces     int
	Triangles int
	Culled    int
	Pixels    int
	Tasks     int
	Elapsed   time.Duration
}

// Renderer owns a surface, a pool and a rasterizer. It replaces any global
// render state: create one per output and pass it where frames are drawn.
// DrawModel, DrawWireframe, Clear and Present must be called from one
// goroutine at a time.
type Renderer struct {
	surface *Surface
	pool    *taskpool.Pool
	raster  *Rasterizer

	dispatch Dispatch
	depth    float64
	chunk    int

	// reused across frames
	tris []Triangle
	bins [][]int32
}

// NewRenderer creates a renderer. The pool is borrowed, not owned: the
// caller shuts it down.
func NewRenderer(s *Surface, pool *taskpool.Pool, opts Options) *Renderer {
	r := &Renderer{
		surface:  s,
		pool:     pool,
		raster:   NewRasterizer(s),
		dispatch: opts.Dispatch,
		depth:    opts.Depth,
		chunk:    opts.ProjectChunk,
	}
	if r.depth == 0 {
		r.depth = DefaultDepth
	}
	if r.chunk <= 0 {
		r.chunk = 256
	}

	cols, rows := s.Tiles()
	Logger().Info("renderer ready",
		"width", s.Width(), "height", s.Height(),
		"depth_test", s.DepthTest().String(),
		"dispatch", r.dispatch.String(),
		"workers", pool.Workers(),
		"tiles", cols*rows)
	return r
}

// Surface returns the surface the renderer draws into.
func (r *Renderer) Surface() *Surface { return r.surface }

// Clear resets depth and pixels for the next frame.
func (r *Renderer) Clear() { r.surface.Clear() }

// Present hands the finished frame to the presenter.
func (r *Renderer) Present() error { return r.surface.Present() }

// DrawModel projects every face of m, fills the resulting triangles on the
// pool and waits until all of them are written. ctx is checked before work
// is dispatched; tasks already queued always run to completion.
func (r *Renderer) DrawModel(ctx context.Context, m Model, cfg FrameConfig) (FrameStats, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return FrameStats{}, err
	}

	proj, err := NewProjection(cfg.Camera, r.surface.Width(), r.surface.Height(), r.depth)
	if err != nil {
		return FrameStats{}, fmt.Errorf("projection: %w", err)
	}

	tris, err := r.project(ctx, m, proj)
	if err != nil {
		return FrameStats{}, err
	}
	if err := ctx.Err(); err != nil {
		return FrameStats{}, err
	}

	var (
		pixels atomic.Int64
		culled atomic.Int64
		tasks  int
	)
	sh := cfg.Shading()

	switch r.dispatch {
	case DispatchTile:
		tasks, err = r.dispatchTiles(tris, sh, &pixels, &culled)
	default:
		tasks, err = r.dispatchTriangles(tris, sh, &pixels, &culled)
	}
	// whatever was queued before a failure still has to finish
	r.pool.AwaitIdle()
	if err != nil {
		return FrameStats{}, err
	}

	stats := FrameStats{
		Faces:     m.FaceCount(),
		Triangles: len(tris),
		Culled:    int(culled.Load()),
		Pixels:    int(pixels.Load()),
		Tasks:     tasks,
		Elapsed:   time.Since(start),
	}
	Logger().Debug("frame drawn",
		"faces", stats.Faces,
		"triangles", stats.Triangles,
		"culled", stats.Culled,
		"pixels", stats.Pixels,
		"tasks", stats.Tasks,
		"elapsed", stats.Elapsed)
	return stats, nil
}

// project fans every face into screen-space triangles. Chunks of faces are
// projected concurrently; the output keeps face order.
func (r *Renderer) project(ctx context.Context, m Model, proj Projection) ([]Triangle, error) {
	faces := m.FaceCount()
	chunks := (faces + r.chunk - 1) / r.chunk
	parts := make([][]Triangle, chunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.pool.Workers() + 1)
	for i := range chunks {
		g.Go(func() error {
			lo := i * r.chunk
			hi := min(lo+r.chunk, faces)
			out := make([]Triangle, 0, (hi-lo)*2)
			for face := lo; face < hi; face++ {
				if face%64 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				var err error
				out, err = proj.Face(m, face, out)
				if err != nil {
					return err
				}
			}
			parts[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.tris = r.tris[:0]
	for _, p := range parts {
		r.tris = append(r.tris, p...)
	}
	return r.tris, nil
}

func (r *Renderer) dispatchTriangles(tris []Triangle, sh Shading, pixels, culled *atomic.Int64) (int, error) {
	for i := range tris {
		tri := tris[i]
		err := r.pool.Enqueue(func() {
			st := r.raster.Fill(tri, sh)
			if st.Culled {
				culled.Add(1)
			}
			pixels.Add(int64(st.Pixels))
		})
		if err != nil {
			return i, fmt.Errorf("enqueue triangle %d: %w", i, err)
		}
	}
	return len(tris), nil
}

func (r *Renderer) dispatchTiles(tris []Triangle, sh Shading, pixels, culled *atomic.Int64) (int, error) {
	cols, rows := r.surface.Tiles()
	if len(r.bins) != cols*rows {
		r.bins = make([][]int32, cols*rows)
	}
	for i := range r.bins {
		r.bins[i] = r.bins[i][:0]
	}

	bounds := r.surface.Bounds()
	for i, tri := range tris {
		p1, p2, p3 := tri.V[0].Position, tri.V[1].Position, tri.V[2].Position
		if planeNormal(p1, p2, p3).Z == 0 {
			culled.Add(1)
			continue
		}
		box := pixelBounds(p1, p2, p3).Intersect(bounds)
		if box.Empty() {
			continue
		}
		tx0, ty0 := box.Min.X/TileSize, box.Min.Y/TileSize
		tx1, ty1 := (box.Max.X-1)/TileSize, (box.Max.Y-1)/TileSize
		for ty := ty0; ty <= ty1; ty++ {
			for tx := tx0; tx <= tx1; tx++ {
				r.bins[ty*cols+tx] = append(r.bins[ty*cols+tx], int32(i))
			}
		}
	}

	tasks := 0
	for idx, bin := range r.bins {
		if len(bin) == 0 {
			continue
		}
		clip := r.surface.TileBounds(idx%cols, idx/cols)
		err := r.pool.Enqueue(func() {
			n := 0
			for _, ti := range bin {
				n += r.raster.fillOwned(tris[ti], sh, clip).Pixels
			}
			pixels.Add(int64(n))
		})
		if err != nil {
			return tasks, fmt.Errorf("enqueue tile %d: %w", idx, err)
		}
		tasks++
	}
	return tasks, nil
}
