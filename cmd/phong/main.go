// phong - CPU triangle rasterizer benchmark
// Renders a model with per-pixel diffuse shading on a worker pool while the
// camera yaw sweeps a small arc, then reports the frame rate.
//
// Output:
//
//	-present none  - Render into memory only (default)
//	-present term  - Show frames in the terminal with half-block cells
//	-out file      - Save the last frame as PNG or BMP
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/phong/pkg/math3d"
	"github.com/taigrr/phong/pkg/models"
	"github.com/taigrr/phong/pkg/render"
	"github.com/taigrr/phong/pkg/taskpool"
)

var (
	frames    = flag.Int("frames", 100, "Number of frames to render")
	width     = flag.Int("width", 640, "Render width in pixels")
	height    = flag.Int("height", 480, "Render height in pixels")
	depth     = flag.Float64("depth", render.DefaultDepth, "Screen depth range")
	workers   = flag.Int("workers", 0, "Worker count (0 = NumCPU-1)")
	dispatch  = flag.String("dispatch", "triangle", "Fill dispatch: triangle or tile")
	shadeMode = flag.String("shade", "phong", "Shading: phong or flat")
	sweepMode = flag.String("sweep", "linear", "Yaw sweep: linear or spring")
	present   = flag.String("present", "none", "Presentation: none or term")
	outPath   = flag.String("out", "", "Save the last frame to this .png or .bmp file")
	wireframe = flag.Bool("wireframe", false, "Draw face outlines instead of filled triangles")
	cameraZ   = flag.Float64("cam-z", 3, "Camera z position (non-zero)")
	pitch     = flag.Float64("pitch", 0, "Camera pitch in radians")
	verbose   = flag.Bool("v", false, "Log renderer setup and per-frame stats to stderr")
)

// options is everything run needs, decoupled from the flag package.
type options struct {
	ModelPath string
	Frames    int
	Width     int
	Height    int
	Depth     float64
	Workers   int
	Dispatch  render.Dispatch
	Shade     render.ShadeMode
	Sweep     string
	Present   string
	Out       string
	Wireframe bool
	CameraZ   float64
	Pitch     float64
	Verbose   bool

	// Stdout receives the load summary and timing report.
	Stdout io.Writer
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "phong - CPU triangle rasterizer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: phong [options] [model.obj|model.glb]\n\n")
		fmt.Fprintf(os.Stderr, "Without a model a built-in sphere is rendered.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	opts, err := parseOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseOptions() (options, error) {
	opts := options{
		ModelPath: flag.Arg(0),
		Frames:    *frames,
		Width:     *width,
		Height:    *height,
		Depth:     *depth,
		Workers:   *workers,
		Sweep:     *sweepMode,
		Present:   *present,
		Out:       *outPath,
		Wireframe: *wireframe,
		CameraZ:   *cameraZ,
		Pitch:     *pitch,
		Verbose:   *verbose,
		Stdout:    os.Stdout,
	}

	switch *dispatch {
	case "triangle":
		opts.Dispatch = render.DispatchTriangle
	case "tile":
		opts.Dispatch = render.DispatchTile
	default:
		return opts, fmt.Errorf("unknown dispatch %q (use triangle or tile)", *dispatch)
	}

	switch *shadeMode {
	case "phong":
		opts.Shade = render.ShadePhong
	case "flat":
		opts.Shade = render.ShadeFlat
	default:
		return opts, fmt.Errorf("unknown shading %q (use phong or flat)", *shadeMode)
	}
	return opts, nil
}

func loadModel(path string) (*models.Mesh, string, error) {
	if path == "" {
		m, err := models.Sphere(32, 48)
		return m, "sphere", err
	}
	m, err := models.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("load model: %w", err)
	}
	return m, filepath.Base(path), nil
}

func run(opts options) error {
	if opts.Frames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", opts.Frames)
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", opts.Width, opts.Height)
	}
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Verbose {
		render.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		defer render.SetLogger(nil)
	}

	sweep, err := newSweep(opts.Sweep, opts.Frames)
	if err != nil {
		return err
	}

	mesh, name, err := loadModel(opts.ModelPath)
	if err != nil {
		return err
	}
	if err := mesh.Validate(); err != nil {
		return fmt.Errorf("model %s: %w", name, err)
	}
	// Center and scale model
	if err := mesh.Fit(); err != nil {
		return fmt.Errorf("fit model %s: %w", name, err)
	}
	fmt.Fprintf(opts.Stdout, "Loaded: %s (%d vertices, %d faces, %d triangles)\n",
		name, len(mesh.Positions), mesh.FaceCount(), mesh.TriangleCount())

	// Context for clean shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool := taskpool.New(opts.Workers)
	defer pool.Shutdown()

	out, cleanup, err := newPresenter(opts)
	if err != nil {
		return err
	}
	defer cleanup()

	cam := render.Camera{Position: math3d.V3(0, 0, opts.CameraZ), Pitch: opts.Pitch}
	surface := render.NewSurface(out, cam.DepthTest())
	r := render.NewRenderer(surface, pool, render.Options{Dispatch: opts.Dispatch, Depth: opts.Depth})
	r.Clear()

	cfg := render.FrameConfig{
		Camera: cam,
		Color:  render.RGB(255, 255, 255),
		Shade:  opts.Shade,
	}

	var (
		drawn  int
		pixels int
	)
	start := time.Now()
	for frame := range opts.Frames {
		if err := ctx.Err(); err != nil {
			break
		}

		cfg.Camera.Yaw = sweep.Next()
		if cfg.LightDir, err = cfg.Camera.HeadOnLight(); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		if opts.Wireframe {
			if err := r.DrawWireframe(mesh, cfg); err != nil {
				return fmt.Errorf("frame %d: %w", frame, err)
			}
		} else {
			stats, err := r.DrawModel(ctx, mesh, cfg)
			if errors.Is(err, context.Canceled) {
				break
			}
			if err != nil {
				return fmt.Errorf("frame %d: %w", frame, err)
			}
			pixels += stats.Pixels
		}

		if err := r.Present(); err != nil {
			return fmt.Errorf("present frame %d: %w", frame, err)
		}
		drawn++

		if frame == opts.Frames-1 && opts.Out != "" {
			if err := saveFrame(out, opts.Out); err != nil {
				return err
			}
		}
		r.Clear()
	}
	elapsed := time.Since(start)

	fps := 0.0
	if secs := elapsed.Seconds(); secs > 0 {
		fps = float64(drawn) / secs
	}
	fmt.Fprintf(opts.Stdout, "Rendered %d frames in %v (%.1f FPS, %d workers, %s dispatch, %d pixels written)\n",
		drawn, elapsed.Round(time.Millisecond), fps, pool.Workers(), opts.Dispatch, pixels)
	return nil
}

// newPresenter returns the frame output for opts and a function that
// restores the terminal, if one was taken over.
func newPresenter(opts options) (render.Presenter, func(), error) {
	switch opts.Present {
	case "", "none":
		return render.NewFramebuffer(opts.Width, opts.Height), func() {}, nil
	case "term":
	default:
		return nil, nil, fmt.Errorf("unknown presentation %q (use none or term)", opts.Present)
	}

	// Create terminal
	term := uv.DefaultTerminal()

	cols, rows, err := term.GetSize()
	if err != nil {
		return nil, nil, fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return nil, nil, fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(cols, rows)

	tp := render.NewTerminalPresenter(term, opts.Width, opts.Height, cols, rows, term.Display)
	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	return tp, cleanup, nil
}

func saveFrame(out render.Presenter, path string) error {
	var fb *render.Framebuffer
	switch o := out.(type) {
	case *render.Framebuffer:
		fb = o
	case *render.TerminalPresenter:
		fb = o.Frame()
	default:
		return fmt.Errorf("save %s: presenter has no readable frame", path)
	}
	if err := fb.Save(path); err != nil {
		return fmt.Errorf("save frame: %w", err)
	}
	return nil
}
