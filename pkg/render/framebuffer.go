package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors for convenience
var (
	ColorBlack = color.RGBA{0, 0, 0, 255}
	ColorWhite = color.RGBA{255, 255, 255, 255}
)

// RGB creates an opaque color from RGB values.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// Presenter is the output a Surface writes into. SetPixel may be called
// from several goroutines at once, never for the same pixel concurrently.
type Presenter interface {
	Size() (width, height int)
	SetPixel(x, y int, c Color)
	Present() error
	Clear()
}

// Framebuffer is an in-memory Presenter. It also implements draw.Image so it
// can be the source or destination of image scaling.
type Framebuffer struct {
	Width      int
	Height     int
	Pixels     []color.RGBA // Row-major pixel data
	Background color.RGBA   // Fill used by Clear

	// Frames counts calls to Present.
	Frames int
}

// NewFramebuffer creates a new framebuffer with the given dimensions and a
// black background.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:      width,
		Height:     height,
		Pixels:     make([]color.RGBA, width*height),
		Background: ColorBlack,
	}
}

// Size implements Presenter.
func (fb *Framebuffer) Size() (int, int) {
	return fb.Width, fb.Height
}

// Clear fills the framebuffer with the background color.
func (fb *Framebuffer) Clear() {
	n := len(fb.Pixels)
	if n == 0 {
		return
	}
	fb.Pixels[0] = fb.Background
	for i := 1; i < n; i *= 2 {
		copy(fb.Pixels[i:], fb.Pixels[:i])
	}
}

// Present implements Presenter. The pixels stay readable until the next
// Clear.
func (fb *Framebuffer) Present() error {
	fb.Frames++
	return nil
}

// SetPixel sets a pixel at (x, y) to the given color.
// Bounds checking is performed.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel returns the color at (x, y).
// Returns transparent black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// ColorModel implements image.Image.
func (fb *Framebuffer) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements image.Image.
func (fb *Framebuffer) Bounds() image.Rectangle { return image.Rect(0, 0, fb.Width, fb.Height) }

// At implements image.Image.
func (fb *Framebuffer) At(x, y int) color.Color { return fb.GetPixel(x, y) }

// Set implements draw.Image.
func (fb *Framebuffer) Set(x, y int, c color.Color) {
	fb.SetPixel(x, y, color.RGBAModel.Convert(c).(color.RGBA))
}

// DrawLine draws a line from (x0, y0) to (x1, y1).
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {
	drawLine(fb, x0, y0, x1, y1, c)
}

// ToImage converts the framebuffer to a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			img.SetRGBA(x, y, fb.Pixels[y*fb.Width+x])
		}
	}
	return img
}

// Save writes the framebuffer as PNG or BMP, chosen by the file extension.
func (fb *Framebuffer) Save(path string) error {
	var encode func(*os.File) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		encode = func(f *os.File) error { return png.Encode(f, fb.ToImage()) }
	case ".bmp":
		encode = func(f *os.File) error { return bmp.Encode(f, fb.ToImage()) }
	default:
		return fmt.Errorf("save %s: unsupported image format (want .png or .bmp)", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
