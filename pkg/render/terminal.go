package render

import (
	"image"
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
	xdraw "golang.org/x/image/draw"
)

// CellSetter is the part of an ultraviolet screen the terminal presenter
// writes to. A *uv.Terminal satisfies it.
type CellSetter interface {
	SetCell(x, y int, c *uv.Cell)
}

// Draw converts the framebuffer to terminal cells and draws them on the
// screen. Each cell covers two framebuffer rows, so the framebuffer height
// should be 2x the terminal height.
func (fb *Framebuffer) Draw(scr CellSetter, area uv.Rectangle) {
	// ▀ (upper half block) with fg=top color and bg=bottom color
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X && col-area.Min.X < fb.Width; col++ {
			x := col - area.Min.X
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(fb.GetPixel(x, topY)),
					Bg: rgbaToColor(fb.GetPixel(x, botY)),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// rgbaToColor converts color.RGBA to Go's color.Color interface.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil // Transparent = no color
	}
	return c
}

// TerminalPresenter renders at a fixed resolution and shows each finished
// frame on a terminal, scaled down to cols × 2·rows half-block pixels.
type TerminalPresenter struct {
	target *Framebuffer // render resolution
	cells  *Framebuffer // terminal resolution
	scr    CellSetter
	area   uv.Rectangle
	flush  func() error
}

// NewTerminalPresenter creates a presenter with a width×height render
// target drawn into a cols×rows cell area of scr. flush, if not nil, is
// called after the cells are set (for a *uv.Terminal pass its Display method).
func NewTerminalPresenter(scr CellSetter, width, height, cols, rows int, flush func() error) *TerminalPresenter {
	return &TerminalPresenter{
		target: NewFramebuffer(width, height),
		cells:  NewFramebuffer(cols, rows*2),
		scr:    scr,
		area:   uv.Rectangle(image.Rect(0, 0, cols, rows)),
		flush:  flush,
	}
}

// SetBackground sets the color Clear fills with.
func (t *TerminalPresenter) SetBackground(c Color) {
	t.target.Background = c
}

// Size implements Presenter.
func (t *TerminalPresenter) Size() (int, int) { return t.target.Size() }

// SetPixel implements Presenter.
func (t *TerminalPresenter) SetPixel(x, y int, c Color) { t.target.SetPixel(x, y, c) }

// Clear implements Presenter.
func (t *TerminalPresenter) Clear() { t.target.Clear() }

// Present scales the render target to the cell grid and writes the cells.
func (t *TerminalPresenter) Present() error {
	xdraw.ApproxBiLinear.Scale(t.cells, t.cells.Bounds(), t.target, t.target.Bounds(), xdraw.Src, nil)
	t.cells.Draw(t.scr, t.area)
	t.target.Frames++
	if t.flush == nil {
		return nil
	}
	return t.flush()
}

// Frame returns the render-resolution framebuffer of the last frame.
func (t *TerminalPresenter) Frame() *Framebuffer { return t.target }
