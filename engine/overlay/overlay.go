// Package overlay rasterizes the control panel into an image the renderer draws over the scene.
package overlay

import (
	"image"
	"image/color"
	"slices"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// CursorHint tells the window which cursor shape fits the panel state.
type CursorHint int

const (
	// CursorIdle is the default arrow.
	CursorIdle CursorHint = iota
	// CursorPointer is shown while a field is being adjusted.
	CursorPointer
)

// Primitive is everything the panel shows for one frame.
type Primitive struct {
	Title string
	Lines []string
	// Selected is the index into Lines that is highlighted, or -1.
	Selected int
	// Status is an optional message shown under the lines, such as the last error.
	Status string
}

// Equal reports whether two primitives rasterize to the same image.
func (p Primitive) Equal(o Primitive) bool {
	return p.Title == o.Title && p.Selected == o.Selected && p.Status == o.Status && slices.Equal(p.Lines, o.Lines)
}

var (
	background = color.RGBA{R: 16, G: 20, B: 28, A: 200}
	highlight  = color.RGBA{R: 60, G: 90, B: 140, A: 230}
	titleColor = color.RGBA{R: 255, G: 214, B: 120, A: 255}
	textColor  = color.RGBA{R: 230, G: 230, B: 230, A: 255}
	errorColor = color.RGBA{R: 255, G: 110, B: 110, A: 255}
)

const padding = 8

type rasterizer struct {
	face       font.Face
	lineHeight int
	ascent     int
}

// Rasterizer draws primitives with a fixed bitmap face.
type Rasterizer interface {
	// Rasterize draws p into a new image just large enough to hold it.
	//
	// Parameters:
	//   - p: the panel contents
	//
	// Returns:
	//   - *image.RGBA: the panel image with its origin at (0, 0)
	Rasterize(p Primitive) *image.RGBA

	// LineHeight returns the distance between two baselines in pixels.
	LineHeight() int
}

var _ Rasterizer = &rasterizer{}

// NewRasterizer creates a Rasterizer using basicfont.Face7x13.
func NewRasterizer() Rasterizer {
	face := basicfont.Face7x13
	m := face.Metrics()
	return &rasterizer{
		face:       face,
		lineHeight: m.Height.Ceil() + 2,
		ascent:     m.Ascent.Ceil(),
	}
}

func (r *rasterizer) LineHeight() int {
	return r.lineHeight
}

func (r *rasterizer) Rasterize(p Primitive) *image.RGBA {
	rows := make([]string, 0, len(p.Lines)+2)
	rows = append(rows, p.Title)
	for i, l := range p.Lines {
		if i == p.Selected {
			rows = append(rows, "> "+l)
		} else {
			rows = append(rows, "  "+l)
		}
	}
	if p.Status != "" {
		rows = append(rows, p.Status)
	}

	width := 0
	for _, row := range rows {
		width = max(width, font.MeasureString(r.face, row).Ceil())
	}
	img := image.NewRGBA(image.Rect(0, 0, width+2*padding, len(rows)*r.lineHeight+2*padding))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	if p.Selected >= 0 && p.Selected < len(p.Lines) {
		top := padding + (p.Selected+1)*r.lineHeight
		bar := image.Rect(0, top, img.Rect.Dx(), top+r.lineHeight)
		draw.Draw(img, bar, image.NewUniform(highlight), image.Point{}, draw.Src)
	}

	d := &font.Drawer{Dst: img, Face: r.face}
	for i, row := range rows {
		switch {
		case i == 0:
			d.Src = image.NewUniform(titleColor)
		case p.Status != "" && i == len(rows)-1:
			d.Src = image.NewUniform(errorColor)
		default:
			d.Src = image.NewUniform(textColor)
		}
		d.Dot = fixed.P(padding, padding+i*r.lineHeight+r.ascent)
		d.DrawString(row)
	}
	return img
}
