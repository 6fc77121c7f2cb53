package overlay

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRasterize_SizeFollowsContent(t *testing.T) {
	r := NewRasterizer()
	small := r.Rasterize(Primitive{Title: "Home", Selected: -1})
	big := r.Rasterize(Primitive{Title: "Camera", Lines: []string{"fov 1.57", "height 3.00", "angle 1.57"}, Selected: 1})

	assert.Equal(t, image.Pt(0, 0), small.Rect.Min)
	assert.Equal(t, r.LineHeight()+2*padding, small.Rect.Dy())
	assert.Equal(t, 4*r.LineHeight()+2*padding, big.Rect.Dy())
	assert.Greater(t, big.Rect.Dx(), small.Rect.Dx())
}

func TestRasterize_HighlightsSelection(t *testing.T) {
	r := NewRasterizer()
	img := r.Rasterize(Primitive{Title: "Tiling", Lines: []string{"size 5", "seed 42"}, Selected: 1})

	// the right edge of the selected row carries the highlight and no glyphs
	y := padding + 2*r.LineHeight() + 1
	assert.Equal(t, highlight, img.RGBAAt(img.Rect.Dx()-1, y))
	assert.Equal(t, background, img.RGBAAt(img.Rect.Dx()-1, padding+r.LineHeight()+1))
}

func TestRasterize_DrawsText(t *testing.T) {
	img := NewRasterizer().Rasterize(Primitive{Title: "WWWW", Selected: -1})
	found := false
	for x := 0; x < img.Rect.Dx() && !found; x++ {
		for y := 0; y < img.Rect.Dy(); y++ {
			if img.RGBAAt(x, y) == titleColor {
				found = true
				break
			}
		}
	}
	assert.True(t, found)
}

func TestRasterize_StatusAddsRow(t *testing.T) {
	r := NewRasterizer()
	img := r.Rasterize(Primitive{Title: "Tiling", Lines: []string{"size 15"}, Selected: 0, Status: "capacity exceeded"})
	assert.Equal(t, 3*r.LineHeight()+2*padding, img.Rect.Dy())
}

func TestPrimitive_Equal(t *testing.T) {
	a := Primitive{Title: "Camera", Lines: []string{"a", "b"}, Selected: 0}
	b := Primitive{Title: "Camera", Lines: []string{"a", "b"}, Selected: 0}
	assert.True(t, a.Equal(b))
	b.Lines[1] = "c"
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(Primitive{Title: "Camera", Lines: []string{"a", "b"}, Selected: 1}))
}

func TestPlacement(t *testing.T) {
	u := Placement(200, 100, 800, 400)
	assert.Equal(t, [4]float32{-1, 1, -0.5, 0.5}, u.Rect)

	require.Len(t, u.Marshal(), 16)
	assert.Equal(t, [4]float32{-1, 1, -1, 1}, Placement(10, 10, 0, 0).Rect)
}
