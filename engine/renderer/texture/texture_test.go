package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeLayers_PacksInOrder(t *testing.T) {
	layers := []Layer{
		{Name: "ice_hat", Data: encodePNG(t, 4, 2, color.RGBA{R: 10, A: 255})},
		{Name: "ice_butt", Data: encodePNG(t, 4, 2, color.RGBA{G: 20, A: 255})},
		{Name: "snow_hat", Data: encodePNG(t, 4, 2, color.RGBA{B: 30, A: 255})},
	}
	data, err := DecodeLayers(layers)
	require.NoError(t, err)

	assert.Equal(t, uint32(4), data.Width)
	assert.Equal(t, uint32(2), data.Height)
	assert.Equal(t, uint32(3), data.LayerCount())
	require.Len(t, data.Pixels, 3*4*2*4)

	layerSize := 4 * 2 * 4
	assert.Equal(t, []byte{10, 0, 0, 255}, data.Pixels[0:4])
	assert.Equal(t, []byte{0, 20, 0, 255}, data.Pixels[layerSize:layerSize+4])
	assert.Equal(t, []byte{0, 0, 30, 255}, data.Pixels[2*layerSize:2*layerSize+4])
}

func TestDecodeLayers_DimensionMismatch(t *testing.T) {
	_, err := DecodeLayers([]Layer{
		{Name: "ice_hat", Data: encodePNG(t, 4, 4, color.RGBA{A: 255})},
		{Name: "stump", Data: encodePNG(t, 8, 4, color.RGBA{A: 255})},
	})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.ErrorContains(t, err, "stump")
}

func TestDecodeLayers_Errors(t *testing.T) {
	_, err := DecodeLayers(nil)
	assert.ErrorIs(t, err, ErrNoLayers)

	_, err = DecodeLayers([]Layer{{Name: "broken", Data: []byte("not a png")}})
	assert.ErrorContains(t, err, "broken")
}
