package overlay

import (
	_ "embed"
	"encoding/binary"
	"math"
)

// GPUOverlayUniformSource is the canonical WGSL definition of the OverlayUniform struct.
//
//go:embed assets/overlay_uniform.wgsl
var GPUOverlayUniformSource string

// GPUOverlayUniform places the panel image on screen.
// Rect holds the left, top, right and bottom edges in normalized device coordinates.
type GPUOverlayUniform struct {
	Rect [4]float32
}

// Size returns the byte size of the uniform.
func (g *GPUOverlayUniform) Size() int {
	return 16
}

// Marshal serializes the uniform into its WGSL uniform layout.
func (g *GPUOverlayUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i, f := range g.Rect {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Placement anchors an image of imgW x imgH pixels to the top-left corner of a screenW x screenH surface
// at one texel per pixel.
//
// Parameters:
//   - imgW, imgH: the panel image size in pixels
//   - screenW, screenH: the surface size in pixels
//
// Returns:
//   - GPUOverlayUniform: the uniform covering the image rectangle
func Placement(imgW, imgH, screenW, screenH int) GPUOverlayUniform {
	if screenW <= 0 || screenH <= 0 {
		return GPUOverlayUniform{Rect: [4]float32{-1, 1, -1, 1}}
	}
	return GPUOverlayUniform{Rect: [4]float32{
		-1,
		1,
		-1 + 2*float32(imgW)/float32(screenW),
		1 - 2*float32(imgH)/float32(screenH),
	}}
}
