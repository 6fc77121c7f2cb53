// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"

	"github.com/cogentcore/webgpu/wgpu"
	"golang.org/x/image/draw"
)

// TextureStagingData holds RGBA pixel data for a texture binding pending GPU upload.
// Layered textures store every layer back to back in Pixels, each Width*Height*4 bytes long.
type TextureStagingData struct {
	// Pixels is the RGBA pixel data, 4 bytes per pixel, layers concatenated in order.
	Pixels []byte
	// Width is the width of a single layer in pixels.
	Width uint32
	// Height is the height of a single layer in pixels.
	Height uint32
	// Layers is the number of array layers contained in Pixels. Zero is treated as one.
	Layers uint32
}

// LayerCount returns the number of layers, treating an unset count as a single layer.
func (t TextureStagingData) LayerCount() uint32 {
	return Coalesce(t.Layers, 1)
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// Zero values fall back to the defaults chosen by the resource that creates the sampler.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range.
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}

// DecodeRGBA decodes PNG bytes into a tightly packed RGBA image.
//
// Parameters:
//   - data: the encoded image bytes
//
// Returns:
//   - *image.RGBA: the decoded image with its origin at (0, 0)
//   - error: error if the bytes could not be decoded
func DecodeRGBA(data []byte) (*image.RGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return ImageToRGBA(img), nil
}

// ImageToRGBA converts any image into an *image.RGBA whose bounds start at the origin.
// Images that already satisfy that are returned as-is.
//
// Parameters:
//   - img: the source image
//
// Returns:
//   - *image.RGBA: the converted image
func ImageToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
