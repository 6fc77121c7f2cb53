// Package texture builds layered texture arrays from encoded images.
package texture

import (
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/hexa/common"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrNoLayers is returned when a texture array is built from zero images.
	ErrNoLayers = errors.New("texture: no layers")
	// ErrDimensionMismatch is returned when the layers of an array differ in size.
	ErrDimensionMismatch = errors.New("texture: layer dimensions differ")
)

// Layer is one encoded image destined for an array layer.
type Layer struct {
	Name string
	Data []byte
}

// Array is an uploaded 2D texture array and its sampled view.
type Array struct {
	texture       *wgpu.Texture
	view          *wgpu.TextureView
	layers        uint32
	width, height uint32
}

// View returns the 2D-array view used for sampling.
func (a *Array) View() *wgpu.TextureView {
	return a.view
}

// Layers returns the number of array layers.
func (a *Array) Layers() uint32 {
	return a.layers
}

// Size returns the width and height of one layer.
func (a *Array) Size() (width, height uint32) {
	return a.width, a.height
}

// Release releases the view and the texture.
func (a *Array) Release() {
	if a.view != nil {
		a.view.Release()
		a.view = nil
	}
	if a.texture != nil {
		a.texture.Release()
		a.texture = nil
	}
}

// Decode decodes every layer on the worker pool and packs the pixels in layer order.
// All layers must share the dimensions of the first one.
//
// Parameters:
//   - pool: the pool the decode tasks are submitted to
//   - layers: the encoded images in array order
//
// Returns:
//   - common.TextureStagingData: the packed RGBA pixels
//   - error: ErrNoLayers, ErrDimensionMismatch, or a decode error naming the layer
func Decode(pool worker.DynamicWorkerPool, layers []Layer) (common.TextureStagingData, error) {
	if len(layers) == 0 {
		return common.TextureStagingData{}, ErrNoLayers
	}

	decoded := make([][]byte, len(layers))
	sizes := make([][2]uint32, len(layers))
	errs := make([]error, len(layers))

	var wg sync.WaitGroup
	for i, layer := range layers {
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				img, err := common.DecodeRGBA(layer.Data)
				if err != nil {
					errs[i] = fmt.Errorf("texture layer %s: %w", layer.Name, err)
					return nil, errs[i]
				}
				decoded[i] = img.Pix
				sizes[i] = [2]uint32{uint32(img.Rect.Dx()), uint32(img.Rect.Dy())}
				return nil, nil
			},
		})
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return common.TextureStagingData{}, err
	}
	return pack(layers, decoded, sizes)
}

// DecodeLayers decodes on a short-lived pool sized to the machine.
func DecodeLayers(layers []Layer) (common.TextureStagingData, error) {
	pool := worker.NewDynamicWorkerPool(max(runtime.NumCPU()-1, 1), len(layers)+1, time.Second)
	return Decode(pool, layers)
}

func pack(layers []Layer, decoded [][]byte, sizes [][2]uint32) (common.TextureStagingData, error) {
	w, h := sizes[0][0], sizes[0][1]
	pixels := make([]byte, 0, int(w*h*4)*len(layers))
	for i, size := range sizes {
		if size != sizes[0] {
			return common.TextureStagingData{}, fmt.Errorf("%w: %s is %dx%d, %s is %dx%d",
				ErrDimensionMismatch, layers[i].Name, size[0], size[1], layers[0].Name, w, h)
		}
		pixels = append(pixels, decoded[i]...)
	}
	return common.TextureStagingData{
		Pixels: pixels,
		Width:  w,
		Height: h,
		Layers: uint32(len(layers)),
	}, nil
}

// Upload creates an sRGB 2D texture array and writes every layer in a single copy.
//
// Parameters:
//   - device: the device that owns the texture
//   - queue: the queue the pixel copy is written through
//   - label: the debug label of the texture
//   - data: the packed layers
//
// Returns:
//   - *Array: the uploaded array with its view
//   - error: if the texture or its view could not be created
func Upload(device *wgpu.Device, queue *wgpu.Queue, label string, data common.TextureStagingData) (*Array, error) {
	layers := data.LayerCount()
	size := wgpu.Extent3D{Width: data.Width, Height: data.Height, DepthOrArrayLayers: layers}
	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          size,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("texture %s: %w", label, err)
	}

	queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		data.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  data.Width * 4,
			RowsPerImage: data.Height,
		},
		&size,
	)

	view, err := tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           label + " View",
		Format:          wgpu.TextureFormatRGBA8UnormSrgb,
		Dimension:       wgpu.TextureViewDimension2DArray,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: layers,
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("texture %s view: %w", label, err)
	}
	return &Array{texture: tex, view: view, layers: layers, width: data.Width, height: data.Height}, nil
}

// UploadImage creates a single-layer sRGB 2D texture from img, viewed as a plain 2D texture.
//
// Parameters:
//   - device: the device that owns the texture
//   - queue: the queue the pixel copy is written through
//   - label: the debug label of the texture
//   - img: the pixels, with its origin at (0, 0)
//
// Returns:
//   - *Array: the uploaded texture with its view
//   - error: if the image is empty or the texture could not be created
func UploadImage(device *wgpu.Device, queue *wgpu.Queue, label string, img *image.RGBA) (*Array, error) {
	w, h := uint32(img.Rect.Dx()), uint32(img.Rect.Dy())
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("texture %s: empty image", label)
	}
	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("texture %s: %w", label, err)
	}
	a := &Array{texture: tex, layers: 1, width: w, height: h}
	a.Write(queue, img)

	a.view, err = tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("texture %s view: %w", label, err)
	}
	return a, nil
}

// Write replaces the first layer with img, which must have the texture's dimensions.
func (a *Array) Write(queue *wgpu.Queue, img *image.RGBA) {
	size := wgpu.Extent3D{Width: a.width, Height: a.height, DepthOrArrayLayers: 1}
	queue.WriteTexture(
		&wgpu.ImageCopyTexture{Texture: a.texture, Aspect: wgpu.TextureAspectAll},
		img.Pix,
		&wgpu.TextureDataLayout{BytesPerRow: uint32(img.Stride), RowsPerImage: a.height},
		&size,
	)
}
