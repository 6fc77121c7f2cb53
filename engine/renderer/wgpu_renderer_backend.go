package renderer

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// SceneFormat is the format of the offscreen targets the world pass renders into.
const SceneFormat = wgpu.TextureFormatRGBA8Unorm

// DepthFormat is the format of the world pass depth buffer.
const DepthFormat = wgpu.TextureFormatDepth32Float

var clearColor = wgpu.Color{R: 0.1, G: 0.2, B: 0.3, A: 1.0}

// target is a texture and the single view the backend uses of it.
type target struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func (t *target) release() {
	if t.view != nil {
		t.view.Release()
	}
	if t.texture != nil {
		t.texture.Release()
	}
	*t = target{}
}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	alphaMode     wgpu.CompositeAlphaMode
	presentMode   wgpu.PresentMode
	sampleCount   MSAASampleCount
	width, height uint32

	depth    target
	msaa     target // unset when sampleCount is 1
	resolved target

	// per-frame state, held between BeginFrame and Present
	frameEncoder *wgpu.CommandEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

type wgpuRendererBackend interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue

	// SurfaceFormat returns the swapchain format chosen when the backend was created.
	SurfaceFormat() wgpu.TextureFormat

	// SampleCount returns the sample count of the world pass.
	SampleCount() MSAASampleCount

	// Size returns the configured surface size.
	Size() (width, height uint32)

	// ResolvedView returns the single-sample scene target the post pass samples.
	// The view changes on every ConfigureSurface.
	ResolvedView() *wgpu.TextureView

	// ConfigureSurface reconfigures the surface, then recreates the depth buffer, then the MSAA and
	// resolve targets. A zero width or height leaves everything untouched.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - bool: true if the targets were recreated
	//   - error: an error if a target could not be created
	ConfigureSurface(width, height int) (bool, error)

	// SetPresentMode sets the present mode used from the next ConfigureSurface on.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// BeginFrame acquires the swapchain texture, retrying once after reconfiguring the surface, and
	// creates the frame's command encoder.
	//
	// Returns:
	//   - error: ErrFrameInFlight, an error wrapping ErrFrameDropped, or an encoder failure
	BeginFrame() error

	// Encoder returns the current frame's command encoder.
	Encoder() *wgpu.CommandEncoder

	// WorldPass records the multisampled, depth-tested pass that clears and resolves into the scene target.
	// draw is called between begin and end.
	WorldPass(draw func(pass *wgpu.RenderPassEncoder))

	// PostPass records the pass that writes the swapchain view.
	PostPass(draw func(pass *wgpu.RenderPassEncoder))

	// OverlayPass records a pass that loads the swapchain view and draws over it.
	OverlayPass(draw func(pass *wgpu.RenderPassEncoder))

	// EndFrame finishes the encoder and submits it.
	//
	// Returns:
	//   - error: an error if the command buffer could not be finished
	EndFrame() error

	// Present presents the surface and releases the frame's swapchain references.
	Present()

	// Release releases every GPU object the backend owns.
	Release()
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount, presentMode PresentMode) (wgpuRendererBackend, error) {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: presentMode.wgpu(),
		sampleCount: sampleCount,
	}
	w.surface = w.instance.CreateSurface(surfaceDescriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	w.device = d
	w.queue = d.GetQueue()

	capabilities := w.surface.GetCapabilities(w.adapter)
	w.surfaceFormat = capabilities.Formats[0]
	w.alphaMode = capabilities.AlphaModes[0]
	return w, nil
}

func (b *wgpuRendererBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuRendererBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

func (b *wgpuRendererBackendImpl) SurfaceFormat() wgpu.TextureFormat {
	return b.surfaceFormat
}

func (b *wgpuRendererBackendImpl) SampleCount() MSAASampleCount {
	return b.sampleCount
}

func (b *wgpuRendererBackendImpl) Size() (uint32, uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

func (b *wgpuRendererBackendImpl) ResolvedView() *wgpu.TextureView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.resolved.view
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return false, nil
	}
	b.width, b.height = uint32(width), uint32(height)
	b.configure()

	var err error
	b.depth.release()
	if b.depth, err = b.createTarget("Depth Texture", DepthFormat, uint32(b.sampleCount), wgpu.TextureUsageRenderAttachment); err != nil {
		return false, err
	}

	b.msaa.release()
	if b.sampleCount > MSAAOff {
		if b.msaa, err = b.createTarget("MSAA Texture", SceneFormat, uint32(b.sampleCount), wgpu.TextureUsageRenderAttachment); err != nil {
			return false, err
		}
	}

	b.resolved.release()
	if b.resolved, err = b.createTarget("No sRGB Texture", SceneFormat, 1, wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding); err != nil {
		return false, err
	}
	return true, nil
}

// configure applies the stored size to the surface. Callers hold mu.
func (b *wgpuRendererBackendImpl) configure() {
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       b.width,
		Height:      b.height,
		PresentMode: b.presentMode,
		AlphaMode:   b.alphaMode,
	})
}

func (b *wgpuRendererBackendImpl) createTarget(label string, format wgpu.TextureFormat, sampleCount uint32, usage wgpu.TextureUsage) (target, error) {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              b.width,
			Height:             b.height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   sampleCount,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return target{}, fmt.Errorf("%s: %w", label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return target{}, fmt.Errorf("%s view: %w", label, err)
	}
	return target{texture: tex, view: view}, nil
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presentMode = mode.wgpu()
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return ErrFrameInFlight
	}

	surfaceTexture, err := acquireWithRetry(b.surface.GetCurrentTexture, b.configure)
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	b.frameEncoder = encoder
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *wgpuRendererBackendImpl) Encoder() *wgpu.CommandEncoder {
	return b.frameEncoder
}

func (b *wgpuRendererBackendImpl) WorldPass(draw func(pass *wgpu.RenderPassEncoder)) {
	color := wgpu.RenderPassColorAttachment{
		View:       b.resolved.view,
		LoadOp:     wgpu.LoadOpClear,
		StoreOp:    wgpu.StoreOpStore,
		ClearValue: clearColor,
	}
	if b.sampleCount > MSAAOff {
		// only the resolved result is kept
		color.View = b.msaa.view
		color.ResolveTarget = b.resolved.view
		color.StoreOp = wgpu.StoreOpDiscard
	}
	b.runPass(draw, &wgpu.RenderPassDescriptor{
		Label:            "World Pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{color},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depth.view,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})
}

func (b *wgpuRendererBackendImpl) PostPass(draw func(pass *wgpu.RenderPassEncoder)) {
	b.runPass(draw, &wgpu.RenderPassDescriptor{
		Label: "Post Pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       b.frameView,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: clearColor,
		}},
	})
}

func (b *wgpuRendererBackendImpl) OverlayPass(draw func(pass *wgpu.RenderPassEncoder)) {
	b.runPass(draw, &wgpu.RenderPassDescriptor{
		Label: "Overlay Pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:    b.frameView,
			LoadOp:  wgpu.LoadOpLoad,
			StoreOp: wgpu.StoreOpStore,
		}},
	})
}

func (b *wgpuRendererBackendImpl) runPass(draw func(pass *wgpu.RenderPassEncoder), desc *wgpu.RenderPassDescriptor) {
	pass := b.frameEncoder.BeginRenderPass(desc)
	draw(pass)
	pass.End()
	pass.Release()
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		b.releaseFrame()
		return fmt.Errorf("finish frame: %w", err)
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()
	b.releaseFrame()
}

func (b *wgpuRendererBackendImpl) releaseFrame() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseFrame()
	b.depth.release()
	b.msaa.release()
	b.resolved.release()
	if b.queue != nil {
		b.queue.Release()
	}
	if b.device != nil {
		b.device.Release()
	}
	if b.adapter != nil {
		b.adapter.Release()
	}
	if b.surface != nil {
		b.surface.Release()
	}
	if b.instance != nil {
		b.instance.Release()
	}
}
