package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/hexa/common"
	"github.com/Carmen-Shannon/hexa/engine/camera"
	"github.com/Carmen-Shannon/hexa/engine/geometry"
	"github.com/Carmen-Shannon/hexa/engine/overlay"
	"github.com/Carmen-Shannon/hexa/engine/renderer/resource"
	"github.com/Carmen-Shannon/hexa/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// SurfaceSource is anything a presentation surface can be created for, typically a window.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu     *sync.Mutex
	logger *zap.Logger

	backendType RendererBackendType
	backend     RendererBackend

	hexManager     resource.Manager
	spriteManager  resource.Manager
	postManager    resource.Manager
	overlayManager resource.Manager

	hexTextures     *texture.Array
	spriteTextures  *texture.Array
	overlayTexture  *texture.Array
	rasterizer      overlay.Rasterizer
	shownOverlay    overlay.Primitive
	pendingOverlay  *overlay.Primitive
	overlayCaptured bool

	capacity  uint32
	minimized bool

	// state uploaded through the next frame's encoder; each setter bumps its generation and
	// sent records the generations the last submitted frame carried
	cameraData    []byte
	billboardData []byte
	tileData      []byte
	tileCount     uint32
	spriteData    []byte
	spriteCount   uint32
	current       frameUploads
	sent          frameUploads

	// pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
	msaa                 MSAASampleCount
}

// frameUploads holds one generation per piece of uploaded state.
type frameUploads struct {
	camera  uint64
	tiles   uint64
	sprites uint64
	overlay uint64
}

// Renderer draws the terrain, the sprites and the control panel.
//
// Every setter only records state; the GPU work happens in Render, which uploads whatever changed
// through staging copies in the frame's own encoder and then runs the world, post and overlay passes.
type Renderer interface {
	// ScreenSize returns the size of the presentation surface in pixels.
	//
	// Returns:
	//   - int: the width
	//   - int: the height
	ScreenSize() (width, height int)

	// SetTiles replaces the drawn tiles. The previous set stays drawn when the new one is rejected.
	//
	// Parameters:
	//   - tiles: the full tile set
	//
	// Returns:
	//   - error: a *resource.CapacityError when there are more tiles than the instance buffer holds
	SetTiles(tiles []geometry.Tile) error

	// SetSprites replaces the drawn sprites.
	//
	// Parameters:
	//   - sprites: the full sprite set
	//
	// Returns:
	//   - error: a *resource.CapacityError when there are more sprites than the instance buffer holds
	SetSprites(sprites []geometry.Sprite) error

	// SetCamera captures the camera's uniforms for the next frame.
	//
	// Parameters:
	//   - cam: the camera to render from
	SetCamera(cam camera.Camera)

	// SetOverlay replaces the control panel contents. An unchanged primitive is not rasterized again.
	//
	// Parameters:
	//   - p: the panel contents
	SetOverlay(p overlay.Primitive)

	// Resize reconfigures the surface and every size-dependent target. A zero width or height marks the
	// renderer minimized and skips both reconfiguration and rendering.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: an error if a target could not be recreated
	Resize(width, height int) error

	// Render uploads pending state and draws one frame.
	//
	// Returns:
	//   - error: an error wrapping ErrFrameDropped when no swapchain texture was available, ErrFrameInFlight,
	//     or a submission failure
	Render() error

	// SampleCount returns the MSAA sample count of the world pass.
	SampleCount() MSAASampleCount

	// Release releases every GPU object.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates the backend for surface, builds the four pipelines and uploads the static textures.
//
// Parameters:
//   - backendType: the type of rendering backend to use
//   - surface: the source of the presentation surface, usually the window
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the ready renderer
//   - error: an error if the adapter, device, a shader or a texture could not be created
func NewRenderer(backendType RendererBackendType, surface SurfaceSource, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		logger:      zap.NewNop(),
		backendType: backendType,
		capacity:    resource.DefaultCapacity,
		msaa:        MSAA4x,
		presentMode: PresentModeVSync,
		rasterizer:  overlay.NewRasterizer(),
	}
	for _, opt := range options {
		opt(r)
	}
	if !r.msaa.valid() {
		return nil, fmt.Errorf("renderer: unsupported MSAA sample count %d", r.msaa)
	}
	if r.capacity == 0 {
		return nil, errors.New("renderer: instance capacity must be at least 1")
	}

	var err error
	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend, err = newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, r.msaa, r.presentMode)
	}
	if err != nil {
		return nil, err
	}

	// a minimized window still needs targets to build the post bind group against
	if _, err := r.backend.ConfigureSurface(max(surface.Width(), 1), max(surface.Height(), 1)); err != nil {
		r.Release()
		return nil, err
	}
	if err := r.initResources(); err != nil {
		r.Release()
		return nil, err
	}
	r.logger.Info("renderer ready",
		zap.Any("surface_format", r.backend.SurfaceFormat()),
		zap.Uint32("msaa", uint32(r.msaa)),
		zap.Uint32("capacity", r.capacity))
	return r, nil
}

func (r *renderer) initResources() error {
	device, queue := r.backend.Device(), r.backend.Queue()
	hexPipeline, spritePipeline, postPipeline, overlayPipeline := newPipelines(r.backend.SurfaceFormat(), r.backend.SampleCount())

	var err error
	if r.hexTextures, err = uploadLayers(device, queue, "Hex Texture", HexTextureLayers); err != nil {
		return err
	}
	if r.spriteTextures, err = uploadLayers(device, queue, "Sprite Texture", SpriteTextureLayers); err != nil {
		return err
	}

	worldSampler := common.SamplerStagingData{MagFilter: wgpu.FilterModeLinear, MinFilter: wgpu.FilterModeNearest}
	r.hexManager, err = resource.NewManager(device, queue, hexPipeline,
		resource.WithMesh(
			geometry.MarshalHexVertices(geometry.HexVertices),
			geometry.MarshalIndices(geometry.HexIndices),
			uint32(len(geometry.HexIndices)),
		),
		resource.WithUniform("camera"),
		resource.WithInstances("instances", uint64((&geometry.GPUHexInstance{}).Size())),
		resource.WithCapacity(r.capacity),
		resource.WithTexture("hex_texture", r.hexTextures.View()),
		resource.WithSampler("hex_sampler", worldSampler),
	)
	if err != nil {
		return err
	}

	r.spriteManager, err = resource.NewManager(device, queue, spritePipeline,
		resource.WithMesh(
			geometry.MarshalQuadVertices(geometry.QuadVertices),
			geometry.MarshalIndices(geometry.QuadIndices),
			uint32(len(geometry.QuadIndices)),
		),
		resource.WithUniform("billboard"),
		resource.WithInstances("instances", uint64((&geometry.GPUSpriteInstance{}).Size())),
		resource.WithCapacity(r.capacity),
		resource.WithTexture("sprite_texture", r.spriteTextures.View()),
		resource.WithSampler("sprite_sampler", worldSampler),
	)
	if err != nil {
		return err
	}

	r.postManager, err = resource.NewManager(device, queue, postPipeline,
		resource.WithVertexCount(3),
		resource.WithTexture("scene_texture", r.backend.ResolvedView()),
		resource.WithSampler("scene_sampler", common.SamplerStagingData{MagFilter: wgpu.FilterModeLinear, MinFilter: wgpu.FilterModeNearest}),
	)
	if err != nil {
		return err
	}

	if r.overlayTexture, err = texture.UploadImage(device, queue, "Overlay Texture", r.rasterizer.Rasterize(r.shownOverlay)); err != nil {
		return err
	}
	r.overlayManager, err = resource.NewManager(device, queue, overlayPipeline,
		resource.WithVertexCount(6),
		resource.WithUniform("overlay"),
		resource.WithTexture("overlay_texture", r.overlayTexture.View()),
		resource.WithSampler("overlay_sampler", common.SamplerStagingData{MagFilter: wgpu.FilterModeNearest, MinFilter: wgpu.FilterModeNearest}),
	)
	if err != nil {
		return err
	}
	r.current.overlay++
	return nil
}

func uploadLayers(device *wgpu.Device, queue *wgpu.Queue, label string, names []string) (*texture.Array, error) {
	layers, err := loadTextureLayers(names)
	if err != nil {
		return nil, err
	}
	data, err := texture.DecodeLayers(layers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	return texture.Upload(device, queue, label, data)
}

func (r *renderer) ScreenSize() (int, int) {
	w, h := r.backend.Size()
	return int(w), int(h)
}

func (r *renderer) SampleCount() MSAASampleCount {
	return r.msaa
}

func (r *renderer) SetTiles(tiles []geometry.Tile) error {
	if err := resource.CheckCapacity("hex", uint32(len(tiles)), r.capacity); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tileData = geometry.MarshalHexInstances(tiles)
	r.tileCount = uint32(len(tiles))
	r.current.tiles++
	return nil
}

func (r *renderer) SetSprites(sprites []geometry.Sprite) error {
	if err := resource.CheckCapacity("sprite", uint32(len(sprites)), r.capacity); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spriteData = geometry.MarshalSpriteInstances(sprites)
	r.spriteCount = uint32(len(sprites))
	r.current.sprites++
	return nil
}

func (r *renderer) SetCamera(cam camera.Camera) {
	cu := cam.CameraUniform()
	bu := cam.BillboardUniform()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cameraData = cu.Marshal()
	r.billboardData = bu.Marshal()
	r.current.camera++
}

func (r *renderer) SetOverlay(p overlay.Primitive) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pendingOverlay != nil && r.pendingOverlay.Equal(p) {
		return
	}
	if r.pendingOverlay == nil && r.overlayCaptured && r.shownOverlay.Equal(p) {
		return
	}
	r.pendingOverlay = &p
}

func (r *renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		r.minimized = true
		return nil
	}
	r.minimized = false

	changed, err := r.backend.ConfigureSurface(width, height)
	if err != nil || !changed {
		return err
	}
	if err := r.postManager.SetTexture(r.backend.ResolvedView()); err != nil {
		return fmt.Errorf("rebind post-process target: %w", err)
	}
	r.mu.Lock()
	r.current.overlay++
	r.mu.Unlock()
	return nil
}

func (r *renderer) Render() error {
	if r.minimized {
		return nil
	}
	if err := r.backend.BeginFrame(); err != nil {
		return err
	}

	uploaded, err := r.upload(r.backend.Encoder())
	if err != nil {
		// the frame still goes out with whatever the buffers held before
		r.logger.Warn("upload failed", zap.Error(err))
	}

	r.backend.WorldPass(func(pass *wgpu.RenderPassEncoder) {
		r.hexManager.Draw(pass)
		r.spriteManager.Draw(pass)
	})
	r.backend.PostPass(r.postManager.Draw)
	if r.overlayCaptured {
		r.backend.OverlayPass(r.overlayManager.Draw)
	}

	err = r.backend.EndFrame()
	for _, m := range r.managers() {
		m.FinishFrame(err == nil)
	}
	if err != nil {
		// nothing recorded this frame reached the GPU, so it is uploaded again next frame
		return err
	}
	r.mu.Lock()
	r.sent = uploaded
	r.mu.Unlock()
	r.backend.Present()
	return nil
}

// upload records a staging copy for every piece of state newer than what the last submitted frame
// carried. The returned generations cover only the uploads that were recorded.
func (r *renderer) upload(encoder *wgpu.CommandEncoder) (frameUploads, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	done := r.sent
	var errs []error
	if r.current.camera != done.camera {
		err := errors.Join(
			r.hexManager.UploadUniform(encoder, r.cameraData),
			r.spriteManager.UploadUniform(encoder, r.billboardData),
		)
		if err == nil {
			done.camera = r.current.camera
		}
		errs = append(errs, err)
	}
	if r.current.tiles != done.tiles {
		err := r.hexManager.UploadInstances(encoder, r.tileData, r.tileCount)
		if err == nil {
			done.tiles = r.current.tiles
		}
		errs = append(errs, err)
	}
	if r.current.sprites != done.sprites {
		err := r.spriteManager.UploadInstances(encoder, r.spriteData, r.spriteCount)
		if err == nil {
			done.sprites = r.current.sprites
		}
		errs = append(errs, err)
	}
	if r.pendingOverlay != nil {
		// the texture is written through the queue, so a refreshed panel does not wait on submission
		err := r.refreshOverlay(*r.pendingOverlay)
		if err == nil {
			r.pendingOverlay = nil
		}
		errs = append(errs, err)
	}
	if r.current.overlay != done.overlay && r.overlayTexture != nil {
		iw, ih := r.overlayTexture.Size()
		sw, sh := r.backend.Size()
		u := overlay.Placement(int(iw), int(ih), int(sw), int(sh))
		err := r.overlayManager.UploadUniform(encoder, u.Marshal())
		if err == nil {
			done.overlay = r.current.overlay
		}
		errs = append(errs, err)
	}
	return done, errors.Join(errs...)
}

// refreshOverlay rasterizes p and writes it into the overlay texture, recreating the texture when
// the image size changed.
func (r *renderer) refreshOverlay(p overlay.Primitive) error {
	img := r.rasterizer.Rasterize(p)
	r.shownOverlay = p
	r.overlayCaptured = true

	w, h := r.overlayTexture.Size()
	if uint32(img.Rect.Dx()) == w && uint32(img.Rect.Dy()) == h {
		r.overlayTexture.Write(r.backend.Queue(), img)
		return nil
	}

	tex, err := texture.UploadImage(r.backend.Device(), r.backend.Queue(), "Overlay Texture", img)
	if err != nil {
		return err
	}
	if err := r.overlayManager.SetTexture(tex.View()); err != nil {
		tex.Release()
		return err
	}
	r.overlayTexture.Release()
	r.overlayTexture = tex
	r.current.overlay++
	return nil
}

func (r *renderer) managers() []resource.Manager {
	var ms []resource.Manager
	for _, m := range []resource.Manager{r.hexManager, r.spriteManager, r.postManager, r.overlayManager} {
		if m != nil {
			ms = append(ms, m)
		}
	}
	return ms
}

func (r *renderer) Release() {
	for _, m := range r.managers() {
		m.Release()
	}
	r.hexManager, r.spriteManager, r.postManager, r.overlayManager = nil, nil, nil, nil
	for _, t := range []*texture.Array{r.hexTextures, r.spriteTextures, r.overlayTexture} {
		if t != nil {
			t.Release()
		}
	}
	r.hexTextures, r.spriteTextures, r.overlayTexture = nil, nil, nil
	if r.backend != nil {
		r.backend.Release()
		r.backend = nil
	}
}
