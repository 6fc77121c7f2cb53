package renderer

import (
	"errors"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/hexa/engine/camera"
	"github.com/Carmen-Shannon/hexa/engine/geometry"
	"github.com/Carmen-Shannon/hexa/engine/overlay"
	"github.com/Carmen-Shannon/hexa/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/hexa/engine/renderer/resource"
	"github.com/Carmen-Shannon/hexa/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAcquireWithRetry_FirstAttempt(t *testing.T) {
	calls, reconfigured := 0, 0
	v, err := acquireWithRetry(func() (int, error) {
		calls++
		return 7, nil
	}, func() { reconfigured++ })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, reconfigured)
}

func TestAcquireWithRetry_RecoversOnRetry(t *testing.T) {
	calls, reconfigured := 0, 0
	v, err := acquireWithRetry(func() (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("outdated")
		}
		return 3, nil
	}, func() { reconfigured++ })
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, reconfigured)
}

func TestAcquireWithRetry_DropsAfterSecondFailure(t *testing.T) {
	calls := 0
	lost := errors.New("lost")
	_, err := acquireWithRetry(func() (*wgpu.Texture, error) {
		calls++
		return nil, lost
	}, nil)
	assert.ErrorIs(t, err, ErrFrameDropped)
	assert.ErrorIs(t, err, lost)
	assert.Equal(t, 2, calls)
}

func TestParseMSAA(t *testing.T) {
	m, err := ParseMSAA(1)
	require.NoError(t, err)
	assert.Equal(t, MSAAOff, m)

	m, err = ParseMSAA(4)
	require.NoError(t, err)
	assert.Equal(t, MSAA4x, m)

	for _, n := range []int{0, 2, 8, 16} {
		_, err = ParseMSAA(n)
		assert.Error(t, err, "count %d", n)
	}
}

func TestPresentMode(t *testing.T) {
	assert.Equal(t, wgpu.PresentModeFifo, PresentModeVSync.wgpu())
	assert.Equal(t, wgpu.PresentModeImmediate, PresentModeUncapped.wgpu())
}

func TestShaderSources_Reflect(t *testing.T) {
	hex, sprite, post, ov := newPipelines(wgpu.TextureFormatBGRA8UnormSrgb, MSAA4x)

	hexLayouts := hex.BindGroupLayouts()
	require.Len(t, hexLayouts, 2)
	require.Len(t, hexLayouts[0].Entries, 2)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, hexLayouts[0].Entries[0].Buffer.Type)
	assert.Equal(t, uint64(64), hexLayouts[0].Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, hexLayouts[0].Entries[1].Buffer.Type)
	assert.Equal(t, uint64((&geometry.GPUHexInstance{}).Size()), hexLayouts[0].Entries[1].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.TextureViewDimension2DArray, hexLayouts[1].Entries[0].Texture.ViewDimension)

	vl := hex.Shader(shader.StageVertex).VertexLayout()
	require.NotNil(t, vl)
	assert.Equal(t, uint64(24), vl.ArrayStride)
	assert.Len(t, vl.Attributes, 3)

	spriteLayouts := sprite.BindGroupLayouts()
	assert.Equal(t, uint64(96), spriteLayouts[0].Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, uint64((&geometry.GPUSpriteInstance{}).Size()), spriteLayouts[0].Entries[1].Buffer.MinBindingSize)
	assert.Equal(t, uint64(12), sprite.Shader(shader.StageVertex).VertexLayout().ArrayStride)

	assert.Nil(t, post.Shader(shader.StageVertex).VertexLayout())
	assert.Len(t, post.BindGroupLayouts()[0].Entries, 2)

	ovLayouts := ov.BindGroupLayouts()
	require.Len(t, ovLayouts[0].Entries, 3)
	assert.Equal(t, uint64(16), ovLayouts[0].Entries[0].Buffer.MinBindingSize)
}

func TestPipelines_RenderState(t *testing.T) {
	hex, sprite, post, ov := newPipelines(wgpu.TextureFormatBGRA8UnormSrgb, MSAA4x)

	d := hex.Descriptor(nil, nil, nil)
	require.NotNil(t, d.DepthStencil)
	assert.Equal(t, DepthFormat, d.DepthStencil.Format)
	assert.Equal(t, wgpu.CompareFunctionLess, d.DepthStencil.DepthCompare)
	assert.Equal(t, uint32(4), d.Multisample.Count)
	assert.Equal(t, SceneFormat, d.Fragment.Targets[0].Format)
	assert.Equal(t, wgpu.CullModeBack, d.Primitive.CullMode)
	assert.Equal(t, wgpu.FrontFaceCW, d.Primitive.FrontFace)

	assert.Equal(t, wgpu.CullModeNone, sprite.Descriptor(nil, nil, nil).Primitive.CullMode)

	d = post.Descriptor(nil, nil, nil)
	assert.Nil(t, d.DepthStencil)
	assert.Equal(t, uint32(1), d.Multisample.Count)
	assert.Equal(t, wgpu.TextureFormatBGRA8UnormSrgb, d.Fragment.Targets[0].Format)
	assert.Nil(t, d.Fragment.Targets[0].Blend)

	d = ov.Descriptor(nil, nil, nil)
	assert.Nil(t, d.DepthStencil)
	assert.NotNil(t, d.Fragment.Targets[0].Blend)
}

func TestPipelines_NoMSAA(t *testing.T) {
	hex, _, _, _ := newPipelines(wgpu.TextureFormatBGRA8Unorm, MSAAOff)
	assert.Equal(t, uint32(1), hex.SampleCount())
}

func TestTextureLayersEmbedded(t *testing.T) {
	layers, err := loadTextureLayers(append(HexTextureLayers, SpriteTextureLayers...))
	require.NoError(t, err)
	assert.Len(t, layers, 5)

	_, err = loadTextureLayers([]string{"lava"})
	assert.Error(t, err)
}

func newTestRenderer() *renderer {
	return &renderer{mu: &sync.Mutex{}, capacity: resource.DefaultCapacity}
}

func TestSetTiles_Capacity(t *testing.T) {
	r := newTestRenderer()

	require.NoError(t, r.SetTiles(make([]geometry.Tile, 250)))
	assert.Equal(t, uint64(1), r.current.tiles)
	assert.Equal(t, uint32(250), r.tileCount)
	assert.Len(t, r.tileData, 250*80)

	err := r.SetTiles(make([]geometry.Tile, 251))
	assert.ErrorIs(t, err, resource.ErrCapacityExceeded)
	assert.Equal(t, uint64(1), r.current.tiles)
	assert.Equal(t, uint32(250), r.tileCount)
}

func TestSetSprites(t *testing.T) {
	r := newTestRenderer()
	require.NoError(t, r.SetSprites([]geometry.Sprite{{Image: 0, Position: [2]float32{8, 7.5}, Scale: [2]float32{1, 1}}}))
	assert.Equal(t, uint32(1), r.spriteCount)
	assert.Len(t, r.spriteData, 48)

	assert.ErrorIs(t, r.SetSprites(make([]geometry.Sprite, 251)), resource.ErrCapacityExceeded)
}

func TestSetCamera(t *testing.T) {
	r := newTestRenderer()
	r.SetCamera(camera.New(800, 600))
	assert.Len(t, r.cameraData, 64)
	assert.Len(t, r.billboardData, 96)
	assert.Equal(t, uint64(1), r.current.camera)
}

func TestSetOverlay_SkipsUnchanged(t *testing.T) {
	r := newTestRenderer()
	p := overlay.Primitive{Title: "Home", Lines: []string{"Camera", "Tiling"}, Selected: 0}

	r.SetOverlay(p)
	require.NotNil(t, r.pendingOverlay)

	// pretend the frame consumed it
	r.shownOverlay, r.overlayCaptured, r.pendingOverlay = p, true, nil
	r.SetOverlay(overlay.Primitive{Title: "Home", Lines: []string{"Camera", "Tiling"}, Selected: 0})
	assert.Nil(t, r.pendingOverlay)

	r.SetOverlay(overlay.Primitive{Title: "Home", Lines: []string{"Camera", "Tiling"}, Selected: 1})
	require.NotNil(t, r.pendingOverlay)
	assert.Equal(t, 1, r.pendingOverlay.Selected)
}

func TestResize_ZeroMinimizes(t *testing.T) {
	r := newTestRenderer()
	require.NoError(t, r.Resize(0, 600))
	assert.True(t, r.minimized)
	// nothing is drawn, so no backend is needed
	assert.NoError(t, r.Render())
}

func TestNewRenderer_RejectsZeroCapacity(t *testing.T) {
	// rejected before the surface is touched
	_, err := NewRenderer(BackendTypeWGPU, nil, WithCapacity(0))
	assert.ErrorContains(t, err, "capacity must be at least 1")
}

type fakeBackend struct {
	endFrameErrs []error
	frames       int
	presented    int
}

func (b *fakeBackend) Device() *wgpu.Device { return nil }
func (b *fakeBackend) Queue() *wgpu.Queue { return nil }
func (b *fakeBackend) SurfaceFormat() wgpu.TextureFormat { return wgpu.TextureFormatBGRA8UnormSrgb }
func (b *fakeBackend) SampleCount() MSAASampleCount { return MSAA4x }
func (b *fakeBackend) Size() (uint32, uint32) { return 800, 600 }
func (b *fakeBackend) ResolvedView() *wgpu.TextureView { return nil }
func (b *fakeBackend) ConfigureSurface(int, int) (bool, error) { return false, nil }
func (b *fakeBackend) SetPresentMode(PresentMode) {}
func (b *fakeBackend) Encoder() *wgpu.CommandEncoder { return nil }
func (b *fakeBackend) WorldPass(draw func(*wgpu.RenderPassEncoder)) { draw(nil) }
func (b *fakeBackend) PostPass(draw func(*wgpu.RenderPassEncoder)) { draw(nil) }
func (b *fakeBackend) OverlayPass(draw func(*wgpu.RenderPassEncoder)) { draw(nil) }
func (b *fakeBackend) Present() { b.presented++ }
func (b *fakeBackend) Release() {}

func (b *fakeBackend) BeginFrame() error {
	b.frames++
	return nil
}

func (b *fakeBackend) EndFrame() error {
	if len(b.endFrameErrs) == 0 {
		return nil
	}
	err := b.endFrameErrs[0]
	b.endFrameErrs = b.endFrameErrs[1:]
	return err
}

type fakeManager struct {
	label     string
	uniforms  int
	uploads   []uint32
	finished  []bool
	live      uint32
	pending   *uint32
	drawCount []uint32
}

func (m *fakeManager) Label() string { return m.label }
func (m *fakeManager) Pipeline() pipeline.Pipeline { return nil }
func (m *fakeManager) Capacity() uint32 { return resource.DefaultCapacity }
func (m *fakeManager) InstanceCount() uint32 { return m.live }
func (m *fakeManager) SetTexture(*wgpu.TextureView) error { return nil }
func (m *fakeManager) Release() {}

func (m *fakeManager) UploadUniform(*wgpu.CommandEncoder, []byte) error {
	m.uniforms++
	return nil
}

func (m *fakeManager) UploadInstances(_ *wgpu.CommandEncoder, _ []byte, count uint32) error {
	m.uploads = append(m.uploads, count)
	m.pending = &count
	return nil
}

func (m *fakeManager) Draw(*wgpu.RenderPassEncoder) {
	n := m.live
	if m.pending != nil {
		n = *m.pending
	}
	m.drawCount = append(m.drawCount, n)
}

func (m *fakeManager) FinishFrame(submitted bool) {
	m.finished = append(m.finished, submitted)
	if submitted && m.pending != nil {
		m.live = *m.pending
	}
	m.pending = nil
}

func newFakeRenderer(backend *fakeBackend) (*renderer, *fakeManager, *fakeManager) {
	hex, sprite := &fakeManager{label: "hex"}, &fakeManager{label: "sprite"}
	r := &renderer{
		mu:             &sync.Mutex{},
		logger:         zap.NewNop(),
		backend:        backend,
		hexManager:     hex,
		spriteManager:  sprite,
		postManager:    &fakeManager{label: "post"},
		overlayManager: &fakeManager{label: "overlay"},
		capacity:       resource.DefaultCapacity,
	}
	return r, hex, sprite
}

func TestRender_FailedSubmitUploadsAgain(t *testing.T) {
	backend := &fakeBackend{endFrameErrs: []error{errors.New("device lost")}}
	r, hex, sprite := newFakeRenderer(backend)

	require.NoError(t, r.SetTiles(make([]geometry.Tile, 3)))
	r.SetCamera(camera.New(800, 600))

	require.Error(t, r.Render())
	assert.Equal(t, []uint32{3}, hex.uploads)
	assert.Equal(t, []uint32{3}, hex.drawCount, "the failed frame still draws what it recorded")
	assert.Equal(t, []bool{false}, hex.finished)
	assert.Equal(t, uint32(0), hex.InstanceCount())
	assert.Equal(t, 0, backend.presented)

	require.NoError(t, r.Render())
	assert.Equal(t, []uint32{3, 3}, hex.uploads, "tiles are uploaded again after the failed submit")
	assert.Equal(t, 2, hex.uniforms)
	assert.Equal(t, 2, sprite.uniforms)
	assert.Equal(t, uint32(3), hex.InstanceCount())
	assert.Equal(t, 1, backend.presented)

	require.NoError(t, r.Render())
	assert.Len(t, hex.uploads, 2, "nothing changed since the last submitted frame")
	assert.Equal(t, 2, hex.uniforms)
	assert.Empty(t, sprite.uploads)
	assert.Equal(t, []bool{false, true, true}, hex.finished)
}

func TestRender_SetDuringFrameIsNotLost(t *testing.T) {
	backend := &fakeBackend{}
	r, hex, _ := newFakeRenderer(backend)

	require.NoError(t, r.SetTiles(make([]geometry.Tile, 2)))
	// an upload recorded against an older generation must not mark the newer one as sent
	uploaded, err := r.upload(nil)
	require.NoError(t, err)
	require.NoError(t, r.SetTiles(make([]geometry.Tile, 5)))
	r.sent = uploaded

	require.NoError(t, r.Render())
	assert.Equal(t, []uint32{2, 5}, hex.uploads)
}
