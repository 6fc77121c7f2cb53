package engine

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/hexa/common"
	"github.com/Carmen-Shannon/hexa/engine/camera"
	"github.com/Carmen-Shannon/hexa/engine/geometry"
	"github.com/Carmen-Shannon/hexa/engine/overlay"
	"github.com/Carmen-Shannon/hexa/engine/renderer"
	"github.com/Carmen-Shannon/hexa/engine/scene"
	"github.com/Carmen-Shannon/hexa/engine/storage"
	"github.com/Carmen-Shannon/hexa/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeWindow struct {
	onUpdate func()
	onEvent  func(window.Event)
	cursors  []overlay.CursorHint
	closed   bool
	mods     common.ModifierKey
}

func (w *fakeWindow) SetUpdateCallback(cb func()) { w.onUpdate = cb }
func (w *fakeWindow) SetEventCallback(cb func(window.Event)) { w.onEvent = cb }
func (w *fakeWindow) SetCursor(hint overlay.CursorHint) { w.cursors = append(w.cursors, hint) }
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (w *fakeWindow) IsRunning() bool { return !w.closed }
func (w *fakeWindow) RequestClose() { w.closed = true }
func (w *fakeWindow) Close() error { return nil }
func (w *fakeWindow) Width() int { return 640 }
func (w *fakeWindow) Height() int { return 480 }
func (w *fakeWindow) ScaleFactor() float64 { return 1 }
func (w *fakeWindow) Modifiers() common.ModifierKey { return w.mods }

// send delivers ev the way the platform window does, recording modifiers from key events only.
func (w *fakeWindow) send(ev window.Event) {
	if ev.Kind == window.EventKeyDown || ev.Kind == window.EventKeyUp {
		w.mods = ev.Modifiers
	}
	w.onEvent(ev)
}

// ProcessMessages runs three frames.
func (w *fakeWindow) ProcessMessages() {
	for i := 0; i < 3 && !w.closed; i++ {
		w.onUpdate()
	}
}

type fakeRenderer struct {
	tiles     int
	overlays  int
	renders   int
	resizes   [][2]int
	renderErr error
}

func (r *fakeRenderer) ScreenSize() (int, int) { return 640, 480 }
func (r *fakeRenderer) SetTiles(tiles []geometry.Tile) error { r.tiles++; return nil }
func (r *fakeRenderer) SetSprites(sprites []geometry.Sprite) error { return nil }
func (r *fakeRenderer) SetCamera(cam camera.Camera) {}
func (r *fakeRenderer) SetOverlay(p overlay.Primitive) { r.overlays++ }
func (r *fakeRenderer) Render() error { r.renders++; return r.renderErr }
func (r *fakeRenderer) Resize(w, h int) error {
	r.resizes = append(r.resizes, [2]int{w, h})
	return nil
}

func newTestEngine(t *testing.T, opts ...EngineBuilderOption) (*engine, *fakeWindow, *fakeRenderer, storage.Store) {
	t.Helper()
	w := &fakeWindow{}
	r := &fakeRenderer{}
	store := storage.NewStore(filepath.Join(t.TempDir(), "save.json"))
	base := []EngineBuilderOption{
		WithWindow(w),
		WithRenderer(r),
		WithStore(store),
		WithSceneFactory(func(s storage.Settings) scene.Scene { return scene.NewScene(scene.WithSettings(s)) }),
	}
	e, err := NewEngine(append(base, opts...)...)
	require.NoError(t, err)
	return e.(*engine), w, r, store
}

func TestNewEngine_RequiresCollaborators(t *testing.T) {
	_, err := NewEngine()
	assert.ErrorContains(t, err, "no window")
	_, err = NewEngine(WithWindow(&fakeWindow{}))
	assert.ErrorContains(t, err, "no renderer")
	_, err = NewEngine(WithWindow(&fakeWindow{}), WithRenderer(&fakeRenderer{}))
	assert.ErrorContains(t, err, "no scene factory")
}

func TestRun_FramesRenderAndRegenerateOnce(t *testing.T) {
	e, _, r, _ := newTestEngine(t)
	e.Run()
	assert.Equal(t, 3, r.renders)
	assert.Equal(t, 3, r.overlays)
	assert.Equal(t, 1, r.tiles)
}

func TestFrame_SaveCommandPersists(t *testing.T) {
	e, w, _, store := newTestEngine(t)
	e.Run()

	w.onEvent(window.Event{Kind: window.EventKeyDown, Key: common.Key3})
	w.onEvent(window.Event{Kind: window.EventKeyDown, Key: common.KeyRight})
	w.onEvent(window.Event{Kind: window.EventKeyDown, Key: common.Key4})
	w.onEvent(window.Event{Kind: window.EventKeyDown, Key: common.KeyEnter})
	e.frame()

	saved, err := store.Load()
	require.NoError(t, err)
	assert.InDelta(t, 0.2, saved.TilingTab.Data.Elevation, 1e-6)
}

func TestHandleEvent_ShiftScrollUsesHeldModifiers(t *testing.T) {
	e, w, _, _ := newTestEngine(t)
	e.Run()

	w.send(window.Event{Kind: window.EventKeyDown, Key: common.Key3})
	w.send(window.Event{Kind: window.EventKeyDown, Key: common.KeyDown})
	w.send(window.Event{Kind: window.EventKeyDown, Key: common.KeyDown})
	w.send(window.Event{Kind: window.EventKeyDown, Key: common.KeyLeftShift, Modifiers: common.ModShift})
	// wheel events arrive without modifier state
	w.send(window.Event{Kind: window.EventScroll, Delta: 1})
	e.frame()
	assert.Equal(t, uint32(52), e.Scene().Settings().TilingTab.Data.Seed)

	w.send(window.Event{Kind: window.EventKeyUp, Key: common.KeyLeftShift})
	w.send(window.Event{Kind: window.EventScroll, Delta: 1})
	e.frame()
	assert.Equal(t, uint32(53), e.Scene().Settings().TilingTab.Data.Seed)
}

func TestFrame_ReloadAppliesSettings(t *testing.T) {
	reload := make(chan string, 1)
	e, _, r, store := newTestEngine(t, WithReload(reload))
	e.frame()

	next := storage.DefaultSettings()
	next.TilingTab.Data.Seed = 99
	require.NoError(t, store.Save(next))
	reload <- store.Path()
	e.frame()

	assert.Equal(t, uint32(99), e.Scene().Settings().TilingTab.Data.Seed)
	assert.Equal(t, 2, r.tiles)

	close(reload)
	e.frame()
	assert.Nil(t, e.reload)
}

func TestFrame_DroppedFrameIsCounted(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	e, _, r, _ := newTestEngine(t, WithLogger(zap.New(core)))
	r.renderErr = errors.Join(renderer.ErrFrameDropped, errors.New("surface lost"))

	e.frame()
	e.frame()
	assert.Equal(t, 2, e.profiler.TotalDropped())
	assert.Equal(t, 2, logs.FilterMessage("frame dropped").Len())
}

func TestHandleEvent_ResizeAndSwap(t *testing.T) {
	e, w, r, _ := newTestEngine(t)
	e.Run()
	before := e.Scene().ID()

	w.onEvent(window.Event{Kind: window.EventResize, Width: 300, Height: 200})
	assert.Equal(t, [][2]int{{300, 200}}, r.resizes)

	w.onEvent(window.Event{Kind: window.EventKeyDown, Key: common.KeyF5})
	assert.NotEqual(t, before, e.Scene().ID())
	e.frame()
	assert.Equal(t, 2, r.tiles, "a swapped scene starts dirty")
}

func TestFrame_CursorOnlySetOnChange(t *testing.T) {
	e, w, _, _ := newTestEngine(t)
	e.Run()
	assert.Empty(t, w.cursors)

	w.onEvent(window.Event{Kind: window.EventKeyDown, Key: common.Key2})
	e.frame()
	w.onEvent(window.Event{Kind: window.EventKeyDown, Key: common.KeyRight})
	e.frame()
	e.frame()
	w.onEvent(window.Event{Kind: window.EventKeyUp, Key: common.KeyRight})
	e.frame()
	assert.Equal(t, []overlay.CursorHint{overlay.CursorPointer, overlay.CursorIdle}, w.cursors)
}

func TestQuit(t *testing.T) {
	e, w, _, _ := newTestEngine(t)
	e.Quit()
	assert.True(t, w.closed)
}
