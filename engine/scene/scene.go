// Package scene drives the hex terrain from the control panel: it turns window events into panel
// messages and pushes camera, tiles and sprites to a Renderer once per frame.
package scene

import (
	"errors"
	"sync"

	"github.com/Carmen-Shannon/hexa/common"
	"github.com/Carmen-Shannon/hexa/engine/camera"
	"github.com/Carmen-Shannon/hexa/engine/geometry"
	"github.com/Carmen-Shannon/hexa/engine/overlay"
	"github.com/Carmen-Shannon/hexa/engine/storage"
	"github.com/Carmen-Shannon/hexa/engine/terrain"
	"github.com/Carmen-Shannon/hexa/engine/window"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Renderer is the part of the renderer a scene drives.
type Renderer interface {
	ScreenSize() (int, int)
	SetTiles(tiles []geometry.Tile) error
	SetSprites(sprites []geometry.Sprite) error
	SetCamera(cam camera.Camera)
	SetOverlay(p overlay.Primitive)
}

// Command is a side effect requested by the scene and carried out by the host.
type Command interface {
	command()
}

// SaveCommand asks the host to persist Settings.
type SaveCommand struct {
	Settings storage.Settings
}

func (SaveCommand) command() {}

// defaultSprites is placed once, on the first update.
var defaultSprites = []geometry.Sprite{
	{Image: 0, Position: [2]float32{8, 7.5}, Scale: [2]float32{1, 1}},
}

type scene struct {
	mu     *sync.Mutex
	id     uuid.UUID
	logger *zap.Logger

	camera    camera.Camera
	controls  *Controls
	generator terrain.Generator
	pending   []Message

	// rejected holds the parameters of the last failed regeneration; they are not retried.
	rejected *terrain.Params
	status   string

	spritesPlaced bool
	sized         bool
	scaleFactor   float64
	cursor        [2]float64
	modifiers     common.ModifierKey
	adjusting     bool
}

// Scene is the hex terrain viewer state driven once per frame by the host.
type Scene interface {
	// ID returns the identifier assigned when the scene was created.
	ID() uuid.UUID

	// HandleEvent translates a window event into queued panel messages.
	//
	// Parameters:
	//   - e: the window event
	//   - scaleFactor: the window content scale when the event arrived
	//   - modifiers: the modifier keys held when the event arrived
	HandleEvent(e window.Event, scaleFactor float64, modifiers common.ModifierKey)

	// Update applies queued messages, pushes the camera, regenerates dirty tiles and places the sprites
	// on the first call.
	//
	// Parameters:
	//   - r: the renderer to push state to
	//
	// Returns:
	//   - []Command: side effects for the host to execute, such as saving
	Update(r Renderer) []Command

	// OverlayPrimitive returns the panel contents and the cursor that fits them.
	OverlayPrimitive() (overlay.Primitive, overlay.CursorHint)

	// Settings returns the current panel values.
	Settings() storage.Settings

	// ApplySettings replaces the panel values and marks the tiling dirty.
	//
	// Parameters:
	//   - s: the new values; out-of-range fields are clamped
	ApplySettings(s storage.Settings)
}

var _ Scene = &scene{}

// NewScene creates a scene showing the default settings unless WithSettings is given.
//
// Parameters:
//   - opts: functional options
//
// Returns:
//   - Scene: the new scene
func NewScene(opts ...SceneBuilderOption) Scene {
	s := &scene{
		mu:          &sync.Mutex{},
		id:          uuid.New(),
		logger:      zap.NewNop(),
		camera:      camera.New(1, 1),
		controls:    NewControls(storage.DefaultSettings()),
		generator:   terrain.NewGenerator(),
		scaleFactor: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.Stringer("scene", s.id))
	return s
}

func (s *scene) ID() uuid.UUID {
	return s.id
}

func (s *scene) HandleEvent(e window.Event, scaleFactor float64, modifiers common.ModifierKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if scaleFactor > 0 {
		s.scaleFactor = scaleFactor
	}
	s.modifiers = modifiers

	switch e.Kind {
	case window.EventKeyDown:
		s.handleKey(e.Key, modifiers)
	case window.EventKeyUp:
		if e.Key == common.KeyLeft || e.Key == common.KeyRight {
			s.adjusting = false
		}
	case window.EventScroll:
		if e.Delta > 0 {
			s.queue(FieldAdjusted{Steps: s.step()})
		} else if e.Delta < 0 {
			s.queue(FieldAdjusted{Steps: -s.step()})
		}
	case window.EventCursorMoved:
		s.cursor = [2]float64{e.X / s.scaleFactor, e.Y / s.scaleFactor}
	case window.EventScaleFactorChanged:
		if e.ScaleFactor > 0 {
			s.scaleFactor = e.ScaleFactor
		}
	case window.EventResize:
		s.resize(e.Width, e.Height)
	}
}

func (s *scene) handleKey(key uint32, mods common.ModifierKey) {
	switch key {
	case common.KeyTab:
		if mods.Has(common.ModShift) {
			s.queue(TabCycled{Delta: -1})
		} else {
			s.queue(TabCycled{Delta: 1})
		}
	case common.Key1, common.Key2, common.Key3, common.Key4:
		s.queue(TabSelected{Tab: Tab(key - common.Key1)})
	case common.KeyUp:
		s.queue(FieldSelected{Delta: -1})
	case common.KeyDown:
		s.queue(FieldSelected{Delta: 1})
	case common.KeyLeft:
		s.adjusting = true
		s.queue(FieldAdjusted{Steps: -s.step()})
	case common.KeyRight:
		s.adjusting = true
		s.queue(FieldAdjusted{Steps: s.step()})
	case common.KeyEnter, common.KeyKPEnter:
		s.queue(Confirmed{})
	}
}

func (s *scene) step() int {
	if s.modifiers.Has(common.ModShift) {
		return fastStep
	}
	return 1
}

func (s *scene) queue(m Message) {
	s.pending = append(s.pending, m)
}

func (s *scene) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if err := s.camera.Resize(uint32(width), uint32(height)); err != nil {
		s.logger.Debug("camera resize skipped", zap.Error(err))
		return
	}
	s.sized = true
}

func (s *scene) Update(r Renderer) []Command {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.sized {
		s.resize(r.ScreenSize())
	}

	var cmds []Command
	for _, m := range s.pending {
		cmds = append(cmds, s.controls.Update(m)...)
	}
	s.pending = s.pending[:0]

	s.updateCamera()
	r.SetCamera(s.camera)

	if s.controls.Dirty() {
		s.retile(r)
	}

	if !s.spritesPlaced {
		if err := r.SetSprites(defaultSprites); err != nil {
			s.logger.Error("failed to place sprites", zap.Error(err))
		} else {
			s.spritesPlaced = true
		}
	}
	return cmds
}

func (s *scene) updateCamera() {
	ct := s.controls.Settings().CameraTab
	size := float32(s.controls.Settings().TilingTab.Data.Size)
	s.camera.SetHeight(ct.Height)
	s.camera.SetAngle(ct.Angle, ct.Distance)
	s.camera.SetTarget(mgl32.Vec3{1, 1, 0}.Mul(size/2 + 1))
	s.camera.SetFovy(ct.Fov)
}

func (s *scene) retile(r Renderer) {
	params := s.controls.Params()
	if s.rejected != nil && *s.rejected == params {
		return
	}

	tiles, err := s.generator.Generate(params)
	if err == nil {
		err = r.SetTiles(tiles)
	}
	if err != nil {
		s.rejected = &params
		s.status = err.Error()
		if errors.Is(err, terrain.ErrZeroSize) {
			s.logger.Warn("terrain rejected", zap.Error(err))
		} else {
			s.logger.Error("terrain regeneration failed", zap.Any("params", params), zap.Error(err))
		}
		return
	}

	s.rejected = nil
	s.status = ""
	s.controls.Update(Retiled{})
	s.logger.Debug("terrain regenerated", zap.Int("tiles", len(tiles)), zap.Any("params", params))
}

func (s *scene) OverlayPrimitive() (overlay.Primitive, overlay.CursorHint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hint := overlay.CursorIdle
	if s.adjusting && s.controls.Editable() {
		hint = overlay.CursorPointer
	}
	return s.controls.Primitive(s.status), hint
}

func (s *scene) Settings() storage.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controls.Settings()
}

func (s *scene) ApplySettings(settings storage.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controls.Update(SettingsReplaced{Settings: settings})
	s.rejected = nil
	s.status = ""
}
