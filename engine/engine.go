// Package engine hosts the active scene on the window thread: it routes window events, runs the
// per-frame update, executes scene commands and renders.
package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/Carmen-Shannon/hexa/common"
	"github.com/Carmen-Shannon/hexa/engine/overlay"
	"github.com/Carmen-Shannon/hexa/engine/profiler"
	"github.com/Carmen-Shannon/hexa/engine/renderer"
	"github.com/Carmen-Shannon/hexa/engine/scene"
	"github.com/Carmen-Shannon/hexa/engine/storage"
	"github.com/Carmen-Shannon/hexa/engine/window"
	"go.uber.org/zap"
)

// Renderer is what the engine needs from the renderer on top of what scenes drive.
type Renderer interface {
	scene.Renderer
	Resize(width, height int) error
	Render() error
}

// SceneFactory builds a scene starting from the given settings.
type SceneFactory func(settings storage.Settings) scene.Scene

// engine implements the Engine interface.
type engine struct {
	mu *sync.Mutex

	logger   *zap.Logger
	window   window.Window
	renderer Renderer
	store    storage.Store
	reload   <-chan string

	factory SceneFactory
	scene   scene.Scene

	profiler         *profiler.Profiler
	profilingEnabled bool
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	lastFrame        time.Time

	cursor overlay.CursorHint
}

// Engine is the main entry point for the engine.
// It runs the frame loop on the window thread until the window closes.
type Engine interface {
	// Window returns the underlying window.
	Window() window.Window

	// Scene returns the active scene.
	Scene() scene.Scene

	// SwapScene replaces the active scene with one built by factory from the current settings.
	// The factory is kept and reused for later swaps (F5).
	//
	// Parameters:
	//   - factory: the scene constructor
	SwapScene(factory SceneFactory)

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// Run starts the main loop (blocks until the window closes).
	Run()

	// Quit asks the loop to stop after the current iteration.
	Quit()
}

// NewEngine creates a new Engine. A window, a renderer and a scene factory are required.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: error if a required collaborator is missing
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		mu:     &sync.Mutex{},
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		opt(e)
	}

	switch {
	case e.window == nil:
		return nil, errors.New("engine: no window")
	case e.renderer == nil:
		return nil, errors.New("engine: no renderer")
	case e.factory == nil:
		return nil, errors.New("engine: no scene factory")
	}
	if e.store == nil {
		e.store = storage.NewStore(storage.DefaultPath, storage.WithLogger(e.logger))
	}
	e.profiler = profiler.NewProfiler(e.logger.Named("profiler"), time.Second)
	e.scene = e.factory(e.store.LoadOrDefault())
	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Scene() scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene
}

func (e *engine) SwapScene(factory SceneFactory) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if factory != nil {
		e.factory = factory
	}
	prev := e.scene
	e.scene = e.factory(prev.Settings())
	e.logger.Info("scene swapped", zap.Stringer("from", prev.ID()), zap.Stringer("to", e.scene.ID()))
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) Run() {
	e.window.SetEventCallback(e.handleEvent)
	e.window.SetUpdateCallback(e.frame)
	e.lastFrame = time.Now()
	e.window.ProcessMessages()
}

func (e *engine) Quit() {
	e.window.RequestClose()
}

// handleEvent routes one window event. Resizes reach the renderer before the scene.
func (e *engine) handleEvent(ev window.Event) {
	switch ev.Kind {
	case window.EventResize:
		if err := e.renderer.Resize(ev.Width, ev.Height); err != nil {
			e.logger.Error("resize failed", zap.Int("width", ev.Width), zap.Int("height", ev.Height), zap.Error(err))
		}
	case window.EventKeyDown:
		if ev.Key == common.KeyF5 {
			e.SwapScene(nil)
			return
		}
	}
	// scroll and cursor events carry no modifiers of their own, so the window's held set is used
	e.Scene().HandleEvent(ev, e.window.ScaleFactor(), e.window.Modifiers())
}

// frame runs one loop iteration: reloads, update, commands, overlay, render.
func (e *engine) frame() {
	s := e.Scene()
	e.drainReloads(s)

	for _, cmd := range s.Update(e.renderer) {
		e.execute(cmd)
	}

	p, hint := s.OverlayPrimitive()
	e.renderer.SetOverlay(p)
	if hint != e.cursor {
		e.cursor = hint
		e.window.SetCursor(hint)
	}

	if err := e.renderer.Render(); err != nil {
		if errors.Is(err, renderer.ErrFrameDropped) {
			e.logger.Warn("frame dropped", zap.Error(err))
			e.profiler.FrameDropped()
		} else {
			e.logger.Error("render failed", zap.Error(err))
		}
	}

	if e.profilingEnabled {
		e.profiler.Tick()
	}

	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - time.Since(e.lastFrame); remaining > 0 {
			time.Sleep(remaining)
		}
	}
	e.lastFrame = time.Now()
}

func (e *engine) drainReloads(s scene.Scene) {
	if e.reload == nil {
		return
	}
	for {
		select {
		case path, ok := <-e.reload:
			if !ok {
				e.reload = nil
				return
			}
			settings, err := e.store.Load()
			if err != nil {
				e.logger.Warn("settings reload skipped", zap.String("path", path), zap.Error(err))
				continue
			}
			s.ApplySettings(settings)
			e.logger.Info("settings reloaded", zap.String("path", path))
		default:
			return
		}
	}
}

func (e *engine) execute(cmd scene.Command) {
	switch c := cmd.(type) {
	case scene.SaveCommand:
		if err := e.store.Save(c.Settings); err != nil {
			e.logger.Error("failed to save settings", zap.String("path", e.store.Path()), zap.Error(err))
		}
	default:
		e.logger.Warn("unknown scene command", zap.Any("command", cmd))
	}
}
