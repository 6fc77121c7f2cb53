package engine

import (
	"time"

	"github.com/Carmen-Shannon/hexa/engine/storage"
	"github.com/Carmen-Shannon/hexa/engine/window"
	"go.uber.org/zap"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithWindow sets the window the loop runs on.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets the renderer driven by the active scene.
func WithRenderer(r Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithSceneFactory sets the constructor of the active scene. It is called once at startup with the
// stored settings and again on every swap.
func WithSceneFactory(factory SceneFactory) EngineBuilderOption {
	return func(e *engine) {
		e.factory = factory
	}
}

// WithStore sets where settings are loaded from and saved to.
func WithStore(store storage.Store) EngineBuilderOption {
	return func(e *engine) {
		e.store = store
	}
}

// WithReload sets the channel of settings file changes. It is drained once per frame.
func WithReload(events <-chan string) EngineBuilderOption {
	return func(e *engine) {
		e.reload = events
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}
