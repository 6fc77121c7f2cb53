package scene

import (
	"github.com/Carmen-Shannon/hexa/engine/storage"
	"github.com/Carmen-Shannon/hexa/engine/terrain"
	"go.uber.org/zap"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithSettings sets the initial panel values.
//
// Parameters:
//   - settings: the values to start from, usually loaded through storage
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSettings(settings storage.Settings) SceneBuilderOption {
	return func(s *scene) {
		s.controls = NewControls(settings)
	}
}

// WithGenerator sets the terrain generator.
//
// Parameters:
//   - gen: the generator to use for every regeneration
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithGenerator(gen terrain.Generator) SceneBuilderOption {
	return func(s *scene) {
		if gen != nil {
			s.generator = gen
		}
	}
}

// WithLogger sets the scene logger.
func WithLogger(logger *zap.Logger) SceneBuilderOption {
	return func(s *scene) {
		if logger != nil {
			s.logger = logger
		}
	}
}
