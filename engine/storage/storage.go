// Package storage persists the control panel settings as pretty-printed JSON.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/chewxy/math32"
	"go.uber.org/zap"
)

// DefaultPath is the settings file used when no path is configured.
const DefaultPath = "save.json"

// ErrNoSettings is returned by Load when the settings file does not exist.
var ErrNoSettings = errors.New("storage: no saved settings")

// CameraTab holds the camera panel values.
type CameraTab struct {
	Fov      float32 `json:"fov"`
	Height   float32 `json:"height"`
	Angle    float32 `json:"angle"`
	Distance float32 `json:"distance"`
}

// TilingData holds the terrain generation inputs.
type TilingData struct {
	Elevation float32 `json:"elevation"`
	Size      uint32  `json:"size"`
	Seed      uint32  `json:"seed"`
}

// TilingTab wraps the tiling values. The dirty flag is runtime-only and never persisted.
type TilingTab struct {
	Data TilingData `json:"data"`
}

// Settings is the persisted state of the control panel.
type Settings struct {
	CameraTab CameraTab `json:"camera_tab"`
	TilingTab TilingTab `json:"tiling_tab"`
}

// DefaultSettings returns the values a fresh panel starts with.
func DefaultSettings() Settings {
	return Settings{
		CameraTab: CameraTab{
			Fov:      math32.Pi / 2,
			Height:   3,
			Angle:    math32.Pi / 2,
			Distance: 6,
		},
		TilingTab: TilingTab{
			Data: TilingData{Elevation: 0.1, Size: 5, Seed: 42},
		},
	}
}

type store struct {
	mu     *sync.Mutex
	path   string
	logger *zap.Logger
}

// Store reads and writes Settings at a fixed path.
type Store interface {
	// Path returns the settings file location.
	Path() string

	// Load reads the settings file. Fields missing from the file keep their defaults.
	//
	// Returns:
	//   - Settings: the decoded settings
	//   - error: ErrNoSettings if the file does not exist, or a read/decode error
	Load() (Settings, error)

	// LoadOrDefault reads the settings file, logging a warning and returning the defaults on any failure.
	LoadOrDefault() Settings

	// Save writes the settings atomically through a temporary file in the same directory.
	//
	// Parameters:
	//   - s: the settings to write
	//
	// Returns:
	//   - error: error if the file could not be written or renamed into place
	Save(s Settings) error
}

var _ Store = &store{}

// NewStore creates a Store for path. An empty path uses DefaultPath.
//
// Parameters:
//   - path: the settings file path
//   - opts: functional options
//
// Returns:
//   - Store: the store
func NewStore(path string, opts ...StoreBuilderOption) Store {
	if path == "" {
		path = DefaultPath
	}
	s := &store{
		mu:     &sync.Mutex{},
		path:   path,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *store) Path() string {
	return s.path
}

func (s *store) Load() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Settings{}, fmt.Errorf("%w: %s", ErrNoSettings, s.path)
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings %s: %w", s.path, err)
	}
	return settings, nil
}

func (s *store) LoadOrDefault() Settings {
	settings, err := s.Load()
	if err != nil {
		s.logger.Warn("using default settings", zap.String("path", s.path), zap.Error(err))
		return DefaultSettings()
	}
	return settings
}

func (s *store) Save(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace settings: %w", err)
	}

	s.logger.Info("settings saved", zap.String("path", s.path))
	return nil
}
