// Package config handles application configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Config holds all application settings.
type Config struct {
	Window   WindowConfig   `yaml:"window" toml:"window"`
	Renderer RendererConfig `yaml:"renderer" toml:"renderer"`
	Terrain  TerrainConfig  `yaml:"terrain" toml:"terrain"`
	Settings SettingsConfig `yaml:"settings" toml:"settings"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
	Reload   ReloadConfig   `yaml:"reload" toml:"reload"`
}

// WindowConfig holds window settings.
type WindowConfig struct {
	Title  string `yaml:"title" toml:"title"`
	Width  int    `yaml:"width" toml:"width"`
	Height int    `yaml:"height" toml:"height"`
	// WaitTimeoutMS bounds how long the idle loop waits for input; 0 polls continuously.
	WaitTimeoutMS int `yaml:"wait_timeout_ms" toml:"wait_timeout_ms"`
}

// RendererConfig holds rendering settings.
type RendererConfig struct {
	MSAA            int    `yaml:"msaa" toml:"msaa"`
	VSync           bool   `yaml:"vsync" toml:"vsync"`
	SoftwareAdapter bool   `yaml:"software_adapter" toml:"software_adapter"`
	Capacity        uint32 `yaml:"capacity" toml:"capacity"`
	Profile         bool   `yaml:"profile" toml:"profile"`
}

// TerrainConfig selects the tile generation strategy.
type TerrainConfig struct {
	Policy        string `yaml:"policy" toml:"policy"`
	Noise         string `yaml:"noise" toml:"noise"`
	SparseColumns bool   `yaml:"sparse_columns" toml:"sparse_columns"`
}

// SettingsConfig locates the persisted panel settings.
type SettingsConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// ReloadConfig controls the settings file watcher.
type ReloadConfig struct {
	Enabled    bool `yaml:"enabled" toml:"enabled"`
	DebounceMS int  `yaml:"debounce_ms" toml:"debounce_ms"`
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Renderer.Capacity == 0 {
		return errors.New("renderer capacity must be at least 1")
	}
	return nil
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:         "hexa",
			Width:         1280,
			Height:        720,
			WaitTimeoutMS: 16,
		},
		Renderer: RendererConfig{
			MSAA:     4,
			VSync:    true,
			Capacity: 250,
		},
		Terrain: TerrainConfig{
			Policy: "ring",
			Noise:  "perlin",
		},
		Settings: SettingsConfig{
			Path: "save.json",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Reload: ReloadConfig{
			Enabled:    true,
			DebounceMS: 100,
		},
	}
}
