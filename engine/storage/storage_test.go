package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.json")
	s := NewStore(path)

	want := DefaultSettings()
	want.CameraTab.Height = 12.5
	want.TilingTab.Data = TilingData{Elevation: 2.25, Size: 11, Seed: 4000000000}
	require.NoError(t, s.Save(want))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestSave_Format(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.json")
	require.NoError(t, NewStore(path).Save(DefaultSettings()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "\n  \"camera_tab\": {")
	assert.Contains(t, text, "\"tiling_tab\": {\n    \"data\": {")
	assert.Contains(t, text, "\"seed\": 42")
	assert.NotContains(t, text, "dirty")
}

func TestLoad_Missing(t *testing.T) {
	_, err := NewStore(filepath.Join(t.TempDir(), "none.json")).Load()
	assert.ErrorIs(t, err, ErrNoSettings)
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tiling_tab":{"data":{"size":9}}}`), 0644))

	got, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, uint32(9), got.TilingTab.Data.Size)
	assert.Equal(t, uint32(42), got.TilingTab.Data.Seed)
	assert.Equal(t, DefaultSettings().CameraTab, got.CameraTab)
}

func TestLoadOrDefault_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	core, logs := observer.New(zap.WarnLevel)
	got := NewStore(path, WithLogger(zap.New(core))).LoadOrDefault()
	assert.Equal(t, DefaultSettings(), got)
	assert.Equal(t, 1, logs.FilterMessage("using default settings").Len())
}

func TestNewStore_DefaultPath(t *testing.T) {
	assert.Equal(t, DefaultPath, NewStore("").Path())
}
