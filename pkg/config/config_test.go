package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "output_dir", cfg.Output)
	assert.Equal(t, "cyan", cfg.Color)
	assert.Equal(t, 30.0, cfg.Tolerance)
	assert.Equal(t, 300.0, cfg.DPI)
	assert.False(t, cfg.Force)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, t.TempDir(), ".ptof.yaml", `
output: figures
color: "#FF00FF"
tolerance: 12
margin: 5
dpi: 150
auto_name: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "figures", cfg.Output)
	assert.Equal(t, "#FF00FF", cfg.Color)
	assert.Equal(t, 12.0, cfg.Tolerance)
	assert.Equal(t, 5.0, cfg.Margin)
	assert.Equal(t, 150.0, cfg.DPI)
	assert.True(t, cfg.AutoName)
	// Unset fields keep their defaults.
	assert.False(t, cfg.Quiet)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), ".ptof.yaml", "margin: 10\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10.0, cfg.Margin)
	assert.Equal(t, "output_dir", cfg.Output)
	assert.Equal(t, "cyan", cfg.Color)
	assert.Equal(t, 300.0, cfg.DPI)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown key", content: "colour: cyan\n"},
		{name: "negative tolerance", content: "tolerance: -1\n"},
		{name: "zero dpi", content: "dpi: 0\n"},
		{name: "bad color", content: "color: chartreuse-ish\n"},
		{name: "not yaml", content: "{{{\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, dir, tt.name+".yaml", tt.content)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDiscover(t *testing.T) {
	t.Run("no file returns defaults", func(t *testing.T) {
		cfg, path, err := Discover(t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, path)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("dotted name preferred", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, ".ptof.yaml", "margin: 1\n")
		writeConfig(t, dir, "ptof.yaml", "margin: 2\n")

		cfg, path, err := Discover(dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, ".ptof.yaml"), path)
		assert.Equal(t, 1.0, cfg.Margin)
	})
}
