package main

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/image-dehazer/internal/config"
	"github.com/menta2k/image-dehazer/internal/utils"
)

// writeTestImage writes a hazy gradient PNG and returns its path
func writeTestImage(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 48, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 48; x++ {
			img.Set(x, y, color.NRGBA{uint8(100 + x*2), uint8(120 + y*2), 180, 255})
		}
	}
	path := filepath.Join(dir, name)
	require.NoError(t, imaging.Save(img, path))
	return path
}

func TestRootCommand(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "results")
	input := writeTestImage(t, in, "hazy.png")

	cmd := newRootCmd()
	cmd.SetArgs([]string{input, "--out", out, "--radius", "10", "--compare", "--transmission", "--histogram"})
	require.NoError(t, cmd.Execute())

	for _, name := range []string{"hazy_dehazed.png", "hazy_dehazed_compare.png", "hazy_transmission.png", "hazy_histogram.png"} {
		assert.True(t, utils.IsFile(filepath.Join(out, name)), name)
	}

	compare, err := imaging.Open(filepath.Join(out, "hazy_dehazed_compare.png"))
	require.NoError(t, err)
	assert.Equal(t, 96, compare.Bounds().Dx())
}

func TestRootCommandDirectoryAndFormat(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeTestImage(t, in, "a.png")
	writeTestImage(t, in, "b.png")

	cmd := newRootCmd()
	cmd.SetArgs([]string{in, "-o", out, "-r", "5", "--ext", "jpg", "--gamma"})
	require.NoError(t, cmd.Execute())

	assert.True(t, utils.IsFile(filepath.Join(out, "a_dehazed.jpg")))
	assert.True(t, utils.IsFile(filepath.Join(out, "b_dehazed.jpg")))
}

func TestRootCommandConfigFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "from-config")
	input := writeTestImage(t, dir, "scene.png")

	cfg := config.Default()
	cfg.Dehaze.Radius = 6
	cfg.Output.OutputDir = out
	cfg.Output.Suffix = "_clear"
	configPath := filepath.Join(dir, "dehazer.yaml")
	require.NoError(t, cfg.SaveToFile(configPath))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", configPath, input})
	require.NoError(t, cmd.Execute())
	assert.True(t, utils.IsFile(filepath.Join(out, "scene_clear.png")))
}

func TestRootCommandErrors(t *testing.T) {
	dir := t.TempDir()
	input := writeTestImage(t, dir, "hazy.png")

	tests := []struct {
		name string
		args []string
	}{
		{"no inputs", []string{}},
		{"missing input", []string{filepath.Join(dir, "missing.png")}},
		{"invalid weight", []string{input, "--weight", "0", "-o", dir}},
		{"invalid cap", []string{input, "--max-v1", "2", "-o", dir}},
		{"invalid format", []string{input, "--ext", "heic", "-o", dir}},
		{"empty directory", []string{t.TempDir(), "-o", dir}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRootCmd()
			cmd.SetArgs(tt.args)
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			assert.Error(t, cmd.Execute())
		})
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "dehazer.json")

	var stdout bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"config", "init", path})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, path, strings.TrimSpace(stdout.String()))
	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	a := writeTestImage(t, dir, "a.png")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	inputs, err := expandInputs([]string{dir, a, "https://example.com/hazy.jpg"})
	require.NoError(t, err)
	assert.Equal(t, []string{a, "https://example.com/hazy.jpg"}, inputs)
}

func TestInputName(t *testing.T) {
	assert.Equal(t, "hazy.png", inputName(filepath.Join("photos", "hazy.png")))
	assert.Equal(t, "hazy.jpg", inputName("https://example.com/img/hazy.jpg?size=large"))
	assert.Equal(t, "download", inputName("https://example.com/"))
	assert.Equal(t, "download", inputName("https://example.com"))
}
