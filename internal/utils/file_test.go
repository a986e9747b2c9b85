package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "jpg", Format("photo.JPG"))
	assert.Equal(t, "webp", Format("dir.v2/photo.webp"))
	assert.Equal(t, "", Format("README"))
	assert.Equal(t, "", Format("archive."))
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name                          string
		input, dir, prefix, suffix, f string
		want                          string
	}{
		{"keeps input format", "in/photo.png", "out", "", "_dehazed", "", "out/photo_dehazed.png"},
		{"explicit format", "in/photo.png", "out", "", "_dehazed", "webp", "out/photo_dehazed.webp"},
		{"prefix", "photo.jpeg", "out", "clear_", "", "", "out/clear_photo.jpeg"},
		{"no extension", "download", "out", "", "_dehazed", "", "out/download_dehazed.jpg"},
		{"unreadable extension", "notes.txt", "out", "", "", "", "out/notes.jpg"},
		{"unsafe characters", "in/a:b?.png", "out", "", "", "png", "out/a_b_.png"},
		{"trimmed stem", "in/ .hazy. .png", "out", "", "_x", "", "out/hazy_x.png"},
		{"pipes and brackets", "x<|>y.bmp", "out", "", "", "", "out/x___y.bmp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OutputPath(tt.input, tt.dir, tt.prefix, tt.suffix, tt.f)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestListImages(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub", "nested.png"), 0755))
	for _, name := range []string{"a.jpg", "notes.txt", "sub/b.PNG", "sub/c.webp"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	files, err := ListImages(dir)
	require.NoError(t, err)

	// directories named like images are skipped
	assert.Equal(t, []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "sub", "b.PNG"),
		filepath.Join(dir, "sub", "c.webp"),
	}, files)

	_, err = ListImages(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestIsFileAndIsDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.png")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	missing := filepath.Join(dir, "nope")

	assert.True(t, IsFile(file))
	assert.False(t, IsFile(dir))
	assert.False(t, IsFile(missing))

	assert.True(t, IsDir(dir))
	assert.False(t, IsDir(file))
	assert.False(t, IsDir(missing))
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "0 B", HumanSize(0))
	assert.Equal(t, "512 B", HumanSize(512))
	assert.Equal(t, "1.5 KB", HumanSize(1536))
	assert.Equal(t, "1.0 MB", HumanSize(1<<20))
	assert.Equal(t, "2.0 GB", HumanSize(2<<30))
}
