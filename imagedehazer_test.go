package imagedehazer

import (
	"context"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/image-dehazer/pkg/types"
)

// createTestImage creates a gradient scene washed out by uniform haze
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := uint8(90 + (x*120)/width)
			g := uint8(110 + (y*100)/height)
			img.Set(x, y, color.RGBA{r, g, 170, 255})
		}
	}

	return img
}

func testParams() types.Params {
	p := types.DefaultParams()
	p.Radius = 20
	return p
}

func TestNew(t *testing.T) {
	d := New()
	require.NotNil(t, d)
	assert.Equal(t, types.DefaultParams(), d.Params())
	assert.Equal(t, Version, GetVersion())
}

func TestDehaze(t *testing.T) {
	d := NewWithConfig(testParams(), nil, nil)
	img := createTestImage(96, 64)

	out, err := d.Dehaze(context.Background(), img)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), out.Bounds())
}

func TestDehazeWithResult(t *testing.T) {
	d := NewWithConfig(testParams(), nil, nil)

	result, err := d.DehazeWithResult(context.Background(), createTestImage(80, 60))
	require.NoError(t, err)

	assert.Equal(t, 80, result.Info.Width)
	assert.Equal(t, 60, result.Info.Height)
	assert.Greater(t, result.Light, 0.0)
	assert.LessOrEqual(t, result.Light, 1.0)
	assert.Equal(t, result.Estimate.Light, result.Light)
	assert.Equal(t, result.Estimate.Threshold, result.Threshold)
	assert.Equal(t, image.Rect(0, 0, 80, 60), d.Transmission(result).Bounds())
}

func TestDehazeRejectsEmptyImage(t *testing.T) {
	_, err := New().Dehaze(context.Background(), image.NewRGBA(image.Rect(0, 0, 0, 0)))
	assert.ErrorContains(t, err, "image validation failed")
}

func TestDehazeRejectsBlackImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}

	_, err := NewWithConfig(testParams(), nil, nil).Dehaze(context.Background(), img)
	assert.ErrorIs(t, err, types.ErrDegenerateInput)
}

func TestCompare(t *testing.T) {
	d := New()
	a := createTestImage(30, 20)
	b := createTestImage(30, 20)

	out := d.Compare(a, b)
	assert.Equal(t, 60, out.Bounds().Dx())
	assert.Equal(t, 20, out.Bounds().Dy())
}

func TestProcessImageFile(t *testing.T) {
	d := NewWithConfig(testParams(), nil, nil)
	dir := t.TempDir()

	input := filepath.Join(dir, "hazy.jpg")
	require.NoError(t, d.SaveImage(createTestImage(64, 48), input))

	output, err := d.ProcessImageFile(context.Background(), input, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "hazy_dehazed.png"), output)

	restored, err := d.LoadImage(output)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 48), restored.Bounds())

	_, err = d.ProcessImageFile(context.Background(), filepath.Join(dir, "missing.png"), dir)
	assert.ErrorContains(t, err, "failed to load image")
}

func TestSaveImageUnsupportedFormat(t *testing.T) {
	err := New().SaveImage(createTestImage(4, 4), filepath.Join(t.TempDir(), "out.heic"))
	assert.ErrorContains(t, err, "unsupported output format")
}

func BenchmarkDehaze(b *testing.B) {
	d := New()
	img := createTestImage(640, 480)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = d.Dehaze(ctx, img)
	}
}
