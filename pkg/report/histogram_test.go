package report

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/menta2k/image-dehazer/pkg/atmosphere"
	"github.com/menta2k/image-dehazer/pkg/raster"
	"github.com/menta2k/image-dehazer/pkg/types"
)

// createTestImage creates a gradient image with a brighter upper half
func createTestImage(width, height int) raster.Image {
	m := raster.NewImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := 0.2 + 0.5*float64(x)/float64(width)
			if y < height/2 {
				v += 0.2
			}
			for k := range m.Pix {
				m.Pix[k][y*width+x] = v
			}
		}
	}
	return m
}

func TestHistogram(t *testing.T) {
	p := types.DefaultParams()
	p.Radius = 8
	est, err := atmosphere.Estimate(context.Background(), createTestImage(48, 32), p)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Histogram(est, "test", &buf))

	cfg, err := png.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, chartWidth, cfg.Width)
	assert.Equal(t, chartHeight, cfg.Height)
}

func TestHistogramTooFewBins(t *testing.T) {
	var buf bytes.Buffer
	err := Histogram(atmosphere.Result{}, "empty", &buf)
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestConstantLine(t *testing.T) {
	series := constantLine([]float64{0, 1, 2}, 0.5, chart.ColorRed)
	assert.Equal(t, []float64{0.5, 0.5, 0.5}, series.YValues)
	assert.Len(t, series.XValues, 3)
}
