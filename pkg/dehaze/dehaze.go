// Package dehaze restores a haze-free image by inverting the haze
// formation model I = J·t + A·(1-t) with t ≈ 1 - V1/A.
package dehaze

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/menta2k/image-dehazer/pkg/atmosphere"
	"github.com/menta2k/image-dehazer/pkg/raster"
	"github.com/menta2k/image-dehazer/pkg/types"
)

// gammaTarget is the mean brightness gamma correction maps onto
const gammaTarget = 0.5

// Remove returns the dehazed version of m. The input is left untouched.
func Remove(ctx context.Context, m raster.Image, p types.Params) (raster.Image, error) {
	out, _, err := RemoveWithResult(ctx, m, p)
	return out, err
}

// RemoveWithResult is Remove that also hands back the atmosphere
// estimate the restoration was computed from.
func RemoveWithResult(ctx context.Context, m raster.Image, p types.Params) (raster.Image, atmosphere.Result, error) {
	est, err := atmosphere.Estimate(ctx, m, p)
	if err != nil {
		return raster.Image{}, atmosphere.Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return raster.Image{}, atmosphere.Result{}, err
	}

	out, err := Invert(m, est.Transmission, est.Light)
	if err != nil {
		return raster.Image{}, atmosphere.Result{}, err
	}
	if p.Gamma {
		out = Gamma(out)
	}
	return out, est, nil
}

// Invert solves the haze model for every channel and clips the result to
// [0,1]. Near-zero denominators overflow to ±Inf or NaN and are absorbed
// by the clip. v1 must have the dimensions of m.
func Invert(m raster.Image, v1 raster.GrayMap, light float64) (raster.Image, error) {
	if v1.Width != m.Width || v1.Height != m.Height || len(v1.Pix) != m.Len() {
		return raster.Image{}, fmt.Errorf("%w: haze map is %dx%d, image is %dx%d",
			types.ErrDimensionMismatch, v1.Width, v1.Height, m.Width, m.Height)
	}
	out := raster.NewImage(m.Width, m.Height)
	for k := range m.Pix {
		src, dst := m.Pix[k], out.Pix[k]
		if len(src) != len(v1.Pix) {
			return raster.Image{}, fmt.Errorf("%w: channel %d has %d samples, haze map has %d",
				types.ErrDimensionMismatch, k, len(src), len(v1.Pix))
		}
		for i, v := range v1.Pix {
			dst[i] = clip((src[i] - v) / (1 - v/light))
		}
	}
	return out, nil
}

// Gamma raises every sample to ln(0.5)/ln(mean) so the mean brightness
// moves to 0.5. A mean of 0, 1 or a non-finite mean leaves m unchanged.
func Gamma(m raster.Image) raster.Image {
	mean := Mean(m)
	if !(mean > 0 && mean < 1) {
		return m.Clone()
	}
	exp := math.Log(gammaTarget) / math.Log(mean)

	out := raster.NewImage(m.Width, m.Height)
	for k := range m.Pix {
		for i, v := range m.Pix[k] {
			out.Pix[k][i] = math.Pow(v, exp)
		}
	}
	return out
}

// Mean returns the mean over all samples of all channels
func Mean(m raster.Image) float64 {
	var sum float64
	for k := range m.Pix {
		sum += stat.Mean(m.Pix[k], nil)
	}
	return sum / raster.Channels
}

// clip bounds v to [0,1]; NaN becomes 0
func clip(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v >= 0:
		return v
	default:
		return 0
	}
}
