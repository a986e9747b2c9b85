// Package atmosphere estimates the haze density map and the global
// atmospheric light of a hazy image using the dark channel prior.
package atmosphere

import (
	"context"
	"fmt"
	"math"

	"github.com/menta2k/image-dehazer/pkg/filter"
	"github.com/menta2k/image-dehazer/pkg/raster"
	"github.com/menta2k/image-dehazer/pkg/types"
)

const (
	// DarkChannelRadius is the erosion radius used to build the guidance
	// map. It does not follow the guided filter radius.
	DarkChannelRadius = 7

	// HistogramBins is the resolution of the dark channel histogram
	HistogramBins = 2000

	// CutoffFraction discards the brightest 0.1% of the dark channel
	// when picking atmospheric light candidates.
	CutoffFraction = 0.999
)

// Result is the outcome of an estimation
type Result struct {
	// Transmission is the weighted and capped haze density map (V1)
	Transmission raster.GrayMap
	// Light is the global atmospheric light (A)
	Light float64

	// Histogram of the refined dark channel before weighting
	Histogram Histogram
	// Cutoff is the selected bin and Threshold its lower edge
	Cutoff    int
	Threshold float64
}

// DarkChannel returns the per-pixel minimum over the colour channels
func DarkChannel(m raster.Image) raster.GrayMap {
	return raster.MinChannels(m)
}

// Estimate computes the haze density map and atmospheric light of m.
func Estimate(ctx context.Context, m raster.Image, p types.Params) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	if err := m.Validate(); err != nil {
		return Result{}, err
	}

	dark := DarkChannel(m)
	guidance, err := filter.Min(ctx, dark, DarkChannelRadius)
	if err != nil {
		return Result{}, fmt.Errorf("dark channel erosion: %w", err)
	}
	refined, err := filter.Guided(ctx, guidance, dark, p.Radius, p.Eps)
	if err != nil {
		return Result{}, fmt.Errorf("dark channel refinement: %w", err)
	}

	hist, err := NewHistogram(refined.Pix, HistogramBins)
	if err != nil {
		return Result{}, fmt.Errorf("dark channel histogram: %w", err)
	}
	cutoff := hist.CutoffBin(CutoffFraction)
	threshold := hist.Edges[cutoff]

	light := brightestMean(m, refined, threshold)
	if !(light > 0) || math.IsInf(light, 0) {
		return Result{}, fmt.Errorf("%w: atmospheric light is %g", types.ErrDegenerateInput, light)
	}

	return Result{
		Transmission: capTransmission(refined, p.Weight, p.MaxV1),
		Light:        light,
		Histogram:    hist,
		Cutoff:       cutoff,
		Threshold:    threshold,
	}, nil
}

// brightestMean returns the largest channel mean among pixels whose
// dark channel value reaches the threshold.
func brightestMean(m raster.Image, dark raster.GrayMap, threshold float64) float64 {
	mean := raster.MeanChannels(m)
	light := math.Inf(-1)
	for i, v := range dark.Pix {
		if v >= threshold && mean.Pix[i] > light {
			light = mean.Pix[i]
		}
	}
	return light
}

// capTransmission scales by w and bounds the result to [0, maxV1]
func capTransmission(v raster.GrayMap, w, maxV1 float64) raster.GrayMap {
	out := raster.NewGrayMap(v.Width, v.Height)
	for i, x := range v.Pix {
		out.Pix[i] = math.Max(0, math.Min(x*w, maxV1))
	}
	return out
}
