package filter

import (
	"context"
	"fmt"

	"github.com/menta2k/image-dehazer/pkg/raster"
	"github.com/menta2k/image-dehazer/pkg/types"
)

// Guided smooths p while keeping the edges present in the guidance map.
// Within every r×r window the output is modelled as a·guide + b, where a
// is the local covariance of guide and p over the local variance of guide
// plus eps. Larger eps pulls the result towards the local mean of p.
//
// A radius of 0 is treated as a single-pixel window.
func Guided(ctx context.Context, guide, p raster.GrayMap, r int, eps float64) (raster.GrayMap, error) {
	if r < 0 {
		return raster.GrayMap{}, fmt.Errorf("%w: guided filter radius must be >= 0, got %d", types.ErrInvalidParameter, r)
	}
	if !(eps > 0) {
		return raster.GrayMap{}, fmt.Errorf("%w: guided filter eps must be > 0, got %g", types.ErrInvalidParameter, eps)
	}
	if !guide.SameSize(p) {
		return raster.GrayMap{}, fmt.Errorf("%w: guidance is %dx%d, input is %dx%d",
			types.ErrDimensionMismatch, guide.Width, guide.Height, p.Width, p.Height)
	}
	size := max(r, 1)

	meanI, err := Box(ctx, guide, size)
	if err != nil {
		return raster.GrayMap{}, err
	}
	meanP, err := Box(ctx, p, size)
	if err != nil {
		return raster.GrayMap{}, err
	}
	meanIP, err := Box(ctx, raster.Mul(guide, p), size)
	if err != nil {
		return raster.GrayMap{}, err
	}
	meanII, err := Box(ctx, raster.Mul(guide, guide), size)
	if err != nil {
		return raster.GrayMap{}, err
	}

	a := raster.NewGrayMap(p.Width, p.Height)
	b := raster.NewGrayMap(p.Width, p.Height)
	for i := range a.Pix {
		mi := meanI.Pix[i]
		cov := meanIP.Pix[i] - mi*meanP.Pix[i]
		variance := meanII.Pix[i] - mi*mi
		a.Pix[i] = cov / (variance + eps)
		b.Pix[i] = meanP.Pix[i] - a.Pix[i]*mi
	}

	meanA, err := Box(ctx, a, size)
	if err != nil {
		return raster.GrayMap{}, err
	}
	meanB, err := Box(ctx, b, size)
	if err != nil {
		return raster.GrayMap{}, err
	}

	out := raster.NewGrayMap(p.Width, p.Height)
	for i := range out.Pix {
		out.Pix[i] = meanA.Pix[i]*guide.Pix[i] + meanB.Pix[i]
	}
	return out, nil
}
