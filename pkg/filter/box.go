package filter

import (
	"context"
	"fmt"

	"github.com/menta2k/image-dehazer/pkg/raster"
	"github.com/menta2k/image-dehazer/pkg/types"
)

// Box returns the normalized mean of src over a size×size window.
// The window is anchored at its centre (offset size/2 for even sizes)
// and the border is mirrored without repeating the edge sample
// (gfedcb|abcdefgh|gfedcba).
//
// Both passes use prefix sums over a padded line, so the cost does not
// depend on the window size.
func Box(ctx context.Context, src raster.GrayMap, size int) (raster.GrayMap, error) {
	if size < 1 {
		return raster.GrayMap{}, fmt.Errorf("%w: box window must be >= 1, got %d", types.ErrInvalidParameter, size)
	}
	w, h := src.Width, src.Height
	tmp := raster.NewGrayMap(w, h)
	out := raster.NewGrayMap(w, h)
	if src.Len() == 0 {
		return out, ctx.Err()
	}

	err := parallelFor(ctx, h, w, func(start, end int) {
		pad := make([]float64, w+size-1)
		sum := make([]float64, w+size)
		for y := start; y < end; y++ {
			windowSums(tmp.Row(y), src.Row(y), size, pad, sum)
		}
	})
	if err != nil {
		return raster.GrayMap{}, err
	}

	norm := 1 / float64(size*size)
	err = parallelFor(ctx, w, h, func(start, end int) {
		col := make([]float64, h)
		res := make([]float64, h)
		pad := make([]float64, h+size-1)
		sum := make([]float64, h+size)
		for x := start; x < end; x++ {
			for y := 0; y < h; y++ {
				col[y] = tmp.Pix[y*w+x]
			}
			windowSums(res, col, size, pad, sum)
			for y := 0; y < h; y++ {
				out.Pix[y*w+x] = res[y] * norm
			}
		}
	})
	if err != nil {
		return raster.GrayMap{}, err
	}
	return out, nil
}

// windowSums writes into dst the sum of each size-long window of line.
// pad and sum are scratch buffers of len(line)+size-1 and len(line)+size.
func windowSums(dst, line []float64, size int, pad, sum []float64) {
	n := len(line)
	anchor := size / 2
	for i := range pad {
		pad[i] = line[reflect101(i-anchor, n)]
	}
	sum[0] = 0
	for i, v := range pad {
		sum[i+1] = sum[i] + v
	}
	for x := 0; x < n; x++ {
		dst[x] = sum[x+size] - sum[x]
	}
}

// reflect101 maps an out-of-range index back into [0, n)
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		} else {
			i = 2*n - 2 - i
		}
	}
	return i
}
