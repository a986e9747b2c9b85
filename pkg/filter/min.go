package filter

import (
	"context"
	"fmt"

	"github.com/menta2k/image-dehazer/pkg/raster"
	"github.com/menta2k/image-dehazer/pkg/types"
)

// Min erodes src with a flat (2r+1)×(2r+1) square. Samples outside the
// map are replicated from the nearest edge, which for a minimum is the
// same as ignoring them. r = 0 returns an unchanged copy.
//
// The square is separable, so a sliding-window minimum runs along the
// rows and then along the columns in time linear in the pixel count.
func Min(ctx context.Context, src raster.GrayMap, r int) (raster.GrayMap, error) {
	if r < 0 {
		return raster.GrayMap{}, fmt.Errorf("%w: min filter radius must be >= 0, got %d", types.ErrInvalidParameter, r)
	}
	if err := ctx.Err(); err != nil {
		return raster.GrayMap{}, err
	}
	if r == 0 {
		return src.Clone(), nil
	}

	w, h := src.Width, src.Height
	tmp := raster.NewGrayMap(w, h)
	out := raster.NewGrayMap(w, h)

	err := parallelFor(ctx, h, w, func(start, end int) {
		var q []int
		for y := start; y < end; y++ {
			q = slidingMin(tmp.Row(y), src.Row(y), r, q)
		}
	})
	if err != nil {
		return raster.GrayMap{}, err
	}

	err = parallelFor(ctx, w, h, func(start, end int) {
		var q []int
		col := make([]float64, h)
		res := make([]float64, h)
		for x := start; x < end; x++ {
			for y := 0; y < h; y++ {
				col[y] = tmp.Pix[y*w+x]
			}
			q = slidingMin(res, col, r, q)
			for y := 0; y < h; y++ {
				out.Pix[y*w+x] = res[y]
			}
		}
	})
	if err != nil {
		return raster.GrayMap{}, err
	}
	return out, nil
}

// slidingMin writes into dst the minimum of src over [x-r, x+r] clipped
// to the line. q is a reusable index deque; the grown slice is returned.
func slidingMin(dst, src []float64, r int, q []int) []int {
	n := len(src)
	q = q[:0]
	head := 0
	for j := 0; j < n+r; j++ {
		if j < n {
			for len(q) > head && src[q[len(q)-1]] >= src[j] {
				q = q[:len(q)-1]
			}
			q = append(q, j)
		}
		x := j - r
		if x < 0 {
			continue
		}
		for q[head] < x-r {
			head++
		}
		dst[x] = src[q[head]]
	}
	return q
}
