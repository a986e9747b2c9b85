// Package raster holds the floating-point image buffers the dehazing
// pipeline works on, and the conversions to and from image.Image.
//
// Samples are normalized to [0,1]. Images are stored as three planar
// channels in row-major order, which keeps per-channel arithmetic a
// straight slice operation.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/floats"

	"github.com/menta2k/image-dehazer/pkg/types"
)

// Channels is the number of colour planes in an Image
const Channels = 3

// GrayMap is a single-channel height×width buffer
type GrayMap struct {
	Width  int
	Height int
	Pix    []float64
}

// Image is a height×width×3 buffer with one plane per colour channel
type Image struct {
	Width  int
	Height int
	Pix    [Channels][]float64
}

// NewGrayMap allocates a zeroed GrayMap
func NewGrayMap(width, height int) GrayMap {
	return GrayMap{Width: width, Height: height, Pix: make([]float64, width*height)}
}

// NewImage allocates a zeroed Image
func NewImage(width, height int) Image {
	img := Image{Width: width, Height: height}
	for k := range img.Pix {
		img.Pix[k] = make([]float64, width*height)
	}
	return img
}

// Len returns the number of pixels
func (g GrayMap) Len() int {
	return g.Width * g.Height
}

// At returns the sample at (x, y)
func (g GrayMap) At(x, y int) float64 {
	return g.Pix[y*g.Width+x]
}

// Set writes the sample at (x, y)
func (g GrayMap) Set(x, y int, v float64) {
	g.Pix[y*g.Width+x] = v
}

// Row returns the samples of row y
func (g GrayMap) Row(y int) []float64 {
	return g.Pix[y*g.Width : (y+1)*g.Width]
}

// Clone returns a deep copy
func (g GrayMap) Clone() GrayMap {
	c := NewGrayMap(g.Width, g.Height)
	copy(c.Pix, g.Pix)
	return c
}

// SameSize reports whether both maps have the same dimensions
func (g GrayMap) SameSize(o GrayMap) bool {
	return g.Width == o.Width && g.Height == o.Height
}

// Min returns the smallest sample
func (g GrayMap) Min() float64 {
	return floats.Min(g.Pix)
}

// Max returns the largest sample
func (g GrayMap) Max() float64 {
	return floats.Max(g.Pix)
}

// Mul returns the elementwise product of two maps of equal size
func Mul(a, b GrayMap) GrayMap {
	out := NewGrayMap(a.Width, a.Height)
	floats.MulTo(out.Pix, a.Pix, b.Pix)
	return out
}

// Len returns the number of pixels
func (m Image) Len() int {
	return m.Width * m.Height
}

// Channel returns a copy of colour plane k as a GrayMap
func (m Image) Channel(k int) GrayMap {
	g := NewGrayMap(m.Width, m.Height)
	copy(g.Pix, m.Pix[k])
	return g
}

// Clone returns a deep copy
func (m Image) Clone() Image {
	c := NewImage(m.Width, m.Height)
	for k := range m.Pix {
		copy(c.Pix[k], m.Pix[k])
	}
	return c
}

// Validate checks the buffer is non-empty, consistent and holds samples
// in [0,1]. NaN and ±Inf are rejected.
func (m Image) Validate() error {
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("%w: empty image %dx%d", types.ErrInvalidParameter, m.Width, m.Height)
	}
	for k, plane := range m.Pix {
		if len(plane) != m.Len() {
			return fmt.Errorf("%w: channel %d has %d samples, want %d",
				types.ErrInvalidParameter, k, len(plane), m.Len())
		}
		for i, v := range plane {
			if !(v >= 0 && v <= 1) {
				return fmt.Errorf("%w: channel %d sample (%d, %d) is %g, want [0,1]",
					types.ErrInvalidParameter, k, i%m.Width, i/m.Width, v)
			}
		}
	}
	return nil
}

// MinChannels returns the per-pixel minimum across the colour planes
func MinChannels(m Image) GrayMap {
	g := NewGrayMap(m.Width, m.Height)
	r, gr, b := m.Pix[0], m.Pix[1], m.Pix[2]
	for i := range g.Pix {
		g.Pix[i] = math.Min(r[i], math.Min(gr[i], b[i]))
	}
	return g
}

// MeanChannels returns the per-pixel mean across the colour planes
func MeanChannels(m Image) GrayMap {
	g := NewGrayMap(m.Width, m.Height)
	for k := range m.Pix {
		floats.Add(g.Pix, m.Pix[k])
	}
	floats.Scale(1.0/Channels, g.Pix)
	return g
}

// FromImage converts any image.Image into a normalized Image. Pixels are
// read through a non-premultiplied 8-bit copy, so a sample v maps to v/255.
func FromImage(src image.Image) Image {
	nrgba := imaging.Clone(src)
	b := nrgba.Bounds()
	m := NewImage(b.Dx(), b.Dy())
	for y := 0; y < m.Height; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+m.Width*4]
		off := y * m.Width
		for x := 0; x < m.Width; x++ {
			m.Pix[0][off+x] = float64(row[x*4+0]) / 255
			m.Pix[1][off+x] = float64(row[x*4+1]) / 255
			m.Pix[2][off+x] = float64(row[x*4+2]) / 255
		}
	}
	return m
}

// ToNRGBA scales the buffer to 0-255 and returns an opaque image.
// Samples outside [0,1] are clamped.
func (m Image) ToNRGBA() *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		off := y * m.Width
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < m.Width; x++ {
			row[x*4+0] = to8(m.Pix[0][off+x])
			row[x*4+1] = to8(m.Pix[1][off+x])
			row[x*4+2] = to8(m.Pix[2][off+x])
			row[x*4+3] = 0xff
		}
	}
	return dst
}

// ToGray16 renders the map as a 16-bit grayscale image, with [0,1]
// mapped onto the full range.
func (g GrayMap) ToGray16() *image.Gray16 {
	dst := image.NewGray16(image.Rect(0, 0, g.Width, g.Height))
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			v := clamp01(g.At(x, y))
			dst.SetGray16(x, y, color.Gray16{Y: uint16(math.Round(v * 0xffff))})
		}
	}
	return dst
}

func to8(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}

// clamp01 maps NaN to 0
func clamp01(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v >= 0:
		return v
	default:
		return 0
	}
}
