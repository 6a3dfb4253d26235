package filter

import (
	"math"

	"github.com/gogpu/retouch/internal/parallel"
	"github.com/gogpu/retouch/internal/spaces"
	"github.com/gogpu/retouch/pixel"
)

// ExposureFactor returns the lightness multiplier for an exposure of ev
// stops.
func ExposureFactor(ev float64) float64 { return math.Exp2(ev) }

// SaturationOffset returns the saturation increment for amount v.
func SaturationOffset(v float64) float64 { return v / 2 }

// Exposure multiplies HSL lightness by 2^ev, clamping to [0,1].
func Exposure(pool *parallel.WorkerPool, p *spaces.Planes, ev float64) {
	f := float32(ExposureFactor(ev))
	mapComponent(pool, p, 2, func(l float32) float32 { return l * f })
}

// Saturate adds v/2 to HSL saturation, clamping to [0,1].
func Saturate(pool *parallel.WorkerPool, p *spaces.Planes, v float64) {
	d := float32(SaturationOffset(v))
	mapComponent(pool, p, 1, func(s float32) float32 { return s + d })
}

func mapComponent(pool *parallel.WorkerPool, p *spaces.Planes, comp int, fn func(float32) float32) {
	ch := p.Channels
	parallel.ForRows(pool, p.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := p.Row(y)
			for i := comp; i < len(row); i += ch {
				row[i] = clamp01(fn(row[i]))
			}
		}
	})
}

// MaxContrast bounds the contrast amount in either direction.
const MaxContrast = 0.5

// Contrast scales every colour channel away from (v > 0) or towards
// (v < 0) the image's mean channel value by a factor of 1+v. v is clamped
// to [-MaxContrast, MaxContrast]; results are clamped to the valid range.
func Contrast(pool *parallel.WorkerPool, src *pixel.Image, v float64) *pixel.Image {
	v = math.Max(-MaxContrast, math.Min(MaxContrast, v))
	if v == 0 {
		return src.Clone()
	}
	factor := float32(1 + v)
	mean := float32(meanColor(src))

	out := src.Clone()
	ch := src.Channels
	parallel.ForRows(pool, src.Height, func(y0, y1 int) {
		for i := y0 * src.Width * ch; i < y1*src.Width*ch; i += ch {
			for c := 0; c < 3; c++ {
				out.Set(i+c, clamp01((src.At(i+c)-mean)*factor+mean))
			}
		}
	})
	return out
}

func meanColor(img *pixel.Image) float64 {
	var sum float64
	ch := img.Channels
	for i, n := 0, img.Len(); i < n; i += ch {
		sum += float64(img.At(i)) + float64(img.At(i+1)) + float64(img.At(i+2))
	}
	return sum / float64(3*img.Pixels())
}

func clamp01(v float32) float32 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
