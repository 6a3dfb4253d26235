package spaces

import (
	"github.com/gogpu/retouch/internal/color"
	"github.com/gogpu/retouch/internal/parallel"
	"github.com/gogpu/retouch/pixel"
)

func rgbToHSL(pool *parallel.WorkerPool, src *pixel.Image, dst *Planes) {
	ch := src.Channels
	parallel.ForRows(pool, src.Height, func(y0, y1 int) {
		for i := y0 * src.Width * ch; i < y1*src.Width*ch; i += ch {
			h, s, l := color.RGBToHSL(float64(src.At(i)), float64(src.At(i+1)), float64(src.At(i+2)))
			dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2] = float32(h), float32(s), float32(l)
			if ch == 4 {
				dst.Pix[i+3] = src.At(i + 3)
			}
		}
	})
}

func hslToRGB(pool *parallel.WorkerPool, src *Planes, dst *pixel.Image) {
	ch := src.Channels
	parallel.ForRows(pool, src.Height, func(y0, y1 int) {
		for i := y0 * src.Width * ch; i < y1*src.Width*ch; i += ch {
			r, g, b := color.HSLToRGB(float64(src.Pix[i]), float64(src.Pix[i+1]), float64(src.Pix[i+2]))
			dst.Set(i, float32(r))
			dst.Set(i+1, float32(g))
			dst.Set(i+2, float32(b))
			if ch == 4 {
				dst.Set(i+3, src.Pix[i+3])
			}
		}
	})
}

func rgbToLab(pool *parallel.WorkerPool, src *pixel.Image, dst *Planes) {
	ch := src.Channels
	decode := func(i int) float64 { return color.SRGBToLinear(float64(src.At(i))) }
	if src.Depth == pixel.U8 {
		decode = func(i int) float64 { return float64(color.DecodeGamma8(src.Pix8[i])) }
	}
	parallel.ForRows(pool, src.Height, func(y0, y1 int) {
		for i := y0 * src.Width * ch; i < y1*src.Width*ch; i += ch {
			l, a, b := color.LinearToOklab(decode(i), decode(i+1), decode(i+2))
			dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2] = float32(l), float32(a), float32(b)
			if ch == 4 {
				dst.Pix[i+3] = src.At(i + 3)
			}
		}
	})
}

func labToRGB(pool *parallel.WorkerPool, src *Planes, dst *pixel.Image) {
	ch := src.Channels
	parallel.ForRows(pool, src.Height, func(y0, y1 int) {
		for i := y0 * src.Width * ch; i < y1*src.Width*ch; i += ch {
			r, g, b := color.OklabToRGB(float64(src.Pix[i]), float64(src.Pix[i+1]), float64(src.Pix[i+2]))
			dst.Set(i, float32(r))
			dst.Set(i+1, float32(g))
			dst.Set(i+2, float32(b))
			if ch == 4 {
				dst.Set(i+3, src.Pix[i+3])
			}
		}
	})
}
