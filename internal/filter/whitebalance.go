package filter

import (
	"math"

	"github.com/gogpu/retouch/internal/color"
	"github.com/gogpu/retouch/internal/parallel"
	"github.com/gogpu/retouch/pixel"
)

// Rational fits of the Planckian locus in CIE 1960 uv, valid from roughly
// 1000K to 15000K.
var (
	locusU = [6]float64{0.860117757, 1.54118254e-4, 1.28641212e-7, 1.0, 8.42420235e-4, 7.08145163e-7}
	locusV = [6]float64{0.317398726, 4.22806245e-5, 4.20481691e-8, 1.0, -2.89741816e-5, 1.61456053e-7}
)

// NeutralTemp is the colour temperature of the reference white.
const NeutralTemp = 6500

func rational(c [6]float64, t float64) float64 {
	return (c[0] + c[1]*t + c[2]*t*t) / (c[3] + c[4]*t + c[5]*t*t)
}

// rationalDeriv is d/dt of rational.
func rationalDeriv(c [6]float64, t float64) float64 {
	a, b, cc, d, f, g := c[0], c[1], c[2], c[3], c[4], c[5]
	den := d + t*(f+g*t)
	return (-a*(f+2*g*t) + b*(d-g*t*t) + cc*t*(2*d+f*t)) / (den * den)
}

// WhitePointUV returns the uv chromaticity of a white at temp kelvin,
// shifted by tint/1000 along the unit normal of the locus.
func WhitePointUV(temp, tint float64) (u, v float64) {
	u = rational(locusU, temp)
	v = rational(locusV, temp)
	du := rationalDeriv(locusU, temp)
	dv := rationalDeriv(locusV, temp)
	if n := math.Hypot(du, dv); n > 0 {
		du, dv = du/n, dv/n
	}
	return u + tint*dv/1000, v - tint*du/1000
}

// UVToXY converts CIE 1960 uv to CIE 1931 xy.
func UVToXY(u, v float64) (x, y float64) {
	d := 2*u - 8*v + 4
	return 3 * u / d, 2 * v / d
}

// WhitePointXYZ returns the XYZ (Y = 1) of a white at temp and tint.
func WhitePointXYZ(temp, tint float64) (x, y, z float64) {
	cx, cy := UVToXY(WhitePointUV(temp, tint))
	return cx / cy, 1, (1 - cx - cy) / cy
}

// AdaptationMatrix returns the XYZ-space Bradford transform scaling each
// cone response by from/to, where from and to are the LMS responses of the
// two white points.
func AdaptationMatrix(fromTemp, fromTint, toTemp, toTint float64) color.Mat3 {
	fl, fm, fs := color.XYZToLMS(WhitePointXYZ(fromTemp, fromTint))
	tl, tm, ts := color.XYZToLMS(WhitePointXYZ(toTemp, toTint))
	diag := color.Diagonal(fl/tl, fm/tm, fs/ts)
	return color.BradfordInverse.Mul(diag).Mul(color.BradfordMatrix)
}

// WhiteBalanceMatrix returns the linear-RGB transform of the adaptation.
// The GPU shader applies the same matrix, so both backends agree.
func WhiteBalanceMatrix(fromTemp, fromTint, toTemp, toTint float64) color.Mat3 {
	m := AdaptationMatrix(fromTemp, fromTint, toTemp, toTint)
	return color.XYZToLinearMatrix.Mul(m).Mul(color.LinearToXYZMatrix)
}

// WhiteBalance adapts src from one white point to another. Pixels are
// linearized, moved through XYZ and the Bradford cone space, and
// re-encoded. Identical white points return a copy.
func WhiteBalance(pool *parallel.WorkerPool, src *pixel.Image, fromTemp, fromTint, toTemp, toTint float64) *pixel.Image {
	if fromTemp == toTemp && fromTint == toTint {
		return src.Clone()
	}
	m := WhiteBalanceMatrix(fromTemp, fromTint, toTemp, toTint)
	return ApplyLinearMatrix(pool, src, m)
}

// ApplyLinearMatrix multiplies every pixel's linear RGB by m. Alpha is
// copied unchanged.
func ApplyLinearMatrix(pool *parallel.WorkerPool, src *pixel.Image, m color.Mat3) *pixel.Image {
	out := src.Clone()
	ch := src.Channels
	decode := func(i int) float64 { return color.SRGBToLinear(float64(src.At(i))) }
	if src.Depth == pixel.U8 {
		decode = func(i int) float64 { return float64(color.DecodeGamma8(src.Pix8[i])) }
	}
	parallel.ForRows(pool, src.Height, func(y0, y1 int) {
		for i := y0 * src.Width * ch; i < y1*src.Width*ch; i += ch {
			r, g, b := m.Apply(decode(i), decode(i+1), decode(i+2))
			out.Set(i, float32(color.LinearToSRGB(r)))
			out.Set(i+1, float32(color.LinearToSRGB(g)))
			out.Set(i+2, float32(color.LinearToSRGB(b)))
		}
	})
	return out
}
