package color

import "math"

var (
	oklabM1 = Mat3{
		0.4122214708, 0.5363325363, 0.0514459929,
		0.2119034982, 0.6806995451, 0.1073969566,
		0.0883024619, 0.2817188376, 0.6299787005,
	}
	oklabM2 = Mat3{
		0.2104542553, 0.7936177850, -0.0040720468,
		1.9779984951, -2.4285922050, 0.4505937099,
		0.0259040371, 0.7827717662, -0.8086757660,
	}
	oklabM2Inv = Mat3{
		1, 0.3963377774, 0.2158037573,
		1, -0.1055613458, -0.0638541728,
		1, -0.0894841775, -1.2914855480,
	}
	oklabM1Inv = Mat3{
		4.0767416621, -3.3077115913, 0.2309699292,
		-1.2684380046, 2.6097574011, -0.3413193965,
		-0.0041960863, -0.7034186147, 1.7076147010,
	}
)

// LinearToOklab converts linear RGB to Oklab (L in [0,1], a and b roughly
// in [-0.5,0.5]).
func LinearToOklab(r, g, b float64) (l, a, bb float64) {
	lc, mc, sc := oklabM1.Apply(r, g, b)
	return oklabM2.Apply(math.Cbrt(lc), math.Cbrt(mc), math.Cbrt(sc))
}

// OklabToLinear converts Oklab back to linear RGB without clamping.
func OklabToLinear(l, a, b float64) (r, g, bb float64) {
	lc, mc, sc := oklabM2Inv.Apply(l, a, b)
	return oklabM1Inv.Apply(lc*lc*lc, mc*mc*mc, sc*sc*sc)
}

// RGBToOklab converts gamma-encoded RGB to Oklab.
func RGBToOklab(r, g, b float64) (l, a, bb float64) {
	return LinearToOklab(SRGBToLinear(r), SRGBToLinear(g), SRGBToLinear(b))
}

// OklabToRGB converts Oklab to gamma-encoded RGB clamped to [0,1].
func OklabToRGB(l, a, b float64) (r, g, bb float64) {
	lr, lg, lb := OklabToLinear(l, a, b)
	return LinearToSRGB(lr), LinearToSRGB(lg), LinearToSRGB(lb)
}
