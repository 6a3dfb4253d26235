// Package color provides the colour space conversions used by the retouch
// kernels: a 2.2 display gamma, HSL, an Oklab-style perceptual space and the
// CIE XYZ / Bradford LMS matrices used for chromatic adaptation.
//
// All functions are pure and operate on float64 components. RGB components
// are gamma-encoded in [0,1] unless a name says Linear.
package color

import "math"

// Gamma is the display gamma used for linearization.
const Gamma = 2.2

// decodeLUT provides O(1) gamma decoding for 8-bit components.
var decodeLUT [256]float32

func init() {
	for i := range decodeLUT {
		decodeLUT[i] = float32(math.Pow(float64(i)/255, Gamma))
	}
}

// SRGBToLinear decodes a gamma-encoded component. Input is clamped to [0,1].
func SRGBToLinear(v float64) float64 {
	return math.Pow(clamp01(v), Gamma)
}

// LinearToSRGB encodes a linear component. Input is clamped to [0,1].
func LinearToSRGB(v float64) float64 {
	return math.Pow(clamp01(v), 1/Gamma)
}

// DecodeGamma8 decodes an 8-bit component using the lookup table.
func DecodeGamma8(v uint8) float32 { return decodeLUT[v] }

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Clamp01 clamps v to [0,1]; NaN maps to 0.
func Clamp01(v float64) float64 { return clamp01(v) }
