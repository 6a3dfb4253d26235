// Package pixel provides the channel element types and the flat image buffer
// shared by every stage of the retouch pipeline.
//
// An Image stores width*height*channels elements row-major in exactly one of
// three backing slices, selected by its Depth. All filter code reads and
// writes channel values as normalized float32 through Image.At and
// Image.Set, so kernels are written once for every depth.
package pixel

import "math"

// Depth identifies the element type of an image channel.
type Depth uint8

const (
	// U8 stores channels as 8-bit unsigned integers in [0, 255].
	U8 Depth = iota

	// U16 stores channels as 16-bit unsigned integers in [0, 65535].
	U16

	// F32 stores channels as 32-bit floats, nominally in [0, 1].
	F32

	// depthCount is the number of depths (for internal use).
	depthCount
)

// DepthInfo contains metadata about a channel depth.
type DepthInfo struct {
	// Name is the short display name.
	Name string

	// Bits is the number of bits per channel.
	Bits int

	// Max is the value that represents full intensity.
	Max float64

	// IsFloat reports whether channels are stored as floating point.
	IsFloat bool
}

var depthInfoTable = [depthCount]DepthInfo{
	U8:  {Name: "u8", Bits: 8, Max: math.MaxUint8},
	U16: {Name: "u16", Bits: 16, Max: math.MaxUint16},
	F32: {Name: "f32", Bits: 32, Max: 1, IsFloat: true},
}

// Info returns the DepthInfo for d.
func (d Depth) Info() DepthInfo {
	if d >= depthCount {
		return DepthInfo{Name: "invalid"}
	}
	return depthInfoTable[d]
}

// Max returns the full-intensity value of d.
func (d Depth) Max() float64 { return d.Info().Max }

// Bits returns the number of bits per channel.
func (d Depth) Bits() int { return d.Info().Bits }

// IsFloat reports whether d is a floating point depth.
func (d Depth) IsFloat() bool { return d.Info().IsFloat }

// IsValid reports whether d is a known depth.
func (d Depth) IsValid() bool { return d < depthCount }

// String returns the depth name.
func (d Depth) String() string { return d.Info().Name }

// Scale converts a channel value between depths, preserving relative
// intensity.
//
// Integer to integer conversions rescale by the ratio of maxima and round.
// Integer to float divides by the source maximum. Float to integer
// multiplies by the target maximum, rounds and clamps to the target range.
// Float to float returns v unchanged. Scale never fails.
func Scale(v float64, from, to Depth) float64 {
	if from == to {
		return v
	}
	fi, ti := from.Info(), to.Info()
	switch {
	case fi.IsFloat && ti.IsFloat:
		return v
	case fi.IsFloat:
		return clampRound(v*ti.Max, ti.Max)
	case ti.IsFloat:
		return v / fi.Max
	default:
		return clampRound(v*ti.Max/fi.Max, ti.Max)
	}
}

func clampRound(v, hi float64) float64 {
	v = math.Round(v)
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}
