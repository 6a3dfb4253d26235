package retouch

import (
	"fmt"
	"strings"

	"github.com/gogpu/retouch/internal/filter"
)

// FilterKind identifies an adjustment. The declaration order is the order
// in which filters are applied.
type FilterKind uint8

const (
	// Exposition scales lightness by 2^ev. Params: [ev].
	Exposition FilterKind = iota

	// Sharpening subtracts a Laplacian of Gaussian from Oklab lightness.
	// Params: [sigma, size]; size 0 derives the kernel size from sigma.
	Sharpening

	// WhiteBalance adapts the image between two white points.
	// Params: [fromTemp, fromTint, toTemp, toTint].
	WhiteBalance

	// Contrast scales colour channels around the mean. Params: [amount].
	Contrast

	// Saturation adds amount/2 to HSL saturation. Params: [amount].
	Saturation

	// GaussianBlur approximates a Gaussian with iterated box blurs.
	// Params: [sigma, passes].
	GaussianBlur

	// BoxBlur is a mean filter over a square window. Params: [radius].
	BoxBlur

	filterKindCount
)

// NeutralTemp is the white balance temperature that leaves colours
// unchanged when used as both source and target.
const NeutralTemp = filter.NeutralTemp

// kindInfo describes one filter kind.
type kindInfo struct {
	name     string
	defaults []float64

	// secondary marks parameters taken verbatim from the desired stack
	// instead of being accumulated.
	secondary []bool

	// monotonic kinds cannot undo themselves: a negative delta needs a
	// rebuild from the source image.
	monotonic bool
}

var kindTable = [filterKindCount]kindInfo{
	Exposition: {
		name:     "exposition",
		defaults: []float64{0},
	},
	Sharpening: {
		name:      "sharpening",
		defaults:  []float64{0, 0},
		secondary: []bool{false, true},
		monotonic: true,
	},
	WhiteBalance: {
		name:     "whitebalance",
		defaults: []float64{NeutralTemp, 0, NeutralTemp, 0},
	},
	Contrast: {
		name:     "contrast",
		defaults: []float64{0},
	},
	Saturation: {
		name:     "saturation",
		defaults: []float64{0},
	},
	GaussianBlur: {
		name:      "gaussianblur",
		defaults:  []float64{0, filter.DefaultGaussPasses},
		secondary: []bool{false, true},
		monotonic: true,
	},
	BoxBlur: {
		name:      "boxblur",
		defaults:  []float64{0},
		monotonic: true,
	},
}

// gpuShaders lists the kinds that have a GPU compute shader.
var gpuShaders = [filterKindCount]bool{
	Exposition:   true,
	WhiteBalance: true,
	Saturation:   true,
}

// Kinds returns every filter kind in application order.
func Kinds() []FilterKind {
	out := make([]FilterKind, filterKindCount)
	for i := range out {
		out[i] = FilterKind(i)
	}
	return out
}

// IsValid reports whether k is a known kind.
func (k FilterKind) IsValid() bool { return k < filterKindCount }

// String returns the lower-case filter name.
func (k FilterKind) String() string {
	if !k.IsValid() {
		return fmt.Sprintf("FilterKind(%d)", k)
	}
	return kindTable[k].name
}

// Arity returns the number of parameters of k.
func (k FilterKind) Arity() int {
	if !k.IsValid() {
		return 0
	}
	return len(kindTable[k].defaults)
}

// Defaults returns a copy of the default (no-op) parameters of k.
func (k FilterKind) Defaults() []float64 {
	if !k.IsValid() {
		return nil
	}
	return append([]float64(nil), kindTable[k].defaults...)
}

// HasGPUShader reports whether k can run on a GPU accelerator.
func (k FilterKind) HasGPUShader() bool { return k.IsValid() && gpuShaders[k] }

// Op returns the accelerator capability bit for k.
func (k FilterKind) Op() AcceleratedOp { return AcceleratedOp(1) << k }

// ParseFilterKind looks a kind up by name, ignoring case.
func ParseFilterKind(name string) (FilterKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k := range filterKindCount {
		if kindTable[k].name == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
}

func (k FilterKind) isSecondary(i int) bool {
	s := kindTable[k].secondary
	return i < len(s) && s[i]
}
