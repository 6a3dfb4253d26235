// Package retouch is a non-destructive image rendering core.
//
// # Overview
//
// A Session holds a loaded image together with two edit stacks: the
// desired stack the user is editing and the baked stack describing what
// the current full-resolution buffer already shows. Each render computes
// the delta between the two, applies only that delta to the current
// buffer, and merges it into the baked stack.
//
// # Quick Start
//
//	import "github.com/gogpu/retouch"
//
//	s := retouch.NewSession()
//	defer s.Close()
//
//	if err := s.Load(img); err != nil {
//	    return err
//	}
//	s.SetFilter(retouch.Exposition, 0.5)
//	s.SetFilter(retouch.Saturation, 0.2)
//	out, err := s.Render()
//
// # Filters
//
// Filters run in a fixed order: Exposition, Sharpening, WhiteBalance,
// Contrast, Saturation, GaussianBlur, BoxBlur. Each has a fixed parameter
// count; see FilterKind.Arity and FilterKind.Defaults.
//
// # Backends
//
// Every filter has a CPU kernel. Exposition, Saturation and WhiteBalance
// also have GPU compute shaders, used when the pipeline backend is
// BackendGPU and an accelerator is registered:
//
//	import _ "github.com/gogpu/retouch/gpu" // enables GPU acceleration
//
// GPU failures abort the render and are returned to the caller; the
// current buffer and the baked stack are left untouched.
//
// # Colour Spaces
//
// Kernels work in the space that suits them: exposure and saturation in
// HSL, sharpening on Oklab lightness, white balance, contrast and blurs in
// RGB. The pipeline keeps all three representations of the current image
// and converts lazily, so consecutive kernels in the same space share one
// conversion.
package retouch

// Version is the current version of the library.
const Version = "0.1.0"
