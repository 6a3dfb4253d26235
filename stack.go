package retouch

import (
	"fmt"
	"math"
	"strings"
)

// identityEpsilon absorbs the rounding left by subtracting and re-adding
// parameters, so a fully merged delta compares as identity.
const identityEpsilon = 1e-9

// EditStack holds one parameter vector per filter kind.
//
// A Session keeps two stacks: the desired parameters and the baked
// parameters already visible in the current buffer. DeltaOf and MergeInto
// move between them.
//
// White balance slots are [fromTemp, fromTint, toTemp, toTint]. In desired
// and baked stacks the "from" pair is the reference white and the "to"
// pair is the user's setting; in a delta stack "from" is the baked setting
// and "to" the desired one.
type EditStack struct {
	slots [filterKindCount][]float64
}

// NewEditStack returns a stack with every filter at its default.
func NewEditStack() *EditStack {
	s := &EditStack{}
	for k := range filterKindCount {
		s.slots[k] = k.Defaults()
	}
	return s
}

// SetFilter replaces the parameters of kind. It returns
// ErrInvalidParameterCount (leaving the stack unchanged) when len(params)
// differs from kind.Arity().
//
// The BoxBlur radius is rounded to a whole pixel here, so the stored value
// is the one the kernel applies.
func (s *EditStack) SetFilter(kind FilterKind, params ...float64) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: %d", ErrUnknownFilter, kind)
	}
	if len(params) != kind.Arity() {
		return fmt.Errorf("%w: %s takes %d, got %d", ErrInvalidParameterCount, kind, kind.Arity(), len(params))
	}
	p := append([]float64(nil), params...)
	if kind == BoxBlur {
		p[0] = math.Round(p[0])
	}
	s.slots[kind] = p
	return nil
}

// SetWhiteBalance sets the target white point, keeping the reference.
func (s *EditStack) SetWhiteBalance(temp, tint float64) {
	wb := s.slots[WhiteBalance]
	s.slots[WhiteBalance] = []float64{wb[0], wb[1], temp, tint}
}

// Filter returns a copy of the parameters of kind.
func (s *EditStack) Filter(kind FilterKind) []float64 {
	if !kind.IsValid() {
		return nil
	}
	return append([]float64(nil), s.slots[kind]...)
}

// Clone returns a deep copy.
func (s *EditStack) Clone() *EditStack {
	c := &EditStack{}
	for k := range s.slots {
		c.slots[k] = append([]float64(nil), s.slots[k]...)
	}
	return c
}

// Equal reports whether both stacks hold identical parameters.
func (s *EditStack) Equal(o *EditStack) bool {
	for k := range s.slots {
		a, b := s.slots[k], o.slots[k]
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
	}
	return true
}

// IsIdentity reports whether the slot of kind, read as a delta, changes
// nothing: a zero amount, or equal white points for white balance.
func (s *EditStack) IsIdentity(kind FilterKind) bool {
	p := s.slots[kind]
	if kind == WhiteBalance {
		return nearZero(p[0]-p[2]) && nearZero(p[1]-p[3])
	}
	return nearZero(p[0])
}

// IsIdentityAll reports whether every slot is an identity.
func (s *EditStack) IsIdentityAll() bool {
	for k := range filterKindCount {
		if !s.IsIdentity(k) {
			return false
		}
	}
	return true
}

// String formats the stack as "kind=[p0 p1] ..." for logs.
func (s *EditStack) String() string {
	var b strings.Builder
	for k := range filterKindCount {
		if k > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", k, s.slots[k])
	}
	return b.String()
}

// DeltaOf returns the change that turns an image showing baked into one
// showing desired.
//
// For accumulating kinds the first parameter is desired minus baked and
// secondary parameters (sharpen size, blur passes) come from desired. For
// white balance the delta adapts from the baked target to the desired
// target: [baked.toTemp, baked.toTint, desired.toTemp, desired.toTint].
func DeltaOf(desired, baked *EditStack) *EditStack {
	d := &EditStack{}
	for k := range filterKindCount {
		want, have := desired.slots[k], baked.slots[k]
		if k == WhiteBalance {
			d.slots[k] = []float64{have[2], have[3], want[2], want[3]}
			continue
		}
		out := make([]float64, len(want))
		for i := range want {
			if k.isSecondary(i) {
				out[i] = want[i]
			} else {
				out[i] = want[i] - have[i]
			}
		}
		d.slots[k] = out
	}
	return d
}

// MergeInto records in baked that delta has been applied.
//
// Accumulating kinds add the first parameter and take secondary
// parameters from the delta. White balance takes the delta's target as its
// new target; the reference white of baked is kept, so merging
// DeltaOf(b, b) into b leaves b unchanged.
func MergeInto(baked, delta *EditStack) {
	for k := range filterKindCount {
		have, d := baked.slots[k], delta.slots[k]
		if k == WhiteBalance {
			have[2], have[3] = d[2], d[3]
			continue
		}
		for i := range have {
			if k.isSecondary(i) {
				have[i] = d[i]
			} else {
				have[i] += d[i]
			}
		}
	}
}

// NeedsRebase reports whether desired cannot be reached from baked by
// applying a delta: a blur or sharpen amount went down, a secondary
// parameter of an already applied blur or sharpen changed, or the white
// balance reference moved. The caller must then re-render the source image
// with DeltaOf(desired, BaseStack(desired)).
func NeedsRebase(desired, baked *EditStack) bool {
	dw, bw := desired.slots[WhiteBalance], baked.slots[WhiteBalance]
	if dw[0] != bw[0] || dw[1] != bw[1] {
		return true
	}
	for k := range filterKindCount {
		if !kindTable[k].monotonic {
			continue
		}
		want, have := desired.slots[k], baked.slots[k]
		if want[0]-have[0] < -identityEpsilon {
			return true
		}
		if nearZero(have[0]) {
			continue
		}
		for i := 1; i < len(want); i++ {
			if k.isSecondary(i) && want[i] != have[i] {
				return true
			}
		}
	}
	return false
}

// BaseStack returns the stack describing an unedited source image for
// desired: every filter at its default, with the white balance target
// equal to desired's reference white.
func BaseStack(desired *EditStack) *EditStack {
	base := NewEditStack()
	ref := desired.slots[WhiteBalance]
	base.slots[WhiteBalance] = []float64{ref[0], ref[1], ref[0], ref[1]}
	return base
}

func nearZero(v float64) bool { return math.Abs(v) < identityEpsilon }
