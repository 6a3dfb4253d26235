package spaces

import (
	"github.com/gogpu/retouch/internal/parallel"
	"github.com/gogpu/retouch/pixel"
)

// Buffer holds one logical image as RGB, HSL and Lab, tracking which
// representations are current.
//
// Invariants: after FromRGB at least one space is fresh; a read accessor
// never returns stale data; RGB images handed to or returned from the
// Buffer are never modified in place, so callers may keep references.
//
// Buffer is not safe for concurrent use.
type Buffer struct {
	pool *parallel.WorkerPool

	rgb *pixel.Image
	hsl *Planes
	lab *Planes

	fresh       [spaceCount]bool
	conversions [spaceCount]int
}

// New returns an empty Buffer whose conversions run on pool.
// A nil pool converts on the calling goroutine.
func New(pool *parallel.WorkerPool) *Buffer {
	return &Buffer{pool: pool}
}

// FromRGB loads img as the only fresh representation.
func (b *Buffer) FromRGB(img *pixel.Image) {
	b.rgb = img
	b.fresh = [spaceCount]bool{RGB: true}
}

// ReplaceRGB installs a new RGB image produced by a kernel, invalidating
// HSL and Lab.
func (b *Buffer) ReplaceRGB(img *pixel.Image) { b.FromRGB(img) }

// RGB returns the current RGB image, converting from HSL or Lab if needed.
// It returns nil when nothing has been loaded.
func (b *Buffer) RGB() *pixel.Image {
	if b.fresh[RGB] {
		return b.rgb
	}
	switch {
	case b.fresh[HSL]:
		out := b.rgb.NewLike()
		hslToRGB(b.pool, b.hsl, out)
		b.rgb = out
	case b.fresh[Lab]:
		out := b.rgb.NewLike()
		labToRGB(b.pool, b.lab, out)
		b.rgb = out
	default:
		return nil
	}
	b.fresh[RGB] = true
	b.conversions[RGB]++
	return b.rgb
}

// HSL returns the HSL planes, converting through RGB if needed.
// Callers may modify the planes in place and then call MarkDirty(HSL).
func (b *Buffer) HSL() *Planes {
	if b.fresh[HSL] {
		return b.hsl
	}
	src := b.RGB()
	if src == nil {
		return nil
	}
	if !b.hsl.fits(src.Width, src.Height, src.Channels) {
		b.hsl = NewPlanes(src.Width, src.Height, src.Channels)
	}
	rgbToHSL(b.pool, src, b.hsl)
	b.fresh[HSL] = true
	b.conversions[HSL]++
	return b.hsl
}

// Lab returns the Oklab planes, converting through RGB if needed.
// Callers may modify the planes in place and then call MarkDirty(Lab).
func (b *Buffer) Lab() *Planes {
	if b.fresh[Lab] {
		return b.lab
	}
	src := b.RGB()
	if src == nil {
		return nil
	}
	if !b.lab.fits(src.Width, src.Height, src.Channels) {
		b.lab = NewPlanes(src.Width, src.Height, src.Channels)
	}
	rgbToLab(b.pool, src, b.lab)
	b.fresh[Lab] = true
	b.conversions[Lab]++
	return b.lab
}

// Holds reports whether img is the fresh RGB representation.
func (b *Buffer) Holds(img *pixel.Image) bool {
	return b.fresh[RGB] && b.rgb == img
}

// MarkDirty records that space s was modified in place: s becomes the only
// fresh representation. s must have been fetched through its accessor.
func (b *Buffer) MarkDirty(s Space) {
	b.fresh = [spaceCount]bool{}
	b.fresh[s] = true
}

// Fresh reports whether space s is current.
func (b *Buffer) Fresh(s Space) bool { return b.fresh[s] }

// Conversions returns how many times space s has been recomputed.
func (b *Buffer) Conversions(s Space) int { return b.conversions[s] }

// Reset drops every representation and the conversion counters.
func (b *Buffer) Reset() {
	b.rgb, b.hsl, b.lab = nil, nil, nil
	b.fresh = [spaceCount]bool{}
	b.conversions = [spaceCount]int{}
}
