// Package spaces keeps one logical image in several colour spaces and
// converts between them lazily.
//
// RGB is the hub: HSL and Lab are always derived from, and written back
// through, RGB. Each representation carries a fresh flag; reading a stale
// space triggers exactly one conversion chain from a fresh one.
package spaces

import "fmt"

// Space identifies a colour representation held by a Buffer.
type Space uint8

const (
	// RGB is the gamma-encoded pixel.Image representation.
	RGB Space = iota

	// HSL holds hue in degrees, saturation and lightness.
	HSL

	// Lab holds Oklab lightness and the a/b opponent axes.
	Lab

	spaceCount
)

var spaceNames = [spaceCount]string{RGB: "rgb", HSL: "hsl", Lab: "lab"}

func (s Space) String() string {
	if s >= spaceCount {
		return fmt.Sprintf("Space(%d)", s)
	}
	return spaceNames[s]
}

// Planes is an interleaved float32 buffer of three colour components plus
// an optional alpha channel.
type Planes struct {
	Width    int
	Height   int
	Channels int
	Pix      []float32
}

// NewPlanes allocates zeroed planes.
func NewPlanes(width, height, channels int) *Planes {
	return &Planes{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]float32, width*height*channels),
	}
}

// Row returns the elements of row y.
func (p *Planes) Row(y int) []float32 {
	stride := p.Width * p.Channels
	return p.Pix[y*stride : (y+1)*stride]
}

// Clone returns a deep copy.
func (p *Planes) Clone() *Planes {
	c := *p
	c.Pix = make([]float32, len(p.Pix))
	copy(c.Pix, p.Pix)
	return &c
}

func (p *Planes) fits(width, height, channels int) bool {
	return p != nil && p.Width == width && p.Height == height && p.Channels == channels
}
