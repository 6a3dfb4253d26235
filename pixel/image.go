package pixel

import (
	"errors"
	"fmt"
)

// ErrInvalidDimensions is returned when image dimensions are invalid.
var ErrInvalidDimensions = errors.New("pixel: invalid dimensions")

// ConversionError reports a buffer whose length does not match
// width*height*channels. It indicates a programming error; constructors
// panic with it rather than returning it.
type ConversionError struct {
	Width, Height, Channels int
	Want, Got               int
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("pixel: buffer length %d does not match %dx%dx%d (want %d)",
		e.Got, e.Width, e.Height, e.Channels, e.Want)
}

// Image is a flat, row-major, interleaved pixel buffer with 3 (RGB) or 4
// (RGBA) channels. Exactly one of Pix8, Pix16 and PixF is populated,
// according to Depth.
type Image struct {
	Width    int
	Height   int
	Channels int
	Depth    Depth

	Pix8  []uint8
	Pix16 []uint16
	PixF  []float32
}

// New allocates a zeroed image.
// It panics if the dimensions or channel count are invalid.
func New(width, height, channels int, depth Depth) *Image {
	if err := checkShape(width, height, channels, depth); err != nil {
		panic(err)
	}
	img := &Image{Width: width, Height: height, Channels: channels, Depth: depth}
	n := width * height * channels
	switch depth {
	case U8:
		img.Pix8 = make([]uint8, n)
	case U16:
		img.Pix16 = make([]uint16, n)
	case F32:
		img.PixF = make([]float32, n)
	}
	return img
}

// NewU8 wraps an existing 8-bit buffer without copying.
// It panics with *ConversionError if len(pix) != width*height*channels.
func NewU8(width, height, channels int, pix []uint8) *Image {
	mustLen(width, height, channels, len(pix))
	return &Image{Width: width, Height: height, Channels: channels, Depth: U8, Pix8: pix}
}

// NewU16 wraps an existing 16-bit buffer without copying.
// It panics with *ConversionError if len(pix) != width*height*channels.
func NewU16(width, height, channels int, pix []uint16) *Image {
	mustLen(width, height, channels, len(pix))
	return &Image{Width: width, Height: height, Channels: channels, Depth: U16, Pix16: pix}
}

// NewF32 wraps an existing float buffer without copying.
// It panics with *ConversionError if len(pix) != width*height*channels.
func NewF32(width, height, channels int, pix []float32) *Image {
	mustLen(width, height, channels, len(pix))
	return &Image{Width: width, Height: height, Channels: channels, Depth: F32, PixF: pix}
}

func checkShape(width, height, channels int, depth Depth) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if channels != 3 && channels != 4 {
		return fmt.Errorf("%w: %d channels", ErrInvalidDimensions, channels)
	}
	if !depth.IsValid() {
		return fmt.Errorf("%w: depth %d", ErrInvalidDimensions, depth)
	}
	return nil
}

func mustLen(width, height, channels, got int) {
	if err := checkShape(width, height, channels, U8); err != nil {
		panic(err)
	}
	if want := width * height * channels; want != got {
		panic(&ConversionError{Width: width, Height: height, Channels: channels, Want: want, Got: got})
	}
}

// Len returns the number of channel elements.
func (img *Image) Len() int { return img.Width * img.Height * img.Channels }

// Pixels returns the number of pixels.
func (img *Image) Pixels() int { return img.Width * img.Height }

// HasAlpha reports whether the image carries an alpha channel.
func (img *Image) HasAlpha() bool { return img.Channels == 4 }

// Index returns the element offset of the first channel of pixel (x, y).
func (img *Image) Index(x, y int) int { return (y*img.Width + x) * img.Channels }

// Validate checks the buffer invariant and returns *ConversionError or
// ErrInvalidDimensions on violation.
func (img *Image) Validate() error {
	if err := checkShape(img.Width, img.Height, img.Channels, img.Depth); err != nil {
		return err
	}
	var got int
	switch img.Depth {
	case U8:
		got = len(img.Pix8)
	case U16:
		got = len(img.Pix16)
	case F32:
		got = len(img.PixF)
	}
	if want := img.Len(); got != want {
		return &ConversionError{Width: img.Width, Height: img.Height, Channels: img.Channels, Want: want, Got: got}
	}
	return nil
}

// At returns element i as a normalized value. Integer depths map to [0, 1];
// F32 values are returned as stored.
func (img *Image) At(i int) float32 {
	switch img.Depth {
	case U8:
		return float32(img.Pix8[i]) / 255
	case U16:
		return float32(img.Pix16[i]) / 65535
	default:
		return img.PixF[i]
	}
}

// Set stores a normalized value into element i. Integer depths are rounded
// and clamped to their range.
func (img *Image) Set(i int, v float32) {
	switch img.Depth {
	case U8:
		img.Pix8[i] = uint8(clamp01(v)*255 + 0.5)
	case U16:
		img.Pix16[i] = uint16(clamp01(v)*65535 + 0.5)
	default:
		img.PixF[i] = v
	}
}

// Raw returns element i in the image's native scale.
func (img *Image) Raw(i int) float64 {
	switch img.Depth {
	case U8:
		return float64(img.Pix8[i])
	case U16:
		return float64(img.Pix16[i])
	default:
		return float64(img.PixF[i])
	}
}

// SetRaw stores v, given in the image's native scale, into element i.
func (img *Image) SetRaw(i int, v float64) {
	switch img.Depth {
	case U8:
		img.Pix8[i] = uint8(clampRound(v, 255))
	case U16:
		img.Pix16[i] = uint16(clampRound(v, 65535))
	default:
		img.PixF[i] = float32(v)
	}
}

// Clone returns a deep copy.
func (img *Image) Clone() *Image {
	c := *img
	c.Pix8 = cloneSlice(img.Pix8)
	c.Pix16 = cloneSlice(img.Pix16)
	c.PixF = cloneSlice(img.PixF)
	return &c
}

// NewLike allocates a zeroed image with the same shape and depth.
func (img *Image) NewLike() *Image {
	return New(img.Width, img.Height, img.Channels, img.Depth)
}

// SameShape reports whether img and o have equal dimensions and channels.
func (img *Image) SameShape(o *Image) bool {
	return img.Width == o.Width && img.Height == o.Height && img.Channels == o.Channels
}

// Convert returns a copy of the image stored at depth d. Converting to the
// current depth returns a clone.
func (img *Image) Convert(d Depth) *Image {
	if d == img.Depth {
		return img.Clone()
	}
	out := New(img.Width, img.Height, img.Channels, d)
	for i, n := 0, img.Len(); i < n; i++ {
		out.SetRaw(i, Scale(img.Raw(i), img.Depth, d))
	}
	return out
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func clamp01(v float32) float32 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
