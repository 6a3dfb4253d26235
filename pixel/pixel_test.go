package pixel

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestScale(t *testing.T) {
	tests := []struct {
		name     string
		v        float64
		from, to Depth
		want     float64
	}{
		{"u8 to u16 max", 255, U8, U16, 65535},
		{"u8 to u16 mid", 128, U8, U16, 32896},
		{"u16 to u8 max", 65535, U16, U8, 255},
		{"u16 to u8 rounds", 32896, U16, U8, 128},
		{"u8 to f32", 255, U8, F32, 1},
		{"u8 to f32 zero", 0, U8, F32, 0},
		{"f32 to u8", 0.5, F32, U8, 128},
		{"f32 to u8 clamps high", 1.7, F32, U8, 255},
		{"f32 to u8 clamps low", -0.3, F32, U8, 0},
		{"f32 to f32 passthrough", 1.5, F32, F32, 1.5},
		{"same depth", 77, U8, U8, 77},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Scale(tt.v, tt.from, tt.to); got != tt.want {
				t.Errorf("Scale(%v, %v, %v) = %v, want %v", tt.v, tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestDepthInfo(t *testing.T) {
	if U8.Max() != 255 || U16.Max() != 65535 || F32.Max() != 1 {
		t.Errorf("unexpected maxima: %v %v %v", U8.Max(), U16.Max(), F32.Max())
	}
	if U16.Bits() != 16 {
		t.Errorf("U16.Bits() = %d, want 16", U16.Bits())
	}
	if Depth(42).IsValid() {
		t.Error("Depth(42) should be invalid")
	}
	if F32.String() != "f32" {
		t.Errorf("F32.String() = %q", F32.String())
	}
}

func TestNewU8LengthMismatchPanics(t *testing.T) {
	defer func() {
		r := recover()
		var ce *ConversionError
		err, ok := r.(error)
		if !ok || !errors.As(err, &ce) {
			t.Fatalf("expected *ConversionError panic, got %v", r)
		}
		if ce.Want != 12 || ce.Got != 11 {
			t.Errorf("ConversionError = %+v", ce)
		}
	}()
	NewU8(2, 2, 3, make([]uint8, 11))
}

func TestValidate(t *testing.T) {
	img := New(3, 2, 4, U16)
	if err := img.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	img.Pix16 = img.Pix16[:5]
	var ce *ConversionError
	if err := img.Validate(); !errors.As(err, &ce) {
		t.Errorf("Validate() = %v, want *ConversionError", err)
	}

	bad := &Image{Width: 0, Height: 2, Channels: 3}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("Validate() = %v, want ErrInvalidDimensions", err)
	}
}

func TestAtSetAllDepths(t *testing.T) {
	for _, d := range []Depth{U8, U16, F32} {
		t.Run(d.String(), func(t *testing.T) {
			img := New(1, 1, 3, d)
			img.Set(0, 0.5)
			img.Set(1, 1.5)
			img.Set(2, -1)
			if got := img.At(0); got < 0.49 || got > 0.51 {
				t.Errorf("At(0) = %v, want ~0.5", got)
			}
			if d != F32 {
				if got := img.At(1); got != 1 {
					t.Errorf("At(1) = %v, want clamped 1", got)
				}
				if got := img.At(2); got != 0 {
					t.Errorf("At(2) = %v, want clamped 0", got)
				}
			}
		})
	}
}

func TestConvertPreservesIntensity(t *testing.T) {
	src := NewU8(2, 1, 3, []uint8{0, 64, 128, 192, 255, 10})
	back := src.Convert(U16).Convert(F32).Convert(U8)
	for i, v := range src.Pix8 {
		if back.Pix8[i] != v {
			t.Errorf("element %d = %d, want %d", i, back.Pix8[i], v)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	src := New(2, 2, 4, U8)
	c := src.Clone()
	c.Pix8[0] = 99
	if src.Pix8[0] != 0 {
		t.Error("Clone shares the backing buffer")
	}
}

func TestStdImageRoundTrip(t *testing.T) {
	std := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	std.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 200})

	img := FromImage(std)
	if img.Channels != 4 || img.Depth != U8 {
		t.Fatalf("FromImage shape = %d channels %v", img.Channels, img.Depth)
	}
	i := img.Index(1, 1)
	if img.Pix8[i] != 10 || img.Pix8[i+3] != 200 {
		t.Errorf("pixel = %v", img.Pix8[i:i+4])
	}

	out, ok := img.ToImage().(*image.NRGBA)
	if !ok {
		t.Fatalf("ToImage() type = %T", img.ToImage())
	}
	if got := out.NRGBAAt(1, 1); got != (color.NRGBA{R: 10, G: 20, B: 30, A: 200}) {
		t.Errorf("NRGBAAt = %v", got)
	}
}

func TestToImageSixteenBit(t *testing.T) {
	img := New(1, 1, 3, U16)
	img.Pix16[0] = 65535
	out, ok := img.ToImage().(*image.NRGBA64)
	if !ok {
		t.Fatalf("ToImage() type = %T", img.ToImage())
	}
	if got := out.NRGBA64At(0, 0); got.R != 65535 || got.A != 65535 {
		t.Errorf("NRGBA64At = %v", got)
	}
}
