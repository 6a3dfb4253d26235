package pixel

import (
	"image"
	"image/color"
	"image/draw"
)

// FromImage copies a standard library image into a 4-channel Image.
// 16-bit sources (*image.NRGBA64, *image.RGBA64, *image.Gray16) keep their
// precision as U16; everything else is converted to non-premultiplied U8.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	switch src.(type) {
	case *image.NRGBA64, *image.RGBA64, *image.Gray16:
		out := New(w, h, 4, U16)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := color.NRGBA64Model.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
				i := out.Index(x, y)
				out.Pix16[i+0] = c.R
				out.Pix16[i+1] = c.G
				out.Pix16[i+2] = c.B
				out.Pix16[i+3] = c.A
			}
		}
		return out
	}

	nrgba, ok := src.(*image.NRGBA)
	if !ok || nrgba.Stride != w*4 || b.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(nrgba, nrgba.Bounds(), src, b.Min, draw.Src)
	}
	pix := make([]uint8, w*h*4)
	copy(pix, nrgba.Pix)
	return NewU8(w, h, 4, pix)
}

// ToImage converts the image into a standard library image. U8 images
// become *image.NRGBA; U16 and F32 images become *image.NRGBA64. Missing
// alpha is written as opaque.
func (img *Image) ToImage() image.Image {
	rect := image.Rect(0, 0, img.Width, img.Height)
	if img.Depth == U8 {
		out := image.NewNRGBA(rect)
		for p, n := 0, img.Pixels(); p < n; p++ {
			src, dst := p*img.Channels, p*4
			copy(out.Pix[dst:dst+3], img.Pix8[src:src+3])
			out.Pix[dst+3] = 255
			if img.Channels == 4 {
				out.Pix[dst+3] = img.Pix8[src+3]
			}
		}
		return out
	}

	out := image.NewNRGBA64(rect)
	for p, n := 0, img.Pixels(); p < n; p++ {
		src, dst := p*img.Channels, p*8
		for c := 0; c < 4; c++ {
			v := uint16(65535)
			if c < img.Channels {
				v = uint16(Scale(img.Raw(src+c), img.Depth, U16))
			}
			out.Pix[dst+2*c] = uint8(v >> 8)
			out.Pix[dst+2*c+1] = uint8(v)
		}
	}
	return out
}
