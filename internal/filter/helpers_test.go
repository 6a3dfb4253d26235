package filter

import (
	"math"

	"github.com/gogpu/retouch/internal/spaces"
	"github.com/gogpu/retouch/pixel"
)

// Test helper functions shared across filter tests.

// flatImage creates an image with every colour channel set to v.
func flatImage(w, h, ch int, depth pixel.Depth, v float32) *pixel.Image {
	img := pixel.New(w, h, ch, depth)
	for i := 0; i < img.Len(); i++ {
		if ch == 4 && i%4 == 3 {
			img.Set(i, 1)
			continue
		}
		img.Set(i, v)
	}
	return img
}

// noiseImage creates a deterministic pseudo-random 8-bit image.
func noiseImage(w, h, ch int) *pixel.Image {
	img := pixel.New(w, h, ch, pixel.U8)
	seed := uint32(2463534242)
	for i := range img.Pix8 {
		seed ^= seed << 13
		seed ^= seed >> 17
		seed ^= seed << 5
		img.Pix8[i] = uint8(seed)
	}
	return img
}

// flatPlanes creates planes with component comp set to v everywhere.
func flatPlanes(w, h, ch, comp int, v float32) *spaces.Planes {
	p := spaces.NewPlanes(w, h, ch)
	for i := comp; i < len(p.Pix); i += ch {
		p.Pix[i] = v
	}
	return p
}

// channelVariance returns the variance of channel c.
func channelVariance(img *pixel.Image, c int) float64 {
	n := float64(img.Pixels())
	var sum, sq float64
	for i := c; i < img.Len(); i += img.Channels {
		v := float64(img.At(i))
		sum += v
		sq += v * v
	}
	mean := sum / n
	return sq/n - mean*mean
}

func absf(x float64) float64 { return math.Abs(x) }
