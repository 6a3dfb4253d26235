package filter

import (
	"math"

	"github.com/gogpu/retouch/internal/parallel"
	"github.com/gogpu/retouch/pixel"
)

// DefaultGaussPasses is the number of box passes used when none is given.
const DefaultGaussPasses = 3

// BoxesForGauss returns n odd box widths whose successive application
// approximates a Gaussian of standard deviation sigma.
//
// The ideal width sqrt(12*sigma^2/n + 1) is split into m boxes of the lower
// odd width wl and n-m boxes of wl+2, with m chosen so the summed variance
// matches sigma^2.
func BoxesForGauss(sigma float64, n int) []int {
	if n <= 0 {
		n = DefaultGaussPasses
	}
	nf := float64(n)
	wIdeal := math.Sqrt(12*sigma*sigma/nf + 1)
	wl := int(math.Floor(wIdeal))
	if wl%2 == 0 {
		wl--
	}
	wl = max(wl, 1)
	wu := wl + 2

	wlf := float64(wl)
	mIdeal := (12*sigma*sigma - nf*wlf*wlf - 4*nf*wlf - 3*nf) / (-4*wlf - 4)
	m := int(math.Round(mIdeal))

	sizes := make([]int, n)
	for i := range sizes {
		if i < m {
			sizes[i] = wl
		} else {
			sizes[i] = wu
		}
	}
	return sizes
}

// GaussianBlur approximates a Gaussian blur of standard deviation sigma by
// passes successive box blurs. sigma <= 0 returns a copy.
func GaussianBlur(pool *parallel.WorkerPool, src *pixel.Image, sigma float64, passes int) *pixel.Image {
	if sigma <= 0 {
		return src.Clone()
	}
	out := src
	for _, width := range BoxesForGauss(sigma, passes) {
		out = BoxBlur(pool, out, (width-1)/2)
	}
	if out == src {
		return src.Clone()
	}
	return out
}
