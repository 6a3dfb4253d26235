package filter

import (
	"sync"

	"github.com/gogpu/retouch/internal/parallel"
	"github.com/gogpu/retouch/pixel"
)

// satBuffer wraps a slice for sync.Pool.
type satBuffer struct {
	data []float64
}

var satPool = sync.Pool{
	New: func() any { return &satBuffer{} },
}

func getSAT(n int) *satBuffer {
	b := satPool.Get().(*satBuffer)
	if cap(b.data) < n {
		b.data = make([]float64, n)
	}
	b.data = b.data[:n]
	return b
}

// BoxBlur returns src blurred with a (2*radius+1)^2 mean filter.
//
// The window is clipped at the image border and divided by the number of
// pixels it actually covers, so flat images stay flat up to the edges.
// Running time is O(width*height) for any radius: each colour channel is
// turned into a summed-area table and every output pixel is a four-corner
// query. Alpha is copied unchanged. radius <= 0 returns a copy.
func BoxBlur(pool *parallel.WorkerPool, src *pixel.Image, radius int) *pixel.Image {
	if radius <= 0 {
		return src.Clone()
	}
	w, h, ch := src.Width, src.Height, src.Channels
	stride := w + 1
	out := src.NewLike()
	if ch == 4 {
		for i := 3; i < src.Len(); i += 4 {
			out.SetRaw(i, src.Raw(i))
		}
	}

	sat := getSAT(stride * (h + 1))
	defer satPool.Put(sat)
	s := sat.data

	for c := 0; c < 3; c++ {
		buildSAT(pool, src, c, s)

		parallel.ForRows(pool, h, func(y0, y1 int) {
			for y := y0; y < y1; y++ {
				top := max(y-radius, 0)
				bottom := min(y+radius, h-1) + 1
				for x := 0; x < w; x++ {
					left := max(x-radius, 0)
					right := min(x+radius, w-1) + 1
					sum := s[bottom*stride+right] - s[top*stride+right] -
						s[bottom*stride+left] + s[top*stride+left]
					count := float64((right - left) * (bottom - top))
					out.SetRaw((y*w+x)*ch+c, sum/count)
				}
			}
		})
	}
	return out
}

// buildSAT fills s with the summed-area table of channel c. Row 0 and
// column 0 of the (w+1)x(h+1) table are zero guards.
func buildSAT(pool *parallel.WorkerPool, src *pixel.Image, c int, s []float64) {
	w, h, ch := src.Width, src.Height, src.Channels
	stride := w + 1

	for x := 0; x < stride; x++ {
		s[x] = 0
	}
	parallel.ForRows(pool, h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := s[(y+1)*stride:]
			row[0] = 0
			var acc float64
			for x := 0; x < w; x++ {
				acc += src.Raw((y*w+x)*ch + c)
				row[x+1] = acc
			}
		}
	})
	// Column prefix: bands of columns accumulate down the rows.
	parallel.ForRows(pool, stride, func(x0, x1 int) {
		for y := 2; y <= h; y++ {
			prev, row := s[(y-1)*stride:], s[y*stride:]
			for x := x0; x < x1; x++ {
				row[x] += prev[x]
			}
		}
	})
}
