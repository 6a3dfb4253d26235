package filter

import (
	"testing"

	"github.com/gogpu/retouch/pixel"
)

func TestBoxesForGauss(t *testing.T) {
	tests := []struct {
		sigma float64
		n     int
	}{
		{0.5, 3}, {1, 3}, {2, 3}, {5, 3}, {10, 4}, {3, 0},
	}
	for _, tt := range tests {
		sizes := BoxesForGauss(tt.sigma, tt.n)
		want := tt.n
		if want <= 0 {
			want = DefaultGaussPasses
		}
		if len(sizes) != want {
			t.Fatalf("sigma=%v: %d boxes, want %d", tt.sigma, len(sizes), want)
		}
		var variance float64
		for _, w := range sizes {
			if w%2 == 0 || w < 1 {
				t.Fatalf("sigma=%v: box width %d is not a positive odd number", tt.sigma, w)
			}
			if w != sizes[0] && w != sizes[0]+2 {
				t.Fatalf("sigma=%v: widths %v are not of two adjacent odd sizes", tt.sigma, sizes)
			}
			variance += float64(w*w-1) / 12
		}
		if tt.sigma >= 1 {
			tol := 0.1*tt.sigma*tt.sigma + 0.5
			if d := variance - tt.sigma*tt.sigma; d < -tol || d > tol {
				t.Errorf("sigma=%v: summed variance %v, want ~%v", tt.sigma, variance, tt.sigma*tt.sigma)
			}
		}
	}
}

func TestBoxesForGaussKnownValues(t *testing.T) {
	got := BoxesForGauss(2, 3)
	want := []int{3, 3, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("BoxesForGauss(2, 3) = %v, want %v", got, want)
		}
	}
}

func TestGaussianBlurReducesVariance(t *testing.T) {
	src := noiseImage(40, 30, 3)
	prev := channelVariance(src, 0)
	for _, sigma := range []float64{0.8, 2, 4} {
		out := GaussianBlur(nil, src, sigma, 3)
		v := channelVariance(out, 0)
		if v > prev {
			t.Errorf("sigma=%v: variance %v exceeds %v", sigma, v, prev)
		}
		prev = v
	}
}

func TestGaussianBlurZeroSigma(t *testing.T) {
	src := noiseImage(4, 4, 3)
	out := GaussianBlur(nil, src, 0, 3)
	for i := range src.Pix8 {
		if out.Pix8[i] != src.Pix8[i] {
			t.Fatal("sigma 0 should be identity")
		}
	}
}

func TestGaussianBlurFlatStaysFlat(t *testing.T) {
	src := flatImage(16, 16, 3, pixel.U8, 0.3)
	out := GaussianBlur(nil, src, 3, 3)
	for i := range out.Pix8 {
		if out.Pix8[i] != src.Pix8[i] {
			t.Fatalf("element %d = %d, want %d", i, out.Pix8[i], src.Pix8[i])
		}
	}
}
