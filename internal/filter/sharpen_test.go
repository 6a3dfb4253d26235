package filter

import (
	"testing"

	"github.com/gogpu/retouch/internal/spaces"
)

func TestLoGKernel(t *testing.T) {
	k := LoGKernel(1.2, 0)
	size := LoGSize(1.2, 0)
	if size != 9 || len(k) != 81 {
		t.Fatalf("size = %d, len = %d; want 9, 81", size, len(k))
	}
	var sum float64
	for _, v := range k {
		sum += v
	}
	if absf(sum) > 1e-12 {
		t.Errorf("kernel sum = %v, want 0", sum)
	}
	if c := k[4*9+4]; c >= 0 {
		t.Errorf("centre = %v, want negative", c)
	}
	if LoGSize(1, 4) != 5 {
		t.Errorf("even sizes should be bumped to odd")
	}
}

func TestFFTSize(t *testing.T) {
	tests := map[int]int{1: 1, 7: 8, 11: 12, 13: 15, 17: 18, 97: 100, 128: 128}
	for n, want := range tests {
		if got := fftSize(n); got != want {
			t.Errorf("fftSize(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestSharpenFlatUnchanged(t *testing.T) {
	p := flatPlanes(11, 7, 3, 0, 0.6)
	Sharpen(nil, p, 1.5, 0)
	for i := 0; i < len(p.Pix); i += 3 {
		if absf(float64(p.Pix[i])-0.6) > 1e-5 {
			t.Fatalf("L[%d] = %v, want 0.6", i/3, p.Pix[i])
		}
	}
}

func TestSharpenZeroSigmaIsNoOp(t *testing.T) {
	p := stepPlanes(8, 4)
	before := p.Clone()
	Sharpen(nil, p, 0, 5)
	for i := range p.Pix {
		if p.Pix[i] != before.Pix[i] {
			t.Fatal("sigma 0 modified the planes")
		}
	}
}

func TestSharpenIncreasesEdgeContrast(t *testing.T) {
	p := stepPlanes(16, 6)
	before := p.Clone()
	Sharpen(nil, p, 1, 0)

	row := 3 * 16 * 4
	dark := p.Pix[row+7*4]
	light := p.Pix[row+8*4]
	if dark >= before.Pix[row+7*4] || light <= before.Pix[row+8*4] {
		t.Errorf("edge not enhanced: dark %v -> %v, light %v -> %v",
			before.Pix[row+7*4], dark, before.Pix[row+8*4], light)
	}
	// Away from the edge nothing changes.
	if absf(float64(p.Pix[row]-before.Pix[row])) > 1e-5 {
		t.Errorf("far pixel changed: %v -> %v", before.Pix[row], p.Pix[row])
	}
	for i := range p.Pix {
		if i%4 != 0 && p.Pix[i] != before.Pix[i] {
			t.Fatalf("component %d of pixel %d changed", i%4, i/4)
		}
	}
}

// stepPlanes returns 4-channel Lab planes with a vertical step in L at the
// horizontal centre and constant a, b, alpha.
func stepPlanes(w, h int) *spaces.Planes {
	p := spaces.NewPlanes(w, h, 4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			p.Pix[i] = 0.3
			if x >= w/2 {
				p.Pix[i] = 0.7
			}
			p.Pix[i+1], p.Pix[i+2], p.Pix[i+3] = 0.01, -0.02, 1
		}
	}
	return p
}
