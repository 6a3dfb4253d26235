package color

import (
	"math"
	"testing"
)

const quantum = 1.0 / 255

func near(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestHSLKnownColors(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b float64
		h, s, l float64
	}{
		{"red", 1, 0, 0, 0, 1, 0.5},
		{"green", 0, 1, 0, 120, 1, 0.5},
		{"blue", 0, 0, 1, 240, 1, 0.5},
		{"gray", 0.5, 0.5, 0.5, 0, 0, 0.5},
		{"white", 1, 1, 1, 0, 0, 1},
		{"magenta", 1, 0, 1, 300, 1, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, s, l := RGBToHSL(tt.r, tt.g, tt.b)
			if !near(h, tt.h, 1e-9) || !near(s, tt.s, 1e-9) || !near(l, tt.l, 1e-9) {
				t.Errorf("RGBToHSL = (%v, %v, %v), want (%v, %v, %v)", h, s, l, tt.h, tt.s, tt.l)
			}
		})
	}
}

func TestHSLNegativeHueWraps(t *testing.T) {
	r1, g1, b1 := HSLToRGB(-60, 1, 0.5)
	r2, g2, b2 := HSLToRGB(300, 1, 0.5)
	if !near(r1, r2, 1e-12) || !near(g1, g2, 1e-12) || !near(b1, b2, 1e-12) {
		t.Errorf("hue -60 = (%v,%v,%v), hue 300 = (%v,%v,%v)", r1, g1, b1, r2, g2, b2)
	}
}

func TestHSLRoundTrip(t *testing.T) {
	for r := 0; r < 256; r += 15 {
		for g := 0; g < 256; g += 15 {
			for b := 0; b < 256; b += 15 {
				rf, gf, bf := float64(r)/255, float64(g)/255, float64(b)/255
				h, s, l := RGBToHSL(rf, gf, bf)
				r2, g2, b2 := HSLToRGB(h, s, l)
				if !near(rf, r2, quantum) || !near(gf, g2, quantum) || !near(bf, b2, quantum) {
					t.Fatalf("round trip (%d,%d,%d) -> (%v,%v,%v)", r, g, b, r2, g2, b2)
				}
			}
		}
	}
}

func TestOklabRoundTrip(t *testing.T) {
	for r := 0; r < 256; r += 17 {
		for g := 0; g < 256; g += 17 {
			for b := 0; b < 256; b += 17 {
				rf, gf, bf := float64(r)/255, float64(g)/255, float64(b)/255
				l, a, bb := RGBToOklab(rf, gf, bf)
				r2, g2, b2 := OklabToRGB(l, a, bb)
				if !near(rf, r2, quantum) || !near(gf, g2, quantum) || !near(bf, b2, quantum) {
					t.Fatalf("round trip (%d,%d,%d) -> (%v,%v,%v)", r, g, b, r2, g2, b2)
				}
			}
		}
	}
}

func TestOklabWhiteIsNeutral(t *testing.T) {
	l, a, b := RGBToOklab(1, 1, 1)
	if !near(l, 1, 1e-4) || !near(a, 0, 1e-4) || !near(b, 0, 1e-4) {
		t.Errorf("white = (%v, %v, %v)", l, a, b)
	}
}

func TestMat3Inverse(t *testing.T) {
	inv, ok := LinearToXYZMatrix.Inverse()
	if !ok {
		t.Fatal("matrix reported singular")
	}
	id := LinearToXYZMatrix.Mul(inv)
	for i, v := range id {
		if !near(v, Identity3[i], 1e-12) {
			t.Fatalf("M*inv(M) = %v", id)
		}
	}
	if _, ok := (Mat3{}).Inverse(); ok {
		t.Error("zero matrix should be singular")
	}
}

func TestBradfordRoundTrip(t *testing.T) {
	l, m, s := XYZToLMS(0.95047, 1, 1.08883)
	x, y, z := LMSToXYZ(l, m, s)
	if !near(x, 0.95047, 1e-12) || !near(y, 1, 1e-12) || !near(z, 1.08883, 1e-12) {
		t.Errorf("round trip = (%v, %v, %v)", x, y, z)
	}
}

func TestXYZWhite(t *testing.T) {
	x, y, z := LinearToXYZ(1, 1, 1)
	if !near(y, 1, 1e-6) || !near(x, 0.95047, 1e-4) || !near(z, 1.08883, 1e-4) {
		t.Errorf("D65 white = (%v, %v, %v)", x, y, z)
	}
	r, g, b := XYZToLinear(x, y, z)
	if !near(r, 1, 1e-4) || !near(g, 1, 1e-4) || !near(b, 1, 1e-4) {
		t.Errorf("back = (%v, %v, %v)", r, g, b)
	}
}

func TestGammaLUTMatchesPow(t *testing.T) {
	for i := 0; i < 256; i++ {
		want := SRGBToLinear(float64(i) / 255)
		if got := float64(DecodeGamma8(uint8(i))); !near(got, want, 1e-6) {
			t.Fatalf("DecodeGamma8(%d) = %v, want %v", i, got, want)
		}
	}
}

func BenchmarkRGBToHSL(b *testing.B) {
	var h float64
	for i := 0; i < b.N; i++ {
		h, _, _ = RGBToHSL(0.2, 0.6, 0.9)
	}
	_ = h
}
