package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.png")

	src := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	for y := range 4 {
		for x := range 8 {
			src.SetNRGBA(x, y, color.NRGBA{R: 64, G: 64, B: 64, A: 255})
		}
	}
	f, err := os.Create(in)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, src); err != nil {
		t.Fatal(err)
	}
	f.Close()

	recipe := writeFile(t, "r.toml", "[filters]\nexposition = [0.5]\n")

	rootCmd.SetArgs([]string{
		"render", "-i", in, "-o", out,
		"--recipe", recipe,
		"--exposure", "1",
		"--backend", "cpu",
		"--preview", "4x4",
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("render: %v", err)
	}

	rf, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer rf.Close()
	got, err := png.Decode(rf)
	if err != nil {
		t.Fatal(err)
	}
	if b := got.Bounds(); b.Dx() != 4 || b.Dy() != 2 {
		t.Fatalf("output size = %v, want 4x2", b.Size())
	}
	r, _, _, _ := got.At(1, 1).RGBA()
	if v := r >> 8; v < 127 || v > 129 {
		t.Errorf("pixel value = %d, want 128 (exposure flag overrides recipe)", v)
	}
}

func TestAdaptersCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	defer rootCmd.SetOut(nil)

	rootCmd.SetArgs([]string{"adapters", "--gpu-backend", "noop"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("adapters: %v", err)
	}
	if !strings.Contains(buf.String(), "0: ") {
		t.Errorf("adapters output = %q", buf.String())
	}
}
