package retouch

import (
	"errors"
	"sync"
	"testing"

	"github.com/gogpu/retouch/pixel"
)

// countingRecorder is a HistoryRecorder that keeps every recorded stack.
type countingRecorder struct {
	mu     sync.Mutex
	stacks []*EditStack
}

func (r *countingRecorder) Record(_ *pixel.Image, stack *EditStack) {
	r.mu.Lock()
	r.stacks = append(r.stacks, stack)
	r.mu.Unlock()
}

func maxDiff(a, b *pixel.Image) int {
	worst := 0
	for i := range a.Pix8 {
		d := int(a.Pix8[i]) - int(b.Pix8[i])
		if d < 0 {
			d = -d
		}
		worst = max(worst, d)
	}
	return worst
}

func newLoadedSession(t *testing.T, img *pixel.Image, opts ...Option) *Session {
	t.Helper()
	s := NewSession(opts...)
	t.Cleanup(s.Close)
	if err := s.Load(img); err != nil {
		t.Fatalf("Load() = %v", err)
	}
	return s
}

func TestSession_RenderWithoutImage(t *testing.T) {
	s := NewSession()
	defer s.Close()

	if _, err := s.Render(); !errors.Is(err, ErrNoImage) {
		t.Errorf("Render() = %v, want ErrNoImage", err)
	}
	if _, err := s.Export(); !errors.Is(err, ErrNoImage) {
		t.Errorf("Export() = %v, want ErrNoImage", err)
	}
	if _, err := s.Preview(10, 10); !errors.Is(err, ErrNoImage) {
		t.Errorf("Preview() = %v, want ErrNoImage", err)
	}
}

func TestSession_LoadRejectsMalformed(t *testing.T) {
	s := NewSession()
	defer s.Close()

	bad := &pixel.Image{Width: 3, Height: 1, Channels: 4, Depth: pixel.U8, Pix8: make([]uint8, 4)}
	if err := s.Load(bad); err == nil {
		t.Error("Load() should reject a malformed image")
	}
}

func TestSession_IncrementalSaturation(t *testing.T) {
	s := newLoadedSession(t, patternImage(8, 8, 3))

	if err := s.SetFilter(Saturation, 0.2); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Render(); err != nil {
		t.Fatal(err)
	}
	if err := s.SetFilter(Saturation, 0.5); err != nil {
		t.Fatal(err)
	}
	got, err := s.Render()
	if err != nil {
		t.Fatal(err)
	}

	if b := s.Baked().Filter(Saturation); !approxSlice(b, []float64{0.5}) {
		t.Errorf("baked saturation = %v, want [0.5]", b)
	}
	want, err := s.Export()
	if err != nil {
		t.Fatal(err)
	}
	if d := maxDiff(got, want); d > 3 {
		t.Errorf("incremental render differs from export by %d levels", d)
	}
}

func TestSession_DecreasingBlurRebases(t *testing.T) {
	src := patternImage(12, 12, 3)
	s := newLoadedSession(t, src)

	_ = s.SetFilter(BoxBlur, 3)
	if _, err := s.Render(); err != nil {
		t.Fatal(err)
	}
	_ = s.SetFilter(BoxBlur, 1)
	got, err := s.Render()
	if err != nil {
		t.Fatal(err)
	}
	want, err := s.Export()
	if err != nil {
		t.Fatal(err)
	}
	if d := maxDiff(got, want); d != 0 {
		t.Errorf("rebased render differs from export by %d levels", d)
	}

	_ = s.SetFilter(BoxBlur, 0)
	got, err = s.Render()
	if err != nil {
		t.Fatal(err)
	}
	if got != src {
		t.Error("removing every edit should show the source image")
	}
}

func TestSession_FractionalBlurMatchesExport(t *testing.T) {
	src := patternImage(12, 12, 3)
	s := newLoadedSession(t, src)

	_ = s.SetFilter(BoxBlur, 0.4)
	got, err := s.Render()
	if err != nil {
		t.Fatal(err)
	}
	if got != src {
		t.Error("a radius that rounds to 0 should leave the source image")
	}

	_ = s.SetFilter(BoxBlur, 0.8)
	got, err = s.Render()
	if err != nil {
		t.Fatal(err)
	}
	if r := s.Baked().Filter(BoxBlur)[0]; r != 1 {
		t.Errorf("baked radius = %v, want 1", r)
	}
	want, err := s.Export()
	if err != nil {
		t.Fatal(err)
	}
	if d := maxDiff(got, want); d != 0 {
		t.Errorf("render differs from export by %d levels", d)
	}
}

func TestSession_WhiteBalanceReferenceRebases(t *testing.T) {
	src := patternImage(4, 4, 3)
	s := newLoadedSession(t, src)

	s.SetWhiteBalance(4000, 0)
	if _, err := s.Render(); err != nil {
		t.Fatal(err)
	}
	_ = s.SetFilter(WhiteBalance, 4000, 0, 4000, 0)
	got, err := s.Render()
	if err != nil {
		t.Fatal(err)
	}
	if got != src {
		t.Error("equal reference and target should show the source image")
	}
	if b := s.Baked().Filter(WhiteBalance); !approxSlice(b, []float64{4000, 0, 4000, 0}) {
		t.Errorf("baked white balance = %v", b)
	}
}

func TestSession_FailedRenderKeepsState(t *testing.T) {
	mock := &mockAccelerator{name: "broken", canAccel: AccelExposition, renderErr: ErrRenderFailed}
	src := grayImage(2, 2, 100)
	s := newLoadedSession(t, src, WithBackend(BackendGPU), WithAccelerator(mock))

	_ = s.SetFilter(Exposition, 1)
	if _, err := s.Render(); !errors.Is(err, ErrRenderFailed) {
		t.Fatalf("Render() = %v, want ErrRenderFailed", err)
	}
	if !s.Baked().Equal(NewEditStack()) {
		t.Error("baked stack changed after failed render")
	}
	if s.Current() != src {
		t.Error("current image changed after failed render")
	}

	s.SetBackend(BackendCPU)
	out, err := s.Render()
	if err != nil {
		t.Fatalf("CPU retry = %v", err)
	}
	allPix(t, out, 200)
}

func TestSession_History(t *testing.T) {
	rec := &countingRecorder{}
	s := newLoadedSession(t, grayImage(2, 2, 50), WithHistory(rec))

	_ = s.SetFilter(Contrast, 0.2)
	if _, err := s.Render(); err != nil {
		t.Fatal(err)
	}
	// Nothing changed: no new frame.
	if _, err := s.Render(); err != nil {
		t.Fatal(err)
	}
	if len(rec.stacks) != 2 {
		t.Fatalf("recorded %d frames, want 2", len(rec.stacks))
	}
	if got := rec.stacks[1].Filter(Contrast); !approxSlice(got, []float64{0.2}) {
		t.Errorf("recorded contrast = %v, want [0.2]", got)
	}
}

func TestSession_Reset(t *testing.T) {
	src := grayImage(2, 2, 128)
	s := newLoadedSession(t, src)

	_ = s.SetFilter(Exposition, 1)
	if _, err := s.Render(); err != nil {
		t.Fatal(err)
	}
	s.Reset()
	if s.Current() != src || !s.Desired().IsIdentityAll() || !s.Baked().IsIdentityAll() {
		t.Error("Reset() should restore the source and default stacks")
	}
}

func TestSession_DesiredIsCopy(t *testing.T) {
	s := newLoadedSession(t, grayImage(1, 1, 0))
	d := s.Desired()
	_ = d.SetFilter(Exposition, 3)
	if !s.Desired().IsIdentity(Exposition) {
		t.Error("Desired() should return a copy")
	}
}

func TestSession_Preview(t *testing.T) {
	s := newLoadedSession(t, patternImage(8, 4, 4))

	p, err := s.Preview(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	if p.Width != 4 || p.Height != 2 {
		t.Errorf("preview size = %dx%d, want 4x2", p.Width, p.Height)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("preview invalid: %v", err)
	}
}

func TestSession_PreviewRejectsBadBounds(t *testing.T) {
	s := newLoadedSession(t, patternImage(8, 4, 3))

	tests := []struct {
		name       string
		maxW, maxH int
	}{
		{"zero width", 0, 4},
		{"zero height", 4, 0},
		{"negative width", -1, 4},
		{"negative height", 4, -8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := s.Preview(tt.maxW, tt.maxH)
			if !errors.Is(err, ErrInvalidPreviewSize) {
				t.Fatalf("Preview(%d, %d) = %v, want ErrInvalidPreviewSize", tt.maxW, tt.maxH, err)
			}
			if p != nil {
				t.Error("rejected preview should return no image")
			}
		})
	}
}
