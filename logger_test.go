package retouch

import (
	"context"
	"log/slog"
	"sync"
	"testing"
)

// capturedRecord is one log record seen by captureHandler.
type capturedRecord struct {
	level slog.Level
	msg   string
	attrs map[string]string
}

// captureHandler keeps every record at or above Debug.
type captureHandler struct {
	mu      sync.Mutex
	records []capturedRecord
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	rec := capturedRecord{level: r.Level, msg: r.Message, attrs: map[string]string{}}
	r.Attrs(func(a slog.Attr) bool {
		rec.attrs[a.Key] = a.Value.String()
		return true
	})
	h.mu.Lock()
	h.records = append(h.records, rec)
	h.mu.Unlock()
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func (h *captureHandler) find(level slog.Level, msg string) (capturedRecord, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.records {
		if r.level == level && r.msg == msg {
			return r, true
		}
	}
	return capturedRecord{}, false
}

// captureLogs routes retouch logging into a captureHandler for the rest of
// the test.
func captureLogs(t *testing.T) *captureHandler {
	t.Helper()
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })
	h := &captureHandler{}
	SetLogger(slog.New(h))
	return h
}

func TestLogger_SilentByDefault(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	SetLogger(nil)
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if l.Enabled(context.Background(), level) {
			t.Errorf("silenced logger enabled for %v", level)
		}
	}
}

func TestLogger_RebaseIsLoggedAtInfo(t *testing.T) {
	logs := captureLogs(t)

	s := NewSession(WithWorkers(1))
	defer s.Close()
	if err := s.Load(patternImage(6, 6, 3)); err != nil {
		t.Fatal(err)
	}
	_ = s.SetFilter(BoxBlur, 2)
	if _, err := s.Render(); err != nil {
		t.Fatal(err)
	}
	if _, ok := logs.find(slog.LevelInfo, "retouch: rebasing from source image"); ok {
		t.Fatal("first render must not rebase")
	}

	_ = s.SetFilter(BoxBlur, 1)
	if _, err := s.Render(); err != nil {
		t.Fatal(err)
	}
	if _, ok := logs.find(slog.LevelInfo, "retouch: rebasing from source image"); !ok {
		t.Error("lowering the blur radius should log a rebase")
	}
}

func TestLogger_CPUFallbackIsLoggedAtWarn(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		msg  string
	}{
		{
			name: "declined by accelerator",
			opts: []Option{WithAccelerator(&mockAccelerator{canAccel: AccelSaturation, renderErr: ErrFallbackToCPU})},
			msg:  "retouch: GPU declined filter, using CPU",
		},
		{
			name: "no accelerator",
			msg:  "retouch: no GPU accelerator, using CPU",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetAccelerator()
			logs := captureLogs(t)

			p := NewRenderPipeline(append([]Option{WithBackend(BackendGPU)}, tt.opts...)...)
			defer p.Close()
			if _, err := p.Render(grayImage(2, 2, 100), deltaWith(t, Saturation, 0.4)); err != nil {
				t.Fatal(err)
			}

			rec, ok := logs.find(slog.LevelWarn, tt.msg)
			if !ok {
				t.Fatalf("no Warn %q", tt.msg)
			}
			if rec.attrs["filter"] != "saturation" {
				t.Errorf("filter attr = %q, want saturation", rec.attrs["filter"])
			}
		})
	}
}

func TestLogger_RenderReportsConversions(t *testing.T) {
	logs := captureLogs(t)

	p := NewRenderPipeline(WithWorkers(1))
	defer p.Close()
	d := deltaWith(t, Exposition, 0.5)
	_ = d.SetFilter(Saturation, 0.2)
	if _, err := p.Render(grayImage(2, 2, 90), d); err != nil {
		t.Fatal(err)
	}

	rec, ok := logs.find(slog.LevelDebug, "retouch: render done")
	if !ok {
		t.Fatal("no Debug render summary")
	}
	// Exposition and saturation share one HSL conversion.
	if rec.attrs["hsl_conversions"] != "1" {
		t.Errorf("hsl_conversions = %q, want 1", rec.attrs["hsl_conversions"])
	}
}

func TestLogger_PropagatesToAccelerator(t *testing.T) {
	resetAccelerator()
	t.Cleanup(resetAccelerator)
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	first := slog.New(&captureHandler{})
	SetLogger(first)
	mock := &mockAccelerator{name: "logged"}
	if err := RegisterAccelerator(mock); err != nil {
		t.Fatal(err)
	}
	if mock.logger != first {
		t.Error("RegisterAccelerator should hand over the current logger")
	}

	second := slog.New(&captureHandler{})
	SetLogger(second)
	if mock.logger != second {
		t.Error("SetLogger should reach the registered accelerator")
	}
}

func TestLogger_ConcurrentSetAndLog(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			Logger().Debug("retouch: concurrent")
		}()
		go func() {
			defer wg.Done()
			SetLogger(slog.New(&captureHandler{}))
			SetLogger(nil)
		}()
	}
	wg.Wait()
}
