package retouch

import (
	"strings"

	"github.com/gogpu/retouch/pixel"
)

// Backend selects where GPU-capable filters run.
type Backend uint8

const (
	// BackendCPU runs every filter on the CPU.
	BackendCPU Backend = iota

	// BackendGPU runs GPU-capable filters on the accelerator and the rest
	// on the CPU.
	BackendGPU
)

func (b Backend) String() string {
	if b == BackendGPU {
		return "gpu"
	}
	return "cpu"
}

// ParseBackend parses "cpu" or "gpu", ignoring case.
func ParseBackend(s string) (Backend, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cpu":
		return BackendCPU, true
	case "gpu":
		return BackendGPU, true
	}
	return BackendCPU, false
}

// HistoryRecorder receives every baked frame of a Session.
// Implementations must not modify img or stack.
type HistoryRecorder interface {
	Record(img *pixel.Image, stack *EditStack)
}

// Option configures a RenderPipeline or Session.
//
// Example:
//
//	s := retouch.NewSession(
//	    retouch.WithBackend(retouch.BackendGPU),
//	    retouch.WithWorkers(8),
//	)
type Option func(*options)

type options struct {
	backend Backend
	accel   GPUAccelerator
	workers int
	history HistoryRecorder

	cpuFallback bool
}

func defaultOptions() options {
	return options{backend: BackendCPU}
}

// WithBackend selects the rendering backend. Default: BackendCPU.
func WithBackend(b Backend) Option {
	return func(o *options) { o.backend = b }
}

// WithAccelerator uses a instead of the registered accelerator.
func WithAccelerator(a GPUAccelerator) Option {
	return func(o *options) { o.accel = a }
}

// WithWorkers sets the number of CPU worker goroutines.
// 0 (the default) uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithCPUFallback runs a filter on its CPU kernel when the accelerator
// rejects the image format or size. By default such errors abort the
// render.
func WithCPUFallback() Option {
	return func(o *options) { o.cpuFallback = true }
}

// WithHistory records every baked frame of a Session.
func WithHistory(h HistoryRecorder) Option {
	return func(o *options) { o.history = h }
}
