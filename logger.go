package retouch

import (
	"log/slog"
	"sync/atomic"
)

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(slog.DiscardHandler))
}

// SetLogger sets the logger used by retouch and passes it on to the
// registered GPU accelerator. Nothing is logged until SetLogger is called;
// nil silences logging again.
//
// Levels:
//   - Debug: filter dispatch and colour space conversion counts
//   - Info: GPU adapter selection, rebasing from the source image
//   - Warn: a filter moved from the GPU to its CPU kernel
//
// SetLogger is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	loggerPtr.Store(l)
	if a := Accelerator(); a != nil {
		propagateLogger(a, l)
	}
}

// Logger returns the logger set by SetLogger.
func Logger() *slog.Logger { return loggerPtr.Load() }

// propagateLogger hands l to accelerators with a SetLogger method.
func propagateLogger(a GPUAccelerator, l *slog.Logger) {
	if ls, ok := a.(interface{ SetLogger(*slog.Logger) }); ok {
		ls.SetLogger(l)
	}
}
