// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"log/slog"
	"sync/atomic"
)

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(slog.DiscardHandler))
}

func slogger() *slog.Logger { return loggerPtr.Load() }

// setLogger installs l for this package, tagging records with
// component=gpu. nil discards.
func setLogger(l *slog.Logger) {
	if l == nil {
		loggerPtr.Store(slog.New(slog.DiscardHandler))
		return
	}
	loggerPtr.Store(l.With("component", "gpu"))
}
