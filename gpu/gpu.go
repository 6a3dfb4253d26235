//go:build !nogpu

// Package gpu registers the wgpu filter accelerator.
//
// Import this package to run exposition, saturation and white balance as
// GPU compute shaders when a pipeline uses retouch.BackendGPU. The other
// filters always run on the CPU.
//
// If GPU initialization fails (no Vulkan device available), the
// registration is skipped with a warning and GPU-backend pipelines fall
// back to CPU kernels.
//
// Usage:
//
//	import _ "github.com/gogpu/retouch/gpu" // enable GPU acceleration
package gpu

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/retouch"
	gpuimpl "github.com/gogpu/retouch/internal/gpu"
)

func init() {
	if err := Register("", ""); err != nil {
		retouch.Logger().Warn("GPU accelerator not available", "err", err)
	}
}

// Register opens the named backend and adapter and registers a new
// accelerator on it, replacing the current one. Empty names select the
// default backend and the preferred adapter.
func Register(backend, adapter string) error {
	return retouch.RegisterAccelerator(&gpuimpl.FilterAccelerator{Backend: backend, Adapter: adapter})
}

// ListAdapters returns the adapters of the named backend ("vulkan",
// "noop"), or of every backend when name is empty.
func ListAdapters(backend string) []retouch.AdapterInfo {
	return gpuimpl.ListAdapters(backend)
}

// Backends returns the known backend names.
func Backends() []string { return gpuimpl.BackendNames() }

// SetDeviceProvider configures the GPU accelerator to use a shared GPU device
// from an external provider (e.g., gogpu). This avoids creating a separate
// GPU instance and enables efficient device sharing.
//
// The provider must also implement HalDevice() any and HalQueue() any for
// direct HAL access.
func SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	return retouch.SetAcceleratorDeviceProvider(provider)
}
