package retouch

import (
	"errors"
	"sync"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/retouch/pixel"
)

// AcceleratedOp is a bit set of filter kinds, used for GPU capability
// checks. Bit k corresponds to FilterKind k; see FilterKind.Op.
type AcceleratedOp uint32

const (
	// AccelExposition represents the exposure shader.
	AccelExposition AcceleratedOp = 1 << Exposition

	// AccelWhiteBalance represents the white balance shader.
	AccelWhiteBalance AcceleratedOp = 1 << WhiteBalance

	// AccelSaturation represents the saturation shader.
	AccelSaturation AcceleratedOp = 1 << Saturation
)

// AdapterInfo describes a GPU adapter.
type AdapterInfo struct {
	Name       string
	DeviceType string
	Backend    string
}

func (a AdapterInfo) String() string {
	return a.Name + " (" + a.DeviceType + ", " + a.Backend + ")"
}

// GPUAccelerator runs filters as GPU compute passes.
//
// Before each Render the pipeline uploads the current RGB image. Render
// returns the filtered image read back from the GPU and keeps it resident,
// so uploading the image returned by the previous Render may be skipped.
//
// Implementations are provided by GPU backend packages. Users opt in via
// blank import:
//
//	import _ "github.com/gogpu/retouch/gpu" // enables GPU acceleration
type GPUAccelerator interface {
	// Name returns the accelerator name (e.g., "wgpu").
	Name() string

	// Init initializes GPU resources. Called once during registration.
	Init() error

	// Close releases GPU resources.
	Close()

	// CanAccelerate reports whether the accelerator supports the operation.
	CanAccelerate(op AcceleratedOp) bool

	// Upload makes img the resident input image. Uploading the image that
	// is already resident is a no-op.
	// Returns ErrUnsupportedPixelFormat or ErrIncompatibleImageSize when
	// the image cannot be processed.
	Upload(img *pixel.Image) error

	// Render applies kind with params (the delta parameter vector) to the
	// resident image and returns the result.
	// Returns ErrFallbackToCPU if kind cannot be GPU-accelerated.
	Render(kind FilterKind, params []float64) (*pixel.Image, error)
}

// DeviceProviderAware is an optional interface for accelerators that can
// share a GPU device with the host application instead of opening their
// own.
type DeviceProviderAware interface {
	SetDeviceProvider(provider gpucontext.DeviceProvider) error
}

var (
	accelMu sync.RWMutex
	accel   GPUAccelerator
)

// RegisterAccelerator registers the GPU accelerator used by pipelines
// created without WithAccelerator.
//
// Only one accelerator can be registered; a later call replaces and closes
// the previous one. Init is called during registration; if it fails the
// accelerator is not registered and the error is returned.
func RegisterAccelerator(a GPUAccelerator) error {
	if a == nil {
		return errors.New("retouch: accelerator must not be nil")
	}
	if err := a.Init(); err != nil {
		return err
	}
	propagateLogger(a, Logger())

	accelMu.Lock()
	old := accel
	accel = a
	accelMu.Unlock()
	if old != nil && old != a {
		old.Close()
	}
	Logger().Info("retouch: GPU accelerator registered", "name", a.Name())
	return nil
}

// UnregisterAccelerator removes and closes the registered accelerator.
func UnregisterAccelerator() {
	accelMu.Lock()
	old := accel
	accel = nil
	accelMu.Unlock()
	if old != nil {
		old.Close()
	}
}

// Accelerator returns the registered GPU accelerator, or nil if none.
func Accelerator() GPUAccelerator {
	accelMu.RLock()
	a := accel
	accelMu.RUnlock()
	return a
}

// SetAcceleratorDeviceProvider passes a host device to the registered
// accelerator. It is a no-op when no accelerator is registered or the
// accelerator cannot share devices.
func SetAcceleratorDeviceProvider(provider gpucontext.DeviceProvider) error {
	a := Accelerator()
	if a == nil {
		return nil
	}
	if dpa, ok := a.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}
