package retouch

import "errors"

// GPU errors. Accelerators wrap these with context; match with errors.Is.
var (
	// ErrAdapterNotFound means no GPU adapter matched the request.
	ErrAdapterNotFound = errors.New("retouch: GPU adapter not found")

	// ErrDeviceRequestFailed means the adapter refused to open a device.
	ErrDeviceRequestFailed = errors.New("retouch: GPU device request failed")

	// ErrShadersNotCompiled means a filter was dispatched before its
	// shader pipeline was built.
	ErrShadersNotCompiled = errors.New("retouch: shaders not compiled")

	// ErrRenderFailed means a GPU submission or readback failed.
	ErrRenderFailed = errors.New("retouch: GPU rendering failed")

	// ErrIncompatibleImageSize means the image is empty or exceeds the
	// device limits.
	ErrIncompatibleImageSize = errors.New("retouch: incompatible image size")

	// ErrUnsupportedPixelFormat means the accelerator cannot handle the
	// image's channel depth.
	ErrUnsupportedPixelFormat = errors.New("retouch: unsupported pixel format")
)

// ErrFallbackToCPU indicates the GPU accelerator cannot handle this
// operation. The pipeline runs the CPU kernel instead.
var ErrFallbackToCPU = errors.New("retouch: falling back to CPU rendering")

// Edit errors.
var (
	// ErrInvalidParameterCount is returned by SetFilter when the number of
	// parameters does not match the filter's arity.
	ErrInvalidParameterCount = errors.New("retouch: invalid parameter count")

	// ErrUnknownFilter is returned for a FilterKind outside the known set.
	ErrUnknownFilter = errors.New("retouch: unknown filter")

	// ErrNoImage is returned when rendering a session with no image loaded.
	ErrNoImage = errors.New("retouch: no image loaded")

	// ErrInvalidPreviewSize is returned by Preview for a non-positive bound.
	ErrInvalidPreviewSize = errors.New("retouch: invalid preview size")
)
