// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"
	"unsafe"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/retouch"
	"github.com/gogpu/retouch/internal/color"
	"github.com/gogpu/retouch/internal/filter"
	"github.com/gogpu/retouch/pixel"
)

// MaxImageDimension is the largest width or height the accelerator
// accepts.
const MaxImageDimension = 8192

// paramsSize is the size of the Params uniform: four scalars and three
// vec4 matrix rows.
const paramsSize = 64

const workgroupSize = 16

const pollInterval = 50 * time.Microsecond

// submitTimeout bounds the wait for one filter pass.
var submitTimeout = 5 * time.Second

var errSubmitTimeout = errors.New("gpu: timed out waiting for the GPU")

// FilterAccelerator runs exposition, saturation and white balance as
// compute passes over a resident RGBA8 storage buffer. It implements
// retouch.GPUAccelerator.
type FilterAccelerator struct {
	mu sync.Mutex

	// Backend and Adapter select the device opened by Init. Empty values
	// pick DefaultBackend and the preferred adapter.
	Backend string
	Adapter string

	dev *Device

	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	modules    map[retouch.FilterKind]hal.ShaderModule
	pipelines  map[retouch.FilterKind]hal.ComputePipeline
	ready      bool

	// Resident image and the buffers sized for it.
	resident   *pixel.Image
	width      int
	height     int
	pixelBuf   hal.Buffer
	stagingBuf hal.Buffer
	uniformBuf hal.Buffer
	bindGroup  hal.BindGroup
}

var (
	_ retouch.GPUAccelerator      = (*FilterAccelerator)(nil)
	_ retouch.DeviceProviderAware = (*FilterAccelerator)(nil)
)

// Name returns "wgpu".
func (a *FilterAccelerator) Name() string { return "wgpu" }

// CanAccelerate reports whether op has a compute shader.
func (a *FilterAccelerator) CanAccelerate(op retouch.AcceleratedOp) bool {
	return op&(retouch.AccelExposition|retouch.AccelSaturation|retouch.AccelWhiteBalance) != 0
}

// SetLogger routes package logging to l.
func (a *FilterAccelerator) SetLogger(l *slog.Logger) { setLogger(l) }

// Init opens a device, unless one was shared through SetDeviceProvider,
// and builds the compute pipelines.
func (a *FilterAccelerator) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ready {
		return nil
	}
	if a.dev == nil {
		dev, err := Open(a.Backend, a.Adapter)
		if err != nil {
			return err
		}
		a.dev = dev
	}
	if err := a.createPipelines(); err != nil {
		a.destroyPipelines()
		a.dev.Close()
		a.dev = nil
		return err
	}
	a.ready = true
	slogger().Info("gpu: filter accelerator initialized", "adapter", a.dev.Info.String())
	return nil
}

// Close releases every GPU resource. A shared device is left open.
func (a *FilterAccelerator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.releaseImage()
	a.destroyPipelines()
	a.dev.Close()
	a.dev = nil
	a.ready = false
}

// SetDeviceProvider switches the accelerator to a device owned by the host
// application. The provider must also implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func (a *FilterAccelerator) SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("gpu: provider HalQueue is not hal.Queue")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.releaseImage()
	a.destroyPipelines()
	a.dev.Close()
	a.dev = &Device{
		Info:     retouch.AdapterInfo{Name: "shared", Backend: "host"},
		device:   device,
		queue:    queue,
		external: true,
	}
	a.ready = false
	if err := a.createPipelines(); err != nil {
		a.destroyPipelines()
		return fmt.Errorf("gpu: create pipelines with shared device: %w", err)
	}
	a.ready = true
	slogger().Info("gpu: switched to shared GPU device")
	return nil
}

// Upload copies img into the resident storage buffer. Uploading the image
// returned by the last Render is skipped.
func (a *FilterAccelerator) Upload(img *pixel.Image) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.ready {
		return retouch.ErrShadersNotCompiled
	}
	if img.Depth != pixel.U8 || (img.Channels != 3 && img.Channels != 4) {
		return fmt.Errorf("%w: %d-channel %s", retouch.ErrUnsupportedPixelFormat, img.Channels, img.Depth)
	}
	if img.Width <= 0 || img.Height <= 0 || img.Width > MaxImageDimension || img.Height > MaxImageDimension {
		return fmt.Errorf("%w: %dx%d", retouch.ErrIncompatibleImageSize, img.Width, img.Height)
	}
	if img == a.resident {
		return nil
	}
	if err := a.ensureBuffers(img.Width, img.Height); err != nil {
		return err
	}
	if err := a.dev.queue.WriteBuffer(a.pixelBuf, 0, packPixels(img)); err != nil {
		return fmt.Errorf("%w: upload: %w", retouch.ErrRenderFailed, err)
	}
	a.resident = img
	slogger().Debug("gpu: uploaded image", "width", img.Width, "height", img.Height)
	return nil
}

// Render runs kind on the resident image and returns the result, which
// becomes the new resident image.
func (a *FilterAccelerator) Render(kind retouch.FilterKind, params []float64) (*pixel.Image, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.ready {
		return nil, retouch.ErrShadersNotCompiled
	}
	pipeline, ok := a.pipelines[kind]
	if !ok {
		return nil, retouch.ErrFallbackToCPU
	}
	if len(params) != kind.Arity() {
		return nil, fmt.Errorf("%w: %s takes %d, got %d", retouch.ErrInvalidParameterCount, kind, kind.Arity(), len(params))
	}
	if a.resident == nil {
		return nil, fmt.Errorf("%w: no image uploaded", retouch.ErrRenderFailed)
	}

	// The shader works in place: until the readback succeeds the device
	// buffer no longer matches any host image.
	src := a.resident
	a.resident = nil
	if err := a.dev.queue.WriteBuffer(a.uniformBuf, 0, makeParams(kind, params, a.width, a.height)); err != nil {
		return nil, fmt.Errorf("%w: %s: write params: %w", retouch.ErrRenderFailed, kind, err)
	}
	readback, err := a.dispatch(pipeline)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", retouch.ErrRenderFailed, kind, err)
	}
	out := src.NewLike()
	unpackPixels(readback, out)
	a.resident = out
	return out, nil
}

func (a *FilterAccelerator) dispatch(pipeline hal.ComputePipeline) ([]byte, error) {
	device, queue := a.dev.device, a.dev.queue
	size := uint64(a.width * a.height * 4)

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "retouch_filter_encoder"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("retouch_filter"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "retouch_filter_pass"})
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, a.bindGroup, nil)
	pass.Dispatch(uint32((a.width+workgroupSize-1)/workgroupSize), uint32((a.height+workgroupSize-1)/workgroupSize), 1) //nolint:gosec // bounded by MaxImageDimension
	pass.End()
	encoder.CopyBufferToBuffer(a.pixelBuf, a.stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: size},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer device.FreeCommandBuffer(cmdBuf)

	index, err := queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	if err := waitSubmission(queue, index); err != nil {
		return nil, err
	}

	mapping, err := device.MapBuffer(a.stagingBuf, 0, size)
	if err != nil {
		return nil, fmt.Errorf("map staging buffer: %w", err)
	}
	readback := make([]byte, size)
	copy(readback, unsafe.Slice((*byte)(mapping.Ptr), size))
	if err := device.UnmapBuffer(a.stagingBuf); err != nil {
		return nil, fmt.Errorf("unmap staging buffer: %w", err)
	}
	return readback, nil
}

// waitSubmission polls queue until submission index has completed or
// submitTimeout passes.
func waitSubmission(queue hal.Queue, index uint64) error {
	deadline := time.Now().Add(submitTimeout)
	for queue.PollCompleted() < index {
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: submission %d after %s", errSubmitTimeout, index, submitTimeout)
		}
		time.Sleep(pollInterval)
	}
	return nil
}

// makeParams encodes the Params uniform for kind.
func makeParams(kind retouch.FilterKind, params []float64, w, h int) []byte {
	var amount float64
	rows := color.Identity3
	switch kind {
	case retouch.Exposition:
		amount = filter.ExposureFactor(params[0])
	case retouch.Saturation:
		amount = filter.SaturationOffset(params[0])
	case retouch.WhiteBalance:
		rows = filter.WhiteBalanceMatrix(params[0], params[1], params[2], params[3])
	}

	buf := make([]byte, paramsSize)
	binary.LittleEndian.PutUint32(buf[0:], uint32(w)) //nolint:gosec // bounded by MaxImageDimension
	binary.LittleEndian.PutUint32(buf[4:], uint32(h)) //nolint:gosec // bounded by MaxImageDimension
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(float32(amount)))
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(color.Gamma))
	for r := range 3 {
		for c := range 3 {
			off := 16 + r*16 + c*4
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(float32(rows[r*3+c])))
		}
	}
	return buf
}

func (a *FilterAccelerator) ensureBuffers(w, h int) error {
	if a.pixelBuf != nil && a.width == w && a.height == h {
		return nil
	}
	a.releaseImage()
	device := a.dev.device
	size := uint64(w * h * 4)

	var err error
	a.pixelBuf, err = device.CreateBuffer(&hal.BufferDescriptor{
		Label: "retouch_pixels", Size: size,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("%w: create pixel buffer: %w", retouch.ErrRenderFailed, err)
	}
	a.stagingBuf, err = device.CreateBuffer(&hal.BufferDescriptor{
		Label: "retouch_staging", Size: size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		a.releaseImage()
		return fmt.Errorf("%w: create staging buffer: %w", retouch.ErrRenderFailed, err)
	}
	a.uniformBuf, err = device.CreateBuffer(&hal.BufferDescriptor{
		Label: "retouch_params", Size: paramsSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		a.releaseImage()
		return fmt.Errorf("%w: create uniform buffer: %w", retouch.ErrRenderFailed, err)
	}
	a.bindGroup, err = device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "retouch_bind", Layout: a.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: a.uniformBuf.NativeHandle(), Offset: 0, Size: paramsSize}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: a.pixelBuf.NativeHandle(), Offset: 0, Size: size}},
		},
	})
	if err != nil {
		a.releaseImage()
		return fmt.Errorf("%w: create bind group: %w", retouch.ErrRenderFailed, err)
	}
	a.width, a.height = w, h
	return nil
}

func (a *FilterAccelerator) releaseImage() {
	a.resident = nil
	a.width, a.height = 0, 0
	if a.dev == nil || a.dev.device == nil {
		a.pixelBuf, a.stagingBuf, a.uniformBuf, a.bindGroup = nil, nil, nil, nil
		return
	}
	device := a.dev.device
	if a.bindGroup != nil {
		device.DestroyBindGroup(a.bindGroup)
		a.bindGroup = nil
	}
	for _, b := range []*hal.Buffer{&a.pixelBuf, &a.stagingBuf, &a.uniformBuf} {
		if *b != nil {
			device.DestroyBuffer(*b)
			*b = nil
		}
	}
}

func (a *FilterAccelerator) createPipelines() error {
	device := a.dev.device

	var err error
	a.bindLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "retouch_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: create bind group layout: %w", retouch.ErrShadersNotCompiled, err)
	}
	a.pipeLayout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "retouch_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{a.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("%w: create pipeline layout: %w", retouch.ErrShadersNotCompiled, err)
	}

	a.modules = make(map[retouch.FilterKind]hal.ShaderModule, len(shaderKinds))
	a.pipelines = make(map[retouch.FilterKind]hal.ComputePipeline, len(shaderKinds))
	for _, kind := range shaderKinds {
		source := hal.ShaderSource{WGSL: ShaderSource(kind)}
		if spirv, err := CompileShader(kind); err == nil {
			source = hal.ShaderSource{SPIRV: spirv}
		} else {
			slogger().Warn("gpu: naga compile failed, passing WGSL to the driver", "filter", kind, "err", err)
		}
		module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
			Label:  "retouch_" + kind.String(),
			Source: source,
		})
		if err != nil {
			return fmt.Errorf("%w: %s: %w", retouch.ErrShadersNotCompiled, kind, err)
		}
		a.modules[kind] = module

		pipeline, err := device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
			Label: "retouch_" + kind.String() + "_pipeline", Layout: a.pipeLayout,
			Compute: hal.ComputeState{Module: module, EntryPoint: "main"},
		})
		if err != nil {
			return fmt.Errorf("%w: %s pipeline: %w", retouch.ErrShadersNotCompiled, kind, err)
		}
		a.pipelines[kind] = pipeline
	}
	return nil
}

func (a *FilterAccelerator) destroyPipelines() {
	if a.dev == nil || a.dev.device == nil {
		return
	}
	device := a.dev.device
	for k, p := range a.pipelines {
		device.DestroyComputePipeline(p)
		delete(a.pipelines, k)
	}
	for k, m := range a.modules {
		device.DestroyShaderModule(m)
		delete(a.modules, k)
	}
	if a.pipeLayout != nil {
		device.DestroyPipelineLayout(a.pipeLayout)
		a.pipeLayout = nil
	}
	if a.bindLayout != nil {
		device.DestroyBindGroupLayout(a.bindLayout)
		a.bindLayout = nil
	}
}

// packPixels packs img into little-endian RGBA8 words. Three-channel
// images get opaque alpha.
func packPixels(img *pixel.Image) []byte {
	n, ch := img.Pixels(), img.Channels
	out := make([]byte, n*4)
	for i := range n {
		s := img.Pix8[i*ch : i*ch+ch]
		alpha := uint32(255)
		if ch == 4 {
			alpha = uint32(s[3])
		}
		packed := uint32(s[0]) | uint32(s[1])<<8 | uint32(s[2])<<16 | alpha<<24
		binary.LittleEndian.PutUint32(out[i*4:], packed)
	}
	return out
}

// unpackPixels writes packed RGBA8 words into dst, dropping alpha for
// three-channel images.
func unpackPixels(packed []byte, dst *pixel.Image) {
	n, ch := dst.Pixels(), dst.Channels
	for i := range n {
		v := binary.LittleEndian.Uint32(packed[i*4:])
		d := dst.Pix8[i*ch : i*ch+ch]
		d[0] = uint8(v)       //nolint:gosec // masked to 8 bits
		d[1] = uint8(v >> 8)  //nolint:gosec // masked to 8 bits
		d[2] = uint8(v >> 16) //nolint:gosec // masked to 8 bits
		if ch == 4 {
			d[3] = uint8(v >> 24) //nolint:gosec // masked to 8 bits
		}
	}
}
