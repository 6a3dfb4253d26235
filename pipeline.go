package retouch

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/gogpu/retouch/internal/filter"
	"github.com/gogpu/retouch/internal/parallel"
	"github.com/gogpu/retouch/internal/spaces"
	"github.com/gogpu/retouch/pixel"
)

// cpuKernel applies one filter to the pipeline's buffer.
type cpuKernel func(p *RenderPipeline, params []float64)

var cpuKernels = [filterKindCount]cpuKernel{
	Exposition: func(p *RenderPipeline, params []float64) {
		filter.Exposure(p.pool, p.buf.HSL(), params[0])
		p.buf.MarkDirty(spaces.HSL)
	},
	Sharpening: func(p *RenderPipeline, params []float64) {
		filter.Sharpen(p.pool, p.buf.Lab(), params[0], int(params[1]))
		p.buf.MarkDirty(spaces.Lab)
	},
	WhiteBalance: func(p *RenderPipeline, params []float64) {
		p.buf.ReplaceRGB(filter.WhiteBalance(p.pool, p.buf.RGB(), params[0], params[1], params[2], params[3]))
	},
	Contrast: func(p *RenderPipeline, params []float64) {
		p.buf.ReplaceRGB(filter.Contrast(p.pool, p.buf.RGB(), params[0]))
	},
	Saturation: func(p *RenderPipeline, params []float64) {
		filter.Saturate(p.pool, p.buf.HSL(), params[0])
		p.buf.MarkDirty(spaces.HSL)
	},
	GaussianBlur: func(p *RenderPipeline, params []float64) {
		p.buf.ReplaceRGB(filter.GaussianBlur(p.pool, p.buf.RGB(), params[0], int(params[1])))
	},
	BoxBlur: func(p *RenderPipeline, params []float64) {
		p.buf.ReplaceRGB(filter.BoxBlur(p.pool, p.buf.RGB(), int(math.Round(params[0]))))
	},
}

// RenderPipeline applies edit deltas to an image, routing each filter to
// the GPU accelerator or a CPU kernel.
//
// The pipeline owns a colour space buffer caching the HSL and Lab forms of
// the last rendered image, so rendering onto its own previous output skips
// conversions. RenderPipeline is not safe for concurrent use.
type RenderPipeline struct {
	backend     Backend
	accel       GPUAccelerator
	cpuFallback bool
	pool        *parallel.WorkerPool
	buf         *spaces.Buffer
}

// NewRenderPipeline creates a pipeline. Call Close to stop its workers.
func NewRenderPipeline(opts ...Option) *RenderPipeline {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newPipeline(o, parallel.NewWorkerPool(o.workers))
}

func newPipeline(o options, pool *parallel.WorkerPool) *RenderPipeline {
	return &RenderPipeline{
		backend:     o.backend,
		accel:       o.accel,
		cpuFallback: o.cpuFallback,
		pool:        pool,
		buf:         spaces.New(pool),
	}
}

// Backend returns the selected backend.
func (p *RenderPipeline) Backend() Backend { return p.backend }

// SetBackend selects the backend for subsequent renders.
func (p *RenderPipeline) SetBackend(b Backend) { p.backend = b }

// Close stops the worker pool.
func (p *RenderPipeline) Close() {
	p.pool.Close()
	p.buf.Reset()
}

func (p *RenderPipeline) accelerator() GPUAccelerator {
	if p.accel != nil {
		return p.accel
	}
	return Accelerator()
}

// Render applies every non-identity slot of delta to current, in filter
// order, and returns the resulting image. current is never modified.
//
// A filter runs on the GPU when the backend is BackendGPU, the filter has
// a GPU shader and the accelerator accepts it; ErrFallbackToCPU from the
// accelerator sends that filter to its CPU kernel. Any other GPU error
// aborts the render and is returned; the partial result is discarded.
// With WithCPUFallback, format and size rejections also go to the CPU.
func (p *RenderPipeline) Render(current *pixel.Image, delta *EditStack) (*pixel.Image, error) {
	if err := current.Validate(); err != nil {
		return nil, err
	}
	if !p.buf.Holds(current) {
		p.buf.FromRGB(current)
	}
	log := Logger()

	for _, kind := range Kinds() {
		if delta.IsIdentity(kind) {
			continue
		}
		params := delta.slots[kind]

		done, err := p.renderGPU(kind, params, log)
		if err != nil {
			p.buf.FromRGB(current)
			return nil, fmt.Errorf("retouch: render %s: %w", kind, err)
		}
		if done {
			continue
		}
		log.Debug("retouch: cpu filter", "filter", kind, "params", params)
		cpuKernels[kind](p, params)
	}

	out := p.buf.RGB()
	log.Debug("retouch: render done",
		"hsl_conversions", p.buf.Conversions(spaces.HSL),
		"lab_conversions", p.buf.Conversions(spaces.Lab),
		"rgb_conversions", p.buf.Conversions(spaces.RGB))
	return out, nil
}

// renderGPU runs kind on the accelerator if possible. It reports whether
// the filter was applied.
func (p *RenderPipeline) renderGPU(kind FilterKind, params []float64, log *slog.Logger) (bool, error) {
	if p.backend != BackendGPU || !gpuShaders[kind] {
		return false, nil
	}
	a := p.accelerator()
	if a == nil {
		log.Warn("retouch: no GPU accelerator, using CPU", "filter", kind)
		return false, nil
	}
	if !a.CanAccelerate(kind.Op()) {
		return false, nil
	}

	if err := a.Upload(p.buf.RGB()); err != nil {
		if p.declined(err) {
			log.Warn("retouch: GPU upload declined, using CPU", "filter", kind, "err", err)
			return false, nil
		}
		return false, err
	}

	out, err := a.Render(kind, params)
	if err != nil {
		if p.declined(err) {
			log.Warn("retouch: GPU declined filter, using CPU", "filter", kind, "err", err)
			return false, nil
		}
		return false, err
	}
	log.Debug("retouch: gpu filter", "filter", kind, "accelerator", a.Name(), "params", params)
	p.buf.ReplaceRGB(out)
	return true, nil
}

// declined reports whether err sends the filter to its CPU kernel instead
// of aborting the render.
func (p *RenderPipeline) declined(err error) bool {
	if errors.Is(err, ErrFallbackToCPU) {
		return true
	}
	return p.cpuFallback &&
		(errors.Is(err, ErrUnsupportedPixelFormat) || errors.Is(err, ErrIncompatibleImageSize))
}
