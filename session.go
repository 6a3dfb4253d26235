package retouch

import (
	"fmt"
	"sync"

	"github.com/nfnt/resize"

	"github.com/gogpu/retouch/pixel"
)

// Session is one editing session over a single source image.
//
// It keeps the desired stack (what the user asked for), the baked stack
// (what the current image shows) and the current image. Render applies
// only the difference between the two; when that difference cannot be
// expressed as a delta it re-renders from the source.
//
// Session methods are safe for concurrent use; renders run one at a time.
type Session struct {
	mu sync.Mutex

	source  *pixel.Image
	current *pixel.Image
	desired *EditStack
	baked   *EditStack

	opts     options
	pipeline *RenderPipeline
}

// NewSession creates an empty session. Call Load before rendering and
// Close when done.
func NewSession(opts ...Option) *Session {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Session{
		desired:  NewEditStack(),
		baked:    NewEditStack(),
		opts:     o,
		pipeline: NewRenderPipeline(opts...),
	}
}

// Load installs img as the source image and resets both stacks.
// The session keeps img; the caller must not modify it afterwards.
func (s *Session) Load(img *pixel.Image) error {
	if err := img.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = img
	s.current = img
	s.desired = NewEditStack()
	s.baked = NewEditStack()
	s.record()
	return nil
}

// SetFilter updates the desired parameters of kind. Nothing is rendered
// until Render is called.
func (s *Session) SetFilter(kind FilterKind, params ...float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.desired.SetFilter(kind, params...)
}

// SetWhiteBalance sets the desired white balance target.
func (s *Session) SetWhiteBalance(temp, tint float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.desired.SetWhiteBalance(temp, tint)
}

// SetBackend selects the rendering backend for later renders.
func (s *Session) SetBackend(b Backend) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts.backend = b
	s.pipeline.SetBackend(b)
}

// Desired returns a copy of the desired stack.
func (s *Session) Desired() *EditStack {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.desired.Clone()
}

// Baked returns a copy of the stack the current image shows.
func (s *Session) Baked() *EditStack {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baked.Clone()
}

// Current returns the last rendered image, or the source before the first
// render. The image must not be modified.
func (s *Session) Current() *pixel.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Render brings the current image up to the desired stack and returns it.
//
// On error the current image and the baked stack are left unchanged.
func (s *Session) Render() (*pixel.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source == nil {
		return nil, ErrNoImage
	}

	base, baked := s.current, s.baked
	if NeedsRebase(s.desired, s.baked) {
		Logger().Info("retouch: rebasing from source image")
		base, baked = s.source, BaseStack(s.desired)
	}

	delta := DeltaOf(s.desired, baked)
	if delta.IsIdentityAll() {
		s.current, s.baked = base, baked
		return base, nil
	}

	out, err := s.pipeline.Render(base, delta)
	if err != nil {
		return nil, err
	}
	MergeInto(baked, delta)
	s.current, s.baked = out, baked
	s.record()
	return out, nil
}

// Reset discards every edit and shows the source image again.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.desired = NewEditStack()
	s.baked = NewEditStack()
	s.current = s.source
}

// Export renders the desired stack from the source image in one pass,
// without touching the session's current image. It is the render used for
// saving: it does not carry the rounding of repeated delta renders.
func (s *Session) Export() (*pixel.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source == nil {
		return nil, ErrNoImage
	}
	delta := DeltaOf(s.desired, BaseStack(s.desired))
	if delta.IsIdentityAll() {
		return s.source.Clone(), nil
	}
	p := newPipeline(s.opts, s.pipeline.pool)
	return p.Render(s.source, delta)
}

// Preview returns the current image scaled to fit within maxW x maxH,
// preserving the aspect ratio. Images that already fit are returned
// unscaled as 8 or 16-bit RGBA.
func (s *Session) Preview(maxW, maxH int) (*pixel.Image, error) {
	s.mu.Lock()
	cur := s.current
	s.mu.Unlock()
	if cur == nil {
		return nil, ErrNoImage
	}
	if maxW <= 0 || maxH <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidPreviewSize, maxW, maxH)
	}
	thumb := resize.Thumbnail(uint(maxW), uint(maxH), cur.ToImage(), resize.Lanczos3)
	return pixel.FromImage(thumb), nil
}

// Close stops the session's workers. The session must not be used
// afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pipeline.Close()
}

func (s *Session) record() {
	if s.opts.history != nil {
		s.opts.history.Record(s.current, s.baked.Clone())
	}
}
