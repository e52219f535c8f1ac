package system

import (
	"log"
	"time"

	"github.com/milk9111/heartwindow/common"
	"github.com/milk9111/heartwindow/ecs"
)

// Surface is an off-screen render target owned by a CompositeBackend.
type Surface interface {
	Size() (int, int)
}

// MaskFrame is the CPU copy of the mask pass. Alpha holds one byte per pixel,
// row-major; non-zero marks the revealed region.
type MaskFrame struct {
	Width  int
	Height int
	Alpha  []byte
}

func (m MaskFrame) At(x, y int) byte {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height || len(m.Alpha) < m.Width*m.Height {
		return 0
	}
	return m.Alpha[y*m.Width+x]
}

// Covered reports how many pixels are revealed.
func (m MaskFrame) Covered() int {
	n := 0
	for _, a := range m.Alpha {
		if a != 0 {
			n++
		}
	}
	return n
}

// DepthFrame is the CPU copy of the depth pass at reduced resolution. Depth
// is 0 nearest to the camera and 1 at the far plane.
type DepthFrame struct {
	Width  int
	Height int
	Depth  []float32
}

// BlendParams configure the mask blend of the base and hidden layers.
type BlendParams struct {
	Mask MaskFrame
	// Preview tints the mask region while aiming.
	Preview bool
}

// DistortParams configure the ripple pass.
type DistortParams struct {
	Offset float64
	Depth  DepthFrame
}

// TransitionParams configure the level-change blit.
type TransitionParams struct {
	Progress     float64
	Preview      string
	PatternScale float64
}

// CompositeBackend draws the passes the compositor orchestrates.
type CompositeBackend interface {
	NewSurface(width, height int) Surface
	Dispose(s Surface)
	Clear(s Surface)
	Copy(dst, src Surface)

	DrawMask(dst Surface, w *ecs.World)
	ReadMask(src Surface) MaskFrame
	DrawDepth(dst Surface, w *ecs.World)
	ReadDepth(src Surface) DepthFrame
	DrawHidden(dst Surface, w *ecs.World)

	Blend(dst, scene, hidden Surface, p BlendParams)
	Distort(dst, src Surface, p DistortParams)
	Transition(dst, still Surface, p TransitionParams)
}

// LevelLoader is the level-change collaborator.
type LevelLoader interface {
	ChangeLevel(id string)
}

// CompositorConfig holds the compositor tunables.
type CompositorConfig struct {
	RippleSeconds     float64
	RippleTarget      float64
	RippleCurve       Curve
	DepthDownscale    int
	TransitionSeconds float64
	PatternScale      float64
}

func DefaultCompositorConfig() CompositorConfig {
	return CompositorConfig{
		RippleSeconds:     1,
		RippleTarget:      5,
		RippleCurve:       LinearCurve{},
		DepthDownscale:    4,
		TransitionSeconds: 1.5,
		PatternScale:      8,
	}
}

type pendingCapture struct {
	preview string
	next    string
}

type transitionMaterial struct {
	still   Surface
	preview string
	start   float64
}

// Compositor merges the base and hidden layers once per rendered frame. It is
// the only producer of the mask, depth and ripple state.
type Compositor struct {
	backend CompositeBackend
	loader  LevelLoader
	world   *ecs.World
	cfg     CompositorConfig
	now     func() float64

	width, height int
	maskSurf      Surface
	depthSurf     Surface
	hiddenSurf    Surface
	blendSurf     Surface

	mask        MaskFrame
	depth       DepthFrame
	maskDirty   bool
	maskVisible bool
	maskBuilds  int

	ripple       *Ripple
	rippleOffset float64

	pending    *pendingCapture
	transition *transitionMaterial
}

// CompositorOption customizes a Compositor.
type CompositorOption func(*Compositor)

// WithClock replaces the wall clock; now returns seconds.
func WithClock(now func() float64) CompositorOption {
	return func(c *Compositor) {
		if now != nil {
			c.now = now
		}
	}
}

func NewCompositor(backend CompositeBackend, loader LevelLoader, cfg CompositorConfig, opts ...CompositorOption) *Compositor {
	start := time.Now()
	c := &Compositor{
		backend:   backend,
		loader:    loader,
		cfg:       cfg,
		now:       func() float64 { return time.Since(start).Seconds() },
		maskDirty: true,
	}
	if c.cfg.DepthDownscale <= 0 {
		c.cfg.DepthDownscale = 1
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetWorld binds the world the passes draw. A new world invalidates the mask.
func (c *Compositor) SetWorld(w *ecs.World) {
	if c == nil {
		return
	}
	c.world = w
	c.maskDirty = true
	c.ripple = nil
	c.rippleOffset = 0
}

// SetConfig swaps tunables; used by hot reload.
func (c *Compositor) SetConfig(cfg CompositorConfig) {
	if c == nil {
		return
	}
	if cfg.DepthDownscale <= 0 {
		cfg.DepthDownscale = 1
	}
	resized := cfg.DepthDownscale != c.cfg.DepthDownscale
	c.cfg = cfg
	if resized && c.width > 0 {
		w, h := c.width, c.height
		c.width, c.height = 0, 0
		c.Resize(w, h)
	}
}

// Resize tracks the output resolution. A change reallocates every buffer and
// forces a mask rebuild.
func (c *Compositor) Resize(width, height int) {
	if c == nil || c.backend == nil || width <= 0 || height <= 0 {
		return
	}
	if width == c.width && height == c.height && c.maskSurf != nil {
		return
	}
	c.release()
	c.width, c.height = width, height
	dw, dh := c.depthSize()
	c.maskSurf = c.backend.NewSurface(width, height)
	c.depthSurf = c.backend.NewSurface(dw, dh)
	c.hiddenSurf = c.backend.NewSurface(width, height)
	c.blendSurf = c.backend.NewSurface(width, height)
	c.mask = MaskFrame{}
	c.depth = DepthFrame{}
	c.maskDirty = true
}

func (c *Compositor) depthSize() (int, int) {
	dw := c.width / c.cfg.DepthDownscale
	dh := c.height / c.cfg.DepthDownscale
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	return dw, dh
}

func (c *Compositor) release() {
	for _, s := range []Surface{c.maskSurf, c.depthSurf, c.hiddenSurf, c.blendSurf} {
		if s != nil {
			c.backend.Dispose(s)
		}
	}
	c.maskSurf, c.depthSurf, c.hiddenSurf, c.blendSurf = nil, nil, nil, nil
}

// Size returns the tracked output resolution.
func (c *Compositor) Size() (int, int) { return c.width, c.height }

// ToggleMask shows or hides the window preview in the composite.
func (c *Compositor) ToggleMask(visible bool) {
	if c == nil {
		return
	}
	c.maskVisible = visible
}

func (c *Compositor) MaskVisible() bool { return c != nil && c.maskVisible }

// InvalidateMask schedules a rebuild before the next composite.
func (c *Compositor) InvalidateMask() {
	if c == nil {
		return
	}
	c.maskDirty = true
}

// RebuildMask renders the mask layer and publishes its CPU copy.
func (c *Compositor) RebuildMask() {
	if c == nil || c.backend == nil {
		return
	}
	if c.maskSurf == nil {
		c.maskDirty = true
		return
	}
	c.backend.Clear(c.maskSurf)
	c.backend.DrawMask(c.maskSurf, c.world)
	frame := c.backend.ReadMask(c.maskSurf)
	if frame.Width != c.width || frame.Height != c.height {
		log.Printf("compositor: mask readback %dx%d does not match %dx%d", frame.Width, frame.Height, c.width, c.height)
		c.maskDirty = true
		return
	}
	c.mask = frame
	c.maskDirty = false
	c.maskBuilds++
}

func (c *Compositor) Mask() MaskFrame   { return c.mask }
func (c *Compositor) Depth() DepthFrame { return c.depth }

// MaskBuilds counts successful mask rebuilds.
func (c *Compositor) MaskBuilds() int { return c.maskBuilds }

// RenderDepth renders the depth-only pass, reads it back and clears the
// temporary target.
func (c *Compositor) RenderDepth() {
	if c == nil || c.backend == nil || c.depthSurf == nil {
		return
	}
	c.backend.DrawDepth(c.depthSurf, c.world)
	c.depth = c.backend.ReadDepth(c.depthSurf)
	c.backend.Clear(c.depthSurf)
}

// StartRipple begins a ripple now, superseding any running one.
func (c *Compositor) StartRipple() *Ripple {
	if c == nil {
		return nil
	}
	r := &Ripple{
		Start:    c.now(),
		Duration: c.cfg.RippleSeconds,
		Target:   c.cfg.RippleTarget,
		Curve:    c.cfg.RippleCurve,
	}
	c.ripple = r
	return r
}

func (c *Compositor) Ripple() *Ripple       { return c.ripple }
func (c *Compositor) RippleOffset() float64 { return c.rippleOffset }

// PreRender is the per-frame tick before Composite: it samples the ripple and
// refreshes depth while the ripple needs it.
func (c *Compositor) PreRender() {
	if c == nil {
		return
	}
	r := c.ripple
	if r == nil {
		c.rippleOffset = 0
		return
	}
	offset, done := r.Sample(c.now())
	if c.ripple != r {
		return
	}
	if done {
		c.ripple = nil
		c.rippleOffset = 0
		return
	}
	c.rippleOffset = offset
	c.RenderDepth()
}

// CapturePreTransition grabs the next composited frame as a still, starts
// the transition blit and then asks the loader to change level.
func (c *Compositor) CapturePreTransition(preview, nextLevel string) {
	if c == nil {
		return
	}
	c.pending = &pendingCapture{preview: preview, next: nextLevel}
}

// Transitioning reports whether the transition blit replaces compositing.
func (c *Compositor) Transitioning() bool {
	return c != nil && (c.transition != nil || c.pending != nil)
}

// TransitionDone reports whether the dissolve has fully covered the still.
func (c *Compositor) TransitionDone() bool {
	return c != nil && c.transition != nil && c.transitionProgress() >= 1
}

// ClearTransition drops the transition material and returns to normal
// compositing.
func (c *Compositor) ClearTransition() {
	if c == nil || c.transition == nil {
		return
	}
	if c.transition.still != nil && c.backend != nil {
		c.backend.Dispose(c.transition.still)
	}
	c.transition = nil
}

// Composite writes the final frame into dst.
func (c *Compositor) Composite(src, dst Surface) {
	if c == nil || c.backend == nil || src == nil || dst == nil {
		return
	}

	if p := c.pending; p != nil {
		c.pending = nil
		c.capture(src, p)
	}
	if c.transition != nil {
		c.backend.Transition(dst, c.transition.still, TransitionParams{
			Progress:     c.transitionProgress(),
			Preview:      c.transition.preview,
			PatternScale: c.cfg.PatternScale,
		})
		return
	}

	w, h := dst.Size()
	c.Resize(w, h)
	if c.maskDirty {
		c.RebuildMask()
	}

	c.backend.Clear(c.hiddenSurf)
	c.backend.DrawHidden(c.hiddenSurf, c.world)
	blend := BlendParams{Mask: c.mask, Preview: c.maskVisible}
	if c.ripple == nil {
		c.backend.Blend(dst, src, c.hiddenSurf, blend)
		return
	}
	c.backend.Clear(c.blendSurf)
	c.backend.Blend(c.blendSurf, src, c.hiddenSurf, blend)
	c.backend.Distort(dst, c.blendSurf, DistortParams{Offset: c.rippleOffset, Depth: c.depth})
}

func (c *Compositor) capture(src Surface, p *pendingCapture) {
	c.ClearTransition()
	w, h := src.Size()
	still := c.backend.NewSurface(w, h)
	c.backend.Copy(still, src)
	c.transition = &transitionMaterial{still: still, preview: p.preview, start: c.now()}
	if c.loader != nil {
		c.loader.ChangeLevel(p.next)
	}
}

func (c *Compositor) transitionProgress() float64 {
	if c.transition == nil || c.cfg.TransitionSeconds <= 0 {
		return 1
	}
	return common.Clamp01((c.now() - c.transition.start) / c.cfg.TransitionSeconds)
}
