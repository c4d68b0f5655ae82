// Package renderer drives the gradient frame loop: it owns the compiled
// field program, the quad geometry and the surfaces, and renders one frame
// per host callback until stopped.
package renderer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/richinsley/gogradient/gpu"
	"github.com/richinsley/gogradient/graphics"
	"github.com/richinsley/gogradient/logging"
	"github.com/richinsley/gogradient/params"
	"github.com/richinsley/gogradient/program"
	"github.com/richinsley/gogradient/readback"
	"github.com/richinsley/gogradient/shader"
	"github.com/richinsley/gogradient/surface"
)

// Default surface identifiers.
const (
	OffscreenID = "gradient-offscreen"
	VisibleID   = "gradient-canvas"
)

var (
	ErrNotRunning         = errors.New("renderer is not running")
	ErrAlreadyInitialized = errors.New("renderer is already initialized")
)

// State is the renderer lifecycle state. There is no terminal state: a
// stopped renderer stays Running and can be run again.
type State int32

const (
	Uninitialized State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "uninitialized"
}

// Stats counts rendered frames and dropped blits.
type Stats struct {
	Frames       int64
	BlitsSkipped int64
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithRegistry looks surfaces up in reg before creating them.
func WithRegistry(reg *surface.Registry) Option {
	return func(r *Renderer) { r.registry = reg }
}

// WithSurfaceIDs overrides the surface identifiers.
func WithSurfaceIDs(offscreen, visible string) Option {
	return func(r *Renderer) { r.offscreenID, r.visibleID = offscreen, visible }
}

// WithClock replaces the monotonic clock. now returns seconds.
func WithClock(now func() float64) Option {
	return func(r *Renderer) { r.now = now }
}

// WithFrameLimit makes Run return after n frames. Zero means no limit.
func WithFrameLimit(n int64) Option {
	return func(r *Renderer) { r.frameLimit = n }
}

// Renderer renders the field program into the offscreen surface and copies
// every frame to the visible surface. All methods except Stop and Stats must
// be called on the goroutine that owns the device.
type Renderer struct {
	dev      gpu.Device
	store    *params.Store
	registry *surface.Registry

	offscreenID string
	visibleID   string
	now         func() float64
	frameLimit  int64

	surfaces *surface.Manager
	blitter  *readback.Blitter
	program  *program.Handle
	quad     uint32

	startTime  float64
	frameCount int32

	state   atomic.Int32
	stop    atomic.Bool
	frames  atomic.Int64
	skipped atomic.Int64
}

// New returns an uninitialized renderer drawing through dev with parameters
// read from store.
func New(dev gpu.Device, store *params.Store, opts ...Option) *Renderer {
	epoch := time.Now()
	r := &Renderer{
		dev:         dev,
		store:       store,
		offscreenID: OffscreenID,
		visibleID:   VisibleID,
		now:         func() float64 { return time.Since(epoch).Seconds() },
		blitter:     readback.New(),
	}
	for _, o := range opts {
		o(r)
	}
	r.surfaces = surface.NewManager(dev, r.registry)
	return r
}

// State returns the lifecycle state.
func (r *Renderer) State() State { return State(r.state.Load()) }

// Init creates the surfaces at width x height, compiles the field program
// and uploads the quad. Failures are fatal: the renderer stays
// Uninitialized and nothing is drawn.
func (r *Renderer) Init(width, height int) error {
	if r.State() != Uninitialized {
		return ErrAlreadyInitialized
	}
	log := logging.Logger()

	if _, _, err := r.surfaces.EnsureSurfaces(r.offscreenID, r.visibleID); err != nil {
		log.Error("gradient renderer unavailable", "error", err)
		return err
	}
	r.surfaces.Resize(width, height)

	prog, err := program.Compile(r.dev, shader.VertexSource(), shader.FieldFragmentSource())
	if err != nil {
		log.Error("failed to build field program", "error", err)
		return fmt.Errorf("field program: %w", err)
	}
	r.program = prog
	r.quad = r.dev.CreateVertexBuffer(shader.QuadVertices)

	r.startTime = r.now()
	r.frameCount = 0
	r.stop.Store(false)
	r.state.Store(int32(Running))
	log.Info("gradient renderer initialized", "width", width, "height", height)
	return nil
}

// Resize follows a viewport change. The next frame renders at the new size.
func (r *Renderer) Resize(width, height int) {
	r.surfaces.Resize(width, height)
}

// Visible returns the surface frames are copied into.
func (r *Renderer) Visible() *surface.Visible { return r.surfaces.Visible() }

// RenderFrame draws one frame and copies it to the visible surface. It
// reports whether the copy happened; a size mismatch skips it.
func (r *Renderer) RenderFrame() (bool, error) {
	if r.State() != Running {
		return false, ErrNotRunning
	}
	t := float32(r.now() - r.startTime)
	r.frameCount++

	off, vis := r.surfaces.Offscreen(), r.surfaces.Visible()
	r.dev.BindRenderTarget(off.Target)
	r.dev.Viewport(0, 0, int32(off.Width), int32(off.Height))
	r.program.Use()
	r.updateUniforms(off.Width, off.Height, t, r.store.Snapshot())
	r.program.BindAttribute(shader.AttribPosition, r.quad, 2)
	r.dev.DrawTriangleStrip(0, 4)

	r.frames.Add(1)
	if !r.blitter.Blit(r.dev, off, vis) {
		r.skipped.Add(1)
		return false, nil
	}
	return true, nil
}

func (r *Renderer) updateUniforms(width, height int, t float32, p *params.Parameters) {
	h := r.program
	h.BindUniform(shader.UniformResolution, [2]float32{float32(width), float32(height)})
	h.BindUniform(shader.UniformTime, t)
	h.BindUniform(shader.UniformFrame, r.frameCount)
	h.BindUniform(shader.UniformMouse, [4]float32{})
	for _, u := range parameterUniforms(p) {
		h.BindUniform(u.name, u.value)
	}
}

type uniformValue struct {
	name  string
	value float32
}

func parameterUniforms(p *params.Parameters) []uniformValue {
	return []uniformValue{
		{shader.UniformScale, p.Scale},
		{shader.UniformPhaseX, p.PhaseX},
		{shader.UniformVelocity, p.Velocity},
		{shader.UniformFieldDetail, p.FieldDetail},
		{shader.UniformFieldTwist, p.FieldTwist},
		{shader.UniformSecondarySpeed, p.SecondarySpeed},
		{shader.UniformBrightness, p.Brightness},
		{shader.UniformHue, p.Hue},
		{shader.UniformSaturation, p.Saturation},
		{shader.UniformVibrance, p.Vibrance},
		{shader.UniformContrast, p.Contrast},
		{shader.UniformRGBMultiplierR, p.RGBMultiplier[0]},
		{shader.UniformRGBMultiplierG, p.RGBMultiplier[1]},
		{shader.UniformRGBMultiplierB, p.RGBMultiplier[2]},
		{shader.UniformColorOffset, p.ColorOffset},
		{shader.UniformGrainAmount, p.GrainAmount},
		{shader.UniformGrainSize, p.GrainSize},
		{shader.UniformPosterize, p.Posterize},
		{shader.UniformScanlines, p.Scanlines},
		{shader.UniformScanlineWidth, p.ScanlineWidth},
	}
}

// Run renders a frame per host callback until Stop is called, ctx is done,
// the host asks to close or the frame limit is reached. Resize notifications
// from the host are applied between frames. A Stop issued before Run makes it
// return without drawing; the request is consumed when Run returns.
func (r *Renderer) Run(ctx context.Context, host graphics.Context) error {
	if r.State() != Running {
		return ErrNotRunning
	}
	host.OnResize(r.Resize)
	defer r.stop.Store(false)

	var n int64
	for !r.stop.Load() && ctx.Err() == nil && !host.ShouldClose() {
		if _, err := r.RenderFrame(); err != nil {
			return err
		}
		host.EndFrame(r.surfaces.Visible())
		n++
		if r.frameLimit > 0 && n >= r.frameLimit {
			break
		}
	}
	logging.Logger().Info("gradient renderer stopped", "frames", r.frames.Load())
	return nil
}

// Stop makes Run return after the frame in progress, or makes the next Run
// return at once when none is in progress. Safe to call from any goroutine.
func (r *Renderer) Stop() { r.stop.Store(true) }

// Stats returns the frame counters. Safe to call from any goroutine.
func (r *Renderer) Stats() Stats {
	return Stats{Frames: r.frames.Load(), BlitsSkipped: r.skipped.Load()}
}

// Shutdown releases the program and the quad buffer. Surfaces stay attached
// to their registry.
func (r *Renderer) Shutdown() {
	if r.program != nil {
		r.program.Release()
		r.program = nil
	}
	if r.quad != 0 {
		r.dev.DeleteBuffer(r.quad)
		r.quad = 0
	}
	r.state.Store(int32(Uninitialized))
}
