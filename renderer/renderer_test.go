package renderer

import (
	"context"
	"errors"
	"testing"

	"github.com/richinsley/gogradient/field"
	"github.com/richinsley/gogradient/gpu"
	"github.com/richinsley/gogradient/gpu/gputest"
	"github.com/richinsley/gogradient/gpu/software"
	"github.com/richinsley/gogradient/params"
	"github.com/richinsley/gogradient/program"
	"github.com/richinsley/gogradient/shader"
	"github.com/richinsley/gogradient/surface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zeroClock() float64 { return 0 }

// fakeHost presents nothing. It fires resizes and runs hooks from EndFrame.
type fakeHost struct {
	width, height int
	onResize      func(w, h int)
	frames        int
	endFrame      func(n int)
	closeAfter    int
}

func (h *fakeHost) MakeCurrent()                        {}
func (h *fakeHost) Shutdown()                           {}
func (h *fakeHost) GetFramebufferSize() (int, int)      { return h.width, h.height }
func (h *fakeHost) Time() float64                       { return 0 }
func (h *fakeHost) OnResize(fn func(width, height int)) { h.onResize = fn }

func (h *fakeHost) ShouldClose() bool {
	return h.closeAfter > 0 && h.frames >= h.closeAfter
}

func (h *fakeHost) EndFrame(*surface.Visible) {
	h.frames++
	if h.endFrame != nil {
		h.endFrame(h.frames)
	}
}

func TestFirstFrameWithDefaults(t *testing.T) {
	dev := software.New()
	store := params.NewStore(nil)
	r := New(dev, store, WithClock(zeroClock))
	require.Equal(t, Uninitialized, r.State())

	require.NoError(t, r.Init(100, 100))
	assert.Equal(t, Running, r.State())

	ok, err := r.RenderFrame()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, dev.Draws())
	assert.Equal(t, Stats{Frames: 1}, r.Stats())

	vis := r.Visible()
	require.Equal(t, 100, vis.Width())
	prm := params.Defaults()
	res := field.Vec2{X: 100, Y: 100}
	// Visible row 0 is the top, which is GPU row 99.
	want := field.ToRGBA8(field.Shade(field.Vec2{X: 0.5, Y: 99.5}, res, 0, &prm))
	assert.Equal(t, want[:], vis.Image.Pix[0:4])
	want = field.ToRGBA8(field.Shade(field.Vec2{X: 0.5, Y: 0.5}, res, 0, &prm))
	o := 99 * vis.Image.Stride
	assert.Equal(t, want[:], vis.Image.Pix[o:o+4])
}

func TestFramePushesUniforms(t *testing.T) {
	rec := gputest.NewRecorder(append(shader.ParameterUniforms(),
		shader.UniformResolution, shader.UniformTime, shader.UniformFrame, shader.UniformMouse)...)
	store := params.NewStore(params.Overrides{"hue": 90})
	now := 10.0
	r := New(rec, store, WithClock(func() float64 { return now }))
	require.NoError(t, r.Init(64, 32))

	now = 12.5
	_, err := r.RenderFrame()
	require.NoError(t, err)

	v, _ := rec.Value(shader.UniformTime)
	assert.Equal(t, []float32{2.5}, v)
	v, _ = rec.Value(shader.UniformFrame)
	assert.Equal(t, []float32{1}, v)
	v, _ = rec.Value(shader.UniformMouse)
	assert.Equal(t, []float32{0, 0, 0, 0}, v)
	v, _ = rec.Value(shader.UniformResolution)
	assert.Equal(t, []float32{64, 32}, v)
	v, _ = rec.Value(shader.UniformHue)
	assert.Equal(t, []float32{90}, v)
	v, _ = rec.Value(shader.UniformRGBMultiplierB)
	assert.Equal(t, []float32{1.2}, v)
	assert.Equal(t, 1, rec.Count("DrawTriangleStrip"))
	assert.Equal(t, 1, rec.Count("ReadPixels"))

	_, err = r.RenderFrame()
	require.NoError(t, err)
	v, _ = rec.Value(shader.UniformFrame)
	assert.Equal(t, []float32{2}, v)
}

func TestUnresolvedUniformsAreSkipped(t *testing.T) {
	rec := gputest.NewRecorder(shader.UniformTime)
	r := New(rec, params.NewStore(nil), WithClock(zeroClock))
	require.NoError(t, r.Init(8, 8))

	ok, err := r.RenderFrame()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, rec.Count("Uniform1f"))
}

func TestParametersReplacedBetweenFrames(t *testing.T) {
	rec := gputest.NewRecorder(shader.UniformHue, shader.UniformScale)
	store := params.NewStore(params.Overrides{"scale": 3})
	r := New(rec, store, WithClock(zeroClock))
	require.NoError(t, r.Init(4, 4))

	_, err := r.RenderFrame()
	require.NoError(t, err)
	store.Reinitialize(params.Overrides{"hue": 10})
	_, err = r.RenderFrame()
	require.NoError(t, err)

	v, _ := rec.Value(shader.UniformHue)
	assert.Equal(t, []float32{10}, v)
	v, _ = rec.Value(shader.UniformScale)
	assert.Equal(t, []float32{8}, v)
}

func TestInitCompileFailureIsFatal(t *testing.T) {
	rec := gputest.NewRecorder()
	rec.FailCompile = map[gpu.Stage]string{gpu.FragmentStage: "0:12: syntax error"}
	r := New(rec, params.NewStore(nil))

	err := r.Init(100, 100)
	var ce *program.CompileError
	require.ErrorAs(t, err, &ce)
	assert.Zero(t, rec.Count("LinkProgram"))
	assert.Equal(t, Uninitialized, r.State())

	_, err = r.RenderFrame()
	assert.ErrorIs(t, err, ErrNotRunning)
	assert.ErrorIs(t, r.Run(context.Background(), &fakeHost{}), ErrNotRunning)
}

func TestInitWithoutContext(t *testing.T) {
	rec := gputest.NewRecorder()
	rec.FailTarget = errors.New("no render targets")
	r := New(rec, params.NewStore(nil))

	require.ErrorIs(t, r.Init(100, 100), gpu.ErrContextUnavailable)
	assert.Zero(t, rec.Count("CompileShader"))
}

func TestInitTwice(t *testing.T) {
	r := New(gputest.NewRecorder(), params.NewStore(nil))
	require.NoError(t, r.Init(1, 1))
	assert.ErrorIs(t, r.Init(1, 1), ErrAlreadyInitialized)
}

func TestExistingSurfacesAreReused(t *testing.T) {
	reg := surface.NewRegistry()
	vis := surface.NewVisible("bg", 1, 1)
	reg.AttachVisible(vis)

	r := New(software.New(), params.NewStore(nil), WithRegistry(reg), WithSurfaceIDs("off", "bg"), WithClock(zeroClock))
	require.NoError(t, r.Init(10, 6))
	assert.Same(t, vis, r.Visible())
	assert.Equal(t, 10, vis.Width())
	_, ok := reg.Offscreen("off")
	assert.True(t, ok)
}

func TestResizeAppliesToNextFrame(t *testing.T) {
	dev := software.New()
	r := New(dev, params.NewStore(nil), WithClock(zeroClock))
	require.NoError(t, r.Init(100, 100))
	_, err := r.RenderFrame()
	require.NoError(t, err)

	r.Resize(50, 200)
	ok, err := r.RenderFrame()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 50, r.Visible().Width())
	assert.Equal(t, 200, r.Visible().Height())
	assert.Equal(t, Stats{Frames: 2}, r.Stats())
}

func TestRunUntilStopped(t *testing.T) {
	r := New(gputest.NewRecorder(), params.NewStore(nil), WithClock(zeroClock))
	require.NoError(t, r.Init(20, 20))

	host := &fakeHost{width: 20, height: 20}
	host.endFrame = func(n int) {
		if n == 2 {
			host.onResize(40, 10)
		}
		if n == 3 {
			r.Stop()
		}
	}
	require.NoError(t, r.Run(context.Background(), host))
	assert.Equal(t, 3, host.frames)
	assert.Equal(t, int64(3), r.Stats().Frames)
	assert.Equal(t, 40, r.Visible().Width())
	assert.Equal(t, 10, r.Visible().Height())
}

func TestStopBeforeRun(t *testing.T) {
	r := New(gputest.NewRecorder(), params.NewStore(nil), WithClock(zeroClock), WithFrameLimit(2))
	require.NoError(t, r.Init(4, 4))

	r.Stop()
	host := &fakeHost{}
	require.NoError(t, r.Run(context.Background(), host))
	assert.Equal(t, 0, host.frames)
	assert.Equal(t, int64(0), r.Stats().Frames)

	// The request is consumed, so the next run draws.
	require.NoError(t, r.Run(context.Background(), host))
	assert.Equal(t, 2, host.frames)
}

func TestRunEndsWhenHostCloses(t *testing.T) {
	r := New(gputest.NewRecorder(), params.NewStore(nil), WithClock(zeroClock))
	require.NoError(t, r.Init(4, 4))

	host := &fakeHost{closeAfter: 5}
	require.NoError(t, r.Run(context.Background(), host))
	assert.Equal(t, 5, host.frames)
}

func TestRunFrameLimitAndCancel(t *testing.T) {
	r := New(gputest.NewRecorder(), params.NewStore(nil), WithClock(zeroClock), WithFrameLimit(4))
	require.NoError(t, r.Init(4, 4))
	require.NoError(t, r.Run(context.Background(), &fakeHost{}))
	assert.Equal(t, int64(4), r.Stats().Frames)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, r.Run(ctx, &fakeHost{}))
	assert.Equal(t, int64(4), r.Stats().Frames)
}

func TestShutdownReleasesResources(t *testing.T) {
	rec := gputest.NewRecorder()
	r := New(rec, params.NewStore(nil))
	require.NoError(t, r.Init(4, 4))
	r.Shutdown()
	assert.Equal(t, 1, rec.Count("DeleteProgram"))
	assert.Equal(t, 1, rec.Count("DeleteBuffer"))
	assert.Equal(t, Uninitialized, r.State())
}
