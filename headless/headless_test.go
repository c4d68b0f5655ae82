package headless

import (
	"context"
	"testing"

	"github.com/richinsley/gogradient/gpu/software"
	"github.com/richinsley/gogradient/params"
	"github.com/richinsley/gogradient/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResizeDeliveredAtEndFrame(t *testing.T) {
	h := NewHeadless(10, 10)
	var got [2]int
	h.OnResize(func(w, hh int) { got = [2]int{w, hh} })

	h.Resize(30, 20)
	assert.Equal(t, [2]int{}, got)
	h.EndFrame(nil)
	assert.Equal(t, [2]int{30, 20}, got)
	w, hh := h.GetFramebufferSize()
	assert.Equal(t, 30, w)
	assert.Equal(t, 20, hh)
	assert.Equal(t, int64(1), h.Frames())
}

func TestShutdownCloses(t *testing.T) {
	h := NewHeadless(1, 1)
	assert.False(t, h.ShouldClose())
	h.Shutdown()
	assert.True(t, h.ShouldClose())
}

func TestRunsSoftwareRenderer(t *testing.T) {
	h := NewHeadless(16, 9)
	r := renderer.New(software.New(), params.NewStore(nil),
		renderer.WithClock(h.Time), renderer.WithFrameLimit(3))
	w, hh := h.GetFramebufferSize()
	require.NoError(t, r.Init(w, hh))

	h.Resize(8, 8)
	require.NoError(t, r.Run(context.Background(), h))
	assert.Equal(t, int64(3), h.Frames())
	assert.Equal(t, renderer.Stats{Frames: 3}, r.Stats())
	assert.Equal(t, 8, r.Visible().Width())
}
