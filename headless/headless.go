// Package headless is a windowless host. Frames are rendered and copied to
// the visible surface but never presented, which pairs with the software
// device on machines without a display.
package headless

import (
	"sync"
	"time"

	"github.com/richinsley/gogradient/graphics"
	"github.com/richinsley/gogradient/logging"
	"github.com/richinsley/gogradient/surface"
)

// Headless is a fixed-size host with a wall clock.
type Headless struct {
	mu       sync.Mutex
	width    int
	height   int
	start    time.Time
	frames   int64
	closed   bool
	onResize func(width, height int)
	pending  *[2]int
}

// NewHeadless returns a host whose framebuffer is width x height.
func NewHeadless(width, height int) *Headless {
	return &Headless{width: width, height: height, start: time.Now()}
}

func (h *Headless) MakeCurrent() {}

// Shutdown makes ShouldClose report true.
func (h *Headless) Shutdown() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
}

func (h *Headless) ShouldClose() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Resize queues a framebuffer size change. It is delivered from the next
// EndFrame, like a window event. Safe to call from any goroutine.
func (h *Headless) Resize(width, height int) {
	h.mu.Lock()
	h.pending = &[2]int{width, height}
	h.mu.Unlock()
}

// EndFrame counts the frame and delivers a queued resize.
func (h *Headless) EndFrame(vis *surface.Visible) {
	h.mu.Lock()
	h.frames++
	pending, fn := h.pending, h.onResize
	h.pending = nil
	if pending != nil {
		h.width, h.height = pending[0], pending[1]
	}
	h.mu.Unlock()

	if pending != nil && fn != nil {
		logging.Logger().Debug("headless resize", "width", pending[0], "height", pending[1])
		fn(pending[0], pending[1])
	}
}

// Frames returns how many frames ended.
func (h *Headless) Frames() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frames
}

func (h *Headless) GetFramebufferSize() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width, h.height
}

func (h *Headless) Time() float64 {
	return time.Since(h.start).Seconds()
}

func (h *Headless) OnResize(fn func(width, height int)) {
	h.mu.Lock()
	h.onResize = fn
	h.mu.Unlock()
}

var _ graphics.Context = (*Headless)(nil)
