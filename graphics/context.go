// Package graphics defines the host a renderer draws for.
package graphics

import "github.com/richinsley/gogradient/surface"

// Context is a host window or page with a rendering context.
type Context interface {
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	// EndFrame presents vis and processes pending host events. Resize
	// callbacks run from inside EndFrame, between frames.
	EndFrame(vis *surface.Visible)
	GetFramebufferSize() (int, int)
	// Time returns seconds since the host started.
	Time() float64
	// OnResize replaces the viewport resize callback.
	OnResize(fn func(width, height int))
}
