package glfwcontext

import (
	"fmt"
	"runtime"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/richinsley/gogradient/gpu"
	"github.com/richinsley/gogradient/gpu/gldevice"
	"github.com/richinsley/gogradient/graphics"
	"github.com/richinsley/gogradient/logging"
	options "github.com/richinsley/gogradient/options"
	"github.com/richinsley/gogradient/surface"
)

// Context is a GLFW window hosting the gradient. It presents the visible
// surface every frame and forwards framebuffer resizes.
type Context struct {
	window    *glfw.Window
	presenter *presenter
	onResize  func(width, height int)
	// Opacity overrides the visible surface opacity when non-negative.
	opacity float32
}

// New creates a window with a 4.1 core context and makes it current.
func New(opts *options.Options) (*Context, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(*opts.Width, *opts.Height, *opts.Title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gpu.ErrContextUnavailable, err)
	}
	win.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err := gldevice.Init(); err != nil {
		win.Destroy()
		return nil, err
	}
	p, err := newPresenter()
	if err != nil {
		win.Destroy()
		return nil, err
	}

	c := &Context{window: win, presenter: p, opacity: float32(*opts.Opacity)}
	win.SetFramebufferSizeCallback(c.framebufferSizeCallback)
	win.SetKeyCallback(c.keyCallback)
	return c, nil
}

func (c *Context) framebufferSizeCallback(_ *glfw.Window, width, height int) {
	if c.onResize != nil && width > 0 && height > 0 {
		c.onResize(width, height)
	}
}

func (c *Context) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
	}
}

// OnResize replaces the framebuffer resize callback.
func (c *Context) OnResize(fn func(width, height int)) { c.onResize = fn }

// MakeCurrent makes the context current for the calling goroutine.
func (c *Context) MakeCurrent() {
	c.window.MakeContextCurrent()
}

// Shutdown releases the presenter and destroys the window.
func (c *Context) Shutdown() {
	c.presenter.release()
	c.window.Destroy()
}

func (c *Context) ShouldClose() bool {
	return c.window.ShouldClose()
}

// EndFrame draws vis into the window, swaps and polls events.
func (c *Context) EndFrame(vis *surface.Visible) {
	fbWidth, fbHeight := c.GetFramebufferSize()
	style := vis.Style
	if c.opacity >= 0 {
		style.Opacity = c.opacity
	}
	c.presenter.draw(vis, style, fbWidth, fbHeight)
	c.window.SwapBuffers()
	glfw.PollEvents()
}

func (c *Context) GetFramebufferSize() (int, int) {
	return c.window.GetFramebufferSize()
}

func (c *Context) Time() float64 {
	return glfw.GetTime()
}

// InitGraphics initializes GLFW. Must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("%w: %v", gpu.ErrContextUnavailable, err)
	}
	logging.Logger().Info("GLFW initialized")
	return nil
}

// TerminateGraphics shuts GLFW down. Must be called from the main thread.
func TerminateGraphics() {
	glfw.Terminate()
	logging.Logger().Info("GLFW terminated")
}

var _ graphics.Context = (*Context)(nil)
