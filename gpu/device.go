// Package gpu defines the narrow, GL-shaped device surface the gradient
// engine draws through. Handles are opaque uint32 names and uniform or
// attribute locations use -1 for "not present", as in OpenGL.
package gpu

import "errors"

// ErrContextUnavailable is returned when no rendering context can be
// obtained. The engine does not start and does not retry.
var ErrContextUnavailable = errors.New("gpu context unavailable")

// Stage identifies a shader stage.
type Stage int

const (
	VertexStage Stage = iota
	FragmentStage
)

func (s Stage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	default:
		return "unknown"
	}
}

// Device is a single rendering context. All methods must be called from the
// goroutine that owns the context.
type Device interface {
	// CompileShader returns a shader name even when compilation fails so the
	// caller can release it. infoLog carries the compiler diagnostic.
	CompileShader(stage Stage, source string) (shader uint32, infoLog string, ok bool)
	DeleteShader(shader uint32)
	// LinkProgram returns a program name even when linking fails.
	LinkProgram(vertex, fragment uint32) (program uint32, infoLog string, ok bool)
	DeleteProgram(program uint32)
	UseProgram(program uint32)

	UniformLocation(program uint32, name string) int32
	AttribLocation(program uint32, name string) int32
	Uniform1f(location int32, v float32)
	Uniform1i(location int32, v int32)
	Uniform2f(location int32, x, y float32)
	Uniform4f(location int32, x, y, z, w float32)

	// CreateVertexBuffer uploads static vertex data once.
	CreateVertexBuffer(data []float32) uint32
	DeleteBuffer(buffer uint32)
	BindVertexBuffer(buffer uint32)
	// VertexAttrib enables location and streams size floats per vertex from
	// the bound buffer.
	VertexAttrib(location int32, size int32)
	DrawTriangleStrip(first, count int32)

	// Render targets are RGBA8 color buffers. Target 0 is the context's
	// default framebuffer.
	CreateRenderTarget(width, height int) (uint32, error)
	ResizeRenderTarget(target uint32, width, height int)
	DeleteRenderTarget(target uint32)
	BindRenderTarget(target uint32)
	Viewport(x, y, width, height int32)
	// ReadPixels copies RGBA8 pixels of the bound target into dst, bottom
	// row first. dst must hold width*height*4 bytes.
	ReadPixels(x, y, width, height int, dst []byte)
}
