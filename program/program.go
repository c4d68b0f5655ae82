// Package program compiles and links the gradient shader program and binds
// its uniforms and vertex attributes by name.
package program

import (
	"errors"
	"fmt"

	"github.com/richinsley/gogradient/gpu"
	"github.com/richinsley/gogradient/logging"
)

// CompileError carries the compiler diagnostic of a failed stage.
type CompileError struct {
	Stage gpu.Stage
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile %s shader: %s", e.Stage, e.Log)
}

// LinkError carries the linker diagnostic.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("failed to link program: %s", e.Log)
}

// Handle is a compiled and linked program. It caches resolved locations; a
// location of -1 means the name is not part of the linked program.
type Handle struct {
	dev      gpu.Device
	id       uint32
	uniforms map[string]int32
	attribs  map[string]int32
}

// Compile compiles both stages and links them. When either stage fails, both
// shader objects are released and no link is attempted.
func Compile(dev gpu.Device, vertexSource, fragmentSource string) (*Handle, error) {
	vs, vsLog, vsOK := dev.CompileShader(gpu.VertexStage, vertexSource)
	fs, fsLog, fsOK := dev.CompileShader(gpu.FragmentStage, fragmentSource)
	if !vsOK || !fsOK {
		dev.DeleteShader(vs)
		dev.DeleteShader(fs)
		var errs []error
		if !vsOK {
			errs = append(errs, &CompileError{Stage: gpu.VertexStage, Log: vsLog})
		}
		if !fsOK {
			errs = append(errs, &CompileError{Stage: gpu.FragmentStage, Log: fsLog})
		}
		return nil, errors.Join(errs...)
	}

	prog, linkLog, ok := dev.LinkProgram(vs, fs)
	dev.DeleteShader(vs)
	dev.DeleteShader(fs)
	if !ok {
		dev.DeleteProgram(prog)
		return nil, &LinkError{Log: linkLog}
	}

	logging.Logger().Info("shader program linked", "program", prog)
	return &Handle{
		dev:      dev,
		id:       prog,
		uniforms: make(map[string]int32),
		attribs:  make(map[string]int32),
	}, nil
}

// ID returns the device program name.
func (h *Handle) ID() uint32 { return h.id }

// Use makes the program current.
func (h *Handle) Use() {
	h.dev.UseProgram(h.id)
}

// UniformLocation resolves and caches the location of name.
func (h *Handle) UniformLocation(name string) int32 {
	if loc, ok := h.uniforms[name]; ok {
		return loc
	}
	loc := h.dev.UniformLocation(h.id, name)
	h.uniforms[name] = loc
	return loc
}

// BindUniform sets a uniform on the current program if name resolves to a
// location. Supported values: float32, float64, int32, int, [2]float32 and
// [4]float32. It reports whether a value was written; unresolved names are
// skipped since compilers drop unused uniforms.
func (h *Handle) BindUniform(name string, value any) bool {
	loc := h.UniformLocation(name)
	if loc < 0 {
		return false
	}
	switch v := value.(type) {
	case float32:
		h.dev.Uniform1f(loc, v)
	case float64:
		h.dev.Uniform1f(loc, float32(v))
	case int32:
		h.dev.Uniform1i(loc, v)
	case int:
		h.dev.Uniform1i(loc, int32(v))
	case [2]float32:
		h.dev.Uniform2f(loc, v[0], v[1])
	case [4]float32:
		h.dev.Uniform4f(loc, v[0], v[1], v[2], v[3])
	default:
		logging.Logger().Debug("unsupported uniform type", "name", name, "type", fmt.Sprintf("%T", value))
		return false
	}
	return true
}

// BindAttribute binds buffer and streams size floats per vertex into the
// attribute called name. It reports false when the attribute is not present.
func (h *Handle) BindAttribute(name string, buffer uint32, size int32) bool {
	loc, ok := h.attribs[name]
	if !ok {
		loc = h.dev.AttribLocation(h.id, name)
		h.attribs[name] = loc
	}
	h.dev.BindVertexBuffer(buffer)
	if loc < 0 {
		return false
	}
	h.dev.VertexAttrib(loc, size)
	return true
}

// Release deletes the program.
func (h *Handle) Release() {
	h.dev.DeleteProgram(h.id)
	h.id = 0
}
