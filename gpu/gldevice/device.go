// Package gldevice implements gpu.Device on desktop OpenGL 4.1 core. ESSL
// sources are translated to GLSL 4.10 before compilation, and uniform and
// attribute lookups go through the translated names.
package gldevice

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/gogradient/gpu"
	"github.com/richinsley/gogradient/logging"
	"github.com/richinsley/gogradient/translator"
)

var (
	glInitOnce sync.Once
	glInitErr  error
)

// Init loads the GL entry points for the current context. It runs once per
// process; later calls return the first result.
func Init() error {
	glInitOnce.Do(func() {
		glInitErr = gl.Init()
		if glInitErr == nil {
			logging.Logger().Info("OpenGL initialized", "version", gl.GoStr(gl.GetString(gl.VERSION)))
		}
	})
	if glInitErr != nil {
		return fmt.Errorf("%w: %v", gpu.ErrContextUnavailable, glInitErr)
	}
	return nil
}

type target struct {
	fbo, texture  uint32
	width, height int
}

// Device draws through the GL context current on the calling thread.
type Device struct {
	vao     uint32
	names   map[uint32]map[string]string // shader or program -> source name -> GLSL name
	targets map[uint32]*target
	// nextTarget numbers targets independently of FBO names so 0 stays the
	// default framebuffer.
	nextTarget uint32
	// direct compiles sources untouched.
	direct bool

	warnOnce sync.Once
}

// Option configures a Device.
type Option func(*Device)

// Direct makes the device compile sources as given, for programs already
// written in desktop GLSL.
func Direct() Option {
	return func(d *Device) { d.direct = true }
}

// New returns a device for the current context. The context must already be
// current on the calling thread.
func New(opts ...Option) (*Device, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	d := &Device{
		names:   make(map[uint32]map[string]string),
		targets: make(map[uint32]*target),
	}
	for _, o := range opts {
		o(d)
	}
	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)
	return d, nil
}

// Release deletes the vertex array and every render target.
func (d *Device) Release() {
	for id := range d.targets {
		d.DeleteRenderTarget(id)
	}
	gl.DeleteVertexArrays(1, &d.vao)
}

// desktop translates an ESSL stage. Without a translator runtime the source
// is compiled as is under a desktop version line and names map to
// themselves.
func (d *Device) desktop(stage gpu.Stage, source string) (string, map[string]string, error) {
	if d.direct {
		return source, nil, nil
	}
	if _, err := translator.Get(); err != nil {
		d.warnOnce.Do(func() {
			logging.Logger().Warn("shader translator unavailable, compiling sources directly", "error", err)
		})
		return strings.Replace(source, "#version 300 es", "#version 410 core", 1), nil, nil
	}
	res, err := translator.Translate(source, stage, false)
	if err != nil {
		return "", nil, err
	}
	return res.Code, res.Names, nil
}

func (d *Device) CompileShader(stage gpu.Stage, source string) (uint32, string, bool) {
	shaderType := uint32(gl.VERTEX_SHADER)
	if stage == gpu.FragmentStage {
		shaderType = gl.FRAGMENT_SHADER
	}
	shader := gl.CreateShader(shaderType)

	code, names, err := d.desktop(stage, source)
	if err != nil {
		return shader, err.Error(), false
	}
	d.names[shader] = names

	csources, free := gl.Strs(code + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		return shader, strings.TrimRight(logText, "\x00"), false
	}
	return shader, "", true
}

func (d *Device) DeleteShader(shader uint32) {
	delete(d.names, shader)
	gl.DeleteShader(shader)
}

func (d *Device) LinkProgram(vertex, fragment uint32) (uint32, string, bool) {
	program := gl.CreateProgram()
	gl.AttachShader(program, vertex)
	gl.AttachShader(program, fragment)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(logText))
		return program, strings.TrimRight(logText, "\x00"), false
	}

	vn, fn := d.names[vertex], d.names[fragment]
	if vn != nil || fn != nil {
		merged := make(map[string]string, len(vn)+len(fn))
		for k, v := range vn {
			merged[k] = v
		}
		for k, v := range fn {
			merged[k] = v
		}
		d.names[program] = merged
	}
	gl.DetachShader(program, vertex)
	gl.DetachShader(program, fragment)
	return program, "", true
}

func (d *Device) DeleteProgram(program uint32) {
	delete(d.names, program)
	gl.DeleteProgram(program)
}

func (d *Device) UseProgram(program uint32) { gl.UseProgram(program) }

// glslName returns the translated identifier, or false when the translator
// dropped it.
func (d *Device) glslName(program uint32, name string) (string, bool) {
	names, ok := d.names[program]
	if !ok {
		return name, true
	}
	mapped, ok := names[name]
	return mapped, ok
}

func (d *Device) UniformLocation(program uint32, name string) int32 {
	mapped, ok := d.glslName(program, name)
	if !ok {
		return -1
	}
	return gl.GetUniformLocation(program, gl.Str(mapped+"\x00"))
}

func (d *Device) AttribLocation(program uint32, name string) int32 {
	mapped, ok := d.glslName(program, name)
	if !ok {
		return -1
	}
	return gl.GetAttribLocation(program, gl.Str(mapped+"\x00"))
}

func (d *Device) Uniform1f(loc int32, v float32)          { gl.Uniform1f(loc, v) }
func (d *Device) Uniform1i(loc int32, v int32)            { gl.Uniform1i(loc, v) }
func (d *Device) Uniform2f(loc int32, x, y float32)       { gl.Uniform2f(loc, x, y) }
func (d *Device) Uniform4f(loc int32, x, y, z, w float32) { gl.Uniform4f(loc, x, y, z, w) }

func (d *Device) CreateVertexBuffer(data []float32) uint32 {
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return vbo
}

func (d *Device) DeleteBuffer(buffer uint32) { gl.DeleteBuffers(1, &buffer) }

func (d *Device) BindVertexBuffer(buffer uint32) {
	gl.BindVertexArray(d.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, buffer)
}

func (d *Device) VertexAttrib(location int32, size int32) {
	gl.BindVertexArray(d.vao)
	gl.EnableVertexAttribArray(uint32(location))
	gl.VertexAttribPointer(uint32(location), size, gl.FLOAT, false, size*4, gl.PtrOffset(0))
}

func (d *Device) DrawTriangleStrip(first, count int32) {
	gl.BindVertexArray(d.vao)
	gl.DrawArrays(gl.TRIANGLE_STRIP, first, count)
}

func (d *Device) CreateRenderTarget(width, height int) (uint32, error) {
	t := &target{width: width, height: height}
	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.GenTextures(1, &t.texture)
	gl.BindTexture(gl.TEXTURE_2D, t.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.texture, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		gl.DeleteFramebuffers(1, &t.fbo)
		gl.DeleteTextures(1, &t.texture)
		return 0, fmt.Errorf("offscreen fbo is not complete: status 0x%x", status)
	}
	d.nextTarget++
	d.targets[d.nextTarget] = t
	return d.nextTarget, nil
}

func (d *Device) ResizeRenderTarget(id uint32, width, height int) {
	t, ok := d.targets[id]
	if !ok {
		return
	}
	t.width, t.height = width, height
	gl.BindTexture(gl.TEXTURE_2D, t.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func (d *Device) DeleteRenderTarget(id uint32) {
	t, ok := d.targets[id]
	if !ok {
		return
	}
	gl.DeleteFramebuffers(1, &t.fbo)
	gl.DeleteTextures(1, &t.texture)
	delete(d.targets, id)
}

func (d *Device) BindRenderTarget(id uint32) {
	if t, ok := d.targets[id]; ok {
		gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
		return
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func (d *Device) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

func (d *Device) ReadPixels(x, y, width, height int, dst []byte) {
	if width <= 0 || height <= 0 || len(dst) < width*height*4 {
		return
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(int32(x), int32(y), int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(dst))
}

var _ gpu.Device = (*Device)(nil)
