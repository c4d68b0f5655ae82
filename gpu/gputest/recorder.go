// Package gputest provides a call-recording gpu.Device for tests.
package gputest

import (
	"fmt"

	"github.com/richinsley/gogradient/gpu"
)

// Call is one recorded device call.
type Call struct {
	Name string
	Args []any
}

// Target is a render target known to the recorder.
type Target struct {
	Width, Height int
}

// Recorder implements gpu.Device without a GPU. Every call is appended to
// Calls. Compile and link results are controlled by the Fail fields.
type Recorder struct {
	Calls []Call

	// FailCompile maps a stage to the diagnostic its compilation returns.
	FailCompile map[gpu.Stage]string
	// FailLink, when set, is the diagnostic every link returns.
	FailLink string
	// Uniforms lists the names that resolve to a location. Any other name
	// resolves to -1.
	Uniforms []string
	// Attribs lists resolvable attribute names.
	Attribs []string
	// FailTarget, when set, is returned by CreateRenderTarget.
	FailTarget error

	Targets map[uint32]*Target
	Bound   uint32
	Program uint32
	View    [4]int32
	Values  map[int32][]float32

	next uint32
}

// NewRecorder returns a recorder that resolves the given uniform names and
// the "aPosition" attribute.
func NewRecorder(uniforms ...string) *Recorder {
	return &Recorder{
		Uniforms: uniforms,
		Attribs:  []string{"aPosition"},
		Targets:  make(map[uint32]*Target),
		Values:   make(map[int32][]float32),
	}
}

func (r *Recorder) record(name string, args ...any) {
	r.Calls = append(r.Calls, Call{Name: name, Args: args})
}

func (r *Recorder) name() uint32 {
	r.next++
	return r.next
}

// Count returns how many calls named name were recorded.
func (r *Recorder) Count(name string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Names returns the recorded call names in order.
func (r *Recorder) Names() []string {
	out := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		out[i] = c.Name
	}
	return out
}

func (r *Recorder) CompileShader(stage gpu.Stage, source string) (uint32, string, bool) {
	id := r.name()
	r.record("CompileShader", stage, id)
	if msg, ok := r.FailCompile[stage]; ok {
		return id, msg, false
	}
	return id, "", true
}

func (r *Recorder) DeleteShader(shader uint32) { r.record("DeleteShader", shader) }

func (r *Recorder) LinkProgram(vertex, fragment uint32) (uint32, string, bool) {
	id := r.name()
	r.record("LinkProgram", vertex, fragment, id)
	if r.FailLink != "" {
		return id, r.FailLink, false
	}
	return id, "", true
}

func (r *Recorder) DeleteProgram(program uint32) { r.record("DeleteProgram", program) }

func (r *Recorder) UseProgram(program uint32) {
	r.Program = program
	r.record("UseProgram", program)
}

func (r *Recorder) UniformLocation(program uint32, name string) int32 {
	r.record("UniformLocation", program, name)
	for i, n := range r.Uniforms {
		if n == name {
			return int32(i)
		}
	}
	return -1
}

func (r *Recorder) AttribLocation(program uint32, name string) int32 {
	r.record("AttribLocation", program, name)
	for i, n := range r.Attribs {
		if n == name {
			return int32(i)
		}
	}
	return -1
}

// Value returns the last value written to the named uniform.
func (r *Recorder) Value(name string) ([]float32, bool) {
	for i, n := range r.Uniforms {
		if n == name {
			v, ok := r.Values[int32(i)]
			return v, ok
		}
	}
	return nil, false
}

func (r *Recorder) set(name string, loc int32, v ...float32) {
	if loc < 0 {
		panic(fmt.Sprintf("%s called with location -1", name))
	}
	r.Values[loc] = v
	r.record(name, loc, v)
}

func (r *Recorder) Uniform1f(loc int32, v float32)          { r.set("Uniform1f", loc, v) }
func (r *Recorder) Uniform1i(loc int32, v int32)            { r.set("Uniform1i", loc, float32(v)) }
func (r *Recorder) Uniform2f(loc int32, x, y float32)       { r.set("Uniform2f", loc, x, y) }
func (r *Recorder) Uniform4f(loc int32, x, y, z, w float32) { r.set("Uniform4f", loc, x, y, z, w) }

func (r *Recorder) CreateVertexBuffer(data []float32) uint32 {
	id := r.name()
	r.record("CreateVertexBuffer", id, len(data))
	return id
}

func (r *Recorder) DeleteBuffer(buffer uint32)     { r.record("DeleteBuffer", buffer) }
func (r *Recorder) BindVertexBuffer(buffer uint32) { r.record("BindVertexBuffer", buffer) }

func (r *Recorder) VertexAttrib(loc int32, size int32) { r.record("VertexAttrib", loc, size) }

func (r *Recorder) DrawTriangleStrip(first, count int32) {
	r.record("DrawTriangleStrip", first, count)
}

func (r *Recorder) CreateRenderTarget(width, height int) (uint32, error) {
	if r.FailTarget != nil {
		r.record("CreateRenderTarget", uint32(0), width, height)
		return 0, r.FailTarget
	}
	id := r.name()
	r.Targets[id] = &Target{Width: width, Height: height}
	r.record("CreateRenderTarget", id, width, height)
	return id, nil
}

func (r *Recorder) ResizeRenderTarget(target uint32, width, height int) {
	if t, ok := r.Targets[target]; ok {
		t.Width, t.Height = width, height
	}
	r.record("ResizeRenderTarget", target, width, height)
}

func (r *Recorder) DeleteRenderTarget(target uint32) {
	delete(r.Targets, target)
	r.record("DeleteRenderTarget", target)
}

func (r *Recorder) BindRenderTarget(target uint32) {
	r.Bound = target
	r.record("BindRenderTarget", target)
}

func (r *Recorder) Viewport(x, y, width, height int32) {
	r.View = [4]int32{x, y, width, height}
	r.record("Viewport", x, y, width, height)
}

// ReadPixels fills every byte of row y with byte(y), so row order is visible
// to the caller.
func (r *Recorder) ReadPixels(x, y, width, height int, dst []byte) {
	r.record("ReadPixels", x, y, width, height)
	stride := width * 4
	for row := 0; row < height; row++ {
		for i := 0; i < stride && row*stride+i < len(dst); i++ {
			dst[row*stride+i] = byte(row)
		}
	}
}

var _ gpu.Device = (*Recorder)(nil)
