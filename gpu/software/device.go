// Package software implements gpu.Device on the CPU. It only runs the
// built-in field program: linking any other pair of sources fails. Pixels
// are shaded with the field package in parallel row bands.
package software

import (
	"fmt"
	"runtime"

	"github.com/richinsley/gogradient/field"
	"github.com/richinsley/gogradient/gpu"
	"github.com/richinsley/gogradient/logging"
	"github.com/richinsley/gogradient/params"
	"github.com/richinsley/gogradient/shader"
	"golang.org/x/sync/errgroup"
)

// Validator checks a shader source before it is accepted.
type Validator func(source string, stage gpu.Stage) error

type target struct {
	width, height int
	pix           []byte // RGBA8, row 0 at the bottom
}

type compiled struct {
	stage  gpu.Stage
	source string
}

// Device is a CPU rendering context.
type Device struct {
	validate Validator
	workers  int

	next     uint32
	shaders  map[uint32]compiled
	programs map[uint32]bool
	buffers  map[uint32][]float32
	targets  map[uint32]*target

	program  uint32
	buffer   uint32
	attribOn bool
	bound    uint32
	view     [4]int32

	names  []string
	values [][2]float32

	draws int
}

// Option configures a Device.
type Option func(*Device)

// WithValidator runs v on every compiled source. A validation error becomes
// the compile info log.
func WithValidator(v Validator) Option {
	return func(d *Device) { d.validate = v }
}

// WithWorkers bounds the number of goroutines shading a draw.
func WithWorkers(n int) Option {
	return func(d *Device) {
		if n > 0 {
			d.workers = n
		}
	}
}

// New returns a device with an empty default framebuffer.
func New(opts ...Option) *Device {
	d := &Device{
		workers:  runtime.GOMAXPROCS(0),
		shaders:  make(map[uint32]compiled),
		programs: make(map[uint32]bool),
		buffers:  make(map[uint32][]float32),
		targets:  map[uint32]*target{0: {}},
		names:    shader.ActiveUniforms(),
	}
	d.values = make([][2]float32, len(d.names))
	for _, o := range opts {
		o(d)
	}
	return d
}

func (d *Device) name() uint32 {
	d.next++
	return d.next
}

// Draws returns how many draw calls shaded at least one pixel.
func (d *Device) Draws() int { return d.draws }

func (d *Device) CompileShader(stage gpu.Stage, source string) (uint32, string, bool) {
	id := d.name()
	d.shaders[id] = compiled{stage: stage, source: source}
	if d.validate != nil {
		if err := d.validate(source, stage); err != nil {
			return id, err.Error(), false
		}
	}
	return id, "", true
}

func (d *Device) DeleteShader(id uint32) { delete(d.shaders, id) }

func (d *Device) LinkProgram(vertex, fragment uint32) (uint32, string, bool) {
	id := d.name()
	vs, vok := d.shaders[vertex]
	fs, fok := d.shaders[fragment]
	switch {
	case !vok || !fok:
		return id, "link: unknown shader", false
	case vs.stage != gpu.VertexStage || fs.stage != gpu.FragmentStage:
		return id, "link: stage mismatch", false
	case vs.source != shader.VertexSource() || fs.source != shader.FieldFragmentSource():
		return id, "link: the software device only runs the field program", false
	}
	d.programs[id] = true
	return id, "", true
}

func (d *Device) DeleteProgram(id uint32) {
	delete(d.programs, id)
	if d.program == id {
		d.program = 0
	}
}

func (d *Device) UseProgram(id uint32) { d.program = id }

func (d *Device) UniformLocation(program uint32, name string) int32 {
	if !d.programs[program] {
		return -1
	}
	for i, n := range d.names {
		if n == name {
			return int32(i)
		}
	}
	return -1
}

func (d *Device) AttribLocation(program uint32, name string) int32 {
	if d.programs[program] && name == shader.AttribPosition {
		return 0
	}
	return -1
}

func (d *Device) set(loc int32, x, y float32) {
	if loc < 0 || int(loc) >= len(d.values) {
		return
	}
	d.values[loc] = [2]float32{x, y}
}

func (d *Device) Uniform1f(loc int32, v float32)          { d.set(loc, v, 0) }
func (d *Device) Uniform1i(loc int32, v int32)            { d.set(loc, float32(v), 0) }
func (d *Device) Uniform2f(loc int32, x, y float32)       { d.set(loc, x, y) }
func (d *Device) Uniform4f(loc int32, x, y, _, _ float32) { d.set(loc, x, y) }

func (d *Device) CreateVertexBuffer(data []float32) uint32 {
	id := d.name()
	d.buffers[id] = append([]float32(nil), data...)
	return id
}

func (d *Device) DeleteBuffer(id uint32) {
	delete(d.buffers, id)
	if d.buffer == id {
		d.buffer = 0
	}
}

func (d *Device) BindVertexBuffer(id uint32) { d.buffer = id }

func (d *Device) VertexAttrib(loc int32, size int32) {
	d.attribOn = loc == 0 && size == 2 && d.buffer != 0
}

func (d *Device) CreateRenderTarget(width, height int) (uint32, error) {
	if width < 0 || height < 0 {
		return 0, fmt.Errorf("render target %dx%d: negative size", width, height)
	}
	id := d.name()
	d.targets[id] = &target{width: width, height: height, pix: make([]byte, width*height*4)}
	return id, nil
}

func (d *Device) ResizeRenderTarget(id uint32, width, height int) {
	t, ok := d.targets[id]
	if !ok || id == 0 {
		return
	}
	t.width, t.height = width, height
	t.pix = make([]byte, width*height*4)
}

func (d *Device) DeleteRenderTarget(id uint32) {
	if id == 0 {
		return
	}
	delete(d.targets, id)
	if d.bound == id {
		d.bound = 0
	}
}

func (d *Device) BindRenderTarget(id uint32) { d.bound = id }

func (d *Device) Viewport(x, y, width, height int32) {
	d.view = [4]int32{x, y, width, height}
}

// parameters rebuilds the parameter record from the uniform slots. Slots
// never written read as zero, like unset GL uniforms.
func (d *Device) parameters() (res field.Vec2, t float32, prm params.Parameters) {
	for i, name := range d.names {
		v := d.values[i]
		switch name {
		case shader.UniformResolution:
			res = field.Vec2{X: v[0], Y: v[1]}
		case shader.UniformTime:
			t = v[0]
		case shader.UniformScale:
			prm.Scale = v[0]
		case shader.UniformPhaseX:
			prm.PhaseX = v[0]
		case shader.UniformVelocity:
			prm.Velocity = v[0]
		case shader.UniformFieldDetail:
			prm.FieldDetail = v[0]
		case shader.UniformFieldTwist:
			prm.FieldTwist = v[0]
		case shader.UniformSecondarySpeed:
			prm.SecondarySpeed = v[0]
		case shader.UniformBrightness:
			prm.Brightness = v[0]
		case shader.UniformHue:
			prm.Hue = v[0]
		case shader.UniformSaturation:
			prm.Saturation = v[0]
		case shader.UniformContrast:
			prm.Contrast = v[0]
		case shader.UniformRGBMultiplierR:
			prm.RGBMultiplier[0] = v[0]
		case shader.UniformRGBMultiplierG:
			prm.RGBMultiplier[1] = v[0]
		case shader.UniformRGBMultiplierB:
			prm.RGBMultiplier[2] = v[0]
		}
	}
	return res, t, prm
}

// DrawTriangleStrip shades every pixel of the viewport clipped to the bound
// target. Only the full-viewport quad is supported, so first and count are
// checked for a complete strip and otherwise ignored.
func (d *Device) DrawTriangleStrip(first, count int32) {
	if !d.programs[d.program] || !d.attribOn || count < 4 {
		return
	}
	tgt := d.targets[d.bound]
	if tgt == nil {
		return
	}
	x0, y0 := max(int(d.view[0]), 0), max(int(d.view[1]), 0)
	x1 := min(int(d.view[0]+d.view[2]), tgt.width)
	y1 := min(int(d.view[1]+d.view[3]), tgt.height)
	if x0 >= x1 || y0 >= y1 {
		return
	}
	res, t, prm := d.parameters()

	rows := y1 - y0
	band := (rows + d.workers - 1) / d.workers
	var g errgroup.Group
	g.SetLimit(d.workers)
	for start := y0; start < y1; start += band {
		lo, hi := start, min(start+band, y1)
		g.Go(func() error {
			for y := lo; y < hi; y++ {
				row := tgt.pix[y*tgt.width*4:]
				for x := x0; x < x1; x++ {
					frag := field.Vec2{X: float32(x) + 0.5, Y: float32(y) + 0.5}
					c := field.ToRGBA8(field.Shade(frag, res, t, &prm))
					copy(row[x*4:x*4+4], c[:])
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	d.draws++
	logging.Logger().Debug("software draw", "target", d.bound, "width", x1-x0, "height", rows, "time", t)
}

func (d *Device) ReadPixels(x, y, width, height int, dst []byte) {
	tgt := d.targets[d.bound]
	if tgt == nil {
		return
	}
	for row := 0; row < height; row++ {
		sy := y + row
		if sy < 0 || sy >= tgt.height {
			continue
		}
		for col := 0; col < width; col++ {
			sx := x + col
			if sx < 0 || sx >= tgt.width {
				continue
			}
			so := (sy*tgt.width + sx) * 4
			do := (row*width + col) * 4
			copy(dst[do:do+4], tgt.pix[so:so+4])
		}
	}
}

var _ gpu.Device = (*Device)(nil)
