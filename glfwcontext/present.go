package glfwcontext

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/gogradient/gpu/gldevice"
	"github.com/richinsley/gogradient/program"
	"github.com/richinsley/gogradient/shader"
	"github.com/richinsley/gogradient/surface"
)

// Names used by the present program.
const (
	presentAttrib  = "in_vert"
	presentTexture = "u_texture"
	presentOpacity = "u_opacity"
)

// presenter uploads the visible surface into a texture and draws it over the
// window's default framebuffer.
type presenter struct {
	dev     *gldevice.Device
	program *program.Handle
	quad    uint32
	texture uint32
	width   int
	height  int
}

func newPresenter() (*presenter, error) {
	dev, err := gldevice.New(gldevice.Direct())
	if err != nil {
		return nil, err
	}
	vs, fs := shader.PresentSources()
	prog, err := program.Compile(dev, vs, fs)
	if err != nil {
		dev.Release()
		return nil, fmt.Errorf("failed to create present program: %w", err)
	}
	p := &presenter{
		dev:     dev,
		program: prog,
		quad:    dev.CreateVertexBuffer(shader.QuadVertices),
	}

	gl.GenTextures(1, &p.texture)
	gl.BindTexture(gl.TEXTURE_2D, p.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return p, nil
}

// upload copies the surface pixels into the texture, reallocating it on a
// size change.
func (p *presenter) upload(vis *surface.Visible) {
	w, h := vis.Width(), vis.Height()
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, p.texture)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	if w != p.width || h != p.height {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(vis.Image.Pix))
		p.width, p.height = w, h
		return
	}
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(vis.Image.Pix))
}

func (p *presenter) draw(vis *surface.Visible, style surface.Style, fbWidth, fbHeight int) {
	p.dev.BindRenderTarget(0)
	p.dev.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	if style.Hidden || vis.Width() == 0 || vis.Height() == 0 {
		return
	}

	p.upload(vis)
	p.program.Use()
	p.program.BindUniform(presentTexture, int32(0))
	p.program.BindUniform(presentOpacity, style.Opacity)
	p.program.BindAttribute(presentAttrib, p.quad, 2)
	p.dev.DrawTriangleStrip(0, int32(len(shader.QuadVertices)/2))
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func (p *presenter) release() {
	p.program.Release()
	p.dev.DeleteBuffer(p.quad)
	gl.DeleteTextures(1, &p.texture)
	p.dev.Release()
}
