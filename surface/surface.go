// Package surface owns the two drawing surfaces of the engine: a GPU render
// target the field is drawn into and a CPU pixel buffer that receives the
// read-back frame for compositing.
package surface

import (
	"fmt"
	"image"
	"sync"

	"github.com/richinsley/gogradient/gpu"
	"github.com/richinsley/gogradient/logging"
)

// Size a freshly created surface has until the first resize.
const (
	DefaultWidth  = 300
	DefaultHeight = 150
)

// Style is the compositing style of a surface in its host.
type Style struct {
	Hidden        bool    // not laid out or presented
	Fixed         bool    // pinned to the full viewport
	ZIndex        int     // negative draws behind host content
	Opacity       float32 // 0..1
	PointerEvents bool
}

// OffscreenStyle is applied to a created offscreen surface.
func OffscreenStyle() Style {
	return Style{Hidden: true, Opacity: 1}
}

// VisibleStyle is applied to a created visible surface.
func VisibleStyle() Style {
	return Style{Fixed: true, ZIndex: -1, Opacity: 0.85}
}

// Offscreen is a GPU render target.
type Offscreen struct {
	ID     string
	Target uint32
	Width  int
	Height int
	Style  Style
}

// Visible is the 2D pixel surface presented by the host. Row 0 is the top.
type Visible struct {
	ID    string
	Image *image.RGBA
	Style Style
}

// NewVisible returns a visible surface of the given size.
func NewVisible(id string, width, height int) *Visible {
	return &Visible{ID: id, Image: image.NewRGBA(image.Rect(0, 0, width, height)), Style: VisibleStyle()}
}

// Width returns the pixel width.
func (v *Visible) Width() int { return v.Image.Rect.Dx() }

// Height returns the pixel height.
func (v *Visible) Height() int { return v.Image.Rect.Dy() }

// Resize changes the dimensions in place. The backing store is reused when
// it is large enough and cleared either way.
func (v *Visible) Resize(width, height int) {
	n := width * height * 4
	if cap(v.Image.Pix) >= n {
		v.Image.Pix = v.Image.Pix[:n]
		clear(v.Image.Pix)
	} else {
		v.Image.Pix = make([]byte, n)
	}
	v.Image.Stride = width * 4
	v.Image.Rect = image.Rect(0, 0, width, height)
}

// Registry is the host document: surfaces looked up and attached by id.
type Registry struct {
	mu        sync.Mutex
	offscreen map[string]*Offscreen
	visible   map[string]*Visible
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		offscreen: make(map[string]*Offscreen),
		visible:   make(map[string]*Visible),
	}
}

func (r *Registry) Offscreen(id string) (*Offscreen, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.offscreen[id]
	return s, ok
}

func (r *Registry) Visible(id string) (*Visible, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.visible[id]
	return s, ok
}

func (r *Registry) AttachOffscreen(s *Offscreen) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offscreen[s.ID] = s
}

func (r *Registry) AttachVisible(s *Visible) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visible[s.ID] = s
}

// Manager keeps the offscreen and visible surfaces the same size as the
// viewport.
type Manager struct {
	dev gpu.Device
	reg *Registry

	off *Offscreen
	vis *Visible
}

// NewManager returns a manager drawing through dev. A nil registry gets a
// private one.
func NewManager(dev gpu.Device, reg *Registry) *Manager {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Manager{dev: dev, reg: reg}
}

// EnsureSurfaces looks both surfaces up by id and creates and attaches the
// missing ones. An offscreen surface whose render target cannot be created
// fails with gpu.ErrContextUnavailable.
func (m *Manager) EnsureSurfaces(offscreenID, visibleID string) (*Offscreen, *Visible, error) {
	log := logging.Logger()
	off, ok := m.reg.Offscreen(offscreenID)
	if !ok {
		target, err := m.dev.CreateRenderTarget(DefaultWidth, DefaultHeight)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: offscreen surface %q: %v", gpu.ErrContextUnavailable, offscreenID, err)
		}
		off = &Offscreen{ID: offscreenID, Target: target, Width: DefaultWidth, Height: DefaultHeight, Style: OffscreenStyle()}
		m.reg.AttachOffscreen(off)
		log.Debug("created offscreen surface", "id", offscreenID, "target", target)
	}
	vis, ok := m.reg.Visible(visibleID)
	if !ok {
		vis = NewVisible(visibleID, DefaultWidth, DefaultHeight)
		m.reg.AttachVisible(vis)
		log.Debug("created visible surface", "id", visibleID)
	}
	m.off, m.vis = off, vis
	return off, vis, nil
}

// Offscreen returns the managed offscreen surface, nil before EnsureSurfaces.
func (m *Manager) Offscreen() *Offscreen { return m.off }

// Visible returns the managed visible surface, nil before EnsureSurfaces.
func (m *Manager) Visible() *Visible { return m.vis }

// Resize sets both surfaces to width x height and points the viewport at the
// whole surface. Repeating a resize with the same size redoes the work.
func (m *Manager) Resize(width, height int) {
	if m.off == nil || m.vis == nil {
		return
	}
	m.off.Width, m.off.Height = width, height
	m.dev.ResizeRenderTarget(m.off.Target, width, height)
	m.vis.Resize(width, height)
	m.dev.Viewport(0, 0, int32(width), int32(height))
	logging.Logger().Debug("resized surfaces", "width", width, "height", height)
}
