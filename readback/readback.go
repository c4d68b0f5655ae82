// Package readback copies a rendered frame from the GPU render target into
// the visible pixel surface.
package readback

import (
	"image"

	"github.com/richinsley/gogradient/gpu"
	"github.com/richinsley/gogradient/logging"
	"github.com/richinsley/gogradient/surface"
	"golang.org/x/image/draw"
)

// FlipRows reverses the row order of a tightly packed pixel buffer in place.
// Applying it twice restores the original buffer.
func FlipRows(pix []byte, stride, height int) {
	tmp := make([]byte, stride)
	for top, bottom := 0, height-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := pix[top*stride : (top+1)*stride]
		b := pix[bottom*stride : (bottom+1)*stride]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}

// Blitter reads frames back and puts them into a visible surface. The read
// buffer is reused between frames.
type Blitter struct {
	frame   *image.RGBA
	skipped int
}

// New returns a Blitter.
func New() *Blitter {
	return &Blitter{frame: &image.RGBA{}}
}

// Skipped returns how many puts were dropped on a size mismatch.
func (b *Blitter) Skipped() int { return b.skipped }

// Read copies the whole offscreen surface into the read buffer and returns
// it top row first. The returned image is overwritten by the next Read.
func (b *Blitter) Read(dev gpu.Device, off *surface.Offscreen) *image.RGBA {
	w, h := off.Width, off.Height
	n := w * h * 4
	if cap(b.frame.Pix) < n {
		b.frame.Pix = make([]byte, n)
	}
	b.frame.Pix = b.frame.Pix[:n]
	b.frame.Stride = w * 4
	b.frame.Rect = image.Rect(0, 0, w, h)

	dev.BindRenderTarget(off.Target)
	dev.ReadPixels(0, 0, w, h, b.frame.Pix)
	FlipRows(b.frame.Pix, b.frame.Stride, h)
	return b.frame
}

// Put writes frame into vis in one copy. It reports false and leaves vis
// untouched when the sizes differ.
func (b *Blitter) Put(frame *image.RGBA, vis *surface.Visible) bool {
	if frame.Rect.Size() != vis.Image.Rect.Size() {
		b.skipped++
		logging.Logger().Debug("skipping blit on size mismatch",
			"frame", frame.Rect.Size(), "visible", vis.Image.Rect.Size())
		return false
	}
	draw.Copy(vis.Image, image.Point{}, frame, frame.Rect, draw.Src, nil)
	return true
}

// Blit reads off back and puts it into vis.
func (b *Blitter) Blit(dev gpu.Device, off *surface.Offscreen, vis *surface.Visible) bool {
	return b.Put(b.Read(dev, off), vis)
}
