package readback

import (
	"image"
	"testing"

	"github.com/richinsley/gogradient/gpu/gputest"
	"github.com/richinsley/gogradient/surface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlipRowsIsSelfInverse(t *testing.T) {
	for _, h := range []int{1, 2, 3, 8, 17} {
		const stride = 12
		pix := make([]byte, stride*h)
		for i := range pix {
			pix[i] = byte(i * 7)
		}
		orig := append([]byte(nil), pix...)

		FlipRows(pix, stride, h)
		if h > 1 {
			assert.Equal(t, orig[:stride], pix[(h-1)*stride:], "height %d", h)
		}
		FlipRows(pix, stride, h)
		assert.Equal(t, orig, pix, "height %d", h)
	}
}

func TestReadFlipsBottomRowFirst(t *testing.T) {
	rec := gputest.NewRecorder()
	off := &surface.Offscreen{ID: "off", Target: 3, Width: 2, Height: 4}

	frame := New().Read(rec, off)
	require.Equal(t, image.Rect(0, 0, 2, 4), frame.Rect)
	// The recorder fills GPU row y with byte(y).
	for y := 0; y < 4; y++ {
		assert.Equal(t, byte(3-y), frame.Pix[y*frame.Stride], "row %d", y)
	}
	assert.Equal(t, uint32(3), rec.Bound)
}

func TestBlitCopiesFrame(t *testing.T) {
	rec := gputest.NewRecorder()
	off := &surface.Offscreen{ID: "off", Target: 1, Width: 100, Height: 100}
	vis := surface.NewVisible("vis", 100, 100)

	b := New()
	require.True(t, b.Blit(rec, off, vis))
	assert.Equal(t, byte(99), vis.Image.Pix[0])
	assert.Equal(t, byte(0), vis.Image.Pix[99*vis.Image.Stride])
	assert.Zero(t, b.Skipped())
}

func TestStaleFrameAfterResizeIsSkipped(t *testing.T) {
	rec := gputest.NewRecorder()
	m := surface.NewManager(rec, nil)
	off, vis, err := m.EnsureSurfaces("off", "vis")
	require.NoError(t, err)
	m.Resize(100, 100)

	b := New()
	stale := b.Read(rec, off)
	require.Equal(t, 100, stale.Rect.Dx())

	m.Resize(50, 200)
	assert.False(t, b.Put(stale, vis))
	assert.Equal(t, 1, b.Skipped())

	require.True(t, b.Blit(rec, off, vis))
	assert.Equal(t, 50, vis.Width())
	assert.Equal(t, 200, vis.Height())
	assert.Equal(t, byte(199), vis.Image.Pix[0])
	assert.Equal(t, 1, b.Skipped())
}
