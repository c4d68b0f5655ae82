// Package field is the CPU rendition of the gradient fragment program. It
// mirrors shader.FieldFragmentSource step for step in float32 so the software
// device and the tests produce the same colors the GPU does (up to the
// precision of the GPU's transcendental functions).
package field

import (
	"github.com/chewxy/math32"
	"github.com/richinsley/gogradient/params"
)

const (
	// WarpIterations is the number of gradient-following steps.
	WarpIterations = 20
	// CouplingIterations bounds the cross-coupling loop, which runs for
	// i = 1 .. CouplingIterations-1.
	CouplingIterations = 20
	// Epsilon is the finite-difference step used to differentiate F.
	Epsilon float32 = 0.05
	// Darken scales the raw color before grading.
	Darken float32 = 0.85

	degToRad float32 = 0.01745329
)

// Vec2 is a 2D point in field space.
type Vec2 struct{ X, Y float32 }

// Vec3 is a linear RGB triple.
type Vec3 struct{ R, G, B float32 }

// Field is the result of warping one point.
type Field struct {
	// Vel is the last gradient computed by the warp loop. Nothing downstream
	// reads it.
	Vel Vec2
	// Pos is the final warped position.
	Pos Vec2
}

// F is the scalar potential at p for elapsed time t.
func F(p Vec2, t float32, prm *params.Parameters) float32 {
	return math32.Sin(p.X+math32.Sin(p.Y+t*prm.PhaseX)) * math32.Sin(p.Y*p.X*0.1+t*prm.Velocity)
}

// Evaluate warps p through the gradient-following loop and then the decaying
// sinusoidal cross-coupling loop.
func Evaluate(p Vec2, t float32, prm *params.Parameters) Field {
	var rz Vec2
	twist := prm.FieldTwist * 0.01
	invDetail := 1.0 / prm.FieldDetail
	driftX := math32.Sin(t*prm.SecondarySpeed/10.0) / 10.0
	driftY := math32.Cos(t*prm.SecondarySpeed/10.0) / 10.0

	for i := 0; i < WarpIterations; i++ {
		t0 := F(p, t, prm)
		t1 := F(Vec2{p.X + Epsilon, p.Y}, t, prm)
		t2 := F(Vec2{p.X, p.Y + Epsilon}, t, prm)
		g := Vec2{(t1 - t0) / Epsilon, (t2 - t0) / Epsilon}
		rot := Vec2{-g.Y, g.X}

		p.X += twist*rot.X + g.X*invDetail
		p.Y += twist*rot.Y + g.Y*invDetail
		p.X += driftX
		p.Y += driftY
		rz = g
	}

	phase := t * prm.SecondarySpeed
	for i := 1; i < CouplingIterations; i++ {
		fi := float32(i)
		p.X += 0.3/fi*math32.Sin(fi*3.0*p.Y+phase) + 0.5
		p.Y += 0.3/fi*math32.Cos(fi*3.0*p.X+phase) + 0.5
	}

	return Field{Vel: rz, Pos: p}
}

// RGB derives the raw color of a warped field, before darkening.
func RGB(fld Field) Vec3 {
	s := fld.Pos.X + fld.Pos.Y
	return Vec3{
		R: math32.Cos(s+1.0)*0.5 + 0.5,
		G: math32.Sin(s+1.0)*0.5 + 0.5,
		B: (math32.Sin(s)+math32.Cos(s))*0.3 + 0.5,
	}
}

// Coord maps a fragment coordinate (pixel centers at +0.5, row 0 at the
// bottom) to the centered, aspect-corrected and scaled field coordinate.
func Coord(frag, resolution Vec2, scale float32) Vec2 {
	p := Vec2{frag.X/resolution.X - 0.5, frag.Y/resolution.Y - 0.5}
	p.X *= resolution.X / resolution.Y
	return Vec2{p.X * scale, p.Y * scale}
}

// Shade runs the whole program for one fragment and returns an opaque color.
func Shade(frag, resolution Vec2, t float32, prm *params.Parameters) [4]float32 {
	p := Coord(frag, resolution, prm.Scale)
	c := RGB(Evaluate(p, t, prm))
	c = Vec3{c.R * Darken, c.G * Darken, c.B * Darken}
	c = Grade(c, prm)
	return [4]float32{c.R, c.G, c.B, 1.0}
}

// ToRGBA8 converts a shaded color to normalized 8-bit channels the way a
// UNORM8 color attachment stores it.
func ToRGBA8(c [4]float32) [4]uint8 {
	var out [4]uint8
	for i, v := range c {
		if math32.IsNaN(v) || v <= 0 {
			continue
		}
		if v >= 1 {
			out[i] = 255
			continue
		}
		out[i] = uint8(math32.Round(v * 255))
	}
	return out
}
