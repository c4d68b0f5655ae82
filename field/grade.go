package field

import (
	"github.com/chewxy/math32"
	"github.com/richinsley/gogradient/params"
)

// lumaWeights are the Rec.601 weights used for the saturation gray point.
var lumaWeights = Vec3{0.299, 0.587, 0.114}

// achromatic is the normalized (1,1,1) axis hue rotation turns around.
const achromatic float32 = 0.57735

// Grade applies hue rotation, saturation, contrast, the per-channel
// multiplier and brightness, in that order.
func Grade(c Vec3, prm *params.Parameters) Vec3 {
	c = HueShift(c, prm.Hue*degToRad)
	c = Saturate(c, prm.Saturation)
	c = Contrast(c, prm.Contrast)
	c = Vec3{c.R * prm.RGBMultiplier[0], c.G * prm.RGBMultiplier[1], c.B * prm.RGBMultiplier[2]}
	return Vec3{c.R * prm.Brightness, c.G * prm.Brightness, c.B * prm.Brightness}
}

// HueShift rotates c by angle radians around the achromatic axis
// (Rodrigues' rotation).
func HueShift(c Vec3, angle float32) Vec3 {
	k := Vec3{achromatic, achromatic, achromatic}
	cosA := math32.Cos(angle)
	sinA := math32.Sin(angle)
	cr := cross(k, c)
	d := dot(k, c) * (1.0 - cosA)
	return Vec3{
		R: c.R*cosA + cr.R*sinA + k.R*d,
		G: c.G*cosA + cr.G*sinA + k.G*d,
		B: c.B*cosA + cr.B*sinA + k.B*d,
	}
}

// Luma is the weighted gray value of c.
func Luma(c Vec3) float32 {
	return dot(c, lumaWeights)
}

// Saturate interpolates between the luma gray of c (s = 0) and c (s = 1).
func Saturate(c Vec3, s float32) Vec3 {
	g := Luma(c)
	return Vec3{mix(g, c.R, s), mix(g, c.G, s), mix(g, c.B, s)}
}

// Contrast scales c around the 0.5 midpoint.
func Contrast(c Vec3, k float32) Vec3 {
	return Vec3{(c.R-0.5)*k + 0.5, (c.G-0.5)*k + 0.5, (c.B-0.5)*k + 0.5}
}

func mix(x, y, a float32) float32 { return x*(1-a) + y*a }

func dot(a, b Vec3) float32 { return a.R*b.R + a.G*b.G + a.B*b.B }

func cross(a, b Vec3) Vec3 {
	return Vec3{
		R: a.G*b.B - a.B*b.G,
		G: a.B*b.R - a.R*b.B,
		B: a.R*b.G - a.G*b.R,
	}
}
