// Package params holds the shader and grading parameters of the gradient
// engine and the one-time merge of an override record against defaults.
package params

import (
	"encoding/json"
	"math"

	"github.com/richinsley/gogradient/logging"
)

// Parameters is the full set of values pushed to the field program each frame.
// No range checks are applied: out-of-range values are valid and simply
// produce extreme output.
type Parameters struct {
	Scale          float32
	PhaseX         float32
	Velocity       float32
	FieldDetail    float32 // mode1Detail
	FieldTwist     float32 // mode1Twist
	SecondarySpeed float32 // mode2Speed
	Brightness     float32
	Hue            float32 // degrees
	Saturation     float32
	Vibrance       float32
	Contrast       float32
	RGBMultiplier  [3]float32
	ColorOffset    float32
	GrainAmount    float32
	GrainSize      float32
	Posterize      float32
	Scanlines      float32
	ScanlineWidth  float32

	// MovementMode is reserved. The field program does not branch on it.
	MovementMode int32

	// GradientColors is reserved for gradient-table interpolation and is not
	// consumed by the field program.
	GradientColors []ColorStop
}

// Overrides is a flat key/value record keyed by preset field names (scale,
// phaseX, mode1Detail, rgbMultiplierR, ...).
type Overrides map[string]any

// Defaults returns the default parameter record.
func Defaults() Parameters {
	return Parameters{
		Scale:          8.0,
		PhaseX:         0.1,
		Velocity:       0.15,
		FieldDetail:    150.0,
		FieldTwist:     0.0,
		SecondarySpeed: 1.5,
		Brightness:     0.7,
		Hue:            220.0,
		Saturation:     0.6,
		Vibrance:       0.0,
		Contrast:       1.0,
		RGBMultiplier:  [3]float32{0.8, 0.9, 1.2},
		ColorOffset:    0.0,
		GrainAmount:    0.0,
		GrainSize:      2.0,
		Posterize:      256.0,
		Scanlines:      0.0,
		ScanlineWidth:  1.0,
		MovementMode:   6,
	}
}

// scalarFields maps override keys to the float field they replace.
var scalarFields = map[string]func(p *Parameters) *float32{
	"scale":          func(p *Parameters) *float32 { return &p.Scale },
	"phaseX":         func(p *Parameters) *float32 { return &p.PhaseX },
	"velocity":       func(p *Parameters) *float32 { return &p.Velocity },
	"mode1Detail":    func(p *Parameters) *float32 { return &p.FieldDetail },
	"mode1Twist":     func(p *Parameters) *float32 { return &p.FieldTwist },
	"mode2Speed":     func(p *Parameters) *float32 { return &p.SecondarySpeed },
	"brightness":     func(p *Parameters) *float32 { return &p.Brightness },
	"hue":            func(p *Parameters) *float32 { return &p.Hue },
	"saturation":     func(p *Parameters) *float32 { return &p.Saturation },
	"vibrance":       func(p *Parameters) *float32 { return &p.Vibrance },
	"contrast":       func(p *Parameters) *float32 { return &p.Contrast },
	"rgbMultiplierR": func(p *Parameters) *float32 { return &p.RGBMultiplier[0] },
	"rgbMultiplierG": func(p *Parameters) *float32 { return &p.RGBMultiplier[1] },
	"rgbMultiplierB": func(p *Parameters) *float32 { return &p.RGBMultiplier[2] },
	"colorOffset":    func(p *Parameters) *float32 { return &p.ColorOffset },
	"grainAmount":    func(p *Parameters) *float32 { return &p.GrainAmount },
	"grainSize":      func(p *Parameters) *float32 { return &p.GrainSize },
	"posterize":      func(p *Parameters) *float32 { return &p.Posterize },
	"scanlines":      func(p *Parameters) *float32 { return &p.Scanlines },
	"scanlineWidth":  func(p *Parameters) *float32 { return &p.ScanlineWidth },
}

// aliases maps alternate override keys to the key they stand for.
var aliases = map[string]string{
	"fieldDetail":    "mode1Detail",
	"fieldTwist":     "mode1Twist",
	"secondarySpeed": "mode2Speed",
}

// Canonical returns a copy of o with alias keys renamed to the key they stand
// for. When o holds both, the canonical key's value is kept.
func Canonical(o Overrides) Overrides {
	out := make(Overrides, len(o))
	for k, v := range o {
		if _, alias := aliases[k]; !alias {
			out[k] = v
		}
	}
	for k, v := range o {
		key, alias := aliases[k]
		if !alias {
			continue
		}
		if _, set := out[key]; !set {
			out[key] = v
		}
	}
	return out
}

// Initialize starts from Defaults and replaces every recognized key present in
// overrides. Alias keys are resolved with Canonical first. Unrecognized keys
// are ignored. A nil record yields the defaults.
//
// Values are not validated. A value whose type cannot be read as a number is
// dropped and the default kept for that key.
func Initialize(overrides Overrides) Parameters {
	p := Defaults()
	log := logging.Logger()
	for key, value := range Canonical(overrides) {
		if field, ok := scalarFields[key]; ok {
			f, ok := toFloat(value)
			if !ok {
				log.Warn("ignoring non-numeric override", "key", key, "value", value)
				continue
			}
			*field(&p) = float32(f)
			continue
		}
		switch key {
		case "movementMode":
			f, ok := toFloat(value)
			if !ok {
				log.Warn("ignoring non-numeric override", "key", key, "value", value)
				continue
			}
			p.MovementMode = int32(f)
		case "gradientColors":
			stops, err := ParseColorStops(value)
			if err != nil {
				log.Warn("ignoring gradient colors", "error", err)
				continue
			}
			p.GradientColors = stops
		default:
			log.Debug("ignoring unrecognized override", "key", key)
		}
	}
	return p
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return math.NaN(), false
	}
}
