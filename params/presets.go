package params

import "sort"

var presets = map[string]Overrides{
	"defaults": {},
	// Calm, ambient blue flow used behind the voice agent UI.
	"therapeutic": {
		"movementMode":     6,
		"scale":            8.0,
		"phaseX":           0.1,
		"velocity":         0.15,
		"mode1Detail":      150.0,
		"mode1Twist":       0.0,
		"mode2Speed":       1.5,
		"brightness":       0.7,
		"hue":              220.0,
		"saturation":       0.6,
		"vibrance":         0.0,
		"contrast":         1.0,
		"rgbMultiplierR":   0.8,
		"rgbMultiplierG":   0.9,
		"rgbMultiplierB":   1.2,
		"colorOffset":      0.0,
		"grainAmount":      0.0,
		"grainSize":        2.0,
		"posterize":        256.0,
		"scanlines":        0.0,
		"scanlineWidth":    1.0,
		"gradientColors":   []any{},
		"exportResolution": 4096,
		"hideUI":           true,
	},
}

// Preset returns a copy of the named override record.
func Preset(name string) (Overrides, bool) {
	p, ok := presets[name]
	if !ok {
		return nil, false
	}
	out := make(Overrides, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out, true
}

// PresetNames lists the known presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge returns a new record holding base with over applied on top. Both
// sides are made Canonical first, so an alias in over replaces the canonical
// key in base.
func Merge(base, over Overrides) Overrides {
	out := Canonical(base)
	for k, v := range Canonical(over) {
		out[k] = v
	}
	return out
}
