package params

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ColorStop is one entry of the reserved gradient table.
type ColorStop struct {
	Color    colorful.Color
	Position float32 // 0..1 along the gradient
}

// ParseColorStops reads the gradientColors override. Entries are either hex
// strings ("#1e3a8a") or records with "color" and optional "position" keys.
// Stops without a position are spread evenly over [0,1].
func ParseColorStops(value any) ([]ColorStop, error) {
	var entries []any
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []any:
		entries = v
	case []string:
		for _, s := range v {
			entries = append(entries, s)
		}
	default:
		return nil, fmt.Errorf("gradientColors: expected a list, got %T", value)
	}

	if len(entries) == 0 {
		return nil, nil
	}
	stops := make([]ColorStop, 0, len(entries))
	for i, e := range entries {
		stop := ColorStop{Position: evenPosition(i, len(entries))}
		switch entry := e.(type) {
		case string:
			c, err := colorful.Hex(entry)
			if err != nil {
				return nil, fmt.Errorf("gradientColors[%d]: %w", i, err)
			}
			stop.Color = c
		case map[string]any:
			hex, _ := entry["color"].(string)
			c, err := colorful.Hex(hex)
			if err != nil {
				return nil, fmt.Errorf("gradientColors[%d]: %w", i, err)
			}
			stop.Color = c
			if pos, ok := entry["position"]; ok {
				f, ok := toFloat(pos)
				if !ok {
					return nil, fmt.Errorf("gradientColors[%d]: position is %T", i, pos)
				}
				stop.Position = float32(f)
			}
		default:
			return nil, fmt.Errorf("gradientColors[%d]: unsupported entry %T", i, e)
		}
		stops = append(stops, stop)
	}
	return stops, nil
}

func evenPosition(i, n int) float32 {
	if n <= 1 {
		return 0
	}
	return float32(i) / float32(n-1)
}
