package params

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	p := Initialize(nil)
	assert.Equal(t, float32(8.0), p.Scale)
	assert.Equal(t, float32(0.1), p.PhaseX)
	assert.Equal(t, float32(0.15), p.Velocity)
	assert.Equal(t, float32(150.0), p.FieldDetail)
	assert.Equal(t, float32(0.0), p.FieldTwist)
	assert.Equal(t, float32(1.5), p.SecondarySpeed)
	assert.Equal(t, float32(0.7), p.Brightness)
	assert.Equal(t, float32(220.0), p.Hue)
	assert.Equal(t, float32(0.6), p.Saturation)
	assert.Equal(t, float32(0.0), p.Vibrance)
	assert.Equal(t, float32(1.0), p.Contrast)
	assert.Equal(t, [3]float32{0.8, 0.9, 1.2}, p.RGBMultiplier)
	assert.Equal(t, float32(0.0), p.ColorOffset)
	assert.Equal(t, float32(0.0), p.GrainAmount)
	assert.Equal(t, float32(2.0), p.GrainSize)
	assert.Equal(t, float32(256.0), p.Posterize)
	assert.Equal(t, float32(0.0), p.Scanlines)
	assert.Equal(t, float32(1.0), p.ScanlineWidth)
	assert.Equal(t, int32(6), p.MovementMode)
	assert.Empty(t, p.GradientColors)
}

func TestInitializeReplacesOnlyPresentKeys(t *testing.T) {
	cases := []struct {
		name  string
		over  Overrides
		check func(t *testing.T, p Parameters)
	}{
		{
			name: "single key",
			over: Overrides{"hue": 0},
			check: func(t *testing.T, p Parameters) {
				want := Defaults()
				want.Hue = 0
				assert.Equal(t, want, p)
			},
		},
		{
			name: "multiplier channels and mode",
			over: Overrides{"rgbMultiplierG": 2.5, "movementMode": int64(3)},
			check: func(t *testing.T, p Parameters) {
				want := Defaults()
				want.RGBMultiplier[1] = 2.5
				want.MovementMode = 3
				assert.Equal(t, want, p)
			},
		},
		{
			name: "out of range values pass through",
			over: Overrides{"scale": -4.0, "saturation": 7.0},
			check: func(t *testing.T, p Parameters) {
				assert.Equal(t, float32(-4), p.Scale)
				assert.Equal(t, float32(7), p.Saturation)
			},
		},
		{
			name: "aliases",
			over: Overrides{"fieldDetail": 10, "fieldTwist": 1, "secondarySpeed": 3},
			check: func(t *testing.T, p Parameters) {
				assert.Equal(t, float32(10), p.FieldDetail)
				assert.Equal(t, float32(1), p.FieldTwist)
				assert.Equal(t, float32(3), p.SecondarySpeed)
			},
		},
		{
			name: "unknown and non-numeric keys ignored",
			over: Overrides{"hideUI": true, "exportResolution": 4096, "scale": "big"},
			check: func(t *testing.T, p Parameters) {
				assert.Equal(t, Defaults(), p)
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, Initialize(tc.over))
		})
	}
}

func TestTherapeuticPresetMatchesDefaults(t *testing.T) {
	o, ok := Preset("therapeutic")
	require.True(t, ok)
	assert.Equal(t, Defaults(), Initialize(o))

	_, ok = Preset("nope")
	assert.False(t, ok)
	assert.Equal(t, []string{"defaults", "therapeutic"}, PresetNames())
}

func TestParseColorStops(t *testing.T) {
	stops, err := ParseColorStops([]any{"#ff0000", map[string]any{"color": "#0000ff", "position": 0.25}, "#00ff00"})
	require.NoError(t, err)
	require.Len(t, stops, 3)
	assert.Equal(t, "#ff0000", stops[0].Color.Hex())
	assert.Equal(t, float32(0), stops[0].Position)
	assert.Equal(t, float32(0.25), stops[1].Position)
	assert.Equal(t, float32(1), stops[2].Position)

	_, err = ParseColorStops([]any{"not-a-color"})
	assert.Error(t, err)
	_, err = ParseColorStops(42)
	assert.Error(t, err)

	// A bad table is dropped; the rest of the record still applies.
	p := Initialize(Overrides{"gradientColors": []any{"zz"}, "hue": 10})
	assert.Empty(t, p.GradientColors)
	assert.Equal(t, float32(10), p.Hue)
}

func TestDecodeOverrides(t *testing.T) {
	cases := []struct {
		ext  string
		data string
	}{
		{".yaml", "hue: 12\nsaturation: 0.5\ngradientColors: ['#112233']\n"},
		{".toml", "hue = 12\nsaturation = 0.5\ngradientColors = ['#112233']\n"},
		{".json", `{"hue": 12, "saturation": 0.5, "gradientColors": ["#112233"]}`},
	}
	for _, tc := range cases {
		t.Run(tc.ext, func(t *testing.T) {
			o, err := DecodeOverrides(tc.ext, []byte(tc.data))
			require.NoError(t, err)
			p := Initialize(o)
			assert.Equal(t, float32(12), p.Hue)
			assert.Equal(t, float32(0.5), p.Saturation)
			require.Len(t, p.GradientColors, 1)
			assert.Equal(t, "#112233", p.GradientColors[0].Color.Hex())
		})
	}

	_, err := DecodeOverrides(".ini", nil)
	assert.Error(t, err)
}

func TestStoreReinitializeReplacesWholesale(t *testing.T) {
	s := NewStore(Overrides{"hue": 1, "scale": 2})
	first := s.Snapshot()
	assert.Equal(t, float32(2), first.Scale)

	s.Reinitialize(Overrides{"hue": 5})
	second := s.Snapshot()
	assert.Equal(t, float32(5), second.Hue)
	// scale is not carried over from the previous override.
	assert.Equal(t, Defaults().Scale, second.Scale)
	// the earlier snapshot is untouched.
	assert.Equal(t, float32(1), first.Hue)
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "preset.yaml")
	require.NoError(t, os.WriteFile(path, []byte("hue: 1\n"), 0o644))

	base := Overrides{"scale": 3, "hue": 7}
	o, err := LoadOverrides(path)
	require.NoError(t, err)
	s := NewStore(Merge(base, o))
	require.Equal(t, float32(1), s.Snapshot().Hue)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, Watch(ctx, path, base, s))

	require.NoError(t, os.WriteFile(path, []byte("hue: 42\n"), 0o644))
	assert.Eventually(t, func() bool {
		return s.Snapshot().Hue == 42
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, float32(3), s.Snapshot().Scale)
}

func TestMergeOverWins(t *testing.T) {
	base := Overrides{"hue": 1, "scale": 2}
	got := Merge(base, Overrides{"hue": 3})
	assert.Equal(t, Overrides{"hue": 3, "scale": 2}, got)
	assert.Equal(t, 1, base["hue"])
}

func TestMergeAliasOverridesPreset(t *testing.T) {
	base, ok := Preset("therapeutic")
	require.True(t, ok)
	for i := 0; i < 200; i++ {
		p := Initialize(Merge(base, Overrides{"fieldDetail": 300.0}))
		require.Equal(t, float32(300), p.FieldDetail, "run %d", i)
	}
	got := Merge(base, Overrides{"secondarySpeed": 9.0})
	assert.Equal(t, 9.0, got["mode2Speed"])
	assert.NotContains(t, got, "secondarySpeed")
}

func TestCanonicalKeyWinsWithinRecord(t *testing.T) {
	o := Overrides{"mode1Twist": 2.0, "fieldTwist": 5.0, "fieldDetail": 40.0}
	assert.Equal(t, Overrides{"mode1Twist": 2.0, "mode1Detail": 40.0}, Canonical(o))
	for i := 0; i < 200; i++ {
		require.Equal(t, float32(2), Initialize(o).FieldTwist, "run %d", i)
	}
}

func TestDecodeOverridesRenamesAliases(t *testing.T) {
	o, err := DecodeOverrides(".yaml", []byte("fieldDetail: 300\nhue: 4\n"))
	require.NoError(t, err)
	assert.Equal(t, Overrides{"mode1Detail": 300, "hue": 4}, o)
}
