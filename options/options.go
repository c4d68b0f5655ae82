package options

import "flag"

type Options struct {
	Width    *int
	Height   *int
	Title    *string
	Preset   *string
	Config   *string
	Backend  *string // "gl" or "software"
	Opacity  *float64
	LogLevel *string
	Watch    *bool
	Frames   *int64 // 0 renders until the window closes
	Headless *bool
	Help     *bool
}

// Register defines every option on fs.
func Register(fs *flag.FlagSet) *Options {
	return &Options{
		Width:    fs.Int("width", 1280, "Initial window width"),
		Height:   fs.Int("height", 720, "Initial window height"),
		Title:    fs.String("title", "gogradient", "Window title"),
		Preset:   fs.String("preset", "therapeutic", "Named parameter preset (therapeutic, defaults)"),
		Config:   fs.String("config", "", "Override file (.yaml, .yml, .toml or .json) applied over the preset"),
		Backend:  fs.String("backend", "gl", "Rendering backend: gl or software"),
		Opacity:  fs.Float64("opacity", -1, "Visible surface opacity, negative keeps the surface style"),
		LogLevel: fs.String("loglevel", "info", "Log level: debug, info, warn, error"),
		Watch:    fs.Bool("watch", false, "Reload the override file when it changes"),
		Frames:   fs.Int64("frames", 0, "Stop after this many frames, 0 runs until closed"),
		Headless: fs.Bool("headless", false, "Render without a window (software backend)"),
		Help:     fs.Bool("help", false, "Show help message"),
	}
}
