package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/richinsley/gogradient/glfwcontext"
	"github.com/richinsley/gogradient/gpu"
	"github.com/richinsley/gogradient/gpu/gldevice"
	"github.com/richinsley/gogradient/gpu/software"
	"github.com/richinsley/gogradient/graphics"
	"github.com/richinsley/gogradient/headless"
	"github.com/richinsley/gogradient/logging"
	options "github.com/richinsley/gogradient/options"
	"github.com/richinsley/gogradient/params"
	"github.com/richinsley/gogradient/renderer"
	"github.com/richinsley/gogradient/translator"
)

func init() {
	runtime.LockOSThread()
}

func newDevice(backend string) (gpu.Device, error) {
	switch backend {
	case "gl":
		return gldevice.New()
	case "software":
		var opts []software.Option
		if _, err := translator.Get(); err == nil {
			opts = append(opts, software.WithValidator(translator.Validate))
		} else {
			log.Printf("Shader validation disabled: %v", err)
		}
		return software.New(opts...), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want gl or software)", backend)
	}
}

func loadOverrides(opts *options.Options) (base, merged params.Overrides) {
	base, ok := params.Preset(*opts.Preset)
	if !ok {
		log.Fatalf("Unknown preset %q (known: %s)", *opts.Preset, strings.Join(params.PresetNames(), ", "))
	}
	if *opts.Config == "" {
		return base, base
	}
	o, err := params.LoadOverrides(*opts.Config)
	if err != nil {
		log.Fatalf("Error loading overrides: %v", err)
	}
	return base, params.Merge(base, o)
}

func main() {
	opts := options.Register(flag.CommandLine)
	flag.Parse()

	if *opts.Help {
		fmt.Println("Procedural gradient background renderer")
		flag.PrintDefaults()
		return
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*opts.LogLevel)); err != nil {
		log.Fatalf("Invalid log level %q: %v", *opts.LogLevel, err)
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	base, overrides := loadOverrides(opts)
	store := params.NewStore(overrides)
	log.Printf("Using preset %q", *opts.Preset)

	var host graphics.Context
	if *opts.Headless {
		if *opts.Backend != "software" {
			log.Printf("Headless runs use the software backend")
			*opts.Backend = "software"
		}
		host = headless.NewHeadless(*opts.Width, *opts.Height)
	} else {
		if err := glfwcontext.InitGraphics(); err != nil {
			log.Fatalf("Failed to initialize graphics: %v", err)
		}
		defer glfwcontext.TerminateGraphics()

		win, err := glfwcontext.New(opts)
		if err != nil {
			log.Fatalf("Failed to create window: %v", err)
		}
		host = win
	}
	defer host.Shutdown()

	dev, err := newDevice(*opts.Backend)
	if err != nil {
		log.Fatalf("Failed to create %s device: %v", *opts.Backend, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *opts.Watch && *opts.Config != "" {
		if err := params.Watch(ctx, *opts.Config, base, store); err != nil {
			log.Printf("Warning: not watching %s: %v", *opts.Config, err)
		}
	}

	r := renderer.New(dev, store,
		renderer.WithClock(host.Time),
		renderer.WithFrameLimit(*opts.Frames),
	)
	width, height := host.GetFramebufferSize()
	if err := r.Init(width, height); err != nil {
		log.Fatalf("Failed to initialize renderer: %v", err)
	}
	defer r.Shutdown()

	log.Printf("Starting %s render loop at %dx%d...", *opts.Backend, width, height)
	if err := r.Run(ctx, host); err != nil {
		log.Printf("Render loop failed: %v", err)
	}
	stats := r.Stats()
	log.Printf("Rendered %d frames (%d blits skipped)", stats.Frames, stats.BlitsSkipped)
}
