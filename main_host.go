package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"trefoil/app"
	"trefoil/config"
	"trefoil/hal"
	"trefoil/internal/buildinfo"
)

func main() {
	var (
		cfgPath  string
		headless bool
		hz       int
		ticks    uint64
		slices   int
		stacks   int
	)
	flag.StringVar(&cfgPath, "config", "", "YAML config file.")
	flag.BoolVar(&headless, "headless", false, "Run without a window.")
	flag.IntVar(&hz, "hz", 0, "Tick rate in headless mode.")
	flag.Uint64Var(&ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.IntVar(&slices, "slices", 0, "Mesh slices along the knot.")
	flag.IntVar(&stacks, "stacks", 0, "Mesh stacks around the tube.")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	// Flags given on the command line override the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "headless":
			cfg.Headless.Enabled = headless
		case "hz":
			cfg.Headless.Hz = hz
		case "ticks":
			cfg.Headless.Ticks = ticks
		case "slices":
			cfg.Mesh.Slices = slices
		case "stacks":
			cfg.Mesh.Stacks = stacks
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Info("trefoil starting", "build", buildinfo.String(),
		"size", fmt.Sprintf("%dx%d", cfg.Window.Width, cfg.Window.Height),
		"mesh", fmt.Sprintf("%dx%d", cfg.Mesh.Slices, cfg.Mesh.Stacks),
		"headless", cfg.Headless.Enabled)

	opts := hal.Options{Width: cfg.Window.Width, Height: cfg.Window.Height, Log: log}
	newApp := func(h hal.HAL) (func() error, error) { return app.New(h, cfg) }

	if cfg.Headless.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err := hal.RunHeadless(ctx, opts, newApp, hal.HeadlessConfig{
			Enabled: true,
			Hz:      cfg.Headless.Hz,
			Ticks:   cfg.Headless.Ticks,
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("headless run failed", "err", err)
			stop()
			os.Exit(1)
		}
		log.Info("trefoil stopped")
		return
	}

	err = hal.RunWindow(opts, newApp, hal.WindowConfig{
		Title: cfg.Window.Title,
		Scale: cfg.Window.Scale,
		TPS:   cfg.Window.TPS,
	})
	if err != nil {
		log.Error("window run failed", "err", err)
		os.Exit(1)
	}
	log.Info("trefoil stopped")
}
