// Command knotshot exports frames of the rotating knot as PNG files.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"trefoil/config"
	"trefoil/internal/buildinfo"
	"trefoil/knot"
)

func main() {
	var (
		cfgPath = flag.String("config", "", "YAML config file.")
		outDir  = flag.String("out", ".", "Output directory.")
		frames  = flag.Int("frames", 1, "Number of frames to export.")
		mode    = flag.String("mode", "raster", "raster|vector.")
		scale   = flag.Int("scale", 1, "Output scale factor.")
		slices  = flag.Int("slices", 0, "Override mesh slices.")
		stacks  = flag.Int("stacks", 0, "Override mesh stacks.")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fatalf("%v", err)
	}
	if *slices > 0 {
		cfg.Mesh.Slices = *slices
	}
	if *stacks > 0 {
		cfg.Mesh.Stacks = *stacks
	}
	if err := cfg.Validate(); err != nil {
		fatalf("%v", err)
	}
	if *frames <= 0 || *scale <= 0 {
		fatalf("usage: knotshot [-mode raster|vector] [-frames N>0] [-scale K>0] [-out dir]")
	}

	log, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		fatalf("%v", err)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fatalf("%v", err)
	}

	e := &exporter{
		mesh:   knot.NewMesh(cfg.Mesh.Slices, cfg.Mesh.Stacks),
		width:  cfg.Window.Width,
		height: cfg.Window.Height,
		scale:  *scale,
		dir:    *outDir,
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		pb := progressbar.Default(int64(*frames), "frames")
		defer pb.Close()
		e.progress = func() { _ = pb.Add(1) }
	}

	log.Info("exporting", "version", buildinfo.Short(), "mode", *mode, "frames", *frames,
		"slices", cfg.Mesh.Slices, "stacks", cfg.Mesh.Stacks, "out", *outDir)
	start := time.Now()

	var paths []string
	switch strings.ToLower(*mode) {
	case "raster":
		paths, err = e.raster(*frames)
	case "vector":
		paths, err = e.vector(*frames)
	default:
		fatalf("unknown mode: %s", *mode)
	}
	if err != nil {
		fatalf("%s: %v", *mode, err)
	}
	log.Info("done", "files", len(paths), "elapsed", time.Since(start))
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}
