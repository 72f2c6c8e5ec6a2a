// Package config loads the runtime configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// MaxVertices is the largest mesh addressable by 16-bit indices.
const MaxVertices = 1 << 16

// maxFileSize bounds the config file read from disk.
const maxFileSize = 1 << 20

type Config struct {
	Window   Window   `yaml:"window"`
	Mesh     Mesh     `yaml:"mesh"`
	Headless Headless `yaml:"headless"`
	Log      Log      `yaml:"log"`
	HUD      HUD      `yaml:"hud"`
}

type Window struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Scale  int    `yaml:"scale"`
	Title  string `yaml:"title"`
	TPS    int    `yaml:"tps"`
}

// Aspect returns width/height of the framebuffer.
func (w Window) Aspect() float32 {
	if w.Height <= 0 {
		return 1
	}
	return float32(w.Width) / float32(w.Height)
}

// Mesh sets the tessellation grid: slices along the knot, stacks around
// the tube.
type Mesh struct {
	Slices int `yaml:"slices"`
	Stacks int `yaml:"stacks"`
}

type Headless struct {
	Enabled bool   `yaml:"enabled"`
	Hz      int    `yaml:"hz"`
	Ticks   uint64 `yaml:"ticks"`
}

type Log struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

type HUD struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the built-in configuration: a 640x360 (16:9)
// framebuffer and a 256x16 mesh.
func Default() Config {
	return Config{
		Window: Window{
			Width:  640,
			Height: 360,
			Scale:  2,
			Title:  "Trefoil",
			TPS:    60,
		},
		Mesh:     Mesh{Slices: 256, Stacks: 16},
		Headless: Headless{Hz: 60},
		Log:      Log{Level: "info", Format: "text"},
		HUD:      HUD{Enabled: true},
	}
}

// Load reads the YAML file at path over the defaults and validates the
// result. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	info, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if info.Size() > maxFileSize {
		return Config{}, fmt.Errorf("config: %s is %d bytes, max %d: %w", path, info.Size(), maxFileSize, ErrInvalid)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges the rest of the program relies on.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		bad("window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Window.Scale <= 0 {
		bad("window scale %d", c.Window.Scale)
	}
	if c.Window.TPS <= 0 {
		bad("window tps %d", c.Window.TPS)
	}
	if c.Mesh.Slices < 1 {
		bad("mesh slices %d, need at least 1", c.Mesh.Slices)
	}
	if c.Mesh.Stacks < 3 {
		bad("mesh stacks %d, need at least 3", c.Mesh.Stacks)
	}
	if c.Mesh.Slices > 0 && c.Mesh.Stacks > 0 && c.Mesh.Slices*c.Mesh.Stacks > MaxVertices {
		bad("mesh %dx%d has %d vertices, max %d", c.Mesh.Slices, c.Mesh.Stacks, c.Mesh.Slices*c.Mesh.Stacks, MaxVertices)
	}
	if c.Headless.Hz <= 0 {
		bad("headless hz %d", c.Headless.Hz)
	}
	if _, err := c.Log.level(); err != nil {
		bad("log level %q", c.Log.Level)
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" && f != "" {
		bad("log format %q", c.Log.Format)
	}
	return errors.Join(errs...)
}

func (l Log) level() (slog.Level, error) {
	var lvl slog.Level
	err := lvl.UnmarshalText([]byte(l.Level))
	return lvl, err
}

// NewLogger builds the slog logger described by l, writing to w.
func (l Log) NewLogger(w io.Writer) (*slog.Logger, error) {
	lvl, err := l.level()
	if err != nil {
		return nil, fmt.Errorf("%w: log level %q", ErrInvalid, l.Level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(l.Format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("%w: log format %q", ErrInvalid, l.Format)
}
