// Package app wires the knot mesh, the software graphics context and the
// frame compositor to a hal host.
package app

import (
	"errors"
	"fmt"

	"trefoil/config"
	"trefoil/frame"
	"trefoil/hal"
	"trefoil/knot"
	"trefoil/shader"
	"trefoil/softgl"
)

var (
	ErrNoFramebuffer     = errors.New("app: no framebuffer")
	ErrUnsupportedFormat = errors.New("app: unsupported pixel format")
)

type App struct {
	h   hal.HAL
	cfg config.Config
	log hal.Logger

	fb     hal.Framebuffer
	gl     *softgl.Context
	comp   *frame.Compositor
	hud    *hud
	keys   <-chan hal.KeyEvent
	ticks  <-chan uint64
	now    uint64
	fps    fpsMeter
	frames uint64
	paused bool
}

// New builds the mesh, links the program and uploads the buffers. It
// returns the per-frame step. On failure the framebuffer shows the error
// and the error is returned.
func New(h hal.HAL, cfg config.Config) (func() error, error) {
	a, err := newApp(h, cfg)
	if err != nil {
		fail(h, err)
		return nil, err
	}
	return a.Step, nil
}

func newApp(h hal.HAL, cfg config.Config) (*App, error) {
	a := &App{h: h, cfg: cfg, log: h.Logger()}

	disp := h.Display()
	if disp == nil || disp.Framebuffer() == nil {
		return nil, ErrNoFramebuffer
	}
	a.fb = disp.Framebuffer()
	if a.fb.Format() != hal.PixelFormatRGB565 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFormat, a.fb.Format())
	}

	target := &softgl.RGB565Target{
		Buf:    a.fb.Buffer(),
		Stride: a.fb.StrideBytes(),
		W:      a.fb.Width(),
		H:      a.fb.Height(),
	}
	a.gl = softgl.NewContext(target)

	mesh := knot.NewMesh(cfg.Mesh.Slices, cfg.Mesh.Stacks)
	a.logf("mesh built: %dx%d, %d vertices, %d indices", mesh.Slices, mesh.Stacks, mesh.VertexCount(), mesh.IndexCount())

	prog, err := a.gl.CreateProgram(shader.Phong(frame.DefaultNames))
	if err != nil {
		return nil, fmt.Errorf("link phong program: %w", err)
	}
	res, err := frame.Upload(a.gl, mesh, prog)
	if err != nil {
		return nil, fmt.Errorf("upload mesh: %w", err)
	}
	a.logf("program %d linked, buffers %d/%d uploaded", res.Program, res.Vertices, res.Indices)

	a.comp = frame.NewCompositor(a.gl, res)
	if cfg.HUD.Enabled {
		a.hud = newHUD(a.fb)
	}
	if in := h.Input(); in != nil && in.Keyboard() != nil {
		a.keys = in.Keyboard().Events()
	}
	if t := h.Time(); t != nil {
		a.ticks = t.Ticks()
	}
	return a, nil
}

func (a *App) logf(format string, args ...any) {
	if a.log != nil {
		a.log.WriteLineString(fmt.Sprintf(format, args...))
	}
}

// Step handles pending input and renders one frame. It returns
// hal.ErrQuit when the user asks to leave.
func (a *App) Step() error {
	if err := a.handleInput(); err != nil {
		return err
	}
	a.drainTicks()

	aspect := float32(a.fb.Width()) / float32(a.fb.Height())
	var err error
	if a.paused {
		err = a.comp.Draw()
	} else {
		err = a.comp.Tick(aspect)
	}
	if err != nil {
		return fmt.Errorf("frame %d: %w", a.frames, err)
	}

	a.fps.frame(a.now)
	if a.hud != nil {
		a.hud.draw(hudState{
			Theta:     a.comp.Theta(),
			FPS:       a.fps.fps,
			Paused:    a.paused,
			Wireframe: a.gl.PolygonMode() == softgl.Line,
		})
	}
	if err := a.fb.Present(); err != nil {
		return fmt.Errorf("present: %w", err)
	}

	if a.frames == 0 {
		a.logf("first frame presented")
	}
	a.frames++
	return nil
}

func (a *App) handleInput() error {
	if a.keys == nil {
		return nil
	}
	for {
		select {
		case ev := <-a.keys:
			if !ev.Press {
				continue
			}
			switch {
			case ev.Code == hal.KeyEscape, ev.Rune == 'q':
				a.logf("quit after %d frames", a.frames)
				return hal.ErrQuit
			case ev.Rune == 'w':
				if a.gl.PolygonMode() == softgl.Line {
					a.gl.SetPolygonMode(softgl.Fill)
				} else {
					a.gl.SetPolygonMode(softgl.Line)
				}
			case ev.Rune == ' ':
				a.paused = !a.paused
			}
		default:
			return nil
		}
	}
}

func (a *App) drainTicks() {
	if a.ticks == nil {
		return
	}
	for {
		select {
		case seq := <-a.ticks:
			a.now = seq
		default:
			return
		}
	}
}
