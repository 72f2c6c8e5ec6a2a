package app

import (
	"errors"
	"math"
	"strings"
	"testing"

	"trefoil/config"
	"trefoil/hal"
	"trefoil/softgl"
)

type testFB struct {
	w, h     int
	format   hal.PixelFormat
	buf      []byte
	presents int
}

func newTestFB(w, h int) *testFB {
	return &testFB{w: w, h: h, format: hal.PixelFormatRGB565, buf: make([]byte, w*h*2)}
}

func (f *testFB) Width() int              { return f.w }
func (f *testFB) Height() int             { return f.h }
func (f *testFB) Format() hal.PixelFormat { return f.format }
func (f *testFB) StrideBytes() int        { return f.w * 2 }
func (f *testFB) Buffer() []byte          { return f.buf }
func (f *testFB) Present() error          { f.presents++; return nil }
func (f *testFB) ClearRGB(r, g, b uint8) {
	p := rgb565From888(r, g, b)
	for i := 0; i+1 < len(f.buf); i += 2 {
		f.buf[i], f.buf[i+1] = byte(p), byte(p>>8)
	}
}

func (f *testFB) pixel(x, y int) uint16 {
	off := y*f.StrideBytes() + x*2
	return uint16(f.buf[off]) | uint16(f.buf[off+1])<<8
}

type testLog struct{ lines []string }

func (l *testLog) WriteLineString(s string) { l.lines = append(l.lines, s) }
func (l *testLog) WriteLineBytes(b []byte)  { l.lines = append(l.lines, string(b)) }

type testHAL struct {
	fb    *testFB
	log   *testLog
	keys  chan hal.KeyEvent
	ticks chan uint64
}

func newTestHAL(w, h int) *testHAL {
	return &testHAL{
		fb:    newTestFB(w, h),
		log:   &testLog{},
		keys:  make(chan hal.KeyEvent, 8),
		ticks: make(chan uint64, 8),
	}
}

func (h *testHAL) Logger() hal.Logger   { return h.log }
func (h *testHAL) Display() hal.Display { return h }
func (h *testHAL) Input() hal.Input     { return h }
func (h *testHAL) Time() hal.Time       { return h }

func (h *testHAL) Framebuffer() hal.Framebuffer { return h.fb }
func (h *testHAL) Keyboard() hal.Keyboard       { return h }
func (h *testHAL) Events() <-chan hal.KeyEvent  { return h.keys }
func (h *testHAL) Ticks() <-chan uint64         { return h.ticks }

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Window.Width, cfg.Window.Height = 64, 36
	cfg.Mesh.Slices, cfg.Mesh.Stacks = 64, 6
	cfg.HUD.Enabled = false
	return cfg
}

func TestStepRendersAndAdvances(t *testing.T) {
	h := newTestHAL(64, 36)
	a, err := newApp(h, testConfig())
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := a.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if got := a.comp.Theta(); math.Abs(float64(got)-0.045) > 1e-6 {
		t.Fatalf("theta = %v, want 0.045", got)
	}
	if h.fb.presents != 3 {
		t.Fatalf("presents = %d, want 3", h.fb.presents)
	}

	bg := softgl.RGB565(51, 51, 51)
	if got := h.fb.pixel(0, 0); got != bg {
		t.Fatalf("corner = %#04x, want background %#04x", got, bg)
	}
	covered := 0
	for y := 0; y < 36; y++ {
		for x := 0; x < 64; x++ {
			if h.fb.pixel(x, y) != bg {
				covered++
			}
		}
	}
	if covered == 0 {
		t.Fatal("knot not drawn")
	}

	var sawMesh, sawFirst bool
	for _, l := range h.log.lines {
		sawMesh = sawMesh || strings.HasPrefix(l, "mesh built: 64x6")
		sawFirst = sawFirst || l == "first frame presented"
	}
	if !sawMesh || !sawFirst {
		t.Fatalf("log lines = %q", h.log.lines)
	}
}

func TestKeys(t *testing.T) {
	h := newTestHAL(64, 36)
	a, err := newApp(h, testConfig())
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}

	h.keys <- hal.KeyEvent{Press: true, Rune: 'w'}
	if err := a.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if a.gl.PolygonMode() != softgl.Line {
		t.Fatal("w did not switch to wireframe")
	}

	h.keys <- hal.KeyEvent{Press: true, Rune: ' '}
	if err := a.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	theta := a.comp.Theta()
	if err := a.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if a.comp.Theta() != theta {
		t.Fatal("theta advanced while paused")
	}

	h.keys <- hal.KeyEvent{Press: false, Rune: 'q'}
	if err := a.Step(); err != nil {
		t.Fatalf("key release should be ignored: %v", err)
	}
	h.keys <- hal.KeyEvent{Press: true, Code: hal.KeyEscape}
	if err := a.Step(); !errors.Is(err, hal.ErrQuit) {
		t.Fatalf("got %v, want ErrQuit", err)
	}
}

func TestHUDDrawsOverFrame(t *testing.T) {
	h := newTestHAL(160, 90)
	cfg := testConfig()
	cfg.HUD.Enabled = true
	a, err := newApp(h, cfg)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	h.ticks <- 1
	if err := a.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if a.now != 1 {
		t.Fatalf("tick not consumed: now = %d", a.now)
	}
	if got, want := h.fb.pixel(1, 1), rgb565From888(hudBox.R, hudBox.G, hudBox.B); got != want {
		t.Fatalf("hud box pixel = %#04x, want %#04x", got, want)
	}
}

func TestNewFailurePaintsRed(t *testing.T) {
	h := newTestHAL(64, 36)
	h.fb.format = 0

	if _, err := New(h, testConfig()); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("got %v, want ErrUnsupportedFormat", err)
	}
	if len(h.log.lines) == 0 || !strings.HasPrefix(h.log.lines[0], "init failed:") {
		t.Fatalf("log lines = %q", h.log.lines)
	}

	h = newTestHAL(64, 36)
	fail(h, errors.New("no context"))
	red := rgb565From888(0xFF, 0, 0)
	if got := h.fb.pixel(63, 35); got != red {
		t.Fatalf("background = %#04x, want red", got)
	}
	if h.fb.presents != 1 {
		t.Fatalf("presents = %d, want 1", h.fb.presents)
	}
}

func TestWrap(t *testing.T) {
	got := wrap("upload mesh: missing uShininess\nok", 12)
	want := []string{"upload mesh:", "missing", "uShininess", "ok"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("wrap = %q, want %q", got, want)
	}
}

func TestFPSMeter(t *testing.T) {
	var m fpsMeter
	for now := uint64(1); now <= 1001; now += 20 {
		m.frame(now)
	}
	if math.Abs(m.fps-51) > 1e-9 {
		t.Fatalf("fps = %v, want 51", m.fps)
	}
}
