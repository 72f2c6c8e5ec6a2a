package hal

import "log/slog"

// Options describes the host resources handed to an app.
type Options struct {
	Width  int
	Height int

	// Log receives every line written to HAL.Logger. Nil uses slog.Default.
	Log *slog.Logger
}

// WindowConfig controls the desktop window.
type WindowConfig struct {
	Title string
	Scale int
	TPS   int
}

const (
	DefaultWidth  = 640
	DefaultHeight = 360
)

type hostHAL struct {
	logger *SlogLogger
	fb     *hostFramebuffer
	kbd    *hostKeyboard
	t      *hostTime
}

func newHost(opts Options) *hostHAL {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	return &hostHAL{
		logger: NewLogger(opts.Log),
		fb:     newHostFramebuffer(opts.Width, opts.Height),
		kbd:    newHostKeyboard(),
		t:      newHostTime(),
	}
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) Display() Display { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Input() Input     { return hostInput{kbd: h.kbd} }
func (h *hostHAL) Time() Time       { return h.t }

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostInput struct {
	kbd *hostKeyboard
}

func (in hostInput) Keyboard() Keyboard { return in.kbd }

// SlogLogger is a Logger that emits each line as an info record.
type SlogLogger struct {
	l *slog.Logger
}

// NewLogger adapts l to Logger. Nil uses slog.Default.
func NewLogger(l *slog.Logger) *SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogLogger{l: l}
}

func (l *SlogLogger) WriteLineString(s string) { l.l.Info(s) }
func (l *SlogLogger) WriteLineBytes(b []byte)  { l.l.Info(string(b)) }
