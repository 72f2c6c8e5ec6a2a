package app

import (
	"fmt"
	"image/color"
	"strings"
	"unicode/utf8"

	"tinygo.org/x/tinyfont"

	"trefoil/hal"
)

var (
	hudTitle = color.RGBA{R: 0xE0, G: 0xE8, B: 0xFF, A: 0xFF}
	hudText  = color.RGBA{R: 0x90, G: 0xA0, B: 0xB8, A: 0xFF}
	hudBox   = color.RGBA{R: 0x10, G: 0x10, B: 0x14, A: 0xFF}
)

// hud draws the status overlay with tinyfont.
type hud struct {
	d          *fbDisplay
	font       tinyfont.Fonter
	fontHeight int16
	fontWidth  int16
}

func newHUD(fb hal.Framebuffer) *hud {
	font := &tinyfont.TomThumb
	_, outbox := tinyfont.LineWidth(font, "0")
	return &hud{
		d:          &fbDisplay{fb: fb},
		font:       font,
		fontHeight: int16(font.GetYAdvance()),
		fontWidth:  int16(outbox),
	}
}

type hudState struct {
	Theta     float32
	FPS       float64
	Paused    bool
	Wireframe bool
}

func (s hudState) lines() []string {
	status := fmt.Sprintf("theta %.2f  %.0f fps", s.Theta, s.FPS)
	if s.Paused {
		status += "  paused"
	}
	mode := "solid"
	if s.Wireframe {
		mode = "wire"
	}
	return []string{
		"Trefoil knot (" + mode + ")",
		status,
		"w wire  space pause  q/esc quit",
	}
}

func (h *hud) draw(s hudState) {
	lines := s.lines()
	width := 0
	for _, l := range lines {
		width = max(width, utf8.RuneCountInString(l))
	}
	pad := int16(3)
	_ = h.d.FillRectangle(0, 0, int16(width)*h.fontWidth+2*pad, int16(len(lines))*h.fontHeight+2*pad, hudBox)
	for i, l := range lines {
		c := hudText
		if i == 0 {
			c = hudTitle
		}
		h.writeLine(pad, pad+int16(i)*h.fontHeight, l, c)
	}
}

// writeLine draws s with its top edge at y.
func (h *hud) writeLine(x, y int16, s string, c color.RGBA) {
	tinyfont.WriteLine(h.d, h.font, x, y+h.fontHeight-1, s, c)
}

// wrap splits s into lines of at most cols runes, breaking at spaces
// when possible.
func wrap(s string, cols int) []string {
	if cols <= 0 {
		return nil
	}
	var out []string
	for _, para := range strings.Split(s, "\n") {
		for utf8.RuneCountInString(para) > cols {
			cut := runeOffset(para, cols)
			if para[cut] != ' ' {
				if i := strings.LastIndexByte(para[:cut], ' '); i > 0 {
					cut = i
				}
			}
			out = append(out, para[:cut])
			para = strings.TrimLeft(para[cut:], " ")
		}
		out = append(out, para)
	}
	return out
}

func runeOffset(s string, n int) int {
	i := 0
	for ; n > 0 && i < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i
}

// fpsMeter averages frames over windows of at least one second of
// hal.Time ticks.
type fpsMeter struct {
	start  uint64
	frames int
	fps    float64
}

func (m *fpsMeter) frame(now uint64) {
	if m.start == 0 {
		m.start = now
	}
	m.frames++
	if d := now - m.start; now > m.start && d >= 1000 {
		m.fps = float64(m.frames) * 1000 / float64(d)
		m.frames = 0
		m.start = now
	}
}
