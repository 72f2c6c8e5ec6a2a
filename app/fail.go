package app

import (
	"image/color"

	"trefoil/hal"
)

var failText = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

// fail reports an initialization error: it logs err, paints the
// framebuffer red and writes the message on it.
func fail(h hal.HAL, err error) {
	if l := h.Logger(); l != nil {
		l.WriteLineString("init failed: " + err.Error())
	}

	disp := h.Display()
	if disp == nil {
		return
	}
	fb := disp.Framebuffer()
	if fb == nil || fb.Format() != hal.PixelFormatRGB565 {
		return
	}

	fb.ClearRGB(0xFF, 0, 0)
	hd := newHUD(fb)
	if hd.fontWidth > 0 && hd.fontHeight > 0 {
		cols := (fb.Width() - 8) / int(hd.fontWidth)
		y := int16(4)
		for _, line := range wrap("Trefoil failed to start:\n"+err.Error(), cols) {
			if int(y+hd.fontHeight) > fb.Height() {
				break
			}
			hd.writeLine(4, y, line, failText)
			y += hd.fontHeight
		}
	}
	_ = fb.Present()
}
