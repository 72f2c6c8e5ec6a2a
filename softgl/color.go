package softgl

import "trefoil/vmath"

// Color is an RGBA color in 8-bit channels.
type Color struct {
	R, G, B, A uint8
}

func RGB(r, g, b uint8) Color     { return Color{R: r, G: g, B: b, A: 0xFF} }
func RGBA(r, g, b, a uint8) Color { return Color{R: r, G: g, B: b, A: a} }

// ColorF converts normalized channels to a Color, clamping to [0,1].
func ColorF(r, g, b, a float32) Color {
	return Color{R: unorm8(r), G: unorm8(g), B: unorm8(b), A: unorm8(a)}
}

// ColorFromVec4 converts a normalized RGBA vector to a Color.
func ColorFromVec4(v vmath.Vec4) Color { return ColorF(v.X, v.Y, v.Z, v.W) }

func unorm8(v float32) uint8 {
	if v != v {
		return 0
	}
	return uint8(vmath.Clamp01(v)*255 + 0.5)
}
