package softgl

import (
	"errors"
	"testing"

	"trefoil/vmath"
)

// flatSource passes positions through and paints the per-vertex color.
func flatSource() ProgramSource {
	return ProgramSource{
		Attributes: []string{"aPos", "aColor"},
		Uniforms:   []string{"uTint"},
		Varyings:   3,
		Vertex: func(u *Uniforms, attrs []vmath.Vec4, out *Varyings) vmath.Vec4 {
			out[0], out[1], out[2] = attrs[1].X, attrs[1].Y, attrs[1].Z
			return attrs[0]
		},
		Fragment: func(u *Uniforms, in *Varyings) vmath.Vec4 {
			return vmath.Vec4{X: in[0], Y: in[1], Z: in[2], W: 1}
		},
	}
}

type quad struct {
	z     float32
	color vmath.Vec3
}

// setup uploads one full-screen quad per entry, 6 floats per vertex.
func setup(t *testing.T, w, h int, quads ...quad) (*Context, *ImageTarget) {
	t.Helper()
	target := NewImageTarget(w, h)
	c := NewContext(target)

	prog, err := c.CreateProgram(flatSource())
	if err != nil {
		t.Fatalf("CreateProgram: %v", err)
	}
	if err := c.UseProgram(prog); err != nil {
		t.Fatalf("UseProgram: %v", err)
	}

	var verts []float32
	var idx []uint16
	for i, q := range quads {
		base := uint16(i * 4)
		for _, p := range [][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			verts = append(verts, p[0], p[1], q.z, q.color.X, q.color.Y, q.color.Z)
		}
		idx = append(idx, base, base+1, base+2, base, base+2, base+3)
	}

	vb := c.CreateBuffer()
	ib := c.CreateBuffer()
	mustOK(t, c.BindBuffer(ArrayBuffer, vb))
	mustOK(t, c.BufferDataFloat32(ArrayBuffer, verts))
	mustOK(t, c.BindBuffer(ElementArrayBuffer, ib))
	mustOK(t, c.BufferDataUint16(ElementArrayBuffer, idx))
	mustOK(t, c.VertexAttribPointer(0, 3, 24, 0))
	mustOK(t, c.VertexAttribPointer(1, 3, 24, 12))
	mustOK(t, c.EnableVertexAttribArray(0))
	mustOK(t, c.EnableVertexAttribArray(1))
	return c, target
}

func mustOK(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func pixelAt(target *ImageTarget, x, y int) Color {
	off := target.Img.PixOffset(x, y)
	p := target.Img.Pix[off : off+4]
	return Color{R: p[0], G: p[1], B: p[2], A: p[3]}
}

func TestDrawFullScreenQuad(t *testing.T) {
	c, target := setup(t, 8, 6, quad{z: 0, color: vmath.V3(1, 0, 0)})
	c.ClearColor(0, 0, 1, 1)
	c.Clear(ColorBufferBit)
	mustOK(t, c.DrawElements(Triangles, 6, UnsignedShort, 0))

	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			if got := pixelAt(target, x, y); got != RGB(255, 0, 0) {
				t.Fatalf("pixel (%d,%d) = %+v, want red", x, y, got)
			}
		}
	}
}

func TestDepthTestKeepsNearest(t *testing.T) {
	near := quad{z: -0.5, color: vmath.V3(1, 0, 0)}
	far := quad{z: 0.5, color: vmath.V3(0, 1, 0)}

	c, target := setup(t, 4, 4, near, far)
	mustOK(t, c.Enable(DepthTest))
	mustOK(t, c.DepthFunc(LessEqual))
	c.ClearDepth(1)
	c.Clear(ColorBufferBit | DepthBufferBit)
	mustOK(t, c.DrawElements(Triangles, 12, UnsignedShort, 0))
	if got := pixelAt(target, 1, 1); got != RGB(255, 0, 0) {
		t.Fatalf("with depth test got %+v, want near quad (red)", got)
	}

	mustOK(t, c.Disable(DepthTest))
	c.Clear(ColorBufferBit | DepthBufferBit)
	mustOK(t, c.DrawElements(Triangles, 12, UnsignedShort, 0))
	if got := pixelAt(target, 1, 1); got != RGB(0, 255, 0) {
		t.Fatalf("without depth test got %+v, want last quad (green)", got)
	}
}

func TestDrawElementsOffset(t *testing.T) {
	c, target := setup(t, 4, 4,
		quad{z: 0, color: vmath.V3(1, 0, 0)},
		quad{z: 0, color: vmath.V3(0, 0, 1)},
	)
	c.Clear(ColorBufferBit)
	// Skip the first quad: 6 indices * 2 bytes.
	mustOK(t, c.DrawElements(Triangles, 6, UnsignedShort, 12))
	if got := pixelAt(target, 2, 2); got != RGB(0, 0, 255) {
		t.Fatalf("got %+v, want second quad (blue)", got)
	}
}

func TestCullFaceDropsClockwise(t *testing.T) {
	c, target := setup(t, 4, 4, quad{z: 0, color: vmath.V3(1, 1, 1)})
	// Reverse the winding of both triangles.
	mustOK(t, c.BufferDataUint16(ElementArrayBuffer, []uint16{0, 2, 1, 0, 3, 2}))
	mustOK(t, c.Enable(CullFace))
	c.ClearColor(0, 0, 0, 1)
	c.Clear(ColorBufferBit)
	mustOK(t, c.DrawElements(Triangles, 6, UnsignedShort, 0))
	if got := pixelAt(target, 1, 1); got != RGB(0, 0, 0) {
		t.Fatalf("got %+v, want culled (black)", got)
	}
}

func TestLineModeLeavesInteriorClear(t *testing.T) {
	c, target := setup(t, 16, 16, quad{z: 0, color: vmath.V3(1, 1, 1)})
	c.SetPolygonMode(Line)
	c.ClearColor(0, 0, 0, 1)
	c.Clear(ColorBufferBit)
	mustOK(t, c.DrawElements(Triangles, 6, UnsignedShort, 0))

	if got := pixelAt(target, 0, 15); got != RGB(255, 255, 255) {
		t.Fatalf("corner pixel = %+v, want edge color", got)
	}
	if got := pixelAt(target, 12, 8); got != RGB(0, 0, 0) {
		t.Fatalf("interior pixel = %+v, want clear color", got)
	}
}

func TestDrawErrors(t *testing.T) {
	c, _ := setup(t, 4, 4, quad{z: 0, color: vmath.V3(1, 1, 1)})

	if err := c.DrawElements(Triangles, 12, UnsignedShort, 0); !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("too many indices: got %v, want ErrInvalidOperation", err)
	}
	if err := c.DrawElements(Triangles, 3, UnsignedShort, 1); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("odd offset: got %v, want ErrInvalidValue", err)
	}
	if err := c.DrawElements(Primitive(9), 3, UnsignedShort, 0); !errors.Is(err, ErrInvalidEnum) {
		t.Fatalf("bad mode: got %v, want ErrInvalidEnum", err)
	}

	mustOK(t, c.BufferDataUint16(ElementArrayBuffer, []uint16{0, 1, 9}))
	if err := c.DrawElements(Triangles, 3, UnsignedShort, 0); !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("index past vertex data: got %v, want ErrInvalidOperation", err)
	}

	mustOK(t, c.UseProgram(0))
	if err := c.DrawElements(Triangles, 3, UnsignedShort, 0); !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("no program: got %v, want ErrInvalidOperation", err)
	}
	if err := c.Uniform1f(0, 1); !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("uniform without program: got %v, want ErrInvalidOperation", err)
	}
}

func TestProgramLinking(t *testing.T) {
	c := NewContext(NewImageTarget(1, 1))

	src := flatSource()
	src.Attributes = []string{"aPos", "aPos"}
	if _, err := c.CreateProgram(src); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("duplicate attribute: got %v, want ErrInvalidValue", err)
	}

	src = flatSource()
	src.Fragment = nil
	if _, err := c.CreateProgram(src); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("missing fragment: got %v, want ErrInvalidValue", err)
	}

	p, err := c.CreateProgram(flatSource())
	mustOK(t, err)
	if got := c.AttribLocation(p, "aColor"); got != 1 {
		t.Fatalf("AttribLocation(aColor) = %d, want 1", got)
	}
	if got := c.UniformLocation(p, "uTint"); got != 0 {
		t.Fatalf("UniformLocation(uTint) = %d, want 0", got)
	}
	if got := c.UniformLocation(p, "uMissing"); got != -1 {
		t.Fatalf("UniformLocation(uMissing) = %d, want -1", got)
	}
	if got := c.AttribLocation(Program(42), "aPos"); got != -1 {
		t.Fatalf("AttribLocation on unknown program = %d, want -1", got)
	}
}

func TestUniformStorage(t *testing.T) {
	c := NewContext(NewImageTarget(1, 1))
	src := flatSource()
	src.Uniforms = []string{"uF", "uV", "uM3", "uM4"}
	p, err := c.CreateProgram(src)
	mustOK(t, err)
	mustOK(t, c.UseProgram(p))

	m4 := vmath.Mat4Translate(vmath.V3(1, 2, 3))
	m3 := vmath.Mat3FromMat4(vmath.Mat4RotateY(0.5))
	mustOK(t, c.Uniform1f(0, 2.5))
	mustOK(t, c.Uniform3f(1, vmath.V3(1, 2, 3)))
	mustOK(t, c.UniformMatrix3f(2, m3))
	mustOK(t, c.UniformMatrix4f(3, m4))
	if err := c.Uniform1f(4, 0); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("out of range uniform: got %v, want ErrInvalidValue", err)
	}

	u := &c.program(p).uniforms
	if u.Float(0) != 2.5 || u.Vec3(1) != vmath.V3(1, 2, 3) || u.Mat3(2) != m3 || u.Mat4(3) != m4 {
		t.Fatal("uniform values not stored as set")
	}
}

func TestRGB565Target(t *testing.T) {
	target := &RGB565Target{Buf: make([]byte, 4*2*2), Stride: 8, W: 4, H: 2}
	target.Clear(RGB(0xFF, 0, 0))
	if target.Buf[0] != 0x00 || target.Buf[1] != 0xF8 {
		t.Fatalf("clear wrote % x, want 00 f8", target.Buf[:2])
	}
	target.SetPixel(3, 1, RGB(0, 0, 0xFF))
	if target.Buf[14] != 0x1F || target.Buf[15] != 0x00 {
		t.Fatalf("set pixel wrote % x, want 1f 00", target.Buf[14:16])
	}
	target.SetPixel(4, 0, RGB(0, 0, 0)) // clipped
}
