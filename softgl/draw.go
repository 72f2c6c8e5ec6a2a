package softgl

import (
	"fmt"
	"math"

	"trefoil/vmath"
)

// Primitive selects how indices are assembled.
type Primitive uint8

const (
	Triangles Primitive = iota + 1
)

// IndexType is the element type of the element array buffer.
type IndexType uint8

const (
	UnsignedShort IndexType = iota + 1
)

type vertexOut struct {
	sx, sy float32 // window coordinates, origin top-left
	z      float32 // window depth in [0,1]
	ok     bool
	vary   Varyings
}

type attribSource struct {
	data   []float32
	size   int
	stride int // floats
	offset int // floats
}

// DrawElements draws count indices from the bound element array buffer,
// starting offset bytes into it, with the current program.
func (c *Context) DrawElements(mode Primitive, count int, typ IndexType, offset int) error {
	if mode != Triangles {
		return fmt.Errorf("draw mode %d: %w", mode, ErrInvalidEnum)
	}
	if typ != UnsignedShort {
		return fmt.Errorf("index type %d: %w", typ, ErrInvalidEnum)
	}
	if count < 0 || offset < 0 || offset%2 != 0 {
		return fmt.Errorf("draw count=%d offset=%d: %w", count, offset, ErrInvalidValue)
	}
	prog := c.program(c.current)
	if prog == nil {
		return fmt.Errorf("draw: no current program: %w", ErrInvalidOperation)
	}
	if c.target == nil {
		return fmt.Errorf("draw: no target: %w", ErrInvalidOperation)
	}
	elem, err := c.bound(ElementArrayBuffer)
	if err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	first := offset / 2
	if first+count > len(elem.u16) {
		return fmt.Errorf("draw: %d indices from %d exceed buffer of %d: %w", count, first, len(elem.u16), ErrInvalidOperation)
	}
	indices := elem.u16[first : first+count]

	maxIndex := -1
	for _, i := range indices {
		if int(i) > maxIndex {
			maxIndex = int(i)
		}
	}
	if maxIndex < 0 {
		return nil
	}

	srcs, err := c.attribSources(prog, maxIndex)
	if err != nil {
		return fmt.Errorf("draw: %w", err)
	}

	w, h := c.target.Size()
	if w <= 0 || h <= 0 {
		return nil
	}
	if c.depthTest {
		c.ensureDepth(w, h)
	}

	if cap(c.verts) < maxIndex+1 {
		c.verts = make([]vertexOut, maxIndex+1)
		c.seen = make([]bool, maxIndex+1)
	}
	c.verts = c.verts[:maxIndex+1]
	c.seen = c.seen[:maxIndex+1]
	for i := range c.seen {
		c.seen[i] = false
	}

	vp := c.viewport()
	attrs := make([]vmath.Vec4, len(srcs))
	vertex := func(i int) *vertexOut {
		if !c.seen[i] {
			c.seen[i] = true
			fetch(srcs, i, attrs)
			c.verts[i] = runVertex(prog, attrs, vp)
		}
		return &c.verts[i]
	}

	for k := 0; k+2 < len(indices); k += 3 {
		v0 := vertex(int(indices[k]))
		v1 := vertex(int(indices[k+1]))
		v2 := vertex(int(indices[k+2]))
		if !v0.ok || !v1.ok || !v2.ok {
			continue
		}
		if c.polyMode == Line {
			c.strokeTriangle(prog, w, h, v0, v1, v2)
			continue
		}
		c.fillTriangle(prog, w, h, vp, v0, v1, v2)
	}
	return nil
}

func (c *Context) attribSources(prog *programObject, maxIndex int) ([]attribSource, error) {
	srcs := make([]attribSource, len(prog.src.Attributes))
	for loc := range srcs {
		ap := c.attribs[loc]
		if !ap.enabled {
			continue
		}
		obj := c.buffer(ap.buf)
		if obj == nil {
			return nil, fmt.Errorf("attribute %q has no buffer: %w", prog.src.Attributes[loc], ErrInvalidOperation)
		}
		stride := ap.stride / 4
		if stride == 0 {
			stride = ap.size
		}
		src := attribSource{data: obj.f32, size: ap.size, stride: stride, offset: ap.offset / 4}
		if end := src.offset + maxIndex*src.stride + src.size; end > len(src.data) {
			return nil, fmt.Errorf("attribute %q reads %d floats from buffer of %d: %w", prog.src.Attributes[loc], end, len(src.data), ErrInvalidOperation)
		}
		srcs[loc] = src
	}
	return srcs, nil
}

func fetch(srcs []attribSource, i int, out []vmath.Vec4) {
	for loc, s := range srcs {
		v := [4]float32{0, 0, 0, 1}
		if s.data != nil {
			base := s.offset + i*s.stride
			copy(v[:s.size], s.data[base:base+s.size])
		}
		out[loc] = vmath.Vec4{X: v[0], Y: v[1], Z: v[2], W: v[3]}
	}
}

func runVertex(prog *programObject, attrs []vmath.Vec4, vp viewport) vertexOut {
	var out vertexOut
	clip := prog.src.Vertex(&prog.uniforms, attrs, &out.vary)
	if !(clip.W > 0) {
		return out
	}
	inv := 1 / clip.W
	x, y, z := clip.X*inv, clip.Y*inv, clip.Z*inv
	// Trivial clip: primitives touching anything outside the depth range
	// are dropped.
	if z < -1 || z > 1 || math.IsNaN(float64(x)) || math.IsNaN(float64(y)) {
		return out
	}
	out.sx = float32(vp.x) + (x*0.5+0.5)*float32(vp.w)
	out.sy = float32(vp.y) + (0.5-y*0.5)*float32(vp.h)
	out.z = z*0.5 + 0.5
	out.ok = true
	return out
}
