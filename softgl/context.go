package softgl

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidOperation = errors.New("softgl: invalid operation")
	ErrInvalidValue     = errors.New("softgl: invalid value")
	ErrInvalidEnum      = errors.New("softgl: invalid enum")
)

// MaxVertexAttribs is the number of attribute slots per program.
const MaxVertexAttribs = 8

// Buffer names a buffer object. The zero Buffer is "no buffer".
type Buffer uint32

// Program names a linked program. The zero Program is "no program".
type Program uint32

// BufferTarget is a buffer binding point.
type BufferTarget uint8

const (
	ArrayBuffer BufferTarget = iota + 1
	ElementArrayBuffer
)

// Capability is a switchable pipeline feature.
type Capability uint8

const (
	DepthTest Capability = iota + 1
	CullFace
)

// DepthFunc selects the depth comparison.
type DepthFunc uint8

const (
	Less DepthFunc = iota + 1
	LessEqual
	Always
)

// PolygonMode selects how triangles are rasterized.
type PolygonMode uint8

const (
	Fill PolygonMode = iota
	Line
)

// ClearMask selects the buffers cleared by Clear.
type ClearMask uint8

const (
	ColorBufferBit ClearMask = 1 << iota
	DepthBufferBit
)

type bufferObject struct {
	f32 []float32
	u16 []uint16
}

type attribPointer struct {
	enabled bool
	buf     Buffer
	size    int
	stride  int // bytes
	offset  int // bytes
}

type viewport struct {
	x, y, w, h int
}

// Context is a software graphics context bound to one Target.
//
// A Context is not safe for concurrent use.
type Context struct {
	target Target

	buffers  []*bufferObject // index = Buffer-1
	programs []*programObject

	arrayBuf Buffer
	elemBuf  Buffer
	current  Program
	attribs  [MaxVertexAttribs]attribPointer

	clearColor Color
	clearDepth float32
	depthTest  bool
	cullFace   bool
	depthFunc  DepthFunc
	polyMode   PolygonMode
	vp         viewport
	vpSet      bool

	depthBuf []float32
	verts    []vertexOut
	seen     []bool
}

// NewContext creates a context drawing into t.
func NewContext(t Target) *Context {
	return &Context{
		target:     t,
		clearColor: RGB(0, 0, 0),
		clearDepth: 1,
		depthFunc:  Less,
	}
}

// Target returns the current render target.
func (c *Context) Target() Target { return c.target }

// SetTarget replaces the render target. A viewport set earlier is kept.
func (c *Context) SetTarget(t Target) { c.target = t }

func (c *Context) Enable(f Capability) error  { return c.setCap(f, true) }
func (c *Context) Disable(f Capability) error { return c.setCap(f, false) }

func (c *Context) setCap(f Capability, on bool) error {
	switch f {
	case DepthTest:
		c.depthTest = on
	case CullFace:
		c.cullFace = on
	default:
		return fmt.Errorf("capability %d: %w", f, ErrInvalidEnum)
	}
	return nil
}

func (c *Context) DepthFunc(f DepthFunc) error {
	switch f {
	case Less, LessEqual, Always:
		c.depthFunc = f
		return nil
	}
	return fmt.Errorf("depth func %d: %w", f, ErrInvalidEnum)
}

func (c *Context) SetPolygonMode(m PolygonMode) { c.polyMode = m }
func (c *Context) PolygonMode() PolygonMode     { return c.polyMode }

// ClearColor sets the color used by Clear, channels in [0,1].
func (c *Context) ClearColor(r, g, b, a float32) { c.clearColor = ColorF(r, g, b, a) }

// ClearDepth sets the depth used by Clear, in [0,1].
func (c *Context) ClearDepth(d float32) {
	if d < 0 {
		d = 0
	}
	if d > 1 {
		d = 1
	}
	c.clearDepth = d
}

// Viewport maps NDC to the target rectangle (x, y, w, h), origin top-left.
// Without a call the viewport follows the full target size.
func (c *Context) Viewport(x, y, w, h int) error {
	if w < 0 || h < 0 {
		return fmt.Errorf("viewport %dx%d: %w", w, h, ErrInvalidValue)
	}
	c.vp = viewport{x: x, y: y, w: w, h: h}
	c.vpSet = true
	return nil
}

func (c *Context) viewport() viewport {
	if c.vpSet || c.target == nil {
		return c.vp
	}
	w, h := c.target.Size()
	return viewport{w: w, h: h}
}

// Clear clears the selected buffers of the whole target.
func (c *Context) Clear(mask ClearMask) {
	if c.target == nil {
		return
	}
	w, h := c.target.Size()
	if mask&ColorBufferBit != 0 {
		c.target.Clear(c.clearColor)
	}
	if mask&DepthBufferBit != 0 {
		c.ensureDepth(w, h)
		for i := range c.depthBuf {
			c.depthBuf[i] = c.clearDepth
		}
	}
}

func (c *Context) ensureDepth(w, h int) {
	n := w * h
	if n <= 0 {
		c.depthBuf = c.depthBuf[:0]
		return
	}
	if cap(c.depthBuf) < n {
		c.depthBuf = make([]float32, n)
		for i := range c.depthBuf {
			c.depthBuf[i] = c.clearDepth
		}
		return
	}
	c.depthBuf = c.depthBuf[:n]
}

// CreateBuffer allocates a new, empty buffer object.
func (c *Context) CreateBuffer() Buffer {
	c.buffers = append(c.buffers, &bufferObject{})
	return Buffer(len(c.buffers))
}

// DeleteBuffer frees b and unbinds it.
func (c *Context) DeleteBuffer(b Buffer) {
	if c.buffer(b) == nil {
		return
	}
	c.buffers[b-1] = nil
	if c.arrayBuf == b {
		c.arrayBuf = 0
	}
	if c.elemBuf == b {
		c.elemBuf = 0
	}
	for i := range c.attribs {
		if c.attribs[i].buf == b {
			c.attribs[i].buf = 0
		}
	}
}

func (c *Context) buffer(b Buffer) *bufferObject {
	if b == 0 || int(b) > len(c.buffers) {
		return nil
	}
	return c.buffers[b-1]
}

// BindBuffer binds b to target. Binding 0 unbinds.
func (c *Context) BindBuffer(target BufferTarget, b Buffer) error {
	if b != 0 && c.buffer(b) == nil {
		return fmt.Errorf("bind buffer %d: %w", b, ErrInvalidValue)
	}
	switch target {
	case ArrayBuffer:
		c.arrayBuf = b
	case ElementArrayBuffer:
		c.elemBuf = b
	default:
		return fmt.Errorf("buffer target %d: %w", target, ErrInvalidEnum)
	}
	return nil
}

func (c *Context) bound(target BufferTarget) (*bufferObject, error) {
	var b Buffer
	switch target {
	case ArrayBuffer:
		b = c.arrayBuf
	case ElementArrayBuffer:
		b = c.elemBuf
	default:
		return nil, fmt.Errorf("buffer target %d: %w", target, ErrInvalidEnum)
	}
	obj := c.buffer(b)
	if obj == nil {
		return nil, fmt.Errorf("no buffer bound to target %d: %w", target, ErrInvalidOperation)
	}
	return obj, nil
}

// BufferDataFloat32 copies data into the buffer bound to target.
func (c *Context) BufferDataFloat32(target BufferTarget, data []float32) error {
	obj, err := c.bound(target)
	if err != nil {
		return err
	}
	obj.f32 = append(obj.f32[:0], data...)
	obj.u16 = nil
	return nil
}

// BufferDataUint16 copies data into the buffer bound to target.
func (c *Context) BufferDataUint16(target BufferTarget, data []uint16) error {
	obj, err := c.bound(target)
	if err != nil {
		return err
	}
	obj.u16 = append(obj.u16[:0], data...)
	obj.f32 = nil
	return nil
}

func (c *Context) EnableVertexAttribArray(loc int) error {
	if loc < 0 || loc >= MaxVertexAttribs {
		return fmt.Errorf("attribute %d: %w", loc, ErrInvalidValue)
	}
	c.attribs[loc].enabled = true
	return nil
}

// VertexAttribPointer sources attribute loc from the currently bound array
// buffer: size float32 components per vertex, stride and offset in bytes.
// A zero stride means tightly packed.
func (c *Context) VertexAttribPointer(loc, size, stride, offset int) error {
	if loc < 0 || loc >= MaxVertexAttribs {
		return fmt.Errorf("attribute %d: %w", loc, ErrInvalidValue)
	}
	if size < 1 || size > 4 || stride < 0 || offset < 0 || stride%4 != 0 || offset%4 != 0 {
		return fmt.Errorf("attribute %d size=%d stride=%d offset=%d: %w", loc, size, stride, offset, ErrInvalidValue)
	}
	if c.arrayBuf == 0 {
		return fmt.Errorf("attribute %d: no array buffer bound: %w", loc, ErrInvalidOperation)
	}
	c.attribs[loc] = attribPointer{
		enabled: c.attribs[loc].enabled,
		buf:     c.arrayBuf,
		size:    size,
		stride:  stride,
		offset:  offset,
	}
	return nil
}
