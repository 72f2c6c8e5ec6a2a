// Package frame drives the per-frame transform state of the knot and
// submits it to a graphics device: rotation, model-view and normal
// matrices, orthographic projection and the indexed draw.
package frame

import (
	"fmt"

	"trefoil/knot"
	"trefoil/softgl"
	"trefoil/vmath"
)

const (
	// ThetaStep is the rotation added per tick, in radians.
	ThetaStep = 0.015

	// ViewWidth is the horizontal half-extent of the view volume.
	ViewWidth = 2.0

	Near = 4.0
	Far  = 10.0

	// Distance is how far the mesh sits in front of the eye.
	Distance = 7.0
)

// ClearColor is the background painted before each draw.
var ClearColor = vmath.Vec4{X: 0.2, Y: 0.2, Z: 0.2, W: 1}

// Device is the part of a graphics context one draw needs.
type Device interface {
	ClearColor(r, g, b, a float32)
	ClearDepth(d float32)
	Clear(mask softgl.ClearMask)
	Enable(f softgl.Capability) error
	DepthFunc(f softgl.DepthFunc) error

	UseProgram(p softgl.Program) error
	BindBuffer(target softgl.BufferTarget, b softgl.Buffer) error
	VertexAttribPointer(loc, size, stride, offset int) error
	EnableVertexAttribArray(loc int) error

	Uniform1f(loc int, v float32) error
	Uniform3f(loc int, v vmath.Vec3) error
	UniformMatrix3f(loc int, m vmath.Mat3) error
	UniformMatrix4f(loc int, m vmath.Mat4) error

	DrawElements(mode softgl.Primitive, count int, typ softgl.IndexType, offset int) error
}

var (
	_ Device   = (*softgl.Context)(nil)
	_ Uploader = (*softgl.Context)(nil)
)

// State is the transform state derived on each tick.
type State struct {
	Theta        float32
	ModelView    vmath.Mat4
	NormalMatrix vmath.Mat3
	Projection   vmath.Mat4
}

// Option configures a Compositor.
type Option func(*Compositor)

// WithMaterial replaces DefaultMaterial.
func WithMaterial(m Material) Option {
	return func(c *Compositor) { c.material = m }
}

// WithLightPosition replaces LightPosition.
func WithLightPosition(p vmath.Vec3) Option {
	return func(c *Compositor) { c.light = p }
}

// WithTheta sets the starting angle.
func WithTheta(theta float32) Option {
	return func(c *Compositor) { c.state.Theta = theta }
}

// Compositor owns the animated transform of one mesh and submits its draw.
type Compositor struct {
	dev      Device
	res      Resources
	material Material
	light    vmath.Vec3
	state    State
}

func NewCompositor(dev Device, res Resources, opts ...Option) *Compositor {
	c := &Compositor{
		dev:      dev,
		res:      res,
		material: DefaultMaterial,
		light:    LightPosition,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.derive(1)
	return c
}

func (c *Compositor) State() State              { return c.state }
func (c *Compositor) Theta() float32            { return c.state.Theta }
func (c *Compositor) Resources() Resources      { return c.res }
func (c *Compositor) Material() Material        { return c.material }
func (c *Compositor) LightPosition() vmath.Vec3 { return c.light }

// Tick advances the animation by one step and draws the frame.
func (c *Compositor) Tick(aspect float32) error {
	c.Advance(aspect)
	return c.Draw()
}

// Advance steps theta and recomputes the matrices for aspect
// (width/height). A non-positive aspect is treated as 1.
func (c *Compositor) Advance(aspect float32) {
	c.state.Theta += ThetaStep
	c.derive(aspect)
}

func (c *Compositor) derive(aspect float32) {
	if !(aspect > 0) {
		aspect = 1
	}
	s := &c.state
	s.ModelView = vmath.Mat4Mul(
		vmath.Mat4Translate(vmath.V3(0, 0, -Distance)),
		vmath.Mat4RotateY(s.Theta),
	)
	// Rigid transform only, so the upper 3x3 is its own inverse transpose.
	s.NormalMatrix = vmath.Mat3FromMat4(s.ModelView)
	half := float32(ViewWidth) / aspect
	s.Projection = vmath.Mat4Ortho(-ViewWidth, ViewWidth, -half, half, Near, Far)
}

// Draw clears the target and issues the indexed draw with the current state.
func (c *Compositor) Draw() error {
	d, r, s := c.dev, c.res, c.state
	var b binder

	d.ClearColor(ClearColor.X, ClearColor.Y, ClearColor.Z, ClearColor.W)
	d.ClearDepth(1)
	b.do("enable depth test", d.Enable(softgl.DepthTest))
	b.do("depth func", d.DepthFunc(softgl.LessEqual))
	d.Clear(softgl.ColorBufferBit | softgl.DepthBufferBit)

	b.do("use program", d.UseProgram(r.Program))
	b.do("bind vertices", d.BindBuffer(softgl.ArrayBuffer, r.Vertices))
	b.do("position attribute", d.VertexAttribPointer(r.Loc.Position, 3, knot.VertexStride, knot.PositionOffset))
	b.do("enable position", d.EnableVertexAttribArray(r.Loc.Position))
	b.do("normal attribute", d.VertexAttribPointer(r.Loc.Normal, 3, knot.VertexStride, knot.NormalOffset))
	b.do("enable normal", d.EnableVertexAttribArray(r.Loc.Normal))
	b.do("bind indices", d.BindBuffer(softgl.ElementArrayBuffer, r.Indices))

	b.do("projection", d.UniformMatrix4f(r.Loc.Projection, s.Projection))
	b.do("model view", d.UniformMatrix4f(r.Loc.ModelView, s.ModelView))
	b.do("normal matrix", d.UniformMatrix3f(r.Loc.NormalMatrix, s.NormalMatrix))
	b.do("light position", d.Uniform3f(r.Loc.LightPosition, c.light))
	b.do("ambient", d.Uniform3f(r.Loc.Ambient, c.material.Ambient))
	b.do("diffuse", d.Uniform3f(r.Loc.Diffuse, c.material.Diffuse))
	b.do("specular", d.Uniform3f(r.Loc.Specular, c.material.Specular))
	b.do("shininess", d.Uniform1f(r.Loc.Shininess, c.material.Shininess))
	if b.err != nil {
		return b.err
	}

	if err := d.DrawElements(softgl.Triangles, r.IndexCount, softgl.UnsignedShort, 0); err != nil {
		return fmt.Errorf("frame: draw %d indices: %w", r.IndexCount, err)
	}
	return nil
}

// binder keeps the first failure of a run of state calls.
type binder struct{ err error }

func (b *binder) do(what string, err error) {
	if b.err == nil && err != nil {
		b.err = fmt.Errorf("frame: %s: %w", what, err)
	}
}
