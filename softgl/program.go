package softgl

import (
	"fmt"

	"trefoil/vmath"
)

// MaxVaryings is the number of float32 values a vertex function can pass
// to the fragment function.
const MaxVaryings = 8

// MaxUniforms is the number of uniform slots per program.
const MaxUniforms = 16

// Varyings carries per-vertex values interpolated across a triangle.
type Varyings [MaxVaryings]float32

// VertexFunc transforms one vertex. attrs holds the program's attributes by
// location; components missing from the buffer default to (0,0,0,1). It
// returns the clip-space position.
type VertexFunc func(u *Uniforms, attrs []vmath.Vec4, out *Varyings) vmath.Vec4

// FragmentFunc shades one fragment and returns normalized RGBA.
type FragmentFunc func(u *Uniforms, in *Varyings) vmath.Vec4

// ProgramSource describes a program before linking. Attribute and uniform
// locations are their indices in Attributes and Uniforms.
type ProgramSource struct {
	Attributes []string
	Uniforms   []string
	Varyings   int

	Vertex   VertexFunc
	Fragment FragmentFunc
}

type uniformKind uint8

const (
	uniformUnset uniformKind = iota
	uniformFloat
	uniformVec3
	uniformMat3
	uniformMat4
)

type uniformValue struct {
	kind uniformKind
	v    [16]float32
}

// Uniforms is the uniform storage of a program, read by its functions.
type Uniforms struct {
	vals []uniformValue
}

func (u *Uniforms) get(loc int) *uniformValue {
	if u == nil || loc < 0 || loc >= len(u.vals) {
		return nil
	}
	return &u.vals[loc]
}

// Float returns the scalar at loc, or 0 when unset.
func (u *Uniforms) Float(loc int) float32 {
	if v := u.get(loc); v != nil {
		return v.v[0]
	}
	return 0
}

// Vec3 returns the vector at loc, or zero when unset.
func (u *Uniforms) Vec3(loc int) vmath.Vec3 {
	if v := u.get(loc); v != nil {
		return vmath.V3(v.v[0], v.v[1], v.v[2])
	}
	return vmath.Vec3{}
}

// Mat3 returns the matrix at loc, or zero when unset.
func (u *Uniforms) Mat3(loc int) vmath.Mat3 {
	var m vmath.Mat3
	if v := u.get(loc); v != nil {
		copy(m[:], v.v[:9])
	}
	return m
}

// Mat4 returns the matrix at loc, or zero when unset.
func (u *Uniforms) Mat4(loc int) vmath.Mat4 {
	var m vmath.Mat4
	if v := u.get(loc); v != nil {
		copy(m[:], v.v[:])
	}
	return m
}

type programObject struct {
	src      ProgramSource
	uniforms Uniforms
}

// CreateProgram validates and links src.
func (c *Context) CreateProgram(src ProgramSource) (Program, error) {
	if src.Vertex == nil || src.Fragment == nil {
		return 0, fmt.Errorf("link program: missing vertex or fragment function: %w", ErrInvalidValue)
	}
	if len(src.Attributes) > MaxVertexAttribs {
		return 0, fmt.Errorf("link program: %d attributes, max %d: %w", len(src.Attributes), MaxVertexAttribs, ErrInvalidValue)
	}
	if len(src.Uniforms) > MaxUniforms {
		return 0, fmt.Errorf("link program: %d uniforms, max %d: %w", len(src.Uniforms), MaxUniforms, ErrInvalidValue)
	}
	if src.Varyings < 0 || src.Varyings > MaxVaryings {
		return 0, fmt.Errorf("link program: %d varyings, max %d: %w", src.Varyings, MaxVaryings, ErrInvalidValue)
	}
	if err := uniqueNames(src.Attributes); err != nil {
		return 0, fmt.Errorf("link program attributes: %w", err)
	}
	if err := uniqueNames(src.Uniforms); err != nil {
		return 0, fmt.Errorf("link program uniforms: %w", err)
	}

	src.Attributes = append([]string(nil), src.Attributes...)
	src.Uniforms = append([]string(nil), src.Uniforms...)
	c.programs = append(c.programs, &programObject{
		src:      src,
		uniforms: Uniforms{vals: make([]uniformValue, len(src.Uniforms))},
	})
	return Program(len(c.programs)), nil
}

func uniqueNames(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" {
			return fmt.Errorf("empty name: %w", ErrInvalidValue)
		}
		if _, ok := seen[n]; ok {
			return fmt.Errorf("duplicate name %q: %w", n, ErrInvalidValue)
		}
		seen[n] = struct{}{}
	}
	return nil
}

func (c *Context) program(p Program) *programObject {
	if p == 0 || int(p) > len(c.programs) {
		return nil
	}
	return c.programs[p-1]
}

// UseProgram makes p current. Using 0 clears the current program.
func (c *Context) UseProgram(p Program) error {
	if p != 0 && c.program(p) == nil {
		return fmt.Errorf("use program %d: %w", p, ErrInvalidValue)
	}
	c.current = p
	return nil
}

// AttribLocation returns the location of the named attribute, or -1.
func (c *Context) AttribLocation(p Program, name string) int {
	return indexOf(c.program(p), name, func(o *programObject) []string { return o.src.Attributes })
}

// UniformLocation returns the location of the named uniform, or -1.
func (c *Context) UniformLocation(p Program, name string) int {
	return indexOf(c.program(p), name, func(o *programObject) []string { return o.src.Uniforms })
}

func indexOf(o *programObject, name string, names func(*programObject) []string) int {
	if o == nil {
		return -1
	}
	for i, n := range names(o) {
		if n == name {
			return i
		}
	}
	return -1
}

func (c *Context) setUniform(loc int, kind uniformKind, vals ...float32) error {
	o := c.program(c.current)
	if o == nil {
		return fmt.Errorf("set uniform %d: no current program: %w", loc, ErrInvalidOperation)
	}
	u := o.uniforms.get(loc)
	if u == nil {
		return fmt.Errorf("set uniform %d: %w", loc, ErrInvalidValue)
	}
	u.kind = kind
	copy(u.v[:], vals)
	return nil
}

func (c *Context) Uniform1f(loc int, v float32) error {
	return c.setUniform(loc, uniformFloat, v)
}

func (c *Context) Uniform3f(loc int, v vmath.Vec3) error {
	return c.setUniform(loc, uniformVec3, v.X, v.Y, v.Z)
}

func (c *Context) UniformMatrix3f(loc int, m vmath.Mat3) error {
	return c.setUniform(loc, uniformMat3, m[:]...)
}

func (c *Context) UniformMatrix4f(loc int, m vmath.Mat4) error {
	return c.setUniform(loc, uniformMat4, m[:]...)
}
