package frame

import (
	"errors"
	"fmt"

	"trefoil/knot"
	"trefoil/softgl"
	"trefoil/vmath"
)

// ErrMissingLocation is returned when a program lacks a required
// attribute or uniform.
var ErrMissingLocation = errors.New("frame: missing program location")

// Names maps each program input to its symbolic name.
type Names struct {
	Position string
	Normal   string

	Projection    string
	ModelView     string
	NormalMatrix  string
	LightPosition string
	Ambient       string
	Diffuse       string
	Specular      string
	Shininess     string
}

// DefaultNames is the fixed name table the Phong program is linked with.
var DefaultNames = Names{
	Position: "aVertexPosition",
	Normal:   "aVertexNormal",

	Projection:    "uProjectionMatrix",
	ModelView:     "uModelViewMatrix",
	NormalMatrix:  "uNormalMatrix",
	LightPosition: "uLightPosition",
	Ambient:       "uAmbientColor",
	Diffuse:       "uDiffuseColor",
	Specular:      "uSpecularColor",
	Shininess:     "uShininess",
}

// Attributes lists attribute names in location order.
func (n Names) Attributes() []string { return []string{n.Position, n.Normal} }

// Uniforms lists uniform names in location order.
func (n Names) Uniforms() []string {
	return []string{
		n.Projection, n.ModelView, n.NormalMatrix, n.LightPosition,
		n.Ambient, n.Diffuse, n.Specular, n.Shininess,
	}
}

// Locations is the resolved location table of a linked program.
type Locations struct {
	Position int
	Normal   int

	Projection    int
	ModelView     int
	NormalMatrix  int
	LightPosition int
	Ambient       int
	Diffuse       int
	Specular      int
	Shininess     int
}

// Locator resolves names in a linked program.
type Locator interface {
	AttribLocation(p softgl.Program, name string) int
	UniformLocation(p softgl.Program, name string) int
}

// ResolveLocations looks up every name of n in program p.
func ResolveLocations(l Locator, p softgl.Program, n Names) (Locations, error) {
	var loc Locations
	var missing []string
	attrib := func(dst *int, name string) {
		if *dst = l.AttribLocation(p, name); *dst < 0 {
			missing = append(missing, name)
		}
	}
	uniform := func(dst *int, name string) {
		if *dst = l.UniformLocation(p, name); *dst < 0 {
			missing = append(missing, name)
		}
	}

	attrib(&loc.Position, n.Position)
	attrib(&loc.Normal, n.Normal)
	uniform(&loc.Projection, n.Projection)
	uniform(&loc.ModelView, n.ModelView)
	uniform(&loc.NormalMatrix, n.NormalMatrix)
	uniform(&loc.LightPosition, n.LightPosition)
	uniform(&loc.Ambient, n.Ambient)
	uniform(&loc.Diffuse, n.Diffuse)
	uniform(&loc.Specular, n.Specular)
	uniform(&loc.Shininess, n.Shininess)

	if len(missing) > 0 {
		return Locations{}, fmt.Errorf("%w: %q", ErrMissingLocation, missing)
	}
	return loc, nil
}

// Resources are the device objects one mesh draw needs.
type Resources struct {
	Program    softgl.Program
	Vertices   softgl.Buffer
	Indices    softgl.Buffer
	IndexCount int
	Loc        Locations
}

// Uploader creates and fills device buffers.
type Uploader interface {
	Locator
	CreateBuffer() softgl.Buffer
	BindBuffer(target softgl.BufferTarget, b softgl.Buffer) error
	BufferDataFloat32(target softgl.BufferTarget, data []float32) error
	BufferDataUint16(target softgl.BufferTarget, data []uint16) error
}

// Upload copies mesh into new device buffers and resolves the locations of
// prog using DefaultNames.
func Upload(dev Uploader, mesh knot.Mesh, prog softgl.Program) (Resources, error) {
	loc, err := ResolveLocations(dev, prog, DefaultNames)
	if err != nil {
		return Resources{}, err
	}

	res := Resources{
		Program:    prog,
		Vertices:   dev.CreateBuffer(),
		Indices:    dev.CreateBuffer(),
		IndexCount: mesh.IndexCount(),
		Loc:        loc,
	}
	if err := dev.BindBuffer(softgl.ArrayBuffer, res.Vertices); err != nil {
		return Resources{}, fmt.Errorf("bind vertex buffer: %w", err)
	}
	if err := dev.BufferDataFloat32(softgl.ArrayBuffer, mesh.Vertices); err != nil {
		return Resources{}, fmt.Errorf("upload %d vertices: %w", mesh.VertexCount(), err)
	}
	if err := dev.BindBuffer(softgl.ElementArrayBuffer, res.Indices); err != nil {
		return Resources{}, fmt.Errorf("bind index buffer: %w", err)
	}
	if err := dev.BufferDataUint16(softgl.ElementArrayBuffer, mesh.Indices); err != nil {
		return Resources{}, fmt.Errorf("upload %d indices: %w", mesh.IndexCount(), err)
	}
	return res, nil
}

// Material holds the fixed surface response.
type Material struct {
	Ambient   vmath.Vec3
	Diffuse   vmath.Vec3
	Specular  vmath.Vec3
	Shininess float32
}

// DefaultMaterial is a polished gold.
var DefaultMaterial = Material{
	Ambient:   vmath.V3(0.24725, 0.1995, 0.0745),
	Diffuse:   vmath.V3(0.75164, 0.60648, 0.22648),
	Specular:  vmath.V3(0.628281, 0.555802, 0.366065),
	Shininess: 51.2,
}

// LightPosition is the view-space direction towards the single
// directional light.
var LightPosition = vmath.V3(1, 1, 1)
