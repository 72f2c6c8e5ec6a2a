// Package shader holds the programs linked into softgl.
package shader

import (
	"math"

	"trefoil/frame"
	"trefoil/softgl"
	"trefoil/vmath"
)

// Eye is the view-space direction towards the viewer of an orthographic
// camera.
var Eye = vmath.V3(0, 0, 1)

// Phong returns a Blinn-Phong program whose inputs are named by n.
// Attribute and uniform locations follow n.Attributes and n.Uniforms.
func Phong(n frame.Names) softgl.ProgramSource {
	const (
		locProjection = iota
		locModelView
		locNormalMatrix
		locLight
		locAmbient
		locDiffuse
		locSpecular
		locShininess
	)
	return softgl.ProgramSource{
		Attributes: n.Attributes(),
		Uniforms:   n.Uniforms(),
		Varyings:   3,
		Vertex: func(u *softgl.Uniforms, attrs []vmath.Vec4, out *softgl.Varyings) vmath.Vec4 {
			pos := attrs[0]
			pos.W = 1
			view := vmath.Mat4MulV4(u.Mat4(locModelView), pos)
			nrm := vmath.Mat3MulV3(u.Mat3(locNormalMatrix), attrs[1].Vec3())
			out[0], out[1], out[2] = nrm.X, nrm.Y, nrm.Z
			return vmath.Mat4MulV4(u.Mat4(locProjection), view)
		},
		Fragment: func(u *softgl.Uniforms, in *softgl.Varyings) vmath.Vec4 {
			m := frame.Material{
				Ambient:   u.Vec3(locAmbient),
				Diffuse:   u.Vec3(locDiffuse),
				Specular:  u.Vec3(locSpecular),
				Shininess: u.Float(locShininess),
			}
			c := Shade(vmath.V3(in[0], in[1], in[2]), u.Vec3(locLight), m)
			return c.Vec4(1)
		},
	}
}

// Shade lights a surface with view-space normal n by a directional light
// coming from light. The result is clamped to [0,1].
func Shade(n, light vmath.Vec3, m frame.Material) vmath.Vec3 {
	n = vmath.Normalize(n)
	l := vmath.Normalize(light)

	c := m.Ambient
	if diff := vmath.Dot(n, l); diff > 0 {
		c = c.Add(m.Diffuse.Mul(diff))
		h := vmath.Normalize(l.Add(Eye))
		if spec := vmath.Dot(n, h); spec > 0 {
			c = c.Add(m.Specular.Mul(float32(math.Pow(float64(spec), float64(m.Shininess)))))
		}
	}
	return vmath.V3(vmath.Clamp01(c.X), vmath.Clamp01(c.Y), vmath.Clamp01(c.Z))
}
