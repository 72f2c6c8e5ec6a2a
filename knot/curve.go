// Package knot generates a closed tube surface swept along a trefoil knot
// and tessellates it into an indexed triangle mesh.
package knot

import (
	"math"

	"trefoil/vmath"
)

// Trefoil shape constants.
const (
	A = 0.5 // centerline base radius
	B = 0.3 // radial modulation
	C = 0.5 // vertical amplitude
	D = 0.1 // tube radius
)

// SweepTurns is the number of full turns of the sweep angle over s in [0,1).
const SweepTurns = 2

// Centerline returns the trefoil knot point at sweep angle u.
func Centerline(u float64) vmath.Vec3 {
	r := A + B*math.Cos(1.5*u)
	return vmath.V3(
		float32(r*math.Cos(u)),
		float32(r*math.Sin(u)),
		float32(C*math.Sin(1.5*u)),
	)
}

// Frame returns the local axes at sweep angle u: the unit tangent q, the
// in-plane binormal qvn and w = q x qvn.
//
// The frame is not parallel transported; it twists along the sweep.
func Frame(u float64) (q, qvn, w vmath.Vec3) {
	r := A + B*math.Cos(1.5*u)
	dr := -1.5 * B * math.Sin(1.5*u)
	su, cu := math.Sincos(u)

	q = vmath.Normalize(vmath.V3(
		float32(dr*cu-r*su),
		float32(dr*su+r*cu),
		float32(1.5*C*math.Cos(1.5*u)),
	))
	qvn = vmath.Normalize(vmath.V3(q.Y, -q.X, 0))
	w = vmath.Cross(q, qvn)
	return q, qvn, w
}

// Evaluate returns the tube surface point at sweep parameter s and
// cross-section parameter t, both in [0,1).
//
// Evaluate is a pure function of its arguments.
func Evaluate(s, t float32) vmath.Vec3 {
	u := (1 - float64(s)) * SweepTurns * 2 * math.Pi
	v := float64(t) * 2 * math.Pi

	p := Centerline(u)
	_, qvn, w := Frame(u)
	sv, cv := math.Sincos(v)
	cosV, sinV := float32(cv), float32(sv)

	// z offset takes only the w axis; qvn.Z is zero by construction.
	return vmath.V3(
		p.X+D*(qvn.X*cosV+w.X*sinV),
		p.Y+D*(qvn.Y*cosV+w.Y*sinV),
		p.Z+D*w.Z*sinV,
	)
}
