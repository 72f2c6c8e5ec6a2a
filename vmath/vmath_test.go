package vmath

import (
	"math"
	"testing"
)

func TestMat4MulIdentity(t *testing.T) {
	a := Mat4Identity()
	b := Mat4Translate(V3(1, 2, 3))
	got := Mat4Mul(a, b)
	if got != b {
		t.Fatalf("identity*a mismatch")
	}
	got2 := Mat4Mul(b, a)
	if got2 != b {
		t.Fatalf("a*identity mismatch")
	}
}

func TestTranslateAfterRotate(t *testing.T) {
	m := Mat4Mul(Mat4Translate(V3(0, 0, -7)), Mat4RotateY(math.Pi/2))
	// +X rotates onto -Z, then moves 7 further away.
	p := Mat4MulV4(m, Vec4{X: 1, W: 1})
	if math.Abs(float64(p.X)) > 1e-6 || math.Abs(float64(p.Z+8)) > 1e-5 || p.W != 1 {
		t.Fatalf("got %+v, want (0,0,-8,1)", p)
	}
}

func TestOrthoMapsBoxToNDC(t *testing.T) {
	m := Mat4Ortho(-2, 2, -1, 1, 4, 10)
	cases := []struct {
		in   Vec4
		want Vec4
	}{
		{Vec4{X: -2, Y: -1, Z: -4, W: 1}, Vec4{X: -1, Y: -1, Z: -1, W: 1}},
		{Vec4{X: 2, Y: 1, Z: -10, W: 1}, Vec4{X: 1, Y: 1, Z: 1, W: 1}},
		{Vec4{X: 0, Y: 0, Z: -7, W: 1}, Vec4{X: 0, Y: 0, Z: 0, W: 1}},
	}
	for _, tc := range cases {
		got := Mat4MulV4(m, tc.in)
		if !near4(got, tc.want, 1e-6) {
			t.Fatalf("ortho(%+v) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestMat3FromMat4(t *testing.T) {
	m := Mat4Mul(Mat4Translate(V3(5, 6, 7)), Mat4RotateY(0.3))
	n := Mat3FromMat4(m)
	v := V3(1, 2, 3)
	got := Mat3MulV3(n, v)
	want := Mat4MulV4(Mat4RotateY(0.3), v.Vec4(0)).Vec3()
	if Len(got.Sub(want)) > 1e-6 {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestNormalizeZero(t *testing.T) {
	if got := Normalize(Vec3{}); got != (Vec3{}) {
		t.Fatalf("got %+v, want zero", got)
	}
	if !IsFinite(Normalize(Vec3{})) {
		t.Fatal("normalize of zero produced non-finite values")
	}
}

func near4(a, b Vec4, eps float64) bool {
	return math.Abs(float64(a.X-b.X)) <= eps &&
		math.Abs(float64(a.Y-b.Y)) <= eps &&
		math.Abs(float64(a.Z-b.Z)) <= eps &&
		math.Abs(float64(a.W-b.W)) <= eps
}
