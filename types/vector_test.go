package types

import (
	"math"
	"testing"
)

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 4, 0}.Normalize()
	if d := math.Abs(float64(v.Len() - 1)); d > 1e-6 {
		t.Fatalf("expected unit length; got %f", v.Len())
	}

	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Fatalf("expected the zero vector to normalize to itself; got %v", got)
	}
}

func TestVec3Reflect(t *testing.T) {
	got := Vec3{1, -1, 0}.Reflect(Vec3{0, 1, 0})
	if got != (Vec3{1, 1, 0}) {
		t.Fatalf("expected reflection (1, 1, 0); got %v", got)
	}
}

func TestVec3Refract(t *testing.T) {
	// Normal incidence passes straight through regardless of eta.
	got := Vec3{0, -1, 0}.Refract(Vec3{0, 1, 0}, 1.0/1.5)
	if got.Sub(Vec3{0, -1, 0}).Len() > 1e-6 {
		t.Fatalf("expected straight-through refraction; got %v", got)
	}

	// Snell's law: sin(theta_out) = eta * sin(theta_in)
	in := Vec3{1, -1, 0}.Normalize()
	eta := float32(1.0 / 1.5)
	out := in.Refract(Vec3{0, 1, 0}, eta)

	sinIn := in[0]
	sinOut := out.Normalize()[0]
	if d := math.Abs(float64(sinOut - eta*sinIn)); d > 1e-5 {
		t.Fatalf("expected refracted sine %f; got %f", eta*sinIn, sinOut)
	}
}

func TestVec3Lerp(t *testing.T) {
	a := Vec3{0, 0, 0}
	b := Vec3{1, 2, 4}

	if got := a.Lerp(b, 0); got != a {
		t.Fatalf("expected lerp at 0 to return the first vector; got %v", got)
	}
	if got := a.Lerp(b, 1); got != b {
		t.Fatalf("expected lerp at 1 to return the second vector; got %v", got)
	}
	if got := a.Lerp(b, 0.5); got != (Vec3{0.5, 1, 2}) {
		t.Fatalf("expected the midpoint; got %v", got)
	}
}

func TestVec3Clamp01(t *testing.T) {
	got := Vec3{-0.5, 0.25, 7}.Clamp01()
	if got != (Vec3{0, 0.25, 1}) {
		t.Fatalf("expected (0, 0.25, 1); got %v", got)
	}
}

func TestMat4TransformPoint(t *testing.T) {
	m := LookAtV(Vec3{0, 0, 0}, Vec3{0, 0, -1}, Vec3{0, 1, 0})

	// Identity view: world and view space coincide.
	p := m.TransformPoint(Vec3{1, 2, -3})
	if p.Sub(Vec3{1, 2, -3}).Len() > 1e-5 {
		t.Fatalf("expected point to be unchanged by the identity view; got %v", p)
	}

	// Inverse round-trip.
	inv := m.Inv()
	q := inv.TransformPoint(m.TransformPoint(Vec3{0.5, -1, 2}))
	if q.Sub(Vec3{0.5, -1, 2}).Len() > 1e-5 {
		t.Fatalf("expected inverse round-trip to recover the point; got %v", q)
	}
}

func TestMat4TransformDir(t *testing.T) {
	m := LookAtV(Vec3{5, 5, 5}, Vec3{5, 5, 4}, Vec3{0, 1, 0})

	// Directions ignore the view translation.
	d := m.TransformDir(Vec3{0, 0, -1})
	if d.Sub(Vec3{0, 0, -1}).Len() > 1e-5 {
		t.Fatalf("expected direction to ignore translation; got %v", d)
	}
}
