package scene

import (
	"math"

	"github.com/lumen-rt/lumen/types"
)

// A geometric ray used for intersection queries.
type Ray struct {
	Origin types.Vec3
	Dir    types.Vec3
}

// Get the point along the ray at distance t.
func (r Ray) At(t float32) types.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// Intersection data for the closest ray/primitive intersection. A negative T
// indicates that the ray missed the scene entirely.
type HitRecord struct {
	T        float32
	P        types.Vec3
	Normal   types.Vec3
	UV       types.Vec2
	Albedo   types.Vec3
	MatIndex int32
}

// The Intersectable interface is implemented by all primitives that can be
// intersection-tested against a ray.
type Intersectable interface {
	// Intersect the primitive with a ray. Only hits with distances inside
	// (tMin, tMax) are reported.
	Hit(r Ray, tMin, tMax float32) (HitRecord, bool)
}

// A sphere primitive.
type Sphere struct {
	Center   types.Vec3
	Radius   float32
	MatIndex int32
}

// Intersect sphere with ray by solving the quadratic for
// (P - C) . (P - C) = r^2 where P = O + t*D.
func (s Sphere) Hit(r Ray, tMin, tMax float32) (HitRecord, bool) {
	oc := r.Origin.Sub(s.Center)
	a := r.Dir.LenSq()
	halfB := oc.Dot(r.Dir)
	c := oc.LenSq() - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return HitRecord{}, false
	}

	sqrtD := float32(math.Sqrt(float64(discriminant)))

	// Find the nearest root inside the acceptable range
	root := (-halfB - sqrtD) / a
	if root < tMin || root > tMax {
		root = (-halfB + sqrtD) / a
		if root < tMin || root > tMax {
			return HitRecord{}, false
		}
	}

	rec := HitRecord{
		T:        root,
		P:        r.At(root),
		MatIndex: s.MatIndex,
	}
	rec.Normal = rec.P.Sub(s.Center).Mul(1.0 / s.Radius)
	rec.UV = sphereUV(rec.Normal)

	return rec, true
}

// Map a unit normal to spherical surface coordinates in [0,1]^2.
func sphereUV(n types.Vec3) types.Vec2 {
	theta := math.Acos(float64(-n[1]))
	phi := math.Atan2(float64(-n[2]), float64(n[0])) + math.Pi
	return types.Vec2{
		float32(phi / (2 * math.Pi)),
		float32(theta / math.Pi),
	}
}
