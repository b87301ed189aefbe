package scene

import (
	"math"

	"github.com/lumen-rt/lumen/types"
)

// Sentinel material index for rays that have not hit a surface yet.
const MatNone int32 = -1

type MaterialKind uint8

const (
	Diffuse MaterialKind = iota
	Metal
	Dielectric
)

func (k MaterialKind) String() string {
	switch k {
	case Diffuse:
		return "diffuse"
	case Metal:
		return "metal"
	case Dielectric:
		return "dielectric"
	}
	return "unknown"
}

// A surface material. Materials are addressed by index from primitives;
// fields that do not apply to a kind are ignored.
type Material struct {
	Kind      MaterialKind
	Albedo    types.Vec3
	Roughness float32
	RefIdx    float32
}

// The Sampler interface provides the random variates consumed by the
// scattering models. Implementations are expected to be deterministic for a
// given seed so renders are reproducible.
type Sampler interface {
	// Get the next variate in [0, 1).
	Float32() float32

	// Get a random point inside the unit sphere.
	InUnitSphere() types.Vec3

	// Get a random point inside the unit disk.
	InUnitDisk() types.Vec2
}

type scatterFunc func(mat Material, in Ray, rec HitRecord, rng Sampler) (Ray, types.Vec3, bool)

// The scattering models tried by Scatter. Order is a contract: models are
// tried left to right and the first success wins, so overlapping material
// definitions resolve deterministically.
var scatterModels = []scatterFunc{
	scatterDiffuse,
	scatterMetal,
	scatterDielectric,
}

// Scatter the incoming ray off the intersected surface. Returns the scattered
// ray and the attenuation to fold into the path throughput, or ok=false when
// no model produced a scatter event and the path should terminate.
func Scatter(mat Material, in Ray, rec HitRecord, rng Sampler) (Ray, types.Vec3, bool) {
	for _, model := range scatterModels {
		if out, attenuation, ok := model(mat, in, rec, rng); ok {
			return out, attenuation, true
		}
	}
	return Ray{}, types.Vec3{}, false
}

// Lambertian scattering: a cosine-weighted direction around the surface normal.
func scatterDiffuse(mat Material, in Ray, rec HitRecord, rng Sampler) (Ray, types.Vec3, bool) {
	if mat.Kind != Diffuse {
		return Ray{}, types.Vec3{}, false
	}

	dir := rec.Normal.Add(rng.InUnitSphere().Normalize())
	if dir.NearZero() {
		dir = rec.Normal
	}

	out := Ray{
		Origin: rec.P,
		Dir:    dir.Normalize(),
	}
	return out, mat.Albedo, true
}

// Specular reflection with a roughness-scaled perturbation. Scattering below
// the surface horizon is rejected and terminates the path.
func scatterMetal(mat Material, in Ray, rec HitRecord, rng Sampler) (Ray, types.Vec3, bool) {
	if mat.Kind != Metal {
		return Ray{}, types.Vec3{}, false
	}

	fuzz := mat.Roughness
	if fuzz > 1 {
		fuzz = 1
	}

	reflected := in.Dir.Normalize().Reflect(rec.Normal)
	reflected = reflected.Add(rng.InUnitSphere().Mul(fuzz))
	if reflected.Dot(rec.Normal) <= 0 {
		return Ray{}, types.Vec3{}, false
	}

	out := Ray{
		Origin: rec.P,
		Dir:    reflected.Normalize(),
	}
	return out, mat.Albedo, true
}

// Refractive scattering using Snell's law with Schlick reflectance. A
// dielectric never absorbs energy so the attenuation is always white.
func scatterDielectric(mat Material, in Ray, rec HitRecord, rng Sampler) (Ray, types.Vec3, bool) {
	if mat.Kind != Dielectric {
		return Ray{}, types.Vec3{}, false
	}

	unitDir := in.Dir.Normalize()
	normal := rec.Normal
	eta := 1.0 / mat.RefIdx
	if unitDir.Dot(rec.Normal) > 0 {
		// Exiting the surface
		normal = rec.Normal.Neg()
		eta = mat.RefIdx
	}

	cosTheta := unitDir.Neg().Dot(normal)
	if cosTheta > 1 {
		cosTheta = 1
	}
	sinTheta := float32(math.Sqrt(float64(1 - cosTheta*cosTheta)))

	var dir types.Vec3
	if eta*sinTheta > 1 || reflectance(cosTheta, eta) > rng.Float32() {
		dir = unitDir.Reflect(normal)
	} else {
		dir = unitDir.Refract(normal, eta)
	}

	out := Ray{
		Origin: rec.P,
		Dir:    dir.Normalize(),
	}
	return out, types.Vec3{1, 1, 1}, true
}

// Schlick's approximation for reflectance at a dielectric interface.
func reflectance(cosine, eta float32) float32 {
	r0 := (1 - eta) / (1 + eta)
	r0 = r0 * r0
	return r0 + (1-r0)*float32(math.Pow(float64(1-cosine), 5))
}
