package scene

import "github.com/lumen-rt/lumen/types"

// Sentinel hit distance reported by Intersect when a ray escapes the scene.
const NoHit float32 = -1

// A scene is an ordered collection of intersectable primitives plus the
// material table they reference, the camera and the environment colors.
type Scene struct {
	Camera     *Camera
	Materials  []Material
	Primitives []Intersectable

	// Environment gradient, sampled by ray direction.
	SkyBottom types.Vec3
	SkyTop    types.Vec3
}

// Intersect the scene returning the closest hit. The hit record's albedo is
// resolved from the material table. On a miss the returned record carries the
// NoHit sentinel distance.
func (s *Scene) Intersect(r Ray, tMin, tMax float32) HitRecord {
	closest := HitRecord{T: NoHit}
	maxT := tMax

	for _, prim := range s.Primitives {
		if rec, ok := prim.Hit(r, tMin, maxT); ok {
			closest = rec
			maxT = rec.T
		}
	}

	if closest.T >= 0 && closest.MatIndex >= 0 && int(closest.MatIndex) < len(s.Materials) {
		closest.Albedo = s.Materials[closest.MatIndex].Albedo
	}

	return closest
}

// Sample the environment contribution along a direction: a simple vertical
// gradient between the bottom and top sky colors.
func (s *Scene) SkyColor(dir types.Vec3) types.Vec3 {
	t := 0.5 * (dir.Normalize()[1] + 1)
	return s.SkyBottom.Lerp(s.SkyTop, t)
}
