package scene

import "github.com/lumen-rt/lumen/types"

// Demo builds the builtin showcase scene: a large ground sphere and one
// sphere of each material kind.
func Demo() *Scene {
	camera := NewCamera(45)
	camera.Position = types.Vec3{0, 1, 3}
	camera.LookAt = types.Vec3{0, 0.5, -1}
	camera.FocusDist = 4
	camera.Aperture = 0.02

	return &Scene{
		Camera: camera,
		Materials: []Material{
			{Kind: Diffuse, Albedo: types.Vec3{0.8, 0.8, 0.0}},
			{Kind: Diffuse, Albedo: types.Vec3{0.7, 0.3, 0.3}},
			{Kind: Metal, Albedo: types.Vec3{0.8, 0.8, 0.9}, Roughness: 0.05},
			{Kind: Dielectric, Albedo: types.Vec3{1, 1, 1}, RefIdx: 1.5},
		},
		Primitives: []Intersectable{
			Sphere{Center: types.Vec3{0, -100.5, -1}, Radius: 100, MatIndex: 0},
			Sphere{Center: types.Vec3{0, 0.5, -1}, Radius: 0.5, MatIndex: 1},
			Sphere{Center: types.Vec3{-1.1, 0.5, -1}, Radius: 0.5, MatIndex: 2},
			Sphere{Center: types.Vec3{1.1, 0.5, -1}, Radius: 0.5, MatIndex: 3},
		},
		SkyBottom: types.Vec3{1, 1, 1},
		SkyTop:    types.Vec3{0.5, 0.7, 1.0},
	}
}
