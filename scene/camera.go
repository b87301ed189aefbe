package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lumen-rt/lumen/types"
)

// Camera movement directions understood by Move.
type CameraDirection uint8

const (
	Forward CameraDirection = iota
	Backward
	Left
	Right
)

// The camera type controls the scene camera. The view and projection matrices
// together with their inverses are what the tracer consumes; hosts are
// expected to keep them consistent by calling Update/SetupProjection after
// mutating any of the public fields.
type Camera struct {
	Position types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3
	Pitch    float32
	Yaw      float32

	// Camera FOV in degrees.
	FOV float32

	// Lens radius for depth of field. A zero aperture yields a pinhole camera.
	Aperture float32

	// Distance from the camera to the plane that stays in sharp focus.
	FocusDist float32

	ViewMat    types.Mat4
	ProjMat    types.Mat4
	InvViewMat types.Mat4
	InvProjMat types.Mat4

	// Adjust the frustrum so that Y is inverted
	InvertY bool
}

func NewCamera(fov float32) *Camera {
	return &Camera{
		Position:   types.Vec3{0, 0, 0},
		LookAt:     types.Vec3{0, 0, -1},
		Up:         types.Vec3{0, 1, 0},
		FOV:        fov,
		FocusDist:  1.0,
		ViewMat:    types.Ident4(),
		ProjMat:    types.Ident4(),
		InvViewMat: types.Ident4(),
		InvProjMat: types.Ident4(),
	}
}

// Setup camera projection matrix.
func (c *Camera) SetupProjection(aspect float32) {
	c.ProjMat = types.Perspective4(mgl32.DegToRad(c.FOV), aspect, 0.1, 1000)
	c.Update()
}

// Update camera matrices applying any pending pitch/yaw rotation.
func (c *Camera) Update() {
	dir := c.LookAt.Sub(c.Position).Normalize()
	pitchAxis := dir.Cross(c.Up)
	pitchQuat := mgl32.QuatRotate(c.Pitch, mgl32.Vec3(pitchAxis))
	yawQuat := mgl32.QuatRotate(c.Yaw, mgl32.Vec3(c.Up))

	orientQuat := pitchQuat.Mul(yawQuat).Normalize()

	// Update direction
	dir = types.Vec3(orientQuat.Rotate(mgl32.Vec3(dir)))
	c.LookAt = c.Position.Add(dir)

	c.ViewMat = types.LookAtV(c.Position, c.LookAt, c.Up)
	c.InvViewMat = c.ViewMat.Inv()
	c.InvProjMat = c.ProjMat.Inv()
}

// Move the camera keeping its orientation.
func (c *Camera) Move(dir CameraDirection, speed float32) {
	var offset types.Vec3

	fwd := c.LookAt.Sub(c.Position).Normalize()
	right := fwd.Cross(c.Up).Normalize()

	switch dir {
	case Forward:
		offset = fwd.Mul(speed)
	case Backward:
		offset = fwd.Mul(-speed)
	case Left:
		offset = right.Mul(-speed)
	case Right:
		offset = right.Mul(speed)
	}

	c.Position = c.Position.Add(offset)
	c.LookAt = c.LookAt.Add(offset)
	c.Update()
}
