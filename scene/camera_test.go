package scene

import (
	"testing"

	"github.com/lumen-rt/lumen/types"
)

func TestCameraSetupProjection(t *testing.T) {
	camera := NewCamera(60)
	camera.SetupProjection(1)

	// The inverse matrices are what the tracer consumes; check they invert.
	prod := camera.ProjMat.Mul4(camera.InvProjMat)
	if !mat4NearIdent(prod, 1e-4) {
		t.Fatalf("expected projection and inverse to cancel; got %v", prod)
	}

	prod = camera.ViewMat.Mul4(camera.InvViewMat)
	if !mat4NearIdent(prod, 1e-4) {
		t.Fatalf("expected view and inverse to cancel; got %v", prod)
	}
}

func TestCameraMove(t *testing.T) {
	type spec struct {
		dir    CameraDirection
		exp    types.Vec3
		expLAt types.Vec3
	}

	// Looking down -Z; right is +X.
	specs := []spec{
		{Forward, types.Vec3{0, 0, -0.5}, types.Vec3{0, 0, -1.5}},
		{Backward, types.Vec3{0, 0, 0.5}, types.Vec3{0, 0, -0.5}},
		{Left, types.Vec3{-0.5, 0, 0}, types.Vec3{-0.5, 0, -1}},
		{Right, types.Vec3{0.5, 0, 0}, types.Vec3{0.5, 0, -1}},
	}

	for index, s := range specs {
		camera := NewCamera(45)
		camera.SetupProjection(1)
		camera.Move(s.dir, 0.5)

		if camera.Position.Sub(s.exp).Len() > 1e-5 {
			t.Fatalf("[spec %d] expected position %v; got %v", index, s.exp, camera.Position)
		}
		if camera.LookAt.Sub(s.expLAt).Len() > 1e-5 {
			t.Fatalf("[spec %d] expected look-at %v; got %v", index, s.expLAt, camera.LookAt)
		}
	}
}

func TestCameraUpdateKeepsOrientation(t *testing.T) {
	camera := NewCamera(45)
	camera.SetupProjection(1)

	lookAt := camera.LookAt
	camera.Update()

	if camera.LookAt.Sub(lookAt).Len() > 1e-5 {
		t.Fatalf("expected a zero pitch/yaw update to keep the orientation; got %v", camera.LookAt)
	}
}

func mat4NearIdent(m types.Mat4, eps float32) bool {
	ident := types.Ident4()
	for i := 0; i < 16; i++ {
		d := m[i] - ident[i]
		if d < 0 {
			d = -d
		}
		if d > eps {
			return false
		}
	}
	return true
}
