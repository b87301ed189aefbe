package types

import "github.com/go-gl/mathgl/mgl32"

// A 4x4 column-major matrix backed by mathgl.
type Mat4 mgl32.Mat4

// Create an identity matrix.
func Ident4() Mat4 {
	return Mat4(mgl32.Ident4())
}

// Create a perspective projection matrix. The vertical FOV is given in radians.
func Perspective4(fovY, aspect, near, far float32) Mat4 {
	return Mat4(mgl32.Perspective(fovY, aspect, near, far))
}

// Create a look-at view matrix.
func LookAtV(eye, center, up Vec3) Mat4 {
	return Mat4(mgl32.LookAtV(mgl32.Vec3(eye), mgl32.Vec3(center), mgl32.Vec3(up)))
}

// Multiply two matrices.
func (m Mat4) Mul4(m2 Mat4) Mat4 {
	return Mat4(mgl32.Mat4(m).Mul4(mgl32.Mat4(m2)))
}

// Transform a 4 component vector.
func (m Mat4) Mul4x1(v Vec4) Vec4 {
	return Vec4(mgl32.Mat4(m).Mul4x1(mgl32.Vec4(v)))
}

// Invert the matrix. Returns the zero matrix if the determinant is zero.
func (m Mat4) Inv() Mat4 {
	return Mat4(mgl32.Mat4(m).Inv())
}

// Transform a direction vector, ignoring translation.
func (m Mat4) TransformDir(v Vec3) Vec3 {
	return m.Mul4x1(v.Vec4(0)).Vec3()
}

// Transform a point, applying the perspective divide.
func (m Mat4) TransformPoint(v Vec3) Vec3 {
	out := m.Mul4x1(v.Vec4(1))
	if out[3] != 0 {
		return out.Mul(1.0 / out[3]).Vec3()
	}
	return out.Vec3()
}
