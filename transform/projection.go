package transform

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// degenerateEpsilon bounds values treated as zero when building matrices.
const degenerateEpsilon = 1e-6

// LookAtLH returns a left-handed view matrix looking from eye at target.
func LookAtLH(eye, target, up mgl32.Vec3) mgl32.Mat4 {
	z := target.Sub(eye).Normalize()
	x := up.Cross(z).Normalize()
	y := z.Cross(x)
	return mgl32.Mat4{
		x[0], y[0], z[0], 0,
		x[1], y[1], z[1], 0,
		x[2], y[2], z[2], 0,
		-x.Dot(eye), -y.Dot(eye), -z.Dot(eye), 1,
	}
}

// PerspectiveLH returns a left-handed perspective projection mapping view
// depth near..far to clip depth 0..1. fovY is in radians.
func PerspectiveLH(fovY, aspect, near, far float32) mgl32.Mat4 {
	s := 1 / math32.Tan(fovY/2)
	a := far / (far - near)
	return mgl32.Mat4{
		s / aspect, 0, 0, 0,
		0, s, 0, 0,
		0, 0, a, 1,
		0, 0, -a * near, 0,
	}
}

// OrthoLH returns a left-handed orthographic projection of the box
// left..right, bottom..top, near..far onto clip space with depth 0..1.
func OrthoLH(left, top, right, bottom, near, far float32) mgl32.Mat4 {
	return mgl32.Mat4{
		2 / (right - left), 0, 0, 0,
		0, 2 / (top - bottom), 0, 0,
		0, 0, 1 / (far - near), 0,
		(left + right) / (left - right), (top + bottom) / (bottom - top), near / (near - far), 1,
	}
}

// ScreenProjection maps pixel coordinates with the origin at the top-left
// corner and y pointing down onto clip space.
func ScreenProjection(width, height float32) mgl32.Mat4 {
	return OrthoLH(0, 0, width, height, 0, 1)
}

func nearZero(v float32) bool {
	return math32.Abs(v) < degenerateEpsilon
}
