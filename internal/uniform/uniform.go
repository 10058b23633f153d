// Package uniform encodes shader constant data into mapped buffer memory.
//
// WGSL uniform layout: matrices are column-major, a vec3 occupies 16 bytes.
package uniform

import (
	"encoding/binary"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Byte sizes of WGSL uniform members.
const (
	Mat4Size = 64
	Vec4Size = 16
	Vec3Size = 16 // padded to a vec4 slot
)

// PutFloat32s writes vals at off and returns the offset after them.
func PutFloat32s(dst []byte, off int, vals ...float32) int {
	for _, v := range vals {
		binary.LittleEndian.PutUint32(dst[off:off+4], math32.Float32bits(v))
		off += 4
	}
	return off
}

// PutMat4 writes m at off and returns the offset after it.
func PutMat4(dst []byte, off int, m mgl32.Mat4) int {
	return PutFloat32s(dst, off, m[:]...)
}

// PutVec4 writes v at off and returns the offset after it.
func PutVec4(dst []byte, off int, v mgl32.Vec4) int {
	return PutFloat32s(dst, off, v[:]...)
}

// PutVec3 writes v and one padding float at off and returns the offset after
// the padded slot.
func PutVec3(dst []byte, off int, v mgl32.Vec3) int {
	return PutFloat32s(dst, off, v[0], v[1], v[2], 0)
}

// Float32At reads the float stored at off.
func Float32At(src []byte, off int) float32 {
	return math32.Float32frombits(binary.LittleEndian.Uint32(src[off : off+4]))
}

// Mat4At reads the matrix stored at off.
func Mat4At(src []byte, off int) mgl32.Mat4 {
	var m mgl32.Mat4
	for i := range m {
		m[i] = Float32At(src, off+4*i)
	}
	return m
}
