package uniform

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestPutMat4(t *testing.T) {
	buf := make([]byte, 2*Mat4Size)
	m := mgl32.Translate3D(1, 2, 3)

	next := PutMat4(buf, Mat4Size, m)
	if next != 2*Mat4Size {
		t.Errorf("PutMat4 returned %d, want %d", next, 2*Mat4Size)
	}
	if got := Mat4At(buf, Mat4Size); got != m {
		t.Errorf("Mat4At() = %v, want %v", got, m)
	}
	// Column-major: translation lives in elements 12..14.
	if Float32At(buf, Mat4Size+12*4) != 1 || Float32At(buf, Mat4Size+14*4) != 3 {
		t.Error("translation not stored in the last column")
	}
	if Mat4At(buf, 0) != (mgl32.Mat4{}) {
		t.Error("bytes before offset were modified")
	}
}

func TestPutVec(t *testing.T) {
	buf := make([]byte, Vec3Size+Vec4Size)
	for i := range buf {
		buf[i] = 0xff
	}
	off := PutVec3(buf, 0, mgl32.Vec3{1, 2, 3})
	if off != Vec3Size {
		t.Fatalf("PutVec3 returned %d, want %d", off, Vec3Size)
	}
	if Float32At(buf, 12) != 0 {
		t.Error("vec3 padding not zeroed")
	}
	off = PutVec4(buf, off, mgl32.Vec4{4, 5, 6, 7})
	if off != len(buf) {
		t.Fatalf("PutVec4 returned %d, want %d", off, len(buf))
	}
	want := []float32{1, 2, 3, 0, 4, 5, 6, 7}
	for i, w := range want {
		if got := Float32At(buf, i*4); got != w {
			t.Errorf("float %d = %v, want %v", i, got, w)
		}
	}
}
