package transform

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx/internal/uniform"
)

// Camera3DConstantsSize is the byte size of {view mat4, proj mat4, eye vec3}.
const Camera3DConstantsSize = 2*uniform.Mat4Size + uniform.Vec3Size

// Camera3D is a perspective camera.
type Camera3D struct {
	constants

	Eye    mgl32.Vec3
	Target mgl32.Vec3
	Up     mgl32.Vec3

	// FovY is the vertical field of view in radians.
	FovY   float32
	Aspect float32
	Near   float32
	Far    float32

	view mgl32.Mat4
	proj mgl32.Mat4
}

// NewCamera3D returns a camera at (0, 0, -1) looking at the origin with a
// 45 degree field of view and a 1280:720 aspect ratio.
func NewCamera3D() *Camera3D {
	return &Camera3D{
		Eye:    mgl32.Vec3{0, 0, -1},
		Up:     mgl32.Vec3{0, 1, 0},
		FovY:   mgl32.DegToRad(45),
		Aspect: 1280.0 / 720.0,
		Near:   0.1,
		Far:    1000,
		view:   mgl32.Ident4(),
		proj:   mgl32.Ident4(),
	}
}

// CreateBuffer allocates the persistently mapped constant buffer.
func (c *Camera3D) CreateBuffer(alloc Allocator) error {
	return c.create(alloc, Camera3DConstantsSize, "camera3d")
}

// Forward returns Target - Eye.
func (c *Camera3D) Forward() mgl32.Vec3 { return c.Target.Sub(c.Eye) }

// SetForward moves Target to Eye + ray.
func (c *Camera3D) SetForward(ray mgl32.Vec3) { c.Target = c.Eye.Add(ray) }

// Right returns the normalized cross product of Forward and Up.
func (c *Camera3D) Right() mgl32.Vec3 { return c.Forward().Cross(c.Up).Normalize() }

// Move translates both Eye and Target.
func (c *Camera3D) Move(v mgl32.Vec3) {
	c.Eye = c.Eye.Add(v)
	c.Target = c.Target.Add(v)
}

// MoveEye translates Eye only.
func (c *Camera3D) MoveEye(v mgl32.Vec3) { c.Eye = c.Eye.Add(v) }

// UpdateMatrix rebuilds the view and projection matrices.
func (c *Camera3D) UpdateMatrix() error {
	fwd := c.Forward()
	if nearZero(fwd.Len()) || nearZero(c.Up.Cross(fwd).Len()) {
		return fmt.Errorf("%w: eye %v, target %v, up %v", ErrDegenerateView, c.Eye, c.Target, c.Up)
	}
	if nearZero(c.Aspect) || nearZero(c.Far-c.Near) || nearZero(c.FovY) {
		return fmt.Errorf("%w: fov %v, aspect %v, near %v, far %v",
			ErrDegenerateProjection, c.FovY, c.Aspect, c.Near, c.Far)
	}
	c.view = LookAtLH(c.Eye, c.Target, c.Up)
	c.proj = PerspectiveLH(c.FovY, c.Aspect, c.Near, c.Far)
	return nil
}

// View returns the view matrix from the last UpdateMatrix.
func (c *Camera3D) View() mgl32.Mat4 { return c.view }

// Projection returns the projection matrix from the last UpdateMatrix.
func (c *Camera3D) Projection() mgl32.Mat4 { return c.proj }

// ViewProjection returns Projection * View.
func (c *Camera3D) ViewProjection() mgl32.Mat4 { return c.proj.Mul4(c.view) }

// SetGraphicsCommand writes view, projection and eye into the constant
// buffer and binds it at group.
func (c *Camera3D) SetGraphicsCommand(pass hal.RenderPassEncoder, group uint32) error {
	dst, err := c.mapped()
	if err != nil {
		return err
	}
	off := uniform.PutMat4(dst, 0, c.view)
	off = uniform.PutMat4(dst, off, c.proj)
	uniform.PutVec3(dst, off, c.Eye)
	c.bind(pass, group)
	return nil
}
