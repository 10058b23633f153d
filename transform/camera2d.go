package transform

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx/internal/uniform"
)

// Camera2DConstantsSize is the byte size of {view, proj, viewProj mat4}.
const Camera2DConstantsSize = 3 * uniform.Mat4Size

// Camera2D is an orthographic camera for sprites. The default volume is a
// 1280x720 box centered on the camera with y pointing up.
type Camera2D struct {
	constants

	Position mgl32.Vec2
	Zoom     mgl32.Vec2

	Left   float32
	Right  float32
	Top    float32
	Bottom float32
	Near   float32
	Far    float32

	view     mgl32.Mat4
	proj     mgl32.Mat4
	viewProj mgl32.Mat4
}

// NewCamera2D returns a camera at the origin with unit zoom.
func NewCamera2D() *Camera2D {
	return &Camera2D{
		Zoom:     mgl32.Vec2{1, 1},
		Left:     -640,
		Right:    640,
		Top:      360,
		Bottom:   -360,
		Near:     0,
		Far:      1000,
		view:     mgl32.Ident4(),
		proj:     mgl32.Ident4(),
		viewProj: mgl32.Ident4(),
	}
}

// CreateBuffer allocates the persistently mapped constant buffer.
func (c *Camera2D) CreateBuffer(alloc Allocator) error {
	return c.create(alloc, Camera2DConstantsSize, "camera2d")
}

// UpdateMatrix rebuilds the view, projection and view-projection matrices.
// The view is the inverse of Translate(Position) * Scale(Zoom).
func (c *Camera2D) UpdateMatrix() error {
	if nearZero(c.Zoom[0]) || nearZero(c.Zoom[1]) {
		return fmt.Errorf("%w: %v", ErrDegenerateZoom, c.Zoom)
	}
	if nearZero(c.Right-c.Left) || nearZero(c.Top-c.Bottom) || nearZero(c.Far-c.Near) {
		return fmt.Errorf("%w: left %v, right %v, top %v, bottom %v, near %v, far %v",
			ErrDegenerateProjection, c.Left, c.Right, c.Top, c.Bottom, c.Near, c.Far)
	}
	camera := mgl32.Translate3D(c.Position[0], c.Position[1], 0).Mul4(mgl32.Scale3D(c.Zoom[0], c.Zoom[1], 1))
	c.view = camera.Inv()
	c.proj = OrthoLH(c.Left, c.Top, c.Right, c.Bottom, c.Near, c.Far)
	c.viewProj = c.proj.Mul4(c.view)
	return nil
}

// View returns the view matrix from the last UpdateMatrix.
func (c *Camera2D) View() mgl32.Mat4 { return c.view }

// Projection returns the projection matrix from the last UpdateMatrix.
func (c *Camera2D) Projection() mgl32.Mat4 { return c.proj }

// ViewProjection returns Projection * View from the last UpdateMatrix.
func (c *Camera2D) ViewProjection() mgl32.Mat4 { return c.viewProj }

// SetGraphicsCommand writes view, projection and view-projection into the
// constant buffer and binds it at group.
func (c *Camera2D) SetGraphicsCommand(pass hal.RenderPassEncoder, group uint32) error {
	dst, err := c.mapped()
	if err != nil {
		return err
	}
	off := uniform.PutMat4(dst, 0, c.view)
	off = uniform.PutMat4(dst, off, c.proj)
	uniform.PutMat4(dst, off, c.viewProj)
	c.bind(pass, group)
	return nil
}
