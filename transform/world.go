package transform

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx/internal/uniform"
)

// WorldConstantsSize is the byte size of the world constants {world mat4}.
const WorldConstantsSize = uniform.Mat4Size

// World is a scale, rotation and translation with an optional parent.
type World struct {
	constants

	Scale       mgl32.Vec3
	Rotation    mgl32.Quat
	Translation mgl32.Vec3

	matrix mgl32.Mat4
	parent *World
	arena  *Arena
	index  int
}

// NewWorld returns a standalone transform with unit scale, identity
// rotation and zero translation. It has no parent and no constant buffer.
func NewWorld() *World {
	return &World{
		Scale:    mgl32.Vec3{1, 1, 1},
		Rotation: mgl32.QuatIdent(),
		matrix:   mgl32.Ident4(),
		index:    -1,
	}
}

// CreateBuffer allocates the persistently mapped constant buffer.
func (w *World) CreateBuffer(alloc Allocator) error {
	return w.create(alloc, WorldConstantsSize, "world_transform")
}

// Local returns Translate * Rotate * Scale without the parent.
func (w *World) Local() mgl32.Mat4 {
	s := mgl32.Scale3D(w.Scale[0], w.Scale[1], w.Scale[2])
	t := mgl32.Translate3D(w.Translation[0], w.Translation[1], w.Translation[2])
	return t.Mul4(w.Rotation.Mat4()).Mul4(s)
}

// UpdateMatrix recomputes the world matrix from the current fields and the
// parent's current matrix. The parent must be updated first.
func (w *World) UpdateMatrix() {
	w.matrix = w.Local()
	if w.parent != nil {
		w.matrix = w.parent.matrix.Mul4(w.matrix)
	}
}

// Matrix returns the matrix computed by the last UpdateMatrix.
func (w *World) Matrix() mgl32.Mat4 { return w.matrix }

// Parent returns the parent transform, or nil.
func (w *World) Parent() *World { return w.parent }

// SetGraphicsCommand writes the world matrix into the constant buffer and
// binds it at group.
func (w *World) SetGraphicsCommand(pass hal.RenderPassEncoder, group uint32) error {
	dst, err := w.mapped()
	if err != nil {
		return err
	}
	uniform.PutMat4(dst, 0, w.matrix)
	w.bind(pass, group)
	return nil
}
