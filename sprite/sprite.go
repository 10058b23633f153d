package sprite

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx/device"
	"github.com/gogpu/gfx/internal/uniform"
	"github.com/gogpu/gfx/texture"
	"github.com/gogpu/gfx/transform"
)

const (
	// VertexCount is the number of vertices in a sprite quad.
	VertexCount = 4

	// VertexStride is the byte size of one Vertex: position vec3, uv vec2.
	VertexStride = 20

	// ConstantsSize is the byte size of {color vec4, transform mat4}.
	ConstantsSize = uniform.Vec4Size + uniform.Mat4Size
)

var (
	// ErrDestroyed is returned when drawing a destroyed sprite.
	ErrDestroyed = errors.New("sprite: destroyed")

	// ErrNilDependency is returned by New without pipelines or a texture table.
	ErrNilDependency = errors.New("sprite: nil pipelines or texture table")
)

// Allocator creates the sprite's GPU buffers. *device.Context implements it.
type Allocator interface {
	CreateResourceBuffer(size uint64, usage gputypes.BufferUsage, label string) (*device.Buffer, error)
	CreateConstantBuffer(size uint64, label string) (*device.ConstantBuffer, error)
}

// Vertex is one corner of the sprite quad.
type Vertex struct {
	Position mgl32.Vec3
	UV       mgl32.Vec2
}

// Sprite is a textured quad positioned in pixels.
type Sprite struct {
	pipelines *Pipelines
	textures  *texture.Table
	handle    texture.Handle
	blend     BlendMode

	position mgl32.Vec2
	rotation float32
	size     mgl32.Vec2
	anchor   mgl32.Vec2
	color    mgl32.Vec4
	flipX    bool
	flipY    bool
	texBase  mgl32.Vec2
	texSize  mgl32.Vec2

	vertices  [VertexCount]Vertex
	vbuf      *device.Buffer
	constants *device.ConstantBuffer

	dirty    bool
	rebuilds int
}

// New creates a 100x100 white sprite showing texel (0,0) of handle. The
// vertex and constant buffers are allocated and the vertices built once.
func New(alloc Allocator, pipelines *Pipelines, textures *texture.Table, handle texture.Handle) (*Sprite, error) {
	if pipelines == nil || textures == nil {
		return nil, ErrNilDependency
	}
	s := &Sprite{
		pipelines: pipelines,
		textures:  textures,
		handle:    handle,
		blend:     BlendNormal,
		size:      mgl32.Vec2{100, 100},
		color:     mgl32.Vec4{1, 1, 1, 1},
		texSize:   mgl32.Vec2{1, 1},
	}

	var err error
	s.vbuf, err = alloc.CreateResourceBuffer(VertexCount*VertexStride, gputypes.BufferUsageVertex, "sprite_vertices")
	if err != nil {
		return nil, err
	}
	if _, err := s.vbuf.MapPersistent(); err != nil {
		s.Destroy()
		return nil, err
	}
	s.constants, err = alloc.CreateConstantBuffer(ConstantsSize, "sprite_constants")
	if err != nil {
		s.Destroy()
		return nil, err
	}
	if err := s.rebuild(); err != nil {
		s.Destroy()
		return nil, err
	}
	s.writeConstants(pipelines.ScreenProjection())
	return s, nil
}

// SetPosition sets the screen position of the anchor point in pixels.
func (s *Sprite) SetPosition(pos mgl32.Vec2) {
	s.position = pos
	s.dirty = true
}

// SetRotation sets the rotation around the anchor point in radians.
func (s *Sprite) SetRotation(rad float32) {
	s.rotation = rad
	s.dirty = true
}

// SetSize sets the quad size in pixels.
func (s *Sprite) SetSize(size mgl32.Vec2) {
	s.size = size
	s.dirty = true
}

// SetAnchor sets the anchor as a fraction of the size; (0.5, 0.5) is the center.
func (s *Sprite) SetAnchor(anchor mgl32.Vec2) {
	s.anchor = anchor
	s.dirty = true
}

// SetFlipX mirrors the quad horizontally around the anchor.
func (s *Sprite) SetFlipX(flip bool) {
	s.flipX = flip
	s.dirty = true
}

// SetFlipY mirrors the quad vertically around the anchor.
func (s *Sprite) SetFlipY(flip bool) {
	s.flipY = flip
	s.dirty = true
}

// SetTextureBase sets the top-left texel of the displayed region.
func (s *Sprite) SetTextureBase(base mgl32.Vec2) {
	s.texBase = base
	s.dirty = true
}

// SetTextureSize sets the size of the displayed region in texels.
func (s *Sprite) SetTextureSize(size mgl32.Vec2) {
	s.texSize = size
	s.dirty = true
}

// SetTextureRect sets the displayed region in texels.
func (s *Sprite) SetTextureRect(base, size mgl32.Vec2) {
	s.texBase = base
	s.texSize = size
	s.dirty = true
}

// SetColor sets the tint multiplied with the texture.
func (s *Sprite) SetColor(color mgl32.Vec4) { s.color = color }

// SetTexture switches the texture table entry. Texture coordinates keep
// referring to the previous texture's dimensions until the next geometry
// change.
func (s *Sprite) SetTexture(h texture.Handle) { s.handle = h }

// SetBlendMode selects the pipeline used by Draw.
func (s *Sprite) SetBlendMode(mode BlendMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %d", ErrBlendMode, int(mode))
	}
	s.blend = mode
	return nil
}

// Position returns the anchor position in pixels.
func (s *Sprite) Position() mgl32.Vec2 { return s.position }

// Rotation returns the rotation in radians.
func (s *Sprite) Rotation() float32 { return s.rotation }

// Size returns the quad size in pixels.
func (s *Sprite) Size() mgl32.Vec2 { return s.size }

// Anchor returns the anchor as a fraction of the size.
func (s *Sprite) Anchor() mgl32.Vec2 { return s.anchor }

// FlipX reports whether the texture is mirrored horizontally.
func (s *Sprite) FlipX() bool { return s.flipX }

// FlipY reports whether the texture is mirrored vertically.
func (s *Sprite) FlipY() bool { return s.flipY }

// TextureBase returns the top-left texel of the displayed region.
func (s *Sprite) TextureBase() mgl32.Vec2 { return s.texBase }

// TextureSize returns the displayed region size in texels.
func (s *Sprite) TextureSize() mgl32.Vec2 { return s.texSize }

// Color returns the tint multiplied with the texture.
func (s *Sprite) Color() mgl32.Vec4 { return s.color }

// Texture returns the texture table handle drawn by the sprite.
func (s *Sprite) Texture() texture.Handle { return s.handle }

// BlendMode returns the blend state used to draw the sprite.
func (s *Sprite) BlendMode() BlendMode { return s.blend }

// Dirty reports whether the vertices will be rebuilt by the next draw.
func (s *Sprite) Dirty() bool { return s.dirty }

// RebuildCount returns how many times the vertices were generated.
func (s *Sprite) RebuildCount() int { return s.rebuilds }

// Vertices returns the vertices from the last rebuild in the order
// left-bottom, left-top, right-bottom, right-top.
func (s *Sprite) Vertices() [VertexCount]Vertex { return s.vertices }

// rebuild regenerates the quad corners and texture coordinates and writes
// them into the vertex buffer.
func (s *Sprite) rebuild() error {
	texW, texH, err := s.textures.Size(s.handle)
	if err != nil {
		return err
	}

	left := (0 - s.anchor[0]) * s.size[0]
	right := (1 - s.anchor[0]) * s.size[0]
	top := (0 - s.anchor[1]) * s.size[1]
	bottom := (1 - s.anchor[1]) * s.size[1]
	if s.flipX {
		left, right = -left, -right
	}
	if s.flipY {
		top, bottom = -top, -bottom
	}

	uvLeft := s.texBase[0] / float32(texW)
	uvRight := (s.texBase[0] + s.texSize[0]) / float32(texW)
	uvTop := s.texBase[1] / float32(texH)
	uvBottom := (s.texBase[1] + s.texSize[1]) / float32(texH)

	s.vertices = [VertexCount]Vertex{
		{mgl32.Vec3{left, bottom, 0}, mgl32.Vec2{uvLeft, uvBottom}},
		{mgl32.Vec3{left, top, 0}, mgl32.Vec2{uvLeft, uvTop}},
		{mgl32.Vec3{right, bottom, 0}, mgl32.Vec2{uvRight, uvBottom}},
		{mgl32.Vec3{right, top, 0}, mgl32.Vec2{uvRight, uvTop}},
	}

	dst := s.vbuf.Mapped()
	off := 0
	for _, v := range s.vertices {
		off = uniform.PutFloat32s(dst, off, v.Position[0], v.Position[1], v.Position[2], v.UV[0], v.UV[1])
	}
	s.dirty = false
	s.rebuilds++
	return nil
}

// Matrix returns viewProj * Translate(position) * RotateZ(rotation).
func (s *Sprite) Matrix(viewProj mgl32.Mat4) mgl32.Mat4 {
	world := mgl32.Translate3D(s.position[0], s.position[1], 0).Mul4(mgl32.HomogRotate3DZ(s.rotation))
	return viewProj.Mul4(world)
}

func (s *Sprite) writeConstants(viewProj mgl32.Mat4) {
	dst := s.constants.Mapped()
	off := uniform.PutVec4(dst, 0, s.color)
	uniform.PutMat4(dst, off, s.Matrix(viewProj))
}

// Draw records the sprite in pixel coordinates using the screen projection
// of its Pipelines.
func (s *Sprite) Draw(pass hal.RenderPassEncoder) error {
	return s.draw(pass, s.pipelines.ScreenProjection())
}

// DrawWithCamera records the sprite in world coordinates seen by camera.
// The camera's matrices must be up to date.
func (s *Sprite) DrawWithCamera(pass hal.RenderPassEncoder, camera *transform.Camera2D) error {
	return s.draw(pass, camera.ViewProjection())
}

func (s *Sprite) draw(pass hal.RenderPassEncoder, viewProj mgl32.Mat4) error {
	if s.vbuf == nil || s.constants == nil {
		return ErrDestroyed
	}
	if s.dirty {
		if err := s.rebuild(); err != nil {
			return fmt.Errorf("rebuild sprite vertices: %w", err)
		}
	}
	s.writeConstants(viewProj)

	if err := s.pipelines.SetBlendMode(pass, s.blend); err != nil {
		return err
	}
	s.constants.Bind(pass, groupConstants)
	if err := s.textures.Bind(pass, groupTexture, s.handle); err != nil {
		return err
	}
	pass.SetVertexBuffer(0, s.vbuf.Raw(), 0)
	pass.Draw(VertexCount, 1, 0, 0)
	return nil
}

// Destroy releases the vertex and constant buffers. Safe to call multiple times.
func (s *Sprite) Destroy() {
	if s.constants != nil {
		s.constants.Destroy()
		s.constants = nil
	}
	if s.vbuf != nil {
		s.vbuf.Destroy()
		s.vbuf = nil
	}
}
