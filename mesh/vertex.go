package mesh

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// VertexPosUVStride is the byte size of VertexPosUV.
const VertexPosUVStride = 20

// VertexPosUV is a position with a texture coordinate.
type VertexPosUV struct {
	Position mgl32.Vec3
	UV       mgl32.Vec2
}

// PosUVLayout describes VertexPosUV to the vertex stage: location 0
// position, location 1 uv.
func PosUVLayout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: VertexPosUVStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
		},
	}
}

// Quad returns a width x height rectangle in the xy plane centered on the
// origin, facing -z, with uv (0,0) at the top-left corner.
func Quad(width, height float32) *Mesh[VertexPosUV] {
	w, h := width/2, height/2
	m := &Mesh[VertexPosUV]{}
	m.AddVertex(VertexPosUV{mgl32.Vec3{-w, -h, 0}, mgl32.Vec2{0, 1}})
	m.AddVertex(VertexPosUV{mgl32.Vec3{-w, h, 0}, mgl32.Vec2{0, 0}})
	m.AddVertex(VertexPosUV{mgl32.Vec3{w, -h, 0}, mgl32.Vec2{1, 1}})
	m.AddVertex(VertexPosUV{mgl32.Vec3{w, h, 0}, mgl32.Vec2{1, 0}})
	m.AddIndices(0, 1, 2, 2, 1, 3)
	return m
}
