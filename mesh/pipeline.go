package mesh

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx/device"
	"github.com/gogpu/gfx/internal/logging"
	"github.com/gogpu/gfx/internal/shader"
	"github.com/gogpu/gfx/texture"
)

//go:embed shaders/basic.wgsl
var basicShaderSource string

// Bind group indices of the basic pipeline.
const (
	GroupWorld   = 0
	GroupCamera  = 1
	GroupTexture = 2
)

// ErrPipelineDestroyed is returned by Bind after Destroy.
var ErrPipelineDestroyed = errors.New("mesh: pipeline destroyed")

// Device is the part of device.Context the pipeline is built against.
type Device interface {
	HalDevice() hal.Device
	UniformLayout() hal.BindGroupLayout
	ColorFormat() gputypes.TextureFormat
}

// Pipeline draws VertexPosUV meshes with a world transform, a 3D camera
// and a texture, depth tested and back-face culled. Front faces wind
// clockwise.
type Pipeline struct {
	device     hal.Device
	shader     hal.ShaderModule
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
}

// NewPipeline compiles the basic shader and creates the pipeline.
func NewPipeline(dev Device, textures *texture.Table) (*Pipeline, error) {
	if textures == nil {
		return nil, fmt.Errorf("mesh pipeline: %w", texture.ErrNilProvider)
	}
	p := &Pipeline{device: dev.HalDevice()}
	if err := p.create(dev.UniformLayout(), textures.Layout(), dev.ColorFormat()); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

func (p *Pipeline) create(constants, textures hal.BindGroupLayout, format gputypes.TextureFormat) error {
	module, err := shader.CreateModule(p.device, "mesh_basic_shader", basicShaderSource)
	if err != nil {
		return err
	}
	p.shader = module

	// World and camera constants share the device's uniform layout.
	p.pipeLayout, err = p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "mesh_basic_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{constants, constants, textures},
	})
	if err != nil {
		return fmt.Errorf("create mesh pipeline layout: %w", err)
	}

	p.pipeline, err = p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "mesh_basic_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    []gputypes.VertexBufferLayout{PosUVLayout()},
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{{
				Format:    format,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCW,
			CullMode:  gputypes.CullModeBack,
		},
		DepthStencil: &hal.DepthStencilState{
			Format:            device.DepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      gputypes.CompareFunctionLess,
			StencilFront:      keepStencil,
			StencilBack:       keepStencil,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create mesh pipeline: %w", err)
	}
	logging.Logger().Debug("mesh pipeline created", "format", format)
	return nil
}

var keepStencil = hal.StencilFaceState{
	Compare:     gputypes.CompareFunctionAlways,
	FailOp:      hal.StencilOperationKeep,
	DepthFailOp: hal.StencilOperationKeep,
	PassOp:      hal.StencilOperationKeep,
}

// Bind sets the pipeline on pass. The caller binds the world, camera and
// texture groups.
func (p *Pipeline) Bind(pass hal.RenderPassEncoder) error {
	if p.pipeline == nil {
		return ErrPipelineDestroyed
	}
	pass.SetPipeline(p.pipeline)
	return nil
}

// Raw returns the render pipeline, or nil after Destroy.
func (p *Pipeline) Raw() hal.RenderPipeline { return p.pipeline }

// Destroy releases the pipeline, layout and shader. Safe to call multiple times.
func (p *Pipeline) Destroy() {
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}
