package sprite

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx/device"
	"github.com/gogpu/gfx/internal/logging"
	"github.com/gogpu/gfx/internal/shader"
	"github.com/gogpu/gfx/texture"
	"github.com/gogpu/gfx/transform"
)

//go:embed shaders/sprite.wgsl
var spriteShaderSource string

// Bind group indices used by the sprite shader.
const (
	groupConstants = 0
	groupTexture   = 1
)

var (
	// ErrBlendMode is returned for a blend mode outside the defined set.
	ErrBlendMode = errors.New("sprite: invalid blend mode")

	// ErrPipelinesDestroyed is returned when drawing with destroyed pipelines.
	ErrPipelinesDestroyed = errors.New("sprite: pipelines destroyed")
)

// Device is the part of device.Context the pipelines are built against.
type Device interface {
	HalDevice() hal.Device
	UniformLayout() hal.BindGroupLayout
	ColorFormat() gputypes.TextureFormat
	Size() (width, height uint32)
}

// Pipelines holds the sprite shader and one render pipeline per BlendMode.
type Pipelines struct {
	device     hal.Device
	shader     hal.ShaderModule
	pipeLayout hal.PipelineLayout
	pipelines  [blendModeCount]hal.RenderPipeline

	screenWidth  float32
	screenHeight float32
	screenProj   mgl32.Mat4
}

// NewPipelines compiles the sprite shader and creates the pipeline table.
// textures supplies the layout of bind group 1.
func NewPipelines(dev Device, textures *texture.Table) (*Pipelines, error) {
	if textures == nil {
		return nil, fmt.Errorf("sprite pipelines: %w", texture.ErrNilProvider)
	}
	p := &Pipelines{device: dev.HalDevice()}
	w, h := dev.Size()
	p.SetScreenSize(float32(w), float32(h))

	if err := p.create(dev.UniformLayout(), textures.Layout(), dev.ColorFormat()); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

func (p *Pipelines) create(constants, textures hal.BindGroupLayout, format gputypes.TextureFormat) error {
	module, err := shader.CreateModule(p.device, "sprite_shader", spriteShaderSource)
	if err != nil {
		return err
	}
	p.shader = module

	p.pipeLayout, err = p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "sprite_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{constants, textures},
	})
	if err != nil {
		return fmt.Errorf("create sprite pipeline layout: %w", err)
	}

	for _, mode := range BlendModes() {
		pipeline, err := p.device.CreateRenderPipeline(p.descriptor(mode, format))
		if err != nil {
			return fmt.Errorf("create sprite pipeline %s: %w", mode, err)
		}
		p.pipelines[mode] = pipeline
	}
	logging.Logger().Debug("sprite pipelines created", "count", int(blendModeCount), "format", format)
	return nil
}

func (p *Pipelines) descriptor(mode BlendMode, format gputypes.TextureFormat) *hal.RenderPipelineDescriptor {
	keep := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
	}
	return &hal.RenderPipelineDescriptor{
		Label:  "sprite_pipeline_" + mode.String(),
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    vertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{{
				Format:    format,
				Blend:     mode.blendState(),
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleStrip,
			CullMode: gputypes.CullModeNone,
		},
		DepthStencil: &hal.DepthStencilState{
			Format:            device.DepthFormat,
			DepthWriteEnabled: false,
			DepthCompare:      gputypes.CompareFunctionAlways,
			StencilFront:      keep,
			StencilBack:       keep,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}
}

func vertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{{
		ArrayStride: VertexStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},  // position
			{Format: gputypes.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1}, // uv
		},
	}}
}

// PreDraw binds the BlendNormal pipeline. Call it once per pass before
// drawing sprites.
func (p *Pipelines) PreDraw(pass hal.RenderPassEncoder) error {
	return p.SetBlendMode(pass, BlendNormal)
}

// SetBlendMode binds the pipeline for mode.
func (p *Pipelines) SetBlendMode(pass hal.RenderPassEncoder, mode BlendMode) error {
	pipeline, err := p.Pipeline(mode)
	if err != nil {
		return err
	}
	pass.SetPipeline(pipeline)
	return nil
}

// Pipeline returns the render pipeline for mode.
func (p *Pipelines) Pipeline(mode BlendMode) (hal.RenderPipeline, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrBlendMode, int(mode))
	}
	if p.pipelines[mode] == nil {
		return nil, ErrPipelinesDestroyed
	}
	return p.pipelines[mode], nil
}

// SetScreenSize updates the projection used by Sprite.Draw. Call it after
// the window is resized.
func (p *Pipelines) SetScreenSize(width, height float32) {
	p.screenWidth, p.screenHeight = width, height
	p.screenProj = transform.ScreenProjection(width, height)
}

// ScreenSize returns the size passed to the last SetScreenSize.
func (p *Pipelines) ScreenSize() (width, height float32) {
	return p.screenWidth, p.screenHeight
}

// ScreenProjection maps pixel coordinates, origin top-left, to clip space.
func (p *Pipelines) ScreenProjection() mgl32.Mat4 { return p.screenProj }

// Destroy releases the pipelines, layout and shader. Safe to call multiple times.
func (p *Pipelines) Destroy() {
	for i, pipeline := range p.pipelines {
		if pipeline != nil {
			p.device.DestroyRenderPipeline(pipeline)
			p.pipelines[i] = nil
		}
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
