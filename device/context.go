package device

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx/internal/logging"
)

// Context owns the graphics device, the present surface with its two back
// buffers, the depth buffer, the command queue, the single command encoder
// and the frame fence.
//
// A Context is created once at startup and used from the render thread only.
// At most one command buffer is recording at a time: it is open from New
// (and every FrameEnd) until the next submission.
type Context struct {
	cfg Config

	instance    hal.Instance
	adapter     hal.Adapter
	adapterInfo gputypes.AdapterInfo
	device      hal.Device
	queue       hal.Queue
	surface     hal.Surface
	encoder     hal.CommandEncoder
	fence       *frameFence
	budget      *MemoryBudget

	surfaceFormat gputypes.TextureFormat
	width, height uint32

	depthTex  hal.Texture
	depthView hal.TextureView
	depthSize uint64

	uniformLayout hal.BindGroupLayout

	clearColor gputypes.Color

	// Per-frame state, valid between FrameBegin and FrameEnd.
	backBuffer     hal.SurfaceTexture
	backBufferView hal.TextureView
	pass           hal.RenderPassEncoder
	backIndex      int
	frameCount     uint64

	// pending holds the last submitted command buffer until the GPU has
	// finished it and the encoder has reset it.
	pending hal.CommandBuffer

	recording bool
	closed    bool
}

// New initializes a device context on backend: it creates an instance and
// surface for win, selects the highest-capability non-software adapter, opens
// the device and queue, configures the two-buffer surface, creates the depth
// buffer, the command encoder and the frame fence, and opens the encoder for
// the first frame.
//
// Any failure destroys what was already created and returns the error.
func New(backend hal.Backend, win Window, cfg Config) (*Context, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	ctx, err := NewWithInstance(instance, win, cfg)
	if err != nil {
		return nil, err
	}
	return ctx, nil
}

// NewWithInstance is New for an already created instance. The context takes
// ownership of instance and destroys it on Close or on failure.
func NewWithInstance(instance hal.Instance, win Window, cfg Config) (ctx *Context, err error) {
	if win == nil {
		instance.Destroy()
		return nil, ErrNilWindow
	}
	w, h := win.Size()
	if w <= 0 || h <= 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: %dx%d (%w)", ErrZeroArea, w, h, hal.ErrZeroArea)
	}

	cfg = cfg.withDefaults()
	c := &Context{
		cfg:        cfg,
		instance:   instance,
		budget:     NewMemoryBudget(cfg.MaxMemoryMB),
		clearColor: cfg.ClearColor,
		width:      uint32(w), //nolint:gosec // G115: checked positive above
		height:     uint32(h), //nolint:gosec // G115: checked positive above
	}
	defer func() {
		if err != nil {
			c.destroy()
		}
	}()

	display, window := win.Handles()
	c.surface, err = instance.CreateSurface(display, window)
	if err != nil {
		return nil, fmt.Errorf("create surface: %w", err)
	}

	exposed, err := selectAdapter(instance.EnumerateAdapters(c.surface), cfg.AllowSoftware)
	if err != nil {
		return nil, err
	}
	c.adapter = exposed.Adapter
	c.adapterInfo = exposed.Info
	if exposed.Info.DeviceType == gputypes.DeviceTypeCPU {
		logging.Logger().Warn("using software adapter", "name", exposed.Info.Name)
	}
	logging.Logger().Info("adapter selected",
		"name", exposed.Info.Name,
		"type", exposed.Info.DeviceType.String(),
		"backend", exposed.Info.Backend.String())

	open, err := c.adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		return nil, fmt.Errorf("open device: %w", err)
	}
	c.device, c.queue = open.Device, open.Queue

	c.encoder, err = c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: cfg.Label + "_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}

	c.surfaceFormat = chooseSurfaceFormat(c.adapter.SurfaceCapabilities(c.surface))
	if err = c.configureSurface(); err != nil {
		return nil, err
	}
	if err = c.createDepth(); err != nil {
		return nil, err
	}

	c.uniformLayout, err = c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: cfg.Label + "_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create uniform layout: %w", err)
	}

	c.fence = newFrameFence(c.device, c.queue)

	if err = c.encoder.BeginEncoding(cfg.Label + "_frame"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	c.recording = true

	logging.Logger().Debug("device context ready",
		"width", c.width, "height", c.height, "format", c.surfaceFormat)
	return c, nil
}

// configureSurface (re)configures the present surface for the current size.
func (c *Context) configureSurface() error {
	err := c.surface.Configure(c.device, &hal.SurfaceConfiguration{
		Width:       c.width,
		Height:      c.height,
		Format:      c.surfaceFormat,
		Usage:       gputypes.TextureUsageRenderAttachment,
		PresentMode: gputypes.PresentModeFifo,
		AlphaMode:   gputypes.CompositeAlphaModeOpaque,
	})
	if err != nil {
		return fmt.Errorf("configure surface %dx%d: %w", c.width, c.height, err)
	}
	return nil
}

// createDepth creates the depth buffer and its view for the current size.
func (c *Context) createDepth() error {
	size := uint64(c.width) * uint64(c.height) * 4
	if err := c.budget.Reserve(KindRenderTarget, size); err != nil {
		return fmt.Errorf("create depth texture: %w", err)
	}
	tex, err := c.device.CreateTexture(&hal.TextureDescriptor{
		Label:         c.cfg.Label + "_depth",
		Size:          hal.Extent3D{Width: c.width, Height: c.height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		_ = c.budget.Release(KindRenderTarget, size)
		return fmt.Errorf("create depth texture: %w", err)
	}
	view, err := c.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         c.cfg.Label + "_depth_view",
		Format:        DepthFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectDepthOnly,
		MipLevelCount: 1,
	})
	if err != nil {
		c.device.DestroyTexture(tex)
		_ = c.budget.Release(KindRenderTarget, size)
		return fmt.Errorf("create depth view: %w", err)
	}
	c.depthTex, c.depthView, c.depthSize = tex, view, size
	return nil
}

// destroyDepth releases the depth buffer.
func (c *Context) destroyDepth() {
	if c.depthView != nil {
		c.device.DestroyTextureView(c.depthView)
		c.depthView = nil
	}
	if c.depthTex != nil {
		c.device.DestroyTexture(c.depthTex)
		c.depthTex = nil
		_ = c.budget.Release(KindRenderTarget, c.depthSize)
		c.depthSize = 0
	}
}

// Resize waits for the GPU, reconfigures the surface and recreates the depth
// buffer for the new window size. It must not be called inside a frame.
func (c *Context) Resize(width, height int) error {
	if c.closed {
		return ErrClosed
	}
	if c.pass != nil {
		return ErrFrameInProgress
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrZeroArea, width, height)
	}
	if err := c.device.WaitIdle(); err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	c.width = uint32(width)   //nolint:gosec // G115: checked positive above
	c.height = uint32(height) //nolint:gosec // G115: checked positive above
	if err := c.configureSurface(); err != nil {
		return err
	}
	c.destroyDepth()
	return c.createDepth()
}

// Close waits for the GPU to go idle and releases every object in reverse
// creation order. Safe to call multiple times.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	var err error
	if c.device != nil {
		if werr := c.device.WaitIdle(); werr != nil {
			err = fmt.Errorf("close: %w", werr)
		}
	}
	c.destroy()
	return err
}

// destroy releases resources in reverse creation order. It tolerates a
// partially constructed context.
func (c *Context) destroy() {
	if c.closed {
		return
	}
	c.closed = true

	if c.pass != nil {
		c.pass.End()
		c.pass = nil
	}
	if c.backBufferView != nil {
		c.device.DestroyTextureView(c.backBufferView)
		c.backBufferView = nil
	}
	if c.backBuffer != nil {
		c.surface.DiscardTexture(c.backBuffer)
		c.backBuffer = nil
	}
	if c.encoder != nil {
		if c.pending != nil {
			c.encoder.ResetAll([]hal.CommandBuffer{c.pending})
			c.pending = nil
		}
		if c.recording {
			c.encoder.DiscardEncoding()
			c.recording = false
		}
		c.encoder.Destroy()
		c.encoder = nil
	}
	if c.uniformLayout != nil {
		c.device.DestroyBindGroupLayout(c.uniformLayout)
		c.uniformLayout = nil
	}
	if c.device != nil {
		c.destroyDepth()
	}
	if c.surface != nil {
		if c.device != nil {
			c.surface.Unconfigure(c.device)
		}
		c.surface.Destroy()
		c.surface = nil
	}
	if c.device != nil {
		c.device.Destroy()
		c.device = nil
	}
	if c.adapter != nil {
		c.adapter.Destroy()
		c.adapter = nil
	}
	if c.instance != nil {
		c.instance.Destroy()
		c.instance = nil
	}
}

// HalDevice returns the HAL device.
func (c *Context) HalDevice() hal.Device { return c.device }

// HalQueue returns the HAL queue.
func (c *Context) HalQueue() hal.Queue { return c.queue }

// Budget returns the memory budget shared by all resources of the context.
func (c *Context) Budget() *MemoryBudget { return c.budget }

// MemoryStats returns a snapshot of resource memory usage.
func (c *Context) MemoryStats() MemoryStats { return c.budget.Stats() }

// UniformLayout returns the bind group layout for a single uniform buffer at
// binding 0, visible to vertex and fragment stages.
func (c *Context) UniformLayout() hal.BindGroupLayout { return c.uniformLayout }

// ColorFormat returns the format of back buffer views.
func (c *Context) ColorFormat() gputypes.TextureFormat { return c.surfaceFormat }

// Size returns the surface size in pixels.
func (c *Context) Size() (width, height uint32) { return c.width, c.height }

// HalAdapterInfo returns the selected adapter's metadata.
func (c *Context) HalAdapterInfo() gputypes.AdapterInfo { return c.adapterInfo }

// SetClearColor sets the color back buffers are cleared to in FrameBegin.
func (c *Context) SetClearColor(color gputypes.Color) { c.clearColor = color }

// ClearColor returns the back buffer clear color.
func (c *Context) ClearColor() gputypes.Color { return c.clearColor }

// IsClosed reports whether Close has been called.
func (c *Context) IsClosed() bool { return c.closed }

// isSurfaceOutdated reports whether err asks for a surface reconfigure.
func isSurfaceOutdated(err error) bool {
	return errors.Is(err, hal.ErrSurfaceOutdated) || errors.Is(err, hal.ErrSurfaceLost)
}
