package device

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx/internal/logging"
)

// FrameBegin acquires the next back buffer, transitions it to a render
// target and opens a render pass that clears color and depth. The viewport
// and scissor cover the whole window.
//
// The pass is available through Pass until FrameEnd.
func (c *Context) FrameBegin() error {
	if c.closed {
		return ErrClosed
	}
	if c.pass != nil {
		return ErrFrameInProgress
	}
	if !c.recording {
		// A failed FrameEnd left the encoder closed, possibly with a
		// submission still in flight.
		if err := c.retire(); err != nil {
			return err
		}
		if err := c.encoder.BeginEncoding(c.cfg.Label + "_frame"); err != nil {
			return fmt.Errorf("begin encoding: %w", err)
		}
		c.recording = true
	}

	acquired, err := c.acquire()
	if err != nil {
		return err
	}
	if acquired.Suboptimal {
		logging.Logger().Debug("suboptimal surface texture", "frame", c.frameCount)
	}

	view, err := c.device.CreateTextureView(acquired.Texture, &hal.TextureViewDescriptor{
		Label:         c.cfg.Label + "_backbuffer_view",
		Format:        c.surfaceFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		c.surface.DiscardTexture(acquired.Texture)
		return fmt.Errorf("create back buffer view: %w", err)
	}
	c.backBuffer = acquired.Texture
	c.backBufferView = view

	c.encoder.TransitionTextures([]hal.TextureBarrier{
		backBufferBarrier(c.backBuffer, gputypes.TextureUsageNone, gputypes.TextureUsageRenderAttachment),
	})

	c.pass = c.encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: c.cfg.Label + "_frame_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: c.clearColor,
		}},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:            c.depthView,
			DepthLoadOp:     gputypes.LoadOpClear,
			DepthStoreOp:    gputypes.StoreOpStore,
			DepthClearValue: DefaultDepthClear,
		},
	})
	c.pass.SetViewport(0, 0, float32(c.width), float32(c.height), 0, 1)
	c.pass.SetScissorRect(0, 0, c.width, c.height)
	return nil
}

// acquire gets the next surface texture. An outdated surface is reconfigured
// once and the acquire retried.
func (c *Context) acquire() (*hal.AcquiredSurfaceTexture, error) {
	acquired, err := c.surface.AcquireTexture(nil)
	if err != nil && isSurfaceOutdated(err) {
		logging.Logger().Warn("surface outdated, reconfiguring", "err", err)
		if cerr := c.configureSurface(); cerr != nil {
			return nil, cerr
		}
		acquired, err = c.surface.AcquireTexture(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("acquire back buffer: %w", err)
	}
	return acquired, nil
}

// FrameEnd closes the render pass, transitions the back buffer back to
// presentable, submits the recorded commands and presents. It then blocks
// until the GPU has completed the frame, and only after that resets the
// command encoder and opens it for the next frame.
func (c *Context) FrameEnd() error {
	if c.closed {
		return ErrClosed
	}
	if c.pass == nil {
		return ErrNoFrame
	}

	c.pass.End()
	c.pass = nil
	c.encoder.TransitionTextures([]hal.TextureBarrier{
		backBufferBarrier(c.backBuffer, gputypes.TextureUsageRenderAttachment, gputypes.TextureUsageNone),
	})

	cmd, err := c.encoder.EndEncoding()
	c.recording = false
	if err != nil {
		c.releaseBackBuffer(true)
		return fmt.Errorf("end encoding: %w", err)
	}

	submission, err := c.queue.Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		c.encoder.ResetAll([]hal.CommandBuffer{cmd})
		c.releaseBackBuffer(true)
		return fmt.Errorf("submit frame: %w", err)
	}
	c.pending = cmd
	c.fence.signal(submission)

	presentErr := c.queue.Present(c.surface, c.backBuffer, nil)
	c.releaseBackBuffer(false)
	if presentErr != nil {
		presentErr = fmt.Errorf("present: %w", presentErr)
	}
	if err := c.retire(); err != nil {
		return errors.Join(presentErr, err)
	}
	if presentErr != nil {
		return presentErr
	}

	if err := c.encoder.BeginEncoding(c.cfg.Label + "_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	c.recording = true

	c.frameCount++
	c.backIndex = (c.backIndex + 1) % BackBufferCount
	return nil
}

// retire waits for the last submitted frame and resets its command buffer.
// A failed wait keeps the buffer pending so the next call retries.
func (c *Context) retire() error {
	if c.pending == nil {
		return nil
	}
	if err := c.fence.wait(); err != nil {
		return err
	}
	c.encoder.ResetAll([]hal.CommandBuffer{c.pending})
	c.pending = nil
	return nil
}

// releaseBackBuffer destroys the back buffer view. A texture that was not
// presented is handed back to the surface.
func (c *Context) releaseBackBuffer(discard bool) {
	if c.backBufferView != nil {
		c.device.DestroyTextureView(c.backBufferView)
		c.backBufferView = nil
	}
	if discard && c.backBuffer != nil {
		c.surface.DiscardTexture(c.backBuffer)
	}
	c.backBuffer = nil
}

func backBufferBarrier(tex hal.Texture, from, to gputypes.TextureUsage) hal.TextureBarrier {
	return hal.TextureBarrier{
		Texture: tex,
		Range: hal.TextureRange{
			Aspect:          gputypes.TextureAspectAll,
			MipLevelCount:   1,
			ArrayLayerCount: 1,
		},
		Usage: hal.TextureUsageTransition{OldUsage: from, NewUsage: to},
	}
}

// Pass returns the render pass opened by FrameBegin, or nil outside a frame.
func (c *Context) Pass() hal.RenderPassEncoder { return c.pass }

// InFrame reports whether a frame is open.
func (c *Context) InFrame() bool { return c.pass != nil }

// SetViewport sets the viewport of the open pass. Depth range is 0..1.
func (c *Context) SetViewport(x, y, width, height float32) error {
	if c.pass == nil {
		return ErrNoFrame
	}
	c.pass.SetViewport(x, y, width, height, 0, 1)
	return nil
}

// SetScissorRect sets the scissor rectangle of the open pass.
func (c *Context) SetScissorRect(x, y, width, height uint32) error {
	if c.pass == nil {
		return ErrNoFrame
	}
	c.pass.SetScissorRect(x, y, width, height)
	return nil
}

// BackBufferIndex returns the index of the back buffer the next frame
// renders to. It alternates between 0 and 1.
func (c *Context) BackBufferIndex() int { return c.backIndex }

// FrameCount returns the number of frames ended successfully.
func (c *Context) FrameCount() uint64 { return c.frameCount }

// SignaledValue returns the fence value of the last submitted frame.
func (c *Context) SignaledValue() uint64 { return c.fence.signaled }

// CompletedValue returns the fence value of the last frame the GPU finished.
func (c *Context) CompletedValue() uint64 { return c.fence.completedValue() }
