package transform

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx/device"
)

// Allocator creates constant buffers. *device.Context implements it.
type Allocator interface {
	CreateConstantBuffer(size uint64, label string) (*device.ConstantBuffer, error)
}

// constants is the constant buffer shared by every transform type.
type constants struct {
	cb *device.ConstantBuffer
}

func (c *constants) create(alloc Allocator, size uint64, label string) error {
	if c.cb != nil {
		return ErrBufferExists
	}
	cb, err := alloc.CreateConstantBuffer(size, label)
	if err != nil {
		return fmt.Errorf("create %s constants: %w", label, err)
	}
	c.cb = cb
	return nil
}

// mapped returns the persistent mapping or ErrNoBuffer.
func (c *constants) mapped() ([]byte, error) {
	if c.cb == nil {
		return nil, ErrNoBuffer
	}
	return c.cb.Mapped(), nil
}

func (c *constants) bind(pass hal.RenderPassEncoder, group uint32) {
	c.cb.Bind(pass, group)
}

// Buffer returns the constant buffer, or nil before CreateBuffer.
func (c *constants) Buffer() *device.ConstantBuffer { return c.cb }

// Destroy releases the constant buffer. Safe to call multiple times.
func (c *constants) Destroy() {
	if c.cb != nil {
		c.cb.Destroy()
		c.cb = nil
	}
}
