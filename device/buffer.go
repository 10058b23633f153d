package device

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx/internal/logging"
)

// ConstantBufferAlignment is the size granularity of constant buffers.
const ConstantBufferAlignment = 256

// AlignConstantBufferSize rounds size up to ConstantBufferAlignment.
func AlignConstantBufferSize(size uint64) uint64 {
	return (size + ConstantBufferAlignment - 1) &^ (ConstantBufferAlignment - 1)
}

// uploadUsage is OR-ed into every resource buffer so the CPU can write it.
const uploadUsage = gputypes.BufferUsageMapWrite | gputypes.BufferUsageCopyDst

// Buffer is a CPU-writable, GPU-readable linear allocation in upload memory.
// Its GPU address is stable until Destroy.
//
// A Buffer is owned by exactly one drawable and is not safe for concurrent use.
type Buffer struct {
	device hal.Device
	budget *MemoryBudget
	raw    hal.Buffer
	size   uint64
	usage  gputypes.BufferUsage
	label  string

	mapped     []byte
	persistent bool
	destroyed  bool
}

// CreateResourceBuffer allocates a linear buffer of size bytes in upload
// memory. usage selects the GPU bindings the buffer is used for (vertex,
// index, uniform) and is combined with MapWrite|CopyDst.
//
// No alignment is applied; constant buffer callers round with
// AlignConstantBufferSize first.
func (c *Context) CreateResourceBuffer(size uint64, usage gputypes.BufferUsage, label string) (*Buffer, error) {
	if c.closed {
		return nil, ErrClosed
	}
	return newBuffer(c.device, c.budget, size, usage, label)
}

func newBuffer(device hal.Device, budget *MemoryBudget, size uint64, usage gputypes.BufferUsage, label string) (*Buffer, error) {
	if size == 0 {
		return nil, fmt.Errorf("create buffer %q: %w", label, ErrZeroSize)
	}
	if budget != nil {
		if err := budget.Reserve(KindBuffer, size); err != nil {
			return nil, fmt.Errorf("create buffer %q: %w", label, err)
		}
	}

	usage |= uploadUsage
	raw, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		if budget != nil {
			_ = budget.Release(KindBuffer, size)
		}
		return nil, fmt.Errorf("create buffer %q: %w", label, err)
	}

	logging.Logger().Debug("resource buffer created", "label", label, "size", size)
	return &Buffer{
		device: device,
		budget: budget,
		raw:    raw,
		size:   size,
		usage:  usage,
		label:  label,
	}, nil
}

// Size returns the buffer size in bytes.
func (b *Buffer) Size() uint64 { return b.size }

// Usage returns the buffer usage flags.
func (b *Buffer) Usage() gputypes.BufferUsage { return b.usage }

// Label returns the debug label.
func (b *Buffer) Label() string { return b.label }

// Raw returns the underlying HAL buffer for binding.
func (b *Buffer) Raw() hal.Buffer { return b.raw }

// Mapped returns the current CPU mapping, or nil when unmapped.
func (b *Buffer) Mapped() []byte { return b.mapped }

// IsPersistent reports whether the buffer holds a persistent mapping.
func (b *Buffer) IsPersistent() bool { return b.persistent }

// Map maps the whole buffer for CPU writes. Every Map must be paired with
// Unmap before the mapping is used again.
func (b *Buffer) Map() ([]byte, error) {
	if b.destroyed {
		return nil, ErrBufferDestroyed
	}
	if b.mapped != nil {
		return nil, fmt.Errorf("map %q: %w", b.label, ErrAlreadyMapped)
	}
	m, err := b.device.MapBuffer(b.raw, 0, b.size)
	if err != nil {
		return nil, fmt.Errorf("map %q: %w", b.label, err)
	}
	b.mapped = unsafe.Slice((*byte)(m.Ptr), int(b.size)) //nolint:gosec // G115: size fits in memory
	return b.mapped, nil
}

// MapPersistent maps the buffer once and keeps the mapping until Destroy.
// Calling it again returns the same mapping.
func (b *Buffer) MapPersistent() ([]byte, error) {
	if b.persistent {
		return b.mapped, nil
	}
	mapped, err := b.Map()
	if err != nil {
		return nil, err
	}
	b.persistent = true
	return mapped, nil
}

// Unmap releases the CPU mapping, including a persistent one.
func (b *Buffer) Unmap() error {
	if b.destroyed {
		return ErrBufferDestroyed
	}
	if b.mapped == nil {
		return fmt.Errorf("unmap %q: %w", b.label, ErrNotMapped)
	}
	b.mapped = nil
	b.persistent = false
	if err := b.device.UnmapBuffer(b.raw); err != nil {
		return fmt.Errorf("unmap %q: %w", b.label, err)
	}
	return nil
}

// Write copies data into the buffer at offset. A persistently mapped buffer
// is written in place; otherwise the buffer is mapped for the duration of
// the write.
func (b *Buffer) Write(offset uint64, data []byte) error {
	if b.destroyed {
		return ErrBufferDestroyed
	}
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("write %q at %d+%d: %w", b.label, offset, len(data), ErrWriteOutOfRange)
	}
	if b.mapped != nil {
		copy(b.mapped[offset:], data)
		return nil
	}
	mapped, err := b.Map()
	if err != nil {
		return err
	}
	copy(mapped[offset:], data)
	return b.Unmap()
}

// Destroy unmaps and releases the buffer. Safe to call multiple times.
func (b *Buffer) Destroy() {
	if b.destroyed {
		return
	}
	if b.mapped != nil {
		_ = b.device.UnmapBuffer(b.raw)
		b.mapped = nil
		b.persistent = false
	}
	b.device.DestroyBuffer(b.raw)
	b.destroyed = true
	if b.budget != nil {
		if err := b.budget.Release(KindBuffer, b.size); err != nil {
			logging.Logger().Warn("buffer release accounting", "label", b.label, "err", err)
		}
	}
}

// ConstantBuffer is a persistently mapped uniform buffer together with the
// bind group that exposes it to shaders at a single binding.
type ConstantBuffer struct {
	*Buffer
	bindGroup hal.BindGroup
}

// CreateConstantBuffer allocates a uniform buffer of at least size bytes
// (rounded up to ConstantBufferAlignment), maps it persistently, and creates
// its bind group against UniformLayout.
func (c *Context) CreateConstantBuffer(size uint64, label string) (*ConstantBuffer, error) {
	if c.closed {
		return nil, ErrClosed
	}
	aligned := AlignConstantBufferSize(size)
	buf, err := newBuffer(c.device, c.budget, aligned, gputypes.BufferUsageUniform, label)
	if err != nil {
		return nil, err
	}
	if _, err := buf.MapPersistent(); err != nil {
		buf.Destroy()
		return nil, err
	}

	group, err := c.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  label + "_bind",
		Layout: c.uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: buf.raw.NativeHandle(), Offset: 0, Size: aligned,
			}},
		},
	})
	if err != nil {
		buf.Destroy()
		return nil, fmt.Errorf("create bind group %q: %w", label, err)
	}
	return &ConstantBuffer{Buffer: buf, bindGroup: group}, nil
}

// BindGroup returns the bind group exposing the buffer.
func (cb *ConstantBuffer) BindGroup() hal.BindGroup { return cb.bindGroup }

// Bind binds the constant buffer at the given group index of the pass.
func (cb *ConstantBuffer) Bind(pass hal.RenderPassEncoder, group uint32) {
	pass.SetBindGroup(group, cb.bindGroup, nil)
}

// Destroy releases the bind group and the buffer. Safe to call multiple times.
func (cb *ConstantBuffer) Destroy() {
	if cb.bindGroup != nil {
		cb.device.DestroyBindGroup(cb.bindGroup)
		cb.bindGroup = nil
	}
	cb.Buffer.Destroy()
}
