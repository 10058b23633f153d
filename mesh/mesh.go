// Package mesh uploads indexed vertex data and draws it with a basic
// unlit textured pipeline.
package mesh

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx/device"
)

var (
	// ErrEmptyMesh is returned by CreateBuffers when the mesh has no
	// vertices or no indices.
	ErrEmptyMesh = errors.New("mesh: no vertices or indices")

	// ErrAlreadyUploaded is returned by a second CreateBuffers.
	ErrAlreadyUploaded = errors.New("mesh: buffers already created")

	// ErrNotUploaded is returned by Draw before CreateBuffers.
	ErrNotUploaded = errors.New("mesh: buffers not created")

	// ErrIndexOutOfRange is returned when an index refers past the last vertex.
	ErrIndexOutOfRange = errors.New("mesh: index out of range")
)

// Allocator creates resource buffers. *device.Context implements it.
type Allocator interface {
	CreateResourceBuffer(size uint64, usage gputypes.BufferUsage, label string) (*device.Buffer, error)
}

// Mesh holds vertices of type V and 16-bit indices. V must be plain data
// (no pointers, slices or strings) laid out as the pipeline's vertex layout
// expects. The zero value is an empty mesh.
type Mesh[V any] struct {
	vertices []V
	indices  []uint16

	vbuf *device.Buffer
	ibuf *device.Buffer
}

// AddVertex appends v. Vertices added after CreateBuffers are not uploaded.
func (m *Mesh[V]) AddVertex(v V) { m.vertices = append(m.vertices, v) }

// AddIndex appends i.
func (m *Mesh[V]) AddIndex(i uint16) { m.indices = append(m.indices, i) }

// AddIndices appends every index in order.
func (m *Mesh[V]) AddIndices(indices ...uint16) { m.indices = append(m.indices, indices...) }

// VertexCount returns the number of CPU-side vertices.
func (m *Mesh[V]) VertexCount() int { return len(m.vertices) }

// IndexCount returns the number of CPU-side indices.
func (m *Mesh[V]) IndexCount() int { return len(m.indices) }

// Vertices returns the CPU-side vertices. The slice must not be modified.
func (m *Mesh[V]) Vertices() []V { return m.vertices }

// Indices returns the CPU-side indices. The slice must not be modified.
func (m *Mesh[V]) Indices() []uint16 { return m.indices }

// Uploaded reports whether CreateBuffers succeeded.
func (m *Mesh[V]) Uploaded() bool { return m.vbuf != nil }

// CreateBuffers uploads the vertices and indices once.
func (m *Mesh[V]) CreateBuffers(alloc Allocator) error {
	if m.vbuf != nil {
		return ErrAlreadyUploaded
	}
	if len(m.vertices) == 0 || len(m.indices) == 0 {
		return fmt.Errorf("%w: %d vertices, %d indices", ErrEmptyMesh, len(m.vertices), len(m.indices))
	}
	for _, i := range m.indices {
		if int(i) >= len(m.vertices) {
			return fmt.Errorf("%w: %d >= %d vertices", ErrIndexOutOfRange, i, len(m.vertices))
		}
	}

	vbuf, err := upload(alloc, sliceBytes(m.vertices), gputypes.BufferUsageVertex, "mesh_vertices")
	if err != nil {
		return err
	}
	ibuf, err := upload(alloc, sliceBytes(m.indices), gputypes.BufferUsageIndex, "mesh_indices")
	if err != nil {
		vbuf.Destroy()
		return err
	}
	m.vbuf, m.ibuf = vbuf, ibuf
	return nil
}

// upload creates a buffer holding data, padded to a multiple of four bytes.
func upload(alloc Allocator, data []byte, usage gputypes.BufferUsage, label string) (*device.Buffer, error) {
	size := (uint64(len(data)) + 3) &^ 3
	buf, err := alloc.CreateResourceBuffer(size, usage, label)
	if err != nil {
		return nil, err
	}
	if err := buf.Write(0, data); err != nil {
		buf.Destroy()
		return nil, err
	}
	return buf, nil
}

// sliceBytes views s as raw bytes.
func sliceBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	size := int(unsafe.Sizeof(zero)) * len(s)
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), size) //nolint:gosec // plain-data vertex serialization
}

// Draw binds the vertex and index buffers and draws every index.
func (m *Mesh[V]) Draw(pass hal.RenderPassEncoder) error {
	if m.vbuf == nil {
		return ErrNotUploaded
	}
	pass.SetVertexBuffer(0, m.vbuf.Raw(), 0)
	pass.SetIndexBuffer(m.ibuf.Raw(), gputypes.IndexFormatUint16, 0)
	pass.DrawIndexed(uint32(len(m.indices)), 1, 0, 0, 0) //nolint:gosec // G115: index count is bounded by buffer size
	return nil
}

// VertexBuffer returns the uploaded vertex buffer, or nil.
func (m *Mesh[V]) VertexBuffer() *device.Buffer { return m.vbuf }

// IndexBuffer returns the uploaded index buffer, or nil.
func (m *Mesh[V]) IndexBuffer() *device.Buffer { return m.ibuf }

// Destroy releases the GPU buffers. The CPU-side data is kept. Safe to call
// multiple times.
func (m *Mesh[V]) Destroy() {
	if m.vbuf != nil {
		m.vbuf.Destroy()
		m.vbuf = nil
	}
	if m.ibuf != nil {
		m.ibuf.Destroy()
		m.ibuf = nil
	}
}
