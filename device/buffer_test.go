package device

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestAlignConstantBufferSize(t *testing.T) {
	tests := []struct {
		in, want uint64
	}{
		{0, 0},
		{1, 256},
		{64, 256},
		{256, 256},
		{257, 512},
		{144, 256},
		{1000, 1024},
	}
	for _, tt := range tests {
		if got := AlignConstantBufferSize(tt.in); got != tt.want {
			t.Errorf("AlignConstantBufferSize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCreateResourceBuffer(t *testing.T) {
	ctx := createNoopContext(t, Config{})
	before := ctx.MemoryStats()

	buf, err := ctx.CreateResourceBuffer(80, gputypes.BufferUsageVertex, "quad_vertices")
	if err != nil {
		t.Fatalf("CreateResourceBuffer: %v", err)
	}
	if buf.Size() != 80 {
		t.Errorf("Size() = %d, want 80 (no alignment)", buf.Size())
	}
	if buf.Usage()&gputypes.BufferUsageMapWrite == 0 || buf.Usage()&gputypes.BufferUsageVertex == 0 {
		t.Errorf("Usage() = %v, want Vertex|MapWrite|CopyDst", buf.Usage())
	}
	if buf.Label() != "quad_vertices" || buf.Raw() == nil {
		t.Errorf("Label() = %q, Raw() = %v", buf.Label(), buf.Raw())
	}

	stats := ctx.MemoryStats()
	if stats.UsedBytes != before.UsedBytes+80 || stats.BufferCount != before.BufferCount+1 {
		t.Errorf("after create: used=%d buffers=%d", stats.UsedBytes, stats.BufferCount)
	}

	buf.Destroy()
	buf.Destroy()
	stats = ctx.MemoryStats()
	if stats.UsedBytes != before.UsedBytes || stats.BufferCount != before.BufferCount {
		t.Errorf("after destroy: used=%d buffers=%d, want %d and %d",
			stats.UsedBytes, stats.BufferCount, before.UsedBytes, before.BufferCount)
	}
	if _, err := buf.Map(); !errors.Is(err, ErrBufferDestroyed) {
		t.Errorf("Map after Destroy error = %v, want ErrBufferDestroyed", err)
	}
}

func TestCreateResourceBufferErrors(t *testing.T) {
	ctx := createNoopContext(t, Config{MaxMemoryMB: MinMemoryMB})

	if _, err := ctx.CreateResourceBuffer(0, gputypes.BufferUsageVertex, "empty"); !errors.Is(err, ErrZeroSize) {
		t.Errorf("zero size error = %v, want ErrZeroSize", err)
	}
	_, err := ctx.CreateResourceBuffer(MinMemoryMB*1024*1024, gputypes.BufferUsageVertex, "huge")
	if !errors.Is(err, ErrMemoryBudgetExceeded) {
		t.Errorf("over budget error = %v, want ErrMemoryBudgetExceeded", err)
	}
}

func TestBufferMapWrite(t *testing.T) {
	ctx := createNoopContext(t, Config{})
	buf, err := ctx.CreateResourceBuffer(8, gputypes.BufferUsageIndex, "indices")
	if err != nil {
		t.Fatalf("CreateResourceBuffer: %v", err)
	}
	defer buf.Destroy()

	if err := buf.Write(2, []byte{1, 2, 3}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.Mapped() != nil {
		t.Error("scoped Write left the buffer mapped")
	}
	if err := buf.Write(6, []byte{1, 2, 3}); !errors.Is(err, ErrWriteOutOfRange) {
		t.Errorf("overflowing Write error = %v, want ErrWriteOutOfRange", err)
	}

	m, err := buf.Map()
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if !bytes.Equal(m, []byte{0, 0, 1, 2, 3, 0, 0, 0}) {
		t.Errorf("mapped contents = %v", m)
	}
	if _, err := buf.Map(); !errors.Is(err, ErrAlreadyMapped) {
		t.Errorf("second Map error = %v, want ErrAlreadyMapped", err)
	}
	if err := buf.Unmap(); err != nil {
		t.Fatalf("Unmap: %v", err)
	}
	if err := buf.Unmap(); !errors.Is(err, ErrNotMapped) {
		t.Errorf("second Unmap error = %v, want ErrNotMapped", err)
	}
}

func TestBufferMapPersistent(t *testing.T) {
	ctx := createNoopContext(t, Config{})
	buf, err := ctx.CreateResourceBuffer(16, gputypes.BufferUsageVertex, "persistent")
	if err != nil {
		t.Fatalf("CreateResourceBuffer: %v", err)
	}
	defer buf.Destroy()

	m1, err := buf.MapPersistent()
	if err != nil {
		t.Fatalf("MapPersistent: %v", err)
	}
	m2, err := buf.MapPersistent()
	if err != nil {
		t.Fatalf("second MapPersistent: %v", err)
	}
	if &m1[0] != &m2[0] || !buf.IsPersistent() {
		t.Error("MapPersistent is not idempotent")
	}
	if err := buf.Write(0, []byte{9}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if m1[0] != 9 {
		t.Errorf("persistent mapping not written in place: %v", m1[0])
	}
}

func TestCreateConstantBuffer(t *testing.T) {
	ctx := createNoopContext(t, Config{})

	cb, err := ctx.CreateConstantBuffer(144, "camera")
	if err != nil {
		t.Fatalf("CreateConstantBuffer: %v", err)
	}
	if cb.Size() != 256 {
		t.Errorf("Size() = %d, want 256", cb.Size())
	}
	if !cb.IsPersistent() || len(cb.Mapped()) != 256 {
		t.Error("constant buffer is not persistently mapped")
	}
	if cb.BindGroup() == nil {
		t.Error("BindGroup() is nil")
	}
	if cb.Usage()&gputypes.BufferUsageUniform == 0 {
		t.Errorf("Usage() = %v, want Uniform", cb.Usage())
	}

	if err := ctx.FrameBegin(); err != nil {
		t.Fatalf("FrameBegin: %v", err)
	}
	cb.Bind(ctx.Pass(), 0)
	if err := ctx.FrameEnd(); err != nil {
		t.Fatalf("FrameEnd: %v", err)
	}

	cb.Destroy()
	cb.Destroy()
	if cb.BindGroup() != nil {
		t.Error("BindGroup() not cleared by Destroy")
	}
}
