package device

import (
	"errors"
	"fmt"
	"sync"
)

// Memory accounting errors.
var (
	// ErrMemoryBudgetExceeded is returned when an allocation would exceed budget.
	ErrMemoryBudgetExceeded = errors.New("device: memory budget exceeded")

	// ErrReleaseUnderflow is returned when more bytes are released than reserved.
	ErrReleaseUnderflow = errors.New("device: released more memory than reserved")
)

// Default memory limits.
const (
	// DefaultMaxMemoryMB is the default resource memory budget (256 MB).
	DefaultMaxMemoryMB = 256

	// MinMemoryMB is the minimum allowed memory budget (16 MB).
	MinMemoryMB = 16
)

// ResourceKind classifies a tracked allocation.
type ResourceKind uint8

const (
	// KindBuffer is a linear resource buffer.
	KindBuffer ResourceKind = iota

	// KindTexture is a sampled texture including its mip chain.
	KindTexture

	// KindRenderTarget is a depth or color attachment owned by the context.
	KindRenderTarget

	kindCount
)

// String returns a human-readable name for the kind.
func (k ResourceKind) String() string {
	switch k {
	case KindBuffer:
		return "Buffer"
	case KindTexture:
		return "Texture"
	case KindRenderTarget:
		return "RenderTarget"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// MemoryStats contains resource memory usage statistics.
type MemoryStats struct {
	// TotalBytes is the total memory budget in bytes.
	TotalBytes uint64

	// UsedBytes is the currently reserved memory in bytes.
	UsedBytes uint64

	// PeakBytes is the highest UsedBytes observed.
	PeakBytes uint64

	// AvailableBytes is the remaining memory budget.
	AvailableBytes uint64

	// BufferCount is the number of live resource buffers.
	BufferCount int

	// TextureCount is the number of live textures.
	TextureCount int

	// Utilization is the fraction of budget used (0.0 to 1.0).
	Utilization float64
}

// String returns a human-readable string of memory stats.
func (s MemoryStats) String() string {
	return fmt.Sprintf("Memory[%.1f%% used, %d/%d KB, peak %d KB, %d buffers, %d textures]",
		s.Utilization*100,
		s.UsedBytes/1024,
		s.TotalBytes/1024,
		s.PeakBytes/1024,
		s.BufferCount,
		s.TextureCount)
}

// MemoryBudget tracks bytes reserved by the context's resources and enforces
// an upper bound. Nothing is ever evicted: resources are released only by
// their owners.
//
// MemoryBudget is safe for concurrent use so stats can be read from any
// goroutine while the render thread allocates.
type MemoryBudget struct {
	mu sync.Mutex

	budgetBytes uint64
	usedBytes   uint64
	peakBytes   uint64
	counts      [kindCount]int
}

// NewMemoryBudget creates a budget of maxMB megabytes.
// Values below MinMemoryMB select DefaultMaxMemoryMB.
func NewMemoryBudget(maxMB int) *MemoryBudget {
	if maxMB < MinMemoryMB {
		maxMB = DefaultMaxMemoryMB
	}
	//nolint:gosec // G115: maxMB is bounded by MinMemoryMB minimum
	return &MemoryBudget{budgetBytes: uint64(maxMB) * 1024 * 1024}
}

// Reserve charges size bytes of the given kind against the budget.
func (m *MemoryBudget) Reserve(kind ResourceKind, size uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if size > m.budgetBytes-m.usedBytes {
		return fmt.Errorf("%w: %s of %d bytes, %d of %d bytes in use",
			ErrMemoryBudgetExceeded, kind, size, m.usedBytes, m.budgetBytes)
	}
	m.usedBytes += size
	if m.usedBytes > m.peakBytes {
		m.peakBytes = m.usedBytes
	}
	if kind < kindCount {
		m.counts[kind]++
	}
	return nil
}

// Release returns size bytes of the given kind to the budget.
func (m *MemoryBudget) Release(kind ResourceKind, size uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if size > m.usedBytes {
		m.usedBytes = 0
		return ErrReleaseUnderflow
	}
	m.usedBytes -= size
	if kind < kindCount && m.counts[kind] > 0 {
		m.counts[kind]--
	}
	return nil
}

// Stats returns a snapshot of the budget.
func (m *MemoryBudget) Stats() MemoryStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	var util float64
	if m.budgetBytes > 0 {
		util = float64(m.usedBytes) / float64(m.budgetBytes)
	}
	return MemoryStats{
		TotalBytes:     m.budgetBytes,
		UsedBytes:      m.usedBytes,
		PeakBytes:      m.peakBytes,
		AvailableBytes: m.budgetBytes - m.usedBytes,
		BufferCount:    m.counts[KindBuffer],
		TextureCount:   m.counts[KindTexture],
		Utilization:    util,
	}
}
