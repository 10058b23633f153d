package device

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestNewMemoryBudget(t *testing.T) {
	tests := []struct {
		name  string
		maxMB int
		want  uint64
	}{
		{"default for zero", 0, DefaultMaxMemoryMB * 1024 * 1024},
		{"default below minimum", MinMemoryMB - 1, DefaultMaxMemoryMB * 1024 * 1024},
		{"minimum", MinMemoryMB, MinMemoryMB * 1024 * 1024},
		{"custom", 512, 512 * 1024 * 1024},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewMemoryBudget(tt.maxMB).Stats().TotalBytes; got != tt.want {
				t.Errorf("TotalBytes = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMemoryBudgetReserveRelease(t *testing.T) {
	m := NewMemoryBudget(MinMemoryMB)
	total := m.Stats().TotalBytes

	if err := m.Reserve(KindBuffer, 1024); err != nil {
		t.Fatalf("Reserve buffer: %v", err)
	}
	if err := m.Reserve(KindTexture, 4096); err != nil {
		t.Fatalf("Reserve texture: %v", err)
	}
	s := m.Stats()
	if s.UsedBytes != 5120 || s.BufferCount != 1 || s.TextureCount != 1 {
		t.Errorf("Stats() = %+v", s)
	}
	if s.AvailableBytes != total-5120 {
		t.Errorf("AvailableBytes = %d, want %d", s.AvailableBytes, total-5120)
	}

	if err := m.Reserve(KindBuffer, total); !errors.Is(err, ErrMemoryBudgetExceeded) {
		t.Errorf("over budget error = %v, want ErrMemoryBudgetExceeded", err)
	}

	if err := m.Release(KindTexture, 4096); err != nil {
		t.Fatalf("Release: %v", err)
	}
	s = m.Stats()
	if s.UsedBytes != 1024 || s.PeakBytes != 5120 || s.TextureCount != 0 {
		t.Errorf("after release Stats() = %+v", s)
	}

	if err := m.Release(KindBuffer, 4096); !errors.Is(err, ErrReleaseUnderflow) {
		t.Errorf("underflow error = %v, want ErrReleaseUnderflow", err)
	}
	if m.Stats().UsedBytes != 0 {
		t.Errorf("UsedBytes after underflow = %d, want 0", m.Stats().UsedBytes)
	}
}

func TestMemoryBudgetConcurrent(t *testing.T) {
	m := NewMemoryBudget(MinMemoryMB)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				if err := m.Reserve(KindBuffer, 256); err != nil {
					t.Errorf("Reserve: %v", err)
					return
				}
				_ = m.Stats()
				if err := m.Release(KindBuffer, 256); err != nil {
					t.Errorf("Release: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
	if s := m.Stats(); s.UsedBytes != 0 || s.BufferCount != 0 {
		t.Errorf("Stats() after balanced use = %+v", s)
	}
}

func TestResourceKindString(t *testing.T) {
	tests := []struct {
		kind ResourceKind
		want string
	}{
		{KindBuffer, "Buffer"},
		{KindTexture, "Texture"},
		{KindRenderTarget, "RenderTarget"},
		{ResourceKind(99), "Unknown(99)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestMemoryStatsString(t *testing.T) {
	m := NewMemoryBudget(MinMemoryMB)
	_ = m.Reserve(KindBuffer, 2048)
	s := m.Stats().String()
	for _, want := range []string{"2/16384 KB", "1 buffers", "0 textures"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}
