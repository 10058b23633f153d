package gfx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// Backend names accepted by DeviceConfig.Backend.
const (
	BackendAuto   = "auto"
	BackendNoop   = "noop"
	BackendVulkan = "vulkan"
	BackendMetal  = "metal"
	BackendDX12   = "dx12"
	BackendGL     = "gl"
)

var backendNames = map[string]gputypes.Backend{
	BackendAuto:   gputypes.BackendEmpty,
	BackendNoop:   gputypes.BackendEmpty,
	BackendVulkan: gputypes.BackendVulkan,
	BackendMetal:  gputypes.BackendMetal,
	BackendDX12:   gputypes.BackendDX12,
	BackendGL:     gputypes.BackendGL,
}

// ErrBackendUnavailable is returned when the requested backend is not
// registered. Import github.com/gogpu/wgpu/hal/allbackends to register the
// platform backends.
var ErrBackendUnavailable = errors.New("gfx: backend unavailable")

// ResolveBackend returns the HAL backend for name. "noop" always resolves.
// "auto" picks the most capable registered backend.
func ResolveBackend(name string) (hal.Backend, error) {
	name = strings.ToLower(name)
	switch name {
	case BackendNoop:
		return noop.API{}, nil
	case BackendAuto, "":
		b, err := hal.SelectBestBackend()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrBackendUnavailable, BackendAuto, err)
		}
		return b, nil
	}
	variant, ok := backendNames[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, name)
	}
	b, ok := hal.GetBackend(variant)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBackendUnavailable, name)
	}
	return b, nil
}
