package device

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// adapterRank orders device types from most to least preferred.
// Software adapters rank last and are only eligible when allowed.
func adapterRank(t gputypes.DeviceType) int {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return 4
	case gputypes.DeviceTypeIntegratedGPU:
		return 3
	case gputypes.DeviceTypeVirtualGPU:
		return 2
	case gputypes.DeviceTypeOther:
		return 1
	default:
		return 0
	}
}

// selectAdapter picks the highest-capability adapter. CPU adapters are
// skipped unless allowSoftware is set and nothing else is available.
// Ties keep enumeration order, which backends report by preference.
func selectAdapter(adapters []hal.ExposedAdapter, allowSoftware bool) (hal.ExposedAdapter, error) {
	best := -1
	bestRank := -1
	for i, a := range adapters {
		if a.Adapter == nil {
			continue
		}
		if a.Info.DeviceType == gputypes.DeviceTypeCPU && !allowSoftware {
			continue
		}
		if r := adapterRank(a.Info.DeviceType); r > bestRank {
			best, bestRank = i, r
		}
	}
	if best < 0 {
		return hal.ExposedAdapter{}, fmt.Errorf("%w: %d adapters enumerated", ErrNoAdapter, len(adapters))
	}
	return adapters[best], nil
}

// toAdapterType maps a HAL device type onto the gpucontext classification.
func toAdapterType(t gputypes.DeviceType) gpucontext.AdapterType {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		return gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		return gpucontext.AdapterTypeSoftware
	default:
		return gpucontext.AdapterTypeUnknown
	}
}

// surfaceFormatPreference lists back buffer formats in order of preference.
// sRGB formats come first so shader output is gamma encoded on write.
var surfaceFormatPreference = []gputypes.TextureFormat{
	gputypes.TextureFormatRGBA8UnormSrgb,
	gputypes.TextureFormatBGRA8UnormSrgb,
	gputypes.TextureFormatRGBA8Unorm,
	gputypes.TextureFormatBGRA8Unorm,
}

// chooseSurfaceFormat returns the preferred format the surface supports.
// A nil capability set falls back to RGBA8Unorm.
func chooseSurfaceFormat(caps *hal.SurfaceCapabilities) gputypes.TextureFormat {
	if caps == nil || len(caps.Formats) == 0 {
		return gputypes.TextureFormatRGBA8Unorm
	}
	for _, want := range surfaceFormatPreference {
		for _, have := range caps.Formats {
			if have == want {
				return want
			}
		}
	}
	return caps.Formats[0]
}
