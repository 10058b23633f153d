package device

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

var _ gpucontext.DeviceProvider = (*Context)(nil)

// Device returns the HAL device as a gpucontext.Device.
// Consumers type-assert it to hal.Device.
func (c *Context) Device() gpucontext.Device { return c.device }

// Queue returns the HAL queue as a gpucontext.Queue.
func (c *Context) Queue() gpucontext.Queue { return c.queue }

// Adapter returns the HAL adapter as a gpucontext.Adapter.
func (c *Context) Adapter() gpucontext.Adapter { return c.adapter }

// SurfaceFormat returns the back buffer format.
func (c *Context) SurfaceFormat() gputypes.TextureFormat { return c.surfaceFormat }

// AdapterInfo returns the selected adapter's name and classification.
func (c *Context) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{
		Name: c.adapterInfo.Name,
		Type: toAdapterType(c.adapterInfo.DeviceType),
	}
}
