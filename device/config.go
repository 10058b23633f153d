package device

import "github.com/gogpu/gputypes"

// BackBufferCount is the number of images in the present surface.
const BackBufferCount = 2

// DefaultClearColor is the render target clear color.
var DefaultClearColor = gputypes.Color{R: 0.1, G: 0.25, B: 0.5, A: 0.0}

// DefaultDepthClear is the depth buffer clear value.
const DefaultDepthClear = 1.0

// DepthFormat is the format of the depth buffer.
const DepthFormat = gputypes.TextureFormatDepth32Float

// Config holds configuration for creating a device context.
type Config struct {
	// AllowSoftware permits CPU adapters when no hardware adapter exists.
	AllowSoftware bool

	// ClearColor is the back buffer clear color.
	// Defaults to DefaultClearColor when the zero value is given and
	// ClearColorSet is false.
	ClearColor gputypes.Color

	// ClearColorSet marks ClearColor as explicit, so an all-zero color is kept.
	ClearColorSet bool

	// MaxMemoryMB is the resource memory budget in megabytes.
	// Defaults to DefaultMaxMemoryMB if <= 0.
	MaxMemoryMB int

	// Label prefixes debug labels of created objects.
	// Defaults to "gfx".
	Label string
}

// withDefaults returns a copy of c with defaults applied.
func (c Config) withDefaults() Config {
	if !c.ClearColorSet && c.ClearColor == (gputypes.Color{}) {
		c.ClearColor = DefaultClearColor
	}
	if c.MaxMemoryMB <= 0 {
		c.MaxMemoryMB = DefaultMaxMemoryMB
	}
	if c.Label == "" {
		c.Label = "gfx"
	}
	return c
}
