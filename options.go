package gfx

import "github.com/gogpu/gputypes"

// Option overrides a Config field when creating an Engine.
//
// Example:
//
//	e, err := gfx.New(win, cfg, gfx.WithBackend("noop"), gfx.WithTextureCapacity(128))
type Option func(*Config)

// WithClearColor sets the back buffer clear color.
func WithClearColor(c gputypes.Color) Option {
	return func(cfg *Config) {
		cfg.Device.ClearColor = [4]float64{c.R, c.G, c.B, c.A}
	}
}

// WithTextureCapacity sets the number of texture table slots.
func WithTextureCapacity(n int) Option {
	return func(cfg *Config) {
		cfg.Textures.Capacity = n
	}
}

// WithBackend selects the HAL backend by name.
func WithBackend(name string) Option {
	return func(cfg *Config) {
		cfg.Device.Backend = name
	}
}

// WithResourceDir sets the directory texture paths are resolved against.
func WithResourceDir(dir string) Option {
	return func(cfg *Config) {
		cfg.Textures.ResourceDir = dir
	}
}

// WithAllowSoftware permits CPU adapters.
func WithAllowSoftware(allow bool) Option {
	return func(cfg *Config) {
		cfg.Device.AllowSoftware = allow
	}
}

func colorOf(c [4]float64) gputypes.Color {
	return gputypes.Color{R: c[0], G: c[1], B: c[2], A: c[3]}
}
