package gfx

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/gfx/device"
	"github.com/gogpu/gfx/texture"
)

// Default configuration values.
const (
	DefaultWidth       = 1280
	DefaultHeight      = 720
	DefaultTitle       = "DirectX"
	DefaultBackend     = BackendAuto
	DefaultResourceDir = "resources"
)

// ErrInvalidConfig is returned by Validate and the config loaders.
var ErrInvalidConfig = errors.New("gfx: invalid config")

// Config is the engine configuration, loadable from TOML:
//
//	[window]
//	width = 1280
//	height = 720
//	title = "DirectX"
//
//	[device]
//	backend = "auto"
//	allow_software = false
//	max_memory_mb = 256
//	clear_color = [0.1, 0.25, 0.5, 0.0]
//
//	[textures]
//	capacity = 50
//	resource_dir = "resources"
type Config struct {
	Window   WindowConfig  `toml:"window"`
	Device   DeviceConfig  `toml:"device"`
	Textures TextureConfig `toml:"textures"`
}

// WindowConfig describes the window the engine renders into.
type WindowConfig struct {
	// Width defaults to DefaultWidth if <= 0.
	Width int `toml:"width"`
	// Height defaults to DefaultHeight if <= 0.
	Height int    `toml:"height"`
	Title  string `toml:"title"`
}

// DeviceConfig selects and sizes the GPU device.
type DeviceConfig struct {
	// Backend is one of auto, noop, vulkan, metal, dx12, gl.
	Backend       string `toml:"backend"`
	AllowSoftware bool   `toml:"allow_software"`
	// MaxMemoryMB defaults to device.DefaultMaxMemoryMB if <= 0.
	MaxMemoryMB int `toml:"max_memory_mb"`
	// ClearColor is RGBA in 0..1.
	ClearColor [4]float64 `toml:"clear_color"`
}

// TextureConfig sizes the texture table.
type TextureConfig struct {
	// Capacity defaults to texture.DefaultCapacity if <= 0.
	Capacity    int    `toml:"capacity"`
	ResourceDir string `toml:"resource_dir"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	c := device.DefaultClearColor
	return Config{
		Window: WindowConfig{
			Width:  DefaultWidth,
			Height: DefaultHeight,
			Title:  DefaultTitle,
		},
		Device: DeviceConfig{
			Backend:     DefaultBackend,
			MaxMemoryMB: device.DefaultMaxMemoryMB,
			ClearColor:  [4]float64{c.R, c.G, c.B, c.A},
		},
		Textures: TextureConfig{
			Capacity:    texture.DefaultCapacity,
			ResourceDir: DefaultResourceDir,
		},
	}
}

// LoadConfig reads a TOML file. Keys missing from the file keep their
// DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes TOML on top of DefaultConfig. Unknown keys are an error.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, strict.String())
		}
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return Config{}, fmt.Errorf("%w: line %d column %d: %s", ErrInvalidConfig, row, col, decodeErr.Error())
		}
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Marshal encodes c as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// withDefaults replaces zero and negative sizes with their defaults.
func (c Config) withDefaults() Config {
	if c.Window.Width <= 0 {
		c.Window.Width = DefaultWidth
	}
	if c.Window.Height <= 0 {
		c.Window.Height = DefaultHeight
	}
	if c.Device.Backend == "" {
		c.Device.Backend = DefaultBackend
	}
	if c.Device.MaxMemoryMB <= 0 {
		c.Device.MaxMemoryMB = device.DefaultMaxMemoryMB
	}
	if c.Textures.Capacity <= 0 {
		c.Textures.Capacity = texture.DefaultCapacity
	}
	if c.Textures.ResourceDir == "" {
		c.Textures.ResourceDir = DefaultResourceDir
	}
	return c
}

// Validate reports values no default can repair.
func (c Config) Validate() error {
	if _, ok := backendNames[strings.ToLower(c.Device.Backend)]; !ok && c.Device.Backend != "" {
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, c.Device.Backend)
	}
	for i, v := range c.Device.ClearColor {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: clear_color[%d] = %v outside 0..1", ErrInvalidConfig, i, v)
		}
	}
	if c.Device.MaxMemoryMB > 0 && c.Device.MaxMemoryMB < device.MinMemoryMB {
		return fmt.Errorf("%w: max_memory_mb %d below %d", ErrInvalidConfig, c.Device.MaxMemoryMB, device.MinMemoryMB)
	}
	return nil
}

// deviceConfig converts the device section for device.New.
func (c Config) deviceConfig() device.Config {
	cc := c.Device.ClearColor
	return device.Config{
		AllowSoftware: c.Device.AllowSoftware,
		ClearColor:    colorOf(cc),
		ClearColorSet: true,
		MaxMemoryMB:   c.Device.MaxMemoryMB,
	}
}
