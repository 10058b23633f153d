// Package shader compiles embedded WGSL sources and creates HAL shader modules.
package shader

import (
	"errors"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx/internal/cache"
	"github.com/gogpu/gfx/internal/logging"
)

// ErrEmptySource is returned when a shader source is empty.
var ErrEmptySource = errors.New("shader: source is empty")

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// compiledCapacity bounds the SPIR-V cache. Pipelines are recreated with the
// same few sources on every device, so the working set is small.
const compiledCapacity = 32

// compiled maps WGSL source to its SPIR-V words. The cached slices are
// shared and must not be modified.
var compiled = cache.New[string, []uint32](compiledCapacity)

// CompileSPIRV compiles WGSL source to SPIR-V words.
// Validation runs as part of compilation, so a malformed shader fails here
// rather than at pipeline creation.
func CompileSPIRV(wgslSource string) ([]uint32, error) {
	if wgslSource == "" {
		return nil, ErrEmptySource
	}
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}
	if len(spirvBytes) == 0 || len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("failed to compile shader: SPIR-V size %d is not word aligned", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	if spirvCode[0] != spirvMagic {
		return nil, fmt.Errorf("failed to compile shader: bad SPIR-V magic 0x%08x", spirvCode[0])
	}
	return spirvCode, nil
}

// CompileCached is CompileSPIRV memoized by source text.
func CompileCached(wgslSource string) ([]uint32, error) {
	if wgslSource == "" {
		return nil, ErrEmptySource
	}
	return compiled.GetOrCreate(wgslSource, func() ([]uint32, error) {
		return CompileSPIRV(wgslSource)
	})
}

// CacheStats reports the SPIR-V cache counters.
func CacheStats() cache.Stats { return compiled.Stats() }

// CreateModule compiles wgslSource and creates a shader module carrying both
// the WGSL text and the SPIR-V blob, so each backend picks the form it consumes.
// Compilation results are cached across devices.
func CreateModule(device hal.Device, label, wgslSource string) (hal.ShaderModule, error) {
	spirv, err := CompileCached(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	logging.Logger().Debug("shader compiled", "label", label, "spirv_words", len(spirv))

	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: label,
		Source: hal.ShaderSource{
			WGSL:  wgslSource,
			SPIRV: spirv,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create shader module %s: %w", label, err)
	}
	return module, nil
}
