package sprite

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// BlendMode selects how a sprite's color combines with the render target.
type BlendMode int

const (
	// BlendNone writes the source color unchanged.
	BlendNone BlendMode = iota
	// BlendNormal is source-over alpha blending.
	BlendNormal
	// BlendAdd adds source to destination.
	BlendAdd
	// BlendSubtract subtracts source from destination.
	BlendSubtract
	// BlendMultiply multiplies destination by source.
	BlendMultiply
	// BlendInversion writes the inverted destination color.
	BlendInversion

	blendModeCount
)

var blendModeNames = [blendModeCount]string{
	"None", "Normal", "Add", "Subtract", "Multiply", "Inversion",
}

// String returns the name of the blend mode.
func (m BlendMode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("BlendMode(%d)", int(m))
	}
	return blendModeNames[m]
}

// Valid reports whether m is one of the defined blend modes.
func (m BlendMode) Valid() bool { return m >= 0 && m < blendModeCount }

// BlendModes returns every blend mode in declaration order.
func BlendModes() []BlendMode {
	modes := make([]BlendMode, blendModeCount)
	for i := range modes {
		modes[i] = BlendMode(i)
	}
	return modes
}

// blendState returns the color target blend state for m, or nil when
// blending is disabled. Alpha is always One/Zero Add.
func (m BlendMode) blendState() *gputypes.BlendState {
	color := gputypes.BlendComponent{Operation: gputypes.BlendOperationAdd}
	switch m {
	case BlendNormal:
		color.SrcFactor = gputypes.BlendFactorSrcAlpha
		color.DstFactor = gputypes.BlendFactorOneMinusSrcAlpha
	case BlendAdd:
		color.SrcFactor = gputypes.BlendFactorOne
		color.DstFactor = gputypes.BlendFactorOne
	case BlendSubtract:
		color.SrcFactor = gputypes.BlendFactorOne
		color.DstFactor = gputypes.BlendFactorOne
		color.Operation = gputypes.BlendOperationReverseSubtract
	case BlendMultiply:
		color.SrcFactor = gputypes.BlendFactorZero
		color.DstFactor = gputypes.BlendFactorSrc
	case BlendInversion:
		color.SrcFactor = gputypes.BlendFactorOneMinusDst
		color.DstFactor = gputypes.BlendFactorZero
	default:
		return nil
	}
	return &gputypes.BlendState{
		Color: color,
		Alpha: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorOne,
			DstFactor: gputypes.BlendFactorZero,
			Operation: gputypes.BlendOperationAdd,
		},
	}
}
