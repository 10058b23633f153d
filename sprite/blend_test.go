package sprite

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestBlendModeString(t *testing.T) {
	tests := []struct {
		mode BlendMode
		want string
	}{
		{BlendNone, "None"},
		{BlendNormal, "Normal"},
		{BlendInversion, "Inversion"},
		{BlendMode(42), "BlendMode(42)"},
		{BlendMode(-1), "BlendMode(-1)"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
	if n := len(BlendModes()); n != 6 {
		t.Errorf("len(BlendModes()) = %d, want 6", n)
	}
}

func TestBlendState(t *testing.T) {
	type factors struct {
		src, dst gputypes.BlendFactor
		op       gputypes.BlendOperation
	}
	tests := []struct {
		mode BlendMode
		want factors
	}{
		{BlendNormal, factors{gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOneMinusSrcAlpha, gputypes.BlendOperationAdd}},
		{BlendAdd, factors{gputypes.BlendFactorOne, gputypes.BlendFactorOne, gputypes.BlendOperationAdd}},
		{BlendSubtract, factors{gputypes.BlendFactorOne, gputypes.BlendFactorOne, gputypes.BlendOperationReverseSubtract}},
		{BlendMultiply, factors{gputypes.BlendFactorZero, gputypes.BlendFactorSrc, gputypes.BlendOperationAdd}},
		{BlendInversion, factors{gputypes.BlendFactorOneMinusDst, gputypes.BlendFactorZero, gputypes.BlendOperationAdd}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			bs := tt.mode.blendState()
			if bs == nil {
				t.Fatal("blendState() = nil")
			}
			got := factors{bs.Color.SrcFactor, bs.Color.DstFactor, bs.Color.Operation}
			if got != tt.want {
				t.Errorf("color = %+v, want %+v", got, tt.want)
			}
			if bs.Alpha.SrcFactor != gputypes.BlendFactorOne ||
				bs.Alpha.DstFactor != gputypes.BlendFactorZero ||
				bs.Alpha.Operation != gputypes.BlendOperationAdd {
				t.Errorf("alpha = %+v, want One/Zero/Add", bs.Alpha)
			}
		})
	}
	if BlendNone.blendState() != nil {
		t.Error("BlendNone should disable blending")
	}
}
