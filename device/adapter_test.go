package device

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

func exposed(name string, typ gputypes.DeviceType) hal.ExposedAdapter {
	return hal.ExposedAdapter{
		Adapter: &noop.Adapter{},
		Info:    gputypes.AdapterInfo{Name: name, DeviceType: typ},
	}
}

func TestSelectAdapter(t *testing.T) {
	tests := []struct {
		name          string
		adapters      []hal.ExposedAdapter
		allowSoftware bool
		want          string
		wantErr       error
	}{
		{
			name:    "empty",
			wantErr: ErrNoAdapter,
		},
		{
			name: "discrete beats integrated",
			adapters: []hal.ExposedAdapter{
				exposed("igpu", gputypes.DeviceTypeIntegratedGPU),
				exposed("dgpu", gputypes.DeviceTypeDiscreteGPU),
			},
			want: "dgpu",
		},
		{
			name: "integrated beats virtual and other",
			adapters: []hal.ExposedAdapter{
				exposed("other", gputypes.DeviceTypeOther),
				exposed("virtual", gputypes.DeviceTypeVirtualGPU),
				exposed("igpu", gputypes.DeviceTypeIntegratedGPU),
			},
			want: "igpu",
		},
		{
			name: "first wins on tie",
			adapters: []hal.ExposedAdapter{
				exposed("first", gputypes.DeviceTypeDiscreteGPU),
				exposed("second", gputypes.DeviceTypeDiscreteGPU),
			},
			want: "first",
		},
		{
			name:     "software skipped",
			adapters: []hal.ExposedAdapter{exposed("warp", gputypes.DeviceTypeCPU)},
			wantErr:  ErrNoAdapter,
		},
		{
			name:          "software allowed",
			adapters:      []hal.ExposedAdapter{exposed("warp", gputypes.DeviceTypeCPU)},
			allowSoftware: true,
			want:          "warp",
		},
		{
			name: "hardware preferred over allowed software",
			adapters: []hal.ExposedAdapter{
				exposed("warp", gputypes.DeviceTypeCPU),
				exposed("other", gputypes.DeviceTypeOther),
			},
			allowSoftware: true,
			want:          "other",
		},
		{
			name:     "nil adapter skipped",
			adapters: []hal.ExposedAdapter{{Info: gputypes.AdapterInfo{Name: "ghost", DeviceType: gputypes.DeviceTypeDiscreteGPU}}},
			wantErr:  ErrNoAdapter,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectAdapter(tt.adapters, tt.allowSoftware)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("selectAdapter() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("selectAdapter() error = %v", err)
			}
			if got.Info.Name != tt.want {
				t.Errorf("selectAdapter() = %q, want %q", got.Info.Name, tt.want)
			}
		})
	}
}

func TestNewWithSoftwareOnly(t *testing.T) {
	newInst := func() *fakeInstance {
		return &fakeInstance{
			Instance: &noop.Instance{},
			adapters: []hal.ExposedAdapter{exposed("warp", gputypes.DeviceTypeCPU)},
		}
	}

	_, err := NewWithInstance(newInst(), FixedWindow{Width: 8, Height: 8}, Config{})
	if !errors.Is(err, ErrNoAdapter) {
		t.Fatalf("NewWithInstance() error = %v, want ErrNoAdapter", err)
	}

	ctx, err := NewWithInstance(newInst(), FixedWindow{Width: 8, Height: 8}, Config{AllowSoftware: true})
	if err != nil {
		t.Fatalf("NewWithInstance(AllowSoftware) error = %v", err)
	}
	defer ctx.Close()
	if ctx.AdapterInfo().Type != gpucontext.AdapterTypeSoftware {
		t.Errorf("AdapterInfo().Type = %v, want Software", ctx.AdapterInfo().Type)
	}
}

func TestChooseSurfaceFormat(t *testing.T) {
	tests := []struct {
		name string
		caps *hal.SurfaceCapabilities
		want gputypes.TextureFormat
	}{
		{"nil caps", nil, gputypes.TextureFormatRGBA8Unorm},
		{"empty caps", &hal.SurfaceCapabilities{}, gputypes.TextureFormatRGBA8Unorm},
		{
			"srgb preferred",
			&hal.SurfaceCapabilities{Formats: []gputypes.TextureFormat{
				gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb,
			}},
			gputypes.TextureFormatBGRA8UnormSrgb,
		},
		{
			"rgba before bgra",
			&hal.SurfaceCapabilities{Formats: []gputypes.TextureFormat{
				gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatRGBA8Unorm,
			}},
			gputypes.TextureFormatRGBA8Unorm,
		},
		{
			"unknown falls back to first",
			&hal.SurfaceCapabilities{Formats: []gputypes.TextureFormat{gputypes.TextureFormatRGBA16Float}},
			gputypes.TextureFormatRGBA16Float,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := chooseSurfaceFormat(tt.caps); got != tt.want {
				t.Errorf("chooseSurfaceFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}
