package texture

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx/device"
	"github.com/gogpu/gfx/internal/logging"
)

// Texture table errors.
var (
	// ErrTableFull is returned when every slot of the table is in use.
	ErrTableFull = errors.New("texture: table is full")

	// ErrNotLoaded is returned when binding or querying a handle that does
	// not refer to a loaded texture.
	ErrNotLoaded = errors.New("texture: handle not loaded")

	// ErrDecode is returned when an image cannot be read or decoded.
	ErrDecode = errors.New("texture: decode failed")

	// ErrNilImage is returned by LoadImage for a nil image.
	ErrNilImage = errors.New("texture: image is nil")

	// ErrNilProvider is returned by New without a device provider.
	ErrNilProvider = errors.New("texture: provider is nil")

	// ErrDestroyed is returned when using a destroyed table.
	ErrDestroyed = errors.New("texture: table destroyed")
)

// DefaultCapacity is the default number of texture slots.
const DefaultCapacity = 50

// Format is the format every texture is stored in.
const Format = gputypes.TextureFormatRGBA8UnormSrgb

// Handle identifies a slot in a Table.
type Handle int

// InvalidHandle is returned alongside errors.
const InvalidHandle Handle = -1

// Provider is the part of the device context the table uses.
type Provider interface {
	HalDevice() hal.Device
	HalQueue() hal.Queue
	Budget() *device.MemoryBudget
}

// Config configures a Table.
type Config struct {
	// Capacity is the number of slots. Defaults to DefaultCapacity if <= 0.
	Capacity int

	// ResourceDir is prepended to relative paths passed to LoadTexture.
	ResourceDir string
}

// entry is one occupied slot.
type entry struct {
	texture hal.Texture
	view    hal.TextureView
	group   hal.BindGroup
	key     string
	width   uint32
	height  uint32
	mips    uint32
	bytes   uint64
}

// Table is a fixed-capacity array of textures addressed by Handle, with a
// single monotonically increasing insertion cursor.
//
// Table is not safe for concurrent use.
type Table struct {
	device hal.Device
	queue  hal.Queue
	budget *device.MemoryBudget
	cfg    Config

	layout  hal.BindGroupLayout
	sampler hal.Sampler

	entries []entry
	next    int
	index   map[string]Handle

	destroyed bool
}

// New creates an empty table together with its bind group layout
// (texture at binding 0, sampler at binding 1, fragment stage) and a
// linear, repeating sampler shared by every slot.
func New(p Provider, cfg Config) (*Table, error) {
	if p == nil {
		return nil, ErrNilProvider
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	t := &Table{
		device: p.HalDevice(),
		queue:  p.HalQueue(),
		budget: p.Budget(),
		cfg:    cfg,
	}

	layout, err := t.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "texture_table_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create texture table layout: %w", err)
	}
	t.layout = layout

	sampler, err := t.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "texture_table_sampler",
		AddressModeU: gputypes.AddressModeRepeat,
		AddressModeV: gputypes.AddressModeRepeat,
		AddressModeW: gputypes.AddressModeRepeat,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		t.device.DestroyBindGroupLayout(layout)
		return nil, fmt.Errorf("create texture table sampler: %w", err)
	}
	t.sampler = sampler

	t.entries = make([]entry, cfg.Capacity)
	t.index = make(map[string]Handle, cfg.Capacity)
	return t, nil
}

// LoadTexture loads the image file at path into the next free slot and
// returns its handle. A path that was already loaded returns the existing
// handle without decoding again.
//
// Relative paths are resolved against Config.ResourceDir.
func (t *Table) LoadTexture(path string) (Handle, error) {
	if t.destroyed {
		return InvalidHandle, ErrDestroyed
	}
	key := NormalizeKey(path)
	if h, ok := t.index[key]; ok {
		return h, nil
	}
	if t.next >= len(t.entries) {
		return InvalidHandle, fmt.Errorf("load %s: %w (capacity %d)", key, ErrTableFull, len(t.entries))
	}

	full := path
	if !filepath.IsAbs(path) && t.cfg.ResourceDir != "" {
		full = filepath.Join(t.cfg.ResourceDir, path)
	}
	img, format, err := decodeFile(full)
	if err != nil {
		return InvalidHandle, err
	}
	logging.Logger().Debug("texture decoded", "path", full, "format", format)
	return t.insert(key, img)
}

// LoadImage stores an in-memory image under key. It follows the same
// lookup and capacity rules as LoadTexture.
func (t *Table) LoadImage(key string, img image.Image) (Handle, error) {
	if t.destroyed {
		return InvalidHandle, ErrDestroyed
	}
	key = NormalizeKey(key)
	if h, ok := t.index[key]; ok {
		return h, nil
	}
	if img == nil {
		return InvalidHandle, fmt.Errorf("load %s: %w", key, ErrNilImage)
	}
	if t.next >= len(t.entries) {
		return InvalidHandle, fmt.Errorf("load %s: %w (capacity %d)", key, ErrTableFull, len(t.entries))
	}
	return t.insert(key, img)
}

// insert uploads img with its mip chain into slot t.next.
func (t *Table) insert(key string, img image.Image) (Handle, error) {
	rgba := toRGBA(img)
	b := rgba.Bounds()
	if b.Empty() {
		return InvalidHandle, fmt.Errorf("%w: %s: empty image", ErrDecode, key)
	}
	levels := generateMips(rgba)

	var size uint64
	for _, l := range levels {
		size += uint64(len(l.Pix))
	}
	if t.budget != nil {
		if err := t.budget.Reserve(device.KindTexture, size); err != nil {
			return InvalidHandle, fmt.Errorf("load %s: %w", key, err)
		}
	}

	//nolint:gosec // G115: image bounds are positive, at most 32 mip levels
	e := entry{
		key:    key,
		width:  uint32(b.Dx()),
		height: uint32(b.Dy()),
		mips:   uint32(len(levels)),
		bytes:  size,
	}
	if err := t.createGPU(&e, levels); err != nil {
		t.release(&e)
		return InvalidHandle, fmt.Errorf("load %s: %w", key, err)
	}

	h := Handle(t.next)
	t.entries[t.next] = e
	t.index[key] = h
	t.next++
	logging.Logger().Debug("texture loaded",
		"key", key, "handle", int(h), "width", e.width, "height", e.height, "mips", e.mips)
	return h, nil
}

// createGPU creates the texture, uploads every mip level, and creates the
// view and bind group.
func (t *Table) createGPU(e *entry, levels []*image.RGBA) error {
	label := fmt.Sprintf("texture_%d", t.next)
	tex, err := t.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: e.width, Height: e.height, DepthOrArrayLayers: 1},
		MipLevelCount: e.mips,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        Format,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create texture: %w", err)
	}
	e.texture = tex

	for i, level := range levels {
		data, pitch := padRows(level)
		lb := level.Bounds()
		w, h := uint32(lb.Dx()), uint32(lb.Dy()) //nolint:gosec // G115: image bounds are positive
		err := t.queue.WriteTexture(
			&hal.ImageCopyTexture{
				Texture:  tex,
				MipLevel: uint32(i), //nolint:gosec // G115: at most 32 levels
				Aspect:   gputypes.TextureAspectAll,
			},
			data,
			&hal.ImageDataLayout{
				Offset:       0,
				BytesPerRow:  pitch,
				RowsPerImage: h,
			},
			&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		)
		if err != nil {
			return fmt.Errorf("upload mip %d: %w", i, err)
		}
	}

	view, err := t.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        Format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: e.mips,
	})
	if err != nil {
		return fmt.Errorf("create texture view: %w", err)
	}
	e.view = view

	group, err := t.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  label + "_bind",
		Layout: t.layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: view.NativeHandle()}},
			{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: t.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		return fmt.Errorf("create texture bind group: %w", err)
	}
	e.group = group
	return nil
}

// release destroys the GPU objects of e and returns its memory.
func (t *Table) release(e *entry) {
	if e.group != nil {
		t.device.DestroyBindGroup(e.group)
	}
	if e.view != nil {
		t.device.DestroyTextureView(e.view)
	}
	if e.texture != nil {
		t.device.DestroyTexture(e.texture)
	}
	if t.budget != nil && e.bytes > 0 {
		_ = t.budget.Release(device.KindTexture, e.bytes)
	}
	*e = entry{}
}

// lookup returns the entry of h or ErrNotLoaded.
func (t *Table) lookup(h Handle) (*entry, error) {
	if h < 0 || int(h) >= t.next {
		return nil, fmt.Errorf("handle %d: %w", h, ErrNotLoaded)
	}
	return &t.entries[h], nil
}

// Bind binds the texture of h at group index group of pass.
func (t *Table) Bind(pass hal.RenderPassEncoder, group uint32, h Handle) error {
	if t.destroyed {
		return ErrDestroyed
	}
	e, err := t.lookup(h)
	if err != nil {
		return err
	}
	pass.SetBindGroup(group, e.group, nil)
	return nil
}

// BindGroup returns the bind group of h.
func (t *Table) BindGroup(h Handle) (hal.BindGroup, error) {
	e, err := t.lookup(h)
	if err != nil {
		return nil, err
	}
	return e.group, nil
}

// Size returns the pixel dimensions of the texture in slot h.
func (t *Table) Size(h Handle) (width, height uint32, err error) {
	e, err := t.lookup(h)
	if err != nil {
		return 0, 0, err
	}
	return e.width, e.height, nil
}

// MipLevels returns the number of mip levels of the texture in slot h.
func (t *Table) MipLevels(h Handle) (uint32, error) {
	e, err := t.lookup(h)
	if err != nil {
		return 0, err
	}
	return e.mips, nil
}

// Lookup returns the handle stored under path, if any.
func (t *Table) Lookup(path string) (Handle, bool) {
	h, ok := t.index[NormalizeKey(path)]
	return h, ok
}

// Len returns the number of occupied slots.
func (t *Table) Len() int { return t.next }

// Capacity returns the number of slots.
func (t *Table) Capacity() int { return len(t.entries) }

// Layout returns the bind group layout every texture binding conforms to.
func (t *Table) Layout() hal.BindGroupLayout { return t.layout }

// ResetAll releases every loaded texture and rewinds the cursor to slot 0.
// The caller must make sure the GPU no longer references any of them.
func (t *Table) ResetAll() {
	if t.destroyed {
		return
	}
	n := t.next
	for i := range t.next {
		t.release(&t.entries[i])
	}
	t.entries = make([]entry, len(t.entries))
	t.index = make(map[string]Handle, len(t.entries))
	t.next = 0
	logging.Logger().Info("texture table reset", "released", n)
}

// Destroy releases every texture, the sampler and the layout.
// Safe to call multiple times.
func (t *Table) Destroy() {
	if t.destroyed {
		return
	}
	t.ResetAll()
	if t.sampler != nil {
		t.device.DestroySampler(t.sampler)
		t.sampler = nil
	}
	if t.layout != nil {
		t.device.DestroyBindGroupLayout(t.layout)
		t.layout = nil
	}
	t.destroyed = true
}
