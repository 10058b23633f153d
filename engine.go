package gfx

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx/device"
	"github.com/gogpu/gfx/internal/logging"
	"github.com/gogpu/gfx/mesh"
	"github.com/gogpu/gfx/sprite"
	"github.com/gogpu/gfx/texture"
)

// WhiteTextureKey is the texture table key of the 1x1 white texture every
// engine loads first.
const WhiteTextureKey = "white1x1.png"

// ErrClosed is returned by Run after Close.
var ErrClosed = errors.New("gfx: engine closed")

// Window is a device.Window driven by the main loop.
type Window interface {
	device.Window

	// ShouldContinue pumps pending window messages and reports whether the
	// loop keeps running.
	ShouldContinue() bool
}

// Scene is updated and drawn once per frame by Run.
type Scene interface {
	Update() error
	// Draw records commands into the frame pass. The sprite pipeline for
	// BlendNormal is already bound.
	Draw(pass hal.RenderPassEncoder) error
}

// Engine owns the device context, the texture table and the shared
// pipelines.
type Engine struct {
	cfg      Config
	ctx      *device.Context
	textures *texture.Table
	sprites  *sprite.Pipelines
	meshes   *mesh.Pipeline
	white    texture.Handle
	closed   bool
}

// New creates an engine rendering into win. opts override cfg.
func New(win device.Window, cfg Config, opts ...Option) (*Engine, error) {
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	backend, err := ResolveBackend(cfg.Device.Backend)
	if err != nil {
		return nil, err
	}
	return NewWithBackend(backend, win, cfg)
}

// NewWithBackend is New with an explicit HAL backend; cfg.Device.Backend is
// ignored.
func NewWithBackend(backend hal.Backend, win device.Window, cfg Config) (e *Engine, err error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e = &Engine{cfg: cfg, white: texture.InvalidHandle}
	defer func() {
		if err != nil {
			_ = e.destroy()
		}
	}()

	if e.ctx, err = device.New(backend, win, cfg.deviceConfig()); err != nil {
		return nil, err
	}
	e.textures, err = texture.New(e.ctx, texture.Config{
		Capacity:    cfg.Textures.Capacity,
		ResourceDir: cfg.Textures.ResourceDir,
	})
	if err != nil {
		return nil, err
	}
	if e.white, err = e.textures.LoadImage(WhiteTextureKey, whiteImage()); err != nil {
		return nil, fmt.Errorf("load %s: %w", WhiteTextureKey, err)
	}
	if e.sprites, err = sprite.NewPipelines(e.ctx, e.textures); err != nil {
		return nil, err
	}
	if e.meshes, err = mesh.NewPipeline(e.ctx, e.textures); err != nil {
		return nil, err
	}

	w, h := e.ctx.Size()
	logging.Logger().Info("engine ready", "width", w, "height", h, "title", cfg.Window.Title,
		"texture_capacity", e.textures.Capacity())
	return e, nil
}

func whiteImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.White)
	return img
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Device returns the device context.
func (e *Engine) Device() *device.Context { return e.ctx }

// Textures returns the texture table.
func (e *Engine) Textures() *texture.Table { return e.textures }

// Sprites returns the shared sprite pipelines.
func (e *Engine) Sprites() *sprite.Pipelines { return e.sprites }

// Meshes returns the shared mesh pipeline.
func (e *Engine) Meshes() *mesh.Pipeline { return e.meshes }

// White returns the handle of the 1x1 white texture.
func (e *Engine) White() texture.Handle { return e.white }

// NewSprite creates a sprite showing the texture h.
func (e *Engine) NewSprite(h texture.Handle) (*sprite.Sprite, error) {
	return sprite.New(e.ctx, e.sprites, e.textures, h)
}

// Resize resizes the surface and the sprite screen projection.
func (e *Engine) Resize(width, height int) error {
	if err := e.ctx.Resize(width, height); err != nil {
		return err
	}
	e.sprites.SetScreenSize(float32(width), float32(height))
	return nil
}

// Frame runs one frame: FrameBegin, scene Update and Draw, FrameEnd. A scene
// error still ends the frame so the context stays usable.
func (e *Engine) Frame(scene Scene) error {
	if e.closed {
		return ErrClosed
	}
	if err := e.ctx.FrameBegin(); err != nil {
		return err
	}
	err := e.drawFrame(scene)
	if endErr := e.ctx.FrameEnd(); endErr != nil {
		return errors.Join(err, endErr)
	}
	return err
}

func (e *Engine) drawFrame(scene Scene) error {
	if err := scene.Update(); err != nil {
		return fmt.Errorf("scene update: %w", err)
	}
	pass := e.ctx.Pass()
	if err := e.sprites.PreDraw(pass); err != nil {
		return err
	}
	if err := scene.Draw(pass); err != nil {
		return fmt.Errorf("scene draw: %w", err)
	}
	return nil
}

// Run calls Frame until win.ShouldContinue reports false or a frame fails.
func (e *Engine) Run(win Window, scene Scene) error {
	for win.ShouldContinue() {
		if err := e.Frame(scene); err != nil {
			return err
		}
	}
	logging.Logger().Info("main loop finished", "frames", e.ctx.FrameCount())
	return nil
}

// Close releases the pipelines, the texture table and the device context.
// Safe to call multiple times.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	return e.destroy()
}

func (e *Engine) destroy() error {
	if e.meshes != nil {
		e.meshes.Destroy()
	}
	if e.sprites != nil {
		e.sprites.Destroy()
	}
	if e.textures != nil {
		e.textures.Destroy()
	}
	if e.ctx != nil {
		return e.ctx.Close()
	}
	return nil
}
