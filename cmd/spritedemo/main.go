// Command spritedemo renders a row of sprites, one per blend mode, a sprite
// seen through a 2D camera and a textured quad seen through a 3D camera.
//
// Without a native window it runs headless on the noop backend:
//
//	spritedemo -frames 120
//	spritedemo -config demo.toml -backend vulkan
//	spritedemo -dump-config > demo.toml
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/allbackends"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gfx/device"
	"github.com/gogpu/gfx/mesh"
	"github.com/gogpu/gfx/sprite"
	"github.com/gogpu/gfx/transform"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML configuration file")
		backend    = flag.String("backend", gfx.BackendNoop, "HAL backend: auto, noop, vulkan, metal, dx12, gl; overrides the config file")
		frames     = flag.Int("frames", 60, "number of frames to render")
		verbose    = flag.Bool("v", false, "debug logging")
		dumpConfig = flag.Bool("dump-config", false, "print the effective configuration and exit")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	gfx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// The backend flag overrides the config file only when given.
	backendSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "backend" {
			backendSet = true
		}
	})
	override := ""
	if backendSet {
		override = *backend
	}

	if err := run(*configPath, override, *frames, *dumpConfig); err != nil {
		slog.Error("spritedemo failed", "err", err)
		os.Exit(1)
	}
}

func run(configPath, backend string, frames int, dump bool) error {
	cfg, err := demoConfig(configPath, backend)
	if err != nil {
		return err
	}

	if dump {
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	win := &headlessWindow{
		FixedWindow: device.FixedWindow{Width: cfg.Window.Width, Height: cfg.Window.Height},
		frames:      frames,
	}
	engine, err := gfx.New(win, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := engine.Close(); err != nil {
			slog.Error("close engine", "err", err)
		}
	}()

	scene, err := newDemoScene(engine)
	if err != nil {
		return err
	}
	defer scene.destroy()

	if err := engine.Run(win, scene); err != nil {
		return err
	}
	fmt.Println(engine.Device().MemoryStats())
	return nil
}

// demoConfig loads the configuration file, or the defaults on the noop
// backend without one. A non-empty backend replaces the configured one.
func demoConfig(configPath, backend string) (gfx.Config, error) {
	cfg := gfx.DefaultConfig()
	cfg.Device.Backend = gfx.BackendNoop
	if configPath != "" {
		var err error
		if cfg, err = gfx.LoadConfig(configPath); err != nil {
			return gfx.Config{}, err
		}
	}
	if backend != "" {
		cfg.Device.Backend = backend
	}
	return cfg, nil
}

// headlessWindow stops the main loop after a fixed number of frames.
type headlessWindow struct {
	device.FixedWindow
	frames int
}

func (w *headlessWindow) ShouldContinue() bool {
	if w.frames <= 0 {
		return false
	}
	w.frames--
	return true
}

type demoScene struct {
	engine *gfx.Engine

	row      []*sprite.Sprite
	follower *sprite.Sprite
	camera2D *transform.Camera2D

	quad     *mesh.Mesh[mesh.VertexPosUV]
	world    *transform.World
	camera3D *transform.Camera3D

	frame int
}

func newDemoScene(e *gfx.Engine) (*demoScene, error) {
	s := &demoScene{engine: e, camera2D: transform.NewCamera2D()}
	if err := s.create(); err != nil {
		s.destroy()
		return nil, err
	}
	return s, nil
}

func (s *demoScene) create() error {
	e := s.engine

	width, height := e.Sprites().ScreenSize()
	modes := sprite.BlendModes()
	step := width / float32(len(modes)+1)
	for i, mode := range modes {
		sp, err := e.NewSprite(e.White())
		if err != nil {
			return err
		}
		s.row = append(s.row, sp)
		sp.SetPosition(mgl32.Vec2{step * float32(i+1), height / 2})
		sp.SetAnchor(mgl32.Vec2{0.5, 0.5})
		sp.SetSize(mgl32.Vec2{step * 0.8, step * 0.8})
		sp.SetColor(mgl32.Vec4{float32(i+1) / float32(len(modes)), 0.5, 1, 1})
		if err := sp.SetBlendMode(mode); err != nil {
			return err
		}
	}

	follower, err := e.NewSprite(e.White())
	if err != nil {
		return err
	}
	s.follower = follower
	s.follower.SetAnchor(mgl32.Vec2{0.5, 0.5})
	s.follower.SetSize(mgl32.Vec2{64, 64})
	s.follower.SetColor(mgl32.Vec4{1, 0.8, 0, 1})

	s.quad = mesh.Quad(1, 1)
	if err := s.quad.CreateBuffers(e.Device()); err != nil {
		return err
	}
	s.world = transform.NewWorld()
	if err := s.world.CreateBuffer(e.Device()); err != nil {
		return err
	}
	s.camera3D = transform.NewCamera3D()
	s.camera3D.Eye = mgl32.Vec3{0, 0, -3}
	s.camera3D.Aspect = width / height
	if err := s.camera3D.CreateBuffer(e.Device()); err != nil {
		return err
	}
	return nil
}

func (s *demoScene) Update() error {
	s.frame++
	t := float32(s.frame) / 60

	for _, sp := range s.row {
		sp.SetRotation(t)
	}

	s.camera2D.Position = mgl32.Vec2{100 * float32(s.frame%60), 0}
	if err := s.camera2D.UpdateMatrix(); err != nil {
		return err
	}

	s.world.Rotation = mgl32.QuatRotate(t, mgl32.Vec3{0, 1, 0})
	s.world.UpdateMatrix()
	return s.camera3D.UpdateMatrix()
}

func (s *demoScene) Draw(pass hal.RenderPassEncoder) error {
	if err := s.drawQuad(pass); err != nil {
		return err
	}
	for _, sp := range s.row {
		if err := sp.Draw(pass); err != nil {
			return err
		}
	}
	return s.follower.DrawWithCamera(pass, s.camera2D)
}

func (s *demoScene) drawQuad(pass hal.RenderPassEncoder) error {
	if err := s.engine.Meshes().Bind(pass); err != nil {
		return err
	}
	if err := s.world.SetGraphicsCommand(pass, mesh.GroupWorld); err != nil {
		return err
	}
	if err := s.camera3D.SetGraphicsCommand(pass, mesh.GroupCamera); err != nil {
		return err
	}
	if err := s.engine.Textures().Bind(pass, mesh.GroupTexture, s.engine.White()); err != nil {
		return err
	}
	return s.quad.Draw(pass)
}

func (s *demoScene) destroy() {
	for _, sp := range s.row {
		sp.Destroy()
	}
	if s.follower != nil {
		s.follower.Destroy()
	}
	if s.quad != nil {
		s.quad.Destroy()
	}
	if s.world != nil {
		s.world.Destroy()
	}
	if s.camera3D != nil {
		s.camera3D.Destroy()
	}
}
