// Package gfx is the GPU resource and frame-synchronization core of a small
// real-time renderer built on the wgpu HAL.
//
// # Overview
//
// An Engine owns one device.Context (device, queue, two-buffer surface,
// depth buffer, command encoder and frame fence), a texture.Table of
// GPU-visible textures, the sprite pipelines and the basic mesh pipeline.
// Exactly one frame is in flight: device.Context.FrameEnd returns only after
// the GPU finished the frame, so buffers written by the CPU between frames
// are never read concurrently.
//
// # Quick Start
//
//	cfg, err := gfx.LoadConfig("gfx.toml")
//	if err != nil {
//		return err
//	}
//	e, err := gfx.New(win, cfg)
//	if err != nil {
//		return err
//	}
//	defer e.Close()
//
//	s, err := e.NewSprite(e.White())
//	if err != nil {
//		return err
//	}
//	defer s.Destroy()
//	s.SetPosition(mgl32.Vec2{640, 360})
//	return e.Run(win, &myScene{sprite: s})
//
// # Packages
//
//   - device: context, frame loop, resource and constant buffers, memory budget
//   - texture: fixed-capacity texture table with path deduplication and mipmaps
//   - transform: world transforms with parents, 3D and 2D cameras
//   - sprite: textured quads with six blend modes
//   - mesh: indexed meshes and an unlit textured pipeline
//
// # Logging
//
// gfx is silent by default. See SetLogger.
package gfx
