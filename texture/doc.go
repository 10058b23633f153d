// Package texture implements the fixed-capacity texture table.
//
// A Table owns up to Capacity textures. Each loaded texture gets the next
// free slot; slots are never reused individually and are only reclaimed all
// at once by ResetAll. Loading the same path twice returns the same handle.
//
//	table, err := texture.New(ctx, texture.Config{})
//	h, err := table.LoadTexture("player.png")
//	...
//	table.Bind(pass, 1, h)
//
// Files are decoded with the standard library (PNG, JPEG, GIF) and
// golang.org/x/image (BMP, TIFF, WebP), converted to RGBA8, and uploaded as
// sRGB textures with a full mip chain.
package texture
