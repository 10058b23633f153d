// Package sprite draws textured, tinted screen-space quads.
//
// A Pipelines value holds the shader, the pipeline layout and one render
// pipeline per BlendMode. It is created once per device and shared by every
// Sprite. Each Sprite owns a four-vertex buffer and a constant buffer, both
// persistently mapped, and regenerates its vertices only when a geometry
// property changed since the last draw.
//
// Bind group layout:
//
//	group 0: sprite constants {color vec4, transform mat4}
//	group 1: texture table entry {texture, sampler}
package sprite
