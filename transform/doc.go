// Package transform provides world transforms and cameras backed by
// persistently mapped constant buffers.
//
// Matrices are mgl32 column-major values multiplied as M * v. Composition
// reads right to left: a world matrix is Parent * Translate * Rotate * Scale,
// which is the scale, rotate, translate order applied to a vertex.
//
// Cameras follow the left-handed convention with +z pointing into the screen
// and clip depth in 0..1.
package transform
