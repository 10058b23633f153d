// Package color converts 8-bit sRGB texels to and from linear light with
// lookup tables, and downsamples sRGB images for mip chains.
package color

import "github.com/chewxy/math32"

// linearLUTSize gives 12-bit precision, enough for 8-bit sRGB output.
const linearLUTSize = 4096

// srgbToLinearLUT maps an sRGB byte to linear [0,1].
var srgbToLinearLUT [256]float32

// linearToSRGBLUT maps a 12-bit quantized linear value to an sRGB byte.
var linearToSRGBLUT [linearLUTSize]uint8

func init() {
	for i := range srgbToLinearLUT {
		srgbToLinearLUT[i] = SRGBToLinear(float32(i) / 255)
	}
	for i := range linearToSRGBLUT {
		linearToSRGBLUT[i] = toByte(LinearToSRGB(float32(i) / (linearLUTSize - 1)))
	}
}

// SRGBToLinear is the sRGB transfer function inverse for a component in
// [0,1].
func SRGBToLinear(s float32) float32 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return math32.Pow((s+0.055)/1.055, 2.4)
}

// LinearToSRGB encodes a linear component in [0,1].
func LinearToSRGB(l float32) float32 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*math32.Pow(l, 1/2.4) - 0.055
}

// SRGBByteToLinear converts an sRGB byte to linear [0,1].
func SRGBByteToLinear(s uint8) float32 { return srgbToLinearLUT[s] }

// LinearToSRGBByte converts a linear value to an sRGB byte. Input outside
// [0,1] is clamped.
func LinearToSRGBByte(l float32) uint8 {
	if l <= 0 {
		return linearToSRGBLUT[0]
	}
	if l >= 1 {
		return linearToSRGBLUT[linearLUTSize-1]
	}
	return linearToSRGBLUT[int(l*(linearLUTSize-1)+0.5)]
}

// toByte clamps v to [0,1] and rounds it to a byte.
func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
