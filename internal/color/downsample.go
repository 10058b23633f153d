package color

import "image"

// HalfSize returns the size of the next mip level: both dimensions halved,
// never below 1.
func HalfSize(size image.Point) image.Point {
	return image.Pt(max(1, size.X/2), max(1, size.Y/2))
}

// DownsampleSRGB returns src reduced to HalfSize with a 2x2 box filter.
// Color channels are averaged in linear light and re-encoded as sRGB; alpha
// is averaged as is. An odd last row or column is folded into its neighbor
// so no texel is dropped.
func DownsampleSRGB(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rectangle{Max: HalfSize(b.Size())})
	dw, dh := dst.Rect.Dx(), dst.Rect.Dy()

	for y := range dh {
		y0, y1 := footprint(y, dh, h)
		for x := range dw {
			x0, x1 := footprint(x, dw, w)

			var sum [4]float32
			n := float32(0)
			for sy := y0; sy < y1; sy++ {
				for sx := x0; sx < x1; sx++ {
					i := src.PixOffset(b.Min.X+sx, b.Min.Y+sy)
					p := src.Pix[i : i+4 : i+4]
					sum[0] += srgbToLinearLUT[p[0]]
					sum[1] += srgbToLinearLUT[p[1]]
					sum[2] += srgbToLinearLUT[p[2]]
					sum[3] += float32(p[3])
					n++
				}
			}

			o := dst.PixOffset(x, y)
			dst.Pix[o+0] = LinearToSRGBByte(sum[0] / n)
			dst.Pix[o+1] = LinearToSRGBByte(sum[1] / n)
			dst.Pix[o+2] = LinearToSRGBByte(sum[2] / n)
			dst.Pix[o+3] = uint8(sum[3]/n + 0.5)
		}
	}
	return dst
}

// footprint returns the source range [lo, hi) covered by destination
// index i when a source of length src is reduced to length dst.
func footprint(i, dst, src int) (lo, hi int) {
	if src == 1 {
		return 0, 1
	}
	lo = 2 * i
	hi = lo + 2
	if i == dst-1 {
		hi = src
	}
	return lo, hi
}
