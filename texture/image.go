package texture

import (
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/gfx/internal/color"
)

// bytesPerPixel of the RGBA8 upload format.
const bytesPerPixel = 4

// rowPitchAlignment is the row alignment required for texture uploads.
const rowPitchAlignment = 256

// NormalizeKey returns the lookup key for a texture path: cleaned, with
// forward slashes, in Unicode NFC form. Two spellings of the same file map to
// the same key.
func NormalizeKey(path string) string {
	key := filepath.ToSlash(filepath.Clean(path))
	key = strings.TrimPrefix(key, "./")
	return norm.NFC.String(key)
}

// decodeFile reads and decodes an image file.
func decodeFile(path string) (image.Image, string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, "", fmt.Errorf("%w: open %s: %w", ErrDecode, path, err)
	}
	defer func() { _ = f.Close() }()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}
	return img, format, nil
}

// toRGBA converts img to a tightly packed RGBA image with origin (0, 0).
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) && rgba.Stride == b.Dx()*bytesPerPixel {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// mipLevelCount returns the number of levels in a full chain down to 1x1.
func mipLevelCount(width, height int) int {
	n := 1
	for d := max(width, height); d > 1; d >>= 1 {
		n++
	}
	return n
}

// generateMips builds the mip chain of src. Level 0 is src itself; each
// following level halves both dimensions (never below 1). Texels are sRGB,
// so levels are filtered in linear light.
func generateMips(src *image.RGBA) []*image.RGBA {
	b := src.Bounds()
	levels := make([]*image.RGBA, mipLevelCount(b.Dx(), b.Dy()))
	levels[0] = src
	for i := 1; i < len(levels); i++ {
		levels[i] = color.DownsampleSRGB(levels[i-1])
	}
	return levels
}

// padRows returns the pixels of img with each row padded to
// rowPitchAlignment bytes, and the padded row pitch.
func padRows(img *image.RGBA) ([]byte, uint32) {
	b := img.Bounds()
	row := b.Dx() * bytesPerPixel
	pitch := (row + rowPitchAlignment - 1) &^ (rowPitchAlignment - 1)
	if pitch == img.Stride {
		return img.Pix[:pitch*b.Dy()], uint32(pitch) //nolint:gosec // G115: pitch is small and positive
	}
	data := make([]byte, pitch*b.Dy())
	for y := range b.Dy() {
		copy(data[y*pitch:y*pitch+row], img.Pix[y*img.Stride:y*img.Stride+row])
	}
	return data, uint32(pitch) //nolint:gosec // G115: pitch is small and positive
}
