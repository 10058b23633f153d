package texture

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"player.png", "player.png"},
		{"./player.png", "player.png"},
		{"sprites/../player.png", "player.png"},
		{"sprites//enemy.png", "sprites/enemy.png"},
		{"cafe\u0301.png", "caf\u00e9.png"},
	}
	for _, tt := range tests {
		if got := NormalizeKey(tt.in); got != tt.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMipLevelCount(t *testing.T) {
	tests := []struct {
		w, h, want int
	}{
		{1, 1, 1},
		{2, 1, 2},
		{5, 3, 3},
		{16, 8, 5},
		{256, 256, 9},
		{1, 1000, 10},
	}
	for _, tt := range tests {
		if got := mipLevelCount(tt.w, tt.h); got != tt.want {
			t.Errorf("mipLevelCount(%d, %d) = %d, want %d", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestGenerateMips(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 5, 3))
	for i := range src.Pix {
		src.Pix[i] = 200
	}
	levels := generateMips(src)

	want := []image.Point{{5, 3}, {2, 1}, {1, 1}}
	if len(levels) != len(want) {
		t.Fatalf("got %d levels, want %d", len(levels), len(want))
	}
	if levels[0] != src {
		t.Error("level 0 is not the source image")
	}
	for i, l := range levels {
		if got := l.Bounds().Size(); got != want[i] {
			t.Errorf("level %d size = %v, want %v", i, got, want[i])
		}
	}
	// A uniform image stays uniform at every level.
	c := levels[2].RGBAAt(0, 0)
	for _, v := range []uint8{c.R, c.G, c.B, c.A} {
		if v < 199 || v > 201 {
			t.Errorf("1x1 level color = %v, want about 200", c)
			break
		}
	}
}

func TestToRGBA(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if toRGBA(rgba) != rgba {
		t.Error("packed RGBA image was copied")
	}

	gray := image.NewGray(image.Rect(10, 10, 12, 11))
	gray.SetGray(10, 10, color.Gray{Y: 128})
	out := toRGBA(gray)
	if out.Bounds() != image.Rect(0, 0, 2, 1) {
		t.Errorf("bounds = %v, want origin-based 2x1", out.Bounds())
	}
	if c := out.RGBAAt(0, 0); c != (color.RGBA{128, 128, 128, 255}) {
		t.Errorf("converted pixel = %v", c)
	}
}

func TestPadRows(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	for i := range img.Pix {
		img.Pix[i] = byte(i + 1)
	}
	data, pitch := padRows(img)
	if pitch != rowPitchAlignment {
		t.Fatalf("pitch = %d, want %d", pitch, rowPitchAlignment)
	}
	if len(data) != 2*rowPitchAlignment {
		t.Fatalf("len(data) = %d, want %d", len(data), 2*rowPitchAlignment)
	}
	if !bytes.Equal(data[:12], img.Pix[:12]) || !bytes.Equal(data[256:268], img.Pix[12:24]) {
		t.Error("row contents not preserved")
	}
	if data[12] != 0 || data[255] != 0 {
		t.Error("padding is not zero")
	}

	wide := image.NewRGBA(image.Rect(0, 0, 64, 2))
	if _, pitch := padRows(wide); pitch != 256 {
		t.Errorf("64px row pitch = %d, want 256", pitch)
	}
}
