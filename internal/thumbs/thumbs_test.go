package thumbs

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/sorenkal/gridfeed/internal/gallery"
)

// encodeHalves renders a PNG whose left half is red and right half blue.
func encodeHalves(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: 255, A: 255}
			if x >= w/2 {
				c = color.RGBA{B: 255, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeScalesToMosaic(t *testing.T) {
	data := encodeHalves(t, 64, 32)
	m, err := Decode(data, 8, 4)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.Cols != 8 || m.Rows != 4 || len(m.Cells) != 32 {
		t.Fatalf("mosaic shape = %dx%d (%d cells)", m.Cols, m.Rows, len(m.Cells))
	}
	left, right := m.At(0, 2), m.At(7, 2)
	if left.R < 200 || left.B > 55 {
		t.Fatalf("left cell not red: %+v", left)
	}
	if right.B < 200 || right.R > 55 {
		t.Fatalf("right cell not blue: %+v", right)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("not an image"), 4, 4); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := Decode(encodeHalves(t, 8, 8), 0, 4); err == nil {
		t.Fatalf("expected size error")
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(2)
	a := Mosaic{Cols: 1, Rows: 1, Cells: []Color{{R: 1}}}
	b := Mosaic{Cols: 1, Rows: 1, Cells: []Color{{R: 2}}}
	d := Mosaic{Cols: 1, Rows: 1, Cells: []Color{{R: 3}}}

	c.Put("a", gallery.TierSmall, a)
	c.Put("b", gallery.TierSmall, b)
	// Touch a so b becomes the eviction candidate.
	if _, ok := c.Get("a", gallery.TierSmall); !ok {
		t.Fatalf("a missing")
	}
	c.Put("d", gallery.TierSmall, d)

	if _, ok := c.Get("b", gallery.TierSmall); ok {
		t.Fatalf("b survived eviction")
	}
	if _, ok := c.Get("a", gallery.TierSmall); !ok {
		t.Fatalf("a evicted despite recent use")
	}
	if c.Len() != 2 {
		t.Fatalf("len = %d, want 2", c.Len())
	}
}

func TestCacheKeysByTier(t *testing.T) {
	c := NewCache(4)
	c.Put("a", gallery.TierSmall, Mosaic{Cols: 1, Rows: 1, Cells: []Color{{R: 9}}})
	if _, ok := c.Get("a", gallery.TierMedium); ok {
		t.Fatalf("tier leaked across cache keys")
	}
}
