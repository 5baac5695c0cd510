// Package thumbs turns served image bytes into small colour mosaics the
// terminal renderer can draw, one colour per half-block cell, and caches
// them keyed by file and quality tier.
package thumbs

import (
	"bytes"
	"container/list"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sync"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/sorenkal/gridfeed/internal/gallery"
)

// Mosaic is a decoded thumbnail reduced to a Cols×Rows grid of colours,
// row-major. Rows is in half-cell units: the renderer stacks two mosaic
// rows into one terminal row using the upper-half block.
type Mosaic struct {
	Cols, Rows int
	Cells      []Color
}

// Color is one mosaic cell, 8 bits per channel.
type Color struct {
	R, G, B uint8
}

// At returns the colour at (col, row).
func (m Mosaic) At(col, row int) Color {
	return m.Cells[row*m.Cols+col]
}

// Decode parses image bytes (webp, jpeg, png, gif) and scales them down to
// a cols×rows mosaic.
func Decode(data []byte, cols, rows int) (Mosaic, error) {
	if cols <= 0 || rows <= 0 {
		return Mosaic{}, fmt.Errorf("thumbs: invalid mosaic size %dx%d", cols, rows)
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Mosaic{}, fmt.Errorf("thumbs: decode: %w", err)
	}
	dst := image.NewRGBA(image.Rect(0, 0, cols, rows))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	m := Mosaic{Cols: cols, Rows: rows, Cells: make([]Color, cols*rows)}
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			i := dst.PixOffset(x, y)
			m.Cells[y*cols+x] = Color{R: dst.Pix[i], G: dst.Pix[i+1], B: dst.Pix[i+2]}
		}
	}
	return m, nil
}

type cacheKey struct {
	fileID string
	tier   gallery.Tier
}

type cacheEntry struct {
	key    cacheKey
	mosaic Mosaic
}

// Cache is a bounded LRU of decoded mosaics. Safe for concurrent use: the
// UI reads on the update loop while decode commands write from goroutines.
type Cache struct {
	mu      sync.Mutex
	limit   int
	order   *list.List
	entries map[cacheKey]*list.Element
}

// NewCache builds a cache holding at most limit mosaics.
func NewCache(limit int) *Cache {
	if limit <= 0 {
		limit = 512
	}
	return &Cache{
		limit:   limit,
		order:   list.New(),
		entries: make(map[cacheKey]*list.Element),
	}
}

// Get returns the cached mosaic for a file at a tier, refreshing its LRU
// position.
func (c *Cache) Get(fileID string, tier gallery.Tier) (Mosaic, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[cacheKey{fileID, tier}]
	if !ok {
		return Mosaic{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).mosaic, true
}

// Put stores a mosaic, evicting the least recently used entry when full.
func (c *Cache) Put(fileID string, tier gallery.Tier, m Mosaic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := cacheKey{fileID, tier}
	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).mosaic = m
		c.order.MoveToFront(el)
		return
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, mosaic: m})
	for c.order.Len() > c.limit {
		el := c.order.Back()
		c.order.Remove(el)
		delete(c.entries, el.Value.(*cacheEntry).key)
	}
}

// Len returns the number of cached mosaics.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
