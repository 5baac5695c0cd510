// Package fullscreen holds the modal single-item navigator. Paging walks
// the same section/item addressing the feed uses, crossing section borders
// only when the neighbour's data is already loaded: fullscreen never
// triggers a fetch.
package fullscreen

import "github.com/sorenkal/gridfeed/internal/gallery"

// Source exposes the loaded shape of the feed. *sections.Store satisfies
// it.
type Source interface {
	SectionCount() int
	// LoadedCount returns the number of fetched items, 0 before the
	// section's fragment arrives.
	LoadedCount(section int) int
}

// Navigator is the fullscreen state machine.
type Navigator struct {
	src     Source
	cur     gallery.Location
	visible bool
}

// New builds a hidden navigator over the given source.
func New(src Source) *Navigator {
	return &Navigator{src: src}
}

// Visible reports whether the fullscreen view is open.
func (n *Navigator) Visible() bool { return n.visible }

// Current returns the displayed location; meaningful only while visible.
func (n *Navigator) Current() gallery.Location { return n.cur }

// Open shows the navigator at loc. Header locations and items outside the
// loaded range are refused.
func (n *Navigator) Open(loc gallery.Location) bool {
	if loc.IsHeader() || loc.Section < 0 || loc.Section >= n.src.SectionCount() {
		return false
	}
	if loc.Item < 0 || loc.Item >= n.src.LoadedCount(loc.Section) {
		return false
	}
	n.cur, n.visible = loc, true
	return true
}

// Close dismisses the view.
func (n *Navigator) Close() { n.visible = false }

// Next pages forward. It advances within the current section, or into the
// first item of the following section when that one is loaded. The
// returned location should be centred by the host scroller on success.
func (n *Navigator) Next() (gallery.Location, bool) {
	if !n.visible {
		return gallery.Location{}, false
	}
	if n.cur.Item+1 < n.src.LoadedCount(n.cur.Section) {
		n.cur.Item++
		return n.cur, true
	}
	next := n.cur.Section + 1
	if next >= n.src.SectionCount() || n.src.LoadedCount(next) == 0 {
		return gallery.Location{}, false
	}
	n.cur = gallery.Location{Section: next}
	return n.cur, true
}

// Previous pages backward, mirroring Next.
func (n *Navigator) Previous() (gallery.Location, bool) {
	if !n.visible {
		return gallery.Location{}, false
	}
	if n.cur.Item > 0 {
		n.cur.Item--
		return n.cur, true
	}
	prev := n.cur.Section - 1
	if prev < 0 || n.src.LoadedCount(prev) == 0 {
		return gallery.Location{}, false
	}
	n.cur = gallery.Location{Section: prev, Item: n.src.LoadedCount(prev) - 1}
	return n.cur, true
}
