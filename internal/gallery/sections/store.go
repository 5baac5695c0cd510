// Package sections owns the per-section state of the feed: height
// estimates, the lazily extended offset prefix sum, item data, and the
// render-handle lifecycle. Sections are arena slots indexed by position;
// handles are created and destroyed explicitly by the window scheduler
// while item data and selection state outlive them.
package sections

import (
	"sort"

	"github.com/sorenkal/gridfeed/internal/gallery"
	"github.com/sorenkal/gridfeed/internal/gallery/layout"
)

// Entry seeds one section from the head listing.
type Entry struct {
	Timestamp  int64
	FragmentID uint64
	Count      int
}

// Handle is the render-side state of a bound section. It exists only
// while the section is inside the materialised window.
type Handle struct {
	Top   float64
	Rows  []layout.Row
	Tiers []gallery.Tier
}

type slot struct {
	entry  Entry
	height float64
	items  []gallery.Item
	loaded bool
	failed bool
	handle *Handle
}

// Store is the arena of section slots plus the offset table over their
// heights.
type Store struct {
	slots []slot
	total float64

	// offsets[i] is the cumulative height before section i; valid for
	// i <= computed and recomputed lazily past that point.
	offsets  []float64
	computed int

	headerHeight float64
}

// Install initialises the store from head-listing entries, seeding each
// height with the packing heuristic for the given viewport width.
func Install(entries []Entry, viewportWidth, idealHeight, headerHeight float64) *Store {
	s := &Store{
		slots:        make([]slot, len(entries)),
		offsets:      make([]float64, len(entries)+1),
		headerHeight: headerHeight,
	}
	for i, e := range entries {
		h := estimateHeight(e.Count, viewportWidth, idealHeight, headerHeight)
		s.slots[i] = slot{entry: e, height: h}
		s.total += h
	}
	return s
}

// estimateHeight guesses a section's height before its fragment arrives:
// the items tile rows of roughly idealHeight, so the body scales with
// idealHeight² · count / width, floored at one row.
func estimateHeight(count int, viewportWidth, idealHeight, headerHeight float64) float64 {
	body := idealHeight
	if viewportWidth > 0 {
		if est := idealHeight * idealHeight * float64(count) / viewportWidth; est > body {
			body = est
		}
	}
	return headerHeight + body
}

// Len returns the number of sections.
func (s *Store) Len() int { return len(s.slots) }

// HeaderHeight returns the per-section header height.
func (s *Store) HeaderHeight() float64 { return s.headerHeight }

// Entry returns the listing entry that seeded section i.
func (s *Store) Entry(i int) Entry { return s.slots[i].entry }

// Height returns section i's current height estimate.
func (s *Store) Height(i int) float64 { return s.slots[i].height }

// TotalHeight returns the running total over all section heights.
func (s *Store) TotalHeight() float64 { return s.total }

// Offset returns the cumulative height before section i, extending the
// cached prefix sum no further than requested. Offset(Len()) is the total.
func (s *Store) Offset(i int) float64 {
	if i < 0 {
		return 0
	}
	if i > len(s.slots) {
		i = len(s.slots)
	}
	for s.computed < i {
		s.offsets[s.computed+1] = s.offsets[s.computed] + s.slots[s.computed].height
		s.computed++
	}
	return s.offsets[i]
}

// SetHeight updates section i's height, adjusts the running total by the
// delta, and rewinds the computed-up-to pointer so later offsets are
// recomputed. Heights must be non-negative.
func (s *Store) SetHeight(i int, height float64) {
	if height < 0 {
		height = 0
	}
	delta := height - s.slots[i].height
	s.slots[i].height = height
	s.total += delta
	if s.computed > i {
		s.computed = i
	}
}

// SectionAt returns the index of the section whose extent contains the
// vertical position y, clamped to the first/last section.
func (s *Store) SectionAt(y float64) int {
	n := len(s.slots)
	if n == 0 {
		return 0
	}
	idx := sort.Search(n, func(i int) bool { return s.Offset(i+1) > y })
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// SetItems installs section i's fetched items and clears any fetch error.
func (s *Store) SetItems(i int, items []gallery.Item) {
	s.slots[i].items = items
	s.slots[i].loaded = true
	s.slots[i].failed = false
}

// Items returns section i's loaded items, nil when the fragment has not
// arrived yet.
func (s *Store) Items(i int) []gallery.Item { return s.slots[i].items }

// Loaded reports whether section i's fragment has been applied.
func (s *Store) Loaded(i int) bool { return s.slots[i].loaded }

// SetFailed marks section i's fragment fetch as failed; the section keeps
// its placeholder and renders a retry affordance.
func (s *Store) SetFailed(i int) { s.slots[i].failed = true }

// ClearFailed resets the failure mark ahead of a retry.
func (s *Store) ClearFailed(i int) { s.slots[i].failed = false }

// Failed reports whether section i's last fragment fetch failed.
func (s *Store) Failed(i int) bool { return s.slots[i].failed }

// Bind materialises section i, creating its render handle. Binding an
// already-bound section returns the existing handle.
func (s *Store) Bind(i int) *Handle {
	if s.slots[i].handle == nil {
		s.slots[i].handle = &Handle{}
	}
	return s.slots[i].handle
}

// Release destroys section i's render handle. Item data, height estimate,
// and selection state survive.
func (s *Store) Release(i int) {
	s.slots[i].handle = nil
}

// Bound reports whether section i currently owns a render handle.
func (s *Store) Bound(i int) bool { return s.slots[i].handle != nil }

// Handle returns section i's render handle, nil when unbound.
func (s *Store) Handle(i int) *Handle { return s.slots[i].handle }

// ItemIDs returns the ids of section i's loaded items in order, nil when
// the fragment has not arrived. Used by the selection model.
func (s *Store) ItemIDs(i int) []string {
	items := s.slots[i].items
	if items == nil {
		return nil
	}
	ids := make([]string, len(items))
	for j, it := range items {
		ids[j] = it.ID
	}
	return ids
}

// ItemCount returns the declared item count of section i from the head
// listing, before and independent of fragment arrival.
func (s *Store) ItemCount(i int) int { return s.slots[i].entry.Count }

// LoadedCount returns the number of loaded items of section i, zero when
// the fragment has not arrived.
func (s *Store) LoadedCount(i int) int { return len(s.slots[i].items) }

// SectionCount mirrors Len for the selection/fullscreen interfaces.
func (s *Store) SectionCount() int { return len(s.slots) }
