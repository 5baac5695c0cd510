// Package window decides which sections are materialised for a given
// scroll position. It maintains a committed band with two hysteresis radii:
// sections are created while inside the narrower inner radius and destroyed
// only once outside the outer radius, so small scroll jitter never churns
// handles. Fragment results arrive through a mailbox drained at most once
// per frame.
package window

import (
	"github.com/sorenkal/gridfeed/internal/gallery"
	"github.com/sorenkal/gridfeed/internal/gallery/layout"
	"github.com/sorenkal/gridfeed/internal/gallery/sections"
)

// Result is a fragment fetch outcome queued for the next frame. A result
// for a section that is no longer bound is discarded at apply time.
type Result struct {
	Section int
	Items   []gallery.Item
	Err     error
}

// Scheduler owns the committed band and the result mailbox.
type Scheduler struct {
	store  *sections.Store
	tuning gallery.Tuning
	packer layout.Packer

	lo, hi int
	seeded bool

	// anchorFloor is the low-water-mark of centred-section indexes seen
	// since the start of the current tick; height compensation is skipped
	// once the centre moves above it, to avoid double-correcting.
	anchorFloor int

	mail []Result
}

// New builds a scheduler over the given store.
func New(store *sections.Store, tuning gallery.Tuning) *Scheduler {
	return &Scheduler{
		store:  store,
		tuning: tuning,
		packer: layout.NewPacker(tuning),
	}
}

// Band returns the committed half-open section range.
func (s *Scheduler) Band() (lo, hi int) { return s.lo, s.hi }

// Enqueue queues a fragment result for the next drain.
func (s *Scheduler) Enqueue(r Result) { s.mail = append(s.mail, r) }

// PendingResults reports whether queued results await a drain.
func (s *Scheduler) PendingResults() bool { return len(s.mail) > 0 }

// Retry clears a section's failure mark so the next tick re-requests its
// fragment.
func (s *Scheduler) Retry(section int) {
	if section >= 0 && section < s.store.Len() {
		s.store.ClearFailed(section)
	}
}

// Tick recomputes the band for the current viewport: shrink outside the
// outer radius, grow inside the inner radius, reposition bound sections.
// It returns the sections whose fragments should be requested now.
func (s *Scheduler) Tick(vp gallery.Viewport) []int {
	n := s.store.Len()
	if n == 0 {
		return nil
	}

	s.anchorFloor = s.store.SectionAt(vp.ScrollTop + vp.Height/2)

	if !s.seeded {
		at := s.store.SectionAt(vp.ScrollTop)
		s.lo, s.hi = at, at
		s.seeded = true
	}

	outerLo := vp.ScrollTop - s.tuning.OuterRadius*vp.Height
	outerHi := vp.ScrollTop + vp.Height + s.tuning.OuterRadius*vp.Height
	innerLo := vp.ScrollTop - s.tuning.InnerRadius*vp.Height
	innerHi := vp.ScrollTop + vp.Height + s.tuning.InnerRadius*vp.Height

	for s.lo < s.hi && !s.intersects(s.lo, outerLo, outerHi) {
		s.store.Release(s.lo)
		s.lo++
	}
	for s.hi > s.lo && !s.intersects(s.hi-1, outerLo, outerHi) {
		s.store.Release(s.hi - 1)
		s.hi--
	}
	if s.lo == s.hi {
		// Band emptied (or fresh): reseed at the scroll position.
		at := s.store.SectionAt(vp.ScrollTop)
		s.lo, s.hi = at, at
	}

	var wants []int
	bind := func(i int) {
		if s.store.Bound(i) {
			return
		}
		s.store.Bind(i)
		if s.store.Loaded(i) {
			// Cached data: lay the section out right away.
			s.apply(&vp, i, nil, false)
		} else if !s.store.Failed(i) {
			wants = append(wants, i)
		}
	}

	for i := s.lo; i < s.hi; i++ {
		bind(i)
	}
	for s.hi < n && s.intersects(s.hi, innerLo, innerHi) {
		bind(s.hi)
		s.hi++
	}
	for s.lo > 0 && s.intersects(s.lo-1, innerLo, innerHi) {
		s.lo--
		bind(s.lo)
	}

	s.reposition()
	return wants
}

// Drain applies all queued results in arrival order, then repositions the
// band. The caller invokes it at most once per frame; pointer viewport so
// scroll anchoring can adjust the position. Reports whether layout changed.
func (s *Scheduler) Drain(vp *gallery.Viewport) bool {
	if len(s.mail) == 0 {
		return false
	}
	queued := s.mail
	s.mail = nil
	changed := false
	for _, r := range queued {
		if r.Section < 0 || r.Section >= s.store.Len() {
			continue
		}
		if !s.store.Bound(r.Section) {
			// Destroyed while the fetch was in flight; data is dropped,
			// the section will re-request if it is ever rebound.
			continue
		}
		if r.Err != nil {
			s.store.SetFailed(r.Section)
			changed = true
			continue
		}
		if s.apply(vp, r.Section, r.Items, true) {
			changed = true
		}
	}
	if changed {
		s.reposition()
	}
	return changed
}

// Relayout re-partitions every loaded bound section, used on viewport
// width changes.
func (s *Scheduler) Relayout(vp *gallery.Viewport) {
	for i := s.lo; i < s.hi; i++ {
		if s.store.Bound(i) && s.store.Loaded(i) {
			s.apply(vp, i, nil, true)
		}
	}
	s.reposition()
}

// apply installs items (when non-nil), packs rows, updates the height, and
// compensates the scroll position for height deltas above the centre.
func (s *Scheduler) apply(vp *gallery.Viewport, i int, items []gallery.Item, anchor bool) bool {
	if !s.store.Bound(i) {
		return false
	}
	if items != nil {
		s.store.SetItems(i, items)
	}
	rows := s.packer.Pack(s.store.Items(i), vp.Width)
	handle := s.store.Handle(i)
	handle.Rows = rows
	handle.Tiers = resizeTiers(handle.Tiers, len(rows))

	oldHeight := s.store.Height(i)
	newHeight := s.store.HeaderHeight() + layout.TotalHeight(rows)
	if newHeight == oldHeight {
		return items != nil
	}
	top := s.store.Offset(i)
	s.store.SetHeight(i, newHeight)

	if anchor && s.tuning.AnchorScroll && oldHeight > 0 {
		centre := s.store.SectionAt(vp.ScrollTop + vp.Height/2)
		if centre >= s.anchorFloor {
			frac := (vp.ScrollTop - top) / oldHeight
			if frac < 0 {
				frac = 0
			} else if frac > 1 {
				frac = 1
			}
			vp.ScrollTop += (newHeight - oldHeight) * frac
			if vp.ScrollTop < 0 {
				vp.ScrollTop = 0
			}
			if after := s.store.SectionAt(vp.ScrollTop + vp.Height/2); after < s.anchorFloor {
				s.anchorFloor = after
			}
		}
	}
	return true
}

func (s *Scheduler) reposition() {
	for i := s.lo; i < s.hi; i++ {
		if h := s.store.Handle(i); h != nil {
			h.Top = s.store.Offset(i)
		}
	}
}

// intersects reports whether section i's extent overlaps [lo, hi).
func (s *Scheduler) intersects(i int, lo, hi float64) bool {
	top := s.store.Offset(i)
	bottom := top + s.store.Height(i)
	return bottom > lo && top < hi
}

func resizeTiers(tiers []gallery.Tier, n int) []gallery.Tier {
	if len(tiers) == n {
		return tiers
	}
	out := make([]gallery.Tier, n)
	copy(out, tiers)
	return out
}
