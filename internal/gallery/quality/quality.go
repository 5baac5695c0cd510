// Package quality picks the resolution tier of each rendered row. Rows
// near the viewport are promoted to the medium tier; everything else falls
// back to the always-available small thumbnails. Evaluation is deferred
// while the user scrolls fast, so a flick through thousands of rows never
// requests images it will immediately scroll past.
package quality

import (
	"time"

	"github.com/sorenkal/gridfeed/internal/gallery"
	"github.com/sorenkal/gridfeed/internal/gallery/sections"
	"github.com/sorenkal/gridfeed/internal/schedule"
)

// Evaluator recomputes row tiers for the bound sections of a store.
type Evaluator struct {
	store  *sections.Store
	tuning gallery.Tuning
}

// New builds an evaluator over the given store.
func New(store *sections.Store, tuning gallery.Tuning) *Evaluator {
	return &Evaluator{store: store, tuning: tuning}
}

// Evaluate walks sections [lo, hi) and assigns each row the tier its
// position earns: medium when the row's extent intersects the promotion
// band, small otherwise. It returns the number of rows whose tier changed,
// so the caller can skip redraws and image loads when nothing moved.
func (e *Evaluator) Evaluate(lo, hi int, vp gallery.Viewport) int {
	bandLo := vp.ScrollTop - e.tuning.PromoteAbove*vp.Height
	bandHi := vp.ScrollTop + e.tuning.PromoteBelow*vp.Height

	changed := 0
	for i := lo; i < hi; i++ {
		handle := e.store.Handle(i)
		if handle == nil || len(handle.Rows) == 0 {
			continue
		}
		y := handle.Top + e.store.HeaderHeight()
		for r, row := range handle.Rows {
			want := gallery.TierSmall
			if y+row.Height > bandLo && y < bandHi {
				want = gallery.TierMedium
			}
			if r < len(handle.Tiers) && handle.Tiers[r] != want {
				handle.Tiers[r] = want
				changed++
			}
			y += row.Height
		}
	}
	return changed
}

// Gate applies the scroll-speed rule to evaluation timing: fast scrolls
// restart the quiet timer; slow ones evaluate immediately unless a fire is
// already queued (the queued fire covers them).
type Gate struct {
	deb   *schedule.Debouncer
	limit float64
	fn    func()
}

// NewGate builds a gate firing fn either immediately or after quiet,
// depending on scroll speed against limit (px/ms).
func NewGate(limit float64, quiet time.Duration, fn func()) *Gate {
	return &Gate{deb: schedule.NewDebouncer(quiet, fn), limit: limit, fn: fn}
}

// Scroll feeds the gate an instantaneous scroll speed in px/ms.
func (g *Gate) Scroll(speed float64) {
	if speed < 0 {
		speed = -speed
	}
	if speed > g.limit {
		g.deb.Reset()
		return
	}
	if !g.deb.Pending() {
		g.fn()
	}
}

// Pending reports whether a deferred evaluation is queued.
func (g *Gate) Pending() bool { return g.deb.Pending() }

// Stop cancels any deferred evaluation.
func (g *Gate) Stop() { g.deb.Stop() }
