package quality

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/sorenkal/gridfeed/internal/gallery"
	"github.com/sorenkal/gridfeed/internal/gallery/layout"
	"github.com/sorenkal/gridfeed/internal/gallery/sections"
)

func waitFor(t *testing.T, deadline time.Duration, cond func() bool) {
	t.Helper()
	end := time.Now().Add(deadline)
	for time.Now().Before(end) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not met within %v", deadline)
}

// fiveRowSection binds one section whose handle carries five 300px rows.
func fiveRowSection(t *testing.T) (*Evaluator, *sections.Handle) {
	t.Helper()
	tuning := gallery.DefaultTuning()
	store := sections.Install([]sections.Entry{{FragmentID: 1, Count: 15}}, 1000, 300, 50)
	handle := store.Bind(0)
	handle.Top = 0
	rows := make([]layout.Row, 5)
	for i := range rows {
		rows[i] = layout.Row{Start: i * 3, End: i*3 + 3, Height: 300}
	}
	handle.Rows = rows
	handle.Tiers = make([]gallery.Tier, len(rows))
	store.SetHeight(0, 50+5*300)
	return New(store, tuning), handle
}

func TestEvaluatePromotesBandRows(t *testing.T) {
	e, handle := fiveRowSection(t)

	// Band at rest is [-500, 1000): row 4 starts at 1250 and stays small.
	changed := e.Evaluate(0, 1, gallery.Viewport{Width: 1000, Height: 500})
	if changed != 4 {
		t.Fatalf("changed = %d, want 4", changed)
	}
	want := []gallery.Tier{
		gallery.TierMedium, gallery.TierMedium, gallery.TierMedium,
		gallery.TierMedium, gallery.TierSmall,
	}
	for i, tier := range handle.Tiers {
		if tier != want[i] {
			t.Fatalf("row %d tier = %v, want %v", i, tier, want[i])
		}
	}
}

func TestEvaluateIsStable(t *testing.T) {
	e, _ := fiveRowSection(t)
	vp := gallery.Viewport{Width: 1000, Height: 500}
	e.Evaluate(0, 1, vp)
	if changed := e.Evaluate(0, 1, vp); changed != 0 {
		t.Fatalf("second evaluation changed %d rows, want 0", changed)
	}
}

func TestEvaluateDemotesOnScroll(t *testing.T) {
	e, handle := fiveRowSection(t)
	e.Evaluate(0, 1, gallery.Viewport{Width: 1000, Height: 500})

	// Scrolled past the section: only the last row still touches the band.
	changed := e.Evaluate(0, 1, gallery.Viewport{Width: 1000, Height: 500, ScrollTop: 2000})
	if changed != 5 {
		t.Fatalf("changed = %d, want 5", changed)
	}
	for i, tier := range handle.Tiers {
		want := gallery.TierSmall
		if i == 4 {
			want = gallery.TierMedium
		}
		if tier != want {
			t.Fatalf("row %d tier = %v, want %v", i, tier, want)
		}
	}
}

func TestEvaluateSkipsUnboundSections(t *testing.T) {
	store := sections.Install([]sections.Entry{{Count: 3}, {Count: 3}}, 1000, 300, 50)
	e := New(store, gallery.DefaultTuning())
	if changed := e.Evaluate(0, 2, gallery.Viewport{Width: 1000, Height: 500}); changed != 0 {
		t.Fatalf("changed = %d for unbound sections, want 0", changed)
	}
}

func TestGateFiresImmediatelyWhenSlow(t *testing.T) {
	var fired atomic.Int32
	g := NewGate(4.5, 10*time.Millisecond, func() { fired.Add(1) })
	defer g.Stop()

	g.Scroll(1.0)
	if got := fired.Load(); got != 1 {
		t.Fatalf("fires = %d, want 1 (immediate)", got)
	}
}

func TestGateDefersWhileFast(t *testing.T) {
	var fired atomic.Int32
	g := NewGate(4.5, 20*time.Millisecond, func() { fired.Add(1) })
	defer g.Stop()

	g.Scroll(100)
	if fired.Load() != 0 {
		t.Fatalf("fast scroll fired immediately")
	}
	if !g.Pending() {
		t.Fatalf("fast scroll left nothing pending")
	}
	// A slow event while the timer runs rides the pending fire.
	g.Scroll(1.0)
	if fired.Load() != 0 {
		t.Fatalf("slow scroll fired despite pending timer")
	}
	waitFor(t, time.Second, func() bool { return fired.Load() == 1 })
}
