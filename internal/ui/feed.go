package ui

import (
	"time"

	"github.com/sorenkal/gridfeed/internal/fetch"
	"github.com/sorenkal/gridfeed/internal/gallery"
	"github.com/sorenkal/gridfeed/internal/gallery/fullscreen"
	"github.com/sorenkal/gridfeed/internal/gallery/layout"
	"github.com/sorenkal/gridfeed/internal/gallery/quality"
	"github.com/sorenkal/gridfeed/internal/gallery/sections"
	"github.com/sorenkal/gridfeed/internal/gallery/selection"
	"github.com/sorenkal/gridfeed/internal/gallery/window"
	"github.com/sorenkal/gridfeed/internal/logging/events"
	"github.com/sorenkal/gridfeed/internal/schedule"
	"github.com/sorenkal/gridfeed/internal/wire"
)

// feed is the per-album engine state: section store, schedulers, selection
// and fullscreen models, plus the fetcher that feeds them.
type feed struct {
	albumID string
	album   wire.Album
	tuning  gallery.Tuning

	store *sections.Store
	sched *window.Scheduler
	qual  *quality.Evaluator
	sel   *selection.Model
	nav   *fullscreen.Navigator

	fetcher *fetch.Fetcher

	frame  *schedule.Coalescer
	resize *schedule.Debouncer
	gate   *quality.Gate

	vp         gallery.Viewport
	pendingVP  gallery.Viewport
	cursor     gallery.Location
	lastScroll time.Time

	// listing arrived and the store is installed
	ready bool
}

// newFeed starts loading an album: the head listing is requested
// immediately, everything else waits for it.
func newFeed(albumID string, album wire.Album, fetcher *fetch.Fetcher, tuning gallery.Tuning, vp gallery.Viewport, emit func(timerMsg)) *feed {
	f := &feed{
		albumID: albumID,
		album:   album,
		tuning:  tuning,
		fetcher: fetcher,
		vp:      vp,
	}
	f.frame = schedule.NewCoalescer(tuning.FrameInterval, func() { emit(timerMsg{kind: timerFrame}) })
	f.resize = schedule.NewDebouncer(tuning.ResizeQuiet, func() { emit(timerMsg{kind: timerResize}) })
	f.gate = quality.NewGate(tuning.SpeedLimit(), tuning.QualityQuiet, func() { emit(timerMsg{kind: timerQuality}) })
	fetcher.RequestListing(album.FragmentHead)
	return f
}

// install seeds the engine from the head listing and schedules the first
// window tick.
func (f *feed) install(listing wire.Listing) {
	entries := make([]sections.Entry, len(listing))
	for i, e := range listing {
		entries[i] = sections.Entry{Timestamp: e.Timestamp, FragmentID: e.FragmentID, Count: e.Length}
	}
	f.store = sections.Install(entries, f.vp.Width, f.tuning.IdealRowHeight, f.tuning.HeaderHeight)
	f.sched = window.New(f.store, f.tuning)
	f.qual = quality.New(f.store, f.tuning)
	f.sel = selection.New(f.store)
	f.nav = fullscreen.New(f.store)
	f.ready = true
	f.frame.Trigger()
}

// teardown stops the timers and in-flight fetches. Late results die in the
// fetcher's cancelled context.
func (f *feed) teardown() {
	f.frame.Stop()
	f.resize.Stop()
	f.gate.Stop()
	f.fetcher.Stop()
}

// scrollBy moves the viewport, feeding the scroll speed to the quality
// gate and waking the window scheduler.
func (f *feed) scrollBy(dy float64) {
	if !f.ready {
		return
	}
	now := time.Now()
	speed := 0.0
	if elapsed := now.Sub(f.lastScroll); elapsed > 0 && !f.lastScroll.IsZero() {
		speed = dy / (float64(elapsed) / float64(time.Millisecond))
	}
	f.gate.Scroll(speed)
	f.lastScroll = now
	f.vp.ScrollTop = clamp(f.vp.ScrollTop+dy, 0, f.maxScroll())
	f.frame.Trigger()
}

// scrollTo centres the viewport on a location.
func (f *feed) scrollTo(loc gallery.Location) {
	if !f.ready {
		return
	}
	top := f.store.Offset(loc.Section)
	if handle := f.store.Handle(loc.Section); handle != nil && loc.Item >= 0 {
		if rowTop, row, ok := rowOf(handle, loc.Item); ok {
			top += f.store.HeaderHeight() + rowTop + row.Height/2 - f.vp.Height/2
		}
	}
	f.vp.ScrollTop = clamp(top, 0, f.maxScroll())
	f.frame.Trigger()
}

func (f *feed) maxScroll() float64 {
	if f.store == nil {
		return 0
	}
	max := f.store.TotalHeight() - f.vp.Height
	if max < 0 {
		max = 0
	}
	return max
}

// tick runs one coalesced frame: band maintenance, mailbox drain, fragment
// requests, and a quality pass when layout changed.
func (f *feed) tick() bool {
	if !f.ready {
		return false
	}
	wants := f.sched.Tick(f.vp)
	for _, sec := range wants {
		f.fetcher.RequestFragment(sec, f.store.Entry(sec).FragmentID)
	}
	changed := f.sched.Drain(&f.vp)
	f.vp.ScrollTop = clamp(f.vp.ScrollTop, 0, f.maxScroll())
	if changed || len(wants) > 0 {
		lo, hi := f.sched.Band()
		events.Feed.Band(lo, hi)
	}
	if changed {
		f.evaluateQuality()
	}
	return changed || len(wants) > 0
}

// applyResize commits a debounced viewport change and re-partitions.
func (f *feed) applyResize() {
	f.vp.Width = f.pendingVP.Width
	f.vp.Height = f.pendingVP.Height
	if !f.ready {
		return
	}
	events.Feed.Relayout(f.vp.Width)
	f.sched.Relayout(&f.vp)
	f.vp.ScrollTop = clamp(f.vp.ScrollTop, 0, f.maxScroll())
	f.evaluateQuality()
	f.frame.Trigger()
}

func (f *feed) evaluateQuality() {
	lo, hi := f.sched.Band()
	if changed := f.qual.Evaluate(lo, hi, f.vp); changed > 0 {
		events.Feed.Quality(changed)
	}
}

// enqueue queues a fragment result for the next frame.
func (f *feed) enqueue(evt fetch.Event) {
	if evt.Err != nil {
		events.Fetch.Error(evt.Section, evt.Err)
	} else {
		events.Fetch.Fragment(evt.Section, len(evt.Items))
	}
	f.sched.Enqueue(window.Result{Section: evt.Section, Items: evt.Items, Err: evt.Err})
	f.frame.Trigger()
}

// retry clears a failed section and re-issues its fragment request.
func (f *feed) retry(sec int) {
	if !f.ready || sec < 0 || sec >= f.store.Len() || !f.store.Failed(sec) {
		return
	}
	events.Fetch.Retry(sec)
	f.sched.Retry(sec)
	f.fetcher.RequestFragment(sec, f.store.Entry(sec).FragmentID)
}

// moveCursor steps the cursor through loaded items, crossing section
// borders like the fullscreen navigator does.
func (f *feed) moveCursor(delta int) {
	if !f.ready || f.store.Len() == 0 {
		return
	}
	cur := f.cursor
	if delta > 0 {
		if cur.Item+1 < f.store.LoadedCount(cur.Section) {
			cur.Item++
		} else if cur.Section+1 < f.store.Len() && f.store.LoadedCount(cur.Section+1) > 0 {
			cur = gallery.Location{Section: cur.Section + 1}
		}
	} else {
		if cur.Item > 0 {
			cur.Item--
		} else if cur.Section > 0 && f.store.LoadedCount(cur.Section-1) > 0 {
			cur = gallery.Location{Section: cur.Section - 1, Item: f.store.LoadedCount(cur.Section-1) - 1}
		}
	}
	f.cursor = cur
	f.ensureCursorVisible()
}

func (f *feed) ensureCursorVisible() {
	top := f.store.Offset(f.cursor.Section)
	bottom := top + f.store.Height(f.cursor.Section)
	if handle := f.store.Handle(f.cursor.Section); handle != nil && f.cursor.Item >= 0 {
		if rowTop, row, ok := rowOf(handle, f.cursor.Item); ok {
			top += f.store.HeaderHeight() + rowTop
			bottom = top + row.Height
		}
	}
	if top < f.vp.ScrollTop {
		f.vp.ScrollTop = clamp(top, 0, f.maxScroll())
		f.frame.Trigger()
	} else if bottom > f.vp.ScrollTop+f.vp.Height {
		f.vp.ScrollTop = clamp(bottom-f.vp.Height, 0, f.maxScroll())
		f.frame.Trigger()
	}
}

// rowOf finds the row containing an item index and its top offset within
// the section body.
func rowOf(handle *sections.Handle, item int) (float64, layout.Row, bool) {
	top := 0.0
	for _, row := range handle.Rows {
		if item >= row.Start && item < row.End {
			return top, row, true
		}
		top += row.Height
	}
	return 0, layout.Row{}, false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
