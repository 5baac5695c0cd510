// Package fetch runs the asynchronous album fetches behind the feed: the
// head listing once, then one fragment per section on demand. Results are
// published on an events channel the UI bridges into its update loop. At
// most one fragment fetch per section is in flight at a time; duplicates
// are coalesced here rather than aborted at the transport level.
package fetch

import (
	"context"
	"sync"

	"github.com/sorenkal/gridfeed/internal/api"
	"github.com/sorenkal/gridfeed/internal/gallery"
	"github.com/sorenkal/gridfeed/internal/wire"
)

// Kind distinguishes the event payloads.
type Kind int

const (
	// KindListing carries the album's head listing.
	KindListing Kind = iota
	// KindFragment carries one section's items.
	KindFragment
)

// Event is one fetch outcome. Data and Err are mutually exclusive.
type Event struct {
	Kind    Kind
	Section int
	Listing wire.Listing
	Items   []gallery.Item
	Err     error
}

// Fetcher issues album fetches against the API client.
type Fetcher struct {
	client  *api.Client
	albumID string

	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	wg     sync.WaitGroup

	mu       sync.Mutex
	inflight map[int]bool
}

// New creates a fetcher for one album. Nothing is fetched until requested.
func New(client *api.Client, albumID string) *Fetcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Fetcher{
		client:   client,
		albumID:  albumID,
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan Event, 16),
		inflight: make(map[int]bool),
	}
}

// Events returns the channel fetch outcomes are published on.
func (f *Fetcher) Events() <-chan Event {
	return f.events
}

// RequestListing fetches the album's head listing.
func (f *Fetcher) RequestListing(fragmentHead uint64) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		listing, err := f.client.Listing(f.ctx, f.albumID, fragmentHead)
		f.emit(Event{Kind: KindListing, Listing: listing, Err: err})
	}()
}

// RequestFragment fetches one section's items. A request for a section
// already in flight is a no-op.
func (f *Fetcher) RequestFragment(section int, fragmentID uint64) {
	f.mu.Lock()
	if f.inflight[section] {
		f.mu.Unlock()
		return
	}
	f.inflight[section] = true
	f.mu.Unlock()

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		fragment, err := f.client.Fragment(f.ctx, f.albumID, fragmentID)
		f.mu.Lock()
		delete(f.inflight, section)
		f.mu.Unlock()

		evt := Event{Kind: KindFragment, Section: section, Err: err}
		if err == nil {
			evt.Items = toItems(fragment)
		}
		f.emit(evt)
	}()
}

// Stop cancels all in-flight fetches. Results racing the cancellation are
// dropped rather than published.
func (f *Fetcher) Stop() {
	f.cancel()
}

// Wait blocks until every fetch goroutine has exited. Call after Stop when
// a clean shutdown is required (e.g. in tests).
func (f *Fetcher) Wait() {
	f.wg.Wait()
}

func (f *Fetcher) emit(evt Event) {
	select {
	case <-f.ctx.Done():
	case f.events <- evt:
	}
}

func toItems(fragment wire.Fragment) []gallery.Item {
	items := make([]gallery.Item, len(fragment))
	for i, row := range fragment {
		items[i] = gallery.Item{
			ID:        row.FileID,
			Timestamp: row.Timestamp,
			Width:     row.Width,
			Height:    row.Height,
		}
	}
	return items
}
