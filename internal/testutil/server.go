// Package testutil hosts an in-process fake of the photo server used by
// client and UI tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sorenkal/gridfeed/internal/wire"
)

// FakeServer implements just enough of the photo server API for tests:
// key login, album list/metadata, fragment serving, and file serving.
type FakeServer struct {
	mu sync.Mutex

	Key       string
	AlbumID   string
	Album     wire.Album
	Listing   wire.Listing
	Fragments map[uint64]wire.Fragment
	Files     map[string][]byte

	// FailFragments forces a 500 for specific fragment ids.
	FailFragments map[uint64]bool

	// FragmentHits counts fetches per fragment id.
	FragmentHits map[uint64]int

	// FragmentDelay stalls fragment responses, for request-coalescing
	// tests.
	FragmentDelay time.Duration

	srv *httptest.Server
}

// NewFakeServer starts a fake server pre-authorised for the given key.
func NewFakeServer() *FakeServer {
	f := &FakeServer{
		Key:           "u0.test-key",
		AlbumID:       "album0",
		Fragments:     map[uint64]wire.Fragment{},
		Files:         map[string][]byte{},
		FailFragments: map[uint64]bool{},
		FragmentHits:  map[uint64]int{},
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

// URL returns the base URL of the fake server.
func (f *FakeServer) URL() string { return f.srv.URL }

// Close shuts the fake server down.
func (f *FakeServer) Close() { f.srv.Close() }

// SetSections installs a listing plus fragments in one call; fragment ids
// are assigned 1..n and the head takes n+1, mirroring the real engine's
// monotonic fragment counter.
func (f *FakeServer) SetSections(sections []wire.Fragment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Listing = f.Listing[:0]
	f.Fragments = map[uint64]wire.Fragment{}
	total := 0
	for i, frag := range sections {
		id := uint64(i + 1)
		f.Fragments[id] = frag
		ts := int64(0)
		if len(frag) > 0 {
			ts = frag[0].Timestamp
		}
		f.Listing = append(f.Listing, wire.ListingEntry{Timestamp: ts, FragmentID: id, Length: len(frag)})
		total += len(frag)
	}
	f.Album = wire.Album{
		Description:  wire.AlbumSettings{Name: "test album", TimeZone: "UTC"},
		FragmentHead: uint64(len(sections) + 1),
		Length:       total,
		Role:         "Owner",
	}
}

func (f *FakeServer) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/")
	parts := strings.Split(path, "/")

	switch {
	case r.Method == http.MethodPost && path == "user/login":
		var details wire.UserDetails
		if err := json.NewDecoder(r.Body).Decode(&details); err != nil || details.Email == "" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		writeJSON(w, wire.Key{Key: f.Key})
	case r.Method == http.MethodGet && path == "user/sessions":
		if !f.authed(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		writeJSON(w, wire.SessionList{KeyPrefixes: []string{f.Key[:4]}})
	case r.Method == http.MethodDelete && path == "user/logout":
		if !f.authed(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet && path == "album/":
		if !f.authed(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		writeJSON(w, map[string]wire.Album{f.AlbumID: f.Album})
	case r.Method == http.MethodGet && len(parts) == 4 && parts[0] == "album" && parts[2] == "serve":
		if !f.authed(r) || parts[1] != f.AlbumID {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if parts[3] == "metadata" {
			writeJSON(w, f.Album)
			return
		}
		id, err := strconv.ParseUint(parts[3], 10, 64)
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		f.FragmentHits[id]++
		if f.FragmentDelay > 0 {
			time.Sleep(f.FragmentDelay)
		}
		if f.FailFragments[id] {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if id == f.Album.FragmentHead {
			writeJSON(w, f.Listing)
			return
		}
		frag, ok := f.Fragments[id]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, frag)
	case r.Method == http.MethodGet && len(parts) == 4 && parts[0] == "file" && parts[1] == "serve":
		if !f.authed(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		data, ok := f.Files[parts[2]+"/"+parts[3]]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Write(data)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// Hits returns how many times a fragment id has been fetched.
func (f *FakeServer) Hits(id uint64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.FragmentHits[id]
}

func (f *FakeServer) authed(r *http.Request) bool {
	return r.URL.Query().Get("key") == f.Key
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
