package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sorenkal/gridfeed/internal/api"
	"github.com/sorenkal/gridfeed/internal/gallery"
	"github.com/sorenkal/gridfeed/internal/testutil"
	"github.com/sorenkal/gridfeed/internal/wire"
)

func newTestModel(t *testing.T, withKey bool) (*Model, *testutil.FakeServer) {
	t.Helper()
	srv := testutil.NewFakeServer()
	t.Cleanup(srv.Close)
	srv.SetSections([]wire.Fragment{
		{
			{Timestamp: 1700000000, FileID: "f0", Width: 400, Height: 300},
			{Timestamp: 1700000001, FileID: "f1", Width: 300, Height: 400},
			{Timestamp: 1700000002, FileID: "f2", Width: 500, Height: 500},
		},
		{
			{Timestamp: 1700100000, FileID: "f3", Width: 400, Height: 400},
			{Timestamp: 1700100001, FileID: "f4", Width: 600, Height: 400},
		},
	})
	client, err := api.New(srv.URL())
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}
	if withKey {
		client.SetKey(srv.Key)
	}
	m := NewModel(Options{
		Client:     client,
		Width:      80,
		Height:     24,
		CellWidth:  8,
		CellHeight: 16,
		Tuning:     gallery.DefaultTuning(),
	})
	t.Cleanup(m.Teardown)
	return m, srv
}

// runCmd executes a command off the update loop, failing the test if no
// message arrives in time.
func runCmd(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	out := make(chan tea.Msg, 1)
	go func() { out <- cmd() }()
	select {
	case msg := <-out:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatalf("command did not produce a message")
		return nil
	}
}

// loadFeed drives the model from the picker into a feed with every
// section's fragment applied, pumping fetch events and frame timers the
// way the program loop would.
func loadFeed(t *testing.T, m *Model) {
	t.Helper()
	_, cmd := m.Update(runCmd(t, metadataCmd(m.client, "album0")))
	if m.mode != ModeFeed {
		t.Fatalf("expected feed mode after metadata, got %v", m.mode)
	}
	// listing
	_, cmd = m.Update(runCmd(t, cmd))
	if !m.feed.ready {
		t.Fatalf("expected feed to install after the listing event")
	}
	deadline := time.Now().Add(5 * time.Second)
	for {
		done := true
		for sec := 0; sec < m.feed.store.Len(); sec++ {
			if !m.feed.store.Loaded(sec) {
				done = false
			}
		}
		if done {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("sections never finished loading")
		}
		select {
		case msg := <-m.timers:
			m.Update(msg)
		case msg := <-m.feed.fetcher.Events():
			_, cmd = m.Update(fetchEventMsg{event: msg})
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestLoginFlowReachesPicker(t *testing.T) {
	m, srv := newTestModel(t, false)
	if m.mode != ModeLogin {
		t.Fatalf("expected login mode, got %v", m.mode)
	}
	m.login.email.SetValue("user@example.com")
	m.login.password.SetValue("hunter2")
	m.login.focused = loginFieldPassword
	_, cmd := m.Update(keyPress("enter"))
	if !m.login.Submitting() {
		t.Fatalf("expected form to enter submitting state")
	}
	m.Update(runCmd(t, cmd))
	if m.mode != ModePicker {
		t.Fatalf("expected picker mode after login, got %v", m.mode)
	}
	if m.session.Key() != srv.Key {
		t.Fatalf("expected session key %q, got %q", srv.Key, m.session.Key())
	}
}

func TestLoginValidationBlocksEmptyFields(t *testing.T) {
	m, _ := newTestModel(t, false)
	m.login.focused = loginFieldPassword
	_, cmd := m.Update(keyPress("enter"))
	if cmd != nil {
		t.Fatalf("expected no command for an empty form")
	}
	if m.login.Error() == "" {
		t.Fatalf("expected a validation error")
	}
}

func TestAlbumsPopulatePicker(t *testing.T) {
	m, _ := newTestModel(t, true)
	if m.mode != ModePicker {
		t.Fatalf("expected picker mode with an installed key, got %v", m.mode)
	}
	m.Update(runCmd(t, albumsCmd(m.client)))
	id, ok := m.picker.Selected()
	if !ok || id != "album0" {
		t.Fatalf("expected album0 selected, got %q ok=%v", id, ok)
	}
}

func TestPickerFilterRanksAlbums(t *testing.T) {
	p := newPicker()
	p.SetEntries([]wire.AlbumEntry{
		{ID: "a", Album: wire.Album{Description: wire.AlbumSettings{Name: "Holiday 2024"}}},
		{ID: "b", Album: wire.Album{Description: wire.AlbumSettings{Name: "Work events"}}},
	})
	p.filter.SetValue("holi")
	p.applyFilter()
	id, ok := p.Selected()
	if !ok || id != "a" {
		t.Fatalf("expected filter to keep album a, got %q ok=%v", id, ok)
	}
	if len(p.items) != 1 {
		t.Fatalf("expected 1 match, got %d", len(p.items))
	}
}

func TestLogoutReturnsToLogin(t *testing.T) {
	m, _ := newTestModel(t, true)
	m.Update(runCmd(t, sessionsCmd(m.client)))
	if len(m.session.KeyPrefixes()) == 0 {
		t.Fatalf("expected session prefixes installed")
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	m.Update(runCmd(t, cmd))
	if m.mode != ModeLogin {
		t.Fatalf("expected login mode after logout, got %v", m.mode)
	}
	if m.client.Key() != "" || m.session.Key() != "" {
		t.Fatalf("expected keys cleared after logout")
	}
}

func TestOpenAlbumLoadsSections(t *testing.T) {
	m, _ := newTestModel(t, true)
	loadFeed(t, m)
	if m.feed.store.Len() != 2 {
		t.Fatalf("expected 2 sections, got %d", m.feed.store.Len())
	}
	for sec := 0; sec < 2; sec++ {
		if !m.feed.store.Loaded(sec) {
			t.Fatalf("expected section %d loaded", sec)
		}
	}
}

func TestKeyScrollMovesViewport(t *testing.T) {
	m, _ := newTestModel(t, true)
	loadFeed(t, m)
	before := m.feed.vp.ScrollTop
	m.Update(keyPress("j"))
	if m.feed.vp.ScrollTop <= before {
		t.Fatalf("expected scroll down, got %f -> %f", before, m.feed.vp.ScrollTop)
	}
	m.Update(keyPress("g"))
	if m.feed.vp.ScrollTop != 0 {
		t.Fatalf("expected home to reset scroll, got %f", m.feed.vp.ScrollTop)
	}
}

func TestSpaceTogglesSelection(t *testing.T) {
	m, _ := newTestModel(t, true)
	loadFeed(t, m)
	m.Update(keyPress(" "))
	if m.feed.sel.Count() != 1 {
		t.Fatalf("expected 1 selected, got %d", m.feed.sel.Count())
	}
	m.Update(keyPress(" "))
	if !m.feed.sel.Empty() {
		t.Fatalf("expected selection cleared by second toggle")
	}
}

func TestShiftClickSelectsRange(t *testing.T) {
	m, _ := newTestModel(t, true)
	loadFeed(t, m)
	m.Update(keyPress(" ")) // anchor at {0,0}
	m.feed.cursor = gallery.Location{Section: 1, Item: 1}
	m.Update(keyPress("X"))
	// Items 0..2 of section 0 plus 0..1 of section 1.
	if got := m.feed.sel.Count(); got != 5 {
		t.Fatalf("expected 5 selected, got %d", got)
	}
}

func TestHeaderKeySelectsWholeSection(t *testing.T) {
	m, _ := newTestModel(t, true)
	loadFeed(t, m)
	m.Update(keyPress("S"))
	if !m.feed.sel.SectionAll(0) {
		t.Fatalf("expected section 0 fully selected")
	}
	if got := m.feed.sel.Count(); got != 3 {
		t.Fatalf("expected 3 selected, got %d", got)
	}
}

func TestClearSelection(t *testing.T) {
	m, _ := newTestModel(t, true)
	loadFeed(t, m)
	m.Update(keyPress(" "))
	m.Update(keyPress("c"))
	if !m.feed.sel.Empty() {
		t.Fatalf("expected empty selection after clear")
	}
}

func TestFullscreenRoundTrip(t *testing.T) {
	m, _ := newTestModel(t, true)
	loadFeed(t, m)
	m.Update(keyPress("enter"))
	if m.mode != ModeFullscreen {
		t.Fatalf("expected fullscreen mode, got %v", m.mode)
	}
	m.Update(keyPress("l"))
	if got := m.feed.nav.Current(); got.Item != 1 {
		t.Fatalf("expected viewer on item 1, got %+v", got)
	}
	m.Update(keyPress("esc"))
	if m.mode != ModeFeed {
		t.Fatalf("expected feed mode after dismiss, got %v", m.mode)
	}
	if m.feed.cursor.Item != 1 {
		t.Fatalf("expected cursor to follow the viewer, got %+v", m.feed.cursor)
	}
}

func TestFullscreenCrossesSections(t *testing.T) {
	m, _ := newTestModel(t, true)
	loadFeed(t, m)
	m.feed.cursor = gallery.Location{Section: 0, Item: 2}
	m.Update(keyPress("enter"))
	m.Update(keyPress("l"))
	if got := m.feed.nav.Current(); got.Section != 1 || got.Item != 0 {
		t.Fatalf("expected viewer to cross into section 1, got %+v", got)
	}
}

func TestCloseFeedReturnsToPicker(t *testing.T) {
	m, _ := newTestModel(t, true)
	loadFeed(t, m)
	m.Update(keyPress("esc"))
	if m.mode != ModePicker {
		t.Fatalf("expected picker mode, got %v", m.mode)
	}
	if m.feed != nil {
		t.Fatalf("expected feed released")
	}
}

func TestWindowResizeDebounces(t *testing.T) {
	m, _ := newTestModel(t, true)
	loadFeed(t, m)
	m.fixedWidth = false
	m.fixedHeight = false
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 12})
	deadline := time.After(5 * time.Second)
	for applied := false; !applied; {
		select {
		case msg := <-m.timers:
			m.Update(msg)
			applied = msg.kind == timerResize
		case <-deadline:
			t.Fatalf("resize debouncer never fired")
		}
	}
	want := float64(40 * m.cellWidth)
	if m.feed.vp.Width != want {
		t.Fatalf("expected viewport width %f, got %f", want, m.feed.vp.Width)
	}
}

func TestLocationAtMapsCells(t *testing.T) {
	m, _ := newTestModel(t, true)
	loadFeed(t, m)
	// Row 1 is the first content row; the header band (50px) covers it.
	loc, ok := m.locationAt(0, 1)
	if !ok || !loc.IsHeader() || loc.Section != 0 {
		t.Fatalf("expected section 0 header, got %+v ok=%v", loc, ok)
	}
	// Row 5 sits ~72px down, inside section 0's first packed row.
	loc, ok = m.locationAt(0, 5)
	if !ok || loc.Section != 0 || loc.Item != 0 {
		t.Fatalf("expected first item of section 0, got %+v ok=%v", loc, ok)
	}
}

func TestMouseWheelScrolls(t *testing.T) {
	m, _ := newTestModel(t, true)
	loadFeed(t, m)
	m.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	want := float64(wheelCells * m.cellHeight)
	if m.feed.vp.ScrollTop != want {
		t.Fatalf("expected scroll %f, got %f", want, m.feed.vp.ScrollTop)
	}
}

func TestMouseClickSelectsItem(t *testing.T) {
	m, _ := newTestModel(t, true)
	loadFeed(t, m)
	m.Update(tea.MouseMsg{
		X: 0, Y: 5,
		Action: tea.MouseActionPress,
		Button: tea.MouseButtonLeft,
	})
	if m.feed.sel.Empty() {
		t.Fatalf("expected a click to select an item")
	}
}
