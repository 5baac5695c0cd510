package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sorenkal/gridfeed/internal/gallery"
	"github.com/sorenkal/gridfeed/internal/logging/events"
)

// wheelCells is how many cell rows one wheel notch scrolls.
const wheelCells = 3

// dragFraction is the horizontal drag distance, as a fraction of the
// terminal width, that pages the fullscreen viewer.
const dragFraction = 0.1

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if key.Type == tea.KeyCtrlC {
		m.quitting = true
		return tea.Quit
	}
	switch m.mode {
	case ModeLogin:
		return m.handleLoginKey(key)
	case ModePicker:
		return m.handlePickerKey(key)
	case ModeFeed:
		return m.handleFeedKey(key)
	case ModeFullscreen:
		return m.handleFullscreenKey(key)
	}
	return nil
}

func (m *Model) handleLoginKey(key tea.KeyMsg) tea.Cmd {
	if m.login.Submitting() {
		return nil
	}
	switch key.Type {
	case tea.KeyEsc:
		m.quitting = true
		return tea.Quit
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		return m.login.NextField()
	case tea.KeyEnter:
		if m.login.focused == loginFieldEmail {
			return m.login.NextField()
		}
		if !m.login.Validate() {
			return nil
		}
		m.errMsg = ""
		m.login.SetSubmitting(true)
		return loginCmd(m.client, m.login.Email(), m.login.Password())
	}
	return m.login.Update(key)
}

func (m *Model) handlePickerKey(key tea.KeyMsg) tea.Cmd {
	switch key.Type {
	case tea.KeyEsc:
		if m.picker.ClearFilter() {
			return nil
		}
		m.quitting = true
		return tea.Quit
	case tea.KeyUp, tea.KeyCtrlP:
		m.picker.MoveCursor(-1)
		return nil
	case tea.KeyDown, tea.KeyCtrlN:
		m.picker.MoveCursor(1)
		return nil
	case tea.KeyEnter:
		if id, ok := m.picker.Selected(); ok {
			return m.openAlbum(id)
		}
		return nil
	case tea.KeyCtrlL:
		return logoutCmd(m.client, m.logoutPrefix())
	}
	return m.picker.Update(key)
}

func (m *Model) handleFeedKey(key tea.KeyMsg) tea.Cmd {
	f := m.feed
	if f == nil {
		return nil
	}
	line := float64(m.cellHeight)
	switch key.String() {
	case "q":
		m.quitting = true
		return tea.Quit
	case "esc":
		m.closeFeed()
		return nil
	case "down", "j":
		f.scrollBy(line)
	case "up", "k":
		f.scrollBy(-line)
	case "pgdown", "ctrl+d":
		f.scrollBy(f.vp.Height - line)
	case "pgup", "ctrl+u":
		f.scrollBy(-(f.vp.Height - line))
	case "g", "home":
		f.scrollBy(-f.vp.ScrollTop)
	case "G", "end":
		f.scrollBy(f.maxScroll() - f.vp.ScrollTop)
	case "right", "l":
		f.moveCursor(1)
	case "left", "h":
		f.moveCursor(-1)
	case "enter", "f":
		if f.ready && f.nav.Open(f.cursor) {
			loc := f.nav.Current()
			events.UI.Fullscreen(loc.Section, loc.Item, true)
			m.setMode(ModeFullscreen)
			return m.requestThumbs()
		}
	case " ", "tab", "x":
		if f.ready {
			f.sel.Click(f.cursor)
			events.Select.Click(f.cursor.Section, f.cursor.Item)
		}
	case "S":
		if f.ready {
			header := gallery.Location{Section: f.cursor.Section, Item: gallery.HeaderItem}
			f.sel.Click(header)
			events.Select.Click(header.Section, header.Item)
		}
	case "v", "X":
		if f.ready {
			f.sel.ShiftClick(f.cursor)
			events.Select.Range(f.cursor.Section, f.cursor.Item, f.sel.IsSelected(f.cursor.Section, selectedID(f, f.cursor)))
		}
	case "c":
		if f.ready && !f.sel.Empty() {
			events.Select.Cleared(f.sel.Count())
			f.sel.Clear()
		}
	case "r":
		if f.ready {
			f.retry(f.cursor.Section)
		}
	}
	return nil
}

func (m *Model) handleFullscreenKey(key tea.KeyMsg) tea.Cmd {
	f := m.feed
	if f == nil || !f.nav.Visible() {
		m.setMode(ModeFeed)
		return nil
	}
	switch key.String() {
	case "esc", "q", " ", "enter":
		m.dismissFullscreen()
		return nil
	case "right", "l", "down", "j":
		return m.pageFullscreen(1)
	case "left", "h", "up", "k":
		return m.pageFullscreen(-1)
	}
	return nil
}

// pageFullscreen advances the viewer and keeps the feed centred beneath it
// so dismissal lands on the current photo.
func (m *Model) pageFullscreen(delta int) tea.Cmd {
	f := m.feed
	var loc gallery.Location
	var ok bool
	if delta > 0 {
		loc, ok = f.nav.Next()
	} else {
		loc, ok = f.nav.Previous()
	}
	if !ok {
		return nil
	}
	f.cursor = loc
	f.scrollTo(loc)
	events.UI.Fullscreen(loc.Section, loc.Item, true)
	return m.requestThumbs()
}

func (m *Model) dismissFullscreen() {
	f := m.feed
	loc := f.nav.Current()
	f.nav.Close()
	events.UI.Fullscreen(loc.Section, loc.Item, false)
	f.cursor = loc
	f.scrollTo(loc)
	m.setMode(ModeFeed)
}

func (m *Model) handleMouseMsg(msg tea.Msg) tea.Cmd {
	mouse, ok := msg.(tea.MouseMsg)
	if !ok {
		return nil
	}
	switch m.mode {
	case ModeFeed:
		return m.handleFeedMouse(mouse)
	case ModeFullscreen:
		return m.handleFullscreenMouse(mouse)
	case ModePicker:
		switch mouse.Button {
		case tea.MouseButtonWheelUp:
			m.picker.MoveCursor(-1)
		case tea.MouseButtonWheelDown:
			m.picker.MoveCursor(1)
		}
	}
	return nil
}

func (m *Model) handleFeedMouse(mouse tea.MouseMsg) tea.Cmd {
	f := m.feed
	if f == nil || !f.ready {
		return nil
	}
	switch mouse.Button {
	case tea.MouseButtonWheelUp:
		f.scrollBy(-float64(wheelCells * m.cellHeight))
		return nil
	case tea.MouseButtonWheelDown:
		f.scrollBy(float64(wheelCells * m.cellHeight))
		return nil
	}
	if mouse.Action != tea.MouseActionPress || mouse.Button != tea.MouseButtonLeft {
		return nil
	}
	loc, ok := m.locationAt(mouse.X, mouse.Y)
	if !ok {
		return nil
	}
	f.cursor = loc
	if mouse.Shift {
		f.sel.ShiftClick(loc)
		events.Select.Range(loc.Section, loc.Item, f.sel.IsSelected(loc.Section, selectedID(f, loc)))
	} else {
		f.sel.Click(loc)
		events.Select.Click(loc.Section, loc.Item)
	}
	return nil
}

func (m *Model) handleFullscreenMouse(mouse tea.MouseMsg) tea.Cmd {
	f := m.feed
	if f == nil || !f.nav.Visible() {
		return nil
	}
	switch mouse.Action {
	case tea.MouseActionPress:
		if mouse.Button == tea.MouseButtonLeft {
			m.dragStartX = mouse.X
			m.dragging = true
		}
	case tea.MouseActionRelease:
		if !m.dragging {
			return nil
		}
		m.dragging = false
		threshold := int(dragFraction * float64(m.width))
		if threshold < 1 {
			threshold = 1
		}
		dx := mouse.X - m.dragStartX
		switch {
		case dx <= -threshold:
			return m.pageFullscreen(1)
		case dx >= threshold:
			return m.pageFullscreen(-1)
		}
		// A tap: the outer quarters page, the middle dismisses.
		edge := m.width / 4
		switch {
		case mouse.X < edge:
			return m.pageFullscreen(-1)
		case mouse.X >= m.width-edge:
			return m.pageFullscreen(1)
		default:
			m.dismissFullscreen()
		}
	}
	return nil
}

// locationAt maps a terminal cell to a feed location: the section header,
// an item, or nothing (gutters, unloaded bodies).
func (m *Model) locationAt(cellX, cellY int) (gallery.Location, bool) {
	f := m.feed
	row := cellY - 1 // title bar
	if row < 0 || row >= m.contentRows(m.height) {
		return gallery.Location{}, false
	}
	px := (float64(cellX) + 0.5) * float64(m.cellWidth)
	py := f.vp.ScrollTop + (float64(row)+0.5)*float64(m.cellHeight)
	sec := f.store.SectionAt(py)
	if sec < 0 || sec >= f.store.Len() {
		return gallery.Location{}, false
	}
	local := py - f.store.Offset(sec)
	if local < f.store.HeaderHeight() {
		return gallery.Location{Section: sec, Item: gallery.HeaderItem}, true
	}
	handle := f.store.Handle(sec)
	if handle == nil {
		return gallery.Location{}, false
	}
	body := local - f.store.HeaderHeight()
	y := 0.0
	for _, r := range handle.Rows {
		if body < y || body >= y+r.Height {
			y += r.Height
			continue
		}
		x := 0.0
		for k, w := range r.Widths {
			if px >= x && px < x+w {
				return gallery.Location{Section: sec, Item: r.Start + k}, true
			}
			x += w
		}
		return gallery.Location{}, false
	}
	return gallery.Location{}, false
}

// selectedID resolves a location's file id for trace output; headers trace
// with an empty id.
func selectedID(f *feed, loc gallery.Location) string {
	if loc.Item < 0 {
		return ""
	}
	items := f.store.Items(loc.Section)
	if loc.Item >= len(items) {
		return ""
	}
	return items[loc.Item].ID
}
