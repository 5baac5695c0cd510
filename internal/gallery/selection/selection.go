// Package selection tracks which items of the feed are selected. State is
// keyed by file ID rather than render handle, so it survives sections
// scrolling out of the window and back in. Each section holds either the
// All sentinel or an explicit partial set; the two forms never overlap:
// a partial set collapses to All the moment it covers every loaded item,
// and All expands back to a set on the first partial deselection.
package selection

import "github.com/sorenkal/gridfeed/internal/gallery"

// ItemSource supplies the section data the model resolves locations
// against. *sections.Store satisfies it.
type ItemSource interface {
	SectionCount() int
	// ItemIDs returns the ordered loaded item IDs, nil when the section's
	// fragment has not arrived.
	ItemIDs(section int) []string
	// ItemCount returns the declared item count from the head listing.
	ItemCount(section int) int
}

type sectionState struct {
	all bool
	ids map[string]struct{}
}

// Model is the per-album selection state.
type Model struct {
	src ItemSource

	sections  map[int]*sectionState
	anchor    gallery.Location
	hasAnchor bool
}

// New builds an empty selection over the given source.
func New(src ItemSource) *Model {
	return &Model{src: src, sections: make(map[int]*sectionState)}
}

// Empty reports whether nothing is selected.
func (m *Model) Empty() bool { return len(m.sections) == 0 }

// Count returns the number of selected items. Fully selected sections
// count their declared size even before their fragment arrives.
func (m *Model) Count() int {
	n := 0
	for sec, st := range m.sections {
		if st.all {
			n += m.src.ItemCount(sec)
		} else {
			n += len(st.ids)
		}
	}
	return n
}

// Clear drops the whole selection and the range anchor.
func (m *Model) Clear() {
	m.sections = make(map[int]*sectionState)
	m.hasAnchor = false
}

// IsSelected reports whether the given item of a section is selected.
func (m *Model) IsSelected(section int, id string) bool {
	st := m.sections[section]
	if st == nil {
		return false
	}
	if st.all {
		return true
	}
	_, ok := st.ids[id]
	return ok
}

// SectionAll reports whether a section is fully selected.
func (m *Model) SectionAll(section int) bool {
	st := m.sections[section]
	return st != nil && st.all
}

// Anchor returns the last click location, if any.
func (m *Model) Anchor() (gallery.Location, bool) { return m.anchor, m.hasAnchor }

// Click toggles one item, or the whole section when aimed at its header,
// and moves the range anchor.
func (m *Model) Click(loc gallery.Location) {
	m.anchor, m.hasAnchor = loc, true
	if loc.IsHeader() {
		if m.SectionAll(loc.Section) {
			delete(m.sections, loc.Section)
		} else {
			m.setAll(loc.Section)
		}
		return
	}
	id, ok := m.idAt(loc)
	if !ok {
		return
	}
	if m.IsSelected(loc.Section, id) {
		m.deselect(loc.Section, id)
	} else {
		m.selectID(loc.Section, id)
	}
}

// ShiftClick applies a range operation between the previous click and loc:
// selecting when loc is currently unselected, deselecting otherwise. With
// no anchor it degrades to a plain click.
func (m *Model) ShiftClick(loc gallery.Location) {
	if !m.hasAnchor {
		m.Click(loc)
		return
	}
	desired := true
	if loc.IsHeader() {
		desired = !m.SectionAll(loc.Section)
	} else if id, ok := m.idAt(loc); ok {
		desired = !m.IsSelected(loc.Section, id)
	}
	anchor := m.anchor
	m.RangeSet(anchor, loc, desired)
	m.anchor, m.hasAnchor = loc, true
}

// RangeSet selects or deselects every location between a and b inclusive.
// Endpoints normalize by feed order with headers sorting before item 0; a
// header endpoint stands for the whole section it heads. Intermediate
// sections are covered in full via the All sentinel, so an unloaded
// section can still be wholly selected.
func (m *Model) RangeSet(a, b gallery.Location, selected bool) {
	if b.Before(a) {
		a, b = b, a
	}
	for sec := a.Section; sec <= b.Section && sec < m.src.SectionCount(); sec++ {
		if sec < 0 {
			continue
		}
		start := 0
		if sec == a.Section && !a.IsHeader() {
			start = a.Item
		}
		end := -1 // through the last item
		if sec == b.Section && !b.IsHeader() {
			end = b.Item
		}
		m.setRange(sec, start, end, selected)
	}
}

// setRange applies one section's slice of a range; end < 0 means through
// the last item.
func (m *Model) setRange(sec, start, end int, selected bool) {
	ids := m.src.ItemIDs(sec)
	whole := start == 0 && (end < 0 || (ids != nil && end >= len(ids)-1))
	if whole {
		if selected {
			m.setAll(sec)
		} else {
			delete(m.sections, sec)
		}
		return
	}
	if ids == nil {
		// Partial ranges need loaded data; an unloaded section cannot be
		// clicked item-wise anyway.
		return
	}
	if start < 0 {
		start = 0
	}
	if end < 0 || end >= len(ids) {
		end = len(ids) - 1
	}
	for i := start; i <= end; i++ {
		if selected {
			m.selectID(sec, ids[i])
		} else {
			m.deselect(sec, ids[i])
		}
	}
}

func (m *Model) setAll(sec int) {
	m.sections[sec] = &sectionState{all: true}
}

func (m *Model) selectID(sec int, id string) {
	st := m.sections[sec]
	if st == nil {
		st = &sectionState{ids: make(map[string]struct{})}
		m.sections[sec] = st
	}
	if st.all {
		return
	}
	st.ids[id] = struct{}{}
	if ids := m.src.ItemIDs(sec); ids != nil && len(st.ids) == len(ids) {
		st.all, st.ids = true, nil
	}
}

func (m *Model) deselect(sec int, id string) {
	st := m.sections[sec]
	if st == nil {
		return
	}
	if st.all {
		ids := m.src.ItemIDs(sec)
		if ids == nil {
			return
		}
		st.all = false
		st.ids = make(map[string]struct{}, len(ids))
		for _, other := range ids {
			if other != id {
				st.ids[other] = struct{}{}
			}
		}
	} else {
		delete(st.ids, id)
	}
	if len(st.ids) == 0 {
		delete(m.sections, sec)
	}
}

func (m *Model) idAt(loc gallery.Location) (string, bool) {
	if loc.Section < 0 || loc.Section >= m.src.SectionCount() {
		return "", false
	}
	ids := m.src.ItemIDs(loc.Section)
	if loc.Item < 0 || loc.Item >= len(ids) {
		return "", false
	}
	return ids[loc.Item], true
}
