package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sorenkal/gridfeed/internal/gallery"
)

// thumbBatchLimit caps how many thumbnail fetches one frame may start.
const thumbBatchLimit = 32

// requestThumbs walks the rows near the viewport and starts fetches for
// every item whose mosaic is missing at its assigned tier.
func (m *Model) requestThumbs() tea.Cmd {
	f := m.feed
	if f == nil || !f.ready {
		return nil
	}
	var cmds []tea.Cmd

	if m.mode == ModeFullscreen && f.nav.Visible() {
		if cmd := m.requestFullscreenThumb(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	bandLo := f.vp.ScrollTop - f.tuning.PromoteAbove*f.vp.Height
	bandHi := f.vp.ScrollTop + f.tuning.PromoteBelow*f.vp.Height

	lo, hi := f.sched.Band()
	for sec := lo; sec < hi && len(cmds) < thumbBatchLimit; sec++ {
		handle := f.store.Handle(sec)
		if handle == nil || len(handle.Rows) == 0 {
			continue
		}
		items := f.store.Items(sec)
		y := handle.Top + f.store.HeaderHeight()
		for r, row := range handle.Rows {
			if y >= bandHi {
				break
			}
			if y+row.Height <= bandLo {
				y += row.Height
				continue
			}
			tier := gallery.TierSmall
			if r < len(handle.Tiers) {
				tier = handle.Tiers[r]
			}
			rowCells := pxToCells(row.Height, m.cellHeight)
			for k := row.Start; k < row.End && len(cmds) < thumbBatchLimit; k++ {
				item := items[k]
				key := thumbKey{item.ID, tier}
				if m.thumbsInflight[key] {
					continue
				}
				if _, ok := m.cache.Get(item.ID, tier); ok {
					continue
				}
				cols := pxToCells(row.Widths[k-row.Start], m.cellWidth)
				m.thumbsInflight[key] = true
				cmds = append(cmds, thumbCmd(m.client, m.cache, item.ID, tier, cols, 2*rowCells))
			}
			y += row.Height
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (m *Model) requestFullscreenThumb() tea.Cmd {
	f := m.feed
	loc := f.nav.Current()
	items := f.store.Items(loc.Section)
	if loc.Item < 0 || loc.Item >= len(items) {
		return nil
	}
	item := items[loc.Item]
	key := thumbKey{item.ID, gallery.TierLarge}
	if m.thumbsInflight[key] {
		return nil
	}
	if _, ok := m.cache.Get(item.ID, gallery.TierLarge); ok {
		return nil
	}
	m.thumbsInflight[key] = true
	cols := m.width
	rows := 2 * (m.height - 2)
	if rows < 2 {
		rows = 2
	}
	return thumbCmd(m.client, m.cache, item.ID, gallery.TierLarge, cols, rows)
}

// pxToCells converts a pixel span to whole cells, rounding to nearest and
// never below one.
func pxToCells(px float64, cellPx int) int {
	cells := int(px/float64(cellPx) + 0.5)
	if cells < 1 {
		cells = 1
	}
	return cells
}
