package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/sorenkal/gridfeed/internal/gallery"
	"github.com/sorenkal/gridfeed/internal/gallery/layout"
	"github.com/sorenkal/gridfeed/internal/thumbs"
)

// View renders the current mode. Feed and fullscreen views draw photo
// mosaics with half-block cells: the upper pixel row becomes the cell's
// foreground, the lower its background.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	switch m.mode {
	case ModeLogin:
		return m.frameView("gridfeed", m.login.View())
	case ModePicker:
		return m.frameView("gridfeed", m.picker.View(m.contentRows(m.height)))
	case ModeFeed:
		return m.feedView()
	case ModeFullscreen:
		return m.fullscreenView()
	}
	return ""
}

// frameView places content under the title line and pads to full height.
func (m *Model) frameView(title, content string) string {
	var b strings.Builder
	b.WriteString(m.titleLine(title))
	b.WriteString("\n")
	b.WriteString(content)
	return b.String()
}

func (m *Model) titleLine(title string) string {
	line := styles.Header.Render(title)
	if err := m.errMsg; err != "" {
		line += "  " + styles.Error.Render(err)
	} else if info := m.info(); info != "" {
		line += "  " + styles.Info.Render(info)
	}
	return m.clipLine(line)
}

func (m *Model) clipLine(line string) string {
	if m.width <= 0 {
		return line
	}
	return truncate.StringWithTail(line, uint(m.width), "…")
}

func (m *Model) feedView() string {
	f := m.feed
	album := m.albums.Metadata()
	title := album.Description.Name
	if title == "" {
		title = "album"
	}
	if f != nil && f.ready && !f.sel.Empty() {
		title += fmt.Sprintf("  [%d selected]", f.sel.Count())
	}

	var b strings.Builder
	b.WriteString(m.titleLine(title))
	b.WriteString("\n")

	rows := m.contentRows(m.height)
	if f == nil || !f.ready {
		b.WriteString(styles.Loading.Render("loading album..."))
		for i := 1; i < rows; i++ {
			b.WriteString("\n")
		}
	} else {
		for row := 0; row < rows; row++ {
			b.WriteString(m.feedRow(row))
			if row != rows-1 {
				b.WriteString("\n")
			}
		}
	}

	if m.showFooter {
		b.WriteString("\n")
		b.WriteString(m.clipLine(styles.Footer.Render(feedFooter)))
	}
	return b.String()
}

const feedFooter = "j/k scroll · h/l cursor · space select · shift+space range · enter fullscreen · r retry · q back"

// feedRow renders one terminal row of the photo grid.
func (m *Model) feedRow(row int) string {
	f := m.feed
	pyTop := f.vp.ScrollTop + float64(row*m.cellHeight)
	py := pyTop + float64(m.cellHeight)/2
	sec := f.store.SectionAt(py)
	if sec < 0 || sec >= f.store.Len() {
		return ""
	}
	local := py - f.store.Offset(sec)
	if local < f.store.HeaderHeight() {
		// Label only the first cell row covering the header band.
		if local >= float64(m.cellHeight) && pyTop > f.store.Offset(sec) {
			return ""
		}
		return m.headerLine(sec)
	}
	handle := f.store.Handle(sec)
	if handle == nil || len(handle.Rows) == 0 {
		return m.bodyPlaceholder(sec, local)
	}
	return m.mosaicRow(sec, handle.Rows, py)
}

func (m *Model) headerLine(sec int) string {
	f := m.feed
	entry := f.store.Entry(sec)
	label := time.Unix(entry.Timestamp, 0).UTC().Format("2 January 2006")
	label = fmt.Sprintf("%s · %d photos", label, entry.Count)
	style := styles.Header
	if f.sel.SectionAll(sec) {
		style = styles.SelectedHeader
		label += " ✓"
	}
	if f.cursor.Section == sec && f.cursor.IsHeader() {
		label = "> " + label
	}
	return m.clipLine(style.Render(label))
}

// bodyPlaceholder fills unloaded or failed section bodies, printing the
// status once near the top of the body.
func (m *Model) bodyPlaceholder(sec int, local float64) string {
	f := m.feed
	if local-f.store.HeaderHeight() >= float64(m.cellHeight) {
		return ""
	}
	if f.store.Failed(sec) {
		return m.clipLine(styles.Retry.Render("failed to load, press r to retry"))
	}
	return m.clipLine(styles.Placeholder.Render("loading…"))
}

// mosaicRow paints one cell row of a loaded section body.
func (m *Model) mosaicRow(sec int, rows []layout.Row, py float64) string {
	f := m.feed
	items := f.store.Items(sec)
	handle := f.store.Handle(sec)
	bodyY := py - f.store.Offset(sec) - f.store.HeaderHeight()

	rowTop := 0.0
	rowIdx := -1
	for i, r := range rows {
		if bodyY >= rowTop && bodyY < rowTop+r.Height {
			rowIdx = i
			break
		}
		rowTop += r.Height
	}
	if rowIdx < 0 {
		return ""
	}
	r := rows[rowIdx]
	tier := gallery.TierSmall
	if rowIdx < len(handle.Tiers) {
		tier = handle.Tiers[rowIdx]
	}
	cellInRow := int((bodyY - rowTop) / float64(m.cellHeight))

	var b strings.Builder
	for cellX := 0; cellX < m.width; cellX++ {
		px := (float64(cellX) + 0.5) * float64(m.cellWidth)
		k, xStart, ok := itemAt(r, px)
		if !ok {
			b.WriteString(" ")
			continue
		}
		item := items[k]
		if marker := m.itemMarker(sec, k, item.ID, px-xStart, cellInRow); marker != "" {
			b.WriteString(marker)
			continue
		}
		mosaic, ok := m.cache.Get(item.ID, tier)
		if !ok || mosaic.Cols == 0 {
			b.WriteString(styles.Placeholder.Render("·"))
			continue
		}
		col := int((px - xStart) / float64(m.cellWidth))
		if col >= mosaic.Cols {
			col = mosaic.Cols - 1
		}
		top := 2 * cellInRow
		if top >= mosaic.Rows {
			top = mosaic.Rows - 1
		}
		bottom := top + 1
		if bottom >= mosaic.Rows {
			bottom = top
		}
		b.WriteString(halfBlock(mosaic.At(col, top), mosaic.At(col, bottom)))
	}
	return b.String()
}

// itemMarker overlays cursor and selection glyphs on an item's top-left
// cell.
func (m *Model) itemMarker(sec, k int, id string, xInItem float64, cellInRow int) string {
	if cellInRow != 0 || xInItem >= float64(m.cellWidth) {
		return ""
	}
	f := m.feed
	if f.cursor.Section == sec && f.cursor.Item == k {
		return styles.Cursor.Render(">")
	}
	if f.sel.IsSelected(sec, id) {
		return styles.SelectedItem.Render("✓")
	}
	return ""
}

// itemAt finds the item index under a pixel x within a packed row.
func itemAt(r layout.Row, px float64) (int, float64, bool) {
	x := 0.0
	for i, w := range r.Widths {
		if px >= x && px < x+w {
			return r.Start + i, x, true
		}
		x += w
	}
	return 0, 0, false
}

func halfBlock(top, bottom thumbs.Color) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(hexColor(top))).
		Background(lipgloss.Color(hexColor(bottom))).
		Render("▀")
}

func hexColor(c thumbs.Color) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (m *Model) fullscreenView() string {
	f := m.feed
	if f == nil || !f.nav.Visible() {
		return ""
	}
	loc := f.nav.Current()
	items := f.store.Items(loc.Section)
	if loc.Item < 0 || loc.Item >= len(items) {
		return ""
	}
	item := items[loc.Item]
	entry := f.store.Entry(loc.Section)
	title := fmt.Sprintf("%s · %d/%d",
		time.Unix(entry.Timestamp, 0).UTC().Format("2 January 2006"),
		loc.Item+1, len(items))

	var b strings.Builder
	b.WriteString(m.clipLine(styles.FullscreenTitle.Render(title)))
	b.WriteString("\n")

	bodyRows := m.height - 2
	if bodyRows < 1 {
		bodyRows = 1
	}
	mosaic, ok := m.cache.Get(item.ID, gallery.TierLarge)
	if !ok || mosaic.Cols == 0 {
		b.WriteString(styles.Loading.Render("loading…"))
		for i := 1; i < bodyRows; i++ {
			b.WriteString("\n")
		}
	} else {
		cols := mosaic.Cols
		if cols > m.width {
			cols = m.width
		}
		usedRows := mosaic.Rows / 2
		if usedRows > bodyRows {
			usedRows = bodyRows
		}
		padLeft := (m.width - cols) / 2
		padTop := (bodyRows - usedRows) / 2
		for row := 0; row < bodyRows; row++ {
			if row >= padTop && row < padTop+usedRows {
				mr := row - padTop
				b.WriteString(strings.Repeat(" ", padLeft))
				for col := 0; col < cols; col++ {
					b.WriteString(halfBlock(mosaic.At(col, 2*mr), mosaic.At(col, 2*mr+1)))
				}
			}
			if row != bodyRows-1 {
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\n")
	b.WriteString(m.clipLine(styles.FullscreenBody.Render("←/→ navigate · esc close")))
	return b.String()
}
