package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/sorenkal/gridfeed/internal/logging/events"
	"github.com/sorenkal/gridfeed/internal/wire"
)

// picker lists the account's albums with a fuzzy filter over their names.
type picker struct {
	filter  textinput.Model
	full    []wire.AlbumEntry
	items   []wire.AlbumEntry
	cursor  int
	loading bool
}

func newPicker() *picker {
	ti := textinput.New()
	ti.Placeholder = "filter"
	ti.Prompt = "/ "
	ti.CharLimit = 64
	ti.PromptStyle = *styles.FilterPrompt
	ti.TextStyle = *styles.Filter
	ti.PlaceholderStyle = *styles.FilterPlaceholder
	return &picker{filter: ti, loading: true}
}

func (p *picker) SetEntries(entries []wire.AlbumEntry) {
	p.full = append([]wire.AlbumEntry(nil), entries...)
	p.loading = false
	p.applyFilter()
}

func (p *picker) Focus() tea.Cmd { return p.filter.Focus() }

// Selected returns the album id under the cursor.
func (p *picker) Selected() (string, bool) {
	if p.cursor < 0 || p.cursor >= len(p.items) {
		return "", false
	}
	return p.items[p.cursor].ID, true
}

func (p *picker) MoveCursor(delta int) {
	if len(p.items) == 0 {
		p.cursor = 0
		return
	}
	p.cursor += delta
	if p.cursor < 0 {
		p.cursor = 0
	}
	if p.cursor >= len(p.items) {
		p.cursor = len(p.items) - 1
	}
}

// ClearFilter resets the query; reports whether anything changed.
func (p *picker) ClearFilter() bool {
	if p.filter.Value() == "" {
		return false
	}
	p.filter.SetValue("")
	events.Filter.Cleared()
	p.applyFilter()
	return true
}

// Update feeds a message to the filter input and re-ranks the list when
// the query text changed.
func (p *picker) Update(msg tea.Msg) tea.Cmd {
	before := p.filter.Value()
	var cmd tea.Cmd
	p.filter, cmd = p.filter.Update(msg)
	if after := p.filter.Value(); after != before {
		events.Filter.Append(after)
		p.applyFilter()
	}
	return cmd
}

func (p *picker) applyFilter() {
	p.items = filterEntries(p.full, p.filter.Value())
	if p.cursor >= len(p.items) {
		p.cursor = len(p.items) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

// filterEntries ranks entries by fuzzy match against album names, falling
// back to a substring scan over names and ids when fuzzy finds nothing.
func filterEntries(entries []wire.AlbumEntry, query string) []wire.AlbumEntry {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return append([]wire.AlbumEntry(nil), entries...)
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Album.Description.Name
	}
	ranks := fuzzy.RankFindNormalizedFold(trimmed, names)
	if len(ranks) > 0 {
		sort.SliceStable(ranks, func(i, j int) bool {
			if ranks[i].Distance != ranks[j].Distance {
				return ranks[i].Distance < ranks[j].Distance
			}
			return ranks[i].OriginalIndex < ranks[j].OriginalIndex
		})
		filtered := make([]wire.AlbumEntry, 0, len(ranks))
		for _, rank := range ranks {
			filtered = append(filtered, entries[rank.OriginalIndex])
		}
		return filtered
	}
	lower := strings.ToLower(trimmed)
	filtered := make([]wire.AlbumEntry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Album.Description.Name), lower) ||
			strings.Contains(strings.ToLower(e.ID), lower) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func (p *picker) View(height int) string {
	var b strings.Builder
	b.WriteString(styles.Header.Render("Albums"))
	b.WriteString("  ")
	b.WriteString(p.filter.View())
	b.WriteString("\n\n")
	switch {
	case p.loading:
		b.WriteString(styles.Loading.Render("loading albums..."))
	case len(p.items) == 0:
		b.WriteString(styles.Placeholder.Render("no albums match"))
	default:
		rows := height - 3
		if rows < 1 {
			rows = 1
		}
		start := 0
		if p.cursor >= rows {
			start = p.cursor - rows + 1
		}
		end := start + rows
		if end > len(p.items) {
			end = len(p.items)
		}
		for i := start; i < end; i++ {
			entry := p.items[i]
			label := fmt.Sprintf("%s (%d)", entry.Album.Description.Name, entry.Album.Length)
			if i == p.cursor {
				b.WriteString(styles.SelectedItem.Render("> " + label))
			} else {
				b.WriteString(styles.Item.Render("  " + label))
			}
			if i != end-1 {
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}
