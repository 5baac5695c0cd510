package events

import "github.com/sorenkal/gridfeed/internal/logging"

type UITracer struct{}

type FilterTracer struct{}

type SelectTracer struct{}

var (
	UI     = UITracer{}
	Filter = FilterTracer{}
	Select = SelectTracer{}
)

func (UITracer) Mode(mode string) {
	logging.Trace("ui.mode", map[string]interface{}{"mode": mode})
}

func (UITracer) AlbumOpen(id, name string) {
	logging.Trace("ui.album.open", map[string]interface{}{"album": id, "name": name})
}

func (UITracer) Fullscreen(section, item int, open bool) {
	logging.Trace("ui.fullscreen", map[string]interface{}{"section": section, "item": item, "open": open})
}

func (UITracer) Error(err error) {
	if err == nil {
		return
	}
	logging.Trace("ui.error", map[string]interface{}{"error": err.Error()})
}

func (FilterTracer) Append(filter string) {
	logging.Trace("filter.append", map[string]interface{}{"filter": filter})
}

func (FilterTracer) Cleared() {
	logging.Trace("filter.clear", nil)
}

func (SelectTracer) Click(section, item int) {
	logging.Trace("select.click", map[string]interface{}{"section": section, "item": item})
}

func (SelectTracer) Range(section, item int, selected bool) {
	logging.Trace("select.range", map[string]interface{}{"section": section, "item": item, "selected": selected})
}

func (SelectTracer) Cleared(count int) {
	logging.Trace("select.clear", map[string]interface{}{"count": count})
}
