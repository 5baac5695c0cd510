package events

import "github.com/sorenkal/gridfeed/internal/logging"

type FetchTracer struct{}

var Fetch = FetchTracer{}

func (FetchTracer) Listing(album string, sections int) {
	logging.Trace("fetch.listing", map[string]interface{}{"album": album, "sections": sections})
}

func (FetchTracer) Fragment(section int, items int) {
	logging.Trace("fetch.fragment", map[string]interface{}{"section": section, "items": items})
}

func (FetchTracer) Error(section int, err error) {
	if err == nil {
		return
	}
	logging.Trace("fetch.error", map[string]interface{}{"section": section, "error": err.Error()})
}

func (FetchTracer) Retry(section int) {
	logging.Trace("fetch.retry", map[string]interface{}{"section": section})
}
