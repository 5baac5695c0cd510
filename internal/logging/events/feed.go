package events

import "github.com/sorenkal/gridfeed/internal/logging"

type FeedTracer struct{}

var Feed = FeedTracer{}

func (FeedTracer) Band(lo, hi int) {
	logging.Trace("feed.band", map[string]interface{}{"lo": lo, "hi": hi})
}

func (FeedTracer) Drain(scrollTop float64) {
	logging.Trace("feed.drain", map[string]interface{}{"scrollTop": scrollTop})
}

func (FeedTracer) Relayout(width float64) {
	logging.Trace("feed.relayout", map[string]interface{}{"width": width})
}

func (FeedTracer) Quality(changed int) {
	logging.Trace("feed.quality", map[string]interface{}{"changed": changed})
}
