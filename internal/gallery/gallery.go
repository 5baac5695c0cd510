// Package gallery holds the types shared by the feed engine packages:
// item/location addressing, quality tiers, viewport geometry, and the
// tuning knobs that the schedulers consume.
package gallery

import "time"

// Item is one photo or video entry of a section, immutable once fetched.
type Item struct {
	ID        string
	Timestamp int64
	Width     int
	Height    int
}

// AspectRatio returns width/height, guarding degenerate dimensions.
func (it Item) AspectRatio() float64 {
	if it.Height <= 0 || it.Width <= 0 {
		return 1
	}
	return float64(it.Width) / float64(it.Height)
}

// HeaderItem addresses a section header instead of an item index.
const HeaderItem = -1

// Location addresses an item (or a section header) independently of
// render-handle lifetime.
type Location struct {
	Section int
	Item    int
}

// Before orders locations by section, then item, with the header sorting
// immediately before item 0.
func (l Location) Before(o Location) bool {
	if l.Section != o.Section {
		return l.Section < o.Section
	}
	return l.Item < o.Item
}

// IsHeader reports whether the location addresses a section header.
func (l Location) IsHeader() bool {
	return l.Item == HeaderItem
}

// Tier is one of the server-side resolution variants of a file.
type Tier int

const (
	// TierSmall is the always-available 10px baseline thumbnail.
	TierSmall Tier = iota
	// TierMedium is the 400px variant promoted for near-viewport rows.
	TierMedium
	// TierLarge is the original file, used by the fullscreen view only.
	TierLarge
)

// String returns the quality path segment the server expects.
func (t Tier) String() string {
	switch t {
	case TierMedium:
		return "medium"
	case TierLarge:
		return "large"
	default:
		return "small"
	}
}

// Viewport describes the host surface in layout pixels.
type Viewport struct {
	Width     float64
	Height    float64
	ScrollTop float64
}

// Tuning collects the engine constants. None of them have a derivation
// beyond "observed to feel right", so they stay configurable end to end.
type Tuning struct {
	IdealRowHeight float64
	HeaderHeight   float64

	// Row packing admissibility ratios, relative to the ideal aspect.
	ShrinkRatio      float64
	StretchRatio     float64
	SafeStretchRatio float64

	// Hysteresis radii in viewport-height multiples. Outer is used only
	// for eviction, inner only for creation; outer must contain inner.
	OuterRadius float64
	InnerRadius float64

	// Promotion band for the medium tier, in viewport-height multiples
	// above and below the viewport.
	PromoteAbove float64
	PromoteBelow float64

	// Scroll speed (px/ms) above which quality evaluation is deferred,
	// expressed as a fraction of the ideal row height.
	SpeedThreshold float64

	FrameInterval time.Duration
	QualityQuiet  time.Duration
	ResizeQuiet   time.Duration

	// AnchorScroll enables the best-effort scroll compensation applied
	// when a section above the viewport centre changes height.
	AnchorScroll bool
}

// DefaultTuning returns the stock constants.
func DefaultTuning() Tuning {
	return Tuning{
		IdealRowHeight:   300,
		HeaderHeight:     50,
		ShrinkRatio:      0.8,
		StretchRatio:     1.2,
		SafeStretchRatio: 2.0,
		OuterRadius:      6,
		InnerRadius:      5,
		PromoteAbove:     1,
		PromoteBelow:     2,
		SpeedThreshold:   0.015,
		FrameInterval:    16 * time.Millisecond,
		QualityQuiet:     150 * time.Millisecond,
		ResizeQuiet:      200 * time.Millisecond,
		AnchorScroll:     true,
	}
}

// SpeedLimit returns the absolute scroll speed threshold in px/ms.
func (t Tuning) SpeedLimit() float64 {
	return t.IdealRowHeight * t.SpeedThreshold
}
